package internal

import (
	"strconv"
	"unicode/utf8"
)

// Largest integer constant of the 16 bit vm. Negative numbers are built with unary minus.
const maxIntegerConstant = 32767

var binaryOpCommands = map[TokenType]Command{
	AddTP:     AddCommand,
	MinusTP:   SubCommand,
	LessTP:    LtCommand,
	GreaterTP: GtCommand,
	EqualTP:   EqCommand,
	AndTP:     AndCommand,
	OrTP:      OrCommand,
}

// term (op term)*
// There is no operator precedence in jack, an operator is applied as soon as its
// right operand is on the stack: 2 + 3 * 4 is (2 + 3) * 4.
func (translator *Translator) compileExpression(ctx *subroutineContext) error {
	translator.tracer.open("expression")
	err := translator.compileTerm(ctx)
	if err != nil {
		return err
	}
	for translator.peek.Type.IsBinaryOp() {
		op, _ := translator.expectPeek(translator.peek.Type)
		err = translator.compileTerm(ctx)
		if err != nil {
			return err
		}
		translator.compileBinaryOp(op.Type)
	}
	translator.tracer.close("expression")
	return nil
}

func (translator *Translator) compileBinaryOp(op TokenType) {
	switch op {
	case MultiplyTP:
		translator.writer.WriteCall(mathMultiply, 2)
	case DivideTP:
		translator.writer.WriteCall(mathDivide, 2)
	default:
		translator.writer.WriteArithmetic(binaryOpCommands[op])
	}
}

// (expression (, expression)*)?
// Returns the number of expressions compiled.
func (translator *Translator) compileExpressionList(ctx *subroutineContext) (int, error) {
	translator.tracer.open("expressionList")
	n := 0
	for !translator.peekIs(RightParentThesesTP) {
		err := translator.compileExpression(ctx)
		if err != nil {
			return 0, err
		}
		n++
		if !translator.peekIs(CommaTP) {
			break
		}
		translator.expectPeek(CommaTP)
	}
	translator.tracer.close("expressionList")
	return n, nil
}

// Could be integerConstant|stringConstant|keywordConstant|varName|varName[expression]|
// subroutineCall|(expression)|unaryOp term.
func (translator *Translator) compileTerm(ctx *subroutineContext) (err error) {
	translator.tracer.open("term")
	switch translator.peek.Type {
	case IntegerTP:
		err = translator.compileIntegerConstant()
	case StringTP:
		token, _ := translator.expectPeek(StringTP)
		err = translator.compileStringConstant(token)
	case TrueTP, FalseTP, NullTP:
		token, _ := translator.expectPeek(TrueTP, FalseTP, NullTP)
		translator.writer.WritePush(ConstantSegment, 0)
		if token.Type == TrueTP {
			translator.writer.WriteArithmetic(NotCommand)
		}
	case ThisTP:
		translator.expectPeek(ThisTP)
		translator.writer.WritePush(PointerSegment, 0)
	case IdentifierTP:
		err = translator.compileIdentifierTerm(ctx)
	case LeftParentThesesTP:
		err = translator.compileSubExpression(ctx)
	case MinusTP, BooleanNegativeTP:
		err = translator.compileUnaryTerm(ctx)
	default:
		err = translator.makeError(ErrUnexpectedToken, translator.peek, "expected a term")
	}
	if err != nil {
		return err
	}
	translator.tracer.close("term")
	return nil
}

func (translator *Translator) compileIntegerConstant() error {
	token, _ := translator.expectPeek(IntegerTP)
	value, err := strconv.Atoi(token.Lexeme)
	if err != nil || value > maxIntegerConstant {
		return translator.makeError(ErrUnexpectedToken, token, "integer constant out of range 0..%d",
			maxIntegerConstant)
	}
	translator.writer.WritePush(ConstantSegment, value)
	return nil
}

// A string constant becomes a new String object with every character appended in
// source order. appendChar returns the string, so its reference is left on the stack.
// A character code must fit a constant, invalid utf-8 decodes to U+FFFD and is
// rejected the same way.
func (translator *Translator) compileStringConstant(token Token) error {
	for _, character := range token.Lexeme {
		if character > maxIntegerConstant {
			return translator.makeError(ErrUnexpectedToken, token, "character %q out of range 0..%d",
				character, maxIntegerConstant)
		}
	}
	translator.writer.WritePush(ConstantSegment, utf8.RuneCountInString(token.Lexeme))
	translator.writer.WriteCall(stringNew, 1)
	for _, character := range token.Lexeme {
		translator.writer.WritePush(ConstantSegment, int(character))
		translator.writer.WriteCall(stringAppendChar, 2)
	}
	return nil
}

// The token after the identifier decides: [ is an array element, ( or . a subroutine
// call, anything else a plain variable.
func (translator *Translator) compileIdentifierTerm(ctx *subroutineContext) error {
	nameToken, _ := translator.expectPeek(IdentifierTP)
	switch translator.peek.Type {
	case LeftSquareBracketTP:
		err := translator.compileArrayAddress(ctx, nameToken)
		if err != nil {
			return err
		}
		translator.writer.WritePop(PointerSegment, 1)
		translator.writer.WritePush(ThatSegment, 0)
		return nil
	case LeftParentThesesTP, DotTP:
		return translator.compileSubroutineCall(ctx, nameToken)
	default:
		return translator.pushVariable(nameToken)
	}
}

func (translator *Translator) pushVariable(nameToken Token) error {
	symbol, err := translator.resolve(nameToken)
	if err != nil {
		return err
	}
	translator.writer.WritePush(symbol.Kind.Segment(), symbol.Index)
	return nil
}

// compileArrayAddress leaves the address of name[expression] on the stack. The
// array name has already been consumed.
func (translator *Translator) compileArrayAddress(ctx *subroutineContext, nameToken Token) error {
	err := translator.pushVariable(nameToken)
	if err != nil {
		return err
	}
	_, err = translator.expectPeek(LeftSquareBracketTP)
	if err != nil {
		return err
	}
	err = translator.compileExpression(ctx)
	if err != nil {
		return err
	}
	_, err = translator.expectPeek(RightSquareBracketTP)
	if err != nil {
		return err
	}
	translator.writer.WriteArithmetic(AddCommand)
	return nil
}

// ( expression )
func (translator *Translator) compileSubExpression(ctx *subroutineContext) error {
	_, err := translator.expectPeek(LeftParentThesesTP)
	if err != nil {
		return err
	}
	err = translator.compileExpression(ctx)
	if err != nil {
		return err
	}
	_, err = translator.expectPeek(RightParentThesesTP)
	return err
}

// Note: 5 + -2 is accepted, the unary operator binds to the term right after it.
func (translator *Translator) compileUnaryTerm(ctx *subroutineContext) error {
	op, _ := translator.expectPeek(MinusTP, BooleanNegativeTP)
	err := translator.compileTerm(ctx)
	if err != nil {
		return err
	}
	if op.Type == MinusTP {
		translator.writer.WriteArithmetic(NegCommand)
	} else {
		translator.writer.WriteArithmetic(NotCommand)
	}
	return nil
}

// We allow call like: Foo.m1(), where Foo is a class, or varName. If just call m1(),
// then m1 is a method of current class called on the current object.
// The name before ( or . has already been consumed.
func (translator *Translator) compileSubroutineCall(ctx *subroutineContext, nameToken Token) error {
	var funcName string
	nArgs := 0
	if translator.peekIs(DotTP) {
		translator.expectPeek(DotTP)
		subNameToken, err := translator.expectPeek(IdentifierTP)
		if err != nil {
			return err
		}
		symbol, isVariable := translator.symbols.Lookup(nameToken.Lexeme)
		if isVariable {
			// A method called on an object, the object goes first.
			translator.writer.WritePush(symbol.Kind.Segment(), symbol.Index)
			funcName = symbol.Type + "." + subNameToken.Lexeme
			nArgs++
		} else {
			// Otherwise the name is a class and this is a function or constructor.
			funcName = nameToken.Lexeme + "." + subNameToken.Lexeme
		}
	} else {
		translator.writer.WritePush(PointerSegment, 0)
		funcName = ctx.className + "." + nameToken.Lexeme
		nArgs++
	}
	_, err := translator.expectPeek(LeftParentThesesTP)
	if err != nil {
		return err
	}
	n, err := translator.compileExpressionList(ctx)
	if err != nil {
		return err
	}
	_, err = translator.expectPeek(RightParentThesesTP)
	if err != nil {
		return err
	}
	translator.writer.WriteCall(funcName, nArgs+n)
	return nil
}
