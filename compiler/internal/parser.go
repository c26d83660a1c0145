package internal

import (
	"fmt"
	"strings"
)

// Names of the operating system routines the generated code relies on.
const (
	mathMultiply     = "Math.multiply"
	mathDivide       = "Math.divide"
	stringNew        = "String.new"
	stringAppendChar = "String.appendChar"
	memoryAlloc      = "Memory.alloc"
)

// Translator parses one jack class and emits its vm code in the same pass. There is
// no syntax tree: every production consumes its tokens, resolves identifiers against
// the symbol table and writes instructions before returning.
type Translator struct {
	source  TokenSource
	current Token
	peek    Token

	className string
	symbols   *SymbolTable
	writer    *VMWriter
	tracer    *Tracer
}

// NewTranslator reads the first token of source as lookahead. tracer may be nil.
func NewTranslator(source TokenSource, tracer *Tracer) *Translator {
	translator := &Translator{
		source:  source,
		symbols: NewSymbolTable(),
		writer:  NewVMWriter(),
		tracer:  tracer,
	}
	translator.nextToken()
	return translator
}

// Translate compiles the class. The first error ends the translation, the code
// written until then must not be used.
func (translator *Translator) Translate() error {
	return translator.compileClass()
}

func (translator *Translator) ClassName() string {
	return translator.className
}

func (translator *Translator) Output() *VMWriter {
	return translator.writer
}

// subroutineContext is the state that lives for the compilation of one subroutine.
type subroutineContext struct {
	className         string
	name              string
	kind              TokenType // ConstructorTP, FunctionTP or MethodTP
	ifLabelCounter    int
	whileLabelCounter int
}

func (ctx *subroutineContext) fullName() string {
	return ctx.className + "." + ctx.name
}

func (ctx *subroutineContext) newIfLabels() (trueLabel, falseLabel, endLabel string) {
	n := ctx.ifLabelCounter
	ctx.ifLabelCounter++
	return fmt.Sprintf("IF_TRUE%d", n), fmt.Sprintf("IF_FALSE%d", n), fmt.Sprintf("IF_END%d", n)
}

func (ctx *subroutineContext) newWhileLabels() (expLabel, endLabel string) {
	n := ctx.whileLabelCounter
	ctx.whileLabelCounter++
	return fmt.Sprintf("WHILE_EXP%d", n), fmt.Sprintf("WHILE_END%d", n)
}

// class Identifier {
//    classVarDec*
//    subroutineDec*
// }
func (translator *Translator) compileClass() error {
	translator.tracer.open("class")
	_, err := translator.expectPeek(ClassTP)
	if err != nil {
		return err
	}
	classNameToken, err := translator.expectPeek(IdentifierTP)
	if err != nil {
		return err
	}
	translator.className = classNameToken.Lexeme
	_, err = translator.expectPeek(LeftBraceTP)
	if err != nil {
		return err
	}
	for translator.peekIs(StaticTP, FieldTP) {
		err = translator.compileClassVarDec()
		if err != nil {
			return err
		}
	}
	for translator.peekIs(ConstructorTP, FunctionTP, MethodTP) {
		err = translator.compileSubroutine()
		if err != nil {
			return err
		}
	}
	_, err = translator.expectPeek(RightBraceTP)
	if err != nil {
		return err
	}
	translator.tracer.close("class")
	// One class per source.
	_, err = translator.expectPeek(EOFTP)
	return err
}

// Var declaration like: [static|field] [boolean|char|int|className] varName [,varName]* ;
func (translator *Translator) compileClassVarDec() error {
	translator.tracer.open("classVarDec")
	kindToken, err := translator.expectPeek(StaticTP, FieldTP)
	if err != nil {
		return err
	}
	kind := FieldKind
	if kindToken.Type == StaticTP {
		kind = StaticKind
	}
	err = translator.compileVarNames(kind)
	if err != nil {
		return err
	}
	translator.tracer.close("classVarDec")
	return nil
}

// var type varName [,varName]* ;
func (translator *Translator) compileVarDec() error {
	translator.tracer.open("varDec")
	_, err := translator.expectPeek(VarTP)
	if err != nil {
		return err
	}
	err = translator.compileVarNames(LocalKind)
	if err != nil {
		return err
	}
	translator.tracer.close("varDec")
	return nil
}

// compileVarNames defines every name of a declaration sharing one type, the trailing
// semicolon included.
func (translator *Translator) compileVarNames(kind SymbolKind) error {
	tp, err := translator.compileType()
	if err != nil {
		return err
	}
	for {
		nameToken, err := translator.expectPeek(IdentifierTP)
		if err != nil {
			return err
		}
		err = translator.define(nameToken, tp, kind)
		if err != nil {
			return err
		}
		if !translator.peekIs(CommaTP) {
			break
		}
		translator.expectPeek(CommaTP)
	}
	_, err = translator.expectPeek(SemiColonTP)
	return err
}

// int | char | boolean | className
func (translator *Translator) compileType() (string, error) {
	token, err := translator.expectPeek(IntTP, CharTP, BooleanTP, IdentifierTP)
	if err != nil {
		return "", err
	}
	return token.Lexeme, nil
}

// [constructor|function|method] [void|type] subroutineName ( parameterList ) subroutineBody
func (translator *Translator) compileSubroutine() error {
	translator.tracer.open("subroutineDec")
	kindToken, err := translator.expectPeek(ConstructorTP, FunctionTP, MethodTP)
	if err != nil {
		return err
	}
	if translator.peekIs(VoidTP) {
		translator.expectPeek(VoidTP)
	} else {
		_, err = translator.compileType()
		if err != nil {
			return err
		}
	}
	nameToken, err := translator.expectPeek(IdentifierTP)
	if err != nil {
		return err
	}
	ctx := &subroutineContext{
		className: translator.className,
		name:      nameToken.Lexeme,
		kind:      kindToken.Type,
	}
	translator.symbols.StartSubroutine()
	if ctx.kind == MethodTP {
		// The receiver is the hidden first argument of every method.
		translator.symbols.Define("this", translator.className, ArgumentKind)
	}
	_, err = translator.expectPeek(LeftParentThesesTP)
	if err != nil {
		return err
	}
	err = translator.compileParameterList()
	if err != nil {
		return err
	}
	_, err = translator.expectPeek(RightParentThesesTP)
	if err != nil {
		return err
	}
	err = translator.compileSubroutineBody(ctx)
	if err != nil {
		return err
	}
	translator.tracer.close("subroutineDec")
	return nil
}

// ((type varName) (, type varName)*)?
func (translator *Translator) compileParameterList() error {
	translator.tracer.open("parameterList")
	for !translator.peekIs(RightParentThesesTP) {
		tp, err := translator.compileType()
		if err != nil {
			return err
		}
		nameToken, err := translator.expectPeek(IdentifierTP)
		if err != nil {
			return err
		}
		err = translator.define(nameToken, tp, ArgumentKind)
		if err != nil {
			return err
		}
		if !translator.peekIs(CommaTP) {
			break
		}
		translator.expectPeek(CommaTP)
	}
	translator.tracer.close("parameterList")
	return nil
}

// {
//    varDec*
//    statements
// }
// The function header needs the number of locals, so it is written once all
// var declarations are parsed.
func (translator *Translator) compileSubroutineBody(ctx *subroutineContext) error {
	translator.tracer.open("subroutineBody")
	_, err := translator.expectPeek(LeftBraceTP)
	if err != nil {
		return err
	}
	for translator.peekIs(VarTP) {
		err = translator.compileVarDec()
		if err != nil {
			return err
		}
	}
	translator.writer.WriteFunction(ctx.fullName(), translator.symbols.VarCount(LocalKind))
	switch ctx.kind {
	case ConstructorTP:
		// One word per field.
		translator.writer.WritePush(ConstantSegment, translator.symbols.VarCount(FieldKind))
		translator.writer.WriteCall(memoryAlloc, 1)
		translator.writer.WritePop(PointerSegment, 0)
	case MethodTP:
		translator.writer.WritePush(ArgumentSegment, 0)
		translator.writer.WritePop(PointerSegment, 0)
	}
	err = translator.compileStatements(ctx)
	if err != nil {
		return err
	}
	_, err = translator.expectPeek(RightBraceTP)
	if err != nil {
		return err
	}
	translator.tracer.close("subroutineBody")
	return nil
}

func (translator *Translator) define(nameToken Token, tp string, kind SymbolKind) error {
	err := translator.symbols.Define(nameToken.Lexeme, tp, kind)
	if err != nil {
		return translator.makeError(ErrRedefinedSymbol, nameToken, "%s", err)
	}
	return nil
}

// resolve looks up a variable reference, an unknown name is an error.
func (translator *Translator) resolve(nameToken Token) (Symbol, error) {
	kind, err := translator.symbols.KindOf(nameToken.Lexeme)
	if err != nil {
		return Symbol{}, translator.makeError(ErrUnresolvedSymbol, nameToken, "undefined variable %s",
			nameToken.Lexeme)
	}
	index, _ := translator.symbols.IndexOf(nameToken.Lexeme)
	tp, _ := translator.symbols.TypeOf(nameToken.Lexeme)
	return Symbol{Name: nameToken.Lexeme, Type: tp, Kind: kind, Index: index}, nil
}

func (translator *Translator) nextToken() {
	translator.current = translator.peek
	translator.peek = translator.source.Next()
}

func (translator *Translator) peekIs(tps ...TokenType) bool {
	return translator.peek.Is(tps...)
}

// expectPeek consumes the lookahead token if it has one of tps, otherwise the
// lookahead is reported as unexpected.
func (translator *Translator) expectPeek(tps ...TokenType) (Token, error) {
	if !translator.peekIs(tps...) {
		return Token{}, translator.unexpected(tps...)
	}
	translator.nextToken()
	translator.tracer.token(translator.current)
	return translator.current, nil
}

func (translator *Translator) unexpected(tps ...TokenType) error {
	names := make([]string, 0, len(tps))
	for _, tp := range tps {
		names = append(names, tp.String())
	}
	if len(names) == 1 {
		return translator.makeError(ErrUnexpectedToken, translator.peek, "expected %s", names[0])
	}
	return translator.makeError(ErrUnexpectedToken, translator.peek, "expected one of %s",
		strings.Join(names, ", "))
}

func (translator *Translator) makeError(kind error, token Token, format string, args ...interface{}) error {
	return &SyntaxError{Kind: kind, Token: token, Message: fmt.Sprintf(format, args...)}
}
