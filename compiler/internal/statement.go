package internal

// statement*
// The list ends at the first token that can't start a statement, usually the }
// of the enclosing block.
func (translator *Translator) compileStatements(ctx *subroutineContext) error {
	translator.tracer.open("statements")
	for {
		var err error
		switch translator.peek.Type {
		case LetTP:
			err = translator.compileLet(ctx)
		case IfTP:
			err = translator.compileIf(ctx)
		case WhileTP:
			err = translator.compileWhile(ctx)
		case DoTP:
			err = translator.compileDo(ctx)
		case ReturnTP:
			err = translator.compileReturn(ctx)
		default:
			translator.tracer.close("statements")
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// let varName ([expression])? = expression ;
//
// For an array element the address is computed first and stays on the stack while
// the value is computed, the value then goes through temp 0 so that pointer 1 can be
// set from the address:
//
//	push base, index, add
//	value
//	pop temp 0
//	pop pointer 1
//	push temp 0
//	pop that 0
func (translator *Translator) compileLet(ctx *subroutineContext) error {
	translator.tracer.open("letStatement")
	_, err := translator.expectPeek(LetTP)
	if err != nil {
		return err
	}
	nameToken, err := translator.expectPeek(IdentifierTP)
	if err != nil {
		return err
	}
	isArray := translator.peekIs(LeftSquareBracketTP)
	var target Symbol
	if isArray {
		err = translator.compileArrayAddress(ctx, nameToken)
	} else {
		target, err = translator.resolve(nameToken)
	}
	if err != nil {
		return err
	}
	_, err = translator.expectPeek(EqualTP)
	if err != nil {
		return err
	}
	err = translator.compileExpression(ctx)
	if err != nil {
		return err
	}
	_, err = translator.expectPeek(SemiColonTP)
	if err != nil {
		return err
	}
	if isArray {
		translator.writer.WritePop(TempSegment, 0)
		translator.writer.WritePop(PointerSegment, 1)
		translator.writer.WritePush(TempSegment, 0)
		translator.writer.WritePop(ThatSegment, 0)
	} else {
		translator.writer.WritePop(target.Kind.Segment(), target.Index)
	}
	translator.tracer.close("letStatement")
	return nil
}

// if ( expression ) { statements } (else { statements })?
//
//	condition
//	if-goto IF_TRUEn
//	goto IF_FALSEn
//	label IF_TRUEn
//	statements
//	goto IF_ENDn (only with else)
//	label IF_FALSEn
//	else statements
//	label IF_ENDn
func (translator *Translator) compileIf(ctx *subroutineContext) error {
	translator.tracer.open("ifStatement")
	trueLabel, falseLabel, endLabel := ctx.newIfLabels()
	_, err := translator.expectPeek(IfTP)
	if err != nil {
		return err
	}
	err = translator.compileCondition(ctx)
	if err != nil {
		return err
	}
	translator.writer.WriteIf(trueLabel)
	translator.writer.WriteGoto(falseLabel)
	translator.writer.WriteLabel(trueLabel)
	err = translator.compileBlock(ctx)
	if err != nil {
		return err
	}
	if !translator.peekIs(ElseTP) {
		translator.writer.WriteLabel(falseLabel)
		translator.writer.WriteLabel(endLabel)
		translator.tracer.close("ifStatement")
		return nil
	}
	translator.expectPeek(ElseTP)
	translator.writer.WriteGoto(endLabel)
	translator.writer.WriteLabel(falseLabel)
	err = translator.compileBlock(ctx)
	if err != nil {
		return err
	}
	translator.writer.WriteLabel(endLabel)
	translator.tracer.close("ifStatement")
	return nil
}

// while ( expression ) { statements }
//
//	label WHILE_EXPn
//	condition
//	not
//	if-goto WHILE_ENDn
//	statements
//	goto WHILE_EXPn
//	label WHILE_ENDn
func (translator *Translator) compileWhile(ctx *subroutineContext) error {
	translator.tracer.open("whileStatement")
	expLabel, endLabel := ctx.newWhileLabels()
	_, err := translator.expectPeek(WhileTP)
	if err != nil {
		return err
	}
	translator.writer.WriteLabel(expLabel)
	err = translator.compileCondition(ctx)
	if err != nil {
		return err
	}
	translator.writer.WriteArithmetic(NotCommand)
	translator.writer.WriteIf(endLabel)
	err = translator.compileBlock(ctx)
	if err != nil {
		return err
	}
	translator.writer.WriteGoto(expLabel)
	translator.writer.WriteLabel(endLabel)
	translator.tracer.close("whileStatement")
	return nil
}

// ( expression )
func (translator *Translator) compileCondition(ctx *subroutineContext) error {
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

// { statements }
func (translator *Translator) compileBlock(ctx *subroutineContext) error {
	_, err := translator.expectPeek(LeftBraceTP)
	if err != nil {
		return err
	}
	err = translator.compileStatements(ctx)
	if err != nil {
		return err
	}
	_, err = translator.expectPeek(RightBraceTP)
	return err
}

// do subroutineCall ;
// Every subroutine returns a value, a do statement throws it away.
func (translator *Translator) compileDo(ctx *subroutineContext) error {
	translator.tracer.open("doStatement")
	_, err := translator.expectPeek(DoTP)
	if err != nil {
		return err
	}
	nameToken, err := translator.expectPeek(IdentifierTP)
	if err != nil {
		return err
	}
	err = translator.compileSubroutineCall(ctx, nameToken)
	if err != nil {
		return err
	}
	_, err = translator.expectPeek(SemiColonTP)
	if err != nil {
		return err
	}
	translator.writer.WritePop(TempSegment, 0)
	translator.tracer.close("doStatement")
	return nil
}

// return expression? ;
// A void subroutine returns 0.
func (translator *Translator) compileReturn(ctx *subroutineContext) error {
	translator.tracer.open("returnStatement")
	_, err := translator.expectPeek(ReturnTP)
	if err != nil {
		return err
	}
	if translator.peekIs(SemiColonTP) {
		translator.writer.WritePush(ConstantSegment, 0)
	} else {
		err = translator.compileExpression(ctx)
		if err != nil {
			return err
		}
	}
	_, err = translator.expectPeek(SemiColonTP)
	if err != nil {
		return err
	}
	translator.writer.WriteReturn()
	translator.tracer.close("returnStatement")
	return nil
}
