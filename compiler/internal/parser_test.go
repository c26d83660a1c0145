package internal

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTranslator(t *testing.T, content string, tracer *Tracer) *Translator {
	tokens, err := (&Tokenizer{}).Tokenize(strings.NewReader(content))
	require.Nil(t, err, content)
	return NewTranslator(NewTokenStream(tokens), tracer)
}

func listing(writer *VMWriter) []string {
	lines := []string{}
	for _, ins := range writer.Instructions() {
		lines = append(lines, ins.String())
	}
	return lines
}

func testContext() *subroutineContext {
	return &subroutineContext{className: "Main", name: "main", kind: FunctionTP}
}

func TestTranslator_CompileExpression(t *testing.T) {
	testData := []struct {
		content  string
		expected []string
	}{
		{content: "10", expected: []string{"push constant 10"}},
		{content: "32767", expected: []string{"push constant 32767"}},
		{content: "10 + 30", expected: []string{"push constant 10", "push constant 30", "add"}},
		{content: "false", expected: []string{"push constant 0"}},
		{content: "null", expected: []string{"push constant 0"}},
		{content: "true", expected: []string{"push constant 0", "not"}},
		{content: "this", expected: []string{"push pointer 0"}},
		{content: "~ false", expected: []string{"push constant 0", "not"}},
		{content: "- 10", expected: []string{"push constant 10", "neg"}},
		{content: "5 + -2", expected: []string{"push constant 5", "push constant 2", "neg", "add"}},
		{
			content: "\"OLA\"",
			expected: []string{
				"push constant 3",
				"call String.new 1",
				"push constant 79",
				"call String.appendChar 2",
				"push constant 76",
				"call String.appendChar 2",
				"push constant 65",
				"call String.appendChar 2",
			},
		},
		{content: "\"\"", expected: []string{"push constant 0", "call String.new 1"}},
		{
			// Operators apply from left to right.
			content: "2 + 3 * 4",
			expected: []string{
				"push constant 2",
				"push constant 3",
				"add",
				"push constant 4",
				"call Math.multiply 2",
			},
		},
		{
			content: "8 / (2 - 1)",
			expected: []string{
				"push constant 8",
				"push constant 2",
				"push constant 1",
				"sub",
				"call Math.divide 2",
			},
		},
		{
			content: "1 < 2 & 3 > 2 | 1 = 1",
			expected: []string{
				"push constant 1",
				"push constant 2",
				"lt",
				"push constant 3",
				"and",
				"push constant 2",
				"gt",
				"push constant 1",
				"or",
				"push constant 1",
				"eq",
			},
		},
		{
			content:  "Foo.bar(1, 2)",
			expected: []string{"push constant 1", "push constant 2", "call Foo.bar 2"},
		},
		{
			content:  "run()",
			expected: []string{"push pointer 0", "call Main.run 1"},
		},
	}
	for _, data := range testData {
		translator := newTestTranslator(t, data.content, nil)
		err := translator.compileExpression(testContext())
		assert.Nil(t, err, data.content)
		assert.Equal(t, data.expected, listing(translator.Output()), data.content)
		assert.Equal(t, EOFTP, translator.peek.Type, data.content)
	}
}

func TestTranslator_CompileStatements(t *testing.T) {
	testData := []struct {
		content  string
		expected []string
	}{
		{content: "return;", expected: []string{"push constant 0", "return"}},
		{content: "return 10;", expected: []string{"push constant 10", "return"}},
		{
			content: "if (false) { return 10; } else { return 20; }",
			expected: []string{
				"push constant 0",
				"if-goto IF_TRUE0",
				"goto IF_FALSE0",
				"label IF_TRUE0",
				"push constant 10",
				"return",
				"goto IF_END0",
				"label IF_FALSE0",
				"push constant 20",
				"return",
				"label IF_END0",
			},
		},
		{
			content: "if (true) { return; }",
			expected: []string{
				"push constant 0",
				"not",
				"if-goto IF_TRUE0",
				"goto IF_FALSE0",
				"label IF_TRUE0",
				"push constant 0",
				"return",
				"label IF_FALSE0",
				"label IF_END0",
			},
		},
		{
			content: "while (false) { return 10; }",
			expected: []string{
				"label WHILE_EXP0",
				"push constant 0",
				"not",
				"if-goto WHILE_END0",
				"push constant 10",
				"return",
				"goto WHILE_EXP0",
				"label WHILE_END0",
			},
		},
		{
			content: "while (true) { if (false) { do Sys.halt(); } } if (true) { }",
			expected: []string{
				"label WHILE_EXP0",
				"push constant 0",
				"not",
				"not",
				"if-goto WHILE_END0",
				"push constant 0",
				"if-goto IF_TRUE0",
				"goto IF_FALSE0",
				"label IF_TRUE0",
				"call Sys.halt 0",
				"pop temp 0",
				"label IF_FALSE0",
				"label IF_END0",
				"goto WHILE_EXP0",
				"label WHILE_END0",
				"push constant 0",
				"not",
				"if-goto IF_TRUE1",
				"goto IF_FALSE1",
				"label IF_TRUE1",
				"label IF_FALSE1",
				"label IF_END1",
			},
		},
	}
	for _, data := range testData {
		translator := newTestTranslator(t, data.content, nil)
		err := translator.compileStatements(testContext())
		assert.Nil(t, err, data.content)
		assert.Equal(t, data.expected, listing(translator.Output()), data.content)
	}
}

func TestTranslator_Translate(t *testing.T) {
	testData := []struct {
		name     string
		content  string
		expected []string
	}{
		{
			name: "let",
			content: `
			class Main {
			  function void main () {
			      var int x;
			      let x = 42;
			      return;
			  }
			}`,
			expected: []string{
				"function Main.main 1",
				"push constant 42",
				"pop local 0",
				"push constant 0",
				"return",
			},
		},
		{
			name: "array",
			content: `
			class Main {
			    function void main () {
			        var Array v;
			        let v[2] = v[3] + 42;
			        return;
			    }
			}`,
			expected: []string{
				"function Main.main 1",
				"push local 0",
				"push constant 2",
				"add",
				"push local 0",
				"push constant 3",
				"add",
				"pop pointer 1",
				"push that 0",
				"push constant 42",
				"add",
				"pop temp 0",
				"pop pointer 1",
				"push temp 0",
				"pop that 0",
				"push constant 0",
				"return",
			},
		},
		{
			name: "function call",
			content: `
			class Main {
			    function int soma (int x, int y) {
			           return  x + y;
			    }

			    function void main () {
			           var int d;
			           let d = Main.soma(4,5);
			           return;
			     }
			}`,
			expected: []string{
				"function Main.soma 0",
				"push argument 0",
				"push argument 1",
				"add",
				"return",
				"function Main.main 1",
				"push constant 4",
				"push constant 5",
				"call Main.soma 2",
				"pop local 0",
				"push constant 0",
				"return",
			},
		},
		{
			name: "method call on a variable",
			content: `
			class Main {
			    function void main () {
			        var Point p;
			        var int x;
			        let p = Point.new (10, 20);
			        let x = p.getX();
			        return;
			    }
			}`,
			expected: []string{
				"function Main.main 2",
				"push constant 10",
				"push constant 20",
				"call Point.new 2",
				"pop local 0",
				"push local 0",
				"call Point.getX 1",
				"pop local 1",
				"push constant 0",
				"return",
			},
		},
		{
			name: "do",
			content: `
			class Main {
			    function void main () {
			        var int x;
			        let x = 10;
			        do Output.printInt(x);
			        return;
			    }
			}`,
			expected: []string{
				"function Main.main 1",
				"push constant 10",
				"pop local 0",
				"push local 0",
				"call Output.printInt 1",
				"pop temp 0",
				"push constant 0",
				"return",
			},
		},
		{
			name: "methods and constructor",
			content: `
			class Point {
			    field int x, y;

			    method int getX () {
			        return x;
			    }

			    method int getY () {
			        return y;
			    }

			    method void print () {
			        do Output.printInt(getX());
			        do Output.printInt(getY());
			        return;
			    }

			    constructor Point new(int Ax, int Ay) {
			      var int w;
			      let x = Ax;
			      let y = Ay;
			      let w = 42;
			      let x = w;
			      return this;
			   }
			}`,
			expected: []string{
				"function Point.getX 0",
				"push argument 0",
				"pop pointer 0",
				"push this 0",
				"return",
				"function Point.getY 0",
				"push argument 0",
				"pop pointer 0",
				"push this 1",
				"return",
				"function Point.print 0",
				"push argument 0",
				"pop pointer 0",
				"push pointer 0",
				"call Point.getX 1",
				"call Output.printInt 1",
				"pop temp 0",
				"push pointer 0",
				"call Point.getY 1",
				"call Output.printInt 1",
				"pop temp 0",
				"push constant 0",
				"return",
				"function Point.new 1",
				"push constant 2",
				"call Memory.alloc 1",
				"pop pointer 0",
				"push argument 0",
				"pop this 0",
				"push argument 1",
				"pop this 1",
				"push constant 42",
				"pop local 0",
				"push local 0",
				"pop this 0",
				"push pointer 0",
				"return",
			},
		},
		{
			name: "method arguments start after the receiver",
			content: `
			class Counter {
			    field int value;
			    static int created;

			    method void add (int n) {
			        let value = value + n;
			        let created = created + 1;
			        return;
			    }
			}`,
			expected: []string{
				"function Counter.add 0",
				"push argument 0",
				"pop pointer 0",
				"push this 0",
				"push argument 1",
				"add",
				"pop this 0",
				"push static 0",
				"push constant 1",
				"add",
				"pop static 0",
				"push constant 0",
				"return",
			},
		},
		{
			name: "method call on a field",
			content: `
			class Line {
			    field Point start;

			    method int startX () {
			        return start.getX();
			    }
			}`,
			expected: []string{
				"function Line.startX 0",
				"push argument 0",
				"pop pointer 0",
				"push this 0",
				"call Point.getX 1",
				"return",
			},
		},
		{
			name: "labels restart in every subroutine",
			content: `
			class Main {
			    function void a () {
			        while (false) { }
			        if (false) { }
			        return;
			    }
			    function void b () {
			        var int i, j;
			        var char c;
			        while (false) { }
			        if (false) { } else { }
			        return;
			    }
			}`,
			expected: []string{
				"function Main.a 0",
				"label WHILE_EXP0",
				"push constant 0",
				"not",
				"if-goto WHILE_END0",
				"goto WHILE_EXP0",
				"label WHILE_END0",
				"push constant 0",
				"if-goto IF_TRUE0",
				"goto IF_FALSE0",
				"label IF_TRUE0",
				"label IF_FALSE0",
				"label IF_END0",
				"push constant 0",
				"return",
				"function Main.b 3",
				"label WHILE_EXP0",
				"push constant 0",
				"not",
				"if-goto WHILE_END0",
				"goto WHILE_EXP0",
				"label WHILE_END0",
				"push constant 0",
				"if-goto IF_TRUE0",
				"goto IF_FALSE0",
				"label IF_TRUE0",
				"goto IF_END0",
				"label IF_FALSE0",
				"label IF_END0",
				"push constant 0",
				"return",
			},
		},
		{
			name: "static fields are not allocated",
			content: `
			class Box {
			    static int count;
			    field int w, h;
			    constructor Box new () {
			        return this;
			    }
			}`,
			expected: []string{
				"function Box.new 0",
				"push constant 2",
				"call Memory.alloc 1",
				"pop pointer 0",
				"push pointer 0",
				"return",
			},
		},
	}
	for _, data := range testData {
		translator := newTestTranslator(t, data.content, nil)
		err := translator.Translate()
		assert.Nil(t, err, data.name)
		assert.Equal(t, data.expected, listing(translator.Output()), data.name)
	}
}

func TestTranslator_ClassName(t *testing.T) {
	translator := newTestTranslator(t, "class Square { }", nil)
	assert.Nil(t, translator.Translate())
	assert.Equal(t, "Square", translator.ClassName())
	assert.Equal(t, 0, translator.Output().Len())
}

func TestTranslator_Errors(t *testing.T) {
	testData := []struct {
		content string
		kind    error
		message string
	}{
		{
			content: "class Main {",
			kind:    ErrUnexpectedToken,
			message: "[line 1] Error at end: expected '}'",
		},
		{
			content: "class Main {\n  function void main() {\n    let = 1;\n  }\n}",
			kind:    ErrUnexpectedToken,
			message: "[line 3] Error at '=': expected identifier",
		},
		{
			content: "class Main { function void main() { let x = 1; return; } }",
			kind:    ErrUnresolvedSymbol,
			message: "[line 1] Error at 'x': undefined variable x",
		},
		{
			content: "class Main { function void main() { var int x; let x = ; return; } }",
			kind:    ErrUnexpectedToken,
			message: "[line 1] Error at ';': expected a term",
		},
		{
			content: "class Main { function void main() { var int x; let x = 32768; return; } }",
			kind:    ErrUnexpectedToken,
			message: "[line 1] Error at '32768': integer constant out of range 0..32767",
		},
		{
			content: "class Main { function void main() { do Output.printString(\"a\U0001F600\"); return; } }",
			kind:    ErrUnexpectedToken,
			message: "[line 1] Error at 'a\U0001F600': character '\U0001F600' out of range 0..32767",
		},
		{
			content: "class Main { function void main() { do Output.printString(\"\xff\"); return; } }",
			kind:    ErrUnexpectedToken,
		},
		{
			content: "class Main { } class Other { }",
			kind:    ErrUnexpectedToken,
			message: "[line 1] Error at 'class': expected end of input",
		},
		{
			content: "class Main { field int x; static boolean x; }",
			kind:    ErrRedefinedSymbol,
		},
		{
			content: "class Main { function void f(int a) { var int a; return; } }",
			kind:    ErrRedefinedSymbol,
		},
		{
			content: "class Main { function void f() { var int a; let a[1 = 2; return; } }",
			kind:    ErrUnexpectedToken,
			message: "[line 1] Error at ';': expected ']'",
		},
		{
			content: "class Main { function f() { return; } }",
			kind:    ErrUnexpectedToken,
			message: "[line 1] Error at '(': expected identifier",
		},
	}
	for _, data := range testData {
		translator := newTestTranslator(t, data.content, nil)
		err := translator.Translate()
		require.NotNil(t, err, data.content)
		assert.True(t, errors.Is(err, data.kind), data.content)
		var syntaxErr *SyntaxError
		assert.True(t, errors.As(err, &syntaxErr), data.content)
		if data.message != "" {
			assert.Equal(t, data.message, err.Error())
		}
	}
}
