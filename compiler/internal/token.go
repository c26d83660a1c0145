package internal

// Jack language has those elements:
// * KeyWord: class, constructor, function, method, field, static, var, int, char, boolean, void, true.
// 			false, null, this, let, do, if, else, while, return.
// * Symbol: {, }, (, ), [, ], ., ,, ;, +, -, *, /, &, |, <, >, =, ~.
// * Constant: integer, string ("xxx")
// * Identifier: letters, digits, underscore, not starting with a digit.

type TokenType int

const (
	ClassTP              TokenType = iota // class
	ConstructorTP                         // constructor
	FunctionTP                            // function
	MethodTP                              // method
	FieldTP                               // field
	StaticTP                              // static
	VarTP                                 // var
	IntTP                                 // int
	CharTP                                // char
	BooleanTP                             // boolean
	VoidTP                                // void
	TrueTP                                // true
	FalseTP                               // false
	NullTP                                // null
	ThisTP                                // this
	LetTP                                 // let
	DoTP                                  // do
	IfTP                                  // if
	ElseTP                                // else
	WhileTP                               // while
	ReturnTP                              // return
	LeftBraceTP                           // {
	RightBraceTP                          // }
	LeftParentThesesTP                    // (
	RightParentThesesTP                   // )
	LeftSquareBracketTP                   // [
	RightSquareBracketTP                  // ]
	DotTP                                 // .
	CommaTP                               // ,
	SemiColonTP                           // ;
	AddTP                                 // +
	MinusTP                               // -
	MultiplyTP                            // *
	DivideTP                              // /
	AndTP                                 // &
	OrTP                                  // |
	GreaterTP                             // >
	LessTP                                // <
	EqualTP                               // =
	BooleanNegativeTP                     // ~
	IntegerTP                             // 1010
	StringTP                              // "xxx"
	IdentifierTP                          // varA
	EOFTP                                 // end of input
)

// keyWordTokenTPMap is the mapping from identifier to the corresponding TokenTP.
var keyWordTokenTPMap = map[string]TokenType{
	"class":       ClassTP,
	"constructor": ConstructorTP,
	"function":    FunctionTP,
	"method":      MethodTP,
	"field":       FieldTP,
	"static":      StaticTP,
	"var":         VarTP,
	"int":         IntTP,
	"char":        CharTP,
	"boolean":     BooleanTP,
	"void":        VoidTP,
	"true":        TrueTP,
	"false":       FalseTP,
	"null":        NullTP,
	"this":        ThisTP,
	"let":         LetTP,
	"do":          DoTP,
	"if":          IfTP,
	"else":        ElseTP,
	"while":       WhileTP,
	"return":      ReturnTP,
}

// simpleSymbolTokenTPMap is the mapping from a symbol character to the corresponding TokenTP.
var simpleSymbolTokenTPMap = map[string]TokenType{
	"{": LeftBraceTP,
	"}": RightBraceTP,
	"(": LeftParentThesesTP,
	")": RightParentThesesTP,
	"[": LeftSquareBracketTP,
	"]": RightSquareBracketTP,
	".": DotTP,
	",": CommaTP,
	";": SemiColonTP,
	"+": AddTP,
	"-": MinusTP,
	"*": MultiplyTP,
	"/": DivideTP,
	"&": AndTP,
	"|": OrTP,
	">": GreaterTP,
	"<": LessTP,
	"=": EqualTP,
	"~": BooleanNegativeTP,
}

var tokenTPNames = map[TokenType]string{
	IntegerTP:    "integer constant",
	StringTP:     "string constant",
	IdentifierTP: "identifier",
	EOFTP:        "end of input",
}

func init() {
	for name, tp := range keyWordTokenTPMap {
		tokenTPNames[tp] = "'" + name + "'"
	}
	for symbol, tp := range simpleSymbolTokenTPMap {
		tokenTPNames[tp] = "'" + symbol + "'"
	}
}

func (tp TokenType) String() string {
	name, ok := tokenTPNames[tp]
	if !ok {
		return "unknown token"
	}
	return name
}

func (tp TokenType) IsKeyWord() bool {
	return tp >= ClassTP && tp <= ReturnTP
}

func (tp TokenType) IsSymbol() bool {
	return tp >= LeftBraceTP && tp <= BooleanNegativeTP
}

// IsBinaryOp reports whether tp can join two terms of an expression.
func (tp TokenType) IsBinaryOp() bool {
	switch tp {
	case AddTP, MinusTP, MultiplyTP, DivideTP, AndTP, OrTP, GreaterTP, LessTP, EqualTP:
		return true
	}
	return false
}

// Token is produced by the tokenizer and never changed afterwards.
type Token struct {
	Type   TokenType
	Lexeme string
	Line   int
}

func (t Token) Is(tps ...TokenType) bool {
	for _, tp := range tps {
		if t.Type == tp {
			return true
		}
	}
	return false
}

// TokenSource is a pull based token stream. Once the input is exhausted Next keeps
// returning the EOF token.
type TokenSource interface {
	Next() Token
}

// TokenStream serves a tokenized slice as a TokenSource.
type TokenStream struct {
	tokens []Token
	pos    int
}

// NewTokenStream wraps tokens. A trailing EOF token is appended if missing.
func NewTokenStream(tokens []Token) *TokenStream {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != EOFTP {
		line := 1
		if len(tokens) > 0 {
			line = tokens[len(tokens)-1].Line
		}
		tokens = append(tokens, Token{Type: EOFTP, Line: line})
	}
	return &TokenStream{tokens: tokens}
}

func (stream *TokenStream) Next() Token {
	token := stream.tokens[stream.pos]
	if stream.pos < len(stream.tokens)-1 {
		stream.pos++
	}
	return token
}
