package internal

import (
	"io"
	"unicode"

	"github.com/xiaobogaga/jackc/util"
)

// A simple Tokenizer for jack. Comments (//, /* */ and /** */) and white spaces are
// dropped, every other lexeme becomes a Token carrying the line it starts on.

type Tokenizer struct {
	currentPos  int
	currentLine int
	source      []byte
	tokens      []Token
}

// Tokenize accepts a source `rd` and tokenizes its content according to jack language rules.
// The returned slice always ends with an EOF token.
func (tokenizer *Tokenizer) Tokenize(rd io.Reader) ([]Token, error) {
	source, err := io.ReadAll(rd)
	if err != nil {
		return nil, err
	}
	tokenizer.Reset()
	tokenizer.source = source
	for {
		token, err := tokenizer.getNextToken()
		if err != nil {
			return nil, err
		}
		tokenizer.tokens = append(tokenizer.tokens, token)
		if token.Type == EOFTP {
			return tokenizer.tokens, nil
		}
	}
}

func (tokenizer *Tokenizer) Reset() {
	tokenizer.currentPos, tokenizer.currentLine = 0, 1
	tokenizer.source, tokenizer.tokens = nil, nil
}

// getNextToken skips spaces and comments and returns the token starting at the current position.
func (tokenizer *Tokenizer) getNextToken() (Token, error) {
	err := tokenizer.skipSpaceAndComments()
	if err != nil {
		return Token{}, err
	}
	if !tokenizer.hasRemainCharacters() {
		return Token{Type: EOFTP, Line: tokenizer.currentLine}, nil
	}
	b := tokenizer.source[tokenizer.currentPos]
	switch {
	case util.IsJackSymbol(b):
		return tokenizer.tokenSimpleSymbol(), nil
	case b == '"':
		return tokenizer.tokenString()
	case util.IsNumber(b):
		return tokenizer.tokenNumber(), nil
	case util.IsLetterOrUnderscore(b):
		return tokenizer.toKeywordOrIdentifier(), nil
	default:
		return Token{}, tokenizer.makeError(string(b), "illegal character")
	}
}

func (tokenizer *Tokenizer) hasRemainCharacters() bool {
	return tokenizer.currentPos < len(tokenizer.source)
}

func (tokenizer *Tokenizer) peekByte(offset int) (byte, bool) {
	pos := tokenizer.currentPos + offset
	if pos >= len(tokenizer.source) {
		return 0, false
	}
	return tokenizer.source[pos], true
}

func (tokenizer *Tokenizer) skipSpaceAndComments() error {
	for tokenizer.hasRemainCharacters() {
		b := tokenizer.source[tokenizer.currentPos]
		if unicode.IsSpace(rune(b)) {
			tokenizer.advance()
			continue
		}
		if b != '/' {
			return nil
		}
		next, _ := tokenizer.peekByte(1)
		switch next {
		case '/':
			tokenizer.skipSingleLineComment()
		case '*':
			err := tokenizer.skipMultipleLineComment()
			if err != nil {
				return err
			}
		default:
			// A divide symbol.
			return nil
		}
	}
	return nil
}

// advance steps one byte forward and keeps track of the line number.
func (tokenizer *Tokenizer) advance() {
	if tokenizer.source[tokenizer.currentPos] == '\n' {
		tokenizer.currentLine++
	}
	tokenizer.currentPos++
}

func (tokenizer *Tokenizer) skipSingleLineComment() {
	for tokenizer.hasRemainCharacters() && tokenizer.source[tokenizer.currentPos] != '\n' {
		tokenizer.currentPos++
	}
}

func (tokenizer *Tokenizer) skipMultipleLineComment() error {
	startLine := tokenizer.currentLine
	tokenizer.currentPos += 2
	for tokenizer.hasRemainCharacters() {
		next, _ := tokenizer.peekByte(1)
		if tokenizer.source[tokenizer.currentPos] == '*' && next == '/' {
			tokenizer.currentPos += 2
			return nil
		}
		tokenizer.advance()
	}
	tokenizer.currentLine = startLine
	return tokenizer.makeError("/*", "incorrect comment format, missing */")
}

func (tokenizer *Tokenizer) tokenSimpleSymbol() Token {
	symbol := string(tokenizer.source[tokenizer.currentPos])
	token := Token{
		Type:   simpleSymbolTokenTPMap[symbol],
		Lexeme: symbol,
		Line:   tokenizer.currentLine,
	}
	tokenizer.currentPos++
	return token
}

// A string constant can't span lines, the quotes are not part of the lexeme.
func (tokenizer *Tokenizer) tokenString() (Token, error) {
	startPos := tokenizer.currentPos
	tokenizer.currentPos++
	for tokenizer.hasRemainCharacters() {
		switch tokenizer.source[tokenizer.currentPos] {
		case '"':
			tokenizer.currentPos++
			return Token{
				Type:   StringTP,
				Lexeme: string(tokenizer.source[startPos+1 : tokenizer.currentPos-1]),
				Line:   tokenizer.currentLine,
			}, nil
		case '\n':
			return Token{}, tokenizer.makeError(string(tokenizer.source[startPos:tokenizer.currentPos]),
				"incorrect string format")
		}
		tokenizer.currentPos++
	}
	return Token{}, tokenizer.makeError(string(tokenizer.source[startPos:]), "incorrect string format")
}

// Range checking of integer constants is left to the parser.
func (tokenizer *Tokenizer) tokenNumber() Token {
	startPos := tokenizer.currentPos
	for tokenizer.hasRemainCharacters() && util.IsNumber(tokenizer.source[tokenizer.currentPos]) {
		tokenizer.currentPos++
	}
	return Token{
		Type:   IntegerTP,
		Lexeme: string(tokenizer.source[startPos:tokenizer.currentPos]),
		Line:   tokenizer.currentLine,
	}
}

func (tokenizer *Tokenizer) toKeywordOrIdentifier() Token {
	startPos := tokenizer.currentPos
	for tokenizer.hasRemainCharacters() && util.IsLetterOrUnderscoreOrNumber(tokenizer.source[tokenizer.currentPos]) {
		tokenizer.currentPos++
	}
	word := string(tokenizer.source[startPos:tokenizer.currentPos])
	tp, isKeyWord := keyWordTokenTPMap[word]
	if !isKeyWord {
		tp = IdentifierTP
	}
	return Token{Type: tp, Lexeme: word, Line: tokenizer.currentLine}
}

// makeError reports the text the scanner stopped at the same way the translator
// reports a token: [line n] Error at 'near': msg.
func (tokenizer *Tokenizer) makeError(near string, msg string) error {
	return &SyntaxError{
		Kind:    ErrIllegalToken,
		Token:   Token{Type: IdentifierTP, Lexeme: near, Line: tokenizer.currentLine},
		Message: msg,
	}
}
