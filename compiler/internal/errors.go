package internal

import (
	"errors"
	"fmt"
)

var (
	ErrUnexpectedToken = errors.New("unexpected token")
	ErrIllegalToken    = errors.New("tokenizer error")
)

// SyntaxError stops the compilation of a class. Kind is one of ErrUnexpectedToken,
// ErrIllegalToken, ErrUnresolvedSymbol or ErrRedefinedSymbol.
type SyntaxError struct {
	Kind    error
	Token   Token
	Message string
}

// Error renders the diagnostic line: [line 3] Error at 'x': message.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("[line %d] Error %s: %s", e.Token.Line, e.location(), e.Message)
}

func (e *SyntaxError) location() string {
	if e.Token.Type == EOFTP {
		return "at end"
	}
	return fmt.Sprintf("at '%s'", e.Token.Lexeme)
}

func (e *SyntaxError) Unwrap() error {
	return e.Kind
}

// IsDiagnosed reports whether err already had its diagnostic line written by
// CompileSource.
func IsDiagnosed(err error) bool {
	var syntaxErr *SyntaxError
	return errors.As(err, &syntaxErr)
}
