package internal

import (
	"fmt"
	"strings"
)

// Tracer records the productions recognized by the translator as tagged text:
//
//	<letStatement>
//	<keyword> let </keyword>
//	<identifier> x </identifier>
//	...
//	</letStatement>
//
// It is only used to check the grammar, the vm code doesn't depend on it.
// A nil *Tracer records nothing.
type Tracer struct {
	builder strings.Builder
}

func NewTracer() *Tracer {
	return &Tracer{}
}

func (tracer *Tracer) open(production string) {
	if tracer == nil {
		return
	}
	fmt.Fprintf(&tracer.builder, "<%s>\n", production)
}

func (tracer *Tracer) close(production string) {
	if tracer == nil {
		return
	}
	fmt.Fprintf(&tracer.builder, "</%s>\n", production)
}

func (tracer *Tracer) token(token Token) {
	if tracer == nil || token.Type == EOFTP {
		return
	}
	tag := tokenTag(token.Type)
	fmt.Fprintf(&tracer.builder, "<%s> %s </%s>\n", tag, escapeTraceText(token.Lexeme), tag)
}

func (tracer *Tracer) String() string {
	if tracer == nil {
		return ""
	}
	return tracer.builder.String()
}

func tokenTag(tp TokenType) string {
	switch {
	case tp.IsKeyWord():
		return "keyword"
	case tp.IsSymbol():
		return "symbol"
	case tp == IntegerTP:
		return "integerConstant"
	case tp == StringTP:
		return "stringConstant"
	default:
		return "identifier"
	}
}

var traceEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escapeTraceText(text string) string {
	return traceEscaper.Replace(text)
}
