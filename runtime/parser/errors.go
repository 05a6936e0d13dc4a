package parser

import (
	"fmt"
	"strings"

	"github.com/lunarspaceport/partforge/runtime/lexer"
)

// ParseError represents a fatal parsing error with location and context.
// When a parse fails, the partially-built model is discarded.
type ParseError struct {
	Message string
	Pos     lexer.Position
	Input   string
	Context string // what was being parsed: "part block", "block header", ...
}

// Error returns the formatted error message with a source snippet.
func (e *ParseError) Error() string {
	msg := e.Message
	if e.Context != "" {
		msg = fmt.Sprintf("%s (in %s)", msg, e.Context)
	}
	snippet := e.snippet()
	if snippet == "" {
		return fmt.Sprintf("parse error at %d:%d: %s", e.Pos.Line, e.Pos.Column, msg)
	}
	return fmt.Sprintf("parse error: %s\n%s", msg, snippet)
}

// snippet renders the offending line with a caret under the error column.
func (e *ParseError) snippet() string {
	if e.Input == "" || e.Pos.Line == 0 {
		return ""
	}
	lines := strings.Split(e.Input, "\n")
	if e.Pos.Line > len(lines) {
		return ""
	}
	lineContent := lines[e.Pos.Line-1]

	var b strings.Builder
	fmt.Fprintf(&b, "  --> %d:%d\n", e.Pos.Line, e.Pos.Column)
	b.WriteString("   |\n")
	fmt.Fprintf(&b, "%2d | %s\n", e.Pos.Line, lineContent)
	b.WriteString("   | ")
	if e.Pos.Column > 0 && e.Pos.Column <= len(lineContent)+1 {
		b.WriteString(strings.Repeat(" ", e.Pos.Column-1) + "^")
	}
	return b.String()
}

func (p *Parser) errorf(pos lexer.Position, context, format string, args ...any) error {
	return &ParseError{
		Message: fmt.Sprintf(format, args...),
		Pos:     pos,
		Input:   p.input,
		Context: context,
	}
}
