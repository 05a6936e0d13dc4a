package lexer

import "fmt"

// TokenType represents lexical tokens of the modeling DSL.
type TokenType int

const (
	// Special tokens
	EOF TokenType = iota
	ILLEGAL

	// Structure
	LBRACE    // {
	RBRACE    // }
	LSQUARE   // [
	RSQUARE   // ]
	COLON     // :
	SEMICOLON // ;
	EQUALS    // =
	COMMA     // ,

	// Literals and content
	STRING // "text" or 'text', no escape processing
	NUMBER // 42, -3.5, +0.25
	IDENT  // identifier-or-symbol: word runs, ::-qualified names, single symbols
)

// Pre-computed token name lookup for debugging and error messages.
var tokenNames = [...]string{
	EOF:       "EOF",
	ILLEGAL:   "ILLEGAL",
	LBRACE:    "LBRACE",
	RBRACE:    "RBRACE",
	LSQUARE:   "LSQUARE",
	RSQUARE:   "RSQUARE",
	COLON:     "COLON",
	SEMICOLON: "SEMICOLON",
	EQUALS:    "EQUALS",
	COMMA:     "COMMA",
	STRING:    "STRING",
	NUMBER:    "NUMBER",
	IDENT:     "IDENT",
}

func (t TokenType) String() string {
	if int(t) >= 0 && int(t) < len(tokenNames) {
		return tokenNames[t]
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Position is a location in the source text.
type Position struct {
	Line   int // 1-based line number
	Column int // 1-based column number
	Offset int // 0-based byte offset
}

// Token is a single lexical token.
//
// Text carries the token's value (string literals without their quotes);
// Raw carries the verbatim source slice, so the parser can reconstruct
// expression text exactly as written.
type Token struct {
	Type TokenType
	Text string
	Raw  string
	Pos  Position
}

// End returns the byte offset just past this token in the source.
func (t Token) End() int {
	return t.Pos.Offset + len(t.Raw)
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)", t.Type, t.Text)
}

// Keywords that open model-level block constructs. Identifiers are never
// reserved: these only matter in head position of a block or statement.
const (
	KeywordPackage   = "package"
	KeywordPart      = "part"
	KeywordDef       = "def"
	KeywordAttribute = "attribute"
)
