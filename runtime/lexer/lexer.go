// Package lexer streams raw model source into a typed token sequence,
// discarding whitespace and comments. Every other byte of input belongs to
// exactly one token, or lexing fails with a LexError naming the offset.
package lexer

import "fmt"

// ASCII character lookup tables for fast classification.
var (
	isSpace     [128]bool
	isDigit     [128]bool
	isWordStart [128]bool
	isWordPart  [128]bool
)

func init() {
	for i := 0; i < 128; i++ {
		ch := byte(i)
		isSpace[i] = ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' || ch == '\f'
		isDigit[i] = '0' <= ch && ch <= '9'
		isWordStart[i] = ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') || ch == '_'
		isWordPart[i] = isWordStart[i] || isDigit[i]
	}
}

// singleCharTokens maps structural punctuation to token types.
var singleCharTokens = map[byte]TokenType{
	'{': LBRACE,
	'}': RBRACE,
	'[': LSQUARE,
	']': RSQUARE,
	':': COLON, // overridden to IDENT when part of "::"
	';': SEMICOLON,
	'=': EQUALS,
	',': COMMA,
}

// LexError reports a byte the lexer could not assign to any token.
type LexError struct {
	Offset  int
	Line    int
	Column  int
	Message string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lex error at %d:%d (offset %d): %s", e.Line, e.Column, e.Offset, e.Message)
}

// Lexer scans model source text.
type Lexer struct {
	input  string
	pos    int // current byte offset
	line   int
	column int

	// last significant token type, used to disambiguate a sign prefix
	// from a subtraction/addition symbol
	prevType TokenType
	started  bool
}

// New creates a lexer over the given source text.
func New(input string) *Lexer {
	return &Lexer{input: input, line: 1, column: 1}
}

// Tokenize scans the whole input and returns the token sequence, excluding
// the trailing EOF token.
func Tokenize(input string) ([]Token, error) {
	l := New(input)
	var tokens []Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		if tok.Type == EOF {
			return tokens, nil
		}
		tokens = append(tokens, tok)
	}
}

func (l *Lexer) errorf(pos Position, format string, args ...any) error {
	return &LexError{
		Offset:  pos.Offset,
		Line:    pos.Line,
		Column:  pos.Column,
		Message: fmt.Sprintf(format, args...),
	}
}

func (l *Lexer) position() Position {
	return Position{Line: l.line, Column: l.column, Offset: l.pos}
}

func (l *Lexer) peek() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) peekAt(n int) byte {
	if l.pos+n >= len(l.input) {
		return 0
	}
	return l.input[l.pos+n]
}

func (l *Lexer) advance() {
	if l.pos >= len(l.input) {
		return
	}
	if l.input[l.pos] == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	l.pos++
}

// Next returns the next token, or a LexError.
func (l *Lexer) Next() (Token, error) {
	if err := l.skipTrivia(); err != nil {
		return Token{}, err
	}

	start := l.position()
	ch := l.peek()

	switch {
	case ch == 0:
		return Token{Type: EOF, Pos: start}, nil

	case ch == '"' || ch == '\'':
		return l.lexString(start, ch)

	case isDigit[ch]:
		return l.emit(l.lexNumber(start)), nil

	case (ch == '-' || ch == '+') && isDigitByte(l.peekAt(1)) && l.signStartsNumber():
		return l.emit(l.lexNumber(start)), nil

	case ch < 128 && isWordStart[ch]:
		return l.emit(l.lexWord(start)), nil

	case ch == ':' && l.peekAt(1) == ':':
		// scope-resolution glues into an identifier run: Pkg::Sub::*
		return l.emit(l.lexWord(start)), nil

	case isStructural(ch):
		typ := singleCharTokens[ch]
		l.advance()
		text := l.input[start.Offset:l.pos]
		return l.emit(Token{Type: typ, Text: text, Raw: text, Pos: start}), nil

	case ch >= 0x21 && ch <= 0x7e:
		// Any other printable symbol is a one-character identifier-or-symbol
		// token; the grammar layer decides what it means.
		l.advance()
		text := l.input[start.Offset:l.pos]
		return l.emit(Token{Type: IDENT, Text: text, Raw: text, Pos: start}), nil

	default:
		return Token{}, l.errorf(start, "unexpected byte 0x%02x", ch)
	}
}

// signStartsNumber reports whether a leading +/- should be read as a numeric
// sign rather than an arithmetic symbol. A sign is only plausible when the
// previous significant token could not be the left operand of a binary
// expression.
func (l *Lexer) signStartsNumber() bool {
	if !l.started {
		return true
	}
	switch l.prevType {
	case NUMBER, STRING, RBRACE, RSQUARE:
		return false
	case IDENT:
		return false
	default:
		return true
	}
}

func (l *Lexer) emit(tok Token) Token {
	l.prevType = tok.Type
	l.started = true
	return tok
}

// skipTrivia discards whitespace, // line comments and /* */ block comments.
func (l *Lexer) skipTrivia() error {
	for {
		ch := l.peek()
		switch {
		case ch != 0 && ch < 128 && isSpace[ch]:
			l.advance()

		case ch == '/' && l.peekAt(1) == '/':
			for l.peek() != 0 && l.peek() != '\n' {
				l.advance()
			}

		case ch == '/' && l.peekAt(1) == '*':
			start := l.position()
			l.advance()
			l.advance()
			for {
				if l.peek() == 0 {
					return l.errorf(start, "unterminated block comment")
				}
				if l.peek() == '*' && l.peekAt(1) == '/' {
					l.advance()
					l.advance()
					break
				}
				l.advance()
			}

		case ch >= 128:
			return l.errorf(l.position(), "unexpected byte 0x%02x", ch)

		default:
			return nil
		}
	}
}

// lexString scans a quoted literal. Either quote style is accepted and there
// is no escape processing: the literal runs to the next matching quote.
func (l *Lexer) lexString(start Position, quote byte) (Token, error) {
	l.advance() // opening quote
	for {
		ch := l.peek()
		if ch == 0 || ch == '\n' {
			return Token{}, l.errorf(start, "unterminated string literal")
		}
		if ch == quote {
			l.advance()
			raw := l.input[start.Offset:l.pos]
			return l.emit(Token{
				Type: STRING,
				Text: raw[1 : len(raw)-1],
				Raw:  raw,
				Pos:  start,
			}), nil
		}
		l.advance()
	}
}

// lexNumber scans an optionally-signed, optionally-fractional decimal.
func (l *Lexer) lexNumber(start Position) Token {
	if ch := l.peek(); ch == '-' || ch == '+' {
		l.advance()
	}
	for isDigitByte(l.peek()) {
		l.advance()
	}
	if l.peek() == '.' && isDigitByte(l.peekAt(1)) {
		l.advance()
		for isDigitByte(l.peek()) {
			l.advance()
		}
	}
	text := l.input[start.Offset:l.pos]
	return Token{Type: NUMBER, Text: text, Raw: text, Pos: start}
}

// lexWord scans a maximal identifier-or-symbol run: word characters plus the
// scope-resolution symbol "::" and a trailing wildcard "*" after "::", so
// qualified names like Tanks::O2Tank and imports like Tanks::* stay single
// tokens.
func (l *Lexer) lexWord(start Position) Token {
	for {
		ch := l.peek()
		switch {
		case ch < 128 && isWordPart[ch]:
			l.advance()
		case ch == ':' && l.peekAt(1) == ':':
			l.advance()
			l.advance()
			if l.peek() == '*' {
				l.advance()
			}
		default:
			text := l.input[start.Offset:l.pos]
			return Token{Type: IDENT, Text: text, Raw: text, Pos: start}
		}
	}
}

func isDigitByte(ch byte) bool {
	return ch != 0 && ch < 128 && isDigit[ch]
}

func isStructural(ch byte) bool {
	if ch == 0 || ch >= 128 {
		return false
	}
	_, ok := singleCharTokens[ch]
	return ok
}
