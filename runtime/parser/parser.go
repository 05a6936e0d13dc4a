// Package parser turns a model token stream into a Model: a forest of
// PartNode trees holding raw, unevaluated attribute expressions.
//
// The parser is deliberately grammar-tolerant. Every statement is matched
// against a small set of recognized shapes; anything else falls through to a
// generic statement that is preserved opaquely instead of rejected. Only a
// token stream that exhausts itself inside a block or statement is fatal.
package parser

import (
	"strings"

	"github.com/lunarspaceport/partforge/core/ast"
	"github.com/lunarspaceport/partforge/runtime/lexer"
)

// StatementKind identifies the recognized statement shapes.
type StatementKind int

const (
	StmtBlock      StatementKind = iota // keyword head ... '{'
	StmtAttribute                       // attribute <name> [: <type>] [= <value>] ;
	StmtTypedDecl                       // <name> : <type> ;
	StmtAssignment                      // <name> = <value> ;
	StmtGeneric                         // fallback: tokens preserved verbatim
)

// Statement is one parsed statement. Exactly which fields are meaningful
// depends on Kind; Raw always carries the verbatim source text.
type Statement struct {
	Kind     StatementKind
	Keywords []string // block head words, e.g. ["part"], ["part", "def"]
	Name     string
	Type     string
	Value    string // raw right-hand-side source text, unevaluated
	Raw      string
	Pos      lexer.Position
}

// frameKind identifies what a brace-delimited construct contributes to the
// model while it is on the parse stack.
type frameKind int

const (
	framePackage frameKind = iota
	framePart
	frameSkip // unknown keyword block: parsed for shape, never recorded
)

type frame struct {
	kind frameKind
	part *ast.PartNode
}

// Parser is a recursive-descent parser over the lexer's token stream.
type Parser struct {
	input  string
	tokens []lexer.Token
	pos    int

	model *ast.Model
	stack []frame
}

// Parse lexes and parses source text into a Model. On any LexError or
// ParseError the partially-built model is discarded and nil is returned.
func Parse(input string) (*ast.Model, error) {
	tokens, err := lexer.Tokenize(input)
	if err != nil {
		return nil, err
	}

	p := &Parser{
		input:  input,
		tokens: tokens,
		model:  ast.NewModel(),
	}
	if err := p.run(); err != nil {
		return nil, err
	}
	return p.model, nil
}

func (p *Parser) run() error {
	for p.pos < len(p.tokens) {
		tok := p.tokens[p.pos]

		if tok.Type == lexer.RBRACE {
			p.pos++
			// A stray closing brace at the top level is tolerated.
			if len(p.stack) > 0 {
				p.stack = p.stack[:len(p.stack)-1]
			}
			continue
		}

		stmt, opensBlock, err := p.scanStatement()
		if err != nil {
			return err
		}
		p.apply(stmt, opensBlock)
	}

	if len(p.stack) > 0 {
		last := p.tokens[len(p.tokens)-1]
		return p.errorf(last.Pos, "block", "unclosed block: token stream exhausted before matching '}'")
	}
	return nil
}

// scanStatement gathers tokens until a statement terminator. A '{' before a
// ';' marks a block construct; a '}' ends the statement without being
// consumed, so the enclosing block close is still processed.
func (p *Parser) scanStatement() (Statement, bool, error) {
	start := p.tokens[p.pos].Pos
	var body []lexer.Token

	for {
		if p.pos >= len(p.tokens) {
			return Statement{}, false, p.errorf(start, "statement",
				"statement never reaches a terminator: token stream exhausted")
		}
		tok := p.tokens[p.pos]
		switch tok.Type {
		case lexer.LBRACE:
			p.pos++
			return p.classifyBlock(body, start), true, nil
		case lexer.SEMICOLON:
			p.pos++
			return p.classifyStatement(body, start), false, nil
		case lexer.RBRACE:
			// Unterminated fragment directly before a block close: keep it
			// as a generic statement and let the caller handle the brace.
			return p.generic(body, start), false, nil
		default:
			body = append(body, tok)
			p.pos++
		}
	}
}

// classifyBlock interprets the head tokens of a `... {` construct.
func (p *Parser) classifyBlock(head []lexer.Token, start lexer.Position) Statement {
	stmt := Statement{Kind: StmtBlock, Pos: start, Raw: p.rawText(head)}
	if len(head) == 0 {
		return stmt
	}

	words := head
	if words[0].Type == lexer.IDENT {
		stmt.Keywords = append(stmt.Keywords, words[0].Text)
		words = words[1:]
		if stmt.Keywords[0] == lexer.KeywordPart && len(words) > 0 &&
			words[0].Type == lexer.IDENT && words[0].Text == lexer.KeywordDef {
			stmt.Keywords = append(stmt.Keywords, words[0].Text)
			words = words[1:]
		}
	}

	// Optional name, then an optional `: Type` suffix.
	if len(words) > 0 && (words[0].Type == lexer.IDENT || words[0].Type == lexer.STRING) {
		stmt.Name = words[0].Text
		words = words[1:]
	}
	if len(words) >= 2 && words[0].Type == lexer.COLON && words[1].Type == lexer.IDENT {
		stmt.Type = words[1].Text
	}
	return stmt
}

// classifyStatement matches a `... ;` statement against the recognized
// shapes, falling back to a generic statement.
func (p *Parser) classifyStatement(body []lexer.Token, start lexer.Position) Statement {
	if len(body) == 0 {
		return Statement{Kind: StmtGeneric, Pos: start}
	}

	// attribute <name> [: <type>] [= <value>] ;
	if body[0].Type == lexer.IDENT && body[0].Text == lexer.KeywordAttribute &&
		len(body) >= 2 && body[1].Type == lexer.IDENT {
		stmt := Statement{
			Kind:     StmtAttribute,
			Keywords: []string{lexer.KeywordAttribute},
			Name:     body[1].Text,
			Pos:      start,
			Raw:      p.rawText(body),
		}
		rest := body[2:]
		if len(rest) >= 2 && rest[0].Type == lexer.COLON && rest[1].Type == lexer.IDENT {
			stmt.Type = rest[1].Text
			rest = rest[2:]
		}
		if len(rest) >= 2 && rest[0].Type == lexer.EQUALS {
			stmt.Value = p.rawText(rest[1:])
		}
		return stmt
	}

	// <name> = <value> ;
	if len(body) >= 3 && body[0].Type == lexer.IDENT && body[1].Type == lexer.EQUALS {
		return Statement{
			Kind:  StmtAssignment,
			Name:  body[0].Text,
			Value: p.rawText(body[2:]),
			Pos:   start,
			Raw:   p.rawText(body),
		}
	}

	// <name> : <type> ;
	if len(body) == 3 && body[0].Type == lexer.IDENT &&
		body[1].Type == lexer.COLON && body[2].Type == lexer.IDENT {
		return Statement{
			Kind: StmtTypedDecl,
			Name: body[0].Text,
			Type: body[2].Text,
			Pos:  start,
			Raw:  p.rawText(body),
		}
	}

	return p.generic(body, start)
}

func (p *Parser) generic(body []lexer.Token, start lexer.Position) Statement {
	return Statement{Kind: StmtGeneric, Pos: start, Raw: p.rawText(body)}
}

// rawText reconstructs the verbatim source slice spanned by tokens,
// preserving original spacing and quoting.
func (p *Parser) rawText(tokens []lexer.Token) string {
	if len(tokens) == 0 {
		return ""
	}
	first, last := tokens[0], tokens[len(tokens)-1]
	return strings.TrimSpace(p.input[first.Pos.Offset:last.End()])
}

// apply folds a statement into the model under the current construct stack.
func (p *Parser) apply(stmt Statement, opensBlock bool) {
	if opensBlock {
		p.applyBlock(stmt)
		return
	}
	if p.skipping() {
		return
	}

	switch stmt.Kind {
	case StmtAttribute:
		if part := p.currentPart(); part != nil && stmt.Value != "" {
			part.SetRawAttribute(stmt.Name, stmt.Value)
		}
	case StmtAssignment, StmtTypedDecl:
		// Recognized shapes with no model effect; only the attribute
		// keyword writes to a part. Preserved like generics.
		p.recordExtra(stmt.Raw)
	case StmtGeneric:
		if stmt.Raw != "" {
			p.recordExtra(stmt.Raw)
		}
	}
}

func (p *Parser) applyBlock(stmt Statement) {
	if p.skipping() {
		p.stack = append(p.stack, frame{kind: frameSkip})
		return
	}

	head := ""
	if len(stmt.Keywords) > 0 {
		head = stmt.Keywords[0]
	}

	switch head {
	case lexer.KeywordPackage:
		// A repeated package block overwrites: the last name wins.
		if stmt.Name != "" {
			p.model.PackageName = stmt.Name
		}
		p.stack = append(p.stack, frame{kind: framePackage})

	case lexer.KeywordPart:
		if stmt.Name == "" {
			p.stack = append(p.stack, frame{kind: frameSkip})
			return
		}
		node := ast.NewPart(stmt.Name)
		if parent := p.currentPart(); parent != nil {
			parent.AddChild(node)
		} else {
			p.model.AddPart(node)
		}
		p.stack = append(p.stack, frame{kind: framePart, part: node})

	default:
		// Unknown keyword block (requirement, item, ...): recognized by
		// shape, parsed for nesting, never entered into the model.
		p.stack = append(p.stack, frame{kind: frameSkip})
	}
}

// currentPart returns the innermost enclosing part, if any.
func (p *Parser) currentPart() *ast.PartNode {
	for i := len(p.stack) - 1; i >= 0; i-- {
		if p.stack[i].kind == framePart {
			return p.stack[i].part
		}
	}
	return nil
}

// skipping reports whether the innermost construct is an ignored block.
func (p *Parser) skipping() bool {
	return len(p.stack) > 0 && p.stack[len(p.stack)-1].kind == frameSkip
}

func (p *Parser) recordExtra(raw string) {
	if part := p.currentPart(); part != nil {
		part.Extras = append(part.Extras, raw)
		return
	}
	p.model.Extras = append(p.model.Extras, raw)
}
