package evaluator

import (
	"fmt"
	"math"
	"strconv"
)

// EvaluationError reports an expression the restricted interpreter refuses to
// evaluate. It is always handled inside the fixed-point loop and never
// escapes to callers of Evaluate.
type EvaluationError struct {
	Expr    string
	Message string
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("cannot evaluate %q: %s", e.Expr, e.Message)
}

// The interpreter accepts a closed set of constructs: numeric literals,
// bare or dotted attribute references, unary +/-, binary + - * / ^ and
// parenthesized grouping. Model text is author-editable and untrusted, so
// everything outside this allow-list (calls, comparisons, subscripts,
// strings) raises an EvaluationError at parse time. Disallowed syntax never
// reaches evaluation.
type exprNode interface {
	eval(env map[string]float64) (float64, error)
}

type numberNode float64

type refNode string

type unaryNode struct {
	op      byte // '+' or '-'
	operand exprNode
}

type binaryNode struct {
	op    byte // '+', '-', '*', '/', '^'
	left  exprNode
	right exprNode
}

// Eval parses and evaluates a restricted arithmetic expression against a
// flat numeric environment.
func Eval(expr string, env map[string]float64) (float64, error) {
	p := &exprParser{src: expr}
	node, err := p.parse()
	if err != nil {
		return 0, err
	}
	return node.eval(env)
}

type exprParser struct {
	src string
	pos int
}

func (p *exprParser) fail(format string, args ...any) error {
	return &EvaluationError{Expr: p.src, Message: fmt.Sprintf(format, args...)}
}

func (p *exprParser) parse() (exprNode, error) {
	node, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos < len(p.src) {
		return nil, p.fail("unexpected %q at offset %d", p.src[p.pos], p.pos)
	}
	return node, nil
}

// parseSum handles the lowest precedence tier: + and -.
func (p *exprParser) parseSum() (exprNode, error) {
	node, err := p.parseProduct()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.acceptOp('+', '-')
		if !ok {
			return node, nil
		}
		right, err := p.parseProduct()
		if err != nil {
			return nil, err
		}
		node = binaryNode{op: op, left: node, right: right}
	}
}

func (p *exprParser) parseProduct() (exprNode, error) {
	node, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.acceptOp('*', '/')
		if !ok {
			return node, nil
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		node = binaryNode{op: op, left: node, right: right}
	}
}

// parseUnary sits above parsePower so the exponent binds tighter than a
// leading sign: -2^2 is -(2^2).
func (p *exprParser) parseUnary() (exprNode, error) {
	if op, ok := p.acceptOp('+', '-'); ok {
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return unaryNode{op: op, operand: operand}, nil
	}
	return p.parsePower()
}

// parsePower handles '^'. The exponent re-enters at parseUnary, which makes
// the operator right-associative (2^3^2 is 2^(3^2)) and lets it take a
// signed exponent directly.
func (p *exprParser) parsePower() (exprNode, error) {
	node, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if op, ok := p.acceptOp('^'); ok {
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return binaryNode{op: op, left: node, right: right}, nil
	}
	return node, nil
}

func (p *exprParser) parsePrimary() (exprNode, error) {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return nil, p.fail("unexpected end of expression")
	}
	ch := p.src[p.pos]

	switch {
	case ch == '(':
		p.pos++
		node, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if p.pos >= len(p.src) || p.src[p.pos] != ')' {
			return nil, p.fail("missing closing parenthesis")
		}
		p.pos++
		return node, nil

	case ch >= '0' && ch <= '9' || ch == '.':
		return p.parseNumber()

	case isRefStart(ch):
		return p.parseRef()

	default:
		return nil, p.fail("disallowed construct %q at offset %d", ch, p.pos)
	}
}

func (p *exprParser) parseNumber() (exprNode, error) {
	start := p.pos
	for p.pos < len(p.src) && (isDigit(p.src[p.pos]) || p.src[p.pos] == '.') {
		p.pos++
	}
	text := p.src[start:p.pos]
	n, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, p.fail("malformed number %q", text)
	}
	return numberNode(n), nil
}

// parseRef scans a bare or dotted attribute path: x, Tank.volume,
// Module.Tank.mass. Each dot must be followed by another name segment.
func (p *exprParser) parseRef() (exprNode, error) {
	start := p.pos
	for {
		for p.pos < len(p.src) && isRefPart(p.src[p.pos]) {
			p.pos++
		}
		if p.pos < len(p.src) && p.src[p.pos] == '.' &&
			p.pos+1 < len(p.src) && isRefStart(p.src[p.pos+1]) {
			p.pos++
			continue
		}
		break
	}
	return refNode(p.src[start:p.pos]), nil
}

func (p *exprParser) acceptOp(ops ...byte) (byte, bool) {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return 0, false
	}
	ch := p.src[p.pos]
	for _, op := range ops {
		if ch == op {
			p.pos++
			return op, true
		}
	}
	return 0, false
}

func (p *exprParser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func isDigit(ch byte) bool { return '0' <= ch && ch <= '9' }

func isRefStart(ch byte) bool {
	return ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') || ch == '_'
}

func isRefPart(ch byte) bool { return isRefStart(ch) || isDigit(ch) }

func (n numberNode) eval(map[string]float64) (float64, error) {
	return float64(n), nil
}

func (n refNode) eval(env map[string]float64) (float64, error) {
	v, ok := env[string(n)]
	if !ok {
		return 0, &EvaluationError{Expr: string(n), Message: "unknown reference"}
	}
	return v, nil
}

func (n unaryNode) eval(env map[string]float64) (float64, error) {
	v, err := n.operand.eval(env)
	if err != nil {
		return 0, err
	}
	if n.op == '-' {
		return -v, nil
	}
	return v, nil
}

func (n binaryNode) eval(env map[string]float64) (float64, error) {
	left, err := n.left.eval(env)
	if err != nil {
		return 0, err
	}
	right, err := n.right.eval(env)
	if err != nil {
		return 0, err
	}
	switch n.op {
	case '+':
		return left + right, nil
	case '-':
		return left - right, nil
	case '*':
		return left * right, nil
	case '/':
		if right == 0 {
			return 0, &EvaluationError{Message: "division by zero"}
		}
		return left / right, nil
	case '^':
		return math.Pow(left, right), nil
	}
	return 0, &EvaluationError{Message: fmt.Sprintf("disallowed operator %q", n.op)}
}
