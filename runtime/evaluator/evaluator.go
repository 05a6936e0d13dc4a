// Package evaluator resolves raw attribute expressions across a whole Model.
//
// Resolution is global rather than per-part: an expression may reference
// attributes of siblings or ancestors by bare name or dotted path, so the
// evaluator iterates the Model to a fixed point, rebuilding a flat numeric
// environment before each pass. The loop is capped; attributes that never
// resolve keep their raw expression text as a string value.
package evaluator

import (
	"sort"
	"strconv"
	"strings"

	"github.com/lunarspaceport/partforge/core/ast"
)

// MaxPasses bounds the fixed-point loop. Circular references stop making
// progress well before this, but the cap guarantees termination regardless.
const MaxPasses = 10

// Report describes one evaluation run.
type Report struct {
	Passes     int
	Unresolved []string // dotted paths of attributes still holding raw text
}

// Evaluate seeds literals and then resolves symbolic expressions to a fixed
// point, mutating the model's attribute values in place.
func Evaluate(m *ast.Model) Report {
	return EvaluateN(m, MaxPasses)
}

// EvaluateN is Evaluate with an explicit pass cap.
func EvaluateN(m *ast.Model, maxPasses int) Report {
	SeedLiterals(m)

	var report Report
	for pass := 1; pass <= maxPasses; pass++ {
		report.Passes = pass
		if !resolvePass(m) {
			break
		}
	}

	walkPaths(m, func(path string, p *ast.PartNode) {
		for _, name := range p.AttrNames() {
			if stillUnresolved(p, name) {
				report.Unresolved = append(report.Unresolved, path+"."+name)
			}
		}
	})
	sort.Strings(report.Unresolved)
	return report
}

// SeedLiterals gives every raw attribute an initial value: quoted text
// becomes a string, a plain signed decimal becomes a number, and everything
// else keeps its raw expression text pending symbolic resolution.
func SeedLiterals(m *ast.Model) {
	m.Walk(func(p *ast.PartNode) {
		for _, name := range p.AttrNames() {
			raw := p.AttributesRaw[name]
			if s, ok := unquote(raw); ok {
				p.AttributesVal[name] = ast.String(s)
				continue
			}
			if s := strings.TrimSpace(raw); isDecimalLiteral(s) {
				if n, err := strconv.ParseFloat(s, 64); err == nil {
					p.AttributesVal[name] = ast.Number(n)
					continue
				}
			}
			p.AttributesVal[name] = ast.String(raw)
		}
	})
}

// resolvePass rebuilds the environment from scratch and tries every
// unresolved attribute once. It reports whether anything resolved, so the
// caller can stop at the fixed point.
func resolvePass(m *ast.Model) bool {
	env := BuildEnv(m)
	changed := false

	m.Walk(func(p *ast.PartNode) {
		for _, name := range p.AttrNames() {
			if !stillUnresolved(p, name) {
				continue
			}
			// An EvaluationError here just leaves the attribute for the
			// next pass; it is never surfaced as a run failure.
			v, err := Eval(p.AttributesRaw[name], env)
			if err != nil {
				continue
			}
			p.AttributesVal[name] = ast.Number(v)
			changed = true
		}
	})
	return changed
}

// BuildEnv flattens every numeric attribute in the model into one lookup
// table keyed three ways: bare name, owner-qualified name, and the full
// dot-joined path from the root. Later parts overwrite earlier entries for
// the same key; only the freshest environment matters each pass.
func BuildEnv(m *ast.Model) map[string]float64 {
	env := make(map[string]float64)
	walkPaths(m, func(path string, p *ast.PartNode) {
		for _, name := range p.AttrNames() {
			v := p.AttributesVal[name]
			if !v.IsNumber() {
				continue
			}
			env[name] = v.Num
			env[p.Name+"."+name] = v.Num
			env[path+"."+name] = v.Num
		}
	})
	return env
}

// stillUnresolved reports whether an attribute needs another resolution
// attempt: it holds no number and its raw text was not a quoted literal.
func stillUnresolved(p *ast.PartNode, name string) bool {
	if p.AttributesVal[name].IsNumber() {
		return false
	}
	_, quoted := unquote(p.AttributesRaw[name])
	return !quoted
}

// isDecimalLiteral reports whether s is an optionally-signed, optionally-
// fractional decimal: the only numeric form seeded as a literal. ParseFloat
// alone is far too permissive here (Inf, NaN, exponents, hex floats), and a
// name like Inf must stay a symbolic reference.
func isDecimalLiteral(s string) bool {
	if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
		s = s[1:]
	}
	intPart, rest, hasDot := strings.Cut(s, ".")
	if !allDigits(intPart) {
		return false
	}
	if hasDot {
		return allDigits(rest)
	}
	return true
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// unquote strips one level of matching single or double quotes. There is no
// escape processing, mirroring the lexer's string rules.
func unquote(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if len(s) < 2 {
		return "", false
	}
	q := s[0]
	if (q == '"' || q == '\'') && s[len(s)-1] == q {
		return s[1 : len(s)-1], true
	}
	return "", false
}

// walkPaths visits every part with its dot-joined ancestor path.
func walkPaths(m *ast.Model, fn func(path string, p *ast.PartNode)) {
	var walk func(path string, p *ast.PartNode)
	walk = func(path string, p *ast.PartNode) {
		fn(path, p)
		for _, name := range p.ChildNames() {
			walk(path+"."+name, p.Children[name])
		}
	}
	for _, name := range m.PartNames() {
		walk(name, m.Parts[name])
	}
}
