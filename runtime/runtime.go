// Package runtime wires the compilation pipeline end to end: lex, parse,
// evaluate attributes to a fixed point, and flatten into catalog records.
package runtime

import (
	"fmt"

	"github.com/lunarspaceport/partforge/core/ast"
	"github.com/lunarspaceport/partforge/core/catalog"
	"github.com/lunarspaceport/partforge/runtime/evaluator"
	"github.com/lunarspaceport/partforge/runtime/exporter"
	"github.com/lunarspaceport/partforge/runtime/parser"
)

// Options controls one compilation run.
type Options struct {
	// Namespace is the id namespace for synthesized part ids.
	Namespace string

	// MaxPasses caps the evaluator's fixed-point loop. Zero means the
	// evaluator default.
	MaxPasses int

	// StrictUnresolved turns attributes left unresolved after the pass cap
	// into a compilation error instead of exporting them as raw strings.
	StrictUnresolved bool
}

// Result is the output of a successful compilation.
type Result struct {
	Model      *ast.Model
	Records    []catalog.PartRecord
	Unresolved []string // dotted attribute paths that never resolved
	Passes     int
}

// Compile runs source text through the whole pipeline. Lex and parse
// failures abort; unresolved attributes abort only under StrictUnresolved.
func Compile(source string, opts Options) (*Result, error) {
	model, err := parser.Parse(source)
	if err != nil {
		return nil, err
	}

	maxPasses := opts.MaxPasses
	if maxPasses <= 0 {
		maxPasses = evaluator.MaxPasses
	}
	report := evaluator.EvaluateN(model, maxPasses)

	if opts.StrictUnresolved && len(report.Unresolved) > 0 {
		return nil, fmt.Errorf("%d attribute(s) unresolved after %d passes: %v",
			len(report.Unresolved), report.Passes, report.Unresolved)
	}

	return &Result{
		Model:      model,
		Records:    exporter.Flatten(model, opts.Namespace),
		Unresolved: report.Unresolved,
		Passes:     report.Passes,
	}, nil
}

// Materials parses and evaluates source text, then extracts its material
// definitions.
func Materials(source string) ([]catalog.MaterialRecord, error) {
	model, err := parser.Parse(source)
	if err != nil {
		return nil, err
	}
	evaluator.Evaluate(model)
	return exporter.Materials(model), nil
}
