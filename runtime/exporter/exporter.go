// Package exporter flattens an evaluated part tree into the catalog's
// interchange records: one record per part, with dimension blocks folded
// into their parent and numeric attributes normalized to SI.
package exporter

import (
	"fmt"
	"strings"

	"github.com/lunarspaceport/partforge/core/ast"
	"github.com/lunarspaceport/partforge/core/catalog"
	"github.com/lunarspaceport/partforge/runtime/units"
)

// DefaultNamespace is the id namespace used when the caller supplies none.
const DefaultNamespace = "lunarspaceport1"

// dimsSuffix marks a child part as a dimension block: its attributes feed
// the parent's dimensions bucket instead of becoming a record of its own.
const dimsSuffix = "dims"

func isDimsBlock(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), dimsSuffix)
}

// Flatten walks every top-level part and its non-dimension descendants and
// emits one record per part in declaration order.
func Flatten(m *ast.Model, namespace string) []catalog.PartRecord {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	records := make([]catalog.PartRecord, 0, len(m.PartNames()))

	var emit func(p *ast.PartNode, parent string)
	emit = func(p *ast.PartNode, parent string) {
		rec := buildRecord(p, namespace)
		rec.Parent = parent

		for _, name := range p.ChildNames() {
			if !isDimsBlock(name) {
				rec.Children = append(rec.Children, name)
			}
		}
		records = append(records, rec)

		for _, name := range p.ChildNames() {
			if isDimsBlock(name) {
				continue
			}
			emit(p.Children[name], p.Name)
		}
	}

	for _, name := range m.PartNames() {
		emit(m.Parts[name], "")
	}
	return records
}

// buildRecord converts one part to a record, without parent/children linking.
func buildRecord(p *ast.PartNode, namespace string) catalog.PartRecord {
	rec := catalog.PartRecord{
		Type:       "Part",
		ID:         fmt.Sprintf("urn:%s:part:%s:001", namespace, p.Name),
		Name:       p.Name,
		Dimensions: map[string]any{},
		Attributes: map[string]float64{},
		Metadata:   map[string]any{},
	}

	if dims := dimsChild(p); dims != nil {
		fillDimensions(rec.Dimensions, dims)
	}

	for _, name := range p.AttrNames() {
		v := p.AttributesVal[name]
		if v.IsNumber() {
			nk, nv := units.ConvertNumeric(name, v.Num)
			rec.Attributes[nk] = nv
			continue
		}
		// materialRef is hoisted to a top-level field, not metadata
		if name == "materialRef" {
			continue
		}
		rec.Metadata[name] = v.Str
	}

	if ref, ok := p.AttributesVal["materialRef"]; ok && !ref.IsNumber() {
		if s := strings.TrimSpace(ref.Str); s != "" {
			rec.MaterialRef = s
		}
	}
	return rec
}

// dimsChild returns the first dimension-block child in declaration order.
func dimsChild(p *ast.PartNode) *ast.PartNode {
	for _, name := range p.ChildNames() {
		if isDimsBlock(name) {
			return p.Children[name]
		}
	}
	return nil
}

// fillDimensions folds a dimension block into the parent's bucket: the
// length/width/height trio scaled by metersPerUnit becomes the dims_m
// 3-vector, and every other attribute is copied through as-is.
func fillDimensions(dst map[string]any, dims *ast.PartNode) {
	l, lok := numericAttr(dims, "length")
	w, wok := numericAttr(dims, "width")
	h, hok := numericAttr(dims, "height")

	// metersPerUnit defaults to 1 when absent, but a present non-numeric
	// value poisons the whole vector rather than silently scaling by 1.
	mpu, mpuOK := 1.0, true
	if v, declared := dims.AttributesVal["metersPerUnit"]; declared {
		if v.IsNumber() {
			mpu = v.Num
		} else {
			mpuOK = false
		}
	}

	if lok && wok && hok && mpuOK {
		dst["dims_m"] = []float64{l * mpu, w * mpu, h * mpu}
	}

	for _, name := range dims.AttrNames() {
		if name == "length" || name == "width" || name == "height" {
			continue
		}
		dst[name] = dims.AttributesVal[name].Interface()
	}
}

func numericAttr(p *ast.PartNode, name string) (float64, bool) {
	v, ok := p.AttributesVal[name]
	if !ok || !v.IsNumber() {
		return 0, false
	}
	return v.Num, true
}

// Materials extracts material definitions from an evaluated model. Any part
// carrying a non-empty string materialId attribute is treated as a material:
// its numeric attributes become properties (already SI by convention) and its
// remaining string attributes become traceability fields.
func Materials(m *ast.Model) []catalog.MaterialRecord {
	var materials []catalog.MaterialRecord

	var walk func(p *ast.PartNode)
	walk = func(p *ast.PartNode) {
		if rec, ok := materialRecord(p); ok {
			materials = append(materials, rec)
		}
		for _, name := range p.ChildNames() {
			if isDimsBlock(name) {
				continue
			}
			walk(p.Children[name])
		}
	}
	for _, name := range m.PartNames() {
		walk(m.Parts[name])
	}
	return materials
}

func materialRecord(p *ast.PartNode) (catalog.MaterialRecord, bool) {
	id, ok := p.AttributesVal["materialId"]
	if !ok || id.IsNumber() || strings.TrimSpace(id.Str) == "" {
		return catalog.MaterialRecord{}, false
	}

	rec := catalog.MaterialRecord{
		MaterialID: strings.TrimSpace(id.Str),
		Properties: map[string]float64{},
		Traces:     map[string]string{},
	}
	for _, name := range p.AttrNames() {
		if name == "materialId" {
			continue
		}
		v := p.AttributesVal[name]
		if v.IsNumber() {
			rec.Properties[name] = v.Num
			continue
		}
		if s := strings.TrimSpace(v.Str); s != "" {
			rec.Traces[name] = s
		}
	}
	if len(rec.Properties) == 0 {
		rec.Properties = nil
	}
	if len(rec.Traces) == 0 {
		rec.Traces = nil
	}
	return rec, true
}
