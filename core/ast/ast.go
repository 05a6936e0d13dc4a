// Package ast defines the part-tree representation produced by the parser
// and mutated in place by the attribute evaluator.
package ast

// ValueKind identifies the resolved type of an attribute value.
type ValueKind int

const (
	ValueString ValueKind = iota // string literal, symbol, or still-raw expression text
	ValueNumber                  // resolved numeric value
)

// Value is a resolved attribute value: a number or a string.
// Attributes whose expressions never resolve keep their raw source text as a
// string value; callers distinguish the two via the part's raw-attribute map.
type Value struct {
	Kind ValueKind
	Num  float64
	Str  string
}

// Number wraps a float64 as a Value.
func Number(n float64) Value { return Value{Kind: ValueNumber, Num: n} }

// String wraps a string as a Value.
func String(s string) Value { return Value{Kind: ValueString, Str: s} }

// IsNumber reports whether the value is numeric.
func (v Value) IsNumber() bool { return v.Kind == ValueNumber }

// Interface returns the value as an any suitable for JSON encoding.
func (v Value) Interface() any {
	if v.Kind == ValueNumber {
		return v.Num
	}
	return v.Str
}

// PartNode is one named node in the modeled system hierarchy. The tree owns
// its children exclusively: a child is created only when the parser enters a
// nested part block, so the structure is acyclic by construction.
//
// Attribute and child maps keep declaration order in parallel slices so that
// flattened output is reproducible.
type PartNode struct {
	Name string

	attrOrder     []string
	AttributesRaw map[string]string
	AttributesVal map[string]Value

	childOrder []string
	Children   map[string]*PartNode

	// Extras holds raw text of generic statements that appeared inside this
	// part's body and were preserved opaquely rather than interpreted.
	Extras []string
}

// NewPart creates an empty part node.
func NewPart(name string) *PartNode {
	return &PartNode{
		Name:          name,
		AttributesRaw: make(map[string]string),
		AttributesVal: make(map[string]Value),
		Children:      make(map[string]*PartNode),
	}
}

// SetRawAttribute records an unevaluated attribute expression. A repeated
// name overwrites the previous expression but keeps its declaration slot.
func (p *PartNode) SetRawAttribute(name, raw string) {
	if _, ok := p.AttributesRaw[name]; !ok {
		p.attrOrder = append(p.attrOrder, name)
	}
	p.AttributesRaw[name] = raw
	delete(p.AttributesVal, name)
}

// AttrNames returns attribute names in declaration order.
func (p *PartNode) AttrNames() []string {
	return p.attrOrder
}

// AddChild attaches a child part. A name collision with an existing sibling
// replaces that sibling in place, keeping the original declaration slot; this
// is a deliberate policy decision for tolerant parsing of hand-edited models.
func (p *PartNode) AddChild(child *PartNode) {
	if _, ok := p.Children[child.Name]; !ok {
		p.childOrder = append(p.childOrder, child.Name)
	}
	p.Children[child.Name] = child
}

// ChildNames returns child names in declaration order.
func (p *PartNode) ChildNames() []string {
	return p.childOrder
}

// Walk visits this part and every descendant in declaration order.
func (p *PartNode) Walk(fn func(*PartNode)) {
	fn(p)
	for _, name := range p.childOrder {
		p.Children[name].Walk(fn)
	}
}

// Model is a parsed model: an optional package name plus the forest of
// top-level parts in declaration order.
type Model struct {
	PackageName string

	partOrder []string
	Parts     map[string]*PartNode

	// Extras holds raw text of generic statements seen outside any part body.
	Extras []string
}

// NewModel creates an empty model.
func NewModel() *Model {
	return &Model{Parts: make(map[string]*PartNode)}
}

// AddPart attaches a top-level part, with the same replace-on-collision
// policy as PartNode.AddChild.
func (m *Model) AddPart(part *PartNode) {
	if _, ok := m.Parts[part.Name]; !ok {
		m.partOrder = append(m.partOrder, part.Name)
	}
	m.Parts[part.Name] = part
}

// PartNames returns top-level part names in declaration order.
func (m *Model) PartNames() []string {
	return m.partOrder
}

// Walk visits every part in the model, depth first, in declaration order.
func (m *Model) Walk(fn func(*PartNode)) {
	for _, name := range m.partOrder {
		m.Parts[name].Walk(fn)
	}
}
