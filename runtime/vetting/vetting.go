// Package vetting turns an untrusted flat record list into a consistent,
// acyclic, fully-linked part catalog.
//
// Records may come from this module's own exporter or from any external
// producer; the boundary is treated as hostile either way. Vetting runs
// three sequential passes: per-record schema validation, referential and
// bidirectional link reconciliation, and whole-graph reachability and cycle
// checks. The first violation aborts with a VettingError and no catalog.
package vetting

import (
	"fmt"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/lunarspaceport/partforge/core/catalog"
)

// assetExtensions are the accepted 3D asset file suffixes.
var assetExtensions = []string{".usd", ".usda", ".usdz"}

// VettedPart is one fully-validated catalog entry with its physical fields
// lifted out of the record's loose maps.
type VettedPart struct {
	Raw catalog.PartRecord

	Name string
	UID  string
	Type string

	DimsM         [3]float64
	MetersPerUnit float64
	UpAxis        string
	Translate     [3]float64

	GeomPath     string
	MaterialPath string

	Parent   string // empty for roots
	Children []string
}

// Catalog is the vetted name-keyed part set, preserving input order.
type Catalog struct {
	order []string
	parts map[string]*VettedPart
}

// Names returns part names in input order.
func (c *Catalog) Names() []string { return c.order }

// Len returns the number of vetted parts.
func (c *Catalog) Len() int { return len(c.order) }

// Get looks up a part by name.
func (c *Catalog) Get(name string) (*VettedPart, bool) {
	vp, ok := c.parts[name]
	return vp, ok
}

// Roots returns the names of all parts without a parent, in input order.
func (c *Catalog) Roots() []string {
	var roots []string
	for _, name := range c.order {
		if c.parts[name].Parent == "" {
			roots = append(roots, name)
		}
	}
	return roots
}

// Records re-flattens the catalog into interchange records carrying the
// reconciled parent/child links. Re-vetting the result yields an identical
// catalog.
func (c *Catalog) Records() []catalog.PartRecord {
	records := make([]catalog.PartRecord, 0, len(c.order))
	for _, name := range c.order {
		vp := c.parts[name]
		rec := vp.Raw
		rec.Parent = vp.Parent
		rec.Children = append([]string(nil), vp.Children...)
		records = append(records, rec)
	}
	return records
}

// Vet validates a flat record list and builds the catalog.
func Vet(records []catalog.PartRecord) (*Catalog, error) {
	if len(records) == 0 {
		return nil, errorf("record list is empty")
	}

	c := &Catalog{parts: make(map[string]*VettedPart, len(records))}
	for i, rec := range records {
		vp, err := validateRecord(i, rec)
		if err != nil {
			return nil, err
		}
		if _, dup := c.parts[vp.Name]; dup {
			return nil, errorf("duplicate part name %q", vp.Name)
		}
		c.order = append(c.order, vp.Name)
		c.parts[vp.Name] = vp
	}

	if err := c.reconcile(); err != nil {
		return nil, err
	}
	if err := c.validateGraph(); err != nil {
		return nil, err
	}
	return c, nil
}

// validateRecord runs the schema pass for one record. Every violation names
// the record index and the offending field.
func validateRecord(i int, rec catalog.PartRecord) (*VettedPart, error) {
	ctx := fmt.Sprintf("part[%d]", i)

	vp := &VettedPart{
		Raw:           rec,
		Name:          strings.TrimSpace(rec.Name),
		UID:           strings.TrimSpace(rec.ID),
		Type:          rec.Type,
		MetersPerUnit: 1.0,
		UpAxis:        "Z",
		Parent:        strings.TrimSpace(rec.Parent),
		Children:      append([]string(nil), rec.Children...),
	}
	if vp.Type == "" {
		vp.Type = "Part"
	}

	dims, err := floatTriple(rec.Dimensions["dims_m"])
	if err != nil {
		return nil, errorf("%s.dimensions.dims_m: %v", ctx, err)
	}
	vp.DimsM = dims
	for axis, d := range dims {
		// NaN fails both orderings, so the check must be !(d > 0).
		if !(d > 0) {
			return nil, errorf("%s.dimensions.dims_m[%d]: must be > 0, got %v", ctx, axis, d)
		}
	}

	if v, ok := rec.Dimensions["metersPerUnit"]; ok {
		mpu, err := asFloat(v)
		if err != nil {
			return nil, errorf("%s.dimensions.metersPerUnit: %v", ctx, err)
		}
		vp.MetersPerUnit = mpu
	}
	if v, ok := rec.Dimensions["upAxis"]; ok {
		s, _ := v.(string)
		vp.UpAxis = strings.ToUpper(strings.TrimSpace(s))
	}
	for axis, key := range []string{"X", "Y", "Z"} {
		if v, ok := rec.Dimensions[key]; ok {
			t, err := asFloat(v)
			if err != nil {
				return nil, errorf("%s.dimensions.%s: %v", ctx, key, err)
			}
			vp.Translate[axis] = t
		}
	}

	vp.GeomPath = metadataString(rec.Metadata, "geometry")
	vp.MaterialPath = metadataString(rec.Metadata, "material")

	if err := vp.validate(); err != nil {
		return nil, errorf("%s: %v", ctx, err)
	}

	seen := make(map[string]bool, len(vp.Children))
	for j, child := range vp.Children {
		child = strings.TrimSpace(child)
		if child == "" {
			return nil, errorf("%s.children[%d]: must be a non-empty name", ctx, j)
		}
		if seen[child] {
			return nil, errorf("%s.children: duplicate name %q", ctx, child)
		}
		seen[child] = true
		vp.Children[j] = child
	}
	return vp, nil
}

func (vp *VettedPart) validate() error {
	return validation.ValidateStruct(vp,
		validation.Field(&vp.Name, validation.Required),
		validation.Field(&vp.UID, validation.Required),
		validation.Field(&vp.MetersPerUnit, validation.Min(0.0).Exclusive()),
		validation.Field(&vp.UpAxis, validation.Required, validation.In("Z", "Y")),
		validation.Field(&vp.GeomPath, validation.Required, validation.By(assetPath)),
		validation.Field(&vp.MaterialPath, validation.Required, validation.By(assetPath)),
	)
}

func assetPath(value any) error {
	s, _ := value.(string)
	for _, ext := range assetExtensions {
		if strings.HasSuffix(s, ext) {
			return nil
		}
	}
	return fmt.Errorf("must end in one of %s", strings.Join(assetExtensions, ", "))
}

func metadataString(meta map[string]any, key string) string {
	s, _ := meta[key].(string)
	return strings.TrimSpace(s)
}

func asFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	}
	return 0, fmt.Errorf("expected number, got %T", v)
}

func floatTriple(v any) ([3]float64, error) {
	var out [3]float64

	switch list := v.(type) {
	case []float64:
		if len(list) != 3 {
			return out, fmt.Errorf("must have 3 elements, got %d", len(list))
		}
		copy(out[:], list)
		return out, nil
	case []any:
		if len(list) != 3 {
			return out, fmt.Errorf("must have 3 elements, got %d", len(list))
		}
		for i, e := range list {
			f, err := asFloat(e)
			if err != nil {
				return out, fmt.Errorf("element %d: %v", i, err)
			}
			out[i] = f
		}
		return out, nil
	case nil:
		return out, fmt.Errorf("missing")
	}
	return out, fmt.Errorf("expected a 3-element numeric list, got %T", v)
}

// reconcile resolves every named reference and then makes the parent/child
// links bidirectional. A missing back-link is auto-added; a child already
// claiming a different parent is a hard contradiction.
func (c *Catalog) reconcile() error {
	for _, name := range c.order {
		vp := c.parts[name]
		if vp.Parent != "" {
			if _, ok := c.parts[vp.Parent]; !ok {
				return errorf("%s references missing parent %q", name, vp.Parent)
			}
		}
		for _, child := range vp.Children {
			if _, ok := c.parts[child]; !ok {
				return errorf("%s lists missing child %q", name, child)
			}
		}
	}

	for _, name := range c.order {
		vp := c.parts[name]
		if vp.Parent == "" {
			continue
		}
		parent := c.parts[vp.Parent]
		if !containsName(parent.Children, name) {
			parent.Children = append(parent.Children, name)
		}
	}

	for _, name := range c.order {
		for _, childName := range c.parts[name].Children {
			child := c.parts[childName]
			switch child.Parent {
			case "":
				child.Parent = name
			case name:
			default:
				return errorf("conflict: %s has parent %s and %s", childName, child.Parent, name)
			}
		}
	}
	return nil
}

// validateGraph checks global shape: no cycles, at least one root, and no
// part unreachable from a root. The cycle scan starts from every part, not
// just the roots, because a fully-cyclic component has no root at all and a
// cycle error is more useful than "no root". The DFS keeps a visiting set
// distinct from visited so a part reached again through an already-explored
// subtree is not a false cycle.
func (c *Catalog) validateGraph() error {
	visited := make(map[string]bool, len(c.order))
	visiting := make(map[string]bool)

	var dfs func(name string) error
	dfs = func(name string) error {
		if visiting[name] {
			return errorf("cycle detected at %q", name)
		}
		if visited[name] {
			return nil
		}
		visiting[name] = true
		for _, child := range c.parts[name].Children {
			if err := dfs(child); err != nil {
				return err
			}
		}
		delete(visiting, name)
		visited[name] = true
		return nil
	}

	for _, name := range c.order {
		if err := dfs(name); err != nil {
			return err
		}
	}

	roots := c.Roots()
	if len(roots) == 0 {
		return errorf("no root part found: every part claims a parent")
	}

	reached := make(map[string]bool, len(c.order))
	var mark func(name string)
	mark = func(name string) {
		if reached[name] {
			return
		}
		reached[name] = true
		for _, child := range c.parts[name].Children {
			mark(child)
		}
	}
	for _, root := range roots {
		mark(root)
	}

	if len(reached) != len(c.order) {
		var orphans []string
		for _, name := range c.order {
			if !reached[name] {
				orphans = append(orphans, name)
			}
		}
		sort.Strings(orphans)
		return errorf("unreachable parts: %s", strings.Join(orphans, ", "))
	}
	return nil
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
