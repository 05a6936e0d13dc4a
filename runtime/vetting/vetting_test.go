package vetting

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lunarspaceport/partforge/core/catalog"
)

// record builds a schema-valid test record; tests mutate it per case.
func record(name string) catalog.PartRecord {
	return catalog.PartRecord{
		Type: "Part",
		ID:   "urn:test:part:" + name + ":001",
		Name: name,
		Dimensions: map[string]any{
			"dims_m":        []float64{1, 2, 3},
			"metersPerUnit": 1.0,
			"upAxis":        "Z",
		},
		Attributes: map[string]float64{},
		Metadata: map[string]any{
			"geometry": "assets/" + name + ".usda",
			"material": "assets/" + name + "_mat.usd",
		},
	}
}

func linked(parent string, rec catalog.PartRecord) catalog.PartRecord {
	rec.Parent = parent
	return rec
}

func withChildren(rec catalog.PartRecord, children ...string) catalog.PartRecord {
	rec.Children = children
	return rec
}

func TestVet_ValidTree(t *testing.T) {
	records := []catalog.PartRecord{
		withChildren(record("Root"), "A", "B"),
		linked("Root", record("A")),
		linked("Root", record("B")),
	}

	cat, err := Vet(records)
	require.NoError(t, err)
	assert.Equal(t, 3, cat.Len())
	assert.Equal(t, []string{"Root"}, cat.Roots())

	root, ok := cat.Get("Root")
	require.True(t, ok)
	assert.Equal(t, [3]float64{1, 2, 3}, root.DimsM)
	assert.Equal(t, "Z", root.UpAxis)
	assert.Equal(t, 1.0, root.MetersPerUnit)
	assert.Equal(t, "assets/Root.usda", root.GeomPath)
}

func TestVet_SchemaErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*catalog.PartRecord)
		want   string
	}{
		{
			name:   "empty name",
			mutate: func(r *catalog.PartRecord) { r.Name = "  " },
			want:   "Name",
		},
		{
			name:   "empty id",
			mutate: func(r *catalog.PartRecord) { r.ID = "" },
			want:   "UID",
		},
		{
			name:   "missing dims",
			mutate: func(r *catalog.PartRecord) { delete(r.Dimensions, "dims_m") },
			want:   "dims_m",
		},
		{
			name:   "short dims vector",
			mutate: func(r *catalog.PartRecord) { r.Dimensions["dims_m"] = []float64{1, 2} },
			want:   "3 elements",
		},
		{
			name:   "non-positive dimension",
			mutate: func(r *catalog.PartRecord) { r.Dimensions["dims_m"] = []float64{1, 0, 3} },
			want:   "must be > 0",
		},
		{
			name: "NaN dimension",
			mutate: func(r *catalog.PartRecord) {
				r.Dimensions["dims_m"] = []float64{1, math.NaN(), 3}
			},
			want: "must be > 0",
		},
		{
			name:   "bad up axis",
			mutate: func(r *catalog.PartRecord) { r.Dimensions["upAxis"] = "X" },
			want:   "UpAxis",
		},
		{
			name:   "bad asset extension",
			mutate: func(r *catalog.PartRecord) { r.Metadata["geometry"] = "assets/root.obj" },
			want:   "GeomPath",
		},
		{
			name:   "missing material path",
			mutate: func(r *catalog.PartRecord) { delete(r.Metadata, "material") },
			want:   "MaterialPath",
		},
		{
			name:   "empty child name",
			mutate: func(r *catalog.PartRecord) { r.Children = []string{""} },
			want:   "children[0]",
		},
		{
			name:   "duplicate child names",
			mutate: func(r *catalog.PartRecord) { r.Children = []string{"A", "A"} },
			want:   "duplicate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := record("Root")
			tt.mutate(&rec)

			cat, err := Vet([]catalog.PartRecord{rec})
			require.Error(t, err)
			assert.Nil(t, cat)
			assert.IsType(t, &VettingError{}, err)
			assert.Contains(t, err.Error(), "part[0]")
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestVet_DuplicatePartName(t *testing.T) {
	_, err := Vet([]catalog.PartRecord{record("Root"), record("Root")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate part name "Root"`)
}

func TestVet_EmptyList(t *testing.T) {
	_, err := Vet(nil)
	require.Error(t, err)
}

func TestVet_MissingChildReference(t *testing.T) {
	records := []catalog.PartRecord{
		withChildren(record("Root"), "Ghost"),
	}
	_, err := Vet(records)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing child "Ghost"`)
}

func TestVet_MissingParentReference(t *testing.T) {
	records := []catalog.PartRecord{
		linked("Ghost", record("A")),
		record("Root"),
	}
	_, err := Vet(records)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing parent "Ghost"`)
}

func TestVet_BidirectionalAutoAdd(t *testing.T) {
	// A declares its parent; Root never listed A. The back-link is added.
	records := []catalog.PartRecord{
		record("Root"),
		linked("Root", record("A")),
	}
	cat, err := Vet(records)
	require.NoError(t, err)

	root, _ := cat.Get("Root")
	assert.Equal(t, []string{"A"}, root.Children)

	// And the other direction: Root lists A, A never claimed a parent.
	records = []catalog.PartRecord{
		withChildren(record("Root"), "A"),
		record("A"),
	}
	cat, err = Vet(records)
	require.NoError(t, err)

	a, _ := cat.Get("A")
	assert.Equal(t, "Root", a.Parent)
}

func TestVet_ContradictoryParents(t *testing.T) {
	// A lists B as child, but B claims parent C. Never silently prefer one.
	records := []catalog.PartRecord{
		withChildren(record("A"), "B"),
		linked("C", record("B")),
		record("C"),
	}
	_, err := Vet(records)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "conflict")
	assert.Contains(t, err.Error(), "B")
}

func TestVet_ThreeCycle(t *testing.T) {
	// A -> B -> C -> A via children only; the reconciler back-fills the
	// parent links, leaving no root. The cycle error must win over that.
	records := []catalog.PartRecord{
		withChildren(record("A"), "B"),
		withChildren(record("B"), "C"),
		withChildren(record("C"), "A"),
	}
	_, err := Vet(records)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle detected")
}

func TestVet_MutualParentPairIsACycle(t *testing.T) {
	records := []catalog.PartRecord{
		linked("B", record("A")),
		linked("A", record("B")),
	}
	_, err := Vet(records)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle detected")

	_, err = Vet([]catalog.PartRecord{linked("A", record("A"))})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle detected")
}

func TestVet_DeepTreeIsNotAFalseCycle(t *testing.T) {
	// The cycle scan starts a DFS at every part, so interior parts are
	// visited repeatedly. Revisiting a fully-explored part must not be
	// mistaken for revisiting one still on the stack.
	records := []catalog.PartRecord{
		linked("A", record("Leaf")),
		withChildren(linked("Root", record("A")), "Leaf"),
		withChildren(record("Root"), "A", "B"),
		linked("Root", record("B")),
	}
	cat, err := Vet(records)
	require.NoError(t, err)
	assert.Equal(t, 4, cat.Len())
	assert.Equal(t, []string{"Root"}, cat.Roots())
}

func TestVet_MultipleRootsAllReachable(t *testing.T) {
	records := []catalog.PartRecord{
		withChildren(record("Root1"), "A"),
		linked("Root1", record("A")),
		record("Root2"),
	}
	cat, err := Vet(records)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Root1", "Root2"}, cat.Roots())
}

func TestVet_RoundTripIdempotence(t *testing.T) {
	records := []catalog.PartRecord{
		withChildren(record("Root"), "A"),
		linked("Root", record("A")),
		record("Orphanless"),
	}

	first, err := Vet(records)
	require.NoError(t, err)

	second, err := Vet(first.Records())
	require.NoError(t, err)

	assert.Equal(t, first.Names(), second.Names())
	for _, name := range first.Names() {
		a, _ := first.Get(name)
		b, _ := second.Get(name)
		assert.Equal(t, a.Parent, b.Parent, name)
		assert.Equal(t, a.Children, b.Children, name)
		assert.Equal(t, a.DimsM, b.DimsM, name)
		assert.Equal(t, a.UID, b.UID, name)
	}
}
