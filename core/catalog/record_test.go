package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecodeRecords(t *testing.T) {
	bare := `[{"type":"Part","id":"urn:x:part:A:001","name":"A",
		"dimensions":{},"attributes":{},"metadata":{}}]`
	wrapped := `{"parts":` + bare + `}`

	for _, tt := range []struct {
		name  string
		input string
	}{
		{"bare list", bare},
		{"parts-keyed object", wrapped},
	} {
		t.Run(tt.name, func(t *testing.T) {
			records, err := DecodeRecords([]byte(tt.input))
			if err != nil {
				t.Fatalf("DecodeRecords returned error: %v", err)
			}
			if len(records) != 1 || records[0].Name != "A" {
				t.Errorf("records = %+v, want one record named A", records)
			}
		})
	}
}

func TestDecodeRecords_Errors(t *testing.T) {
	for _, tt := range []struct {
		name  string
		input string
	}{
		{"not json", "nonsense"},
		{"object without parts key", `{"things":[]}`},
		{"scalar", `42`},
	} {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeRecords([]byte(tt.input)); err == nil {
				t.Errorf("DecodeRecords(%q) succeeded, want error", tt.input)
			}
		})
	}
}

func TestWriteReadRecords_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parts.json")
	want := []PartRecord{
		{
			Type:       "Part",
			ID:         "urn:x:part:A:001",
			Name:       "A",
			Dimensions: map[string]any{"dims_m": []any{1.0, 2.0, 3.0}},
			Attributes: map[string]float64{"a_dryMass_kg": 5},
			Metadata:   map[string]any{"geometry": "a.usda"},
			Children:   []string{"B"},
		},
		{
			Type:       "Part",
			ID:         "urn:x:part:B:001",
			Name:       "B",
			Dimensions: map[string]any{},
			Attributes: map[string]float64{},
			Metadata:   map[string]any{},
			Parent:     "A",
		},
	}

	if err := WriteRecords(path, want); err != nil {
		t.Fatalf("WriteRecords returned error: %v", err)
	}
	got, err := ReadRecords(path)
	if err != nil {
		t.Fatalf("ReadRecords returned error: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip (-want +got):\n%s", diff)
	}
}

func TestWriteMaterials(t *testing.T) {
	path := filepath.Join(t.TempDir(), "materials.json")
	materials := []MaterialRecord{
		{MaterialID: "AL-6061", Properties: map[string]float64{"density": 2700}},
	}
	if err := WriteMaterials(path, materials); err != nil {
		t.Fatalf("WriteMaterials returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) == "" || data[0] != '{' {
		t.Errorf("materials file should be a JSON object, got %q", data)
	}
}
