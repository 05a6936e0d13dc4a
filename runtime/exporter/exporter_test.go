package exporter

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/lunarspaceport/partforge/core/ast"
	"github.com/lunarspaceport/partforge/core/catalog"
	"github.com/lunarspaceport/partforge/runtime/evaluator"
	"github.com/lunarspaceport/partforge/runtime/parser"
)

func compile(t *testing.T, input string) *ast.Model {
	t.Helper()
	model, err := parser.Parse(input)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	evaluator.Evaluate(model)
	return model
}

const o2TankModel = `package 'O2 Farm' {
	part O2Tank {
		attribute tank_volume = 850;
		attribute tank_dryMass = 62.5;
		attribute materialRef = "AL-6061";
		attribute description = "Primary oxygen storage";

		part tankDims {
			attribute length = 1.2;
			attribute width = 1.2;
			attribute height = 2.4;
			attribute metersPerUnit = 1;
			attribute upAxis = "Z";
		}

		part Valve {
			attribute valve_maxPressure = 250;
		}
	}
}`

func TestFlatten_Records(t *testing.T) {
	model := compile(t, o2TankModel)
	records := Flatten(model, "lunarspaceport1")

	want := []catalog.PartRecord{
		{
			Type: "Part",
			ID:   "urn:lunarspaceport1:part:O2Tank:001",
			Name: "O2Tank",
			Dimensions: map[string]any{
				"dims_m":        []float64{1.2, 1.2, 2.4},
				"metersPerUnit": 1.0,
				"upAxis":        "Z",
			},
			Attributes: map[string]float64{
				"tank_volume_m3":  0.85,
				"tank_dryMass_kg": 62.5,
			},
			Metadata:    map[string]any{"description": "Primary oxygen storage"},
			MaterialRef: "AL-6061",
			Children:    []string{"Valve"},
		},
		{
			Type:       "Part",
			ID:         "urn:lunarspaceport1:part:Valve:001",
			Name:       "Valve",
			Dimensions: map[string]any{},
			Attributes: map[string]float64{
				"valve_maxPressure_Pa": 250000,
			},
			Metadata: map[string]any{},
			Parent:   "O2Tank",
		},
	}

	if diff := cmp.Diff(want, records); diff != "" {
		t.Errorf("records (-want +got):\n%s", diff)
	}
}

func TestFlatten_DimsChildNotEmitted(t *testing.T) {
	model := compile(t, o2TankModel)
	records := Flatten(model, "ns")

	for _, rec := range records {
		if rec.Name == "tankDims" {
			t.Error("dimension block emitted as its own record")
		}
		for _, child := range rec.Children {
			if child == "tankDims" {
				t.Error("dimension block listed among children")
			}
		}
	}
}

func TestFlatten_DimsSuffixCaseInsensitive(t *testing.T) {
	model := compile(t, `part A {
		part ADims {
			attribute length = 2;
			attribute width = 3;
			attribute height = 4;
		}
	}`)
	records := Flatten(model, "ns")

	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	want := []float64{2, 3, 4} // metersPerUnit defaults to 1
	if diff := cmp.Diff(want, records[0].Dimensions["dims_m"]); diff != "" {
		t.Errorf("dims_m (-want +got):\n%s", diff)
	}
}

func TestFlatten_IncompleteDimsOmitsVector(t *testing.T) {
	model := compile(t, `part A {
		part dims {
			attribute length = 2;
			attribute width = 3;
		}
	}`)
	records := Flatten(model, "ns")

	if _, ok := records[0].Dimensions["dims_m"]; ok {
		t.Error("dims_m synthesized from incomplete length/width/height trio")
	}
	// The trio is reserved for dims_m and never copied through, complete
	// or not.
	for _, key := range []string{"length", "width", "height"} {
		if _, ok := records[0].Dimensions[key]; ok {
			t.Errorf("%s leaked into the dimensions bucket", key)
		}
	}
}

func TestFlatten_NonNumericMetersPerUnitSuppressesVector(t *testing.T) {
	model := compile(t, `part A {
		part dims {
			attribute length = 2;
			attribute width = 3;
			attribute height = 4;
			attribute metersPerUnit = "one";
		}
	}`)
	records := Flatten(model, "ns")

	if _, ok := records[0].Dimensions["dims_m"]; ok {
		t.Error("dims_m emitted despite non-numeric metersPerUnit")
	}
	if got := records[0].Dimensions["metersPerUnit"]; got != any("one") {
		t.Errorf("metersPerUnit = %v, want copied through as string", got)
	}
}

func TestFlatten_UnresolvedAttributeExportsAsMetadata(t *testing.T) {
	model := compile(t, `part A {
		attribute broken = f(1);
	}`)
	records := Flatten(model, "ns")

	if got := records[0].Metadata["broken"]; got != any("f(1)") {
		t.Errorf("broken = %v, want raw text f(1)", got)
	}
}

func TestFlatten_DefaultNamespace(t *testing.T) {
	model := compile(t, "part A { attribute x = 1; }")
	records := Flatten(model, "")

	if got := records[0].ID; got != "urn:lunarspaceport1:part:A:001" {
		t.Errorf("ID = %q, want default namespace id", got)
	}
}

func TestMaterials(t *testing.T) {
	model := compile(t, `package Materials {
		part def Aluminum6061 {
			attribute materialId = "AL-6061";
			attribute density = 2700;
			attribute yieldStrength = 276000000;
			attribute standard = "ASTM B209";
		}
		part O2Tank {
			attribute tank_volume = 850;
		}
	}`)

	want := []catalog.MaterialRecord{
		{
			MaterialID: "AL-6061",
			Properties: map[string]float64{
				"density":       2700,
				"yieldStrength": 276000000,
			},
			Traces: map[string]string{"standard": "ASTM B209"},
		},
	}
	if diff := cmp.Diff(want, Materials(model)); diff != "" {
		t.Errorf("materials (-want +got):\n%s", diff)
	}
}

func TestMaterials_NoneWithoutMaterialID(t *testing.T) {
	model := compile(t, "part A { attribute x = 1; }")
	if got := Materials(model); len(got) != 0 {
		t.Errorf("materials = %v, want none", got)
	}
}
