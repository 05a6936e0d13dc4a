package units

import (
	"math"
	"testing"
)

func TestConvertNumeric(t *testing.T) {
	tests := []struct {
		name      string
		value     float64
		wantName  string
		wantValue float64
	}{
		{"tank_volume", 850, "tank_volume_m3", 0.85},
		{"tank_usableO2Capacity", 500, "tank_usableO2Capacity_m3", 0.5},
		{"tank_operatingPressure", 101.3, "tank_operatingPressure_Pa", 101300},
		{"valve_maxPressure", 250, "valve_maxPressure_Pa", 250000},
		{"tank_dryMass", 62.5, "tank_dryMass_kg", 62.5},
		{"tank_wallThickness", 0.004, "tank_wallThickness_m", 0.004},

		// no recognized suffix: identity
		{"count", 4, "count", 4},
		{"volume", 850, "volume", 850}, // bare name, no _volume suffix
		{"temperature_K", 293, "temperature_K", 293},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotName, gotValue := ConvertNumeric(tt.name, tt.value)
			if gotName != tt.wantName {
				t.Errorf("name = %q, want %q", gotName, tt.wantName)
			}
			if math.Abs(gotValue-tt.wantValue) > 1e-9 {
				t.Errorf("value = %v, want %v", gotValue, tt.wantValue)
			}
		})
	}
}

func TestConvertNumeric_TotalOverSpecialValues(t *testing.T) {
	// Conversion must be total: no panic or mangling on any real input.
	for _, v := range []float64{0, -1, math.Inf(1), math.Inf(-1)} {
		name, got := ConvertNumeric("x_dryMass", v)
		if name != "x_dryMass_kg" || got != v {
			t.Errorf("ConvertNumeric(x_dryMass, %v) = %q %v", v, name, got)
		}
	}
	if _, got := ConvertNumeric("x_dryMass", math.NaN()); !math.IsNaN(got) {
		t.Errorf("NaN not passed through, got %v", got)
	}
}
