// Package units normalizes resolved numeric attributes to SI, keyed by a
// fixed suffix table. Conversion is a pure total function: names without a
// recognized suffix pass through untouched.
package units

import "strings"

// rule rewrites a matched attribute: append the SI unit suffix and scale the
// value into the base unit. mul and div are kept separate so division stays
// an actual division (850 liters is exactly 0.85 m3, not 850 * 0.001).
type rule struct {
	suffix string
	unit   string
	mul    float64
	div    float64
}

// Suffix table. Matching is first-hit in declaration order.
var rules = []rule{
	{suffix: "_volume", unit: "_m3", div: 1000},            // liters
	{suffix: "_usableO2Capacity", unit: "_m3", div: 1000},  // liters
	{suffix: "_operatingPressure", unit: "_Pa", mul: 1000}, // kPa
	{suffix: "_maxPressure", unit: "_Pa", mul: 1000},       // kPa
	{suffix: "_dryMass", unit: "_kg"},                      // already kg
	{suffix: "_wallThickness", unit: "_m"},                 // already m
}

// ConvertNumeric maps a resolved numeric attribute to its SI name and value.
func ConvertNumeric(name string, value float64) (string, float64) {
	for _, r := range rules {
		if !strings.HasSuffix(name, r.suffix) {
			continue
		}
		v := value
		if r.mul != 0 {
			v *= r.mul
		}
		if r.div != 0 {
			v /= r.div
		}
		return name + r.unit, v
	}
	return name, value
}
