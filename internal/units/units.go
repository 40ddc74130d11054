// Package units converts heterogeneous quantity/unit pairs into a common
// base unit so ledger arithmetic never mixes scales. Mass normalizes to
// grams, volume to milliliters, count units to themselves.
package units

import "strings"

// factors maps a lowercased unit name to its base-unit multiplier
var factors = map[string]float64{
	"kg":     1000,
	"g":      1,
	"l":      1000,
	"ml":     1,
	"pcs":    1,
	"pc":     1,
	"piece":  1,
	"pieces": 1,
}

// ToBase converts a quantity in the given unit to its base-unit equivalent.
// Unknown or empty units pass the quantity through unchanged; untracked units
// on ad hoc ingredients are expected and must not fail the deduction.
func ToBase(quantity float64, unit string) float64 {
	if factor, ok := factors[strings.ToLower(strings.TrimSpace(unit))]; ok {
		return quantity * factor
	}
	return quantity
}

// FromBase converts a base-unit quantity back into the given unit. The same
// leniency applies: unknown units pass through unchanged.
func FromBase(quantity float64, unit string) float64 {
	if factor, ok := factors[strings.ToLower(strings.TrimSpace(unit))]; ok {
		return quantity / factor
	}
	return quantity
}
