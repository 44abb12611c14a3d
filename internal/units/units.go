// Package units provides the shared quantity parse gate and the fuel
// consumption conversions used by the scope calculators.
//
// Quantities arrive from the form layer as strings; ParseQuantity is the
// single validation gate all scopes share. Unit handling beyond that is the
// factor tables' concern: factors are already scaled per unit, so no general
// conversion table lives here.
package units

import (
	"math"
	"strconv"
	"strings"
)

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

// Sentinel errors for consumption conversions. Comparable with errors.Is().
var (
	// ErrInvalidConsumptionUnit indicates an unrecognized fuel consumption unit.
	ErrInvalidConsumptionUnit = constError("invalid fuel consumption unit")

	// ErrNonPositiveConsumption indicates a consumption value that cannot be
	// converted (zero or negative km/L would divide by zero or flip sign).
	ErrNonPositiveConsumption = constError("non-positive fuel consumption")
)

// Consumption units accepted for the vehicle-specific transport path.
const (
	// LitersPer100Km is litres burned per 100 km travelled.
	LitersPer100Km = "l_100km"

	// KmPerLiter is kilometres travelled per litre burned.
	KmPerLiter = "km_l"
)

// ParseQuantity parses a form-field quantity string.
//
// It returns (value, true) only when the string parses to a finite number
// strictly greater than zero. Empty strings, non-numeric text, NaN, Inf,
// zero and negatives all return (0, false): "nothing to calculate", never
// an error.
func ParseQuantity(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}

	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, false
	}

	return v, true
}

// PerHundredKm converts a fuel consumption value to a litres-per-100-km basis.
//
// LitersPer100Km values pass through unchanged; KmPerLiter values are
// converted via 100/value. Unit matching is case-insensitive.
//
// Returns ErrInvalidConsumptionUnit for an unrecognized unit and
// ErrNonPositiveConsumption when value is zero or negative.
func PerHundredKm(value float64, unit string) (float64, error) {
	if value <= 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, ErrNonPositiveConsumption
	}

	switch strings.ToLower(strings.TrimSpace(unit)) {
	case LitersPer100Km:
		return value, nil
	case KmPerLiter:
		return 100 / value, nil
	default:
		return 0, ErrInvalidConsumptionUnit
	}
}

// ClampPercent clamps a percentage to the [0, 100] range. Out-of-range
// renewable shares from the form layer are clamped rather than rejected.
func ClampPercent(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// KgToTonnes converts kilograms CO2e to tonnes CO2e.
func KgToTonnes(kg float64) float64 {
	return kg / 1000
}
