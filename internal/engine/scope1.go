package engine

import (
	"fmt"
	"time"

	"github.com/ghgledger/ghgledger/internal/factors"
	"github.com/ghgledger/ghgledger/internal/units"
)

// defaultFuelUnit is assumed when the form left the fuel unit blank.
const defaultFuelUnit = "L"

// CalculateScope1 computes direct fuel-combustion emissions.
//
// The quantity must pass the shared parse gate and a fuel type must be
// selected; otherwise no calculation is produced and the second return is
// false ("zero calculated", not an error).
func CalculateScope1(in Input, now time.Time) (Calculation, bool) {
	qty, ok := units.ParseQuantity(in.FuelQuantity)
	if !ok || in.FuelType == "" {
		return Calculation{}, false
	}

	unit := in.FuelUnit
	if unit == "" {
		unit = defaultFuelUnit
	}

	src := factors.ParseSource(in.CalculationMethod)
	f := factors.Fuel(in.FuelType, unit, src)

	kg := f.Value * qty
	tonnes := units.KgToTonnes(kg)

	details := ScopeDetails{
		Kind: DetailsScope1,
		Scope1: &Scope1Details{
			FuelType:        in.FuelType,
			Quantity:        qty,
			Unit:            unit,
			Period:          in.PeriodType,
			EmissionsKg:     kg,
			EmissionsTonnes: tonnes,
			Source:          f.Source,
			Timestamp:       now,
		},
	}

	return Calculation{
		Scope:           Scope1,
		Source:          f.Source,
		Description:     fmt.Sprintf("%s combustion, %.6g %s", in.FuelType, qty, unit),
		Quantity:        qty,
		Unit:            unit,
		EmissionsKg:     kg,
		EmissionsTonnes: tonnes,
		Details:         details,
	}, true
}
