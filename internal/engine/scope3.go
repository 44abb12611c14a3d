package engine

import (
	"fmt"
	"time"

	"github.com/ghgledger/ghgledger/internal/factors"
	"github.com/ghgledger/ghgledger/internal/units"
)

// CalculateScope3 dispatches on the scope 3 category and computes
// value-chain emissions for transport, waste or purchases. An unset or
// unknown category, like an invalid quantity, produces no calculation.
func CalculateScope3(in Input, now time.Time) (Calculation, bool) {
	switch in.Scope3Category {
	case CategoryTransport:
		return calculateTransport(in, now)
	case CategoryWaste:
		return calculateWaste(in, now)
	case CategoryPurchases:
		return calculatePurchase(in, now)
	default:
		return Calculation{}, false
	}
}

// calculateTransport computes travel emissions. The vehicle-specific path
// takes priority over the standard per-km factor whenever its
// preconditions hold: it derives total fuel burned from the vehicle's own
// consumption, which is strictly more precise.
func calculateTransport(in Input, now time.Time) (Calculation, bool) {
	dist, ok := units.ParseQuantity(in.TransportDistance)
	if !ok || in.TransportType == "" {
		return Calculation{}, false
	}

	src := factors.ParseSource(in.CalculationMethod)

	if calc, ok := vehicleSpecificTransport(in, dist, src, now); ok {
		return calc, true
	}

	f := factors.Transport(in.TransportType, src)
	kg := f.Value * dist
	tonnes := units.KgToTonnes(kg)

	details := ScopeDetails{
		Kind: DetailsScope3Transport,
		Scope3Transport: &Scope3TransportDetails{
			TransportType:   in.TransportType,
			DistanceKm:      dist,
			VehicleSpecific: false,
			Vehicle:         vehicleTraceability(in),
			Period:          in.PeriodType,
			EmissionsKg:     kg,
			EmissionsTonnes: tonnes,
			Source:          f.Source,
			Timestamp:       now,
		},
	}

	return Calculation{
		Scope:           Scope3,
		Source:          f.Source,
		Description:     fmt.Sprintf("%s, %.6g km", in.TransportType, dist),
		Quantity:        dist,
		Unit:            "km",
		EmissionsKg:     kg,
		EmissionsTonnes: tonnes,
		Details:         details,
	}, true
}

// vehicleSpecificTransport attempts the refined path. Preconditions: vehicle
// type, vehicle fuel type and transport type selected, and a valid fuel
// consumption alongside the already-validated distance. Returns ok=false
// when any precondition fails, letting the standard path run.
func vehicleSpecificTransport(in Input, dist float64, src factors.Source, now time.Time) (Calculation, bool) {
	if in.VehicleType == "" || in.VehicleFuelType == "" || in.TransportType == "" {
		return Calculation{}, false
	}

	consumption, ok := units.ParseQuantity(in.VehicleFuelConsumption)
	if !ok {
		return Calculation{}, false
	}

	consumptionUnit := in.VehicleFuelConsumptionUnit
	if consumptionUnit == "" {
		consumptionUnit = units.LitersPer100Km
	}

	perHundred, err := units.PerHundredKm(consumption, consumptionUnit)
	if err != nil {
		return Calculation{}, false
	}

	f, electric := factors.VehicleFuel(in.VehicleFuelType, src)

	var kg, liters float64
	if electric {
		// Electric factor is per km; consumption is traceability only.
		kg = f.Value * dist
	} else {
		liters = dist * perHundred / 100
		kg = liters * f.Value
	}
	tonnes := units.KgToTonnes(kg)

	vehicle := vehicleTraceability(in)
	vehicle.FuelConsumedLiters = liters

	details := ScopeDetails{
		Kind: DetailsScope3Transport,
		Scope3Transport: &Scope3TransportDetails{
			TransportType:   in.TransportType,
			DistanceKm:      dist,
			VehicleSpecific: true,
			Vehicle:         vehicle,
			Period:          in.PeriodType,
			EmissionsKg:     kg,
			EmissionsTonnes: tonnes,
			Source:          f.Source,
			Timestamp:       now,
		},
	}

	return Calculation{
		Scope:           Scope3,
		Source:          f.Source,
		Description:     fmt.Sprintf("%s (%s %s), %.6g km", in.TransportType, in.VehicleType, in.VehicleFuelType, dist),
		Quantity:        dist,
		Unit:            "km",
		EmissionsKg:     kg,
		EmissionsTonnes: tonnes,
		Details:         details,
	}, true
}

// vehicleTraceability builds the vehicle sub-record when any vehicle field
// is present; both transport paths attach it.
func vehicleTraceability(in Input) *VehicleDetails {
	if in.VehicleType == "" && in.VehicleFuelType == "" && in.VehicleEnergyClass == "" &&
		in.VehicleFuelConsumption == "" {
		return nil
	}

	consumption, _ := units.ParseQuantity(in.VehicleFuelConsumption)
	return &VehicleDetails{
		VehicleType:     in.VehicleType,
		FuelType:        in.VehicleFuelType,
		EnergyClass:     in.VehicleEnergyClass,
		Consumption:     consumption,
		ConsumptionUnit: in.VehicleFuelConsumptionUnit,
	}
}

func calculateWaste(in Input, now time.Time) (Calculation, bool) {
	qty, ok := units.ParseQuantity(in.WasteQuantity)
	if !ok || in.WasteType == "" {
		return Calculation{}, false
	}

	src := factors.ParseSource(in.CalculationMethod)
	f := factors.Waste(in.WasteType, src)

	kg := f.Value * qty
	tonnes := units.KgToTonnes(kg)

	details := ScopeDetails{
		Kind: DetailsScope3Waste,
		Scope3Waste: &Scope3WasteDetails{
			WasteType:       in.WasteType,
			QuantityKg:      qty,
			Period:          in.PeriodType,
			EmissionsKg:     kg,
			EmissionsTonnes: tonnes,
			Source:          f.Source,
			Timestamp:       now,
		},
	}

	return Calculation{
		Scope:           Scope3,
		Source:          f.Source,
		Description:     fmt.Sprintf("%s waste, %.6g kg", in.WasteType, qty),
		Quantity:        qty,
		Unit:            "kg",
		EmissionsKg:     kg,
		EmissionsTonnes: tonnes,
		Details:         details,
	}, true
}

func calculatePurchase(in Input, now time.Time) (Calculation, bool) {
	qty, ok := units.ParseQuantity(in.PurchaseQuantity)
	if !ok || in.PurchaseType == "" {
		return Calculation{}, false
	}

	src := factors.ParseSource(in.CalculationMethod)
	f := factors.Purchase(in.PurchaseType, src)

	kg := f.Value * qty
	tonnes := units.KgToTonnes(kg)

	details := ScopeDetails{
		Kind: DetailsScope3Purchase,
		Scope3Purchase: &Scope3PurchaseDetails{
			PurchaseType:    in.PurchaseType,
			Quantity:        qty,
			Unit:            f.Unit,
			Description:     in.PurchaseDescription,
			Period:          in.PeriodType,
			EmissionsKg:     kg,
			EmissionsTonnes: tonnes,
			Source:          f.Source,
			Timestamp:       now,
		},
	}

	return Calculation{
		Scope:           Scope3,
		Source:          f.Source,
		Description:     fmt.Sprintf("%s purchases, %.6g %s", in.PurchaseType, qty, f.Unit),
		Quantity:        qty,
		Unit:            f.Unit,
		EmissionsKg:     kg,
		EmissionsTonnes: tonnes,
		Details:         details,
	}, true
}
