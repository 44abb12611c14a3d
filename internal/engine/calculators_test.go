package engine

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func TestCalculateScope1DieselDefra(t *testing.T) {
	in := Input{
		FuelType:          "diesel",
		FuelQuantity:      "100",
		FuelUnit:          "L",
		CalculationMethod: "DEFRA",
		PeriodType:        PeriodAnnual,
	}

	calc, ok := CalculateScope1(in, testNow)
	require.True(t, ok)

	// factor_DIESEL_L × 100 / 1000
	assert.InDelta(t, 268.0, calc.EmissionsKg, 1e-9)
	assert.InDelta(t, 0.268, calc.EmissionsTonnes, 1e-9)
	assert.Equal(t, Scope1, calc.Scope)
	assert.Equal(t, "DEFRA 2024", calc.Source)

	require.Equal(t, DetailsScope1, calc.Details.Kind)
	d := calc.Details.Scope1
	require.NotNil(t, d)
	assert.Equal(t, "diesel", d.FuelType)
	assert.Equal(t, 100.0, d.Quantity)
	assert.Equal(t, "L", d.Unit)
	assert.Equal(t, PeriodAnnual, d.Period)
	assert.Equal(t, testNow, d.Timestamp)
}

func TestCalculateScope1QuantityGate(t *testing.T) {
	tests := []struct {
		name     string
		quantity string
	}{
		{name: "empty", quantity: ""},
		{name: "zero", quantity: "0"},
		{name: "negative", quantity: "-5"},
		{name: "non-numeric", quantity: "lots"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := Input{FuelType: "diesel", FuelQuantity: tt.quantity, FuelUnit: "L"}
			_, ok := CalculateScope1(in, testNow)
			assert.False(t, ok)
		})
	}
}

func TestCalculateScope1NoFuelTypeSelected(t *testing.T) {
	_, ok := CalculateScope1(Input{FuelQuantity: "10"}, testNow)
	assert.False(t, ok)
}

func TestCalculateScope2RenewableDiscount(t *testing.T) {
	in := Input{
		EnergyType:          "electricity",
		EnergyQuantity:      "500",
		RenewablePercentage: "20",
		CalculationMethod:   "DEFRA",
	}

	calc, ok := CalculateScope2(in, testNow)
	require.True(t, ok)

	// 0.207 × 500 × 0.8
	assert.InDelta(t, 82.8, calc.EmissionsKg, 1e-9)
	assert.InDelta(t, 0.0828, calc.EmissionsTonnes, 1e-9)

	require.Equal(t, DetailsScope2, calc.Details.Kind)
	assert.Equal(t, 20.0, calc.Details.Scope2.RenewablePercent)
}

func TestCalculateScope2ProviderDefaultFillsBlankPercentage(t *testing.T) {
	in := Input{
		EnergyType:     "electricity",
		EnergyQuantity: "1000",
		EnergyProvider: "iren", // 76% default share
	}

	calc, ok := CalculateScope2(in, testNow)
	require.True(t, ok)
	assert.InDelta(t, 76.0, calc.Details.Scope2.RenewablePercent, 1e-9)

	// Explicit percentage wins over the provider default.
	in.RenewablePercentage = "10"
	calc, ok = CalculateScope2(in, testNow)
	require.True(t, ok)
	assert.InDelta(t, 10.0, calc.Details.Scope2.RenewablePercent, 1e-9)
}

func TestCalculateScope2FullyRenewableIsZero(t *testing.T) {
	in := Input{
		EnergyType:          "electricity",
		EnergyQuantity:      "800",
		RenewablePercentage: "100",
	}

	calc, ok := CalculateScope2(in, testNow)
	require.True(t, ok)
	assert.InDelta(t, 0.0, calc.EmissionsTonnes, 1e-12)
}

func TestCalculateScope3TransportStandardPath(t *testing.T) {
	in := Input{
		Scope3Category:    CategoryTransport,
		TransportType:     "business_travel_car",
		TransportDistance: "300",
		CalculationMethod: "DEFRA",
	}

	calc, ok := CalculateScope3(in, testNow)
	require.True(t, ok)

	assert.InDelta(t, 0.171*300, calc.EmissionsKg, 1e-9)
	require.Equal(t, DetailsScope3Transport, calc.Details.Kind)
	assert.False(t, calc.Details.Scope3Transport.VehicleSpecific)
	assert.Nil(t, calc.Details.Scope3Transport.Vehicle)
}

func TestCalculateScope3VehiclePathTakesPrecedence(t *testing.T) {
	in := Input{
		Scope3Category:             CategoryTransport,
		TransportType:              "business_travel_car",
		TransportDistance:          "300",
		VehicleType:                "car",
		VehicleFuelType:            "diesel",
		VehicleFuelConsumption:     "6",
		VehicleFuelConsumptionUnit: "l_100km",
		CalculationMethod:          "DEFRA",
	}

	calc, ok := CalculateScope3(in, testNow)
	require.True(t, ok)

	// 300 km × 6 L/100km = 18 L × 2.68 kg/L
	assert.InDelta(t, 18*2.68, calc.EmissionsKg, 1e-9)
	require.Equal(t, DetailsScope3Transport, calc.Details.Kind)
	d := calc.Details.Scope3Transport
	assert.True(t, d.VehicleSpecific)
	require.NotNil(t, d.Vehicle)
	assert.InDelta(t, 18.0, d.Vehicle.FuelConsumedLiters, 1e-9)

	// Ensure it differs from what the standard path would have produced.
	assert.Greater(t, math.Abs(calc.EmissionsKg-0.171*300), 1e-6)
}

func TestCalculateScope3VehiclePathKmPerLiter(t *testing.T) {
	in := Input{
		Scope3Category:             CategoryTransport,
		TransportType:              "business_travel_car",
		TransportDistance:          "200",
		VehicleType:                "car",
		VehicleFuelType:            "petrol",
		VehicleFuelConsumption:     "20", // km/L → 5 L/100km
		VehicleFuelConsumptionUnit: "km_l",
	}

	calc, ok := CalculateScope3(in, testNow)
	require.True(t, ok)
	assert.InDelta(t, 200*5.0/100*2.31, calc.EmissionsKg, 1e-9)
}

func TestCalculateScope3VehiclePathElectric(t *testing.T) {
	in := Input{
		Scope3Category:             CategoryTransport,
		TransportType:              "business_travel_car",
		TransportDistance:          "100",
		VehicleType:                "car",
		VehicleFuelType:            "electric",
		VehicleFuelConsumption:     "15",
		VehicleFuelConsumptionUnit: "l_100km",
		CalculationMethod:          "ISPRA",
	}

	calc, ok := CalculateScope3(in, testNow)
	require.True(t, ok)
	assert.InDelta(t, 0.053*100, calc.EmissionsKg, 1e-9)
	assert.True(t, calc.Details.Scope3Transport.VehicleSpecific)
}

func TestCalculateScope3IncompleteVehicleBlockFallsBackToStandard(t *testing.T) {
	in := Input{
		Scope3Category:    CategoryTransport,
		TransportType:     "business_travel_car",
		TransportDistance: "300",
		VehicleType:       "car", // no fuel type, no consumption
		CalculationMethod: "DEFRA",
	}

	calc, ok := CalculateScope3(in, testNow)
	require.True(t, ok)
	assert.InDelta(t, 0.171*300, calc.EmissionsKg, 1e-9)

	// Vehicle traceability is still attached on the standard path.
	d := calc.Details.Scope3Transport
	assert.False(t, d.VehicleSpecific)
	require.NotNil(t, d.Vehicle)
	assert.Equal(t, "car", d.Vehicle.VehicleType)
}

func TestCalculateScope3Waste(t *testing.T) {
	in := Input{
		Scope3Category:    CategoryWaste,
		WasteType:         "landfill",
		WasteQuantity:     "250",
		CalculationMethod: "DEFRA",
	}

	calc, ok := CalculateScope3(in, testNow)
	require.True(t, ok)
	assert.InDelta(t, 0.467*250, calc.EmissionsKg, 1e-9)
	assert.Equal(t, DetailsScope3Waste, calc.Details.Kind)
}

func TestCalculateScope3Purchases(t *testing.T) {
	in := Input{
		Scope3Category:      CategoryPurchases,
		PurchaseType:        "electronics",
		PurchaseQuantity:    "3",
		PurchaseDescription: "laptops for the design team",
	}

	calc, ok := CalculateScope3(in, testNow)
	require.True(t, ok)
	assert.Equal(t, "unit", calc.Unit)
	assert.InDelta(t, 48.0*3, calc.EmissionsKg, 1e-9)
	assert.Equal(t, "laptops for the design team", calc.Details.Scope3Purchase.Description)
}

func TestCalculateScope3NoCategory(t *testing.T) {
	_, ok := CalculateScope3(Input{TransportType: "train", TransportDistance: "10"}, testNow)
	assert.False(t, ok)
}

func TestCalculateOrchestratorAllScopes(t *testing.T) {
	in := Input{
		FuelType:            "diesel",
		FuelQuantity:        "100",
		FuelUnit:            "L",
		EnergyType:          "electricity",
		EnergyQuantity:      "500",
		RenewablePercentage: "20",
		Scope3Category:      CategoryTransport,
		TransportType:       "business_travel_car",
		TransportDistance:   "300",
		CalculationMethod:   "DEFRA",
	}

	out := Calculate(in, "", testNow)

	require.Len(t, out.Calculations, 3)
	assert.InDelta(t, 0.268, out.Results.Scope1, 1e-9)
	assert.InDelta(t, 0.0828, out.Results.Scope2, 1e-9)
	assert.InDelta(t, 0.0513, out.Results.Scope3, 1e-9)
	assert.InDelta(t, out.Results.Scope1+out.Results.Scope2+out.Results.Scope3, out.Results.Total, 1e-12)
}

func TestCalculateOrchestratorScopeFilter(t *testing.T) {
	in := Input{
		FuelType:       "diesel",
		FuelQuantity:   "100",
		FuelUnit:       "L",
		EnergyType:     "electricity",
		EnergyQuantity: "500",
	}

	out := Calculate(in, Scope1, testNow)

	require.Len(t, out.Calculations, 1)
	_, hasScope1 := out.Calculations[Scope1]
	assert.True(t, hasScope1)
	assert.Zero(t, out.Results.Scope2)
	assert.Equal(t, out.Results.Scope1, out.Results.Total)
}

func TestCalculateOrchestratorInvalidInputYieldsZero(t *testing.T) {
	out := Calculate(Input{FuelQuantity: "not a number"}, "", testNow)
	assert.Empty(t, out.Calculations)
	assert.Zero(t, out.Results.Total)
}
