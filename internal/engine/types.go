// Package engine implements the GHG emission-calculation engine: the scope
// 1/2/3 calculators, the calculation orchestrator, the scope-partitioned
// record ledger with its full re-sum aggregator, and the edit/reset session
// workflow that ties them together.
//
// All emissions values on records and results are tonnes CO2e; the
// calculators work in kg internally and convert at the boundary.
package engine

import (
	"time"
)

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

// Sentinel errors. Comparable with errors.Is().
var (
	// ErrScopeMismatch indicates a record whose Scope disagrees with the
	// ledger partition it was directed at.
	ErrScopeMismatch = constError("record scope does not match ledger partition")

	// ErrRecordNotFound indicates a ledger or repository lookup miss.
	ErrRecordNotFound = constError("calculation record not found")

	// ErrNotEditing indicates an edit-mode operation issued while idle.
	ErrNotEditing = constError("session is not in editing mode")

	// ErrUnknownScope indicates a scope value outside scope1/scope2/scope3.
	ErrUnknownScope = constError("unknown emission scope")
)

// Scope is a GHG Protocol scope.
type Scope string

// The three GHG Protocol scopes.
const (
	Scope1 Scope = "scope1"
	Scope2 Scope = "scope2"
	Scope3 Scope = "scope3"
)

// Valid reports whether s is one of the three known scopes.
func (s Scope) Valid() bool {
	return s == Scope1 || s == Scope2 || s == Scope3
}

// Scope3Category selects the scope 3 calculation sub-path.
type Scope3Category string

// Scope 3 sub-paths.
const (
	CategoryTransport Scope3Category = "transport"
	CategoryWaste     Scope3Category = "waste"
	CategoryPurchases Scope3Category = "purchases"
)

// PeriodType is advisory reporting-period metadata carried on details for
// traceability. It never participates in the arithmetic.
type PeriodType string

// Reporting periods.
const (
	PeriodAnnual    PeriodType = "annual"
	PeriodQuarterly PeriodType = "quarterly"
	PeriodMonthly   PeriodType = "monthly"
	PeriodWeekly    PeriodType = "weekly"
	PeriodDaily     PeriodType = "daily"
)

// Input is the transient per-session form state and the sole input to a
// calculation. Quantity fields are strings: the form layer delivers raw
// text and an empty string means "not provided". A quantity participates in
// a calculation only when it parses to a finite number greater than zero.
type Input struct {
	// Scope 1.
	Scope1Source string `json:"scope1Source,omitempty"` // fuel | fleet | other, advisory
	FuelType     string `json:"fuelType,omitempty"`
	FuelQuantity string `json:"fuelQuantity,omitempty"`
	FuelUnit     string `json:"fuelUnit,omitempty"`

	// Scope 2.
	EnergyType          string `json:"energyType,omitempty"`
	EnergyQuantity      string `json:"energyQuantity,omitempty"`      // kWh
	RenewablePercentage string `json:"renewablePercentage,omitempty"` // 0-100; blank lets the provider default fill in
	EnergyProvider      string `json:"energyProvider,omitempty"`      // advisory, pre-fills RenewablePercentage only

	// Scope 3.
	Scope3Category             Scope3Category `json:"scope3Category,omitempty"`
	TransportType              string         `json:"transportType,omitempty"`
	TransportDistance          string         `json:"transportDistance,omitempty"` // km
	VehicleType                string         `json:"vehicleType,omitempty"`
	VehicleFuelType            string         `json:"vehicleFuelType,omitempty"`
	VehicleEnergyClass         string         `json:"vehicleEnergyClass,omitempty"`
	VehicleFuelConsumption     string         `json:"vehicleFuelConsumption,omitempty"`
	VehicleFuelConsumptionUnit string         `json:"vehicleFuelConsumptionUnit,omitempty"` // l_100km | km_l
	WasteType                  string         `json:"wasteType,omitempty"`
	WasteQuantity              string         `json:"wasteQuantity,omitempty"` // kg
	PurchaseType               string         `json:"purchaseType,omitempty"`
	PurchaseQuantity           string         `json:"purchaseQuantity,omitempty"`
	PurchaseDescription        string         `json:"purchaseDescription,omitempty"`

	// Common.
	PeriodType        PeriodType `json:"periodType,omitempty"`
	CalculationMethod string     `json:"calculationMethod,omitempty"` // factor source preference: DEFRA | ISPRA | IPCC

	// Energy-consumption narrative fields. Not ledger state, but co-located
	// reset state: ResetAll clears them together with the ledger.
	EnergyNarrative         string `json:"energyNarrative,omitempty"`
	EnergyEfficiencyActions string `json:"energyEfficiencyActions,omitempty"`
}

// Record is one confirmed, immutable calculation. Editing a record never
// mutates it in place: the session replaces it with a new record under a
// fresh ID, so consumers must not assume ID stability across an edit.
type Record struct {
	ID          string       `json:"id"`
	Scope       Scope        `json:"scope"`
	Source      string       `json:"source"` // provenance label of the factor used
	Description string       `json:"description"`
	Quantity    float64      `json:"quantity"`
	Unit        string       `json:"unit"`
	Emissions   float64      `json:"emissions"` // tonnes CO2e, >= 0
	Details     ScopeDetails `json:"details"`
	Timestamp   time.Time    `json:"timestamp"`
}

// Logs is the scope-partitioned view of the ledger's records.
type Logs struct {
	Scope1Calculations []Record `json:"scope1Calculations"`
	Scope2Calculations []Record `json:"scope2Calculations"`
	Scope3Calculations []Record `json:"scope3Calculations"`
}

// Results are the derived per-scope and grand totals in tonnes CO2e. They
// are always recomputed from the live record set, never trusted
// incrementally.
type Results struct {
	Scope1 float64 `json:"scope1"`
	Scope2 float64 `json:"scope2"`
	Scope3 float64 `json:"scope3"`
	Total  float64 `json:"total"`
}

// Calculation is a scope calculator's output before it is confirmed into a
// ledger record.
type Calculation struct {
	Scope           Scope
	Source          string
	Description     string
	Quantity        float64
	Unit            string
	EmissionsKg     float64
	EmissionsTonnes float64
	Details         ScopeDetails
}
