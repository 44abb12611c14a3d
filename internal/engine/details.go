package engine

import (
	"encoding/json"
	"time"
)

// DetailsKind discriminates the ScopeDetails union. For scope 3 the category
// tag is stored explicitly on the record; it is never re-inferred at read
// time from whichever fields happen to be populated.
type DetailsKind string

// Union tags.
const (
	DetailsNone            DetailsKind = ""
	DetailsScope1          DetailsKind = "scope1"
	DetailsScope2          DetailsKind = "scope2"
	DetailsScope3Transport DetailsKind = "scope3_transport"
	DetailsScope3Waste     DetailsKind = "scope3_waste"
	DetailsScope3Purchase  DetailsKind = "scope3_purchase"
)

// ScopeDetails is the tagged union of scope-specific calculation provenance.
// Exactly one variant pointer is set, matching Kind; an all-nil value with
// Kind DetailsNone is the "empty details" produced for malformed stored
// blobs.
type ScopeDetails struct {
	Kind DetailsKind `json:"kind"`

	Scope1          *Scope1Details          `json:"scope1,omitempty"`
	Scope2          *Scope2Details          `json:"scope2,omitempty"`
	Scope3Transport *Scope3TransportDetails `json:"scope3Transport,omitempty"`
	Scope3Waste     *Scope3WasteDetails     `json:"scope3Waste,omitempty"`
	Scope3Purchase  *Scope3PurchaseDetails  `json:"scope3Purchase,omitempty"`
}

// IsZero reports whether no details are attached.
func (d ScopeDetails) IsZero() bool {
	return d.Kind == DetailsNone
}

// Category returns the scope 3 category recorded in the union tag, or ""
// for scope 1/2 and empty details.
func (d ScopeDetails) Category() Scope3Category {
	switch d.Kind {
	case DetailsScope3Transport:
		return CategoryTransport
	case DetailsScope3Waste:
		return CategoryWaste
	case DetailsScope3Purchase:
		return CategoryPurchases
	default:
		return ""
	}
}

// Scope1Details captures a scope 1 fuel-combustion calculation.
type Scope1Details struct {
	FuelType        string     `json:"fuelType"`
	Quantity        float64    `json:"quantity"`
	Unit            string     `json:"unit"`
	Period          PeriodType `json:"periodType,omitempty"`
	EmissionsKg     float64    `json:"emissionsKg"`
	EmissionsTonnes float64    `json:"emissionsTonnes"`
	Source          string     `json:"source"`
	Timestamp       time.Time  `json:"timestamp"`
}

// Scope2Details captures a scope 2 purchased-energy calculation.
type Scope2Details struct {
	EnergyType       string     `json:"energyType"`
	QuantityKWh      float64    `json:"quantityKwh"`
	RenewablePercent float64    `json:"renewablePercentage"`
	Provider         string     `json:"energyProvider,omitempty"`
	Period           PeriodType `json:"periodType,omitempty"`
	EmissionsKg      float64    `json:"emissionsKg"`
	EmissionsTonnes  float64    `json:"emissionsTonnes"`
	Source           string     `json:"source"`
	Timestamp        time.Time  `json:"timestamp"`
}

// VehicleDetails is the traceability sub-record for transport calculations.
// It is attached whenever vehicle fields were present on the input, on the
// standard path too, even though only the vehicle-specific path uses it in
// the arithmetic.
type VehicleDetails struct {
	VehicleType        string  `json:"vehicleType,omitempty"`
	FuelType           string  `json:"vehicleFuelType,omitempty"`
	EnergyClass        string  `json:"vehicleEnergyClass,omitempty"`
	Consumption        float64 `json:"fuelConsumption,omitempty"`
	ConsumptionUnit    string  `json:"fuelConsumptionUnit,omitempty"`
	FuelConsumedLiters float64 `json:"fuelConsumedLiters,omitempty"`
}

// Scope3TransportDetails captures a scope 3 transport calculation.
// VehicleSpecific marks the refined path that derived emissions from the
// vehicle's own fuel consumption rather than the per-km transport factor.
type Scope3TransportDetails struct {
	TransportType   string          `json:"transportType"`
	DistanceKm      float64         `json:"distanceKm"`
	VehicleSpecific bool            `json:"vehicleSpecific"`
	Vehicle         *VehicleDetails `json:"vehicleDetails,omitempty"`
	Period          PeriodType      `json:"periodType,omitempty"`
	EmissionsKg     float64         `json:"emissionsKg"`
	EmissionsTonnes float64         `json:"emissionsTonnes"`
	Source          string          `json:"source"`
	Timestamp       time.Time       `json:"timestamp"`
}

// Scope3WasteDetails captures a scope 3 waste-treatment calculation.
type Scope3WasteDetails struct {
	WasteType       string     `json:"wasteType"`
	QuantityKg      float64    `json:"quantityKg"`
	Period          PeriodType `json:"periodType,omitempty"`
	EmissionsKg     float64    `json:"emissionsKg"`
	EmissionsTonnes float64    `json:"emissionsTonnes"`
	Source          string     `json:"source"`
	Timestamp       time.Time  `json:"timestamp"`
}

// Scope3PurchaseDetails captures a scope 3 purchased-goods calculation.
type Scope3PurchaseDetails struct {
	PurchaseType    string     `json:"purchaseType"`
	Quantity        float64    `json:"quantity"`
	Unit            string     `json:"unit"`                  // kg for goods, "unit" for item counts
	Description     string     `json:"description,omitempty"` // free-text provenance only
	Period          PeriodType `json:"periodType,omitempty"`
	EmissionsKg     float64    `json:"emissionsKg"`
	EmissionsTonnes float64    `json:"emissionsTonnes"`
	Source          string     `json:"source"`
	Timestamp       time.Time  `json:"timestamp"`
}

// MarshalDetails serializes details for persistence.
func MarshalDetails(d ScopeDetails) ([]byte, error) {
	return json.Marshal(d)
}

// ParseDetails deserializes a stored details blob. A malformed blob yields
// empty details and the parse error: the caller logs and keeps the record
// rather than failing the whole load.
func ParseDetails(raw []byte) (ScopeDetails, error) {
	if len(raw) == 0 {
		return ScopeDetails{}, nil
	}

	var d ScopeDetails
	if err := json.Unmarshal(raw, &d); err != nil {
		return ScopeDetails{}, err
	}

	if !d.consistent() {
		return ScopeDetails{}, constError("details blob tag does not match payload")
	}

	return d, nil
}

// consistent checks that the set variant matches Kind.
func (d ScopeDetails) consistent() bool {
	switch d.Kind {
	case DetailsNone:
		return d.Scope1 == nil && d.Scope2 == nil && d.Scope3Transport == nil &&
			d.Scope3Waste == nil && d.Scope3Purchase == nil
	case DetailsScope1:
		return d.Scope1 != nil
	case DetailsScope2:
		return d.Scope2 != nil
	case DetailsScope3Transport:
		return d.Scope3Transport != nil
	case DetailsScope3Waste:
		return d.Scope3Waste != nil
	case DetailsScope3Purchase:
		return d.Scope3Purchase != nil
	default:
		return false
	}
}
