// Package factors holds the static emission-factor tables used by the scope
// calculators.
//
// Every factor is expressed in kg CO2e per activity unit and carries a
// provenance label naming the standard it came from. Lookups never fail hard:
// a miss under the preferred source falls back to the default source, and a
// total miss yields a conservative generic factor whose label records the
// fallback, so an unknown activity type degrades a calculation's provenance
// instead of aborting it.
package factors

import "strings"

// Source identifies an emission-factor standard.
type Source string

// Supported factor sources.
const (
	DEFRA Source = "DEFRA"
	ISPRA Source = "ISPRA"
	IPCC  Source = "IPCC"
)

// DefaultSource is the standard used when none is requested or when the
// requested one has no entry for an activity type.
const DefaultSource = DEFRA

// Provenance labels, per source edition.
var sourceLabels = map[Source]string{
	DEFRA: "DEFRA 2024",
	ISPRA: "ISPRA 2023",
	IPCC:  "IPCC 2019",
}

// Factor is one emission factor: kg CO2e per Unit of activity, with the
// provenance label of the standard it was taken from.
type Factor struct {
	Value  float64
	Unit   string
	Source string
}

// ParseSource normalizes a calculation-method string to a Source.
// Unrecognized values map to DefaultSource.
func ParseSource(s string) Source {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(DEFRA):
		return DEFRA
	case string(ISPRA):
		return ISPRA
	case string(IPCC):
		return IPCC
	default:
		return DefaultSource
	}
}

// Label returns the provenance label for a source.
func Label(src Source) string {
	if l, ok := sourceLabels[src]; ok {
		return l
	}
	return sourceLabels[DefaultSource]
}

// fallbackLabel marks a provenance label as the result of a table miss.
func fallbackLabel(src Source) string {
	return Label(src) + " (default factor)"
}

func key(parts ...string) string {
	for i, p := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(p))
	}
	return strings.Join(parts, "|")
}

// Scope 1 fuel combustion factors, keyed by "fuelType|unit".
var fuelFactors = map[Source]map[string]float64{
	DEFRA: {
		"diesel|l":        2.68,
		"petrol|l":        2.31,
		"lpg|l":           1.56,
		"natural_gas|m3":  2.04,
		"natural_gas|kwh": 0.183,
		"heating_oil|l":   2.54,
		"coal|kg":         2.40,
		"wood_pellet|kg":  0.046,
	},
	ISPRA: {
		"diesel|l":        2.65,
		"petrol|l":        2.28,
		"lpg|l":           1.61,
		"natural_gas|m3":  1.98,
		"natural_gas|kwh": 0.180,
		"heating_oil|l":   2.58,
		"coal|kg":         2.38,
		"wood_pellet|kg":  0.030,
	},
	IPCC: {
		"diesel|l":       2.70,
		"petrol|l":       2.33,
		"lpg|l":          1.59,
		"natural_gas|m3": 2.00,
		"heating_oil|l":  2.55,
		"coal|kg":        2.42,
	},
}

// defaultFuelFactor is the conservative stand-in for unknown fuel/unit pairs.
const defaultFuelFactor = 2.70

// Scope 2 purchased-energy factors in kg CO2e per kWh.
var energyFactors = map[Source]map[string]float64{
	DEFRA: {
		"electricity":      0.207,
		"district_heating": 0.171,
		"natural_gas_heat": 0.183,
	},
	ISPRA: {
		"electricity":      0.233,
		"district_heating": 0.150,
		"natural_gas_heat": 0.180,
	},
	IPCC: {
		"electricity":      0.475,
		"district_heating": 0.160,
	},
}

const defaultEnergyFactor = 0.25

// Scope 3 transport factors in kg CO2e per passenger- or vehicle-km.
var transportFactors = map[Source]map[string]float64{
	DEFRA: {
		"business_travel_car": 0.171,
		"car_petrol":          0.163,
		"car_diesel":          0.158,
		"train":               0.036,
		"flight_short_haul":   0.246,
		"flight_long_haul":    0.148,
		"bus":                 0.103,
		"van":                 0.241,
		"truck":               0.850,
		"motorcycle":          0.114,
	},
	ISPRA: {
		"business_travel_car": 0.168,
		"car_petrol":          0.160,
		"car_diesel":          0.156,
		"train":               0.032,
		"flight_short_haul":   0.239,
		"flight_long_haul":    0.152,
		"bus":                 0.098,
		"van":                 0.236,
		"truck":               0.832,
		"motorcycle":          0.110,
	},
}

const defaultTransportFactor = 0.171

// Vehicle-fuel factors for the vehicle-specific transport path, in kg CO2e
// per litre of fuel burned. Electric is the exception: kg CO2e per km, from
// the grid intensity of the charging electricity.
var vehicleFuelFactors = map[Source]map[string]float64{
	DEFRA: {
		"diesel": 2.68,
		"petrol": 2.31,
		"lpg":    1.56,
		"cng":    1.81,
		"hybrid": 2.31,
	},
	ISPRA: {
		"diesel": 2.65,
		"petrol": 2.28,
		"lpg":    1.61,
		"cng":    1.78,
		"hybrid": 2.28,
	},
}

var electricPerKmFactors = map[Source]float64{
	DEFRA: 0.047,
	ISPRA: 0.053,
}

// Scope 3 waste factors in kg CO2e per kg of waste.
var wasteFactors = map[Source]map[string]float64{
	DEFRA: {
		"landfill":     0.467,
		"recycling":    0.021,
		"incineration": 0.215,
		"composting":   0.010,
		"hazardous":    0.283,
	},
	ISPRA: {
		"landfill":     0.452,
		"recycling":    0.020,
		"incineration": 0.208,
		"composting":   0.012,
		"hazardous":    0.275,
	},
}

const defaultWasteFactor = 0.467

// Scope 3 purchase factors. PerItem entries are kg CO2e per purchased item;
// the rest are kg CO2e per kg of purchased goods.
var purchaseFactors = map[Source]map[string]purchaseFactor{
	DEFRA: {
		"paper":       {Value: 0.919},
		"plastic":     {Value: 3.116},
		"metals":      {Value: 2.012},
		"food":        {Value: 3.200},
		"textiles":    {Value: 16.70},
		"electronics": {Value: 48.00, PerItem: true},
		"furniture":   {Value: 46.00, PerItem: true},
		"services":    {Value: 0.250, PerItem: true},
	},
	ISPRA: {
		"paper":       {Value: 0.905},
		"plastic":     {Value: 3.020},
		"metals":      {Value: 1.980},
		"food":        {Value: 3.150},
		"textiles":    {Value: 16.10},
		"electronics": {Value: 47.20, PerItem: true},
		"furniture":   {Value: 45.10, PerItem: true},
		"services":    {Value: 0.250, PerItem: true},
	},
}

type purchaseFactor struct {
	Value   float64
	PerItem bool
}

const defaultPurchaseFactor = 3.116

// Advisory default renewable shares per energy provider, in percent.
// Used only to pre-fill the renewable percentage when the form leaves it
// blank; never consulted once a percentage is resolved.
var providerRenewableShare = map[string]float64{
	"enel":          45.2,
	"eni_plenitude": 32.0,
	"edison":        40.0,
	"a2a":           38.5,
	"hera":          34.0,
	"iren":          76.0,
	"acea":          30.0,
	"sorgenia":      100.0,
}

// lookup resolves a factor value under src with DefaultSource fallback.
// The third return reports whether the value came from a table entry at all.
func lookup(tables map[Source]map[string]float64, k string, src Source) (float64, string, bool) {
	if v, ok := tables[src][k]; ok {
		return v, Label(src), true
	}
	if v, ok := tables[DefaultSource][k]; ok {
		return v, Label(DefaultSource), true
	}
	return 0, "", false
}

// Fuel returns the combustion factor for a scope 1 fuel/unit pair.
func Fuel(fuelType, unit string, src Source) Factor {
	v, label, ok := lookup(fuelFactors, key(fuelType, unit), src)
	if !ok {
		return Factor{Value: defaultFuelFactor, Unit: unit, Source: fallbackLabel(src)}
	}
	return Factor{Value: v, Unit: unit, Source: label}
}

// Energy returns the purchased-energy factor for a scope 2 energy type,
// always per kWh.
func Energy(energyType string, src Source) Factor {
	v, label, ok := lookup(energyFactors, key(energyType), src)
	if !ok {
		return Factor{Value: defaultEnergyFactor, Unit: "kWh", Source: fallbackLabel(src)}
	}
	return Factor{Value: v, Unit: "kWh", Source: label}
}

// Transport returns the per-km factor for a scope 3 transport type.
func Transport(transportType string, src Source) Factor {
	v, label, ok := lookup(transportFactors, key(transportType), src)
	if !ok {
		return Factor{Value: defaultTransportFactor, Unit: "km", Source: fallbackLabel(src)}
	}
	return Factor{Value: v, Unit: "km", Source: label}
}

// VehicleFuel returns the per-litre factor for a vehicle fuel on the
// vehicle-specific transport path. The second return reports whether the
// fuel is electric, in which case the factor is per km instead and callers
// must use the electric formula. An unknown combustion fuel falls back to
// diesel, flagged in the provenance label.
func VehicleFuel(fuelType string, src Source) (Factor, bool) {
	k := key(fuelType)
	if k == "electric" {
		v, ok := electricPerKmFactors[src]
		if !ok {
			v = electricPerKmFactors[DefaultSource]
		}
		return Factor{Value: v, Unit: "km", Source: Label(src)}, true
	}

	v, label, ok := lookup(vehicleFuelFactors, k, src)
	if !ok {
		// Treat an unknown vehicle fuel as diesel, the most common case.
		v, label, _ = lookup(vehicleFuelFactors, "diesel", src)
		label += " (diesel fallback)"
	}
	return Factor{Value: v, Unit: "L", Source: label}, false
}

// Waste returns the per-kg factor for a scope 3 waste type.
func Waste(wasteType string, src Source) Factor {
	v, label, ok := lookup(wasteFactors, key(wasteType), src)
	if !ok {
		return Factor{Value: defaultWasteFactor, Unit: "kg", Source: fallbackLabel(src)}
	}
	return Factor{Value: v, Unit: "kg", Source: label}
}

// Purchase returns the factor for a scope 3 purchase type and the unit it
// applies to: "kg" for goods bought by weight, "unit" for per-item factors.
func Purchase(purchaseType string, src Source) Factor {
	k := key(purchaseType)
	if f, ok := purchaseFactors[src][k]; ok {
		return Factor{Value: f.Value, Unit: purchaseUnit(f), Source: Label(src)}
	}
	if f, ok := purchaseFactors[DefaultSource][k]; ok {
		return Factor{Value: f.Value, Unit: purchaseUnit(f), Source: Label(DefaultSource)}
	}
	return Factor{Value: defaultPurchaseFactor, Unit: "kg", Source: fallbackLabel(src)}
}

func purchaseUnit(f purchaseFactor) string {
	if f.PerItem {
		return "unit"
	}
	return "kg"
}

// ProviderRenewableShare returns the advisory default renewable percentage
// for an energy provider, and whether the provider is known.
func ProviderRenewableShare(provider string) (float64, bool) {
	v, ok := providerRenewableShare[key(provider)]
	return v, ok
}
