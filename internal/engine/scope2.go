package engine

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ghgledger/ghgledger/internal/factors"
	"github.com/ghgledger/ghgledger/internal/units"
)

// CalculateScope2 computes purchased-energy emissions, discounted by the
// renewable share: factor × kWh × (1 − renewable/100).
//
// A blank renewable percentage is pre-filled from the provider default
// table when the provider is known; the provider itself never participates
// in the arithmetic once a percentage is resolved.
func CalculateScope2(in Input, now time.Time) (Calculation, bool) {
	qty, ok := units.ParseQuantity(in.EnergyQuantity)
	if !ok || in.EnergyType == "" {
		return Calculation{}, false
	}

	renewable := resolveRenewablePercent(in.RenewablePercentage, in.EnergyProvider)

	src := factors.ParseSource(in.CalculationMethod)
	f := factors.Energy(in.EnergyType, src)

	kg := f.Value * qty * (1 - renewable/100)
	tonnes := units.KgToTonnes(kg)

	details := ScopeDetails{
		Kind: DetailsScope2,
		Scope2: &Scope2Details{
			EnergyType:       in.EnergyType,
			QuantityKWh:      qty,
			RenewablePercent: renewable,
			Provider:         in.EnergyProvider,
			Period:           in.PeriodType,
			EmissionsKg:      kg,
			EmissionsTonnes:  tonnes,
			Source:           f.Source,
			Timestamp:        now,
		},
	}

	return Calculation{
		Scope:           Scope2,
		Source:          f.Source,
		Description:     fmt.Sprintf("%s, %.6g kWh (%.6g%% renewable)", in.EnergyType, qty, renewable),
		Quantity:        qty,
		Unit:            f.Unit,
		EmissionsKg:     kg,
		EmissionsTonnes: tonnes,
		Details:         details,
	}, true
}

// resolveRenewablePercent resolves the renewable share: an explicit form
// value wins, then the provider's advisory default, then zero. The result
// is clamped to [0, 100].
func resolveRenewablePercent(raw, provider string) float64 {
	if s := strings.TrimSpace(raw); s != "" {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			return units.ClampPercent(v)
		}
	}

	if share, ok := factors.ProviderRenewableShare(provider); ok {
		return units.ClampPercent(share)
	}

	return 0
}
