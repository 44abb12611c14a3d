package engine

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// BeginEdit switches the session into editing mode for a record: the
// record's scope becomes the active tab and every input field is
// back-filled from the record's stored details, so confirming without
// changes re-derives the same emissions value.
func (s *Session) BeginEdit(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, found := s.ledger.Find(id)
	if !found {
		return fmt.Errorf("begin edit %q: %w", id, ErrRecordNotFound)
	}

	s.mode = ModeEditing
	s.editingID = id
	s.activeScope = rec.Scope
	s.backfillLocked(rec)
	return nil
}

// CancelEdit returns to idle mode. Inputs are left as-is and the ledger is
// untouched.
func (s *Session) CancelEdit() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode != ModeEditing {
		return ErrNotEditing
	}
	s.mode = ModeIdle
	s.editingID = ""
	return nil
}

// ResetScope clears one scope: its ledger partition, its share of the
// totals, and its transient input fields. Persisted rows for the cleared
// records are deleted; a deletion failure restores the pre-reset state.
func (s *Session) ResetScope(ctx context.Context, scope Scope) error {
	if !scope.Valid() {
		return ErrUnknownScope
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapLedger := s.ledger.snapshot()
	snapInput := s.input

	removed := s.partitionLocked(scope)
	s.ledger.ResetScope(scope)
	s.clearScopeInputLocked(scope)
	s.recomputeLocked()

	if err := s.deleteRemoteLocked(ctx, removed); err != nil {
		s.ledger.restore(snapLedger)
		s.input = snapInput
		s.recomputeLocked()
		return fmt.Errorf("resetting %s: %w", scope, err)
	}

	s.exitEditLocked()
	s.emitLocked(Event{Kind: EventReset, Scope: scope, Results: s.results})
	return nil
}

// ResetAll clears every scope, the whole input including the co-located
// energy-narrative fields, and all derived totals.
func (s *Session) ResetAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapLedger := s.ledger.snapshot()
	snapInput := s.input

	logs := s.ledger.Logs()
	removed := append(append(logs.Scope1Calculations, logs.Scope2Calculations...), logs.Scope3Calculations...)
	s.ledger.ResetAll()
	s.input = Input{}
	s.recomputeLocked()

	if err := s.deleteRemoteLocked(ctx, removed); err != nil {
		s.ledger.restore(snapLedger)
		s.input = snapInput
		s.recomputeLocked()
		return fmt.Errorf("resetting all scopes: %w", err)
	}

	s.exitEditLocked()
	s.emitLocked(Event{Kind: EventReset, Results: s.results})
	return nil
}

func (s *Session) exitEditLocked() {
	s.mode = ModeIdle
	s.editingID = ""
}

func (s *Session) partitionLocked(scope Scope) []Record {
	logs := s.ledger.Logs()
	switch scope {
	case Scope1:
		return logs.Scope1Calculations
	case Scope2:
		return logs.Scope2Calculations
	case Scope3:
		return logs.Scope3Calculations
	}
	return nil
}

func (s *Session) deleteRemoteLocked(ctx context.Context, records []Record) error {
	if s.repo == nil {
		return nil
	}
	for _, rec := range records {
		if _, err := s.repo.DeleteRecord(ctx, rec.ID); err != nil {
			return fmt.Errorf("deleting record %s: %w", rec.ID, err)
		}
	}
	return nil
}

func (s *Session) clearScopeInputLocked(scope Scope) {
	switch scope {
	case Scope1:
		s.input.Scope1Source = ""
		s.input.FuelType = ""
		s.input.FuelQuantity = ""
		s.input.FuelUnit = ""
	case Scope2:
		s.input.EnergyType = ""
		s.input.EnergyQuantity = ""
		s.input.RenewablePercentage = ""
		s.input.EnergyProvider = ""
	case Scope3:
		s.input.Scope3Category = ""
		s.input.TransportType = ""
		s.input.TransportDistance = ""
		s.input.VehicleType = ""
		s.input.VehicleFuelType = ""
		s.input.VehicleEnergyClass = ""
		s.input.VehicleFuelConsumption = ""
		s.input.VehicleFuelConsumptionUnit = ""
		s.input.WasteType = ""
		s.input.WasteQuantity = ""
		s.input.PurchaseType = ""
		s.input.PurchaseQuantity = ""
		s.input.PurchaseDescription = ""
	}
}

// backfillLocked fills the form input from a record's stored details. The
// factor-source preference is recovered from the provenance label so an
// unchanged confirm re-resolves the same factor table.
func (s *Session) backfillLocked(rec Record) {
	s.input.CalculationMethod = methodFromLabel(rec.Source)

	switch rec.Details.Kind {
	case DetailsScope1:
		d := rec.Details.Scope1
		s.input.FuelType = d.FuelType
		s.input.FuelQuantity = formatQuantity(d.Quantity)
		s.input.FuelUnit = d.Unit
		s.input.PeriodType = d.Period

	case DetailsScope2:
		d := rec.Details.Scope2
		s.input.EnergyType = d.EnergyType
		s.input.EnergyQuantity = formatQuantity(d.QuantityKWh)
		s.input.RenewablePercentage = strconv.FormatFloat(d.RenewablePercent, 'f', -1, 64)
		s.input.EnergyProvider = d.Provider
		s.input.PeriodType = d.Period

	case DetailsScope3Transport:
		d := rec.Details.Scope3Transport
		s.input.Scope3Category = CategoryTransport
		s.input.TransportType = d.TransportType
		s.input.TransportDistance = formatQuantity(d.DistanceKm)
		s.input.PeriodType = d.Period
		if v := d.Vehicle; v != nil {
			s.input.VehicleType = v.VehicleType
			s.input.VehicleFuelType = v.FuelType
			s.input.VehicleEnergyClass = v.EnergyClass
			s.input.VehicleFuelConsumption = formatQuantity(v.Consumption)
			s.input.VehicleFuelConsumptionUnit = v.ConsumptionUnit
		}

	case DetailsScope3Waste:
		d := rec.Details.Scope3Waste
		s.input.Scope3Category = CategoryWaste
		s.input.WasteType = d.WasteType
		s.input.WasteQuantity = formatQuantity(d.QuantityKg)
		s.input.PeriodType = d.Period

	case DetailsScope3Purchase:
		d := rec.Details.Scope3Purchase
		s.input.Scope3Category = CategoryPurchases
		s.input.PurchaseType = d.PurchaseType
		s.input.PurchaseQuantity = formatQuantity(d.Quantity)
		s.input.PurchaseDescription = d.Description
		s.input.PeriodType = d.Period

	case DetailsNone:
		// Legacy or malformed blob: nothing to back-fill. For scope 3 the
		// category was not stored either, so fall back to inferring it
		// from whichever input field set is already populated.
		if rec.Scope == Scope3 {
			s.input.Scope3Category = inferScope3Category(s.input)
		}
	}
}

// inferScope3Category resolves a missing scope 3 category from the input,
// in priority order: explicit category, transport fields, waste fields,
// purchase fields.
func inferScope3Category(in Input) Scope3Category {
	switch {
	case in.Scope3Category != "":
		return in.Scope3Category
	case in.TransportType != "" || in.TransportDistance != "":
		return CategoryTransport
	case in.WasteType != "" || in.WasteQuantity != "":
		return CategoryWaste
	case in.PurchaseType != "" || in.PurchaseQuantity != "":
		return CategoryPurchases
	default:
		return ""
	}
}

// methodFromLabel recovers the factor-source preference from a provenance
// label such as "DEFRA 2024" or "ISPRA 2023 (default factor)".
func methodFromLabel(label string) string {
	fields := strings.Fields(label)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToUpper(fields[0])
}

// formatQuantity renders a numeric detail value back into its form-field
// string representation. Zero renders as the empty string ("not provided").
func formatQuantity(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
