package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/ghgledger/ghgledger/internal/logging"
)

// Repository is the engine's contract with the external storage
// collaborator. Calls are fallible remote operations; failures surface as
// errors to the caller, never as swallowed exceptions.
type Repository interface {
	// LoadRecords returns every persisted calculation record for a report.
	LoadRecords(ctx context.Context, reportID string) ([]Record, error)

	// SaveRecord persists one record for a report.
	SaveRecord(ctx context.Context, reportID string, rec Record) error

	// DeleteRecord removes a persisted record, reporting whether it existed.
	DeleteRecord(ctx context.Context, id string) (bool, error)
}

// Mode is the workflow state: creating new records or editing an existing
// one.
type Mode int

// Workflow modes.
const (
	ModeIdle Mode = iota
	ModeEditing
)

// EventKind classifies session change events.
type EventKind string

// Session change events.
const (
	EventLoaded         EventKind = "loaded"
	EventRecordAdded    EventKind = "record_added"
	EventRecordReplaced EventKind = "record_replaced"
	EventRecordRemoved  EventKind = "record_removed"
	EventReset          EventKind = "reset"
)

// Event describes one observable session change. Results always carries the
// recomputed totals consistent with the ledger at the time of the event.
type Event struct {
	Kind    EventKind
	Scope   Scope
	Record  *Record
	Results Results
}

// Session owns one report's engine state: the transient form input, the
// ledger, and the derived results. It replaces the ad-hoc mutable form
// bags of the original design with a single object and explicit transition
// methods; callers hold a reference and observe change events.
//
// In-memory mutations are applied synchronously before any persistence
// call is issued, so Results is always immediately consistent with the
// visible ledger. A persistence failure rolls the in-memory mutation back
// and surfaces as an error: an unconfirmed add or remove never corrupts
// the aggregate.
type Session struct {
	mu sync.Mutex

	reportID string
	repo     Repository
	notify   func(Event)

	input   Input
	ledger  Ledger
	results Results

	mode        Mode
	editingID   string
	activeScope Scope
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithObserver registers a change-event callback. The callback runs
// synchronously inside session operations and must not call back into the
// session.
func WithObserver(fn func(Event)) SessionOption {
	return func(s *Session) { s.notify = fn }
}

// NewSession creates an empty session for a report backed by repo. A nil
// repo is allowed for purely in-memory use (nothing is persisted).
func NewSession(reportID string, repo Repository, opts ...SessionOption) *Session {
	s := &Session{reportID: reportID, repo: repo}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ReportID returns the report this session belongs to.
func (s *Session) ReportID() string { return s.reportID }

// Input returns a copy of the current form input.
func (s *Session) Input() Input {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input
}

// UpdateInput applies a mutation to the form input. This is the form
// layer's per-keystroke entry point; it has no observable effect on ledger
// or results.
func (s *Session) UpdateInput(fn func(*Input)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.input)
}

// Results returns the current derived totals.
func (s *Session) Results() Results {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.results
}

// Logs returns a copied, scope-partitioned view of the ledger.
func (s *Session) Logs() Logs {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Logs()
}

// Mode returns the current workflow mode.
func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// EditingID returns the ID of the record being edited, or "" when idle.
func (s *Session) EditingID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editingID
}

// ActiveScope returns the scope tab last selected by the workflow.
func (s *Session) ActiveScope() Scope {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeScope
}

// Load rebuilds the ledger from persisted records and recomputes totals.
// Records with an invalid scope are skipped with a warning rather than
// failing the load.
func (s *Session) Load(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}

	records, err := s.repo.LoadRecords(ctx, s.reportID)
	if err != nil {
		return fmt.Errorf("loading calculation records: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	log := logging.FromContext(ctx)
	s.ledger.ResetAll()
	for _, rec := range records {
		if err := s.ledger.Add(rec); err != nil {
			log.Warn().
				Str("component", "engine").
				Str("record_id", rec.ID).
				Str("scope", string(rec.Scope)).
				Msg("skipping persisted record with invalid scope")
		}
	}
	s.recomputeLocked()
	s.emitLocked(Event{Kind: EventLoaded, Results: s.results})
	return nil
}

// Calculate runs the calculator for one scope against the current input
// and confirms the result into the ledger: an add when idle, a replace of
// the record under edit when editing. The second return is false when the
// input had nothing valid to calculate for that scope: "no emissions
// calculated", not a failure.
func (s *Session) Calculate(ctx context.Context, scope Scope) (Record, bool, error) {
	if !scope.Valid() {
		return Record{}, false, ErrUnknownScope
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	out := Calculate(s.input, scope, now)
	calc, ok := out.Calculations[scope]
	if !ok {
		return Record{}, false, nil
	}

	rec := newRecord(calc, now)

	if s.mode == ModeEditing {
		return s.replaceLocked(ctx, rec)
	}
	return s.addLocked(ctx, rec)
}

// addLocked confirms a new record: ledger add, recompute, persist,
// rollback on persistence failure.
func (s *Session) addLocked(ctx context.Context, rec Record) (Record, bool, error) {
	if err := s.ledger.Add(rec); err != nil {
		return Record{}, false, err
	}
	s.recomputeLocked()

	if err := s.persistLocked(ctx, rec); err != nil {
		s.ledger.Remove(rec.ID)
		s.recomputeLocked()
		return Record{}, false, fmt.Errorf("saving calculation record: %w", err)
	}

	s.emitLocked(Event{Kind: EventRecordAdded, Scope: rec.Scope, Record: &rec, Results: s.results})
	logging.FromContext(ctx).Debug().
		Str("component", "engine").
		Str("operation", "add_record").
		Str("record_id", rec.ID).
		Str("scope", string(rec.Scope)).
		Float64("emissions_t", rec.Emissions).
		Msg("calculation record added")
	return rec, true, nil
}

// replaceLocked confirms an edit: the record under edit is replaced by rec
// (fresh ID), persisted, and the stale row deleted. Any persistence
// failure restores the pre-edit state.
func (s *Session) replaceLocked(ctx context.Context, rec Record) (Record, bool, error) {
	snap := s.ledger.snapshot()

	old, err := s.ledger.Replace(s.editingID, rec)
	if err != nil {
		return Record{}, false, err
	}
	s.recomputeLocked()

	if err := s.persistLocked(ctx, rec); err != nil {
		s.ledger.restore(snap)
		s.recomputeLocked()
		return Record{}, false, fmt.Errorf("saving replacement record: %w", err)
	}

	if s.repo != nil {
		if _, err := s.repo.DeleteRecord(ctx, old.ID); err != nil {
			// The replacement is saved; losing the stale row only on the
			// next load is preferable to unwinding a confirmed edit.
			logging.FromContext(ctx).Warn().
				Str("component", "engine").
				Str("record_id", old.ID).
				Err(err).
				Msg("could not delete superseded record")
		}
	}

	s.mode = ModeIdle
	s.editingID = ""
	s.emitLocked(Event{Kind: EventRecordReplaced, Scope: rec.Scope, Record: &rec, Results: s.results})
	return rec, true, nil
}

// RemoveRecord deletes a record by ID from ledger and storage. A missing
// ID reports found=false without error; a persistence failure restores the
// record.
func (s *Session) RemoveRecord(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, found := s.ledger.Remove(id)
	if !found {
		return false, nil
	}
	s.recomputeLocked()

	if s.repo != nil {
		if _, err := s.repo.DeleteRecord(ctx, id); err != nil {
			_ = s.ledger.Add(rec)
			s.recomputeLocked()
			return true, fmt.Errorf("deleting calculation record: %w", err)
		}
	}

	if s.mode == ModeEditing && s.editingID == id {
		s.mode = ModeIdle
		s.editingID = ""
	}

	s.emitLocked(Event{Kind: EventRecordRemoved, Scope: rec.Scope, Record: &rec, Results: s.results})
	return true, nil
}

// persistLocked saves rec. The session mutex is held across the remote
// call, so saves for one record are strictly serialized: a stale
// completion can never race ahead of a newer one and overwrite local
// state.
func (s *Session) persistLocked(ctx context.Context, rec Record) error {
	if s.repo == nil {
		return nil
	}
	return s.repo.SaveRecord(ctx, s.reportID, rec)
}

// newRecord stamps a calculation into an immutable ledger record with a
// fresh ULID.
func newRecord(calc Calculation, now time.Time) Record {
	return Record{
		ID:          ulid.Make().String(),
		Scope:       calc.Scope,
		Source:      calc.Source,
		Description: calc.Description,
		Quantity:    calc.Quantity,
		Unit:        calc.Unit,
		Emissions:   calc.EmissionsTonnes,
		Details:     calc.Details,
		Timestamp:   now,
	}
}

func (s *Session) recomputeLocked() {
	s.results = Recompute(s.ledger.Logs())
}

func (s *Session) emitLocked(ev Event) {
	if s.notify != nil {
		s.notify(ev)
	}
}
