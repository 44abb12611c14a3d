package engine

// Ledger is the in-memory, scope-partitioned append log of confirmed
// calculation records. Records are immutable once added; editing is
// modeled as remove-then-add under a new ID, never in-place mutation.
//
// The ledger is not safe for concurrent use; the owning Session serializes
// access.
type Ledger struct {
	scope1 []Record
	scope2 []Record
	scope3 []Record
}

// Add appends a record to the partition matching its scope. It returns
// ErrUnknownScope for an invalid scope; the partition always agrees with
// record.Scope by construction.
func (l *Ledger) Add(rec Record) error {
	switch rec.Scope {
	case Scope1:
		l.scope1 = append(l.scope1, rec)
	case Scope2:
		l.scope2 = append(l.scope2, rec)
	case Scope3:
		l.scope3 = append(l.scope3, rec)
	default:
		return ErrUnknownScope
	}
	return nil
}

// Find returns the record with the given ID, searching all partitions.
func (l *Ledger) Find(id string) (Record, bool) {
	for _, part := range [][]Record{l.scope1, l.scope2, l.scope3} {
		for _, rec := range part {
			if rec.ID == id {
				return rec, true
			}
		}
	}
	return Record{}, false
}

// Remove deletes the record with the given ID from whichever partition
// holds it, returning the removed record. A miss is a no-op reported via
// the second return, not an error.
func (l *Ledger) Remove(id string) (Record, bool) {
	for _, part := range []*[]Record{&l.scope1, &l.scope2, &l.scope3} {
		for i, rec := range *part {
			if rec.ID == id {
				*part = append((*part)[:i], (*part)[i+1:]...)
				return rec, true
			}
		}
	}
	return Record{}, false
}

// Replace removes the record with the given ID and adds its replacement,
// which carries its own (new) ID. Used by the edit workflow.
func (l *Ledger) Replace(id string, rec Record) (Record, error) {
	old, found := l.Remove(id)
	if !found {
		return Record{}, ErrRecordNotFound
	}
	if err := l.Add(rec); err != nil {
		// Put the original back so a bad replacement cannot lose a record.
		_ = l.Add(old)
		return Record{}, err
	}
	return old, nil
}

// ResetScope empties one partition.
func (l *Ledger) ResetScope(scope Scope) {
	switch scope {
	case Scope1:
		l.scope1 = nil
	case Scope2:
		l.scope2 = nil
	case Scope3:
		l.scope3 = nil
	}
}

// ResetAll empties every partition.
func (l *Ledger) ResetAll() {
	l.scope1, l.scope2, l.scope3 = nil, nil, nil
}

// Len returns the total number of records across all partitions.
func (l *Ledger) Len() int {
	return len(l.scope1) + len(l.scope2) + len(l.scope3)
}

// Logs returns a copied, scope-partitioned view of the records.
func (l *Ledger) Logs() Logs {
	return Logs{
		Scope1Calculations: append([]Record(nil), l.scope1...),
		Scope2Calculations: append([]Record(nil), l.scope2...),
		Scope3Calculations: append([]Record(nil), l.scope3...),
	}
}

// snapshot captures the full ledger state for rollback.
func (l *Ledger) snapshot() Logs {
	return l.Logs()
}

// restore replaces the ledger state with a previously captured snapshot.
func (l *Ledger) restore(s Logs) {
	l.scope1 = append([]Record(nil), s.Scope1Calculations...)
	l.scope2 = append([]Record(nil), s.Scope2Calculations...)
	l.scope3 = append([]Record(nil), s.Scope3Calculations...)
}

// Recompute derives per-scope and grand totals by a full re-sum over the
// current record set. It is invoked after every ledger mutation and never
// replaced by incremental adjustments, so any inconsistency self-heals on
// the next recompute instead of compounding.
func Recompute(logs Logs) Results {
	var r Results
	for _, rec := range logs.Scope1Calculations {
		r.Scope1 += rec.Emissions
	}
	for _, rec := range logs.Scope2Calculations {
		r.Scope2 += rec.Emissions
	}
	for _, rec := range logs.Scope3Calculations {
		r.Scope3 += rec.Emissions
	}
	r.Total = r.Scope1 + r.Scope2 + r.Scope3
	return r
}
