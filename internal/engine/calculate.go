package engine

import "time"

// Outcome is the orchestrator's result bundle: per-scope totals in tonnes
// and the structured calculations that produced them, keyed by scope.
// Scopes that had nothing to calculate are absent from Calculations and
// zero in Results.
type Outcome struct {
	Results      Results
	Calculations map[Scope]Calculation
}

// Calculate runs the scope calculators over the input. With scope "" all
// three scopes are recomputed independently from the same input; with a
// specific scope only that calculator runs, and merging the result with
// prior values for the other scopes is the caller's responsibility.
//
// Calculate is pure: it never touches a ledger. Missing or invalid input
// for a requested scope yields zero emissions and no calculation entry for
// that scope, never an error.
func Calculate(in Input, scope Scope, now time.Time) Outcome {
	out := Outcome{Calculations: make(map[Scope]Calculation)}

	run := func(s Scope, fn func(Input, time.Time) (Calculation, bool)) {
		if scope != "" && scope != s {
			return
		}
		calc, ok := fn(in, now)
		if !ok {
			return
		}
		out.Calculations[s] = calc
		switch s {
		case Scope1:
			out.Results.Scope1 = calc.EmissionsTonnes
		case Scope2:
			out.Results.Scope2 = calc.EmissionsTonnes
		case Scope3:
			out.Results.Scope3 = calc.EmissionsTonnes
		}
	}

	run(Scope1, CalculateScope1)
	run(Scope2, CalculateScope2)
	run(Scope3, CalculateScope3)

	out.Results.Total = out.Results.Scope1 + out.Results.Scope2 + out.Results.Scope3
	return out
}
