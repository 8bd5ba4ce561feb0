package milp

import (
	"context"
	"math"
)

// iisMaxRows bounds the deletion filter: each candidate row costs one LP
// solve, so large models skip the diagnosis entirely.
const iisMaxRows = 2000

// ComputeIIS attempts to find an irreducible infeasible subset of the named
// constraint rows via a deletion filter on the LP relaxation. It returns nil
// when the relaxation is feasible (integer-only infeasibility), when the
// model is too large, or when ctx expires mid-filter. Best effort only.
func (m *Model) ComputeIIS(ctx context.Context) []string {
	if names := m.trivialViolations(); len(names) > 0 {
		return names
	}
	if len(m.rows) == 0 || len(m.rows) > iisMaxRows {
		return nil
	}

	active := make([]bool, len(m.rows))
	for i := range active {
		active[i] = true
	}
	if m.relaxationFeasible(active) {
		return nil
	}

	for i := range m.rows {
		if ctx.Err() != nil {
			return nil
		}
		active[i] = false
		if m.relaxationFeasible(active) {
			// Removing row i restores feasibility: it belongs to the IIS.
			active[i] = true
		}
	}

	var names []string
	for i, keep := range active {
		if keep {
			names = append(names, m.rows[i].name)
		}
	}
	return names
}

// relaxationFeasible solves the LP relaxation of the row subset, ignoring
// integrality, with the binary upper bounds in place.
func (m *Model) relaxationFeasible(active []bool) bool {
	sub := &Model{names: m.names, kinds: m.kinds, obj: make([]float64, len(m.names))}
	for i, r := range m.rows {
		if active[i] {
			sub.rows = append(sub.rows, r)
		}
	}

	s := sub.standardize()
	lower := make([]float64, s.n)
	upper := make([]float64, s.n)
	for i, kind := range s.kinds {
		if kind == Binary {
			upper[i] = 1
		} else {
			upper[i] = math.Inf(1)
		}
	}
	res := s.solveRelaxation(lower, upper)
	return res.err == nil
}
