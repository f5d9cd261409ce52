package alloc

import (
	"fmt"

	"github.com/solalloc/solalloc/core/model"
	"github.com/solalloc/solalloc/core/solver"
)

// varIndex maps a (unit, period) pair to its decision variable.
func varIndex(u, t, numPeriods int) int { return u*numPeriods + t }

// buildCapacityModel declares one binary variable per (unit, period) pair,
// sets the maximize objective to weights[u] per served pair and adds one
// capacity constraint per period.
func buildCapacityModel(sc *model.Scenario, weights []float64) (*solver.Model, error) {
	n, periods := sc.NumUnits(), sc.NumPeriods()
	m := solver.NewModel(n * periods)

	obj := make([]float64, m.NumVars)
	for u := 0; u < n; u++ {
		for t := 0; t < periods; t++ {
			obj[varIndex(u, t, periods)] = weights[u]
		}
	}
	if err := m.Maximize(obj); err != nil {
		return nil, err
	}

	for t := 0; t < periods; t++ {
		coeffs := make([]float64, m.NumVars)
		for u := 0; u < n; u++ {
			coeffs[varIndex(u, t, periods)] = sc.Demand(u, t)
		}
		if err := m.AddLessEq(coeffs, sc.Generation(t)); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// allocationFromSolution converts solved variable values to a served matrix.
// A pair counts as served iff its value exceeds 0.5.
func allocationFromSolution(sc *model.Scenario, values []float64) (*model.Allocation, error) {
	n, periods := sc.NumUnits(), sc.NumPeriods()
	if len(values) != n*periods {
		return nil, fmt.Errorf("solver returned %d values, want %d", len(values), n*periods)
	}
	served := make([][]bool, n)
	for u := range served {
		served[u] = make([]bool, periods)
		for t := 0; t < periods; t++ {
			served[u][t] = values[varIndex(u, t, periods)] > 0.5
		}
	}
	return model.NewAllocation(served), nil
}
