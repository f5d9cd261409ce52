package alloc

import (
	"context"
	"errors"
	"fmt"

	"github.com/solalloc/solalloc/core/model"
	"github.com/solalloc/solalloc/core/solver"
)

// WeightedOptimizer maximizes priority-weighted service subject to per-period
// capacity and, for every vulnerable unit, a horizon-wide minimum-service
// floor: the unit's served energy must reach its configured fraction of its
// total demand. The floors can make the program infeasible when aggregate
// generation is too small; that outcome is surfaced as ErrMinServiceInfeasible
// and yields no allocation.
type WeightedOptimizer struct {
	Solver solver.Solver
}

// NewWeightedOptimizer returns an optimizer backed by s.
func NewWeightedOptimizer(s solver.Solver) *WeightedOptimizer {
	return &WeightedOptimizer{Solver: s}
}

// Name implements Allocator.
func (o *WeightedOptimizer) Name() string { return "weighted-equitable" }

// Allocate builds and solves the weighted integer program with service floors.
func (o *WeightedOptimizer) Allocate(ctx context.Context, sc *model.Scenario) (Result, error) {
	weights := make([]float64, sc.NumUnits())
	for u := range weights {
		weights[u] = sc.Unit(u).Weight
	}
	m, err := buildCapacityModel(sc, weights)
	if err != nil {
		return Result{}, fmt.Errorf("build weighted model: %w", err)
	}

	periods := sc.NumPeriods()
	for u := 0; u < sc.NumUnits(); u++ {
		unit := sc.Unit(u)
		if !unit.Vulnerable {
			continue
		}
		total := sc.UnitTotalDemand(u)
		if total == 0 {
			// Zero total demand makes the floor vacuous (0 >= 0).
			continue
		}
		coeffs := make([]float64, m.NumVars)
		for t := 0; t < periods; t++ {
			coeffs[varIndex(u, t, periods)] = sc.Demand(u, t)
		}
		if err := m.AddGreaterEq(coeffs, unit.MinServiceFraction*total); err != nil {
			return Result{}, fmt.Errorf("build weighted model: %w", err)
		}
	}

	res, err := solveModel(ctx, o.Solver, m, sc, "weighted")
	if errors.Is(err, errModelInfeasible) {
		// The capacity-only program is always feasible, so infeasibility
		// here can only come from the minimum-service floors.
		return Result{}, fmt.Errorf("%w: vulnerable units' floors exceed what capacity allows", ErrMinServiceInfeasible)
	}
	return res, err
}
