package alloc

import (
	"context"
	"fmt"

	"github.com/solalloc/solalloc/core/model"
	"github.com/solalloc/solalloc/core/solver"
)

// CountOptimizer maximizes the total number of served (unit, period) pairs
// subject to per-period capacity. No unit-specific weighting or floors. The
// program is always feasible (serving nobody satisfies every constraint), so
// the only expected terminal states are optimal and resource-limited feasible.
type CountOptimizer struct {
	Solver solver.Solver
}

// NewCountOptimizer returns an optimizer backed by s.
func NewCountOptimizer(s solver.Solver) *CountOptimizer {
	return &CountOptimizer{Solver: s}
}

// Name implements Allocator.
func (o *CountOptimizer) Name() string { return "count-optimal" }

// Allocate builds and solves the unweighted integer program.
func (o *CountOptimizer) Allocate(ctx context.Context, sc *model.Scenario) (Result, error) {
	weights := make([]float64, sc.NumUnits())
	for u := range weights {
		weights[u] = 1
	}
	m, err := buildCapacityModel(sc, weights)
	if err != nil {
		return Result{}, fmt.Errorf("build count model: %w", err)
	}
	return solveModel(ctx, o.Solver, m, sc, "count")
}

// solveModel runs the backend and maps its terminal status to an allocation
// result. Infeasibility is reported as errModelInfeasible for the caller to
// translate; it is never expected for capacity-only models.
func solveModel(ctx context.Context, s solver.Solver, m *solver.Model, sc *model.Scenario, kind string) (Result, error) {
	sol, err := s.Solve(ctx, m)
	if err != nil {
		return Result{}, fmt.Errorf("solve %s model: %w", kind, err)
	}
	switch sol.Status {
	case solver.StatusOptimal, solver.StatusFeasible:
		a, err := allocationFromSolution(sc, sol.Values)
		if err != nil {
			return Result{}, fmt.Errorf("%s model: %w", kind, err)
		}
		return Result{
			Allocation: a,
			Objective:  sol.Objective,
			Degraded:   sol.Status == solver.StatusFeasible,
		}, nil
	case solver.StatusInfeasible:
		return Result{}, fmt.Errorf("%s model: %w", kind, errModelInfeasible)
	default:
		return Result{}, fmt.Errorf("%s model terminated with status %s", kind, sol.Status)
	}
}
