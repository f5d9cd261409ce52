package alloc

import (
	"context"
	"errors"
	"testing"

	"github.com/solalloc/solalloc/core/model"
	"github.com/solalloc/solalloc/core/solver"
)

// stubSolver returns a canned solution and captures the model it was given.
type stubSolver struct {
	sol  solver.Solution
	err  error
	seen *solver.Model
}

func (s *stubSolver) Solve(_ context.Context, m *solver.Model) (solver.Solution, error) {
	s.seen = m
	return s.sol, s.err
}

func vulnerableScenario(t *testing.T) *model.Scenario {
	t.Helper()
	units := []model.Unit{
		{ID: 1, Weight: 5, Vulnerable: true, MinServiceFraction: 0.5},
		{ID: 2, Weight: 1},
	}
	sc, err := model.NewScenario(units, [][]float64{{2, 2}, {3, 3}}, []float64{4, 4})
	if err != nil {
		t.Fatalf("scenario: %v", err)
	}
	return sc
}

func TestCountOptimizerModelShape(t *testing.T) {
	sc := twoByTwoScenario(t)
	stub := &stubSolver{sol: solver.Solution{
		Status:    solver.StatusOptimal,
		Values:    []float64{1, 1, 0, 1},
		Objective: 3,
	}}
	o := NewCountOptimizer(stub)
	res, err := o.Allocate(context.Background(), sc)
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	m := stub.seen
	if m.NumVars != 4 {
		t.Fatalf("expected 4 variables got %d", m.NumVars)
	}
	for _, c := range m.Objective {
		if c != 1 {
			t.Fatalf("count objective must be unweighted, got %v", m.Objective)
		}
	}
	// One capacity constraint per period, nothing else.
	if len(m.Constraints) != 2 {
		t.Fatalf("expected 2 constraints got %d", len(m.Constraints))
	}
	for _, c := range m.Constraints {
		if c.Rel != solver.LessEq {
			t.Fatalf("capacity constraints must be <=")
		}
	}
	if res.Objective != 3 || res.Degraded {
		t.Fatalf("unexpected result %+v", res)
	}
	if !res.Allocation.Served(0, 0) || res.Allocation.Served(1, 0) {
		t.Fatalf("allocation does not match solver values")
	}
}

func TestCountOptimizerDegraded(t *testing.T) {
	sc := twoByTwoScenario(t)
	stub := &stubSolver{sol: solver.Solution{
		Status:    solver.StatusFeasible,
		Values:    []float64{1, 0, 0, 0},
		Objective: 1,
	}}
	res, err := NewCountOptimizer(stub).Allocate(context.Background(), sc)
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if !res.Degraded {
		t.Fatalf("expected degraded result")
	}
	if res.Allocation.ServedCount() != 1 {
		t.Fatalf("best-found allocation must be kept")
	}
}

func TestCountOptimizerSolverError(t *testing.T) {
	sc := twoByTwoScenario(t)
	stub := &stubSolver{err: errors.New("boom")}
	if _, err := NewCountOptimizer(stub).Allocate(context.Background(), sc); err == nil {
		t.Fatalf("expected error")
	}
}

func TestWeightedOptimizerModelShape(t *testing.T) {
	sc := vulnerableScenario(t)
	stub := &stubSolver{sol: solver.Solution{
		Status:    solver.StatusOptimal,
		Values:    []float64{1, 1, 0, 0},
		Objective: 10,
	}}
	res, err := NewWeightedOptimizer(stub).Allocate(context.Background(), sc)
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	m := stub.seen
	if m.Objective[0] != 5 || m.Objective[2] != 1 {
		t.Fatalf("objective must carry unit weights, got %v", m.Objective)
	}
	// Two capacity constraints plus one floor for the vulnerable unit.
	if len(m.Constraints) != 3 {
		t.Fatalf("expected 3 constraints got %d", len(m.Constraints))
	}
	floor := m.Constraints[2]
	if floor.Rel != solver.GreaterEq {
		t.Fatalf("floor must be >=")
	}
	if floor.Bound != 0.5*4 {
		t.Fatalf("floor bound must be fraction*total demand, got %v", floor.Bound)
	}
	if floor.Coeffs[2] != 0 || floor.Coeffs[3] != 0 {
		t.Fatalf("floor must only cover the vulnerable unit's variables")
	}
	if res.Objective != 10 {
		t.Fatalf("unexpected objective %v", res.Objective)
	}
}

func TestWeightedOptimizerInfeasible(t *testing.T) {
	sc := vulnerableScenario(t)
	stub := &stubSolver{sol: solver.Solution{Status: solver.StatusInfeasible}}
	_, err := NewWeightedOptimizer(stub).Allocate(context.Background(), sc)
	if !errors.Is(err, ErrMinServiceInfeasible) {
		t.Fatalf("expected ErrMinServiceInfeasible, got %v", err)
	}
}

func TestWeightedOptimizerVacuousFloor(t *testing.T) {
	units := []model.Unit{
		{ID: 1, Weight: 2, Vulnerable: true, MinServiceFraction: 0.5},
		{ID: 2, Weight: 1},
	}
	// The vulnerable unit has zero total demand; its floor is vacuous.
	sc, err := model.NewScenario(units, [][]float64{{0, 0}, {3, 3}}, []float64{4, 4})
	if err != nil {
		t.Fatalf("scenario: %v", err)
	}
	stub := &stubSolver{sol: solver.Solution{
		Status: solver.StatusOptimal,
		Values: []float64{0, 0, 1, 1},
	}}
	if _, err := NewWeightedOptimizer(stub).Allocate(context.Background(), sc); err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if len(stub.seen.Constraints) != 2 {
		t.Fatalf("expected no floor constraint, got %d constraints", len(stub.seen.Constraints))
	}
}
