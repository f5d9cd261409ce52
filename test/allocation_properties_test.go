package test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/solalloc/solalloc/core/alloc"
	"github.com/solalloc/solalloc/core/analysis"
	"github.com/solalloc/solalloc/core/model"
	"github.com/solalloc/solalloc/infra/scenario"
	infrasolver "github.com/solalloc/solalloc/infra/solver"
)

func allAllocators(n int) []alloc.Allocator {
	s := infrasolver.NewBranchBound()
	return []alloc.Allocator{
		alloc.NewGreedyAllocator(alloc.AscendingOrder(n)),
		alloc.NewCountOptimizer(s),
		alloc.NewWeightedOptimizer(s),
	}
}

func smallScenario(t *testing.T) *model.Scenario {
	t.Helper()
	units := []model.Unit{
		{ID: 1, Weight: 3, Vulnerable: true, MinServiceFraction: 0.3},
		{ID: 2, Weight: 1},
		{ID: 3, Weight: 2},
	}
	demand := [][]float64{
		{2, 3, 1, 2},
		{3, 1, 2, 3},
		{1, 2, 3, 1},
	}
	sc, err := model.NewScenario(units, demand, []float64{4, 4, 3, 5})
	if err != nil {
		t.Fatalf("scenario: %v", err)
	}
	return sc
}

func TestCapacityInvariantAllAllocators(t *testing.T) {
	sc := smallScenario(t)
	for _, a := range allAllocators(sc.NumUnits()) {
		res, err := a.Allocate(context.Background(), sc)
		if err != nil {
			t.Fatalf("%s: %v", a.Name(), err)
		}
		for tt := 0; tt < sc.NumPeriods(); tt++ {
			load := analysis.PeriodLoad(res.Allocation, sc, tt)
			if load > sc.Generation(tt)+1e-6 {
				t.Fatalf("%s: period %d overloaded: %v > %v", a.Name(), tt, load, sc.Generation(tt))
			}
		}
	}
}

func TestOptimizerDominatesGreedy(t *testing.T) {
	sc := smallScenario(t)
	greedy := alloc.NewGreedyAllocator(alloc.AscendingOrder(sc.NumUnits()))
	gres, err := greedy.Allocate(context.Background(), sc)
	if err != nil {
		t.Fatalf("greedy: %v", err)
	}
	count := alloc.NewCountOptimizer(infrasolver.NewBranchBound())
	cres, err := count.Allocate(context.Background(), sc)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if cres.Allocation.ServedCount() < gres.Allocation.ServedCount() {
		t.Fatalf("optimizer served %d pairs, greedy served %d",
			cres.Allocation.ServedCount(), gres.Allocation.ServedCount())
	}
}

func TestConcreteScenarioOptimality(t *testing.T) {
	units := []model.Unit{{ID: 1, Weight: 1}, {ID: 2, Weight: 1}}
	sc, err := model.NewScenario(units, [][]float64{{5, 5}, {5, 5}}, []float64{5, 10})
	if err != nil {
		t.Fatalf("scenario: %v", err)
	}
	count := alloc.NewCountOptimizer(infrasolver.NewBranchBound())
	res, err := count.Allocate(context.Background(), sc)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if res.Degraded {
		t.Fatalf("expected proven optimum")
	}
	if res.Allocation.ServedCount() != 3 {
		t.Fatalf("expected 3 served pairs got %d", res.Allocation.ServedCount())
	}
	m, err := analysis.Analyze(res.Allocation, sc)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if math.Abs(m.Efficiency-1.0) > 1e-9 || math.Abs(m.SelfSufficiency-0.75) > 1e-9 {
		t.Fatalf("unexpected metrics %+v", m)
	}
}

func TestMinServiceFloorEnforced(t *testing.T) {
	sc := smallScenario(t)
	weighted := alloc.NewWeightedOptimizer(infrasolver.NewBranchBound())
	res, err := weighted.Allocate(context.Background(), sc)
	if err != nil {
		t.Fatalf("weighted: %v", err)
	}
	totals := analysis.UnitTotals(res.Allocation, sc)
	for u := 0; u < sc.NumUnits(); u++ {
		unit := sc.Unit(u)
		if !unit.Vulnerable {
			continue
		}
		floor := unit.MinServiceFraction * sc.UnitTotalDemand(u)
		if totals[u] < floor-1e-6 {
			t.Fatalf("unit %d received %v, floor is %v", unit.ID, totals[u], floor)
		}
	}
}

func TestMinServiceInfeasibleSurfaced(t *testing.T) {
	units := []model.Unit{
		{ID: 1, Weight: 2, Vulnerable: true, MinServiceFraction: 1.0},
		{ID: 2, Weight: 1},
	}
	// Unit 1 needs all 10 units of demand served but generation never fits it.
	sc, err := model.NewScenario(units, [][]float64{{5, 5}, {1, 1}}, []float64{4, 4})
	if err != nil {
		t.Fatalf("scenario: %v", err)
	}
	weighted := alloc.NewWeightedOptimizer(infrasolver.NewBranchBound())
	_, err = weighted.Allocate(context.Background(), sc)
	if !errors.Is(err, alloc.ErrMinServiceInfeasible) {
		t.Fatalf("expected ErrMinServiceInfeasible, got %v", err)
	}
}

func TestZeroGenerationAllAllocators(t *testing.T) {
	units := []model.Unit{
		{ID: 1, Weight: 1},
		{ID: 2, Weight: 2},
	}
	sc, err := model.NewScenario(units, [][]float64{{1, 2}, {3, 4}}, []float64{0, 0})
	if err != nil {
		t.Fatalf("scenario: %v", err)
	}
	for _, a := range allAllocators(sc.NumUnits()) {
		res, err := a.Allocate(context.Background(), sc)
		if err != nil {
			t.Fatalf("%s: %v", a.Name(), err)
		}
		if res.Allocation.ServedCount() != 0 {
			t.Fatalf("%s: expected all-false allocation", a.Name())
		}
		m, err := analysis.Analyze(res.Allocation, sc)
		if err != nil {
			t.Fatalf("%s: %v", a.Name(), err)
		}
		if m.Efficiency != 0 || m.SelfSufficiency != 0 || m.Equity != 0 {
			t.Fatalf("%s: expected zero metrics, got %+v", a.Name(), m)
		}
	}
}

func TestGeneratedScenarioEndToEnd(t *testing.T) {
	sc, err := scenario.Generate(scenario.GeneratorConfig{Seed: 42, Units: 5, Periods: 8})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	for _, a := range allAllocators(sc.NumUnits()) {
		res, err := a.Allocate(context.Background(), sc)
		if errors.Is(err, alloc.ErrMinServiceInfeasible) {
			// Legitimate outcome for tight synthetic generation.
			continue
		}
		if err != nil {
			t.Fatalf("%s: %v", a.Name(), err)
		}
		m, err := analysis.Analyze(res.Allocation, sc)
		if err != nil {
			t.Fatalf("%s: %v", a.Name(), err)
		}
		if m.Efficiency < 0 || m.Efficiency > 1 || m.SelfSufficiency < 0 || m.SelfSufficiency > 1 || m.Equity < 0 {
			t.Fatalf("%s: metric bounds violated: %+v", a.Name(), m)
		}
	}
}
