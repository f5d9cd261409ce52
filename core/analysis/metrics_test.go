package analysis

import (
	"math"
	"testing"

	"github.com/solalloc/solalloc/core/model"
)

func scenario(t *testing.T, demand [][]float64, gen []float64) *model.Scenario {
	t.Helper()
	units := make([]model.Unit, len(demand))
	for i := range units {
		units[i] = model.Unit{ID: model.UnitID(i + 1), Weight: 1}
	}
	sc, err := model.NewScenario(units, demand, gen)
	if err != nil {
		t.Fatalf("scenario: %v", err)
	}
	return sc
}

func TestAnalyzeConcreteScenario(t *testing.T) {
	sc := scenario(t, [][]float64{{5, 5}, {5, 5}}, []float64{5, 10})
	// Optimal allocation: one unit in period 1, both in period 2.
	a := model.NewAllocation([][]bool{{true, true}, {false, true}})
	m, err := Analyze(a, sc)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if math.Abs(m.Efficiency-1.0) > 1e-9 {
		t.Fatalf("expected efficiency 1.0 got %v", m.Efficiency)
	}
	if math.Abs(m.SelfSufficiency-0.75) > 1e-9 {
		t.Fatalf("expected self-sufficiency 0.75 got %v", m.SelfSufficiency)
	}
	// Unit totals are 10 and 5; population std dev is 2.5.
	if math.Abs(m.Equity-2.5) > 1e-9 {
		t.Fatalf("expected equity 2.5 got %v", m.Equity)
	}
}

func TestAnalyzeBounds(t *testing.T) {
	sc := scenario(t, [][]float64{{1, 2}, {3, 4}}, []float64{3, 6})
	a := model.NewAllocation([][]bool{{true, false}, {false, true}})
	m, err := Analyze(a, sc)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if m.Efficiency < 0 || m.Efficiency > 1 {
		t.Fatalf("efficiency out of bounds: %v", m.Efficiency)
	}
	if m.SelfSufficiency < 0 || m.SelfSufficiency > 1 {
		t.Fatalf("self-sufficiency out of bounds: %v", m.SelfSufficiency)
	}
	if m.Equity < 0 {
		t.Fatalf("equity must be non-negative: %v", m.Equity)
	}
}

func TestAnalyzeZeroGeneration(t *testing.T) {
	sc := scenario(t, [][]float64{{1, 1}, {1, 1}}, []float64{0, 0})
	a := model.NewAllocation([][]bool{{false, false}, {false, false}})
	m, err := Analyze(a, sc)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if m.Efficiency != 0 || m.SelfSufficiency != 0 || m.Equity != 0 {
		t.Fatalf("expected all-zero metrics, got %+v", m)
	}
}

func TestAnalyzeEqualTotalsEquityZero(t *testing.T) {
	sc := scenario(t, [][]float64{{2, 2}, {2, 2}}, []float64{4, 4})
	a := model.NewAllocation([][]bool{{true, true}, {true, true}})
	m, err := Analyze(a, sc)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if m.Equity != 0 {
		t.Fatalf("identical totals must give equity 0, got %v", m.Equity)
	}
	if m.Efficiency != 1 || m.SelfSufficiency != 1 {
		t.Fatalf("unexpected metrics %+v", m)
	}
}

func TestAnalyzeDimensionMismatch(t *testing.T) {
	sc := scenario(t, [][]float64{{1, 2}, {3, 4}}, []float64{3, 6})
	a := model.NewAllocation([][]bool{{true, false}})
	if _, err := Analyze(a, sc); err == nil {
		t.Fatalf("expected dimension error")
	}
}

func TestUnitTotalsAndPeriodLoad(t *testing.T) {
	sc := scenario(t, [][]float64{{1, 2}, {3, 4}}, []float64{4, 6})
	a := model.NewAllocation([][]bool{{true, true}, {true, false}})
	totals := UnitTotals(a, sc)
	if totals[0] != 3 || totals[1] != 3 {
		t.Fatalf("unexpected totals %v", totals)
	}
	if PeriodLoad(a, sc, 0) != 4 || PeriodLoad(a, sc, 1) != 2 {
		t.Fatalf("unexpected period loads")
	}
	if ServedEnergy(a, sc) != 6 {
		t.Fatalf("unexpected served energy %v", ServedEnergy(a, sc))
	}
}
