// Package analysis derives the comparison metrics from one allocation:
// efficiency, self-sufficiency and equity.
package analysis

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/solalloc/solalloc/core/model"
)

// Metrics is the read-only comparison surface across scenarios.
type Metrics struct {
	// Efficiency is the fraction of available generation actually consumed.
	Efficiency float64 `json:"efficiency"`
	// SelfSufficiency is the fraction of total demand actually met.
	SelfSufficiency float64 `json:"self_sufficiency"`
	// Equity is the population standard deviation of per-unit received
	// energy. Lower is fairer; zero means identical totals.
	Equity float64 `json:"equity"`
}

// Analyze computes the metrics for one (allocation, scenario) pair.
func Analyze(a *model.Allocation, sc *model.Scenario) (Metrics, error) {
	if err := checkDims(a, sc); err != nil {
		return Metrics{}, err
	}
	served := ServedEnergy(a, sc)

	var m Metrics
	if tg := sc.TotalGeneration(); tg > 0 {
		m.Efficiency = served / tg
	}
	if td := sc.TotalDemand(); td > 0 {
		m.SelfSufficiency = served / td
	}
	m.Equity = stat.PopStdDev(UnitTotals(a, sc), nil)
	return m, nil
}

// ServedEnergy returns the total energy delivered by the allocation.
func ServedEnergy(a *model.Allocation, sc *model.Scenario) float64 {
	var sum float64
	for u := 0; u < a.NumUnits(); u++ {
		for t := 0; t < a.NumPeriods(); t++ {
			if a.Served(u, t) {
				sum += sc.Demand(u, t)
			}
		}
	}
	return sum
}

// UnitTotals returns the energy each unit receives over the horizon. This is
// the vector exported alongside the allocation matrix for tabular comparison.
func UnitTotals(a *model.Allocation, sc *model.Scenario) []float64 {
	totals := make([]float64, a.NumUnits())
	for u := range totals {
		for t := 0; t < a.NumPeriods(); t++ {
			if a.Served(u, t) {
				totals[u] += sc.Demand(u, t)
			}
		}
	}
	return totals
}

// EnergyMatrix returns the energy delivered per unit and period: the demand
// where served, zero elsewhere.
func EnergyMatrix(a *model.Allocation, sc *model.Scenario) [][]float64 {
	energy := make([][]float64, a.NumUnits())
	for u := range energy {
		energy[u] = make([]float64, a.NumPeriods())
		for t := 0; t < a.NumPeriods(); t++ {
			if a.Served(u, t) {
				energy[u][t] = sc.Demand(u, t)
			}
		}
	}
	return energy
}

// PeriodLoad returns the energy drawn from the shared pool in period t.
func PeriodLoad(a *model.Allocation, sc *model.Scenario, t int) float64 {
	var sum float64
	for u := 0; u < a.NumUnits(); u++ {
		if a.Served(u, t) {
			sum += sc.Demand(u, t)
		}
	}
	return sum
}

func checkDims(a *model.Allocation, sc *model.Scenario) error {
	if a.NumUnits() != sc.NumUnits() || a.NumPeriods() != sc.NumPeriods() {
		return fmt.Errorf("%w: allocation is %dx%d, scenario is %dx%d",
			model.ErrInvalidScenario, a.NumUnits(), a.NumPeriods(), sc.NumUnits(), sc.NumPeriods())
	}
	return nil
}
