package model

import (
	"errors"
	"fmt"
)

// ErrInvalidScenario marks malformed scenario data. It is detected before any
// allocator runs and is fatal to the scenario run.
var ErrInvalidScenario = errors.New("invalid scenario data")

// Scenario holds the immutable inputs of one allocation run: the per-unit,
// per-period demand matrix, the per-period shared generation and the unit
// attributes. Allocators and the analyzer share it read-only.
type Scenario struct {
	units      []Unit
	demand     [][]float64 // indexed [unit][period]
	generation []float64   // indexed [period]
}

// NewScenario validates the inputs and returns an immutable scenario. The
// demand matrix must have one row per unit and one column per generation
// period, all values non-negative.
func NewScenario(units []Unit, demand [][]float64, generation []float64) (*Scenario, error) {
	if len(units) == 0 {
		return nil, fmt.Errorf("%w: no units", ErrInvalidScenario)
	}
	if len(generation) == 0 {
		return nil, fmt.Errorf("%w: no periods", ErrInvalidScenario)
	}
	if len(demand) != len(units) {
		return nil, fmt.Errorf("%w: demand has %d rows, want %d", ErrInvalidScenario, len(demand), len(units))
	}
	for u, row := range demand {
		if len(row) != len(generation) {
			return nil, fmt.Errorf("%w: demand row %d has %d periods, want %d", ErrInvalidScenario, u, len(row), len(generation))
		}
		for t, d := range row {
			if d < 0 {
				return nil, fmt.Errorf("%w: negative demand %g for unit %d period %d", ErrInvalidScenario, d, u+1, t+1)
			}
		}
	}
	for t, g := range generation {
		if g < 0 {
			return nil, fmt.Errorf("%w: negative generation %g in period %d", ErrInvalidScenario, g, t+1)
		}
	}
	seen := make(map[UnitID]bool, len(units))
	for _, u := range units {
		if u.ID <= 0 {
			return nil, fmt.Errorf("%w: unit ID %d must be positive", ErrInvalidScenario, u.ID)
		}
		if seen[u.ID] {
			return nil, fmt.Errorf("%w: duplicate unit ID %d", ErrInvalidScenario, u.ID)
		}
		seen[u.ID] = true
		if u.Weight <= 0 {
			return nil, fmt.Errorf("%w: unit %d has non-positive weight %g", ErrInvalidScenario, u.ID, u.Weight)
		}
		if u.Vulnerable && (u.MinServiceFraction <= 0 || u.MinServiceFraction > 1) {
			return nil, fmt.Errorf("%w: vulnerable unit %d needs a minimum-service fraction in (0,1], got %g",
				ErrInvalidScenario, u.ID, u.MinServiceFraction)
		}
	}

	s := &Scenario{
		units:      make([]Unit, len(units)),
		demand:     make([][]float64, len(demand)),
		generation: make([]float64, len(generation)),
	}
	copy(s.units, units)
	copy(s.generation, generation)
	for u, row := range demand {
		s.demand[u] = make([]float64, len(row))
		copy(s.demand[u], row)
	}
	return s, nil
}

// NumUnits returns the number of consuming units.
func (s *Scenario) NumUnits() int { return len(s.units) }

// NumPeriods returns the number of planning periods.
func (s *Scenario) NumPeriods() int { return len(s.generation) }

// Unit returns the attributes of the unit at index u (0-based).
func (s *Scenario) Unit(u int) Unit { return s.units[u] }

// Units returns a copy of the unit attributes.
func (s *Scenario) Units() []Unit {
	cp := make([]Unit, len(s.units))
	copy(cp, s.units)
	return cp
}

// Demand returns the energy unit u requires in period t.
func (s *Scenario) Demand(u, t int) float64 { return s.demand[u][t] }

// Generation returns the shared energy available in period t.
func (s *Scenario) Generation(t int) float64 { return s.generation[t] }

// UnitTotalDemand returns unit u's demand summed over the horizon.
func (s *Scenario) UnitTotalDemand(u int) float64 {
	var sum float64
	for _, d := range s.demand[u] {
		sum += d
	}
	return sum
}

// TotalDemand returns the demand of all units over the whole horizon.
func (s *Scenario) TotalDemand() float64 {
	var sum float64
	for u := range s.demand {
		sum += s.UnitTotalDemand(u)
	}
	return sum
}

// TotalGeneration returns the generation summed over the horizon.
func (s *Scenario) TotalGeneration() float64 {
	var sum float64
	for _, g := range s.generation {
		sum += g
	}
	return sum
}

// DemandMatrix returns a copy of the demand matrix.
func (s *Scenario) DemandMatrix() [][]float64 {
	cp := make([][]float64, len(s.demand))
	for u, row := range s.demand {
		cp[u] = make([]float64, len(row))
		copy(cp[u], row)
	}
	return cp
}

// GenerationVector returns a copy of the generation vector.
func (s *Scenario) GenerationVector() []float64 {
	cp := make([]float64, len(s.generation))
	copy(cp, s.generation)
	return cp
}
