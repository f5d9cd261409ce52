// Package results defines how scenario outcomes are handed to recording
// backends.
package results

import (
	"errors"
	"time"

	"github.com/solalloc/solalloc/core/analysis"
	"github.com/solalloc/solalloc/core/model"
)

// ScenarioResult is the outcome of one allocation scenario.
type ScenarioResult struct {
	// RunID ties the three scenarios of one simulation run together.
	RunID    string
	Scenario string
	Time     time.Time
	// Infeasible marks a scenario that produced no allocation because its
	// constraints are jointly unsatisfiable.
	Infeasible bool
	// Degraded marks a best-found allocation returned after a solver
	// resource limit.
	Degraded   bool
	Objective  float64
	Metrics    analysis.Metrics
	UnitTotals []float64
	Energy     [][]float64
	Allocation *model.Allocation
}

// ResultSink records scenario outcomes for persistence or observability.
type ResultSink interface {
	RecordScenarioResult(res ScenarioResult) error
}

// NopSink discards all results.
type NopSink struct{}

// RecordScenarioResult implements ResultSink.
func (NopSink) RecordScenarioResult(ScenarioResult) error { return nil }

// MultiSink fans results out to several sinks. Every sink is attempted even
// if an earlier one fails.
type MultiSink struct {
	sinks []ResultSink
}

// NewMultiSink combines the given sinks.
func NewMultiSink(sinks ...ResultSink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

// RecordScenarioResult implements ResultSink.
func (m *MultiSink) RecordScenarioResult(res ScenarioResult) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.RecordScenarioResult(res); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
