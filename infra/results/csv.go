// Package results provides recording backends for scenario outcomes.
package results

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/solalloc/solalloc/core/results"
	"github.com/solalloc/solalloc/pkg/export"
)

// CSVSink persists each scenario's allocation, served energy and unit totals
// under a directory, plus a cumulative metrics comparison table in CSV and
// JSON. The comparison tables are rewritten after every record so the
// directory is always consistent.
type CSVSink struct {
	dir string

	mu   sync.Mutex
	rows []export.MetricsRow
}

// NewCSVSink creates the output directory if needed.
func NewCSVSink(dir string) (*CSVSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &CSVSink{dir: dir}, nil
}

// RecordScenarioResult implements results.ResultSink.
func (s *CSVSink) RecordScenarioResult(res results.ScenarioResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if res.Allocation != nil {
		if err := s.writeFile(fmt.Sprintf("allocation_%s.csv", res.Scenario), func(f *os.File) error {
			return export.WriteAllocationCSV(f, res.Allocation)
		}); err != nil {
			return err
		}
		if err := s.writeFile(fmt.Sprintf("unit_totals_%s.csv", res.Scenario), func(f *os.File) error {
			return export.WriteUnitTotalsCSV(f, res.UnitTotals)
		}); err != nil {
			return err
		}
		if res.Energy != nil {
			if err := s.writeFile(fmt.Sprintf("energy_%s.csv", res.Scenario), func(f *os.File) error {
				return export.WriteEnergyCSV(f, res.Energy)
			}); err != nil {
				return err
			}
		}
	}

	s.rows = append(s.rows, export.MetricsRow{
		Scenario:   res.Scenario,
		Metrics:    res.Metrics,
		Objective:  res.Objective,
		Degraded:   res.Degraded,
		Infeasible: res.Infeasible,
	})
	if err := s.writeFile("metrics.csv", func(f *os.File) error {
		return export.WriteMetricsCSV(f, s.rows)
	}); err != nil {
		return err
	}
	return s.writeFile("metrics.json", func(f *os.File) error {
		return export.WriteMetricsJSON(f, s.rows)
	})
}

func (s *CSVSink) writeFile(name string, write func(*os.File) error) error {
	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	return f.Close()
}
