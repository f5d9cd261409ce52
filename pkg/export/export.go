// Package export writes allocation results in tabular formats suitable for
// external analysis.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/solalloc/solalloc/core/analysis"
	"github.com/solalloc/solalloc/core/model"
)

// MetricsRow is one scenario's line in the cross-scenario comparison table.
type MetricsRow struct {
	Scenario   string           `json:"scenario"`
	Metrics    analysis.Metrics `json:"metrics"`
	Objective  float64          `json:"objective"`
	Degraded   bool             `json:"degraded"`
	Infeasible bool             `json:"infeasible"`
}

// WriteAllocationCSV writes the served (0/1) matrix, one row per unit with
// period columns T1..Tn.
func WriteAllocationCSV(w io.Writer, a *model.Allocation) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header(a.NumPeriods())); err != nil {
		return err
	}
	for u := 0; u < a.NumUnits(); u++ {
		rec := make([]string, a.NumPeriods()+1)
		rec[0] = strconv.Itoa(u + 1)
		for t := 0; t < a.NumPeriods(); t++ {
			if a.Served(u, t) {
				rec[t+1] = "1"
			} else {
				rec[t+1] = "0"
			}
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteEnergyCSV writes a served-energy matrix, one row per unit with period
// columns T1..Tn.
func WriteEnergyCSV(w io.Writer, energy [][]float64) error {
	cw := csv.NewWriter(w)
	if len(energy) == 0 {
		return nil
	}
	if err := cw.Write(header(len(energy[0]))); err != nil {
		return err
	}
	for u, row := range energy {
		rec := make([]string, len(row)+1)
		rec[0] = strconv.Itoa(u + 1)
		for t, e := range row {
			rec[t+1] = formatFloat(e)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteUnitTotalsCSV writes the per-unit total received energy vector.
func WriteUnitTotalsCSV(w io.Writer, totals []float64) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"unit", "energy"}); err != nil {
		return err
	}
	for u, e := range totals {
		if err := cw.Write([]string{strconv.Itoa(u + 1), formatFloat(e)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteMetricsCSV writes the cross-scenario comparison table.
func WriteMetricsCSV(w io.Writer, rows []MetricsRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"scenario", "efficiency", "self_sufficiency", "equity", "objective", "degraded", "infeasible"}); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			r.Scenario,
			formatFloat(r.Metrics.Efficiency),
			formatFloat(r.Metrics.SelfSufficiency),
			formatFloat(r.Metrics.Equity),
			formatFloat(r.Objective),
			strconv.FormatBool(r.Degraded),
			strconv.FormatBool(r.Infeasible),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteMetricsJSON writes the comparison table in JSON format.
func WriteMetricsJSON(w io.Writer, rows []MetricsRow) error {
	enc := json.NewEncoder(w)
	return enc.Encode(rows)
}

func header(periods int) []string {
	h := make([]string, periods+1)
	h[0] = "unit"
	for t := 0; t < periods; t++ {
		h[t+1] = fmt.Sprintf("T%d", t+1)
	}
	return h
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
