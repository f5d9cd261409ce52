package scenario

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/solalloc/solalloc/core/model"
)

// fileUnit and fileScenario define the JSON layout for explicit scenario files.
type fileUnit struct {
	ID                 int     `json:"id"`
	Weight             float64 `json:"weight"`
	Vulnerable         bool    `json:"vulnerable"`
	MinServiceFraction float64 `json:"min_service_fraction,omitempty"`
}

type fileScenario struct {
	Units      []fileUnit  `json:"units"`
	Demand     [][]float64 `json:"demand"`
	Generation []float64   `json:"generation"`
}

// Load reads a scenario from a JSON file and validates it.
func Load(path string) (*model.Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var fs fileScenario
	if err := json.Unmarshal(data, &fs); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	units := make([]model.Unit, len(fs.Units))
	for i, u := range fs.Units {
		units[i] = model.Unit{
			ID:                 model.UnitID(u.ID),
			Weight:             u.Weight,
			Vulnerable:         u.Vulnerable,
			MinServiceFraction: u.MinServiceFraction,
		}
	}
	return model.NewScenario(units, fs.Demand, fs.Generation)
}

// Save writes a scenario to a JSON file in the layout Load reads.
func Save(path string, sc *model.Scenario) error {
	fs := fileScenario{
		Demand:     sc.DemandMatrix(),
		Generation: sc.GenerationVector(),
	}
	for _, u := range sc.Units() {
		fs.Units = append(fs.Units, fileUnit{
			ID:                 int(u.ID),
			Weight:             u.Weight,
			Vulnerable:         u.Vulnerable,
			MinServiceFraction: u.MinServiceFraction,
		})
	}
	data, err := json.MarshalIndent(fs, "", "  ")
	if err != nil {
		return fmt.Errorf("encode scenario: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
