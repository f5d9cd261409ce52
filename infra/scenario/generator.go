// Package scenario builds the immutable scenario data consumed by the
// allocators, either synthetically from seeded parameters or from a JSON file.
package scenario

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/solalloc/solalloc/core/model"
)

// GeneratorConfig holds the synthetic community parameters. The defaults
// reproduce the reference study: 10 units over 24 hourly periods, solar
// generation peaking between 10:00 and 16:00, hourly demand between 1 and 4.
type GeneratorConfig struct {
	Units   int   `json:"units"`
	Periods int   `json:"periods"`
	Seed    int64 `json:"seed"`

	PeakStartHour int     `json:"peak_start_hour"`
	PeakEndHour   int     `json:"peak_end_hour"`
	PeakGenMin    float64 `json:"peak_gen_min"`
	PeakGenMax    float64 `json:"peak_gen_max"`
	OffGenMin     float64 `json:"off_gen_min"`
	OffGenMax     float64 `json:"off_gen_max"`

	DemandMin float64 `json:"demand_min"`
	DemandMax float64 `json:"demand_max"`
	WeightMin float64 `json:"weight_min"`
	WeightMax float64 `json:"weight_max"`

	// VulnerableShare is the fraction of units, highest weight first,
	// flagged vulnerable.
	VulnerableShare float64 `json:"vulnerable_share"`
	// MinServiceFraction is assigned to every vulnerable unit.
	MinServiceFraction float64 `json:"min_service_fraction"`
}

// SetDefaults applies the reference study parameters.
func (c *GeneratorConfig) SetDefaults() {
	if c.Units == 0 {
		c.Units = 10
	}
	if c.Periods == 0 {
		c.Periods = 24
	}
	if c.Seed == 0 {
		c.Seed = 42
	}
	if c.PeakStartHour == 0 && c.PeakEndHour == 0 {
		c.PeakStartHour, c.PeakEndHour = 10, 16
	}
	if c.PeakGenMin == 0 && c.PeakGenMax == 0 {
		c.PeakGenMin, c.PeakGenMax = 15, 30
	}
	if c.OffGenMin == 0 && c.OffGenMax == 0 {
		c.OffGenMin, c.OffGenMax = 5, 15
	}
	if c.DemandMin == 0 && c.DemandMax == 0 {
		c.DemandMin, c.DemandMax = 1, 4
	}
	if c.WeightMin == 0 && c.WeightMax == 0 {
		c.WeightMin, c.WeightMax = 1, 5
	}
	if c.VulnerableShare == 0 {
		c.VulnerableShare = 0.5
	}
	if c.MinServiceFraction == 0 {
		c.MinServiceFraction = 0.3
	}
}

// Validate checks the parameter ranges.
func (c GeneratorConfig) Validate() error {
	if c.Units <= 0 || c.Periods <= 0 {
		return fmt.Errorf("units and periods must be positive")
	}
	if c.PeakGenMin < 0 || c.PeakGenMax < c.PeakGenMin ||
		c.OffGenMin < 0 || c.OffGenMax < c.OffGenMin {
		return fmt.Errorf("generation bounds must be non-negative and ordered")
	}
	if c.DemandMin < 0 || c.DemandMax < c.DemandMin {
		return fmt.Errorf("demand bounds must be non-negative and ordered")
	}
	if c.WeightMin <= 0 || c.WeightMax < c.WeightMin {
		return fmt.Errorf("weight bounds must be positive and ordered")
	}
	if c.VulnerableShare < 0 || c.VulnerableShare > 1 {
		return fmt.Errorf("vulnerable_share must be in [0,1]")
	}
	if c.MinServiceFraction <= 0 || c.MinServiceFraction > 1 {
		return fmt.Errorf("min_service_fraction must be in (0,1]")
	}
	return nil
}

// Generate builds a reproducible synthetic scenario from cfg. The same seed
// always produces the same scenario.
func Generate(cfg GeneratorConfig) (*model.Scenario, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("scenario generator: %w", err)
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	generation := make([]float64, cfg.Periods)
	for t := range generation {
		lo, hi := cfg.OffGenMin, cfg.OffGenMax
		if t >= cfg.PeakStartHour && t <= cfg.PeakEndHour {
			lo, hi = cfg.PeakGenMin, cfg.PeakGenMax
		}
		generation[t] = uniform(rng, lo, hi)
	}

	demand := make([][]float64, cfg.Units)
	for u := range demand {
		demand[u] = make([]float64, cfg.Periods)
		for t := range demand[u] {
			demand[u][t] = uniform(rng, cfg.DemandMin, cfg.DemandMax)
		}
	}

	weights := make([]float64, cfg.Units)
	for u := range weights {
		weights[u] = uniform(rng, cfg.WeightMin, cfg.WeightMax)
	}

	units := make([]model.Unit, cfg.Units)
	for u := range units {
		units[u] = model.Unit{ID: model.UnitID(u + 1), Weight: weights[u]}
	}
	for _, u := range topByWeight(weights, int(cfg.VulnerableShare*float64(cfg.Units))) {
		units[u].Vulnerable = true
		units[u].MinServiceFraction = cfg.MinServiceFraction
	}

	return model.NewScenario(units, demand, generation)
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// topByWeight returns the indexes of the k highest-weighted units, ties
// broken by lower index.
func topByWeight(weights []float64, k int) []int {
	idx := make([]int, len(weights))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return weights[idx[a]] > weights[idx[b]] })
	if k > len(idx) {
		k = len(idx)
	}
	return idx[:k]
}
