package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/solalloc/solalloc/core/results"
	"github.com/solalloc/solalloc/infra/scenario"
)

// Config is the root configuration of a simulation run.
type Config struct {
	Scenario ScenarioConfig `json:"scenario"`
	Solver   SolverConfig   `json:"solver"`
	Results  results.Config `json:"results"`
	Logging  LoggingConfig  `json:"logging"`
}

// ScenarioConfig selects the scenario source: an explicit JSON file when File
// is set, otherwise the synthetic generator.
type ScenarioConfig struct {
	File      string                   `json:"file"`
	Generator scenario.GeneratorConfig `json:"generator"`
}

// SolverConfig bounds the integer-program search.
type SolverConfig struct {
	// MaxNodes caps the branch-and-bound tree. Zero keeps the backend default.
	MaxNodes int `json:"max_nodes"`
	// TimeLimitSeconds caps the wall-clock solve time. Zero keeps the backend
	// default.
	TimeLimitSeconds int `json:"time_limit_seconds"`
}

// Load reads the configuration from a YAML or JSON file with optional
// K_-prefixed environment overrides.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides. The callback emits dotted keys, so the
	// provider delimiter must be "." for them to nest.
	if err := k.Load(env.Provider("K_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Scenario.Generator.SetDefaults()
	cfg.Logging.SetDefaults()
	if cfg.Scenario.File == "" {
		if err := cfg.Scenario.Generator.Validate(); err != nil {
			return nil, err
		}
	}
	if err := cfg.Logging.Validate(); err != nil {
		return nil, err
	}
	if cfg.Solver.MaxNodes < 0 || cfg.Solver.TimeLimitSeconds < 0 {
		return nil, fmt.Errorf("solver limits must be non-negative")
	}
	return &cfg, nil
}
