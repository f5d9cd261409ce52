// Package app wires the scenario source, the allocators, the analyzer and the
// result sinks into one comparison run.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/solalloc/solalloc/config"
	"github.com/solalloc/solalloc/core/alloc"
	"github.com/solalloc/solalloc/core/analysis"
	"github.com/solalloc/solalloc/core/model"
	coreresults "github.com/solalloc/solalloc/core/results"
	"github.com/solalloc/solalloc/infra/logger"
	"github.com/solalloc/solalloc/infra/results"
	"github.com/solalloc/solalloc/infra/scenario"
	infrasolver "github.com/solalloc/solalloc/infra/solver"
)

// Service runs the three allocation policies over one shared scenario and
// records the comparison.
type Service struct {
	cfg   *config.Config
	log   logger.Logger
	sink  coreresults.ResultSink
	runID string

	closers []func()
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	level, err := cfg.Logging.ZerologLevel()
	if err != nil {
		return nil, err
	}
	zerolog.SetGlobalLevel(level)

	svc := &Service{
		cfg:   cfg,
		log:   logger.New("service"),
		runID: uuid.NewString(),
	}

	var sinks []coreresults.ResultSink
	if cfg.Results.CSVDir != "" {
		csvSink, err := results.NewCSVSink(cfg.Results.CSVDir)
		if err != nil {
			return nil, fmt.Errorf("csv sink: %w", err)
		}
		sinks = append(sinks, csvSink)
	}
	if cfg.Results.InfluxEnabled {
		sink := results.NewInfluxSinkWithFallback(
			cfg.Results.InfluxURL, cfg.Results.InfluxToken,
			cfg.Results.InfluxOrg, cfg.Results.InfluxBucket)
		if influx, ok := sink.(*results.InfluxSink); ok {
			svc.closers = append(svc.closers, influx.Close)
		}
		sinks = append(sinks, sink)
	}
	switch len(sinks) {
	case 0:
		svc.sink = coreresults.NopSink{}
	case 1:
		svc.sink = sinks[0]
	default:
		svc.sink = coreresults.NewMultiSink(sinks...)
	}
	return svc, nil
}

// Run executes the comparison once and records every scenario outcome.
func (s *Service) Run(ctx context.Context) error {
	sc, err := s.loadScenario()
	if err != nil {
		return err
	}
	s.log.Infof("run %s: %d units, %d periods, demand %.1f, generation %.1f",
		s.runID, sc.NumUnits(), sc.NumPeriods(), sc.TotalDemand(), sc.TotalGeneration())

	for _, a := range s.allocators(sc) {
		if err := s.runScenario(ctx, a, sc); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) loadScenario() (*model.Scenario, error) {
	if s.cfg.Scenario.File != "" {
		sc, err := scenario.Load(s.cfg.Scenario.File)
		if err != nil {
			return nil, fmt.Errorf("scenario file: %w", err)
		}
		return sc, nil
	}
	return scenario.Generate(s.cfg.Scenario.Generator)
}

func (s *Service) allocators(sc *model.Scenario) []alloc.Allocator {
	solver := infrasolver.NewBranchBound()
	if s.cfg.Solver.MaxNodes > 0 {
		solver.MaxNodes = s.cfg.Solver.MaxNodes
	}
	if s.cfg.Solver.TimeLimitSeconds > 0 {
		solver.TimeLimit = time.Duration(s.cfg.Solver.TimeLimitSeconds) * time.Second
	}
	return []alloc.Allocator{
		alloc.NewGreedyAllocator(alloc.AscendingOrder(sc.NumUnits())),
		alloc.NewCountOptimizer(solver),
		alloc.NewWeightedOptimizer(solver),
	}
}

func (s *Service) runScenario(ctx context.Context, a alloc.Allocator, sc *model.Scenario) error {
	res, err := a.Allocate(ctx, sc)
	if errors.Is(err, alloc.ErrMinServiceInfeasible) {
		s.log.Errorf("%s: %v", a.Name(), err)
		return s.record(coreresults.ScenarioResult{
			RunID:      s.runID,
			Scenario:   a.Name(),
			Time:       time.Now(),
			Infeasible: true,
		})
	}
	if err != nil {
		return fmt.Errorf("%s: %w", a.Name(), err)
	}
	if res.Degraded {
		s.log.Warnf("%s: solver stopped at its resource limit, reporting best-found allocation", a.Name())
	}

	m, err := analysis.Analyze(res.Allocation, sc)
	if err != nil {
		return fmt.Errorf("%s: %w", a.Name(), err)
	}
	s.log.Infof("%s: served %d pairs, efficiency %.3f, self-sufficiency %.3f, equity %.3f",
		a.Name(), res.Allocation.ServedCount(), m.Efficiency, m.SelfSufficiency, m.Equity)

	return s.record(coreresults.ScenarioResult{
		RunID:      s.runID,
		Scenario:   a.Name(),
		Time:       time.Now(),
		Degraded:   res.Degraded,
		Objective:  res.Objective,
		Metrics:    m,
		UnitTotals: analysis.UnitTotals(res.Allocation, sc),
		Energy:     analysis.EnergyMatrix(res.Allocation, sc),
		Allocation: res.Allocation,
	})
}

func (s *Service) record(res coreresults.ScenarioResult) error {
	if err := s.sink.RecordScenarioResult(res); err != nil {
		return fmt.Errorf("record %s: %w", res.Scenario, err)
	}
	return nil
}

// Close releases resources held by the sinks.
func (s *Service) Close() error {
	for _, c := range s.closers {
		c()
	}
	return nil
}
