// Package alloc implements the allocation policies compared by the simulator:
// a fixed-order greedy baseline, an unweighted count-maximizing optimizer and
// a weighted optimizer with minimum-service floors for vulnerable units.
package alloc

import (
	"context"
	"errors"

	"github.com/solalloc/solalloc/core/model"
)

// ErrMinServiceInfeasible reports that the minimum-service floors cannot be
// met jointly with the per-period capacity constraints. This is a modeling or
// data problem: the scenario produces no allocation rather than a misleading
// all-zero one.
var ErrMinServiceInfeasible = errors.New("minimum-service floors infeasible with period capacity")

// errModelInfeasible is the backend-level infeasibility outcome before the
// owning allocator attributes it to a constraint class.
var errModelInfeasible = errors.New("model infeasible")

// Result is the outcome of one allocation run.
type Result struct {
	Allocation *model.Allocation
	// Objective is the policy's own objective value: served pair count for
	// the greedy and count policies, weighted served count for the weighted
	// policy.
	Objective float64
	// Degraded reports that the solver stopped at a resource limit and the
	// allocation is the best found rather than proven optimal.
	Degraded bool
}

// Allocator produces one served/unserved matrix for a scenario. Allocators
// never mutate the scenario.
type Allocator interface {
	Name() string
	Allocate(ctx context.Context, sc *model.Scenario) (Result, error)
}
