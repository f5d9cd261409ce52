package alloc

import (
	"context"
	"fmt"

	"github.com/solalloc/solalloc/core/model"
)

// GreedyAllocator serves units sequentially within each period: following the
// configured order, a unit is served iff its full period demand fits in the
// remaining generation. No backtracking and no cross-period carry-over. The
// order is an explicit policy parameter, not an incidental iteration order.
type GreedyAllocator struct {
	Order []model.UnitID
}

// NewGreedyAllocator returns a greedy allocator with the given unit order.
func NewGreedyAllocator(order []model.UnitID) *GreedyAllocator {
	return &GreedyAllocator{Order: append([]model.UnitID(nil), order...)}
}

// AscendingOrder returns the identity order 1..n used as the default policy.
func AscendingOrder(n int) []model.UnitID {
	order := make([]model.UnitID, n)
	for i := range order {
		order[i] = model.UnitID(i + 1)
	}
	return order
}

// Name implements Allocator.
func (g *GreedyAllocator) Name() string { return "greedy" }

// Allocate runs the sequential assignment over all periods in O(N*T).
func (g *GreedyAllocator) Allocate(_ context.Context, sc *model.Scenario) (Result, error) {
	idx, err := g.orderIndexes(sc)
	if err != nil {
		return Result{}, err
	}

	served := make([][]bool, sc.NumUnits())
	for u := range served {
		served[u] = make([]bool, sc.NumPeriods())
	}
	count := 0
	for t := 0; t < sc.NumPeriods(); t++ {
		remaining := sc.Generation(t)
		for _, u := range idx {
			// No early exit on an exhausted pool: a zero-demand unit still
			// fits and counts as served.
			if d := sc.Demand(u, t); d <= remaining {
				served[u][t] = true
				remaining -= d
				count++
			}
		}
	}
	return Result{Allocation: model.NewAllocation(served), Objective: float64(count)}, nil
}

// orderIndexes resolves the configured unit order to scenario row indexes and
// rejects orders that are not a permutation of the scenario's units.
func (g *GreedyAllocator) orderIndexes(sc *model.Scenario) ([]int, error) {
	if len(g.Order) != sc.NumUnits() {
		return nil, fmt.Errorf("%w: order lists %d units, scenario has %d",
			model.ErrInvalidScenario, len(g.Order), sc.NumUnits())
	}
	byID := make(map[model.UnitID]int, sc.NumUnits())
	for u := 0; u < sc.NumUnits(); u++ {
		byID[sc.Unit(u).ID] = u
	}
	idx := make([]int, 0, len(g.Order))
	seen := make(map[model.UnitID]bool, len(g.Order))
	for _, id := range g.Order {
		u, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: order references unknown unit %d", model.ErrInvalidScenario, id)
		}
		if seen[id] {
			return nil, fmt.Errorf("%w: order repeats unit %d", model.ErrInvalidScenario, id)
		}
		seen[id] = true
		idx = append(idx, u)
	}
	return idx, nil
}
