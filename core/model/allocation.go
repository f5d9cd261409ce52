package model

// Allocation is the served/unserved decision for every (unit, period) pair of
// one scenario run. A served unit receives its full period demand; there is no
// partial service. Immutable once built.
type Allocation struct {
	served [][]bool
}

// NewAllocation copies the served matrix into an immutable allocation.
func NewAllocation(served [][]bool) *Allocation {
	cp := make([][]bool, len(served))
	for u, row := range served {
		cp[u] = make([]bool, len(row))
		copy(cp[u], row)
	}
	return &Allocation{served: cp}
}

// NumUnits returns the number of unit rows.
func (a *Allocation) NumUnits() int { return len(a.served) }

// NumPeriods returns the number of period columns.
func (a *Allocation) NumPeriods() int {
	if len(a.served) == 0 {
		return 0
	}
	return len(a.served[0])
}

// Served reports whether unit u is served in period t.
func (a *Allocation) Served(u, t int) bool { return a.served[u][t] }

// ServedCount returns the number of served (unit, period) pairs.
func (a *Allocation) ServedCount() int {
	n := 0
	for _, row := range a.served {
		for _, s := range row {
			if s {
				n++
			}
		}
	}
	return n
}

// Matrix returns a copy of the served matrix.
func (a *Allocation) Matrix() [][]bool {
	cp := make([][]bool, len(a.served))
	for u, row := range a.served {
		cp[u] = make([]bool, len(row))
		copy(cp[u], row)
	}
	return cp
}
