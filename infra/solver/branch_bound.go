// Package solver provides a branch-and-bound backend for binary integer
// programs. Node relaxations are linear programs solved with gonum's simplex.
package solver

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	coresolver "github.com/solalloc/solalloc/core/solver"
)

const (
	simplexTol = 1e-7
	// intTol decides when a relaxed variable value counts as integral.
	intTol = 1e-6
	// boundTol guards pruning against simplex round-off.
	boundTol = 1e-9
)

// BranchBound solves binary integer programs by depth-first branch and bound
// over the LP relaxation. When the all-zero assignment is feasible it seeds
// the incumbent, so hitting MaxNodes or TimeLimit always yields a usable
// StatusFeasible solution for capacity-style models. Exhausting the tree
// yields StatusOptimal or StatusInfeasible.
type BranchBound struct {
	// MaxNodes caps the number of explored nodes. Zero means no cap.
	MaxNodes int
	// TimeLimit caps the wall-clock solve time. Zero means no limit.
	TimeLimit time.Duration
}

// NewBranchBound returns a solver with default node and wall-clock caps so a
// solve always terminates.
func NewBranchBound() *BranchBound {
	return &BranchBound{MaxNodes: 200000, TimeLimit: 30 * time.Second}
}

// ErrResourceLimit reports that a node or time limit was reached before any
// integer-feasible solution was found.
var ErrResourceLimit = errors.New("resource limit reached before a feasible solution")

// node fixes a subset of variables to 0 or 1; unfixed variables keep [0,1].
type node struct {
	fixed map[int]float64
}

func (n node) child(variable int, value float64) node {
	cp := make(map[int]float64, len(n.fixed)+1)
	for k, v := range n.fixed {
		cp[k] = v
	}
	cp[variable] = value
	return node{fixed: cp}
}

// Solve implements coresolver.Solver.
func (s *BranchBound) Solve(ctx context.Context, m *coresolver.Model) (coresolver.Solution, error) {
	if err := m.Validate(); err != nil {
		return coresolver.Solution{Status: coresolver.StatusError}, err
	}

	var deadline time.Time
	if s.TimeLimit > 0 {
		deadline = time.Now().Add(s.TimeLimit)
	}

	rel := newRelaxation(m)
	best := coresolver.Solution{Status: coresolver.StatusInfeasible, Objective: math.Inf(-1)}
	haveIncumbent := false
	if zeroFeasible(m) {
		// Seeding with the trivial assignment guarantees resource-limited
		// exits return a solution instead of an error.
		best = coresolver.Solution{Status: coresolver.StatusOptimal, Values: make([]float64, m.NumVars)}
		haveIncumbent = true
	}
	intObjective := integralCoeffs(m.Objective)

	stack := []node{{fixed: map[int]float64{}}}
	nodes := 0
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return coresolver.Solution{Status: coresolver.StatusError}, err
		}
		nodes++
		if (s.MaxNodes > 0 && nodes > s.MaxNodes) || (!deadline.IsZero() && time.Now().After(deadline)) {
			if haveIncumbent {
				best.Status = coresolver.StatusFeasible
				return best, nil
			}
			return coresolver.Solution{Status: coresolver.StatusError}, ErrResourceLimit
		}

		nd := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		values, objective, err := rel.solve(nd.fixed)
		if errors.Is(err, lp.ErrInfeasible) {
			// Prune; at the root this means the whole program is infeasible
			// and the loop falls through to the infeasible outcome.
			continue
		}
		if err != nil {
			// Numerical simplex failures (singular bases) say nothing about
			// the subtree; keep searching it without a relaxation bound.
			if j := firstUnfixed(m.NumVars, nd.fixed); j >= 0 {
				stack = append(stack, nd.child(j, 1), nd.child(j, 0))
			}
			continue
		}
		bound := objective
		if intObjective {
			bound = math.Floor(bound + intTol)
		}
		if haveIncumbent && bound <= best.Objective+boundTol {
			continue
		}

		branch := mostFractional(values, nd.fixed)
		if branch < 0 {
			rounded := roundValues(values)
			obj := dot(m.Objective, rounded)
			if !haveIncumbent || obj > best.Objective {
				best = coresolver.Solution{Status: coresolver.StatusOptimal, Values: rounded, Objective: obj}
				haveIncumbent = true
			}
			continue
		}

		// Explore the branch matching the relaxed value first.
		near, far := 1.0, 0.0
		if values[branch] < 0.5 {
			near, far = 0.0, 1.0
		}
		stack = append(stack, nd.child(branch, far), nd.child(branch, near))
	}

	if haveIncumbent {
		best.Status = coresolver.StatusOptimal
		return best, nil
	}
	return coresolver.Solution{Status: coresolver.StatusInfeasible}, nil
}

// relaxation holds the constraint rows shared by all nodes.
type relaxation struct {
	m *coresolver.Model
	// rows/bounds are the user constraints normalized to coeffs·x <= bound.
	rows   [][]float64
	bounds []float64
}

func newRelaxation(m *coresolver.Model) *relaxation {
	r := &relaxation{m: m}
	for _, c := range m.Constraints {
		coeffs := append([]float64(nil), c.Coeffs...)
		bound := c.Bound
		if c.Rel == coresolver.GreaterEq {
			for i := range coeffs {
				coeffs[i] = -coeffs[i]
			}
			bound = -bound
		}
		r.rows = append(r.rows, coeffs)
		r.bounds = append(r.bounds, bound)
	}
	return r
}

// solve optimizes the node relaxation and returns the full variable values
// and the maximized objective. Fixed variables are substituted out before the
// LP is built, so the program shrinks as the search deepens. The LP is in
// standard form (minimize c'x, Ax=b, x>=0) with one slack per inequality row
// and one upper-bound row per free variable.
func (r *relaxation) solve(fixed map[int]float64) ([]float64, float64, error) {
	n := r.m.NumVars
	free := make([]int, 0, n)
	for j := 0; j < n; j++ {
		if _, ok := fixed[j]; !ok {
			free = append(free, j)
		}
	}

	var rows [][]float64
	var bounds []float64
	for i, coeffs := range r.rows {
		b := r.bounds[i]
		for j, v := range fixed {
			b -= coeffs[j] * v
		}
		rc := make([]float64, len(free))
		active := false
		for k, j := range free {
			if coeffs[j] != 0 {
				rc[k] = coeffs[j]
				active = true
			}
		}
		if !active {
			// The row is fully decided by the fixed variables.
			if b < -simplexTol {
				return nil, 0, lp.ErrInfeasible
			}
			continue
		}
		rows = append(rows, rc)
		bounds = append(bounds, b)
	}

	objConst := 0.0
	for j, v := range fixed {
		objConst += r.m.Objective[j] * v
	}
	full := func(xFree []float64) []float64 {
		x := make([]float64, n)
		for j, v := range fixed {
			x[j] = v
		}
		for k, j := range free {
			x[j] = xFree[k]
		}
		return x
	}

	if len(free) == 0 {
		return full(nil), objConst, nil
	}

	nRows := len(rows) + len(free)
	nCols := len(free) + nRows // one slack per row
	a := mat.NewDense(nRows, nCols, nil)
	b := make([]float64, nRows)
	row := 0
	add := func(coeffs []float64, bound float64) {
		// Normalize to a non-negative right-hand side for the simplex.
		sign := 1.0
		if bound < 0 {
			sign = -1
		}
		for k, v := range coeffs {
			if v != 0 {
				a.Set(row, k, sign*v)
			}
		}
		a.Set(row, len(free)+row, sign)
		b[row] = sign * bound
		row++
	}
	for i := range rows {
		add(rows[i], bounds[i])
	}
	for k := range free {
		ub := make([]float64, len(free))
		ub[k] = 1
		add(ub, 1)
	}

	c := make([]float64, nCols)
	for k, j := range free {
		c[k] = -r.m.Objective[j]
	}

	opt, x, err := lp.Simplex(c, a, b, simplexTol, nil)
	if err != nil {
		if errors.Is(err, lp.ErrInfeasible) {
			return nil, 0, lp.ErrInfeasible
		}
		return nil, 0, fmt.Errorf("lp relaxation: %w", err)
	}
	return full(x[:len(free)]), objConst - opt, nil
}

// zeroFeasible reports whether the all-zero assignment satisfies every
// constraint. It always does for capacity-only models.
func zeroFeasible(m *coresolver.Model) bool {
	for _, c := range m.Constraints {
		if c.Rel == coresolver.LessEq && c.Bound < 0 {
			return false
		}
		if c.Rel == coresolver.GreaterEq && c.Bound > 0 {
			return false
		}
	}
	return true
}

// integralCoeffs reports whether every objective coefficient is an integer,
// which lets relaxation bounds be floored before pruning.
func integralCoeffs(coeffs []float64) bool {
	for _, v := range coeffs {
		if v != math.Trunc(v) {
			return false
		}
	}
	return true
}

func firstUnfixed(n int, fixed map[int]float64) int {
	for j := 0; j < n; j++ {
		if _, ok := fixed[j]; !ok {
			return j
		}
	}
	return -1
}

// mostFractional returns the unfixed variable farthest from integrality, or
// -1 when the solution is integral.
func mostFractional(values []float64, fixed map[int]float64) int {
	best, bestFrac := -1, intTol
	for j, v := range values {
		if _, ok := fixed[j]; ok {
			continue
		}
		frac := math.Min(v, 1-v)
		if frac > bestFrac {
			best, bestFrac = j, frac
		}
	}
	return best
}

func roundValues(values []float64) []float64 {
	out := make([]float64, len(values))
	for j, v := range values {
		if v > 0.5 {
			out[j] = 1
		}
	}
	return out
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
