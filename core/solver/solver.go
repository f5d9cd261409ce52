// Package solver defines the integer-programming capability the allocators
// rely on. Any backend able to solve a binary program with a linear maximize
// objective and linear inequality constraints can implement Solver.
package solver

import (
	"context"
	"fmt"
)

// Status is the terminal state reported by a solve.
type Status int

const (
	// StatusOptimal means the returned solution is proven optimal.
	StatusOptimal Status = iota
	// StatusFeasible means a resource limit was hit and the returned
	// solution is the best found, not proven optimal.
	StatusFeasible
	// StatusInfeasible means no assignment satisfies the constraints.
	StatusInfeasible
	// StatusError means the backend failed before reaching a conclusion.
	StatusError
)

// String returns a human-readable representation of the status.
func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusFeasible:
		return "feasible"
	case StatusInfeasible:
		return "infeasible"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Relation is the direction of a linear inequality.
type Relation int

const (
	LessEq Relation = iota
	GreaterEq
)

// Constraint is a linear inequality over all decision variables.
type Constraint struct {
	Coeffs []float64
	Rel    Relation
	Bound  float64
}

// Model is a binary integer program: every decision variable takes a value in
// {0,1}, the objective is linear and maximized.
type Model struct {
	NumVars     int
	Objective   []float64
	Constraints []Constraint
}

// NewModel declares numVars binary decision variables.
func NewModel(numVars int) *Model {
	return &Model{NumVars: numVars}
}

// Maximize sets the linear objective coefficients.
func (m *Model) Maximize(coeffs []float64) error {
	if len(coeffs) != m.NumVars {
		return fmt.Errorf("objective has %d coefficients, want %d", len(coeffs), m.NumVars)
	}
	m.Objective = append([]float64(nil), coeffs...)
	return nil
}

// AddLessEq adds the constraint coeffs·x <= bound.
func (m *Model) AddLessEq(coeffs []float64, bound float64) error {
	return m.addConstraint(coeffs, LessEq, bound)
}

// AddGreaterEq adds the constraint coeffs·x >= bound.
func (m *Model) AddGreaterEq(coeffs []float64, bound float64) error {
	return m.addConstraint(coeffs, GreaterEq, bound)
}

func (m *Model) addConstraint(coeffs []float64, rel Relation, bound float64) error {
	if len(coeffs) != m.NumVars {
		return fmt.Errorf("constraint has %d coefficients, want %d", len(coeffs), m.NumVars)
	}
	m.Constraints = append(m.Constraints, Constraint{
		Coeffs: append([]float64(nil), coeffs...),
		Rel:    rel,
		Bound:  bound,
	})
	return nil
}

// Validate checks the model is complete enough to solve.
func (m *Model) Validate() error {
	if m.NumVars <= 0 {
		return fmt.Errorf("model has no decision variables")
	}
	if m.Objective == nil {
		return fmt.Errorf("model has no objective")
	}
	return nil
}

// Solution holds the solved value of every decision variable and the terminal
// status. Values are only meaningful for StatusOptimal and StatusFeasible.
type Solution struct {
	Status    Status
	Values    []float64
	Objective float64
}

// Solver solves binary integer programs. Solve blocks until a terminal status
// is reached or ctx is cancelled.
type Solver interface {
	Solve(ctx context.Context, m *Model) (Solution, error)
}
