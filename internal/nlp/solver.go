package nlp

import "context"

// Func evaluates a scalar function at x
type Func func(x []float64) float64

// Problem describes a single-objective nonlinear program:
// minimize Objective subject to Equalities h(x)=0, Inequalities g(x)>=0,
// and box bounds. Infinite bound entries mean unbounded.
type Problem struct {
	Dim          int
	Objective    Func
	Equalities   []Func
	Inequalities []Func
	Lower        []float64
	Upper        []float64
}

// Status classifies the outcome of a solve
type Status int

const (
	// Converged means the solver met its tolerance on stationarity and
	// feasibility within budget
	Converged Status = iota
	// ToleranceNotMet means the iteration or time budget ran out first
	ToleranceNotMet
	// SolverFailure means the solve broke down (non-finite values, no
	// usable iterate)
	SolverFailure
)

func (s Status) String() string {
	switch s {
	case Converged:
		return "converged"
	case ToleranceNotMet:
		return "tolerance_not_met"
	case SolverFailure:
		return "solver_failure"
	default:
		return "unknown"
	}
}

// Result carries the outcome of a single solve
type Result struct {
	X          []float64 // best iterate found
	F          float64   // objective value at X
	Status     Status
	Iterations int // major iterations, summed over restarts
	FuncEvals  int // objective evaluations, summed over restarts
}

// Solver runs a single-objective NLP from an initial guess. Implementations
// must be safe for concurrent Solve calls; a blocking solve checks ctx and
// returns early with a ToleranceNotMet result when the caller's budget runs
// out.
type Solver interface {
	Solve(ctx context.Context, p Problem, x0 []float64) (Result, error)
}
