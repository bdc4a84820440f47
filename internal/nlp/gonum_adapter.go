package nlp

import (
	"context"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/optimize"
)

// GonumConfig configures the gonum-backed NLP solver
type GonumConfig struct {
	Tol        float64 // feasibility and stationarity tolerance
	MaxIters   int     // major iteration budget per inner solve
	OuterIters int     // augmented Lagrangian multiplier updates
	Method     string  // lbfgs, bfgs, cg, neldermead
}

// DefaultGonumConfig returns the solver defaults used by the CLI
func DefaultGonumConfig() GonumConfig {
	return GonumConfig{
		Tol:        1e-8,
		MaxIters:   400,
		OuterIters: 40,
		Method:     "lbfgs",
	}
}

// GonumSolver adapts gonum's unconstrained optimizers to the constrained
// Solver contract. Constraints and finite bounds are folded into an
// augmented Lagrangian whose multipliers are updated in an outer loop;
// each inner minimization runs gonum's optimize.Minimize with
// finite-difference gradients.
type GonumSolver struct {
	cfg GonumConfig
}

// Central-difference gradients bottom out near 1e-9, so the stationarity
// test is floored there even when the configured tolerance is tighter.
const gradFloor = 1e-9

// NewGonum creates a gonum solver adapter, validating the method name
func NewGonum(cfg GonumConfig) (Solver, error) {
	def := DefaultGonumConfig()
	if cfg.Tol <= 0 {
		return nil, fmt.Errorf("solver tolerance must be positive, got %g", cfg.Tol)
	}
	if cfg.MaxIters <= 0 {
		cfg.MaxIters = def.MaxIters
	}
	if cfg.OuterIters <= 0 {
		cfg.OuterIters = def.OuterIters
	}
	if _, err := methodFor(cfg.Method); err != nil {
		return nil, err
	}
	return &GonumSolver{cfg: cfg}, nil
}

// Solve runs the augmented Lagrangian loop (or a single unconstrained
// minimization when the problem has no constraints and no finite bounds)
func (s *GonumSolver) Solve(ctx context.Context, p Problem, x0 []float64) (Result, error) {
	if p.Objective == nil {
		return Result{}, fmt.Errorf("problem has no objective")
	}
	if p.Dim <= 0 {
		return Result{}, fmt.Errorf("non-positive problem dimension %d", p.Dim)
	}
	if len(x0) != p.Dim {
		return Result{}, fmt.Errorf("initial guess has %d entries, want %d", len(x0), p.Dim)
	}

	x := make([]float64, p.Dim)
	copy(x, x0)
	clampToBounds(x, p.Lower, p.Upper)

	ineqs := boundInequalities(p)
	if len(p.Equalities) == 0 && len(ineqs) == 0 {
		return s.solveUnconstrained(ctx, p, x), nil
	}

	lambda := make([]float64, len(p.Equalities))
	mu := make([]float64, len(ineqs))
	rho := 10.0
	prevViol := math.Inf(1)

	var iters, evals int
	lastInnerOK := false

	for outer := 0; outer < s.cfg.OuterIters; outer++ {
		if ctx.Err() != nil {
			// caller budget ran out mid-sequence
			return s.finish(p, x, ToleranceNotMet, iters, evals), nil
		}

		lag := augLag(p, ineqs, lambda, mu, rho)
		inner, err := s.minimize(lag, x)
		if inner != nil && len(inner.X) == p.Dim && isFinite(inner.X) {
			copy(x, inner.X)
			iters += inner.Stats.MajorIterations
			evals += inner.Stats.FuncEvaluations
			lastInnerOK = err == nil && convergedStatus(inner.Status)
		} else {
			lastInnerOK = false
		}

		viol := 0.0
		for j, h := range p.Equalities {
			hv := h(x)
			lambda[j] -= rho * hv
			viol = math.Max(viol, math.Abs(hv))
		}
		for j, g := range ineqs {
			gv := g(x)
			mu[j] = math.Max(0, mu[j]-rho*gv)
			viol = math.Max(viol, math.Max(0, -gv))
		}

		if viol <= s.cfg.Tol && lastInnerOK {
			return s.finish(p, x, Converged, iters, evals), nil
		}

		// Grow the penalty when feasibility stalls; cap to keep the
		// inner problem conditioned.
		if viol > 0.25*prevViol && rho < 1e12 {
			rho *= 10
		}
		prevViol = viol
	}

	return s.finish(p, x, ToleranceNotMet, iters, evals), nil
}

func (s *GonumSolver) solveUnconstrained(ctx context.Context, p Problem, x []float64) Result {
	if ctx.Err() != nil {
		return s.finish(p, x, ToleranceNotMet, 0, 0)
	}
	inner, err := s.minimize(p.Objective, x)
	if inner == nil || len(inner.X) != p.Dim || !isFinite(inner.X) {
		return s.finish(p, x, SolverFailure, 0, 0)
	}
	copy(x, inner.X)
	return s.finish(p, x, statusFor(inner.Status, err), inner.Stats.MajorIterations, inner.Stats.FuncEvaluations)
}

// minimize runs one inner unconstrained solve. Gradient-based line searches
// can fail on the kinked augmented Lagrangian, so a failed run is retried
// once with Nelder-Mead before giving up.
func (s *GonumSolver) minimize(f Func, x0 []float64) (*optimize.Result, error) {
	prob := optimize.Problem{
		Func: f,
		Grad: func(grad, x []float64) {
			fd.Gradient(grad, f, x, &fd.Settings{Formula: fd.Central})
		},
	}
	settings := &optimize.Settings{
		MajorIterations:   s.cfg.MaxIters,
		GradientThreshold: math.Max(s.cfg.Tol, gradFloor),
		Converger: &optimize.FunctionConverge{
			Absolute:   math.Max(s.cfg.Tol*1e-2, 1e-13),
			Iterations: 30,
		},
	}

	method, err := methodFor(s.cfg.Method)
	if err != nil {
		return nil, err
	}
	res, rerr := optimize.Minimize(prob, x0, settings, method)
	if rerr != nil {
		if _, isNM := method.(*optimize.NelderMead); !isNM {
			if res2, err2 := optimize.Minimize(prob, x0, settings, &optimize.NelderMead{}); err2 == nil {
				return res2, nil
			}
		}
	}
	return res, rerr
}

func (s *GonumSolver) finish(p Problem, x []float64, status Status, iters, evals int) Result {
	f := p.Objective(x)
	if !isFinite(x) || math.IsNaN(f) || math.IsInf(f, 0) {
		status = SolverFailure
	}
	return Result{X: x, F: f, Status: status, Iterations: iters, FuncEvals: evals}
}

// augLag builds the augmented Lagrangian for the current multipliers:
// equalities contribute -lambda*h + rho/2*h^2, inequalities (g >= 0) the
// Rockafellar form max(0, mu-rho*g)^2 - mu^2 over 2*rho.
func augLag(p Problem, ineqs []Func, lambda, mu []float64, rho float64) Func {
	return func(x []float64) float64 {
		v := p.Objective(x)
		for j, h := range p.Equalities {
			hv := h(x)
			v += -lambda[j]*hv + 0.5*rho*hv*hv
		}
		for j, g := range ineqs {
			gv := g(x)
			if t := mu[j] - rho*gv; t > 0 {
				v += (t*t - mu[j]*mu[j]) / (2 * rho)
			} else {
				v += -mu[j] * mu[j] / (2 * rho)
			}
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			// non-finite values poison the line search
			return math.MaxFloat64
		}
		return v
	}
}

// boundInequalities appends the finite box bounds to the registered
// inequalities so the augmented Lagrangian sees a single g(x) >= 0 set
func boundInequalities(p Problem) []Func {
	ineqs := make([]Func, len(p.Inequalities))
	copy(ineqs, p.Inequalities)
	for i := 0; i < p.Dim; i++ {
		if len(p.Lower) == p.Dim && !math.IsInf(p.Lower[i], -1) {
			lo := p.Lower[i]
			idx := i
			ineqs = append(ineqs, func(x []float64) float64 { return x[idx] - lo })
		}
		if len(p.Upper) == p.Dim && !math.IsInf(p.Upper[i], 1) {
			hi := p.Upper[i]
			idx := i
			ineqs = append(ineqs, func(x []float64) float64 { return hi - x[idx] })
		}
	}
	return ineqs
}

// methodFor maps a config method name onto a fresh gonum method instance.
// Method values carry per-run state, so every inner solve needs its own.
func methodFor(name string) (optimize.Method, error) {
	switch strings.ToLower(name) {
	case "", "lbfgs":
		return &optimize.LBFGS{}, nil
	case "bfgs":
		return &optimize.BFGS{}, nil
	case "cg":
		return &optimize.CG{}, nil
	case "neldermead", "nelder-mead":
		return &optimize.NelderMead{}, nil
	default:
		return nil, fmt.Errorf("unknown solver method %q (available: lbfgs, bfgs, cg, neldermead)", name)
	}
}

func convergedStatus(st optimize.Status) bool {
	switch st {
	case optimize.Success, optimize.FunctionConvergence, optimize.GradientThreshold,
		optimize.StepConvergence, optimize.MethodConverge:
		return true
	}
	return false
}

func statusFor(st optimize.Status, err error) Status {
	if err != nil {
		return SolverFailure
	}
	if convergedStatus(st) {
		return Converged
	}
	switch st {
	case optimize.IterationLimit, optimize.RuntimeLimit,
		optimize.FunctionEvaluationLimit, optimize.GradientEvaluationLimit:
		return ToleranceNotMet
	}
	return SolverFailure
}

func clampToBounds(x, lower, upper []float64) {
	for i := range x {
		if len(lower) == len(x) {
			x[i] = math.Max(x[i], lower[i])
		}
		if len(upper) == len(x) {
			x[i] = math.Min(x[i], upper[i])
		}
	}
}

func isFinite(x []float64) bool {
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
