package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/frontopt/frontier/internal/front"
	"github.com/frontopt/frontier/internal/moo"
	"github.com/frontopt/frontier/internal/nlp"
	"github.com/frontopt/frontier/internal/scalarize"
)

// Engine approximates the Pareto front of a multi-objective problem by
// scalarizing it into an ordered sequence of single-objective NLPs and
// delegating each to an external solver.
type Engine struct {
	problem *moo.Problem
	solver  nlp.Solver
	cfg     Config
	workers int

	solved atomic.Int64
	total  atomic.Int64

	mu      sync.Mutex
	anchors []moo.Anchor
	points  []front.Point
	summary Summary
}

// Summary describes a completed front generation run.
type Summary struct {
	Method      scalarize.Method
	Points      int // requested discretization np
	Subproblems int // generated subproblem count
	Converged   int
	NotMet      int // subproblems that ran out of budget
	Failed      int // subproblems whose solve broke down
	Filtered    int // survivors of the dominance filter
	Elapsed     time.Duration
}

// New validates the configuration against the problem and prepares an
// engine. A nil solver selects the gonum adapter at the configured
// tolerance.
func New(p *moo.Problem, solver nlp.Solver, cfg Config) (*Engine, error) {
	if err := cfg.validate(p); err != nil {
		return nil, err
	}
	if solver == nil {
		sc := nlp.DefaultGonumConfig()
		sc.Tol = cfg.Tolerance
		s, err := nlp.NewGonum(sc)
		if err != nil {
			return nil, fmt.Errorf("default solver: %w", err)
		}
		solver = s
	}
	workers := cfg.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}
	return &Engine{problem: p, solver: solver, cfg: cfg, workers: workers}, nil
}

// Problem returns the descriptor this engine solves.
func (e *Engine) Problem() *moo.Problem {
	return e.problem
}

// GenerateFront computes the discretized front: anchors first (when the
// method needs them), then every scalarized subproblem, hot-started along a
// nearest-neighbor chain or fanned out over a worker pool. Non-converged
// subproblems are kept in the front with their status flagged; only anchor
// failures, degenerate anchors, and configuration errors abort the run.
func (e *Engine) GenerateFront(ctx context.Context) error {
	start := time.Now()
	m := e.problem.NumObjectives()
	count := scalarize.LatticeSize(m, e.cfg.Points)

	e.solved.Store(0)
	e.total.Store(int64(count))

	slog.Info("Starting front generation",
		"method", e.cfg.Method.String(),
		"points", e.cfg.Points,
		"objectives", m,
		"variables", e.problem.Dim(),
		"subproblems", count,
		"hot_start", e.cfg.HotStart,
	)

	var anchors []moo.Anchor
	if e.cfg.Method.NeedsAnchors() {
		a, err := e.SolveAnchors(ctx)
		if err != nil {
			return err
		}
		anchors = a
	}

	subs, err := scalarize.Generate(e.cfg.Method, e.problem, anchors, e.cfg.Points)
	if err != nil {
		return fmt.Errorf("generate %s subproblems: %w", e.cfg.Method, err)
	}

	points := make([]front.Point, len(subs))
	if e.cfg.HotStart {
		e.solveChain(ctx, subs, points)
	} else {
		e.solvePool(ctx, subs, points)
	}

	summary := Summary{
		Method:      e.cfg.Method,
		Points:      e.cfg.Points,
		Subproblems: len(points),
		Filtered:    len(front.Filter(points, e.cfg.Filter)),
		Elapsed:     time.Since(start),
	}
	for _, pt := range points {
		switch pt.Status {
		case nlp.Converged:
			summary.Converged++
		case nlp.ToleranceNotMet:
			summary.NotMet++
		default:
			summary.Failed++
		}
	}

	e.mu.Lock()
	e.points = points
	e.summary = summary
	e.mu.Unlock()

	slog.Info("Front generation complete",
		"subproblems", summary.Subproblems,
		"converged", summary.Converged,
		"filtered", summary.Filtered,
		"elapsed", summary.Elapsed,
	)
	return nil
}

// solveChain walks the subproblems along a greedy nearest-neighbor chain in
// weight space, carrying each raw solution forward as the next seed. Results
// land in their generation-order slots, so the stored front order does not
// depend on the solve order.
func (e *Engine) solveChain(ctx context.Context, subs []scalarize.Subproblem, points []front.Point) {
	order := scalarize.OrderForHotStart(subs)
	var prev []float64
	for _, idx := range order {
		sp := subs[idx]
		var x0 []float64
		if prev == nil {
			x0 = sp.Seed(e.initialGuess())
		} else {
			x0 = sp.SeedFrom(prev)
		}
		pt, raw := e.solveSubproblem(ctx, sp, x0)
		points[sp.Index] = pt
		if raw != nil {
			prev = raw
		}
		e.solved.Add(1)
	}
}

// solvePool fans independent subproblems out over a bounded worker pool,
// every one seeded from the same initial guess. Each worker writes only its
// own pre-allocated slot.
func (e *Engine) solvePool(ctx context.Context, subs []scalarize.Subproblem, points []front.Point) {
	guess := e.initialGuess()
	var g errgroup.Group
	g.SetLimit(e.workers)
	for i := range subs {
		sp := subs[i]
		g.Go(func() error {
			pt, _ := e.solveSubproblem(ctx, sp, sp.Seed(guess))
			points[sp.Index] = pt
			e.solved.Add(1)
			return nil
		})
	}
	// workers never return errors; failures become point statuses
	_ = g.Wait()
}

// solveSubproblem runs one scalarized NLP and wraps the outcome as a
// candidate point. The returned raw vector is the full solver-space
// solution, used to seed the next chain member; it is nil when the solve
// produced no usable iterate.
func (e *Engine) solveSubproblem(ctx context.Context, sp scalarize.Subproblem, x0 []float64) (front.Point, []float64) {
	start := time.Now()
	res, err := e.solver.Solve(ctx, sp.NLP, x0)

	var pt front.Point
	var raw []float64
	if err != nil {
		// keep the slot populated: the seed stands in for the missing
		// iterate and the status flags the values as unusable
		slog.Debug("Subproblem solve errored", "index", sp.Index, "error", err)
		x := make([]float64, sp.XDim)
		copy(x, x0[:sp.XDim])
		pt = front.Point{
			Params: sp.Params,
			X:      x,
			F:      e.problem.EvalObjectives(x),
			Status: nlp.SolverFailure,
		}
	} else {
		x := make([]float64, sp.XDim)
		copy(x, res.X[:sp.XDim])
		pt = front.Point{
			Params: sp.Params,
			X:      x,
			F:      e.problem.EvalObjectives(x),
			Status: res.Status,
		}
		raw = res.X
		slog.Debug("Subproblem solved",
			"index", sp.Index,
			"status", res.Status.String(),
			"iterations", res.Iterations,
		)
	}

	if e.cfg.OnPoint != nil {
		e.cfg.OnPoint(sp.Index, pt, time.Since(start))
	}
	return pt, raw
}

// SolveAnchors computes the anchor points, one per objective, in parallel.
// Anchors are cached on the engine and reused across calls. A non-converged
// anchor is fatal since anchor-dependent scalarizations would inherit a
// broken CHIM.
func (e *Engine) SolveAnchors(ctx context.Context) ([]moo.Anchor, error) {
	e.mu.Lock()
	if e.anchors != nil {
		cached := append([]moo.Anchor(nil), e.anchors...)
		e.mu.Unlock()
		return cached, nil
	}
	e.mu.Unlock()

	m := e.problem.NumObjectives()
	anchors := make([]moo.Anchor, m)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < m; i++ {
		idx := i
		g.Go(func() error {
			a, err := e.solveAnchor(gctx, idx)
			if err != nil {
				return err
			}
			anchors[idx] = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.anchors = anchors
	e.mu.Unlock()
	return append([]moo.Anchor(nil), anchors...), nil
}

// SolveSingleObjective minimizes objective i alone under all constraints and
// bounds, independent of full front generation.
func (e *Engine) SolveSingleObjective(ctx context.Context, i int) (moo.Anchor, error) {
	if i < 0 || i >= e.problem.NumObjectives() {
		return moo.Anchor{}, &InvalidConfigurationError{
			Field:  "objective",
			Reason: fmt.Sprintf("index %d out of range for %d objectives", i, e.problem.NumObjectives()),
		}
	}
	return e.solveAnchor(ctx, i)
}

func (e *Engine) solveAnchor(ctx context.Context, i int) (moo.Anchor, error) {
	res, err := e.solver.Solve(ctx, scalarize.SingleObjective(e.problem, i), e.initialGuess())
	if err != nil {
		return moo.Anchor{}, fmt.Errorf("anchor solve for objective %d: %w", i, err)
	}
	if res.Status != nlp.Converged {
		return moo.Anchor{}, &ConvergenceFailureError{Objective: i, Status: res.Status}
	}
	slog.Debug("Anchor solved",
		"objective", i,
		"value", res.F,
		"iterations", res.Iterations,
	)
	return moo.Anchor{Objective: i, X: res.X, F: e.problem.EvalObjectives(res.X)}, nil
}

// ParetoFront returns every candidate point of the last run in generation
// order, non-converged points included.
func (e *Engine) ParetoFront() *front.Front {
	e.mu.Lock()
	defer e.mu.Unlock()
	return front.New(e.points)
}

// ParetoFrontFiltered returns the dominance-filtered view of the last run.
func (e *Engine) ParetoFrontFiltered() *front.Front {
	e.mu.Lock()
	defer e.mu.Unlock()
	return front.New(front.Filter(e.points, e.cfg.Filter))
}

// Summary reports counts and timing of the last GenerateFront call.
func (e *Engine) Summary() Summary {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.summary
}

// Progress reports how many scalarized subproblems of the current run have
// finished. Safe to poll while GenerateFront is in flight; anchor solves are
// not counted.
func (e *Engine) Progress() (solved, total int) {
	return int(e.solved.Load()), int(e.total.Load())
}

// initialGuess returns the configured guess or the midpoint of the variable
// bounds, falling back toward the finite side for half-open boxes.
func (e *Engine) initialGuess() []float64 {
	if len(e.cfg.InitialGuess) > 0 {
		out := make([]float64, len(e.cfg.InitialGuess))
		copy(out, e.cfg.InitialGuess)
		return out
	}
	lower, upper := e.problem.Bounds()
	x0 := make([]float64, e.problem.Dim())
	for i := range x0 {
		lo, hi := lower[i], upper[i]
		switch {
		case !math.IsInf(lo, -1) && !math.IsInf(hi, 1):
			x0[i] = 0.5 * (lo + hi)
		case !math.IsInf(lo, -1):
			x0[i] = lo
		case !math.IsInf(hi, 1):
			x0[i] = hi
		}
	}
	return x0
}
