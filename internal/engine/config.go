package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/frontopt/frontier/internal/front"
	"github.com/frontopt/frontier/internal/moo"
	"github.com/frontopt/frontier/internal/scalarize"
)

// Config controls a front generation run.
type Config struct {
	// Method selects the scalarization strategy.
	Method scalarize.Method
	// Points is the discretization level np of the weight simplex.
	Points int
	// Tolerance is the convergence tolerance handed to the NLP solver.
	Tolerance float64
	// HotStart solves the subproblems along a nearest-neighbor chain in
	// weight space, seeding each from the previous solution.
	HotStart bool
	// Workers bounds concurrent solves when hot start is off. Zero means
	// one worker per CPU.
	Workers int
	// InitialGuess seeds the anchor solves and, with hot start off, every
	// subproblem. Empty means the midpoint of the variable bounds.
	InitialGuess []float64
	// Filter controls dominance filtering of the generated front.
	Filter front.FilterOptions
	// OnPoint, when set, observes every finished subproblem solve with its
	// generation index and wall-clock duration. Called from solver
	// goroutines, so implementations must be safe for concurrent use.
	OnPoint func(index int, pt front.Point, elapsed time.Duration)
}

// DefaultConfig returns the settings used when callers leave fields unset.
func DefaultConfig() Config {
	return Config{
		Method:    scalarize.NBI,
		Points:    21,
		Tolerance: 1e-8,
		HotStart:  true,
		Filter:    front.DefaultFilterOptions(),
	}
}

// validate fails fast on configurations that cannot produce a front.
func (c Config) validate(p *moo.Problem) error {
	if p == nil {
		return &InvalidConfigurationError{Field: "problem", Reason: "must not be nil"}
	}
	if err := p.Validate(); err != nil {
		return &InvalidConfigurationError{Field: "problem", Reason: err.Error()}
	}
	if m := p.NumObjectives(); m < 2 {
		return &InvalidConfigurationError{
			Field:  "objectives",
			Reason: fmt.Sprintf("need at least 2 objectives for a trade-off surface, got %d", m),
		}
	}
	switch c.Method {
	case scalarize.WeightedSum, scalarize.NBI, scalarize.NNC:
	default:
		return &InvalidConfigurationError{
			Field:  "method",
			Reason: fmt.Sprintf("unknown scalarization method %q", string(c.Method)),
		}
	}
	if c.Points < 2 {
		return &InvalidConfigurationError{
			Field:  "points",
			Reason: fmt.Sprintf("discretization must be at least 2, got %d", c.Points),
		}
	}
	if !(c.Tolerance > 0) || math.IsInf(c.Tolerance, 1) {
		return &InvalidConfigurationError{Field: "tolerance", Reason: "must be a positive finite number"}
	}
	if c.Workers < 0 {
		return &InvalidConfigurationError{Field: "workers", Reason: "must not be negative"}
	}
	if n := len(c.InitialGuess); n != 0 && n != p.Dim() {
		return &InvalidConfigurationError{
			Field:  "initial_guess",
			Reason: fmt.Sprintf("has %d entries for %d variables", n, p.Dim()),
		}
	}
	for i, v := range c.InitialGuess {
		if math.IsNaN(v) {
			return &InvalidConfigurationError{
				Field:  "initial_guess",
				Reason: fmt.Sprintf("entry %d is NaN", i),
			}
		}
	}
	return nil
}
