package scalarize

import (
	"fmt"
	"math"
	"strings"

	"github.com/frontopt/frontier/internal/moo"
	"github.com/frontopt/frontier/internal/nlp"
)

// Method selects the scalarization strategy
type Method string

const (
	// WeightedSum minimizes convex combinations of the raw objectives
	WeightedSum Method = "ws"
	// NBI maximizes the step along the CHIM quasi-normal
	NBI Method = "nbi"
	// NNC minimizes one designated objective under normalized hyperplane
	// constraints
	NNC Method = "nnc"
)

// ParseMethod maps a config string onto a Method
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(s) {
	case "ws", "weightedsum", "weighted-sum":
		return WeightedSum, nil
	case "nbi":
		return NBI, nil
	case "nnc":
		return NNC, nil
	default:
		return "", fmt.Errorf("unknown scalarization method %q (available: ws, nbi, nnc)", s)
	}
}

func (m Method) String() string {
	return string(m)
}

// NeedsAnchors reports whether the method requires precomputed anchor
// points. WS subproblems are well-defined without them.
func (m Method) NeedsAnchors() bool {
	return m == NBI || m == NNC
}

// Params tags a subproblem with the simplex coordinate that generated it,
// so front points can be traced back to their scalarization parameter.
type Params struct {
	Weights []float64 // convex-combination weights on the simplex lattice
	Offsets []float64 // NNC only: normalized plane point, nil otherwise
	Active  int       // NNC only: designated objective index, -1 otherwise
}

// Subproblem is one scalarized single-objective NLP. Its Index is the
// generation order, which is also the subproblem's slot in the front.
type Subproblem struct {
	Index  int
	Params Params
	NLP    nlp.Problem
	XDim   int // leading solver variables that are problem variables
}

// Seed builds the solver-space initial guess from a problem-space guess,
// padding auxiliary variables (the NBI step) with zero
func (sp Subproblem) Seed(x0 []float64) []float64 {
	z := make([]float64, sp.NLP.Dim)
	copy(z, x0[:min(len(x0), sp.XDim)])
	return z
}

// SeedFrom carries a previous solver-space solution into this subproblem.
// Identical layouts transfer whole, otherwise only the problem variables.
func (sp Subproblem) SeedFrom(prev []float64) []float64 {
	z := make([]float64, sp.NLP.Dim)
	if len(prev) == sp.NLP.Dim {
		copy(z, prev)
		return z
	}
	copy(z, prev[:min(len(prev), sp.XDim)])
	return z
}

// Generate produces the ordered subproblem sequence for the chosen method.
// Anchors may be nil for WS; NBI and NNC fail without them.
func Generate(m Method, p *moo.Problem, anchors []moo.Anchor, np int) ([]Subproblem, error) {
	if np < 2 {
		return nil, fmt.Errorf("discretization must be at least 2, got %d", np)
	}
	switch m {
	case WeightedSum:
		return weightedSum(p, np), nil
	case NBI:
		return normalBoundary(p, anchors, np)
	case NNC:
		return normalizedNormalConstraint(p, anchors, np)
	default:
		return nil, fmt.Errorf("unknown scalarization method %q", m)
	}
}

// SingleObjective builds the anchor subproblem for objective i: minimize
// that objective alone under the original constraints and bounds
func SingleObjective(p *moo.Problem, i int) nlp.Problem {
	lower, upper := p.Bounds()
	eqs, ineqs := splitConstraints(p)
	return nlp.Problem{
		Dim:          p.Dim(),
		Objective:    nlp.Func(p.Objectives[i].Eval),
		Equalities:   eqs,
		Inequalities: ineqs,
		Lower:        lower,
		Upper:        upper,
	}
}

// ErrDegenerateScalarization matches any DegenerateScalarizationError via
// errors.Is
var ErrDegenerateScalarization = &DegenerateScalarizationError{}

// DegenerateScalarizationError reports anchors that coincide (or span a
// vanishing objective range), leaving the CHIM construction ill-defined
type DegenerateScalarizationError struct {
	Reason string
}

func (e *DegenerateScalarizationError) Error() string {
	if e.Reason == "" {
		return "degenerate scalarization"
	}
	return fmt.Sprintf("degenerate scalarization: %s", e.Reason)
}

// Is implements errors.Is support
func (e *DegenerateScalarizationError) Is(target error) bool {
	_, ok := target.(*DegenerateScalarizationError)
	return ok
}

// splitConstraints converts the descriptor's constraints into the solver's
// h(x)=0 and g(x)>=0 slices
func splitConstraints(p *moo.Problem) (eqs, ineqs []nlp.Func) {
	for _, c := range p.Constraints {
		switch c.Kind {
		case moo.Equality:
			eqs = append(eqs, nlp.Func(c.Eval))
		default:
			ineqs = append(ineqs, nlp.Func(c.Eval))
		}
	}
	return eqs, ineqs
}

// checkAnchors validates the anchor set shape for anchor-dependent methods
func checkAnchors(p *moo.Problem, anchors []moo.Anchor) error {
	m := p.NumObjectives()
	if len(anchors) != m {
		return fmt.Errorf("have %d anchors for %d objectives", len(anchors), m)
	}
	for i, a := range anchors {
		if len(a.F) != m {
			return fmt.Errorf("anchor %d has %d objective values, want %d", i, len(a.F), m)
		}
		if len(a.X) != p.Dim() {
			return fmt.Errorf("anchor %d has %d variables, want %d", i, len(a.X), p.Dim())
		}
	}
	return nil
}

// utopiaPoint extracts the ideal vector from the anchors: entry j is anchor
// j's own minimized objective value
func utopiaPoint(anchors []moo.Anchor) []float64 {
	utopia := make([]float64, len(anchors))
	for j := range anchors {
		utopia[j] = anchors[j].F[j]
	}
	return utopia
}

// anchorRanges returns the per-objective spans of the anchor set, used for
// normalization. A vanishing span means two anchors coincide in that
// objective and the CHIM is degenerate.
func anchorRanges(anchors []moo.Anchor, utopia []float64) ([]float64, error) {
	m := len(utopia)
	ranges := make([]float64, m)
	for j := 0; j < m; j++ {
		maxv := utopia[j]
		for _, a := range anchors {
			maxv = math.Max(maxv, a.F[j])
		}
		ranges[j] = maxv - utopia[j]
		scale := math.Max(1, math.Abs(utopia[j]))
		if ranges[j] <= 1e-12*scale {
			return nil, &DegenerateScalarizationError{
				Reason: fmt.Sprintf("objective %d anchor range is %g", j, ranges[j]),
			}
		}
	}
	return ranges, nil
}
