package moo

import (
	"fmt"
	"math"
)

// Func evaluates a scalar expression over the variable vector
type Func func(x []float64) float64

// Objective is a single criterion to minimize. The registration order in
// Problem.Objectives is the objective index used for anchor ordering and
// axis labeling; it carries no mathematical precedence.
type Objective struct {
	Name string
	Eval Func
}

// ConstraintKind selects the constraint sense
type ConstraintKind int

const (
	// Inequality constraints hold when Eval(x) >= 0
	Inequality ConstraintKind = iota
	// Equality constraints hold when Eval(x) == 0
	Equality
)

func (k ConstraintKind) String() string {
	switch k {
	case Inequality:
		return "inequality"
	case Equality:
		return "equality"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Constraint restricts the feasible region. Immutable once registered.
type Constraint struct {
	Name string
	Kind ConstraintKind
	Eval Func
}

// Variable is one real-valued decision variable with optional bounds
type Variable struct {
	Name  string
	Lower float64 // -Inf when unbounded below
	Upper float64 // +Inf when unbounded above
}

// NewVariable creates an unbounded variable
func NewVariable(name string) Variable {
	return Variable{Name: name, Lower: math.Inf(-1), Upper: math.Inf(1)}
}

// BoundedVariable creates a variable with finite lower/upper bounds
func BoundedVariable(name string, lower, upper float64) Variable {
	return Variable{Name: name, Lower: lower, Upper: upper}
}

// Anchor is the individual optimum of one objective: the variable vector
// that minimizes it alone and the full objective vector there. One anchor
// per objective, computed once per run and cached.
type Anchor struct {
	Objective int
	X         []float64
	F         []float64
}

// Problem is the read-only problem descriptor consumed by the engine:
// objectives, constraints, and variable bounds. Callers build it once and
// must not mutate it while a run is in flight.
type Problem struct {
	Name        string
	Variables   []Variable
	Objectives  []Objective
	Constraints []Constraint
}

// Dim returns the number of decision variables
func (p *Problem) Dim() int {
	return len(p.Variables)
}

// NumObjectives returns the number of registered objectives
func (p *Problem) NumObjectives() int {
	return len(p.Objectives)
}

// Bounds returns fresh copies of the lower/upper bound vectors in variable
// declaration order
func (p *Problem) Bounds() (lower, upper []float64) {
	lower = make([]float64, len(p.Variables))
	upper = make([]float64, len(p.Variables))
	for i, v := range p.Variables {
		lower[i] = v.Lower
		upper[i] = v.Upper
	}
	return lower, upper
}

// EvalObjectives evaluates all objectives at x in declaration order
func (p *Problem) EvalObjectives(x []float64) []float64 {
	f := make([]float64, len(p.Objectives))
	for i, obj := range p.Objectives {
		f[i] = obj.Eval(x)
	}
	return f
}

// VariableNames returns the variable names in declaration order
func (p *Problem) VariableNames() []string {
	names := make([]string, len(p.Variables))
	for i, v := range p.Variables {
		names[i] = v.Name
	}
	return names
}

// ObjectiveNames returns the objective names in declaration order
func (p *Problem) ObjectiveNames() []string {
	names := make([]string, len(p.Objectives))
	for i, obj := range p.Objectives {
		names[i] = obj.Name
	}
	return names
}

// Validate checks structural sanity of the descriptor
func (p *Problem) Validate() error {
	if len(p.Variables) == 0 {
		return fmt.Errorf("problem %q has no variables", p.Name)
	}
	if len(p.Objectives) == 0 {
		return fmt.Errorf("problem %q has no objectives", p.Name)
	}
	for i, v := range p.Variables {
		if math.IsNaN(v.Lower) || math.IsNaN(v.Upper) {
			return fmt.Errorf("variable %d (%s): NaN bound", i, v.Name)
		}
		if v.Lower > v.Upper {
			return fmt.Errorf("variable %d (%s): lower bound %g exceeds upper bound %g", i, v.Name, v.Lower, v.Upper)
		}
	}
	for i, obj := range p.Objectives {
		if obj.Eval == nil {
			return fmt.Errorf("objective %d (%s): nil evaluator", i, obj.Name)
		}
	}
	for i, c := range p.Constraints {
		if c.Eval == nil {
			return fmt.Errorf("constraint %d (%s): nil evaluator", i, c.Name)
		}
		if c.Kind != Inequality && c.Kind != Equality {
			return fmt.Errorf("constraint %d (%s): unknown kind %d", i, c.Name, int(c.Kind))
		}
	}
	return nil
}
