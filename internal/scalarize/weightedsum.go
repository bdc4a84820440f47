package scalarize

import (
	"github.com/frontopt/frontier/internal/moo"
	"github.com/frontopt/frontier/internal/nlp"
)

// weightedSum builds one subproblem per lattice weight: minimize the convex
// combination of the raw objectives under the original constraints. Needs
// no anchors; cannot reach non-convex front regions.
func weightedSum(p *moo.Problem, np int) []Subproblem {
	lattice := SimplexLattice(p.NumObjectives(), np)
	lower, upper := p.Bounds()
	eqs, ineqs := splitConstraints(p)
	objectives := p.Objectives

	subs := make([]Subproblem, len(lattice))
	for i, w := range lattice {
		weights := w
		obj := func(x []float64) float64 {
			v := 0.0
			for k := range objectives {
				v += weights[k] * objectives[k].Eval(x)
			}
			return v
		}
		subs[i] = Subproblem{
			Index:  i,
			Params: Params{Weights: weights, Active: -1},
			XDim:   p.Dim(),
			NLP: nlp.Problem{
				Dim:          p.Dim(),
				Objective:    obj,
				Equalities:   eqs,
				Inequalities: ineqs,
				Lower:        lower,
				Upper:        upper,
			},
		}
	}
	return subs
}
