package scalarize

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/frontopt/frontier/internal/moo"
	"github.com/frontopt/frontier/internal/nlp"
)

// normalBoundary builds the NBI subproblems. The CHIM matrix Phi holds the
// anchor objective vectors relative to the utopia point; for each simplex
// point beta the solver maximizes the step t along the inward quasi-normal
// from U + Phi*beta, with m added equalities pinning the objective vector
// to that ray. Solver space is (x..., t).
func normalBoundary(p *moo.Problem, anchors []moo.Anchor, np int) ([]Subproblem, error) {
	if err := checkAnchors(p, anchors); err != nil {
		return nil, err
	}
	m := p.NumObjectives()
	utopia := utopiaPoint(anchors)
	if _, err := anchorRanges(anchors, utopia); err != nil {
		return nil, err
	}

	// column i = anchor_i's objectives over utopia
	phi := mat.NewDense(m, m, nil)
	for i := 0; i < m; i++ {
		for j := 0; j < m; j++ {
			phi.Set(j, i, anchors[i].F[j]-utopia[j])
		}
	}

	// quasi-normal -Phi*e, unit length, pointing toward the utopia side
	normal := make([]float64, m)
	for j := 0; j < m; j++ {
		s := 0.0
		for i := 0; i < m; i++ {
			s += phi.At(j, i)
		}
		normal[j] = -s
	}
	nrm := floats.Norm(normal, 2)
	if nrm == 0 {
		return nil, &DegenerateScalarizationError{Reason: "CHIM quasi-normal vanishes"}
	}
	floats.Scale(1/nrm, normal)

	xdim := p.Dim()
	dim := xdim + 1 // trailing step variable t
	lower, upper := p.Bounds()
	lower = append(lower, math.Inf(-1))
	upper = append(upper, math.Inf(1))

	// original constraints see only the leading x block
	eqs, ineqs := splitConstraints(p)
	liftedEqs := liftToStepSpace(eqs, xdim)
	liftedIneqs := liftToStepSpace(ineqs, xdim)

	objectives := p.Objectives
	lattice := SimplexLattice(m, np)
	subs := make([]Subproblem, len(lattice))
	for i, w := range lattice {
		base := make([]float64, m)
		for j := 0; j < m; j++ {
			s := utopia[j]
			for k := 0; k < m; k++ {
				s += phi.At(j, k) * w[k]
			}
			base[j] = s
		}

		rayEqs := make([]nlp.Func, 0, len(liftedEqs)+m)
		rayEqs = append(rayEqs, liftedEqs...)
		for j := 0; j < m; j++ {
			eval := objectives[j].Eval
			bj := base[j]
			nj := normal[j]
			rayEqs = append(rayEqs, func(z []float64) float64 {
				return eval(z[:xdim]) - bj - z[xdim]*nj
			})
		}

		subs[i] = Subproblem{
			Index:  i,
			Params: Params{Weights: w, Active: -1},
			XDim:   xdim,
			NLP: nlp.Problem{
				Dim:          dim,
				Objective:    func(z []float64) float64 { return -z[xdim] },
				Equalities:   rayEqs,
				Inequalities: liftedIneqs,
				Lower:        lower,
				Upper:        upper,
			},
		}
	}
	return subs, nil
}

// liftToStepSpace wraps x-space functions so they ignore the trailing step
// variable
func liftToStepSpace(fns []nlp.Func, xdim int) []nlp.Func {
	lifted := make([]nlp.Func, len(fns))
	for k, f := range fns {
		fn := f
		lifted[k] = func(z []float64) float64 { return fn(z[:xdim]) }
	}
	return lifted
}
