package scalarize

import (
	"gonum.org/v1/gonum/floats"

	"github.com/frontopt/frontier/internal/moo"
	"github.com/frontopt/frontier/internal/nlp"
)

// normalizedNormalConstraint builds the NNC subproblems. Anchors are mapped
// into [0,1]^m by the anchor objective ranges; each simplex point becomes a
// plane point on the normalized CHIM, and m-1 linear inequalities keep the
// search on the designated-anchor side of the hyperplanes through it. The
// designated objective (the last index) is then minimized directly, so no
// step variable is needed.
func normalizedNormalConstraint(p *moo.Problem, anchors []moo.Anchor, np int) ([]Subproblem, error) {
	if err := checkAnchors(p, anchors); err != nil {
		return nil, err
	}
	m := p.NumObjectives()
	utopia := utopiaPoint(anchors)
	ranges, err := anchorRanges(anchors, utopia)
	if err != nil {
		return nil, err
	}

	// anchors in normalized objective space
	abar := make([][]float64, m)
	for i, a := range anchors {
		abar[i] = make([]float64, m)
		for j := 0; j < m; j++ {
			abar[i][j] = (a.F[j] - utopia[j]) / ranges[j]
		}
	}

	active := m - 1
	dirs := make([][]float64, m-1)
	for k := 0; k < m-1; k++ {
		dirs[k] = make([]float64, m)
		floats.SubTo(dirs[k], abar[active], abar[k])
	}

	objectives := p.Objectives
	fbar := func(j int, x []float64) float64 {
		return (objectives[j].Eval(x) - utopia[j]) / ranges[j]
	}

	xdim := p.Dim()
	lower, upper := p.Bounds()
	eqs, ineqs := splitConstraints(p)

	lattice := SimplexLattice(m, np)
	subs := make([]Subproblem, len(lattice))
	for i, w := range lattice {
		plane := make([]float64, m)
		for j := 0; j < m; j++ {
			s := 0.0
			for k := 0; k < m; k++ {
				s += w[k] * abar[k][j]
			}
			plane[j] = s
		}

		planeIneqs := make([]nlp.Func, 0, len(ineqs)+m-1)
		planeIneqs = append(planeIneqs, ineqs...)
		for k := 0; k < m-1; k++ {
			dir := dirs[k]
			pl := plane
			// dir . (Fbar(x) - plane) <= 0
			planeIneqs = append(planeIneqs, func(x []float64) float64 {
				s := 0.0
				for j := 0; j < m; j++ {
					s += dir[j] * (fbar(j, x) - pl[j])
				}
				return -s
			})
		}

		subs[i] = Subproblem{
			Index:  i,
			Params: Params{Weights: w, Offsets: plane, Active: active},
			XDim:   xdim,
			NLP: nlp.Problem{
				Dim:          xdim,
				Objective:    func(x []float64) float64 { return fbar(active, x) },
				Equalities:   eqs,
				Inequalities: planeIneqs,
				Lower:        lower,
				Upper:        upper,
			},
		}
	}
	return subs, nil
}
