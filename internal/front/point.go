package front

import (
	"github.com/frontopt/frontier/internal/nlp"
	"github.com/frontopt/frontier/internal/scalarize"
)

// Point is one solved scalarization outcome: the parameter that generated
// it, the solution vector, the objective vector there, and how the solve
// ended. Immutable once created.
type Point struct {
	Params scalarize.Params
	X      []float64
	F      []float64
	Status nlp.Status
}

// Converged reports whether the point met the solver tolerance
func (p Point) Converged() bool {
	return p.Status == nlp.Converged
}

// Front is an ordered sequence of candidate points. The order is the
// generation order of the scalarization parameters; filtering removes
// elements but never reorders or edits survivors.
type Front struct {
	points []Point
}

// New wraps a point sequence into a Front, copying the slice
func New(points []Point) *Front {
	pts := make([]Point, len(points))
	copy(pts, points)
	return &Front{points: pts}
}

// Len returns the number of points
func (f *Front) Len() int {
	return len(f.points)
}

// Point returns the i-th point in generation order
func (f *Front) Point(i int) Point {
	return f.points[i]
}

// Points returns a copy of the point sequence. The per-point X and F
// slices are shared views and must not be mutated.
func (f *Front) Points() []Point {
	out := make([]Point, len(f.points))
	copy(out, f.points)
	return out
}

// Objectives returns the objective vectors in generation order
func (f *Front) Objectives() [][]float64 {
	out := make([][]float64, len(f.points))
	for i, pt := range f.points {
		out[i] = pt.F
	}
	return out
}

// ConvergedCount returns how many points carry converged status
func (f *Front) ConvergedCount() int {
	n := 0
	for _, pt := range f.points {
		if pt.Converged() {
			n++
		}
	}
	return n
}
