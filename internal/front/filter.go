package front

import "math"

// Tolerance is the absolute/relative slack applied to dominance
// comparisons so points differing only by solver noise are not removed
type Tolerance struct {
	Abs float64
	Rel float64
}

// DefaultTolerance sits well above solver noise and well below the spacing
// of visually distinct front points at usual discretizations
func DefaultTolerance() Tolerance {
	return Tolerance{Abs: 1e-9, Rel: 1e-9}
}

func (t Tolerance) slack(a, b float64) float64 {
	return t.Abs + t.Rel*math.Max(math.Abs(a), math.Abs(b))
}

// leq reports a <= b up to the tolerance
func (t Tolerance) leq(a, b float64) bool {
	return a <= b+t.slack(a, b)
}

// lt reports a < b by more than the tolerance
func (t Tolerance) lt(a, b float64) bool {
	return a < b-t.slack(a, b)
}

// Dominates reports whether objective vector a dominates b: a is no worse
// in every objective and strictly better in at least one, within tol.
// Mismatched lengths never dominate.
func Dominates(a, b []float64, tol Tolerance) bool {
	if len(a) != len(b) || len(a) == 0 {
		return false
	}
	strict := false
	for i := range a {
		if !tol.leq(a[i], b[i]) {
			return false
		}
		if tol.lt(a[i], b[i]) {
			strict = true
		}
	}
	return strict
}

// FilterOptions control the Pareto filter
type FilterOptions struct {
	Tolerance Tolerance
	// KeepUnconverged lets points without converged status take part in
	// the dominance comparison. By default they are removed before
	// filtering, as if already dominated.
	KeepUnconverged bool
}

// DefaultFilterOptions drops unconverged points and uses DefaultTolerance
func DefaultFilterOptions() FilterOptions {
	return FilterOptions{Tolerance: DefaultTolerance()}
}

// Filter removes every point dominated by another point of the same set,
// comparing all ordered pairs. Pure function: the input slice is left
// untouched and survivors keep their relative order.
func Filter(points []Point, opts FilterOptions) []Point {
	live := points
	if !opts.KeepUnconverged {
		live = make([]Point, 0, len(points))
		for _, pt := range points {
			if pt.Converged() {
				live = append(live, pt)
			}
		}
	}

	removed := make([]bool, len(live))
	for i := range live {
		for j := range live {
			if i == j {
				continue
			}
			if Dominates(live[j].F, live[i].F, opts.Tolerance) {
				removed[i] = true
				break
			}
		}
	}

	out := make([]Point, 0, len(live))
	for i, pt := range live {
		if !removed[i] {
			out = append(out, pt)
		}
	}
	return out
}
