package scalarize

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/combin"
)

// LatticeSize is the closed-form count of simplex grid points for m
// objectives at discretization np: C(np+m-2, m-1). It always equals
// len(SimplexLattice(m, np)).
func LatticeSize(m, np int) int {
	return combin.Binomial(np+m-2, m-1)
}

// SimplexLattice enumerates every weight vector w >= 0 with sum(w) = 1
// whose components are integer multiples of 1/(np-1). The order is the
// lexicographic order of the underlying integer compositions of np-1 into
// m parts; it is deterministic and doubles as the front's generation order.
func SimplexLattice(m, np int) [][]float64 {
	steps := np - 1
	out := make([][]float64, 0, LatticeSize(m, np))
	comp := make([]int, m)

	var walk func(pos, remaining int)
	walk = func(pos, remaining int) {
		if pos == m-1 {
			comp[pos] = remaining
			w := make([]float64, m)
			for i, c := range comp {
				w[i] = float64(c) / float64(steps)
			}
			out = append(out, w)
			return
		}
		for c := 0; c <= remaining; c++ {
			comp[pos] = c
			walk(pos+1, remaining-c)
		}
	}
	walk(0, steps)
	return out
}

// OrderForHotStart returns a solve order over subs in which consecutive
// entries are close in weight space: a greedy nearest-neighbor chain from
// the first generated subproblem. Ties resolve to the lowest index, so the
// order is deterministic.
func OrderForHotStart(subs []Subproblem) []int {
	n := len(subs)
	if n == 0 {
		return nil
	}
	order := make([]int, 0, n)
	used := make([]bool, n)
	cur := 0
	used[0] = true
	order = append(order, 0)

	for len(order) < n {
		best := -1
		bestDist := math.Inf(1)
		for j := range subs {
			if used[j] {
				continue
			}
			d := floats.Distance(subs[cur].Params.Weights, subs[j].Params.Weights, 2)
			if d < bestDist {
				best = j
				bestDist = d
			}
		}
		used[best] = true
		order = append(order, best)
		cur = best
	}
	return order
}
