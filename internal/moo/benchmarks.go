package moo

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Builder constructs a named built-in problem
type Builder func() *Problem

var benchmarks = map[string]Builder{
	"expbump": ExpBump,
	"binh":    BinhKorn,
	"zdt1":    ZDT1,
	"dtlz2":   DTLZ2,
}

// Benchmark returns a fresh instance of the named built-in problem
func Benchmark(name string) (*Problem, error) {
	build, ok := benchmarks[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown problem %q (available: %s)", name, strings.Join(BenchmarkNames(), ", "))
	}
	return build(), nil
}

// BenchmarkNames lists the built-in problem names in sorted order
func BenchmarkNames() []string {
	names := make([]string, 0, len(benchmarks))
	for name := range benchmarks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ExpBump is a bi-objective problem over the criterion space itself: both
// variables are objectives, and the feasible boundary is an exponential
// decay with a Gaussian bump near y1=3. The bump makes part of the front
// non-convex, so dominated candidates appear there and must be filtered.
func ExpBump() *Problem {
	return &Problem{
		Name: "expbump",
		Variables: []Variable{
			BoundedVariable("y1", 0, 5),
			BoundedVariable("y2", 0, 5.2),
		},
		Objectives: []Objective{
			{Name: "f1", Eval: func(x []float64) float64 { return x[0] }},
			{Name: "f2", Eval: func(x []float64) float64 { return x[1] }},
		},
		Constraints: []Constraint{
			{
				Name: "boundary",
				Kind: Inequality,
				// y2 >= 5*exp(-y1) + 2*exp(-0.5*(y1-3)^2)
				Eval: func(x []float64) float64 {
					d := x[0] - 3
					return x[1] - 5*math.Exp(-x[0]) - 2*math.Exp(-0.5*d*d)
				},
			},
		},
	}
}

// BinhKorn is the classic constrained bi-objective benchmark with a convex
// front; both constraints are active along parts of it.
func BinhKorn() *Problem {
	return &Problem{
		Name: "binh",
		Variables: []Variable{
			BoundedVariable("x", 0, 5),
			BoundedVariable("y", 0, 3),
		},
		Objectives: []Objective{
			{Name: "f1", Eval: func(x []float64) float64 {
				return 4*x[0]*x[0] + 4*x[1]*x[1]
			}},
			{Name: "f2", Eval: func(x []float64) float64 {
				return (x[0]-5)*(x[0]-5) + (x[1]-5)*(x[1]-5)
			}},
		},
		Constraints: []Constraint{
			{
				Name: "disk",
				Kind: Inequality,
				// (x-5)^2 + y^2 <= 25
				Eval: func(x []float64) float64 {
					return 25 - (x[0]-5)*(x[0]-5) - x[1]*x[1]
				},
			},
			{
				Name: "exclusion",
				Kind: Inequality,
				// (x-8)^2 + (y+3)^2 >= 7.7
				Eval: func(x []float64) float64 {
					return (x[0]-8)*(x[0]-8) + (x[1]+3)*(x[1]+3) - 7.7
				},
			},
		},
	}
}

// zdt1Dim keeps the ZDT1 instance small enough for finite-difference
// gradients while preserving its convex front shape.
const zdt1Dim = 6

// ZDT1 is the bound-constrained bi-objective benchmark with a convex front
// f2 = 1 - sqrt(f1) at g = 1.
func ZDT1() *Problem {
	vars := make([]Variable, zdt1Dim)
	for i := range vars {
		vars[i] = BoundedVariable(fmt.Sprintf("x%d", i+1), 0, 1)
	}
	g := func(x []float64) float64 {
		sum := 0.0
		for i := 1; i < len(x); i++ {
			sum += x[i]
		}
		return 1 + 9*sum/float64(len(x)-1)
	}
	return &Problem{
		Name:      "zdt1",
		Variables: vars,
		Objectives: []Objective{
			{Name: "f1", Eval: func(x []float64) float64 { return x[0] }},
			{Name: "f2", Eval: func(x []float64) float64 {
				gv := g(x)
				return gv * (1 - math.Sqrt(x[0]/gv))
			}},
		},
	}
}

// dtlz2Pos is the number of position variables (= objectives - 1) and
// dtlz2Dist the number of distance variables of the DTLZ2 instance.
const (
	dtlz2Pos  = 2
	dtlz2Dist = 3
)

// DTLZ2 is the tri-objective benchmark whose front is the first octant of
// the unit sphere; useful for exercising the m=3 simplex lattice.
func DTLZ2() *Problem {
	dim := dtlz2Pos + dtlz2Dist
	vars := make([]Variable, dim)
	for i := range vars {
		vars[i] = BoundedVariable(fmt.Sprintf("x%d", i+1), 0, 1)
	}
	g := func(x []float64) float64 {
		sum := 0.0
		for i := dtlz2Pos; i < len(x); i++ {
			d := x[i] - 0.5
			sum += d * d
		}
		return sum
	}
	return &Problem{
		Name:      "dtlz2",
		Variables: vars,
		Objectives: []Objective{
			{Name: "f1", Eval: func(x []float64) float64 {
				return (1 + g(x)) * math.Cos(x[0]*math.Pi/2) * math.Cos(x[1]*math.Pi/2)
			}},
			{Name: "f2", Eval: func(x []float64) float64 {
				return (1 + g(x)) * math.Cos(x[0]*math.Pi/2) * math.Sin(x[1]*math.Pi/2)
			}},
			{Name: "f3", Eval: func(x []float64) float64 {
				return (1 + g(x)) * math.Sin(x[0]*math.Pi/2)
			}},
		},
	}
}
