package scalarize

import (
	"math"
	"testing"
)

func TestNBIStructure(t *testing.T) {
	p := tradeoffProblem()
	subs, err := Generate(NBI, p, tradeoffAnchors(), 3)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	for i, sub := range subs {
		// one step variable on top of the problem space
		if sub.NLP.Dim != p.Dim()+1 {
			t.Errorf("sub %d: Dim = %d, want %d", i, sub.NLP.Dim, p.Dim()+1)
		}
		// m ray equalities plus the original equalities (none here)
		if len(sub.NLP.Equalities) != 2 {
			t.Errorf("sub %d: %d equalities, want 2", i, len(sub.NLP.Equalities))
		}
		// original inequality carried over, lifted to step space
		if len(sub.NLP.Inequalities) != 1 {
			t.Errorf("sub %d: %d inequalities, want 1", i, len(sub.NLP.Inequalities))
		}
		// the step variable is unbounded
		if !math.IsInf(sub.NLP.Lower[2], -1) || !math.IsInf(sub.NLP.Upper[2], 1) {
			t.Errorf("sub %d: step bounds [%g, %g], want unbounded",
				i, sub.NLP.Lower[2], sub.NLP.Upper[2])
		}
	}
}

func TestNBIObjectiveMaximizesStep(t *testing.T) {
	subs, err := Generate(NBI, tradeoffProblem(), tradeoffAnchors(), 3)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	obj := subs[1].NLP.Objective
	if got := obj([]float64{0, 0, 2.5}); got != -2.5 {
		t.Errorf("objective at t=2.5: got %g, want -2.5", got)
	}
}

func TestNBIRayEqualitiesHoldOnTheRay(t *testing.T) {
	// Anchors (0,1) and (1,0): utopia (0,0), quasi-normal -(1,1)/sqrt(2).
	// For beta = (0.5, 0.5) the base point is (0.5, 0.5); stepping
	// t = sqrt(2)/4 along the normal lands on x = (0.25, 0.25).
	subs, err := Generate(NBI, tradeoffProblem(), tradeoffAnchors(), 3)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	mid := subs[1]
	if math.Abs(mid.Params.Weights[0]-0.5) > 1e-15 {
		t.Fatalf("middle weights: got %v", mid.Params.Weights)
	}

	z := []float64{0.25, 0.25, math.Sqrt2 / 4}
	for j, eq := range mid.NLP.Equalities {
		if r := eq(z); math.Abs(r) > 1e-12 {
			t.Errorf("equality %d on the ray: residual %g, want 0", j, r)
		}
	}

	// Off the ray the residuals must not vanish
	off := []float64{0.5, 0.25, math.Sqrt2 / 4}
	if r := mid.NLP.Equalities[0](off); math.Abs(r) < 1e-6 {
		t.Errorf("equality 0 off the ray: residual %g, want nonzero", r)
	}
}

func TestNBIEndpointsSitOnAnchors(t *testing.T) {
	anchors := tradeoffAnchors()
	subs, err := Generate(NBI, tradeoffProblem(), anchors, 2)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(subs) != 2 {
		t.Fatalf("np=2: got %d subproblems, want 2", len(subs))
	}

	// Lattice order is w[0] ascending, so subs[0] targets anchor 1 and
	// subs[1] anchor 0; with t = 0 the anchor state satisfies the ray
	// equalities exactly.
	cases := []struct {
		sub    Subproblem
		anchor int
	}{
		{subs[0], 1},
		{subs[1], 0},
	}
	for _, tc := range cases {
		z := append(append([]float64{}, anchors[tc.anchor].X...), 0)
		for j, eq := range tc.sub.NLP.Equalities {
			if r := eq(z); math.Abs(r) > 1e-12 {
				t.Errorf("anchor %d, equality %d: residual %g, want 0", tc.anchor, j, r)
			}
		}
	}
}

func TestNBILiftedConstraintIgnoresStep(t *testing.T) {
	subs, err := Generate(NBI, tradeoffProblem(), tradeoffAnchors(), 3)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	g := subs[0].NLP.Inequalities[0]
	// x0 + x1 - 1 at (0.6, 0.6) regardless of the step value
	want := 0.2
	for _, step := range []float64{-3, 0, 7} {
		if got := g([]float64{0.6, 0.6, step}); math.Abs(got-want) > 1e-12 {
			t.Errorf("lifted constraint with step %g: got %g, want %g", step, got, want)
		}
	}
}
