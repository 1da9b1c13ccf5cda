package warehouse

import (
	"math"
	"testing"
)

func TestGrid_BoundsAndObstacles(t *testing.T) {
	g := NewGrid(4, 3, 1.0, []Cell{{X: 1, Y: 1}})

	if !g.InBounds(Cell{X: 0, Y: 0}) || !g.InBounds(Cell{X: 3, Y: 2}) {
		t.Fatalf("corner cells must be in bounds")
	}
	for _, c := range []Cell{{X: -1, Y: 0}, {X: 4, Y: 0}, {X: 0, Y: 3}} {
		if g.InBounds(c) {
			t.Fatalf("cell %v should be out of bounds", c)
		}
	}
	if g.Walkable(Cell{X: 1, Y: 1}) {
		t.Fatalf("obstacle cell must not be walkable")
	}
	if !g.Walkable(Cell{X: 2, Y: 1}) {
		t.Fatalf("free cell must be walkable")
	}
}

func TestGrid_CellPositionRoundTrip(t *testing.T) {
	g := NewGrid(10, 10, 0.5, nil)
	c := Cell{X: 3, Y: 7}
	x, y := g.PositionOf(c)
	if got := g.CellOf(x, y); got != c {
		t.Fatalf("cell center %v,%v maps to %v, want %v", x, y, got, c)
	}
}

func TestDist_Metrics(t *testing.T) {
	a := Cell{X: 0, Y: 0}
	b := Cell{X: 3, Y: 4}
	if d := Dist(a, b); math.Abs(d-5.0) > 1e-9 {
		t.Fatalf("euclidean dist = %v, want 5", d)
	}
	if m := Manhattan(a, b); m != 7 {
		t.Fatalf("manhattan dist = %d, want 7", m)
	}
	if m := Manhattan(b, a); m != 7 {
		t.Fatalf("manhattan must be symmetric")
	}
}

func TestHeading_Transitions(t *testing.T) {
	if North.Right() != East || East.Right() != South || South.Right() != West || West.Right() != North {
		t.Fatalf("right rotation broken")
	}
	if North.Left() != West || West.Left() != South {
		t.Fatalf("left rotation broken")
	}
	for h := North; h <= West; h++ {
		if h.Opposite().Opposite() != h {
			t.Fatalf("opposite must be an involution for %v", h)
		}
	}

	c := Cell{X: 5, Y: 5}
	if got := North.Forward(c); got != (Cell{X: 5, Y: 6}) {
		t.Fatalf("north forward = %v", got)
	}
	if got := South.Forward(c); got != (Cell{X: 5, Y: 4}) {
		t.Fatalf("south forward = %v", got)
	}
	if got := East.Backward(c); got != (Cell{X: 4, Y: 5}) {
		t.Fatalf("east backward = %v", got)
	}
}
