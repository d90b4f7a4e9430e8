package spatial

import (
	"math/rand"
	"slices"
	"testing"
)

func bruteForce(xs, ys []float32, n int, x, y, r float32) []int {
	var out []int
	r2 := r * r
	for i := 0; i < n; i++ {
		dx := xs[i] - x
		dy := ys[i] - y
		if dx*dx+dy*dy <= r2 {
			out = append(out, i)
		}
	}
	return out
}

func TestNeighborsMatchesBruteForce(t *testing.T) {
	const n = 500
	const w, h = 1000, 800
	rng := rand.New(rand.NewSource(3))

	xs := make([]float32, n)
	ys := make([]float32, n)
	for i := range xs {
		xs[i] = rng.Float32() * w
		ys[i] = rng.Float32() * h
	}

	for _, cell := range []float32{37, 100, 200, 1500} {
		g := NewGrid(w, h, cell, n)
		g.Rebuild(xs, ys, n)

		for q := 0; q < 200; q++ {
			// Queries deliberately spill past the world edges.
			x := rng.Float32()*(w+400) - 200
			y := rng.Float32()*(h+400) - 200
			r := rng.Float32() * 300

			var got []int
			seen := map[int]bool{}
			for i := range g.Neighbors(xs, ys, x, y, r) {
				if seen[i] {
					t.Fatalf("cell %v: index %d visited twice", cell, i)
				}
				seen[i] = true
				got = append(got, i)
			}
			slices.Sort(got)
			want := bruteForce(xs, ys, n, x, y, r)

			if !slices.Equal(got, want) {
				t.Fatalf("cell %v query (%v,%v,%v): got %v, want %v", cell, x, y, r, got, want)
			}
		}
	}
}

func TestOutOfBoundsEntitiesNotIndexed(t *testing.T) {
	xs := []float32{-5, 50, 1005, 500}
	ys := []float32{50, -1, 50, 500}
	g := NewGrid(1000, 1000, 100, len(xs))
	g.Rebuild(xs, ys, len(xs))

	var got []int
	for i := range g.Neighbors(xs, ys, 500, 500, 5000) {
		got = append(got, i)
	}
	if !slices.Equal(got, []int{3}) {
		t.Errorf("got %v, want only the in-bounds entity", got)
	}
}

func TestNoWraparound(t *testing.T) {
	xs := []float32{990}
	ys := []float32{500}
	g := NewGrid(1000, 1000, 100, 1)
	g.Rebuild(xs, ys, 1)

	for range g.Neighbors(xs, ys, 5, 500, 50) {
		t.Fatal("query at the left edge must not see entities on the right edge")
	}
}

func TestNeighborsEarlyStopAndRestart(t *testing.T) {
	xs := []float32{10, 20, 30}
	ys := []float32{10, 10, 10}
	g := NewGrid(100, 100, 10, 3)
	g.Rebuild(xs, ys, 3)

	seq := g.Neighbors(xs, ys, 20, 10, 50)
	count := 0
	for range seq {
		count++
		break
	}
	if count != 1 {
		t.Fatalf("break after first: count = %d", count)
	}

	total := 0
	for range seq {
		total++
	}
	if total != 3 {
		t.Errorf("restarted sequence yielded %d, want 3", total)
	}
}

func TestNearestAndFirst(t *testing.T) {
	xs := []float32{100, 140, 300}
	ys := []float32{100, 100, 100}
	g := NewGrid(500, 500, 50, 3)
	g.Rebuild(xs, ys, 3)

	i, d2 := g.Nearest(xs, ys, 130, 100, 200, nil)
	if i != 1 || d2 != 100 {
		t.Errorf("nearest = (%d, %v), want (1, 100)", i, d2)
	}

	odd := func(i int) bool { return i != 1 }
	if i, _ := g.Nearest(xs, ys, 130, 100, 200, odd); i != 0 {
		t.Errorf("filtered nearest = %d, want 0", i)
	}
	if i := g.First(xs, ys, 300, 100, 5, nil); i != 2 {
		t.Errorf("first = %d, want 2", i)
	}
	if i := g.First(xs, ys, 450, 450, 10, nil); i != -1 {
		t.Errorf("first in empty region = %d, want -1", i)
	}
}

func TestRebuildClearsDirty(t *testing.T) {
	g := NewGrid(100, 100, 10, 1)
	if !g.Dirty() {
		t.Fatal("new grid should start dirty")
	}
	g.Rebuild([]float32{1}, []float32{1}, 1)
	if g.Dirty() {
		t.Error("rebuild should clear dirty")
	}
	g.MarkDirty()
	if !g.Dirty() {
		t.Error("MarkDirty did not set flag")
	}
}

func TestGridDims(t *testing.T) {
	g := NewGrid(1000, 450, 200, 4)
	if g.cols != 6 || g.rows != 3 {
		t.Errorf("dims = %dx%d, want 6x3", g.cols, g.rows)
	}
	if g.cellSize != 200 {
		t.Errorf("cell size = %v, want 200", g.cellSize)
	}
	if NewGrid(100, 100, 0, 1).cellSize != 200 {
		t.Error("non-positive cell size should fall back to 200")
	}
}
