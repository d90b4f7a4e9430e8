// Package spatial provides the uniform grid used for neighbor queries.
package spatial

import (
	"iter"
	"math"
)

// none terminates a cell list.
const none int32 = -1

// Grid is a uniform bucket grid over world space.
// Buckets are intrusive singly linked lists: head holds the first index of
// each cell and next chains indices within a cell. The grid stores indices
// only; positions are passed in by the owning store.
type Grid struct {
	cellSize float32
	invCell  float64
	cols     int
	rows     int
	width    float32
	height   float32

	head []int32 // cols*rows, none = empty
	next []int32 // per entity

	dirty bool
}

// NewGrid creates a grid covering [0,width]x[0,height] for up to capacity entities.
func NewGrid(width, height, cellSize float32, capacity int) *Grid {
	if cellSize <= 0 {
		cellSize = 200
	}
	cols := int(width/cellSize) + 1
	rows := int(height/cellSize) + 1

	g := &Grid{
		cellSize: cellSize,
		invCell:  1.0 / float64(cellSize),
		cols:     cols,
		rows:     rows,
		width:    width,
		height:   height,
		head:     make([]int32, cols*rows),
		next:     make([]int32, capacity),
		dirty:    true,
	}
	g.clear()
	return g
}

// Dirty reports whether the grid needs a rebuild.
func (g *Grid) Dirty() bool { return g.dirty }

// MarkDirty flags the grid for rebuild.
func (g *Grid) MarkDirty() { g.dirty = true }

func (g *Grid) clear() {
	for i := range g.head {
		g.head[i] = none
	}
}

// Rebuild re-buckets the first count entities. Entities outside the world
// bounds are not indexed and are never returned by queries.
func (g *Grid) Rebuild(xs, ys []float32, count int) {
	g.clear()
	if count > len(g.next) {
		count = len(g.next)
	}
	for i := 0; i < count; i++ {
		c := g.cellOf(xs[i], ys[i])
		if c < 0 {
			g.next[i] = none
			continue
		}
		g.next[i] = g.head[c]
		g.head[c] = int32(i)
	}
	g.dirty = false
}

// cellOf returns the flat cell index for a position, or -1 when out of bounds.
func (g *Grid) cellOf(x, y float32) int {
	if !(x >= 0 && y >= 0 && x <= g.width && y <= g.height) {
		return -1
	}
	col := int(float64(x) * g.invCell)
	row := int(float64(y) * g.invCell)
	if col >= g.cols || row >= g.rows {
		return -1
	}
	return row*g.cols + col
}

// cellRange clips [lo,hi] world coordinates to a cell span.
func (g *Grid) cellRange(lo, hi float32, n int) (int, int, bool) {
	a := int(math.Floor(float64(lo) * g.invCell))
	b := int(math.Floor(float64(hi) * g.invCell))
	if a < 0 {
		a = 0
	}
	if b > n-1 {
		b = n - 1
	}
	return a, b, a <= b
}

// Neighbors iterates every indexed entity within radius of (x, y).
// Each entity is yielded once. Only cells overlapping the query box clipped to
// the grid are scanned. The sequence can be ranged over repeatedly; it must not
// be consumed across a Rebuild or a despawn on the owning store.
func (g *Grid) Neighbors(xs, ys []float32, x, y, radius float32) iter.Seq[int] {
	return func(yield func(int) bool) {
		if !(radius >= 0) {
			return
		}
		c0, c1, okX := g.cellRange(x-radius, x+radius, g.cols)
		r0, r1, okY := g.cellRange(y-radius, y+radius, g.rows)
		if !okX || !okY {
			return
		}
		r2 := radius * radius
		for row := r0; row <= r1; row++ {
			base := row * g.cols
			for col := c0; col <= c1; col++ {
				for i := g.head[base+col]; i != none; i = g.next[i] {
					dx := xs[i] - x
					dy := ys[i] - y
					if dx*dx+dy*dy <= r2 {
						if !yield(int(i)) {
							return
						}
					}
				}
			}
		}
	}
}

// Nearest returns the closest entity within radius accepted by accept
// (nil accepts all), and its squared distance. Returns -1 when none match.
func (g *Grid) Nearest(xs, ys []float32, x, y, radius float32, accept func(int) bool) (int, float32) {
	best := -1
	bestD2 := float32(math.MaxFloat32)
	for i := range g.Neighbors(xs, ys, x, y, radius) {
		if accept != nil && !accept(i) {
			continue
		}
		dx := xs[i] - x
		dy := ys[i] - y
		if d2 := dx*dx + dy*dy; d2 < bestD2 {
			best, bestD2 = i, d2
		}
	}
	return best, bestD2
}

// First returns the first entity within radius accepted by accept, or -1.
func (g *Grid) First(xs, ys []float32, x, y, radius float32, accept func(int) bool) int {
	for i := range g.Neighbors(xs, ys, x, y, radius) {
		if accept == nil || accept(i) {
			return i
		}
	}
	return -1
}
