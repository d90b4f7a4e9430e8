// Package store provides fixed-capacity structure-of-arrays entity stores.
//
// Every store is a Table plus a set of registered columns. Rows live in the
// range [0, Count) and are removed with swap-and-pop, so indices are only
// stable until the next Despawn on the same table.
package store

// Invalid is returned by Spawn when a table is full.
const Invalid = -1

// column is the type-erased view of a Column used by swap-and-pop.
type column interface {
	move(dst, src int)
}

// Column is one pre-allocated attribute array of a Table.
type Column[T any] []T

func (c Column[T]) move(dst, src int) {
	c[dst] = c[src]
}

// NewColumn allocates a column sized to the table capacity and registers it
// so that Despawn copies it along with every other column.
func NewColumn[T any](t *Table) Column[T] {
	c := make(Column[T], t.capacity)
	t.columns = append(t.columns, c)
	return c
}

// Handle is a generation-checked reference to a row. It names a stable
// slot rather than a row, so it keeps resolving when swap-and-pop moves the
// row and stops resolving once the row is despawned.
type Handle struct {
	Index int32 // slot
	Gen   uint32
}

// NoHandle never resolves.
var NoHandle = Handle{Index: Invalid}

// Table tracks the live range, column registry and slot generations.
// Rows and slots are a sparse set: rowOf[slot] and slotOf[row] are inverse
// permutations, and the slots of rows in [count, capacity) are free.
type Table struct {
	count    int
	capacity int
	columns  []column
	gen      []uint32 // per slot
	rowOf    []int32  // slot -> row
	slotOf   []int32  // row -> slot
}

// NewTable creates a table with room for capacity rows.
func NewTable(capacity int) Table {
	if capacity < 0 {
		capacity = 0
	}
	t := Table{
		capacity: capacity,
		gen:      make([]uint32, capacity),
		rowOf:    make([]int32, capacity),
		slotOf:   make([]int32, capacity),
	}
	for i := range capacity {
		t.rowOf[i] = int32(i)
		t.slotOf[i] = int32(i)
	}
	return t
}

// Count returns the number of live rows.
func (t *Table) Count() int { return t.count }

// Cap returns the fixed capacity.
func (t *Table) Cap() int { return t.capacity }

// Full reports whether Spawn would fail.
func (t *Table) Full() bool { return t.count >= t.capacity }

// Valid reports whether i addresses a live row.
func (t *Table) Valid(i int) bool { return i >= 0 && i < t.count }

// alloc reserves the next row, or returns Invalid when full.
func (t *Table) alloc() int {
	if t.count >= t.capacity {
		return Invalid
	}
	i := t.count
	t.count++
	return i
}

// Despawn removes row i by copying the last live row over it. The moved
// row keeps its slot; the removed row's slot is retired with a new
// generation. Out-of-range indices are ignored. Returns true if a row was
// removed.
func (t *Table) Despawn(i int) bool {
	if !t.Valid(i) {
		return false
	}
	last := t.count - 1
	slot := t.slotOf[i]
	if i != last {
		for _, c := range t.columns {
			c.move(i, last)
		}
		moved := t.slotOf[last]
		t.slotOf[i], t.rowOf[moved] = moved, int32(i)
		t.slotOf[last], t.rowOf[slot] = slot, int32(last)
	}
	t.gen[slot]++
	t.count--
	return true
}

// Handle returns a generation-checked reference to row i.
func (t *Table) Handle(i int) Handle {
	if !t.Valid(i) {
		return NoHandle
	}
	slot := t.slotOf[i]
	return Handle{Index: slot, Gen: t.gen[slot]}
}

// Resolve returns the current row for h, or false if h is stale.
func (t *Table) Resolve(h Handle) (int, bool) {
	slot := int(h.Index)
	if slot < 0 || slot >= t.capacity || t.gen[slot] != h.Gen {
		return Invalid, false
	}
	i := int(t.rowOf[slot])
	if !t.Valid(i) {
		return Invalid, false
	}
	return i, true
}
