package store

import (
	"iter"

	"github.com/pthm-cable/nodlets/spatial"
)

// NodeKind tags a resource node row.
type NodeKind uint8

const (
	Generator NodeKind = iota
	Relay
	Packet
)

// String returns the kind name.
func (k NodeKind) String() string {
	switch k {
	case Generator:
		return "generator"
	case Relay:
		return "relay"
	case Packet:
		return "packet"
	}
	return "unknown"
}

// Static reports whether nodes of this kind are servers.
func (k NodeKind) Static() bool { return k != Packet }

// Node is one resource node row. Servers use Amount, MaxAmount and Regen;
// packets use Amount as payload plus the target and speed fields.
type Node struct {
	Kind      NodeKind
	X, Y      float32
	Amount    float32
	MaxAmount float32
	Regen     float32
	TargetX   float32
	TargetY   float32
	Speed     float32
	EmitTimer float32
}

// NodeStore holds servers and packets. Its grid is rebuilt only when dirty.
type NodeStore struct {
	Table

	Kind      Column[NodeKind]
	X, Y      Column[float32]
	Amount    Column[float32]
	MaxAmount Column[float32]
	Regen     Column[float32]
	TargetX   Column[float32]
	TargetY   Column[float32]
	Speed     Column[float32]
	EmitTimer Column[float32]

	grid *spatial.Grid
}

// NewNodeStore creates a node store covering a world of the given size.
func NewNodeStore(capacity int, worldW, worldH, cellSize float32) *NodeStore {
	s := &NodeStore{Table: NewTable(capacity)}
	t := &s.Table
	s.Kind = NewColumn[NodeKind](t)
	s.X = NewColumn[float32](t)
	s.Y = NewColumn[float32](t)
	s.Amount = NewColumn[float32](t)
	s.MaxAmount = NewColumn[float32](t)
	s.Regen = NewColumn[float32](t)
	s.TargetX = NewColumn[float32](t)
	s.TargetY = NewColumn[float32](t)
	s.Speed = NewColumn[float32](t)
	s.EmitTimer = NewColumn[float32](t)
	s.grid = spatial.NewGrid(worldW, worldH, cellSize, capacity)
	return s
}

// Spawn appends a node and returns its index, or Invalid when full.
func (s *NodeStore) Spawn(n Node) int {
	i := s.alloc()
	if i == Invalid {
		return Invalid
	}
	if n.Amount < 0 {
		n.Amount = 0
	}
	s.Kind[i] = n.Kind
	s.X[i], s.Y[i] = n.X, n.Y
	s.Amount[i] = n.Amount
	s.MaxAmount[i] = n.MaxAmount
	s.Regen[i] = n.Regen
	s.TargetX[i], s.TargetY[i] = n.TargetX, n.TargetY
	s.Speed[i] = n.Speed
	s.EmitTimer[i] = n.EmitTimer
	s.grid.MarkDirty()
	return i
}

// SpawnGenerator adds a regenerating source.
func (s *NodeStore) SpawnGenerator(x, y, amount, maxAmount, regen float32) int {
	return s.Spawn(Node{Kind: Generator, X: x, Y: y, Amount: amount, MaxAmount: maxAmount, Regen: regen})
}

// SpawnRelay adds a relay server. A relay with zero regen acts as a cache.
func (s *NodeStore) SpawnRelay(x, y, amount, maxAmount, regen float32) int {
	return s.Spawn(Node{Kind: Relay, X: x, Y: y, Amount: amount, MaxAmount: maxAmount, Regen: regen})
}

// SpawnPacket adds a packet in transit. The caller debits the source.
func (s *NodeStore) SpawnPacket(x, y, tx, ty, payload, speed float32) int {
	return s.Spawn(Node{Kind: Packet, X: x, Y: y, TargetX: tx, TargetY: ty, Amount: payload, Speed: speed})
}

// Despawn removes node i and marks the grid dirty.
func (s *NodeStore) Despawn(i int) bool {
	if !s.Table.Despawn(i) {
		return false
	}
	s.grid.MarkDirty()
	return true
}

// Row returns a copy of node i.
func (s *NodeStore) Row(i int) Node {
	if !s.Valid(i) {
		return Node{}
	}
	return Node{
		Kind: s.Kind[i],
		X:    s.X[i], Y: s.Y[i],
		Amount:    s.Amount[i],
		MaxAmount: s.MaxAmount[i],
		Regen:     s.Regen[i],
		TargetX:   s.TargetX[i], TargetY: s.TargetY[i],
		Speed:     s.Speed[i],
		EmitTimer: s.EmitTimer[i],
	}
}

// Headroom returns how much server i can still accept.
func (s *NodeStore) Headroom(i int) float32 {
	if !s.Valid(i) || !s.Kind[i].Static() {
		return 0
	}
	if h := s.MaxAmount[i] - s.Amount[i]; h > 0 {
		return h
	}
	return 0
}

// Take removes up to amount from node i and returns what was taken.
func (s *NodeStore) Take(i int, amount float32) float32 {
	if !s.Valid(i) || amount <= 0 {
		return 0
	}
	if amount > s.Amount[i] {
		amount = s.Amount[i]
	}
	s.Amount[i] -= amount
	return amount
}

// MarkDirty flags the grid for rebuild, e.g. after packets moved.
func (s *NodeStore) MarkDirty() { s.grid.MarkDirty() }

// GridDirty reports whether the grid is stale.
func (s *NodeStore) GridDirty() bool { return s.grid.Dirty() }

// RebuildGridIfDirty rebuilds the grid when flagged. Returns true if rebuilt.
func (s *NodeStore) RebuildGridIfDirty() bool {
	if !s.grid.Dirty() {
		return false
	}
	s.grid.Rebuild(s.X, s.Y, s.Count())
	return true
}

// Neighbors iterates nodes within radius of (x, y) as of the last rebuild.
func (s *NodeStore) Neighbors(x, y, radius float32) iter.Seq[int] {
	return s.grid.Neighbors(s.X, s.Y, x, y, radius)
}

// Nearest returns the closest live node of the given kind filter, or Invalid.
func (s *NodeStore) Nearest(x, y, radius float32, accept func(int) bool) int {
	i, _ := s.grid.Nearest(s.X, s.Y, x, y, radius, s.filter(accept))
	return i
}

// First returns the first live node accepted within radius, or Invalid.
func (s *NodeStore) First(x, y, radius float32, accept func(int) bool) int {
	return s.grid.First(s.X, s.Y, x, y, radius, s.filter(accept))
}

func (s *NodeStore) filter(accept func(int) bool) func(int) bool {
	return func(i int) bool {
		if !s.Valid(i) {
			return false
		}
		return accept == nil || accept(i)
	}
}

// IsServer accepts static nodes.
func (s *NodeStore) IsServer(i int) bool { return s.Kind[i].Static() }

// IsPacket accepts packets with payload left.
func (s *NodeStore) IsPacket(i int) bool { return s.Kind[i] == Packet && s.Amount[i] > 0 }
