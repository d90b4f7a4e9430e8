package store

// Hub is one collector row.
type Hub struct {
	X, Y          float32
	Size          float32
	Deposited     float32
	TargetPop     int32
	ActivePop     int32
	BaseInfluence float32
	Influence     float32 // base + upgrade bonus, refreshed each tick
	Color         uint32
}

// HubStore holds collectors. Hubs are few and never queried spatially.
type HubStore struct {
	Table

	X, Y          Column[float32]
	Size          Column[float32]
	Deposited     Column[float32]
	TargetPop     Column[int32]
	ActivePop     Column[int32]
	BaseInfluence Column[float32]
	Influence     Column[float32]
	Color         Column[uint32]
}

// NewHubStore creates a hub store.
func NewHubStore(capacity int) *HubStore {
	s := &HubStore{Table: NewTable(capacity)}
	t := &s.Table
	s.X = NewColumn[float32](t)
	s.Y = NewColumn[float32](t)
	s.Size = NewColumn[float32](t)
	s.Deposited = NewColumn[float32](t)
	s.TargetPop = NewColumn[int32](t)
	s.ActivePop = NewColumn[int32](t)
	s.BaseInfluence = NewColumn[float32](t)
	s.Influence = NewColumn[float32](t)
	s.Color = NewColumn[uint32](t)
	return s
}

// Spawn appends a hub and returns its index, or Invalid when full.
func (s *HubStore) Spawn(h Hub) int {
	i := s.alloc()
	if i == Invalid {
		return Invalid
	}
	if h.Influence == 0 {
		h.Influence = h.BaseInfluence
	}
	s.X[i], s.Y[i] = h.X, h.Y
	s.Size[i] = h.Size
	s.Deposited[i] = h.Deposited
	s.TargetPop[i] = h.TargetPop
	s.ActivePop[i] = h.ActivePop
	s.BaseInfluence[i] = h.BaseInfluence
	s.Influence[i] = h.Influence
	s.Color[i] = h.Color
	return i
}

// Row returns a copy of hub i.
func (s *HubStore) Row(i int) Hub {
	if !s.Valid(i) {
		return Hub{}
	}
	return Hub{
		X: s.X[i], Y: s.Y[i],
		Size:          s.Size[i],
		Deposited:     s.Deposited[i],
		TargetPop:     s.TargetPop[i],
		ActivePop:     s.ActivePop[i],
		BaseInfluence: s.BaseInfluence[i],
		Influence:     s.Influence[i],
		Color:         s.Color[i],
	}
}

// Deposit adds amount to hub i's accumulated total.
func (s *HubStore) Deposit(i int, amount float32) {
	if !s.Valid(i) || amount <= 0 {
		return
	}
	s.Deposited[i] += amount
}

// Contains reports whether (x, y) lies within hub i's influence radius.
func (s *HubStore) Contains(i int, x, y float32) bool {
	if !s.Valid(i) {
		return false
	}
	dx := x - s.X[i]
	dy := y - s.Y[i]
	r := s.Influence[i]
	return dx*dx+dy*dy <= r*r
}
