package store

import (
	"iter"

	"github.com/pthm-cable/nodlets/spatial"
)

// AgentState is the behavior state of a nodlet.
type AgentState uint8

const (
	Seeking AgentState = iota
	Returning
	Orbiting
)

// String returns the state name.
func (s AgentState) String() string {
	switch s {
	case Seeking:
		return "seeking"
	case Returning:
		return "returning"
	case Orbiting:
		return "orbiting"
	}
	return "unknown"
}

// Agent is one nodlet row, used to spawn and to snapshot.
type Agent struct {
	X, Y        float32
	VX, VY      float32
	Size        float32
	Carried     float32
	MaxCarry    float32
	Hub         int32 // owning hub index, weak
	WanderAngle float32
	WanderTimer float32
	OrbitRadius float32
	OrbitDir    int8 // +1 or -1
	State       AgentState
	Age         float32
	Lifespan    float32 // 0 = immortal
	Color       uint32
	Target      Handle // locked server
}

// AgentStore holds nodlets in structure-of-arrays layout with an
// embedded grid that is rebuilt every tick.
type AgentStore struct {
	Table

	X, Y        Column[float32]
	VX, VY      Column[float32]
	Size        Column[float32]
	Carried     Column[float32]
	MaxCarry    Column[float32]
	Hub         Column[int32]
	WanderAngle Column[float32]
	WanderTimer Column[float32]
	OrbitRadius Column[float32]
	OrbitDir    Column[int8]
	State       Column[AgentState]
	Age         Column[float32]
	Lifespan    Column[float32]
	Color       Column[uint32]
	Target      Column[Handle]

	grid *spatial.Grid
}

// NewAgentStore creates an agent store covering a world of the given size.
func NewAgentStore(capacity int, worldW, worldH, cellSize float32) *AgentStore {
	s := &AgentStore{Table: NewTable(capacity)}
	t := &s.Table
	s.X = NewColumn[float32](t)
	s.Y = NewColumn[float32](t)
	s.VX = NewColumn[float32](t)
	s.VY = NewColumn[float32](t)
	s.Size = NewColumn[float32](t)
	s.Carried = NewColumn[float32](t)
	s.MaxCarry = NewColumn[float32](t)
	s.Hub = NewColumn[int32](t)
	s.WanderAngle = NewColumn[float32](t)
	s.WanderTimer = NewColumn[float32](t)
	s.OrbitRadius = NewColumn[float32](t)
	s.OrbitDir = NewColumn[int8](t)
	s.State = NewColumn[AgentState](t)
	s.Age = NewColumn[float32](t)
	s.Lifespan = NewColumn[float32](t)
	s.Color = NewColumn[uint32](t)
	s.Target = NewColumn[Handle](t)
	s.grid = spatial.NewGrid(worldW, worldH, cellSize, capacity)
	return s
}

// Spawn appends a row and returns its index, or Invalid when full.
func (s *AgentStore) Spawn(a Agent) int {
	i := s.alloc()
	if i == Invalid {
		return Invalid
	}
	s.Set(i, a)
	return i
}

// Set overwrites row i.
func (s *AgentStore) Set(i int, a Agent) {
	if !s.Valid(i) {
		return
	}
	if a.OrbitDir >= 0 {
		a.OrbitDir = 1
	} else {
		a.OrbitDir = -1
	}
	if a.Carried > a.MaxCarry {
		a.Carried = a.MaxCarry
	}
	s.X[i], s.Y[i] = a.X, a.Y
	s.VX[i], s.VY[i] = a.VX, a.VY
	s.Size[i] = a.Size
	s.Carried[i] = a.Carried
	s.MaxCarry[i] = a.MaxCarry
	s.Hub[i] = a.Hub
	s.WanderAngle[i] = a.WanderAngle
	s.WanderTimer[i] = a.WanderTimer
	s.OrbitRadius[i] = a.OrbitRadius
	s.OrbitDir[i] = a.OrbitDir
	s.State[i] = a.State
	s.Age[i] = a.Age
	s.Lifespan[i] = a.Lifespan
	s.Color[i] = a.Color
	s.Target[i] = a.Target
}

// Row returns a copy of row i. The zero Agent is returned for invalid indices.
func (s *AgentStore) Row(i int) Agent {
	if !s.Valid(i) {
		return Agent{}
	}
	return Agent{
		X: s.X[i], Y: s.Y[i],
		VX: s.VX[i], VY: s.VY[i],
		Size:        s.Size[i],
		Carried:     s.Carried[i],
		MaxCarry:    s.MaxCarry[i],
		Hub:         s.Hub[i],
		WanderAngle: s.WanderAngle[i],
		WanderTimer: s.WanderTimer[i],
		OrbitRadius: s.OrbitRadius[i],
		OrbitDir:    s.OrbitDir[i],
		State:       s.State[i],
		Age:         s.Age[i],
		Lifespan:    s.Lifespan[i],
		Color:       s.Color[i],
		Target:      s.Target[i],
	}
}

// RebuildGrid re-buckets every live agent.
func (s *AgentStore) RebuildGrid() {
	s.grid.Rebuild(s.X, s.Y, s.Count())
}

// Neighbors iterates agents within radius of (x, y) as of the last rebuild.
func (s *AgentStore) Neighbors(x, y, radius float32) iter.Seq[int] {
	return s.grid.Neighbors(s.X, s.Y, x, y, radius)
}

// Nearest returns the closest agent within radius, or Invalid.
func (s *AgentStore) Nearest(x, y, radius float32) int {
	i, _ := s.grid.Nearest(s.X, s.Y, x, y, radius, s.live)
	return i
}

// live filters indices that went stale since the last rebuild.
func (s *AgentStore) live(i int) bool { return s.Valid(i) }
