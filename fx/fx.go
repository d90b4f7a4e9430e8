// Package fx keeps short-lived visual effects spawned from simulation
// events. Effects live in an ark ECS world so renderers can query them
// without touching the simulation stores.
package fx

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/nodlets/telemetry"
)

// Kind selects how an effect is drawn.
type Kind uint8

const (
	Pulse  Kind = iota // packet delivered to a server
	Spark              // cargo deposited at a hub
	Ring               // milestone reached
	Fade               // agent retired
	Splash             // packet overflow
)

// Position is the world-space anchor of an effect.
type Position struct {
	X, Y float32
}

// Effect is the lifetime and appearance of one effect.
type Effect struct {
	Kind   Kind
	Age    float32
	TTL    float32
	Radius float32 // radius at full growth
	Color  uint32
}

// Progress returns the normalized age in [0, 1].
func (e *Effect) Progress() float32 {
	if e.TTL <= 0 {
		return 1
	}
	p := e.Age / e.TTL
	if p > 1 {
		return 1
	}
	return p
}

// Style holds per-kind lifetime and size.
type Style struct {
	TTL    float32
	Radius float32
	Color  uint32
}

// DefaultStyles is used by New.
var DefaultStyles = map[Kind]Style{
	Pulse:  {TTL: 0.6, Radius: 24, Color: 0x80DEEAFF},
	Spark:  {TTL: 0.4, Radius: 14, Color: 0xFFF59DFF},
	Ring:   {TTL: 1.5, Radius: 220, Color: 0xFFD54FFF},
	Fade:   {TTL: 0.8, Radius: 10, Color: 0x9E9E9EFF},
	Splash: {TTL: 0.5, Radius: 18, Color: 0xEF9A9AFF},
}

// Layer owns the effects world.
type Layer struct {
	world  *ecs.World
	mapper *ecs.Map2[Position, Effect]
	filter *ecs.Filter2[Position, Effect]
	styles map[Kind]Style
	limit  int
	count  int

	expired []ecs.Entity
}

// New creates an effects layer holding at most limit live effects.
func New(limit int) *Layer {
	w := ecs.NewWorld()
	return &Layer{
		world:  w,
		mapper: ecs.NewMap2[Position, Effect](w),
		filter: ecs.NewFilter2[Position, Effect](w),
		styles: DefaultStyles,
		limit:  limit,
	}
}

// Spawn adds an effect of the given kind at (x, y). color 0 keeps the
// style color. Spawns beyond the limit are dropped.
func (l *Layer) Spawn(kind Kind, x, y float32, color uint32) bool {
	if l.limit > 0 && l.count >= l.limit {
		return false
	}
	st, ok := l.styles[kind]
	if !ok {
		return false
	}
	if color == 0 {
		color = st.Color
	}
	pos := Position{X: x, Y: y}
	eff := Effect{Kind: kind, TTL: st.TTL, Radius: st.Radius, Color: color}
	l.mapper.NewEntity(&pos, &eff)
	l.count++
	return true
}

// HandleEvent maps a simulation event to an effect. Events without a
// visual are ignored.
func (l *Layer) HandleEvent(e telemetry.Event) {
	switch e.Type {
	case telemetry.EventDelivery:
		l.Spawn(Pulse, e.X, e.Y, 0)
	case telemetry.EventDeposit:
		l.Spawn(Spark, e.X, e.Y, 0)
	case telemetry.EventDeath:
		l.Spawn(Fade, e.X, e.Y, 0)
	case telemetry.EventPacketOverflow:
		l.Spawn(Splash, e.X, e.Y, 0)
	case telemetry.EventMilestone:
		// Milestones have no position; renderers anchor rings to the screen center.
		l.Spawn(Ring, 0, 0, 0)
	}
}

// Update ages every effect by dt and removes the expired ones.
func (l *Layer) Update(dt float32) {
	l.expired = l.expired[:0]

	query := l.filter.Query()
	for query.Next() {
		_, eff := query.Get()
		eff.Age += dt
		if eff.Age >= eff.TTL {
			l.expired = append(l.expired, query.Entity())
		}
	}

	for _, e := range l.expired {
		l.world.RemoveEntity(e)
		l.count--
	}
}

// Each calls fn for every live effect.
func (l *Layer) Each(fn func(Position, Effect)) {
	query := l.filter.Query()
	for query.Next() {
		pos, eff := query.Get()
		fn(*pos, *eff)
	}
}

// Count returns the number of live effects.
func (l *Layer) Count() int { return l.count }
