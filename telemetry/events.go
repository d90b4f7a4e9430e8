// Package telemetry provides windowed simulation statistics, performance
// timing and run output sinks.
package telemetry

// EventType identifies telemetry events.
type EventType uint8

const (
	EventSpawn EventType = iota
	EventDeath
	EventDeposit
	EventDelivery
	EventPacketOverflow
	EventEmit
	EventDrop
	EventLeak
	EventMilestone
	EventUnlock
)

// String returns the event name.
func (t EventType) String() string {
	switch t {
	case EventSpawn:
		return "spawn"
	case EventDeath:
		return "death"
	case EventDeposit:
		return "deposit"
	case EventDelivery:
		return "delivery"
	case EventPacketOverflow:
		return "packet_overflow"
	case EventEmit:
		return "emit"
	case EventDrop:
		return "drop"
	case EventLeak:
		return "leak"
	case EventMilestone:
		return "milestone"
	case EventUnlock:
		return "unlock"
	}
	return "unknown"
}

// Event represents a single telemetry event. Index is the entity row at the
// time of the event and may be reused afterwards.
type Event struct {
	Type  EventType
	Tick  int32
	Index int32
	Hub   int32

	// Optional fields depending on event type
	X, Y   float32
	Amount float32
	Label  string // perk id for unlocks
}

// NewSpawnEvent creates an agent spawn event.
func NewSpawnEvent(tick int32, agent, hub int, x, y float32) Event {
	return Event{Type: EventSpawn, Tick: tick, Index: int32(agent), Hub: int32(hub), X: x, Y: y}
}

// NewDeathEvent creates an agent death event. carried is the cargo it held.
func NewDeathEvent(tick int32, agent, hub int, x, y, carried float32) Event {
	return Event{Type: EventDeath, Tick: tick, Index: int32(agent), Hub: int32(hub), X: x, Y: y, Amount: carried}
}

// NewDepositEvent creates a hub deposit event.
func NewDepositEvent(tick int32, agent, hub int, x, y, amount float32) Event {
	return Event{Type: EventDeposit, Tick: tick, Index: int32(agent), Hub: int32(hub), X: x, Y: y, Amount: amount}
}

// NewDeliveryEvent creates a packet arrival event.
func NewDeliveryEvent(tick int32, server int, x, y, credited float32) Event {
	return Event{Type: EventDelivery, Tick: tick, Index: int32(server), Hub: -1, X: x, Y: y, Amount: credited}
}

// NewOverflowEvent records packet payload discarded for lack of headroom.
func NewOverflowEvent(tick int32, server int, x, y, discarded float32) Event {
	return Event{Type: EventPacketOverflow, Tick: tick, Index: int32(server), Hub: -1, X: x, Y: y, Amount: discarded}
}

// NewMilestoneEvent records a crossed milestone; Amount is the new total.
func NewMilestoneEvent(tick int32, total float64) Event {
	return Event{Type: EventMilestone, Tick: tick, Index: -1, Hub: -1, Amount: float32(total)}
}
