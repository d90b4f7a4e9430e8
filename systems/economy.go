package systems

import (
	"math"
	"math/rand"
	"slices"

	"github.com/pthm-cable/nodlets/store"
)

// Delivery records one packet arrival.
type Delivery struct {
	Server   int     // receiving server, or store.Invalid when none was in range
	X, Y     float32 // arrival point
	Credited float32 // payload added to the server
	Overflow float32 // payload discarded for lack of headroom
}

// Economy runs server regeneration and packet transit. Scratch buffers are
// reused across ticks so the tick loop stays allocation-free once warm.
type Economy struct {
	Params EconomyParams

	relays     []int
	removals   []int
	deliveries []Delivery
}

// NewEconomy creates an economy system.
func NewEconomy(p EconomyParams) *Economy {
	return &Economy{
		Params:     p,
		relays:     make([]int, 0, 16),
		removals:   make([]int, 0, 64),
		deliveries: make([]Delivery, 0, 64),
	}
}

// Regenerate moves every server toward its max amount at Regen per second.
// Regeneration never marks the grid dirty.
func (e *Economy) Regenerate(nodes *store.NodeStore, dt, regenMult float32) {
	for i := 0; i < nodes.Count(); i++ {
		if !nodes.Kind[i].Static() || nodes.Regen[i] <= 0 {
			continue
		}
		if nodes.Amount[i] >= nodes.MaxAmount[i] {
			continue
		}
		nodes.Amount[i] = min(nodes.MaxAmount[i], nodes.Amount[i]+nodes.Regen[i]*regenMult*dt)
	}
}

// EmitPackets counts down each generator's emit timer and, on expiry, sends a
// packet toward a random relay within link range. The payload is debited
// from the generator only when it can cover it and the store has room.
// Returns the number of packets spawned.
func (e *Economy) EmitPackets(nodes *store.NodeStore, rng *rand.Rand, dt float32) int {
	p := e.Params
	if p.EmitInterval <= 0 || p.PacketPayload <= 0 {
		return 0
	}

	emitted := 0
	n := nodes.Count() // packets spawned below are appended past n
	for i := 0; i < n; i++ {
		if nodes.Kind[i] != store.Generator {
			continue
		}
		nodes.EmitTimer[i] -= dt
		if nodes.EmitTimer[i] > 0 {
			continue
		}
		nodes.EmitTimer[i] += p.EmitInterval * (0.75 + 0.5*rng.Float32())
		if nodes.EmitTimer[i] <= 0 {
			nodes.EmitTimer[i] = p.EmitInterval
		}

		if nodes.Amount[i] < p.PacketPayload || nodes.Full() {
			continue
		}

		e.relays = e.relays[:0]
		for j := range nodes.Neighbors(nodes.X[i], nodes.Y[i], p.LinkRange) {
			if j < n && nodes.Kind[j] == store.Relay && nodes.Regen[j] > 0 {
				e.relays = append(e.relays, j)
			}
		}
		if len(e.relays) == 0 {
			continue
		}
		dst := e.relays[rng.Intn(len(e.relays))]

		if nodes.SpawnPacket(nodes.X[i], nodes.Y[i], nodes.X[dst], nodes.Y[dst], p.PacketPayload, p.PacketSpeed) == store.Invalid {
			continue
		}
		nodes.Amount[i] -= p.PacketPayload
		emitted++
	}
	return emitted
}

// TransitPackets moves packets toward their targets. Arrived packets credit
// the nearest server within the delivery radius, clamped to its headroom;
// the excess is discarded and reported as Overflow. Arrived and emptied
// packets are despawned after the sweep. The returned slice is reused by
// the next call.
func (e *Economy) TransitPackets(nodes *store.NodeStore, dt float32) []Delivery {
	p := e.Params
	e.deliveries = e.deliveries[:0]
	e.removals = e.removals[:0]

	moved := false
	for i := 0; i < nodes.Count(); i++ {
		if nodes.Kind[i] != store.Packet {
			continue
		}
		if nodes.Amount[i] <= 0 {
			// Fully intercepted en route.
			e.removals = append(e.removals, i)
			continue
		}

		dx := nodes.TargetX[i] - nodes.X[i]
		dy := nodes.TargetY[i] - nodes.Y[i]
		dist := distance(nodes.TargetX[i], nodes.TargetY[i], nodes.X[i], nodes.Y[i])
		step := nodes.Speed[i] * dt

		if dist > p.ArrivalRadius && step < dist {
			nodes.X[i] += dx / dist * step
			nodes.Y[i] += dy / dist * step
			moved = true
			continue
		}

		nodes.X[i], nodes.Y[i] = nodes.TargetX[i], nodes.TargetY[i]
		payload := nodes.Amount[i]
		d := Delivery{Server: store.Invalid, X: nodes.X[i], Y: nodes.Y[i]}
		if srv := nodes.Nearest(d.X, d.Y, p.DeliveryRadius, nodes.IsServer); srv != store.Invalid {
			d.Server = srv
			d.Credited = min(payload, nodes.Headroom(srv))
			nodes.Amount[srv] += d.Credited
		}
		d.Overflow = payload - d.Credited
		nodes.Amount[i] = 0
		e.deliveries = append(e.deliveries, d)
		e.removals = append(e.removals, i)
	}

	if moved {
		nodes.MarkDirty()
	}
	e.flushRemovals(nodes)
	return e.deliveries
}

// PruneDepleted despawns empty caches (zero-regen relays). Returns the count removed.
func (e *Economy) PruneDepleted(nodes *store.NodeStore) int {
	e.removals = e.removals[:0]
	for i := 0; i < nodes.Count(); i++ {
		if nodes.Kind[i] == store.Relay && nodes.Regen[i] <= 0 && nodes.Amount[i] <= 0 {
			e.removals = append(e.removals, i)
		}
	}
	n := len(e.removals)
	e.flushRemovals(nodes)
	return n
}

// DropCache leaves a zero-regen relay holding amount at (x, y).
func (e *Economy) DropCache(nodes *store.NodeStore, x, y, amount float32) int {
	if amount <= 0 {
		return store.Invalid
	}
	return nodes.SpawnRelay(x, y, amount, max(amount, e.Params.CacheMax), 0)
}

// Leak rolls chance once and, on success, spawns a cache at a random point
// inside a random hub's influence. Returns the new node index or store.Invalid.
func (e *Economy) Leak(nodes *store.NodeStore, hubs *store.HubStore, rng *rand.Rand, chance float32) int {
	if chance <= 0 || hubs.Count() == 0 || rng.Float32() >= chance {
		return store.Invalid
	}
	h := rng.Intn(hubs.Count())
	angle := rng.Float64() * 2 * math.Pi
	r := float64(hubs.Influence[h]) * math.Sqrt(rng.Float64()) * 0.9
	x := hubs.X[h] + float32(math.Cos(angle)*r)
	y := hubs.Y[h] + float32(math.Sin(angle)*r)
	amount := e.Params.CacheMax * (0.25 + 0.75*rng.Float32())
	return e.DropCache(nodes, x, y, amount)
}

// flushRemovals despawns buffered indices highest first, so each swap-and-pop
// only moves rows that are not themselves pending.
func (e *Economy) flushRemovals(nodes *store.NodeStore) {
	slices.Sort(e.removals)
	for k := len(e.removals) - 1; k >= 0; k-- {
		nodes.Despawn(e.removals[k])
	}
	e.removals = e.removals[:0]
}
