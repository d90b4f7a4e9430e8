// Package sim owns the simulation context: entity stores, systems, the
// progression ledger and the per-tick step.
package sim

import (
	"fmt"
	"math/rand"

	"github.com/pthm-cable/nodlets/config"
	"github.com/pthm-cable/nodlets/progression"
	"github.com/pthm-cable/nodlets/store"
	"github.com/pthm-cable/nodlets/systems"
	"github.com/pthm-cable/nodlets/telemetry"
)

// TickStats summarizes the most recent Step.
type TickStats struct {
	Harvested   float32
	Intercepted float32
	Deposited   float32
	Delivered   float32
	Overflow    float32
	Emitted     int
	Spawned     int
	Deaths      int
	Pruned      int
	Clamped     int
	Wandering   int
}

// World is the explicit application context. It holds no display handles;
// renderers read the stores and input writes only through the lock and
// selection methods.
type World struct {
	cfg *config.Config
	rng *rand.Rand

	agents *store.AgentStore
	hubs   *store.HubStore
	nodes  *store.NodeStore
	ledger *progression.Ledger

	economy    *systems.Economy
	forager    *systems.Forager
	population *systems.Population

	hubSize      float32
	hubPop       int32
	hubInfluence float32
	restitution  float32
	choiceCount  int
	lock         store.Handle
	perf         *telemetry.PerfCollector
	events       []telemetry.Event
	tick         int32
	simTime      float64
	stats        TickStats
	nextHubColor int
}

// New creates an empty world. Call Generate to populate it.
func New(cfg *config.Config, rng *rand.Rand) *World {
	sp := cfg.Spatial
	w := &World{
		cfg:    cfg,
		rng:    rng,
		agents: store.NewAgentStore(cfg.Capacity.MaxAgents, cfg.Derived.WorldW32, cfg.Derived.WorldH32, float32(sp.AgentCellSize)),
		hubs:   store.NewHubStore(cfg.Capacity.MaxHubs),
		nodes:  store.NewNodeStore(cfg.Capacity.MaxNodes, cfg.Derived.WorldW32, cfg.Derived.WorldH32, float32(sp.NodeCellSize)),
		ledger: progression.NewLedger(cfg.Progression.FirstMilestone, cfg.Progression.MilestoneMultiplier),

		economy:    systems.NewEconomy(systems.EconomyParamsFrom(cfg)),
		forager:    systems.NewForager(systems.ForageParamsFrom(cfg), cfg.Capacity.MaxHubs),
		population: systems.NewPopulation(systems.SpawnParamsFrom(cfg)),

		hubSize:      float32(cfg.Hubs.Size),
		hubPop:       int32(cfg.Hubs.BasePopulation),
		hubInfluence: float32(cfg.Hubs.BaseInfluence),
		restitution:  float32(cfg.Containment.Restitution),
		choiceCount:  cfg.Progression.Choices,
		lock:         store.NoHandle,
		events:       make([]telemetry.Event, 0, 64),
	}
	return w
}

// SetPerf attaches a per-phase timer. nil disables timing.
func (w *World) SetPerf(p *telemetry.PerfCollector) { w.perf = p }

// Config returns the configuration the world was built from.
func (w *World) Config() *config.Config { return w.cfg }

// Agents returns the agent store for read-only use by collaborators.
func (w *World) Agents() *store.AgentStore { return w.agents }

// Hubs returns the hub store for read-only use by collaborators.
func (w *World) Hubs() *store.HubStore { return w.hubs }

// Nodes returns the node store for read-only use by collaborators.
func (w *World) Nodes() *store.NodeStore { return w.nodes }

// Ledger returns the progression ledger.
func (w *World) Ledger() *progression.Ledger { return w.ledger }

// Tick returns the number of completed steps.
func (w *World) Tick() int32 { return w.tick }

// SimTime returns simulated seconds.
func (w *World) SimTime() float64 { return w.simTime }

// Stats returns the summary of the last step.
func (w *World) Stats() TickStats { return w.stats }

// Candidates returns the servers hub h could forage from on the last step.
func (w *World) Candidates(h int) []int { return w.forager.Candidates(h) }

// Events returns events buffered since the last DrainEvents.
func (w *World) Events() []telemetry.Event { return w.events }

// DrainEvents passes every buffered event to fn and clears the buffer.
func (w *World) DrainEvents(fn func(telemetry.Event)) {
	for _, e := range w.events {
		fn(e)
	}
	w.events = w.events[:0]
}

func (w *World) emit(e telemetry.Event) { w.events = append(w.events, e) }

// AddHub spawns a hub with the configured size, population and influence.
// Returns store.Invalid when the hub store is full.
func (w *World) AddHub(x, y float32) int {
	h := w.hubs.Spawn(store.Hub{
		X: x, Y: y,
		Size:          w.hubSize,
		TargetPop:     w.hubPop,
		BaseInfluence: w.hubInfluence,
		Influence:     w.hubInfluence + w.ledger.Perks().InfluenceBonus,
		Color:         hubPalette[w.nextHubColor%len(hubPalette)],
	})
	if h != store.Invalid {
		w.nextHubColor++
	}
	return h
}

// RemoveHub despawns hub i together with its agents. Agents of the hub row
// moved into slot i by swap-and-pop are re-pointed, so no agent is left
// holding a stale hub index.
func (w *World) RemoveHub(i int) bool {
	if !w.hubs.Valid(i) {
		return false
	}
	last := w.hubs.Count() - 1

	var own []int
	for a := 0; a < w.agents.Count(); a++ {
		if int(w.agents.Hub[a]) == i {
			own = append(own, a)
		}
	}
	systems.Despawn(w.agents, own)

	w.hubs.Despawn(i)
	if i != last {
		for a := 0; a < w.agents.Count(); a++ {
			if int(w.agents.Hub[a]) == last {
				w.agents.Hub[a] = int32(i)
			}
		}
	}
	return true
}

// SetTargetLock pins node i as the active target for every hub whose
// influence contains it. Returns false if i is not a server.
func (w *World) SetTargetLock(i int) bool {
	if !w.nodes.Valid(i) || !w.nodes.IsServer(i) {
		return false
	}
	w.lock = w.nodes.Handle(i)
	return true
}

// ClearTargetLock removes the active target.
func (w *World) ClearTargetLock() { w.lock = store.NoHandle }

// TargetLock returns the locked server's current index, if still valid.
func (w *World) TargetLock() (int, bool) {
	return w.nodes.Resolve(w.lock)
}

// NearestServer returns the closest server to (x, y) within radius.
func (w *World) NearestServer(x, y, radius float32) int {
	w.nodes.RebuildGridIfDirty()
	return w.nodes.Nearest(x, y, radius, w.nodes.IsServer)
}

// SelectAgent returns the agent closest to (x, y) within radius, or store.Invalid.
func (w *World) SelectAgent(x, y, radius float32) int {
	w.agents.RebuildGrid()
	return w.agents.Nearest(x, y, radius)
}

// Choices offers random perks the player can currently buy.
func (w *World) Choices() []progression.Perk {
	return w.ledger.Choices(w.rng, w.choiceCount)
}

// Unlock spends a point on a perk.
func (w *World) Unlock(id progression.PerkID) error {
	if err := w.ledger.Unlock(id); err != nil {
		return fmt.Errorf("unlock %s: %w", id, err)
	}
	w.emit(telemetry.Event{Type: telemetry.EventUnlock, Tick: w.tick, Index: -1, Hub: -1, Label: string(id)})
	return nil
}

// Snapshot samples end-of-window state for telemetry.
func (w *World) Snapshot() telemetry.Snapshot {
	s := telemetry.Snapshot{
		Agents:       w.agents.Count(),
		Hubs:         w.hubs.Count(),
		Carried:      make([]float64, w.agents.Count()),
		HubDeposits:  make([]float64, w.hubs.Count()),
		LedgerTotal:  w.ledger.Total(),
		LedgerPoints: w.ledger.Points(),
	}
	for i := range s.Carried {
		s.Carried[i] = float64(w.agents.Carried[i])
	}
	for h := range s.HubDeposits {
		s.HubDeposits[h] = float64(w.hubs.Deposited[h])
	}
	for i := 0; i < w.nodes.Count(); i++ {
		if w.nodes.Kind[i] == store.Packet {
			s.Packets++
			s.PacketStock += float64(w.nodes.Amount[i])
		} else {
			s.Servers++
			s.ServerStock += float64(w.nodes.Amount[i])
		}
	}
	for _, p := range progression.Catalog {
		if w.ledger.Unlocked(p.ID) {
			s.UnlockedPerks++
		}
	}
	return s
}

var hubPalette = []uint32{
	0x4FC3F7FF, // cyan
	0xFFB74DFF, // amber
	0xBA68C8FF, // violet
	0x81C784FF, // green
	0xE57373FF, // red
}
