package sim

import (
	"github.com/pthm-cable/nodlets/store"
	"github.com/pthm-cable/nodlets/systems"
	"github.com/pthm-cable/nodlets/telemetry"
)

// Step advances the world by one fixed tick of dt seconds. Phase order:
// grids, economy, hubs, forage, retire, containment. Buffered events
// are kept until DrainEvents.
func (w *World) Step(dt float32) {
	w.perf.StartTick()
	w.stats = TickStats{}
	perks := w.ledger.Perks()

	// Grids are current before any neighbor query this tick.
	w.perf.StartPhase(telemetry.PhaseGrid)
	w.agents.RebuildGrid()
	w.nodes.RebuildGridIfDirty()

	w.perf.StartPhase(telemetry.PhaseEconomy)
	w.stepEconomy(dt, perks.RegenMult, perks.LeakChance)

	w.perf.StartPhase(telemetry.PhaseHubs)
	w.nodes.RebuildGridIfDirty()
	systems.SyncHubs(w.agents, w.hubs, perks)
	w.revalidateLock()
	w.spawnAgents()
	w.forager.HubCandidates(w.hubs, w.nodes)

	w.perf.StartPhase(telemetry.PhaseForage)
	res := w.forager.Update(w.agents, w.hubs, w.nodes, w.rng, perks, w.lock, dt)
	w.stats.Harvested = res.Harvested
	w.stats.Intercepted = res.Intercepted
	w.stats.Wandering = res.Wandering
	for _, d := range res.Deposits {
		w.stats.Deposited += d.Amount
		w.emit(telemetry.NewDepositEvent(w.tick, d.Agent, d.Hub, w.agents.X[d.Agent], w.agents.Y[d.Agent], d.Amount))
		for range w.ledger.Deposit(d.Amount) {
			w.emit(telemetry.NewMilestoneEvent(w.tick, w.ledger.Total()))
		}
	}

	w.perf.StartPhase(telemetry.PhaseRetire)
	w.retire(dt)

	w.perf.StartPhase(telemetry.PhaseContain)
	w.stats.Clamped = systems.Contain(w.agents, w.hubs, w.restitution)

	w.tick++
	w.simTime += float64(dt)
	w.perf.EndTick()
}

func (w *World) stepEconomy(dt, regenMult, leakChance float32) {
	w.economy.Regenerate(w.nodes, dt, regenMult)

	if n := w.economy.EmitPackets(w.nodes, w.rng, dt); n > 0 {
		w.stats.Emitted = n
		w.emit(telemetry.Event{Type: telemetry.EventEmit, Tick: w.tick, Index: -1, Hub: -1, Amount: float32(n)})
	}

	for _, d := range w.economy.TransitPackets(w.nodes, dt) {
		w.stats.Delivered += d.Credited
		w.stats.Overflow += d.Overflow
		w.emit(telemetry.NewDeliveryEvent(w.tick, d.Server, d.X, d.Y, d.Credited))
		if d.Overflow > 0 {
			w.emit(telemetry.NewOverflowEvent(w.tick, d.Server, d.X, d.Y, d.Overflow))
		}
	}

	if i := w.economy.Leak(w.nodes, w.hubs, w.rng, leakChance); i != store.Invalid {
		w.emit(telemetry.Event{Type: telemetry.EventLeak, Tick: w.tick, Index: int32(i), Hub: -1,
			X: w.nodes.X[i], Y: w.nodes.Y[i], Amount: w.nodes.Amount[i]})
	}

	w.stats.Pruned = w.economy.PruneDepleted(w.nodes)
}

// revalidateLock drops the active target once it no longer resolves or sits
// outside every hub's influence.
func (w *World) revalidateLock() {
	if w.lock == store.NoHandle {
		return
	}
	i, ok := w.nodes.Resolve(w.lock)
	if ok && w.nodes.IsServer(i) {
		for h := 0; h < w.hubs.Count(); h++ {
			if w.hubs.Contains(h, w.nodes.X[i], w.nodes.Y[i]) {
				return
			}
		}
	}
	w.lock = store.NoHandle
}

func (w *World) spawnAgents() {
	before := w.agents.Count()
	w.stats.Spawned = w.population.Replenish(w.agents, w.hubs, w.rng, w.ledger.Perks())
	for i := before; i < w.agents.Count(); i++ {
		w.emit(telemetry.NewSpawnEvent(w.tick, i, int(w.agents.Hub[i]), w.agents.X[i], w.agents.Y[i]))
	}
}

// retire ages agents and removes expired ones after the sweep. Cargo held by
// a dying agent is left behind as a cache.
func (w *World) retire(dt float32) {
	dead := w.population.Age(w.agents, dt)
	if len(dead) == 0 {
		return
	}
	for _, i := range dead {
		x, y, carried := w.agents.X[i], w.agents.Y[i], w.agents.Carried[i]
		w.emit(telemetry.NewDeathEvent(w.tick, i, int(w.agents.Hub[i]), x, y, carried))
		if c := w.economy.DropCache(w.nodes, x, y, carried); c != store.Invalid {
			w.emit(telemetry.Event{Type: telemetry.EventDrop, Tick: w.tick, Index: int32(c), Hub: w.agents.Hub[i], X: x, Y: y, Amount: carried})
		}
	}
	w.stats.Deaths = len(dead)
	systems.Despawn(w.agents, dead)
}
