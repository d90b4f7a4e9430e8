package systems

import (
	"math"
	"math/rand"
	"slices"

	"github.com/pthm-cable/nodlets/progression"
	"github.com/pthm-cable/nodlets/store"
)

// SyncHubs refreshes each hub's influence radius from its base plus the
// perk bonus, then recounts its live agents by a full scan of the agent store.
func SyncHubs(agents *store.AgentStore, hubs *store.HubStore, perks progression.Perks) {
	for h := 0; h < hubs.Count(); h++ {
		hubs.Influence[h] = hubs.BaseInfluence[h] + perks.InfluenceBonus
		hubs.ActivePop[h] = 0
	}
	for i := 0; i < agents.Count(); i++ {
		if h := int(agents.Hub[i]); hubs.Valid(h) {
			hubs.ActivePop[h]++
		}
	}
}

// Population spawns agents for under-populated hubs and retires old ones.
type Population struct {
	Params SpawnParams

	dead []int
}

// NewPopulation creates a population system.
func NewPopulation(p SpawnParams) *Population {
	return &Population{Params: p, dead: make([]int, 0, 32)}
}

// Replenish spawns up to SpawnPerTick agents per hub at a random point on the
// hub's perimeter while its live count is below target. Returns the number spawned.
func (p *Population) Replenish(agents *store.AgentStore, hubs *store.HubStore, rng *rand.Rand, perks progression.Perks) int {
	spawned := 0
	for h := 0; h < hubs.Count(); h++ {
		target := hubs.TargetPop[h] + perks.CapacityBonus
		for n := 0; n < p.Params.SpawnPerTick && hubs.ActivePop[h] < target; n++ {
			if agents.Spawn(p.newAgent(hubs, h, rng, perks)) == store.Invalid {
				return spawned
			}
			hubs.ActivePop[h]++
			spawned++
		}
	}
	return spawned
}

func (p *Population) newAgent(hubs *store.HubStore, h int, rng *rand.Rand, perks progression.Perks) store.Agent {
	sp := &p.Params
	angle := rng.Float64() * 2 * math.Pi
	cos, sin := float32(math.Cos(angle)), float32(math.Sin(angle))

	dir := int8(1)
	if rng.Intn(2) == 0 {
		dir = -1
	}
	lifespan := sp.Lifespan
	if lifespan > 0 {
		lifespan += (rng.Float32()*2 - 1) * sp.LifespanJitter
		lifespan = max(lifespan, 1)
	}

	return store.Agent{
		X:           hubs.X[h] + cos*hubs.Size[h],
		Y:           hubs.Y[h] + sin*hubs.Size[h],
		VX:          cos * sp.SpawnVelocity * rng.Float32(),
		VY:          sin * sp.SpawnVelocity * rng.Float32(),
		Size:        randRange(rng, sp.MinSize, sp.MaxSize),
		MaxCarry:    randRange(rng, sp.MinCapacity, sp.MaxCapacity) * perks.CargoMult,
		Hub:         int32(h),
		WanderAngle: float32(angle),
		OrbitRadius: randRange(rng, sp.MinOrbitRadius, sp.MaxOrbitRadius),
		OrbitDir:    dir,
		State:       store.Seeking,
		Lifespan:    lifespan,
		Color:       hubs.Color[h],
		Target:      store.NoHandle,
	}
}

// Age advances every agent's age and returns, in ascending order, the
// indices whose lifespan ran out. Agents with zero lifespan never expire.
// The returned slice is reused by the next call.
func (p *Population) Age(agents *store.AgentStore, dt float32) []int {
	p.dead = p.dead[:0]
	for i := 0; i < agents.Count(); i++ {
		agents.Age[i] += dt
		if agents.Lifespan[i] > 0 && agents.Age[i] >= agents.Lifespan[i] {
			p.dead = append(p.dead, i)
		}
	}
	return p.dead
}

// Despawn removes the given agents, highest index first. indices may be
// unsorted; it is sorted in place.
func Despawn(agents *store.AgentStore, indices []int) {
	slices.Sort(indices)
	indices = slices.Compact(indices)
	for k := len(indices) - 1; k >= 0; k-- {
		agents.Despawn(indices[k])
	}
}
