package systems

import (
	"math/rand"

	"github.com/pthm-cable/nodlets/progression"
	"github.com/pthm-cable/nodlets/store"
)

// Deposit records cargo unloaded at a hub.
type Deposit struct {
	Agent  int
	Hub    int
	Amount float32
}

// ForageResult summarizes one Update call. Slices are reused by the next call.
type ForageResult struct {
	Harvested   float32 // drained from servers
	Intercepted float32 // taken from packets in flight
	Deposits    []Deposit
	Wandering   int
}

// Forager drives the Seeking/Orbiting/Returning state machine.
type Forager struct {
	Params ForageParams

	candidates [][]int // per hub: servers with stock inside its influence
	result     ForageResult
}

// NewForager creates a forager for up to maxHubs hubs.
func NewForager(p ForageParams, maxHubs int) *Forager {
	return &Forager{
		Params:     p,
		candidates: make([][]int, maxHubs),
	}
}

// HubCandidates recomputes each hub's in-influence server set. Call after
// the node grid is current and before Update.
func (f *Forager) HubCandidates(hubs *store.HubStore, nodes *store.NodeStore) {
	if len(f.candidates) < hubs.Count() {
		f.candidates = append(f.candidates, make([][]int, hubs.Count()-len(f.candidates))...)
	}
	for h := 0; h < hubs.Count(); h++ {
		c := f.candidates[h][:0]
		for i := range nodes.Neighbors(hubs.X[h], hubs.Y[h], hubs.Influence[h]) {
			if nodes.Valid(i) && nodes.IsServer(i) && nodes.Amount[i] > 0 {
				c = append(c, i)
			}
		}
		f.candidates[h] = c
	}
}

// Candidates returns the servers hub h may forage from this tick.
func (f *Forager) Candidates(h int) []int {
	if h < 0 || h >= len(f.candidates) {
		return nil
	}
	return f.candidates[h]
}

// Update advances every agent by dt. lock is the globally pinned target; it
// applies only to hubs whose influence contains it. Hub totals are credited
// here; the caller forwards Deposits to the ledger.
func (f *Forager) Update(agents *store.AgentStore, hubs *store.HubStore, nodes *store.NodeStore,
	rng *rand.Rand, perks progression.Perks, lock store.Handle, dt float32) *ForageResult {

	f.result.Harvested = 0
	f.result.Intercepted = 0
	f.result.Wandering = 0
	f.result.Deposits = f.result.Deposits[:0]

	lockIdx, lockOK := nodes.Resolve(lock)
	if lockOK && !nodes.IsServer(lockIdx) {
		lockOK = false
	}

	maxSpeed := f.Params.MaxSpeed * perks.SpeedMult
	for i := 0; i < agents.Count(); i++ {
		h := int(agents.Hub[i])
		if !hubs.Valid(h) {
			continue
		}

		if agents.State[i] == store.Returning {
			f.returnHome(agents, hubs, i, h, perks, dt)
		} else {
			target := store.Invalid
			if lockOK && hubs.Contains(h, nodes.X[lockIdx], nodes.Y[lockIdx]) {
				target = lockIdx
			}
			f.seek(agents, hubs, nodes, rng, i, h, target, perks, dt)
		}

		agents.VX[i], agents.VY[i] = limitSpeed(agents.VX[i], agents.VY[i], maxSpeed)
		agents.X[i] += agents.VX[i] * dt
		agents.Y[i] += agents.VY[i] * dt
	}
	return &f.result
}

func (f *Forager) returnHome(agents *store.AgentStore, hubs *store.HubStore, i, h int, perks progression.Perks, dt float32) {
	dx := hubs.X[h] - agents.X[i]
	dy := hubs.Y[h] - agents.Y[i]
	dist := distance(hubs.X[h], hubs.Y[h], agents.X[i], agents.Y[i])

	if dist <= hubs.Size[h] {
		amount := agents.Carried[i]
		if amount > 0 {
			hubs.Deposit(h, amount)
			f.result.Deposits = append(f.result.Deposits, Deposit{Agent: i, Hub: h, Amount: amount})
		}
		agents.Carried[i] = 0
		agents.State[i] = store.Seeking
		return
	}

	agents.VX[i], agents.VY[i] = steer(agents.VX[i], agents.VY[i], dx, dy, dist,
		f.Params.ReturnSpeed*perks.SpeedMult, f.Params.SteerRate, dt)
}

// seek runs one Seeking/Orbiting step. pinned is the global lock target
// already checked against this hub, or store.Invalid.
func (f *Forager) seek(agents *store.AgentStore, hubs *store.HubStore, nodes *store.NodeStore,
	rng *rand.Rand, i, h, pinned int, perks progression.Perks, dt float32) {
	p := &f.Params
	x, y := agents.X[i], agents.Y[i]

	// Opportunistic interception comes before any target logic.
	if pk := nodes.First(x, y, p.CaptureRadius, nodes.IsPacket); pk != store.Invalid {
		got := nodes.Take(pk, agents.MaxCarry[i]-agents.Carried[i])
		f.result.Intercepted += got
		if f.load(agents, i, got) {
			return
		}
	}

	t := f.resolveTarget(agents, hubs, nodes, rng, i, h, pinned)
	if t == store.Invalid {
		f.result.Wandering++
		f.wander(agents, hubs, rng, i, h, dt)
		return
	}

	dx := nodes.X[t] - x
	dy := nodes.Y[t] - y
	dist := distance(nodes.X[t], nodes.Y[t], x, y)
	orbitR := agents.OrbitRadius[i]

	switch {
	case dist > p.OrbitThreshold*orbitR:
		agents.State[i] = store.Seeking
		agents.VX[i], agents.VY[i] = steer(agents.VX[i], agents.VY[i], dx, dy, dist,
			p.SeekSpeed*perks.SpeedMult, p.SteerRate, dt)

	case dist <= orbitR*p.HarvestFactor:
		agents.State[i] = store.Orbiting
		bite := min(p.BiteRate*perks.BiteMult*dt, agents.MaxCarry[i]-agents.Carried[i])
		got := nodes.Take(t, bite)
		f.result.Harvested += got
		agents.VX[i], agents.VY[i] = damp(agents.VX[i], agents.VY[i], p.DockDamping, dt)
		if nodes.Amount[t] <= 0 {
			agents.Target[i] = store.NoHandle
		}
		f.load(agents, i, got)

	default:
		agents.State[i] = store.Orbiting
		if dist <= 1e-6 {
			return
		}
		// Radial unit vector points from the server to the agent.
		rx, ry := -dx/dist, -dy/dist
		dir := float32(agents.OrbitDir[i])
		tx, ty := -ry*dir, rx*dir
		pull := (dist - orbitR) * p.OrbitCorrection
		ax := tx*p.OrbitForce - rx*pull
		ay := ty*p.OrbitForce - ry*pull
		vx := agents.VX[i] + ax*dt
		vy := agents.VY[i] + ay*dt
		agents.VX[i], agents.VY[i] = damp(vx, vy, p.OrbitDamping, dt)
	}
}

// load adds cargo to agent i, clamping to capacity. Reports whether the agent
// is now full, in which case it switches to Returning.
func (f *Forager) load(agents *store.AgentStore, i int, amount float32) bool {
	agents.Carried[i] = clampFloat(agents.Carried[i]+amount, 0, agents.MaxCarry[i])
	if agents.Carried[i] >= agents.MaxCarry[i] {
		agents.Carried[i] = agents.MaxCarry[i]
		agents.State[i] = store.Returning
		return true
	}
	return false
}

// resolveTarget returns the server agent i should work this tick, locking it
// into the agent's Target handle. Locks that went stale, drained, or left the
// hub's influence are dropped silently.
func (f *Forager) resolveTarget(agents *store.AgentStore, hubs *store.HubStore, nodes *store.NodeStore,
	rng *rand.Rand, i, h, pinned int) int {

	if pinned != store.Invalid {
		agents.Target[i] = nodes.Handle(pinned)
		return pinned
	}

	if t, ok := nodes.Resolve(agents.Target[i]); ok {
		if nodes.IsServer(t) && nodes.Amount[t] > 0 && hubs.Contains(h, nodes.X[t], nodes.Y[t]) {
			return t
		}
	}
	agents.Target[i] = store.NoHandle

	c := f.Candidates(h)
	if len(c) == 0 {
		return store.Invalid
	}
	t := c[rng.Intn(len(c))]
	if !nodes.Valid(t) || !nodes.IsServer(t) {
		return store.Invalid
	}
	agents.Target[i] = nodes.Handle(t)
	return t
}
