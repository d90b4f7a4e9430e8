package systems

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/nodlets/store"
)

// wander keeps an agent drifting on a periodically refreshed random heading.
// When the next position would leave the hub's influence, the heading is
// turned back toward the hub.
func (f *Forager) wander(agents *store.AgentStore, hubs *store.HubStore, rng *rand.Rand, i, h int, dt float32) {
	p := &f.Params
	agents.State[i] = store.Seeking

	agents.WanderTimer[i] -= dt
	if agents.WanderTimer[i] <= 0 {
		agents.WanderTimer[i] = randRange(rng, p.WanderMinInterval, p.WanderMaxInterval)
		agents.WanderAngle[i] = rng.Float32() * 2 * math.Pi
		speed := randRange(rng, p.WanderMinSpeed, p.WanderMaxSpeed)
		agents.VX[i] = float32(math.Cos(float64(agents.WanderAngle[i]))) * speed
		agents.VY[i] = float32(math.Sin(float64(agents.WanderAngle[i]))) * speed
	}

	nx := agents.X[i] + agents.VX[i]*dt
	ny := agents.Y[i] + agents.VY[i]*dt
	if hubs.Contains(h, nx, ny) {
		return
	}

	speed := velocityMagnitude(agents.VX[i], agents.VY[i])
	if speed < p.WanderMinSpeed {
		speed = p.WanderMinSpeed
	}
	dx := hubs.X[h] - agents.X[i]
	dy := hubs.Y[h] - agents.Y[i]
	if dx == 0 && dy == 0 {
		return
	}
	angle := math.Atan2(float64(dy), float64(dx)) + (rng.Float64()-0.5)*0.5
	agents.WanderAngle[i] = float32(angle)
	agents.VX[i] = float32(math.Cos(angle)) * speed
	agents.VY[i] = float32(math.Sin(angle)) * speed
}
