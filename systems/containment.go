package systems

import (
	"math"

	"github.com/pthm-cable/nodlets/store"
)

// Contain clamps every agent onto its hub's influence circle. The outward
// radial velocity of a clamped agent is reflected and scaled by restitution.
// Returns the number of agents clamped.
func Contain(agents *store.AgentStore, hubs *store.HubStore, restitution float32) int {
	clamped := 0
	for i := 0; i < agents.Count(); i++ {
		h := int(agents.Hub[i])
		if !hubs.Valid(h) {
			continue
		}
		r := hubs.Influence[h]
		dx := agents.X[i] - hubs.X[h]
		dy := agents.Y[i] - hubs.Y[h]
		d2 := distanceSq(agents.X[i], agents.Y[i], hubs.X[h], hubs.Y[h])
		if d2 <= r*r {
			continue
		}

		d := float32(math.Sqrt(float64(d2)))
		nx, ny := dx/d, dy/d
		agents.X[i] = hubs.X[h] + nx*r
		agents.Y[i] = hubs.Y[h] + ny*r

		if vr := agents.VX[i]*nx + agents.VY[i]*ny; vr > 0 {
			k := (1 + restitution) * vr
			agents.VX[i] -= k * nx
			agents.VY[i] -= k * ny
		}
		clamped++
	}
	return clamped
}
