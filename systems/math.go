package systems

import (
	"math"
	"math/rand"
)

// clampFloat clamps a float32 value between min and max.
func clampFloat(v, minVal, maxVal float32) float32 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// distanceSq returns the squared distance between two points.
func distanceSq(x1, y1, x2, y2 float32) float32 {
	dx := x1 - x2
	dy := y1 - y2
	return dx*dx + dy*dy
}

// distance returns the Euclidean distance between two points.
func distance(x1, y1, x2, y2 float32) float32 {
	return float32(math.Sqrt(float64(distanceSq(x1, y1, x2, y2))))
}

// velocityMagnitude returns the magnitude of a velocity vector.
func velocityMagnitude(vx, vy float32) float32 {
	return float32(math.Sqrt(float64(vx*vx + vy*vy)))
}

// damp scales a velocity by the per-second damping rate over dt.
func damp(vx, vy, rate, dt float32) (float32, float32) {
	k := 1 - rate*dt
	if k < 0 {
		k = 0
	}
	return vx * k, vy * k
}

// steer nudges (vx, vy) toward speed along (dx, dy). A zero-length
// direction leaves the velocity unchanged.
func steer(vx, vy, dx, dy, dist, speed, rate, dt float32) (float32, float32) {
	if dist <= 1e-6 {
		return vx, vy
	}
	wx := dx / dist * speed
	wy := dy / dist * speed
	k := clampFloat(rate*dt, 0, 1)
	return vx + (wx-vx)*k, vy + (wy-vy)*k
}

// limitSpeed rescales a velocity whose magnitude exceeds max.
func limitSpeed(vx, vy, max float32) (float32, float32) {
	if max <= 0 {
		return vx, vy
	}
	m := velocityMagnitude(vx, vy)
	if m <= max {
		return vx, vy
	}
	s := max / m
	return vx * s, vy * s
}

// randRange returns a uniform float32 in [lo, hi).
func randRange(rng *rand.Rand, lo, hi float32) float32 {
	return lo + (hi-lo)*rng.Float32()
}
