package sim

import "time"

// TimeSource supplies wall-clock readings to the Clock.
type TimeSource interface {
	Now() time.Time
}

// SystemTime reads the real monotonic clock.
type SystemTime struct{}

// Now returns time.Now().
func (SystemTime) Now() time.Time { return time.Now() }

// ManualTime is a controllable TimeSource for tests and offline runs.
type ManualTime struct {
	current time.Time
}

// NewManualTime creates a manual source starting at start.
func NewManualTime(start time.Time) *ManualTime {
	return &ManualTime{current: start}
}

// Now returns the current manual time.
func (m *ManualTime) Now() time.Time { return m.current }

// Advance moves the manual time forward by d.
func (m *ManualTime) Advance(d time.Duration) { m.current = m.current.Add(d) }

// Clock is a fixed-timestep accumulator. Wall-clock deltas are clamped to
// maxDelta so a stall never triggers a runaway catch-up.
type Clock struct {
	dt       float64
	maxDelta float64
	acc      float64

	src     TimeSource
	last    time.Time
	started bool
	ticks   int64
}

// NewClock creates a clock stepping dt seconds per tick. A nil src uses SystemTime.
func NewClock(dt, maxDelta float64, src TimeSource) *Clock {
	if src == nil {
		src = SystemTime{}
	}
	if maxDelta < dt {
		maxDelta = dt
	}
	return &Clock{dt: dt, maxDelta: maxDelta, src: src}
}

// DT returns the fixed step in seconds.
func (c *Clock) DT() float32 { return float32(c.dt) }

// Ticks returns the number of ticks granted so far.
func (c *Clock) Ticks() int64 { return c.ticks }

// Advance adds a wall-clock delta and returns how many fixed ticks to run.
// Negative deltas count as zero.
func (c *Clock) Advance(delta float64) int {
	if delta < 0 {
		delta = 0
	}
	if delta > c.maxDelta {
		delta = c.maxDelta
	}
	c.acc += delta

	n := 0
	for c.acc >= c.dt {
		c.acc -= c.dt
		n++
	}
	c.ticks += int64(n)
	return n
}

// Alpha returns how far the accumulator is into the next tick, in [0, 1).
func (c *Clock) Alpha() float64 { return c.acc / c.dt }

// Elapsed returns seconds since the previous Elapsed call. The first call returns 0.
func (c *Clock) Elapsed() float64 {
	now := c.src.Now()
	if !c.started {
		c.started = true
		c.last = now
		return 0
	}
	d := now.Sub(c.last).Seconds()
	c.last = now
	return d
}

// Frame reads the time source, runs tick once per due step and returns the
// number of ticks run. Rendering happens after Frame regardless of the count.
func (c *Clock) Frame(tick func()) int {
	n := c.Advance(c.Elapsed())
	for i := 0; i < n; i++ {
		tick()
	}
	return n
}
