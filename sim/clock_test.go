package sim

import (
	"math"
	"testing"
	"time"
)

func TestClockAdvance(t *testing.T) {
	c := NewClock(0.25, 1, nil)

	tests := []struct {
		name      string
		delta     float64
		wantTicks int
		wantAlpha float64
	}{
		{"two whole steps", 0.5, 2, 0},
		{"partial step", 0.125, 0, 0.5},
		{"completes step", 0.125, 1, 0},
		{"clamped stall", 10, 4, 0},
		{"negative delta", -3, 0, 0},
		{"zero delta", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Advance(tt.delta); got != tt.wantTicks {
				t.Errorf("ticks = %d, want %d", got, tt.wantTicks)
			}
			if math.Abs(c.Alpha()-tt.wantAlpha) > 1e-9 {
				t.Errorf("alpha = %v, want %v", c.Alpha(), tt.wantAlpha)
			}
		})
	}
	if c.Ticks() != 7 {
		t.Errorf("total ticks = %d, want 7", c.Ticks())
	}
}

func TestClockFrameWithManualTime(t *testing.T) {
	src := NewManualTime(time.Unix(1000, 0))
	c := NewClock(0.25, 0.5, src)

	calls := 0
	tick := func() { calls++ }

	if n := c.Frame(tick); n != 0 {
		t.Errorf("first frame ran %d ticks", n)
	}
	src.Advance(500 * time.Millisecond)
	if n := c.Frame(tick); n != 2 {
		t.Errorf("frame ran %d ticks, want 2", n)
	}
	// A long stall is clamped to maxDelta.
	src.Advance(5 * time.Second)
	if n := c.Frame(tick); n != 2 {
		t.Errorf("stalled frame ran %d ticks, want 2", n)
	}
	// A frame shorter than one step runs no ticks.
	src.Advance(100 * time.Millisecond)
	if n := c.Frame(tick); n != 0 {
		t.Errorf("short frame ran %d ticks", n)
	}
	if calls != 4 {
		t.Errorf("tick called %d times, want 4", calls)
	}
}

func TestClockMaxDeltaNeverBelowStep(t *testing.T) {
	c := NewClock(0.5, 0.1, nil)
	if n := c.Advance(0.5); n != 1 {
		t.Errorf("ticks = %d, want 1", n)
	}
}
