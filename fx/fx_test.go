package fx

import (
	"testing"

	"github.com/pthm-cable/nodlets/telemetry"
)

func TestHandleEventSpawnsByType(t *testing.T) {
	tests := []struct {
		name string
		ev   telemetry.Event
		want int
		kind Kind
	}{
		{"delivery", telemetry.NewDeliveryEvent(1, 0, 10, 20, 5), 1, Pulse},
		{"deposit", telemetry.NewDepositEvent(1, 0, 0, 10, 20, 5), 1, Spark},
		{"death", telemetry.NewDeathEvent(1, 0, 0, 10, 20, 0), 1, Fade},
		{"overflow", telemetry.NewOverflowEvent(1, 0, 10, 20, 3), 1, Splash},
		{"milestone", telemetry.NewMilestoneEvent(1, 500), 1, Ring},
		{"spawn", telemetry.NewSpawnEvent(1, 0, 0, 10, 20), 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New(16)
			l.HandleEvent(tt.ev)
			if l.Count() != tt.want {
				t.Fatalf("count = %d, want %d", l.Count(), tt.want)
			}
			l.Each(func(_ Position, e Effect) {
				if e.Kind != tt.kind {
					t.Errorf("kind = %d, want %d", e.Kind, tt.kind)
				}
			})
		})
	}
}

func TestUpdateExpires(t *testing.T) {
	l := New(0)
	l.Spawn(Spark, 1, 1, 0) // ttl 0.4
	l.Spawn(Ring, 2, 2, 0)  // ttl 1.5

	l.Update(0.25)
	if l.Count() != 2 {
		t.Fatalf("count after 0.25s = %d", l.Count())
	}
	l.Update(0.25)
	if l.Count() != 1 {
		t.Fatalf("count after 0.5s = %d, want 1", l.Count())
	}

	seen := 0
	l.Each(func(p Position, e Effect) {
		seen++
		if e.Kind != Ring || p.X != 2 {
			t.Errorf("survivor = %+v at %+v", e, p)
		}
		if got := e.Progress(); got < 0.33 || got > 0.34 {
			t.Errorf("progress = %v, want 1/3", got)
		}
	})
	if seen != 1 {
		t.Errorf("iterated %d effects", seen)
	}

	l.Update(2)
	if l.Count() != 0 {
		t.Errorf("count after expiry = %d", l.Count())
	}
}

func TestSpawnLimitAndColor(t *testing.T) {
	l := New(2)
	if !l.Spawn(Pulse, 0, 0, 0xFF0000FF) || !l.Spawn(Pulse, 0, 0, 0) {
		t.Fatal("spawn under limit failed")
	}
	if l.Spawn(Pulse, 0, 0, 0) {
		t.Error("spawn over limit accepted")
	}

	var colors []uint32
	l.Each(func(_ Position, e Effect) { colors = append(colors, e.Color) })
	if len(colors) != 2 {
		t.Fatalf("colors = %v", colors)
	}
	hasCustom, hasStyle := false, false
	for _, c := range colors {
		hasCustom = hasCustom || c == 0xFF0000FF
		hasStyle = hasStyle || c == DefaultStyles[Pulse].Color
	}
	if !hasCustom || !hasStyle {
		t.Errorf("colors = %x", colors)
	}
}
