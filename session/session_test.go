package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pthm-cable/nodlets/config"
	"github.com/pthm-cable/nodlets/sim"
	"github.com/pthm-cable/nodlets/telemetry"
)

func TestHeadlessRunWritesSinks(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "runs.db")

	s, err := New(config.Default(), Options{
		Seed:           3,
		RunID:          "run-1",
		OutputDir:      filepath.Join(dir, "out"),
		DBPath:         dbPath,
		StatsWindowSec: 1,
		StepsPerUpdate: 10,
		Perf:           true,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var windows int
	s.OnStats = func(telemetry.WindowStats) { windows++ }
	if err := s.Run(context.Background(), 600); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if s.World().Tick() != 600 {
		t.Errorf("tick = %d, want 600", s.World().Tick())
	}
	if windows < 9 {
		t.Errorf("windows = %d, want >= 9", windows)
	}
	last, ok := s.LastWindow()
	if !ok || last.Agents == 0 {
		t.Errorf("last window = %+v", last)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	for _, name := range []string{"config.yaml", "telemetry.csv", "perf.csv", "events.csv"} {
		if _, err := os.Stat(filepath.Join(dir, "out", name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
	data, err := os.ReadFile(filepath.Join(dir, "out", "events.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "run-1,") || !strings.Contains(string(data), ",spawn,") {
		t.Error("events.csv lacks spawn rows for the run")
	}

	db, err := telemetry.OpenRunDB(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	run, err := db.Run("run-1")
	if err != nil {
		t.Fatalf("Run row: %v", err)
	}
	if run.Seed != 3 || run.Ticks != 600 {
		t.Errorf("run row = %+v", run)
	}
	rows, err := db.Windows("run-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != windows {
		t.Errorf("stored windows = %d, flushed %d", len(rows), windows)
	}
	spawns, err := db.EventCount("run-1", telemetry.EventSpawn)
	if err != nil {
		t.Fatal(err)
	}
	if spawns < 20 {
		t.Errorf("spawn events = %d, want >= 20", spawns)
	}
}

func TestFrameFollowsClock(t *testing.T) {
	clock := sim.NewManualTime(time.Unix(0, 0))
	s, err := New(config.Default(), Options{Seed: 1, Time: clock})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	total := s.Frame() // first frame primes the clock
	for i := 0; i < 30; i++ {
		clock.Advance(50 * time.Millisecond)
		total += s.Frame()
	}
	if int(s.World().Tick()) != total {
		t.Errorf("world tick %d != frames' tick count %d", s.World().Tick(), total)
	}
	// 1.5s at 60 Hz, allowing one tick of accumulator slack.
	if total < 89 || total > 90 {
		t.Errorf("ticks = %d, want ~90", total)
	}

	clock.Advance(10 * time.Second)
	if n := s.Frame(); n > 7 {
		t.Errorf("stall produced %d ticks, want clamp to max frame delta", n)
	}
}

func TestEventsReachListener(t *testing.T) {
	s, err := New(config.Default(), Options{Seed: 2})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	counts := map[telemetry.EventType]int{}
	s.OnEvent = func(e telemetry.Event) { counts[e.Type]++ }
	for i := 0; i < 30; i++ {
		s.Step()
	}
	if counts[telemetry.EventSpawn] == 0 {
		t.Error("no spawn events delivered")
	}
	if len(s.World().Events()) != 0 {
		t.Error("world still holds drained events")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	s, err := New(config.Default(), Options{Seed: 4})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Run(ctx, 0); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if s.World().Tick() != 0 {
		t.Errorf("ran %d ticks after cancel", s.World().Tick())
	}
}

func TestSetStepsPerUpdateClamps(t *testing.T) {
	s, err := New(config.Default(), Options{Seed: 5})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	for _, tt := range []struct{ in, want int }{{0, 1}, {5, 5}, {1000, 64}} {
		s.SetStepsPerUpdate(tt.in)
		if got := s.StepsPerUpdate(); got != tt.want {
			t.Errorf("SetStepsPerUpdate(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
