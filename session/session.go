// Package session wires a simulation world to its clock, telemetry and
// output sinks. Frontends (raylib, terminal, headless, tuner) drive a
// Session instead of the world directly.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/pthm-cable/nodlets/config"
	"github.com/pthm-cable/nodlets/sim"
	"github.com/pthm-cable/nodlets/telemetry"
)

// Options configures a session.
type Options struct {
	Seed           int64
	RunID          string  // empty = random UUID
	OutputDir      string  // empty = no CSV output
	DBPath         string  // empty = no sqlite sink
	LogStats       bool    // log each window via slog
	StatsWindowSec float64 // 0 = use config
	StepsPerUpdate int     // ticks per Update call, headless only
	Perf           bool    // time each tick phase
	Time           sim.TimeSource
}

// Session owns one simulation run.
type Session struct {
	cfg   *config.Config
	world *sim.World
	clock *sim.Clock
	runID string
	seed  int64

	collector *telemetry.Collector
	perf      *telemetry.PerfCollector
	output    *telemetry.OutputManager
	db        *telemetry.RunDB

	logStats       bool
	stepsPerUpdate int
	pending        []telemetry.EventRecord
	last           telemetry.WindowStats
	windows        int

	// OnEvent, when set, receives every simulation event after telemetry.
	OnEvent func(telemetry.Event)
	// OnStats, when set, receives every flushed window.
	OnStats func(telemetry.WindowStats)
}

// New builds and generates a world and opens the configured sinks.
func New(cfg *config.Config, opts Options) (*Session, error) {
	runID := opts.RunID
	if runID == "" {
		runID = uuid.New().String()
	}
	window := cfg.Telemetry.StatsWindow
	if opts.StatsWindowSec > 0 {
		window = opts.StatsWindowSec
	}
	steps := opts.StepsPerUpdate
	if steps < 1 {
		steps = 1
	}

	world := sim.New(cfg, rand.New(rand.NewSource(opts.Seed)))
	world.Generate(opts.Seed)

	s := &Session{
		cfg:            cfg,
		world:          world,
		clock:          sim.NewClock(cfg.Clock.DT, cfg.Clock.MaxFrameDelta, opts.Time),
		runID:          runID,
		seed:           opts.Seed,
		collector:      telemetry.NewCollector(window, cfg.Derived.DT32),
		logStats:       opts.LogStats,
		stepsPerUpdate: steps,
	}
	if opts.Perf {
		s.perf = telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow)
		world.SetPerf(s.perf)
	}

	var err error
	if s.output, err = telemetry.NewOutputManager(opts.OutputDir); err != nil {
		return nil, fmt.Errorf("output: %w", err)
	}
	if err := s.output.WriteConfig(cfg); err != nil {
		s.output.Close()
		return nil, fmt.Errorf("output: %w", err)
	}
	if s.db, err = telemetry.OpenRunDB(opts.DBPath); err != nil {
		s.output.Close()
		return nil, fmt.Errorf("run db: %w", err)
	}
	if err := s.db.BeginRun(runID, opts.Seed, cfg); err != nil {
		return nil, errors.Join(err, s.db.Close(), s.output.Close())
	}

	slog.Info("session started",
		"run_id", runID,
		"seed", opts.Seed,
		"hubs", world.Hubs().Count(),
		"nodes", world.Nodes().Count(),
		"output_dir", s.output.Dir(),
	)
	return s, nil
}

// World returns the simulation world.
func (s *Session) World() *sim.World { return s.world }

// Clock returns the frame clock.
func (s *Session) Clock() *sim.Clock { return s.clock }

// RunID returns the identifier stamped into every output row.
func (s *Session) RunID() string { return s.runID }

// Perf returns the phase timer, or nil when timing is off.
func (s *Session) Perf() *telemetry.PerfCollector { return s.perf }

// LastWindow returns the most recently flushed window and whether any exists.
func (s *Session) LastWindow() (telemetry.WindowStats, bool) {
	return s.last, s.windows > 0
}

// StepsPerUpdate returns the headless batch size.
func (s *Session) StepsPerUpdate() int { return s.stepsPerUpdate }

// SetStepsPerUpdate changes the batch size, clamped to [1, 64].
func (s *Session) SetStepsPerUpdate(n int) {
	s.stepsPerUpdate = max(1, min(n, 64))
}

// Step runs exactly one fixed tick and handles its events.
func (s *Session) Step() {
	w := s.world
	w.Step(s.clock.DT())

	st := w.Stats()
	s.collector.RecordFlow(st.Harvested, st.Intercepted, st.Clamped)
	w.DrainEvents(s.handleEvent)

	if s.collector.ShouldFlush(w.Tick()) {
		s.flush()
	}
}

// Update runs StepsPerUpdate ticks without consulting the clock.
func (s *Session) Update() {
	for i := 0; i < s.stepsPerUpdate; i++ {
		s.Step()
	}
}

// Frame runs the ticks the clock says are due since the last frame and
// returns how many ran.
func (s *Session) Frame() int {
	n := s.clock.Frame(s.Step)
	// Events raised between ticks (perk unlocks) still reach the sinks.
	s.world.DrainEvents(s.handleEvent)
	return n
}

// Run steps headlessly until maxTicks (0 = unlimited) or ctx is done.
func (s *Session) Run(ctx context.Context, maxTicks int) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.Update()
		if maxTicks > 0 && int(s.world.Tick()) >= maxTicks {
			slog.Info("max ticks reached", "tick", s.world.Tick())
			return nil
		}
	}
}

func (s *Session) handleEvent(e telemetry.Event) {
	s.collector.Record(e)
	if s.output != nil || s.db != nil {
		s.pending = append(s.pending, telemetry.NewEventRecord(s.runID, e))
	}
	if e.Type == telemetry.EventMilestone {
		slog.Info("milestone reached",
			"tick", e.Tick,
			"total", humanize.Commaf(float64(e.Amount)),
			"points", s.world.Ledger().Points(),
		)
	}
	if s.OnEvent != nil {
		s.OnEvent(e)
	}
}

// flush closes the current telemetry window and writes it to every sink.
func (s *Session) flush() {
	stats := s.collector.Flush(s.world.Tick(), s.world.Snapshot())
	s.last = stats
	s.windows++

	var perfStats telemetry.PerfStats
	if s.perf != nil {
		perfStats = s.perf.Stats()
	}

	if s.OnStats != nil {
		s.OnStats(stats)
	}
	if s.logStats {
		stats.LogStats()
		if s.perf != nil {
			perfStats.LogStats()
		}
	}

	if err := s.output.WriteTelemetry(stats); err != nil {
		slog.Error("failed to write telemetry", "error", err)
	}
	if s.perf != nil {
		if err := s.output.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
	if err := s.db.WriteWindow(s.runID, stats); err != nil {
		slog.Error("failed to write window", "error", err)
	}
	s.flushEvents()
}

func (s *Session) flushEvents() {
	if len(s.pending) == 0 {
		return
	}
	if err := s.output.WriteEvents(s.pending); err != nil {
		slog.Error("failed to write events", "error", err)
	}
	if err := s.db.WriteEvents(s.pending); err != nil {
		slog.Error("failed to store events", "error", err)
	}
	s.pending = s.pending[:0]
}

// Close writes buffered events, finishes the run record and closes sinks.
func (s *Session) Close() error {
	s.flushEvents()

	total := s.world.Ledger().Total()
	slog.Info("session finished",
		"run_id", s.runID,
		"ticks", s.world.Tick(),
		"realtime_ticks", s.clock.Ticks(),
		"deposited", humanize.Commaf(total),
		"milestones", s.world.Ledger().Milestones(),
		"points", s.world.Ledger().Points(),
	)

	err := s.db.FinishRun(s.runID, int64(s.world.Tick()), total)
	return errors.Join(err, s.db.Close(), s.output.Close())
}
