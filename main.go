package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/nodlets/config"
	"github.com/pthm-cable/nodlets/game"
	"github.com/pthm-cable/nodlets/session"
	"github.com/pthm-cable/nodlets/telemetry"
	"github.com/pthm-cable/nodlets/termview"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	tui := flag.Bool("tui", false, "Run in the terminal instead of a window")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	logText := flag.Bool("log-text", false, "Log as text instead of JSON")
	logFile := flag.String("log-file", "", "Write logs to this file (terminal mode discards logs otherwise)")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	dbPath := flag.String("db", "", "SQLite file for run, window and event records")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	stepsPerUpdate := flag.Int("steps-per-update", 1, "Simulation ticks per update call (higher = faster headless runs)")
	perf := flag.Bool("perf", false, "Time each tick phase")
	report := flag.String("report", "", "Print the stored run with this ID from -db and exit")

	flag.Parse()

	if err := setupLogging(*logText, *logFile, *tui); err != nil {
		slog.Error("failed to open log file", "error", err)
		os.Exit(1)
	}

	if *report != "" {
		if err := printReport(*dbPath, *report); err != nil {
			slog.Error("report failed", "error", err)
			os.Exit(1)
		}
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	sess, err := session.New(cfg, session.Options{
		Seed:           rngSeed,
		OutputDir:      *outputDir,
		DBPath:         *dbPath,
		LogStats:       *logStats,
		StatsWindowSec: *statsWindow,
		StepsPerUpdate: *stepsPerUpdate,
		Perf:           *perf,
	})
	if err != nil {
		slog.Error("failed to start session", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case *headless:
		slog.Info("starting headless simulation",
			"seed", rngSeed,
			"max_ticks", *maxTicks,
			"steps_per_update", *stepsPerUpdate,
		)
		err = sess.Run(ctx, *maxTicks)
		if errors.Is(err, context.Canceled) {
			err = nil
		}
	case *tui:
		err = runTerminal(ctx, sess)
	default:
		runWindow(sess, cfg, *maxTicks)
	}

	if cerr := sess.Close(); cerr != nil {
		err = errors.Join(err, cerr)
	}
	if err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func setupLogging(text bool, path string, terminal bool) error {
	var out io.Writer = os.Stdout
	switch {
	case path != "":
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return err
		}
		out = f
	case terminal:
		// The terminal view owns stdout.
		out = io.Discard
	}

	var h slog.Handler = slog.NewJSONHandler(out, nil)
	if text {
		h = slog.NewTextHandler(out, nil)
	}
	slog.SetDefault(slog.New(h))
	return nil
}

func printReport(dbPath, runID string) error {
	if dbPath == "" {
		return errors.New("-report needs -db")
	}
	db, err := telemetry.OpenRunDB(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()
	return db.Report(os.Stdout, runID)
}

func runTerminal(ctx context.Context, sess *session.Session) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	err = termview.New(screen, sess).Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func runWindow(sess *session.Session, cfg *config.Config, maxTicks int) {
	opts := game.DefaultOptions()

	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), opts.Title)
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	g := game.New(sess, opts)
	defer g.Unload()

	for !rl.WindowShouldClose() {
		g.Update()
		g.Draw()

		if maxTicks > 0 && int(g.Tick()) >= maxTicks {
			break
		}
	}
}
