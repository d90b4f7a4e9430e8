package telemetry

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/nodlets/config"
)

func TestRunDBRoundTrip(t *testing.T) {
	db, err := OpenRunDB(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	const run = "3f1c9a52-run"
	if err := db.BeginRun(run, 42, config.Default()); err != nil {
		t.Fatal(err)
	}
	for tick := int32(600); tick <= 1800; tick += 600 {
		s := WindowStats{WindowEndTick: tick, Agents: 20, Deposited: float64(tick) / 10}
		if err := db.WriteWindow(run, s); err != nil {
			t.Fatal(err)
		}
	}
	err = db.WriteEvents([]EventRecord{
		NewEventRecord(run, NewMilestoneEvent(700, 500)),
		NewEventRecord(run, NewOverflowEvent(710, 3, 0, 0, 12)),
		NewEventRecord(run, NewMilestoneEvent(1500, 1000)),
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := db.FinishRun(run, 1800, 360); err != nil {
		t.Fatal(err)
	}

	windows, err := db.Windows(run)
	if err != nil {
		t.Fatal(err)
	}
	if len(windows) != 3 || windows[0].WindowEnd != 600 || windows[2].Deposited != 180 {
		t.Errorf("windows = %+v", windows)
	}

	n, err := db.EventCount(run, EventMilestone)
	if err != nil || n != 2 {
		t.Errorf("milestones = %d (%v), want 2", n, err)
	}

	r, err := db.Run(run)
	if err != nil {
		t.Fatal(err)
	}
	if r.Seed != 42 || r.Ticks != 1800 || r.FinishedAt == nil || r.ConfigYAML == "" {
		t.Errorf("run = %+v", r)
	}
}

func TestRunDBReport(t *testing.T) {
	db, err := OpenRunDB(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	const run = "report-run"
	if err := db.BeginRun(run, 7, config.Default()); err != nil {
		t.Fatal(err)
	}
	for _, tick := range []int32{600, 1200} {
		if err := db.WriteWindow(run, WindowStats{WindowEndTick: tick, Agents: 12, Throughput: 4.5}); err != nil {
			t.Fatal(err)
		}
	}
	if err := db.WriteEvents([]EventRecord{NewEventRecord(run, NewMilestoneEvent(900, 500))}); err != nil {
		t.Fatal(err)
	}

	var sb strings.Builder
	if err := db.Report(&sb, run); err != nil {
		t.Fatal(err)
	}
	out := sb.String()
	for _, want := range []string{"run report-run", "seed 7", "unfinished", "milestones 1", "windows 2", "window_end"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
	if lines := strings.Count(out, "\n"); lines != 5 {
		t.Errorf("report has %d lines, want 5", lines)
	}

	if err := db.Report(&sb, "missing"); err == nil {
		t.Error("report of unknown run should fail")
	}
}

func TestRunDBDisabled(t *testing.T) {
	db, err := OpenRunDB("")
	if err != nil || db != nil {
		t.Fatalf("got (%v, %v), want nil", db, err)
	}
	if err := db.WriteWindow("x", WindowStats{}); err != nil {
		t.Error(err)
	}
	if err := db.Close(); err != nil {
		t.Error(err)
	}
}
