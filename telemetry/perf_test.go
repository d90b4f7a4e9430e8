package telemetry

import (
	"testing"
	"time"
)

func TestPerfCollectorTracksPhases(t *testing.T) {
	pc := NewPerfCollector(10)
	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseGrid)
		time.Sleep(10 * time.Microsecond)
		pc.StartPhase(PhaseForage)
		time.Sleep(200 * time.Microsecond)
		pc.EndTick()
	}

	s := pc.Stats()
	if s.AvgTick <= 0 || s.TicksPerSecond <= 0 {
		t.Fatalf("stats = %+v", s)
	}
	if s.PhaseAvg[PhaseForage] <= 0 {
		t.Error("forage phase not tracked")
	}
	if s.PhasePct[PhaseForage] <= s.PhasePct[PhaseGrid] {
		t.Errorf("forage %v%% should exceed grid %v%%", s.PhasePct[PhaseForage], s.PhasePct[PhaseGrid])
	}
	if s.PhaseAvg[PhaseEconomy] != 0 {
		t.Errorf("economy = %v, want 0 for an untimed phase", s.PhaseAvg[PhaseEconomy])
	}
	if s.MinTick > s.AvgTick || s.AvgTick > s.MaxTick {
		t.Errorf("min/avg/max out of order: %v %v %v", s.MinTick, s.AvgTick, s.MaxTick)
	}
}

func TestPerfCollectorRollingWindow(t *testing.T) {
	pc := NewPerfCollector(3)
	for i := 0; i < 10; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseHubs)
		pc.EndTick()
	}
	if pc.filled != 3 {
		t.Errorf("filled = %d, want 3", pc.filled)
	}
	if pc.next != 10%3 {
		t.Errorf("next = %d, want %d", pc.next, 10%3)
	}
}

func TestPerfCollectorEmpty(t *testing.T) {
	s := NewPerfCollector(0).Stats()
	if s.AvgTick != 0 || s.TicksPerSecond != 0 || s.FPS != 0 {
		t.Errorf("empty stats = %+v", s)
	}
}

func TestPerfCollectorNilIsNoOp(t *testing.T) {
	var pc *PerfCollector
	pc.StartTick()
	pc.StartPhase(PhaseEconomy)
	pc.EndTick()
	pc.RecordFrame()
}

func TestPhaseString(t *testing.T) {
	tests := []struct {
		p    Phase
		want string
	}{
		{PhaseGrid, "grid"},
		{PhaseRetire, "retire"},
		{PhaseContain, "contain"},
		{numPhases, "unknown"},
	}
	for _, tt := range tests {
		if got := tt.p.String(); got != tt.want {
			t.Errorf("Phase(%d) = %q, want %q", tt.p, got, tt.want)
		}
	}
}

func TestPerfStatsToCSV(t *testing.T) {
	var s PerfStats
	s.AvgTick = 1500 * time.Microsecond
	s.PhasePct[PhaseForage] = 60
	s.PhasePct[PhaseEconomy] = 25

	row := s.ToCSV(120)
	if row.WindowEnd != 120 || row.AvgTickUS != 1500 {
		t.Errorf("row = %+v", row)
	}
	if row.ForagePct != 60 || row.EconomyPct != 25 || row.HubsPct != 0 {
		t.Errorf("phase pct = %v/%v/%v", row.ForagePct, row.EconomyPct, row.HubsPct)
	}
}
