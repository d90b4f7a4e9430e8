package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Capacity.MaxAgents != 1000 {
		t.Errorf("max_agents = %d, want 1000", cfg.Capacity.MaxAgents)
	}
	if cfg.Clock.MaxFrameDelta != 0.1 {
		t.Errorf("max_frame_delta = %v, want 0.1", cfg.Clock.MaxFrameDelta)
	}
	if len(cfg.Hubs.Positions) != 2 {
		t.Errorf("hub positions = %d, want 2", len(cfg.Hubs.Positions))
	}
	if cfg.Derived.DT32 <= 0 {
		t.Error("derived DT32 not computed")
	}
	if cfg.Derived.WorldW32 != float32(cfg.World.Width) {
		t.Errorf("WorldW32 = %v, want %v", cfg.Derived.WorldW32, cfg.World.Width)
	}
}

func TestLoadOverridesOnlyPresentFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "override.yaml")
	data := []byte("forage:\n  bite_rate: 40\nhubs:\n  positions:\n    - [100, 200]\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Forage.BiteRate != 40 {
		t.Errorf("bite_rate = %v, want 40", cfg.Forage.BiteRate)
	}
	if cfg.Forage.SeekSpeed != 120 {
		t.Errorf("seek_speed = %v, want default 120", cfg.Forage.SeekSpeed)
	}
	if len(cfg.Hubs.Positions) != 1 || cfg.Hubs.Positions[0] != [2]float64{100, 200} {
		t.Errorf("positions = %v", cfg.Hubs.Positions)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(path, []byte("clock:\n  dt: -1\n"), 0644)
	if _, err := Load(path); err == nil {
		t.Error("expected validation error for negative dt")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Forage.OrbitForce = 321

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}

	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if back.Forage.OrbitForce != 321 {
		t.Errorf("orbit_force = %v, want 321", back.Forage.OrbitForce)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	cfg := Default()
	cp := cfg.Clone()
	cp.Hubs.Positions[0][0] = -1
	cp.Forage.BiteRate = 1

	if cfg.Hubs.Positions[0][0] == -1 || cfg.Forage.BiteRate == 1 {
		t.Error("clone shares state with original")
	}
}
