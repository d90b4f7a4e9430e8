package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/nodlets/config"
	"github.com/pthm-cable/nodlets/telemetry"
)

func TestNormalizeRoundTrip(t *testing.T) {
	pv := NewParamVector()
	raw := pv.ExtractFromConfig(config.Default())
	back := pv.Denormalize(pv.Normalize(raw))
	for i := range raw {
		if math.Abs(raw[i]-back[i]) > 1e-9 {
			t.Errorf("%s: %v -> %v", pv.Specs[i].Name, raw[i], back[i])
		}
	}
}

func TestDefaultsWithinBounds(t *testing.T) {
	pv := NewParamVector()
	for i, v := range pv.ExtractFromConfig(config.Default()) {
		s := pv.Specs[i]
		if v < s.Min || v > s.Max {
			t.Errorf("%s default %v outside [%v, %v]", s.Path, v, s.Min, s.Max)
		}
	}
}

func TestApplyToConfigClamps(t *testing.T) {
	pv := NewParamVector()
	cfg := config.Default()
	values := make([]float64, pv.Dim())
	for i := range values {
		values[i] = 1e9
	}
	pv.ApplyToConfig(cfg, values)

	if cfg.Forage.SeekSpeed != 240 {
		t.Errorf("seek_speed = %v, want clamp to 240", cfg.Forage.SeekSpeed)
	}
	if cfg.Forage.ReturnSpeed != 260 {
		t.Errorf("return_speed = %v, want clamp to 260", cfg.Forage.ReturnSpeed)
	}
}

func TestComputeQuality(t *testing.T) {
	steady := make([]telemetry.WindowStats, 6)
	for i := range steady {
		steady[i].Throughput = 50
	}
	if q := computeQuality(steady); math.Abs(q-1) > 1e-9 {
		t.Errorf("steady quality = %v, want 1", q)
	}

	noisy := make([]telemetry.WindowStats, 6)
	for i := range noisy {
		noisy[i].Throughput = float64(i%2) * 100
	}
	if q := computeQuality(noisy); q >= 0.5 {
		t.Errorf("noisy quality = %v, want < 0.5", q)
	}

	if q := computeQuality(steady[:2]); q != 0 {
		t.Errorf("short run quality = %v, want 0", q)
	}
}

func TestComputeFitnessPrefersThroughput(t *testing.T) {
	if computeFitness(10, 1) >= computeFitness(5, 1) {
		t.Error("higher rate should score lower fitness")
	}
	if computeFitness(10, 1) >= computeFitness(10, 0) {
		t.Error("higher quality should score lower fitness")
	}
}
