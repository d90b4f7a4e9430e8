package main

import (
	"github.com/pthm-cable/nodlets/config"
)

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name  string  // Human-readable name
	Path  string  // Config path for logging
	Min   float64 // Lower bound
	Max   float64 // Upper bound
	Field func(*config.Config) *float64
}

// ParamVector holds the set of tunable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the forage parameter set.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "seek_speed", Path: "forage.seek_speed", Min: 60, Max: 240,
				Field: func(c *config.Config) *float64 { return &c.Forage.SeekSpeed }},
			{Name: "steer_rate", Path: "forage.steer_rate", Min: 1, Max: 12,
				Field: func(c *config.Config) *float64 { return &c.Forage.SteerRate }},
			{Name: "orbit_threshold", Path: "forage.orbit_threshold", Min: 1.2, Max: 5,
				Field: func(c *config.Config) *float64 { return &c.Forage.OrbitThreshold }},
			{Name: "harvest_factor", Path: "forage.harvest_factor", Min: 1, Max: 2,
				Field: func(c *config.Config) *float64 { return &c.Forage.HarvestFactor }},
			{Name: "orbit_force", Path: "forage.orbit_force", Min: 50, Max: 500,
				Field: func(c *config.Config) *float64 { return &c.Forage.OrbitForce }},
			{Name: "orbit_correction", Path: "forage.orbit_correction", Min: 1, Max: 15,
				Field: func(c *config.Config) *float64 { return &c.Forage.OrbitCorrection }},
			{Name: "orbit_damping", Path: "forage.orbit_damping", Min: 0.5, Max: 6,
				Field: func(c *config.Config) *float64 { return &c.Forage.OrbitDamping }},
			{Name: "dock_damping", Path: "forage.dock_damping", Min: 2, Max: 20,
				Field: func(c *config.Config) *float64 { return &c.Forage.DockDamping }},
			{Name: "capture_radius", Path: "forage.capture_radius", Min: 5, Max: 60,
				Field: func(c *config.Config) *float64 { return &c.Forage.CaptureRadius }},
			{Name: "return_speed", Path: "forage.return_speed", Min: 60, Max: 260,
				Field: func(c *config.Config) *float64 { return &c.Forage.ReturnSpeed }},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig writes clamped parameter values into cfg.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	for i, v := range pv.Clamp(values) {
		*pv.Specs[i].Field(cfg) = v
	}
}

// ExtractFromConfig reads the current parameter values from cfg.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = *spec.Field(cfg)
	}
	return v
}
