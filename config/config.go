// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen      ScreenConfig      `yaml:"screen"`
	World       WorldConfig       `yaml:"world"`
	Clock       ClockConfig       `yaml:"clock"`
	Spatial     SpatialConfig     `yaml:"spatial"`
	Capacity    CapacityConfig    `yaml:"capacity"`
	Hubs        HubsConfig        `yaml:"hubs"`
	Agent       AgentConfig       `yaml:"agent"`
	Forage      ForageConfig      `yaml:"forage"`
	Containment ContainmentConfig `yaml:"containment"`
	Economy     EconomyConfig     `yaml:"economy"`
	Progression ProgressionConfig `yaml:"progression"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// WorldConfig holds world dimensions and generation noise.
type WorldConfig struct {
	Width        float64 `yaml:"width"`
	Height       float64 `yaml:"height"`
	NoiseScale   float64 `yaml:"noise_scale"`   // Base frequency for generator placement
	NoiseOctaves int     `yaml:"noise_octaves"` // Fractal octaves
}

// ClockConfig holds fixed-timestep parameters.
type ClockConfig struct {
	DT            float64 `yaml:"dt"`
	MaxFrameDelta float64 `yaml:"max_frame_delta"`
}

// SpatialConfig holds grid cell sizes.
type SpatialConfig struct {
	AgentCellSize float64 `yaml:"agent_cell_size"`
	NodeCellSize  float64 `yaml:"node_cell_size"`
}

// CapacityConfig holds fixed store capacities.
type CapacityConfig struct {
	MaxAgents int `yaml:"max_agents"`
	MaxHubs   int `yaml:"max_hubs"`
	MaxNodes  int `yaml:"max_nodes"`
}

// HubsConfig holds collector parameters.
type HubsConfig struct {
	Size           float64      `yaml:"size"`
	BasePopulation int          `yaml:"base_population"`
	BaseInfluence  float64      `yaml:"base_influence"`
	SpawnPerTick   int          `yaml:"spawn_per_tick"`
	Positions      [][2]float64 `yaml:"positions"`
}

// AgentConfig holds nodlet spawn parameters.
type AgentConfig struct {
	MinSize        float64 `yaml:"min_size"`
	MaxSize        float64 `yaml:"max_size"`
	MinCapacity    float64 `yaml:"min_capacity"`
	MaxCapacity    float64 `yaml:"max_capacity"`
	SpawnVelocity  float64 `yaml:"spawn_velocity"`
	MinOrbitRadius float64 `yaml:"min_orbit_radius"`
	MaxOrbitRadius float64 `yaml:"max_orbit_radius"`
	Lifespan       float64 `yaml:"lifespan"`
	LifespanJitter float64 `yaml:"lifespan_jitter"`
	MaxSpeed       float64 `yaml:"max_speed"`
}

// ForageConfig holds the foraging state machine parameters.
type ForageConfig struct {
	SeekSpeed         float64 `yaml:"seek_speed"`
	SteerRate         float64 `yaml:"steer_rate"`
	OrbitThreshold    float64 `yaml:"orbit_threshold"`
	HarvestFactor     float64 `yaml:"harvest_factor"`
	OrbitForce        float64 `yaml:"orbit_force"`
	OrbitCorrection   float64 `yaml:"orbit_correction"`
	OrbitDamping      float64 `yaml:"orbit_damping"`
	DockDamping       float64 `yaml:"dock_damping"`
	BiteRate          float64 `yaml:"bite_rate"`
	CaptureRadius     float64 `yaml:"capture_radius"`
	ReturnSpeed       float64 `yaml:"return_speed"`
	WanderMinSpeed    float64 `yaml:"wander_min_speed"`
	WanderMaxSpeed    float64 `yaml:"wander_max_speed"`
	WanderMinInterval float64 `yaml:"wander_min_interval"`
	WanderMaxInterval float64 `yaml:"wander_max_interval"`
}

// ContainmentConfig holds influence clamp parameters.
type ContainmentConfig struct {
	Restitution float64 `yaml:"restitution"` // Fraction of radial speed kept on reflection
}

// EconomyConfig holds server and packet parameters.
type EconomyConfig struct {
	Generators         int     `yaml:"generators"`
	RelaysPerGenerator int     `yaml:"relays_per_generator"`
	RelaySpread        float64 `yaml:"relay_spread"`
	GeneratorAmount    float64 `yaml:"generator_amount"`
	GeneratorRegen     float64 `yaml:"generator_regen"`
	RelayAmount        float64 `yaml:"relay_amount"`
	RelayRegen         float64 `yaml:"relay_regen"`
	EmitInterval       float64 `yaml:"emit_interval"`
	LinkRange          float64 `yaml:"link_range"`
	PacketPayload      float64 `yaml:"packet_payload"`
	PacketSpeed        float64 `yaml:"packet_speed"`
	ArrivalRadius      float64 `yaml:"arrival_radius"`
	DeliveryRadius     float64 `yaml:"delivery_radius"`
	CacheMax           float64 `yaml:"cache_max"`
}

// ProgressionConfig holds milestone parameters.
type ProgressionConfig struct {
	FirstMilestone      float64 `yaml:"first_milestone"`
	MilestoneMultiplier float64 `yaml:"milestone_multiplier"`
	Choices             int     `yaml:"choices"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32      float32 // Clock.DT as float32
	WorldW32  float32
	WorldH32  float32
	ScreenW32 float32
	ScreenH32 float32
}

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// validate rejects values the simulation cannot run with.
func (c *Config) validate() error {
	switch {
	case c.Clock.DT <= 0:
		return fmt.Errorf("clock.dt must be positive, got %v", c.Clock.DT)
	case c.World.Width <= 0 || c.World.Height <= 0:
		return fmt.Errorf("world size must be positive, got %vx%v", c.World.Width, c.World.Height)
	case c.Capacity.MaxAgents < 0 || c.Capacity.MaxHubs < 0 || c.Capacity.MaxNodes < 0:
		return fmt.Errorf("capacities must not be negative")
	case c.Agent.MaxCapacity < c.Agent.MinCapacity:
		return fmt.Errorf("agent.max_capacity %v below min_capacity %v", c.Agent.MaxCapacity, c.Agent.MinCapacity)
	case c.Progression.MilestoneMultiplier <= 1:
		return fmt.Errorf("progression.milestone_multiplier must exceed 1, got %v", c.Progression.MilestoneMultiplier)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.Clock.DT)
	c.Derived.WorldW32 = float32(c.World.Width)
	c.Derived.WorldH32 = float32(c.World.Height)
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)

	if c.Clock.MaxFrameDelta < c.Clock.DT {
		c.Clock.MaxFrameDelta = c.Clock.DT
	}
	if c.Hubs.SpawnPerTick < 1 {
		c.Hubs.SpawnPerTick = 1
	}
	if c.Progression.Choices < 1 {
		c.Progression.Choices = 3
	}
}

// Clone returns a deep copy suitable for per-run mutation.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Hubs.Positions = append([][2]float64(nil), c.Hubs.Positions...)
	return &cp
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
