package systems

import "github.com/pthm-cable/nodlets/config"

// ForageParams holds the agent behavior constants in hot-path form.
type ForageParams struct {
	SeekSpeed         float32
	SteerRate         float32
	OrbitThreshold    float32
	HarvestFactor     float32
	OrbitForce        float32
	OrbitCorrection   float32
	OrbitDamping      float32
	DockDamping       float32
	BiteRate          float32
	CaptureRadius     float32
	ReturnSpeed       float32
	WanderMinSpeed    float32
	WanderMaxSpeed    float32
	WanderMinInterval float32
	WanderMaxInterval float32
	MaxSpeed          float32
}

// EconomyParams holds server and packet constants.
type EconomyParams struct {
	EmitInterval   float32
	LinkRange      float32
	PacketPayload  float32
	PacketSpeed    float32
	ArrivalRadius  float32
	DeliveryRadius float32
	CacheMax       float32
}

// SpawnParams describes newly spawned agents.
type SpawnParams struct {
	MinSize, MaxSize               float32
	MinCapacity, MaxCapacity       float32
	SpawnVelocity                  float32
	MinOrbitRadius, MaxOrbitRadius float32
	Lifespan, LifespanJitter       float32
	SpawnPerTick                   int
}

// ForageParamsFrom extracts forage parameters from config.
func ForageParamsFrom(cfg *config.Config) ForageParams {
	f := cfg.Forage
	return ForageParams{
		SeekSpeed:         float32(f.SeekSpeed),
		SteerRate:         float32(f.SteerRate),
		OrbitThreshold:    float32(f.OrbitThreshold),
		HarvestFactor:     float32(f.HarvestFactor),
		OrbitForce:        float32(f.OrbitForce),
		OrbitCorrection:   float32(f.OrbitCorrection),
		OrbitDamping:      float32(f.OrbitDamping),
		DockDamping:       float32(f.DockDamping),
		BiteRate:          float32(f.BiteRate),
		CaptureRadius:     float32(f.CaptureRadius),
		ReturnSpeed:       float32(f.ReturnSpeed),
		WanderMinSpeed:    float32(f.WanderMinSpeed),
		WanderMaxSpeed:    float32(f.WanderMaxSpeed),
		WanderMinInterval: float32(f.WanderMinInterval),
		WanderMaxInterval: float32(f.WanderMaxInterval),
		MaxSpeed:          float32(cfg.Agent.MaxSpeed),
	}
}

// EconomyParamsFrom extracts economy parameters from config.
func EconomyParamsFrom(cfg *config.Config) EconomyParams {
	e := cfg.Economy
	return EconomyParams{
		EmitInterval:   float32(e.EmitInterval),
		LinkRange:      float32(e.LinkRange),
		PacketPayload:  float32(e.PacketPayload),
		PacketSpeed:    float32(e.PacketSpeed),
		ArrivalRadius:  float32(e.ArrivalRadius),
		DeliveryRadius: float32(e.DeliveryRadius),
		CacheMax:       float32(e.CacheMax),
	}
}

// SpawnParamsFrom extracts agent spawn parameters from config.
func SpawnParamsFrom(cfg *config.Config) SpawnParams {
	a := cfg.Agent
	return SpawnParams{
		MinSize:        float32(a.MinSize),
		MaxSize:        float32(a.MaxSize),
		MinCapacity:    float32(a.MinCapacity),
		MaxCapacity:    float32(a.MaxCapacity),
		SpawnVelocity:  float32(a.SpawnVelocity),
		MinOrbitRadius: float32(a.MinOrbitRadius),
		MaxOrbitRadius: float32(a.MaxOrbitRadius),
		Lifespan:       float32(a.Lifespan),
		LifespanJitter: float32(a.LifespanJitter),
		SpawnPerTick:   cfg.Hubs.SpawnPerTick,
	}
}
