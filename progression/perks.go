// Package progression converts delivered resource into points that unlock
// global simulation multipliers.
package progression

// PerkID names one upgrade in the catalog.
type PerkID string

const (
	Overclock     PerkID = "overclock"
	FluxCapacitor PerkID = "flux_capacitor"
	ExpandedCargo PerkID = "expanded_cargo"
	SwarmProtocol PerkID = "swarm_protocol"
	WideBeacon    PerkID = "wide_beacon"
	DeepDrill     PerkID = "deep_drill"
	DataLeak      PerkID = "data_leak"
)

// Perks is the multiplier record the simulation reads by value each tick.
type Perks struct {
	SpeedMult      float32 // agent seek/return speed
	CargoMult      float32 // max carry for newly spawned agents
	BiteMult       float32 // harvest rate
	RegenMult      float32 // server regeneration
	CapacityBonus  int32   // added to every hub's target population
	InfluenceBonus float32 // added to every hub's influence radius
	LeakChance     float32 // per-tick chance of a spontaneous cache
}

// BasePerks returns the record with no upgrades applied.
func BasePerks() Perks {
	return Perks{
		SpeedMult: 1,
		CargoMult: 1,
		BiteMult:  1,
		RegenMult: 1,
	}
}

// Perk is one entry of the upgrade tree.
type Perk struct {
	ID          PerkID
	Name        string
	Description string
	Requires    PerkID // empty for roots
	apply       func(*Perks)
}

// Catalog lists every perk in display order. Requirements always point at
// an earlier entry.
var Catalog = []Perk{
	{
		ID: Overclock, Name: "Overclock",
		Description: "Nodlets move 25% faster.",
		apply:       func(p *Perks) { p.SpeedMult *= 1.25 },
	},
	{
		ID: FluxCapacitor, Name: "Flux Capacitor",
		Description: "Servers regenerate 20% faster.",
		apply:       func(p *Perks) { p.RegenMult *= 1.2 },
	},
	{
		ID: ExpandedCargo, Name: "Expanded Cargo",
		Description: "New nodlets carry 20% more.",
		apply:       func(p *Perks) { p.CargoMult *= 1.2 },
	},
	{
		ID: SwarmProtocol, Name: "Swarm Protocol",
		Description: "Hubs sustain 5 more nodlets.",
		Requires:    Overclock,
		apply:       func(p *Perks) { p.CapacityBonus += 5 },
	},
	{
		ID: WideBeacon, Name: "Wide Beacon",
		Description: "Hub influence grows by 150.",
		Requires:    FluxCapacitor,
		apply:       func(p *Perks) { p.InfluenceBonus += 150 },
	},
	{
		ID: DeepDrill, Name: "Deep Drill",
		Description: "Harvest 50% faster.",
		Requires:    ExpandedCargo,
		apply:       func(p *Perks) { p.BiteMult *= 1.5 },
	},
	{
		ID: DataLeak, Name: "Data Leak",
		Description: "0.1% chance per tick for a spontaneous data cache.",
		Requires:    WideBeacon,
		apply:       func(p *Perks) { p.LeakChance += 0.001 },
	},
}

// Lookup finds a perk by id.
func Lookup(id PerkID) (Perk, bool) {
	for _, p := range Catalog {
		if p.ID == id {
			return p, true
		}
	}
	return Perk{}, false
}
