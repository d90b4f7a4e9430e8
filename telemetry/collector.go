package telemetry

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float32

	// Current window tracking
	windowStartTick int32

	// Event counters for current window
	spawns     int
	deaths     int
	deposits   int
	deliveries int
	emits      int
	drops      int
	leaks      int
	milestones int
	unlocks    int

	deposited   float64
	delivered   float64
	overflow    float64
	harvested   float64
	intercepted float64
	clamped     int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec float64, dt float32) *Collector {
	ticksPerWindow := int32(windowDurationSec / float64(dt))
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// Record folds one event into the current window.
func (c *Collector) Record(e Event) {
	switch e.Type {
	case EventSpawn:
		c.spawns++
	case EventDeath:
		c.deaths++
	case EventDeposit:
		c.deposits++
		c.deposited += float64(e.Amount)
	case EventDelivery:
		c.deliveries++
		c.delivered += float64(e.Amount)
	case EventPacketOverflow:
		c.overflow += float64(e.Amount)
	case EventEmit:
		c.emits += int(e.Amount) // one event per tick, Amount is the packet count
	case EventDrop:
		c.drops++
	case EventLeak:
		c.leaks++
	case EventMilestone:
		c.milestones++
	case EventUnlock:
		c.unlocks++
	}
}

// RecordFlow adds per-tick flows that are not reported as discrete events.
func (c *Collector) RecordFlow(harvested, intercepted float32, clamped int) {
	c.harvested += float64(harvested)
	c.intercepted += float64(intercepted)
	c.clamped += clamped
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Snapshot holds end-of-window state sampled by the caller.
type Snapshot struct {
	Agents        int
	Hubs          int
	Servers       int
	Packets       int
	Carried       []float64 // per-agent cargo
	HubDeposits   []float64 // per-hub totals
	ServerStock   float64
	PacketStock   float64
	LedgerTotal   float64
	LedgerPoints  int
	UnlockedPerks int
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int32, snap Snapshot) WindowStats {
	elapsed := float64(currentTick-c.windowStartTick) * float64(c.dt)
	var throughput float64
	if elapsed > 0 {
		throughput = c.deposited / elapsed
	}

	carriedMean, carriedStd := MeanStd(snap.Carried)
	carried := sortedCopy(snap.Carried)
	_, depositStd := MeanStd(snap.HubDeposits)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * float64(c.dt),

		Agents:  snap.Agents,
		Hubs:    snap.Hubs,
		Servers: snap.Servers,
		Packets: snap.Packets,

		Spawns:     c.spawns,
		Deaths:     c.deaths,
		Deposits:   c.deposits,
		Deliveries: c.deliveries,
		Emits:      c.emits,
		Drops:      c.drops,
		Leaks:      c.leaks,
		Milestones: c.milestones,
		Unlocks:    c.unlocks,
		Clamped:    c.clamped,

		Deposited:      c.deposited,
		Harvested:      c.harvested,
		Intercepted:    c.intercepted,
		Delivered:      c.delivered,
		PacketOverflow: c.overflow,
		Throughput:     throughput,

		CarriedMean: carriedMean,
		CarriedStd:  carriedStd,
		CarriedP10:  Percentile(carried, 0.10),
		CarriedP50:  Percentile(carried, 0.50),
		CarriedP90:  Percentile(carried, 0.90),

		HubDepositStd: depositStd,
		ServerStock:   snap.ServerStock,
		PacketStock:   snap.PacketStock,
		LedgerTotal:   snap.LedgerTotal,
		LedgerPoints:  snap.LedgerPoints,
		UnlockedPerks: snap.UnlockedPerks,
	}

	// Reset for next window
	*c = Collector{
		windowDurationSec:   c.windowDurationSec,
		windowDurationTicks: c.windowDurationTicks,
		dt:                  c.dt,
		windowStartTick:     currentTick,
	}

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
