package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Population counts at window end
	Agents  int `csv:"agents"`
	Hubs    int `csv:"hubs"`
	Servers int `csv:"servers"`
	Packets int `csv:"packets"`

	// Events during window
	Spawns     int `csv:"spawns"`
	Deaths     int `csv:"deaths"`
	Deposits   int `csv:"deposits"`
	Deliveries int `csv:"deliveries"`
	Emits      int `csv:"emits"`
	Drops      int `csv:"drops"`
	Leaks      int `csv:"leaks"`
	Milestones int `csv:"milestones"`
	Unlocks    int `csv:"unlocks"`
	Clamped    int `csv:"clamped"`

	// Resource flows during window
	Deposited      float64 `csv:"deposited"`
	Harvested      float64 `csv:"harvested"`
	Intercepted    float64 `csv:"intercepted"`
	Delivered      float64 `csv:"delivered"`
	PacketOverflow float64 `csv:"packet_overflow"`
	Throughput     float64 `csv:"throughput"` // deposited per sim second

	// Cargo distribution (sampled at window end)
	CarriedMean float64 `csv:"carried_mean"`
	CarriedStd  float64 `csv:"carried_std"`
	CarriedP10  float64 `csv:"carried_p10"`
	CarriedP50  float64 `csv:"carried_p50"`
	CarriedP90  float64 `csv:"carried_p90"`

	// Stocks (for conservation checks)
	HubDepositStd float64 `csv:"hub_deposit_std"`
	ServerStock   float64 `csv:"server_stock"`
	PacketStock   float64 `csv:"packet_stock"`
	LedgerTotal   float64 `csv:"ledger_total"`
	LedgerPoints  int     `csv:"ledger_points"`
	UnlockedPerks int     `csv:"unlocked_perks"`
}

// Percentile returns the p-th quantile of a sorted slice, interpolating
// the empirical CDF. p is clamped to [0, 1]. Returns 0 if the slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	return stat.Quantile(min(max(p, 0), 1), stat.LinInterp, sorted, nil)
}

// MeanStd returns the mean and population standard deviation of values.
func MeanStd(values []float64) (mean, std float64) {
	switch len(values) {
	case 0:
		return 0, 0
	case 1:
		return values[0], 0
	}
	mean = stat.Mean(values, nil)
	std = stat.PopStdDev(values, nil)
	return mean, std
}

func sortedCopy(values []float64) []float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return sorted
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("agents", s.Agents),
		slog.Int("servers", s.Servers),
		slog.Int("packets", s.Packets),
		slog.Int("spawns", s.Spawns),
		slog.Int("deaths", s.Deaths),
		slog.Int("deposits", s.Deposits),
		slog.Float64("deposited", s.Deposited),
		slog.Float64("throughput", s.Throughput),
		slog.Float64("packet_overflow", s.PacketOverflow),
		slog.Float64("carried_mean", s.CarriedMean),
		slog.Float64("ledger_total", s.LedgerTotal),
		slog.Int("ledger_points", s.LedgerPoints),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}
