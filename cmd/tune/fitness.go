package main

import (
	"context"
	"errors"
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/nodlets/config"
	"github.com/pthm-cable/nodlets/session"
	"github.com/pthm-cable/nodlets/telemetry"
)

// FitnessEvaluator runs headless sessions and scores delivered throughput.
type FitnessEvaluator struct {
	params      *ParamVector
	maxTicks    int
	seeds       []int64
	baseConfig  *config.Config
	statsWindow float64

	mu          sync.Mutex
	lastQuality float64
	lastRate    float64
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		statsWindow: 5.0,
	}
}

// LastQuality returns the stability score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// LastRate returns the mean delivered amount per sim second from the most
// recent evaluation.
func (fe *FitnessEvaluator) LastRate() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastRate
}

// runResult holds the results from a single headless run.
type runResult struct {
	rate    float64 // ledger total per sim second
	windows []telemetry.WindowStats
	err     error
}

// Evaluate computes fitness for a raw parameter vector (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]runResult, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runSimulation(x, s)
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalQuality, totalRate float64
	for _, r := range results {
		if r.err != nil {
			// A run that cannot start scores as zero throughput.
			continue
		}
		q := computeQuality(r.windows)
		totalFitness += computeFitness(r.rate, q)
		totalQuality += q
		totalRate += r.rate
	}

	n := float64(len(fe.seeds))
	fe.mu.Lock()
	fe.lastQuality = totalQuality / n
	fe.lastRate = totalRate / n
	fe.mu.Unlock()

	return totalFitness / n
}

// runSimulation executes one headless session with x applied.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) runResult {
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, x)

	s, err := session.New(cfg, session.Options{
		Seed:           seed,
		StatsWindowSec: fe.statsWindow,
		StepsPerUpdate: 16,
	})
	if err != nil {
		return runResult{err: err}
	}

	var result runResult
	s.OnStats = func(w telemetry.WindowStats) {
		result.windows = append(result.windows, w)
	}
	err = s.Run(context.Background(), fe.maxTicks)

	w := s.World()
	if t := w.SimTime(); t > 0 {
		result.rate = w.Ledger().Total() / t
	}
	result.err = errors.Join(err, s.Close())
	return result
}

// computeFitness returns -(rate × (1 + 0.2 × quality)). Throughput
// dominates; quality separates configs with similar throughput.
func computeFitness(rate, quality float64) float64 {
	return -(rate * (1.0 + 0.2*quality))
}

const qualityWarmupWindows = 2

// computeQuality scores how steady per-window throughput is, in [0, 1].
func computeQuality(windows []telemetry.WindowStats) float64 {
	if len(windows) <= qualityWarmupWindows+1 {
		return 0
	}
	valid := windows[qualityWarmupWindows:]
	rates := make([]float64, len(valid))
	for i, w := range valid {
		rates[i] = w.Throughput
	}
	mean, std := stat.PopMeanStdDev(rates, nil)
	if mean <= 0 {
		return 0
	}
	cv := std / mean
	return math.Exp(-cv * cv)
}
