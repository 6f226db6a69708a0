package main

import (
	"math"
	"sync"

	"github.com/tetch/pond/config"
	"github.com/tetch/pond/telemetry"
	"github.com/tetch/pond/world"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	maxTicks   int64
	seeds      []int64
	baseConfig *config.Config

	mu          sync.Mutex
	bestFitness float64
	lastQuality float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int64, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		bestFitness: math.Inf(1),
	}
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// Minimum viable population: below this for extinctionGraceSec consecutive
// sim-seconds counts as functional extinction.
const (
	minViablePop       = 3
	extinctionGraceSec = 30.0
)

// runResult holds the results from a single simulation run.
type runResult struct {
	survivalTicks int64 // ticks before extinction (or maxTicks if survived)
	windowStats   []telemetry.WindowStats
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Fitness is negative survival ticks scaled by ecosystem quality: longer,
// healthier runs score lower.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]*runResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runSimulation(x, s)
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalQuality float64
	for _, r := range results {
		totalFitness += fe.computeFitness(r)
		totalQuality += fe.computeQuality(r.windowStats)
	}

	n := float64(len(fe.seeds))
	avgFitness := totalFitness / n

	fe.mu.Lock()
	if avgFitness < fe.bestFitness {
		fe.bestFitness = avgFitness
	}
	fe.lastQuality = totalQuality / n
	fe.mu.Unlock()

	return avgFitness
}

// runSimulation executes a single headless run until functional extinction
// or maxTicks, whichever comes first.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) *runResult {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)
	cfg.Seed = seed

	result := &runResult{}
	w, err := world.New(cfg)
	if err != nil {
		// An invalid parameter combination is simply a terrible candidate
		return result
	}
	defer w.Close()

	dt := cfg.Physics.DT
	collector := w.Collector()

	// Let the population establish before checking viability
	warmupTicks := int64(5.0 / dt)
	graceTicks := int64(extinctionGraceSec / dt)
	var belowTicks int64

	for w.Tick() < fe.maxTicks {
		w.Step(dt)
		snap := w.Snapshot()

		if collector.ShouldFlush(snap.Env.Time) {
			result.windowStats = append(result.windowStats, collector.Flush(w.Tick(), snap.Env.Time, snap))
		}

		if w.Tick() < warmupTicks {
			continue
		}

		pop := w.Population()
		if pop == 0 {
			result.survivalTicks = w.Tick()
			return result
		}
		if pop < minViablePop {
			belowTicks++
		} else {
			belowTicks = 0
		}
		if belowTicks >= graceTicks {
			result.survivalTicks = w.Tick()
			return result
		}
	}

	result.survivalTicks = fe.maxTicks
	return result
}

// copyConfig creates an independent copy of the base config. The config
// holds only value-typed sections, so a struct copy suffices.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	dup := *fe.baseConfig
	return &dup
}

// computeFitness calculates the scalar fitness (lower = better).
// Formula: -(survivalTicks × (1.0 + 0.2 × quality)). Survival dominates;
// quality adds up to 20% bonus to differentiate configs with similar
// survival.
func (fe *FitnessEvaluator) computeFitness(r *runResult) float64 {
	survival := float64(r.survivalTicks)
	quality := fe.computeQuality(r.windowStats)
	return -(survival * (1.0 + 0.2*quality))
}

// Quality component weights.
const (
	qualityWeightSize      = 0.30
	qualityWeightStability = 0.25
	qualityWeightEnergy    = 0.25
	qualityWeightTurnover  = 0.20

	qualityWarmupWindows = 3 // skip first N windows (warmup)
)

// computeQuality computes ecosystem quality in [0, 1] from window stats.
func (fe *FitnessEvaluator) computeQuality(windows []telemetry.WindowStats) float64 {
	if len(windows) <= qualityWarmupWindows {
		return 0
	}
	valid := windows[qualityWarmupWindows:]

	target := float64(fe.baseConfig.Population.TargetPop)
	energyMax := fe.baseConfig.Energy.Max

	var sizeSum, energySum, turnoverSum float64
	var count int
	pops := make([]float64, 0, len(valid))

	for _, w := range valid {
		if w.Population < minViablePop {
			continue
		}
		pops = append(pops, float64(w.Population))

		// 1. Population size score: log-distance from the soft target
		logErr := math.Log(float64(w.Population) / target)
		sizeSum += math.Exp(-logErr * logErr)

		// 2. Energy health score: median near half the reserve is healthy
		frac := w.EnergyP50 / energyMax
		energySum += math.Exp(-math.Pow((frac-0.5)/0.25, 2))

		// 3. Turnover score: a living ecosystem keeps breeding
		birthRate := float64(w.Births) / math.Max(float64(w.Population), 1)
		turnoverSum += 1.0 - math.Exp(-birthRate/0.05)

		count++
	}

	if count == 0 {
		return 0
	}

	sizeScore := sizeSum / float64(count)
	energyScore := energySum / float64(count)
	turnoverScore := turnoverSum / float64(count)

	// Population stability (CV across all valid windows)
	stabilityScore := 0.0
	if len(pops) >= 2 {
		c := cv(pops)
		stabilityScore = math.Exp(-c * c)
	}

	quality := qualityWeightSize*sizeScore +
		qualityWeightStability*stabilityScore +
		qualityWeightEnergy*energyScore +
		qualityWeightTurnover*turnoverScore

	return clamp01(quality)
}

// cv computes the coefficient of variation (std/mean) for a slice of values.
func cv(values []float64) float64 {
	n := float64(len(values))
	if n == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / n
	if mean == 0 {
		return 0
	}
	var sqDiff float64
	for _, v := range values {
		d := v - mean
		sqDiff += d * d
	}
	return math.Sqrt(sqDiff/n) / mean
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
