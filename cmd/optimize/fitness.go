package main

import (
	"math"
	"sync"

	"github.com/anka-dev/membrane/config"
	"github.com/anka-dev/membrane/game"
)

// FitnessEvaluator runs headless pour scenarios and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	maxTicks   int32
	seeds      []int64
	baseConfig *config.Config

	mu          sync.Mutex
	bestFitness float64
	lastQuality float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
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

const (
	// transferFraction of the population must be inside the destination for
	// the pour to count as complete.
	transferFraction = 0.9
	// censusInterval is how often (in ticks) a run is sampled.
	censusInterval = 30
	// settleWindow is how long a run continues after transfer completes, so
	// the settle and pressure quality terms measure the rested state.
	settleWindow = 600
)

// runResult holds the results from a single simulation run.
type runResult struct {
	transferTick int32 // tick when transferFraction arrived, or maxTicks
	transferred  bool
	final        game.Census
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness float64
	quality float64
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Transfer time dominates; quality adds up to a 20% discount so configs with
// similar pour speed are differentiated by how cleanly they settle.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	// All seeds share the same parameters, so install the config once
	// before the parallel launch.
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)
	config.Set(cfg)

	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			result := fe.runSimulation(s)
			quality := fe.computeQuality(result)
			results[idx] = seedResult{
				fitness: fe.computeFitness(result, quality),
				quality: quality,
			}
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalQuality float64
	for _, r := range results {
		totalFitness += r.fitness
		totalQuality += r.quality
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

// runSimulation executes a single headless pour from container 0 into 1.
// Runs until the transfer completes and settles, or maxTicks.
func (fe *FitnessEvaluator) runSimulation(seed int64) *runResult {
	g, err := game.NewGameWithOptions(game.Options{
		Seed:           seed,
		Headless:       true,
		StepsPerUpdate: censusInterval,
	})
	if err != nil {
		// A config that cannot build a game is maximally bad.
		return &runResult{transferTick: fe.maxTicks}
	}
	defer g.Unload()

	if err := g.Pour(0, 1); err != nil {
		return &runResult{transferTick: fe.maxTicks}
	}

	result := &runResult{transferTick: fe.maxTicks}
	var stopTick int32 = fe.maxTicks

	for g.Tick() < stopTick {
		g.UpdateHeadless()

		census := g.TakeCensus()
		if !result.transferred && census.Population > 0 {
			arrived := float64(census.InContainer[1]) / float64(census.Population)
			if arrived >= transferFraction {
				result.transferred = true
				result.transferTick = g.Tick()
				if end := g.Tick() + settleWindow; end < stopTick {
					stopTick = end
				}
			}
		}
		result.final = census
	}

	return result
}

// copyConfig creates a working copy of the base config.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	cfg.Containers = append([]config.ContainerConfig(nil), fe.baseConfig.Containers...)
	return &cfg
}

// Quality component weights.
const (
	qualityWeightSettled  = 0.5
	qualityWeightPressure = 0.5

	// pressureSpreadScale is the pressure stddev at which the pressure score
	// drops to 1/e. A well-packed population sits well under it.
	pressureSpreadScale = 0.25
)

// computeQuality scores the rested end state in [0, 1].
func (fe *FitnessEvaluator) computeQuality(r *runResult) float64 {
	if r.final.Population == 0 {
		return 0
	}

	settledScore := float64(r.final.Settled) / float64(r.final.Population)

	spread := r.final.PressureStdDev / pressureSpreadScale
	pressureScore := math.Exp(-spread * spread)

	return clamp01(qualityWeightSettled*settledScore + qualityWeightPressure*pressureScore)
}

// computeFitness calculates the scalar fitness (lower = better). A run that
// never completes the transfer scores 1.0 before the quality discount.
func (fe *FitnessEvaluator) computeFitness(r *runResult, quality float64) float64 {
	transfer := float64(r.transferTick) / float64(fe.maxTicks)
	return transfer * (1.0 - 0.2*quality)
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
