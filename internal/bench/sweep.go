// Package bench runs batches of simulations across colony sizes and seeds
// and aggregates how long each colony takes to clear the world.
package bench

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"myrmex/internal/sim"
	"myrmex/internal/stats"
)

// SweepConfig describes one sweep: the base world, the ant counts to try,
// and the seeds each count is repeated with.
type SweepConfig struct {
	// Base supplies everything but AntCount, Seed, and Workers, which the
	// sweep overrides per run.
	Base sim.Config

	AntCounts []int
	Seeds     []int64

	// MaxGenerations aborts runs that never settle. Zero means the engine
	// default ceiling.
	MaxGenerations uint64

	// Workers bounds how many runs execute concurrently. Runs themselves
	// are single-worker so the pool is the only parallelism.
	Workers int

	// OnResult observes each finished cell as it completes. It may be
	// called from several worker goroutines at once.
	OnResult func(RunResult)
}

type RunResult struct {
	Ants        int    `json:"ants"`
	Seed        int64  `json:"seed"`
	Generations uint64 `json:"generations"`
	Delivered   int    `json:"delivered"`
	Terminated  bool   `json:"terminated"`
}

// GroupSummary aggregates every seed run at one ant count.
type GroupSummary struct {
	Ants        int                 `json:"ants"`
	Runs        int                 `json:"runs"`
	Terminated  int                 `json:"terminated"`
	Generations stats.SeriesSummary `json:"generations"`
}

// SpeedupFactor compares the mean settle times of two consecutive colony
// sizes. Factor above 1 means the larger colony cleared the world faster.
type SpeedupFactor struct {
	FromAnts int     `json:"from_ants"`
	ToAnts   int     `json:"to_ants"`
	Factor   float64 `json:"factor"`
}

type SweepReport struct {
	MaxGenerations uint64          `json:"max_generations"`
	Results        []RunResult     `json:"results"`
	Groups         []GroupSummary  `json:"groups"`
	Speedups       []SpeedupFactor `json:"speedups,omitempty"`
}

// RunSweep executes every ant-count x seed combination and aggregates the
// outcomes. Results are deterministic for a given config regardless of
// Workers.
func RunSweep(ctx context.Context, cfg SweepConfig) (SweepReport, error) {
	if len(cfg.AntCounts) == 0 {
		return SweepReport{}, fmt.Errorf("ant counts must not be empty")
	}
	if len(cfg.Seeds) == 0 {
		return SweepReport{}, fmt.Errorf("seeds must not be empty")
	}
	maxGenerations := cfg.MaxGenerations
	if maxGenerations == 0 {
		maxGenerations = sim.DefaultGenerationCeiling
	}

	type job struct {
		idx  int
		ants int
		seed int64
	}
	type result struct {
		idx int
		res RunResult
		err error
	}

	pairs := make([]job, 0, len(cfg.AntCounts)*len(cfg.Seeds))
	for _, ants := range cfg.AntCounts {
		for _, seed := range cfg.Seeds {
			pairs = append(pairs, job{idx: len(pairs), ants: ants, seed: seed})
		}
	}

	jobs := make(chan job)
	results := make(chan result, len(pairs))

	workerCount := cfg.Workers
	if workerCount <= 0 {
		workerCount = runtime.GOMAXPROCS(0)
	}
	if workerCount > len(pairs) {
		workerCount = len(pairs)
	}

	var wg sync.WaitGroup
	wg.Add(workerCount)
	for w := 0; w < workerCount; w++ {
		go func() {
			defer wg.Done()
			for j := range jobs {
				if err := ctx.Err(); err != nil {
					results <- result{idx: j.idx, err: err}
					continue
				}
				res, err := runOne(ctx, cfg.Base, j.ants, j.seed, maxGenerations)
				if err != nil {
					results <- result{idx: j.idx, err: err}
					continue
				}
				if cfg.OnResult != nil {
					cfg.OnResult(res)
				}
				results <- result{idx: j.idx, res: res}
			}
		}()
	}

	for _, p := range pairs {
		jobs <- p
	}
	close(jobs)

	wg.Wait()
	close(results)

	runs := make([]RunResult, len(pairs))
	for res := range results {
		if res.err != nil {
			return SweepReport{}, res.err
		}
		runs[res.idx] = res.res
	}

	groups := GroupRuns(cfg.AntCounts, runs)
	return SweepReport{
		MaxGenerations: maxGenerations,
		Results:        runs,
		Groups:         groups,
		Speedups:       Speedups(groups),
	}, nil
}

func runOne(ctx context.Context, base sim.Config, ants int, seed int64, maxGenerations uint64) (RunResult, error) {
	cfg := base
	cfg.AntCount = ants
	cfg.Seed = seed
	cfg.Workers = 1

	s, err := sim.New(cfg)
	if err != nil {
		return RunResult{}, fmt.Errorf("ants=%d seed=%d: %w", ants, seed, err)
	}
	for !s.IsOver() && s.Generation() < maxGenerations {
		if _, err := s.NextGen(ctx); err != nil {
			return RunResult{}, fmt.Errorf("ants=%d seed=%d: %w", ants, seed, err)
		}
	}

	return RunResult{
		Ants:        ants,
		Seed:        seed,
		Generations: s.Generation(),
		Delivered:   s.Diagnostics().Delivered,
		Terminated:  s.IsOver(),
	}, nil
}

// GroupRuns aggregates run results per ant count, preserving the order ant
// counts were requested in. Duplicate counts fold into one group.
func GroupRuns(antCounts []int, runs []RunResult) []GroupSummary {
	seen := make(map[int]bool, len(antCounts))
	groups := make([]GroupSummary, 0, len(antCounts))
	for _, ants := range antCounts {
		if seen[ants] {
			continue
		}
		seen[ants] = true

		generations := make([]float64, 0, len(runs))
		terminated := 0
		for _, run := range runs {
			if run.Ants != ants {
				continue
			}
			generations = append(generations, float64(run.Generations))
			if run.Terminated {
				terminated++
			}
		}
		groups = append(groups, GroupSummary{
			Ants:        ants,
			Runs:        len(generations),
			Terminated:  terminated,
			Generations: stats.Summarize(generations),
		})
	}
	return groups
}

// Speedups ratios the mean settle time of each group against the next one.
// Groups that never ran produce no factor.
func Speedups(groups []GroupSummary) []SpeedupFactor {
	var factors []SpeedupFactor
	for i := 1; i < len(groups); i++ {
		prev, next := groups[i-1], groups[i]
		if next.Generations.Mean == 0 {
			continue
		}
		factors = append(factors, SpeedupFactor{
			FromAnts: prev.Ants,
			ToAnts:   next.Ants,
			Factor:   prev.Generations.Mean / next.Generations.Mean,
		})
	}
	return factors
}
