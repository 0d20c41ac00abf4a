package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"myrmex/internal/bench"
	"myrmex/internal/config"
	"myrmex/internal/sim"
	"myrmex/internal/stats"
	"myrmex/pkg/myrmex"
)

func newBenchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Sweep colony sizes and compare settle times",
		Long: `Run every colony size against a range of seeds and aggregate how many
generations each size needs to clear the world. The aggregate is stored
as a sweep record under <runs-dir>/sweeps/<id>/.

--graphs additionally persists every cell as a normal run and writes
per-ant-count delivery curves next to the sweep record; cells then run
one after another instead of through the worker pool.

Example:
  myrmexctl bench --preset minimal --ants 3,6 --seeds 8`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if list, _ := cmd.Flags().GetBool("list"); list {
				return listSweeps(cmd)
			}
			return runSweep(cmd)
		},
	}

	cmd.Flags().String("preset", "classic", "Preset world for the base configuration")
	cmd.Flags().String("config", "", "YAML config file for the base configuration (overrides --preset)")
	cmd.Flags().IntSlice("ants", []int{5, 10, 20}, "Colony sizes to sweep")
	cmd.Flags().Int("seeds", 4, "Seeded repetitions per colony size")
	cmd.Flags().Int64("seed", 1, "First seed of the repetition range")
	cmd.Flags().Uint64("max-generations", 0, "Generation ceiling override")
	cmd.Flags().Int("workers", 0, "Concurrent cells (0 uses GOMAXPROCS)")
	cmd.Flags().String("id", "", "Sweep id (default: sweep-<timestamp>)")
	cmd.Flags().String("notes", "", "Free-form note stored with the sweep")
	cmd.Flags().Bool("graphs", false, "Write per-ant-count delivery graphs")
	cmd.Flags().Bool("list", false, "List stored sweeps instead of running one")
	cmd.Flags().Bool("quiet", false, "Suppress per-cell progress")

	return cmd
}

func runSweep(cmd *cobra.Command) error {
	preset, _ := cmd.Flags().GetString("preset")
	configPath, _ := cmd.Flags().GetString("config")
	antCounts, _ := cmd.Flags().GetIntSlice("ants")
	seedCount, _ := cmd.Flags().GetInt("seeds")
	seedBase, _ := cmd.Flags().GetInt64("seed")
	maxGenerations, _ := cmd.Flags().GetUint64("max-generations")
	workers, _ := cmd.Flags().GetInt("workers")
	sweepID, _ := cmd.Flags().GetString("id")
	notes, _ := cmd.Flags().GetString("notes")
	graphs, _ := cmd.Flags().GetBool("graphs")
	quiet, _ := cmd.Flags().GetBool("quiet")
	jsonOut, _ := cmd.Flags().GetBool("json")
	runsDir, _ := cmd.Flags().GetString("runs-dir")

	if seedCount < 1 {
		return fmt.Errorf("seeds must be >= 1, got %d", seedCount)
	}
	seeds := make([]int64, 0, seedCount)
	for i := 0; i < seedCount; i++ {
		seeds = append(seeds, seedBase+int64(i))
	}

	fileCfg, scenario, err := config.Resolve(preset, configPath)
	if err != nil {
		return err
	}
	ceiling := maxGenerations
	if ceiling == 0 {
		ceiling = fileCfg.Run.MaxGenerations
	}
	if ceiling == 0 {
		ceiling = sim.DefaultGenerationCeiling
	}
	if sweepID == "" {
		sweepID = "sweep-" + time.Now().UTC().Format("20060102-150405")
	}

	out := cmd.OutOrStdout()
	started := time.Now().UTC()

	var report bench.SweepReport
	var runIDs []string
	recordWorkers := workers
	if graphs {
		recordWorkers = 1
		report, runIDs, err = sweepThroughArtifacts(cmd, scenario, antCounts, seeds, ceiling, quiet || jsonOut)
	} else {
		report, err = sweepInMemory(cmd, fileCfg, antCounts, seeds, ceiling, workers, quiet || jsonOut)
	}
	if err != nil {
		return err
	}
	completed := time.Now().UTC()

	record := stats.SweepRecord{
		ID:             sweepID,
		Notes:          notes,
		StartedAtUTC:   started.Format(time.RFC3339Nano),
		CompletedAtUTC: completed.Format(time.RFC3339Nano),
		MaxGenerations: report.MaxGenerations,
		Workers:        recordWorkers,
		Seeds:          seeds,
		RunIDs:         runIDs,
		Groups:         sweepGroups(report.Groups),
	}
	if err := stats.WriteSweepRecord(runsDir, record); err != nil {
		return err
	}

	var graphPaths []string
	if graphs {
		curves, err := stats.BuildSweepGraphs(runsDir, record)
		if err != nil {
			return err
		}
		graphPaths, err = stats.WriteSweepGraphs(runsDir, sweepID, "delivery.dat", curves)
		if err != nil {
			return err
		}
	}

	if jsonOut {
		return json.NewEncoder(out).Encode(map[string]any{
			"sweep_id": sweepID,
			"scenario": scenario,
			"report":   report,
			"graphs":   graphPaths,
		})
	}

	fmt.Fprintf(out, "sweep_id=%s scenario=%s cells=%d ceiling=%s duration=%s\n",
		sweepID, scenario, len(report.Results),
		humanize.Comma(int64(report.MaxGenerations)), completed.Sub(started).Round(time.Millisecond))
	for _, group := range report.Groups {
		fmt.Fprintf(out, "ants=%d runs=%d terminated=%d mean=%.1f std=%.1f min=%s max=%s\n",
			group.Ants, group.Runs, group.Terminated,
			group.Generations.Mean, group.Generations.Std,
			humanize.Comma(int64(group.Generations.Min)), humanize.Comma(int64(group.Generations.Max)))
	}
	for _, speedup := range report.Speedups {
		fmt.Fprintf(out, "speedup ants=%d->%d factor=%.2fx\n", speedup.FromAnts, speedup.ToAnts, speedup.Factor)
	}
	for _, path := range graphPaths {
		fmt.Fprintf(out, "graph=%s\n", path)
	}
	return nil
}

// sweepInMemory runs the sweep through the worker pool without persisting
// individual cells.
func sweepInMemory(cmd *cobra.Command, fileCfg *config.FileConfig, antCounts []int, seeds []int64, ceiling uint64, workers int, quiet bool) (bench.SweepReport, error) {
	simCfg, err := fileCfg.SimConfig()
	if err != nil {
		return bench.SweepReport{}, err
	}

	sweepCfg := bench.SweepConfig{
		Base:           simCfg,
		AntCounts:      antCounts,
		Seeds:          seeds,
		MaxGenerations: ceiling,
		Workers:        workers,
	}
	if !quiet {
		out := cmd.OutOrStdout()
		var mu sync.Mutex
		sweepCfg.OnResult = func(res bench.RunResult) {
			mu.Lock()
			defer mu.Unlock()
			printCell(out, res)
		}
	}
	return bench.RunSweep(cmd.Context(), sweepCfg)
}

// sweepThroughArtifacts persists every cell as a normal run so its delivery
// series is available for graph building. Cells run sequentially: the run
// index on disk is not safe for concurrent appends.
func sweepThroughArtifacts(cmd *cobra.Command, scenario string, antCounts []int, seeds []int64, ceiling uint64, quiet bool) (bench.SweepReport, []string, error) {
	preset, _ := cmd.Flags().GetString("preset")
	configPath, _ := cmd.Flags().GetString("config")

	client, err := newClient(cmd)
	if err != nil {
		return bench.SweepReport{}, nil, err
	}
	defer client.Close()

	out := cmd.OutOrStdout()
	results := make([]bench.RunResult, 0, len(antCounts)*len(seeds))
	runIDs := make([]string, 0, len(antCounts)*len(seeds))
	for _, ants := range antCounts {
		for _, seed := range seeds {
			summary, err := client.Run(cmd.Context(), myrmex.RunRequest{
				Preset:         preset,
				ConfigPath:     configPath,
				Scenario:       scenario + "-sweep",
				Seed:           &seed,
				Ants:           ants,
				Workers:        1,
				MaxGenerations: ceiling,
			})
			if err != nil && !errors.Is(err, myrmex.ErrCeilingExceeded) {
				return bench.SweepReport{}, nil, err
			}
			result := bench.RunResult{
				Ants:        ants,
				Seed:        seed,
				Generations: summary.Generations,
				Delivered:   summary.Delivered,
				Terminated:  summary.Terminated,
			}
			results = append(results, result)
			runIDs = append(runIDs, summary.RunID)
			if !quiet {
				printCell(out, result)
			}
		}
	}

	groups := bench.GroupRuns(antCounts, results)
	return bench.SweepReport{
		MaxGenerations: ceiling,
		Results:        results,
		Groups:         groups,
		Speedups:       bench.Speedups(groups),
	}, runIDs, nil
}

func printCell(out io.Writer, res bench.RunResult) {
	fmt.Fprintf(out, "cell ants=%d seed=%d generations=%s terminated=%t\n",
		res.Ants, res.Seed, humanize.Comma(int64(res.Generations)), res.Terminated)
}

func sweepGroups(groups []bench.GroupSummary) []stats.SweepGroupRecord {
	records := make([]stats.SweepGroupRecord, 0, len(groups))
	for _, group := range groups {
		records = append(records, stats.SweepGroupRecord{
			Ants:            group.Ants,
			Runs:            group.Runs,
			Terminated:      group.Terminated,
			MeanGenerations: group.Generations.Mean,
			StdGenerations:  group.Generations.Std,
			MinGenerations:  uint64(group.Generations.Min),
			MaxGenerations:  uint64(group.Generations.Max),
		})
	}
	return records
}

func listSweeps(cmd *cobra.Command) error {
	runsDir, _ := cmd.Flags().GetString("runs-dir")
	jsonOut, _ := cmd.Flags().GetBool("json")

	records, err := stats.ListSweepRecords(runsDir)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOut {
		return json.NewEncoder(out).Encode(map[string]any{
			"sweeps": records,
			"count":  len(records),
		})
	}
	if len(records) == 0 {
		fmt.Fprintln(out, "no sweeps found")
		return nil
	}
	for _, record := range records {
		fmt.Fprintf(out, "sweep_id=%s started=%s groups=%d seeds=%d ceiling=%s\n",
			record.ID, formatCreated(record.StartedAtUTC), len(record.Groups), len(record.Seeds),
			humanize.Comma(int64(record.MaxGenerations)))
		if record.Notes != "" {
			fmt.Fprintf(out, "  notes=%s\n", record.Notes)
		}
	}
	return nil
}
