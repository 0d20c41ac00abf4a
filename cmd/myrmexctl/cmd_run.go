package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"myrmex/internal/model"
	"myrmex/internal/view"
	"myrmex/internal/world"
	"myrmex/pkg/myrmex"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one simulation to termination",
		Long: `Run one simulation until the colony has delivered every unit of food,
then persist the outcome to the store and the artifacts directory.

Without flags the classic preset runs on seed 0. --watch streams ASCII
frames while the colony works; --every sets how many generations pass
between frames or progress lines.

Example:
  myrmexctl run --preset minimal --seed 7 --watch --every 1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			preset, _ := cmd.Flags().GetString("preset")
			configPath, _ := cmd.Flags().GetString("config")
			ants, _ := cmd.Flags().GetInt("ants")
			workers, _ := cmd.Flags().GetInt("workers")
			maxGenerations, _ := cmd.Flags().GetUint64("max-generations")
			sampleEvery, _ := cmd.Flags().GetInt("sample-every")
			scenario, _ := cmd.Flags().GetString("scenario")
			watch, _ := cmd.Flags().GetBool("watch")
			every, _ := cmd.Flags().GetUint64("every")
			quiet, _ := cmd.Flags().GetBool("quiet")
			jsonOut, _ := cmd.Flags().GetBool("json")

			var seed *int64
			if cmd.Flags().Changed("seed") {
				value, _ := cmd.Flags().GetInt64("seed")
				seed = &value
			}

			client, err := newClient(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			out := cmd.OutOrStdout()
			req := myrmex.RunRequest{
				Preset:         preset,
				ConfigPath:     configPath,
				Scenario:       scenario,
				Seed:           seed,
				Ants:           ants,
				Workers:        workers,
				MaxGenerations: maxGenerations,
				SampleEvery:    sampleEvery,
				FrameEvery:     every,
			}
			switch {
			case jsonOut:
				// Frames and tickers would corrupt the JSON stream.
			case watch:
				req.OnFrame = func(s world.Snapshot, d model.GenerationDiagnostics) {
					fmt.Fprintln(out, view.FormatSnapshot(s))
				}
			case !quiet:
				req.OnFrame = func(s world.Snapshot, d model.GenerationDiagnostics) {
					fmt.Fprintln(out, view.FormatProgress(d))
				}
			}

			summary, err := client.Run(cmd.Context(), req)
			if err != nil {
				return err
			}

			if jsonOut {
				return json.NewEncoder(out).Encode(runSummaryJSON(summary))
			}
			fmt.Fprintf(out, "run_id=%s scenario=%s seed=%d ants=%d workers=%d\n",
				summary.RunID, summary.Scenario, summary.Seed, summary.Ants, summary.Workers)
			fmt.Fprintf(out, "generations=%s delivered=%d/%d duration=%s artifacts=%s\n",
				humanize.Comma(int64(summary.Generations)), summary.Delivered, summary.InitialFood,
				summary.Duration.Round(time.Millisecond), summary.ArtifactsDir)
			return nil
		},
	}

	cmd.Flags().String("preset", "classic", "Preset world (classic, minimal, gauntlet)")
	cmd.Flags().String("config", "", "YAML config file (overrides --preset)")
	cmd.Flags().String("scenario", "", "Scenario label for records (default: preset or config name)")
	cmd.Flags().Int64("seed", 0, "Random seed override")
	cmd.Flags().Int("ants", 0, "Colony size override")
	cmd.Flags().Int("workers", 0, "Decision workers (0 uses GOMAXPROCS)")
	cmd.Flags().Uint64("max-generations", 0, "Generation ceiling override")
	cmd.Flags().Int("sample-every", 0, "Persist diagnostics every Nth generation")
	cmd.Flags().Bool("watch", false, "Stream ASCII frames while running")
	cmd.Flags().Uint64("every", 500, "Generations between frames or progress lines")
	cmd.Flags().Bool("quiet", false, "Suppress progress output")

	return cmd
}

func runSummaryJSON(summary myrmex.RunSummary) map[string]any {
	return map[string]any{
		"run_id":       summary.RunID,
		"scenario":     summary.Scenario,
		"seed":         summary.Seed,
		"ants":         summary.Ants,
		"workers":      summary.Workers,
		"generations":  summary.Generations,
		"delivered":    summary.Delivered,
		"initial_food": summary.InitialFood,
		"terminated":   summary.Terminated,
		"artifacts":    summary.ArtifactsDir,
		"duration_ms":  summary.Duration.Milliseconds(),
	}
}
