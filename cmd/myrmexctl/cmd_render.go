package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"myrmex/internal/view"
	"myrmex/internal/world"
	"myrmex/pkg/myrmex"
)

func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a world as an ASCII map",
		Long: `Render a world as an ASCII map.

With --run-id or --latest the stored final snapshot of that run is
rendered as persisted. Otherwise the configuration is replayed
deterministically and the frame at --generation (or termination) is
rendered; equal seeds render equal frames.

Map legend: ` + view.Legend,
		RunE: func(cmd *cobra.Command, args []string) error {
			runID, _ := cmd.Flags().GetString("run-id")
			latest, _ := cmd.Flags().GetBool("latest")
			preset, _ := cmd.Flags().GetString("preset")
			configPath, _ := cmd.Flags().GetString("config")
			ants, _ := cmd.Flags().GetInt("ants")
			workers, _ := cmd.Flags().GetInt("workers")
			generation, _ := cmd.Flags().GetUint64("generation")
			maxGenerations, _ := cmd.Flags().GetUint64("max-generations")
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
			var snapshot world.Snapshot
			if runID != "" || latest {
				if cmd.Flags().Changed("generation") || seed != nil || ants > 0 {
					return errors.New("stored snapshots render as-is: drop --run-id/--latest to replay with overrides")
				}
				record, err := client.FinalSnapshot(cmd.Context(), myrmex.SnapshotRequest{
					RunID:  runID,
					Latest: latest,
				})
				if err != nil {
					return err
				}
				snapshot = record.Snapshot
			} else {
				snapshot, err = client.Replay(cmd.Context(), myrmex.ReplayRequest{
					Preset:         preset,
					ConfigPath:     configPath,
					Seed:           seed,
					Ants:           ants,
					Workers:        workers,
					Generation:     generation,
					MaxGenerations: maxGenerations,
				})
				if err != nil {
					return err
				}
			}

			if jsonOut {
				return json.NewEncoder(out).Encode(snapshot)
			}
			fmt.Fprint(out, view.FormatSnapshot(snapshot))
			return nil
		},
	}

	cmd.Flags().String("run-id", "", "Render the stored final snapshot of this run")
	cmd.Flags().Bool("latest", false, "Render the most recent run's final snapshot")
	cmd.Flags().String("preset", "classic", "Preset world to replay (classic, minimal, gauntlet)")
	cmd.Flags().String("config", "", "YAML config file to replay (overrides --preset)")
	cmd.Flags().Int64("seed", 0, "Random seed override for the replay")
	cmd.Flags().Int("ants", 0, "Colony size override for the replay")
	cmd.Flags().Int("workers", 0, "Decision workers for the replay")
	cmd.Flags().Uint64("generation", 0, "Stop the replay at this generation (0 plays to termination)")
	cmd.Flags().Uint64("max-generations", 0, "Generation ceiling override for the replay")

	return cmd
}
