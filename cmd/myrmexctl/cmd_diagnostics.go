package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"myrmex/internal/view"
	"myrmex/pkg/myrmex"
)

func newDiagnosticsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diagnostics",
		Short: "Show one run's progress series",
		Long: `Show the sampled per-generation diagnostics of one run: deliveries,
remaining food, carrying ants, and trail totals.

Select the run with --run-id or --latest.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			runID, _ := cmd.Flags().GetString("run-id")
			latest, _ := cmd.Flags().GetBool("latest")
			limit, _ := cmd.Flags().GetInt("limit")
			jsonOut, _ := cmd.Flags().GetBool("json")

			client, err := newClient(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			series, err := client.Diagnostics(cmd.Context(), myrmex.DiagnosticsRequest{
				RunID:  runID,
				Latest: latest,
				Limit:  limit,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				return json.NewEncoder(out).Encode(map[string]any{
					"diagnostics": series,
					"count":       len(series),
				})
			}
			for _, point := range series {
				fmt.Fprintln(out, view.FormatProgress(point))
			}
			return nil
		},
	}

	cmd.Flags().String("run-id", "", "Run to inspect")
	cmd.Flags().Bool("latest", false, "Inspect the most recent run")
	cmd.Flags().Int("limit", 20, "Keep only the last N samples (0 keeps all)")

	return cmd
}
