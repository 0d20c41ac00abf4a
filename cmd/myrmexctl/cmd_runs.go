package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"myrmex/pkg/myrmex"
)

func newRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List persisted runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			jsonOut, _ := cmd.Flags().GetBool("json")

			client, err := newClient(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			items, err := client.Runs(cmd.Context(), myrmex.RunsRequest{Limit: limit})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				entries := make([]map[string]any, 0, len(items))
				for _, item := range items {
					entries = append(entries, map[string]any{
						"run_id":         item.RunID,
						"scenario":       item.Scenario,
						"seed":           item.Seed,
						"ants":           item.Ants,
						"generations":    item.Generations,
						"delivered":      item.Delivered,
						"terminated":     item.Terminated,
						"created_at_utc": item.CreatedAtUTC,
					})
				}
				return json.NewEncoder(out).Encode(map[string]any{
					"runs":  entries,
					"count": len(entries),
				})
			}

			if len(items) == 0 {
				fmt.Fprintln(out, "no runs found")
				return nil
			}
			for _, item := range items {
				fmt.Fprintf(out, "run_id=%s scenario=%s seed=%d ants=%d generations=%s delivered=%d terminated=%t created=%s\n",
					item.RunID, item.Scenario, item.Seed, item.Ants,
					humanize.Comma(int64(item.Generations)), item.Delivered, item.Terminated,
					formatCreated(item.CreatedAtUTC))
			}
			return nil
		},
	}

	cmd.Flags().Int("limit", 20, "Maximum runs to list")

	return cmd
}

// formatCreated turns the stored RFC 3339 timestamp into a relative age.
// Unparseable values print as stored.
func formatCreated(value string) string {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return value
	}
	return humanize.Time(t)
}
