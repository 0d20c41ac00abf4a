package main

import (
	"encoding/json"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"myrmex/internal/config"
)

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List named preset worlds",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			out := cmd.OutOrStdout()

			if jsonOut {
				entries := make([]map[string]any, 0, len(config.PresetNames()))
				for _, name := range config.PresetNames() {
					cfg, ok := config.Preset(name)
					if !ok {
						return fmt.Errorf("preset %q not resolvable", name)
					}
					entries = append(entries, map[string]any{
						"name":   name,
						"config": cfg,
					})
				}
				return json.NewEncoder(out).Encode(map[string]any{
					"presets": entries,
					"count":   len(entries),
				})
			}

			for _, name := range config.PresetNames() {
				cfg, ok := config.Preset(name)
				if !ok {
					return fmt.Errorf("preset %q not resolvable", name)
				}
				fmt.Fprintf(out, "name=%s grid=%dx%d ants=%d morsels=%d storage=%d total_food=%d max_generations=%s\n",
					name, cfg.Grid.Width, cfg.Grid.Height, cfg.Colony.Ants,
					cfg.Morsels.Count, cfg.Morsels.Storage, cfg.Morsels.Count*cfg.Morsels.Storage,
					humanize.Comma(int64(cfg.Run.MaxGenerations)))
			}
			return nil
		},
	}
}
