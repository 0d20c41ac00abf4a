// Command myrmexctl drives ant colony simulations from the terminal: run
// worlds to termination, list persisted runs, inspect their diagnostics,
// render them as ASCII maps, and sweep colony sizes.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"myrmex/internal/view"
	"myrmex/pkg/myrmex"
)

var version = "0.1.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "myrmexctl",
		Short: "Ant colony foraging simulations",
		Long: `myrmexctl runs stigmergy simulations: ant colonies that clear a world
of food by laying and following pheromone trails. Runs are deterministic
for a fixed seed and persist their outcome for later inspection.

Map legend: ` + view.Legend,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("store", "memory", "Run store backend (memory or sqlite)")
	rootCmd.PersistentFlags().String("db", "myrmex.db", "SQLite database path (sqlite store only)")
	rootCmd.PersistentFlags().String("runs-dir", "runs", "Directory for run artifacts")

	rootCmd.AddCommand(
		newRunCmd(),
		newRunsCmd(),
		newDiagnosticsCmd(),
		newRenderCmd(),
		newPresetsCmd(),
		newBenchCmd(),
		newVersionCmd(),
	)

	return rootCmd
}

func newClient(cmd *cobra.Command) (*myrmex.Client, error) {
	storeKind, _ := cmd.Flags().GetString("store")
	dbPath, _ := cmd.Flags().GetString("db")
	runsDir, _ := cmd.Flags().GetString("runs-dir")
	return myrmex.New(myrmex.Options{StoreKind: storeKind, DBPath: dbPath, RunsDir: runsDir})
}
