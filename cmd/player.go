package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-cricket-metrics/internal/report"
	"github.com/pable/go-cricket-metrics/internal/storage"
)

var playerDataset string

// playerCmd is the cobra command for cross-dataset history of one or more players.
var playerCmd = &cobra.Command{
	Use:   "player <name> [<name>...]",
	Short: "Cross-dataset history for one or more players",
	Long: `Print one row per stored dataset for each named player (case-insensitive).
With --dataset, also print the player's per-match lines for that dataset.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPlayer,
}

func init() {
	playerCmd.Flags().StringVar(&playerDataset, "dataset", "", "hash prefix of a dataset to list per-match lines for")
}

func runPlayer(cmd *cobra.Command, args []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	datasets, err := db.ListDatasets()
	if err != nil {
		return fmt.Errorf("list datasets: %w", err)
	}
	sources := make(map[string]string, len(datasets))
	for _, d := range datasets {
		sources[d.Hash] = d.Source
	}

	var lineHash string
	if playerDataset != "" {
		ds, err := db.GetDatasetByPrefix(playerDataset)
		if err != nil {
			return fmt.Errorf("query dataset: %w", err)
		}
		if ds == nil {
			return fmt.Errorf("no dataset found with hash prefix %q", playerDataset)
		}
		lineHash = ds.Hash
	}

	for _, name := range args {
		history, err := db.GetPlayerHistory(name)
		if err != nil {
			return fmt.Errorf("query history for %s: %w", name, err)
		}
		if len(history) == 0 {
			fmt.Fprintf(os.Stderr, "No data found for player %q\n", name)
			continue
		}

		fmt.Fprintf(os.Stdout, "\n=== %s ===\n\n", history[0].Player)
		report.PrintPlayerHistory(os.Stdout, history, sources)

		if lineHash == "" {
			continue
		}
		lines, err := db.GetPlayerMatchLines(lineHash, name)
		if err != nil {
			return fmt.Errorf("query match lines for %s: %w", name, err)
		}
		if len(lines) == 0 {
			cMuted.Fprintf(os.Stdout, "\n(no matches in %s)\n", lineHash[:12])
			continue
		}
		fmt.Fprintln(os.Stdout)
		report.PrintMatchLines(os.Stdout, lines)
	}
	return nil
}
