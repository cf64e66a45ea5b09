package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-cricket-metrics/internal/aggregator"
	"github.com/pable/go-cricket-metrics/internal/report"
	"github.com/pable/go-cricket-metrics/internal/storage"
)

var minWickets int

var allroundersCmd = &cobra.Command{
	Use:   "allrounders <hash-prefix>",
	Short: "List all-rounders in a dataset",
	Long: `List players who batted in at least one match and took at least
--min-wickets wickets (default $CRICSTATS_ALLROUNDER_MIN_WICKETS or 1).`,
	Args: cobra.ExactArgs(1),
	RunE: runAllrounders,
}

func init() {
	allroundersCmd.Flags().IntVar(&minWickets, "min-wickets", 0, "minimum wickets to qualify")
}

func runAllrounders(cmd *cobra.Command, args []string) error {
	threshold := cfg.AllRounderMinWkts
	if cmd.Flags().Changed("min-wickets") {
		threshold = minWickets
	}
	return showAllrounders(args[0], threshold)
}

func showAllrounders(prefix string, threshold int) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	ds, err := db.GetDatasetByPrefix(prefix)
	if err != nil {
		return fmt.Errorf("query dataset: %w", err)
	}
	if ds == nil {
		fmt.Fprintf(os.Stderr, "No dataset found with hash prefix %q\n", prefix)
		return nil
	}
	stats, err := db.GetPlayerStats(ds.Hash)
	if err != nil {
		return fmt.Errorf("get player stats: %w", err)
	}

	selected := aggregator.SelectAllRounders(stats, threshold)
	report.PrintDatasetSummary(os.Stdout, *ds)
	if len(selected) == 0 {
		fmt.Fprintf(os.Stdout, "No players with %d+ wickets who also batted.\n", threshold)
		return nil
	}
	report.PrintAllRounderTable(os.Stdout, selected)
	fmt.Fprintf(os.Stdout, "\n(%d all-rounders, min %d wickets)\n", len(selected), threshold)
	return nil
}
