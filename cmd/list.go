package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-cricket-metrics/internal/storage"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored datasets",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	datasets, err := db.ListDatasets()
	if err != nil {
		return fmt.Errorf("list datasets: %w", err)
	}
	if len(datasets) == 0 {
		fmt.Fprintln(os.Stdout, "No datasets stored yet. Run 'cricstats ingest <deliveries.csv>' to add one.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-14s  %-24s  %-20s  %7s  %10s  %7s  %s\n",
		"HASH", "SOURCE", "INGESTED", "MATCHES", "DELIVERIES", "PLAYERS", "SKIPPED")
	fmt.Fprintf(os.Stdout, "%-14s  %-24s  %-20s  %7s  %10s  %7s  %s\n",
		"──────────────", "────────────────────────", "────────────────────", "───────", "──────────", "───────", "───────")
	for _, d := range datasets {
		fmt.Fprintf(os.Stdout, "%-14s  %-24s  %-20s  %7d  %10d  %7d  %d\n",
			d.Hash[:12], d.Source, d.IngestedAt, d.Matches, d.Deliveries, d.Players, d.Skipped)
	}
	return nil
}
