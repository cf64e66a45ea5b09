package cmd

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/pable/go-cricket-metrics/internal/storage"
)

// summaryCmd is the cobra command for displaying a high-level database overview.
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show a high-level overview of the database",
	Long: `Display aggregate statistics about all datasets stored in the database:
dataset, match and delivery counts, ingest date range, and the leading run
scorers and wicket takers summed across datasets.`,
	Args: cobra.NoArgs,
	RunE: runSummary,
}

func runSummary(cmd *cobra.Command, args []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	ov, err := db.GetOverview()
	if err != nil {
		return fmt.Errorf("get overview: %w", err)
	}
	if ov.Datasets == 0 {
		fmt.Fprintln(os.Stdout, "No datasets stored yet. Run 'cricstats ingest <deliveries.csv>' to add one.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "\n=== Database Summary ===\n\n")
	fmt.Fprintf(os.Stdout, "  Datasets      : %d\n", ov.Datasets)
	fmt.Fprintf(os.Stdout, "  Ingested      : %s → %s\n", ov.EarliestIngest, ov.LatestIngest)
	fmt.Fprintf(os.Stdout, "  Matches       : %d\n", ov.Matches)
	fmt.Fprintf(os.Stdout, "  Deliveries    : %d\n", ov.Deliveries)
	fmt.Fprintf(os.Stdout, "  Players seen  : %d\n", ov.UniquePlayers)
	if ov.Skipped > 0 {
		warnf("  Skipped rows  : %d\n", ov.Skipped)
	}

	for _, board := range []struct{ title, by string }{
		{"Most Runs", "runs"},
		{"Most Wickets", "wickets"},
	} {
		leaders, err := db.GetLeaders(board.by, 10)
		if err != nil {
			return fmt.Errorf("get %s leaders: %w", board.by, err)
		}
		fmt.Fprintf(os.Stdout, "\n--- %s ---\n\n", board.title)
		t := tablewriter.NewTable(os.Stdout, tablewriter.WithConfig(tablewriter.Config{
			Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignRight}},
			Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
		}))
		t.Header("PLAYER", "MATCHES", "RUNS", "WICKETS")
		for _, l := range leaders {
			t.Append(
				l.Player,
				fmt.Sprintf("%d", l.Matches),
				fmt.Sprintf("%d", l.Runs),
				fmt.Sprintf("%d", l.Wickets),
			)
		}
		t.Render()
	}
	return nil
}
