package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-cricket-metrics/internal/report"
	"github.com/pable/go-cricket-metrics/internal/storage"
)

const (
	viewBatting  = "batting"
	viewBowling  = "bowling"
	viewAllRound = "allround"
	viewMatches  = "matches"
)

var (
	showPlayer string
	showView   string
)

var showCmd = &cobra.Command{
	Use:   "show <hash-prefix>",
	Short: "Show stored dataset stats by hash prefix",
	Long: `Show the stats stored for a dataset. --view selects the table:
  batting   batting figures and positions (default)
  bowling   bowling figures
  allround  combined batting, bowling and match outcomes
  matches   resolved match results`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().StringVar(&showPlayer, "player", "", "highlight player name")
	showCmd.Flags().StringVar(&showView, "view", viewBatting, "batting|bowling|allround|matches")
}

func runShow(cmd *cobra.Command, args []string) error {
	prefix := args[0]

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
	return showByHash(db, ds.Hash, showView)
}

func showByHash(db *storage.DB, hash, view string) error {
	ds, err := db.GetDatasetByPrefix(hash)
	if err != nil || ds == nil {
		return fmt.Errorf("dataset not found: %s", hash)
	}
	report.PrintDatasetSummary(os.Stdout, *ds)

	if view == viewMatches {
		matches, err := db.GetMatches(ds.Hash)
		if err != nil {
			return fmt.Errorf("get matches: %w", err)
		}
		report.PrintMatchTable(os.Stdout, matches)
		return nil
	}

	stats, err := db.GetPlayerStats(ds.Hash)
	if err != nil {
		return fmt.Errorf("get player stats: %w", err)
	}
	focus := showPlayer
	if focus == "" {
		focus = focusPlayer
	}
	switch view {
	case viewBatting:
		report.PrintBattingTable(os.Stdout, stats, focus)
	case viewBowling:
		report.PrintBowlingTable(os.Stdout, stats, focus)
	case viewAllRound:
		report.PrintAllRounderTable(os.Stdout, stats)
	default:
		return fmt.Errorf("unknown view %q (want batting, bowling, allround or matches)", view)
	}
	return nil
}
