package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-cricket-metrics/internal/aggregator"
	"github.com/pable/go-cricket-metrics/internal/loader"
	"github.com/pable/go-cricket-metrics/internal/model"
	"github.com/pable/go-cricket-metrics/internal/report"
	"github.com/pable/go-cricket-metrics/internal/storage"
)

var focusPlayer string

var ingestCmd = &cobra.Command{
	Use:   "ingest <deliveries.csv>",
	Short: "Ingest a ball-by-ball delivery log and store player stats",
	Long: `Read a delivery-level CSV (optionally .gz or .zst compressed), aggregate
per-player statistics and store them keyed by the file's SHA-256 hash.
Ingesting the same file again shows the cached results.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&focusPlayer, "player", "", "highlight player name")
}

func runIngest(cmd *cobra.Command, args []string) error {
	path := args[0]

	if err := ensureDBDir(); err != nil {
		return err
	}
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	fmt.Fprintf(os.Stdout, "Loading %s...\n", path)
	ds, err := loader.Load(path)
	if err != nil {
		return fmt.Errorf("load deliveries: %w", err)
	}

	exists, err := db.DatasetExists(ds.Hash)
	if err != nil {
		return fmt.Errorf("check dataset: %w", err)
	}
	if exists {
		fmt.Fprintf(os.Stdout, "Dataset %s already stored, showing cached results.\n", ds.Hash[:12])
		return showByHash(db, ds.Hash, viewBatting)
	}

	loader.Sort(ds.Deliveries)
	res, err := aggregator.AggregateParallel(ds, cfg.Workers)
	if err != nil {
		return fmt.Errorf("aggregate: %w", err)
	}

	skipped := ds.Malformed + res.Skipped.Total()
	if ds.Malformed > 0 {
		warnf("Skipped %d malformed rows (missing match, inning, over or ball).\n", ds.Malformed)
	}
	if res.Skipped.NoBatter > 0 || res.Skipped.NoBowler > 0 {
		warnf("Ignored %d deliveries without a batter and %d without a bowler.\n",
			res.Skipped.NoBatter, res.Skipped.NoBowler)
	}

	summary := model.DatasetSummary{
		Hash:       ds.Hash,
		Source:     ds.Source,
		Matches:    len(res.Matches),
		Deliveries: len(ds.Deliveries),
		Players:    len(res.Players),
		Skipped:    skipped,
	}

	if err := db.InsertMatches(ds.Hash, res.Matches); err != nil {
		return fmt.Errorf("insert matches: %w", err)
	}
	if err := db.InsertPlayerStats(res.Players); err != nil {
		return fmt.Errorf("insert player stats: %w", err)
	}
	if err := db.InsertPlayerMatchLines(res.Lines); err != nil {
		return fmt.Errorf("insert match lines: %w", err)
	}
	// The dataset row goes last; DatasetExists treats it as a completed ingest.
	if err := db.InsertDataset(summary); err != nil {
		return fmt.Errorf("insert dataset: %w", err)
	}

	report.PrintDatasetSummary(os.Stdout, summary)
	fmt.Fprintln(os.Stdout, "Batting")
	report.PrintBattingTable(os.Stdout, res.Players, focusPlayer)
	fmt.Fprintln(os.Stdout, "\nBowling")
	report.PrintBowlingTable(os.Stdout, res.Players, focusPlayer)
	cOK.Fprintf(os.Stdout, "\nStored %d players from %d matches.\n", len(res.Players), len(res.Matches))
	return nil
}
