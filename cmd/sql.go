package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/pable/go-cricket-metrics/internal/storage"
)

var sqlCmd = &cobra.Command{
	Use:   "sql <query>",
	Short: "Run a raw SQL query against the stats database",
	Long: `Run an arbitrary SQL query against the stats database and print results as a table.

Schema overview:
  datasets(hash, source, ingested_at, matches, deliveries, players, skipped)
  matches(dataset_hash, match_id, teams, innings JSON, winner)
  player_stats(dataset_hash, player, bat_matches, bat_innings, not_outs, runs,
    balls_faced, fours, sixes, fifties, hundreds, high_score, dismissals,
    batting_average, strike_rate, most_common_position, balls_bowled,
    overs_completed, runs_conceded, wickets, maidens, economy,
    bowling_average, matches, wins, losses, draws, ...)
  player_match_lines(dataset_hash, player, match_id, team, result, runs,
    balls_faced, fours, sixes, balls_bowled, runs_conceded, wickets, maidens)

Note: match_id is stored as TEXT. Use quotes: WHERE match_id = '335982'`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSQL,
}

func runSQL(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	cols, rows, err := db.QueryRaw(query)
	if err != nil {
		return err
	}
	printQueryResult(os.Stdout, cols, rows)
	return nil
}

// printQueryResult renders a raw result set with numeric columns
// right-aligned and text columns left-aligned.
func printQueryResult(w io.Writer, cols []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "(no rows)")
		return
	}

	table := tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row:    tw.CellConfig{Alignment: tw.CellAlignment{PerColumn: columnAlignments(len(cols), rows)}},
		Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
	}))

	header := make([]any, len(cols))
	for i, c := range cols {
		header[i] = c
	}
	table.Header(header...)

	for _, row := range rows {
		cells := make([]any, len(row))
		for i, v := range row {
			cells[i] = v
		}
		table.Append(cells...)
	}
	table.Render()

	noun := "rows"
	if len(rows) == 1 {
		noun = "row"
	}
	fmt.Fprintf(w, "\n(%d %s)\n", len(rows), noun)
}

// columnAlignments right-aligns a column when every non-NULL value in it
// parses as a number.
func columnAlignments(n int, rows [][]string) []tw.Align {
	aligns := make([]tw.Align, n)
	for c := 0; c < n; c++ {
		numeric, seen := true, false
		for _, row := range rows {
			if c >= len(row) || row[c] == "NULL" {
				continue
			}
			seen = true
			if _, err := strconv.ParseFloat(row[c], 64); err != nil {
				numeric = false
				break
			}
		}
		if numeric && seen {
			aligns[c] = tw.AlignRight
		} else {
			aligns[c] = tw.AlignLeft
		}
	}
	return aligns
}
