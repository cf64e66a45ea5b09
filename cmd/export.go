package cmd

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/klauspost/compress/zstd"
	"github.com/spf13/cobra"

	"github.com/pable/go-cricket-metrics/internal/model"
	"github.com/pable/go-cricket-metrics/internal/storage"
)

var (
	exportFormat string
	exportTable  string
	exportOut    string
)

// exportPlayer is the flat JSON schema for one player's stats.
type exportPlayer struct {
	Player string `json:"player"`

	BatMatches       int      `json:"bat_matches"`
	BatInnings       int      `json:"bat_innings"`
	NotOuts          int      `json:"not_outs"`
	Runs             int      `json:"runs"`
	BallsFaced       int      `json:"balls_faced"`
	Fours            int      `json:"fours"`
	Sixes            int      `json:"sixes"`
	Fifties          int      `json:"fifties"`
	Hundreds         int      `json:"hundreds"`
	HighScore        string   `json:"high_score"`
	Dismissals       int      `json:"dismissals"`
	DuckOuts         int      `json:"duck_outs"`
	BattingAverage   float64  `json:"batting_average"`
	StrikeRate       float64  `json:"strike_rate"`
	DuckOutPct       float64  `json:"duck_out_pct"`
	AvgRunsPerMatch  float64  `json:"avg_runs_per_match"`
	AvgBallsPerMatch float64  `json:"avg_balls_per_match"`
	RF50             float64  `json:"rf50"`
	RF100            float64  `json:"rf100"`
	BatOpponents     []string `json:"bat_opponents"`

	MostCommonPosition  int     `json:"most_common_position"`
	AveragePosition     float64 `json:"average_position"`
	PositionConsistency float64 `json:"position_consistency"`
	PositionRange       string  `json:"position_range"`
	OpeningInnings      int     `json:"opening_innings"`
	TopOrderInnings     int     `json:"top_order_innings"`

	BowlMatches         int      `json:"bowl_matches"`
	BowlInnings         int      `json:"bowl_innings"`
	Overs               string   `json:"overs"`
	OversCompleted      int      `json:"overs_completed"`
	RunsConceded        int      `json:"runs_conceded"`
	Wickets             int      `json:"wickets"`
	Maidens             int      `json:"maidens"`
	DotBalls            int      `json:"dot_balls"`
	ExtrasConceded      int      `json:"extras_conceded"`
	ThreeWicketHauls    int      `json:"three_wicket_hauls"`
	FiveWicketHauls     int      `json:"five_wicket_hauls"`
	Economy             float64  `json:"economy"`
	BowlingAverage      float64  `json:"bowling_average"`
	BowlingStrikeRate   float64  `json:"bowling_strike_rate"`
	AvgOversPerMatch    float64  `json:"avg_overs_per_match"`
	AvgConcededPerMatch float64  `json:"avg_conceded_per_match"`
	AvgWicketsPerMatch  float64  `json:"avg_wickets_per_match"`
	AvgMaidensPerMatch  float64  `json:"avg_maidens_per_match"`
	BowlOpponents       []string `json:"bowl_opponents"`

	Matches         int     `json:"matches"`
	Wins            int     `json:"wins"`
	Losses          int     `json:"losses"`
	Draws           int     `json:"draws"`
	WinPct          float64 `json:"win_pct"`
	LossPct         float64 `json:"loss_pct"`
	UniqueOpponents int     `json:"unique_opponents"`
}

// exportLine is the JSON schema for one player's line in one match.
type exportLine struct {
	Player       string `json:"player"`
	MatchID      string `json:"match_id"`
	Team         string `json:"team"`
	Result       string `json:"result"`
	Runs         int    `json:"runs"`
	BallsFaced   int    `json:"balls_faced"`
	Fours        int    `json:"fours"`
	Sixes        int    `json:"sixes"`
	BallsBowled  int    `json:"balls_bowled"`
	RunsConceded int    `json:"runs_conceded"`
	Wickets      int    `json:"wickets"`
	Maidens      int    `json:"maidens"`
}

var exportCmd = &cobra.Command{
	Use:   "export <hash-prefix>",
	Short: "Export a dataset's player stats as CSV or JSON",
	Long: `Write the stored stats of one dataset to a file (or stdout).

--table players  one row per player with every batting, bowling and outcome stat
--table lines    one row per (player, match)

An --out path ending in .zst is zstd-compressed.

Example:
  cricstats export 3f2a --format csv --out ipl.csv
  cricstats export 3f2a --format json --table lines --out lines.json.zst`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "csv|json")
	exportCmd.Flags().StringVar(&exportTable, "table", "players", "players|lines")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file path (default: stdout)")
}

func runExport(_ *cobra.Command, args []string) error {
	if exportFormat != "csv" && exportFormat != "json" {
		return fmt.Errorf("unknown format %q (want csv or json)", exportFormat)
	}
	if exportTable != "players" && exportTable != "lines" {
		return fmt.Errorf("unknown table %q (want players or lines)", exportTable)
	}

	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	ds, err := db.GetDatasetByPrefix(args[0])
	if err != nil {
		return fmt.Errorf("query dataset: %w", err)
	}
	if ds == nil {
		return fmt.Errorf("no dataset found with hash prefix %q", args[0])
	}

	var w io.Writer = os.Stdout
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("create %s: %w", exportOut, err)
		}
		defer f.Close()
		w = f
		if strings.HasSuffix(exportOut, ".zst") {
			enc, err := zstd.NewWriter(f)
			if err != nil {
				return fmt.Errorf("zstd: %w", err)
			}
			defer enc.Close()
			w = enc
		}
	}

	var n int
	switch exportTable {
	case "players":
		stats, err := db.GetPlayerStats(ds.Hash)
		if err != nil {
			return fmt.Errorf("get player stats: %w", err)
		}
		n = len(stats)
		rows := make([]exportPlayer, len(stats))
		for i := range stats {
			rows[i] = toExportPlayer(&stats[i])
		}
		err = writeExport(w, rows, playerCSVHeader, playerCSVRecord)
		if err != nil {
			return err
		}
	case "lines":
		lines, err := db.GetPlayerMatchLines(ds.Hash, "")
		if err != nil {
			return fmt.Errorf("get match lines: %w", err)
		}
		n = len(lines)
		rows := make([]exportLine, len(lines))
		for i, l := range lines {
			rows[i] = toExportLine(l)
		}
		err = writeExport(w, rows, lineCSVHeader, lineCSVRecord)
		if err != nil {
			return err
		}
	}

	if exportOut != "" {
		fmt.Fprintf(os.Stderr, "Wrote %d %s rows from %s to %s\n", n, exportTable, ds.Hash[:12], exportOut)
	}
	return nil
}

// writeExport encodes rows in the selected format.
func writeExport[T any](w io.Writer, rows []T, header []string, record func(*T) []string) error {
	if exportFormat == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rows); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	for i := range rows {
		if err := cw.Write(record(&rows[i])); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func toExportPlayer(s *model.PlayerStats) exportPlayer {
	return exportPlayer{
		Player:              s.Player,
		BatMatches:          s.BatMatches,
		BatInnings:          s.BatInnings,
		NotOuts:             s.NotOuts,
		Runs:                s.Runs,
		BallsFaced:          s.BallsFaced,
		Fours:               s.Fours,
		Sixes:               s.Sixes,
		Fifties:             s.Fifties,
		Hundreds:            s.Hundreds,
		HighScore:           s.HighScoreString(),
		Dismissals:          s.Dismissals,
		DuckOuts:            s.DuckOuts,
		BattingAverage:      s.BattingAverage,
		StrikeRate:          s.StrikeRate,
		DuckOutPct:          s.DuckOutPct,
		AvgRunsPerMatch:     s.AvgRunsPerMatch,
		AvgBallsPerMatch:    s.AvgBallsPerMatch,
		RF50:                s.RF50,
		RF100:               s.RF100,
		BatOpponents:        nonNil(s.BatOpponents),
		MostCommonPosition:  s.MostCommonPosition,
		AveragePosition:     s.AveragePosition,
		PositionConsistency: s.PositionConsistency,
		PositionRange:       s.PositionRange(),
		OpeningInnings:      s.OpeningInnings,
		TopOrderInnings:     s.TopOrderInnings,
		BowlMatches:         s.BowlMatches,
		BowlInnings:         s.BowlInnings,
		Overs:               s.OversNotation(),
		OversCompleted:      s.OversCompleted,
		RunsConceded:        s.RunsConceded,
		Wickets:             s.Wickets,
		Maidens:             s.Maidens,
		DotBalls:            s.DotBalls,
		ExtrasConceded:      s.ExtrasConceded,
		ThreeWicketHauls:    s.ThreeWicketHauls,
		FiveWicketHauls:     s.FiveWicketHauls,
		Economy:             s.Economy,
		BowlingAverage:      s.BowlingAverage,
		BowlingStrikeRate:   s.BowlingStrikeRate,
		AvgOversPerMatch:    s.AvgOversPerMatch,
		AvgConcededPerMatch: s.AvgConcededPerMatch,
		AvgWicketsPerMatch:  s.AvgWicketsPerMatch,
		AvgMaidensPerMatch:  s.AvgMaidensPerMatch,
		BowlOpponents:       nonNil(s.BowlOpponents),
		Matches:             s.Matches,
		Wins:                s.Wins,
		Losses:              s.Losses,
		Draws:               s.Draws,
		WinPct:              s.WinPct,
		LossPct:             s.LossPct,
		UniqueOpponents:     s.UniqueOpponents,
	}
}

var playerCSVHeader = []string{
	"player",
	"bat_matches", "bat_innings", "not_outs", "runs", "balls_faced", "fours", "sixes",
	"fifties", "hundreds", "high_score", "dismissals", "duck_outs",
	"batting_average", "strike_rate", "duck_out_pct", "avg_runs_per_match", "avg_balls_per_match",
	"rf50", "rf100", "bat_opponents",
	"most_common_position", "average_position", "position_consistency", "position_range",
	"opening_innings", "top_order_innings",
	"bowl_matches", "bowl_innings", "overs", "overs_completed", "runs_conceded",
	"wickets", "maidens", "dot_balls", "extras_conceded", "three_wicket_hauls", "five_wicket_hauls",
	"economy", "bowling_average", "bowling_strike_rate",
	"avg_overs_per_match", "avg_conceded_per_match", "avg_wickets_per_match", "avg_maidens_per_match",
	"bowl_opponents",
	"matches", "wins", "losses", "draws", "win_pct", "loss_pct", "unique_opponents",
}

func playerCSVRecord(p *exportPlayer) []string {
	return []string{
		p.Player,
		itoa(p.BatMatches), itoa(p.BatInnings), itoa(p.NotOuts), itoa(p.Runs), itoa(p.BallsFaced), itoa(p.Fours), itoa(p.Sixes),
		itoa(p.Fifties), itoa(p.Hundreds), p.HighScore, itoa(p.Dismissals), itoa(p.DuckOuts),
		ftoa(p.BattingAverage), ftoa(p.StrikeRate), ftoa(p.DuckOutPct), ftoa(p.AvgRunsPerMatch), ftoa(p.AvgBallsPerMatch),
		ftoa(p.RF50), ftoa(p.RF100), strings.Join(p.BatOpponents, "|"),
		itoa(p.MostCommonPosition), ftoa(p.AveragePosition), ftoa(p.PositionConsistency), p.PositionRange,
		itoa(p.OpeningInnings), itoa(p.TopOrderInnings),
		itoa(p.BowlMatches), itoa(p.BowlInnings), p.Overs, itoa(p.OversCompleted), itoa(p.RunsConceded),
		itoa(p.Wickets), itoa(p.Maidens), itoa(p.DotBalls), itoa(p.ExtrasConceded), itoa(p.ThreeWicketHauls), itoa(p.FiveWicketHauls),
		ftoa(p.Economy), ftoa(p.BowlingAverage), ftoa(p.BowlingStrikeRate),
		ftoa(p.AvgOversPerMatch), ftoa(p.AvgConcededPerMatch), ftoa(p.AvgWicketsPerMatch), ftoa(p.AvgMaidensPerMatch),
		strings.Join(p.BowlOpponents, "|"),
		itoa(p.Matches), itoa(p.Wins), itoa(p.Losses), itoa(p.Draws), ftoa(p.WinPct), ftoa(p.LossPct), itoa(p.UniqueOpponents),
	}
}

func toExportLine(l model.PlayerMatchLine) exportLine {
	return exportLine{
		Player:       l.Player,
		MatchID:      l.MatchID,
		Team:         l.Team,
		Result:       l.Result.String(),
		Runs:         l.Runs,
		BallsFaced:   l.BallsFaced,
		Fours:        l.Fours,
		Sixes:        l.Sixes,
		BallsBowled:  l.BallsBowled,
		RunsConceded: l.RunsConceded,
		Wickets:      l.Wickets,
		Maidens:      l.Maidens,
	}
}

var lineCSVHeader = []string{
	"player", "match_id", "team", "result",
	"runs", "balls_faced", "fours", "sixes",
	"balls_bowled", "runs_conceded", "wickets", "maidens",
}

func lineCSVRecord(l *exportLine) []string {
	return []string{
		l.Player, l.MatchID, l.Team, l.Result,
		itoa(l.Runs), itoa(l.BallsFaced), itoa(l.Fours), itoa(l.Sixes),
		itoa(l.BallsBowled), itoa(l.RunsConceded), itoa(l.Wickets), itoa(l.Maidens),
	}
}

func itoa(n int) string { return strconv.Itoa(n) }

func ftoa(f float64) string { return strconv.FormatFloat(f, 'f', 4, 64) }

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
