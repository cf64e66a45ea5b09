package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/pable/go-cricket-metrics/internal/model"
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

// PrintDatasetSummary prints a one-line summary header for the dataset.
func PrintDatasetSummary(w io.Writer, s model.DatasetSummary) {
	fmt.Fprintf(w, "\nSource: %s  |  Matches: %d  |  Deliveries: %d  |  Players: %d  |  Skipped: %d  |  Hash: %s\n\n",
		s.Source, s.Matches, s.Deliveries, s.Players, s.Skipped, shortHash(s.Hash))
}

// PrintBattingTable writes the batting table for every player who batted.
// If focus is non-empty, that player's row is marked with ">".
func PrintBattingTable(w io.Writer, stats []model.PlayerStats, focus string) {
	table := newTable(w)
	table.Header(
		" ", "PLAYER", "M", "INN", "NO", "RUNS", "BF", "HS", "AVG", "SR",
		"4s", "6s", "50", "100", "0", "DUCK%", "POS", "RANGE",
	)
	for _, s := range stats {
		if s.BatInnings == 0 {
			continue
		}
		table.Append(
			marker(s.Player, focus),
			s.Player,
			strconv.Itoa(s.BatMatches),
			strconv.Itoa(s.BatInnings),
			strconv.Itoa(s.NotOuts),
			strconv.Itoa(s.Runs),
			strconv.Itoa(s.BallsFaced),
			s.HighScoreString(),
			fmt.Sprintf("%.2f", s.BattingAverage),
			fmt.Sprintf("%.1f", s.StrikeRate),
			strconv.Itoa(s.Fours),
			strconv.Itoa(s.Sixes),
			strconv.Itoa(s.Fifties),
			strconv.Itoa(s.Hundreds),
			strconv.Itoa(s.DuckOuts),
			fmt.Sprintf("%.0f%%", s.DuckOutPct),
			strconv.Itoa(s.MostCommonPosition),
			s.PositionRange(),
		)
	}
	table.Render()
}

// PrintBowlingTable writes the bowling table for every player who bowled,
// ordered by wickets then economy.
func PrintBowlingTable(w io.Writer, stats []model.PlayerStats, focus string) {
	bowlers := make([]model.PlayerStats, 0, len(stats))
	for _, s := range stats {
		if s.BallsBowled > 0 {
			bowlers = append(bowlers, s)
		}
	}
	sort.SliceStable(bowlers, func(i, j int) bool {
		if bowlers[i].Wickets != bowlers[j].Wickets {
			return bowlers[i].Wickets > bowlers[j].Wickets
		}
		return bowlers[i].Economy < bowlers[j].Economy
	})

	table := newTable(w)
	table.Header(
		" ", "PLAYER", "M", "OVERS", "RUNS", "WKTS", "MDN", "DOTS", "EXTRAS",
		"ECON", "AVG", "SR", "3W", "5W",
	)
	for _, s := range bowlers {
		table.Append(
			marker(s.Player, focus),
			s.Player,
			strconv.Itoa(s.BowlMatches),
			s.OversNotation(),
			strconv.Itoa(s.RunsConceded),
			strconv.Itoa(s.Wickets),
			strconv.Itoa(s.Maidens),
			strconv.Itoa(s.DotBalls),
			strconv.Itoa(s.ExtrasConceded),
			rate(s.Economy, s.BallsBowled > 0),
			rate(s.BowlingAverage, s.Wickets > 0),
			rate(s.BowlingStrikeRate, s.Wickets > 0),
			strconv.Itoa(s.ThreeWicketHauls),
			strconv.Itoa(s.FiveWicketHauls),
		)
	}
	table.Render()
}

// PrintAllRounderTable writes combined batting and bowling figures with the
// player's match outcomes.
func PrintAllRounderTable(w io.Writer, stats []model.PlayerStats) {
	table := newTable(w)
	table.Header(
		"PLAYER", "M", "RUNS", "AVG", "SR", "WKTS", "ECON", "BOWL AVG",
		"W", "L", "D", "WIN%", "OPP",
	)
	for _, s := range stats {
		table.Append(
			s.Player,
			strconv.Itoa(s.Matches),
			strconv.Itoa(s.Runs),
			fmt.Sprintf("%.2f", s.BattingAverage),
			fmt.Sprintf("%.1f", s.StrikeRate),
			strconv.Itoa(s.Wickets),
			rate(s.Economy, s.BallsBowled > 0),
			rate(s.BowlingAverage, s.Wickets > 0),
			strconv.Itoa(s.Wins),
			strconv.Itoa(s.Losses),
			strconv.Itoa(s.Draws),
			fmt.Sprintf("%.0f%%", s.WinPct),
			strconv.Itoa(s.UniqueOpponents),
		)
	}
	table.Render()
}

// PrintMatchTable writes one row per resolved match.
func PrintMatchTable(w io.Writer, matches []model.MatchContext) {
	table := newTable(w)
	table.Header("MATCH", "TEAMS", "1ST INN", "2ND INN", "WINNER")
	for _, m := range matches {
		winner := "—"
		if m.HasWinner() {
			winner = m.Winner
		}
		table.Append(
			m.MatchID,
			strings.Join(m.Teams, " v "),
			inningsCell(m.Innings, 1),
			inningsCell(m.Innings, 2),
			winner,
		)
	}
	table.Render()
}

// PrintMatchLines writes a player's per-match contributions.
func PrintMatchLines(w io.Writer, lines []model.PlayerMatchLine) {
	table := newTable(w)
	table.Header("MATCH", "TEAM", "RES", "RUNS", "BF", "4s", "6s", "OVERS", "CONC", "WKTS", "MDN")
	for _, l := range lines {
		overs := "—"
		if l.BallsBowled > 0 {
			overs = fmt.Sprintf("%d.%d", l.BallsBowled/6, l.BallsBowled%6)
		}
		table.Append(
			l.MatchID,
			l.Team,
			l.Result.String(),
			strconv.Itoa(l.Runs),
			strconv.Itoa(l.BallsFaced),
			strconv.Itoa(l.Fours),
			strconv.Itoa(l.Sixes),
			overs,
			strconv.Itoa(l.RunsConceded),
			strconv.Itoa(l.Wickets),
			strconv.Itoa(l.Maidens),
		)
	}
	table.Render()
}

// PrintPlayerHistory writes one row per dataset the player appears in, using
// sources to label each dataset hash.
func PrintPlayerHistory(w io.Writer, history []model.PlayerStats, sources map[string]string) {
	table := newTable(w)
	table.Header("DATASET", "SOURCE", "M", "RUNS", "HS", "AVG", "SR", "WKTS", "ECON", "W", "L", "D")
	for _, s := range history {
		table.Append(
			shortHash(s.DatasetHash),
			sources[s.DatasetHash],
			strconv.Itoa(s.Matches),
			strconv.Itoa(s.Runs),
			s.HighScoreString(),
			fmt.Sprintf("%.2f", s.BattingAverage),
			fmt.Sprintf("%.1f", s.StrikeRate),
			strconv.Itoa(s.Wickets),
			rate(s.Economy, s.BallsBowled > 0),
			strconv.Itoa(s.Wins),
			strconv.Itoa(s.Losses),
			strconv.Itoa(s.Draws),
		)
	}
	table.Render()
}

func marker(player, focus string) string {
	if focus != "" && strings.EqualFold(player, focus) {
		return ">"
	}
	return " "
}

// rate renders a ratio, or a dash when its denominator was zero.
func rate(v float64, ok bool) string {
	if !ok {
		return "—"
	}
	return fmt.Sprintf("%.2f", v)
}

func inningsCell(innings map[int]model.InningsTotal, n int) string {
	it, ok := innings[n]
	if !ok {
		return "—"
	}
	return fmt.Sprintf("%s %d", it.Team, it.Runs)
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
