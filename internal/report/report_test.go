package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pable/go-cricket-metrics/internal/model"
)

func sampleStats() []model.PlayerStats {
	return []model.PlayerStats{
		{
			Player: "SR Tendulkar", BatMatches: 2, BatInnings: 2, Runs: 142, BallsFaced: 110,
			HighScore: 100, HighScoreNotOut: true, Hundreds: 1, BattingAverage: 142,
			MostCommonPosition: 1, PositionMin: 1, PositionMax: 1,
		},
		{
			Player: "Z Khan", BatMatches: 1, BatInnings: 1, Runs: 0, DuckOuts: 1, Dismissals: 1,
			BowlMatches: 2, BallsBowled: 45, OversCompleted: 7, RunsConceded: 51, Wickets: 3,
			Economy: 7.29, BowlingAverage: 17, BowlingStrikeRate: 15,
		},
		{Player: "A Kumble", BowlMatches: 1, BallsBowled: 4, RunsConceded: 9},
	}
}

func TestPrintBattingTable(t *testing.T) {
	var buf bytes.Buffer
	PrintBattingTable(&buf, sampleStats(), "sr tendulkar")
	out := buf.String()

	if !strings.Contains(out, "100*") {
		t.Errorf("expected not-out high score marker, got:\n%s", out)
	}
	if strings.Contains(out, "A Kumble") {
		t.Error("bowler who never batted should be omitted")
	}
	if !strings.Contains(out, ">") {
		t.Error("expected focus marker for SR Tendulkar")
	}
}

func TestPrintBowlingTable(t *testing.T) {
	var buf bytes.Buffer
	PrintBowlingTable(&buf, sampleStats(), "")
	out := buf.String()

	if strings.Contains(out, "SR Tendulkar") {
		t.Error("non-bowler should be omitted")
	}
	if !strings.Contains(out, "7.3") || !strings.Contains(out, "0.4") {
		t.Errorf("expected overs notation 7.3 and 0.4, got:\n%s", out)
	}
	// Most wickets first.
	if strings.Index(out, "Z Khan") > strings.Index(out, "A Kumble") {
		t.Errorf("expected Z Khan before A Kumble:\n%s", out)
	}
}

func TestPrintMatchTable(t *testing.T) {
	var buf bytes.Buffer
	PrintMatchTable(&buf, []model.MatchContext{
		{
			MatchID: "7", Teams: []string{"IND", "PAK"},
			Innings: map[int]model.InningsTotal{1: {Team: "PAK", Runs: 151}, 2: {Team: "IND", Runs: 152}},
			Winner:  "IND",
		},
		{MatchID: "8", Teams: []string{"AUS", "ENG"}, Innings: map[int]model.InningsTotal{1: {Team: "ENG", Runs: 90}}},
	})
	out := buf.String()
	for _, want := range []string{"IND v PAK", "PAK 151", "IND 152", "ENG 90"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestPrintDatasetSummaryShortensHash(t *testing.T) {
	var buf bytes.Buffer
	PrintDatasetSummary(&buf, model.DatasetSummary{Hash: strings.Repeat("ab", 32), Source: "t20.csv"})
	out := buf.String()
	if !strings.Contains(out, "Hash: abababababab\n") {
		t.Errorf("expected 12-char hash, got %q", out)
	}
}
