package aggregator

import (
	"sort"
	"strings"

	"github.com/pable/go-cricket-metrics/internal/model"
)

// safeDiv returns num/den, or 0 when den is not positive.
func safeDiv(num, den float64) float64 {
	if den <= 0 {
		return 0
	}
	return num / den
}

// Finalize closes any open innings and converts every player state into an
// output record plus one line per (player, match). Players are ordered by
// runs, then wickets, then name; lines by player then match.
func Finalize(agg *Aggregator, contexts map[string]model.MatchContext, datasetHash string) ([]model.PlayerStats, []model.PlayerMatchLine) {
	agg.Finish()

	var stats []model.PlayerStats
	var lines []model.PlayerMatchLine
	for _, p := range agg.players {
		if len(p.batMatches) == 0 && len(p.bowlMatches) == 0 {
			continue
		}
		s := model.PlayerStats{DatasetHash: datasetHash, Player: p.name}
		finalizeBatting(&s, p)
		finalizePositions(&s, p.positions)
		finalizeBowling(&s, p)
		lines = append(lines, finalizeOutcome(&s, p, contexts)...)
		stats = append(stats, s)
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Runs != stats[j].Runs {
			return stats[i].Runs > stats[j].Runs
		}
		if stats[i].Wickets != stats[j].Wickets {
			return stats[i].Wickets > stats[j].Wickets
		}
		return stats[i].Player < stats[j].Player
	})
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].Player != lines[j].Player {
			return lines[i].Player < lines[j].Player
		}
		return model.CompareMatchID(lines[i].MatchID, lines[j].MatchID) < 0
	})
	for i := range lines {
		lines[i].DatasetHash = datasetHash
	}
	return stats, lines
}

func finalizeBatting(s *model.PlayerStats, p *playerState) {
	s.BatMatches = len(p.batMatches)
	s.BatInnings = len(p.batInnings)
	s.NotOuts = p.notOuts
	s.Runs = p.runs
	s.BallsFaced = p.ballsFaced
	s.Fours = p.fours
	s.Sixes = p.sixes
	s.Fifties = p.fifties
	s.Hundreds = p.hundreds
	s.HighScore = p.highScore
	s.HighScoreNotOut = p.highNotOut
	s.Dismissals = p.dismissals
	s.DuckOuts = p.duckOuts

	// Undismissed players average their total runs.
	s.BattingAverage = float64(p.runs) / float64(max(1, p.dismissals))
	s.StrikeRate = safeDiv(float64(p.runs)*100, float64(p.ballsFaced))
	s.DuckOutPct = safeDiv(float64(p.duckOuts)*100, float64(p.dismissals))

	m := float64(s.BatMatches)
	s.AvgRunsPerMatch = safeDiv(float64(p.runs), m)
	s.AvgBallsPerMatch = safeDiv(float64(p.ballsFaced), m)
	s.RF50 = safeDiv(float64(p.fifties), m)
	s.RF100 = safeDiv(float64(p.hundreds), m)
	s.BatOpponents = sortedKeys(p.batOpponents)
}

// finalizePositions fills the batting-position block. The most common
// position breaks ties toward the lower position number.
func finalizePositions(s *model.PlayerStats, positions []int) {
	if len(positions) == 0 {
		return
	}
	counts := make(map[int]int)
	sum := 0
	s.PositionMin, s.PositionMax = positions[0], positions[0]
	for _, pos := range positions {
		counts[pos]++
		sum += pos
		s.PositionMin = min(s.PositionMin, pos)
		s.PositionMax = max(s.PositionMax, pos)
	}

	distinct := make([]int, 0, len(counts))
	for pos := range counts {
		distinct = append(distinct, pos)
	}
	sort.Ints(distinct)
	best := distinct[0]
	for _, pos := range distinct[1:] {
		if counts[pos] > counts[best] {
			best = pos
		}
	}

	n := float64(len(positions))
	s.MostCommonPosition = best
	s.AveragePosition = float64(sum) / n
	s.PositionConsistency = float64(counts[best]) / n * 100
	s.OpeningInnings = counts[1]
	s.TopOrderInnings = counts[1] + counts[2] + counts[3]
}

func finalizeBowling(s *model.PlayerStats, p *playerState) {
	s.BowlMatches = len(p.bowlMatches)
	s.BowlInnings = len(p.bowlInnings)
	s.BallsBowled = p.ballsBowled
	s.OversCompleted = p.overs
	s.RunsConceded = p.runsConceded
	s.Wickets = p.wickets
	s.Maidens = p.maidens
	s.DotBalls = p.dotBalls
	s.ExtrasConceded = p.extrasConceded
	for _, w := range p.wicketsByInnings {
		if w >= 3 {
			s.ThreeWicketHauls++
		}
		if w >= 5 {
			s.FiveWicketHauls++
		}
	}

	s.Economy = safeDiv(float64(p.runsConceded)*6, float64(p.ballsBowled))
	s.BowlingAverage = safeDiv(float64(p.runsConceded), float64(p.wickets))
	s.BowlingStrikeRate = safeDiv(float64(p.ballsBowled), float64(p.wickets))

	m := float64(s.BowlMatches)
	s.AvgOversPerMatch = safeDiv(float64(p.overs), m)
	s.AvgConcededPerMatch = safeDiv(float64(p.runsConceded), m)
	s.AvgWicketsPerMatch = safeDiv(float64(p.wickets), m)
	s.AvgMaidensPerMatch = safeDiv(float64(p.maidens), m)
	s.BowlOpponents = sortedKeys(p.bowlOpponents)
}

// finalizeOutcome classifies every match the player appeared in as exactly one
// of win, loss or draw and returns the per-match lines.
func finalizeOutcome(s *model.PlayerStats, p *playerState, contexts map[string]model.MatchContext) []model.PlayerMatchLine {
	lines := make([]model.PlayerMatchLine, 0, len(p.matches))
	for id, l := range p.matches {
		result := classify(l.teams, contexts[id])
		switch result {
		case model.ResultWin:
			s.Wins++
		case model.ResultLoss:
			s.Losses++
		default:
			s.Draws++
		}
		lines = append(lines, model.PlayerMatchLine{
			Player:       p.name,
			MatchID:      id,
			Team:         strings.Join(sortedKeys(l.teams), "|"),
			Result:       result,
			Runs:         l.runs,
			BallsFaced:   l.ballsFaced,
			Fours:        l.fours,
			Sixes:        l.sixes,
			BallsBowled:  l.ballsBowled,
			RunsConceded: l.runsConceded,
			Wickets:      l.wickets,
			Maidens:      l.maidens,
		})
	}

	s.Matches = len(p.matches)
	s.WinPct = safeDiv(float64(s.Wins)*100, float64(s.Matches))
	s.LossPct = safeDiv(float64(s.Losses)*100, float64(s.Matches))

	opp := make(stringSet)
	opp.union(p.batOpponents)
	opp.union(p.bowlOpponents)
	s.UniqueOpponents = len(opp)
	return lines
}

func classify(teams stringSet, mc model.MatchContext) model.Result {
	if !mc.HasWinner() {
		return model.ResultDraw
	}
	if _, ok := teams[mc.Winner]; ok {
		return model.ResultWin
	}
	return model.ResultLoss
}

func sortedKeys(s stringSet) []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func sortedContexts(contexts map[string]model.MatchContext) []model.MatchContext {
	out := make([]model.MatchContext, 0, len(contexts))
	for _, mc := range contexts {
		out = append(out, mc)
	}
	sort.Slice(out, func(i, j int) bool {
		return model.CompareMatchID(out[i].MatchID, out[j].MatchID) < 0
	})
	return out
}

// SelectAllRounders returns the players who batted in at least one match and
// took at least minWickets wickets, keeping the input order.
func SelectAllRounders(stats []model.PlayerStats, minWickets int) []model.PlayerStats {
	var out []model.PlayerStats
	for _, s := range stats {
		if s.BatMatches > 0 && s.Wickets >= minWickets {
			out = append(out, s)
		}
	}
	return out
}
