package aggregator

import (
	"sort"

	"github.com/pable/go-cricket-metrics/internal/model"
)

// ResolveMatch derives the match context from every delivery of one match.
// Only innings 1 and 2 decide the winner; equal totals, a missing innings or
// an unknown batting side leave the match without a winner.
func ResolveMatch(matchID string, deliveries []model.Delivery) model.MatchContext {
	mc := model.MatchContext{
		MatchID: matchID,
		Innings: make(map[int]model.InningsTotal),
	}

	teams := make(map[string]struct{})
	for i := range deliveries {
		d := &deliveries[i]
		if !isNullIdentity(d.BattingTeam) {
			teams[d.BattingTeam] = struct{}{}
		}
		if !isNullIdentity(d.BowlingTeam) {
			teams[d.BowlingTeam] = struct{}{}
		}
		if d.Inning <= 0 {
			continue
		}
		inn := mc.Innings[d.Inning]
		inn.Runs += d.TotalRuns
		if inn.Team == "" && !isNullIdentity(d.BattingTeam) {
			inn.Team = d.BattingTeam
		}
		mc.Innings[d.Inning] = inn
	}
	for t := range teams {
		mc.Teams = append(mc.Teams, t)
	}
	sort.Strings(mc.Teams)

	first, ok1 := mc.Innings[1]
	second, ok2 := mc.Innings[2]
	if !ok1 || !ok2 || first.Team == "" || second.Team == "" || first.Team == second.Team {
		return mc
	}
	switch {
	case first.Runs > second.Runs:
		mc.Winner = first.Team
	case second.Runs > first.Runs:
		mc.Winner = second.Team
	}
	return mc
}

// ResolveMatches groups deliveries by match and resolves each one. Deliveries
// without a match id are ignored.
func ResolveMatches(deliveries []model.Delivery) map[string]model.MatchContext {
	byMatch := make(map[string][]model.Delivery)
	for _, d := range deliveries {
		if isNullIdentity(d.MatchID) {
			continue
		}
		byMatch[d.MatchID] = append(byMatch[d.MatchID], d)
	}
	out := make(map[string]model.MatchContext, len(byMatch))
	for id, ds := range byMatch {
		out[id] = ResolveMatch(id, ds)
	}
	return out
}
