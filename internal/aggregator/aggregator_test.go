package aggregator

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/pable/go-cricket-metrics/internal/model"
)

// ---- builders ----

type opt func(*model.Delivery)

func extra(t model.ExtrasType, runs int) opt {
	return func(d *model.Delivery) {
		d.Extras = t
		d.ExtraRuns = runs
	}
}

func out(who string, kind model.DismissalKind) opt {
	return func(d *model.Delivery) {
		d.IsWicket = true
		d.PlayerDismissed = who
		d.Dismissal = kind
	}
}

func nonStriker(name string) opt {
	return func(d *model.Delivery) { d.NonStriker = name }
}

func teams(batting, bowling string) opt {
	return func(d *model.Delivery) {
		d.BattingTeam = batting
		d.BowlingTeam = bowling
	}
}

// ball builds one delivery. Team A bats first, team B second.
func ball(match string, inning, over, n int, batter, bowler string, runs int, opts ...opt) model.Delivery {
	d := model.Delivery{
		MatchID:     match,
		Inning:      inning,
		Over:        over,
		Ball:        n,
		Batter:      batter,
		Bowler:      bowler,
		BatsmanRuns: runs,
		BattingTeam: "A",
		BowlingTeam: "B",
	}
	if inning%2 == 0 {
		d.BattingTeam, d.BowlingTeam = "B", "A"
	}
	for _, o := range opts {
		o(&d)
	}
	d.TotalRuns = d.BatsmanRuns + d.ExtraRuns
	return d
}

// over builds a run of legal deliveries numbered from 1, one per runs value.
func over(match string, inning, ov int, batter, bowler string, runs ...int) []model.Delivery {
	out := make([]model.Delivery, 0, len(runs))
	for i, r := range runs {
		out = append(out, ball(match, inning, ov, i+1, batter, bowler, r))
	}
	return out
}

func concat(parts ...[]model.Delivery) []model.Delivery {
	var all []model.Delivery
	for _, p := range parts {
		all = append(all, p...)
	}
	return all
}

func run(t *testing.T, deliveries []model.Delivery) *Result {
	t.Helper()
	res, err := Aggregate(&model.Dataset{Hash: "testhash", Deliveries: deliveries})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return res
}

func statsFor(t *testing.T, res *Result, player string) model.PlayerStats {
	t.Helper()
	for _, s := range res.Players {
		if s.Player == player {
			return s
		}
	}
	t.Fatalf("player %q not found in results", player)
	return model.PlayerStats{}
}

// ---- batting ----

func TestNoBallBoundaryCountsAsFacedBall(t *testing.T) {
	res := run(t, []model.Delivery{
		ball("1", 1, 0, 1, "bat", "bowl", 4, extra(model.ExtrasNoBall, 1)),
	})
	s := statsFor(t, res, "bat")
	if s.Runs != 4 || s.BallsFaced != 1 || s.Fours != 1 {
		t.Errorf("no-ball four: want runs=4 balls=1 fours=1, got runs=%d balls=%d fours=%d",
			s.Runs, s.BallsFaced, s.Fours)
	}
	b := statsFor(t, res, "bowl")
	if b.RunsConceded != 5 {
		t.Errorf("bowler conceded: want 5 (bat runs + no-ball extra), got %d", b.RunsConceded)
	}
	if b.BallsBowled != 1 {
		t.Errorf("no-ball counts toward bowler's balls: want 1, got %d", b.BallsBowled)
	}
}

func TestWideIsNotFaced(t *testing.T) {
	res := run(t, []model.Delivery{
		ball("1", 1, 0, 1, "bat", "bowl", 0, extra(model.ExtrasWide, 1)),
	})
	s := statsFor(t, res, "bat")
	if s.Runs != 0 || s.BallsFaced != 0 {
		t.Errorf("wide: want runs=0 balls=0, got runs=%d balls=%d", s.Runs, s.BallsFaced)
	}
	b := statsFor(t, res, "bowl")
	if b.BallsBowled != 0 || b.RunsConceded != 1 || b.ExtrasConceded != 1 {
		t.Errorf("wide: want balls=0 conceded=1 extras=1, got balls=%d conceded=%d extras=%d",
			b.BallsBowled, b.RunsConceded, b.ExtrasConceded)
	}
}

func TestByesAndLegByesNotCredited(t *testing.T) {
	res := run(t, []model.Delivery{
		ball("1", 1, 0, 1, "bat", "bowl", 0, extra(model.ExtrasBye, 4)),
		ball("1", 1, 0, 2, "bat", "bowl", 0, extra(model.ExtrasLegBye, 1)),
	})
	s := statsFor(t, res, "bat")
	if s.Runs != 0 || s.BallsFaced != 0 || s.Fours != 0 {
		t.Errorf("byes: want runs=0 balls=0 fours=0, got runs=%d balls=%d fours=%d",
			s.Runs, s.BallsFaced, s.Fours)
	}
	b := statsFor(t, res, "bowl")
	if b.RunsConceded != 0 || b.BallsBowled != 2 {
		t.Errorf("byes: want conceded=0 balls=2, got conceded=%d balls=%d", b.RunsConceded, b.BallsBowled)
	}
}

func TestBoundaryCounts(t *testing.T) {
	res := run(t, over("1", 1, 0, "bat", "bowl", 4, 6, 4, 1, 6, 3))
	s := statsFor(t, res, "bat")
	if s.Fours != 2 || s.Sixes != 2 || s.Runs != 24 {
		t.Errorf("want fours=2 sixes=2 runs=24, got fours=%d sixes=%d runs=%d", s.Fours, s.Sixes, s.Runs)
	}
	if s.StrikeRate != 400 {
		t.Errorf("strike rate: want 400, got %f", s.StrikeRate)
	}
}

func TestDismissedAtExactlyFifty(t *testing.T) {
	deliveries := concat(
		over("1", 1, 0, "bat", "bowl", 6, 6, 6, 6, 6, 6),
		over("1", 1, 1, "bat", "bowl", 4, 4, 6, 0, 0),
		[]model.Delivery{ball("1", 1, 1, 6, "bat", "bowl", 0, out("bat", model.DismissalBowled))},
	)
	s := statsFor(t, run(t, deliveries), "bat")
	if s.Runs != 50 {
		t.Fatalf("setup: want 50 runs, got %d", s.Runs)
	}
	if s.Fifties != 1 || s.Hundreds != 0 || s.DuckOuts != 0 {
		t.Errorf("want fifties=1 hundreds=0 ducks=0, got fifties=%d hundreds=%d ducks=%d",
			s.Fifties, s.Hundreds, s.DuckOuts)
	}
	if s.Dismissals != 1 || s.NotOuts != 0 {
		t.Errorf("want dismissals=1 notOuts=0, got %d/%d", s.Dismissals, s.NotOuts)
	}
}

func TestNotOutMilestones(t *testing.T) {
	cases := []struct {
		name               string
		runs               []int
		fifties, hundreds int
	}{
		{"forty-nine", []int{6, 6, 6, 6, 6, 6, 6, 6, 1}, 0, 0},
		{"fifty", []int{6, 6, 6, 6, 6, 6, 6, 6, 2}, 1, 0},
		{"ninety-nine", []int{6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 3}, 1, 0},
		{"hundred", []int{6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 4}, 0, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var deliveries []model.Delivery
			for i, r := range tc.runs {
				deliveries = append(deliveries, ball("1", 1, i/6, i%6+1, "bat", "bowl", r))
			}
			s := statsFor(t, run(t, deliveries), "bat")
			if s.Fifties != tc.fifties || s.Hundreds != tc.hundreds {
				t.Errorf("want fifties=%d hundreds=%d, got %d/%d", tc.fifties, tc.hundreds, s.Fifties, s.Hundreds)
			}
			if s.NotOuts != 1 || s.Dismissals != 0 {
				t.Errorf("want notOuts=1 dismissals=0, got %d/%d", s.NotOuts, s.Dismissals)
			}
			if !s.HighScoreNotOut || s.HighScore != s.Runs {
				t.Errorf("high score: want %d*, got %s", s.Runs, s.HighScoreString())
			}
		})
	}
}

// TestNotOutClosedAtInningsBoundary: an unbeaten 60 in the first innings must
// be scored when the second innings starts, not merged with later runs.
func TestNotOutClosedAtInningsBoundary(t *testing.T) {
	var deliveries []model.Delivery
	for i := 0; i < 10; i++ {
		deliveries = append(deliveries, ball("1", 1, i/6, i%6+1, "opener", "bowlerB", 6))
	}
	// opener bowls in the second innings and later bats in match 2 for 40.
	deliveries = append(deliveries, over("1", 2, 0, "chaser", "opener", 1, 1, 1, 1, 1, 1)...)
	for i := 0; i < 10; i++ {
		deliveries = append(deliveries, ball("2", 1, i/6, i%6+1, "opener", "bowlerB", 4))
	}

	s := statsFor(t, run(t, deliveries), "opener")
	if s.Fifties != 1 || s.Hundreds != 0 {
		t.Errorf("want exactly one fifty (60* then 40*), got fifties=%d hundreds=%d", s.Fifties, s.Hundreds)
	}
	if s.BatInnings != 2 || s.NotOuts != 2 {
		t.Errorf("want innings=2 notOuts=2, got %d/%d", s.BatInnings, s.NotOuts)
	}
	if s.HighScore != 60 || !s.HighScoreNotOut {
		t.Errorf("want high score 60*, got %s", s.HighScoreString())
	}
}

// TestRetiredBatterReturns: a batter who retires and comes back continues the
// same innings, and nothing carries into the next match.
func TestRetiredBatterReturns(t *testing.T) {
	deliveries := []model.Delivery{
		ball("1", 1, 0, 1, "X", "bowl", 1, out("X", model.DismissalRetired)),
		ball("1", 1, 0, 2, "Y", "bowl", 0),
	}
	for i := 0; i < 5; i++ {
		deliveries = append(deliveries, ball("1", 1, 1, i+1, "X", "bowl", 6))
	}
	deliveries = append(deliveries, over("1", 2, 0, "chaser", "bowl2", 1, 1, 1, 1, 1, 1)...)
	for i := 0; i < 5; i++ {
		deliveries = append(deliveries, ball("2", 1, 0, i+1, "X", "bowl", 5))
	}

	s := statsFor(t, run(t, deliveries), "X")
	if s.Runs != 56 || s.BatInnings != 2 {
		t.Errorf("want runs=56 innings=2, got %d/%d", s.Runs, s.BatInnings)
	}
	if s.Fifties != 0 {
		t.Errorf("31* and 25* are not fifties, got fifties=%d", s.Fifties)
	}
	if s.NotOuts != 2 || s.Dismissals != 0 {
		t.Errorf("want notOuts=2 dismissals=0, got %d/%d", s.NotOuts, s.Dismissals)
	}
	if s.HighScore != 31 || !s.HighScoreNotOut {
		t.Errorf("want high score 31*, got %s", s.HighScoreString())
	}
}

func TestRetiredBatterNotReturningIsOut(t *testing.T) {
	res := run(t, concat(
		over("1", 1, 0, "X", "bowl", 6, 6, 6, 6, 6),
		[]model.Delivery{
			ball("1", 1, 0, 6, "X", "bowl", 4, out("X", model.DismissalRetired)),
			ball("1", 1, 1, 1, "Y", "bowl", 1),
		},
		over("2", 1, 0, "X", "bowl", 1, 1),
	))
	s := statsFor(t, res, "X")
	if s.Dismissals != 1 || s.NotOuts != 1 || s.Fifties != 0 {
		t.Errorf("want dismissals=1 notOuts=1 fifties=0, got %d/%d/%d", s.Dismissals, s.NotOuts, s.Fifties)
	}
	// 34 was scored before retiring; 2* in match 2 does not add to it.
	if s.HighScore != 34 || s.HighScoreNotOut {
		t.Errorf("want high score 34, got %s", s.HighScoreString())
	}
}

// TestDismissedBatterReappearing: deliveries for a batter after a terminal
// dismissal count toward totals but neither open a second innings nor leak
// into the next one.
func TestDismissedBatterReappearing(t *testing.T) {
	deliveries := []model.Delivery{
		ball("1", 1, 0, 1, "X", "bowl", 0, out("X", model.DismissalBowled)),
	}
	for i := 0; i < 9; i++ {
		deliveries = append(deliveries, ball("1", 1, 1+i/6, i%6+1, "X", "bowl", 6))
	}
	deliveries = append(deliveries, over("2", 1, 0, "X", "bowl", 4, 4, 4, 4, 4)...)

	s := statsFor(t, run(t, deliveries), "X")
	if s.Runs != 74 || s.BatInnings != 2 {
		t.Errorf("want runs=74 innings=2, got %d/%d", s.Runs, s.BatInnings)
	}
	if s.Fifties != 0 {
		t.Errorf("runs after a dismissal must not make a fifty, got %d", s.Fifties)
	}
	if s.Dismissals != 1 || s.NotOuts != 1 || s.DuckOuts != 1 {
		t.Errorf("want dismissals=1 notOuts=1 ducks=1, got %d/%d/%d", s.Dismissals, s.NotOuts, s.DuckOuts)
	}
	if s.HighScore != 20 || !s.HighScoreNotOut {
		t.Errorf("want high score 20*, got %s", s.HighScoreString())
	}
}

func TestDuckOut(t *testing.T) {
	res := run(t, []model.Delivery{
		ball("1", 1, 0, 1, "bat", "bowl", 0),
		ball("1", 1, 0, 2, "bat", "bowl", 0, out("bat", model.DismissalLBW)),
		ball("1", 1, 0, 3, "next", "bowl", 0),
	})
	s := statsFor(t, res, "bat")
	if s.DuckOuts != 1 || s.DuckOutPct != 100 {
		t.Errorf("want ducks=1 duck%%=100, got %d/%f", s.DuckOuts, s.DuckOutPct)
	}
	// next is not out on 0: not a duck.
	n := statsFor(t, res, "next")
	if n.DuckOuts != 0 || n.NotOuts != 1 {
		t.Errorf("not-out zero: want ducks=0 notOuts=1, got %d/%d", n.DuckOuts, n.NotOuts)
	}
}

func TestNonStrikerRunOutNotChargedToStriker(t *testing.T) {
	res := run(t, []model.Delivery{
		ball("1", 1, 0, 1, "striker", "bowl", 1, nonStriker("partner")),
		ball("1", 1, 0, 2, "partner", "bowl", 1, nonStriker("striker")),
		ball("1", 1, 0, 3, "striker", "bowl", 0, nonStriker("partner"), out("partner", model.DismissalRunOut)),
	})
	s := statsFor(t, res, "striker")
	if s.Dismissals != 0 || s.NotOuts != 1 {
		t.Errorf("striker: want dismissals=0 notOuts=1, got %d/%d", s.Dismissals, s.NotOuts)
	}
	p := statsFor(t, res, "partner")
	if p.Dismissals != 1 || p.NotOuts != 0 {
		t.Errorf("partner: want dismissals=1 notOuts=0, got %d/%d", p.Dismissals, p.NotOuts)
	}
	b := statsFor(t, res, "bowl")
	if b.Wickets != 0 {
		t.Errorf("run out must not credit bowler, got wickets=%d", b.Wickets)
	}
}

func TestBattingPositions(t *testing.T) {
	deliveries := []model.Delivery{
		// innings 1: X opens, Y second, Z third
		ball("1", 1, 0, 1, "X", "b1", 0),
		ball("1", 1, 0, 2, "Y", "b1", 0),
		ball("1", 1, 0, 3, "X", "b1", 0),
		ball("1", 1, 0, 4, "Z", "b1", 0),
		// match 2: Z opens, X third
		ball("2", 1, 0, 1, "Z", "b1", 0),
		ball("2", 1, 0, 2, "Y", "b1", 0),
		ball("2", 1, 0, 3, "X", "b1", 0),
		// match 3: Z opens
		ball("3", 1, 0, 1, "Z", "b1", 0),
	}
	res := run(t, deliveries)

	x := statsFor(t, res, "X")
	// X: positions [1, 3]; tie broken toward 1.
	if x.MostCommonPosition != 1 || x.AveragePosition != 2 || x.PositionConsistency != 50 {
		t.Errorf("X: want mode=1 avg=2 consistency=50, got %d/%f/%f",
			x.MostCommonPosition, x.AveragePosition, x.PositionConsistency)
	}
	if x.PositionRange() != "1-3" || x.OpeningInnings != 1 || x.TopOrderInnings != 2 {
		t.Errorf("X: want range 1-3 opening=1 top=2, got %s/%d/%d",
			x.PositionRange(), x.OpeningInnings, x.TopOrderInnings)
	}

	z := statsFor(t, res, "Z")
	// Z: positions [3, 1, 1]
	if z.MostCommonPosition != 1 || z.OpeningInnings != 2 {
		t.Errorf("Z: want mode=1 opening=2, got %d/%d", z.MostCommonPosition, z.OpeningInnings)
	}

	b := statsFor(t, res, "b1")
	if b.MostCommonPosition != 0 || b.PositionRange() != "0" {
		t.Errorf("non-batter: want empty position block, got %d/%s", b.MostCommonPosition, b.PositionRange())
	}
}

// ---- bowling ----

func TestMaidenOver(t *testing.T) {
	res := run(t, over("M1", 1, 3, "bat", "bowl", 0, 0, 0, 0, 0, 0))
	b := statsFor(t, res, "bowl")
	if b.Maidens != 1 || b.OversCompleted != 1 || b.BallsBowled != 6 {
		t.Errorf("want maidens=1 overs=1 balls=6, got %d/%d/%d", b.Maidens, b.OversCompleted, b.BallsBowled)
	}
	if b.DotBalls != 6 {
		t.Errorf("want 6 dot balls, got %d", b.DotBalls)
	}
}

// TestSeventhBallStartsNewBucket: a seventh legal ball logged in the same over
// must not complete a second over or a second maiden.
func TestSeventhBallStartsNewBucket(t *testing.T) {
	res := run(t, over("M1", 1, 3, "bat", "bowl", 0, 0, 0, 0, 0, 0, 0))
	b := statsFor(t, res, "bowl")
	if b.Maidens != 1 || b.OversCompleted != 1 || b.BallsBowled != 7 {
		t.Errorf("want maidens=1 overs=1 balls=7, got %d/%d/%d", b.Maidens, b.OversCompleted, b.BallsBowled)
	}
}

func TestWideBreaksMaiden(t *testing.T) {
	deliveries := concat(
		over("1", 1, 0, "bat", "bowl", 0, 0, 0),
		[]model.Delivery{ball("1", 1, 0, 4, "bat", "bowl", 0, extra(model.ExtrasWide, 1))},
	)
	for n := 5; n <= 7; n++ {
		deliveries = append(deliveries, ball("1", 1, 0, n, "bat", "bowl", 0))
	}
	b := statsFor(t, run(t, deliveries), "bowl")
	if b.OversCompleted != 1 || b.Maidens != 0 || b.BallsBowled != 6 {
		t.Errorf("want overs=1 maidens=0 balls=6, got %d/%d/%d", b.OversCompleted, b.Maidens, b.BallsBowled)
	}
}

func TestByesKeepMaiden(t *testing.T) {
	deliveries := concat(
		over("1", 1, 0, "bat", "bowl", 0, 0, 0, 0, 0),
		[]model.Delivery{ball("1", 1, 0, 6, "bat", "bowl", 0, extra(model.ExtrasLegBye, 2))},
	)
	b := statsFor(t, run(t, deliveries), "bowl")
	if b.Maidens != 1 {
		t.Errorf("leg-byes are not charged to the bowler: want maiden, got %d", b.Maidens)
	}
}

func TestIncompleteOverIsNotCounted(t *testing.T) {
	b := statsFor(t, run(t, over("1", 1, 0, "bat", "bowl", 1, 0, 0, 0, 0)), "bowl")
	if b.OversCompleted != 0 || b.Maidens != 0 || b.OversNotation() != "0.5" {
		t.Errorf("want overs=0 maidens=0 notation 0.5, got %d/%d/%s", b.OversCompleted, b.Maidens, b.OversNotation())
	}
	// Economy still uses the five balls bowled.
	if math.Abs(b.Economy-1.2) > 1e-9 {
		t.Errorf("want economy 1.2, got %f", b.Economy)
	}
}

func TestEconomyUsesBallsBowled(t *testing.T) {
	cases := []struct {
		name    string
		runs    []int
		economy float64
	}{
		{"one over and five balls", []int{2, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1}, 12 * 6.0 / 11},
		{"five balls", []int{6, 6, 6, 6, 6}, 36},
		{"two overs", []int{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1}, 6},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var deliveries []model.Delivery
			for i, r := range tc.runs {
				deliveries = append(deliveries, ball("1", 1, i/6, i%6+1, "bat", "bowl", r))
			}
			b := statsFor(t, run(t, deliveries), "bowl")
			if math.Abs(b.Economy-tc.economy) > 1e-9 {
				t.Errorf("want economy %f, got %f", tc.economy, b.Economy)
			}
		})
	}
}

func TestWicketCredit(t *testing.T) {
	kinds := []struct {
		kind    model.DismissalKind
		credits bool
	}{
		{model.DismissalBowled, true},
		{model.DismissalCaught, true},
		{model.DismissalLBW, true},
		{model.DismissalStumped, true},
		{model.DismissalHitWicket, true},
		{model.DismissalCaughtAndBowled, true},
		{model.DismissalRunOut, false},
		{model.DismissalRetired, false},
		{model.DismissalOther, false},
	}
	for _, k := range kinds {
		t.Run(k.kind.String(), func(t *testing.T) {
			res := run(t, []model.Delivery{
				ball("1", 1, 0, 1, "bat", "bowl", 0, out("bat", k.kind)),
			})
			b := statsFor(t, res, "bowl")
			want := 0
			if k.credits {
				want = 1
			}
			if b.Wickets != want {
				t.Errorf("wickets: want %d, got %d", want, b.Wickets)
			}
			// The batter is out whatever the kind.
			if s := statsFor(t, res, "bat"); s.Dismissals != 1 {
				t.Errorf("batter dismissals: want 1, got %d", s.Dismissals)
			}
		})
	}
}

func TestWicketHaulsAndBowlingRates(t *testing.T) {
	var deliveries []model.Delivery
	batters := []string{"b1", "b2", "b3", "b4", "b5", "b6"}
	for i, name := range batters[:5] {
		deliveries = append(deliveries, ball("1", 1, 0, i+1, name, "quick", 0, out(name, model.DismissalCaught)))
	}
	deliveries = append(deliveries, ball("1", 1, 0, 6, "b6", "quick", 6))

	b := statsFor(t, run(t, deliveries), "quick")
	if b.Wickets != 5 || b.FiveWicketHauls != 1 || b.ThreeWicketHauls != 1 {
		t.Errorf("want wickets=5 5W=1 3W=1, got %d/%d/%d", b.Wickets, b.FiveWicketHauls, b.ThreeWicketHauls)
	}
	if b.Economy != 6 || b.BowlingAverage != 1.2 || b.BowlingStrikeRate != 1.2 {
		t.Errorf("want econ=6 avg=1.2 sr=1.2, got %f/%f/%f", b.Economy, b.BowlingAverage, b.BowlingStrikeRate)
	}
}

// ---- outcome ----

func TestMatchOutcomes(t *testing.T) {
	deliveries := concat(
		// match 1: A 10, B 6 -> A wins
		over("1", 1, 0, "a1", "b1", 1, 1, 1, 1, 1, 5),
		over("1", 2, 0, "b1", "a1", 1, 1, 1, 1, 1, 1),
		// match 2: A 6, B 6 -> tie
		over("2", 1, 0, "a1", "b1", 1, 1, 1, 1, 1, 1),
		over("2", 2, 0, "b1", "a1", 1, 1, 1, 1, 1, 1),
		// match 3: only one innings -> no result
		over("3", 1, 0, "a1", "b1", 4, 4, 4, 4, 4, 4),
	)
	res := run(t, deliveries)

	if len(res.Matches) != 3 {
		t.Fatalf("want 3 match contexts, got %d", len(res.Matches))
	}
	winners := map[string]string{}
	for _, mc := range res.Matches {
		winners[mc.MatchID] = mc.Winner
	}
	if winners["1"] != "A" || winners["2"] != "" || winners["3"] != "" {
		t.Errorf("winners: want 1=A 2=none 3=none, got %v", winners)
	}

	a := statsFor(t, res, "a1")
	if a.Wins != 1 || a.Losses != 0 || a.Draws != 2 || a.Matches != 3 {
		t.Errorf("a1: want W1 L0 D2 of 3, got W%d L%d D%d of %d", a.Wins, a.Losses, a.Draws, a.Matches)
	}
	b := statsFor(t, res, "b1")
	if b.Wins != 0 || b.Losses != 1 || b.Draws != 2 {
		t.Errorf("b1: want W0 L1 D2, got W%d L%d D%d", b.Wins, b.Losses, b.Draws)
	}
	if math.Abs(b.LossPct-100.0/3) > 1e-9 {
		t.Errorf("b1 loss%%: want 33.33, got %f", b.LossPct)
	}

	for _, s := range res.Players {
		if s.Wins+s.Losses+s.Draws != s.Matches {
			t.Errorf("%s: wins+losses+draws=%d, matches=%d", s.Player, s.Wins+s.Losses+s.Draws, s.Matches)
		}
	}
}

func TestSingleInningsMatchIsDrawForEveryone(t *testing.T) {
	res := run(t, concat(
		over("9", 1, 0, "x", "y", 1, 2, 3, 4, 6, 0),
		over("9", 1, 1, "z", "w", 1, 2, 3, 4, 6, 0),
	))
	if res.Matches[0].HasWinner() {
		t.Fatalf("single innings: want no winner, got %q", res.Matches[0].Winner)
	}
	for _, s := range res.Players {
		if s.Draws != 1 || s.Wins != 0 || s.Losses != 0 {
			t.Errorf("%s: want draw, got W%d L%d D%d", s.Player, s.Wins, s.Losses, s.Draws)
		}
	}
}

func TestResolveMatchUsesTotalRuns(t *testing.T) {
	mc := ResolveMatch("7", []model.Delivery{
		// innings order deliberately shuffled
		ball("7", 2, 0, 1, "b", "a", 4),
		ball("7", 1, 0, 1, "a", "b", 0, extra(model.ExtrasWide, 5)),
		ball("7", 2, 0, 2, "b", "a", 0),
	})
	if mc.Innings[1].Runs != 5 || mc.Innings[2].Runs != 4 {
		t.Fatalf("innings totals: want 5/4, got %d/%d", mc.Innings[1].Runs, mc.Innings[2].Runs)
	}
	if mc.Winner != "A" {
		t.Errorf("winner: want A (extras count toward team total), got %q", mc.Winner)
	}
	if !reflect.DeepEqual(mc.Teams, []string{"A", "B"}) {
		t.Errorf("teams: want [A B], got %v", mc.Teams)
	}
}

func TestResolveMatchMissingTeamHasNoWinner(t *testing.T) {
	mc := ResolveMatch("7", []model.Delivery{
		ball("7", 1, 0, 1, "a", "b", 4, teams("", "")),
		ball("7", 2, 0, 1, "b", "a", 0),
	})
	if mc.HasWinner() {
		t.Errorf("unknown first-innings team: want no winner, got %q", mc.Winner)
	}
}

// ---- failure semantics ----

func TestOrderingViolation(t *testing.T) {
	deliveries := []model.Delivery{
		ball("1", 1, 0, 2, "bat", "bowl", 0),
		ball("1", 1, 0, 1, "bat", "bowl", 0),
	}
	_, err := Aggregate(&model.Dataset{Deliveries: deliveries})
	if !errors.Is(err, ErrOrderingViolation) {
		t.Fatalf("want ErrOrderingViolation, got %v", err)
	}
	var oe *OrderingError
	if !errors.As(err, &oe) || oe.Got != "1#1 0.1" || oe.Prev != "1#1 0.2" {
		t.Errorf("unexpected ordering error detail: %+v", oe)
	}

	// Returning to an earlier innings is also a violation.
	_, err = Aggregate(&model.Dataset{Deliveries: []model.Delivery{
		ball("1", 2, 0, 1, "bat", "bowl", 0),
		ball("1", 1, 5, 1, "bat", "bowl", 0),
	}})
	if !errors.Is(err, ErrOrderingViolation) {
		t.Errorf("innings regression: want ErrOrderingViolation, got %v", err)
	}
}

func TestMalformedRecordsAreSkipped(t *testing.T) {
	res := run(t, []model.Delivery{
		ball("", 1, 0, 1, "ghost", "bowl", 4),
		ball("1", 0, 0, 1, "ghost", "bowl", 4),
		ball("1", 1, 0, 1, "NA", "bowl", 4),
		ball("1", 1, 0, 2, "bat", "", 6),
		ball("1", 1, 0, 3, "bat", "bowl", 1),
	})
	if res.Skipped.Malformed != 2 || res.Skipped.NoBatter != 1 || res.Skipped.NoBowler != 1 {
		t.Errorf("skips: want malformed=2 noBatter=1 noBowler=1, got %+v", res.Skipped)
	}
	for _, s := range res.Players {
		if s.Player == "ghost" || s.Player == "NA" {
			t.Errorf("skipped identity %q must not produce a record", s.Player)
		}
	}
	if s := statsFor(t, res, "bat"); s.Runs != 7 {
		t.Errorf("bat: want 7 runs, got %d", s.Runs)
	}
	if b := statsFor(t, res, "bowl"); b.RunsConceded != 5 || b.BallsBowled != 2 {
		t.Errorf("bowl: want conceded=5 balls=2, got %d/%d", b.RunsConceded, b.BallsBowled)
	}
}

// ---- properties ----

func TestSafeDivisionIsFinite(t *testing.T) {
	res := run(t, []model.Delivery{
		ball("1", 1, 0, 1, "bat", "bowl", 0, extra(model.ExtrasWide, 1)),
	})
	for _, s := range res.Players {
		for name, v := range map[string]float64{
			"BattingAverage": s.BattingAverage, "StrikeRate": s.StrikeRate, "DuckOutPct": s.DuckOutPct,
			"RF50": s.RF50, "Economy": s.Economy, "BowlingAverage": s.BowlingAverage,
			"BowlingStrikeRate": s.BowlingStrikeRate, "AvgOversPerMatch": s.AvgOversPerMatch,
			"WinPct": s.WinPct, "LossPct": s.LossPct, "AveragePosition": s.AveragePosition,
		} {
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				t.Errorf("%s.%s = %f: want finite non-negative", s.Player, name, v)
			}
		}
	}
}

func TestBattingAverageWithoutDismissalEqualsRuns(t *testing.T) {
	s := statsFor(t, run(t, over("1", 1, 0, "bat", "bowl", 4, 4, 1)), "bat")
	if s.BattingAverage != 9 {
		t.Errorf("undismissed average: want 9, got %f", s.BattingAverage)
	}
}

func multiMatchFixture() []model.Delivery {
	var all []model.Delivery
	for _, m := range []string{"1", "2", "3", "10"} {
		all = append(all, over(m, 1, 0, "opener", "seamer", 4, 0, 6, 1, 0, 0)...)
		all = append(all, ball(m, 1, 1, 1, "opener", "spinner", 0, out("opener", model.DismissalStumped)))
		all = append(all, over(m, 1, 1, "keeper", "spinner", 0, 0, 1, 0, 0)...)
		for i := range all[len(all)-5:] {
			all[len(all)-5+i].Ball = i + 2
		}
		all = append(all, over(m, 2, 0, "chaser", "opener", 1, 1, 1, 1, 1, 1)...)
		all = append(all, over(m, 2, 1, "chaser", "keeper", 6, 6, 6, 6, 6, 6)...)
		all = append(all, over(m, 2, 2, "chaser", "seamer", 4, 4, 0, 0, 0, 0)...)
	}
	return all
}

func TestAggregateIsDeterministic(t *testing.T) {
	deliveries := multiMatchFixture()
	first := run(t, deliveries)
	second := run(t, deliveries)
	if !reflect.DeepEqual(first, second) {
		t.Error("two runs over the same stream produced different results")
	}
}

func TestParallelMatchesSequential(t *testing.T) {
	ds := &model.Dataset{Hash: "testhash", Deliveries: multiMatchFixture()}
	seq, err := Aggregate(ds)
	if err != nil {
		t.Fatalf("sequential: %v", err)
	}
	for _, workers := range []int{2, 3, 8} {
		par, err := AggregateParallel(ds, workers)
		if err != nil {
			t.Fatalf("parallel(%d): %v", workers, err)
		}
		if !reflect.DeepEqual(seq, par) {
			t.Errorf("parallel(%d) result differs from sequential", workers)
		}
	}

	chaser := statsFor(t, seq, "chaser")
	if chaser.Fifties != 4 || chaser.NotOuts != 4 || chaser.BatMatches != 4 {
		t.Errorf("chaser: want 4 not-out fifties over 4 matches, got fifties=%d notOuts=%d matches=%d",
			chaser.Fifties, chaser.NotOuts, chaser.BatMatches)
	}
	if chaser.Wins != 4 {
		t.Errorf("chaser: team B made 50 against 12 every time, want 4 wins, got %d", chaser.Wins)
	}
}

func TestParallelDetectsInterleavedMatches(t *testing.T) {
	ds := &model.Dataset{Deliveries: []model.Delivery{
		ball("1", 1, 0, 1, "a", "b", 0),
		ball("2", 1, 0, 1, "a", "b", 0),
		ball("1", 1, 0, 2, "a", "b", 0),
	}}
	if _, err := AggregateParallel(ds, 4); !errors.Is(err, ErrOrderingViolation) {
		t.Errorf("want ErrOrderingViolation, got %v", err)
	}
}

func TestSelectAllRounders(t *testing.T) {
	stats := []model.PlayerStats{
		{Player: "batter", BatMatches: 3, Wickets: 0},
		{Player: "bowler", BatMatches: 0, Wickets: 7},
		{Player: "allrounder", BatMatches: 2, Wickets: 2},
		{Player: "parttimer", BatMatches: 4, Wickets: 1},
	}
	got := SelectAllRounders(stats, 2)
	if len(got) != 1 || got[0].Player != "allrounder" {
		t.Errorf("threshold 2: got %+v", got)
	}
	if got := SelectAllRounders(stats, 1); len(got) != 2 || got[1].Player != "parttimer" {
		t.Errorf("threshold 1: got %+v", got)
	}
}
