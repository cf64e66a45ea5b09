package aggregator

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/pable/go-cricket-metrics/internal/model"
)

// ErrOrderingViolation is returned when deliveries are not strictly ascending
// by (match, inning, over, ball).
var ErrOrderingViolation = errors.New("deliveries out of order")

// OrderingError describes the first out-of-order delivery.
type OrderingError struct {
	Prev, Got string // delivery coordinates
}

func (e *OrderingError) Error() string {
	return fmt.Sprintf("%v: %s after %s", ErrOrderingViolation, e.Got, e.Prev)
}

func (e *OrderingError) Unwrap() error { return ErrOrderingViolation }

// SkipCounts records deliveries the fold could only partially apply.
type SkipCounts struct {
	Malformed int // no match id or inning: both sides skipped
	NoBatter  int // batting side skipped
	NoBowler  int // bowling side skipped
}

func (s SkipCounts) Total() int { return s.Malformed + s.NoBatter + s.NoBowler }

func (s *SkipCounts) add(o SkipCounts) {
	s.Malformed += o.Malformed
	s.NoBatter += o.NoBatter
	s.NoBowler += o.NoBowler
}

// inningsState tracks who has batted in the open innings.
type inningsState struct {
	key       string
	order     []string // batters by first appearance
	seen      map[string]int
	dismissed map[string]bool
	retired   map[string]bool // left the crease unbeaten; may return
}

func newInningsState(key string) *inningsState {
	return &inningsState{
		key:       key,
		seen:      make(map[string]int),
		dismissed: make(map[string]bool),
		retired:   make(map[string]bool),
	}
}

// position returns the batter's 1-based position, assigning the next one on
// first appearance. The second result is true when newly assigned.
func (in *inningsState) position(batter string) (int, bool) {
	if pos, ok := in.seen[batter]; ok {
		return pos, false
	}
	in.order = append(in.order, batter)
	pos := len(in.order)
	in.seen[batter] = pos
	return pos, true
}

// Aggregator folds an ordered delivery stream into per-player state. It is not
// safe for concurrent use; run one Aggregator per match partition instead.
type Aggregator struct {
	players map[string]*playerState
	innings *inningsState // open innings; nil before the first delivery
	last    *model.Delivery
	skipped SkipCounts
	log     *slog.Logger
}

// New returns an empty Aggregator logging to slog.Default.
func New() *Aggregator {
	return &Aggregator{
		players: make(map[string]*playerState),
		log:     slog.Default(),
	}
}

// WithLogger sets the logger used for skipped-record diagnostics.
func (a *Aggregator) WithLogger(l *slog.Logger) *Aggregator {
	if l != nil {
		a.log = l
	}
	return a
}

// Skipped returns the skip counters accumulated so far.
func (a *Aggregator) Skipped() SkipCounts { return a.skipped }

// Players returns the number of players seen.
func (a *Aggregator) Players() int { return len(a.players) }

func (a *Aggregator) player(name string) *playerState {
	p := a.players[name]
	if p == nil {
		p = newPlayerState(name)
		a.players[name] = p
	}
	return p
}

// Add applies one delivery. Deliveries must arrive strictly ascending by
// (match, inning, over, ball); anything else returns an *OrderingError and
// leaves the state unchanged.
func (a *Aggregator) Add(d *model.Delivery) error {
	if isNullIdentity(d.MatchID) || d.Inning <= 0 {
		a.skipped.Malformed++
		a.log.Debug("skip malformed delivery", "match", d.MatchID, "inning", d.Inning, "over", d.Over, "ball", d.Ball)
		return nil
	}
	if a.last != nil && d.Compare(a.last) <= 0 {
		return &OrderingError{Prev: a.last.Coord(), Got: d.Coord()}
	}
	cp := *d
	a.last = &cp

	key := d.InningsKey()
	if a.innings == nil || a.innings.key != key {
		a.closeInnings()
		a.innings = newInningsState(key)
	}

	if isNullIdentity(d.Batter) {
		a.skipped.NoBatter++
		a.log.Debug("skip batting side", "delivery", d.Coord())
	} else {
		a.applyBatting(d)
	}
	a.applyNonStrikerDismissal(d)

	if isNullIdentity(d.Bowler) {
		a.skipped.NoBowler++
		a.log.Debug("skip bowling side", "delivery", d.Coord())
	} else {
		a.applyBowling(d)
	}
	return nil
}

// Finish closes the open innings, crediting not-out milestones. It must be
// called once the stream is exhausted; calling it again is a no-op.
func (a *Aggregator) Finish() {
	a.closeInnings()
	a.innings = nil
}

// closeInnings treats every batter of the open innings who was not dismissed
// as not out. A batter who retired and never came back is scored as out.
// Runs a dismissed batter picked up after the dismissal count toward totals
// but never toward the next innings' score.
func (a *Aggregator) closeInnings() {
	if a.innings == nil {
		return
	}
	for _, name := range a.innings.order {
		p := a.players[name]
		switch {
		case a.innings.dismissed[name]:
			p.currentRuns = 0
		case a.innings.retired[name]:
			p.closeInnings(false)
		default:
			p.closeInnings(true)
		}
	}
}

func (a *Aggregator) applyBatting(d *model.Delivery) {
	p := a.player(d.Batter)
	key := a.innings.key

	p.batMatches.add(d.MatchID)
	p.batInnings.add(key)
	if !isNullIdentity(d.BowlingTeam) {
		p.batOpponents.add(d.BowlingTeam)
	}
	line := p.line(d.MatchID)
	if !isNullIdentity(d.BattingTeam) {
		line.teams.add(d.BattingTeam)
	}

	if pos, isNew := a.innings.position(d.Batter); isNew {
		p.positions = append(p.positions, pos)
	}
	// Back at the crease after retiring: the innings carries on.
	delete(a.innings.retired, d.Batter)

	if countsForBatter(d.Extras) {
		p.ballsFaced++
		p.runs += d.BatsmanRuns
		p.currentRuns += d.BatsmanRuns
		line.ballsFaced++
		line.runs += d.BatsmanRuns
		switch d.BatsmanRuns {
		case 4:
			p.fours++
			line.fours++
		case 6:
			p.sixes++
			line.sixes++
		}
	}

	if d.IsWicket && d.PlayerDismissed == d.Batter {
		a.dismiss(p, d.Dismissal)
	}
}

// applyNonStrikerDismissal credits a dismissal of the non-striker (run out at
// the bowler's end) to that player, provided they have already batted in this
// innings. It never touches the striker.
func (a *Aggregator) applyNonStrikerDismissal(d *model.Delivery) {
	if !d.IsWicket || isNullIdentity(d.PlayerDismissed) || d.PlayerDismissed == d.Batter {
		return
	}
	if d.PlayerDismissed != d.NonStriker {
		return
	}
	if _, batted := a.innings.seen[d.NonStriker]; !batted {
		return
	}
	a.dismiss(a.players[d.NonStriker], d.Dismissal)
}

// dismiss closes the batter's innings on the first terminal dismissal. A
// retirement only parks the score until the batter returns or the innings ends.
func (a *Aggregator) dismiss(p *playerState, kind model.DismissalKind) {
	if a.innings.dismissed[p.name] {
		return
	}
	if kind == model.DismissalRetired {
		a.innings.retired[p.name] = true
		return
	}
	delete(a.innings.retired, p.name)
	a.innings.dismissed[p.name] = true
	p.closeInnings(false)
}

func (a *Aggregator) applyBowling(d *model.Delivery) {
	p := a.player(d.Bowler)
	key := a.innings.key

	p.bowlMatches.add(d.MatchID)
	p.bowlInnings.add(key)
	if !isNullIdentity(d.BattingTeam) {
		p.bowlOpponents.add(d.BattingTeam)
	}
	line := p.line(d.MatchID)
	if !isNullIdentity(d.BowlingTeam) {
		line.teams.add(d.BowlingTeam)
	}

	runs := runsConceded(d)
	p.runsConceded += runs
	line.runsConceded += runs
	if chargedExtra(d.Extras) {
		p.extrasConceded += d.ExtraRuns
	}
	if isDotBall(d) {
		p.dotBalls++
	}

	ok := overKey{innings: key, over: d.Over}
	b := p.bucket(ok)
	b.runs += runs
	if countsForBowler(d.Extras) {
		p.ballsBowled++
		line.ballsBowled++
		b.balls++
		if b.balls == 6 {
			p.overs++
			if b.runs == 0 {
				p.maidens++
				line.maidens++
			}
			delete(p.buckets, ok)
		}
	}

	if d.IsWicket && !isNullIdentity(d.PlayerDismissed) && d.Dismissal.CreditsBowler() {
		p.wickets++
		line.wickets++
		p.wicketsByInnings[key]++
	}
}

// Merge folds o into a. The two aggregators must have consumed disjoint sets
// of matches and both must be finished.
func (a *Aggregator) Merge(o *Aggregator) {
	for name, op := range o.players {
		if p, ok := a.players[name]; ok {
			p.merge(op)
			continue
		}
		a.players[name] = op
	}
	a.skipped.add(o.skipped)
}

// Result is the output of a full aggregation run.
type Result struct {
	Players []model.PlayerStats
	Lines   []model.PlayerMatchLine
	Matches []model.MatchContext // sorted by match id
	Skipped SkipCounts
}

// Aggregate resolves match contexts, folds the deliveries in order and
// finalizes per-player stats. Deliveries must already be sorted.
func Aggregate(ds *model.Dataset) (*Result, error) {
	if ds == nil {
		return nil, fmt.Errorf("nil Dataset")
	}
	contexts := ResolveMatches(ds.Deliveries)

	agg := New()
	for i := range ds.Deliveries {
		if err := agg.Add(&ds.Deliveries[i]); err != nil {
			return nil, err
		}
	}
	agg.Finish()

	return buildResult(agg, contexts, ds.Hash), nil
}

func buildResult(agg *Aggregator, contexts map[string]model.MatchContext, hash string) *Result {
	players, lines := Finalize(agg, contexts, hash)
	return &Result{
		Players: players,
		Lines:   lines,
		Matches: sortedContexts(contexts),
		Skipped: agg.Skipped(),
	}
}
