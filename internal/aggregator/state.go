package aggregator

type stringSet map[string]struct{}

func (s stringSet) add(v string) {
	if v != "" {
		s[v] = struct{}{}
	}
}

func (s stringSet) union(o stringSet) {
	for v := range o {
		s[v] = struct{}{}
	}
}

// matchLine holds one player's sub-totals and team affiliation for one match.
type matchLine struct {
	teams stringSet

	runs, ballsFaced, fours, sixes int

	ballsBowled, runsConceded int
	wickets, maidens          int
}

func (l *matchLine) merge(o *matchLine) {
	l.teams.union(o.teams)
	l.runs += o.runs
	l.ballsFaced += o.ballsFaced
	l.fours += o.fours
	l.sixes += o.sixes
	l.ballsBowled += o.ballsBowled
	l.runsConceded += o.runsConceded
	l.wickets += o.wickets
	l.maidens += o.maidens
}

type overKey struct {
	innings string
	over    int
}

// overBucket tallies legal balls and runs conceded within one over. It is
// discarded as soon as it reaches six legal balls.
type overBucket struct {
	balls, runs int
}

// playerState is the mutable accumulator for one player. It is created on the
// player's first appearance as batter or bowler and lives until finalization.
type playerState struct {
	name string

	// Batting
	batMatches   stringSet
	batInnings   stringSet
	batOpponents stringSet
	runs         int
	ballsFaced   int
	fours, sixes int
	fifties      int
	hundreds     int
	dismissals   int
	duckOuts     int
	notOuts      int
	positions    []int // first-appearance order per innings
	currentRuns  int   // running score in the open innings
	highScore    int
	highNotOut   bool

	// Bowling
	bowlMatches      stringSet
	bowlInnings      stringSet
	bowlOpponents    stringSet
	runsConceded     int
	ballsBowled      int
	overs            int
	wickets          int
	maidens          int
	dotBalls         int
	extrasConceded   int
	wicketsByInnings map[string]int
	buckets          map[overKey]*overBucket

	// Outcome
	matches map[string]*matchLine
}

func newPlayerState(name string) *playerState {
	return &playerState{
		name:             name,
		batMatches:       make(stringSet),
		batInnings:       make(stringSet),
		batOpponents:     make(stringSet),
		bowlMatches:      make(stringSet),
		bowlInnings:      make(stringSet),
		bowlOpponents:    make(stringSet),
		wicketsByInnings: make(map[string]int),
		buckets:          make(map[overKey]*overBucket),
		matches:          make(map[string]*matchLine),
	}
}

func (p *playerState) line(matchID string) *matchLine {
	l := p.matches[matchID]
	if l == nil {
		l = &matchLine{teams: make(stringSet)}
		p.matches[matchID] = l
	}
	return l
}

func (p *playerState) bucket(k overKey) *overBucket {
	b := p.buckets[k]
	if b == nil {
		b = &overBucket{}
		p.buckets[k] = b
	}
	return b
}

// closeInnings scores the innings that just ended for this player. Milestones
// count whether the innings ended in dismissal or not out; hundred takes
// precedence over fifty. The running score resets to zero.
func (p *playerState) closeInnings(notOut bool) {
	score := p.currentRuns
	switch {
	case score >= 100:
		p.hundreds++
	case score >= 50:
		p.fifties++
	}
	if score > p.highScore || (score == p.highScore && notOut) {
		p.highScore = score
		p.highNotOut = notOut
	}
	if notOut {
		p.notOuts++
	} else {
		p.dismissals++
		if score == 0 {
			p.duckOuts++
		}
	}
	p.currentRuns = 0
}

// merge folds o into p. Both states must come from disjoint sets of matches,
// so per-match and per-innings keys never collide; totals add.
func (p *playerState) merge(o *playerState) {
	p.batMatches.union(o.batMatches)
	p.batInnings.union(o.batInnings)
	p.batOpponents.union(o.batOpponents)
	p.runs += o.runs
	p.ballsFaced += o.ballsFaced
	p.fours += o.fours
	p.sixes += o.sixes
	p.fifties += o.fifties
	p.hundreds += o.hundreds
	p.dismissals += o.dismissals
	p.duckOuts += o.duckOuts
	p.notOuts += o.notOuts
	p.positions = append(p.positions, o.positions...)
	p.currentRuns += o.currentRuns
	if o.highScore > p.highScore || (o.highScore == p.highScore && o.highNotOut) {
		p.highScore = o.highScore
		p.highNotOut = o.highNotOut
	}

	p.bowlMatches.union(o.bowlMatches)
	p.bowlInnings.union(o.bowlInnings)
	p.bowlOpponents.union(o.bowlOpponents)
	p.runsConceded += o.runsConceded
	p.ballsBowled += o.ballsBowled
	p.overs += o.overs
	p.wickets += o.wickets
	p.maidens += o.maidens
	p.dotBalls += o.dotBalls
	p.extrasConceded += o.extrasConceded
	for k, v := range o.wicketsByInnings {
		p.wicketsByInnings[k] += v
	}
	for k, b := range o.buckets {
		if cur, ok := p.buckets[k]; ok {
			cur.balls += b.balls
			cur.runs += b.runs
			continue
		}
		p.buckets[k] = b
	}

	for id, l := range o.matches {
		if cur, ok := p.matches[id]; ok {
			cur.merge(l)
			continue
		}
		p.matches[id] = l
	}
}
