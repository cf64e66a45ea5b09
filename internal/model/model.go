package model

import (
	"fmt"
	"strconv"
	"strings"
)

// ExtrasType classifies the extra attached to a delivery, if any.
type ExtrasType int

const (
	ExtrasNone    ExtrasType = 0
	ExtrasWide    ExtrasType = 1
	ExtrasNoBall  ExtrasType = 2
	ExtrasBye     ExtrasType = 3
	ExtrasLegBye  ExtrasType = 4
	ExtrasPenalty ExtrasType = 5
)

func (e ExtrasType) String() string {
	switch e {
	case ExtrasWide:
		return "wides"
	case ExtrasNoBall:
		return "noballs"
	case ExtrasBye:
		return "byes"
	case ExtrasLegBye:
		return "legbyes"
	case ExtrasPenalty:
		return "penalty"
	default:
		return ""
	}
}

// ParseExtrasType maps the log vocabulary ("wides", "noballs", "legbyes", ...)
// onto ExtrasType. Unknown or empty values are ExtrasNone.
func ParseExtrasType(s string) ExtrasType {
	switch normalizeToken(s) {
	case "wide", "wides":
		return ExtrasWide
	case "noball", "noballs", "nb":
		return ExtrasNoBall
	case "bye", "byes":
		return ExtrasBye
	case "legbye", "legbyes", "lb":
		return ExtrasLegBye
	case "penalty", "penalties":
		return ExtrasPenalty
	default:
		return ExtrasNone
	}
}

// DismissalKind is how a batter got out.
type DismissalKind int

const (
	DismissalNone            DismissalKind = 0
	DismissalBowled          DismissalKind = 1
	DismissalCaught          DismissalKind = 2
	DismissalLBW             DismissalKind = 3
	DismissalStumped         DismissalKind = 4
	DismissalHitWicket       DismissalKind = 5
	DismissalCaughtAndBowled DismissalKind = 6
	DismissalRunOut          DismissalKind = 7
	DismissalRetired         DismissalKind = 8
	DismissalOther           DismissalKind = 9
)

func (k DismissalKind) String() string {
	switch k {
	case DismissalBowled:
		return "bowled"
	case DismissalCaught:
		return "caught"
	case DismissalLBW:
		return "lbw"
	case DismissalStumped:
		return "stumped"
	case DismissalHitWicket:
		return "hit wicket"
	case DismissalCaughtAndBowled:
		return "caught and bowled"
	case DismissalRunOut:
		return "run out"
	case DismissalRetired:
		return "retired"
	case DismissalOther:
		return "other"
	default:
		return ""
	}
}

// CreditsBowler reports whether a dismissal of this kind counts as a wicket
// for the bowler of the delivery.
func (k DismissalKind) CreditsBowler() bool {
	switch k {
	case DismissalBowled, DismissalCaught, DismissalLBW, DismissalStumped,
		DismissalHitWicket, DismissalCaughtAndBowled:
		return true
	}
	return false
}

// ParseDismissalKind maps the log vocabulary onto DismissalKind. An empty
// value is DismissalNone; anything unrecognised is DismissalOther.
func ParseDismissalKind(s string) DismissalKind {
	tok := normalizeToken(s)
	switch tok {
	case "":
		return DismissalNone
	case "bowled":
		return DismissalBowled
	case "caught":
		return DismissalCaught
	case "lbw":
		return DismissalLBW
	case "stumped":
		return DismissalStumped
	case "hitwicket":
		return DismissalHitWicket
	case "caughtandbowled":
		return DismissalCaughtAndBowled
	case "runout":
		return DismissalRunOut
	}
	if strings.HasPrefix(tok, "retired") {
		return DismissalRetired
	}
	return DismissalOther
}

// normalizeToken lowercases s and drops spaces, hyphens and underscores so
// "leg-bye", "leg byes" and "legbyes" compare equal.
func normalizeToken(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if IsNullValue(s) {
		return ""
	}
	return strings.NewReplacer(" ", "", "-", "", "_", "").Replace(s)
}

// IsNullValue reports whether s is one of the missing-value markers found in
// exported delivery logs.
func IsNullValue(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "na", "n/a", "nan", "null", "none":
		return true
	}
	return false
}

// ---- Raw input ----

// Delivery is one ball bowled. Empty identity strings mean "unknown".
type Delivery struct {
	MatchID string
	Inning  int // 1-based
	Over    int // 0-based
	Ball    int // ball number within the over, as logged

	BattingTeam string
	BowlingTeam string
	Batter      string
	Bowler      string
	NonStriker  string

	BatsmanRuns int
	ExtraRuns   int
	TotalRuns   int
	Extras      ExtrasType

	IsWicket        bool
	PlayerDismissed string
	Dismissal       DismissalKind
}

// InningsKey identifies one innings of one match ("matchId#inning").
func (d *Delivery) InningsKey() string {
	return InningsKey(d.MatchID, d.Inning)
}

// InningsKey formats the innings identifier used across the engine and storage.
func InningsKey(matchID string, inning int) string {
	return matchID + "#" + strconv.Itoa(inning)
}

// Coord renders the delivery's position for error messages, e.g. "M1#1 3.4".
func (d *Delivery) Coord() string {
	return fmt.Sprintf("%s %d.%d", d.InningsKey(), d.Over, d.Ball)
}

// Compare orders deliveries by (match, inning, over, ball).
func (d *Delivery) Compare(o *Delivery) int {
	if c := CompareMatchID(d.MatchID, o.MatchID); c != 0 {
		return c
	}
	switch {
	case d.Inning != o.Inning:
		return cmpInt(d.Inning, o.Inning)
	case d.Over != o.Over:
		return cmpInt(d.Over, o.Over)
	default:
		return cmpInt(d.Ball, o.Ball)
	}
}

// CompareMatchID compares match ids numerically when both parse as integers
// and lexically otherwise.
func CompareMatchID(a, b string) int {
	ai, aerr := strconv.ParseInt(a, 10, 64)
	bi, berr := strconv.ParseInt(b, 10, 64)
	if aerr == nil && berr == nil {
		return cmpInt64(ai, bi)
	}
	return strings.Compare(a, b)
}

func cmpInt(a, b int) int { return cmpInt64(int64(a), int64(b)) }

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Dataset is a fully loaded delivery log.
type Dataset struct {
	Hash       string // sha256 of the source bytes
	Source     string
	Deliveries []Delivery
	Malformed  int // rows the loader could not place (missing match/inning)
}

// ---- Match context ----

// InningsTotal is the batting side and run total of one innings.
type InningsTotal struct {
	Team string `json:"team"`
	Runs int    `json:"runs"`
}

// MatchContext holds the per-match facts derived from all of its deliveries.
type MatchContext struct {
	MatchID string
	Teams   []string // sorted
	Innings map[int]InningsTotal
	Winner  string // empty: tie or no result
}

// HasWinner reports whether the match produced a winner.
func (m *MatchContext) HasWinner() bool { return m.Winner != "" }

// Result is a player's outcome in one match.
type Result int

const (
	ResultDraw Result = 0
	ResultWin  Result = 1
	ResultLoss Result = 2
)

func (r Result) String() string {
	switch r {
	case ResultWin:
		return "W"
	case ResultLoss:
		return "L"
	default:
		return "D"
	}
}

// ParseResult is the inverse of Result.String.
func ParseResult(s string) Result {
	switch s {
	case "W":
		return ResultWin
	case "L":
		return ResultLoss
	default:
		return ResultDraw
	}
}

// ---- Aggregated metrics ----

// PlayerStats is the flat per-player record produced by the finalizer.
type PlayerStats struct {
	DatasetHash string
	Player      string

	// Batting
	BatMatches       int
	BatInnings       int
	NotOuts          int
	Runs             int
	BallsFaced       int
	Fours            int
	Sixes            int
	Fifties          int
	Hundreds         int
	HighScore        int
	HighScoreNotOut  bool
	Dismissals       int
	DuckOuts         int
	BattingAverage   float64  // runs / max(1, dismissals)
	StrikeRate       float64
	DuckOutPct       float64
	AvgRunsPerMatch  float64
	AvgBallsPerMatch float64
	RF50             float64  // fifties per batted match
	RF100            float64
	BatOpponents     []string

	// Batting position
	MostCommonPosition  int
	AveragePosition     float64
	PositionConsistency float64 // % of innings at the most common position
	PositionMin         int
	PositionMax         int
	OpeningInnings      int
	TopOrderInnings     int

	// Bowling
	BowlMatches         int
	BowlInnings         int
	BallsBowled         int
	OversCompleted      int
	RunsConceded        int
	Wickets             int
	Maidens             int
	DotBalls            int
	ExtrasConceded      int
	ThreeWicketHauls    int
	FiveWicketHauls     int
	Economy             float64  // runs conceded per six valid balls
	BowlingAverage      float64  // runs conceded / wickets
	BowlingStrikeRate   float64  // balls bowled / wickets
	AvgOversPerMatch    float64
	AvgConcededPerMatch float64
	AvgWicketsPerMatch  float64
	AvgMaidensPerMatch  float64
	BowlOpponents       []string

	// Outcome
	Matches         int
	Wins            int
	Losses          int
	Draws           int
	WinPct          float64
	LossPct         float64
	UniqueOpponents int
}

// PositionRange renders the batting position range as "min-max".
func (s *PlayerStats) PositionRange() string {
	if s.PositionMin == 0 {
		return "0"
	}
	return fmt.Sprintf("%d-%d", s.PositionMin, s.PositionMax)
}

// OversNotation renders balls bowled in cricket notation, e.g. 22 balls -> "3.4".
func (s *PlayerStats) OversNotation() string {
	return fmt.Sprintf("%d.%d", s.BallsBowled/6, s.BallsBowled%6)
}

// HighScoreString renders the top score with a "*" suffix when not out.
func (s *PlayerStats) HighScoreString() string {
	if s.HighScoreNotOut {
		return strconv.Itoa(s.HighScore) + "*"
	}
	return strconv.Itoa(s.HighScore)
}

// PlayerMatchLine is one player's contribution to one match.
type PlayerMatchLine struct {
	DatasetHash string
	Player      string
	MatchID     string
	Team        string // affiliations joined with "|" when more than one was seen
	Result      Result

	Runs       int
	BallsFaced int
	Fours      int
	Sixes      int

	BallsBowled  int
	RunsConceded int
	Wickets      int
	Maidens      int
}

// DatasetSummary is a lightweight record for list/show commands.
type DatasetSummary struct {
	Hash       string
	Source     string
	IngestedAt string
	Matches    int
	Deliveries int
	Players    int
	Skipped    int
}
