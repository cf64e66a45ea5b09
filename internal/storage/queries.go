package storage

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/pable/go-cricket-metrics/internal/model"
)

// DatasetExists returns true if a dataset with the given hash is already stored.
func (db *DB) DatasetExists(hash string) (bool, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(1) FROM datasets WHERE hash = ?", hash).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// InsertDataset inserts a dataset record. Uses INSERT OR REPLACE for idempotency.
// An empty IngestedAt is stamped with the current UTC time.
func (db *DB) InsertDataset(s model.DatasetSummary) error {
	if s.IngestedAt == "" {
		s.IngestedAt = time.Now().UTC().Format(time.RFC3339)
	}
	_, err := db.conn.Exec(`
		INSERT OR REPLACE INTO datasets(hash, source, ingested_at, matches, deliveries, players, skipped)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.Hash, s.Source, s.IngestedAt, s.Matches, s.Deliveries, s.Players, s.Skipped,
	)
	return err
}

// InsertMatches bulk-inserts resolved match contexts in a transaction.
func (db *DB) InsertMatches(datasetHash string, matches []model.MatchContext) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO matches(dataset_hash, match_id, teams, innings, winner)
		VALUES (?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, m := range matches {
		innings, err := json.Marshal(m.Innings)
		if err != nil {
			return fmt.Errorf("encode innings for match %s: %w", m.MatchID, err)
		}
		_, err = stmt.Exec(datasetHash, m.MatchID, strings.Join(m.Teams, "|"), string(innings), m.Winner)
		if err != nil {
			return fmt.Errorf("insert matches for %s: %w", m.MatchID, err)
		}
	}
	return tx.Commit()
}

// GetMatches returns the match contexts stored for a dataset, in match order.
func (db *DB) GetMatches(datasetHash string) ([]model.MatchContext, error) {
	rows, err := db.conn.Query(`
		SELECT match_id, teams, innings, winner
		FROM matches WHERE dataset_hash = ?`, datasetHash)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.MatchContext
	for rows.Next() {
		var m model.MatchContext
		var teams, innings string
		if err := rows.Scan(&m.MatchID, &teams, &innings, &m.Winner); err != nil {
			return nil, err
		}
		m.Teams = splitList(teams)
		if err := json.Unmarshal([]byte(innings), &m.Innings); err != nil {
			return nil, fmt.Errorf("decode innings for match %s: %w", m.MatchID, err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		return model.CompareMatchID(out[i].MatchID, out[j].MatchID) < 0
	})
	return out, nil
}

const playerStatsColumns = `
	bat_matches, bat_innings, not_outs, runs, balls_faced, fours, sixes,
	fifties, hundreds, high_score, high_score_not_out, dismissals, duck_outs,
	batting_average, strike_rate, duck_out_pct, avg_runs_per_match, avg_balls_per_match,
	rf50, rf100, bat_opponents,
	most_common_position, average_position, position_consistency,
	position_min, position_max, opening_innings, top_order_innings,
	bowl_matches, bowl_innings, balls_bowled, overs_completed, runs_conceded,
	wickets, maidens, dot_balls, extras_conceded, three_wicket_hauls, five_wicket_hauls,
	economy, bowling_average, bowling_strike_rate,
	avg_overs_per_match, avg_conceded_per_match, avg_wickets_per_match, avg_maidens_per_match,
	bowl_opponents,
	matches, wins, losses, draws, win_pct, loss_pct, unique_opponents`

// InsertPlayerStats bulk-inserts player stats in a transaction.
func (db *DB) InsertPlayerStats(stats []model.PlayerStats) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO player_stats(dataset_hash, player,` + playerStatsColumns + `
		) VALUES (` + placeholders(56) + `)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range stats {
		_, err = stmt.Exec(
			s.DatasetHash, s.Player,
			s.BatMatches, s.BatInnings, s.NotOuts, s.Runs, s.BallsFaced, s.Fours, s.Sixes,
			s.Fifties, s.Hundreds, s.HighScore, boolInt(s.HighScoreNotOut), s.Dismissals, s.DuckOuts,
			s.BattingAverage, s.StrikeRate, s.DuckOutPct, s.AvgRunsPerMatch, s.AvgBallsPerMatch,
			s.RF50, s.RF100, strings.Join(s.BatOpponents, "|"),
			s.MostCommonPosition, s.AveragePosition, s.PositionConsistency,
			s.PositionMin, s.PositionMax, s.OpeningInnings, s.TopOrderInnings,
			s.BowlMatches, s.BowlInnings, s.BallsBowled, s.OversCompleted, s.RunsConceded,
			s.Wickets, s.Maidens, s.DotBalls, s.ExtrasConceded, s.ThreeWicketHauls, s.FiveWicketHauls,
			s.Economy, s.BowlingAverage, s.BowlingStrikeRate,
			s.AvgOversPerMatch, s.AvgConcededPerMatch, s.AvgWicketsPerMatch, s.AvgMaidensPerMatch,
			strings.Join(s.BowlOpponents, "|"),
			s.Matches, s.Wins, s.Losses, s.Draws, s.WinPct, s.LossPct, s.UniqueOpponents,
		)
		if err != nil {
			return fmt.Errorf("insert player_stats for %s: %w", s.Player, err)
		}
	}
	return tx.Commit()
}

// GetPlayerStats returns all player stats for a dataset hash, ordered by runs
// then wickets.
func (db *DB) GetPlayerStats(datasetHash string) ([]model.PlayerStats, error) {
	rows, err := db.conn.Query(`
		SELECT dataset_hash, player,`+playerStatsColumns+`
		FROM player_stats WHERE dataset_hash = ?
		ORDER BY runs DESC, wickets DESC, player`, datasetHash)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPlayerStats(rows)
}

// GetPlayerHistory returns every stored stats row for the named player across
// all datasets, newest ingest first.
func (db *DB) GetPlayerHistory(player string) ([]model.PlayerStats, error) {
	rows, err := db.conn.Query(`
		SELECT p.dataset_hash, p.player,`+prefixColumns("p", playerStatsColumns)+`
		FROM player_stats p
		JOIN datasets d ON d.hash = p.dataset_hash
		WHERE p.player = ? COLLATE NOCASE
		ORDER BY d.ingested_at DESC, p.dataset_hash`, player)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPlayerStats(rows)
}

func scanPlayerStats(rows *sql.Rows) ([]model.PlayerStats, error) {
	var out []model.PlayerStats
	for rows.Next() {
		var s model.PlayerStats
		var notOut int
		var batOpp, bowlOpp string
		if err := rows.Scan(
			&s.DatasetHash, &s.Player,
			&s.BatMatches, &s.BatInnings, &s.NotOuts, &s.Runs, &s.BallsFaced, &s.Fours, &s.Sixes,
			&s.Fifties, &s.Hundreds, &s.HighScore, &notOut, &s.Dismissals, &s.DuckOuts,
			&s.BattingAverage, &s.StrikeRate, &s.DuckOutPct, &s.AvgRunsPerMatch, &s.AvgBallsPerMatch,
			&s.RF50, &s.RF100, &batOpp,
			&s.MostCommonPosition, &s.AveragePosition, &s.PositionConsistency,
			&s.PositionMin, &s.PositionMax, &s.OpeningInnings, &s.TopOrderInnings,
			&s.BowlMatches, &s.BowlInnings, &s.BallsBowled, &s.OversCompleted, &s.RunsConceded,
			&s.Wickets, &s.Maidens, &s.DotBalls, &s.ExtrasConceded, &s.ThreeWicketHauls, &s.FiveWicketHauls,
			&s.Economy, &s.BowlingAverage, &s.BowlingStrikeRate,
			&s.AvgOversPerMatch, &s.AvgConcededPerMatch, &s.AvgWicketsPerMatch, &s.AvgMaidensPerMatch,
			&bowlOpp,
			&s.Matches, &s.Wins, &s.Losses, &s.Draws, &s.WinPct, &s.LossPct, &s.UniqueOpponents,
		); err != nil {
			return nil, err
		}
		s.HighScoreNotOut = notOut != 0
		s.BatOpponents = splitList(batOpp)
		s.BowlOpponents = splitList(bowlOpp)
		out = append(out, s)
	}
	return out, rows.Err()
}

// InsertPlayerMatchLines bulk-inserts per-match player lines in a transaction.
func (db *DB) InsertPlayerMatchLines(lines []model.PlayerMatchLine) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO player_match_lines(
			dataset_hash, player, match_id, team, result,
			runs, balls_faced, fours, sixes,
			balls_bowled, runs_conceded, wickets, maidens
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, l := range lines {
		_, err = stmt.Exec(
			l.DatasetHash, l.Player, l.MatchID, l.Team, l.Result.String(),
			l.Runs, l.BallsFaced, l.Fours, l.Sixes,
			l.BallsBowled, l.RunsConceded, l.Wickets, l.Maidens,
		)
		if err != nil {
			return fmt.Errorf("insert player_match_lines for %s/%s: %w", l.Player, l.MatchID, err)
		}
	}
	return tx.Commit()
}

// GetPlayerMatchLines returns the per-match lines of one player in a dataset,
// in match order. An empty player returns the lines of every player.
func (db *DB) GetPlayerMatchLines(datasetHash, player string) ([]model.PlayerMatchLine, error) {
	rows, err := db.conn.Query(`
		SELECT dataset_hash, player, match_id, team, result,
		       runs, balls_faced, fours, sixes,
		       balls_bowled, runs_conceded, wickets, maidens
		FROM player_match_lines
		WHERE dataset_hash = ? AND (? = '' OR player = ? COLLATE NOCASE)`,
		datasetHash, player, player)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PlayerMatchLine
	for rows.Next() {
		var l model.PlayerMatchLine
		var result string
		if err := rows.Scan(
			&l.DatasetHash, &l.Player, &l.MatchID, &l.Team, &result,
			&l.Runs, &l.BallsFaced, &l.Fours, &l.Sixes,
			&l.BallsBowled, &l.RunsConceded, &l.Wickets, &l.Maidens,
		); err != nil {
			return nil, err
		}
		l.Result = model.ParseResult(result)
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Player != out[j].Player {
			return out[i].Player < out[j].Player
		}
		return model.CompareMatchID(out[i].MatchID, out[j].MatchID) < 0
	})
	return out, nil
}

// ListDatasets returns all stored dataset summaries, newest ingest first.
func (db *DB) ListDatasets() ([]model.DatasetSummary, error) {
	rows, err := db.conn.Query(`
		SELECT hash, source, ingested_at, matches, deliveries, players, skipped
		FROM datasets ORDER BY ingested_at DESC, hash`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.DatasetSummary
	for rows.Next() {
		var s model.DatasetSummary
		if err := rows.Scan(&s.Hash, &s.Source, &s.IngestedAt,
			&s.Matches, &s.Deliveries, &s.Players, &s.Skipped); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetDatasetByPrefix finds the first dataset whose hash starts with the given prefix.
func (db *DB) GetDatasetByPrefix(prefix string) (*model.DatasetSummary, error) {
	var s model.DatasetSummary
	err := db.conn.QueryRow(`
		SELECT hash, source, ingested_at, matches, deliveries, players, skipped
		FROM datasets WHERE hash LIKE ? ORDER BY hash LIMIT 1`, prefix+"%").
		Scan(&s.Hash, &s.Source, &s.IngestedAt, &s.Matches, &s.Deliveries, &s.Players, &s.Skipped)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Overview holds high-level counts across every stored dataset.
type Overview struct {
	Datasets       int
	Matches        int
	Deliveries     int
	Skipped        int
	UniquePlayers  int
	EarliestIngest string
	LatestIngest   string
}

// GetOverview returns aggregate counts for the summary command.
func (db *DB) GetOverview() (Overview, error) {
	var ov Overview
	var earliest, latest sql.NullString
	err := db.conn.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(matches),0), COALESCE(SUM(deliveries),0),
		       COALESCE(SUM(skipped),0), MIN(ingested_at), MAX(ingested_at)
		FROM datasets`).
		Scan(&ov.Datasets, &ov.Matches, &ov.Deliveries, &ov.Skipped, &earliest, &latest)
	if err != nil {
		return ov, err
	}
	ov.EarliestIngest = earliest.String
	ov.LatestIngest = latest.String

	err = db.conn.QueryRow(`SELECT COUNT(DISTINCT player) FROM player_stats`).Scan(&ov.UniquePlayers)
	return ov, err
}

// LeaderRow is one player's totals summed across all datasets.
type LeaderRow struct {
	Player  string
	Matches int
	Runs    int
	Wickets int
}

// GetLeaders returns the top players across all datasets ordered by the given
// column, which must be "runs" or "wickets".
func (db *DB) GetLeaders(by string, limit int) ([]LeaderRow, error) {
	if by != "runs" && by != "wickets" {
		return nil, fmt.Errorf("unknown leader column %q", by)
	}
	rows, err := db.conn.Query(fmt.Sprintf(`
		SELECT player, SUM(matches), SUM(runs), SUM(wickets)
		FROM player_stats
		GROUP BY player
		ORDER BY SUM(%s) DESC, player
		LIMIT ?`, by), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LeaderRow
	for rows.Next() {
		var r LeaderRow
		if err := rows.Scan(&r.Player, &r.Matches, &r.Runs, &r.Wickets); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// QueryRaw executes an arbitrary query and returns column names plus every row
// rendered as strings. NULL renders as "NULL".
func (db *DB) QueryRaw(query string) ([]string, [][]string, error) {
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}
	var out [][]string
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		row := make([]string, len(cols))
		for i, v := range vals {
			switch x := v.(type) {
			case nil:
				row[i] = "NULL"
			case []byte:
				row[i] = string(x)
			case float64:
				row[i] = fmt.Sprintf("%.4g", x)
			default:
				row[i] = fmt.Sprint(x)
			}
		}
		out = append(out, row)
	}
	return cols, out, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "|")
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// prefixColumns qualifies every column in a comma-separated list with alias.
func prefixColumns(alias, cols string) string {
	parts := strings.Split(cols, ",")
	for i, c := range parts {
		parts[i] = alias + "." + strings.TrimSpace(c)
	}
	return "\n\t" + strings.Join(parts, ", ")
}
