package loader

import (
	"compress/gzip"
	"crypto/sha256"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/pable/go-cricket-metrics/internal/model"
)

// Column names accepted for each delivery field. The first entry is the
// canonical name.
var columnAliases = map[string][]string{
	"match_id":         {"match_id", "id", "matchid"},
	"inning":           {"inning", "innings"},
	"batting_team":     {"batting_team"},
	"bowling_team":     {"bowling_team"},
	"over":             {"over", "overs"},
	"ball":             {"ball"},
	"batter":           {"batter", "batsman", "striker"},
	"bowler":           {"bowler"},
	"non_striker":      {"non_striker", "nonstriker"},
	"batsman_runs":     {"batsman_runs", "runs_off_bat"},
	"extra_runs":       {"extra_runs", "extras"},
	"total_runs":       {"total_runs"},
	"extras_type":      {"extras_type", "extra_type"},
	"is_wicket":        {"is_wicket", "wicket"},
	"player_dismissed": {"player_dismissed"},
	"dismissal_kind":   {"dismissal_kind", "wicket_type"},
}

var requiredColumns = []string{"match_id", "inning", "over", "ball", "batter", "bowler"}

// Load reads a delivery log from path. Files ending in .gz or .zst are
// decompressed on the fly. The dataset hash covers the raw file bytes.
func Load(path string) (*model.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open deliveries: %w", err)
	}
	defer f.Close()

	// Hash file for idempotency key.
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil, fmt.Errorf("hash deliveries: %w", err)
	}
	hash := fmt.Sprintf("%x", h.Sum(nil))

	// Seek back to start for the reader.
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek deliveries: %w", err)
	}

	var src io.Reader = f
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zst":
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		defer dec.Close()
		src = dec
	case ".gz":
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		defer gz.Close()
		src = gz
	}

	ds, err := Read(src)
	if err != nil {
		return nil, err
	}
	ds.Hash = hash
	ds.Source = filepath.Base(path)
	return ds, nil
}

// Read parses CSV deliveries from r. Missing-value markers become empty
// strings or zero. Rows without a usable match id, inning, over or ball are
// dropped and counted in Dataset.Malformed. The result is not sorted.
func Read(r io.Reader) (*model.Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read header: empty input")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	ds := &model.Dataset{}
	for row := 2; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", row, err)
		}
		d, ok := cols.delivery(rec)
		if !ok {
			ds.Malformed++
			slog.Debug("drop malformed row", "row", row)
			continue
		}
		ds.Deliveries = append(ds.Deliveries, d)
	}
	return ds, nil
}

// Sort orders deliveries by (match, inning, over, ball), the order the
// aggregator requires.
func Sort(deliveries []model.Delivery) {
	sort.SliceStable(deliveries, func(i, j int) bool {
		return deliveries[i].Compare(&deliveries[j]) < 0
	})
}

// columns maps canonical field names to record indexes; -1 means absent.
type columns map[string]int

func mapColumns(header []string) (columns, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}

	cols := make(columns, len(columnAliases))
	for name, aliases := range columnAliases {
		cols[name] = -1
		for _, a := range aliases {
			if i, ok := index[a]; ok {
				cols[name] = i
				break
			}
		}
	}
	var missing []string
	for _, name := range requiredColumns {
		if cols[name] < 0 {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return cols, nil
}

func (c columns) str(rec []string, name string) string {
	i := c[name]
	if i < 0 || i >= len(rec) {
		return ""
	}
	v := strings.TrimSpace(rec[i])
	if model.IsNullValue(v) {
		return ""
	}
	return v
}

// num parses an integer field. Absent or null values are 0 with ok=true;
// unparseable values return ok=false.
func (c columns) num(rec []string, name string) (int, bool) {
	v := c.str(rec, name)
	if v == "" {
		return 0, true
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		// Some exports write integers as floats ("1.0").
		f, ferr := strconv.ParseFloat(v, 64)
		if ferr != nil {
			return 0, false
		}
		return int(f), true
	}
	return n, true
}

func (c columns) delivery(rec []string) (model.Delivery, bool) {
	d := model.Delivery{
		MatchID:         c.str(rec, "match_id"),
		BattingTeam:     c.str(rec, "batting_team"),
		BowlingTeam:     c.str(rec, "bowling_team"),
		Batter:          c.str(rec, "batter"),
		Bowler:          c.str(rec, "bowler"),
		NonStriker:      c.str(rec, "non_striker"),
		Extras:          model.ParseExtrasType(c.str(rec, "extras_type")),
		PlayerDismissed: c.str(rec, "player_dismissed"),
		Dismissal:       model.ParseDismissalKind(c.str(rec, "dismissal_kind")),
	}

	var ok [3]bool
	d.Inning, ok[0] = c.num(rec, "inning")
	d.Over, ok[1] = c.num(rec, "over")
	d.Ball, ok[2] = c.num(rec, "ball")
	if d.MatchID == "" || d.Inning <= 0 || !ok[0] || !ok[1] || !ok[2] {
		return d, false
	}

	// Counters tolerate noise: anything unparseable reads as 0.
	d.BatsmanRuns, _ = c.num(rec, "batsman_runs")
	d.ExtraRuns, _ = c.num(rec, "extra_runs")
	if c["total_runs"] >= 0 {
		d.TotalRuns, _ = c.num(rec, "total_runs")
	} else {
		d.TotalRuns = d.BatsmanRuns + d.ExtraRuns
	}
	d.IsWicket = parseBool(c.str(rec, "is_wicket"))
	if !d.IsWicket && d.PlayerDismissed != "" {
		d.IsWicket = true
	}
	return d, true
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "1", "1.0", "true", "t", "yes", "y":
		return true
	}
	return false
}
