package aggregator

import (
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pable/go-cricket-metrics/internal/model"
)

// partition is a contiguous run of deliveries belonging to one match.
type partition struct {
	matchID    string
	deliveries []model.Delivery
}

// partitionByMatch splits a sorted stream into per-match runs, keeping stream
// order. Deliveries without a match id form their own partitions so the
// fold can count them as malformed.
func partitionByMatch(deliveries []model.Delivery) []partition {
	var parts []partition
	start := 0
	for i := 1; i <= len(deliveries); i++ {
		if i < len(deliveries) && deliveries[i].MatchID == deliveries[start].MatchID {
			continue
		}
		parts = append(parts, partition{
			matchID:    deliveries[start].MatchID,
			deliveries: deliveries[start:i],
		})
		start = i
	}
	return parts
}

// AggregateParallel produces the same Result as Aggregate, running one
// Aggregator per match on up to workers goroutines and merging the states
// in match order. The input must be sorted; a match id that reappears after
// a different one is reported as an ordering violation.
func AggregateParallel(ds *model.Dataset, workers int) (*Result, error) {
	if ds == nil {
		return nil, fmt.Errorf("nil Dataset")
	}
	if workers <= 1 {
		return Aggregate(ds)
	}
	started := time.Now()

	parts := partitionByMatch(ds.Deliveries)
	if err := checkPartitionOrder(parts); err != nil {
		return nil, err
	}

	aggs := make([]*Aggregator, len(parts))
	ctxs := make([]model.MatchContext, len(parts))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, part := range parts {
		g.Go(func() error {
			agg := New()
			for j := range part.deliveries {
				if err := agg.Add(&part.deliveries[j]); err != nil {
					return err
				}
			}
			agg.Finish()
			aggs[i] = agg
			if !isNullIdentity(part.matchID) {
				ctxs[i] = ResolveMatch(part.matchID, part.deliveries)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := New()
	contexts := make(map[string]model.MatchContext, len(parts))
	for i, agg := range aggs {
		merged.Merge(agg)
		if ctxs[i].MatchID != "" {
			contexts[ctxs[i].MatchID] = ctxs[i]
		}
	}

	slog.Debug("parallel aggregation done",
		"matches", len(contexts), "partitions", len(parts), "workers", workers,
		"elapsed", time.Since(started))
	return buildResult(merged, contexts, ds.Hash), nil
}

func checkPartitionOrder(parts []partition) error {
	var prev *model.Delivery
	for i := range parts {
		first := &parts[i].deliveries[0]
		if isNullIdentity(first.MatchID) {
			continue
		}
		if prev != nil && model.CompareMatchID(first.MatchID, prev.MatchID) <= 0 {
			return &OrderingError{Prev: prev.Coord(), Got: first.Coord()}
		}
		prev = first
	}
	return nil
}
