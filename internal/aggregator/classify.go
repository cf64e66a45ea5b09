package aggregator

import "github.com/pable/go-cricket-metrics/internal/model"

// countsForBatter reports whether the delivery is a ball faced whose bat runs
// belong to the striker. Wides are not faced; byes, leg-byes and penalties
// are not credited to the batter.
func countsForBatter(e model.ExtrasType) bool {
	return e == model.ExtrasNone || e == model.ExtrasNoBall
}

// countsForBowler reports whether the delivery counts toward the bowler's overs.
func countsForBowler(e model.ExtrasType) bool {
	return e != model.ExtrasWide
}

// runsConceded is the bowler's charge for a delivery: bat runs plus wide and
// no-ball extras. Byes and leg-byes are not charged.
func runsConceded(d *model.Delivery) int {
	runs := d.BatsmanRuns
	if chargedExtra(d.Extras) {
		runs += d.ExtraRuns
	}
	return runs
}

func chargedExtra(e model.ExtrasType) bool {
	return e == model.ExtrasWide || e == model.ExtrasNoBall
}

// isDotBall is a legal delivery with nothing off the bat.
func isDotBall(d *model.Delivery) bool {
	return d.BatsmanRuns == 0 && !chargedExtra(d.Extras)
}

func isNullIdentity(s string) bool {
	return model.IsNullValue(s)
}
