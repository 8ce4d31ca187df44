// Package auction ranks eligible ads for one slot and prices the winner with
// a generalized second-price rule.
package auction

import (
	"bytes"
	"math"
	"slices"
	"time"

	"github.com/google/uuid"
)

// priceEpsilon absorbs float noise before rounding a price up.
const priceEpsilon = 1e-9

// Candidate is an ad that survived eligibility, targeting and frequency
// filtering.
type Candidate struct {
	AdID              uuid.UUID
	Bid               int64
	TargetingScore    float64
	QualityScore      float64
	CampaignCreatedAt time.Time
}

// Ranked is a candidate with its computed ranking keys.
type Ranked struct {
	Candidate
	EffectiveBid float64
	AdRank       float64
}

// Outcome is the auction result for a non-empty candidate set.
type Outcome struct {
	Winner   Ranked
	RunnerUp *Ranked
	// Price is what the winner pays per chargeable event.
	Price int64
}

// Rank computes effective bid and ad rank for each candidate and orders
// them best first. Ties go to the oldest campaign, then to the lowest ad id,
// so the order is fully deterministic.
func Rank(candidates []Candidate) []Ranked {
	ranked := make([]Ranked, 0, len(candidates))
	for _, c := range candidates {
		effective := float64(c.Bid) * c.TargetingScore
		ranked = append(ranked, Ranked{
			Candidate:    c,
			EffectiveBid: effective,
			AdRank:       effective * c.QualityScore,
		})
	}
	slices.SortStableFunc(ranked, func(a, b Ranked) int {
		switch {
		case a.AdRank > b.AdRank:
			return -1
		case a.AdRank < b.AdRank:
			return 1
		}
		if c := a.CampaignCreatedAt.Compare(b.CampaignCreatedAt); c != 0 {
			return c
		}
		return bytes.Compare(a.AdID[:], b.AdID[:])
	})
	return ranked
}

// Select runs the auction. It returns false when there are no candidates.
// With secondPrice the winner pays the smallest bid that would still have
// kept it ahead of the runner-up, never more than its own bid; without a
// runner-up, or with secondPrice off, it pays its bid.
func Select(candidates []Candidate, secondPrice bool) (Outcome, bool) {
	ranked := Rank(candidates)
	if len(ranked) == 0 {
		return Outcome{}, false
	}
	out := Outcome{Winner: ranked[0], Price: ranked[0].Bid}
	if len(ranked) > 1 {
		runnerUp := ranked[1]
		out.RunnerUp = &runnerUp
		if secondPrice {
			out.Price = secondPriceFor(out.Winner, runnerUp)
		}
	}
	return out, true
}

func secondPriceFor(winner, runnerUp Ranked) int64 {
	weight := winner.TargetingScore * winner.QualityScore
	if weight <= 0 {
		return winner.Bid
	}
	price := int64(math.Ceil(runnerUp.AdRank/weight - priceEpsilon))
	if price < 1 {
		price = 1
	}
	return min(price, winner.Bid)
}
