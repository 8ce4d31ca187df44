// Package quality estimates creative and engagement strength independent of
// the bid.
package quality

import "social-ads/internal/core/domain"

const (
	MinScore = 0.1
	MaxScore = 1.0
)

// Score returns a value in [MinScore, MaxScore] for the ad given its
// click-through and engagement rates, both expressed as fractions. It is
// deterministic so that auctions can be replayed.
func Score(creative domain.Creative, ctr, engagementRate float64) float64 {
	score := 0.5
	switch {
	case ctr > 0.05:
		score += 0.2
	case ctr > 0.02:
		score += 0.1
	}
	switch {
	case engagementRate > 0.10:
		score += 0.15
	case engagementRate > 0.05:
		score += 0.08
	}
	if creative.HasCopy() {
		score += 0.1
	}
	if creative.HasMedia() {
		score += 0.05
	}
	return max(MinScore, min(MaxScore, score))
}
