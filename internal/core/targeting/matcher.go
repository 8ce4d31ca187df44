// Package targeting decides whether an ad group's rules admit a viewer and
// how well the viewer fits.
//
// Location, platform and device rules gate: a populated list the viewer is
// not in rejects the match. Audience rules only adjust the relevance score,
// which starts at BaseScore, so broad campaigns still reach people while
// closer fits rank higher.
package targeting

import (
	"strings"

	"social-ads/internal/core/domain"
)

const (
	BaseScore           = 1.0
	NetWorthBoost       = 0.2
	InfluenceBoost      = 0.1
	InterestBoostEach   = 0.1
	MaxInterestOverlap  = 3
	IndustryBoost       = 0.15
	IndustryMissPenalty = 0.7
	InterestMissPenalty = 0.5
)

// Result is the outcome of Match. Score is zero when Matches is false.
type Result struct {
	Matches bool
	Score   float64
}

// Match evaluates rules against the viewer.
func Match(rules domain.Targeting, viewer domain.ViewerContext) Result {
	if !admits(rules.Countries, viewer.Country) ||
		!admits(rules.Platforms, viewer.Platform) ||
		!admits(rules.DeviceTypes, viewer.DeviceType) ||
		!admits(rules.Cities, viewer.City) {
		return Result{}
	}

	score := BaseScore
	if len(rules.NetWorthTiers) > 0 && contains(rules.NetWorthTiers, viewer.NetWorthTier) {
		score += NetWorthBoost
	}
	if rules.MinInfluenceScore > 0 && viewer.InfluenceScore >= rules.MinInfluenceScore {
		score += InfluenceBoost
	}
	if len(rules.Interests) > 0 {
		overlap := overlapCount(rules.Interests, viewer.Interests)
		if overlap > 0 {
			score += InterestBoostEach * float64(min(overlap, MaxInterestOverlap))
		} else {
			score *= InterestMissPenalty
		}
	}
	if len(rules.Industries) > 0 {
		if contains(rules.Industries, viewer.Industry) {
			score += IndustryBoost
		} else {
			score *= IndustryMissPenalty
		}
	}
	return Result{Matches: true, Score: score}
}

// admits implements a gating rule: an empty list admits everyone.
func admits(allowed []string, value string) bool {
	return len(allowed) == 0 || contains(allowed, value)
}

func contains(list []string, value string) bool {
	if value == "" {
		return false
	}
	for _, v := range list {
		if strings.EqualFold(v, value) {
			return true
		}
	}
	return false
}

// overlapCount counts distinct rule entries present in the viewer's list.
func overlapCount(rules, viewer []string) int {
	n := 0
	seen := make(map[string]struct{}, len(rules))
	for _, r := range rules {
		key := strings.ToLower(r)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if contains(viewer, r) {
			n++
		}
	}
	return n
}
