package domain

import "time"

// Settings is an immutable snapshot of runtime engine switches. The host
// refreshes it periodically and hands the current value to the engine; the
// engine never reads flags from global state.
type Settings struct {
	// AuctionTimeout bounds one selectWinner call. A timeout yields
	// NoEligibleAd.
	AuctionTimeout time.Duration
	// CandidateRetries is how many extra attempts the idempotent candidate
	// read gets on infrastructure failure.
	CandidateRetries int
	RetryBackoff     time.Duration
	// SecondPrice charges the generalized second price instead of the bid.
	SecondPrice bool
	// AutoActivate advances DRAFT/PENDING_REVIEW campaigns when an ad is
	// approved.
	AutoActivate bool
	// QualityWindowDays is how many days of ad stats feed the quality score.
	QualityWindowDays int
}

// DefaultSettings returns the values used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		AuctionTimeout:    50 * time.Millisecond,
		CandidateRetries:  2,
		RetryBackoff:      5 * time.Millisecond,
		SecondPrice:       true,
		AutoActivate:      true,
		QualityWindowDays: 7,
	}
}
