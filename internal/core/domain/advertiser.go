package domain

import (
	"time"

	"github.com/google/uuid"
)

// AdvertiserStatus tells whether an advertiser may run campaigns.
type AdvertiserStatus string

const (
	AdvertiserActive    AdvertiserStatus = "ACTIVE"
	AdvertiserSuspended AdvertiserStatus = "SUSPENDED"
)

// Advertiser is a platform user who buys ads. Each advertiser owns exactly
// one wallet.
type Advertiser struct {
	ID                 uuid.UUID
	UserID             string
	Status             AdvertiserStatus
	VerificationStatus string
	CreatedAt          time.Time
}
