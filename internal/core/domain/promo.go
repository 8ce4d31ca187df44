package domain

import (
	"time"

	"github.com/google/uuid"
)

// PromoCode grants wallet credit. Each advertiser may redeem a code once and
// the code stops working after UsageLimit redemptions.
type PromoCode struct {
	ID              uuid.UUID
	Code            string
	Amount          int64
	UsageLimit      int
	RedemptionCount int
	ValidUntil      *time.Time
	IsActive        bool
	CreatedAt       time.Time
}

// PromoRedemption records one redemption. (PromoCodeID, AdvertiserID) is
// unique.
type PromoRedemption struct {
	ID            uuid.UUID
	PromoCodeID   uuid.UUID
	AdvertiserID  uuid.UUID
	WalletID      uuid.UUID
	TransactionID uuid.UUID
	Amount        int64
	CreatedAt     time.Time
}
