package domain

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType is the kind of advertiser notice emitted by the engine.
type NotificationType string

const (
	NotifyCampaignActivated NotificationType = "CAMPAIGN_ACTIVATED"
	NotifyAdApproved        NotificationType = "AD_APPROVED"
	NotifyAdRejected        NotificationType = "AD_REJECTED"
	NotifyRefundProcessed   NotificationType = "WALLET_REFUND_PROCESSED"
	NotifyDisputeResolved   NotificationType = "DISPUTE_RESOLVED"
)

// Notification is a fire-and-forget message keyed by advertiser.
type Notification struct {
	ID           uuid.UUID         `json:"id"`
	Type         NotificationType  `json:"type"`
	AdvertiserID uuid.UUID         `json:"advertiser_id"`
	EntityID     uuid.UUID         `json:"entity_id"`
	Message      string            `json:"message"`
	Data         map[string]string `json:"data,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}
