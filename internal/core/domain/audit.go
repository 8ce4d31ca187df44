package domain

import (
	"time"

	"github.com/google/uuid"
)

// EntityKind names what an audit entry refers to.
type EntityKind string

const (
	EntityCampaign EntityKind = "campaign"
	EntityAd       EntityKind = "ad"
	EntityWallet   EntityKind = "wallet"
)

// SystemActor is recorded when the engine itself performs a transition.
const SystemActor = "system"

// AuditEntry records a state change: who, from what, to what and why.
type AuditEntry struct {
	ID         uuid.UUID
	Entity     EntityKind
	EntityID   uuid.UUID
	Actor      string
	FromStatus string
	ToStatus   string
	Reason     string
	CreatedAt  time.Time
}
