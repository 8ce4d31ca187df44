package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Targeting describes who should see an ad group. An empty list means the
// dimension is unconstrained.
type Targeting struct {
	NetWorthTiers     []string `json:"net_worth_tiers,omitempty"`
	MinInfluenceScore float64  `json:"min_influence_score,omitempty"`
	Interests         []string `json:"interests,omitempty"`
	Industries        []string `json:"industries,omitempty"`
	Countries         []string `json:"countries,omitempty"`
	Cities            []string `json:"cities,omitempty"`
	Platforms         []string `json:"platforms,omitempty"`
	DeviceTypes       []string `json:"device_types,omitempty"`
}

// Validate rejects malformed rules: blank list entries and a negative
// influence threshold.
func (t Targeting) Validate() error {
	if t.MinInfluenceScore < 0 {
		return &ValidationError{Field: "targeting.min_influence_score", Reason: "must not be negative"}
	}
	lists := map[string][]string{
		"net_worth_tiers": t.NetWorthTiers,
		"interests":       t.Interests,
		"industries":      t.Industries,
		"countries":       t.Countries,
		"cities":          t.Cities,
		"platforms":       t.Platforms,
		"device_types":    t.DeviceTypes,
	}
	for name, values := range lists {
		for i, v := range values {
			if strings.TrimSpace(v) == "" {
				return &ValidationError{Field: fmt.Sprintf("targeting.%s[%d]", name, i), Reason: "must not be blank"}
			}
		}
	}
	return nil
}

// BillingModel decides which event type is chargeable for an ad group.
type BillingModel string

const (
	BillingCPM BillingModel = "CPM" // per thousand impressions
	BillingCPC BillingModel = "CPC" // per click
	BillingCPE BillingModel = "CPE" // per engagement
	BillingCPA BillingModel = "CPA" // per conversion
)

// Valid reports whether m is a known billing model.
func (m BillingModel) Valid() bool {
	switch m {
	case BillingCPM, BillingCPC, BillingCPE, BillingCPA:
		return true
	}
	return false
}

// ChargeableEvent returns the event type this billing model charges for.
func (m BillingModel) ChargeableEvent() EventType {
	switch m {
	case BillingCPM:
		return EventImpression
	case BillingCPC:
		return EventClick
	case BillingCPE:
		return EventEngagement
	case BillingCPA:
		return EventConversion
	default:
		return ""
	}
}

// Cost converts a unit price into the amount charged for one chargeable
// event. CPM prices are per thousand impressions and round up.
func (m BillingModel) Cost(price int64) int64 {
	if price <= 0 {
		return 0
	}
	if m == BillingCPM {
		return (price + 999) / 1000
	}
	return price
}

// AdGroup carries targeting rules and delivery controls for a set of ads.
type AdGroup struct {
	ID                      uuid.UUID
	CampaignID              uuid.UUID
	Name                    string
	BidAmount               int64
	BillingModel            BillingModel
	Targeting               Targeting
	FrequencyCapImpressions int
	FrequencyCapPeriodHours int
	Placements              []string
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// ServesPlacement reports whether the ad group may fill the given slot. An
// ad group without placements serves everywhere.
func (g AdGroup) ServesPlacement(placement string) bool {
	if len(g.Placements) == 0 || placement == "" {
		return true
	}
	for _, p := range g.Placements {
		if strings.EqualFold(p, placement) {
			return true
		}
	}
	return false
}
