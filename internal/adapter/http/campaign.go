package httpadapter

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"social-ads/internal/core/domain"
	"social-ads/internal/core/port"
)

type campaignResponse struct {
	ID              uuid.UUID             `json:"id"`
	AdvertiserID    uuid.UUID             `json:"advertiser_id"`
	Name            string                `json:"name"`
	Objective       domain.Objective      `json:"objective"`
	BudgetType      domain.BudgetType     `json:"budget_type"`
	BudgetAmount    int64                 `json:"budget_amount"`
	BudgetSpent     int64                 `json:"budget_spent"`
	RemainingBudget int64                 `json:"remaining_budget"`
	Status          domain.CampaignStatus `json:"status"`
	StartDate       *time.Time            `json:"start_date,omitempty"`
	EndDate         *time.Time            `json:"end_date,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

func toCampaign(c domain.Campaign) campaignResponse {
	return campaignResponse{
		ID:              c.ID,
		AdvertiserID:    c.AdvertiserID,
		Name:            c.Name,
		Objective:       c.Objective,
		BudgetType:      c.BudgetType,
		BudgetAmount:    c.BudgetAmount,
		BudgetSpent:     c.BudgetSpent,
		RemainingBudget: c.RemainingBudget(),
		Status:          c.Status,
		StartDate:       c.StartDate,
		EndDate:         c.EndDate,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

type adGroupResponse struct {
	ID                      uuid.UUID           `json:"id"`
	CampaignID              uuid.UUID           `json:"campaign_id"`
	Name                    string              `json:"name"`
	BidAmount               int64               `json:"bid_amount"`
	BillingModel            domain.BillingModel `json:"billing_model"`
	Targeting               domain.Targeting    `json:"targeting"`
	FrequencyCapImpressions int                 `json:"frequency_cap_impressions"`
	FrequencyCapPeriodHours int                 `json:"frequency_cap_period_hours"`
	Placements              []string            `json:"placements"`
	CreatedAt               time.Time           `json:"created_at"`
}

type adResponse struct {
	ID              uuid.UUID       `json:"id"`
	AdGroupID       uuid.UUID       `json:"ad_group_id"`
	CampaignID      uuid.UUID       `json:"campaign_id"`
	Status          domain.AdStatus `json:"status"`
	Creative        domain.Creative `json:"creative"`
	RejectionReason string          `json:"rejection_reason,omitempty"`
	Reopened        bool            `json:"reopened"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func toAd(a domain.Ad) adResponse {
	return adResponse{
		ID:              a.ID,
		AdGroupID:       a.AdGroupID,
		CampaignID:      a.CampaignID,
		Status:          a.Status,
		Creative:        a.Creative,
		RejectionReason: a.RejectionReason,
		Reopened:        a.Reopened,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

type createCampaignRequest struct {
	Name         string            `json:"name"`
	Objective    domain.Objective  `json:"objective"`
	BudgetType   domain.BudgetType `json:"budget_type"`
	BudgetAmount int64             `json:"budget_amount"`
	StartDate    *time.Time        `json:"start_date"`
	EndDate      *time.Time        `json:"end_date"`
}

// handleCreateCampaign creates a DRAFT campaign owned by X-Advertiser-ID.
func (h *Handler) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	advertiser := callerFrom(r.Context()).AdvertiserID
	if advertiser == uuid.Nil {
		writeMessage(w, http.StatusUnauthorized, "missing X-Advertiser-ID")
		return
	}
	var req createCampaignRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	c, err := h.svc.Campaigns.CreateCampaign(r.Context(), port.NewCampaign{
		AdvertiserID: advertiser,
		Name:         req.Name,
		Objective:    req.Objective,
		BudgetType:   req.BudgetType,
		BudgetAmount: req.BudgetAmount,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCampaign(c))
}

func (h *Handler) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	c, err := h.svc.Campaigns.GetCampaign(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCampaign(c))
}

func (h *Handler) handleListAds(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	ads, err := h.svc.Campaigns.ListAds(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]adResponse, 0, len(ads))
	for _, a := range ads {
		out = append(out, toAd(a))
	}
	writeJSON(w, http.StatusOK, out)
}

type createAdGroupRequest struct {
	Name                    string              `json:"name"`
	BidAmount               int64               `json:"bid_amount"`
	BillingModel            domain.BillingModel `json:"billing_model"`
	Targeting               domain.Targeting    `json:"targeting"`
	FrequencyCapImpressions int                 `json:"frequency_cap_impressions"`
	FrequencyCapPeriodHours int                 `json:"frequency_cap_period_hours"`
	Placements              []string            `json:"placements"`
}

func (h *Handler) handleCreateAdGroup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req createAdGroupRequest
	if err = decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	g, err := h.svc.Campaigns.CreateAdGroup(r.Context(), port.NewAdGroup{
		CampaignID:              id,
		Name:                    req.Name,
		BidAmount:               req.BidAmount,
		BillingModel:            req.BillingModel,
		Targeting:               req.Targeting,
		FrequencyCapImpressions: req.FrequencyCapImpressions,
		FrequencyCapPeriodHours: req.FrequencyCapPeriodHours,
		Placements:              req.Placements,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, adGroupResponse{
		ID:                      g.ID,
		CampaignID:              g.CampaignID,
		Name:                    g.Name,
		BidAmount:               g.BidAmount,
		BillingModel:            g.BillingModel,
		Targeting:               g.Targeting,
		FrequencyCapImpressions: g.FrequencyCapImpressions,
		FrequencyCapPeriodHours: g.FrequencyCapPeriodHours,
		Placements:              g.Placements,
		CreatedAt:               g.CreatedAt,
	})
}

func (h *Handler) handleCreateAd(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var creative domain.Creative
	if err = decode(r, &creative); err != nil {
		h.writeError(w, r, err)
		return
	}
	ad, err := h.svc.Campaigns.CreateAd(r.Context(), port.NewAd{AdGroupID: id, Creative: creative})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAd(ad))
}

func (h *Handler) handleGetAd(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	ad, err := h.svc.Campaigns.GetAd(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAd(ad))
}
