package httpadapter

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"social-ads/internal/core/port"
)

// handleStatsOverview returns aggregated statistics for campaigns over a
// specified period. It accepts optional `from`, `to` (RFC3339 timestamps) and
// `campaign_id` query parameters. If no period is provided, it defaults to
// the last 24 hours.
func (h *Handler) handleStatsOverview(w http.ResponseWriter, r *http.Request) {
	var (
		q       = r.URL.Query()
		fromStr = q.Get("from")
		toStr   = q.Get("to")
		req     port.StatsReq
		err     error
	)

	if fromStr != "" {
		req.From, err = time.Parse(time.RFC3339, fromStr)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid 'from' timestamp")
			return
		}
	} else {
		req.From = time.Now().Add(-24 * time.Hour)
	}

	if toStr != "" {
		req.To, err = time.Parse(time.RFC3339, toStr)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid 'to' timestamp")
			return
		}
	} else {
		req.To = time.Now()
	}

	if cid := q.Get("campaign_id"); cid != "" {
		id, err := uuid.Parse(cid)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid campaign_id")
			return
		}
		req.CampaignID = &id
	}

	stats, err := h.svc.Events.GetStats(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
