package httpadapter

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"social-ads/internal/core/domain"
	"social-ads/internal/core/port"
)

type eventRequest struct {
	ID            uuid.UUID        `json:"id"`
	AdID          uuid.UUID        `json:"ad_id"`
	UserID        string           `json:"user_id"`
	EventType     domain.EventType `json:"event_type"`
	ClearingPrice int64            `json:"clearing_price"`
	Placement     string           `json:"placement"`
}

type receiptResponse struct {
	Event       domain.AdEvent       `json:"event"`
	Billed      bool                 `json:"billed"`
	Duplicate   bool                 `json:"duplicate"`
	Reason      string               `json:"reason,omitempty"`
	Transaction *transactionResponse `json:"transaction,omitempty"`
}

func toReceipt(rc port.EventReceipt) receiptResponse {
	out := receiptResponse{Event: rc.Event, Billed: rc.Billed, Duplicate: rc.Duplicate, Reason: rc.Reason}
	if rc.Transaction != nil {
		t := toTransaction(*rc.Transaction)
		out.Transaction = &t
	}
	return out
}

// handleRecordEvent records a delivered ad event and meters its cost. With
// ?async=true and an ingestion queue configured, the event is queued and
// HTTP 202 is returned.
func (h *Handler) handleRecordEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	e := domain.AdEvent{
		ID:            req.ID,
		AdID:          req.AdID,
		UserID:        req.UserID,
		EventType:     req.EventType,
		ClearingPrice: req.ClearingPrice,
		Placement:     req.Placement,
	}
	if e.UserID == "" {
		e.UserID = callerFrom(r.Context()).Actor
	}

	if async, _ := strconv.ParseBool(r.URL.Query().Get("async")); async && h.svc.Ingest != nil {
		if e.ID == uuid.Nil {
			e.ID = uuid.New()
		}
		if !e.EventType.Valid() || e.AdID == uuid.Nil {
			writeMessage(w, http.StatusBadRequest, "event_type and ad_id are required")
			return
		}
		if err := h.svc.Ingest.PublishEvent(r.Context(), e); err != nil {
			h.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]string{"id": e.ID.String()})
		return
	}

	receipt, err := h.svc.Events.RecordEvent(r.Context(), e)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	status := http.StatusCreated
	if receipt.Duplicate {
		status = http.StatusOK
	}
	writeJSON(w, status, toReceipt(receipt))
}

// handleAdClick records a CLICK for the ad and redirects the viewer to the
// creative's destination. The optional user_id, placement and price query
// parameters are copied onto the event. A failure to record the click is
// logged but does not block the redirect.
func (h *Handler) handleAdClick(w http.ResponseWriter, r *http.Request) {
	adID, err := uuid.Parse(chi.URLParam(r, "adID"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid ad id")
		return
	}
	ad, err := h.svc.Campaigns.GetAd(r.Context(), adID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if ad.Creative.DestinationURL == "" {
		http.NotFound(w, r)
		return
	}

	q := r.URL.Query()
	e := domain.AdEvent{
		AdID:      adID,
		UserID:    q.Get("user_id"),
		EventType: domain.EventClick,
		Placement: q.Get("placement"),
	}
	if raw := q.Get("price"); raw != "" {
		if e.ClearingPrice, err = strconv.ParseInt(raw, 10, 64); err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid price")
			return
		}
	}
	if _, err = h.svc.Events.RecordEvent(r.Context(), e); err != nil {
		h.logger.Warn("click not recorded", slog.String("ad_id", adID.String()), slog.Any("error", err))
	}
	http.Redirect(w, r, ad.Creative.DestinationURL, http.StatusFound)
}
