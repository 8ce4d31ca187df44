package httpadapter

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"social-ads/internal/core/domain"
	"social-ads/internal/core/port"
)

type transitionRequest struct {
	Reason string `json:"reason"`
}

// command builds a lifecycle command from the path id, the caller and an
// optional {"reason": ...} body.
func command(r *http.Request) (port.Command, error) {
	id, err := pathID(r)
	if err != nil {
		return port.Command{}, err
	}
	var req transitionRequest
	if err = decodeOptional(r, &req); err != nil {
		return port.Command{}, err
	}
	return port.Command{ID: id, Actor: callerFrom(r.Context()).Actor, Reason: req.Reason}, nil
}

func (h *Handler) campaignActions() map[string]func(context.Context, port.Command) (domain.Campaign, error) {
	lc := h.svc.Lifecycle
	return map[string]func(context.Context, port.Command) (domain.Campaign, error){
		"submit":   lc.SubmitCampaign,
		"approve":  lc.ApproveCampaign,
		"reject":   lc.RejectCampaign,
		"pause":    lc.PauseCampaign,
		"resume":   lc.ResumeCampaign,
		"complete": lc.CompleteCampaign,
		"archive":  lc.ArchiveCampaign,
	}
}

func (h *Handler) adActions() map[string]func(context.Context, port.Command) (domain.Ad, error) {
	lc := h.svc.Lifecycle
	return map[string]func(context.Context, port.Command) (domain.Ad, error){
		"submit":   lc.SubmitAd,
		"review":   lc.StartReview,
		"approve":  lc.ApproveAd,
		"activate": lc.ActivateAd,
		"reject":   lc.RejectAd,
		"reopen":   lc.ReopenAd,
	}
}

// handleCampaignAction runs POST /campaigns/{id}/{action}.
func (h *Handler) handleCampaignAction(w http.ResponseWriter, r *http.Request) {
	action, ok := h.campaignActions()[chi.URLParam(r, "action")]
	if !ok {
		http.NotFound(w, r)
		return
	}
	cmd, err := command(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	c, err := action(r.Context(), cmd)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCampaign(c))
}

// handleAdAction runs POST /ads/{id}/{action}.
func (h *Handler) handleAdAction(w http.ResponseWriter, r *http.Request) {
	action, ok := h.adActions()[chi.URLParam(r, "action")]
	if !ok {
		http.NotFound(w, r)
		return
	}
	cmd, err := command(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	ad, err := action(r.Context(), cmd)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAd(ad))
}

// handleReconcile runs one orphan sweep on demand.
func (h *Handler) handleReconcile(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Lifecycle.ReconcileOrphans(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.logger.Info("manual reconcile", slog.String("actor", callerFrom(r.Context()).Actor), slog.Int("repaired", n))
	writeJSON(w, http.StatusOK, map[string]int{"repaired": n})
}
