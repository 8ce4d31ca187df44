package httpadapter

import (
	"log/slog"
	"net/http"

	"social-ads/internal/core/domain"
)

// handleAdRequest fills one ad slot. The body is a domain.PlacementRequest;
// when the viewer has no user id the X-Actor-ID header is used. An empty
// slot returns HTTP 204 with the reason in X-No-Fill-Reason.
func (h *Handler) handleAdRequest(w http.ResponseWriter, r *http.Request) {
	var req domain.PlacementRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.Viewer.UserID == "" {
		req.Viewer.UserID = callerFrom(r.Context()).Actor
	}

	res, err := h.svc.Auction.SelectWinner(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !res.Filled() {
		w.Header().Set("X-No-Fill-Reason", res.Reason)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.logger.Debug("slot filled",
		slog.String("auction_id", res.AuctionID.String()),
		slog.String("ad_id", res.AdID.String()),
		slog.Int64("price", res.WinningBid))
	writeJSON(w, http.StatusOK, res)
}
