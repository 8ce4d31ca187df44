package httpadapter

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"social-ads/internal/core/domain"
	"social-ads/internal/core/port"
)

type walletResponse struct {
	ID              uuid.UUID `json:"id"`
	AdvertiserID    uuid.UUID `json:"advertiser_id"`
	Balance         int64     `json:"balance"`
	IsFrozen        bool      `json:"is_frozen"`
	FrozenReason    string    `json:"frozen_reason,omitempty"`
	LifetimeSpend   int64     `json:"lifetime_spend"`
	LifetimeRefunds int64     `json:"lifetime_refunds"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func toWallet(a domain.WalletAccount) walletResponse {
	return walletResponse{
		ID:              a.ID,
		AdvertiserID:    a.AdvertiserID,
		Balance:         a.Balance,
		IsFrozen:        a.IsFrozen,
		FrozenReason:    a.FrozenReason,
		LifetimeSpend:   a.LifetimeSpend,
		LifetimeRefunds: a.LifetimeRefunds,
		UpdatedAt:       a.UpdatedAt,
	}
}

type transactionResponse struct {
	ID            uuid.UUID                `json:"id"`
	Type          domain.TransactionType   `json:"type"`
	Amount        int64                    `json:"amount"`
	BalanceBefore int64                    `json:"balance_before"`
	BalanceAfter  int64                    `json:"balance_after"`
	Status        domain.TransactionStatus `json:"status"`
	CampaignID    *uuid.UUID               `json:"campaign_id,omitempty"`
	PromoCodeID   *uuid.UUID               `json:"promo_code_id,omitempty"`
	Description   string                   `json:"description,omitempty"`
	Actor         string                   `json:"actor"`
	CreatedAt     time.Time                `json:"created_at"`
}

func toTransaction(t domain.WalletTransaction) transactionResponse {
	return transactionResponse{
		ID:            t.ID,
		Type:          t.Type,
		Amount:        t.Amount,
		BalanceBefore: t.BalanceBefore,
		BalanceAfter:  t.BalanceAfter,
		Status:        t.Status,
		CampaignID:    t.CampaignID,
		PromoCodeID:   t.PromoCodeID,
		Description:   t.Description,
		Actor:         t.Actor,
		CreatedAt:     t.CreatedAt,
	}
}

// idempotencyKey prefers the Idempotency-Key header over the body field.
func idempotencyKey(r *http.Request, body string) string {
	if k := r.Header.Get("Idempotency-Key"); k != "" {
		return k
	}
	return body
}

func (h *Handler) handleGetWallet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	acct, err := h.svc.Wallets.GetWallet(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toWallet(acct))
}

func (h *Handler) handleTransactions(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid limit")
			return
		}
	}
	txs, err := h.svc.Wallets.Transactions(r.Context(), id, limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]transactionResponse, 0, len(txs))
	for _, t := range txs {
		out = append(out, toTransaction(t))
	}
	writeJSON(w, http.StatusOK, out)
}

type topUpRequest struct {
	Amount         int64  `json:"amount"`
	Description    string `json:"description"`
	IdempotencyKey string `json:"idempotency_key"`
}

func (h *Handler) handleTopUp(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req topUpRequest
	if err = decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	t, err := h.svc.Wallets.Credit(r.Context(), domain.LedgerRequest{
		WalletID:       id,
		Amount:         req.Amount,
		Type:           domain.TxTopUp,
		IdempotencyKey: idempotencyKey(r, req.IdempotencyKey),
		Description:    req.Description,
		Actor:          callerFrom(r.Context()).Actor,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransaction(t))
}

type redeemRequest struct {
	Code        string    `json:"code"`
	PromoCodeID uuid.UUID `json:"promo_code_id"`
}

// handleRedeemPromo redeems a promo code for X-Advertiser-ID.
func (h *Handler) handleRedeemPromo(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	c := callerFrom(r.Context())
	if c.AdvertiserID == uuid.Nil {
		writeMessage(w, http.StatusUnauthorized, "missing X-Advertiser-ID")
		return
	}
	var req redeemRequest
	if err = decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	t, err := h.svc.Wallets.RedeemPromo(r.Context(), port.RedeemRequest{
		PromoCodeID:  req.PromoCodeID,
		Code:         req.Code,
		AdvertiserID: c.AdvertiserID,
		WalletID:     id,
		Actor:        c.Actor,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransaction(t))
}

type refundRequest struct {
	AdvertiserID   uuid.UUID `json:"advertiser_id"`
	CampaignID     uuid.UUID `json:"campaign_id"`
	Amount         int64     `json:"amount"`
	Reason         string    `json:"reason"`
	IdempotencyKey string    `json:"idempotency_key"`
}

func (h *Handler) handleRefund(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req refundRequest
	if err = decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	t, err := h.svc.Wallets.Refund(r.Context(), port.RefundRequest{
		WalletID:       id,
		AdvertiserID:   req.AdvertiserID,
		CampaignID:     req.CampaignID,
		Amount:         req.Amount,
		Reason:         req.Reason,
		Actor:          callerFrom(r.Context()).Actor,
		IdempotencyKey: idempotencyKey(r, req.IdempotencyKey),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransaction(t))
}

type disputeRequest struct {
	AdvertiserID   uuid.UUID `json:"advertiser_id"`
	Amount         int64     `json:"amount"`
	Reason         string    `json:"reason"`
	IdempotencyKey string    `json:"idempotency_key"`
}

func (h *Handler) handleResolveDispute(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req disputeRequest
	if err = decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	t, err := h.svc.Wallets.ResolveDispute(r.Context(), port.DisputeResolution{
		WalletID:       id,
		AdvertiserID:   req.AdvertiserID,
		Amount:         req.Amount,
		Reason:         req.Reason,
		Actor:          callerFrom(r.Context()).Actor,
		IdempotencyKey: idempotencyKey(r, req.IdempotencyKey),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransaction(t))
}

func (h *Handler) handleFreeze(w http.ResponseWriter, r *http.Request) {
	cmd, err := command(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	acct, err := h.svc.Wallets.Freeze(r.Context(), cmd.ID, cmd.Reason, cmd.Actor)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toWallet(acct))
}

func (h *Handler) handleUnfreeze(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	acct, err := h.svc.Wallets.Unfreeze(r.Context(), id, callerFrom(r.Context()).Actor)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toWallet(acct))
}

// handleVerify recomputes the wallet balance from its ledger.
func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err = h.svc.Wallets.Verify(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"consistent": true})
}
