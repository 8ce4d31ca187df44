package httpadapter

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"social-ads/internal/core/port"
)

// Services groups the use cases the HTTP layer exposes. Ingest is optional:
// when set, events posted with ?async=true are queued instead of recorded
// inline.
type Services struct {
	Auction   port.AuctionUseCase
	Events    port.EventUseCase
	Wallets   port.WalletUseCase
	Lifecycle port.LifecycleUseCase
	Campaigns port.CampaignUseCase
	Ingest    port.EventPublisher
}

// Handler is the inbound HTTP adapter. Identity comes from a trusted
// gateway through the X-Advertiser-ID and X-Actor-ID headers.
type Handler struct {
	svc    Services
	logger *slog.Logger
	router chi.Router
}

// NewHandler creates a handler with all routes configured.
func NewHandler(svc Services, logger *slog.Logger) *Handler {
	h := &Handler{svc: svc, logger: logger}
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer, identity)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/ad/request", h.handleAdRequest)
		r.Get("/ad/click/{adID}", h.handleAdClick)
		r.Post("/events", h.handleRecordEvent)
		r.Get("/stats/overview", h.handleStatsOverview)

		r.Group(func(r chi.Router) {
			r.Use(requireActor)

			r.Post("/campaigns", h.handleCreateCampaign)
			r.Get("/campaigns/{id}", h.handleGetCampaign)
			r.Get("/campaigns/{id}/ads", h.handleListAds)
			r.Post("/campaigns/{id}/ad-groups", h.handleCreateAdGroup)
			r.Post("/campaigns/{id}/{action}", h.handleCampaignAction)
			r.Post("/ad-groups/{id}/ads", h.handleCreateAd)
			r.Get("/ads/{id}", h.handleGetAd)
			r.Post("/ads/{id}/{action}", h.handleAdAction)

			r.Get("/wallets/{id}", h.handleGetWallet)
			r.Get("/wallets/{id}/transactions", h.handleTransactions)
			r.Post("/wallets/{id}/top-up", h.handleTopUp)
			r.Post("/wallets/{id}/redeem", h.handleRedeemPromo)

			r.Route("/admin", func(r chi.Router) {
				r.Post("/wallets/{id}/refunds", h.handleRefund)
				r.Post("/wallets/{id}/disputes", h.handleResolveDispute)
				r.Post("/wallets/{id}/freeze", h.handleFreeze)
				r.Post("/wallets/{id}/unfreeze", h.handleUnfreeze)
				r.Get("/wallets/{id}/verify", h.handleVerify)
				r.Post("/reconcile", h.handleReconcile)
			})
		})
	})
	h.router = r
	return h
}

// Router returns the underlying http.Handler.
func (h *Handler) Router() http.Handler {
	return h.router
}
