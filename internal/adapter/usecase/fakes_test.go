package usecase

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"social-ads/internal/core/domain"
	"social-ads/internal/core/port"
)

// memStore is an in-memory stand-in for the postgres adapter. InTx holds a
// store-wide lock, which is stricter than the per-wallet row lock but gives
// the same guarantees to the code under test. Writes made inside a
// transaction are staged and only applied on commit.
type memStore struct {
	mu sync.Mutex

	advertisers map[uuid.UUID]domain.Advertiser
	wallets     map[uuid.UUID]domain.WalletAccount
	txs         []domain.WalletTransaction
	promos      map[uuid.UUID]domain.PromoCode
	redemptions []domain.PromoRedemption
	campaigns   map[uuid.UUID]domain.Campaign
	groups      map[uuid.UUID]domain.AdGroup
	ads         map[uuid.UUID]domain.Ad
	events      []domain.AdEvent
	counters    map[string]int64
	audits      []domain.AuditEntry

	// loseUpdates makes the next n conditional status updates report a lost
	// race without writing.
	loseUpdates int
	// mangle, when set, alters every wallet transaction as it is written.
	mangle func(*domain.WalletTransaction)
}

func newMemStore() *memStore {
	return &memStore{
		advertisers: make(map[uuid.UUID]domain.Advertiser),
		wallets:     make(map[uuid.UUID]domain.WalletAccount),
		promos:      make(map[uuid.UUID]domain.PromoCode),
		campaigns:   make(map[uuid.UUID]domain.Campaign),
		groups:      make(map[uuid.UUID]domain.AdGroup),
		ads:         make(map[uuid.UUID]domain.Ad),
		counters:    make(map[string]int64),
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// seed helpers

// addAdvertiser creates an active advertiser with a wallet funded by one
// TOP_UP transaction.
func (s *memStore) addAdvertiser(balance int64) (advertiserID, walletID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	advertiserID, walletID = uuid.New(), uuid.New()
	now := time.Now().UTC()
	s.advertisers[advertiserID] = domain.Advertiser{ID: advertiserID, UserID: uuid.NewString(), Status: domain.AdvertiserActive, CreatedAt: now}
	s.wallets[walletID] = domain.WalletAccount{ID: walletID, AdvertiserID: advertiserID, Balance: balance, CreatedAt: now, UpdatedAt: now}
	if balance > 0 {
		s.txs = append(s.txs, domain.WalletTransaction{
			ID: uuid.New(), WalletID: walletID, Type: domain.TxTopUp, Amount: balance,
			BalanceAfter: balance, Status: domain.TxCompleted, CreatedAt: now,
		})
	}
	return advertiserID, walletID
}

func (s *memStore) putCampaign(c domain.Campaign) domain.Campaign {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	if c.Objective == "" {
		c.Objective = domain.ObjectiveTraffic
	}
	if c.BudgetType == "" {
		c.BudgetType = domain.BudgetLifetime
	}
	s.campaigns[c.ID] = c
	return c
}

func (s *memStore) putAdGroup(g domain.AdGroup) domain.AdGroup {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	s.groups[g.ID] = g
	return g
}

func (s *memStore) putAd(ad domain.Ad) domain.Ad {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ad.ID == uuid.Nil {
		ad.ID = uuid.New()
	}
	if ad.CampaignID == uuid.Nil {
		ad.CampaignID = s.groups[ad.AdGroupID].CampaignID
	}
	s.ads[ad.ID] = ad
	return ad
}

func (s *memStore) putPromo(p domain.PromoCode) domain.PromoCode {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	s.promos[p.ID] = p
	return p
}

func (s *memStore) wallet(t *testing.T, id uuid.UUID) domain.WalletAccount {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wallets[id]
	require.True(t, ok, "wallet %s", id)
	return w
}

func (s *memStore) campaign(t *testing.T, id uuid.UUID) domain.Campaign {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.campaigns[id]
	require.True(t, ok, "campaign %s", id)
	return c
}

func (s *memStore) ad(t *testing.T, id uuid.UUID) domain.Ad {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	ad, ok := s.ads[id]
	require.True(t, ok, "ad %s", id)
	return ad
}

func (s *memStore) walletTxs(walletID uuid.UUID) []domain.WalletTransaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.WalletTransaction
	for _, t := range s.txs {
		if t.WalletID == walletID {
			out = append(out, t)
		}
	}
	return out
}

// port.WalletRepository

func (s *memStore) InTx(ctx context.Context, walletID uuid.UUID, fn func(ctx context.Context, tx port.WalletTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wallets[walletID]
	if !ok {
		return domain.ErrNotFound
	}
	tx := &memTx{
		s:         s,
		wallet:    w,
		promos:    make(map[uuid.UUID]domain.PromoCode),
		campaigns: make(map[uuid.UUID]domain.Campaign),
		counters:  make(map[string]int64),
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

func (s *memStore) GetWallet(_ context.Context, id uuid.UUID) (*domain.WalletAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wallets[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &w, nil
}

func (s *memStore) GetWalletByAdvertiser(_ context.Context, advertiserID uuid.UUID) (*domain.WalletAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.wallets {
		if w.AdvertiserID == advertiserID {
			return &w, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *memStore) ListTransactions(_ context.Context, walletID uuid.UUID, limit int) ([]domain.WalletTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.WalletTransaction
	for i := len(s.txs) - 1; i >= 0 && len(out) < limit; i-- {
		if s.txs[i].WalletID == walletID {
			out = append(out, s.txs[i])
		}
	}
	return out, nil
}

func (s *memStore) SumCompleted(_ context.Context, walletID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sum int64
	for _, t := range s.txs {
		if t.WalletID == walletID && t.Status == domain.TxCompleted {
			sum += t.Amount
		}
	}
	return sum, nil
}

func (s *memStore) GetPromoByCode(_ context.Context, code string) (*domain.PromoCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.promos {
		if p.Code == code {
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

// memTx stages writes until commit.
type memTx struct {
	s           *memStore
	wallet      domain.WalletAccount
	txs         []domain.WalletTransaction
	redemptions []domain.PromoRedemption
	promos      map[uuid.UUID]domain.PromoCode
	campaigns   map[uuid.UUID]domain.Campaign
	events      []domain.AdEvent
	counters    map[string]int64
}

func (t *memTx) commit() {
	s := t.s
	s.wallets[t.wallet.ID] = t.wallet
	s.txs = append(s.txs, t.txs...)
	s.redemptions = append(s.redemptions, t.redemptions...)
	for id, p := range t.promos {
		s.promos[id] = p
	}
	for id, c := range t.campaigns {
		stored := s.campaigns[id]
		stored.BudgetSpent, stored.SpendPeriod = c.BudgetSpent, c.SpendPeriod
		s.campaigns[id] = stored
	}
	s.events = append(s.events, t.events...)
	for k, v := range t.counters {
		s.counters[k] += v
	}
}

func (t *memTx) Wallet() domain.WalletAccount { return t.wallet }

func (t *memTx) UpdateWallet(_ context.Context, w domain.WalletAccount) error {
	t.wallet = w
	return nil
}

func (t *memTx) FindTransaction(_ context.Context, key string) (*domain.WalletTransaction, error) {
	for _, list := range [][]domain.WalletTransaction{t.s.txs, t.txs} {
		for _, tr := range list {
			if tr.WalletID == t.wallet.ID && tr.IdempotencyKey == key {
				return &tr, nil
			}
		}
	}
	return nil, nil
}

func (t *memTx) InsertTransaction(_ context.Context, tr domain.WalletTransaction) error {
	if t.s.mangle != nil {
		t.s.mangle(&tr)
	}
	t.txs = append(t.txs, tr)
	return nil
}

func (t *memTx) GetTransaction(_ context.Context, id uuid.UUID) (domain.WalletTransaction, error) {
	for _, list := range [][]domain.WalletTransaction{t.txs, t.s.txs} {
		for _, tr := range list {
			if tr.ID == id && tr.WalletID == t.wallet.ID {
				return tr, nil
			}
		}
	}
	return domain.WalletTransaction{}, domain.ErrNotFound
}

func (t *memTx) LockPromo(_ context.Context, id uuid.UUID) (domain.PromoCode, error) {
	if p, ok := t.promos[id]; ok {
		return p, nil
	}
	p, ok := t.s.promos[id]
	if !ok {
		return domain.PromoCode{}, domain.ErrNotFound
	}
	return p, nil
}

func (t *memTx) HasRedemption(_ context.Context, promoID, advertiserID uuid.UUID) (bool, error) {
	for _, list := range [][]domain.PromoRedemption{t.s.redemptions, t.redemptions} {
		for _, r := range list {
			if r.PromoCodeID == promoID && r.AdvertiserID == advertiserID {
				return true, nil
			}
		}
	}
	return false, nil
}

func (t *memTx) InsertRedemption(ctx context.Context, r domain.PromoRedemption) error {
	if dup, _ := t.HasRedemption(ctx, r.PromoCodeID, r.AdvertiserID); dup {
		return domain.ErrAlreadyRedeemed
	}
	t.redemptions = append(t.redemptions, r)
	return nil
}

func (t *memTx) LockCampaign(_ context.Context, id uuid.UUID) (domain.Campaign, error) {
	if c, ok := t.campaigns[id]; ok {
		return c, nil
	}
	c, ok := t.s.campaigns[id]
	if !ok {
		return domain.Campaign{}, domain.ErrNotFound
	}
	return c, nil
}

func (t *memTx) UpdateCampaignSpend(_ context.Context, c domain.Campaign) error {
	t.campaigns[c.ID] = c
	return nil
}

func (t *memTx) AppendEvent(_ context.Context, e domain.AdEvent) error {
	if t.s.hasEvent(e.ID) || slices.ContainsFunc(t.events, func(x domain.AdEvent) bool { return x.ID == e.ID }) {
		return domain.ErrDuplicateEvent
	}
	t.events = append(t.events, e)
	return nil
}

func (t *memTx) Increment(_ context.Context, c domain.Counter, id uuid.UUID, delta int64) (int64, error) {
	key := string(c) + ":" + id.String()
	if c == domain.CounterPromoRedemptions {
		p, err := t.LockPromo(context.Background(), id)
		if err != nil {
			return 0, err
		}
		p.RedemptionCount += int(delta)
		t.promos[id] = p
		return int64(p.RedemptionCount), nil
	}
	t.counters[key] += delta
	return t.s.counters[key] + t.counters[key], nil
}

func (s *memStore) hasEvent(id uuid.UUID) bool {
	return slices.ContainsFunc(s.events, func(x domain.AdEvent) bool { return x.ID == id })
}

// port.CampaignRepository

func (s *memStore) GetCampaign(_ context.Context, id uuid.UUID) (*domain.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.campaigns[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (s *memStore) CreateCampaign(_ context.Context, c domain.Campaign) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.campaigns[c.ID] = c
	return nil
}

func (s *memStore) UpdateCampaignStatus(_ context.Context, id uuid.UUID, from, to domain.CampaignStatus, audit domain.AuditEntry) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loseUpdates > 0 {
		s.loseUpdates--
		return false, nil
	}
	c, ok := s.campaigns[id]
	if !ok {
		return false, domain.ErrNotFound
	}
	if c.Status != from {
		return false, nil
	}
	c.Status = to
	c.UpdatedAt = audit.CreatedAt
	s.campaigns[id] = c
	s.audits = append(s.audits, audit)
	return true, nil
}

func (s *memStore) ListOrphanedCampaigns(_ context.Context, limit int) ([]domain.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Campaign
	for _, c := range s.campaigns {
		if c.Status.BlocksAutoActivation() {
			continue
		}
		for _, ad := range s.ads {
			if ad.CampaignID == c.ID && ad.Status.Servable() {
				out = append(out, c)
				break
			}
		}
	}
	slices.SortFunc(out, func(a, b domain.Campaign) int { return a.CreatedAt.Compare(b.CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memStore) GetAdvertiser(_ context.Context, id uuid.UUID) (*domain.Advertiser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.advertisers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

// port.AdRepository

func (s *memStore) GetAdGroup(_ context.Context, id uuid.UUID) (*domain.AdGroup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &g, nil
}

func (s *memStore) CreateAdGroup(_ context.Context, g domain.AdGroup) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups[g.ID] = g
	return nil
}

func (s *memStore) GetAd(_ context.Context, id uuid.UUID) (*domain.Ad, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ad, ok := s.ads[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &ad, nil
}

func (s *memStore) CreateAd(_ context.Context, ad domain.Ad) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ads[ad.ID] = ad
	return nil
}

func (s *memStore) ListCampaignAds(_ context.Context, campaignID uuid.UUID) ([]domain.Ad, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Ad
	for _, ad := range s.ads {
		if ad.CampaignID == campaignID {
			out = append(out, ad)
		}
	}
	return out, nil
}

func (s *memStore) UpdateAdStatus(_ context.Context, ad domain.Ad, from domain.AdStatus, audit domain.AuditEntry) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.ads[ad.ID]
	if !ok {
		return false, domain.ErrNotFound
	}
	if stored.Status != from {
		return false, nil
	}
	stored.Status, stored.RejectionReason, stored.Reopened, stored.UpdatedAt = ad.Status, ad.RejectionReason, ad.Reopened, ad.UpdatedAt
	s.ads[ad.ID] = stored
	s.audits = append(s.audits, audit)
	return true, nil
}

// port.EventRepository

func (s *memStore) AppendEvent(_ context.Context, e domain.AdEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hasEvent(e.ID) {
		return domain.ErrDuplicateEvent
	}
	s.events = append(s.events, e)
	return nil
}

func (s *memStore) GetEvent(_ context.Context, id uuid.UUID) (*domain.AdEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.events {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *memStore) Increment(_ context.Context, c domain.Counter, id uuid.UUID, delta int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := string(c) + ":" + id.String()
	s.counters[key] += delta
	return s.counters[key], nil
}

func (s *memStore) counter(c domain.Counter, id uuid.UUID) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters[string(c)+":"+id.String()]
}

func (s *memStore) GetStats(_ context.Context, req port.StatsReq) (*port.StatsResp, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out port.StatsResp
	for _, e := range s.events {
		if e.CreatedAt.Before(req.From) || (!req.To.IsZero() && !e.CreatedAt.Before(req.To)) {
			continue
		}
		if req.CampaignID != nil && e.CampaignID != *req.CampaignID {
			continue
		}
		switch e.EventType {
		case domain.EventImpression:
			out.Impressions++
		case domain.EventClick:
			out.Clicks++
		case domain.EventEngagement:
			out.Engagements++
		case domain.EventConversion:
			out.Conversions++
		}
		out.Cost += e.CostAmount
	}
	return &out, nil
}

// port.ImpressionCounter

func (s *memStore) CountImpressions(_ context.Context, adGroupID uuid.UUID, userID string, since time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, e := range s.events {
		if e.EventType == domain.EventImpression && e.AdGroupID == adGroupID && e.UserID == userID && !e.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (s *memStore) RecordImpression(context.Context, domain.AdEvent) error { return nil }

// recordingNotifier keeps every notification it receives.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []domain.Notification
}

func (n *recordingNotifier) Notify(_ context.Context, msg domain.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return nil
}

func (n *recordingNotifier) types() []domain.NotificationType {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]domain.NotificationType, 0, len(n.sent))
	for _, m := range n.sent {
		out = append(out, m.Type)
	}
	return out
}

// engine wires every use case over one memStore.
type engine struct {
	store     *memStore
	notifier  *recordingNotifier
	settings  domain.Settings
	wallet    *WalletUseCase
	lifecycle *LifecycleUseCase
	campaigns *CampaignUseCase
	events    *EventUseCase
}

func newEngine() *engine {
	store := newMemStore()
	n := &recordingNotifier{}
	logger := discardLogger()
	settings := domain.DefaultSettings()
	wallet := NewWalletUseCase(store, n, logger)
	lifecycle := NewLifecycleUseCase(store, store, store, wallet, n, StaticSettings(settings), logger)
	return &engine{
		store:     store,
		notifier:  n,
		settings:  settings,
		wallet:    wallet,
		lifecycle: lifecycle,
		campaigns: NewCampaignUseCase(store, store, store, logger),
		events:    NewEventUseCase(store, store, store, store, wallet, lifecycle, store, nil, logger),
	}
}

// fixture is one advertiser with a campaign, an ad group and a single ad.
type fixture struct {
	advertiserID uuid.UUID
	walletID     uuid.UUID
	campaign     domain.Campaign
	group        domain.AdGroup
	ad           domain.Ad
}

func (e *engine) fixture(balance int64, c domain.Campaign, g domain.AdGroup, adStatus domain.AdStatus) fixture {
	advID, walletID := e.store.addAdvertiser(balance)
	c.AdvertiserID = advID
	c = e.store.putCampaign(c)
	g.CampaignID = c.ID
	if g.BillingModel == "" {
		g.BillingModel = domain.BillingCPC
	}
	if g.BidAmount == 0 {
		g.BidAmount = 50
	}
	g = e.store.putAdGroup(g)
	ad := e.store.putAd(domain.Ad{
		AdGroupID: g.ID,
		Status:    adStatus,
		Creative:  domain.Creative{Headline: "h", DestinationURL: "https://example.com"},
	})
	return fixture{advertiserID: advID, walletID: walletID, campaign: c, group: g, ad: ad}
}
