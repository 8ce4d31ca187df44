package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TransactionType is the business reason for a wallet movement.
type TransactionType string

const (
	TxTopUp       TransactionType = "TOP_UP"
	TxAdSpend     TransactionType = "AD_SPEND"
	TxRefund      TransactionType = "REFUND"
	TxPromoCredit TransactionType = "PROMO_CREDIT"
	TxAdminCredit TransactionType = "ADMIN_CREDIT"
	TxAdminDebit  TransactionType = "ADMIN_DEBIT"
	TxAdjustment  TransactionType = "ADJUSTMENT"
)

// Credits reports whether the type may increase a balance.
func (t TransactionType) Credits() bool {
	switch t {
	case TxTopUp, TxRefund, TxPromoCredit, TxAdminCredit, TxAdjustment:
		return true
	case TxAdSpend, TxAdminDebit:
		return false
	}
	return false
}

// Debits reports whether the type may decrease a balance.
func (t TransactionType) Debits() bool {
	switch t {
	case TxAdSpend, TxAdminDebit, TxAdjustment:
		return true
	case TxTopUp, TxRefund, TxPromoCredit, TxAdminCredit:
		return false
	}
	return false
}

// TransactionStatus is the settlement state of a wallet transaction.
type TransactionStatus string

const (
	TxPending   TransactionStatus = "PENDING"
	TxCompleted TransactionStatus = "COMPLETED"
	TxFailed    TransactionStatus = "FAILED"
	TxCancelled TransactionStatus = "CANCELLED"
)

// WalletAccount holds an advertiser's prepaid balance. Balance is only ever
// changed by the wallet ledger and always equals the sum of the signed
// amounts of its completed transactions.
type WalletAccount struct {
	ID              uuid.UUID
	AdvertiserID    uuid.UUID
	Balance         int64
	IsFrozen        bool
	FrozenReason    string
	LifetimeSpend   int64
	LifetimeRefunds int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// WalletTransaction is an immutable audit record. Amount is signed: credits
// are positive, debits negative.
type WalletTransaction struct {
	ID             uuid.UUID
	WalletID       uuid.UUID
	Type           TransactionType
	Amount         int64
	BalanceBefore  int64
	BalanceAfter   int64
	Status         TransactionStatus
	CampaignID     *uuid.UUID
	PromoCodeID    *uuid.UUID
	IdempotencyKey string
	Description    string
	Actor          string
	CreatedAt      time.Time
}

// Verify checks the balance snapshot invariant of a transaction.
func (t WalletTransaction) Verify() error {
	if t.BalanceAfter != t.BalanceBefore+t.Amount {
		return fmt.Errorf("%w: transaction %s has before=%d amount=%d after=%d",
			ErrLedgerInvariant, t.ID, t.BalanceBefore, t.Amount, t.BalanceAfter)
	}
	if t.BalanceAfter < 0 {
		return fmt.Errorf("%w: transaction %s leaves negative balance %d", ErrLedgerInvariant, t.ID, t.BalanceAfter)
	}
	return nil
}

// LedgerRequest describes one credit or debit. Amount is always positive;
// the operation decides the sign.
type LedgerRequest struct {
	WalletID       uuid.UUID
	Amount         int64
	Type           TransactionType
	CampaignID     *uuid.UUID
	PromoCodeID    *uuid.UUID
	IdempotencyKey string
	Description    string
	Actor          string
}
