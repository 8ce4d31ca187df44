package domain

import (
	"errors"
	"fmt"
)

// Business-rule violations are expected outcomes returned to the caller.
// ErrLedgerInvariant is the only one that signals a bug.
var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInsufficientFunds   = errors.New("insufficient balance")
	ErrWalletFrozen        = errors.New("wallet is frozen")
	ErrAlreadyRedeemed     = errors.New("promo code already redeemed")
	ErrPromoLimitReached   = errors.New("promo code usage limit reached")
	ErrPromoExpired        = errors.New("promo code expired or inactive")
	ErrIllegalTransition   = errors.New("illegal status transition")
	ErrNothingApproved     = errors.New("campaign has no approved ad")
	ErrConflict            = errors.New("concurrent modification")
	ErrBudgetExhausted     = errors.New("campaign budget exhausted")
	ErrDuplicateEvent      = errors.New("duplicate event")
	ErrAdvertiserSuspended = errors.New("advertiser is suspended")
	ErrLedgerInvariant     = errors.New("ledger invariant violated")
)

// InsufficientFundsError carries the amounts behind ErrInsufficientFunds.
type InsufficientFundsError struct {
	Need int64
	Have int64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient balance: need %d, have %d", e.Need, e.Have)
}

func (e *InsufficientFundsError) Unwrap() error { return ErrInsufficientFunds }

// TransitionError describes a refused state change.
type TransitionError struct {
	Entity EntityKind
	From   string
	To     string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s cannot move from %s to %s", e.Entity, e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrIllegalTransition }

// ValidationError reports a malformed field rejected at the boundary.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }
