package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrAlreadyExists       = errors.New("already exists")
	ErrRateLimited         = errors.New("rate limited")
	ErrNoWalletSession     = errors.New("no active wallet session")
	ErrWalletRejected      = errors.New("wallet rejected the transaction")
	ErrInsufficientBalance = errors.New("insufficient token balance")
	ErrConfirmationTimeout = errors.New("confirmation timeout")
	ErrTransactionReverted = errors.New("transaction reverted")
	ErrContextDone         = errors.New("context cancelled")
)

// IneligibleReason distinguishes the user-visible reasons a profile cannot
// receive a donation. "Below threshold" and "no linked wallet" demand
// different remediation and are never collapsed into one generic state.
type IneligibleReason string

const (
	ReasonBelowThreshold IneligibleReason = "below_threshold"
	ReasonNoWallet       IneligibleReason = "no_linked_wallet"
)

// NotEligibleError reports a failed eligibility check before any chain
// interaction took place.
type NotEligibleError struct {
	Reason   IneligibleReason
	Score    int
	MinScore int
}

func (e *NotEligibleError) Error() string {
	switch e.Reason {
	case ReasonBelowThreshold:
		return fmt.Sprintf("not eligible: credibility score %d below threshold %d", e.Score, e.MinScore)
	case ReasonNoWallet:
		return "not eligible: profile has no linked wallet address"
	default:
		return "not eligible"
	}
}

// InvalidAmountError reports a donation amount that failed validation before
// any wallet interaction.
type InvalidAmountError struct {
	Input  string
	Detail string
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("invalid amount %q: %s", e.Input, e.Detail)
}

// ValidationError reports a request field that is missing or malformed.
type ValidationError struct {
	Field  string
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Detail)
}

// ChainError wraps an unclassified failure from the chain or wallet provider.
type ChainError struct {
	Detail string
	Err    error
}

func (e *ChainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("chain error: %s: %v", e.Detail, e.Err)
	}
	return "chain error: " + e.Detail
}

func (e *ChainError) Unwrap() error { return e.Err }

// StorageError reports a persistence failure. Recoverable distinguishes
// "retry the save" (funds already moved on-chain) from a fault where nothing
// happened at all.
type StorageError struct {
	Recoverable bool
	Err         error
}

func (e *StorageError) Error() string {
	if e.Recoverable {
		return fmt.Sprintf("storage error (record pending, retry save): %v", e.Err)
	}
	return fmt.Sprintf("storage error: %v", e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
