package domain

import (
	"math/big"
)

// TransferState is the submitter lifecycle. Transitions move strictly
// forward; a failed transfer is never resubmitted through the same instance.
type TransferState string

const (
	TransferStateIdle           TransferState = "idle"
	TransferStateAwaitingWallet TransferState = "awaiting_wallet_confirmation"
	TransferStateAwaitingChain  TransferState = "awaiting_chain_confirmation"
	TransferStateConfirmed      TransferState = "confirmed"
	TransferStateFailed         TransferState = "failed"
)

// TransferStatus is the terminal classification reported to callers.
type TransferStatus string

const (
	TransferPending   TransferStatus = "pending"
	TransferConfirmed TransferStatus = "confirmed"
	TransferFailed    TransferStatus = "failed"
)

// TransferRequest describes one on-chain USDC transfer. It is created per
// donation attempt and discarded once the attempt reaches a terminal state.
type TransferRequest struct {
	RecipientAddress string
	// Amount is the donor-entered decimal string, e.g. "12.34".
	Amount string
	// AmountUnits is Amount converted to USDC base units (6 decimals).
	AmountUnits *big.Int
	ChainID int64
}

// TransferOutcome is the terminal result of a transfer attempt.
type TransferOutcome struct {
	Status          TransferStatus
	TransactionHash string
	// FailureReason carries the classified failure when Status is failed.
	FailureReason string
}
