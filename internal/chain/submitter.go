package chain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/hallenjay/tokentribute/internal/domain"
)

// TransferSender is the wallet/session side of the chain: it knows the
// current address and can broadcast a token transfer. Broadcasting may fail
// with a provider error (rejection, insufficient funds).
type TransferSender interface {
	Address() (string, bool)
	SendTokenTransfer(ctx context.Context, to string, amount *big.Int) (string, error)
}

// ConfirmationStatus classifies the result of waiting on a broadcast
// transaction.
type ConfirmationStatus string

const (
	ConfirmationConfirmed ConfirmationStatus = "confirmed"
	ConfirmationTimedOut  ConfirmationStatus = "timed_out"
	ConfirmationReverted  ConfirmationStatus = "reverted"
)

// Confirmation is the watcher's report for one transaction.
type Confirmation struct {
	Status ConfirmationStatus
	TxHash string
}

// ConfirmationWatcher waits for network finality of a broadcast transaction.
type ConfirmationWatcher interface {
	AwaitConfirmation(ctx context.Context, txHash string, timeout time.Duration) (Confirmation, error)
}

// Submitter drives a single transfer through its lifecycle:
//
//	Idle -> AwaitingWalletConfirmation -> AwaitingChainConfirmation -> Confirmed | Failed
//
// Transitions only move forward. A Submitter is single-use: each donation
// attempt owns a fresh instance, and a failed transfer requires the user to
// start a brand-new attempt. The submitter never auto-retries a broadcast —
// resubmitting an ambiguous money movement is worse than reporting failure.
type Submitter struct {
	sender  TransferSender
	watcher ConfirmationWatcher
	timeout time.Duration
	logger  *slog.Logger

	mu     sync.Mutex
	state  domain.TransferState
	txHash string
}

// NewSubmitter creates a single-use Submitter. timeout bounds the wait for
// chain confirmation after broadcast.
func NewSubmitter(sender TransferSender, watcher ConfirmationWatcher, timeout time.Duration, logger *slog.Logger) *Submitter {
	return &Submitter{
		sender:  sender,
		watcher: watcher,
		timeout: timeout,
		state:   domain.TransferStateIdle,
		logger:  logger.With(slog.String("component", "submitter")),
	}
}

// State returns the current lifecycle state.
func (s *Submitter) State() domain.TransferState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// TxHash returns the broadcast transaction hash, empty before broadcast.
func (s *Submitter) TxHash() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.txHash
}

func (s *Submitter) setState(st domain.TransferState) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// Submit validates the request, broadcasts the transfer, and waits for chain
// finality. Validation failures leave the submitter Idle so the user can fix
// the input; once a hash exists the flow can stop watching on timeout but the
// underlying transfer can no longer be cancelled.
func (s *Submitter) Submit(ctx context.Context, req domain.TransferRequest) (domain.TransferOutcome, error) {
	s.mu.Lock()
	if s.state != domain.TransferStateIdle {
		st := s.state
		s.mu.Unlock()
		return domain.TransferOutcome{Status: domain.TransferFailed, FailureReason: "submitter already used"},
			fmt.Errorf("chain: submit in state %s: submitter is single-use", st)
	}
	s.mu.Unlock()

	// Amount must parse as a positive decimal before any wallet interaction.
	units := req.AmountUnits
	if units == nil {
		parsed, err := ParseAmount(req.Amount, USDCDecimals)
		if err != nil {
			return domain.TransferOutcome{Status: domain.TransferFailed, FailureReason: err.Error()}, err
		}
		units = parsed
	} else if units.Sign() <= 0 {
		err := &domain.InvalidAmountError{Input: req.Amount, Detail: "amount must be positive"}
		return domain.TransferOutcome{Status: domain.TransferFailed, FailureReason: err.Error()}, err
	}

	if _, ok := s.sender.Address(); !ok {
		return domain.TransferOutcome{Status: domain.TransferFailed, FailureReason: domain.ErrNoWalletSession.Error()},
			domain.ErrNoWalletSession
	}

	s.setState(domain.TransferStateAwaitingWallet)

	hash, err := s.sender.SendTokenTransfer(ctx, req.RecipientAddress, units)
	if err != nil {
		s.setState(domain.TransferStateFailed)
		classified := ClassifyProviderError(err)
		return domain.TransferOutcome{Status: domain.TransferFailed, FailureReason: classified.Error()}, classified
	}

	s.mu.Lock()
	s.state = domain.TransferStateAwaitingChain
	s.txHash = hash
	s.mu.Unlock()

	conf, err := s.watcher.AwaitConfirmation(ctx, hash, s.timeout)
	switch conf.Status {
	case ConfirmationConfirmed:
		s.setState(domain.TransferStateConfirmed)
		return domain.TransferOutcome{Status: domain.TransferConfirmed, TransactionHash: hash}, nil

	case ConfirmationReverted:
		s.setState(domain.TransferStateFailed)
		return domain.TransferOutcome{
			Status:          domain.TransferFailed,
			TransactionHash: hash,
			FailureReason:   domain.ErrTransactionReverted.Error(),
		}, domain.ErrTransactionReverted

	default: // timed out, or the watcher errored in some other way
		s.setState(domain.TransferStateFailed)
		if err == nil {
			err = domain.ErrConfirmationTimeout
		}
		// The transfer may still confirm later out-of-band; the hash is
		// reported so the caller can surface that ambiguity.
		return domain.TransferOutcome{
			Status:          domain.TransferFailed,
			TransactionHash: hash,
			FailureReason:   err.Error(),
		}, err
	}
}

// ClassifyProviderError maps raw wallet/provider errors onto the donation
// flow's taxonomy by pattern-matching the error text. The match is best
// effort; anything unrecognised becomes a ChainError.
func ClassifyProviderError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrWalletRejected) || errors.Is(err, domain.ErrInsufficientBalance) {
		return err
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "user rejected") ||
		strings.Contains(msg, "user denied") ||
		strings.Contains(msg, "rejected by user"):
		return domain.ErrWalletRejected
	case strings.Contains(msg, "insufficient funds") ||
		strings.Contains(msg, "insufficient balance") ||
		strings.Contains(msg, "transfer amount exceeds balance"):
		return domain.ErrInsufficientBalance
	default:
		return &domain.ChainError{Detail: "transfer submission failed", Err: err}
	}
}
