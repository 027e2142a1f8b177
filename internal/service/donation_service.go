package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hallenjay/tokentribute/internal/chain"
	"github.com/hallenjay/tokentribute/internal/domain"
)

// Donator runs the server-side settlement path.
type Donator interface {
	Donate(ctx context.Context, donorAddress, recipientUsername, amount string) (domain.Donation, error)
}

// DonationService is the ledger-facing service: it lists and aggregates
// recorded donations, accepts records for transfers settled by the donor's
// own wallet, and hands operator-wallet donations to the settlement flow.
type DonationService struct {
	donations domain.DonationStore
	donator   Donator
	logger    *slog.Logger
}

// NewDonationService creates a DonationService. donator may be nil when the
// server runs without an operator wallet; Donate then reports an error.
func NewDonationService(donations domain.DonationStore, donator Donator, logger *slog.Logger) *DonationService {
	return &DonationService{
		donations: donations,
		donator:   donator,
		logger:    logger,
	}
}

// Record stores a donation settled externally (the donor's browser wallet
// sent the transfer and reports the result). The amount is validated the
// same way the chain path validates it, and the write is idempotent, so a
// client retrying a save cannot double-record.
func (s *DonationService) Record(ctx context.Context, d domain.Donation) (domain.Donation, bool, error) {
	if _, err := chain.ParseAmount(d.Amount, chain.USDCDecimals); err != nil {
		return domain.Donation{}, false, err
	}
	if d.DonorAddress == "" {
		return domain.Donation{}, false, &domain.ValidationError{Field: "donorAddress", Detail: "required"}
	}
	if d.RecipientUsername == "" {
		return domain.Donation{}, false, &domain.ValidationError{Field: "recipientUsername", Detail: "required"}
	}

	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.Timestamp.IsZero() {
		d.Timestamp = time.Now().UTC()
	}
	if d.Status == "" {
		d.Status = domain.DonationStatusCompleted
	}

	rec, created, err := s.donations.Record(ctx, d)
	if err != nil {
		return domain.Donation{}, false, fmt.Errorf("donation_service: record: %w", err)
	}
	if !created {
		s.logger.DebugContext(ctx, "donation_service: duplicate record absorbed",
			slog.String("donor", d.DonorAddress),
			slog.String("tx_hash", d.TransactionHash),
		)
	}
	return rec, created, nil
}

// Donate runs a full operator-wallet donation through the settlement flow.
func (s *DonationService) Donate(ctx context.Context, donorAddress, recipientUsername, amount string) (domain.Donation, error) {
	if s.donator == nil {
		return domain.Donation{}, fmt.Errorf("donation_service: operator wallet not configured")
	}
	return s.donator.Donate(ctx, donorAddress, recipientUsername, amount)
}

// ListCompleted returns the public donation feed.
func (s *DonationService) ListCompleted(ctx context.Context, limit int) ([]domain.Donation, error) {
	donations, err := s.donations.ListCompleted(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("donation_service: list completed: %w", err)
	}
	return donations, nil
}

// ListByRecipient returns donations received by a username.
func (s *DonationService) ListByRecipient(ctx context.Context, username string) ([]domain.Donation, error) {
	donations, err := s.donations.ListByRecipient(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("donation_service: list by recipient: %w", err)
	}
	return donations, nil
}

// ListByDonor returns donations sent by a wallet address.
func (s *DonationService) ListByDonor(ctx context.Context, address string) ([]domain.Donation, error) {
	donations, err := s.donations.ListByDonor(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("donation_service: list by donor: %w", err)
	}
	return donations, nil
}

// Stats aggregates the ledger totals and leaderboard.
func (s *DonationService) Stats(ctx context.Context) (domain.DonationStats, error) {
	stats, err := s.donations.Stats(ctx)
	if err != nil {
		return domain.DonationStats{}, fmt.Errorf("donation_service: stats: %w", err)
	}
	return stats, nil
}
