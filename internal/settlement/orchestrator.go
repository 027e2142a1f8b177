package settlement

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hallenjay/tokentribute/internal/domain"
	"github.com/hallenjay/tokentribute/internal/eligibility"
)

// FeedChannel is the signal bus channel carrying settled donations to live
// subscribers.
const FeedChannel = "donations.settled"

// ProfileDirectory resolves reputation profiles for prospective recipients.
type ProfileDirectory interface {
	ProfileByUsername(ctx context.Context, username string) (domain.Profile, error)
}

// TransferSubmitter executes a single token transfer. Implementations are
// single-use; the orchestrator obtains a fresh one per donation.
type TransferSubmitter interface {
	Submit(ctx context.Context, req domain.TransferRequest) (domain.TransferOutcome, error)
}

// SubmitterFactory builds a fresh TransferSubmitter for one donation attempt.
type SubmitterFactory func() TransferSubmitter

// Notifier is told about settled donations. Implementations must not block
// the settlement path on delivery failures.
type Notifier interface {
	DonationSettled(ctx context.Context, d domain.Donation)
	SaveRecoveryNeeded(ctx context.Context, d domain.Donation)
}

// Orchestrator runs the full donation sequence: resolve the recipient's
// profile, gate on credibility, move the tokens, then record the result.
type Orchestrator struct {
	profiles   ProfileDirectory
	newSubmit  SubmitterFactory
	recorder   *Recorder
	notifier   Notifier
	bus        domain.SignalBus
	minScore   int
	chainID    int64
	logger     *slog.Logger
}

// OrchestratorOpts collects the orchestrator's collaborators. Notifier and
// Bus are optional.
type OrchestratorOpts struct {
	Profiles  ProfileDirectory
	Submitter SubmitterFactory
	Recorder  *Recorder
	Notifier  Notifier
	Bus       domain.SignalBus
	MinScore  int
	ChainID   int64
	Logger    *slog.Logger
}

// NewOrchestrator wires an Orchestrator from its collaborators.
func NewOrchestrator(opts OrchestratorOpts) *Orchestrator {
	return &Orchestrator{
		profiles:  opts.Profiles,
		newSubmit: opts.Submitter,
		recorder:  opts.Recorder,
		notifier:  opts.Notifier,
		bus:       opts.Bus,
		minScore:  opts.MinScore,
		chainID:   opts.ChainID,
		logger:    opts.Logger.With("component", "orchestrator"),
	}
}

// Donate runs one donation from donorAddress to the named recipient.
//
// Failures before or during the transfer (ineligible recipient, bad amount,
// wallet rejection, unconfirmed transaction) leave no donation record. A
// confirmed transfer whose save fails returns the in-memory donation
// alongside a recoverable StorageError, so callers can surface success to
// the donor while flagging the missing record.
func (o *Orchestrator) Donate(ctx context.Context, donorAddress, recipientUsername, amount string) (domain.Donation, error) {
	log := o.logger.With("donor", donorAddress, "recipient", recipientUsername)

	profile, err := o.profiles.ProfileByUsername(ctx, recipientUsername)
	if err != nil {
		return domain.Donation{}, fmt.Errorf("resolving recipient %q: %w", recipientUsername, err)
	}

	decision := eligibility.Evaluate(profile, o.minScore)
	if !decision.Donatable() {
		log.Info("recipient not eligible",
			"reason", decision.Reason,
			"score", profile.CredibilityScore,
			"min_score", o.minScore,
		)
		return domain.Donation{}, decision.Err(profile.CredibilityScore, o.minScore)
	}

	outcome, err := o.newSubmit().Submit(ctx, domain.TransferRequest{
		RecipientAddress: decision.SettlementAddress,
		Amount:           amount,
		ChainID:          o.chainID,
	})
	if err != nil {
		log.Warn("transfer not settled", "error", err)
		return domain.Donation{}, err
	}

	d := domain.Donation{
		ID:                uuid.NewString(),
		DonorAddress:      donorAddress,
		RecipientUsername: profile.Username,
		RecipientAvatar:   profile.AvatarURL,
		Amount:            amount,
		Timestamp:         time.Now().UTC(),
		TransactionHash:   outcome.TransactionHash,
		Status:            domain.DonationStatusCompleted,
	}

	rec, created, err := o.recorder.Record(ctx, d)
	if err != nil {
		// Transfer is confirmed on chain; hand the unsaved record back.
		if o.notifier != nil {
			o.notifier.SaveRecoveryNeeded(ctx, d)
		}
		return d, err
	}

	if created {
		o.announce(ctx, rec)
	}
	return rec, nil
}

// announce fans the settled donation out to the notifier and the live feed.
func (o *Orchestrator) announce(ctx context.Context, d domain.Donation) {
	if o.notifier != nil {
		o.notifier.DonationSettled(ctx, d)
	}
	if o.bus == nil {
		return
	}
	payload, err := json.Marshal(d)
	if err != nil {
		o.logger.Error("encoding feed payload", "error", err)
		return
	}
	if err := o.bus.Publish(ctx, FeedChannel, payload); err != nil {
		o.logger.Warn("publishing to feed", "error", err)
	}
}
