package settlement

import (
	"context"
	"log/slog"

	"github.com/hallenjay/tokentribute/internal/domain"
)

// Recorder persists confirmed transfers as donation records. Writes are
// idempotent two ways: the per-process save latch stops duplicate attempts
// for the same transfer, and the store's dedupe key absorbs replays across
// processes and restarts.
type Recorder struct {
	store  domain.DonationStore
	latch  *SaveLatch
	logger *slog.Logger
}

// NewRecorder creates a Recorder. latch may be shared with other recorders.
func NewRecorder(store domain.DonationStore, latch *SaveLatch, logger *slog.Logger) *Recorder {
	return &Recorder{
		store:  store,
		latch:  latch,
		logger: logger.With("component", "recorder"),
	}
}

// Record saves the donation. It returns the stored record and whether this
// call created it. A duplicate save (latched, or already present in the
// store) returns created=false with no error.
//
// A store failure is reported as a recoverable StorageError: the on-chain
// transfer already happened, so the caller should surface success to the
// donor and retry the save rather than treat the donation as failed. The
// latch is released so the retry can proceed.
func (r *Recorder) Record(ctx context.Context, d domain.Donation) (domain.Donation, bool, error) {
	key := d.DedupeKey()

	if !r.latch.TryAcquire(key) {
		r.logger.Debug("save already attempted, skipping",
			"donor", d.DonorAddress,
			"recipient", d.RecipientUsername,
		)
		// Hand back the stored record so the caller sees the same identity
		// the first save produced. If the first save is still in flight the
		// row may not exist yet; the input stands in until it lands.
		if rec, err := r.store.FindByDedupeKey(ctx, key); err == nil {
			return rec, false, nil
		}
		return d, false, nil
	}

	rec, created, err := r.store.Record(ctx, d)
	if err != nil {
		r.latch.Release(key)
		r.logger.Error("donation save failed after confirmation",
			"donor", d.DonorAddress,
			"recipient", d.RecipientUsername,
			"tx_hash", d.TransactionHash,
			"error", err,
		)
		return domain.Donation{}, false, &domain.StorageError{Recoverable: true, Err: err}
	}

	if !created {
		r.logger.Debug("donation already recorded",
			"donor", d.DonorAddress,
			"recipient", d.RecipientUsername,
			"tx_hash", d.TransactionHash,
		)
		return rec, false, nil
	}

	r.logger.Info("donation recorded",
		"donor", d.DonorAddress,
		"recipient", d.RecipientUsername,
		"amount", d.Amount,
		"tx_hash", d.TransactionHash,
	)
	return rec, true, nil
}
