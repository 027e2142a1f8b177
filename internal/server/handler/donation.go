package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hallenjay/tokentribute/internal/domain"
)

// DonationService defines what the donation handler needs from the service
// layer.
type DonationService interface {
	Record(ctx context.Context, d domain.Donation) (domain.Donation, bool, error)
	Donate(ctx context.Context, donorAddress, recipientUsername, amount string) (domain.Donation, error)
	ListCompleted(ctx context.Context, limit int) ([]domain.Donation, error)
	ListByRecipient(ctx context.Context, username string) ([]domain.Donation, error)
	ListByDonor(ctx context.Context, address string) ([]domain.Donation, error)
	Stats(ctx context.Context) (domain.DonationStats, error)
}

// DonationHandler serves the donation ledger endpoints.
type DonationHandler struct {
	donations DonationService
	logger    *slog.Logger
}

// NewDonationHandler creates a DonationHandler.
func NewDonationHandler(donations DonationService, logger *slog.Logger) *DonationHandler {
	return &DonationHandler{
		donations: donations,
		logger:    logger,
	}
}

// List returns recent completed donations.
// GET /api/donations?limit=50
func (h *DonationHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 50, 100)

	donations, err := h.donations.ListCompleted(r.Context(), limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list donations failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list donations")
		return
	}
	if donations == nil {
		donations = []domain.Donation{}
	}

	writeJSON(w, http.StatusOK, donations)
}

// Create records a donation settled by the donor's own wallet.
// POST /api/donations
func (h *DonationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var d domain.Donation
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, created, err := h.donations.Record(r.Context(), d)
	if err != nil {
		var (
			ia *domain.InvalidAmountError
			ve *domain.ValidationError
		)
		if errors.As(err, &ia) {
			writeError(w, http.StatusBadRequest, ia.Error())
			return
		}
		if errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, ve.Error())
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: record donation failed",
			slog.String("donor", d.DonorAddress),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to record donation")
		return
	}

	// A replayed save is not an error; return the existing record.
	status := http.StatusCreated
	if !created {
		status = http.StatusOK
	}
	writeJSON(w, status, rec)
}

// Donate settles a donation through the operator wallet.
// POST /api/donate
func (h *DonationHandler) Donate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DonorAddress      string `json:"donorAddress"`
		RecipientUsername string `json:"recipientUsername"`
		Amount            string `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	d, err := h.donations.Donate(r.Context(), req.DonorAddress, req.RecipientUsername, req.Amount)
	if err != nil {
		h.writeDonateError(w, r, req.RecipientUsername, d, err)
		return
	}

	writeJSON(w, http.StatusCreated, d)
}

// writeDonateError maps settlement failures onto HTTP statuses. A recoverable
// storage error still reports the settled donation: the funds moved.
func (h *DonationHandler) writeDonateError(w http.ResponseWriter, r *http.Request, recipient string, d domain.Donation, err error) {
	var (
		ne *domain.NotEligibleError
		ia *domain.InvalidAmountError
		se *domain.StorageError
	)
	switch {
	case errors.As(err, &ne):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  ne.Error(),
			"reason": string(ne.Reason),
		})
	case errors.As(err, &ia):
		writeError(w, http.StatusBadRequest, ia.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "recipient not found")
	case errors.Is(err, domain.ErrWalletRejected):
		writeError(w, http.StatusConflict, "wallet rejected the transaction")
	case errors.Is(err, domain.ErrInsufficientBalance):
		writeError(w, http.StatusConflict, "insufficient token balance")
	case errors.Is(err, domain.ErrConfirmationTimeout):
		writeError(w, http.StatusGatewayTimeout, "transaction not confirmed in time")
	case errors.As(err, &se) && se.Recoverable:
		h.logger.ErrorContext(r.Context(), "handler: donation settled but not recorded",
			slog.String("recipient", recipient),
			slog.String("tx_hash", d.TransactionHash),
			slog.String("error", err.Error()),
		)
		writeJSON(w, http.StatusCreated, map[string]any{
			"donation": d,
			"warning":  "transfer settled on chain; record save pending",
		})
	default:
		h.logger.ErrorContext(r.Context(), "handler: donate failed",
			slog.String("recipient", recipient),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "donation failed")
	}
}

// ListByRecipient returns donations received by a username.
// GET /api/donations/recipient/{username}
func (h *DonationHandler) ListByRecipient(w http.ResponseWriter, r *http.Request) {
	username := pathParam(r, "username")
	if username == "" {
		writeError(w, http.StatusBadRequest, "missing username")
		return
	}

	donations, err := h.donations.ListByRecipient(r.Context(), username)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list by recipient failed",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list donations")
		return
	}
	if donations == nil {
		donations = []domain.Donation{}
	}

	writeJSON(w, http.StatusOK, donations)
}

// ListByDonor returns donations sent by a wallet address.
// GET /api/donations/donor/{address}
func (h *DonationHandler) ListByDonor(w http.ResponseWriter, r *http.Request) {
	address := pathParam(r, "address")
	if address == "" {
		writeError(w, http.StatusBadRequest, "missing address")
		return
	}

	donations, err := h.donations.ListByDonor(r.Context(), address)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list by donor failed",
			slog.String("address", address),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list donations")
		return
	}
	if donations == nil {
		donations = []domain.Donation{}
	}

	writeJSON(w, http.StatusOK, donations)
}

// Stats returns ledger totals and the top-recipient leaderboard.
// GET /api/stats
func (h *DonationHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.donations.Stats(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: stats failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}
	if stats.TopRecipients == nil {
		stats.TopRecipients = []domain.TopRecipient{}
	}

	writeJSON(w, http.StatusOK, stats)
}
