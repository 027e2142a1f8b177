package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hallenjay/tokentribute/internal/domain"
)

// TalentService defines what the talent handler needs from the service layer.
type TalentService interface {
	Save(ctx context.Context, t domain.SavedTalent) (domain.SavedTalent, error)
	ListByFounder(ctx context.Context, founderAddress string) ([]domain.SavedTalent, error)
	Delete(ctx context.Context, id string) error
}

// TalentHandler serves founder bookmark endpoints.
type TalentHandler struct {
	talent TalentService
	logger *slog.Logger
}

// NewTalentHandler creates a TalentHandler.
func NewTalentHandler(talent TalentService, logger *slog.Logger) *TalentHandler {
	return &TalentHandler{
		talent: talent,
		logger: logger,
	}
}

// Save bookmarks a profile for a founder.
// POST /api/talent
func (h *TalentHandler) Save(w http.ResponseWriter, r *http.Request) {
	var t domain.SavedTalent
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := h.talent.Save(r.Context(), t)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			writeError(w, http.StatusConflict, "profile already saved")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: save talent failed",
			slog.String("founder", t.FounderAddress),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to save profile")
		return
	}

	writeJSON(w, http.StatusCreated, rec)
}

// List returns a founder's bookmarks.
// GET /api/talent/{founderAddress}
func (h *TalentHandler) List(w http.ResponseWriter, r *http.Request) {
	founder := pathParam(r, "founderAddress")
	if founder == "" {
		writeError(w, http.StatusBadRequest, "missing founder address")
		return
	}

	talent, err := h.talent.ListByFounder(r.Context(), founder)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list talent failed",
			slog.String("founder", founder),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list saved profiles")
		return
	}
	if talent == nil {
		talent = []domain.SavedTalent{}
	}

	writeJSON(w, http.StatusOK, talent)
}

// Delete removes a bookmark.
// DELETE /api/talent/{id}
func (h *TalentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing id")
		return
	}

	if err := h.talent.Delete(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "saved profile not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: delete talent failed",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to delete saved profile")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
