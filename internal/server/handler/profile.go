package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hallenjay/tokentribute/internal/domain"
)

// ProfileService defines what the profile handler needs from the service
// layer.
type ProfileService interface {
	TopProfiles(ctx context.Context, limit int) ([]domain.Profile, error)
	Search(ctx context.Context, query string) ([]domain.Profile, error)
	ByUsername(ctx context.Context, username string) (domain.Profile, error)
	MinScore() int
}

// ProfileHandler serves reputation-profile endpoints.
type ProfileHandler struct {
	profiles ProfileService
	logger   *slog.Logger
}

// NewProfileHandler creates a ProfileHandler.
func NewProfileHandler(profiles ProfileService, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{
		profiles: profiles,
		logger:   logger,
	}
}

// profileView decorates a profile with its eligibility for donations, so the
// frontend never re-derives the gate.
type profileView struct {
	domain.Profile
	Userkeys []string `json:"userkeys"`
	Eligible bool     `json:"eligible"`
}

func (h *ProfileHandler) view(p domain.Profile) profileView {
	raw := make([]string, 0, len(p.Keys))
	hasAddress := false
	for _, k := range p.Keys {
		raw = append(raw, k.Raw)
		if k.Scheme == domain.KeySchemeAddress {
			hasAddress = true
		}
	}
	return profileView{
		Profile:  p,
		Userkeys: raw,
		Eligible: p.CredibilityScore >= h.profiles.MinScore() && hasAddress,
	}
}

func (h *ProfileHandler) views(profiles []domain.Profile) []profileView {
	out := make([]profileView, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, h.view(p))
	}
	return out
}

// Top returns the high-credibility leaderboard.
// GET /api/profiles?limit=50
func (h *ProfileHandler) Top(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 50, 200)

	profiles, err := h.profiles.TopProfiles(r.Context(), limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: top profiles failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to load profiles")
		return
	}

	writeJSON(w, http.StatusOK, h.views(profiles))
}

// Search looks up profiles by username.
// GET /api/profiles/search?q=alice
func (h *ProfileHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "missing query parameter q")
		return
	}

	profiles, err := h.profiles.Search(r.Context(), query)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusOK, []profileView{})
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: profile search failed",
			slog.String("query", query),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}

	writeJSON(w, http.StatusOK, h.views(profiles))
}

// Get returns one profile by username.
// GET /api/profiles/{username}
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	username := pathParam(r, "username")
	if username == "" {
		writeError(w, http.StatusBadRequest, "missing username")
		return
	}

	p, err := h.profiles.ByUsername(r.Context(), username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "profile not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: get profile failed",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}

	writeJSON(w, http.StatusOK, h.view(p))
}
