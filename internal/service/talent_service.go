package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/hallenjay/tokentribute/internal/domain"
)

// TalentService manages founder bookmarks of promising profiles.
type TalentService struct {
	talent domain.TalentStore
	logger *slog.Logger
}

// NewTalentService creates a TalentService.
func NewTalentService(talent domain.TalentStore, logger *slog.Logger) *TalentService {
	return &TalentService{talent: talent, logger: logger}
}

// Save bookmarks a profile for a founder. Saving an already-saved profile
// returns domain.ErrAlreadyExists.
func (s *TalentService) Save(ctx context.Context, t domain.SavedTalent) (domain.SavedTalent, error) {
	if t.FounderAddress == "" || t.ProfileID == "" {
		return domain.SavedTalent{}, fmt.Errorf("talent_service: founder address and profile id are required")
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}

	rec, err := s.talent.Save(ctx, t)
	if err != nil {
		return domain.SavedTalent{}, fmt.Errorf("talent_service: save: %w", err)
	}

	s.logger.InfoContext(ctx, "talent_service: profile saved",
		slog.String("founder", t.FounderAddress),
		slog.String("profile", t.ProfileID),
	)
	return rec, nil
}

// ListByFounder returns a founder's bookmarks.
func (s *TalentService) ListByFounder(ctx context.Context, founderAddress string) ([]domain.SavedTalent, error) {
	talent, err := s.talent.ListByFounder(ctx, founderAddress)
	if err != nil {
		return nil, fmt.Errorf("talent_service: list by founder: %w", err)
	}
	return talent, nil
}

// Delete removes a bookmark.
func (s *TalentService) Delete(ctx context.Context, id string) error {
	if err := s.talent.Delete(ctx, id); err != nil {
		return fmt.Errorf("talent_service: delete: %w", err)
	}
	return nil
}
