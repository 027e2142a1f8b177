package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/hallenjay/tokentribute/internal/domain"
)

// ProfileDirectory is the slice of the Ethos client the profile service uses.
type ProfileDirectory interface {
	UserByUsername(ctx context.Context, username string) (domain.Profile, error)
	UserByAddress(ctx context.Context, address string) (domain.Profile, error)
	SearchUsers(ctx context.Context, query string, limit int) ([]domain.Profile, error)
	TopProfiles(ctx context.Context, minScore, limit int) ([]domain.Profile, error)
}

// ProfileService serves reputation profiles with a read-through cache in
// front of the Ethos API. The top-profiles feed is the expensive call (a
// keyword fan-out), so it is the one worth caching aggressively.
type ProfileService struct {
	directory ProfileDirectory
	cache     domain.ProfileCache
	minScore  int
	cacheTTL  time.Duration
	logger    *slog.Logger
}

// NewProfileService creates a ProfileService. cache may be nil, in which case
// every read goes upstream.
func NewProfileService(
	directory ProfileDirectory,
	cache domain.ProfileCache,
	minScore int,
	cacheTTL time.Duration,
	logger *slog.Logger,
) *ProfileService {
	return &ProfileService{
		directory: directory,
		cache:     cache,
		minScore:  minScore,
		cacheTTL:  cacheTTL,
		logger:    logger,
	}
}

// MinScore returns the configured donation eligibility threshold.
func (s *ProfileService) MinScore() int {
	return s.minScore
}

// TopProfiles returns the high-credibility leaderboard, cached per limit.
func (s *ProfileService) TopProfiles(ctx context.Context, limit int) ([]domain.Profile, error) {
	if limit <= 0 {
		limit = 50
	}
	cacheKey := "top:" + strconv.Itoa(limit)

	if s.cache != nil {
		if profiles, err := s.cache.GetProfiles(ctx, cacheKey); err == nil {
			return profiles, nil
		}
	}

	profiles, err := s.directory.TopProfiles(ctx, s.minScore, limit)
	if err != nil {
		return nil, fmt.Errorf("profile_service: top profiles: %w", err)
	}

	if s.cache != nil {
		if cacheErr := s.cache.SetProfiles(ctx, cacheKey, profiles, s.cacheTTL); cacheErr != nil {
			s.logger.WarnContext(ctx, "profile_service: cache set failed",
				slog.String("key", cacheKey),
				slog.String("error", cacheErr.Error()),
			)
		}
	}

	return profiles, nil
}

// Search looks a profile up by exact username, returning it only when it
// clears the donation threshold and is active upstream. This mirrors the
// search box: ineligible matches are simply absent from results.
func (s *ProfileService) Search(ctx context.Context, query string) ([]domain.Profile, error) {
	p, err := s.directory.UserByUsername(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("profile_service: search %q: %w", query, err)
	}
	if p.CredibilityScore < s.minScore {
		return nil, nil
	}
	return []domain.Profile{p}, nil
}

// ByUsername returns a single profile with no score filtering; callers that
// gate on eligibility do it explicitly.
func (s *ProfileService) ByUsername(ctx context.Context, username string) (domain.Profile, error) {
	p, err := s.directory.UserByUsername(ctx, username)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("profile_service: by username %q: %w", username, err)
	}
	return p, nil
}

// ByAddress returns the profile that linked the given wallet address.
func (s *ProfileService) ByAddress(ctx context.Context, address string) (domain.Profile, error) {
	p, err := s.directory.UserByAddress(ctx, address)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("profile_service: by address %q: %w", address, err)
	}
	return p, nil
}
