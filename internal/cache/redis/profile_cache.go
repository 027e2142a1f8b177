package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hallenjay/tokentribute/internal/domain"
)

// ProfileCache implements domain.ProfileCache using JSON-serialized profile
// feeds keyed by the upstream query, so repeat page loads skip the Ethos API.
//
// Key schema:
//
//	profiles:{query} - JSON array of profiles
type ProfileCache struct {
	rdb *redis.Client
}

// NewProfileCache creates a ProfileCache backed by the given Client.
func NewProfileCache(c *Client) *ProfileCache {
	return &ProfileCache{rdb: c.Underlying()}
}

func profileKey(key string) string { return "profiles:" + key }

// cachedProfile is the Redis representation of a Profile; the parsed key list
// is flattened back to raw strings so it survives the round trip.
type cachedProfile struct {
	Profile domain.Profile `json:"profile"`
	RawKeys []string       `json:"userkeys"`
}

// GetProfiles retrieves a cached profile feed. It returns domain.ErrNotFound
// when the key does not exist or has expired.
func (pc *ProfileCache) GetProfiles(ctx context.Context, key string) ([]domain.Profile, error) {
	data, err := pc.rdb.Get(ctx, profileKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("redis: get profiles %s: %w", key, err)
	}

	var cached []cachedProfile
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, fmt.Errorf("redis: unmarshal profiles %s: %w", key, err)
	}

	profiles := make([]domain.Profile, 0, len(cached))
	for _, c := range cached {
		p := c.Profile
		p.Keys = domain.ParseUserKeys(c.RawKeys)
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// SetProfiles stores a profile feed with the given TTL.
func (pc *ProfileCache) SetProfiles(ctx context.Context, key string, profiles []domain.Profile, ttl time.Duration) error {
	cached := make([]cachedProfile, 0, len(profiles))
	for _, p := range profiles {
		raw := make([]string, 0, len(p.Keys))
		for _, k := range p.Keys {
			raw = append(raw, k.Raw)
		}
		cached = append(cached, cachedProfile{Profile: p, RawKeys: raw})
	}

	data, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("redis: marshal profiles %s: %w", key, err)
	}

	if err := pc.rdb.Set(ctx, profileKey(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis: set profiles %s: %w", key, err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.ProfileCache = (*ProfileCache)(nil)
