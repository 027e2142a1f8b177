package domain

import (
	"context"
	"time"
)

// ProfileCache caches profile feeds fetched from the reputation network so
// repeated reads do not hammer the upstream API.
type ProfileCache interface {
	GetProfiles(ctx context.Context, key string) ([]Profile, error)
	SetProfiles(ctx context.Context, key string, profiles []Profile, ttl time.Duration) error
}

// RateLimiter limits calls against a named key within a sliding window.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	Wait(ctx context.Context, key string) error
}

// SignalBus is a publish/subscribe channel for platform events such as
// settled donations. Implementations must close the subscription channel when
// the context is cancelled.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}
