// Package settlement drives a donation from eligibility check through
// on-chain transfer to the persisted record.
package settlement

import (
	"sync"
	"time"
)

// SaveLatch ensures a confirmed transfer is recorded at most once per
// process, keyed by the transfer's identity rather than by a shared flag, so
// one donation's save never suppresses another's. Entries expire after a TTL
// to bound memory. Safe for concurrent use.
type SaveLatch struct {
	taken map[string]time.Time // dedupe key -> acquisition time
	ttl   time.Duration
	mu    sync.Mutex
}

// NewSaveLatch creates a latch whose acquisitions expire after ttl.
func NewSaveLatch(ttl time.Duration) *SaveLatch {
	return &SaveLatch{
		taken: make(map[string]time.Time),
		ttl:   ttl,
	}
}

// TryAcquire returns true if key has not been acquired within the TTL window,
// recording the acquisition. A false return means a save for this transfer is
// already in flight or done.
func (l *SaveLatch) TryAcquire(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if at, ok := l.taken[key]; ok && now.Sub(at) < l.ttl {
		return false
	}

	l.taken[key] = now
	return true
}

// Release frees key so a failed save can be retried.
func (l *SaveLatch) Release(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.taken, key)
}

// Cleanup drops expired acquisitions. Call periodically to prevent unbounded
// growth.
func (l *SaveLatch) Cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	for key, at := range l.taken {
		if now.Sub(at) >= l.ttl {
			delete(l.taken, key)
		}
	}
}
