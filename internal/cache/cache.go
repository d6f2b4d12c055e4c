package cache

import (
	"sync"
	"time"

	"mediashare/pkg/domain"
)

// TTL is how long a listing snapshot stays valid. Fixed policy, not a request
// parameter.
const TTL = 60 * time.Second

// ListingCache holds at most one snapshot of the full media listing.
type ListingCache interface {
	// Get returns the snapshot when it has not expired. A stale entry behaves
	// as a miss; it is overwritten by the next Set rather than cleared here.
	Get() ([]domain.MediaRecord, bool, error)
	// Set replaces the snapshot wholesale and restarts the TTL.
	Set(snapshot []domain.MediaRecord) error
	// Invalidate clears the snapshot so the next read goes to the store.
	Invalidate() error
}

// MemoryCache is a single mutex-guarded {snapshot, expiry} slot. The snapshot
// and its expiry are always read and replaced together.
type MemoryCache struct {
	mu       sync.Mutex
	snapshot []domain.MediaRecord
	expiry   time.Time
	ttl      time.Duration
	now      func() time.Time
}

// NewMemoryCache returns an empty cache slot with the default TTL.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{ttl: TTL, now: time.Now}
}

// Get returns the stored snapshot only while the current time is strictly
// before its expiry.
func (c *MemoryCache) Get() ([]domain.MediaRecord, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snapshot == nil || !c.now().Before(c.expiry) {
		return nil, false, nil
	}
	return c.snapshot, true, nil
}

// Set stores a full replacement snapshot with expiry = now + TTL.
func (c *MemoryCache) Set(snapshot []domain.MediaRecord) error {
	if snapshot == nil {
		snapshot = []domain.MediaRecord{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot = snapshot
	c.expiry = c.now().Add(c.ttl)
	return nil
}

// Invalidate unconditionally clears the slot.
func (c *MemoryCache) Invalidate() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot = nil
	c.expiry = time.Time{}
	return nil
}
