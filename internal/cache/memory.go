package cache

import (
	"context"
	"sync"
	"time"

	"github.com/onnwee/currents/internal/profile"
)

type entry struct {
	value     any
	expiresAt time.Time // zero means no expiry
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// MemoryCache is an in-memory implementation of Cache with TTL support.
// Thread-safe via RWMutex.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// NewMemoryCache creates a new in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// SetClock overrides the cache's clock. Intended for tests.
func (c *MemoryCache) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

func (c *MemoryCache) get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || e.expired(c.now()) {
		return nil, false
	}
	return e.value, true
}

func (c *MemoryCache) set(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := entry{value: value}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	c.entries[key] = e
}

// GetProfile returns the cached profile, or ErrCacheMiss.
func (c *MemoryCache) GetProfile(_ context.Context, userID string) (*profile.Profile, error) {
	v, ok := c.get(profileKey(userID))
	if !ok {
		return nil, ErrCacheMiss
	}
	return v.(*profile.Profile).Clone(), nil
}

// SetProfile caches a profile with the given TTL.
func (c *MemoryCache) SetProfile(_ context.Context, userID string, p *profile.Profile, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultProfileTTL
	}
	c.set(profileKey(userID), p.Clone(), ttl)
	return nil
}

// GetEmbedding returns the cached embedding for a post, or ErrCacheMiss.
func (c *MemoryCache) GetEmbedding(_ context.Context, postID string) ([]float64, error) {
	v, ok := c.get(embeddingKey(postID))
	if !ok {
		return nil, ErrCacheMiss
	}
	return append([]float64(nil), v.([]float64)...), nil
}

// SetEmbedding caches a post's embedding.
func (c *MemoryCache) SetEmbedding(_ context.Context, postID string, embedding []float64) error {
	c.set(embeddingKey(postID), append([]float64(nil), embedding...), DefaultEmbeddingTTL)
	return nil
}

// GetPostMeta returns the cached post metadata, or ErrCacheMiss.
func (c *MemoryCache) GetPostMeta(_ context.Context, postID string) (PostMeta, error) {
	v, ok := c.get(postMetaKey(postID))
	if !ok {
		return PostMeta{}, ErrCacheMiss
	}
	return v.(PostMeta), nil
}

// SetPostMeta caches a post's category/author metadata.
func (c *MemoryCache) SetPostMeta(_ context.Context, postID string, meta PostMeta) error {
	c.set(postMetaKey(postID), meta, DefaultPostMetaTTL)
	return nil
}
