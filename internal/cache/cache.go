// Package cache provides the advisory caching layer used by the feed
// pipeline: TTL-bounded user profiles, post embeddings, and the
// category/author metadata consulted by the diversity penalty.
//
// Cache entries are advisory, never authoritative: the persistent
// stores remain the source of truth, and callers fall back to them on
// any miss or error.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/onnwee/currents/internal/profile"
)

// ErrCacheMiss is returned when a key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// Default lifetimes for cached entries.
const (
	DefaultProfileTTL   = time.Hour
	DefaultEmbeddingTTL = 24 * time.Hour
	DefaultPostMetaTTL  = 24 * time.Hour
)

// PostMeta is the lightweight per-post metadata used by the diversity
// penalty. A miss must be handled with a deterministic default (zero
// value) rather than a blocking lookup of the full post record.
type PostMeta struct {
	Category string `cbor:"category"`
	AuthorID string `cbor:"author_id"`
}

// Cache defines the caching operations required by the feed engine and
// the interest updater.
type Cache interface {
	// GetProfile returns the cached profile, or ErrCacheMiss.
	GetProfile(ctx context.Context, userID string) (*profile.Profile, error)

	// SetProfile caches a profile with the given TTL.
	SetProfile(ctx context.Context, userID string, p *profile.Profile, ttl time.Duration) error

	// GetEmbedding returns the cached embedding for a post, or ErrCacheMiss.
	GetEmbedding(ctx context.Context, postID string) ([]float64, error)

	// SetEmbedding caches a post's embedding.
	SetEmbedding(ctx context.Context, postID string, embedding []float64) error

	// GetPostMeta returns the cached category/author metadata for a
	// post, or ErrCacheMiss.
	GetPostMeta(ctx context.Context, postID string) (PostMeta, error)

	// SetPostMeta caches a post's category/author metadata.
	SetPostMeta(ctx context.Context, postID string, meta PostMeta) error
}
