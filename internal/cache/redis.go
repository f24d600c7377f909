package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/redis/go-redis/v9"

	"github.com/onnwee/currents/internal/profile"
)

// RedisCache is a Redis-backed implementation of Cache.
// Values are CBOR-encoded for compactness.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a new Redis cache.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func profileKey(userID string) string   { return "user:" + userID + ":profile" }
func embeddingKey(postID string) string { return "post:" + postID + ":embedding" }
func postMetaKey(postID string) string  { return "post:" + postID + ":meta" }

// GetProfile returns the cached profile, or ErrCacheMiss.
func (c *RedisCache) GetProfile(ctx context.Context, userID string) (*profile.Profile, error) {
	data, err := c.client.Get(ctx, profileKey(userID)).Bytes()
	if err == redis.Nil {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached profile: %w", err)
	}

	var p profile.Profile
	if err := cbor.Unmarshal(data, &p); err != nil {
		// A corrupt entry is indistinguishable from a miss for callers.
		return nil, ErrCacheMiss
	}
	return &p, nil
}

// SetProfile caches a profile with the given TTL.
func (c *RedisCache) SetProfile(ctx context.Context, userID string, p *profile.Profile, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultProfileTTL
	}
	data, err := cbor.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	if err := c.client.Set(ctx, profileKey(userID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache profile: %w", err)
	}
	return nil
}

// GetEmbedding returns the cached embedding for a post, or ErrCacheMiss.
func (c *RedisCache) GetEmbedding(ctx context.Context, postID string) ([]float64, error) {
	data, err := c.client.Get(ctx, embeddingKey(postID)).Bytes()
	if err == redis.Nil {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached embedding: %w", err)
	}

	var embedding []float64
	if err := cbor.Unmarshal(data, &embedding); err != nil {
		return nil, ErrCacheMiss
	}
	return embedding, nil
}

// SetEmbedding caches a post's embedding.
func (c *RedisCache) SetEmbedding(ctx context.Context, postID string, embedding []float64) error {
	data, err := cbor.Marshal(embedding)
	if err != nil {
		return fmt.Errorf("failed to encode embedding: %w", err)
	}
	if err := c.client.Set(ctx, embeddingKey(postID), data, DefaultEmbeddingTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache embedding: %w", err)
	}
	return nil
}

// GetPostMeta returns the cached category/author metadata for a post,
// or ErrCacheMiss.
func (c *RedisCache) GetPostMeta(ctx context.Context, postID string) (PostMeta, error) {
	data, err := c.client.Get(ctx, postMetaKey(postID)).Bytes()
	if err == redis.Nil {
		return PostMeta{}, ErrCacheMiss
	}
	if err != nil {
		return PostMeta{}, fmt.Errorf("failed to get cached post meta: %w", err)
	}

	var meta PostMeta
	if err := cbor.Unmarshal(data, &meta); err != nil {
		return PostMeta{}, ErrCacheMiss
	}
	return meta, nil
}

// SetPostMeta caches a post's category/author metadata.
func (c *RedisCache) SetPostMeta(ctx context.Context, postID string, meta PostMeta) error {
	data, err := cbor.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to encode post meta: %w", err)
	}
	if err := c.client.Set(ctx, postMetaKey(postID), data, DefaultPostMetaTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache post meta: %w", err)
	}
	return nil
}
