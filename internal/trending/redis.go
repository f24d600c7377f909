package trending

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/onnwee/currents/internal/interaction"
)

// Redis key layout: one counter hash per post plus a single sorted set
// holding the ranking.
const (
	trendingKey         = "trending:posts"
	engagementKeySuffix = ":engagement"
)

func engagementKey(postID string) string {
	return "post:" + postID + engagementKeySuffix
}

// RedisTracker is a Redis-backed implementation of Tracker.
//
// Per-post serialization relies on HINCRBY being atomic: two concurrent
// events for the same post both land in the hash, and each recompute
// reads a full snapshot, so the last writer's ZADD carries a score
// covering both events.
type RedisTracker struct {
	client  *redis.Client
	metrics *Metrics
	now     func() time.Time
}

// NewRedisTracker creates a new Redis trending tracker.
// Metrics may be nil to disable instrumentation.
func NewRedisTracker(client *redis.Client, metrics *Metrics) *RedisTracker {
	return &RedisTracker{
		client:  client,
		metrics: metrics,
		now:     time.Now,
	}
}

// RecordEngagement increments the per-post counter and updates the
// post's trending score from the full counter snapshot.
func (t *RedisTracker) RecordEngagement(ctx context.Context, postID, interactionType string) error {
	key := engagementKey(postID)

	if err := t.client.HIncrBy(ctx, key, interactionType, 1).Err(); err != nil {
		t.recordError()
		return fmt.Errorf("failed to increment engagement counter: %w", err)
	}

	snapshot, err := t.client.HGetAll(ctx, key).Result()
	if err != nil {
		t.recordError()
		return fmt.Errorf("failed to read engagement snapshot: %w", err)
	}

	score := Score(parseSnapshot(snapshot), t.now())
	if err := t.client.ZAdd(ctx, trendingKey, redis.Z{Score: score, Member: postID}).Err(); err != nil {
		t.recordError()
		return fmt.Errorf("failed to update trending ranking: %w", err)
	}

	if t.metrics != nil {
		t.metrics.IncEvent(interactionType)
	}
	return nil
}

// TopTrending returns the k highest-scoring post IDs, best first.
func (t *RedisTracker) TopTrending(ctx context.Context, k int) ([]string, error) {
	if k <= 0 {
		return nil, nil
	}

	ids, err := t.client.ZRevRange(ctx, trendingKey, 0, int64(k-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read trending ranking: %w", err)
	}
	return ids, nil
}

func (t *RedisTracker) recordError() {
	if t.metrics != nil {
		t.metrics.IncEventError()
	}
}

// parseSnapshot converts a counter hash snapshot into counts.
// Unknown fields (e.g. dwell) are ignored by the score.
func parseSnapshot(snapshot map[string]string) interaction.Counts {
	var c interaction.Counts
	c.Views = parseCount(snapshot[interaction.TypeView])
	c.Likes = parseCount(snapshot[interaction.TypeLike])
	c.Comments = parseCount(snapshot[interaction.TypeComment])
	c.Shares = parseCount(snapshot[interaction.TypeShare])
	return c
}

func parseCount(s string) int64 {
	if s == "" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
