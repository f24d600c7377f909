package trending

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/onnwee/currents/internal/interaction"
)

// MemoryTracker is an in-memory implementation of Tracker.
// Thread-safe via a mutex; each RecordEngagement is a per-tracker
// critical section, which trivially serializes same-post updates.
type MemoryTracker struct {
	mu       sync.Mutex
	counters map[string]map[string]int64 // postID -> interaction type -> count
	scores   map[string]float64
	metrics  *Metrics
	now      func() time.Time
}

// NewMemoryTracker creates a new in-memory trending tracker.
func NewMemoryTracker() *MemoryTracker {
	return &MemoryTracker{
		counters: make(map[string]map[string]int64),
		scores:   make(map[string]float64),
		now:      time.Now,
	}
}

// SetClock overrides the tracker's clock. Intended for tests.
func (t *MemoryTracker) SetClock(now func() time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.now = now
}

// SetMetrics attaches metrics to the tracker.
func (t *MemoryTracker) SetMetrics(m *Metrics) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.metrics = m
}

// RecordEngagement increments the per-post counter and recomputes the
// post's trending score from the full counter snapshot.
func (t *MemoryTracker) RecordEngagement(_ context.Context, postID, interactionType string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	counts, ok := t.counters[postID]
	if !ok {
		counts = make(map[string]int64)
		t.counters[postID] = counts
	}
	counts[interactionType]++

	snapshot := interaction.Counts{
		Views:    counts[interaction.TypeView],
		Likes:    counts[interaction.TypeLike],
		Comments: counts[interaction.TypeComment],
		Shares:   counts[interaction.TypeShare],
	}
	t.scores[postID] = Score(snapshot, t.now())

	if t.metrics != nil {
		t.metrics.IncEvent(interactionType)
	}
	return nil
}

// TopTrending returns the k highest-scoring post IDs, best first.
// The relative order of equal scores is unspecified.
func (t *MemoryTracker) TopTrending(_ context.Context, k int) ([]string, error) {
	if k <= 0 {
		return nil, nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	ids := make([]string, 0, len(t.scores))
	for id := range t.scores {
		ids = append(ids, id)
	}
	sort.SliceStable(ids, func(i, j int) bool {
		return t.scores[ids[i]] > t.scores[ids[j]]
	})

	if len(ids) > k {
		ids = ids[:k]
	}
	return ids, nil
}

// CurrentScore returns the current trending score for a post.
// Intended for tests and diagnostics.
func (t *MemoryTracker) CurrentScore(postID string) (float64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	score, ok := t.scores[postID]
	return score, ok
}
