// Package similarity defines the candidate source backed by
// nearest-neighbor search over post embeddings. The search index itself
// lives outside this service; implementations adapt whatever backend is
// available.
package similarity

import (
	"context"
	"sync"

	"github.com/onnwee/currents/internal/post"
)

// Source finds posts similar to a user's interests.
type Source interface {
	// FindSimilarPosts returns up to limit posts ranked by similarity
	// to the user's interest vector, best first.
	FindSimilarPosts(ctx context.Context, userID string, limit int) ([]*post.Post, error)
}

// StubSource is a Source that returns no candidates. Used when no
// similarity backend is configured; the feed degrades to its other
// candidate sources.
type StubSource struct{}

func (StubSource) FindSimilarPosts(_ context.Context, _ string, _ int) ([]*post.Post, error) {
	return nil, nil
}

// FixtureSource serves pre-recorded results keyed by user. Intended for
// tests.
type FixtureSource struct {
	mu      sync.RWMutex
	results map[string][]*post.Post
	err     error
}

// NewFixtureSource creates an empty fixture source.
func NewFixtureSource() *FixtureSource {
	return &FixtureSource{results: make(map[string][]*post.Post)}
}

// Record sets the posts returned for a user.
func (f *FixtureSource) Record(userID string, posts []*post.Post) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[userID] = posts
}

// Fail makes every lookup return the given error.
func (f *FixtureSource) Fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *FixtureSource) FindSimilarPosts(_ context.Context, userID string, limit int) ([]*post.Post, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.err != nil {
		return nil, f.err
	}
	posts := f.results[userID]
	if limit > 0 && len(posts) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}
