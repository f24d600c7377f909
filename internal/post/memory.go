package post

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryStore is an in-memory implementation of Store.
// Thread-safe via RWMutex.
type InMemoryStore struct {
	mu    sync.RWMutex
	posts map[string]*Post
	now   func() time.Time
}

// NewInMemoryStore creates a new in-memory post store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		posts: make(map[string]*Post),
		now:   time.Now,
	}
}

// SetClock overrides the store's clock. Intended for tests.
func (s *InMemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Create inserts a new post, generating a UUID when the ID is empty.
func (s *InMemoryStore) Create(p *Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now()
	}

	postCopy := *p
	s.posts[p.ID] = &postCopy
	return nil
}

// GetPost retrieves a post by ID.
func (s *InMemoryStore) GetPost(_ context.Context, id string) (*Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.posts[id]
	if !ok {
		return nil, ErrPostNotFound
	}
	postCopy := *p
	return &postCopy, nil
}

// GetManyByIDs retrieves the posts matching the given IDs, omitting
// unknown IDs.
func (s *InMemoryStore) GetManyByIDs(_ context.Context, ids []string) ([]*Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Post, 0, len(ids))
	for _, id := range ids {
		if p, ok := s.posts[id]; ok {
			postCopy := *p
			result = append(result, &postCopy)
		}
	}
	return result, nil
}

// RecentByAuthors returns posts by the given authors within the window,
// newest first.
func (s *InMemoryStore) RecentByAuthors(_ context.Context, authorIDs []string, window time.Duration, limit int) ([]*Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	authors := make(map[string]bool, len(authorIDs))
	for _, id := range authorIDs {
		authors[id] = true
	}

	cutoff := s.now().Add(-window)
	var result []*Post
	for _, p := range s.posts {
		if authors[p.AuthorID] && p.CreatedAt.After(cutoff) {
			postCopy := *p
			result = append(result, &postCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// RecentRandom returns a random sample of posts within the window.
func (s *InMemoryStore) RecentRandom(_ context.Context, window time.Duration, limit int) ([]*Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cutoff := s.now().Add(-window)
	var result []*Post
	for _, p := range s.posts {
		if p.CreatedAt.After(cutoff) {
			postCopy := *p
			result = append(result, &postCopy)
		}
	}

	rand.Shuffle(len(result), func(i, j int) {
		result[i], result[j] = result[j], result[i]
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
