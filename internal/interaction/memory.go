package interaction

import (
	"context"
	"sync"
)

// record is a single observed interaction event.
type record struct {
	userID string
	postID string
	typ    string
}

// InMemoryStore is an in-memory implementation of Store.
// Thread-safe via RWMutex.
type InMemoryStore struct {
	mu      sync.RWMutex
	records []record
	follows map[string][]string // follower -> followed authors
}

// NewInMemoryStore creates a new in-memory interaction store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		follows: make(map[string][]string),
	}
}

// Record adds an interaction event.
func (s *InMemoryStore) Record(userID, postID, typ string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record{userID: userID, postID: postID, typ: typ})
}

// SetFollows sets the authors followed by a user, used to resolve
// friend engagement.
func (s *InMemoryStore) SetFollows(userID string, followed []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.follows[userID] = append([]string(nil), followed...)
}

// AggregateCounts returns the engagement count snapshot for a post.
func (s *InMemoryStore) AggregateCounts(_ context.Context, postID string) (Counts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var c Counts
	for _, r := range s.records {
		if r.postID != postID {
			continue
		}
		switch r.typ {
		case TypeView:
			c.Views++
		case TypeLike:
			c.Likes++
		case TypeComment:
			c.Comments++
		case TypeShare:
			c.Shares++
		}
	}
	return c, nil
}

// CountFriendEngagement counts interactions on the post by authors the
// user follows.
func (s *InMemoryStore) CountFriendEngagement(_ context.Context, userID, postID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	followed := make(map[string]bool)
	for _, id := range s.follows[userID] {
		followed[id] = true
	}

	count := 0
	for _, r := range s.records {
		if r.postID == postID && followed[r.userID] {
			count++
		}
	}
	return count, nil
}

// UserAverageEngagementRate returns the fraction of the user's recorded
// interactions that are likes, comments, or shares.
func (s *InMemoryStore) UserAverageEngagementRate(_ context.Context, userID string) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total, engaged int
	for _, r := range s.records {
		if r.userID != userID {
			continue
		}
		total++
		switch r.typ {
		case TypeLike, TypeComment, TypeShare:
			engaged++
		}
	}
	if total == 0 {
		return 0, nil
	}
	return float64(engaged) / float64(total), nil
}
