package profile

import (
	"context"
	"sync"
)

// InMemoryStore is an in-memory implementation of Store.
// Thread-safe via RWMutex.
type InMemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]*Profile
}

// NewInMemoryStore creates a new in-memory profile store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		profiles: make(map[string]*Profile),
	}
}

// Put stores a profile, replacing any existing one for the same user.
func (s *InMemoryStore) Put(p *Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.ID] = p.Clone()
}

// GetProfile retrieves a deep copy of the profile for a user.
func (s *InMemoryStore) GetProfile(_ context.Context, userID string) (*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[userID]
	if !ok {
		return nil, ErrProfileNotFound
	}
	return p.Clone(), nil
}

// SaveInterestVector persists a user's updated interest vector.
func (s *InMemoryStore) SaveInterestVector(_ context.Context, userID string, vector []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[userID]
	if !ok {
		return ErrProfileNotFound
	}
	p.InterestVector = append([]float64(nil), vector...)
	return nil
}

// IncrementCategoryWeight adds weight to the user's accumulated weight
// for a category.
func (s *InMemoryStore) IncrementCategoryWeight(_ context.Context, userID, category string, weight float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[userID]
	if !ok {
		return ErrProfileNotFound
	}
	if p.CategoryWeights == nil {
		p.CategoryWeights = make(map[string]float64)
	}
	p.CategoryWeights[category] += weight
	return nil
}
