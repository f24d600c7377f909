// Package profile provides the user profile model and storage.
// A profile aggregates the user's interest vector, follow graph,
// recent feed history, and per-category interaction weights.
package profile

import (
	"context"
	"errors"
)

// ErrProfileNotFound is returned when a user profile does not exist.
var ErrProfileNotFound = errors.New("user profile not found")

// RecentFeedLimit caps the number of recent-feed entries kept per user.
const RecentFeedLimit = 50

// Profile represents a user's aggregated content preferences.
// The interest vector, once normalized, has unit Euclidean norm; it is
// the zero vector only before the first interaction is applied.
type Profile struct {
	ID              string             `json:"id" cbor:"id"`
	InterestVector  []float64          `json:"interest_vector" cbor:"interest_vector"`
	FollowedAuthors []string           `json:"followed_authors" cbor:"followed_authors"`
	RecentFeed      []string           `json:"recent_feed" cbor:"recent_feed"`
	CategoryWeights map[string]float64 `json:"category_weights" cbor:"category_weights"`
}

// Follows reports whether the user follows the given author.
func (p *Profile) Follows(authorID string) bool {
	for _, id := range p.FollowedAuthors {
		if id == authorID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the profile.
func (p *Profile) Clone() *Profile {
	clone := &Profile{
		ID:              p.ID,
		InterestVector:  append([]float64(nil), p.InterestVector...),
		FollowedAuthors: append([]string(nil), p.FollowedAuthors...),
		RecentFeed:      append([]string(nil), p.RecentFeed...),
	}
	if p.CategoryWeights != nil {
		clone.CategoryWeights = make(map[string]float64, len(p.CategoryWeights))
		for k, v := range p.CategoryWeights {
			clone.CategoryWeights[k] = v
		}
	}
	return clone
}

// Store defines the profile data operations required by the feed engine
// and the interest updater.
type Store interface {
	// GetProfile reconstructs the full profile for a user.
	// Returns ErrProfileNotFound if the user does not exist.
	GetProfile(ctx context.Context, userID string) (*Profile, error)

	// SaveInterestVector persists a user's updated interest vector.
	SaveInterestVector(ctx context.Context, userID string, vector []float64) error

	// IncrementCategoryWeight adds weight to the user's accumulated
	// interaction weight for a category.
	IncrementCategoryWeight(ctx context.Context, userID, category string, weight float64) error
}
