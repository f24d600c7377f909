// Package post provides the post model and storage used by the feed
// ranking pipeline. Posts are immutable once created; embedding and
// category are produced by the content-analysis provider at ingestion
// time and treated as plain inputs here.
package post

import (
	"context"
	"errors"
	"time"
)

// ErrPostNotFound is returned when a post does not exist in the store.
var ErrPostNotFound = errors.New("post not found")

// Post represents a single piece of content eligible for feed inclusion.
type Post struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Category  string    `json:"category,omitempty"`
	Embedding []float64 `json:"embedding,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Store defines the post data operations required by the feed engine
// and the interest updater.
type Store interface {
	// GetPost retrieves a post by ID. Returns ErrPostNotFound if absent.
	GetPost(ctx context.Context, id string) (*Post, error)

	// GetManyByIDs retrieves the posts matching the given IDs.
	// Unknown IDs are silently omitted from the result.
	GetManyByIDs(ctx context.Context, ids []string) ([]*Post, error)

	// RecentByAuthors returns posts created within the window by any of
	// the given authors, newest first, capped at limit.
	RecentByAuthors(ctx context.Context, authorIDs []string, window time.Duration, limit int) ([]*Post, error)

	// RecentRandom returns a random sample of posts created within the
	// window, capped at limit. Used for exploration candidates.
	RecentRandom(ctx context.Context, window time.Duration, limit int) ([]*Post, error)
}
