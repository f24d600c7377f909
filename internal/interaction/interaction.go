// Package interaction provides read-only access to engagement
// aggregates used for scoring. The authoritative counts live in the
// interactions table; this package only serves snapshots.
package interaction

import "context"

// Interaction type identifiers shared across the pipeline.
const (
	TypeView    = "view"
	TypeLike    = "like"
	TypeComment = "comment"
	TypeShare   = "share"
	TypeDwell   = "dwell"
)

// ValidType reports whether the given string is a known interaction type.
func ValidType(t string) bool {
	switch t {
	case TypeView, TypeLike, TypeComment, TypeShare, TypeDwell:
		return true
	}
	return false
}

// Counts is a per-post snapshot of aggregate engagement counts.
type Counts struct {
	Views    int64 `json:"views"`
	Likes    int64 `json:"likes"`
	Comments int64 `json:"comments"`
	Shares   int64 `json:"shares"`
}

// Store defines the engagement aggregate operations required by the
// feed engine.
type Store interface {
	// AggregateCounts returns the engagement count snapshot for a post.
	// A post with no recorded interactions yields zero counts, not an error.
	AggregateCounts(ctx context.Context, postID string) (Counts, error)

	// CountFriendEngagement counts interactions on the post by authors
	// the user follows.
	CountFriendEngagement(ctx context.Context, userID, postID string) (int, error)

	// UserAverageEngagementRate returns the fraction of the user's
	// recorded interactions that are likes, comments, or shares, in [0,1].
	UserAverageEngagementRate(ctx context.Context, userID string) (float64, error)
}
