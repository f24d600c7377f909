// Package trending maintains a live ranking of posts by engagement
// velocity. Every engagement event increments a per-post counter and
// recomputes that post's trending score from the full counter snapshot;
// top-K queries read the resulting ranking.
package trending

import (
	"context"
	"math"
	"time"

	"github.com/onnwee/currents/internal/interaction"
)

// Tracker defines the trending ranking operations.
type Tracker interface {
	// RecordEngagement increments the per-post counter for the given
	// interaction type and updates the post's trending score.
	RecordEngagement(ctx context.Context, postID, interactionType string) error

	// TopTrending returns the k highest-scoring post IDs, best first.
	// k <= 0 yields an empty result; k beyond the population returns
	// the whole population.
	TopTrending(ctx context.Context, k int) ([]string, error)
}

// Score computes a post's trending score from its full counter
// snapshot: engagement velocity multiplied by ln(current unix seconds).
//
// The ln(now) multiplier makes every score drift upward slowly with
// wall-clock time even without new engagement. That is a known quirk
// kept for compatibility with historical rankings; it is not an
// age-relative decay.
func Score(c interaction.Counts, now time.Time) float64 {
	velocity := float64(c.Likes+c.Comments*2+c.Shares*3) / math.Max(float64(c.Views), 1)
	return velocity * math.Log(float64(now.Unix()))
}
