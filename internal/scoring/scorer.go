// Package scoring provides the pure content scoring functions for the
// feed ranking pipeline, with calibration support for the blend weights.
//
// All scoring functions are deterministic functions of their inputs and
// perform no I/O; the feed engine resolves collaborator data (engagement
// counts, recent-feed metadata) before calling into this package.
package scoring

import (
	"math"
	"time"

	"github.com/onnwee/currents/internal/interaction"
	"github.com/onnwee/currents/internal/post"
	"github.com/onnwee/currents/internal/profile"
)

// Boost and penalty constants for the relevance and diversity terms.
const (
	followedAuthorBoost    = 0.2
	historyBoostDivisor    = 100.0
	historyBoostCap        = 0.2
	repetitionPenaltyStep  = 0.1
	repetitionPenaltyCap   = 0.5
	authorPenaltyStep      = 0.15
	authorPenaltyCap       = 0.4
	recencyHalfLifeHours   = 24.0
	engagementRateScale    = 100.0
)

// RecentEntry is the category/author metadata for one recent-feed post,
// resolved by the caller from the cache. A cache miss yields a zero
// entry, which contributes to neither repetition count.
type RecentEntry struct {
	Category string
	AuthorID string
}

// ContentScorer computes the blended content score for a candidate post.
type ContentScorer struct {
	weights *Weights
}

// NewContentScorer creates a scorer with the given weights.
// Passing nil uses the default calibration.
func NewContentScorer(weights *Weights) *ContentScorer {
	if weights == nil {
		weights = DefaultWeights()
	}
	return &ContentScorer{weights: weights}
}

// Score computes the content score for a post in [0,1], blending
// recency, engagement, relevance, and a diversity penalty.
// The result orders candidates relative to each other; it is not an
// absolute quality measure.
func (s *ContentScorer) Score(p *post.Post, u *profile.Profile, counts interaction.Counts, recent []RecentEntry, now time.Time) float64 {
	recency := RecencyScore(p.CreatedAt, now)
	engagement := EngagementScore(counts)
	relevance := RelevanceScore(p, u)
	diversity := DiversityPenalty(p, recent)

	return recency*s.weights.Recency +
		engagement*s.weights.Engagement +
		relevance*s.weights.Relevance +
		diversity*s.weights.Diversity
}

// RecencyScore computes exp(-hoursSincePosted/24): ~1 for brand-new
// posts, ~0.37 for day-old ones, approaching 0 with age.
func RecencyScore(createdAt, now time.Time) float64 {
	hoursSincePost := now.Sub(createdAt).Hours()
	return math.Exp(-hoursSincePost / recencyHalfLifeHours)
}

// EngagementScore computes the views-normalized weighted interaction
// rate, clipped to 1. The max(views,1) denominator deliberately
// conflates "no views yet" with "exactly one view"; retained for parity
// with historical scoring behavior.
func EngagementScore(c interaction.Counts) float64 {
	rate := float64(c.Likes+c.Comments*3+c.Shares*5) / math.Max(float64(c.Views), 1)
	return math.Min(rate*engagementRateScale, 1)
}

// RelevanceScore combines interest-vector similarity with social and
// history boosts, clipped to 1.
func RelevanceScore(p *post.Post, u *profile.Profile) float64 {
	similarity := CosineSimilarity(p.Embedding, u.InterestVector)

	socialBoost := 0.0
	if u.Follows(p.AuthorID) {
		socialBoost = followedAuthorBoost
	}

	historyBoost := math.Min(u.CategoryWeights[p.Category]/historyBoostDivisor, historyBoostCap)

	return math.Min(similarity+socialBoost+historyBoost, 1)
}

// DiversityPenalty computes 1 - (repetitionPenalty + authorPenalty)
// over the user's recent feed: the more the post's category or author
// already appeared, the lower the score contribution. Entries with
// empty category or author (cache misses) contribute to neither count.
func DiversityPenalty(p *post.Post, recent []RecentEntry) float64 {
	var categoryCount, authorCount int
	for _, entry := range recent {
		if entry.Category != "" && entry.Category == p.Category {
			categoryCount++
		}
		if entry.AuthorID != "" && entry.AuthorID == p.AuthorID {
			authorCount++
		}
	}

	repetitionPenalty := math.Min(float64(categoryCount)*repetitionPenaltyStep, repetitionPenaltyCap)
	authorPenalty := math.Min(float64(authorCount)*authorPenaltyStep, authorPenaltyCap)

	return 1 - (repetitionPenalty + authorPenalty)
}
