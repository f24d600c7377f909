// Package feed assembles personalized feeds: candidate posts are
// gathered from several sources, scored in parallel against the user's
// profile, ordered, and passed through a diversity filter before
// truncation.
package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/onnwee/currents/internal/cache"
	"github.com/onnwee/currents/internal/interaction"
	"github.com/onnwee/currents/internal/post"
	"github.com/onnwee/currents/internal/profile"
	"github.com/onnwee/currents/internal/scoring"
	"github.com/onnwee/currents/internal/similarity"
	"github.com/onnwee/currents/internal/tracing"
	"github.com/onnwee/currents/internal/trending"
)

// ErrNoCandidates is returned when every candidate source fails.
// An empty feed from healthy sources is not an error.
var ErrNoCandidates = errors.New("all candidate sources failed")

// DefaultLimit is the feed size when the caller does not specify one.
const DefaultLimit = 50

// Candidate source bounds.
const (
	followedWindow = 48 * time.Hour
	followedLimit  = 100
	trendingLimit  = 50
	similarLimit   = 100
	exploreWindow  = 24 * time.Hour
	exploreLimit   = 50
)

// Final blend weights and social-score parameters.
const (
	contentWeight    = 0.4
	socialWeight     = 0.3
	predictionWeight = 0.3

	followedSocialScore    = 0.8
	friendEngagementWeight = 0.1
	friendEngagementCap    = 0.5
)

// Candidate source names, used as metric labels.
const (
	sourceFollowed = "followed"
	sourceTrending = "trending"
	sourceSimilar  = "similar"
	sourceExplore  = "explore"
)

// ScoredPost is a candidate post with its final blended score.
type ScoredPost struct {
	post.Post
	Score float64 `json:"score"`
}

// Deps holds the collaborators the engine reads from.
type Deps struct {
	Profiles     profile.Store
	Posts        post.Store
	Interactions interaction.Store
	Cache        cache.Cache
	Trending     trending.Tracker
	Similarity   similarity.Source
}

// Config holds optional engine tuning. Zero values select defaults.
type Config struct {
	Scorer          *scoring.ContentScorer
	ProfileCacheTTL time.Duration
	Metrics         *Metrics
	Logger          *slog.Logger
}

// Engine generates personalized feeds.
type Engine struct {
	deps       Deps
	scorer     *scoring.ContentScorer
	profileTTL time.Duration
	metrics    *Metrics
	logger     *slog.Logger
	now        func() time.Time
}

// NewEngine creates a feed engine.
func NewEngine(deps Deps, cfg Config) *Engine {
	scorer := cfg.Scorer
	if scorer == nil {
		scorer = scoring.NewContentScorer(nil)
	}
	ttl := cfg.ProfileCacheTTL
	if ttl <= 0 {
		ttl = cache.DefaultProfileTTL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		deps:       deps,
		scorer:     scorer,
		profileTTL: ttl,
		metrics:    cfg.Metrics,
		logger:     logger,
		now:        time.Now,
	}
}

// SetClock overrides the engine's clock. Intended for tests.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// GenerateFeed returns up to limit scored posts for the user, best
// first. A non-positive limit selects DefaultLimit. Failure of a single
// candidate source degrades the feed; failure of all sources or of
// profile resolution fails the request.
func (e *Engine) GenerateFeed(ctx context.Context, userID string, limit int) ([]ScoredPost, error) {
	var err error
	ctx, endSpan := tracing.StartSpan(ctx, "feed.generate")
	defer func() {
		endSpan(err)
	}()

	start := time.Now()
	candidateCount := 0
	defer func() {
		if e.metrics != nil {
			e.metrics.ObserveGenerate(time.Since(start), candidateCount, err)
		}
	}()

	if limit <= 0 {
		limit = DefaultLimit
	}

	userProfile, err := e.resolveProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	candidates, err := e.gatherCandidates(ctx, userProfile)
	if err != nil {
		return nil, err
	}
	candidateCount = len(candidates)
	if len(candidates) == 0 {
		return []ScoredPost{}, nil
	}

	recent := e.resolveRecentMeta(ctx, userProfile.RecentFeed)
	scored := e.scoreCandidates(ctx, userProfile, candidates, recent)

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	ranked := applyDiversityFilter(scored)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// resolveProfile loads the user profile cache-first, falling back to a
// full store reconstruction and re-populating the cache.
func (e *Engine) resolveProfile(ctx context.Context, userID string) (*profile.Profile, error) {
	if cached, err := e.deps.Cache.GetProfile(ctx, userID); err == nil {
		return cached, nil
	}

	userProfile, err := e.deps.Profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user profile: %w", err)
	}

	if err := e.deps.Cache.SetProfile(ctx, userID, userProfile, e.profileTTL); err != nil {
		e.logger.Debug("failed to cache user profile", "user_id", userID, "error", err)
	}
	return userProfile, nil
}

// gatherCandidates queries the four candidate sources concurrently and
// merges results by post ID, first-seen in source order winning.
func (e *Engine) gatherCandidates(ctx context.Context, userProfile *profile.Profile) ([]*post.Post, error) {
	type sourceResult struct {
		posts []*post.Post
		err   error
	}

	sources := []struct {
		name  string
		fetch func(context.Context) ([]*post.Post, error)
	}{
		{sourceFollowed, func(ctx context.Context) ([]*post.Post, error) {
			if len(userProfile.FollowedAuthors) == 0 {
				return nil, nil
			}
			return e.deps.Posts.RecentByAuthors(ctx, userProfile.FollowedAuthors, followedWindow, followedLimit)
		}},
		{sourceTrending, func(ctx context.Context) ([]*post.Post, error) {
			ids, err := e.deps.Trending.TopTrending(ctx, trendingLimit)
			if err != nil {
				return nil, err
			}
			if len(ids) == 0 {
				return nil, nil
			}
			return e.deps.Posts.GetManyByIDs(ctx, ids)
		}},
		{sourceSimilar, func(ctx context.Context) ([]*post.Post, error) {
			return e.deps.Similarity.FindSimilarPosts(ctx, userProfile.ID, similarLimit)
		}},
		{sourceExplore, func(ctx context.Context) ([]*post.Post, error) {
			return e.deps.Posts.RecentRandom(ctx, exploreWindow, exploreLimit)
		}},
	}

	results := make([]sourceResult, len(sources))
	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Add(1)
		go func(i int, fetch func(context.Context) ([]*post.Post, error)) {
			defer wg.Done()
			posts, err := fetch(ctx)
			results[i] = sourceResult{posts: posts, err: err}
		}(i, src.fetch)
	}
	wg.Wait()

	failures := 0
	seen := make(map[string]bool)
	var merged []*post.Post
	for i, res := range results {
		if res.err != nil {
			failures++
			e.logger.Warn("candidate source failed", "source", sources[i].name, "error", res.err)
			if e.metrics != nil {
				e.metrics.IncSourceFailure(sources[i].name)
			}
			continue
		}
		for _, p := range res.posts {
			if seen[p.ID] {
				continue
			}
			seen[p.ID] = true
			merged = append(merged, p)
		}
	}

	if failures == len(sources) {
		return nil, ErrNoCandidates
	}
	return merged, nil
}

// resolveRecentMeta maps the user's recent feed history to the
// category/author entries the diversity penalty consumes. A cache miss
// yields a zero entry rather than a store lookup.
func (e *Engine) resolveRecentMeta(ctx context.Context, recentFeed []string) []scoring.RecentEntry {
	entries := make([]scoring.RecentEntry, len(recentFeed))
	for i, postID := range recentFeed {
		meta, err := e.deps.Cache.GetPostMeta(ctx, postID)
		if err != nil {
			continue
		}
		entries[i] = scoring.RecentEntry{Category: meta.Category, AuthorID: meta.AuthorID}
	}
	return entries
}

// scoreCandidates scores every candidate concurrently. Each goroutine
// writes only its own slot, so no further synchronization is needed.
func (e *Engine) scoreCandidates(ctx context.Context, userProfile *profile.Profile, candidates []*post.Post, recent []scoring.RecentEntry) []ScoredPost {
	scored := make([]ScoredPost, len(candidates))
	now := e.now()

	var wg sync.WaitGroup
	for i, candidate := range candidates {
		wg.Add(1)
		go func(i int, candidate *post.Post) {
			defer wg.Done()
			scored[i] = ScoredPost{
				Post:  *candidate,
				Score: e.scorePost(ctx, userProfile, candidate, recent, now),
			}
		}(i, candidate)
	}
	wg.Wait()

	return scored
}

// scorePost blends the content score with social and predicted
// engagement signals. Helper failures degrade their contribution to
// zero instead of failing the feed.
func (e *Engine) scorePost(ctx context.Context, userProfile *profile.Profile, candidate *post.Post, recent []scoring.RecentEntry, now time.Time) float64 {
	counts, err := e.deps.Interactions.AggregateCounts(ctx, candidate.ID)
	if err != nil {
		e.logger.Debug("failed to aggregate engagement counts", "post_id", candidate.ID, "error", err)
		counts = interaction.Counts{}
	}

	contentScore := e.scorer.Score(candidate, userProfile, counts, recent, now)
	socialScore := e.socialScore(ctx, userProfile, candidate)
	predictionScore := e.predictEngagement(ctx, userProfile, counts)

	return contentScore*contentWeight + socialScore*socialWeight + predictionScore*predictionWeight
}

// socialScore is the followed-author boost, or a capped count of how
// many followed authors engaged with the post.
func (e *Engine) socialScore(ctx context.Context, userProfile *profile.Profile, candidate *post.Post) float64 {
	if userProfile.Follows(candidate.AuthorID) {
		return followedSocialScore
	}

	count, err := e.deps.Interactions.CountFriendEngagement(ctx, userProfile.ID, candidate.ID)
	if err != nil {
		e.logger.Debug("failed to count friend engagement", "post_id", candidate.ID, "error", err)
		return 0
	}
	return math.Min(float64(count)*friendEngagementWeight, friendEngagementCap)
}

// predictEngagement averages the user's historical engagement rate with
// the post's own observed rate.
func (e *Engine) predictEngagement(ctx context.Context, userProfile *profile.Profile, counts interaction.Counts) float64 {
	userRate, err := e.deps.Interactions.UserAverageEngagementRate(ctx, userProfile.ID)
	if err != nil {
		e.logger.Debug("failed to compute user engagement rate", "user_id", userProfile.ID, "error", err)
		userRate = 0
	}

	postRate := math.Min(
		float64(counts.Likes+counts.Comments+counts.Shares)/math.Max(float64(counts.Views), 1),
		1,
	)
	return (userRate + postRate) / 2
}
