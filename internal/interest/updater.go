// Package interest evolves user interest vectors from interaction
// events. Each interaction nudges the user's vector toward the post's
// embedding, weighted by how strong a signal the interaction is.
package interest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/onnwee/currents/internal/analysis"
	"github.com/onnwee/currents/internal/cache"
	"github.com/onnwee/currents/internal/interaction"
	"github.com/onnwee/currents/internal/post"
	"github.com/onnwee/currents/internal/profile"
	"github.com/onnwee/currents/internal/scoring"
)

// ErrSkipped indicates the interaction was received but produced no
// vector update, e.g. because the post no longer exists. Callers treat
// it as a soft failure, not an error worth surfacing to the client.
var ErrSkipped = errors.New("interest update skipped")

// Interest evolution parameters. Decay keeps history dominant; the
// learning rate scales how hard a single interaction pulls the vector.
const (
	decayFactor  = 0.95
	learningRate = 0.1
)

// InteractionWeight returns the signal strength of an interaction.
// Dwell weight scales with how long the user stayed on the post.
// Unknown types carry no signal.
func InteractionWeight(interactionType string, durationSeconds float64) float64 {
	switch interactionType {
	case interaction.TypeView:
		return 1
	case interaction.TypeLike:
		return 3
	case interaction.TypeComment:
		return 5
	case interaction.TypeShare:
		return 7
	case interaction.TypeDwell:
		return durationSeconds / 10
	default:
		return 0
	}
}

// EvolveVector blends a post embedding into the current interest
// vector: each component becomes decay*current + rate*weight*embedding.
// A missing or dimension-mismatched current vector is treated as zero.
// The result is not normalized; callers normalize before persisting.
func EvolveVector(current, embedding []float64, weight float64) []float64 {
	if len(current) != len(embedding) {
		current = make([]float64, len(embedding))
	}
	evolved := make([]float64, len(embedding))
	for i := range embedding {
		evolved[i] = decayFactor*current[i] + learningRate*weight*embedding[i]
	}
	return evolved
}

// Updater applies interaction events to user interest profiles.
// Per-user updates are serialized with a keyed mutex so concurrent
// interactions from the same user cannot interleave read-modify-write.
type Updater struct {
	profiles profile.Store
	posts    post.Store
	cache    cache.Cache
	analyzer analysis.Analyzer
	locks    *keyedMutex
	logger   *slog.Logger
}

// NewUpdater creates an interest updater. The analyzer may be nil when
// no embedding fallback is available; posts without stored embeddings
// are then skipped.
func NewUpdater(profiles profile.Store, posts post.Store, c cache.Cache, analyzer analysis.Analyzer, logger *slog.Logger) *Updater {
	if logger == nil {
		logger = slog.Default()
	}
	return &Updater{
		profiles: profiles,
		posts:    posts,
		cache:    c,
		analyzer: analyzer,
		locks:    newKeyedMutex(),
		logger:   logger,
	}
}

// ApplyInteraction evolves the user's interest vector toward the
// interacted post's embedding and bumps the post category's weight.
// Returns ErrSkipped when the post or its embedding cannot be resolved.
func (u *Updater) ApplyInteraction(ctx context.Context, userID, postID, interactionType string, durationSeconds float64) error {
	weight := InteractionWeight(interactionType, durationSeconds)
	if weight <= 0 {
		return nil
	}

	u.locks.Lock(userID)
	defer u.locks.Unlock(userID)

	embedding, category, err := u.resolvePost(ctx, postID)
	if err != nil {
		if errors.Is(err, ErrSkipped) {
			u.logger.Debug("skipping interest update", "post_id", postID, "reason", err)
			return ErrSkipped
		}
		return err
	}

	p, err := u.profiles.GetProfile(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load profile for interest update: %w", err)
	}

	evolved := EvolveVector(p.InterestVector, embedding, weight)
	normalized := scoring.Normalize(evolved)

	if err := u.profiles.SaveInterestVector(ctx, userID, normalized); err != nil {
		return fmt.Errorf("failed to save interest vector: %w", err)
	}

	if category != "" {
		if err := u.profiles.IncrementCategoryWeight(ctx, userID, category, weight); err != nil {
			return fmt.Errorf("failed to update category weight: %w", err)
		}
	}
	return nil
}

// resolvePost returns the post's embedding and category, consulting the
// cache first, then the post store, then the analyzer as a fallback for
// posts that were stored without an embedding.
func (u *Updater) resolvePost(ctx context.Context, postID string) ([]float64, string, error) {
	var cachedCategory string
	if meta, err := u.cache.GetPostMeta(ctx, postID); err == nil {
		cachedCategory = meta.Category
	}
	if embedding, err := u.cache.GetEmbedding(ctx, postID); err == nil && len(embedding) > 0 {
		return embedding, cachedCategory, nil
	}

	p, err := u.posts.GetPost(ctx, postID)
	if err != nil {
		if errors.Is(err, post.ErrPostNotFound) {
			return nil, "", fmt.Errorf("%w: post not found", ErrSkipped)
		}
		return nil, "", fmt.Errorf("failed to load post: %w", err)
	}

	embedding := p.Embedding
	if len(embedding) == 0 {
		if u.analyzer == nil {
			return nil, "", fmt.Errorf("%w: post has no embedding", ErrSkipped)
		}
		embedding, err = u.analyzer.EmbedText(ctx, p.Title+"\n\n"+p.Content)
		if err != nil {
			return nil, "", fmt.Errorf("failed to embed post text: %w", err)
		}
		if len(embedding) == 0 {
			return nil, "", fmt.Errorf("%w: analyzer returned empty embedding", ErrSkipped)
		}
	}

	if err := u.cache.SetEmbedding(ctx, postID, embedding); err != nil {
		u.logger.Debug("failed to cache post embedding", "post_id", postID, "error", err)
	}
	meta := cache.PostMeta{Category: p.Category, AuthorID: p.AuthorID}
	if err := u.cache.SetPostMeta(ctx, postID, meta); err != nil {
		u.logger.Debug("failed to cache post meta", "post_id", postID, "error", err)
	}

	return embedding, p.Category, nil
}
