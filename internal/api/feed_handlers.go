package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/onnwee/currents/internal/feed"
	"github.com/onnwee/currents/internal/middleware"
	"github.com/onnwee/currents/internal/profile"
)

// maxFeedLimit caps the per-request feed size.
const maxFeedLimit = 100

// FeedHandlers provides the feed endpoint.
type FeedHandlers struct {
	engine *feed.Engine
	logger *slog.Logger
}

// NewFeedHandlers creates feed handlers backed by the given engine.
func NewFeedHandlers(engine *feed.Engine, logger *slog.Logger) *FeedHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &FeedHandlers{engine: engine, logger: logger}
}

// FeedResponse is the JSON body for a successful feed request.
type FeedResponse struct {
	Posts []feed.ScoredPost `json:"posts"`
}

// GetFeed handles GET /api/v1/feed?limit=N.
// The requesting user comes from the auth middleware.
func (h *FeedHandlers) GetFeed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodGet {
		WriteError(w, ctx, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	userID := middleware.GetUserID(ctx)
	if userID == "" {
		WriteError(w, ctx, http.StatusUnauthorized, ErrCodeAuthFailed, "Authentication required")
		return
	}

	limit := feed.DefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "limit must be a positive integer")
			return
		}
		if parsed > maxFeedLimit {
			parsed = maxFeedLimit
		}
		limit = parsed
	}

	posts, err := h.engine.GenerateFeed(ctx, userID, limit)
	if err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			WriteError(w, ctx, http.StatusNotFound, ErrCodeNotFound, "User profile not found")
			return
		}
		h.logger.Error("feed generation failed", "user_id", userID, "error", err)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to generate feed")
		return
	}

	writeJSON(w, http.StatusOK, FeedResponse{Posts: posts})
}
