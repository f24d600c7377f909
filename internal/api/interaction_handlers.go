package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/onnwee/currents/internal/interaction"
	"github.com/onnwee/currents/internal/interest"
	"github.com/onnwee/currents/internal/middleware"
	"github.com/onnwee/currents/internal/trending"
)

// interestUpdateTimeout bounds the background interest update, which
// outlives the request context.
const interestUpdateTimeout = 10 * time.Second

// InteractionHandlers provides the interaction ingestion endpoint.
type InteractionHandlers struct {
	tracker trending.Tracker
	updater *interest.Updater
	logger  *slog.Logger

	// runAsync launches the background interest update. Overridable in
	// tests to run synchronously.
	runAsync func(func())
}

// NewInteractionHandlers creates interaction handlers.
func NewInteractionHandlers(tracker trending.Tracker, updater *interest.Updater, logger *slog.Logger) *InteractionHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &InteractionHandlers{
		tracker:  tracker,
		updater:  updater,
		logger:   logger,
		runAsync: func(fn func()) { go fn() },
	}
}

// InteractionRequest is the JSON body for POST /api/v1/interaction.
type InteractionRequest struct {
	PostID          string  `json:"post_id"`
	Type            string  `json:"type"`
	DurationSeconds float64 `json:"duration_seconds,omitempty"`
}

// RecordInteraction handles POST /api/v1/interaction.
// The trending ranking is updated synchronously; the interest-vector
// update runs in the background so ingest latency stays flat.
func (h *InteractionHandlers) RecordInteraction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodPost {
		WriteError(w, ctx, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	userID := middleware.GetUserID(ctx)
	if userID == "" {
		WriteError(w, ctx, http.StatusUnauthorized, ErrCodeAuthFailed, "Authentication required")
		return
	}

	var req InteractionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON body")
		return
	}
	if req.PostID == "" {
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "post_id is required")
		return
	}
	if !interaction.ValidType(req.Type) {
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "type must be one of view, like, comment, share, dwell")
		return
	}
	if req.DurationSeconds < 0 {
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "duration_seconds must not be negative")
		return
	}

	if err := h.tracker.RecordEngagement(ctx, req.PostID, req.Type); err != nil {
		h.logger.Error("failed to record engagement", "post_id", req.PostID, "error", err)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to record interaction")
		return
	}

	h.runAsync(func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), interestUpdateTimeout)
		defer cancel()

		err := h.updater.ApplyInteraction(bgCtx, userID, req.PostID, req.Type, req.DurationSeconds)
		if err != nil && !errors.Is(err, interest.ErrSkipped) {
			h.logger.Error("interest update failed", "user_id", userID, "post_id", req.PostID, "error", err)
		}
	})

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
