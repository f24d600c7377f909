// Package main contains integration tests for the assembled API server.
package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/onnwee/currents/internal/api"
	"github.com/onnwee/currents/internal/auth"
	"github.com/onnwee/currents/internal/cache"
	"github.com/onnwee/currents/internal/feed"
	"github.com/onnwee/currents/internal/interaction"
	"github.com/onnwee/currents/internal/interest"
	"github.com/onnwee/currents/internal/middleware"
	"github.com/onnwee/currents/internal/post"
	"github.com/onnwee/currents/internal/profile"
	"github.com/onnwee/currents/internal/similarity"
	"github.com/onnwee/currents/internal/trending"
)

// newTestServer assembles the full handler tree on in-memory stores.
func newTestServer(t *testing.T) (http.Handler, *auth.JWTService) {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	posts := post.NewInMemoryStore()
	profiles := profile.NewInMemoryStore()
	interactions := interaction.NewInMemoryStore()
	memCache := cache.NewMemoryCache()
	tracker := trending.NewMemoryTracker()

	if err := posts.Create(&post.Post{
		ID:        "p1",
		AuthorID:  "author-1",
		Title:     "Synth workflows",
		Content:   "Patching basics",
		Category:  "music",
		CreatedAt: time.Now().Add(-1 * time.Hour),
	}); err != nil {
		t.Fatalf("failed to seed post: %v", err)
	}
	profiles.Put(&profile.Profile{
		ID:              "u1",
		FollowedAuthors: []string{"author-1"},
	})

	engine := feed.NewEngine(feed.Deps{
		Profiles:     profiles,
		Posts:        posts,
		Interactions: interactions,
		Cache:        memCache,
		Trending:     tracker,
		Similarity:   similarity.StubSource{},
	}, feed.Config{Logger: logger})

	updater := interest.NewUpdater(profiles, posts, memCache, nil, logger)
	jwtService := auth.NewJWTService("integration-test-secret", "")

	registry := prometheus.NewRegistry()
	httpMetrics := middleware.NewMetrics()
	if err := httpMetrics.Register(registry); err != nil {
		t.Fatalf("failed to register http metrics: %v", err)
	}

	handler := newHandler(handlerDeps{
		logger:              logger,
		jwtService:          jwtService,
		httpMetrics:         httpMetrics,
		registry:            registry,
		feedHandlers:        api.NewFeedHandlers(engine, logger),
		interactionHandlers: api.NewInteractionHandlers(tracker, updater, logger),
		healthHandlers:      api.NewHealthHandlers(api.HealthHandlersConfig{}),
	})
	return handler, jwtService
}

func TestRoutes_Health(t *testing.T) {
	handler, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "healthy") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestRoutes_Root(t *testing.T) {
	handler, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "currents-api") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestRoutes_UnknownPath(t *testing.T) {
	handler, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}

	var resp api.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse error body: %v", err)
	}
	if resp.Error.Code != api.ErrCodeNotFound {
		t.Errorf("code = %q, want %q", resp.Error.Code, api.ErrCodeNotFound)
	}
}

func TestRoutes_FeedRequiresAuth(t *testing.T) {
	handler, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/feed", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRoutes_FeedAuthenticated(t *testing.T) {
	handler, jwtService := newTestServer(t)

	token, err := jwtService.GenerateAccessToken("u1")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/feed", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", rec.Code, rec.Body.String())
	}

	var resp api.FeedResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse feed response: %v", err)
	}
	if len(resp.Posts) != 1 || resp.Posts[0].ID != "p1" {
		t.Errorf("unexpected feed: %+v", resp.Posts)
	}
}

func TestRoutes_InteractionAuthenticated(t *testing.T) {
	handler, jwtService := newTestServer(t)

	token, err := jwtService.GenerateAccessToken("u1")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	body := bytes.NewBufferString(`{"post_id":"p1","type":"like"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/interaction", body)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", rec.Code, rec.Body.String())
	}
}

func TestRoutes_Metrics(t *testing.T) {
	handler, _ := newTestServer(t)

	// Generate a request so the metrics endpoint has something to show.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "http_requests_total") {
		t.Errorf("metrics output missing http_requests_total")
	}
}
