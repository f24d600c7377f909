package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/onnwee/currents/internal/cache"
	"github.com/onnwee/currents/internal/feed"
	"github.com/onnwee/currents/internal/interaction"
	"github.com/onnwee/currents/internal/middleware"
	"github.com/onnwee/currents/internal/post"
	"github.com/onnwee/currents/internal/profile"
	"github.com/onnwee/currents/internal/similarity"
	"github.com/onnwee/currents/internal/trending"
)

func newTestEngine(t *testing.T) (*feed.Engine, *profile.InMemoryStore, *post.InMemoryStore) {
	t.Helper()
	profiles := profile.NewInMemoryStore()
	posts := post.NewInMemoryStore()
	engine := feed.NewEngine(feed.Deps{
		Profiles:     profiles,
		Posts:        posts,
		Interactions: interaction.NewInMemoryStore(),
		Cache:        cache.NewMemoryCache(),
		Trending:     trending.NewMemoryTracker(),
		Similarity:   similarity.StubSource{},
	}, feed.Config{})
	return engine, profiles, posts
}

func authenticated(req *http.Request, userID string) *http.Request {
	return req.WithContext(middleware.SetUserID(req.Context(), userID))
}

func TestGetFeed(t *testing.T) {
	engine, profiles, posts := newTestEngine(t)
	profiles.Put(&profile.Profile{ID: "u1"})
	if err := posts.Create(&post.Post{AuthorID: "a", CreatedAt: time.Now().Add(-time.Minute)}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	h := NewFeedHandlers(engine, nil)

	req := authenticated(httptest.NewRequest(http.MethodGet, "/api/v1/feed", nil), "u1")
	rec := httptest.NewRecorder()
	h.GetFeed(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp FeedResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(resp.Posts) != 1 {
		t.Errorf("expected 1 post, got %d", len(resp.Posts))
	}
}

func TestGetFeed_LimitApplied(t *testing.T) {
	engine, profiles, posts := newTestEngine(t)
	profiles.Put(&profile.Profile{ID: "u1"})
	for i := 0; i < 5; i++ {
		if err := posts.Create(&post.Post{
			AuthorID:  "author" + string(rune('0'+i)),
			Category:  "cat" + string(rune('0'+i)),
			CreatedAt: time.Now().Add(-time.Minute),
		}); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	h := NewFeedHandlers(engine, nil)

	req := authenticated(httptest.NewRequest(http.MethodGet, "/api/v1/feed?limit=2", nil), "u1")
	rec := httptest.NewRecorder()
	h.GetFeed(rec, req)

	var resp FeedResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(resp.Posts) != 2 {
		t.Errorf("expected 2 posts, got %d", len(resp.Posts))
	}
}

func TestGetFeed_InvalidLimit(t *testing.T) {
	engine, profiles, _ := newTestEngine(t)
	profiles.Put(&profile.Profile{ID: "u1"})
	h := NewFeedHandlers(engine, nil)

	for _, raw := range []string{"abc", "0", "-5"} {
		req := authenticated(httptest.NewRequest(http.MethodGet, "/api/v1/feed?limit="+raw, nil), "u1")
		rec := httptest.NewRecorder()
		h.GetFeed(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("limit=%q: status = %d, want 400", raw, rec.Code)
		}
	}
}

func TestGetFeed_Unauthenticated(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	h := NewFeedHandlers(engine, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/feed", nil)
	rec := httptest.NewRecorder()
	h.GetFeed(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestGetFeed_UnknownUser(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	h := NewFeedHandlers(engine, nil)

	req := authenticated(httptest.NewRequest(http.MethodGet, "/api/v1/feed", nil), "ghost")
	rec := httptest.NewRecorder()
	h.GetFeed(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse error body: %v", err)
	}
	if resp.Error.Code != ErrCodeNotFound {
		t.Errorf("error code = %q, want %q", resp.Error.Code, ErrCodeNotFound)
	}
}

func TestGetFeed_MethodNotAllowed(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	h := NewFeedHandlers(engine, nil)

	req := authenticated(httptest.NewRequest(http.MethodPost, "/api/v1/feed", nil), "u1")
	rec := httptest.NewRecorder()
	h.GetFeed(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}
