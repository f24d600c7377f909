package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/onnwee/currents/internal/cache"
	"github.com/onnwee/currents/internal/interest"
	"github.com/onnwee/currents/internal/post"
	"github.com/onnwee/currents/internal/profile"
	"github.com/onnwee/currents/internal/trending"
)

type interactionFixture struct {
	handlers *InteractionHandlers
	tracker  *trending.MemoryTracker
	profiles *profile.InMemoryStore
	posts    *post.InMemoryStore
}

func newInteractionFixture(t *testing.T) *interactionFixture {
	t.Helper()

	profiles := profile.NewInMemoryStore()
	posts := post.NewInMemoryStore()
	tracker := trending.NewMemoryTracker()
	updater := interest.NewUpdater(profiles, posts, cache.NewMemoryCache(), nil, nil)

	h := NewInteractionHandlers(tracker, updater, nil)
	h.runAsync = func(fn func()) { fn() } // synchronous for tests

	return &interactionFixture{handlers: h, tracker: tracker, profiles: profiles, posts: posts}
}

func postInteraction(t *testing.T, h *InteractionHandlers, userID, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/interaction", strings.NewReader(body))
	if userID != "" {
		req = authenticated(req, userID)
	}
	rec := httptest.NewRecorder()
	h.RecordInteraction(rec, req)
	return rec
}

func TestRecordInteraction(t *testing.T) {
	f := newInteractionFixture(t)

	f.profiles.Put(&profile.Profile{ID: "u1"})
	if err := f.posts.Create(&post.Post{ID: "p1", Category: "tech", Embedding: []float64{1, 0}}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	rec := postInteraction(t, f.handlers, "u1", `{"post_id":"p1","type":"like"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp map[string]bool
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if !resp["success"] {
		t.Error("expected success response")
	}

	// Trending saw the event.
	if _, ok := f.tracker.CurrentScore("p1"); !ok {
		t.Error("expected trending score for p1")
	}

	// Interest update ran (synchronously in tests).
	p, err := f.profiles.GetProfile(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if len(p.InterestVector) == 0 {
		t.Error("expected interest vector update")
	}
	if p.CategoryWeights["tech"] != 3 {
		t.Errorf("category weight = %f, want 3", p.CategoryWeights["tech"])
	}
}

func TestRecordInteraction_MissingPostStillSucceeds(t *testing.T) {
	f := newInteractionFixture(t)
	f.profiles.Put(&profile.Profile{ID: "u1"})

	// Trending ingest works on raw IDs; the interest update skips
	// silently when the post is unknown.
	rec := postInteraction(t, f.handlers, "u1", `{"post_id":"ghost","type":"view"}`)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestRecordInteraction_Validation(t *testing.T) {
	f := newInteractionFixture(t)
	f.profiles.Put(&profile.Profile{ID: "u1"})

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{`},
		{"missing post_id", `{"type":"like"}`},
		{"unknown type", `{"post_id":"p1","type":"bookmark"}`},
		{"negative duration", `{"post_id":"p1","type":"dwell","duration_seconds":-5}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postInteraction(t, f.handlers, "u1", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestRecordInteraction_Unauthenticated(t *testing.T) {
	f := newInteractionFixture(t)

	rec := postInteraction(t, f.handlers, "", `{"post_id":"p1","type":"like"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRecordInteraction_MethodNotAllowed(t *testing.T) {
	f := newInteractionFixture(t)

	httpReq := authenticated(httptest.NewRequest(http.MethodGet, "/api/v1/interaction", nil), "u1")
	rec := httptest.NewRecorder()
	f.handlers.RecordInteraction(rec, httpReq)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}
