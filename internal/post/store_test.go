package post

import (
	"context"
	"errors"
	"testing"
	"time"
)

// TestInMemoryStore_GetPost tests retrieval by ID.
func TestInMemoryStore_GetPost(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	p := &Post{AuthorID: "author1", Title: "hello", Content: "world", Category: "music"}
	if err := store.Create(p); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if p.ID == "" {
		t.Fatal("expected Create to assign an ID")
	}

	got, err := store.GetPost(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}
	if got.Title != "hello" || got.Category != "music" {
		t.Errorf("unexpected post: %+v", got)
	}

	// Mutating the returned copy must not affect the stored post.
	got.Title = "mutated"
	again, err := store.GetPost(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}
	if again.Title != "hello" {
		t.Error("store returned a shared reference instead of a copy")
	}
}

// TestInMemoryStore_GetPost_NotFound tests the missing-post path.
func TestInMemoryStore_GetPost_NotFound(t *testing.T) {
	store := NewInMemoryStore()

	_, err := store.GetPost(context.Background(), "nope")
	if !errors.Is(err, ErrPostNotFound) {
		t.Errorf("expected ErrPostNotFound, got %v", err)
	}
}

// TestInMemoryStore_GetManyByIDs tests batched retrieval with unknown IDs.
func TestInMemoryStore_GetManyByIDs(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	ids := make([]string, 0, 3)
	for i := 0; i < 3; i++ {
		p := &Post{AuthorID: "a", Title: "t"}
		if err := store.Create(p); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		ids = append(ids, p.ID)
	}

	posts, err := store.GetManyByIDs(ctx, append(ids, "missing"))
	if err != nil {
		t.Fatalf("GetManyByIDs failed: %v", err)
	}
	if len(posts) != 3 {
		t.Errorf("expected 3 posts, got %d", len(posts))
	}
}

// TestInMemoryStore_RecentByAuthors tests author filtering, window, ordering, and limit.
func TestInMemoryStore_RecentByAuthors(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	now := time.Now()

	posts := []*Post{
		{ID: "p1", AuthorID: "followed", CreatedAt: now.Add(-1 * time.Hour)},
		{ID: "p2", AuthorID: "followed", CreatedAt: now.Add(-3 * time.Hour)},
		{ID: "p3", AuthorID: "followed", CreatedAt: now.Add(-72 * time.Hour)}, // outside window
		{ID: "p4", AuthorID: "other", CreatedAt: now.Add(-1 * time.Hour)},     // not followed
	}
	for _, p := range posts {
		if err := store.Create(p); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	result, err := store.RecentByAuthors(ctx, []string{"followed"}, 48*time.Hour, 10)
	if err != nil {
		t.Fatalf("RecentByAuthors failed: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(result))
	}
	if result[0].ID != "p1" || result[1].ID != "p2" {
		t.Errorf("expected newest-first ordering [p1 p2], got [%s %s]", result[0].ID, result[1].ID)
	}

	// Limit applies after ordering.
	limited, err := store.RecentByAuthors(ctx, []string{"followed"}, 48*time.Hour, 1)
	if err != nil {
		t.Fatalf("RecentByAuthors failed: %v", err)
	}
	if len(limited) != 1 || limited[0].ID != "p1" {
		t.Errorf("expected [p1], got %v", limited)
	}
}

// TestInMemoryStore_RecentRandom tests the exploration sample window and limit.
func TestInMemoryStore_RecentRandom(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	now := time.Now()

	for i := 0; i < 10; i++ {
		p := &Post{AuthorID: "a", CreatedAt: now.Add(-time.Duration(i) * time.Hour)}
		if err := store.Create(p); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}
	old := &Post{ID: "old", AuthorID: "a", CreatedAt: now.Add(-48 * time.Hour)}
	if err := store.Create(old); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	result, err := store.RecentRandom(ctx, 24*time.Hour, 5)
	if err != nil {
		t.Fatalf("RecentRandom failed: %v", err)
	}
	if len(result) != 5 {
		t.Errorf("expected 5 posts, got %d", len(result))
	}
	for _, p := range result {
		if p.ID == "old" {
			t.Error("post outside the window was returned")
		}
	}
}
