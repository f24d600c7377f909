package interaction

import (
	"context"
	"math"
	"testing"
)

// TestValidType tests interaction type validation.
func TestValidType(t *testing.T) {
	for _, typ := range []string{TypeView, TypeLike, TypeComment, TypeShare, TypeDwell} {
		if !ValidType(typ) {
			t.Errorf("expected %q to be valid", typ)
		}
	}
	for _, typ := range []string{"", "upvote", "VIEW"} {
		if ValidType(typ) {
			t.Errorf("expected %q to be invalid", typ)
		}
	}
}

// TestInMemoryStore_AggregateCounts tests per-type counting.
func TestInMemoryStore_AggregateCounts(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	store.Record("u1", "p1", TypeView)
	store.Record("u2", "p1", TypeView)
	store.Record("u1", "p1", TypeLike)
	store.Record("u1", "p1", TypeComment)
	store.Record("u1", "p1", TypeShare)
	store.Record("u1", "p2", TypeLike) // different post
	store.Record("u1", "p1", TypeDwell) // not counted in aggregates

	c, err := store.AggregateCounts(ctx, "p1")
	if err != nil {
		t.Fatalf("AggregateCounts failed: %v", err)
	}
	if c.Views != 2 || c.Likes != 1 || c.Comments != 1 || c.Shares != 1 {
		t.Errorf("unexpected counts: %+v", c)
	}

	empty, err := store.AggregateCounts(ctx, "unknown")
	if err != nil {
		t.Fatalf("AggregateCounts failed: %v", err)
	}
	if empty != (Counts{}) {
		t.Errorf("expected zero counts for unknown post, got %+v", empty)
	}
}

// TestInMemoryStore_CountFriendEngagement tests follow-scoped counting.
func TestInMemoryStore_CountFriendEngagement(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	store.SetFollows("u1", []string{"friend1", "friend2"})
	store.Record("friend1", "p1", TypeLike)
	store.Record("friend2", "p1", TypeView)
	store.Record("stranger", "p1", TypeLike)
	store.Record("friend1", "p2", TypeLike)

	count, err := store.CountFriendEngagement(ctx, "u1", "p1")
	if err != nil {
		t.Fatalf("CountFriendEngagement failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 friend interactions, got %d", count)
	}
}

// TestInMemoryStore_UserAverageEngagementRate tests the like/comment/share ratio.
func TestInMemoryStore_UserAverageEngagementRate(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	// No history yet.
	rate, err := store.UserAverageEngagementRate(ctx, "u1")
	if err != nil {
		t.Fatalf("UserAverageEngagementRate failed: %v", err)
	}
	if rate != 0 {
		t.Errorf("expected 0 rate with no history, got %f", rate)
	}

	store.Record("u1", "p1", TypeView)
	store.Record("u1", "p2", TypeView)
	store.Record("u1", "p3", TypeLike)
	store.Record("u1", "p4", TypeShare)

	rate, err = store.UserAverageEngagementRate(ctx, "u1")
	if err != nil {
		t.Fatalf("UserAverageEngagementRate failed: %v", err)
	}
	if math.Abs(rate-0.5) > 1e-9 {
		t.Errorf("expected rate 0.5, got %f", rate)
	}
}
