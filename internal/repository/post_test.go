package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func fixedClock() func() time.Time {
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.FixedZone("CET", 3600))
	return func() time.Time { return at }
}

func TestPostStore_AddAndList(t *testing.T) {
	store := NewPostStore(fixedClock())
	ctx := context.Background()

	first, err := store.AddPost(ctx, "alice", "hello")
	if err != nil {
		t.Fatalf("AddPost: %v", err)
	}
	second, err := store.AddPost(ctx, "alice", "world")
	if err != nil {
		t.Fatalf("AddPost: %v", err)
	}

	if first.ID != 1 || second.ID != 2 {
		t.Errorf("expected IDs 1 and 2, got %d and %d", first.ID, second.ID)
	}
	if first.CreatedAt.Location() != time.UTC {
		t.Errorf("expected UTC timestamp, got %v", first.CreatedAt.Location())
	}

	posts, err := store.ListPosts(ctx, "alice")
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if len(posts) != 2 || posts[0].Text != "hello" || posts[1].Text != "world" {
		t.Errorf("unexpected posts: %+v", posts)
	}

	others, err := store.ListPosts(ctx, "bob")
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if len(others) != 0 {
		t.Errorf("expected no posts for bob, got %d", len(others))
	}
}

func TestPostStore_ListReturnsCopies(t *testing.T) {
	store := NewPostStore(nil)
	ctx := context.Background()

	if _, err := store.AddPost(ctx, "alice", "original"); err != nil {
		t.Fatalf("AddPost: %v", err)
	}

	posts, _ := store.ListPosts(ctx, "alice")
	posts[0].Text = "mutated"

	again, _ := store.ListPosts(ctx, "alice")
	if again[0].Text != "original" {
		t.Errorf("store was mutated through a listed post: %q", again[0].Text)
	}
}

func TestPostStore_Delete(t *testing.T) {
	store := NewPostStore(nil)
	ctx := context.Background()

	a, _ := store.AddPost(ctx, "alice", "a")
	b, _ := store.AddPost(ctx, "alice", "b")
	c, _ := store.AddPost(ctx, "alice", "c")

	if err := store.DeletePost(ctx, "bob", b.ID); !errors.Is(err, ErrPostNotFound) {
		t.Errorf("deleting another user's post: expected ErrPostNotFound, got %v", err)
	}

	if err := store.DeletePost(ctx, "alice", b.ID); err != nil {
		t.Fatalf("DeletePost: %v", err)
	}
	if err := store.DeletePost(ctx, "alice", b.ID); !errors.Is(err, ErrPostNotFound) {
		t.Errorf("second delete: expected ErrPostNotFound, got %v", err)
	}

	posts, _ := store.ListPosts(ctx, "alice")
	if len(posts) != 2 || posts[0].ID != a.ID || posts[1].ID != c.ID {
		t.Errorf("unexpected posts after delete: %+v", posts)
	}
}

func TestPostStore_IDsNotReusedAfterClear(t *testing.T) {
	store := NewPostStore(nil)
	ctx := context.Background()

	first, _ := store.AddPost(ctx, "alice", "a")
	store.Clear()

	posts, _ := store.ListPosts(ctx, "alice")
	if len(posts) != 0 {
		t.Fatalf("expected empty store after Clear, got %d posts", len(posts))
	}

	next, _ := store.AddPost(ctx, "alice", "b")
	if next.ID <= first.ID {
		t.Errorf("expected ID greater than %d, got %d", first.ID, next.ID)
	}
}

func TestPostStore_ConcurrentAddsGetDistinctIDs(t *testing.T) {
	store := NewPostStore(nil)
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	ids := make(chan int64, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := store.AddPost(ctx, "alice", "x")
			if err != nil {
				t.Errorf("AddPost: %v", err)
				return
			}
			ids <- p.ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool, n)
	for id := range ids {
		if seen[id] {
			t.Errorf("duplicate post ID %d", id)
		}
		seen[id] = true
	}
	if len(seen) != n {
		t.Errorf("expected %d distinct IDs, got %d", n, len(seen))
	}
}
