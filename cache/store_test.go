package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewStore(rdb, "refreshToken:"), mr
}

func TestPutGet(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "g1", "tok-1", 7*24*time.Hour); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	got, err := store.Get(ctx, "g1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != "tok-1" {
		t.Fatalf("expected tok-1, got %q", got)
	}

	ttl := mr.TTL("refreshToken:g1")
	if ttl != 7*24*time.Hour {
		t.Fatalf("expected 604800s TTL, got %v", ttl)
	}
}

func TestGetMissing(t *testing.T) {
	store, _ := newTestStore(t)

	if _, err := store.Get(context.Background(), "nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSwapReplacesMatchingToken(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "g1", "old", time.Hour); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if err := store.Swap(ctx, "g1", "old", "new", 7*24*time.Hour); err != nil {
		t.Fatalf("swap failed: %v", err)
	}

	got, err := store.Get(ctx, "g1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != "new" {
		t.Fatalf("expected new, got %q", got)
	}
	if ttl := mr.TTL("refreshToken:g1"); ttl != 7*24*time.Hour {
		t.Fatalf("swap did not reset TTL, got %v", ttl)
	}
}

func TestSwapRejectsMismatch(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "g1", "current", time.Hour); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	err := store.Swap(ctx, "g1", "stale", "new", time.Hour)
	if !errors.Is(err, ErrTokenMismatch) {
		t.Fatalf("expected ErrTokenMismatch, got %v", err)
	}

	got, err := store.Get(ctx, "g1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != "current" {
		t.Fatalf("mismatch swap mutated the entry: %q", got)
	}
}

func TestSwapRejectsMissingEntry(t *testing.T) {
	store, _ := newTestStore(t)

	err := store.Swap(context.Background(), "g1", "anything", "new", time.Hour)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSwapExpiredEntry(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "g1", "old", time.Minute); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	if err := store.Swap(ctx, "g1", "old", "new", time.Hour); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after expiry, got %v", err)
	}
}

func TestSwapSingleWinner(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "g1", "old", time.Hour); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	const n = 16
	var wg sync.WaitGroup
	wg.Add(n)

	results := make(chan error, n)
	for i := 0; i < n; i++ {
		next := string(rune('a' + i))
		go func() {
			defer wg.Done()
			results <- store.Swap(ctx, "g1", "old", next, time.Hour)
		}()
	}
	wg.Wait()
	close(results)

	success := 0
	for err := range results {
		if err == nil {
			success++
			continue
		}
		if !errors.Is(err, ErrTokenMismatch) {
			t.Fatalf("unexpected swap error: %v", err)
		}
	}
	if success != 1 {
		t.Fatalf("expected exactly one swap winner, got %d", success)
	}
}
