package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func newTestMemoryStore(t *testing.T, size int) *MemoryStore {
	t.Helper()
	store, err := NewMemoryStore(size)
	if err != nil {
		t.Fatalf("NewMemoryStore failed: %v", err)
	}
	return store
}

func TestMemoryStore_SetAndGet(t *testing.T) {
	store := newTestMemoryStore(t, 16)
	ctx := context.Background()

	if err := store.Set(ctx, "pokemon:detail:25", []byte(`{"id":25}`), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	data, err := store.Get(ctx, "pokemon:detail:25")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(data) != `{"id":25}` {
		t.Errorf("Data mismatch: got %s", data)
	}
}

func TestMemoryStore_Get_CacheMiss(t *testing.T) {
	store := newTestMemoryStore(t, 16)

	_, err := store.Get(context.Background(), "missing")
	if !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss, got %v", err)
	}
}

func TestMemoryStore_Get_Expired(t *testing.T) {
	store := newTestMemoryStore(t, 16)
	ctx := context.Background()

	if err := store.Set(ctx, "short", []byte("x"), 10*time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	time.Sleep(30 * time.Millisecond)

	if _, err := store.Get(ctx, "short"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss for expired entry, got %v", err)
	}
	if _, err := store.Get(ctx, "short"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss on repeated read, got %v", err)
	}
}

func TestMemoryStore_Get_ExpiredKeepsFreshWrite(t *testing.T) {
	store := newTestMemoryStore(t, 16)
	ctx := context.Background()

	_ = store.Set(ctx, "k", []byte("stale"), time.Millisecond)
	time.Sleep(10 * time.Millisecond)

	// Readers keep observing the expired entry while a writer refreshes it.
	// Every read after the writer's Set returns must hit.
	stop := make(chan struct{})
	var readers sync.WaitGroup
	for i := 0; i < 8; i++ {
		readers.Add(1)
		go func() {
			defer readers.Done()
			for {
				select {
				case <-stop:
					return
				default:
					_, _ = store.Get(ctx, "k")
				}
			}
		}()
	}

	for i := 0; i < 200; i++ {
		_ = store.Set(ctx, "k", []byte("stale"), time.Nanosecond)
		value := []byte(fmt.Sprintf("fresh-%d", i))
		if err := store.Set(ctx, "k", value, time.Minute); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		data, err := store.Get(ctx, "k")
		if err != nil {
			t.Fatalf("iteration %d: fresh write lost: %v", i, err)
		}
		if string(data) != string(value) {
			t.Fatalf("iteration %d: Get() = %s, want %s", i, data, value)
		}
	}
	close(stop)
	readers.Wait()
}

func TestMemoryStore_PerKeyTTL(t *testing.T) {
	store := newTestMemoryStore(t, 16)
	ctx := context.Background()

	_ = store.Set(ctx, "short", []byte("a"), 10*time.Millisecond)
	_ = store.Set(ctx, "long", []byte("b"), time.Hour)
	time.Sleep(30 * time.Millisecond)

	if _, err := store.Get(ctx, "short"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("short: expected ErrCacheMiss, got %v", err)
	}
	if _, err := store.Get(ctx, "long"); err != nil {
		t.Errorf("long: unexpected error %v", err)
	}
}

func TestMemoryStore_Set_InvalidTTL(t *testing.T) {
	store := newTestMemoryStore(t, 16)

	for _, ttl := range []time.Duration{0, -time.Second} {
		if err := store.Set(context.Background(), "k", []byte("v"), ttl); !errors.Is(err, ErrInvalidTTL) {
			t.Errorf("Set(ttl=%v) = %v, want ErrInvalidTTL", ttl, err)
		}
	}
}

func TestMemoryStore_LastWriteWins(t *testing.T) {
	store := newTestMemoryStore(t, 16)
	ctx := context.Background()

	_ = store.Set(ctx, "k", []byte("first"), time.Minute)
	_ = store.Set(ctx, "k", []byte("second"), time.Minute)

	data, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(data) != "second" {
		t.Errorf("Get() = %s, want second", data)
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	store := newTestMemoryStore(t, 16)
	ctx := context.Background()

	_ = store.Set(ctx, "k", []byte("v"), time.Minute)
	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss after Delete, got %v", err)
	}
	if err := store.Delete(ctx, "never-set"); err != nil {
		t.Errorf("Delete of missing key should not fail: %v", err)
	}
}

func TestMemoryStore_Eviction(t *testing.T) {
	store := newTestMemoryStore(t, 2)
	ctx := context.Background()

	_ = store.Set(ctx, "a", []byte("1"), time.Minute)
	_ = store.Set(ctx, "b", []byte("2"), time.Minute)
	_ = store.Set(ctx, "c", []byte("3"), time.Minute)

	if _, err := store.Get(ctx, "a"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("oldest entry should be evicted, got %v", err)
	}
	if store.Len() != 2 {
		t.Errorf("Len() = %d, want 2", store.Len())
	}
}

func TestMemoryStore_DefaultSize(t *testing.T) {
	store := newTestMemoryStore(t, 0)
	if store == nil {
		t.Fatal("NewMemoryStore(0) returned nil")
	}
}

func TestMemoryStore_Concurrent(t *testing.T) {
	store := newTestMemoryStore(t, 128)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%5)
			_ = store.Set(ctx, key, []byte(key), time.Minute)
			_, _ = store.Get(ctx, key)
		}(i)
	}
	wg.Wait()

	for i := 0; i < 5; i++ {
		key := fmt.Sprintf("k%d", i)
		data, err := store.Get(ctx, key)
		if err != nil {
			t.Errorf("Get(%s) failed: %v", key, err)
			continue
		}
		if string(data) != key {
			t.Errorf("Get(%s) = %s", key, data)
		}
	}
}
