package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStore_GetOrLoad_UsesSingleFlight(t *testing.T) {
	t.Parallel()

	store := NewStore[string](time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (string, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "Ligue 1", nil
	}

	const workers = 16
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err := store.GetOrLoad(context.Background(), "league:301", loader)
			if err != nil {
				errCh <- err
				return
			}
			if v != "Ligue 1" {
				errCh <- errUnexpectedValue
			}
		}()
	}

	close(start)
	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_GetOrLoad_DoesNotCacheErrors(t *testing.T) {
	t.Parallel()

	store := NewStore[*string](time.Minute)
	var calls atomic.Int32
	errProvider := errors.New("provider down")

	failing := func(context.Context) (*string, error) {
		calls.Add(1)
		return nil, errProvider
	}
	if _, err := store.GetOrLoad(context.Background(), "venue:7", failing); !errors.Is(err, errProvider) {
		t.Fatalf("expected provider error, got %v", err)
	}

	name := "Parc des Princes"
	got, err := store.GetOrLoad(context.Background(), "venue:7", func(context.Context) (*string, error) {
		calls.Add(1)
		return &name, nil
	})
	if err != nil {
		t.Fatalf("second GetOrLoad error: %v", err)
	}
	if got == nil || *got != name {
		t.Fatalf("unexpected value %v", got)
	}
	if calls.Load() != 2 {
		t.Fatalf("loader called %d times, want 2", calls.Load())
	}
}

func TestStore_GetOrLoad_CachesNilValues(t *testing.T) {
	t.Parallel()

	store := NewStore[*string](time.Minute)
	var calls atomic.Int32
	loader := func(context.Context) (*string, error) {
		calls.Add(1)
		return nil, nil
	}

	for i := 0; i < 2; i++ {
		got, err := store.GetOrLoad(context.Background(), "league:0", loader)
		if err != nil {
			t.Fatalf("GetOrLoad error: %v", err)
		}
		if got != nil {
			t.Fatalf("expected nil value, got %v", *got)
		}
	}
	if calls.Load() != 1 {
		t.Fatalf("loader called %d times, want 1", calls.Load())
	}
}

func TestStore_Get_ExpiresAfterTTL(t *testing.T) {
	t.Parallel()

	store := NewStore[int](time.Minute)
	now := time.Date(2026, 10, 3, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	store.Set(context.Background(), "k", 3)
	if v, ok := store.Get(context.Background(), "k"); !ok || v != 3 {
		t.Fatalf("expected cached value, got %d ok=%v", v, ok)
	}

	now = now.Add(2 * time.Minute)
	if _, ok := store.Get(context.Background(), "k"); ok {
		t.Fatalf("expected entry to expire")
	}
	if store.Len() != 0 {
		t.Fatalf("expected expired entry to be evicted, len=%d", store.Len())
	}
}

var errUnexpectedValue = errors.New("unexpected loaded value")
