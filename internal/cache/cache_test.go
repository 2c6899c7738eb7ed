package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"relief-portal-go/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gatedFetch blocks every call until release is closed and counts calls.
type gatedFetch struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
	value   any
	err     error
}

func newGatedFetch(value any, err error) *gatedFetch {
	return &gatedFetch{
		started: make(chan struct{}, 16),
		release: make(chan struct{}),
		value:   value,
		err:     err,
	}
}

func (f *gatedFetch) fetch(ctx context.Context) (any, error) {
	f.calls.Add(1)
	f.started <- struct{}{}
	<-f.release
	return f.value, f.err
}

func staticFetch(value any) FetchFunc {
	return func(context.Context) (any, error) {
		return value, nil
	}
}

func failingFetch(err error) FetchFunc {
	return func(context.Context) (any, error) {
		return nil, err
	}
}

func newTestCache() *Cache {
	return New(Options{}, logger.Nop())
}

// waitEvent subscribes to key and returns a channel receiving events of kind.
func waitEvent(c *Cache, key Key, kind EventKind) (<-chan Event, func()) {
	ch := make(chan Event, 4)
	unsubscribe := c.Subscribe(key, func(ev Event) {
		if ev.Kind == kind {
			ch <- ev
		}
	})
	return ch, unsubscribe
}

func receive(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for cache event")
		return Event{}
	}
}

func TestKeyPrefixIsSegmentWise(t *testing.T) {
	assert.True(t, UserKey("1", "profile").HasPrefix(UserScope("1")))
	assert.False(t, UserKey("10", "profile").HasPrefix(UserScope("1")))
	assert.True(t, NewKey("disasters").HasPrefix(Key{}))
	assert.False(t, NewKey("disasters").HasPrefix(NewKey("disasters", "1")))
	assert.True(t, NewKey("donations", "disaster", "7").Equal(Key{"donations", "disaster", "7"}))
	assert.NotEqual(t, Key{"a/b"}.String(), Key{"a", "b"}.String())
}

func TestGetMemoizesFulfilledEntry(t *testing.T) {
	c := newTestCache()
	key := NewKey("disasters")

	var calls atomic.Int32
	fetch := func(context.Context) (any, error) {
		calls.Add(1)
		return []string{"flood"}, nil
	}

	first, err := c.Get(context.Background(), key, fetch)
	require.NoError(t, err)
	second, err := c.Get(context.Background(), key, fetch)
	require.NoError(t, err)

	assert.Equal(t, []string{"flood"}, first)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), calls.Load())

	entry, ok := c.Peek(key)
	require.True(t, ok)
	assert.Equal(t, StatusFulfilled, entry.Status)
	assert.False(t, entry.FetchedAt.IsZero())
}

func TestConcurrentGetsShareOneFetch(t *testing.T) {
	c := newTestCache()
	key := NewKey("organizations", "42")
	gate := newGatedFetch("org-42", nil)

	const callers = 8
	var wg sync.WaitGroup
	results := make([]any, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = c.Get(context.Background(), key, gate.fetch)
		}(i)
	}

	<-gate.started
	require.Eventually(t, func() bool {
		entry, ok := c.Peek(key)
		return ok && entry.Status == StatusPending
	}, time.Second, 5*time.Millisecond)
	close(gate.release)
	wg.Wait()

	assert.Equal(t, int32(1), gate.calls.Load())
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "org-42", results[i])
	}
}

func TestFailedFetchKeepsPreviousData(t *testing.T) {
	c := newTestCache()
	key := NewKey("sponsors")
	boom := errors.New("connection reset")

	_, err := c.Get(context.Background(), key, staticFetch("v1"))
	require.NoError(t, err)
	c.Invalidate(key)

	failed, unsubscribe := waitEvent(c, key, EventFailed)
	defer unsubscribe()

	value, err := c.Get(context.Background(), key, failingFetch(boom))
	require.NoError(t, err)
	assert.Equal(t, "v1", value)

	ev := receive(t, failed)
	assert.True(t, ev.Entry.HasData)
	assert.Equal(t, "v1", ev.Entry.Data)
	assert.ErrorIs(t, ev.Entry.Err, boom)

	entry, ok := c.Peek(key)
	require.True(t, ok)
	assert.Equal(t, StatusFailed, entry.Status)
	assert.Equal(t, "v1", entry.Data)
}

func TestFailedFetchWithoutDataReturnsErrorAndRetries(t *testing.T) {
	c := newTestCache()
	key := NewKey("disasters", "9")
	boom := errors.New("relation does not exist")

	_, err := c.Get(context.Background(), key, failingFetch(boom))
	require.ErrorIs(t, err, boom)

	entry, ok := c.Peek(key)
	require.True(t, ok)
	assert.Equal(t, StatusFailed, entry.Status)
	assert.False(t, entry.HasData)

	value, err := c.Get(context.Background(), key, staticFetch("recovered"))
	require.NoError(t, err)
	assert.Equal(t, "recovered", value)
}

func TestInvalidateServesStaleWhileRevalidating(t *testing.T) {
	c := newTestCache()
	key := NewKey("donations", "5")

	_, err := c.Get(context.Background(), key, staticFetch("old"))
	require.NoError(t, err)

	assert.Equal(t, 1, c.Invalidate(NewKey("donations")))
	entry, _ := c.Peek(key)
	assert.Equal(t, StatusEmpty, entry.Status)
	assert.Equal(t, "old", entry.Data)

	updated, unsubscribe := waitEvent(c, key, EventUpdated)
	defer unsubscribe()

	gate := newGatedFetch("new", nil)
	value, err := c.Get(context.Background(), key, gate.fetch)
	require.NoError(t, err)
	assert.Equal(t, "old", value)

	<-gate.started
	value, err = c.Get(context.Background(), key, gate.fetch)
	require.NoError(t, err)
	assert.Equal(t, "old", value)

	close(gate.release)
	receive(t, updated)

	value, err = c.Get(context.Background(), key, gate.fetch)
	require.NoError(t, err)
	assert.Equal(t, "new", value)
	assert.Equal(t, int32(1), gate.calls.Load())
}

func TestInvalidateWhilePendingKeepsOneFetch(t *testing.T) {
	c := newTestCache()
	key := NewKey("volunteers", "3")
	gate := newGatedFetch("roster", nil)

	results := make(chan any, 2)
	get := func() {
		value, err := c.Get(context.Background(), key, gate.fetch)
		assert.NoError(t, err)
		results <- value
	}
	go get()
	<-gate.started

	assert.Equal(t, 1, c.Invalidate(NewKey("volunteers")))
	entry, _ := c.Peek(key)
	assert.Equal(t, StatusPending, entry.Status)

	go get()
	assert.Never(t, func() bool {
		return gate.calls.Load() > 1
	}, 50*time.Millisecond, 5*time.Millisecond)

	close(gate.release)
	assert.Equal(t, "roster", <-results)
	assert.Equal(t, "roster", <-results)

	require.Eventually(t, func() bool {
		entry, ok := c.Peek(key)
		return ok && entry.Status == StatusFulfilled
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(2), gate.calls.Load())

	value, err := c.Get(context.Background(), key, gate.fetch)
	require.NoError(t, err)
	assert.Equal(t, "roster", value)
	assert.Equal(t, int32(2), gate.calls.Load())
}

func TestDeferredNotificationsWaitForDeliver(t *testing.T) {
	c := newTestCache()
	key := UserKey("u1", "profile")
	_, err := c.Get(context.Background(), key, staticFetch("p"))
	require.NoError(t, err)

	var kinds []EventKind
	unsubscribe := c.Subscribe(key, func(ev Event) {
		kinds = append(kinds, ev.Kind)
	})
	defer unsubscribe()

	count, invalidated := c.InvalidateDeferred(UserScope("u1"))
	assert.Equal(t, 1, count)
	count, removed := c.RemoveDeferred(UserScope("u1"))
	assert.Equal(t, 1, count)
	assert.Empty(t, kinds)

	invalidated.Deliver()
	removed.Deliver()
	removed.Deliver()
	assert.Equal(t, []EventKind{EventInvalidated, EventRemoved}, kinds)
}

func TestRemoveDropsInFlightResult(t *testing.T) {
	c := newTestCache()
	key := UserKey("u1", "profile")
	gate := newGatedFetch("u1-profile", nil)

	done := make(chan any, 1)
	go func() {
		value, _ := c.Get(context.Background(), key, gate.fetch)
		done <- value
	}()
	<-gate.started

	assert.Equal(t, 1, c.Remove(UserScope("u1")))
	close(gate.release)
	assert.Equal(t, "u1-profile", <-done)

	_, ok := c.Peek(key)
	assert.False(t, ok)

	value, err := c.Get(context.Background(), key, staticFetch("refetched"))
	require.NoError(t, err)
	assert.Equal(t, "refetched", value)
}

func TestRemoveOnlyTouchesPrefix(t *testing.T) {
	c := newTestCache()
	ctx := context.Background()

	for _, key := range []Key{
		UserKey("u1", "profile"),
		UserKey("u1", "aid_requests"),
		UserKey("u10", "profile"),
		NewKey("disasters"),
	} {
		_, err := c.Get(ctx, key, staticFetch(key.String()))
		require.NoError(t, err)
	}

	assert.Equal(t, 2, c.Remove(UserScope("u1")))
	assert.Equal(t, 2, c.Len())
	_, ok := c.Peek(UserKey("u10", "profile"))
	assert.True(t, ok)
}

func TestCallerCancellationStillCommits(t *testing.T) {
	c := newTestCache()
	key := NewKey("volunteers")
	gate := newGatedFetch("late", nil)

	updated, unsubscribe := waitEvent(c, key, EventUpdated)
	defer unsubscribe()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := c.Get(ctx, key, gate.fetch)
		errCh <- err
	}()
	<-gate.started
	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)

	close(gate.release)
	ev := receive(t, updated)
	assert.Equal(t, "late", ev.Entry.Data)
}

func TestStaleTimeTriggersBackgroundRefresh(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	c := New(Options{StaleTime: time.Minute, Now: clock}, logger.Nop())
	key := NewKey("sponsors", "3")

	_, err := c.Get(context.Background(), key, staticFetch("first"))
	require.NoError(t, err)

	mu.Lock()
	now = now.Add(2 * time.Minute)
	mu.Unlock()

	updated, unsubscribe := waitEvent(c, key, EventUpdated)
	defer unsubscribe()

	value, err := c.Get(context.Background(), key, staticFetch("second"))
	require.NoError(t, err)
	assert.Equal(t, "first", value)
	receive(t, updated)

	entry, _ := c.Peek(key)
	assert.Equal(t, "second", entry.Data)
}

func TestSubscribeAllAndUnsubscribe(t *testing.T) {
	c := newTestCache()
	var kinds []EventKind
	unsubscribe := c.SubscribeAll(func(ev Event) {
		kinds = append(kinds, ev.Kind)
	})

	c.Set(NewKey("organizations"), "orgs")
	c.Invalidate(NewKey("organizations"))
	c.Remove(NewKey("organizations"))
	unsubscribe()
	c.Set(NewKey("organizations"), "orgs")

	assert.Equal(t, []EventKind{EventUpdated, EventInvalidated, EventRemoved}, kinds)
}

func TestFetchTyped(t *testing.T) {
	c := newTestCache()

	ids, err := Fetch(context.Background(), c, NewKey("ids"), func(context.Context) ([]int, error) {
		return []int{1, 2}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, ids)

	_, err = Fetch(context.Background(), c, NewKey("ids"), func(context.Context) (string, error) {
		return "", nil
	})
	assert.Error(t, err)
}
