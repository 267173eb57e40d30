// Copyright (c) 2025 Kenes
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierr "kenes/cli/internal/errors"
	"kenes/cli/internal/events"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// counter is a fetcher that returns "v<n>" for its n-th call. When gate is
// set, the first call blocks until the gate is closed.
type counter struct {
	calls   atomic.Int32
	gate    chan struct{}
	started chan struct{}
	err     error
	ctxErr  atomic.Value
}

func (f *counter) fetch(ctx context.Context) (string, error) {
	n := f.calls.Add(1)
	if n == 1 && f.gate != nil {
		if f.started != nil {
			close(f.started)
		}
		<-f.gate
		f.ctxErr.Store(fmt.Sprint(ctx.Err()))
	}
	if f.err != nil {
		return "", f.err
	}
	return fmt.Sprintf("v%d", n), nil
}

func newTestCache(t *testing.T) (*Client, *fakeClock, *events.Recorder) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	bus := events.NewBus()
	rec := &events.Recorder{}
	bus.Subscribe(rec.Handle)
	return New(Options{StaleTime: 30 * time.Second, Bus: bus, Clock: clock.Now}), clock, rec
}

var appsKey = NewKey("applications", map[string]string{"status": "new"})

func TestQuery_FreshEntryIsIdempotent(t *testing.T) {
	c, clock, _ := newTestCache(t)
	f := &counter{}

	first, err := Query(context.Background(), c, appsKey, f.fetch)
	require.NoError(t, err)
	clock.Advance(10 * time.Second)
	second, err := Query(context.Background(), c, appsKey, f.fetch)
	require.NoError(t, err)

	assert.Equal(t, int32(1), f.calls.Load())
	assert.Equal(t, "v1", first.Data)
	assert.Equal(t, first, second)
	assert.False(t, second.Stale)
	assert.Equal(t, Fresh, c.State(appsKey))
}

func TestQuery_EqualParamsShareEntry(t *testing.T) {
	c, _, _ := newTestCache(t)
	f := &counter{}

	_, err := Query(context.Background(), c, NewKey("applications", map[string]any{"status": "new", "page": 1}), f.fetch)
	require.NoError(t, err)
	_, err = Query(context.Background(), c, NewKey("applications", map[string]any{"page": 1, "status": "new"}), f.fetch)
	require.NoError(t, err)
	_, err = Query(context.Background(), c, NewKey("applications", map[string]any{"page": 2, "status": "new"}), f.fetch)
	require.NoError(t, err)

	assert.Equal(t, int32(2), f.calls.Load())
}

func TestQuery_DeduplicatesConcurrentReads(t *testing.T) {
	c, _, _ := newTestCache(t)
	f := &counter{gate: make(chan struct{}), started: make(chan struct{})}

	const readers = 8
	var wg sync.WaitGroup
	results := make([]string, readers)
	for i := 0; i < readers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := Query(context.Background(), c, appsKey, f.fetch)
			assert.NoError(t, err)
			results[i] = res.Data
		}()
	}

	<-f.started
	assert.Equal(t, Fetching, c.State(appsKey))
	close(f.gate)
	wg.Wait()

	assert.Equal(t, int32(1), f.calls.Load())
	for _, r := range results {
		assert.Equal(t, "v1", r)
	}
}

func TestQuery_InvalidationForcesFetch(t *testing.T) {
	c, _, _ := newTestCache(t)
	f := &counter{}

	_, err := Query(context.Background(), c, appsKey, f.fetch)
	require.NoError(t, err)

	assert.Equal(t, 1, c.Invalidate(All("applications")))
	assert.Equal(t, Stale, c.State(appsKey))

	res, err := Query(context.Background(), c, appsKey, f.fetch)
	require.NoError(t, err)
	assert.Equal(t, int32(2), f.calls.Load())
	assert.Equal(t, "v2", res.Data)
	assert.False(t, res.Stale)
}

func TestQuery_AgedEntryRevalidatesInBackground(t *testing.T) {
	c, clock, _ := newTestCache(t)
	f := &counter{}

	_, err := Query(context.Background(), c, appsKey, f.fetch)
	require.NoError(t, err)
	clock.Advance(31 * time.Second)

	res, err := Query(context.Background(), c, appsKey, f.fetch)
	require.NoError(t, err)
	assert.Equal(t, "v1", res.Data)
	assert.True(t, res.Stale)

	assert.Eventually(t, func() bool {
		got, ok := Peek[string](c, appsKey)
		return ok && got.Data == "v2" && !got.Stale
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(2), f.calls.Load())
}

func TestQuery_PerReadStaleTime(t *testing.T) {
	c, clock, _ := newTestCache(t)
	f := &counter{}

	_, err := Query(context.Background(), c, appsKey, f.fetch, StaleTime(5*time.Minute))
	require.NoError(t, err)
	clock.Advance(time.Minute)

	res, err := Query(context.Background(), c, appsKey, f.fetch, StaleTime(5*time.Minute))
	require.NoError(t, err)
	assert.False(t, res.Stale)
	assert.Equal(t, int32(1), f.calls.Load())
}

func TestQuery_ReaderWindowDoesNotChangeStoredEntry(t *testing.T) {
	c, clock, _ := newTestCache(t)
	f := &counter{}

	_, err := Query(context.Background(), c, appsKey, f.fetch, StaleTime(time.Hour))
	require.NoError(t, err)
	clock.Advance(time.Minute)

	// A reader with a shorter window still gets a fresh hit.
	res, err := Query(context.Background(), c, appsKey, f.fetch, StaleTime(2*time.Minute))
	require.NoError(t, err)
	assert.False(t, res.Stale)

	clock.Advance(2 * time.Minute)
	assert.Equal(t, Fresh, c.State(appsKey))
	peeked, ok := Peek[string](c, appsKey)
	require.True(t, ok)
	assert.False(t, peeked.Stale)
	assert.Equal(t, int32(1), f.calls.Load())
}

func TestInvalidate_StoresNewEntry(t *testing.T) {
	c, _, _ := newTestCache(t)
	_, err := Query(context.Background(), c, appsKey, (&counter{}).fetch)
	require.NoError(t, err)

	c.mu.Lock()
	before := c.entryLocked(appsKey.String())
	c.mu.Unlock()
	require.NotNil(t, before)

	assert.Equal(t, 1, c.Invalidate(All("applications")))

	c.mu.Lock()
	after := c.entryLocked(appsKey.String())
	c.mu.Unlock()
	assert.False(t, before.invalidated)
	assert.True(t, after.invalidated)
	assert.Equal(t, before.data, after.data)
	assert.Equal(t, Stale, c.State(appsKey))
}

func TestQuery_ForceRefetches(t *testing.T) {
	c, _, _ := newTestCache(t)
	f := &counter{}

	_, err := Query(context.Background(), c, appsKey, f.fetch)
	require.NoError(t, err)
	res, err := Query(context.Background(), c, appsKey, f.fetch, Force())
	require.NoError(t, err)

	assert.Equal(t, "v2", res.Data)
}

func TestQuery_FailureKeepsPriorDataStale(t *testing.T) {
	c, _, _ := newTestCache(t)
	ok := &counter{}
	_, err := Query(context.Background(), c, appsKey, ok.fetch)
	require.NoError(t, err)
	c.Invalidate(All("applications"))

	boom := apierr.New(apierr.Server, "boom")
	failing := &counter{err: boom}
	res, err := Query(context.Background(), c, appsKey, failing.fetch)

	require.ErrorIs(t, err, boom)
	assert.True(t, res.HasData)
	assert.True(t, res.Stale)
	assert.Equal(t, "v1", res.Data)
	assert.Equal(t, Stale, c.State(appsKey))
}

func TestQuery_FailureWithoutPriorData(t *testing.T) {
	c, _, _ := newTestCache(t)
	failing := &counter{err: apierr.New(apierr.Network, "refused")}

	res, err := Query(context.Background(), c, appsKey, failing.fetch)

	assert.True(t, apierr.Is(err, apierr.Network))
	assert.False(t, res.HasData)
	assert.Empty(t, res.Data)
	assert.Equal(t, Empty, c.State(appsKey))
}

func TestQuery_FailureIsIsolatedPerKey(t *testing.T) {
	c, _, _ := newTestCache(t)
	statsKey := NewKey("applicationStats", nil)
	_, err := Query(context.Background(), c, statsKey, (&counter{}).fetch)
	require.NoError(t, err)

	_, err = Query(context.Background(), c, appsKey, (&counter{err: errors.New("down")}).fetch)
	require.Error(t, err)

	assert.Equal(t, Fresh, c.State(statsKey))
}

func TestQuery_CancelledReaderDoesNotCancelFetch(t *testing.T) {
	c, _, _ := newTestCache(t)
	f := &counter{gate: make(chan struct{}), started: make(chan struct{})}

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := Query(ctx, c, appsKey, f.fetch)
		errc <- err
	}()

	<-f.started
	cancel()
	assert.ErrorIs(t, <-errc, context.Canceled)

	close(f.gate)
	assert.Eventually(t, func() bool {
		res, ok := Peek[string](c, appsKey)
		return ok && res.Data == "v1"
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, "<nil>", f.ctxErr.Load())
}

func TestQuery_ReadAfterInvalidationNeverSeesOlderFetch(t *testing.T) {
	c, _, _ := newTestCache(t)
	f := &counter{gate: make(chan struct{}), started: make(chan struct{})}

	before := make(chan Result[string], 1)
	go func() {
		res, err := Query(context.Background(), c, appsKey, f.fetch)
		assert.NoError(t, err)
		before <- res
	}()
	<-f.started

	// The key is only in flight; invalidation must still reach it.
	assert.Equal(t, 1, c.Invalidate(Match("applications", map[string]string{"status": "new"})))

	after := make(chan Result[string], 1)
	go func() {
		res, err := Query(context.Background(), c, appsKey, f.fetch)
		assert.NoError(t, err)
		after <- res
	}()
	close(f.gate)

	assert.Equal(t, "v1", (<-before).Data)
	assert.Equal(t, "v2", (<-after).Data)
	assert.Equal(t, int32(2), f.calls.Load())
}

func TestClear_DiscardsInFlightResults(t *testing.T) {
	c, _, _ := newTestCache(t)
	f := &counter{gate: make(chan struct{}), started: make(chan struct{})}

	done := make(chan Result[string], 1)
	go func() {
		res, _ := Query(context.Background(), c, appsKey, f.fetch)
		done <- res
	}()
	<-f.started

	c.Clear()
	close(f.gate)

	assert.Equal(t, "v1", (<-done).Data)
	_, ok := Peek[string](c, appsKey)
	assert.False(t, ok)
	assert.Equal(t, Empty, c.State(appsKey))
}

func TestClear_DropsEntries(t *testing.T) {
	c, _, _ := newTestCache(t)
	f := &counter{}
	_, err := Query(context.Background(), c, appsKey, f.fetch)
	require.NoError(t, err)

	c.Clear()

	assert.Equal(t, Empty, c.State(appsKey))
	_, err = Query(context.Background(), c, appsKey, f.fetch)
	require.NoError(t, err)
	assert.Equal(t, int32(2), f.calls.Load())
}

func TestSetData_SeedsFreshEntry(t *testing.T) {
	c, _, _ := newTestCache(t)
	key := NewKey("currentUser", nil)
	SetData(c, key, "aigerim")

	res, err := Query(context.Background(), c, key, func(context.Context) (string, error) {
		t.Fatal("fetch must not run for a seeded key")
		return "", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "aigerim", res.Data)
}

func TestPeek_WrongTypeIsMiss(t *testing.T) {
	c, _, _ := newTestCache(t)
	SetData(c, appsKey, 42)

	_, ok := Peek[string](c, appsKey)
	assert.False(t, ok)
}

func TestMutate_SuccessInvalidatesAndNotifiesOnce(t *testing.T) {
	c, _, rec := newTestCache(t)
	statsKey := NewKey("applicationStats", nil)
	profileKey := NewKey("profile", nil)
	for _, k := range []Key{appsKey, statsKey, profileKey} {
		_, err := Query(context.Background(), c, k, (&counter{}).fetch)
		require.NoError(t, err)
	}

	var seeded int
	out, err := Mutate(context.Background(), c, Mutation[int]{
		Name:        "create_application",
		Success:     "Application created",
		Invalidates: Invalidates[int](All("applications"), All("applicationStats")),
		OnSuccess:   func(v int) { seeded = v },
	}, func(context.Context) (int, error) { return 7, nil })

	require.NoError(t, err)
	assert.Equal(t, 7, out)
	assert.Equal(t, 7, seeded)
	assert.Equal(t, Stale, c.State(appsKey))
	assert.Equal(t, Stale, c.State(statsKey))
	assert.Equal(t, Fresh, c.State(profileKey))

	evs := rec.Events()
	require.Len(t, evs, 1)
	assert.Equal(t, events.Success, evs[0].Type)
	assert.Equal(t, "create_application", evs[0].Operation)
	assert.Equal(t, "Application created", evs[0].Message)
}

func TestMutate_FailureLeavesCacheUntouched(t *testing.T) {
	c, _, rec := newTestCache(t)
	_, err := Query(context.Background(), c, appsKey, (&counter{}).fetch)
	require.NoError(t, err)
	before, _ := Peek[string](c, appsKey)

	invalid := &apierr.E{Kind: apierr.Validation, Message: "subject: required", Status: 400}
	_, err = Mutate(context.Background(), c, Mutation[int]{
		Name:        "create_application",
		Failure:     "Could not create application",
		Invalidates: Invalidates[int](All("applications")),
		OnSuccess:   func(int) { t.Fatal("OnSuccess ran after failure") },
	}, func(context.Context) (int, error) { return 0, invalid })

	require.ErrorIs(t, err, invalid)
	after, _ := Peek[string](c, appsKey)
	assert.Equal(t, before, after)
	assert.Equal(t, Fresh, c.State(appsKey))

	evs := rec.Events()
	require.Len(t, evs, 1)
	assert.Equal(t, events.Failure, evs[0].Type)
	assert.Equal(t, "Could not create application: subject: required", evs[0].Message)
	assert.Equal(t, invalid, evs[0].Err)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "empty", Empty.String())
	assert.Equal(t, "fetching", Fetching.String())
	assert.Equal(t, "fresh", Fresh.String())
	assert.Equal(t, "stale", Stale.String())
}
