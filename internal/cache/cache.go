// Copyright (c) 2025 Kenes
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cache keeps the results of read operations keyed by (operation,
// parameters) and keeps them consistent with writes.
//
// Concurrent reads of the same key share a single network call. Writes mark
// the keys they affect as stale so that the next read refetches. Every key has
// a generation: invalidation advances it, and a read never returns data from a
// fetch that started under an older generation than the read itself.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"kenes/cli/internal/events"
)

const (
	// DefaultStaleTime is the staleness window used when none is configured.
	DefaultStaleTime = 30 * time.Second
	// DefaultRetainFor is how long an unused entry is kept before it is collected.
	DefaultRetainFor = 30 * time.Minute
)

// Options configures a Client.
type Options struct {
	// StaleTime is the default staleness window. Negative means always stale.
	StaleTime time.Duration
	// RetainFor is how long an unused entry stays in memory.
	RetainFor time.Duration
	Logger    *zap.Logger
	// Bus receives one notification per completed write.
	Bus *events.Bus
	// Clock overrides time.Now.
	Clock func() time.Time
}

// State is the lifecycle state of a single key.
type State int

const (
	Empty State = iota
	Fetching
	Fresh
	Stale
)

func (s State) String() string {
	switch s {
	case Fetching:
		return "fetching"
	case Fresh:
		return "fresh"
	case Stale:
		return "stale"
	}
	return "empty"
}

// Result is the outcome of a read.
type Result[T any] struct {
	Data T
	// HasData is false when nothing has ever been fetched for the key.
	HasData bool
	// Stale is set when Data is older than the staleness window, was
	// invalidated, or the refresh that should have replaced it failed.
	Stale     bool
	FetchedAt time.Time
}

// entry is never modified once stored; every change stores a new entry.
// window is the staleness window of the read that stored it and is what
// Peek and State judge freshness by.
type entry struct {
	data        any
	fetchedAt   time.Time
	window      time.Duration
	gen         uint64
	invalidated bool
}

func (e *entry) aged(now time.Time) bool { return e.agedFor(now, e.window) }

func (e *entry) agedFor(now time.Time, window time.Duration) bool {
	return window < 0 || now.Sub(e.fetchedAt) >= window
}

// withInvalidated returns a copy of e marked invalidated.
func (e *entry) withInvalidated() *entry {
	cp := *e
	cp.invalidated = true
	return &cp
}

// slot is the registry record of a key. It outlives its entry while a fetch
// is in flight so that pattern invalidation also reaches keys being fetched.
type slot struct {
	key      Key
	gen      uint64
	inflight int
}

// flight is the value shared by every reader of one fetch.
type flight struct {
	data      any
	gen       uint64
	fetchedAt time.Time
}

// Client is the query cache. Use New to create one.
type Client struct {
	staleTime time.Duration
	retainFor time.Duration
	log       *zap.Logger
	bus       *events.Bus
	now       func() time.Time

	group singleflight.Group
	store *gocache.Cache

	// mu guards slots, seq, epoch and every *entry held in store.
	// store.Delete must never be called with mu held: it runs evicted.
	mu    sync.Mutex
	slots map[string]*slot
	// seq is the last generation handed out. Generations never go backwards,
	// even when a slot is dropped and recreated.
	seq   uint64
	epoch uint64
}

// New creates a cache client.
func New(opts Options) *Client {
	c := &Client{
		staleTime: opts.StaleTime,
		retainFor: opts.RetainFor,
		log:       opts.Logger,
		bus:       opts.Bus,
		now:       opts.Clock,
		slots:     make(map[string]*slot),
	}
	if c.staleTime == 0 {
		c.staleTime = DefaultStaleTime
	}
	if c.retainFor <= 0 {
		c.retainFor = DefaultRetainFor
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	c.log = c.log.Named("cache")
	if c.now == nil {
		c.now = time.Now
	}
	c.store = gocache.New(c.retainFor, cleanupInterval(c.retainFor))
	c.store.OnEvicted(c.evicted)
	return c
}

func cleanupInterval(retain time.Duration) time.Duration {
	if i := retain / 2; i > time.Second {
		return i
	}
	return time.Second
}

// ReadOption adjusts a single read.
type ReadOption func(*readOptions)

type readOptions struct {
	staleTime time.Duration
	force     bool
}

// StaleTime overrides the staleness window for one read.
func StaleTime(d time.Duration) ReadOption {
	return func(o *readOptions) { o.staleTime = d }
}

// Force ignores a fresh entry and waits for a new fetch.
func Force() ReadOption {
	return func(o *readOptions) { o.force = true }
}

// Fetcher performs the network read for a key.
type Fetcher[T any] func(ctx context.Context) (T, error)

// Query returns the cached value for key or fetches it.
//
// A fresh entry is returned without a network call. An entry that only aged
// past the window is returned with Stale set while a refresh runs in the
// background. An invalidated or missing entry is fetched before returning;
// concurrent readers of the key share that fetch. On failure the previous
// data, if any, is returned marked stale together with the error.
//
// Cancelling ctx abandons the wait only. The fetch keeps running and still
// populates the cache.
func Query[T any](ctx context.Context, c *Client, key Key, fetch Fetcher[T], opts ...ReadOption) (Result[T], error) {
	ro := readOptions{staleTime: c.staleTime}
	for _, o := range opts {
		o(&ro)
	}
	id := key.String()
	run := func() (any, error) {
		v, err := fetch(context.WithoutCancel(ctx))
		return v, err
	}

	c.mu.Lock()
	s := c.slotLocked(key, id)
	if e := c.entryLocked(id); e != nil {
		if !e.invalidated && !ro.force {
			res, err := resultOf[T](id, e, c.now(), ro.staleTime)
			if err == nil {
				c.store.Set(id, e, c.retainFor)
			}
			c.mu.Unlock()
			if err == nil && res.Stale {
				c.log.Debug("stale hit, refreshing in background", zap.String("key", id))
				c.start(key, id, ro, run)
			}
			return res, err
		}
	}
	gen := s.gen
	c.mu.Unlock()

	for {
		ch := c.start(key, id, ro, run)
		var r singleflight.Result
		select {
		case <-ctx.Done():
			return Result[T]{}, ctx.Err()
		case r = <-ch:
		}

		f := r.Val.(flight)
		if f.gen < gen {
			// Joined a fetch that began before an invalidation this read must observe.
			c.log.Debug("superseded fetch, refetching", zap.String("key", id),
				zap.Uint64("fetch_gen", f.gen), zap.Uint64("read_gen", gen))
			continue
		}
		if r.Err != nil {
			return failedRead[T](c, id, r.Err)
		}
		v, ok := f.data.(T)
		if !ok {
			return Result[T]{}, fmt.Errorf("cache: key %s holds %T", id, f.data)
		}
		return Result[T]{Data: v, HasData: true, FetchedAt: f.fetchedAt}, nil
	}
}

// start joins the in-flight fetch for id or begins a new one.
func (c *Client) start(key Key, id string, ro readOptions, run func() (any, error)) <-chan singleflight.Result {
	return c.group.DoChan(id, func() (any, error) {
		c.mu.Lock()
		s := c.slotLocked(key, id)
		gen, epoch := s.gen, c.epoch
		// A fetch that completed between the caller's check and now already
		// produced what this one would.
		if e := c.entryLocked(id); e != nil && !ro.force && !e.invalidated && e.gen >= gen && !e.agedFor(c.now(), ro.staleTime) {
			c.mu.Unlock()
			return flight{data: e.data, gen: gen, fetchedAt: e.fetchedAt}, nil
		}
		s.inflight++
		c.mu.Unlock()

		c.log.Debug("fetching", zap.String("key", id), zap.Uint64("gen", gen))
		v, err := run()
		now := c.now()

		c.mu.Lock()
		defer c.mu.Unlock()
		s.inflight--
		f := flight{data: v, gen: gen, fetchedAt: now}

		if epoch != c.epoch {
			c.log.Debug("cache cleared during fetch, result not stored", zap.String("key", id))
			return f, err
		}
		cur := c.entryLocked(id)
		if err != nil {
			c.log.Debug("fetch failed", zap.String("key", id), zap.Error(err))
			if cur != nil && !cur.invalidated {
				c.store.Set(id, cur.withInvalidated(), c.retainFor)
			}
			return f, err
		}
		if cur != nil && cur.gen > gen {
			// SetData wrote a newer value while this fetch was running.
			return f, nil
		}
		c.store.Set(id, &entry{
			data:        v,
			fetchedAt:   now,
			window:      ro.staleTime,
			gen:         gen,
			invalidated: gen != s.gen,
		}, c.retainFor)
		return f, nil
	})
}

func failedRead[T any](c *Client, id string, err error) (Result[T], error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entryLocked(id)
	if e == nil {
		return Result[T]{}, err
	}
	v, ok := e.data.(T)
	if !ok {
		return Result[T]{}, err
	}
	return Result[T]{Data: v, HasData: true, Stale: true, FetchedAt: e.fetchedAt}, err
}

func resultOf[T any](id string, e *entry, now time.Time, window time.Duration) (Result[T], error) {
	v, ok := e.data.(T)
	if !ok {
		return Result[T]{}, fmt.Errorf("cache: key %s holds %T", id, e.data)
	}
	return Result[T]{
		Data:      v,
		HasData:   true,
		Stale:     e.invalidated || e.agedFor(now, window),
		FetchedAt: e.fetchedAt,
	}, nil
}

func (c *Client) slotLocked(key Key, id string) *slot {
	s, ok := c.slots[id]
	if !ok {
		s = &slot{key: key, gen: c.seq}
		c.slots[id] = s
	}
	return s
}

func (c *Client) entryLocked(id string) *entry {
	v, ok := c.store.Get(id)
	if !ok {
		return nil
	}
	return v.(*entry)
}

// evicted drops the registry record of a collected entry unless the key is
// being fetched or was stored again meanwhile.
func (c *Client) evicted(id string, _ any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.slots[id]
	if !ok || s.inflight > 0 {
		return
	}
	if _, live := c.store.Get(id); live {
		return
	}
	delete(c.slots, id)
	c.log.Debug("entry collected", zap.String("key", id))
}

// SetData stores v as a fresh entry for key. A fetch for key that is already
// running will not overwrite it.
func SetData[T any](c *Client, key Key, v T) {
	id := key.String()
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.slotLocked(key, id)
	c.seq++
	s.gen = c.seq
	window := c.staleTime
	if e := c.entryLocked(id); e != nil {
		window = e.window
	}
	c.store.Set(id, &entry{data: v, fetchedAt: c.now(), window: window, gen: s.gen}, c.retainFor)
}

// Peek returns the cached value for key without fetching.
func Peek[T any](c *Client, key Key) (Result[T], bool) {
	id := key.String()
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entryLocked(id)
	if e == nil {
		return Result[T]{}, false
	}
	res, err := resultOf[T](id, e, c.now(), e.window)
	if err != nil {
		return Result[T]{}, false
	}
	return res, true
}

// Invalidate marks every key matched by any of patterns as stale, including
// keys whose first fetch is still running. It returns the number of keys hit.
func (c *Client) Invalidate(patterns ...Pattern) int {
	if len(patterns) == 0 {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for id, s := range c.slots {
		for _, p := range patterns {
			if !p.Matches(s.key) {
				continue
			}
			c.seq++
			s.gen = c.seq
			if e := c.entryLocked(id); e != nil && !e.invalidated {
				c.store.Set(id, e.withInvalidated(), c.retainFor)
			}
			n++
			break
		}
	}
	c.log.Debug("invalidated", zap.Stringers("patterns", patterns), zap.Int("keys", n))
	return n
}

// State reports the lifecycle state of key.
func (c *Client) State(key Key) State {
	id := key.String()
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.slots[id]; ok && s.inflight > 0 {
		return Fetching
	}
	e := c.entryLocked(id)
	switch {
	case e == nil:
		return Empty
	case e.invalidated || e.aged(c.now()):
		return Stale
	}
	return Fresh
}

// Clear drops every entry. Fetches already running when Clear is called
// still deliver to their waiting readers but their results are not stored.
func (c *Client) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	c.store.Flush()
	for id, s := range c.slots {
		if s.inflight == 0 {
			delete(c.slots, id)
			continue
		}
		c.seq++
		s.gen = c.seq
	}
	c.log.Debug("cleared")
}
