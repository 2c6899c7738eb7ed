package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"relief-portal-go/pkg/logger"

	"golang.org/x/sync/singleflight"
)

var errFlightLost = errors.New("cache: in-flight fetch no longer registered")

// FetchFunc loads the value for a key. It runs detached from the caller's
// cancellation so a result is still committed when every waiter gives up.
type FetchFunc func(ctx context.Context) (any, error)

type Options struct {
	// StaleTime marks fulfilled entries stale after this age. Zero keeps
	// them fresh until invalidated.
	StaleTime time.Duration
	Now       func() time.Time
}

// Cache is the process-wide query cache. Every key has at most one fetch in
// flight; callers asking for a pending key attach to it.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	group   singleflight.Group
	gen     uint64

	subs    map[string]map[int]func(Event)
	all     map[int]func(Event)
	nextSub int

	staleTime time.Duration
	now       func() time.Time
	log       logger.Logger
}

func New(opts Options, log logger.Logger) *Cache {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Cache{
		entries:   make(map[string]*entry),
		subs:      make(map[string]map[int]func(Event)),
		all:       make(map[int]func(Event)),
		staleTime: opts.StaleTime,
		now:       now,
		log:       log,
	}
}

// Get returns the value for key, calling fetch only when nothing usable is
// cached. A stale value is returned immediately while a refresh runs in the
// background; the caller blocks only when the key has never produced data.
func (c *Cache) Get(ctx context.Context, key Key, fetch FetchFunc) (any, error) {
	ks := key.String()

	c.mu.Lock()
	e, ok := c.entries[ks]
	if !ok {
		e = &entry{key: key.clone(), gen: c.nextGenLocked()}
		c.entries[ks] = e
	}

	if e.fresh(c.now(), c.staleTime) {
		data := e.data
		c.mu.Unlock()
		return data, nil
	}

	if e.hasData {
		if !e.pending {
			c.startLocked(ctx, ks, e, fetch)
		}
		data := e.data
		c.mu.Unlock()
		return data, nil
	}

	var ch <-chan singleflight.Result
	if e.pending {
		ch = c.group.DoChan(e.flight, func() (any, error) {
			return nil, errFlightLost
		})
	} else {
		ch = c.startLocked(ctx, ks, e, fetch)
	}
	c.mu.Unlock()

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// startLocked launches a fetch for e. Called with c.mu held; the flight
// commits through complete, which needs c.mu, so a pending entry's flight is
// always still registered in the group while the lock is held.
func (c *Cache) startLocked(ctx context.Context, ks string, e *entry, fetch FetchFunc) <-chan singleflight.Result {
	e.gen = c.nextGenLocked()
	gen := e.gen
	flight := ks + "#" + strconv.FormatUint(gen, 10)
	e.pending = true
	e.flight = flight
	e.fetch = fetch

	fetchCtx := context.WithoutCancel(ctx)
	c.log.Debug("cache: fetch started", "key", ks)

	return c.group.DoChan(flight, func() (any, error) {
		value, err := fetch(fetchCtx)
		c.complete(ks, gen, value, err)
		return value, err
	})
}

func (c *Cache) complete(ks string, gen uint64, value any, err error) {
	c.mu.Lock()
	e, ok := c.entries[ks]
	if !ok || e.gen != gen {
		c.mu.Unlock()
		c.log.Debug("cache: dropped superseded result", "key", ks)
		return
	}

	e.pending = false
	e.flight = ""
	e.invalidated = false
	kind := EventUpdated
	if err != nil {
		kind = EventFailed
		e.err = err
	} else {
		e.data = value
		e.hasData = true
		e.err = nil
		e.fetchedAt = c.now()
	}
	if e.refetch {
		// Invalidated while in flight: the value may predate the change.
		e.refetch = false
		e.invalidated = true
		c.log.Debug("cache: refetching after invalidation", "key", ks)
		c.startLocked(context.Background(), ks, e, e.fetch)
	}
	event := Event{Kind: kind, Entry: e.snapshot()}
	subscribers := c.subscribersLocked(ks)
	c.mu.Unlock()

	if err != nil {
		c.log.Debug("cache: fetch failed", "key", ks, "err", err, "kept_stale", event.Entry.HasData)
	}
	notify(subscribers, event)
}

// Set stores a known-good value for key, superseding any fetch in flight.
func (c *Cache) Set(key Key, value any) {
	c.SetDeferred(key, value).Deliver()
}

// SetDeferred is Set with subscriber delivery left to the caller.
func (c *Cache) SetDeferred(key Key, value any) *Notifications {
	ks := key.String()

	c.mu.Lock()
	e, ok := c.entries[ks]
	if !ok {
		e = &entry{key: key.clone()}
		c.entries[ks] = e
	}
	e.gen = c.nextGenLocked()
	e.pending = false
	e.flight = ""
	e.refetch = false
	e.data = value
	e.hasData = true
	e.err = nil
	e.invalidated = false
	e.fetchedAt = c.now()
	held := &Notifications{items: []delivery{{
		subscribers: c.subscribersLocked(ks),
		event:       Event{Kind: EventUpdated, Entry: e.snapshot()},
	}}}
	c.mu.Unlock()

	return held
}

// Peek returns the current entry for key without triggering a fetch.
func (c *Cache) Peek(key Key) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key.String()]
	if !ok {
		return Entry{}, false
	}
	return e.snapshot(), true
}

// Notifications are cache events held back from subscribers until Deliver
// is called.
type Notifications struct {
	items []delivery
}

type delivery struct {
	subscribers []func(Event)
	event       Event
}

// Deliver runs the held subscribers in order. Safe on a nil receiver.
func (n *Notifications) Deliver() {
	if n == nil {
		return
	}
	for _, d := range n.items {
		notify(d.subscribers, d.event)
	}
	n.items = nil
}

// Invalidate marks every entry under prefix as empty while keeping its data
// readable.
func (c *Cache) Invalidate(prefix Key) int {
	count, pending := c.InvalidateDeferred(prefix)
	pending.Deliver()
	return count
}

// InvalidateDeferred is Invalidate with subscriber delivery left to the
// caller, for callers that hold locks subscribers may need. A fetch in
// flight for a matching entry stays joinable; once it commits a single
// follow-up fetch runs.
func (c *Cache) InvalidateDeferred(prefix Key) (int, *Notifications) {
	c.mu.Lock()
	pending := &Notifications{}
	for ks, e := range c.entries {
		if !e.key.HasPrefix(prefix) {
			continue
		}
		if e.pending {
			e.refetch = true
		} else {
			e.gen = c.nextGenLocked()
		}
		e.invalidated = true
		pending.items = append(pending.items, delivery{
			subscribers: c.subscribersLocked(ks),
			event:       Event{Kind: EventInvalidated, Entry: e.snapshot()},
		})
	}
	c.mu.Unlock()

	c.log.Debug("cache: invalidated", "prefix", prefix.String(), "count", len(pending.items))
	return len(pending.items), pending
}

// Remove evicts every entry under prefix. Results of fetches started before
// the removal are never committed and later gets start fresh fetches.
func (c *Cache) Remove(prefix Key) int {
	count, pending := c.RemoveDeferred(prefix)
	pending.Deliver()
	return count
}

// RemoveDeferred is Remove with subscriber delivery left to the caller.
func (c *Cache) RemoveDeferred(prefix Key) (int, *Notifications) {
	c.mu.Lock()
	pending := &Notifications{}
	for ks, e := range c.entries {
		if !e.key.HasPrefix(prefix) {
			continue
		}
		delete(c.entries, ks)
		snapshot := e.snapshot()
		snapshot.Status = StatusEmpty
		snapshot.Data = nil
		snapshot.HasData = false
		pending.items = append(pending.items, delivery{
			subscribers: c.subscribersLocked(ks),
			event:       Event{Kind: EventRemoved, Entry: snapshot},
		})
	}
	c.mu.Unlock()

	c.log.Debug("cache: removed", "prefix", prefix.String(), "count", len(pending.items))
	return len(pending.items), pending
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Subscribe registers fn for events on key. Subscribers run synchronously on
// the goroutine that changed the entry and must not block.
func (c *Cache) Subscribe(key Key, fn func(Event)) func() {
	ks := key.String()

	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	if c.subs[ks] == nil {
		c.subs[ks] = make(map[int]func(Event))
	}
	c.subs[ks][id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs[ks], id)
			if len(c.subs[ks]) == 0 {
				delete(c.subs, ks)
			}
			c.mu.Unlock()
		})
	}
}

// SubscribeAll registers fn for events on every key.
func (c *Cache) SubscribeAll(fn func(Event)) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.all[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.all, id)
			c.mu.Unlock()
		})
	}
}

func (c *Cache) nextGenLocked() uint64 {
	c.gen++
	return c.gen
}

func (c *Cache) subscribersLocked(ks string) []func(Event) {
	result := make([]func(Event), 0, len(c.subs[ks])+len(c.all))
	for _, fn := range c.subs[ks] {
		result = append(result, fn)
	}
	for _, fn := range c.all {
		result = append(result, fn)
	}
	return result
}

func notify(subscribers []func(Event), event Event) {
	for _, fn := range subscribers {
		fn(event)
	}
}

// Fetch is the typed form of Get.
func Fetch[T any](ctx context.Context, c *Cache, key Key, fetch func(context.Context) (T, error)) (T, error) {
	var zero T

	value, err := c.Get(ctx, key, func(ctx context.Context) (any, error) {
		typed, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		return typed, nil
	})
	if err != nil {
		return zero, err
	}

	typed, ok := value.(T)
	if !ok {
		return zero, fmt.Errorf("cache: key %s holds %T", key, value)
	}
	return typed, nil
}
