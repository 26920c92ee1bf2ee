// Package cache holds the last-known value of every remote resource the
// client renders. Entries are created on first subscription and fan updates
// out to all subscribers of the same key, which is what keeps independent
// consumers (cart badge and cart page, say) consistent. Invalidation marks
// entries stale without clearing them: subscribers keep the previous value
// until a refetch resolves.
package cache

import (
	"sync"
	"time"

	"github.com/maypok86/otter/v2"
	"github.com/rs/zerolog/log"

	"github.com/oakmart/storefront/internal/config"
)

// Entry is an immutable snapshot of a cached resource handed to consumers.
type Entry struct {
	Key         string
	Data        any
	Err         error
	LastFetched time.Time
	Stale       bool
}

// HasData reports whether the entry holds a previously fetched value. An
// entry can hold both data and an error: a failed revalidation never
// clobbers the value it was refreshing.
func (e Entry) HasData() bool {
	return e.Data != nil
}

// FreshWithin reports whether the entry's data was fetched inside window and
// has not been invalidated since.
func (e Entry) FreshWithin(window time.Duration) bool {
	if e.Stale || e.LastFetched.IsZero() {
		return false
	}
	return time.Since(e.LastFetched) < window
}

// entry is the live state for a key with at least one subscriber.
type entry struct {
	data        any
	err         error
	lastFetched time.Time
	stale       bool
	subs        map[int]func(Entry)
}

// retained is the value kept for a key after its last subscriber leaves,
// until the retention window elapses.
type retained struct {
	data        any
	lastFetched time.Time
	stale       bool
}

// Store is the process-wide resource cache. It is constructed once at the
// application root and injected into the coordinators; views only ever read
// from it through subscriptions.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
	nextID  int

	// retained garbage-collects values for unsubscribed keys: bounded in
	// size and expired after the retention window.
	retained *otter.Cache[string, retained]
}

func New(cfg config.CacheConfig) *Store {
	retainedCache := otter.Must(&otter.Options[string, retained]{
		MaximumSize:      cfg.MaxEntries,
		ExpiryCalculator: otter.ExpiryCreating[string, retained](cfg.Retention()),
	})

	return &Store{
		entries:  make(map[string]*entry),
		retained: retainedCache,
	}
}

// Subscription identifies one subscriber of one key.
type Subscription struct {
	store *Store
	key   string
	id    int
}

// Key returns the cache key this subscription is attached to.
func (s *Subscription) Key() string {
	return s.key
}

// Subscribe attaches fn to key, creating the entry lazily. A value retained
// from an earlier subscriber generation seeds the new entry, so a
// resubscribe within the retention window starts with stale-but-present
// data instead of a blank entry. fn is invoked on every subsequent change
// to the key; it runs on the mutating goroutine and must not block.
func (s *Store) Subscribe(key string, fn func(Entry)) *Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		e = &entry{subs: make(map[int]func(Entry))}
		if r, found := s.retained.GetEntry(key); found {
			e.data = r.Value.data
			e.lastFetched = r.Value.lastFetched
			e.stale = r.Value.stale
			s.retained.Invalidate(key)
		}
		s.entries[key] = e
	}

	id := s.nextID
	s.nextID++
	e.subs[id] = fn

	return &Subscription{store: s, key: key, id: id}
}

// Cancel detaches the subscriber. When the last subscriber for a key leaves,
// the entry's value moves to the retention store and the entry is dropped.
func (sub *Subscription) Cancel() {
	s := sub.store
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[sub.key]
	if !ok {
		return
	}

	delete(e.subs, sub.id)
	if len(e.subs) > 0 {
		return
	}

	if e.data != nil {
		s.retained.Set(sub.key, retained{data: e.data, lastFetched: e.lastFetched, stale: e.stale})
	}
	delete(s.entries, sub.key)
}

// Get returns the current snapshot for key.
func (s *Store) Get(key string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok {
		return s.snapshotLocked(key, e), true
	}

	if r, ok := s.retained.GetEntry(key); ok {
		return Entry{
			Key:         key,
			Data:        r.Value.data,
			LastFetched: r.Value.lastFetched,
			Stale:       r.Value.stale,
		}, true
	}

	return Entry{Key: key}, false
}

// SetData records a successful fetch: the value replaces the previous one,
// any error is cleared and the entry becomes fresh. All current subscribers
// are notified before SetData returns. A key with no subscribers writes
// through to the retention store, so a late-arriving fetch result is not
// lost when its consumers have already left.
func (s *Store) SetData(key string, data any) {
	s.mu.Lock()
	e, ok := s.entries[key]
	if !ok {
		s.retained.Set(key, retained{data: data, lastFetched: time.Now()})
		s.mu.Unlock()
		return
	}

	e.data = data
	e.err = nil
	e.lastFetched = time.Now()
	e.stale = false
	snapshot, subs := s.fanoutLocked(key, e)
	s.mu.Unlock()

	notify(snapshot, subs)
}

// SetError records a failed fetch. The last-known data is preserved so
// consumers can keep rendering it alongside an error affordance. The fetch
// timestamp is still advanced: the dedupe window applies to failures too,
// preventing a hammering retry loop.
func (s *Store) SetError(key string, err error) {
	s.mu.Lock()
	e, ok := s.entries[key]
	if !ok {
		// nobody is watching; the retained value, if any, stays as-is
		s.mu.Unlock()
		return
	}

	e.err = err
	e.lastFetched = time.Now()
	e.stale = false
	snapshot, subs := s.fanoutLocked(key, e)
	s.mu.Unlock()

	notify(snapshot, subs)
}

// Update applies an optimistic, locally computed transformation to the
// current value without marking the entry fresh. Subscribers observe the
// optimistic value immediately; reconciliation happens when the caller
// invalidates the key after the server responds.
func (s *Store) Update(key string, apply func(old any) any) {
	s.mu.Lock()
	e, ok := s.entries[key]
	if !ok {
		if r, found := s.retained.GetEntry(key); found {
			next := r.Value
			next.data = apply(next.data)
			s.retained.Set(key, next)
		}
		s.mu.Unlock()
		return
	}

	e.data = apply(e.data)
	snapshot, subs := s.fanoutLocked(key, e)
	s.mu.Unlock()

	notify(snapshot, subs)
}

// Invalidate marks key stale and notifies subscribers so their coordinator
// refetches. The last-known value is never cleared (stale-while-revalidate).
func (s *Store) Invalidate(key string) {
	s.mu.Lock()
	e, ok := s.entries[key]
	if !ok {
		if r, found := s.retained.GetEntry(key); found {
			next := r.Value
			next.stale = true
			s.retained.Set(key, next)
		}
		s.mu.Unlock()
		return
	}

	e.stale = true
	snapshot, subs := s.fanoutLocked(key, e)
	s.mu.Unlock()

	log.Debug().Str("key", key).Msg("cache entry invalidated")
	notify(snapshot, subs)
}

// InvalidateAll invalidates a set of keys, e.g. every key affected by one
// mutation.
func (s *Store) InvalidateAll(keys ...string) {
	for _, key := range keys {
		s.Invalidate(key)
	}
}

func (s *Store) snapshotLocked(key string, e *entry) Entry {
	return Entry{
		Key:         key,
		Data:        e.data,
		Err:         e.err,
		LastFetched: e.lastFetched,
		Stale:       e.stale,
	}
}

// fanoutLocked captures the snapshot and subscriber list under the lock.
// Callbacks are invoked after release so a subscriber may call back into
// the store; every subscriber still observes the new value before the
// mutating call returns.
func (s *Store) fanoutLocked(key string, e *entry) (Entry, []func(Entry)) {
	subs := make([]func(Entry), 0, len(e.subs))
	for _, fn := range e.subs {
		subs = append(subs, fn)
	}
	return s.snapshotLocked(key, e), subs
}

func notify(snapshot Entry, subs []func(Entry)) {
	for _, fn := range subs {
		fn(snapshot)
	}
}
