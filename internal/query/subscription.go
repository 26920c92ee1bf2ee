package query

import (
	"context"
	"sync"
	"time"

	"github.com/oakmart/storefront/internal/broadcast"
	"github.com/oakmart/storefront/internal/cache"
)

// Result is the tuple a consumer renders from: the last-known data, whether
// a first fetch is still in flight, and the most recent fetch error. Data
// and Err can both be set; stale data stays visible alongside the error.
type Result struct {
	Data    any
	Loading bool
	Err     error
}

// KeyFunc computes the cache key for a subscription. Returning the empty
// string gates the subscription off: nothing is fetched and the cache is
// not consulted. Session-dependent keys use this to stop fetching the
// moment the user logs out.
type KeyFunc func() string

// StaticKey adapts a fixed key to a KeyFunc.
func StaticKey(key string) KeyFunc {
	return func() string { return key }
}

// Subscription is a live view over one (possibly re-evaluated) cache key.
type Subscription struct {
	c       *Coordinator
	fetcher Fetcher
	policy  Policy
	keyFn   KeyFunc

	ctx  context.Context
	stop context.CancelFunc

	mu       sync.Mutex
	key      string
	cacheSub *cache.Subscription
	inflight int
	current  Result

	updates chan Result
	cancels []func()
}

// Subscribe starts a live query. The key is computed immediately and
// re-evaluated on every session change; revalidation triggers follow the
// policy. Close must be called when the consumer goes away.
func (c *Coordinator) Subscribe(ctx context.Context, keyFn KeyFunc, fetcher Fetcher, policy Policy) *Subscription {
	ctx, stop := context.WithCancel(ctx)

	s := &Subscription{
		c:       c,
		fetcher: fetcher,
		policy:  policy,
		keyFn:   keyFn,
		ctx:     ctx,
		stop:    stop,
		updates: make(chan Result, 1),
	}

	s.cancels = append(s.cancels, c.bus.Subscribe(broadcast.SessionChanged, s.reattach))
	if policy.RevalidateOnFocus {
		s.cancels = append(s.cancels, c.bus.Subscribe(broadcast.Focused, s.Revalidate))
	}
	if policy.RevalidateOnReconnect {
		s.cancels = append(s.cancels, c.bus.Subscribe(broadcast.Reconnected, s.Revalidate))
	}

	s.mu.Lock()
	s.attachLocked(keyFn())
	s.mu.Unlock()

	if policy.Interval > 0 {
		go s.pollLoop()
	}

	return s
}

// Current returns the latest result snapshot.
func (s *Subscription) Current() Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Updates delivers result changes, latest-wins: a slow consumer only ever
// misses intermediate states, never the newest one.
func (s *Subscription) Updates() <-chan Result {
	return s.updates
}

// Revalidate requests a refetch of the current key, subject to the dedupe
// window. This backs the user-facing retry affordance as well as the focus
// and reconnect triggers.
func (s *Subscription) Revalidate() {
	s.mu.Lock()
	key := s.key
	s.mu.Unlock()

	if key == "" {
		return
	}

	s.refetch(key)
}

// Close cancels the subscription. An in-flight fetch still completes and
// writes through to the cache; it is simply no longer observed here.
func (s *Subscription) Close() {
	s.stop()

	for _, cancel := range s.cancels {
		cancel()
	}

	s.mu.Lock()
	if s.cacheSub != nil {
		s.cacheSub.Cancel()
		s.cacheSub = nil
	}
	s.mu.Unlock()
}

// attachLocked binds the subscription to key and triggers the initial
// fetch when the cached entry cannot be served as-is.
func (s *Subscription) attachLocked(key string) {
	s.key = key

	if key == "" {
		// gated off: no data, no fetching
		s.current = Result{}
		s.pushLocked()
		return
	}

	s.cacheSub = s.c.cache.Subscribe(key, s.onEntry)

	entry, ok := s.c.cache.Get(key)
	if ok {
		s.current = Result{Data: entry.Data, Err: entry.Err}
	} else {
		s.current = Result{Loading: true}
	}
	s.pushLocked()

	if !entry.FreshWithin(s.policy.DedupeWindow) {
		go s.refetch(key)
	}
}

// reattach re-evaluates the key after a session change, switching between
// the live key and the gated-off sentinel as needed.
func (s *Subscription) reattach() {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.keyFn()
	if next == s.key {
		return
	}

	if s.cacheSub != nil {
		s.cacheSub.Cancel()
		s.cacheSub = nil
	}

	s.attachLocked(next)
}

// onEntry receives cache fanout for the bound key.
func (s *Subscription) onEntry(entry cache.Entry) {
	s.mu.Lock()

	if entry.Key != s.key {
		// a late notification for a key this subscription already left
		s.mu.Unlock()
		return
	}

	s.current = Result{
		Data:    entry.Data,
		Err:     entry.Err,
		Loading: s.inflight > 0 && !entry.HasData(),
	}
	s.pushLocked()
	s.mu.Unlock()

	if entry.Stale {
		// an invalidation: reconcile with the backend
		go s.refetch(entry.Key)
	}
}

// refetch runs one coordinated fetch for key, skipping when the entry is
// already fresh within the dedupe window.
func (s *Subscription) refetch(key string) {
	if entry, ok := s.c.cache.Get(key); ok && entry.FreshWithin(s.policy.DedupeWindow) {
		return
	}

	s.mu.Lock()
	if key != s.key {
		s.mu.Unlock()
		return
	}
	s.inflight++
	if !s.current.Loading && s.current.Data == nil {
		s.current.Loading = true
		s.pushLocked()
	}
	s.mu.Unlock()

	_, _ = s.c.fetch(s.ctx, key, s.fetcher, s.policy.RetryCount)

	s.mu.Lock()
	s.inflight--
	if s.current.Loading && s.inflight == 0 {
		s.current.Loading = false
		s.pushLocked()
	}
	s.mu.Unlock()
}

func (s *Subscription) pollLoop() {
	ticker := time.NewTicker(s.policy.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Revalidate()
		case <-s.ctx.Done():
			return
		}
	}
}

// pushLocked publishes the current result, replacing any undelivered one.
func (s *Subscription) pushLocked() {
	for {
		select {
		case s.updates <- s.current:
			return
		default:
			select {
			case <-s.updates:
			default:
			}
		}
	}
}
