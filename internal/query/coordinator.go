// Package query coordinates reads: given a cache key and a fetch function it
// deduplicates concurrent requests, applies the revalidation policy and fans
// results out to every subscriber of the key through the cache store.
package query

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/oakmart/storefront/internal/broadcast"
	"github.com/oakmart/storefront/internal/cache"
	"github.com/oakmart/storefront/internal/config"
)

// Fetcher loads the remote value for a key.
type Fetcher func(ctx context.Context) (any, error)

// Policy is the per-key revalidation configuration. It is fixed for the
// lifetime of a subscription; changing it means resubscribing.
type Policy struct {
	// Interval triggers a periodic revalidation; zero disables it.
	Interval time.Duration

	// RevalidateOnFocus refetches when the application regains focus.
	RevalidateOnFocus bool

	// RevalidateOnReconnect refetches when connectivity returns.
	RevalidateOnReconnect bool

	// DedupeWindow: any trigger arriving while the entry was fetched
	// inside this window is served from cache instead.
	DedupeWindow time.Duration

	// RetryCount is the number of automatic retries after a failed fetch.
	RetryCount int
}

// Coordinator owns request deduplication for the whole process.
type Coordinator struct {
	cache *cache.Store
	bus   *broadcast.Bus
	group singleflight.Group

	dedupeWindow time.Duration
	retryCount   int
	retryDelay   time.Duration
}

// Option configures optional coordinator behaviour.
type Option func(*Coordinator)

// WithRetryDelay overrides the pause between automatic retries.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Coordinator) {
		c.retryDelay = d
	}
}

func NewCoordinator(store *cache.Store, bus *broadcast.Bus, cfg config.QueryConfig, opts ...Option) *Coordinator {
	c := &Coordinator{
		cache:        store,
		bus:          bus,
		dedupeWindow: cfg.DedupeWindow(),
		retryCount:   cfg.ErrorRetryCount,
		retryDelay:   250 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DefaultPolicy mirrors the application-wide query defaults: revalidate on
// reconnect but not focus, no interval.
func (c *Coordinator) DefaultPolicy() Policy {
	return Policy{
		RevalidateOnReconnect: true,
		DedupeWindow:          c.dedupeWindow,
		RetryCount:            c.retryCount,
	}
}

// Fetch resolves key once: from cache when fetched within the dedupe window,
// otherwise through the shared in-flight request for that key. An empty key
// is the do-not-fetch sentinel and resolves to nothing.
func (c *Coordinator) Fetch(ctx context.Context, key string, fetcher Fetcher) (any, error) {
	if key == "" {
		return nil, nil
	}

	if entry, ok := c.cache.Get(key); ok && entry.FreshWithin(c.dedupeWindow) {
		return entry.Data, entry.Err
	}

	return c.fetch(ctx, key, fetcher, c.retryCount)
}

// fetch funnels all callers for a key through one in-flight request. The
// winning call writes the outcome to the cache before the shared result is
// handed back, so every caller observes the same value the cache holds.
func (c *Coordinator) fetch(ctx context.Context, key string, fetcher Fetcher, retries int) (any, error) {
	value, err, shared := c.group.Do(key, func() (any, error) {
		value, err := c.attempt(ctx, fetcher, retries)
		if err != nil {
			c.cache.SetError(key, err)
			return nil, err
		}
		c.cache.SetData(key, value)
		return value, nil
	})

	if shared {
		log.Debug().Str("key", key).Msg("request shared with concurrent caller")
	}

	return value, err
}

func (c *Coordinator) attempt(ctx context.Context, fetcher Fetcher, retries int) (any, error) {
	var value any
	var err error

	for i := 0; ; i++ {
		value, err = fetcher(ctx)
		if err == nil || i == retries {
			return value, err
		}

		select {
		case <-time.After(c.retryDelay):
		case <-ctx.Done():
			return nil, err
		}
	}
}
