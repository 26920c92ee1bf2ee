package query_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakmart/storefront/internal/broadcast"
	"github.com/oakmart/storefront/internal/config"
	"github.com/oakmart/storefront/internal/query"
)

func waitFor(t *testing.T, sub *query.Subscription, cond func(query.Result) bool) query.Result {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		r := sub.Current()
		if cond(r) {
			return r
		}
		select {
		case <-deadline:
			t.Fatalf("condition not reached, last result: %+v", r)
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestSubscribe_FetchesAndDelivers(t *testing.T) {
	c, _, _ := newCoordinator(t, config.QueryConfig{DedupeWindowMillis: 2000})

	f := &countingFetcher{value: 7}
	sub := c.Subscribe(context.Background(), query.StaticKey("cart/count"), f.fetch, c.DefaultPolicy())
	defer sub.Close()

	r := waitFor(t, sub, func(r query.Result) bool { return r.Data != nil })
	assert.Equal(t, 7, r.Data)
	assert.False(t, r.Loading)
	assert.NoError(t, r.Err)
}

func TestSubscribe_GatedKeyNeverFetches(t *testing.T) {
	c, _, _ := newCoordinator(t, config.QueryConfig{DedupeWindowMillis: 2000})

	f := &countingFetcher{value: "secret"}
	sub := c.Subscribe(context.Background(), query.StaticKey(""), f.fetch, c.DefaultPolicy())
	defer sub.Close()

	time.Sleep(50 * time.Millisecond)

	assert.Zero(t, f.calls.Load())
	assert.Equal(t, query.Result{}, sub.Current())
}

func TestSubscribe_SessionGateSwitchesKey(t *testing.T) {
	c, _, bus := newCoordinator(t, config.QueryConfig{DedupeWindowMillis: 2000})

	var authed atomic.Bool
	keyFn := func() string {
		if authed.Load() {
			return "cart/count"
		}
		return ""
	}

	f := &countingFetcher{value: 3}
	sub := c.Subscribe(context.Background(), keyFn, f.fetch, c.DefaultPolicy())
	defer sub.Close()

	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, f.calls.Load(), "logged out: gated off")

	// login: the session broadcast re-evaluates the key and starts fetching
	authed.Store(true)
	bus.Publish(broadcast.SessionChanged)

	r := waitFor(t, sub, func(r query.Result) bool { return r.Data != nil })
	assert.Equal(t, 3, r.Data)

	// logout: the subscription gates off and drops its view of the data
	authed.Store(false)
	bus.Publish(broadcast.SessionChanged)

	waitFor(t, sub, func(r query.Result) bool { return r.Data == nil })
	calls := f.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, calls, f.calls.Load(), "no fetching while gated off")
}

func TestSubscribe_InvalidateTriggersRefetch(t *testing.T) {
	c, store, _ := newCoordinator(t, config.QueryConfig{DedupeWindowMillis: 10})

	f := &countingFetcher{value: "v1"}
	sub := c.Subscribe(context.Background(), query.StaticKey("cart"), f.fetch, c.DefaultPolicy())
	defer sub.Close()

	waitFor(t, sub, func(r query.Result) bool { return r.Data != nil })
	time.Sleep(20 * time.Millisecond) // leave the dedupe window

	f.value = "v2"
	store.Invalidate("cart")

	r := waitFor(t, sub, func(r query.Result) bool { return r.Data == "v2" })
	assert.NoError(t, r.Err)
	assert.Equal(t, int32(2), f.calls.Load())
}

func TestSubscribe_ReconnectRevalidates(t *testing.T) {
	c, _, bus := newCoordinator(t, config.QueryConfig{DedupeWindowMillis: 10})

	f := &countingFetcher{value: 1}
	sub := c.Subscribe(context.Background(), query.StaticKey("orders"), f.fetch, c.DefaultPolicy())
	defer sub.Close()

	waitFor(t, sub, func(r query.Result) bool { return r.Data != nil })
	time.Sleep(20 * time.Millisecond)

	bus.Publish(broadcast.Reconnected)

	require.Eventually(t, func() bool { return f.calls.Load() == 2 },
		2*time.Second, 5*time.Millisecond)
}

func TestSubscribe_FocusDisabledByDefault(t *testing.T) {
	c, _, bus := newCoordinator(t, config.QueryConfig{DedupeWindowMillis: 10})

	f := &countingFetcher{value: 1}
	sub := c.Subscribe(context.Background(), query.StaticKey("orders"), f.fetch, c.DefaultPolicy())
	defer sub.Close()

	waitFor(t, sub, func(r query.Result) bool { return r.Data != nil })
	time.Sleep(20 * time.Millisecond)

	bus.Publish(broadcast.Focused)
	time.Sleep(30 * time.Millisecond)

	assert.Equal(t, int32(1), f.calls.Load())
}

func TestSubscribe_FocusPolicyRevalidates(t *testing.T) {
	c, _, bus := newCoordinator(t, config.QueryConfig{DedupeWindowMillis: 10})

	policy := c.DefaultPolicy()
	policy.RevalidateOnFocus = true

	f := &countingFetcher{value: 1}
	sub := c.Subscribe(context.Background(), query.StaticKey("profile"), f.fetch, policy)
	defer sub.Close()

	waitFor(t, sub, func(r query.Result) bool { return r.Data != nil })
	time.Sleep(20 * time.Millisecond)

	bus.Publish(broadcast.Focused)

	require.Eventually(t, func() bool { return f.calls.Load() == 2 },
		2*time.Second, 5*time.Millisecond)
}

func TestSubscribe_IntervalPolling(t *testing.T) {
	c, _, _ := newCoordinator(t, config.QueryConfig{DedupeWindowMillis: 1})

	policy := c.DefaultPolicy()
	policy.Interval = 20 * time.Millisecond
	policy.DedupeWindow = time.Millisecond

	f := &countingFetcher{value: 5}
	sub := c.Subscribe(context.Background(), query.StaticKey("notifications/count"), f.fetch, policy)
	defer sub.Close()

	require.Eventually(t, func() bool { return f.calls.Load() >= 3 },
		2*time.Second, 5*time.Millisecond)
}

func TestSubscribe_ErrorKeepsStaleDataVisible(t *testing.T) {
	c, store, _ := newCoordinator(t, config.QueryConfig{DedupeWindowMillis: 10})

	f := &countingFetcher{value: "orders-list"}
	sub := c.Subscribe(context.Background(), query.StaticKey("orders"), f.fetch, c.DefaultPolicy())
	defer sub.Close()

	waitFor(t, sub, func(r query.Result) bool { return r.Data != nil })
	time.Sleep(20 * time.Millisecond)

	f.err = errors.New("gateway down")
	f.value = nil
	store.Invalidate("orders")

	r := waitFor(t, sub, func(r query.Result) bool { return r.Err != nil })
	assert.Equal(t, "orders-list", r.Data, "stale data renders alongside the error")
}

func TestSubscribe_SharedKeyConsistency(t *testing.T) {
	// the cart badge and the cart page observe the same key: one fetch
	// serves both, and both see the same value
	c, _, _ := newCoordinator(t, config.QueryConfig{DedupeWindowMillis: 2000})

	f := &countingFetcher{value: 4}
	badge := c.Subscribe(context.Background(), query.StaticKey("cart/count"), f.fetch, c.DefaultPolicy())
	defer badge.Close()
	page := c.Subscribe(context.Background(), query.StaticKey("cart/count"), f.fetch, c.DefaultPolicy())
	defer page.Close()

	a := waitFor(t, badge, func(r query.Result) bool { return r.Data != nil })
	b := waitFor(t, page, func(r query.Result) bool { return r.Data != nil })

	assert.Equal(t, a.Data, b.Data)
	assert.Equal(t, int32(1), f.calls.Load())
}

func TestSubscribe_CloseStopsObservation(t *testing.T) {
	c, store, _ := newCoordinator(t, config.QueryConfig{DedupeWindowMillis: 1})

	f := &countingFetcher{value: "v1"}
	sub := c.Subscribe(context.Background(), query.StaticKey("reviews"), f.fetch, c.DefaultPolicy())
	waitFor(t, sub, func(r query.Result) bool { return r.Data != nil })

	sub.Close()

	// writes still land in the cache, they are just unobserved
	store.SetData("reviews", "v2")
	entry, ok := store.Get("reviews")
	require.True(t, ok)
	assert.Equal(t, "v2", entry.Data)
	assert.Equal(t, "v1", sub.Current().Data)
}
