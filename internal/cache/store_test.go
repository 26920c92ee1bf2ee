package cache_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakmart/storefront/internal/cache"
	"github.com/oakmart/storefront/internal/config"
)

func newStore() *cache.Store {
	return cache.New(config.CacheConfig{RetentionSeconds: 60, MaxEntries: 100})
}

func TestGet_MissingKey(t *testing.T) {
	s := newStore()

	entry, ok := s.Get("cart")
	assert.False(t, ok)
	assert.False(t, entry.HasData())
}

func TestSetData_NotifiesAllSubscribersBeforeReturn(t *testing.T) {
	s := newStore()

	var first, second []any
	s.Subscribe("cart/count", func(e cache.Entry) { first = append(first, e.Data) })
	s.Subscribe("cart/count", func(e cache.Entry) { second = append(second, e.Data) })

	s.SetData("cart/count", 3)

	// both observers saw the value by the time SetData returned
	assert.Equal(t, []any{3}, first)
	assert.Equal(t, []any{3}, second)

	entry, ok := s.Get("cart/count")
	require.True(t, ok)
	assert.Equal(t, 3, entry.Data)
	assert.NoError(t, entry.Err)
	assert.False(t, entry.Stale)
}

func TestSetError_PreservesData(t *testing.T) {
	s := newStore()
	sub := s.Subscribe("orders", func(cache.Entry) {})
	defer sub.Cancel()

	s.SetData("orders", []string{"order-1"})
	s.SetError("orders", errors.New("gateway unavailable"))

	entry, ok := s.Get("orders")
	require.True(t, ok)
	assert.Equal(t, []string{"order-1"}, entry.Data)
	assert.EqualError(t, entry.Err, "gateway unavailable")
}

func TestSetData_ClearsPreviousError(t *testing.T) {
	s := newStore()
	sub := s.Subscribe("profile", func(cache.Entry) {})
	defer sub.Cancel()

	s.SetError("profile", errors.New("boom"))
	s.SetData("profile", "alice")

	entry, _ := s.Get("profile")
	assert.NoError(t, entry.Err)
	assert.Equal(t, "alice", entry.Data)
}

func TestInvalidate_MarksStaleKeepsValue(t *testing.T) {
	s := newStore()
	sub := s.Subscribe("cart", func(cache.Entry) {})
	defer sub.Cancel()

	s.SetData("cart", "full-cart")
	s.Invalidate("cart")

	entry, _ := s.Get("cart")
	assert.True(t, entry.Stale)
	assert.Equal(t, "full-cart", entry.Data)
	assert.False(t, entry.FreshWithin(time.Hour))
}

func TestInvalidate_NotifiesSubscribers(t *testing.T) {
	s := newStore()

	staleSeen := false
	sub := s.Subscribe("notifications", func(e cache.Entry) {
		if e.Stale {
			staleSeen = true
		}
	})
	defer sub.Cancel()

	s.SetData("notifications", "list")
	s.Invalidate("notifications")

	assert.True(t, staleSeen)
}

func TestInvalidateAll(t *testing.T) {
	s := newStore()
	a := s.Subscribe("cart", func(cache.Entry) {})
	b := s.Subscribe("cart/count", func(cache.Entry) {})
	defer a.Cancel()
	defer b.Cancel()

	s.SetData("cart", 1)
	s.SetData("cart/count", 2)
	s.InvalidateAll("cart", "cart/count")

	for _, key := range []string{"cart", "cart/count"} {
		entry, _ := s.Get(key)
		assert.True(t, entry.Stale, key)
	}
}

func TestUpdate_OptimisticValueIsNotFresh(t *testing.T) {
	s := newStore()

	var seen []any
	sub := s.Subscribe("cart/count", func(e cache.Entry) { seen = append(seen, e.Data) })
	defer sub.Cancel()

	s.SetData("cart/count", 2)
	fetched, _ := s.Get("cart/count")

	s.Update("cart/count", func(old any) any { return old.(int) + 1 })

	entry, _ := s.Get("cart/count")
	assert.Equal(t, 3, entry.Data)
	// the optimistic write does not advance the fetch timestamp
	assert.Equal(t, fetched.LastFetched, entry.LastFetched)
	assert.Equal(t, []any{2, 3}, seen)
}

func TestCancel_StopsNotifications(t *testing.T) {
	s := newStore()

	count := 0
	sub := s.Subscribe("reviews", func(cache.Entry) { count++ })

	s.SetData("reviews", "a")
	sub.Cancel()
	s.SetData("reviews", "b")

	assert.Equal(t, 1, count)
}

func TestRetention_SeedsResubscription(t *testing.T) {
	s := newStore()

	sub := s.Subscribe("products?page=1", func(cache.Entry) {})
	s.SetData("products?page=1", "page-one")
	sub.Cancel()

	// a fresh subscriber within the retention window starts from the
	// last-known value rather than empty
	resub := s.Subscribe("products?page=1", func(cache.Entry) {})
	defer resub.Cancel()

	entry, ok := s.Get("products?page=1")
	require.True(t, ok)
	assert.Equal(t, "page-one", entry.Data)
}

func TestSetData_WithoutSubscribersWritesThrough(t *testing.T) {
	s := newStore()

	// an in-flight fetch completing after unsubscribe still lands
	s.SetData("orders/42", "late-result")

	entry, ok := s.Get("orders/42")
	require.True(t, ok)
	assert.Equal(t, "late-result", entry.Data)
}

func TestFreshWithin(t *testing.T) {
	s := newStore()
	sub := s.Subscribe("cart", func(cache.Entry) {})
	defer sub.Cancel()

	entry, _ := s.Get("cart")
	assert.False(t, entry.FreshWithin(time.Minute), "no data yet")

	s.SetData("cart", 1)
	entry, _ = s.Get("cart")
	assert.True(t, entry.FreshWithin(time.Minute))
	assert.False(t, entry.FreshWithin(time.Nanosecond))
}

func TestSubscriberMayCallBackIntoStore(t *testing.T) {
	s := newStore()

	var got any
	sub := s.Subscribe("cart", func(e cache.Entry) {
		// subscribers are allowed to read the store from the callback
		snapshot, _ := s.Get("cart")
		got = snapshot.Data
	})
	defer sub.Cancel()

	s.SetData("cart", "value")
	assert.Equal(t, "value", got)
}
