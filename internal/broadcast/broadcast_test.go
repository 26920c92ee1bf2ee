package broadcast

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublish_DeliversToAllSubscribers(t *testing.T) {
	bus := NewBus()

	var a, b int
	bus.Subscribe(SessionChanged, func() { a++ })
	bus.Subscribe(SessionChanged, func() { b++ })

	bus.Publish(SessionChanged)

	assert.Equal(t, 1, a)
	assert.Equal(t, 1, b)
}

func TestPublish_TopicIsolation(t *testing.T) {
	bus := NewBus()

	var focused int
	bus.Subscribe(Focused, func() { focused++ })

	bus.Publish(Reconnected)
	assert.Zero(t, focused)

	bus.Publish(Focused)
	assert.Equal(t, 1, focused)
}

func TestCancel_StopsDelivery(t *testing.T) {
	bus := NewBus()

	var count int
	cancel := bus.Subscribe(SessionChanged, func() { count++ })

	bus.Publish(SessionChanged)
	cancel()
	cancel() // second cancel is a no-op
	bus.Publish(SessionChanged)

	assert.Equal(t, 1, count)
}

func TestPublish_ConcurrentSubscribers(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	count := 0

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Subscribe(Reconnected, func() {
				mu.Lock()
				count++
				mu.Unlock()
			})
		}()
	}
	wg.Wait()

	bus.Publish(Reconnected)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 20, count)
}
