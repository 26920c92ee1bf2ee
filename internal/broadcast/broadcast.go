// Package broadcast provides the in-process signalling channel used to keep
// independently subscribed resources in step: session changes, focus and
// reconnect events all fan out through a Bus.
package broadcast

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Topic identifies a broadcast channel.
type Topic string

const (
	// SessionChanged fires when the authenticated session is created,
	// destroyed or replaced, locally or by another process.
	SessionChanged Topic = "session.changed"

	// Focused fires when the application regains the user's attention.
	Focused Topic = "app.focused"

	// Reconnected fires when network connectivity is restored.
	Reconnected Topic = "net.reconnected"
)

// Bus is a topic-keyed publish/subscribe fanout. Publish delivers to every
// current subscriber of the topic before returning.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[Topic]map[int]func()
}

func NewBus() *Bus {
	return &Bus{subs: make(map[Topic]map[int]func())}
}

// Subscribe registers fn for topic. The returned function cancels the
// subscription; it is safe to call more than once.
func (b *Bus) Subscribe(topic Topic, fn func()) (cancel func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs[topic] == nil {
		b.subs[topic] = make(map[int]func())
	}

	id := b.nextID
	b.nextID++
	b.subs[topic][id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[topic], id)
	}
}

// Publish invokes every subscriber of topic. Subscribers run on the caller's
// goroutine; they must not block.
func (b *Bus) Publish(topic Topic) {
	b.mu.Lock()
	fns := make([]func(), 0, len(b.subs[topic]))
	for _, fn := range b.subs[topic] {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	log.Debug().Str("topic", string(topic)).Int("subscribers", len(fns)).Msg("broadcast")

	for _, fn := range fns {
		fn()
	}
}
