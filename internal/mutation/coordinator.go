// Package mutation coordinates writes: a mutation runs with a per-call
// loading flag, reports through success/error notifications, and reconciles
// the cache afterwards. Failure is signalled by a nil result, never by a
// panic or a raw transport error reaching the caller.
package mutation

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/oakmart/storefront/internal/cache"
	"github.com/oakmart/storefront/internal/errmsg"
	"github.com/oakmart/storefront/internal/transport"
)

// Outcome tags where a mutation ended up in the optimistic-update state
// machine.
type Outcome int

const (
	// OutcomeConfirmed: the server accepted the write.
	OutcomeConfirmed Outcome = iota

	// OutcomeRolledBack: the server rejected the write; any optimistic
	// value was discarded by refetching ground truth.
	OutcomeRolledBack

	// OutcomeOptimistic: a locally computed value has been applied and
	// the server has not yet answered. Only observable while Do runs.
	OutcomeOptimistic
)

func (o Outcome) String() string {
	switch o {
	case OutcomeConfirmed:
		return "confirmed"
	case OutcomeRolledBack:
		return "rolled-back"
	case OutcomeOptimistic:
		return "optimistic"
	}
	return "unknown"
}

// Notifier receives the user-facing outcome messages (the toast surface).
type Notifier interface {
	Success(message string)
	Error(message string)
}

// LogNotifier reports outcomes through the structured log. The CLI uses it
// as its toast replacement.
type LogNotifier struct{}

func (LogNotifier) Success(message string) {
	log.Info().Str("notice", "success").Msg(message)
}

func (LogNotifier) Error(message string) {
	log.Warn().Str("notice", "error").Msg(message)
}

// Operation performs the remote write.
type Operation func(ctx context.Context) (any, error)

// Optimistic pre-applies a locally computed value to a cache key before the
// server answers. The value is never marked fresh; reconciliation happens by
// invalidating the key once the server responds, on success and failure
// alike. Rollback is by reconciliation, not by snapshot restore.
type Optimistic struct {
	Key   string
	Apply func(old any) any
}

// Options configures one mutation.
type Options struct {
	OnSuccess func(result any)
	OnError   func(err error)

	// SuccessMessage is emitted through the Notifier on success; empty
	// suppresses the notification.
	SuccessMessage string

	// ErrorMessage overrides the user-facing failure message. Without it
	// the server message is translated, with the generic fallback.
	ErrorMessage string

	// Silent suppresses both notifications.
	Silent bool

	// AffectedKeys are invalidated after a successful write so every
	// subscriber refetches, e.g. cart and cart/count after add-to-cart.
	AffectedKeys []string

	// Optimistic, when set, applies a local update before the operation
	// runs.
	Optimistic *Optimistic
}

// Coordinator executes mutations against a shared cache store.
type Coordinator struct {
	cache  *cache.Store
	notify Notifier
}

func NewCoordinator(store *cache.Store, notify Notifier) *Coordinator {
	return &Coordinator{cache: store, notify: notify}
}

// Mutation is one configured write with its transient call state.
type Mutation struct {
	c    *Coordinator
	op   Operation
	opts Options

	loading atomic.Bool

	mu      sync.Mutex
	errText string
	outcome Outcome
}

// New prepares a mutation. Do may be called repeatedly; the loading flag
// and error text describe the most recent call.
func (c *Coordinator) New(op Operation, opts Options) *Mutation {
	return &Mutation{c: c, op: op, opts: opts, outcome: OutcomeConfirmed}
}

// Do runs the mutation. On success it returns the operation result and
// OutcomeConfirmed; on failure it returns nil and OutcomeRolledBack, with
// the user-facing message available from Err. The loading flag is cleared
// on every exit path.
func (m *Mutation) Do(ctx context.Context) (any, Outcome) {
	m.loading.Store(true)
	defer m.loading.Store(false)

	m.setState("", OutcomeConfirmed)

	if opt := m.opts.Optimistic; opt != nil {
		m.c.cache.Update(opt.Key, opt.Apply)
		m.setState("", OutcomeOptimistic)
	}

	result, err := m.op(ctx)
	if err != nil {
		return nil, m.fail(err)
	}

	if !m.opts.Silent && m.opts.SuccessMessage != "" {
		m.c.notify.Success(m.opts.SuccessMessage)
	}
	if m.opts.OnSuccess != nil {
		m.opts.OnSuccess(result)
	}

	m.reconcile()
	m.setState("", OutcomeConfirmed)

	return result, OutcomeConfirmed
}

func (m *Mutation) fail(err error) Outcome {
	message := m.failureMessage(err)
	m.setState(message, OutcomeRolledBack)

	log.Debug().Err(err).Msg("mutation failed")

	if !m.opts.Silent {
		m.c.notify.Error(message)
	}
	if m.opts.OnError != nil {
		m.opts.OnError(err)
	}

	// discard any optimistic value by refetching ground truth
	m.reconcile()

	return OutcomeRolledBack
}

// failureMessage resolves the user-facing text: a recognized server message
// first, then the caller-supplied message, then the generic fallback.
func (m *Mutation) failureMessage(err error) string {
	if te, ok := transport.AsError(err); ok {
		if friendly := errmsg.UserFriendly(te.Message); friendly != errmsg.Generic {
			return friendly
		}
	}
	if m.opts.ErrorMessage != "" {
		return m.opts.ErrorMessage
	}
	return errmsg.Generic
}

// reconcile invalidates every key this mutation touches. Subscribers of
// those keys refetch and converge on the server's ground truth.
func (m *Mutation) reconcile() {
	keys := m.opts.AffectedKeys
	if opt := m.opts.Optimistic; opt != nil {
		keys = append(keys[:len(keys):len(keys)], opt.Key)
	}
	m.c.cache.InvalidateAll(keys...)
}

// Loading reports whether a Do call is in progress.
func (m *Mutation) Loading() bool {
	return m.loading.Load()
}

// Err returns the user-facing message of the most recent failure, or empty.
func (m *Mutation) Err() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errText
}

// Outcome returns the state of the most recent call.
func (m *Mutation) Outcome() Outcome {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.outcome
}

// Reset clears the recorded failure.
func (m *Mutation) Reset() {
	m.setState("", OutcomeConfirmed)
}

func (m *Mutation) setState(errText string, outcome Outcome) {
	m.mu.Lock()
	m.errText = errText
	m.outcome = outcome
	m.mu.Unlock()
}
