package app

import (
	"context"

	"github.com/rs/zerolog/log"
)

type teardownStep struct {
	name string
	fn   func(context.Context) error
}

// Teardown collects the cleanup work a long-lived client accumulates:
// query subscriptions, the session watcher, anything holding a goroutine.
// Steps run in the order they were added, and a failing step never stops
// the ones after it.
type Teardown struct {
	steps []teardownStep
}

// AddContext registers a cleanup step that receives the shutdown context.
// Nil steps are ignored with a warning logged.
func (t *Teardown) AddContext(name string, fn func(context.Context) error) {
	if t.steps == nil {
		t.steps = make([]teardownStep, 0, 5)
	}
	if fn == nil {
		log.Warn().Str("step", name).Msg("attempted to add nil teardown step; ignoring")
		return
	}

	log.Debug().Str("step", name).Msg("adding teardown step")
	t.steps = append(t.steps, teardownStep{name: name, fn: fn})
}

// Add registers a cleanup step that needs no context.
func (t *Teardown) Add(name string, fn func() error) {
	if fn == nil {
		log.Warn().Str("step", name).Msg("attempted to add nil teardown step; ignoring")
		return
	}

	t.AddContext(name, func(context.Context) error {
		return fn()
	})
}

// AddClose registers anything with a Close method, such as a query
// subscription.
func (t *Teardown) AddClose(name string, closer interface{ Close() }) {
	if closer == nil {
		log.Warn().Str("step", name).Msg("attempted to add nil teardown step; ignoring")
		return
	}

	t.AddContext(name, func(context.Context) error { closer.Close(); return nil })
}

// Execute runs every registered step in order, logging each outcome.
func (t *Teardown) Execute(ctx context.Context) {
	l := log.Ctx(ctx)
	for _, step := range t.steps {
		stepLog := l.With().Str("step", step.name).Logger()

		stepLog.Debug().Msg("teardown started")
		if err := step.fn(ctx); err != nil {
			stepLog.Warn().Err(err).Msg("teardown failed")
		} else {
			stepLog.Debug().Msg("teardown complete")
		}
	}
}
