package session

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/oakmart/storefront/internal/broadcast"
)

// Watch polls the state directory for changes made by other client
// processes and republishes them locally, converging every process on the
// same session within one poll interval. The loop exits when the context is
// cancelled.
func (s *Store) Watch(ctx context.Context, interval time.Duration) {
	for {
		select {
		case <-time.After(interval):
			s.reloadIfChanged()
		case <-ctx.Done():
			log.Info().Msg("session watcher shutting down gracefully")
			return
		}
	}
}

// reloadIfChanged reloads the persisted session and broadcasts when it
// differs from in-memory state. Local Login/Logout keep memory and disk in
// step, so a difference always means another process made the change.
func (s *Store) reloadIfChanged() {
	token, user := s.loadPersisted()

	s.mu.Lock()
	changed := token != s.token
	if changed {
		s.token = token
		s.user = user
	}
	s.mu.Unlock()

	if changed {
		log.Debug().Bool("authenticated", token != "").Msg("session changed externally")
		s.bus.Publish(broadcast.SessionChanged)
	}
}
