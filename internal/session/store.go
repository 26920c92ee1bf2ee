// Package session is the single source of truth for "is a user logged in".
// The token and profile are persisted to a state directory shared by every
// client process; changes are announced on the broadcast bus so that
// session-gated subscriptions can start or stop fetching.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/oakmart/storefront/internal/broadcast"
	"github.com/oakmart/storefront/internal/config"
)

const (
	tokenFile = "token"
	userFile  = "user.json"
)

// User is the persisted profile returned by the auth service at login.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Name     string `json:"name,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// Store holds the current session and its persisted mirror.
type Store struct {
	dir string
	bus *broadcast.Bus

	mu    sync.RWMutex
	token string
	user  *User
}

func NewStore(cfg config.StateConfig, bus *broadcast.Bus) (*Store, error) {
	dir := cfg.Dir
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("could not resolve state directory: %w", err)
		}
		dir = filepath.Join(base, "storefront")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create state directory: %w", err)
	}

	s := &Store{dir: dir, bus: bus}
	s.token, s.user = s.loadPersisted()

	return s, nil
}

// loadPersisted reads the token and user files. A corrupt user file is
// discarded rather than failing startup; the token alone is authoritative.
func (s *Store) loadPersisted() (string, *User) {
	raw, err := os.ReadFile(filepath.Join(s.dir, tokenFile))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Warn().Err(err).Msg("could not read persisted token")
		}
		return "", nil
	}

	token := strings.TrimSpace(string(raw))
	if token == "" {
		return "", nil
	}

	var user *User
	if rawUser, err := os.ReadFile(filepath.Join(s.dir, userFile)); err == nil {
		var u User
		if err := json.Unmarshal(rawUser, &u); err != nil {
			log.Warn().Err(err).Msg("persisted user profile is corrupt, ignoring")
		} else {
			user = &u
		}
	}

	return token, user
}

// Token returns the current bearer token, or empty when unauthenticated.
// Implements transport.TokenSource.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Authenticated reports whether a session token is held.
func (s *Store) Authenticated() bool {
	return s.Token() != ""
}

// User returns the persisted profile of the logged-in user.
func (s *Store) User() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

// Login stores the session returned by the auth service. Local state is
// updated synchronously; the change broadcast reaches same-process
// subscribers before Login returns and other processes via their watchers.
func (s *Store) Login(token string, user User) error {
	if token == "" {
		return errors.New("login requires a token")
	}

	s.mu.Lock()
	s.token = token
	s.user = &user
	err := s.persistLocked()
	s.mu.Unlock()

	if err != nil {
		return err
	}

	log.Info().Str("username", user.Username).Msg("session established")
	s.bus.Publish(broadcast.SessionChanged)
	return nil
}

// Logout destroys the session and its persisted mirror.
func (s *Store) Logout() error {
	s.mu.Lock()
	had := s.token != ""
	s.token = ""
	s.user = nil
	err := s.removeLocked()
	s.mu.Unlock()

	if err != nil {
		return err
	}

	if had {
		log.Info().Msg("session cleared")
		s.bus.Publish(broadcast.SessionChanged)
	}
	return nil
}

// Invalidate tears down the session after a 401. It is safe to call from
// concurrent failing requests: only the call that observes a live token
// clears it and broadcasts, so the logout signal fires at most once. With no
// session held it is a no-op, which also breaks the loop for failures on the
// login path itself.
func (s *Store) Invalidate() {
	s.mu.Lock()
	if s.token == "" {
		s.mu.Unlock()
		return
	}
	s.token = ""
	s.user = nil
	err := s.removeLocked()
	s.mu.Unlock()

	if err != nil {
		log.Warn().Err(err).Msg("could not remove persisted session state")
	}

	log.Info().Msg("session invalidated by server")
	s.bus.Publish(broadcast.SessionChanged)
}

// OnChange subscribes to session transitions. The returned function cancels
// the subscription.
func (s *Store) OnChange(fn func()) (cancel func()) {
	return s.bus.Subscribe(broadcast.SessionChanged, fn)
}

func (s *Store) persistLocked() error {
	if err := writeFileAtomic(filepath.Join(s.dir, tokenFile), []byte(s.token), 0o600); err != nil {
		return fmt.Errorf("could not persist token: %w", err)
	}

	encoded, err := json.Marshal(s.user)
	if err != nil {
		return fmt.Errorf("could not encode user profile: %w", err)
	}
	if err := writeFileAtomic(filepath.Join(s.dir, userFile), encoded, 0o600); err != nil {
		return fmt.Errorf("could not persist user profile: %w", err)
	}

	return nil
}

func (s *Store) removeLocked() error {
	var errs []error
	for _, name := range []string{tokenFile, userFile} {
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// writeFileAtomic writes via a temp file and rename so a concurrent reader
// in another process never observes a partial write.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".session-*")
	if err != nil {
		return err
	}

	_, err = tmp.Write(data)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Chmod(tmp.Name(), perm)
	}
	if err == nil {
		err = os.Rename(tmp.Name(), path)
	}
	if err != nil {
		os.Remove(tmp.Name())
	}
	return err
}
