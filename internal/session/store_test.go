package session_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakmart/storefront/internal/broadcast"
	"github.com/oakmart/storefront/internal/config"
	"github.com/oakmart/storefront/internal/session"
)

func newStore(t *testing.T, dir string) (*session.Store, *broadcast.Bus) {
	t.Helper()

	bus := broadcast.NewBus()
	s, err := session.NewStore(config.StateConfig{Dir: dir}, bus)
	require.NoError(t, err)
	return s, bus
}

func TestLoginLogout(t *testing.T) {
	s, _ := newStore(t, t.TempDir())

	assert.False(t, s.Authenticated())

	err := s.Login("tok-1", session.User{ID: "u1", Username: "alice"})
	require.NoError(t, err)

	assert.True(t, s.Authenticated())
	assert.Equal(t, "tok-1", s.Token())

	user, ok := s.User()
	require.True(t, ok)
	assert.Equal(t, "alice", user.Username)

	require.NoError(t, s.Logout())
	assert.False(t, s.Authenticated())
	_, ok = s.User()
	assert.False(t, ok)
}

func TestLogin_RequiresToken(t *testing.T) {
	s, _ := newStore(t, t.TempDir())
	assert.Error(t, s.Login("", session.User{}))
}

func TestPersistenceAcrossStores(t *testing.T) {
	dir := t.TempDir()

	first, _ := newStore(t, dir)
	require.NoError(t, first.Login("tok-2", session.User{ID: "u2", Username: "bob"}))

	// a second store over the same directory models another process
	second, _ := newStore(t, dir)
	assert.True(t, second.Authenticated())
	assert.Equal(t, "tok-2", second.Token())

	user, ok := second.User()
	require.True(t, ok)
	assert.Equal(t, "bob", user.Username)
}

func TestCorruptUserFileIsTolerated(t *testing.T) {
	dir := t.TempDir()

	first, _ := newStore(t, dir)
	require.NoError(t, first.Login("tok-3", session.User{Username: "carol"}))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "user.json"), []byte("{not json"), 0o600))

	second, _ := newStore(t, dir)
	assert.True(t, second.Authenticated())
	_, ok := second.User()
	assert.False(t, ok)
}

func TestOnChange_FiresForLoginAndLogout(t *testing.T) {
	s, _ := newStore(t, t.TempDir())

	changes := 0
	cancel := s.OnChange(func() { changes++ })
	defer cancel()

	require.NoError(t, s.Login("tok-4", session.User{Username: "dave"}))
	require.NoError(t, s.Logout())

	assert.Equal(t, 2, changes)
}

func TestLogout_NoBroadcastWhenAlreadyOut(t *testing.T) {
	s, _ := newStore(t, t.TempDir())

	changes := 0
	s.OnChange(func() { changes++ })

	require.NoError(t, s.Logout())
	assert.Zero(t, changes)
}

func TestInvalidate_BroadcastsExactlyOnce(t *testing.T) {
	s, _ := newStore(t, t.TempDir())
	require.NoError(t, s.Login("tok-5", session.User{Username: "eve"}))

	changes := 0
	s.OnChange(func() { changes++ })

	// concurrent 401s race to invalidate; only one clears the token
	done := make(chan struct{})
	for range 5 {
		go func() {
			s.Invalidate()
			done <- struct{}{}
		}()
	}
	for range 5 {
		<-done
	}

	assert.False(t, s.Authenticated())
	assert.Equal(t, 1, changes)
}

func TestInvalidate_NoopWithoutSession(t *testing.T) {
	s, _ := newStore(t, t.TempDir())

	changes := 0
	s.OnChange(func() { changes++ })

	s.Invalidate()
	assert.Zero(t, changes)
}

func TestWatch_ConvergesOnExternalChange(t *testing.T) {
	dir := t.TempDir()

	watcher, _ := newStore(t, dir)
	other, _ := newStore(t, dir)

	changed := make(chan struct{}, 1)
	watcher.OnChange(func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watcher.Watch(ctx, 10*time.Millisecond)

	require.NoError(t, other.Login("tok-6", session.User{Username: "alice"}))

	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not observe external login")
	}
	assert.Equal(t, "tok-6", watcher.Token())
}
