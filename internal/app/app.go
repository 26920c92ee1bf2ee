// Package app wires the storefront client together: configuration, session
// state, the HTTP transport, the cache store and the query and mutation
// coordinators. Frontends (the CLI commands, watch mode) talk to App rather
// than assembling the pieces themselves.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/oakmart/storefront/internal/api"
	"github.com/oakmart/storefront/internal/broadcast"
	"github.com/oakmart/storefront/internal/cache"
	"github.com/oakmart/storefront/internal/config"
	"github.com/oakmart/storefront/internal/mutation"
	"github.com/oakmart/storefront/internal/query"
	"github.com/oakmart/storefront/internal/session"
	"github.com/oakmart/storefront/internal/transport"
)

// Cache keys. One resource, one key; parameterized resources bake the
// parameters into the key so distinct pages and products never collide.
const (
	KeyCart              = "cart"
	KeyCartCount         = "cart/count"
	KeyOrders            = "orders"
	KeyNotifications     = "notifications"
	KeyNotificationCount = "notifications/count"
	KeyProfile           = "profile"
)

func KeyProducts(page, limit int) string {
	return fmt.Sprintf("products?page=%d&limit=%d", page, limit)
}

func KeyProductDetails(id string) string {
	return "products/" + id + "/details"
}

func KeyOrderDetails(id string) string {
	return "orders/" + id + "/details"
}

func KeyReviews(productID string) string {
	return "reviews?product_id=" + productID
}

// App is the composed client.
type App struct {
	Config    config.Config
	Bus       *broadcast.Bus
	Session   *session.Store
	API       *api.Client
	Cache     *cache.Store
	Queries   *query.Coordinator
	Mutations *mutation.Coordinator
}

// Option configures optional application behaviour.
type Option func(*options)

type options struct {
	notifier       mutation.Notifier
	transportOpts  []transport.Option
	queryOpts      []query.Option
	disableWatcher bool
}

// WithNotifier replaces the log-backed mutation notifier.
func WithNotifier(n mutation.Notifier) Option {
	return func(o *options) {
		o.notifier = n
	}
}

// WithTransportOptions appends options to the HTTP transport.
func WithTransportOptions(opts ...transport.Option) Option {
	return func(o *options) {
		o.transportOpts = append(o.transportOpts, opts...)
	}
}

// WithQueryOptions appends options to the query coordinator.
func WithQueryOptions(opts ...query.Option) Option {
	return func(o *options) {
		o.queryOpts = append(o.queryOpts, opts...)
	}
}

// New assembles the client from configuration. The returned App is ready
// for one-shot use; call Start to run the background session watcher for
// long-lived processes.
func New(cfg config.Config, opts ...Option) (*App, error) {
	o := &options{notifier: mutation.LogNotifier{}}
	for _, opt := range opts {
		opt(o)
	}

	bus := broadcast.NewBus()

	sess, err := session.NewStore(cfg.State, bus)
	if err != nil {
		return nil, fmt.Errorf("could not initialize session state: %w", err)
	}

	topts := append([]transport.Option{
		transport.WithUnauthorizedHandler(sess.Invalidate),
	}, o.transportOpts...)

	tc, err := transport.New(cfg.API, sess, topts...)
	if err != nil {
		return nil, fmt.Errorf("could not initialize transport: %w", err)
	}

	store := cache.New(cfg.Cache)

	a := &App{
		Config:    cfg,
		Bus:       bus,
		Session:   sess,
		API:       api.New(tc),
		Cache:     store,
		Queries:   query.NewCoordinator(store, bus, cfg.Query, o.queryOpts...),
		Mutations: mutation.NewCoordinator(store, o.notifier),
	}

	// another process logging in or out reshapes everything the cache
	// holds for the session-scoped keys
	sess.OnChange(a.dropSessionData)

	return a, nil
}

// Start launches the background routines that keep a long-lived process in
// sync: the session file watcher that picks up logins and logouts made by
// other processes. It returns when ctx is cancelled.
func (a *App) Start(ctx context.Context) {
	log.Info().
		Str("stateDir", a.Config.State.Dir).
		Dur("watchInterval", a.Config.State.WatchInterval()).
		Msg("session watcher starting")

	a.Session.Watch(ctx, a.Config.State.WatchInterval())
}

// dropSessionData marks every session-scoped key stale after a session
// change. Subscribers with a live key refetch; keys gated off by the
// session (logged out) simply stop fetching.
func (a *App) dropSessionData() {
	a.Cache.InvalidateAll(
		KeyCart, KeyCartCount,
		KeyOrders,
		KeyNotifications, KeyNotificationCount,
		KeyProfile,
	)
}

// SessionKey gates a cache key on authentication: it resolves to the key
// while logged in and to the do-not-fetch sentinel while logged out.
func (a *App) SessionKey(key string) query.KeyFunc {
	return func() string {
		if !a.Session.Authenticated() {
			return ""
		}
		return key
	}
}

// Login authenticates and persists the session for every running process.
func (a *App) Login(ctx context.Context, username, password string) (api.User, error) {
	auth, err := a.API.Login(ctx, username, password)
	if err != nil {
		return api.User{}, err
	}

	err = a.Session.Login(auth.Token, session.User{
		ID:       auth.User.ID,
		Username: auth.User.Username,
		Email:    auth.User.Email,
		Name:     auth.User.Name,
		Phone:    auth.User.Phone,
	})
	if err != nil {
		return api.User{}, fmt.Errorf("could not persist session: %w", err)
	}

	return auth.User, nil
}

// Register creates an account and starts a session with it.
func (a *App) Register(ctx context.Context, username, email, password string) (api.User, error) {
	auth, err := a.API.Register(ctx, username, email, password)
	if err != nil {
		return api.User{}, err
	}

	err = a.Session.Login(auth.Token, session.User{
		ID:       auth.User.ID,
		Username: auth.User.Username,
		Email:    auth.User.Email,
	})
	if err != nil {
		return api.User{}, fmt.Errorf("could not persist session: %w", err)
	}

	return auth.User, nil
}

// Logout ends the session everywhere.
func (a *App) Logout() error {
	return a.Session.Logout()
}
