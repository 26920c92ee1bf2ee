package app

import (
	"context"

	"github.com/oakmart/storefront/internal/api"
	"github.com/oakmart/storefront/internal/query"
)

// fetchAs routes a typed fetch through the query coordinator so it gains
// deduplication and cached serving, then restores the static type.
func fetchAs[T any](ctx context.Context, a *App, key string, fn func(ctx context.Context) (T, error)) (T, error) {
	v, err := a.Queries.Fetch(ctx, key, func(ctx context.Context) (any, error) {
		return fn(ctx)
	})
	if err != nil || v == nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Products fetches one catalog page through the cache.
func (a *App) Products(ctx context.Context, page, limit int) (api.ProductPage, error) {
	return fetchAs(ctx, a, KeyProducts(page, limit), func(ctx context.Context) (api.ProductPage, error) {
		return a.API.Products(ctx, page, limit)
	})
}

// ProductDetails fetches the aggregated product view through the cache.
func (a *App) ProductDetails(ctx context.Context, id string) (api.ProductDetails, error) {
	return fetchAs(ctx, a, KeyProductDetails(id), func(ctx context.Context) (api.ProductDetails, error) {
		return a.API.ProductDetails(ctx, id)
	})
}

// Cart fetches the cart through the cache.
func (a *App) Cart(ctx context.Context) (api.Cart, error) {
	return fetchAs(ctx, a, KeyCart, a.API.Cart)
}

// CartCount fetches the cart badge through the cache.
func (a *App) CartCount(ctx context.Context) (api.CartCount, error) {
	return fetchAs(ctx, a, KeyCartCount, a.API.CartCount)
}

// Orders fetches the order list through the cache.
func (a *App) Orders(ctx context.Context) ([]api.Order, error) {
	return fetchAs(ctx, a, KeyOrders, a.API.Orders)
}

// OrderDetails fetches an order with its shipment through the cache.
func (a *App) OrderDetails(ctx context.Context, id string) (api.OrderDetails, error) {
	return fetchAs(ctx, a, KeyOrderDetails(id), func(ctx context.Context) (api.OrderDetails, error) {
		return a.API.OrderDetails(ctx, id)
	})
}

// Notifications fetches the notification feed through the cache.
func (a *App) Notifications(ctx context.Context) ([]api.Notification, error) {
	return fetchAs(ctx, a, KeyNotifications, a.API.Notifications)
}

// NotificationCount fetches the unread badge through the cache.
func (a *App) NotificationCount(ctx context.Context) (api.NotificationCount, error) {
	return fetchAs(ctx, a, KeyNotificationCount, a.API.NotificationCount)
}

// Profile fetches the logged-in profile through the cache.
func (a *App) Profile(ctx context.Context) (api.User, error) {
	return fetchAs(ctx, a, KeyProfile, a.API.Profile)
}

// Reviews fetches a product's reviews through the cache.
func (a *App) Reviews(ctx context.Context, productID string) ([]api.Review, error) {
	return fetchAs(ctx, a, KeyReviews(productID), func(ctx context.Context) ([]api.Review, error) {
		return a.API.Reviews(ctx, productID)
	})
}

// badgePolicy is the subscription policy for the header badges: periodic
// polling plus a refetch when connectivity returns.
func (a *App) badgePolicy() query.Policy {
	p := a.Queries.DefaultPolicy()
	p.Interval = a.Config.Query.BadgeInterval()
	return p
}

// WatchCartCount subscribes to the cart badge. The key is gated on the
// session, so the subscription goes quiet while logged out and picks the
// badge back up as soon as any process logs in.
func (a *App) WatchCartCount(ctx context.Context) *query.Subscription {
	return a.Queries.Subscribe(ctx, a.SessionKey(KeyCartCount), func(ctx context.Context) (any, error) {
		return a.API.CartCount(ctx)
	}, a.badgePolicy())
}

// WatchNotificationCount subscribes to the unread badge, session-gated like
// the cart badge.
func (a *App) WatchNotificationCount(ctx context.Context) *query.Subscription {
	return a.Queries.Subscribe(ctx, a.SessionKey(KeyNotificationCount), func(ctx context.Context) (any, error) {
		return a.API.NotificationCount(ctx)
	}, a.badgePolicy())
}

// WatchNotifications subscribes to the full feed, session-gated.
func (a *App) WatchNotifications(ctx context.Context) *query.Subscription {
	return a.Queries.Subscribe(ctx, a.SessionKey(KeyNotifications), func(ctx context.Context) (any, error) {
		return a.API.Notifications(ctx)
	}, a.badgePolicy())
}
