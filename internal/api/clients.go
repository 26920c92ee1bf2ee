package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/oakmart/storefront/internal/transport"
)

// Client bundles the per-service endpoints over one transport.
type Client struct {
	t *transport.Client
}

func New(t *transport.Client) *Client {
	return &Client{t: t}
}

// Login authenticates with the auth service. A 401 here is a credential
// problem, not session expiry, so the automatic session teardown is
// suppressed.
func (c *Client) Login(ctx context.Context, username, password string) (AuthResponse, error) {
	var out AuthResponse
	err := c.t.Post(ctx, "/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, &out, &transport.Options{SkipAuthInvalidate: true})
	return out, err
}

// Register creates an account and returns a live session.
func (c *Client) Register(ctx context.Context, username, email, password string) (AuthResponse, error) {
	var out AuthResponse
	err := c.t.Post(ctx, "/auth/register", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}, &out, &transport.Options{SkipAuthInvalidate: true})
	return out, err
}

// Products lists one catalog page.
func (c *Client) Products(ctx context.Context, page, limit int) (ProductPage, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	var out ProductPage
	err := c.t.Get(ctx, "/products", &out, &transport.Options{Query: q})
	return out, err
}

// Product fetches a single catalog item.
func (c *Client) Product(ctx context.Context, id string) (Product, error) {
	var out Product
	err := c.t.Get(ctx, "/products/"+url.PathEscape(id), &out, nil)
	return out, err
}

// ProductDetails fetches the aggregated product view: product, stock and
// reviews joined by the backend.
func (c *Client) ProductDetails(ctx context.Context, id string) (ProductDetails, error) {
	var out ProductDetails
	err := c.t.Get(ctx, "/products/"+url.PathEscape(id)+"/details", &out, nil)
	return out, err
}

// Cart fetches the full cart.
func (c *Client) Cart(ctx context.Context) (Cart, error) {
	var out Cart
	err := c.t.Get(ctx, "/cart", &out, nil)
	return out, err
}

// CartCount fetches the badge count.
func (c *Client) CartCount(ctx context.Context) (CartCount, error) {
	var out CartCount
	err := c.t.Get(ctx, "/cart/count", &out, nil)
	return out, err
}

// AddToCart adds a product line. The denormalized name and price travel
// with the request; the cart service does not call back into the catalog.
func (c *Client) AddToCart(ctx context.Context, product Product, quantity int) (Cart, error) {
	var out Cart
	err := c.t.Post(ctx, "/cart", map[string]any{
		"product_id":    product.ID,
		"product_name":  product.Name,
		"product_price": product.Price,
		"quantity":      quantity,
	}, &out, nil)
	return out, err
}

// UpdateCartItem changes a line's quantity.
func (c *Client) UpdateCartItem(ctx context.Context, itemID string, quantity int) (Cart, error) {
	var out Cart
	err := c.t.Patch(ctx, "/cart/items/"+url.PathEscape(itemID), map[string]int{
		"quantity": quantity,
	}, &out)
	return out, err
}

// RemoveCartItem deletes one line.
func (c *Client) RemoveCartItem(ctx context.Context, itemID string) error {
	return c.t.Delete(ctx, "/cart/items/"+url.PathEscape(itemID), nil)
}

// ClearCart empties the cart.
func (c *Client) ClearCart(ctx context.Context) error {
	return c.t.Delete(ctx, "/cart", nil)
}

// Orders lists the user's orders.
func (c *Client) Orders(ctx context.Context) ([]Order, error) {
	var out []Order
	err := c.t.Get(ctx, "/orders", &out, nil)
	return out, err
}

// Order fetches one order.
func (c *Client) Order(ctx context.Context, id string) (Order, error) {
	var out Order
	err := c.t.Get(ctx, "/orders/"+url.PathEscape(id), &out, nil)
	return out, err
}

// OrderDetails fetches the aggregated order-with-shipment view.
func (c *Client) OrderDetails(ctx context.Context, id string) (OrderDetails, error) {
	var out OrderDetails
	err := c.t.Get(ctx, "/orders/"+url.PathEscape(id)+"/details", &out, nil)
	return out, err
}

// CreateOrder places an order for the given lines.
func (c *Client) CreateOrder(ctx context.Context, items []OrderItem) (Order, error) {
	var out Order
	err := c.t.Post(ctx, "/orders", map[string]any{"items": items}, &out, nil)
	return out, err
}

// Notifications lists the user's notification feed.
func (c *Client) Notifications(ctx context.Context) ([]Notification, error) {
	var out []Notification
	err := c.t.Get(ctx, "/notifications", &out, nil)
	return out, err
}

// Notification fetches a single notification.
func (c *Client) Notification(ctx context.Context, id string) (Notification, error) {
	var out Notification
	err := c.t.Get(ctx, "/notifications/"+url.PathEscape(id), &out, nil)
	return out, err
}

// MarkNotificationRead marks one notification as read.
func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	return c.t.Patch(ctx, "/notifications/"+url.PathEscape(id), nil, nil)
}

// NotificationCount fetches the unread badge count.
func (c *Client) NotificationCount(ctx context.Context) (NotificationCount, error) {
	var out NotificationCount
	err := c.t.Get(ctx, "/notifications/count", &out, nil)
	return out, err
}

// Profile fetches the logged-in user's profile.
func (c *Client) Profile(ctx context.Context) (User, error) {
	var out User
	err := c.t.Get(ctx, "/users/profile", &out, nil)
	return out, err
}

// UserByID fetches another user's public profile.
func (c *Client) UserByID(ctx context.Context, id string) (User, error) {
	var out User
	err := c.t.Get(ctx, "/users/"+url.PathEscape(id), &out, nil)
	return out, err
}

// UpdateProfile updates the editable profile fields.
func (c *Client) UpdateProfile(ctx context.Context, name, phone string) (User, error) {
	var out User
	err := c.t.Put(ctx, "/users/profile", map[string]string{
		"name":  name,
		"phone": phone,
	}, &out)
	return out, err
}

// Reviews lists the reviews for a product.
func (c *Client) Reviews(ctx context.Context, productID string) ([]Review, error) {
	q := url.Values{}
	q.Set("product_id", productID)

	var out []Review
	err := c.t.Get(ctx, "/reviews", &out, &transport.Options{Query: q})
	return out, err
}

// CreateReview submits a review. The review service answers 409 when the
// user has already reviewed the product; transport.IsConflict detects it.
func (c *Client) CreateReview(ctx context.Context, productID, userID string, rating int, title, comment string) (Review, error) {
	var out Review
	err := c.t.Post(ctx, "/reviews", map[string]any{
		"product_id": productID,
		"user_id":    userID,
		"rating":     rating,
		"title":      title,
		"comment":    comment,
	}, &out, nil)
	return out, err
}

// TrackShipment looks up a shipment by tracking number.
func (c *Client) TrackShipment(ctx context.Context, trackingNumber string) (TrackingInfo, error) {
	q := url.Values{}
	q.Set("tracking_number", trackingNumber)

	var out TrackingInfo
	err := c.t.Get(ctx, "/shipping/track", &out, &transport.Options{Query: q})
	return out, err
}

// EstimateShipping quotes a prospective shipment.
func (c *Client) EstimateShipping(ctx context.Context, origin, destination string, weightKg float64) (ShippingEstimate, error) {
	q := url.Values{}
	q.Set("origin", origin)
	q.Set("destination", destination)
	q.Set("weight", fmt.Sprintf("%g", weightKg))

	var out ShippingEstimate
	err := c.t.Get(ctx, "/shipping/estimate", &out, &transport.Options{Query: q})
	return out, err
}
