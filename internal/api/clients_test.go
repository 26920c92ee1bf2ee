package api_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakmart/storefront/internal/api"
	"github.com/oakmart/storefront/internal/config"
	"github.com/oakmart/storefront/internal/testhelpers"
	"github.com/oakmart/storefront/internal/transport"
)

type tokenHolder struct {
	mu    sync.Mutex
	token string
}

func (h *tokenHolder) Token() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.token
}

func (h *tokenHolder) set(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = token
}

func newTestClient(t *testing.T, g *testhelpers.Gateway, opts ...transport.Option) (*api.Client, *tokenHolder) {
	t.Helper()

	holder := &tokenHolder{}
	tc, err := transport.New(config.APIConfig{
		BaseURL:        g.URL(),
		TimeoutSeconds: 5,
	}, holder, opts...)
	require.NoError(t, err)

	return api.New(tc), holder
}

func login(t *testing.T, c *api.Client, holder *tokenHolder) api.User {
	t.Helper()

	auth, err := c.Login(context.Background(), "alice", "password123")
	require.NoError(t, err)
	require.NotEmpty(t, auth.Token)

	holder.set(auth.Token)
	return auth.User
}

func TestLogin(t *testing.T) {
	g := testhelpers.NewGateway()
	defer g.Close()

	c, _ := newTestClient(t, g)

	t.Run("valid credentials", func(t *testing.T) {
		auth, err := c.Login(context.Background(), "alice", "password123")
		require.NoError(t, err)
		assert.NotEmpty(t, auth.Token)
		assert.Equal(t, "alice", auth.User.Username)
	})

	t.Run("invalid credentials are validation, not session expiry", func(t *testing.T) {
		invalidated := false
		c, _ := newTestClient(t, g, transport.WithUnauthorizedHandler(func() {
			invalidated = true
		}))

		_, err := c.Login(context.Background(), "alice", "wrong")
		require.Error(t, err)
		assert.Equal(t, transport.KindValidation, transport.KindOf(err))
		assert.False(t, invalidated, "login failure must not tear down the session")
	})
}

func TestRegister(t *testing.T) {
	g := testhelpers.NewGateway()
	defer g.Close()

	c, _ := newTestClient(t, g)

	auth, err := c.Register(context.Background(), "bob", "bob@example.com", "secret99")
	require.NoError(t, err)
	assert.NotEmpty(t, auth.Token)
	assert.Equal(t, "bob", auth.User.Username)

	t.Run("duplicate username conflicts", func(t *testing.T) {
		_, err := c.Register(context.Background(), "bob", "bob2@example.com", "secret99")
		require.Error(t, err)
		assert.True(t, transport.IsConflict(err))
	})
}

func TestProducts(t *testing.T) {
	g := testhelpers.NewGateway()
	defer g.Close()

	c, _ := newTestClient(t, g)

	page, err := c.Products(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 3, page.Total)

	t.Run("second page", func(t *testing.T) {
		page, err := c.Products(context.Background(), 2, 2)
		require.NoError(t, err)
		assert.Len(t, page.Items, 1)
	})

	t.Run("single product", func(t *testing.T) {
		p, err := c.Product(context.Background(), page.Items[0].ID)
		require.NoError(t, err)
		assert.Equal(t, page.Items[0].Name, p.Name)
	})

	t.Run("details aggregation", func(t *testing.T) {
		details, err := c.ProductDetails(context.Background(), page.Items[0].ID)
		require.NoError(t, err)
		assert.Equal(t, page.Items[0].ID, details.Product.ID)
		assert.NotNil(t, details.Reviews)
	})
}

func TestCartLifecycle(t *testing.T) {
	g := testhelpers.NewGateway()
	defer g.Close()

	c, holder := newTestClient(t, g)
	login(t, c, holder)

	ctx := context.Background()

	page, err := c.Products(ctx, 1, 10)
	require.NoError(t, err)
	product := page.Items[0]

	cart, err := c.AddToCart(ctx, product, 2)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.ItemCount)
	assert.Equal(t, product.Price*2, cart.Subtotal)

	t.Run("adding the same product merges lines", func(t *testing.T) {
		cart, err := c.AddToCart(ctx, product, 1)
		require.NoError(t, err)
		require.Len(t, cart.Items, 1)
		assert.Equal(t, 3, cart.Items[0].Quantity)
	})

	t.Run("badge count matches quantities", func(t *testing.T) {
		count, err := c.CartCount(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, count.Count)
	})

	t.Run("quantity update", func(t *testing.T) {
		updated, err := c.UpdateCartItem(ctx, cart.Items[0].ID, 1)
		require.NoError(t, err)
		assert.Equal(t, 1, updated.ItemCount)
	})

	t.Run("remove and clear", func(t *testing.T) {
		require.NoError(t, c.RemoveCartItem(ctx, cart.Items[0].ID))
		require.NoError(t, c.ClearCart(ctx))

		fresh, err := c.Cart(ctx)
		require.NoError(t, err)
		assert.Empty(t, fresh.Items)
	})
}

func TestOrders(t *testing.T) {
	g := testhelpers.NewGateway()
	defer g.Close()

	c, holder := newTestClient(t, g)
	login(t, c, holder)

	ctx := context.Background()

	order, err := c.CreateOrder(ctx, []api.OrderItem{
		{ProductID: "prod-00001", ProductName: "Wireless Headphones", Quantity: 2, Price: 49.99},
	})
	require.NoError(t, err)
	assert.Equal(t, "pending", order.Status)
	assert.InDelta(t, 99.98, order.Total, 0.001)

	t.Run("listed after creation", func(t *testing.T) {
		orders, err := c.Orders(ctx)
		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Equal(t, order.ID, orders[0].ID)
	})

	t.Run("details has no shipment while pending", func(t *testing.T) {
		details, err := c.OrderDetails(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, order.ID, details.Order.ID)
		assert.Nil(t, details.Shipment)
	})

	t.Run("unknown order is not found", func(t *testing.T) {
		_, err := c.Order(ctx, "order-nope")
		require.Error(t, err)
		assert.Equal(t, transport.KindValidation, transport.KindOf(err))
	})
}

func TestNotifications(t *testing.T) {
	g := testhelpers.NewGateway()
	defer g.Close()

	c, holder := newTestClient(t, g)
	login(t, c, holder)

	ctx := context.Background()

	notes, err := c.Notifications(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 2)

	count, err := c.NotificationCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count.Count)

	require.NoError(t, c.MarkNotificationRead(ctx, notes[0].ID))

	count, err = c.NotificationCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count.Count)
}

func TestProfile(t *testing.T) {
	g := testhelpers.NewGateway()
	defer g.Close()

	c, holder := newTestClient(t, g)
	login(t, c, holder)

	ctx := context.Background()

	profile, err := c.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.Username)

	updated, err := c.UpdateProfile(ctx, "Alice A.", "555-0100")
	require.NoError(t, err)
	assert.Equal(t, "Alice A.", updated.Name)
	assert.Equal(t, "555-0100", updated.Phone)
}

func TestReviews(t *testing.T) {
	g := testhelpers.NewGateway()
	defer g.Close()

	c, holder := newTestClient(t, g)
	user := login(t, c, holder)

	ctx := context.Background()

	review, err := c.CreateReview(ctx, "prod-00001", user.ID, 5, "Great", "Would buy again.")
	require.NoError(t, err)
	assert.Equal(t, 5, review.Rating)

	t.Run("visible in the product listing", func(t *testing.T) {
		reviews, err := c.Reviews(ctx, "prod-00001")
		require.NoError(t, err)
		require.Len(t, reviews, 1)
		assert.Equal(t, review.ID, reviews[0].ID)
	})

	t.Run("second review for the same product conflicts", func(t *testing.T) {
		_, err := c.CreateReview(ctx, "prod-00001", user.ID, 1, "Changed my mind", "")
		require.Error(t, err)
		assert.True(t, transport.IsConflict(err))
	})
}

func TestShipping(t *testing.T) {
	g := testhelpers.NewGateway()
	defer g.Close()

	c, _ := newTestClient(t, g)

	ctx := context.Background()

	info, err := c.TrackShipment(ctx, "TRK-123")
	require.NoError(t, err)
	assert.Equal(t, "TRK-123", info.TrackingNumber)
	assert.Equal(t, "in_transit", info.Status)

	estimate, err := c.EstimateShipping(ctx, "NYC", "SFO", 2.5)
	require.NoError(t, err)
	assert.Greater(t, estimate.Cost, 0.0)
	assert.Equal(t, 3, estimate.EstimatedDays)
}

func TestSessionExpiryTriggersUnauthorizedHandler(t *testing.T) {
	g := testhelpers.NewGateway()
	defer g.Close()

	invalidated := false
	c, holder := newTestClient(t, g, transport.WithUnauthorizedHandler(func() {
		invalidated = true
	}))
	login(t, c, holder)

	g.RevokeAllTokens()

	_, err := c.Cart(context.Background())
	require.Error(t, err)
	assert.True(t, transport.IsSessionExpired(err))
	assert.True(t, invalidated)
}
