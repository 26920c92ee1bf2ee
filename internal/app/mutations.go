package app

import (
	"context"

	"github.com/oakmart/storefront/internal/api"
	"github.com/oakmart/storefront/internal/mutation"
)

// AddToCart adds a product line. The badge is bumped optimistically so the
// header updates before the cart service answers; the authoritative count
// arrives with the post-write invalidation.
func (a *App) AddToCart(ctx context.Context, product api.Product, quantity int) (api.Cart, mutation.Outcome) {
	m := a.Mutations.New(func(ctx context.Context) (any, error) {
		return a.API.AddToCart(ctx, product, quantity)
	}, mutation.Options{
		SuccessMessage: "Added to cart",
		AffectedKeys:   []string{KeyCart},
		Optimistic: &mutation.Optimistic{
			Key: KeyCartCount,
			Apply: func(old any) any {
				count, _ := old.(api.CartCount)
				count.Count += quantity
				return count
			},
		},
	})

	result, outcome := m.Do(ctx)
	if result == nil {
		return api.Cart{}, outcome
	}
	return result.(api.Cart), outcome
}

// SetCartQuantity changes a line's quantity, applying it to the cached cart
// immediately.
func (a *App) SetCartQuantity(ctx context.Context, itemID string, quantity int) (api.Cart, mutation.Outcome) {
	m := a.Mutations.New(func(ctx context.Context) (any, error) {
		return a.API.UpdateCartItem(ctx, itemID, quantity)
	}, mutation.Options{
		Silent:       true,
		AffectedKeys: []string{KeyCartCount},
		Optimistic: &mutation.Optimistic{
			Key: KeyCart,
			Apply: func(old any) any {
				cart, ok := old.(api.Cart)
				if !ok {
					return old
				}
				return cartWithQuantity(cart, itemID, quantity)
			},
		},
	})

	result, outcome := m.Do(ctx)
	if result == nil {
		return api.Cart{}, outcome
	}
	return result.(api.Cart), outcome
}

// cartWithQuantity recomputes a cart locally after a quantity change. The
// totals are provisional; the service-computed cart replaces them on
// reconciliation.
func cartWithQuantity(cart api.Cart, itemID string, quantity int) api.Cart {
	items := make([]api.CartItem, len(cart.Items))
	copy(items, cart.Items)

	count := 0
	subtotal := 0.0
	for i := range items {
		if items[i].ID == itemID {
			items[i].Quantity = quantity
		}
		count += items[i].Quantity
		subtotal += items[i].ProductPrice * float64(items[i].Quantity)
	}

	cart.Items = items
	cart.ItemCount = count
	cart.Subtotal = subtotal
	cart.Total = subtotal + cart.Shipping
	return cart
}

// RemoveCartItem deletes one line.
func (a *App) RemoveCartItem(ctx context.Context, itemID string) mutation.Outcome {
	m := a.Mutations.New(func(ctx context.Context) (any, error) {
		return nil, a.API.RemoveCartItem(ctx, itemID)
	}, mutation.Options{
		SuccessMessage: "Removed from cart",
		AffectedKeys:   []string{KeyCart, KeyCartCount},
	})

	_, outcome := m.Do(ctx)
	return outcome
}

// ClearCart empties the cart.
func (a *App) ClearCart(ctx context.Context) mutation.Outcome {
	m := a.Mutations.New(func(ctx context.Context) (any, error) {
		return nil, a.API.ClearCart(ctx)
	}, mutation.Options{
		SuccessMessage: "Cart cleared",
		AffectedKeys:   []string{KeyCart, KeyCartCount},
	})

	_, outcome := m.Do(ctx)
	return outcome
}

// Checkout places an order for the current cart contents.
func (a *App) Checkout(ctx context.Context) (api.Order, mutation.Outcome, error) {
	cart, err := a.Cart(ctx)
	if err != nil {
		return api.Order{}, mutation.OutcomeRolledBack, err
	}

	items := make([]api.OrderItem, 0, len(cart.Items))
	for _, line := range cart.Items {
		items = append(items, api.OrderItem{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			Price:       line.ProductPrice,
		})
	}

	m := a.Mutations.New(func(ctx context.Context) (any, error) {
		return a.API.CreateOrder(ctx, items)
	}, mutation.Options{
		SuccessMessage: "Order placed",
		ErrorMessage:   "Could not place your order. Please try again.",
		AffectedKeys:   []string{KeyOrders, KeyCart, KeyCartCount},
	})

	result, outcome := m.Do(ctx)
	if result == nil {
		return api.Order{}, outcome, nil
	}
	return result.(api.Order), outcome, nil
}

// MarkNotificationRead flips the entry in the cached feed immediately and
// reconciles both feed and badge after the server confirms.
func (a *App) MarkNotificationRead(ctx context.Context, id string) mutation.Outcome {
	m := a.Mutations.New(func(ctx context.Context) (any, error) {
		return nil, a.API.MarkNotificationRead(ctx, id)
	}, mutation.Options{
		Silent:       true,
		AffectedKeys: []string{KeyNotificationCount},
		Optimistic: &mutation.Optimistic{
			Key: KeyNotifications,
			Apply: func(old any) any {
				notes, ok := old.([]api.Notification)
				if !ok {
					return old
				}
				updated := make([]api.Notification, len(notes))
				copy(updated, notes)
				for i := range updated {
					if updated[i].ID == id {
						updated[i].Read = true
					}
				}
				return updated
			},
		},
	})

	_, outcome := m.Do(ctx)
	return outcome
}

// UpdateProfile saves the editable profile fields.
func (a *App) UpdateProfile(ctx context.Context, name, phone string) (api.User, mutation.Outcome) {
	m := a.Mutations.New(func(ctx context.Context) (any, error) {
		return a.API.UpdateProfile(ctx, name, phone)
	}, mutation.Options{
		SuccessMessage: "Profile updated",
		AffectedKeys:   []string{KeyProfile},
	})

	result, outcome := m.Do(ctx)
	if result == nil {
		return api.User{}, outcome
	}
	return result.(api.User), outcome
}

// SubmitReview posts a review and refreshes everything that displays it.
func (a *App) SubmitReview(ctx context.Context, productID string, rating int, title, comment string) (api.Review, mutation.Outcome) {
	userID := ""
	if u, ok := a.Session.User(); ok {
		userID = u.ID
	}

	m := a.Mutations.New(func(ctx context.Context) (any, error) {
		return a.API.CreateReview(ctx, productID, userID, rating, title, comment)
	}, mutation.Options{
		SuccessMessage: "Review submitted",
		AffectedKeys:   []string{KeyReviews(productID), KeyProductDetails(productID)},
	})

	result, outcome := m.Do(ctx)
	if result == nil {
		return api.Review{}, outcome
	}
	return result.(api.Review), outcome
}
