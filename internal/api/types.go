// Package api holds the typed clients for the storefront microservices. All
// of them share one transport client; the gateway routes each path prefix to
// its backing service.
package api

// Product is the catalog item shape served by the product service.
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
}

// ProductPage is one page of the catalog listing.
type ProductPage struct {
	Items []Product `json:"items"`
	Total int       `json:"total"`
}

// ProductDetails is the aggregation the product service assembles from
// product, stock and review data. The client consumes it as-is instead of
// joining the pieces itself.
type ProductDetails struct {
	Product Product  `json:"product"`
	Stock   int      `json:"stock"`
	Reviews []Review `json:"reviews"`
}

// CartItem is one line of the user's cart.
type CartItem struct {
	ID           string  `json:"id"`
	ProductID    string  `json:"product_id"`
	ProductName  string  `json:"product_name"`
	ProductPrice float64 `json:"product_price"`
	Quantity     int     `json:"quantity"`
}

// Cart is the full cart with service-computed totals.
type Cart struct {
	Items     []CartItem `json:"items"`
	ItemCount int        `json:"item_count"`
	Subtotal  float64    `json:"subtotal"`
	Shipping  float64    `json:"shipping"`
	Total     float64    `json:"total"`
}

// CartCount backs the header badge.
type CartCount struct {
	Count int `json:"count"`
}

// OrderItem is one line of a placed order.
type OrderItem struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

// Order is the order service's record.
type Order struct {
	ID        string      `json:"id"`
	UserID    string      `json:"user_id,omitempty"`
	Items     []OrderItem `json:"items"`
	Total     float64     `json:"total"`
	Status    string      `json:"status"`
	CreatedAt string      `json:"created_at"`
}

// Shipment is the shipping service's view of a dispatched order.
type Shipment struct {
	TrackingNumber    string `json:"tracking_number"`
	Carrier           string `json:"carrier,omitempty"`
	Status            string `json:"status"`
	EstimatedDelivery string `json:"estimated_delivery,omitempty"`
}

// OrderDetails is the aggregation of an order with its shipment, when one
// exists.
type OrderDetails struct {
	Order    Order     `json:"order"`
	Shipment *Shipment `json:"shipment,omitempty"`
}

// Notification is one entry of the user's notification feed.
type Notification struct {
	ID        string `json:"id"`
	Title     string `json:"title,omitempty"`
	Message   string `json:"message"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"created_at"`
}

// NotificationCount backs the header badge.
type NotificationCount struct {
	Count int `json:"count"`
}

// User is the profile shape served by the user service.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Name     string `json:"name,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// Review is one product review.
type Review struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	UserID    string `json:"user_id"`
	Rating    int    `json:"rating"`
	Title     string `json:"title,omitempty"`
	Comment   string `json:"comment,omitempty"`
	CreatedAt string `json:"created_at"`
}

// TrackingInfo is the shipping service's tracking lookup result.
type TrackingInfo struct {
	TrackingNumber string `json:"tracking_number"`
	Carrier        string `json:"carrier,omitempty"`
	Status         string `json:"status"`
	History        []struct {
		Status    string `json:"status"`
		Location  string `json:"location,omitempty"`
		Timestamp string `json:"timestamp"`
	} `json:"history,omitempty"`
}

// ShippingEstimate is the quoted cost of a prospective shipment.
type ShippingEstimate struct {
	Origin        string  `json:"origin"`
	Destination   string  `json:"destination"`
	WeightKg      float64 `json:"weight"`
	Cost          float64 `json:"cost"`
	EstimatedDays int     `json:"estimated_days"`
}

// AuthResponse is what the auth service returns on login and registration.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
