// Package testhelpers provides an in-memory storefront gateway for tests:
// every microservice contract the client consumes, backed by seeded data,
// with per-route request counting so tests can assert deduplication.
package testhelpers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/justinas/alice"
)

// Product mirrors the product service shape.
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
}

// CartItem mirrors the cart service shape.
type CartItem struct {
	ID           string  `json:"id"`
	ProductID    string  `json:"product_id"`
	ProductName  string  `json:"product_name"`
	ProductPrice float64 `json:"product_price"`
	Quantity     int     `json:"quantity"`
}

// Order mirrors the order service shape.
type Order struct {
	ID        string      `json:"id"`
	UserID    string      `json:"user_id"`
	Items     []OrderItem `json:"items"`
	Total     float64     `json:"total"`
	Status    string      `json:"status"`
	CreatedAt string      `json:"created_at"`
}

type OrderItem struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

// Notification mirrors the notification service shape.
type Notification struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"created_at"`
}

// Review mirrors the review service shape.
type Review struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	UserID    string `json:"user_id"`
	Rating    int    `json:"rating"`
	Title     string `json:"title"`
	Comment   string `json:"comment"`
	CreatedAt string `json:"created_at"`
}

type account struct {
	id       string
	username string
	email    string
	password string
	name     string
	phone    string
}

// Gateway is the fake reverse proxy plus every backing service.
type Gateway struct {
	srv *httptest.Server

	mu            sync.Mutex
	accounts      map[string]*account // by username
	tokens        map[string]*account // live bearer tokens
	products      []Product
	carts         map[string][]CartItem // by user id
	orders        map[string][]Order
	notifications map[string][]Notification
	reviews       []Review
	requests      map[string]int
	nextID        int
}

// NewGateway starts the fake gateway with the standard seed data: user
// alice/password123 and a small catalog.
func NewGateway() *Gateway {
	g := &Gateway{
		accounts:      make(map[string]*account),
		tokens:        make(map[string]*account),
		carts:         make(map[string][]CartItem),
		orders:        make(map[string][]Order),
		notifications: make(map[string][]Notification),
		requests:      make(map[string]int),
	}

	g.accounts["alice"] = &account{id: "user-1", username: "alice", email: "alice@example.com", password: "password123", name: "Alice"}
	g.products = []Product{
		{ID: "prod-00001", Name: "Wireless Headphones", Description: "High quality wireless headphones for everyday use.", Price: 49.99, Stock: 12},
		{ID: "prod-00002", Name: "Smart Watch", Description: "High quality smart watch for everyday use.", Price: 129.99, Stock: 7},
		{ID: "prod-00003", Name: "Laptop Stand", Description: "High quality laptop stand for everyday use.", Price: 24.50, Stock: 30},
	}
	g.notifications["user-1"] = []Notification{
		{ID: "note-1", Title: "Welcome", Message: "Welcome to the store!", CreatedAt: time.Now().UTC().Format(time.RFC3339)},
		{ID: "note-2", Title: "Sale", Message: "Headphones are on sale.", CreatedAt: time.Now().UTC().Format(time.RFC3339)},
	}

	counted := alice.New(g.countRequests, recoverPanics)
	authed := counted.Append(g.requireAuth)

	mux := http.NewServeMux()
	mux.Handle("POST /api/v1/auth/login", counted.Then(http.HandlerFunc(g.handleLogin)))
	mux.Handle("POST /api/v1/auth/register", counted.Then(http.HandlerFunc(g.handleRegister)))
	mux.Handle("GET /api/v1/products", counted.Then(http.HandlerFunc(g.handleProducts)))
	mux.Handle("GET /api/v1/products/{id}", counted.Then(http.HandlerFunc(g.handleProduct)))
	mux.Handle("GET /api/v1/products/{id}/details", counted.Then(http.HandlerFunc(g.handleProductDetails)))
	mux.Handle("GET /api/v1/reviews", counted.Then(http.HandlerFunc(g.handleReviews)))
	mux.Handle("GET /api/v1/shipping/track", counted.Then(http.HandlerFunc(g.handleTrack)))
	mux.Handle("GET /api/v1/shipping/estimate", counted.Then(http.HandlerFunc(g.handleEstimate)))

	mux.Handle("GET /api/v1/cart", authed.Then(g.withUser(g.handleGetCart)))
	mux.Handle("GET /api/v1/cart/count", authed.Then(g.withUser(g.handleCartCount)))
	mux.Handle("POST /api/v1/cart", authed.Then(g.withUser(g.handleAddToCart)))
	mux.Handle("PATCH /api/v1/cart/items/{id}", authed.Then(g.withUser(g.handleUpdateCartItem)))
	mux.Handle("DELETE /api/v1/cart/items/{id}", authed.Then(g.withUser(g.handleRemoveCartItem)))
	mux.Handle("DELETE /api/v1/cart", authed.Then(g.withUser(g.handleClearCart)))
	mux.Handle("GET /api/v1/orders", authed.Then(g.withUser(g.handleOrders)))
	mux.Handle("GET /api/v1/orders/{id}", authed.Then(g.withUser(g.handleOrder)))
	mux.Handle("GET /api/v1/orders/{id}/details", authed.Then(g.withUser(g.handleOrderDetails)))
	mux.Handle("POST /api/v1/orders", authed.Then(g.withUser(g.handleCreateOrder)))
	mux.Handle("GET /api/v1/notifications", authed.Then(g.withUser(g.handleNotifications)))
	mux.Handle("GET /api/v1/notifications/{id}", authed.Then(g.withUser(g.handleNotification)))
	mux.Handle("GET /api/v1/notifications/count", authed.Then(g.withUser(g.handleNotificationCount)))
	mux.Handle("PATCH /api/v1/notifications/{id}", authed.Then(g.withUser(g.handleMarkRead)))
	mux.Handle("GET /api/v1/users/profile", authed.Then(g.withUser(g.handleProfile)))
	mux.Handle("GET /api/v1/users/{id}", authed.Then(g.withUser(g.handleUserByID)))
	mux.Handle("PUT /api/v1/users/profile", authed.Then(g.withUser(g.handleUpdateProfile)))
	mux.Handle("POST /api/v1/reviews", authed.Then(g.withUser(g.handleCreateReview)))

	g.srv = httptest.NewServer(mux)
	return g
}

// URL returns the gateway base URL including the version prefix.
func (g *Gateway) URL() string {
	return g.srv.URL + "/api/v1"
}

func (g *Gateway) Close() {
	g.srv.Close()
}

// Requests returns how many requests matched "METHOD /path".
func (g *Gateway) Requests(methodAndPath string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.requests[methodAndPath]
}

// RevokeAllTokens makes every issued token invalid, simulating server-side
// session expiry.
func (g *Gateway) RevokeAllTokens() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.tokens = make(map[string]*account)
}

// SeedProducts replaces the catalog.
func (g *Gateway) SeedProducts(products []Product) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.products = products
}

// middleware

func (g *Gateway) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		g.mu.Lock()
		g.requests[r.Method+" "+strings.TrimPrefix(r.URL.Path, "/api/v1")]++
		g.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				writeJSONError(w, http.StatusInternalServerError, "Internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (g *Gateway) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if token == "" {
			writeJSONError(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		g.mu.Lock()
		_, ok := g.tokens[token]
		g.mu.Unlock()
		if !ok {
			writeJSONError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withUser resolves the token to its account before the handler runs.
func (g *Gateway) withUser(handler func(w http.ResponseWriter, r *http.Request, user *account)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		g.mu.Lock()
		user := g.tokens[token]
		g.mu.Unlock()
		if user == nil {
			writeJSONError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		handler(w, r, user)
	})
}

// auth handlers

func (g *Gateway) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	acct, ok := g.accounts[body.Username]
	if !ok || acct.password != body.Password {
		writeJSONError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token := fmt.Sprintf("tok-%s-%d", acct.username, g.nextIDLocked())
	g.tokens[token] = acct

	writeJSON(w, map[string]any{"token": token, "user": acct.public()})
}

func (g *Gateway) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !strings.Contains(body.Email, "@") {
		writeJSONError(w, http.StatusBadRequest, "Invalid email address")
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.accounts[body.Username]; exists {
		writeJSONError(w, http.StatusConflict, "User already exists")
		return
	}

	acct := &account{
		id:       fmt.Sprintf("user-%d", g.nextIDLocked()),
		username: body.Username,
		email:    body.Email,
		password: body.Password,
	}
	g.accounts[body.Username] = acct

	token := fmt.Sprintf("tok-%s-%d", acct.username, g.nextIDLocked())
	g.tokens[token] = acct

	writeJSON(w, map[string]any{"token": token, "user": acct.public()})
}

// product handlers

func (g *Gateway) handleProducts(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 30
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	start := (page - 1) * limit
	end := min(start+limit, len(g.products))
	items := []Product{}
	if start < len(g.products) {
		items = g.products[start:end]
	}

	writeJSON(w, map[string]any{"items": items, "total": len(g.products)})
}

func (g *Gateway) findProductLocked(id string) (Product, bool) {
	for _, p := range g.products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

func (g *Gateway) handleProduct(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, ok := g.findProductLocked(r.PathValue("id"))
	if !ok {
		writeJSONError(w, http.StatusNotFound, "product not found")
		return
	}
	writeJSON(w, p)
}

func (g *Gateway) handleProductDetails(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, ok := g.findProductLocked(r.PathValue("id"))
	if !ok {
		writeJSONError(w, http.StatusNotFound, "product not found")
		return
	}

	reviews := []Review{}
	for _, rv := range g.reviews {
		if rv.ProductID == p.ID {
			reviews = append(reviews, rv)
		}
	}

	writeJSON(w, map[string]any{"product": p, "stock": p.Stock, "reviews": reviews})
}

// cart handlers

func (g *Gateway) cartTotalsLocked(items []CartItem) map[string]any {
	count := 0
	subtotal := 0.0
	for _, item := range items {
		count += item.Quantity
		subtotal += item.ProductPrice * float64(item.Quantity)
	}
	shipping := 0.0
	if subtotal > 0 && subtotal < 100 {
		shipping = 9.99
	}
	return map[string]any{
		"items":      items,
		"item_count": count,
		"subtotal":   subtotal,
		"shipping":   shipping,
		"total":      subtotal + shipping,
	}
}

func (g *Gateway) handleGetCart(w http.ResponseWriter, r *http.Request, user *account) {
	g.mu.Lock()
	defer g.mu.Unlock()
	writeJSON(w, g.cartTotalsLocked(g.cartLocked(user)))
}

func (g *Gateway) cartLocked(user *account) []CartItem {
	if g.carts[user.id] == nil {
		g.carts[user.id] = []CartItem{}
	}
	return g.carts[user.id]
}

func (g *Gateway) handleCartCount(w http.ResponseWriter, r *http.Request, user *account) {
	g.mu.Lock()
	defer g.mu.Unlock()

	count := 0
	for _, item := range g.cartLocked(user) {
		count += item.Quantity
	}
	writeJSON(w, map[string]int{"count": count})
}

func (g *Gateway) handleAddToCart(w http.ResponseWriter, r *http.Request, user *account) {
	var body struct {
		ProductID    string  `json:"product_id"`
		ProductName  string  `json:"product_name"`
		ProductPrice float64 `json:"product_price"`
		Quantity     int     `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.ProductID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Quantity < 1 {
		body.Quantity = 1
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	items := g.cartLocked(user)
	for i := range items {
		if items[i].ProductID == body.ProductID {
			items[i].Quantity += body.Quantity
			writeJSON(w, g.cartTotalsLocked(items))
			return
		}
	}

	items = append(items, CartItem{
		ID:           fmt.Sprintf("item-%d", g.nextIDLocked()),
		ProductID:    body.ProductID,
		ProductName:  body.ProductName,
		ProductPrice: body.ProductPrice,
		Quantity:     body.Quantity,
	})
	g.carts[user.id] = items
	writeJSON(w, g.cartTotalsLocked(items))
}

func (g *Gateway) handleUpdateCartItem(w http.ResponseWriter, r *http.Request, user *account) {
	var body struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Quantity < 1 {
		writeJSONError(w, http.StatusBadRequest, "quantity must be at least 1")
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	items := g.cartLocked(user)
	for i := range items {
		if items[i].ID == r.PathValue("id") {
			items[i].Quantity = body.Quantity
			writeJSON(w, g.cartTotalsLocked(items))
			return
		}
	}
	writeJSONError(w, http.StatusNotFound, "cart item not found")
}

func (g *Gateway) handleRemoveCartItem(w http.ResponseWriter, r *http.Request, user *account) {
	g.mu.Lock()
	defer g.mu.Unlock()

	items := g.cartLocked(user)
	for i := range items {
		if items[i].ID == r.PathValue("id") {
			g.carts[user.id] = append(items[:i], items[i+1:]...)
			writeJSON(w, g.cartTotalsLocked(g.carts[user.id]))
			return
		}
	}
	writeJSONError(w, http.StatusNotFound, "cart item not found")
}

func (g *Gateway) handleClearCart(w http.ResponseWriter, r *http.Request, user *account) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.carts[user.id] = []CartItem{}
	writeJSON(w, g.cartTotalsLocked(nil))
}

// order handlers

func (g *Gateway) handleOrders(w http.ResponseWriter, r *http.Request, user *account) {
	g.mu.Lock()
	defer g.mu.Unlock()

	orders := g.orders[user.id]
	if orders == nil {
		orders = []Order{}
	}
	writeJSON(w, orders)
}

func (g *Gateway) findOrderLocked(user *account, id string) (Order, bool) {
	for _, o := range g.orders[user.id] {
		if o.ID == id {
			return o, true
		}
	}
	return Order{}, false
}

func (g *Gateway) handleOrder(w http.ResponseWriter, r *http.Request, user *account) {
	g.mu.Lock()
	defer g.mu.Unlock()

	o, ok := g.findOrderLocked(user, r.PathValue("id"))
	if !ok {
		writeJSONError(w, http.StatusNotFound, "Order not found")
		return
	}
	writeJSON(w, o)
}

func (g *Gateway) handleOrderDetails(w http.ResponseWriter, r *http.Request, user *account) {
	g.mu.Lock()
	defer g.mu.Unlock()

	o, ok := g.findOrderLocked(user, r.PathValue("id"))
	if !ok {
		writeJSONError(w, http.StatusNotFound, "Order not found")
		return
	}

	details := map[string]any{"order": o}
	if o.Status == "shipped" {
		details["shipment"] = map[string]string{
			"tracking_number": "TRK-" + o.ID,
			"carrier":         "FastShip",
			"status":          "in_transit",
		}
	}
	writeJSON(w, details)
}

func (g *Gateway) handleCreateOrder(w http.ResponseWriter, r *http.Request, user *account) {
	var body struct {
		Items []OrderItem `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body.Items) == 0 {
		writeJSONError(w, http.StatusBadRequest, "Invalid order")
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	total := 0.0
	for _, item := range body.Items {
		total += item.Price * float64(item.Quantity)
	}

	order := Order{
		ID:        fmt.Sprintf("order-%d", g.nextIDLocked()),
		UserID:    user.id,
		Items:     body.Items,
		Total:     total,
		Status:    "pending",
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	g.orders[user.id] = append(g.orders[user.id], order)

	// placing an order empties the cart, like the real order service
	g.carts[user.id] = []CartItem{}

	writeJSON(w, order)
}

// notification handlers

func (g *Gateway) handleNotifications(w http.ResponseWriter, r *http.Request, user *account) {
	g.mu.Lock()
	defer g.mu.Unlock()

	notes := g.notifications[user.id]
	if notes == nil {
		notes = []Notification{}
	}
	writeJSON(w, notes)
}

func (g *Gateway) handleNotificationCount(w http.ResponseWriter, r *http.Request, user *account) {
	g.mu.Lock()
	defer g.mu.Unlock()

	count := 0
	for _, n := range g.notifications[user.id] {
		if !n.Read {
			count++
		}
	}
	writeJSON(w, map[string]int{"count": count})
}

func (g *Gateway) handleNotification(w http.ResponseWriter, r *http.Request, user *account) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, n := range g.notifications[user.id] {
		if n.ID == r.PathValue("id") {
			writeJSON(w, n)
			return
		}
	}
	writeJSONError(w, http.StatusNotFound, "notification not found")
}

func (g *Gateway) handleMarkRead(w http.ResponseWriter, r *http.Request, user *account) {
	g.mu.Lock()
	defer g.mu.Unlock()

	notes := g.notifications[user.id]
	for i := range notes {
		if notes[i].ID == r.PathValue("id") {
			notes[i].Read = true
			writeJSON(w, notes[i])
			return
		}
	}
	writeJSONError(w, http.StatusNotFound, "notification not found")
}

// user handlers

func (g *Gateway) handleProfile(w http.ResponseWriter, r *http.Request, user *account) {
	g.mu.Lock()
	defer g.mu.Unlock()
	writeJSON(w, user.public())
}

func (g *Gateway) handleUserByID(w http.ResponseWriter, r *http.Request, user *account) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, acct := range g.accounts {
		if acct.id == r.PathValue("id") {
			writeJSON(w, acct.public())
			return
		}
	}
	writeJSONError(w, http.StatusNotFound, "User not found")
}

func (g *Gateway) handleUpdateProfile(w http.ResponseWriter, r *http.Request, user *account) {
	var body struct {
		Name  string `json:"name"`
		Phone string `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	user.name = body.Name
	user.phone = body.Phone
	writeJSON(w, user.public())
}

// review handlers

func (g *Gateway) handleReviews(w http.ResponseWriter, r *http.Request) {
	productID := r.URL.Query().Get("product_id")

	g.mu.Lock()
	defer g.mu.Unlock()

	reviews := []Review{}
	for _, rv := range g.reviews {
		if rv.ProductID == productID {
			reviews = append(reviews, rv)
		}
	}
	writeJSON(w, reviews)
}

func (g *Gateway) handleCreateReview(w http.ResponseWriter, r *http.Request, user *account) {
	var body struct {
		ProductID string `json:"product_id"`
		UserID    string `json:"user_id"`
		Rating    int    `json:"rating"`
		Title     string `json:"title"`
		Comment   string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.ProductID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	for _, rv := range g.reviews {
		if rv.ProductID == body.ProductID && rv.UserID == user.id {
			writeJSONError(w, http.StatusConflict, "review already exists for this product")
			return
		}
	}

	review := Review{
		ID:        fmt.Sprintf("review-%d", g.nextIDLocked()),
		ProductID: body.ProductID,
		UserID:    user.id,
		Rating:    body.Rating,
		Title:     body.Title,
		Comment:   body.Comment,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	g.reviews = append(g.reviews, review)
	writeJSON(w, review)
}

// shipping handlers

func (g *Gateway) handleTrack(w http.ResponseWriter, r *http.Request) {
	trackingNumber := r.URL.Query().Get("tracking_number")
	if trackingNumber == "" {
		writeJSONError(w, http.StatusBadRequest, "tracking_number is required")
		return
	}

	writeJSON(w, map[string]any{
		"tracking_number": trackingNumber,
		"carrier":         "FastShip",
		"status":          "in_transit",
	})
}

func (g *Gateway) handleEstimate(w http.ResponseWriter, r *http.Request) {
	origin := r.URL.Query().Get("origin")
	destination := r.URL.Query().Get("destination")
	weight, _ := strconv.ParseFloat(r.URL.Query().Get("weight"), 64)
	if origin == "" || destination == "" || weight <= 0 {
		writeJSONError(w, http.StatusBadRequest, "origin, destination and weight are required")
		return
	}

	writeJSON(w, map[string]any{
		"origin":         origin,
		"destination":    destination,
		"weight":         weight,
		"cost":           5.0 + weight*1.5,
		"estimated_days": 3,
	})
}

// helpers

func (a *account) public() map[string]string {
	return map[string]string{
		"id":       a.id,
		"username": a.username,
		"email":    a.email,
		"name":     a.name,
		"phone":    a.phone,
	}
}

func (g *Gateway) nextIDLocked() int {
	g.nextID++
	return g.nextID
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
