// Package testserver is an in-memory Smart Sales backend. Package tests run
// against it, and `salesctl demo` exposes it for local exploration. It
// implements every endpoint the client consumes, issues HS256 access
// tokens with opaque refresh tokens, and offers knobs to invalidate issued
// credentials so the refresh-and-retry path can be exercised
// deterministically.
package testserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const defaultAccessTTL = 15 * time.Minute

type accessClaims struct {
	Generation int64 `json:"gen"`
	jwt.RegisteredClaims
}

type account struct {
	User     userDoc
	Password string
}

type userDoc struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	IsStaff     bool   `json:"is_staff"`
	IsSuperuser bool   `json:"is_superuser"`
}

type customerDoc struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type productDoc struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	Price        string    `json:"price"`
	Cost         string    `json:"cost"`
	Category     string    `json:"category"`
	Unit         string    `json:"unit"`
	CreatedAt    time.Time `json:"created_at"`
	Stock        int       `json:"inventory_stock"`
	ReorderLevel int       `json:"inventory_reorder_level"`
}

type inventoryDoc struct {
	ID              int64     `json:"id"`
	Product         int64     `json:"product"`
	ProductName     string    `json:"product_name"`
	QuantityInStock int       `json:"quantity_in_stock"`
	ReorderLevel    int       `json:"reorder_level"`
	LastUpdated     time.Time `json:"last_updated"`
}

type saleDoc struct {
	ID            int64     `json:"id"`
	Customer      int64     `json:"customer"`
	CustomerName  string    `json:"customer_name,omitempty"`
	Employee      *int64    `json:"employee,omitempty"`
	EmployeeName  string    `json:"employee_name,omitempty"`
	Total         string    `json:"total"`
	Date          time.Time `json:"date"`
	Status        string    `json:"status"`
	PaymentMethod string    `json:"payment_method"`
	Notes         string    `json:"notes,omitempty"`
}

type forecastDoc struct {
	ID                int64     `json:"id"`
	Product           int64     `json:"product"`
	ProductName       string    `json:"product_name,omitempty"`
	ForecastDate      string    `json:"forecast_date"`
	PredictedQuantity int       `json:"predicted_quantity"`
	ModelUsed         string    `json:"model_used"`
	CreatedAt         time.Time `json:"created_at"`
}

// Server holds the in-memory state behind the stub API.
type Server struct {
	secret    []byte
	accessTTL time.Duration

	refreshDelay time.Duration
	refreshCalls int32

	mu         sync.Mutex
	generation int64
	nextID     int64
	accounts   map[string]*account
	refresh    map[string]string // refresh token -> username
	customers  map[int64]*customerDoc
	products   map[int64]*productDoc
	inventory  map[int64]*inventoryDoc
	sales      map[int64]*saleDoc
	forecasts  map[int64]*forecastDoc
}

// Option modifies a Server instance.
type Option func(*Server)

// WithAccessTTL sets the lifetime of issued access tokens.
func WithAccessTTL(ttl time.Duration) Option {
	return func(s *Server) {
		s.accessTTL = ttl
	}
}

// WithRefreshDelay makes the refresh endpoint sleep before responding, so
// tests can hold several callers inside one refresh window.
func WithRefreshDelay(delay time.Duration) Option {
	return func(s *Server) {
		s.refreshDelay = delay
	}
}

// New creates an empty stub backend.
func New(options ...Option) *Server {
	s := &Server{
		secret:    []byte(uuid.New().String()),
		accessTTL: defaultAccessTTL,
		accounts:  make(map[string]*account),
		refresh:   make(map[string]string),
		customers: make(map[int64]*customerDoc),
		products:  make(map[int64]*productDoc),
		inventory: make(map[int64]*inventoryDoc),
		sales:     make(map[int64]*saleDoc),
		forecasts: make(map[int64]*forecastDoc),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Handler returns the HTTP surface of the stub backend.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Post("/api/auth/login/", s.handleLogin)
	r.Post("/api/auth/register/", s.handleRegister)
	r.Post("/api/auth/token/refresh/", s.handleRefresh)
	r.Post("/api/auth/logout/", s.handleLogout)
	r.Get("/api/dashboard/", s.handleDashboard)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/api/auth/profile/", s.handleProfile)
		r.Put("/api/auth/profile/", s.handleProfileUpdate)

		r.Get("/api/customers/", s.listCustomers)
		r.Post("/api/customers/", s.createCustomer)
		r.Get("/api/customers/{id}/", s.getCustomer)
		r.Put("/api/customers/{id}/", s.updateCustomer)
		r.Delete("/api/customers/{id}/", s.deleteCustomer)

		r.Get("/api/products/", s.listProducts)
		r.Get("/api/products/low_stock/", s.listLowStock)
		r.Post("/api/products/", s.createProduct)
		r.Get("/api/products/{id}/", s.getProduct)
		r.Put("/api/products/{id}/", s.updateProduct)
		r.Delete("/api/products/{id}/", s.deleteProduct)

		r.Get("/api/sales/", s.listSales)
		r.Post("/api/sales/", s.createSale)
		r.Get("/api/sales/{id}/", s.getSale)
		r.Put("/api/sales/{id}/", s.updateSale)
		r.Delete("/api/sales/{id}/", s.deleteSale)

		r.Get("/api/inventory/", s.listInventory)
		r.Post("/api/inventory/", s.createInventory)
		r.Get("/api/inventory/{id}/", s.getInventory)
		r.Put("/api/inventory/{id}/", s.updateInventory)
		r.Delete("/api/inventory/{id}/", s.deleteInventory)

		r.Get("/api/forecasts/", s.listForecasts)
		r.Post("/api/forecasts/", s.createForecast)
		r.Get("/api/forecasts/{id}/", s.getForecast)
		r.Put("/api/forecasts/{id}/", s.updateForecast)
		r.Delete("/api/forecasts/{id}/", s.deleteForecast)
	})

	return r
}

func (s *Server) countRefresh() {
	atomic.AddInt32(&s.refreshCalls, 1)
}

// RefreshCount reports how many refresh exchanges the backend has served.
func (s *Server) RefreshCount() int32 {
	return atomic.LoadInt32(&s.refreshCalls)
}

// InvalidateAccessTokens rejects every access token issued so far while
// keeping refresh tokens valid, simulating access expiry mid-session.
func (s *Server) InvalidateAccessTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
}

// RevokeRefreshTokens drops every refresh token, so the next refresh
// exchange fails, simulating an expired refresh credential.
func (s *Server) RevokeRefreshTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh = make(map[string]string)
}

func (s *Server) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *Server) mintAccess(username string) (string, error) {
	claims := accessClaims{
		Generation: s.generation,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.accessTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Server) verifyAccess(raw string) (string, error) {
	token, err := jwt.ParseWithClaims(raw, &accessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected token signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}
	claims, ok := token.Claims.(*accessClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}
	if claims.Generation != s.generation {
		return "", fmt.Errorf("token generation superseded")
	}
	return claims.Subject, nil
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			errorJSON(w, http.StatusUnauthorized, "authorization required")
			return
		}
		s.mu.Lock()
		username, err := s.verifyAccess(strings.TrimPrefix(header, "Bearer "))
		s.mu.Unlock()
		if err != nil {
			errorJSON(w, http.StatusUnauthorized, "token is invalid or expired")
			return
		}
		r.Header.Set("X-Username", username)
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func errorJSON(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func decode(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
