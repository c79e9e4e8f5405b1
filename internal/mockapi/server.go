// Package mockapi is a local stand-in for the remote order/auth API. It
// implements the wire contract the dashboard is built against — bearer-token
// auth, order CRUD, paginated listing, and the 4011 session-invalid code —
// over in-memory state, so development and integration tests need no real
// backend.
package mockapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/golang-jwt/jwt/v5"

	"orderdash/internal/model"
)

// codeSessionInvalid is the application-level error code the dashboard
// interprets as "login expired".
const codeSessionInvalid = 4011

type Server struct {
	store    *Store
	secret   string
	tokenTTL time.Duration
}

func NewServer(store *Store, secret string, tokenTTL time.Duration) *Server {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &Server{store: store, secret: secret, tokenTTL: tokenTTL}
}

// Handler builds the router. Auth endpoints are public; everything under
// /orders requires a valid bearer token.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", s.handleLogin)
	r.Post("/users/register", s.handleRegister)

	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Post("/orders", s.handleCreateOrder)
		r.Get("/orders", s.handleListOrders)
		r.Get("/orders/{id}", s.handleGetOrder)
		r.Patch("/orders/{id}/status", s.handleUpdateStatus)
		r.Delete("/orders/{id}", s.handleDeleteOrder)
	})

	return r
}

func (s *Server) issueToken(userID int64) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     jwt.NewNumericDate(time.Now().Add(s.tokenTTL)),
	})
	return token.SignedString([]byte(s.secret))
}

// authMiddleware rejects missing, malformed, invalid and expired tokens the
// same way: HTTP 401 with the 4011 body the dashboard keys its session
// teardown on.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			writeError(w, http.StatusUnauthorized, codeSessionInvalid, "invalid or expired token")
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(s.secret), nil
		})
		if err != nil || !token.Valid {
			writeError(w, http.StatusUnauthorized, codeSessionInvalid, "invalid or expired token")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, 0, "invalid json")
		return
	}

	user, err := s.store.Authenticate(req.Username, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, 0, "invalid username or password")
		return
	}

	tokenString, err := s.issueToken(user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, 0, "token generation failed")
		return
	}

	writeJSON(w, http.StatusOK, model.LoginResponse{
		AccessToken: tokenString,
		TokenType:   "bearer",
		User:        user,
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, 0, "invalid json")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, 0, "username and password required")
		return
	}

	user, err := s.store.Register(req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrUsernameTaken):
			writeError(w, http.StatusConflict, 0, "username already exists")
		default:
			slog.Error("register failed", "error", err)
			writeError(w, http.StatusInternalServerError, 0, "internal error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req model.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, 0, "invalid json")
		return
	}
	if strings.TrimSpace(req.CustomerName) == "" || strings.TrimSpace(req.ProductName) == "" {
		writeError(w, http.StatusBadRequest, 0, "customer_name and product_name required")
		return
	}
	if req.Quantity <= 0 || req.UnitPrice <= 0 {
		writeError(w, http.StatusBadRequest, 0, "quantity and unit_price must be greater than 0")
		return
	}

	order := s.store.CreateOrder(req)
	writeJSON(w, http.StatusCreated, order)
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := model.Filter{
		Page:         1,
		PerPage:      10,
		Status:       model.OrderStatus(q.Get("status")),
		CustomerName: q.Get("customer_name"),
	}
	if v := q.Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			f.Page = n
		}
	}
	if v := q.Get("page_size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			f.PerPage = n
		}
	}
	if f.Status != "" && !f.Status.Valid() {
		writeError(w, http.StatusBadRequest, 0, "unknown status")
		return
	}

	writeJSON(w, http.StatusOK, s.store.ListOrders(f))
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, 0, "invalid order id")
		return
	}

	order, err := s.store.GetOrder(id)
	if err != nil {
		writeError(w, http.StatusNotFound, 0, "order not found")
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, 0, "invalid order id")
		return
	}

	var req struct {
		Status model.OrderStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, 0, "invalid json")
		return
	}
	if !req.Status.Valid() {
		writeError(w, http.StatusBadRequest, 0, "unknown status")
		return
	}

	order, err := s.store.UpdateStatus(id, req.Status)
	if err != nil {
		writeError(w, http.StatusNotFound, 0, "order not found")
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (s *Server) handleDeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, 0, "invalid order id")
		return
	}

	if err := s.store.DeleteOrder(id); err != nil {
		writeError(w, http.StatusNotFound, 0, "order not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func orderID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response failed", "error", err)
	}
}

// writeError emits the API's error body. code 0 means no application-level
// code; the field is omitted so clients see a plain failure.
func writeError(w http.ResponseWriter, status, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body := struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message"`
	}{Code: code, Message: message}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("encode error response failed", "error", err)
	}
}
