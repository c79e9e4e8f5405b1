// Package session holds the authenticated user + token pair and its durable
// mirror. The store never navigates anywhere itself; consumers that find the
// session empty decide what to do about it.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"orderdash/internal/model"
)

// AuthAPI is the single gateway operation the store needs.
type AuthAPI interface {
	Login(ctx context.Context, username, password string) (*model.LoginResponse, error)
}

type Store struct {
	mu      sync.Mutex
	storage Storage
	auth    AuthAPI

	user    *model.User
	token   string
	loading bool
}

// New builds a store and synchronously restores any persisted session before
// returning, so the first consumer read sees the final state. A missing or
// malformed record leaves the session empty.
func New(storage Storage, auth AuthAPI) *Store {
	s := &Store{storage: storage, auth: auth, loading: true}
	s.restore()
	s.mu.Lock()
	s.loading = false
	s.mu.Unlock()
	return s
}

func (s *Store) restore() {
	token, ok := s.storage.Get(KeyAccessToken)
	if !ok || token == "" {
		return
	}
	raw, ok := s.storage.Get(KeyUser)
	if !ok {
		return
	}
	var user model.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		slog.Warn("discarding malformed stored user record", "error", err)
		return
	}

	if exp, err := tokenExpiry(token); err == nil && !exp.IsZero() && exp.Before(time.Now()) {
		slog.Warn("restored token is past its expiry, server will reject it", "expired_at", exp)
	}

	s.mu.Lock()
	s.token = token
	s.user = &user
	s.mu.Unlock()
}

// Login authenticates against the remote API and persists the resulting
// session. On failure the previous session state is left untouched. A
// response without a user record falls back to a minimal one built from the
// submitted username.
func (s *Store) Login(ctx context.Context, username, password string) error {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	resp, err := s.auth.Login(ctx, username, password)
	if err != nil {
		return err
	}

	user := resp.User
	if user == nil {
		user = &model.User{ID: 0, Username: username}
	}

	s.mu.Lock()
	s.token = resp.AccessToken
	s.user = user
	s.mu.Unlock()

	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user record: %w", err)
	}
	if err := s.storage.Set(KeyAccessToken, resp.AccessToken); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	if err := s.storage.Set(KeyUser, string(raw)); err != nil {
		return fmt.Errorf("persist user record: %w", err)
	}
	return nil
}

// Logout clears both the in-memory and the durable session unconditionally.
// It is purely local; no server-side invalidation call is made.
func (s *Store) Logout() {
	s.mu.Lock()
	s.user = nil
	s.token = ""
	s.mu.Unlock()

	if err := s.storage.Delete(KeyAccessToken, KeyUser); err != nil {
		slog.Error("failed to clear stored session", "error", err)
	}
}

// Expire is the teardown path for a session-invalid signal from the API.
// Identical to Logout; named separately so call sites read correctly.
func (s *Store) Expire() {
	s.Logout()
}

// Token implements api.TokenFunc.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *Store) User() *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Active reports whether both user and token are present.
func (s *Store) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil && s.token != ""
}

func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// tokenExpiry pulls the exp claim out of a JWT without verifying it. The
// token is opaque to this client; this is best-effort, for logging only.
func tokenExpiry(token string) (time.Time, error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, err
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, err
	}
	return exp.Time, nil
}
