// Package session holds the bearer token shared by every controller. The
// token is injected explicitly at construction instead of read from ambient
// storage at call time, which makes its availability and invalidation a
// testable dependency of each client.
package session

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the subset of token claims the console cares about.
type Claims struct {
	Subject   string
	Role      string
	ExpiresAt time.Time
}

// Session is a process-wide, concurrency-safe token holder. Controllers read
// it on every request; only the login/logout flow writes it.
type Session struct {
	mu    sync.RWMutex
	token string
}

// New creates a session holding the given bearer token. An empty token is
// valid and means requests go out unauthenticated.
func New(token string) *Session {
	return &Session{token: strings.TrimSpace(token)}
}

// LoadFile reads a token from a file, trimming surrounding whitespace.
func LoadFile(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read token file: %w", err)
	}
	return New(string(data)), nil
}

// Token returns the current bearer token, possibly empty.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// SetToken replaces the token, e.g. after a fresh login.
func (s *Session) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = strings.TrimSpace(token)
}

// Clear drops the token, reverting to unauthenticated requests.
func (s *Session) Clear() {
	s.SetToken("")
}

// Claims decodes the token's claims without verifying the signature. The
// server is the authority on token validity; the client only inspects claims
// for display and expiry warnings.
func (s *Session) Claims() (*Claims, error) {
	tok := s.Token()
	if tok == "" {
		return nil, fmt.Errorf("no token in session")
	}

	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(tok, claims); err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	out := &Claims{}
	if sub, err := claims.GetSubject(); err == nil {
		out.Subject = sub
	}
	if role, ok := claims["role"].(string); ok {
		out.Role = role
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}

// Expired reports whether the token carries an expiry in the past. Tokens
// without claims or without an exp are treated as not expired; the server
// will reject them if they are invalid.
func (s *Session) Expired(now time.Time) bool {
	claims, err := s.Claims()
	if err != nil || claims.ExpiresAt.IsZero() {
		return false
	}
	return claims.ExpiresAt.Before(now)
}
