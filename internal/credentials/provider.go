// Package credentials abstracts where the bearer token comes from so the
// engine never reads ambient global state. An absent token is not an error:
// it is an instruction to send the user to authentication.
package credentials

import (
	"context"
	"strings"
	"sync"
)

// Provider supplies the bearer token for remote calls. ok is false when no
// usable token exists and the caller should route to login.
type Provider interface {
	Token(ctx context.Context) (token string, ok bool)
}

// Static holds a fixed token, useful for tests and short-lived sessions.
type Static struct {
	mu    sync.RWMutex
	token string
}

// NewStatic builds a static provider with the initial token.
func NewStatic(token string) *Static {
	return &Static{token: strings.TrimSpace(token)}
}

func (s *Static) Token(context.Context) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return "", false
	}
	return s.token, true
}

// SetToken replaces the held token; an empty value signs the session out.
func (s *Static) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = strings.TrimSpace(token)
}

// Func adapts a plain function into a Provider.
type Func func(ctx context.Context) (string, bool)

func (f Func) Token(ctx context.Context) (string, bool) {
	return f(ctx)
}
