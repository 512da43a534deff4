package credentials

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// expirySkew pads expiry checks so a token about to lapse mid-request is
// already treated as gone.
const expirySkew = 30 * time.Second

// ExpiryAware decorates a Provider and filters out bearer tokens whose JWT
// exp claim has passed. The signature is not verified here: the backend is
// the authority, this only avoids a doomed 401 round trip and turns the
// expired session into a login redirect immediately.
type ExpiryAware struct {
	inner  Provider
	parser *jwt.Parser
	now    func() time.Time
}

// NewExpiryAware wraps the provider with local expiry filtering.
func NewExpiryAware(inner Provider) *ExpiryAware {
	return &ExpiryAware{
		inner:  inner,
		parser: jwt.NewParser(),
		now:    time.Now,
	}
}

func (e *ExpiryAware) Token(ctx context.Context) (string, bool) {
	if e == nil || e.inner == nil {
		return "", false
	}
	token, ok := e.inner.Token(ctx)
	if !ok {
		return "", false
	}

	claims := jwt.RegisteredClaims{}
	if _, _, err := e.parser.ParseUnverified(token, &claims); err != nil {
		// Opaque non-JWT tokens pass through untouched.
		return token, true
	}
	if claims.ExpiresAt != nil && !claims.ExpiresAt.After(e.now().Add(expirySkew)) {
		return "", false
	}
	return token, true
}
