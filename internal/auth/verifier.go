package auth

import (
	"context"
	"errors"
)

// ErrInvalidToken is returned when a credential fails verification for any
// reason: bad signature, expiry, or a malformed claim set.
var ErrInvalidToken = errors.New("invalid token")

// Identity is the verified principal behind a connection credential.
type Identity struct {
	UID   string
	Email string
	Name  string
}

// TokenVerifier turns an opaque credential into a verified identity.
// Implementations must honor the context deadline; a timed-out verification
// is treated as a rejection by callers.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}
