package functions

import (
	"context"

	"github.com/pkg/errors"
)

// Identity is the signed-in identity resolved from a session token.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// AuthVerifier resolves bearer tokens to identities. Implemented by Client
// against the auth function; mocked in tests.
type AuthVerifier interface {
	VerifyToken(ctx context.Context, token string) (Identity, error)
}

// VerifyToken validates a session token with the auth function and returns
// the authenticated identity.
func (c *Client) VerifyToken(ctx context.Context, token string) (Identity, error) {
	var identity Identity
	if err := c.postJSON(ctx, "/auth/verify", map[string]string{"token": token}, &identity); err != nil {
		return Identity{}, err
	}
	if identity.ID == "" {
		return Identity{}, errors.New("invalid token")
	}
	return identity, nil
}
