package iam

import (
	"context"

	"github.com/tablehost/restaurantapi/internal/auth"
)

// Service provides principal resolution and session lifecycle operations.
type Service interface {
	// Establish returns the principal for a verified identity, creating the
	// operator or customer record on first login.
	//
	// Returns:
	//   - (principal, nil): existing or newly created record
	//   - (Anonymous, *domain.BadRequestError): identity carries no email
	//   - (Anonymous, *domain.UpstreamError): persistence failure
	Establish(ctx context.Context, identity auth.ExternalIdentity, class auth.PrincipalClass) (auth.Principal, error)

	// Resolve maps a session token to the principal stored with it.
	// An empty or unknown token yields auth.Anonymous and no error.
	Resolve(ctx context.Context, token string) (auth.Principal, error)

	// CreateSession stores p under a fresh token and returns the unhashed
	// token for the cookie.
	CreateSession(ctx context.Context, p auth.Principal) (string, error)

	// DestroySession removes the session for token. Unknown tokens are a no-op.
	DestroySession(ctx context.Context, token string) error
}
