package middleware

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/tablehost/restaurantapi/internal/auth"
	"github.com/tablehost/restaurantapi/internal/logging"
)

// PrincipalResolver is the part of iam.Service the session middleware needs.
type PrincipalResolver interface {
	Resolve(ctx context.Context, token string) (auth.Principal, error)
}

// NewSessionMiddleware resolves the session cookie into the request principal.
//
// Flow:
//  1. Read the session cookie (absent: anonymous, continue)
//  2. Resolve the token via the IAM service
//  3. Store principal and token in the context
//
// Unknown tokens resolve to the anonymous principal; the policy guard decides
// whether that is acceptable for the route. Store failures are rendered as 500.
func NewSessionMiddleware(resolver PrincipalResolver, cookieName string, logger *zap.Logger) func(http.Handler) http.Handler {
	logger = logging.OrNop(logger)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := auth.SessionTokenFromRequest(r, cookieName)
			if token == "" {
				next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), auth.Anonymous)))
				return
			}

			principal, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				WriteError(w, r, logger, err)
				return
			}

			ctx := auth.WithSessionToken(r.Context(), token)
			ctx = auth.WithPrincipal(ctx, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
