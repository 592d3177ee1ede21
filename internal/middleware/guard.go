package middleware

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/tablehost/restaurantapi/internal/auth"
	"github.com/tablehost/restaurantapi/internal/domain"
	"github.com/tablehost/restaurantapi/internal/logging"
	"github.com/tablehost/restaurantapi/internal/policy"
)

// Evaluator runs a rule chain for one request.
type Evaluator interface {
	Evaluate(ctx context.Context, req *policy.Request, rules ...policy.Rule) (policy.Decision, error)
}

// Guard is a factory for per-route policy middleware over one collection.
type Guard struct {
	evaluator  Evaluator
	collection domain.Collection
	logger     *zap.Logger
}

// NewGuard creates a Guard for collection.
func NewGuard(evaluator Evaluator, collection domain.Collection, logger *zap.Logger) *Guard {
	return &Guard{evaluator: evaluator, collection: collection, logger: logging.OrNop(logger)}
}

// Require returns middleware that evaluates rules left to right against the
// request principal, the {id} path parameter and the query string. Denials are
// rendered with the status of their reason; evaluation errors as 500.
func (g *Guard) Require(rules ...policy.Rule) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			req := &policy.Request{
				Principal: auth.PrincipalFromContext(r.Context()),
				Resource: domain.ResourceRef{
					Collection: g.collection,
					ID:         chi.URLParam(r, "id"),
				},
				Query: r.URL.Query(),
			}

			decision, err := g.evaluator.Evaluate(r.Context(), req, rules...)
			if err != nil {
				WriteError(w, r, g.logger, err)
				return
			}
			if !decision.Allowed {
				WriteError(w, r, g.logger, decision.Err())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
