package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/tablehost/restaurantapi/internal/auth"
	"github.com/tablehost/restaurantapi/internal/domain"
	"github.com/tablehost/restaurantapi/internal/logging"
	restomiddleware "github.com/tablehost/restaurantapi/internal/middleware"
	"github.com/tablehost/restaurantapi/internal/policy"
	"github.com/tablehost/restaurantapi/internal/services/iam"
	"github.com/tablehost/restaurantapi/internal/services/records"
	"github.com/tablehost/restaurantapi/internal/telemetry"
)

// DefaultSessionCookieName is used when RouterOptions.SessionCookieName is empty.
const DefaultSessionCookieName = "resto.session"

// RouterOptions controls the construction of the HTTP router.
// Engine, IAM and the four record services are required.
type RouterOptions struct {
	Engine    *policy.Engine
	IAM       iam.Service
	Operators *records.Operators
	Customers *records.Customers
	Inventory *records.Inventory
	Orders    *records.Orders

	// Providers are the login flows, at most one per principal class. Empty
	// disables the /auth routes.
	Providers []auth.IdentityProvider

	SessionCookieName string
	CORSOptions       *cors.Options
	Logger            *zap.Logger
	Metrics           *telemetry.ServerMetrics
	Middleware        []func(http.Handler) http.Handler
	HealthHandler     http.HandlerFunc

	// APIDocs is mounted at APIDocsPath when set.
	APIDocs http.Handler
}

// APIDocsPath is where the OpenAPI document and its UI are served.
const APIDocsPath = "/api-docs"

// DefaultCORSOptions returns the CORS policy for browser clients. The API is
// public to any origin unless origins are configured.
func DefaultCORSOptions(origins []string) cors.Options {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Origin", "X-Requested-With", "Content-Type", "Accept", "Z-Key"},
		AllowCredentials: origins[0] != "*",
		MaxAge:           300,
	}
}

func defaultHealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// NewRouter assembles a chi.Router with shared middleware, CORS policy,
// session resolution and the record routes mounted behind their policy chains.
func NewRouter(opts RouterOptions) chi.Router {
	logger := logging.OrNop(opts.Logger)
	cookieName := opts.SessionCookieName
	if cookieName == "" {
		cookieName = DefaultSessionCookieName
	}

	r := chi.NewRouter()

	// Baseline middleware shared across entrypoints.
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware)
	}

	corsCfg := DefaultCORSOptions(nil)
	if opts.CORSOptions != nil {
		corsCfg = *opts.CORSOptions
	}
	r.Use(cors.Handler(corsCfg))

	for _, mw := range opts.Middleware {
		if mw != nil {
			r.Use(mw)
		}
	}

	r.Use(restomiddleware.NewSessionMiddleware(opts.IAM, cookieName, logger))

	healthHandler := opts.HealthHandler
	if healthHandler == nil {
		healthHandler = defaultHealthHandler
	}
	r.Get("/health", healthHandler)
	r.Get("/", handleIndex)
	if opts.APIDocs != nil {
		r.Mount(APIDocsPath, opts.APIDocs)
	}

	if len(opts.Providers) > 0 {
		ah := &authHandlers{iam: opts.IAM, cookieName: cookieName, logger: logger}
		for _, provider := range opts.Providers {
			mountAuth(r, provider, ah)
		}
	} else {
		logger.Warn("no identity providers configured; /auth routes are not mounted")
	}

	e := opts.Engine
	rh := &recordHandlers{
		operators: opts.Operators,
		customers: opts.Customers,
		inventory: opts.Inventory,
		orders:    opts.Orders,
		logger:    logger,
	}

	admin := restomiddleware.NewGuard(e, domain.CollectionOperators, logger)
	r.Route("/admin", func(r chi.Router) {
		level1 := admin.Require(policy.RequireSession, e.RequireOperatorAny, e.RequireOperatorLevel1)
		level1ByID := admin.Require(policy.ValidPathID, policy.RequireSession, e.RequireOperatorAny, e.RequireOperatorLevel1)

		r.With(level1).Get("/", rh.listOperators)
		r.With(level1).Post("/", rh.createOperator)
		r.With(level1ByID).Get("/{id}", rh.getOperator)
		r.With(level1ByID).Put("/{id}", rh.updateOperator)
		r.With(level1ByID).Delete("/{id}", rh.deleteOperator)
	})

	users := restomiddleware.NewGuard(e, domain.CollectionCustomers, logger)
	r.Route("/user", func(r chi.Router) {
		r.With(users.Require(policy.RequireSession, e.RequireOperatorAny)).Get("/", rh.listCustomers)
		r.With(users.Require(policy.RequireSession, e.RequireSelfOrLevel1)).Post("/", rh.createCustomer)
		r.With(users.Require(policy.ValidPathID, policy.RequireSession, e.RequireOperatorOrSelf)).Get("/{id}", rh.getCustomer)

		selfOrLevel1 := users.Require(policy.ValidPathID, policy.RequireSession, e.RequireSelfOrLevel1)
		r.With(selfOrLevel1).Put("/{id}", rh.updateCustomer)
		r.With(selfOrLevel1).Delete("/{id}", rh.deleteCustomer)
	})

	orders := restomiddleware.NewGuard(e, domain.CollectionOrders, logger)
	r.Route("/order", func(r chi.Router) {
		byQueryOwner := orders.Require(policy.ValidQueryOwnerID, policy.RequireSession, e.RequireOperatorOrMatchingQueryOwner)
		byOwner := orders.Require(policy.ValidPathID, policy.RequireSession, e.RequireOperatorOrResourceOwner)

		r.With(orders.Require(policy.RequireSession, e.RequireOperatorAny)).Get("/", rh.listOrders)
		r.With(byQueryOwner).Get("/customer", rh.listOrdersByOwner)
		r.With(byQueryOwner).Post("/", rh.createOrder)
		r.With(byOwner).Get("/{id}", rh.getOrder)
		r.With(byOwner).Put("/{id}", rh.updateOrder)
		r.With(byOwner).Delete("/{id}", rh.deleteOrder)
	})

	inventory := restomiddleware.NewGuard(e, domain.CollectionInventory, logger)
	r.Route("/inventory", func(r chi.Router) {
		operatorAny := inventory.Require(policy.RequireSession, e.RequireOperatorAny)
		operatorAnyByID := inventory.Require(policy.ValidPathID, policy.RequireSession, e.RequireOperatorAny)

		r.Get("/", rh.listInventory)
		r.With(inventory.Require(policy.ValidPathID)).Get("/{id}", rh.getInventory)
		r.With(operatorAny).Post("/", rh.createInventory)
		r.With(operatorAnyByID).Put("/{id}", rh.updateInventory)
		r.With(operatorAnyByID).Delete("/{id}", rh.deleteInventory)
	})

	return r
}

// mountAuth mounts login, callback, success and logout for one provider under
// /auth/admin (operators) or /auth/customer.
func mountAuth(r chi.Router, provider auth.IdentityProvider, ah *authHandlers) {
	segment := authSegment(provider.Class())
	r.Route("/auth/"+segment, func(r chi.Router) {
		r.Method(http.MethodGet, "/login", provider.BeginLogin())
		r.Method(http.MethodGet, "/google/callback", provider.CompleteLogin(ah.onIdentity(provider.Class(), segment)))
		r.Get("/success", ah.success)
		r.Get("/logout", ah.logout)
	})
}

func authSegment(class auth.PrincipalClass) string {
	if class == auth.ClassOperator {
		return "admin"
	}
	return "customer"
}
