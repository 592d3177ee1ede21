package telemetry

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ServerMetrics holds metric instruments for HTTP server telemetry.
type ServerMetrics struct {
	RequestCounter  metric.Int64Counter
	RequestDuration metric.Float64Histogram
	ErrorCounter    metric.Int64Counter
}

// NewServerMetrics creates the HTTP instruments on the global meter provider.
func NewServerMetrics() (*ServerMetrics, error) {
	meter := otel.Meter("restaurantapi/http")

	requestCounter, err := meter.Int64Counter(
		"http.server.request.count",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("HTTP request duration"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000),
	)
	if err != nil {
		return nil, err
	}

	errorCounter, err := meter.Int64Counter(
		"http.server.error.count",
		metric.WithDescription("Total number of HTTP server errors (5xx)"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	return &ServerMetrics{
		RequestCounter:  requestCounter,
		RequestDuration: requestDuration,
		ErrorCounter:    errorCounter,
	}, nil
}

// RecordRequest records an HTTP request with method, route, status, and duration.
func (m *ServerMetrics) RecordRequest(ctx context.Context, method, route, status string, durationMs float64) {
	attrs := metric.WithAttributes(
		attribute.String(AttrHTTPMethod, method),
		attribute.String(AttrHTTPRoute, route),
		attribute.String(AttrHTTPStatusCode, status),
	)

	m.RequestCounter.Add(ctx, 1, attrs)
	m.RequestDuration.Record(ctx, durationMs, attrs)
	if len(status) > 0 && status[0] == '5' {
		m.ErrorCounter.Add(ctx, 1, attrs)
	}
}

// Middleware records every request against its chi route pattern.
func (m *ServerMetrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.RecordRequest(r.Context(), r.Method, route, strconv.Itoa(status),
			float64(time.Since(start).Microseconds())/1000)
	})
}

// AuthMetrics counts login outcomes and policy denials.
type AuthMetrics struct {
	LoginCounter  metric.Int64Counter
	DenialCounter metric.Int64Counter
}

// NewAuthMetrics creates the authentication and authorization instruments.
func NewAuthMetrics() (*AuthMetrics, error) {
	meter := otel.Meter("restaurantapi/auth")

	logins, err := meter.Int64Counter(
		"auth.login.count",
		metric.WithDescription("Completed login attempts by principal class and outcome"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, err
	}

	denials, err := meter.Int64Counter(
		"auth.policy.denial.count",
		metric.WithDescription("Policy denials by rule and reason"),
		metric.WithUnit("{denial}"),
	)
	if err != nil {
		return nil, err
	}

	return &AuthMetrics{LoginCounter: logins, DenialCounter: denials}, nil
}

// RecordLogin records a completed OAuth callback.
func (a *AuthMetrics) RecordLogin(ctx context.Context, class string, success bool) {
	if a == nil {
		return
	}
	a.LoginCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrPrincipalClass, class),
		attribute.Bool(AttrAuthSuccess, success),
	))
}

// RecordDenial records a policy deny.
func (a *AuthMetrics) RecordDenial(ctx context.Context, rule, reason string) {
	if a == nil {
		return
	}
	a.DenialCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrPolicyRule, rule),
		attribute.String(AttrPolicyReason, reason),
	))
}

const (
	AttrHTTPMethod     = "http.method"
	AttrHTTPRoute      = "http.route"
	AttrHTTPStatusCode = "http.status_code"

	AttrAuthSuccess = "auth.success"
)
