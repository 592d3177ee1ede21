package policy

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/tablehost/restaurantapi/internal/auth"
	"github.com/tablehost/restaurantapi/internal/telemetry"
)

// Rule evaluates one condition. A non-nil error is an evaluation failure
// (for example a persistence read failing), never a deny.
type Rule func(ctx context.Context, req *Request) (Decision, error)

// TierChecker answers tier membership questions.
type TierChecker interface {
	Allows(p auth.Principal, tier auth.Tier) (bool, error)
}

// OwnerResolver finds the customer owning an order. found is false when the
// order does not exist.
type OwnerResolver interface {
	OrderOwner(ctx context.Context, orderID string) (ownerID string, found bool, err error)
}

// Engine builds rules bound to its collaborators and evaluates chains of them.
type Engine struct {
	tiers   TierChecker
	owners  OwnerResolver
	logger  *zap.Logger
	metrics *telemetry.AuthMetrics
}

// NewEngine creates a policy engine. logger and metrics may be nil.
func NewEngine(tiers TierChecker, owners OwnerResolver, logger *zap.Logger, metrics *telemetry.AuthMetrics) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{tiers: tiers, owners: owners, logger: logger, metrics: metrics}
}

// Chain composes rules left to right into one rule. The first deny or error
// stops evaluation.
func Chain(rules ...Rule) Rule {
	return func(ctx context.Context, req *Request) (Decision, error) {
		last := Allow("")
		for _, rule := range rules {
			d, err := rule(ctx, req)
			if err != nil {
				return Decision{Rule: d.Rule}, err
			}
			if !d.Allowed {
				return d, nil
			}
			last = d
		}
		return last, nil
	}
}

// Evaluate runs the rules as a chain and records the outcome. Denials are logged
// with their rule and reason.
func (e *Engine) Evaluate(ctx context.Context, req *Request, rules ...Rule) (Decision, error) {
	ctx, span := telemetry.StartSpan(ctx, telemetry.TracerPolicy, "policy.Evaluate",
		attribute.String(telemetry.AttrCollection, string(req.Resource.Collection)),
		attribute.String(telemetry.AttrResourceID, req.Resource.ID),
		attribute.String(telemetry.AttrPrincipalID, req.Principal.ID),
		attribute.String(telemetry.AttrPrincipalClass, string(req.Principal.Class)),
	)
	defer span.End()

	d, err := Chain(rules...)(ctx, req)
	if err != nil {
		telemetry.RecordError(span, err)
		e.logger.Error("policy evaluation failed",
			zap.String("rule", d.Rule),
			zap.String("principal", req.Principal.ID),
			zap.String("resource_id", req.Resource.ID),
			zap.Error(err),
		)
		return d, err
	}

	span.SetAttributes(attribute.Bool(telemetry.AttrPolicyAllowed, d.Allowed))
	if !d.Allowed {
		span.SetAttributes(
			attribute.String(telemetry.AttrPolicyRule, d.Rule),
			attribute.String(telemetry.AttrPolicyReason, string(d.Reason)),
		)
		e.metrics.RecordDenial(ctx, d.Rule, string(d.Reason))
		e.logger.Info("policy denied",
			zap.String("rule", d.Rule),
			zap.String("reason", string(d.Reason)),
			zap.String("principal", req.Principal.ID),
			zap.String("collection", string(req.Resource.Collection)),
			zap.String("resource_id", req.Resource.ID),
		)
	}
	return d, nil
}
