package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracer names, one per component.
const (
	TracerPolicy   = "restaurantapi/policy"
	TracerIAM      = "restaurantapi/services/iam"
	TracerSessions = "restaurantapi/services/iam/sessions"
)

// StartSpan creates a new span for a service operation.
//
//	ctx, span := telemetry.StartSpan(ctx, telemetry.TracerIAM, "iam.Establish",
//	    attribute.String(telemetry.AttrPrincipalClass, "customer"),
//	)
//	defer span.End()
func StartSpan(ctx context.Context, tracerName, spanName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, spanName, trace.WithAttributes(attrs...))
}

// RecordError records err on the span and marks the span as failed. nil is a no-op.
func RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// AddEvent adds a named event to the span.
func AddEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

const (
	AttrPrincipalID    = "principal.id"
	AttrPrincipalClass = "principal.class"
	AttrPrincipalLevel = "principal.op_level"

	AttrPolicyRule    = "policy.rule"
	AttrPolicyAllowed = "policy.allowed"
	AttrPolicyReason  = "policy.reason"
	AttrResourceID    = "resource.id"
	AttrCollection    = "resource.collection"
)
