// Package policy decides, per request, whether the acting principal may attempt
// the requested operation. Rules are plain functions composed in a fixed order;
// the first deny wins.
package policy

import (
	"github.com/tablehost/restaurantapi/internal/domain"
)

// Reason classifies a deny.
type Reason string

const (
	ReasonNoSession         Reason = "NoSession"
	ReasonInsufficientLevel Reason = "InsufficientLevel"
	ReasonNotOwner          Reason = "NotOwner"
	ReasonInvalidResourceID Reason = "InvalidResourceId"
)

const (
	msgNoSession = "You do not have access."
	msgForbidden = "You do not have permission to use that resource/method."
)

// Decision is the outcome of one rule or a whole chain.
type Decision struct {
	Allowed bool
	Reason  Reason
	// Rule names the rule that produced the decision.
	Rule string
	// Detail carries the offending input for InvalidResourceId denials.
	Detail string
}

// Allow returns an allowing decision from rule.
func Allow(rule string) Decision {
	return Decision{Allowed: true, Rule: rule}
}

// Deny returns a denying decision from rule.
func Deny(rule string, reason Reason) Decision {
	return Decision{Rule: rule, Reason: reason}
}

// Err converts a deny into the matching domain error. Allowed decisions return nil.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	switch d.Reason {
	case ReasonNoSession:
		return &domain.UnauthenticatedError{Message: msgNoSession}
	case ReasonInvalidResourceID:
		return &domain.MalformedIdentifierError{Value: d.Detail}
	default:
		return &domain.ForbiddenError{Reason: string(d.Reason), Message: msgForbidden}
	}
}
