package policy

import (
	"context"
	"fmt"

	"github.com/tablehost/restaurantapi/internal/auth"
	"github.com/tablehost/restaurantapi/internal/domain"
)

// Rule names as they appear in decisions and logs.
const (
	RuleValidPathID                         = "validPathId"
	RuleValidQueryOwnerID                   = "validQueryOwnerId"
	RuleRequireSession                      = "requireSession"
	RuleRequireOperatorAny                  = "requireOperatorAny"
	RuleRequireOperatorLevel1               = "requireOperatorLevel1"
	RuleRequireSelfOrLevel1                 = "requireSelfOrLevel1"
	RuleRequireOperatorOrSelf               = "requireOperatorOrSelf"
	RuleRequireOperatorOrMatchingQueryOwner = "requireOperatorOrMatchingQueryOwner"
	RuleRequireOperatorOrResourceOwner      = "requireOperatorOrResourceOwner"
)

// ValidPathID rejects a route id that is not 24 hex characters. It must precede
// any rule that dereferences the id.
func ValidPathID(_ context.Context, req *Request) (Decision, error) {
	if !domain.IsObjectID(req.Resource.ID) {
		d := Deny(RuleValidPathID, ReasonInvalidResourceID)
		d.Detail = req.Resource.ID
		return d, nil
	}
	return Allow(RuleValidPathID), nil
}

// ValidQueryOwnerID rejects a user_id query parameter that is absent or not 24 hex characters.
func ValidQueryOwnerID(_ context.Context, req *Request) (Decision, error) {
	raw := ""
	if req.Query != nil {
		raw = req.Query.Get(QueryOwnerParam)
	}
	if !domain.IsObjectID(raw) {
		d := Deny(RuleValidQueryOwnerID, ReasonInvalidResourceID)
		d.Detail = raw
		return d, nil
	}
	return Allow(RuleValidQueryOwnerID), nil
}

// RequireSession denies the anonymous principal.
func RequireSession(_ context.Context, req *Request) (Decision, error) {
	if req.Principal.IsAnonymous() {
		return Deny(RuleRequireSession, ReasonNoSession), nil
	}
	return Allow(RuleRequireSession), nil
}

func (e *Engine) inTier(rule string, p auth.Principal, tier auth.Tier) (bool, error) {
	ok, err := e.tiers.Allows(p, tier)
	if err != nil {
		return false, fmt.Errorf("%s: %w", rule, err)
	}
	return ok, nil
}

// RequireOperatorAny allows operators of level 1 or 2.
func (e *Engine) RequireOperatorAny(_ context.Context, req *Request) (Decision, error) {
	ok, err := e.inTier(RuleRequireOperatorAny, req.Principal, auth.TierOperator)
	if err != nil {
		return Deny(RuleRequireOperatorAny, ""), err
	}
	if !ok {
		return Deny(RuleRequireOperatorAny, ReasonInsufficientLevel), nil
	}
	return Allow(RuleRequireOperatorAny), nil
}

// RequireOperatorLevel1 allows level 1 operators only.
func (e *Engine) RequireOperatorLevel1(_ context.Context, req *Request) (Decision, error) {
	ok, err := e.inTier(RuleRequireOperatorLevel1, req.Principal, auth.TierAdmin)
	if err != nil {
		return Deny(RuleRequireOperatorLevel1, ""), err
	}
	if !ok {
		return Deny(RuleRequireOperatorLevel1, ReasonInsufficientLevel), nil
	}
	return Allow(RuleRequireOperatorLevel1), nil
}

// RequireSelfOrLevel1 allows level 1 operators, or the principal whose id is the
// route id. Without a route id only level 1 passes.
func (e *Engine) RequireSelfOrLevel1(_ context.Context, req *Request) (Decision, error) {
	ok, err := e.inTier(RuleRequireSelfOrLevel1, req.Principal, auth.TierAdmin)
	if err != nil {
		return Deny(RuleRequireSelfOrLevel1, ""), err
	}
	if ok || req.isSelf(req.PathID()) {
		return Allow(RuleRequireSelfOrLevel1), nil
	}
	return Deny(RuleRequireSelfOrLevel1, ReasonInsufficientLevel), nil
}

// RequireOperatorOrSelf allows any operator, or the principal whose id is the route id.
func (e *Engine) RequireOperatorOrSelf(_ context.Context, req *Request) (Decision, error) {
	ok, err := e.inTier(RuleRequireOperatorOrSelf, req.Principal, auth.TierOperator)
	if err != nil {
		return Deny(RuleRequireOperatorOrSelf, ""), err
	}
	if ok || req.isSelf(req.PathID()) {
		return Allow(RuleRequireOperatorOrSelf), nil
	}
	return Deny(RuleRequireOperatorOrSelf, ReasonInsufficientLevel), nil
}

// RequireOperatorOrMatchingQueryOwner allows any operator, or the principal named
// by the user_id query parameter.
func (e *Engine) RequireOperatorOrMatchingQueryOwner(_ context.Context, req *Request) (Decision, error) {
	ok, err := e.inTier(RuleRequireOperatorOrMatchingQueryOwner, req.Principal, auth.TierOperator)
	if err != nil {
		return Deny(RuleRequireOperatorOrMatchingQueryOwner, ""), err
	}
	if ok || req.isSelf(req.QueryOwnerID()) {
		return Allow(RuleRequireOperatorOrMatchingQueryOwner), nil
	}
	return Deny(RuleRequireOperatorOrMatchingQueryOwner, ReasonInsufficientLevel), nil
}

// RequireOperatorOrResourceOwner allows any operator without a lookup. Anyone
// else must own the order named by the route id. A missing order is a deny; the
// handler reports absence to operators.
func (e *Engine) RequireOperatorOrResourceOwner(ctx context.Context, req *Request) (Decision, error) {
	const rule = RuleRequireOperatorOrResourceOwner

	ok, err := e.inTier(rule, req.Principal, auth.TierOperator)
	if err != nil {
		return Deny(rule, ""), err
	}
	if ok {
		return Allow(rule), nil
	}

	// Never dereference a malformed id.
	if !domain.IsObjectID(req.Resource.ID) {
		d := Deny(rule, ReasonInvalidResourceID)
		d.Detail = req.Resource.ID
		return d, nil
	}

	owner, found, err := e.owners.OrderOwner(ctx, req.PathID())
	if err != nil {
		return Deny(rule, ""), domain.ErrUpstream("resolve order owner", err)
	}
	if !found || !req.isSelf(owner) {
		return Deny(rule, ReasonNotOwner), nil
	}
	return Allow(rule), nil
}
