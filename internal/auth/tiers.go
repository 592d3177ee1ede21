package auth

import (
	_ "embed"
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

//go:embed model.conf
var tierModelContent string

// Tier names a privilege tier checked by the policy engine.
type Tier string

const (
	// TierOperator is any operator, admin or manager.
	TierOperator Tier = "operator"
	// TierAdmin is a level 1 operator only.
	TierAdmin Tier = "admin"
)

// tierPolicies are the built-in tier definitions as expressions over Principal.Attributes.
var tierPolicies = [][]string{
	{string(TierOperator), `class == "operator" and (op_level == "1" or op_level == "2")`},
	{string(TierAdmin), `class == "operator" and op_level == "1"`},
}

// TierEnforcer answers "is this principal in tier T" with casbin.
type TierEnforcer struct {
	enforcer *casbin.SyncedEnforcer
}

// NewTierEnforcer builds the enforcer from the embedded model and built-in policies.
func NewTierEnforcer() (*TierEnforcer, error) {
	m, err := model.NewModelFromString(tierModelContent)
	if err != nil {
		return nil, fmt.Errorf("parse casbin model: %w", err)
	}

	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create casbin enforcer: %w", err)
	}
	enforcer.AddFunction("bexprMatch", BexprMatchFunction())

	if _, err := enforcer.AddPolicies(tierPolicies); err != nil {
		return nil, fmt.Errorf("load tier policies: %w", err)
	}
	return &TierEnforcer{enforcer: enforcer}, nil
}

// Allows reports whether p belongs to tier. The anonymous principal belongs to none.
func (t *TierEnforcer) Allows(p Principal, tier Tier) (bool, error) {
	if p.IsAnonymous() {
		return false, nil
	}
	ok, err := t.enforcer.Enforce(string(tier), p.Attributes())
	if err != nil {
		return false, fmt.Errorf("enforce tier %s: %w", tier, err)
	}
	return ok, nil
}
