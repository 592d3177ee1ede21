package auth

import (
	"fmt"
	"strconv"
)

// PrincipalClass distinguishes staff from diners.
type PrincipalClass string

const (
	ClassOperator PrincipalClass = "operator"
	ClassCustomer PrincipalClass = "customer"
)

// Valid reports whether c is one of the two known classes.
func (c PrincipalClass) Valid() bool {
	return c == ClassOperator || c == ClassCustomer
}

// Operator tiers.
const (
	LevelAdmin   = 1
	LevelManager = 2
)

// Principal is the acting identity of a request. The zero value is the anonymous principal.
type Principal struct {
	ID          string         `json:"_id"`
	Class       PrincipalClass `json:"class"`
	OpLevel     int            `json:"op_lvl,omitempty"`
	Email       string         `json:"email"`
	DisplayName string         `json:"displayName"`
}

// Anonymous is the principal of a request without a session.
var Anonymous = Principal{}

// IsAnonymous reports whether p carries no identity.
func (p Principal) IsAnonymous() bool {
	return p.ID == ""
}

// IsOperator reports whether p is an operator of either tier.
func (p Principal) IsOperator() bool {
	return p.Class == ClassOperator
}

// Validate checks that OpLevel is set (1 or 2) exactly when the principal is an operator.
func (p Principal) Validate() error {
	if p.IsAnonymous() {
		return nil
	}
	switch p.Class {
	case ClassOperator:
		if p.OpLevel != LevelAdmin && p.OpLevel != LevelManager {
			return fmt.Errorf("operator %s has invalid op level %d", p.ID, p.OpLevel)
		}
	case ClassCustomer:
		if p.OpLevel != 0 {
			return fmt.Errorf("customer %s must not carry an op level", p.ID)
		}
	default:
		return fmt.Errorf("principal %s has unknown class %q", p.ID, p.Class)
	}
	return nil
}

// Attributes exposes the principal to tier expressions. Values are strings so
// expressions compare them uniformly.
func (p Principal) Attributes() map[string]any {
	return map[string]any{
		"class":    string(p.Class),
		"op_level": strconv.Itoa(p.OpLevel),
	}
}
