package auth

import (
	"fmt"
	"strings"
	"sync"

	"github.com/hashicorp/go-bexpr"
)

// bexprCache stores compiled evaluators keyed by expression
var bexprCache = &sync.Map{}

// BexprMatchFunction returns the bexprMatch function registered with casbin.
func BexprMatchFunction() func(args ...any) (any, error) {
	return func(args ...any) (any, error) {
		if len(args) != 2 {
			return false, fmt.Errorf("bexprMatch requires 2 arguments: expr, attrs")
		}
		expr, ok := args[0].(string)
		if !ok {
			return false, fmt.Errorf("bexprMatch: first argument must be string (expr)")
		}
		attrs, ok := args[1].(map[string]any)
		if !ok {
			return false, fmt.Errorf("bexprMatch: second argument must be map[string]any (attrs)")
		}
		return EvaluateBexpr(expr, attrs), nil
	}
}

// EvaluateBexpr evaluates expr against attrs. An empty expression matches; a
// malformed expression or a missing attribute does not.
func EvaluateBexpr(expr string, attrs map[string]any) bool {
	if strings.TrimSpace(expr) == "" {
		return true
	}

	var evaluator *bexpr.Evaluator
	if cached, ok := bexprCache.Load(expr); ok {
		evaluator = cached.(*bexpr.Evaluator)
	} else {
		compiled, err := bexpr.CreateEvaluator(expr)
		if err != nil {
			return false
		}
		bexprCache.Store(expr, compiled)
		evaluator = compiled
	}

	matches, err := evaluator.Evaluate(attrs)
	if err != nil {
		return false
	}
	return matches
}
