// Package quota gates metered operations for free-plan users.
package quota

import (
	"github.com/inkwell-hq/inkwell/internal/config"
	identitydomain "github.com/inkwell-hq/inkwell/internal/identity/domain"
)

const ReasonLimitReached = "limit_reached"

// Decision is the gate outcome. An allowed decision reserves nothing: the
// usage counter is committed by the caller only after generation and
// persistence both succeed.
type Decision struct {
	Allowed bool
	Reason  string
	Limit   int
}

// Gate evaluates the free-tier limit for an operation type. Premium plans
// bypass the gate entirely.
type Gate struct {
	policy *config.PolicyConfigHolder
}

func NewGate(policy *config.PolicyConfigHolder) *Gate {
	return &Gate{policy: policy}
}

// Check compares the caller's usage against the operation's free-tier limit.
// It has no side effects; two concurrent checks for the same user can both
// pass, which under-counts usage. That read-then-commit race is inherited
// from the provider's split read/increment API and is accepted.
func (g *Gate) Check(plan identitydomain.Plan, freeUsage int, operation string) Decision {
	if plan == identitydomain.PlanPremium {
		return Decision{Allowed: true}
	}

	limit, metered := g.policy.Get().FreeLimit(operation)
	if !metered {
		return Decision{Allowed: true}
	}

	if freeUsage >= limit {
		return Decision{Allowed: false, Reason: ReasonLimitReached, Limit: limit}
	}

	return Decision{Allowed: true, Limit: limit}
}
