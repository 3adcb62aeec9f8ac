// Package domain defines the boundary to the external identity provider,
// which owns authentication and the per-user plan/quota metadata.
package domain

import (
	"context"
	"errors"
)

type Plan string

const (
	PlanFree    Plan = "free"
	PlanPremium Plan = "premium"
)

// User is the provider's view of the caller. FreeUsage counts successful
// metered operations and is only meaningful on the free plan.
type User struct {
	ID        string `json:"user_id"`
	Plan      Plan   `json:"plan"`
	FreeUsage int    `json:"free_usage"`
}

// Service talks to the identity provider. The read and the increment are
// separate remote calls with no atomicity guarantee between them; concurrent
// requests for the same user can under-count usage.
type Service interface {
	CurrentUser(ctx context.Context, token string) (*User, error)
	IncrementFreeUsage(ctx context.Context, userID string) error
}

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrUnavailable     = errors.New("identity_unavailable")
)

func NormalizePlan(raw string) Plan {
	if Plan(raw) == PlanPremium {
		return PlanPremium
	}
	return PlanFree
}
