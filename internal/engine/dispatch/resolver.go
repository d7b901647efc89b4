package dispatch

import (
	"context"
	"fmt"

	"hookd/internal/platform/models"
)

// SubscriptionSource is the slice of the subscription store the resolver
// needs. *repositories.SubscriptionRepository satisfies it.
type SubscriptionSource interface {
	ActiveByTenant(ctx context.Context, tenantID string) ([]*models.Subscription, error)
}

type Resolver struct {
	subs SubscriptionSource
}

func NewResolver(subs SubscriptionSource) *Resolver {
	return &Resolver{subs: subs}
}

// Resolve returns the active subscriptions of one tenant whose event set
// contains the event name or the "*" wildcard. The store query itself is
// tenant-scoped, so a subscription of another tenant can never leak in.
// Zero matches is a normal outcome, not an error.
func (r *Resolver) Resolve(ctx context.Context, tenantID, eventName string) ([]*models.Subscription, error) {
	active, err := r.subs.ActiveByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("loading subscriptions for tenant %s: %w", tenantID, err)
	}

	var matched []*models.Subscription
	for _, sub := range active {
		if sub.Matches(eventName) {
			matched = append(matched, sub)
		}
	}
	return matched, nil
}
