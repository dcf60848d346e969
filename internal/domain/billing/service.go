package billing

import (
	"context"

	"github.com/pulsesocial/pulse/internal/domain/account"
)

// Service defines billing operations
type Service interface {
	// HandleEvent applies a verified payment event to the matching account.
	// Unmatched and unknown events are not errors.
	HandleEvent(ctx context.Context, event *Event) (Outcome, error)

	// CreateCheckoutSession starts a subscription purchase
	CreateCheckoutSession(ctx context.Context, accountID int64, plan account.Plan, addons []account.Addon) (*Session, error)

	// CreatePortalSession opens the billing portal for a paying account
	CreatePortalSession(ctx context.Context, accountID int64) (*Session, error)

	// GetSubscription summarises the account's billing state
	GetSubscription(ctx context.Context, accountID int64) (*SubscriptionSummary, error)

	// Catalogue lists plans and add-ons
	Catalogue() Catalogue
}
