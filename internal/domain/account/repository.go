package account

import (
	"context"
	"time"
)

// SubscriptionRef carries the payment provider references of a live
// subscription.
type SubscriptionRef struct {
	SubscriptionID string
	CustomerID     string
	PriceID        string
	PeriodEnd      *time.Time
}

// Repository defines the interface for account data access.
//
// Every billing and maintenance mutation is a single conditional UPDATE so
// it never overwrites a concurrent posts_used increment.
type Repository interface {
	// Create inserts a new account and sets its ID
	Create(ctx context.Context, a *Account) error

	// GetByID retrieves an account by ID
	GetByID(ctx context.Context, id int64) (*Account, error)

	// GetByEmail retrieves an account by email
	GetByEmail(ctx context.Context, email string) (*Account, error)

	// GetBySubscriptionID retrieves the account owning a payment subscription
	GetBySubscriptionID(ctx context.Context, subscriptionID string) (*Account, error)

	// SetCustomerID stores the payment provider customer id
	SetCustomerID(ctx context.Context, id int64, customerID string) error

	// SetExternalProfileID stores the posting provider profile id
	SetExternalProfileID(ctx context.Context, id int64, profileID string) error

	// ActivateSubscription attaches sub, sets plan and add-ons, resets usage
	// and unlocks the account.
	ActivateSubscription(ctx context.Context, id int64, sub SubscriptionRef, plan Plan, addons AddonSet) error

	// RenewPeriod refreshes the period end, resets usage and unlocks the
	// account owning subscriptionID. It reports whether an account matched.
	RenewPeriod(ctx context.Context, subscriptionID string, periodEnd *time.Time) (bool, error)

	// RefreshSubscription updates price and period end only.
	RefreshSubscription(ctx context.Context, subscriptionID, priceID string, periodEnd *time.Time) (bool, error)

	// Downgrade moves the account owning subscriptionID to the free plan,
	// clears every billing reference and locks it when usage exceeds
	// freeLimit.
	Downgrade(ctx context.Context, subscriptionID string, freeLimit int) (bool, error)

	// ResetUsageForSubscribers zeroes posts_used on every account with a
	// subscription and returns how many rows changed.
	ResetUsageForSubscribers(ctx context.Context) (int64, error)

	// LockExpiredTrials locks free accounts without a subscription whose
	// trial ended at or before now and whose usage exceeds freeLimit.
	LockExpiredTrials(ctx context.Context, now time.Time, freeLimit int) (int64, error)
}
