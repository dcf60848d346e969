package billing

import (
	"context"
	"errors"
)

// ErrInvalidSignature is returned when a webhook payload fails signature
// verification or carries no signature at all.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// ErrMalformedEvent is returned for a correctly signed payload that does not
// decode.
var ErrMalformedEvent = errors.New("malformed webhook event")

// Gateway is the payment provider.
type Gateway interface {
	// CreateCustomer registers a customer and returns its id
	CreateCustomer(ctx context.Context, accountID int64, email, name string) (string, error)

	// CreateCheckoutSession opens a hosted subscription checkout
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*Session, error)

	// CreatePortalSession opens the hosted billing portal for a customer
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (*Session, error)

	// GetSubscription fetches the current state of a subscription
	GetSubscription(ctx context.Context, subscriptionID string) (*Subscription, error)

	// ParseEvent verifies signature against payload and decodes the event.
	// Verification happens before any decoding.
	ParseEvent(payload []byte, signature string) (*Event, error)
}
