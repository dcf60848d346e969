package client

import "context"

// BillingService handles subscription API calls
type BillingService struct {
	client *Client
}

// CheckoutRequest selects a plan and add-ons to purchase
type CheckoutRequest struct {
	Plan   string   `json:"plan"`
	Addons []string `json:"addons,omitempty"`
}

// Plans lists purchasable plans and add-ons
func (s *BillingService) Plans(ctx context.Context) (*Catalogue, error) {
	var catalogue Catalogue
	if err := s.client.doRequest(ctx, "GET", "/api/v1/billing/plans", nil, &catalogue); err != nil {
		return nil, err
	}
	return &catalogue, nil
}

// Subscription retrieves the account's billing state
func (s *BillingService) Subscription(ctx context.Context) (*Subscription, error) {
	var sub Subscription
	if err := s.client.doRequest(ctx, "GET", "/api/v1/billing/subscription", nil, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// Checkout opens a hosted checkout page
func (s *BillingService) Checkout(ctx context.Context, req CheckoutRequest) (*Session, error) {
	var session Session
	if err := s.client.doRequest(ctx, "POST", "/api/v1/billing/checkout", req, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Portal opens the hosted customer portal
func (s *BillingService) Portal(ctx context.Context) (*Session, error) {
	var session Session
	if err := s.client.doRequest(ctx, "POST", "/api/v1/billing/portal", nil, &session); err != nil {
		return nil, err
	}
	return &session, nil
}
