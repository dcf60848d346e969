package dto

import (
	"github.com/pulsesocial/pulse/internal/domain/account"
)

// CheckoutRequest asks for a hosted checkout for a plan and add-ons
type CheckoutRequest struct {
	Plan   string   `json:"plan" validate:"required,oneof=essentials pro business"`
	Addons []string `json:"addons,omitempty" validate:"omitempty,max=3,dive,oneof=reddit linkedin analytics"`
}

// Target converts the request into domain values. Validation has already
// restricted both fields to known names.
func (r CheckoutRequest) Target() (account.Plan, []account.Addon) {
	addons := make([]account.Addon, 0, len(r.Addons))
	for _, a := range r.Addons {
		addons = append(addons, account.Addon(a))
	}
	return account.Plan(r.Plan), addons
}

// WebhookAck acknowledges a processed webhook delivery
type WebhookAck struct {
	Received bool `json:"received"`
}
