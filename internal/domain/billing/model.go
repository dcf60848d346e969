package billing

import (
	"time"

	"github.com/pulsesocial/pulse/internal/domain/account"
)

// EventType is a payment provider event type.
type EventType string

// Event types the processor acts on
const (
	EventCheckoutCompleted    EventType = "checkout.session.completed"
	EventInvoicePaid          EventType = "invoice.paid"
	EventInvoicePaymentFailed EventType = "invoice.payment_failed"
	EventSubscriptionDeleted  EventType = "customer.subscription.deleted"
	EventSubscriptionUpdated  EventType = "customer.subscription.updated"
)

// Event is a verified payment provider event reduced to the fields the
// processor needs. Which fields are set depends on Type.
type Event struct {
	ID   string
	Type EventType

	// Checkout metadata. AccountID is zero when the session carried none.
	AccountID int64
	Plan      string
	Addons    []string

	SubscriptionID string
	CustomerID     string
	PriceID        string
	PeriodEnd      *time.Time
}

// Outcome says what processing an event did.
type Outcome string

// Outcomes
const (
	OutcomeApplied   Outcome = "applied"
	OutcomeNoMatch   Outcome = "no_match"
	OutcomeNoop      Outcome = "noop"
	OutcomeUnhandled Outcome = "unhandled"
)

// Subscription is the provider's current view of a subscription.
type Subscription struct {
	ID         string
	CustomerID string
	Status     string
	PriceID    string
	PeriodEnd  *time.Time
}

// CheckoutRequest describes a subscription checkout.
type CheckoutRequest struct {
	AccountID  int64
	CustomerID string
	Plan       account.Plan
	Addons     []account.Addon
	PriceIDs   []string
	TrialDays  int64
	SuccessURL string
	CancelURL  string
}

// Session is a hosted page the client is redirected to.
type Session struct {
	ID  string `json:"id,omitempty"`
	URL string `json:"url"`
}

// PlanInfo describes a purchasable plan.
type PlanInfo struct {
	Plan       account.Plan `json:"plan"`
	Name       string       `json:"name"`
	PriceCents int64        `json:"price_cents"`
	PostsLimit int          `json:"posts_limit"`
	PriceID    string       `json:"-"`
}

// AddonInfo describes a purchasable add-on.
type AddonInfo struct {
	Addon       account.Addon `json:"addon"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	PriceCents  int64         `json:"price_cents"`
	PriceID     string        `json:"-"`
}

// Catalogue is the set of plans and add-ons on sale.
type Catalogue struct {
	Plans  []PlanInfo  `json:"plans"`
	Addons []AddonInfo `json:"addons"`
}

// NewCatalogue builds the catalogue with price ids keyed by plan and add-on name.
func NewCatalogue(planPrices, addonPrices map[string]string) Catalogue {
	return Catalogue{
		Plans: []PlanInfo{
			{Plan: account.PlanEssentials, Name: "Essentials", PriceCents: 1500, PostsLimit: account.QuotaFor(account.PlanEssentials), PriceID: planPrices[string(account.PlanEssentials)]},
			{Plan: account.PlanPro, Name: "Pro", PriceCents: 3900, PostsLimit: account.QuotaFor(account.PlanPro), PriceID: planPrices[string(account.PlanPro)]},
			{Plan: account.PlanBusiness, Name: "Business", PriceCents: 9900, PostsLimit: account.QuotaFor(account.PlanBusiness), PriceID: planPrices[string(account.PlanBusiness)]},
		},
		Addons: []AddonInfo{
			{Addon: account.AddonReddit, Name: "Reddit", Description: "Post to Reddit communities", PriceCents: 1900, PriceID: addonPrices[string(account.AddonReddit)]},
			{Addon: account.AddonLinkedIn, Name: "LinkedIn", Description: "Post to LinkedIn profiles and pages", PriceCents: 1900, PriceID: addonPrices[string(account.AddonLinkedIn)]},
			{Addon: account.AddonAnalytics, Name: "Analytics Pro", Description: "Cross-platform engagement analytics", PriceCents: 2500, PriceID: addonPrices[string(account.AddonAnalytics)]},
		},
	}
}

// PlanPrice returns the price id of plan.
func (c Catalogue) PlanPrice(plan account.Plan) (string, bool) {
	for _, p := range c.Plans {
		if p.Plan == plan && p.PriceID != "" {
			return p.PriceID, true
		}
	}
	return "", false
}

// AddonPrice returns the price id of addon.
func (c Catalogue) AddonPrice(addon account.Addon) (string, bool) {
	for _, a := range c.Addons {
		if a.Addon == addon && a.PriceID != "" {
			return a.PriceID, true
		}
	}
	return "", false
}

// SubscriptionSummary is the account's billing state as shown to the user.
type SubscriptionSummary struct {
	Plan           account.Plan `json:"plan"`
	Addons         []string     `json:"addons"`
	SubscriptionID *string      `json:"subscription_id,omitempty"`
	PriceID        *string      `json:"price_id,omitempty"`
	PeriodEnd      *time.Time   `json:"period_end,omitempty"`
	TrialEndsAt    *time.Time   `json:"trial_ends_at,omitempty"`
	HasCustomer    bool         `json:"has_customer"`
}
