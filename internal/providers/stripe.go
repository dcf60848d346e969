package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/pulsesocial/pulse/internal/domain/billing"
	"github.com/pulsesocial/pulse/internal/pkg/errors"
	"github.com/pulsesocial/pulse/internal/pkg/logger"
	"github.com/pulsesocial/pulse/internal/pkg/metrics"
)

const stripeProviderName = "stripe"

// Metadata keys written on checkout sessions and subscriptions
const (
	MetadataAccountID = "accountId"
	MetadataPlan      = "plan"
	MetadataAddons    = "addons"
)

// StripeGateway implements billing.Gateway on the Stripe API
type StripeGateway struct {
	api           *client.API
	webhookSecret string
	logger        *logger.Logger
}

// NewStripeGateway creates a gateway. backends may be nil to use the
// default HTTP backends.
func NewStripeGateway(secretKey, webhookSecret string, backends *stripe.Backends, log *logger.Logger) *StripeGateway {
	api := &client.API{}
	api.Init(secretKey, backends)
	return &StripeGateway{
		api:           api,
		webhookSecret: webhookSecret,
		logger:        log.With("provider", stripeProviderName),
	}
}

func (g *StripeGateway) observe(op string, start time.Time, err error) error {
	metrics.RecordUpstreamCall(stripeProviderName, op, err, time.Since(start))
	if err == nil {
		return nil
	}
	g.logger.WithError(err).With("operation", op).Warn("stripe api call failed")
	return errors.Upstream(stripeProviderName, op, err)
}

// CreateCustomer creates a Stripe customer tagged with the account id
func (g *StripeGateway) CreateCustomer(ctx context.Context, accountID int64, email, name string) (string, error) {
	start := time.Now()
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
		Metadata: map[string]string{
			MetadataAccountID: strconv.FormatInt(accountID, 10),
		},
	}
	if name != "" {
		params.Name = stripe.String(name)
	}
	params.Context = ctx

	cust, err := g.api.Customers.New(params)
	if err := g.observe("createCustomer", start, err); err != nil {
		return "", err
	}
	return cust.ID, nil
}

// CreateCheckoutSession opens a subscription checkout
func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req billing.CheckoutRequest) (*billing.Session, error) {
	start := time.Now()

	addons := make([]string, len(req.Addons))
	for i, a := range req.Addons {
		addons[i] = string(a)
	}
	encodedAddons, err := json.Marshal(addons)
	if err != nil {
		return nil, errors.Internal("Failed to encode add-ons", err)
	}
	metadata := map[string]string{
		MetadataAccountID: strconv.FormatInt(req.AccountID, 10),
		MetadataPlan:      string(req.Plan),
		MetadataAddons:    string(encodedAddons),
	}

	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(req.PriceIDs))
	for _, price := range req.PriceIDs {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			Price:    stripe.String(price),
			Quantity: stripe.Int64(1),
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		Customer:   stripe.String(req.CustomerID),
		LineItems:  lineItems,
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: metadata,
		},
		Metadata: metadata,
	}
	if req.TrialDays > 0 {
		params.SubscriptionData.TrialPeriodDays = stripe.Int64(req.TrialDays)
	}
	params.Context = ctx

	sess, err := g.api.CheckoutSessions.New(params)
	if err := g.observe("createCheckoutSession", start, err); err != nil {
		return nil, err
	}
	return &billing.Session{ID: sess.ID, URL: sess.URL}, nil
}

// CreatePortalSession opens the billing portal
func (g *StripeGateway) CreatePortalSession(ctx context.Context, customerID, returnURL string) (*billing.Session, error) {
	start := time.Now()
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx

	sess, err := g.api.BillingPortalSessions.New(params)
	if err := g.observe("createPortalSession", start, err); err != nil {
		return nil, err
	}
	return &billing.Session{ID: sess.ID, URL: sess.URL}, nil
}

// GetSubscription retrieves a subscription
func (g *StripeGateway) GetSubscription(ctx context.Context, subscriptionID string) (*billing.Subscription, error) {
	start := time.Now()
	params := &stripe.SubscriptionParams{}
	params.Context = ctx

	sub, err := g.api.Subscriptions.Get(subscriptionID, params)
	if err := g.observe("getSubscription", start, err); err != nil {
		return nil, err
	}

	out := &billing.Subscription{
		ID:        sub.ID,
		Status:    string(sub.Status),
		PeriodEnd: unixPtr(sub.CurrentPeriodEnd),
	}
	if sub.Customer != nil {
		out.CustomerID = sub.Customer.ID
	}
	if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
		out.PriceID = sub.Items.Data[0].Price.ID
	}
	return out, nil
}

// ParseEvent checks the Stripe-Signature header against payload and only
// then decodes the event.
func (g *StripeGateway) ParseEvent(payload []byte, signature string) (*billing.Event, error) {
	if signature == "" || g.webhookSecret == "" {
		return nil, billing.ErrInvalidSignature
	}
	if err := webhook.ValidatePayload(payload, signature, g.webhookSecret); err != nil {
		return nil, fmt.Errorf("%w: %v", billing.ErrInvalidSignature, err)
	}

	var event stripe.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("%w: %v", billing.ErrMalformedEvent, err)
	}
	return decodeStripeEvent(&event)
}

// Minimal views of the webhook objects. Expandable references arrive as ids.
type stripeCheckoutSession struct {
	ID           string            `json:"id"`
	Customer     string            `json:"customer"`
	Subscription string            `json:"subscription"`
	Metadata     map[string]string `json:"metadata"`
}

type stripeInvoice struct {
	ID           string `json:"id"`
	Customer     string `json:"customer"`
	Subscription string `json:"subscription"`
	Parent       *struct {
		SubscriptionDetails *struct {
			Subscription string `json:"subscription"`
		} `json:"subscription_details"`
	} `json:"parent"`
}

func (i stripeInvoice) subscriptionID() string {
	if i.Subscription != "" {
		return i.Subscription
	}
	if i.Parent != nil && i.Parent.SubscriptionDetails != nil {
		return i.Parent.SubscriptionDetails.Subscription
	}
	return ""
}

type stripeSubscription struct {
	ID               string `json:"id"`
	Customer         string `json:"customer"`
	Status           string `json:"status"`
	CurrentPeriodEnd int64  `json:"current_period_end"`
	Items            struct {
		Data []struct {
			CurrentPeriodEnd int64 `json:"current_period_end"`
			Price            struct {
				ID string `json:"id"`
			} `json:"price"`
		} `json:"data"`
	} `json:"items"`
}

func decodeStripeEvent(event *stripe.Event) (*billing.Event, error) {
	out := &billing.Event{ID: event.ID, Type: billing.EventType(event.Type)}
	if event.Data == nil {
		return out, nil
	}

	switch out.Type {
	case billing.EventCheckoutCompleted:
		var sess stripeCheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return nil, fmt.Errorf("%w: %v", billing.ErrMalformedEvent, err)
		}
		out.SubscriptionID = sess.Subscription
		out.CustomerID = sess.Customer
		out.Plan = sess.Metadata[MetadataPlan]
		if raw := sess.Metadata[MetadataAccountID]; raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: account id %q", billing.ErrMalformedEvent, raw)
			}
			out.AccountID = id
		}
		if raw := sess.Metadata[MetadataAddons]; raw != "" {
			if err := json.Unmarshal([]byte(raw), &out.Addons); err != nil {
				return nil, fmt.Errorf("%w: addons %q", billing.ErrMalformedEvent, raw)
			}
		}

	case billing.EventInvoicePaid, billing.EventInvoicePaymentFailed:
		var inv stripeInvoice
		if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
			return nil, fmt.Errorf("%w: %v", billing.ErrMalformedEvent, err)
		}
		out.SubscriptionID = inv.subscriptionID()
		out.CustomerID = inv.Customer

	case billing.EventSubscriptionDeleted, billing.EventSubscriptionUpdated:
		var sub stripeSubscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("%w: %v", billing.ErrMalformedEvent, err)
		}
		out.SubscriptionID = sub.ID
		out.CustomerID = sub.Customer
		periodEnd := sub.CurrentPeriodEnd
		if len(sub.Items.Data) > 0 {
			out.PriceID = sub.Items.Data[0].Price.ID
			if periodEnd == 0 {
				periodEnd = sub.Items.Data[0].CurrentPeriodEnd
			}
		}
		out.PeriodEnd = unixPtr(periodEnd)
	}

	return out, nil
}

func unixPtr(sec int64) *time.Time {
	if sec <= 0 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}

var _ billing.Gateway = (*StripeGateway)(nil)
