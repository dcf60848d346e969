package services

import (
	"context"
	"strings"

	"github.com/pulsesocial/pulse/internal/domain/account"
	"github.com/pulsesocial/pulse/internal/domain/billing"
	"github.com/pulsesocial/pulse/internal/pkg/errors"
	"github.com/pulsesocial/pulse/internal/pkg/logger"
	"github.com/pulsesocial/pulse/internal/pkg/metrics"
)

// BillingConfig configures BillingService
type BillingConfig struct {
	AppURL      string
	TrialDays   int64
	PlanPrices  map[string]string
	AddonPrices map[string]string
}

// BillingService implements billing.Service. Events are matched to accounts
// by subscription id, except checkout which names the account in metadata.
type BillingService struct {
	accounts  account.Repository
	gateway   billing.Gateway
	catalogue billing.Catalogue
	appURL    string
	trialDays int64
	logger    *logger.Logger
}

// NewBillingService creates a new billing service
func NewBillingService(accounts account.Repository, gateway billing.Gateway, cfg BillingConfig, log *logger.Logger) *BillingService {
	return &BillingService{
		accounts:  accounts,
		gateway:   gateway,
		catalogue: billing.NewCatalogue(cfg.PlanPrices, cfg.AddonPrices),
		appURL:    strings.TrimRight(cfg.AppURL, "/"),
		trialDays: cfg.TrialDays,
		logger:    log,
	}
}

// HandleEvent applies event. Replaying an event leaves the same state.
func (s *BillingService) HandleEvent(ctx context.Context, event *billing.Event) (billing.Outcome, error) {
	log := s.logger.WithFields(map[string]interface{}{
		"event_id":        event.ID,
		"event_type":      event.Type,
		"subscription_id": event.SubscriptionID,
	})

	var (
		outcome billing.Outcome
		err     error
	)
	switch event.Type {
	case billing.EventCheckoutCompleted:
		outcome, err = s.checkoutCompleted(ctx, event, log)
	case billing.EventInvoicePaid:
		outcome, err = s.invoicePaid(ctx, event)
	case billing.EventInvoicePaymentFailed:
		outcome, err = s.invoicePaymentFailed(ctx, event, log)
	case billing.EventSubscriptionDeleted:
		outcome, err = s.matched(s.accounts.Downgrade(ctx, event.SubscriptionID, account.FreeLimit))
	case billing.EventSubscriptionUpdated:
		outcome, err = s.matched(s.accounts.RefreshSubscription(ctx, event.SubscriptionID, event.PriceID, event.PeriodEnd))
	default:
		outcome = billing.OutcomeUnhandled
	}

	if err != nil {
		metrics.RecordBillingEvent(string(event.Type), "error")
		log.WithError(err).Error("Failed to process billing event")
		return "", err
	}

	metrics.RecordBillingEvent(string(event.Type), string(outcome))
	switch outcome {
	case billing.OutcomeUnhandled:
		log.Info("Ignoring unhandled billing event")
	case billing.OutcomeNoMatch:
		log.Info("No account matches billing event")
	default:
		log.With("outcome", outcome).Info("Billing event processed")
	}
	return outcome, nil
}

func (s *BillingService) matched(ok bool, err error) (billing.Outcome, error) {
	if err != nil {
		return "", err
	}
	if !ok {
		return billing.OutcomeNoMatch, nil
	}
	return billing.OutcomeApplied, nil
}

func (s *BillingService) checkoutCompleted(ctx context.Context, event *billing.Event, log *logger.Logger) (billing.Outcome, error) {
	// A retry cannot repair missing metadata, so these are acknowledged.
	if event.AccountID == 0 || event.SubscriptionID == "" {
		log.Warn("Checkout completed without account or subscription reference")
		return billing.OutcomeNoop, nil
	}

	sub, err := s.gateway.GetSubscription(ctx, event.SubscriptionID)
	if err != nil {
		return "", err
	}

	plan, ok := account.ParsePlan(event.Plan)
	if !ok || plan == account.PlanFree {
		plan = account.PlanEssentials
	}

	customerID := event.CustomerID
	if customerID == "" {
		customerID = sub.CustomerID
	}
	ref := account.SubscriptionRef{
		SubscriptionID: event.SubscriptionID,
		CustomerID:     customerID,
		PriceID:        sub.PriceID,
		PeriodEnd:      sub.PeriodEnd,
	}

	err = s.accounts.ActivateSubscription(ctx, event.AccountID, ref, plan, account.ParseAddonSet(event.Addons))
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeNotFound) {
			return billing.OutcomeNoMatch, nil
		}
		return "", err
	}
	return billing.OutcomeApplied, nil
}

func (s *BillingService) invoicePaid(ctx context.Context, event *billing.Event) (billing.Outcome, error) {
	if event.SubscriptionID == "" {
		return billing.OutcomeNoop, nil
	}
	if _, err := s.accounts.GetBySubscriptionID(ctx, event.SubscriptionID); err != nil {
		if errors.HasCode(err, errors.ErrCodeNotFound) {
			return billing.OutcomeNoMatch, nil
		}
		return "", err
	}

	sub, err := s.gateway.GetSubscription(ctx, event.SubscriptionID)
	if err != nil {
		return "", err
	}
	return s.matched(s.accounts.RenewPeriod(ctx, event.SubscriptionID, sub.PeriodEnd))
}

func (s *BillingService) invoicePaymentFailed(ctx context.Context, event *billing.Event, log *logger.Logger) (billing.Outcome, error) {
	if event.SubscriptionID == "" {
		return billing.OutcomeNoop, nil
	}
	acct, err := s.accounts.GetBySubscriptionID(ctx, event.SubscriptionID)
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeNotFound) {
			return billing.OutcomeNoMatch, nil
		}
		return "", err
	}
	log.With("account_id", acct.ID).Warn("Invoice payment failed")
	return billing.OutcomeNoop, nil
}

// CreateCheckoutSession starts a subscription checkout for plan plus addons
func (s *BillingService) CreateCheckoutSession(ctx context.Context, accountID int64, plan account.Plan, addons []account.Addon) (*billing.Session, error) {
	planPrice, ok := s.catalogue.PlanPrice(plan)
	if !ok {
		return nil, errors.BadRequest("Unknown plan: " + string(plan))
	}
	priceIDs := []string{planPrice}
	chosen := account.NewAddonSet(addons...).Slice()
	for _, a := range chosen {
		price, ok := s.catalogue.AddonPrice(a)
		if !ok {
			return nil, errors.BadRequest("Unknown add-on: " + string(a))
		}
		priceIDs = append(priceIDs, price)
	}

	acct, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if acct.HasSubscription() {
		return nil, errors.Conflict("Account already has an active subscription. Use the billing portal to change it.")
	}

	customerID, err := s.ensureCustomer(ctx, acct)
	if err != nil {
		return nil, err
	}

	sess, err := s.gateway.CreateCheckoutSession(ctx, billing.CheckoutRequest{
		AccountID:  acct.ID,
		CustomerID: customerID,
		Plan:       plan,
		Addons:     chosen,
		PriceIDs:   priceIDs,
		TrialDays:  s.trialDays,
		SuccessURL: s.appURL + "/dashboard?success=true",
		CancelURL:  s.appURL + "/pricing?canceled=true",
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"account_id": acct.ID,
		"plan":       plan,
		"addons":     chosen,
	}).Info("Checkout session created")
	return sess, nil
}

func (s *BillingService) ensureCustomer(ctx context.Context, acct *account.Account) (string, error) {
	if acct.BillingCustomerID != nil && *acct.BillingCustomerID != "" {
		return *acct.BillingCustomerID, nil
	}
	name := ""
	if acct.Name != nil {
		name = *acct.Name
	}
	customerID, err := s.gateway.CreateCustomer(ctx, acct.ID, acct.Email, name)
	if err != nil {
		return "", err
	}
	if err := s.accounts.SetCustomerID(ctx, acct.ID, customerID); err != nil {
		return "", err
	}
	return customerID, nil
}

// CreatePortalSession opens the billing portal
func (s *BillingService) CreatePortalSession(ctx context.Context, accountID int64) (*billing.Session, error) {
	acct, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if acct.BillingCustomerID == nil || *acct.BillingCustomerID == "" {
		return nil, errors.PreconditionFailed("No billing account found. Subscribe to a plan first.")
	}
	return s.gateway.CreatePortalSession(ctx, *acct.BillingCustomerID, s.appURL+"/dashboard/settings")
}

// GetSubscription summarises the account's billing state
func (s *BillingService) GetSubscription(ctx context.Context, accountID int64) (*billing.SubscriptionSummary, error) {
	acct, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return &billing.SubscriptionSummary{
		Plan:           acct.Plan,
		Addons:         acct.Addons.Strings(),
		SubscriptionID: acct.BillingSubscriptionID,
		PriceID:        acct.BillingPriceID,
		PeriodEnd:      acct.BillingPeriodEnd,
		TrialEndsAt:    acct.TrialEndsAt,
		HasCustomer:    acct.BillingCustomerID != nil,
	}, nil
}

// Catalogue lists plans and add-ons
func (s *BillingService) Catalogue() billing.Catalogue {
	return s.catalogue
}

var _ billing.Service = (*BillingService)(nil)
