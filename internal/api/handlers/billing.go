package handlers

import (
	"net/http"

	"github.com/pulsesocial/pulse/internal/api/dto"
	"github.com/pulsesocial/pulse/internal/domain/billing"
	"github.com/pulsesocial/pulse/internal/pkg/logger"
	"github.com/pulsesocial/pulse/internal/pkg/utils"
	"github.com/pulsesocial/pulse/internal/pkg/validator"
)

// BillingHandler handles billing and subscription related API endpoints
type BillingHandler struct {
	billing   billing.Service
	logger    *logger.Logger
	validator *validator.Validator
}

// NewBillingHandler creates a new BillingHandler
func NewBillingHandler(service billing.Service, log *logger.Logger, val *validator.Validator) *BillingHandler {
	return &BillingHandler{
		billing:   service,
		logger:    log,
		validator: val,
	}
}

// ListPlans returns the plan and add-on catalogue
// @Summary List subscription plans
// @Tags Billing
// @Produce json
// @Success 200 {object} billing.Catalogue
// @Router /billing/plans [get]
func (h *BillingHandler) ListPlans(w http.ResponseWriter, r *http.Request) {
	utils.WriteSuccess(w, http.StatusOK, h.billing.Catalogue())
}

// Checkout starts a hosted checkout for a plan and add-ons
// @Summary Create checkout session
// @Tags Billing
// @Accept json
// @Produce json
// @Param request body dto.CheckoutRequest true "Plan and add-ons"
// @Success 200 {object} billing.Session
// @Failure 400 {object} utils.ErrorResponse "Unknown plan or add-on"
// @Failure 409 {object} utils.ErrorResponse "Already subscribed"
// @Security BearerAuth
// @Router /billing/checkout [post]
func (h *BillingHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	accountID, ok := requireAccountID(w, r)
	if !ok {
		return
	}

	var req dto.CheckoutRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	plan, addons := req.Target()
	session, err := h.billing.CreateCheckoutSession(r.Context(), accountID, plan, addons)
	if err != nil {
		utils.WriteAnyError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, session)
}

// Portal opens the billing self-service portal
// @Summary Create portal session
// @Tags Billing
// @Produce json
// @Success 200 {object} billing.Session
// @Failure 412 {object} utils.ErrorResponse "No billing customer yet"
// @Security BearerAuth
// @Router /billing/portal [post]
func (h *BillingHandler) Portal(w http.ResponseWriter, r *http.Request) {
	accountID, ok := requireAccountID(w, r)
	if !ok {
		return
	}

	session, err := h.billing.CreatePortalSession(r.Context(), accountID)
	if err != nil {
		utils.WriteAnyError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, session)
}

// Subscription returns the account's current billing state
// @Summary Current subscription
// @Tags Billing
// @Produce json
// @Success 200 {object} billing.SubscriptionSummary
// @Security BearerAuth
// @Router /billing/subscription [get]
func (h *BillingHandler) Subscription(w http.ResponseWriter, r *http.Request) {
	accountID, ok := requireAccountID(w, r)
	if !ok {
		return
	}

	summary, err := h.billing.GetSubscription(r.Context(), accountID)
	if err != nil {
		utils.WriteAnyError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, summary)
}
