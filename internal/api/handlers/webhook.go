package handlers

import (
	stderrors "errors"
	"io"
	"net/http"
	"time"

	"github.com/pulsesocial/pulse/internal/api/dto"
	"github.com/pulsesocial/pulse/internal/domain/billing"
	"github.com/pulsesocial/pulse/internal/pkg/errors"
	"github.com/pulsesocial/pulse/internal/pkg/logger"
	"github.com/pulsesocial/pulse/internal/pkg/metrics"
	"github.com/pulsesocial/pulse/internal/pkg/utils"
)

// SignatureHeader carries the payment provider's payload signature
const SignatureHeader = "Stripe-Signature"

const maxWebhookBytes = 1 << 20

// WebhookHandler receives payment provider events
type WebhookHandler struct {
	gateway billing.Gateway
	billing billing.Service
	logger  *logger.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(gateway billing.Gateway, service billing.Service, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		gateway: gateway,
		billing: service,
		logger:  log,
	}
}

// Stripe verifies and applies a billing event. Deliveries that match no
// account are acknowledged so the sender stops retrying; persistence
// failures return 500 so it retries.
// @Summary Payment provider webhook
// @Tags Billing
// @Accept json
// @Produce json
// @Param Stripe-Signature header string true "Payload signature"
// @Success 200 {object} dto.WebhookAck
// @Failure 400 {object} utils.ErrorResponse "Malformed event"
// @Failure 401 {object} utils.ErrorResponse "Invalid signature"
// @Failure 500 {object} utils.ErrorResponse "Event could not be applied"
// @Router /webhooks/stripe [post]
func (h *WebhookHandler) Stripe(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() { metrics.ObserveWebhook(time.Since(start)) }()

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
	if err != nil {
		utils.WriteErrorMessage(w, http.StatusRequestEntityTooLarge, errors.ErrCodeBadRequest, "Payload too large")
		return
	}

	event, err := h.gateway.ParseEvent(payload, r.Header.Get(SignatureHeader))
	if err != nil {
		switch {
		case stderrors.Is(err, billing.ErrInvalidSignature):
			h.logger.With("remote_addr", r.RemoteAddr).Warn("Webhook signature rejected")
			utils.WriteError(w, errors.Unauthorized("Invalid signature"))
		case stderrors.Is(err, billing.ErrMalformedEvent):
			h.logger.WithError(err).Warn("Malformed webhook event")
			utils.WriteError(w, errors.BadRequest("Malformed event"))
		default:
			utils.WriteAnyError(w, err)
		}
		return
	}

	if _, err := h.billing.HandleEvent(r.Context(), event); err != nil {
		utils.WriteAnyError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, dto.WebhookAck{Received: true})
}
