package webhook

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/drjulio/clinic-api/services"
	"github.com/drjulio/clinic-api/services/payment"
	"github.com/drjulio/clinic-api/utils/response"
)

// stripeSignatureHeader carries the Stripe webhook signature
const stripeSignatureHeader = "Stripe-Signature"

// WebhookHandler receives provider payment notifications and feeds them to
// the reconciliation flow
type WebhookHandler struct {
	hotmart    *payment.HotmartProvider
	stripe     *payment.StripeGateway
	reconciler *services.ReconcileService
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(hotmart *payment.HotmartProvider, stripe *payment.StripeGateway, reconciler *services.ReconcileService) *WebhookHandler {
	return &WebhookHandler{
		hotmart:    hotmart,
		stripe:     stripe,
		reconciler: reconciler,
	}
}

// Hotmart handles Hotmart purchase notifications
func (h *WebhookHandler) Hotmart(c *fiber.Ctx) error {
	if h.hotmart == nil {
		return response.NotFound(c, "Provider not configured")
	}
	event, err := h.hotmart.ConfirmPayment(c.Body(), c.Get(payment.HotmartSignatureHeader))
	return h.process(c, event, err)
}

// Stripe handles Stripe checkout webhooks
func (h *WebhookHandler) Stripe(c *fiber.Ctx) error {
	if h.stripe == nil {
		return response.NotFound(c, "Provider not configured")
	}
	event, err := h.stripe.ConfirmPayment(c.Body(), c.Get(stripeSignatureHeader))
	return h.process(c, event, err)
}

// process maps provider and reconciliation errors onto HTTP statuses. A 5xx
// tells the provider to retry; replays are safe on this side.
func (h *WebhookHandler) process(c *fiber.Ctx, event *payment.Event, err error) error {
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrBadSignature):
			return response.Forbidden(c, "Signature verification failed")
		case errors.Is(err, payment.ErrInvalidPayload):
			return response.BadRequest(c, "Invalid notification payload")
		case errors.Is(err, payment.ErrEventIgnored):
			// acknowledged so the provider stops retrying
			return response.SuccessWithMessage(c, "Event ignored", nil)
		default:
			return response.InternalServerError(c, "Failed to verify notification")
		}
	}

	result, err := h.reconciler.Process(event)
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrInvalidPayload):
			return response.BadRequest(c, "Invalid notification payload")
		case errors.Is(err, services.ErrCourseNotFound):
			return response.NotFound(c, "Unknown course")
		default:
			log.Printf("Webhook reconciliation failed for %s %s: %v", event.Provider, event.ProviderID, err)
			return response.InternalServerError(c, "Failed to process payment")
		}
	}

	return response.Success(c, fiber.Map{
		"enrollment_id": result.Enrollment.ID,
		"status":        result.Enrollment.PaymentStatus,
	})
}
