package admin

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/drjulio/clinic-api/model"
	"github.com/drjulio/clinic-api/services"
	"github.com/drjulio/clinic-api/services/payment"
	"github.com/drjulio/clinic-api/utils/response"
	"github.com/drjulio/clinic-api/utils/validation"
)

// AdminHandler serves the remaining admin-only endpoints: site settings,
// billing records, fiscal invoices, convenios and the Hotmart subscriptions
// listing
type AdminHandler struct {
	settings  *services.SettingsService
	billing   *services.BillingService
	invoices  *services.InvoiceService
	convenios *services.ConvenioService
	hotmart   *payment.HotmartClient
	validator *validation.Validator
}

// NewAdminHandler creates a new admin handler. hotmart may be nil when no
// Hotmart credentials are configured.
func NewAdminHandler(db *gorm.DB, hotmart *payment.HotmartClient) *AdminHandler {
	return &AdminHandler{
		settings:  services.NewSettingsService(db),
		billing:   services.NewBillingService(db),
		invoices:  services.NewInvoiceService(db),
		convenios: services.NewConvenioService(db),
		hotmart:   hotmart,
		validator: validation.NewValidator(),
	}
}

// ListSubscriptions proxies the Hotmart subscriptions listing for the admin
// dashboard. The optional status query filters by subscription status.
func (h *AdminHandler) ListSubscriptions(c *fiber.Ctx) error {
	if h.hotmart == nil {
		return response.NotFound(c, "Hotmart integration is not configured")
	}

	subs, err := h.hotmart.ListSubscriptions(c.Context(), c.Query("status"))
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch subscriptions")
	}
	return response.Success(c, subs)
}

// GetSettings returns the site settings
func (h *AdminHandler) GetSettings(c *fiber.Ctx) error {
	settings, err := h.settings.Get()
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch settings")
	}
	return response.Success(c, settings)
}

// UpdateSettings replaces the site settings
func (h *AdminHandler) UpdateSettings(c *fiber.Ctx) error {
	var req model.SiteSettings
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	settings, err := h.settings.Update(&req)
	if err != nil {
		return response.InternalServerError(c, "Failed to update settings")
	}
	return response.Success(c, settings)
}
