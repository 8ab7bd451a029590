package admin

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/drjulio/clinic-api/model"
	"github.com/drjulio/clinic-api/services"
	"github.com/drjulio/clinic-api/utils/response"
)

// InvoiceRequest is the create/update payload for a fiscal invoice
type InvoiceRequest struct {
	Number  string    `json:"number" validate:"required,max=50"`
	Amount  float64   `json:"amount" validate:"gt=0"`
	DueDate time.Time `json:"due_date" validate:"required"`
	Status  string    `json:"status" validate:"omitempty,oneof=pending paid cancelled"`
}

// ListInvoices returns invoices, optionally filtered by status
func (h *AdminHandler) ListInvoices(c *fiber.Ctx) error {
	invoices, err := h.invoices.List(c.Query("status"))
	if err != nil {
		return response.InternalServerError(c, "Failed to list invoices")
	}
	return response.Success(c, invoices)
}

// CreateInvoice adds a fiscal invoice
func (h *AdminHandler) CreateInvoice(c *fiber.Ctx) error {
	var req InvoiceRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if errs := h.validator.ValidateStruct(&req); errs != nil {
		return response.ValidationError(c, errs)
	}

	invoice := model.Invoice{
		Number:  req.Number,
		Amount:  req.Amount,
		DueDate: req.DueDate,
	}
	if req.Status != "" {
		invoice.Status = req.Status
	}

	if err := h.invoices.Create(&invoice); err != nil {
		if errors.Is(err, services.ErrInvoiceNumberTaken) {
			return response.Conflict(c, "Invoice number already in use")
		}
		return response.InternalServerError(c, "Failed to create invoice")
	}
	return response.Created(c, invoice)
}

// UpdateInvoice modifies a fiscal invoice
func (h *AdminHandler) UpdateInvoice(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return response.BadRequest(c, "Invalid invoice id")
	}

	var req InvoiceRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if errs := h.validator.ValidateStruct(&req); errs != nil {
		return response.ValidationError(c, errs)
	}

	invoice, err := h.invoices.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, services.ErrInvoiceNotFound) {
			return response.NotFound(c, "Invoice not found")
		}
		return response.InternalServerError(c, "Failed to fetch invoice")
	}

	invoice.Number = req.Number
	invoice.Amount = req.Amount
	invoice.DueDate = req.DueDate
	if req.Status != "" {
		invoice.Status = req.Status
	}

	if err := h.invoices.Update(invoice); err != nil {
		if errors.Is(err, services.ErrInvoiceNumberTaken) {
			return response.Conflict(c, "Invoice number already in use")
		}
		return response.InternalServerError(c, "Failed to update invoice")
	}
	return response.Success(c, invoice)
}

// DeleteInvoice removes a fiscal invoice
func (h *AdminHandler) DeleteInvoice(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return response.BadRequest(c, "Invalid invoice id")
	}

	if err := h.invoices.Delete(uint(id)); err != nil {
		if errors.Is(err, services.ErrInvoiceNotFound) {
			return response.NotFound(c, "Invoice not found")
		}
		return response.InternalServerError(c, "Failed to delete invoice")
	}
	return response.NoContent(c)
}
