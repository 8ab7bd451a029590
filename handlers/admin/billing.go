package admin

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/drjulio/clinic-api/model"
	"github.com/drjulio/clinic-api/services"
	"github.com/drjulio/clinic-api/utils/response"
)

// BillingRequest is the create/update payload for a billing record
type BillingRequest struct {
	PatientName string  `json:"patient_name" validate:"required,min=2,max=100"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount" validate:"gt=0"`
	Status      string  `json:"status" validate:"omitempty,oneof=pending paid cancelled"`
}

// ListBilling returns billing records, optionally filtered by status
func (h *AdminHandler) ListBilling(c *fiber.Ctx) error {
	records, err := h.billing.List(c.Query("status"))
	if err != nil {
		return response.InternalServerError(c, "Failed to list billing records")
	}
	return response.Success(c, records)
}

// CreateBilling adds a billing record
func (h *AdminHandler) CreateBilling(c *fiber.Ctx) error {
	var req BillingRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if errs := h.validator.ValidateStruct(&req); errs != nil {
		return response.ValidationError(c, errs)
	}

	record := model.BillingRecord{
		PatientName: req.PatientName,
		Description: req.Description,
		Amount:      req.Amount,
	}
	if req.Status != "" {
		record.Status = req.Status
	}

	if err := h.billing.Create(&record); err != nil {
		return response.InternalServerError(c, "Failed to create billing record")
	}
	return response.Created(c, record)
}

// UpdateBilling modifies a billing record
func (h *AdminHandler) UpdateBilling(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return response.BadRequest(c, "Invalid billing record id")
	}

	var req BillingRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if errs := h.validator.ValidateStruct(&req); errs != nil {
		return response.ValidationError(c, errs)
	}

	record, err := h.billing.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, services.ErrBillingRecordNotFound) {
			return response.NotFound(c, "Billing record not found")
		}
		return response.InternalServerError(c, "Failed to fetch billing record")
	}

	record.PatientName = req.PatientName
	record.Description = req.Description
	record.Amount = req.Amount
	if req.Status != "" {
		record.Status = req.Status
	}

	if err := h.billing.Update(record); err != nil {
		return response.InternalServerError(c, "Failed to update billing record")
	}
	return response.Success(c, record)
}

// DeleteBilling removes a billing record
func (h *AdminHandler) DeleteBilling(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return response.BadRequest(c, "Invalid billing record id")
	}

	if err := h.billing.Delete(uint(id)); err != nil {
		if errors.Is(err, services.ErrBillingRecordNotFound) {
			return response.NotFound(c, "Billing record not found")
		}
		return response.InternalServerError(c, "Failed to delete billing record")
	}
	return response.NoContent(c)
}
