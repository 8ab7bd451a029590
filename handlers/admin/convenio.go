package admin

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/drjulio/clinic-api/model"
	"github.com/drjulio/clinic-api/services"
	"github.com/drjulio/clinic-api/utils/response"
	"github.com/drjulio/clinic-api/utils/validation"
)

// ConvenioRequest is the create/update payload for a health-insurance
// agreement
type ConvenioRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=120"`
	Details string `json:"details"`
	Status  string `json:"status" validate:"omitempty,oneof=active inactive"`
}

// ListConvenios returns convenios, optionally filtered by status
func (h *AdminHandler) ListConvenios(c *fiber.Ctx) error {
	convenios, err := h.convenios.List(c.Query("status"))
	if err != nil {
		return response.InternalServerError(c, "Failed to list convenios")
	}
	return response.Success(c, convenios)
}

// CreateConvenio adds a convenio
func (h *AdminHandler) CreateConvenio(c *fiber.Ctx) error {
	var req ConvenioRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if errs := h.validator.ValidateStruct(&req); errs != nil {
		return response.ValidationError(c, errs)
	}

	convenio := model.Convenio{
		Name:    validation.SanitizeString(req.Name),
		Details: validation.SanitizeString(req.Details),
	}
	if req.Status != "" {
		convenio.Status = req.Status
	}

	if err := h.convenios.Create(&convenio); err != nil {
		return response.InternalServerError(c, "Failed to create convenio")
	}
	return response.Created(c, convenio)
}

// UpdateConvenio modifies a convenio
func (h *AdminHandler) UpdateConvenio(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return response.BadRequest(c, "Invalid convenio id")
	}

	var req ConvenioRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if errs := h.validator.ValidateStruct(&req); errs != nil {
		return response.ValidationError(c, errs)
	}

	convenio, err := h.convenios.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, services.ErrConvenioNotFound) {
			return response.NotFound(c, "Convenio not found")
		}
		return response.InternalServerError(c, "Failed to fetch convenio")
	}

	convenio.Name = validation.SanitizeString(req.Name)
	convenio.Details = validation.SanitizeString(req.Details)
	if req.Status != "" {
		convenio.Status = req.Status
	}

	if err := h.convenios.Update(convenio); err != nil {
		return response.InternalServerError(c, "Failed to update convenio")
	}
	return response.Success(c, convenio)
}

// DeleteConvenio removes a convenio
func (h *AdminHandler) DeleteConvenio(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return response.BadRequest(c, "Invalid convenio id")
	}

	if err := h.convenios.Delete(uint(id)); err != nil {
		if errors.Is(err, services.ErrConvenioNotFound) {
			return response.NotFound(c, "Convenio not found")
		}
		return response.InternalServerError(c, "Failed to delete convenio")
	}
	return response.NoContent(c)
}
