package appointment

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/drjulio/clinic-api/model"
	"github.com/drjulio/clinic-api/services"
	"github.com/drjulio/clinic-api/utils/response"
	"github.com/drjulio/clinic-api/utils/validation"
)

// AppointmentHandler serves the public booking form and the admin agenda
type AppointmentHandler struct {
	appointments *services.AppointmentService
	validator    *validation.Validator
}

// NewAppointmentHandler creates a new appointment handler
func NewAppointmentHandler(db *gorm.DB) *AppointmentHandler {
	return &AppointmentHandler{
		appointments: services.NewAppointmentService(db),
		validator:    validation.NewValidator(),
	}
}

// CreateRequest is the public booking payload
type CreateRequest struct {
	Name   string    `json:"name" validate:"required,min=2,max=100"`
	Email  string    `json:"email" validate:"required,email"`
	Phone  string    `json:"phone" validate:"required,brphone"`
	Date   time.Time `json:"date" validate:"required"`
	Reason string    `json:"reason" validate:"max=2000"`
}

// Create stores a consultation request from the public site
func (h *AppointmentHandler) Create(c *fiber.Ctx) error {
	var req CreateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if errs := h.validator.ValidateStruct(&req); errs != nil {
		return response.ValidationError(c, errs)
	}
	if req.Date.Before(time.Now()) {
		return response.BadRequest(c, "Appointment date must be in the future")
	}

	appointment := model.Appointment{
		Name:   validation.SanitizeString(req.Name),
		Email:  req.Email,
		Phone:  req.Phone,
		Date:   req.Date,
		Reason: validation.SanitizeString(req.Reason),
	}
	if err := h.appointments.Create(&appointment); err != nil {
		return response.InternalServerError(c, "Failed to create appointment")
	}
	return response.Created(c, appointment)
}

// List returns appointments for the admin agenda, optionally by status
func (h *AppointmentHandler) List(c *fiber.Ctx) error {
	appointments, err := h.appointments.List(c.Query("status"))
	if err != nil {
		return response.InternalServerError(c, "Failed to list appointments")
	}
	return response.Success(c, appointments)
}

// StatusRequest carries the new appointment status
type StatusRequest struct {
	Status string `json:"status" validate:"required,oneof=confirmed cancelled"`
}

// UpdateStatus confirms or cancels an appointment
func (h *AppointmentHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return response.BadRequest(c, "Invalid appointment id")
	}

	var req StatusRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if errs := h.validator.ValidateStruct(&req); errs != nil {
		return response.ValidationError(c, errs)
	}

	appointment, err := h.appointments.UpdateStatus(uint(id), req.Status)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAppointmentNotFound):
			return response.NotFound(c, "Appointment not found")
		case errors.Is(err, services.ErrInvalidStatusTransition):
			return response.BadRequest(c, "Status change not allowed")
		default:
			return response.InternalServerError(c, "Failed to update appointment")
		}
	}
	return response.Success(c, appointment)
}

// ContactRequest is the public contact form payload
type ContactRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required,min=2,max=200"`
	Message string `json:"message" validate:"required,min=5,max=5000"`
}

// CreateContact stores a contact form submission
func (h *AppointmentHandler) CreateContact(c *fiber.Ctx) error {
	var req ContactRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if errs := h.validator.ValidateStruct(&req); errs != nil {
		return response.ValidationError(c, errs)
	}

	msg := model.ContactMessage{
		Name:    validation.SanitizeString(req.Name),
		Email:   req.Email,
		Subject: validation.SanitizeString(req.Subject),
		Message: validation.SanitizeString(req.Message),
	}
	if err := h.appointments.CreateContactMessage(&msg); err != nil {
		return response.InternalServerError(c, "Failed to send message")
	}
	return response.Created(c, msg)
}

// ListContacts returns contact messages for the admin panel
func (h *AppointmentHandler) ListContacts(c *fiber.Ctx) error {
	messages, err := h.appointments.ListContactMessages()
	if err != nil {
		return response.InternalServerError(c, "Failed to list messages")
	}
	return response.Success(c, messages)
}
