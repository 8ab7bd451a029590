package event

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

// EventHandler serves the public events listing and the admin event CRUD
type EventHandler struct {
	events    *services.EventService
	validator *validation.Validator
}

// NewEventHandler creates a new event handler
func NewEventHandler(db *gorm.DB) *EventHandler {
	return &EventHandler{
		events:    services.NewEventService(db),
		validator: validation.NewValidator(),
	}
}

// List returns active events for the public site
func (h *EventHandler) List(c *fiber.Ctx) error {
	events, err := h.events.ListActive()
	if err != nil {
		return response.InternalServerError(c, "Failed to list events")
	}
	return response.Success(c, events)
}

// ListAll returns every event for the admin panel
func (h *EventHandler) ListAll(c *fiber.Ctx) error {
	events, err := h.events.ListAll()
	if err != nil {
		return response.InternalServerError(c, "Failed to list events")
	}
	return response.Success(c, events)
}

// EventRequest is the admin create/update payload
type EventRequest struct {
	Title       string    `json:"title" validate:"required,min=3,max=200"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"start_date" validate:"required"`
	EndDate     time.Time `json:"end_date" validate:"required"`
	Location    string    `json:"location"`
	Image       string    `json:"image"`
	IsActive    *bool     `json:"is_active"`
}

// Create adds an event
func (h *EventHandler) Create(c *fiber.Ctx) error {
	var req EventRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if errs := h.validator.ValidateStruct(&req); errs != nil {
		return response.ValidationError(c, errs)
	}
	if req.EndDate.Before(req.StartDate) {
		return response.BadRequest(c, "End date must be after start date")
	}

	event := model.Event{
		Title:       req.Title,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Location:    req.Location,
		Image:       req.Image,
		IsActive:    true,
	}
	if req.IsActive != nil {
		event.IsActive = *req.IsActive
	}

	if err := h.events.Create(&event); err != nil {
		return response.InternalServerError(c, "Failed to create event")
	}
	return response.Created(c, event)
}

// Update modifies an event
func (h *EventHandler) Update(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return response.BadRequest(c, "Invalid event id")
	}

	event, err := h.events.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, services.ErrEventNotFound) {
			return response.NotFound(c, "Event not found")
		}
		return response.InternalServerError(c, "Failed to fetch event")
	}

	var req EventRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if errs := h.validator.ValidateStruct(&req); errs != nil {
		return response.ValidationError(c, errs)
	}
	if req.EndDate.Before(req.StartDate) {
		return response.BadRequest(c, "End date must be after start date")
	}

	event.Title = req.Title
	event.Description = req.Description
	event.StartDate = req.StartDate
	event.EndDate = req.EndDate
	event.Location = req.Location
	event.Image = req.Image
	if req.IsActive != nil {
		event.IsActive = *req.IsActive
	}

	if err := h.events.Update(event); err != nil {
		return response.InternalServerError(c, "Failed to update event")
	}
	return response.Success(c, event)
}

// Delete removes an event
func (h *EventHandler) Delete(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return response.BadRequest(c, "Invalid event id")
	}

	if err := h.events.Delete(uint(id)); err != nil {
		if errors.Is(err, services.ErrEventNotFound) {
			return response.NotFound(c, "Event not found")
		}
		return response.InternalServerError(c, "Failed to delete event")
	}
	return response.NoContent(c)
}
