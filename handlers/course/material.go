package course

import (
	"errors"
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/drjulio/clinic-api/services"
	"github.com/drjulio/clinic-api/services/storage"
	"github.com/drjulio/clinic-api/utils/pdfvalidation"
	"github.com/drjulio/clinic-api/utils/response"
)

// MaterialHandler handles admin uploads of course material PDFs
type MaterialHandler struct {
	courses *services.CourseService
	spaces  *storage.SpacesClient
}

// NewMaterialHandler creates a material handler. spaces may be nil when
// object storage is not configured.
func NewMaterialHandler(courses *services.CourseService, spaces *storage.SpacesClient) *MaterialHandler {
	return &MaterialHandler{courses: courses, spaces: spaces}
}

// Upload validates a PDF and stores it under the course's material prefix
func (h *MaterialHandler) Upload(c *fiber.Ctx) error {
	if h.spaces == nil {
		return response.InternalServerError(c, "Object storage not configured")
	}

	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid course id")
	}

	course, err := h.courses.GetByID(id)
	if err != nil {
		if errors.Is(err, services.ErrCourseNotFound) {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to fetch course")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "A PDF file is required")
	}

	src, err := file.Open()
	if err != nil {
		return response.InternalServerError(c, "Failed to read upload")
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		return response.InternalServerError(c, "Failed to read upload")
	}

	result := pdfvalidation.Validate(content, pdfvalidation.CourseMaterialLimits)
	if !result.Valid {
		return response.BadRequest(c, result.Error)
	}

	key := storage.GenerateKey(fmt.Sprintf("courses/%d/material", course.ID), file.Filename)
	url, err := h.spaces.UploadBytes(c.Context(), key, content, "application/pdf")
	if err != nil {
		return response.InternalServerError(c, "Failed to store material")
	}

	course.MaterialKey = key
	if err := h.courses.Update(course); err != nil {
		return response.InternalServerError(c, "Failed to store material")
	}

	return response.Created(c, fiber.Map{
		"url":        url,
		"pages":      result.PageCount,
		"size_bytes": result.FileSize,
	})
}
