package gallery

import (
	"errors"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/drjulio/clinic-api/model"
	"github.com/drjulio/clinic-api/services"
	"github.com/drjulio/clinic-api/services/storage"
	"github.com/drjulio/clinic-api/utils/response"
	"github.com/drjulio/clinic-api/utils/validation"
)

// allowed upload extensions per media type
var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
}
var videoExtensions = map[string]bool{
	".mp4": true, ".webm": true,
}

// GalleryHandler serves the public gallery and the admin upload endpoints
type GalleryHandler struct {
	gallery *services.GalleryService
}

// NewGalleryHandler creates a new gallery handler
func NewGalleryHandler(db *gorm.DB, spaces *storage.SpacesClient) *GalleryHandler {
	return &GalleryHandler{
		gallery: services.NewGalleryService(db, spaces),
	}
}

// List returns one page of gallery items, optionally filtered by category
func (h *GalleryHandler) List(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 24)
	meta := response.CalculatePagination(page, limit, 0)

	items, total, err := h.gallery.List(c.Query("category"), meta.CurrentPage, meta.PerPage)
	if err != nil {
		return response.InternalServerError(c, "Failed to list gallery")
	}
	return response.Paginated(c, items, response.CalculatePagination(meta.CurrentPage, meta.PerPage, total))
}

// Upload stores a media file from a multipart form and records the item
func (h *GalleryHandler) Upload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "A media file is required")
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	mediaType := ""
	switch {
	case imageExtensions[ext]:
		mediaType = model.MediaTypeImage
	case videoExtensions[ext]:
		mediaType = model.MediaTypeVideo
	default:
		return response.BadRequest(c, "Unsupported media type")
	}

	src, err := file.Open()
	if err != nil {
		return response.InternalServerError(c, "Failed to read upload")
	}
	defer src.Close()

	item := model.GalleryItem{
		Title:       validation.SanitizeString(c.FormValue("title")),
		Description: validation.SanitizeString(c.FormValue("description")),
		MediaType:   mediaType,
		Filename:    file.Filename,
		Caption:     validation.SanitizeString(c.FormValue("caption")),
	}
	if category := c.FormValue("category"); category != "" {
		item.Category = category
	}

	if err := h.gallery.Upload(c.Context(), &item, src); err != nil {
		return response.InternalServerError(c, "Failed to upload media")
	}
	return response.Created(c, item)
}

// Delete removes a gallery item and its stored object
func (h *GalleryHandler) Delete(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return response.BadRequest(c, "Invalid gallery item id")
	}

	if err := h.gallery.Delete(c.Context(), uint(id)); err != nil {
		if errors.Is(err, services.ErrGalleryItemNotFound) {
			return response.NotFound(c, "Gallery item not found")
		}
		return response.InternalServerError(c, "Failed to delete gallery item")
	}
	return response.NoContent(c)
}
