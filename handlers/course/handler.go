package course

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/drjulio/clinic-api/model"
	"github.com/drjulio/clinic-api/services"
	"github.com/drjulio/clinic-api/services/payment"
	"github.com/drjulio/clinic-api/utils/cache"
	"github.com/drjulio/clinic-api/utils/middleware"
	"github.com/drjulio/clinic-api/utils/response"
	"github.com/drjulio/clinic-api/utils/validation"
)

const (
	catalogCacheKey = "courses:active"
	catalogCacheTTL = 5 * time.Minute
)

// CourseHandler serves the public catalog and the admin course CRUD
type CourseHandler struct {
	courses    *services.CourseService
	stripe     *payment.StripeGateway
	reconciler *services.ReconcileService
	cache      *cache.RedisCache
	validator  *validation.Validator
}

// NewCourseHandler creates a new course handler. stripe and redisCache may
// be nil when those integrations are not configured.
func NewCourseHandler(db *gorm.DB, stripe *payment.StripeGateway, reconciler *services.ReconcileService, redisCache *cache.RedisCache) *CourseHandler {
	return &CourseHandler{
		courses:    services.NewCourseService(db),
		stripe:     stripe,
		reconciler: reconciler,
		cache:      redisCache,
		validator:  validation.NewValidator(),
	}
}

// List returns active courses for the public site. The catalog changes only
// through the admin panel, so a short redis cache absorbs the traffic.
func (h *CourseHandler) List(c *fiber.Ctx) error {
	if h.cache != nil {
		var cached []model.Course
		if err := h.cache.GetJSON(c.Context(), catalogCacheKey, &cached); err == nil {
			return response.Success(c, cached)
		}
	}

	courses, err := h.courses.ListActive()
	if err != nil {
		return response.InternalServerError(c, "Failed to list courses")
	}

	if h.cache != nil {
		_ = h.cache.SetJSON(c.Context(), catalogCacheKey, courses, catalogCacheTTL)
	}
	return response.Success(c, courses)
}

// invalidateCatalog drops the cached public catalog after an admin change
func (h *CourseHandler) invalidateCatalog(c *fiber.Ctx) {
	if h.cache != nil {
		_ = h.cache.Delete(c.Context(), catalogCacheKey)
	}
}

// ListAll returns every course, for the admin panel
func (h *CourseHandler) ListAll(c *fiber.Ctx) error {
	courses, err := h.courses.ListAll()
	if err != nil {
		return response.InternalServerError(c, "Failed to list courses")
	}
	return response.Success(c, courses)
}

// Get returns one course
func (h *CourseHandler) Get(c *fiber.Ctx) error {
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
	return response.Success(c, course)
}

// CourseRequest is the admin create/update payload
type CourseRequest struct {
	Title       string     `json:"title" validate:"required,min=3,max=200"`
	Description string     `json:"description"`
	Image       string     `json:"image"`
	Price       float64    `json:"price" validate:"gte=0"`
	AccessURL   string     `json:"access_url"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	IsActive    *bool      `json:"is_active"`
	AccessDays  int        `json:"access_days" validate:"gte=0"`
}

// Create adds a course to the catalog
func (h *CourseHandler) Create(c *fiber.Ctx) error {
	var req CourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if errs := h.validator.ValidateStruct(&req); errs != nil {
		return response.ValidationError(c, errs)
	}

	course := model.Course{
		Title:       req.Title,
		Description: req.Description,
		Image:       req.Image,
		Price:       req.Price,
		AccessURL:   req.AccessURL,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		IsActive:    true,
		AccessDays:  req.AccessDays,
	}
	if req.IsActive != nil {
		course.IsActive = *req.IsActive
	}

	if err := h.courses.Create(&course); err != nil {
		return response.InternalServerError(c, "Failed to create course")
	}
	h.invalidateCatalog(c)
	return response.Created(c, course)
}

// Update modifies an existing course
func (h *CourseHandler) Update(c *fiber.Ctx) error {
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

	var req CourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if errs := h.validator.ValidateStruct(&req); errs != nil {
		return response.ValidationError(c, errs)
	}

	course.Title = req.Title
	course.Description = req.Description
	course.Image = req.Image
	course.Price = req.Price
	course.AccessURL = req.AccessURL
	course.StartDate = req.StartDate
	course.EndDate = req.EndDate
	course.AccessDays = req.AccessDays
	if req.IsActive != nil {
		course.IsActive = *req.IsActive
	}

	if err := h.courses.Update(course); err != nil {
		return response.InternalServerError(c, "Failed to update course")
	}
	h.invalidateCatalog(c)
	return response.Success(c, course)
}

// Delete removes a course from the catalog
func (h *CourseHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid course id")
	}

	if err := h.courses.Delete(id); err != nil {
		if errors.Is(err, services.ErrCourseNotFound) {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to delete course")
	}
	h.invalidateCatalog(c)
	return response.NoContent(c)
}

// Checkout starts a hosted Stripe checkout for a course and returns the
// redirect URL. Fulfillment happens later through the webhook.
func (h *CourseHandler) Checkout(c *fiber.Ctx) error {
	if h.stripe == nil {
		return response.InternalServerError(c, "Card payments are not configured")
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
	if !course.IsActive {
		return response.NotFound(c, "Course not found")
	}

	email := ""
	if user, ok := middleware.GetUser(c); ok {
		email = user.Email
	}

	url, err := h.stripe.CreateCheckoutSession(payment.CheckoutInput{
		CourseID:    course.ID,
		CourseName:  course.Title,
		Description: course.Description,
		Price:       course.Price,
		PayerEmail:  email,
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to start checkout")
	}

	return response.Success(c, fiber.Map{"checkout_url": url})
}

// ConfirmCheckout reconciles a checkout session when the buyer lands on the
// success page, without waiting for the webhook. Reconciling here and again
// on the webhook converges on the same state.
func (h *CourseHandler) ConfirmCheckout(c *fiber.Ctx) error {
	if h.stripe == nil {
		return response.InternalServerError(c, "Card payments are not configured")
	}

	sessionID := c.Query("session_id")
	if sessionID == "" {
		return response.BadRequest(c, "session_id is required")
	}

	event, err := h.stripe.ConfirmSession(sessionID)
	if err != nil {
		if errors.Is(err, payment.ErrInvalidPayload) {
			return response.BadRequest(c, "Checkout session is not payable")
		}
		return response.InternalServerError(c, "Failed to confirm checkout")
	}

	result, err := h.reconciler.Process(event)
	if err != nil {
		if errors.Is(err, services.ErrCourseNotFound) {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to confirm checkout")
	}

	return response.Success(c, fiber.Map{
		"status":        event.Status,
		"enrollment_id": result.Enrollment.ID,
	})
}

func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(param), 10, 32)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}
