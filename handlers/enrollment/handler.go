package enrollment

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/drjulio/clinic-api/model"
	"github.com/drjulio/clinic-api/services"
	"github.com/drjulio/clinic-api/services/payment"
	"github.com/drjulio/clinic-api/services/storage"
	authutil "github.com/drjulio/clinic-api/utils/auth"
	"github.com/drjulio/clinic-api/utils/middleware"
	"github.com/drjulio/clinic-api/utils/response"
)

// EnrollmentHandler serves a student's enrollments and their course content
type EnrollmentHandler struct {
	db          *gorm.DB
	enrollments *services.EnrollmentService
	reconciler  *services.ReconcileService
	pagarme     *payment.PagarmeClient
	mediaTokens *authutil.MediaTokenManager
	policy      *services.AccessPolicy
	spaces      *storage.SpacesClient
}

// NewEnrollmentHandler creates a new enrollment handler. pagarme and spaces
// may be nil when those integrations are not configured.
func NewEnrollmentHandler(
	db *gorm.DB,
	enrollments *services.EnrollmentService,
	reconciler *services.ReconcileService,
	pagarme *payment.PagarmeClient,
	mediaTokens *authutil.MediaTokenManager,
	policy *services.AccessPolicy,
	spaces *storage.SpacesClient,
) *EnrollmentHandler {
	return &EnrollmentHandler{
		db:          db,
		enrollments: enrollments,
		reconciler:  reconciler,
		pagarme:     pagarme,
		mediaTokens: mediaTokens,
		policy:      policy,
		spaces:      spaces,
	}
}

// EnrollmentResponse augments the stored enrollment with the computed
// access state
type EnrollmentResponse struct {
	model.CourseEnrollment
	AccessActive bool `json:"access_active"`
}

func (h *EnrollmentHandler) toResponse(e model.CourseEnrollment) EnrollmentResponse {
	return EnrollmentResponse{
		CourseEnrollment: e,
		AccessActive:     h.policy.IsActive(&e, time.Now()),
	}
}

// ListMine returns the authenticated user's enrollments
func (h *EnrollmentHandler) ListMine(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	enrollments, err := h.enrollments.ListForUser(userID)
	if err != nil {
		return response.InternalServerError(c, "Failed to list enrollments")
	}

	out := make([]EnrollmentResponse, 0, len(enrollments))
	for _, e := range enrollments {
		out = append(out, h.toResponse(e))
	}
	return response.Success(c, out)
}

// Enroll opens a pending enrollment on a course for the authenticated user.
// Repeating the call returns the same enrollment, paid or not.
func (h *EnrollmentHandler) Enroll(c *fiber.Ctx) error {
	courseID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || courseID == 0 {
		return response.BadRequest(c, "Invalid course id")
	}

	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	var course model.Course
	if err := h.db.Where("is_active = ?", true).First(&course, uint(courseID)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to fetch course")
	}

	enrollment, err := h.enrollments.FindOrCreate(course.ID, user.ID, user.Name, user.Email)
	if err != nil {
		return response.InternalServerError(c, "Failed to create enrollment")
	}
	enrollment.Course = course

	return response.Created(c, h.toResponse(*enrollment))
}

// Get returns one enrollment; only the owner or an admin may see it
func (h *EnrollmentHandler) Get(c *fiber.Ctx) error {
	enrollment, errResp := h.ownedEnrollment(c)
	if errResp != nil {
		return errResp(c)
	}
	return response.Success(c, h.toResponse(*enrollment))
}

// PayRequest carries the card payment details for an enrollment
type PayRequest struct {
	CardHash string `json:"card_hash"`
}

// Pay charges the enrollment through the card gateway and reconciles the
// result. Submitting it twice converges on the same paid state.
func (h *EnrollmentHandler) Pay(c *fiber.Ctx) error {
	enrollment, errResp := h.ownedEnrollment(c)
	if errResp != nil {
		return errResp(c)
	}

	var req PayRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	providerName := payment.ProviderManual
	providerID := fmt.Sprintf("pay-%d", enrollment.ID)
	status := model.PaymentStatusPaid

	if req.CardHash != "" {
		if h.pagarme == nil {
			return response.InternalServerError(c, "Card payments are not configured")
		}
		txnID, txnStatus, err := h.pagarme.CreateTransaction(c.Context(), payment.CardCharge{
			Amount:    enrollment.Course.Price,
			CardHash:  req.CardHash,
			PayerName: enrollment.Name,
			Email:     enrollment.Email,
		})
		if err != nil {
			return response.InternalServerError(c, "Card charge failed")
		}
		providerName = payment.ProviderPagarme
		providerID = txnID
		status = txnStatus
	}

	raw, err := json.Marshal(payment.Event{
		ProviderID: providerID,
		Status:     status,
		CourseID:   enrollment.CourseID,
		PayerEmail: enrollment.Email,
		PayerName:  enrollment.Name,
		Amount:     enrollment.Course.Price,
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to record payment")
	}

	event, err := payment.ManualProvider{}.ConfirmPayment(raw, "")
	if err != nil {
		return response.InternalServerError(c, "Failed to record payment")
	}
	event.Provider = providerName

	result, err := h.reconciler.Process(event)
	if err != nil {
		return response.InternalServerError(c, "Failed to record payment")
	}

	return response.Success(c, h.toResponse(*result.Enrollment))
}

// ContentResponse carries the course access URL and a short-lived token per
// media path
type ContentResponse struct {
	Course    model.Course      `json:"course"`
	AccessEnd *time.Time        `json:"access_end"`
	MediaURLs map[string]string `json:"media_urls"`
}

// Content returns the course content entry points for an active enrollment.
// Media tokens are minted fresh on every call; stale ones simply expire.
func (h *EnrollmentHandler) Content(c *fiber.Ctx) error {
	enrollment, errResp := h.ownedEnrollment(c)
	if errResp != nil {
		return errResp(c)
	}

	if !h.policy.IsActive(enrollment, time.Now()) {
		return response.Forbidden(c, "Course access window is not active")
	}

	mediaPath := fmt.Sprintf("/api/v1/media/%d/index.m3u8", enrollment.CourseID)
	token := h.mediaTokens.Generate(mediaPath)

	urls := map[string]string{
		"playlist": fmt.Sprintf("%s?token=%s", mediaPath, token),
	}
	if h.spaces != nil && enrollment.Course.MaterialKey != "" {
		if materialURL, err := h.spaces.GeneratePresignedURL(enrollment.Course.MaterialKey, authutil.DefaultMediaTokenTTL); err == nil {
			urls["material"] = materialURL
		}
	}

	return response.Success(c, ContentResponse{
		Course:    enrollment.Course,
		AccessEnd: enrollment.AccessEnd,
		MediaURLs: urls,
	})
}

// ownedEnrollment loads the :id enrollment and enforces owner-or-admin. On
// failure it returns a responder to send instead of the enrollment.
func (h *EnrollmentHandler) ownedEnrollment(c *fiber.Ctx) (*model.CourseEnrollment, func(*fiber.Ctx) error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return nil, func(c *fiber.Ctx) error { return response.BadRequest(c, "Invalid enrollment id") }
	}

	user, ok := middleware.GetUser(c)
	if !ok {
		return nil, func(c *fiber.Ctx) error { return response.Unauthorized(c, "Authentication required") }
	}

	enrollment, err := h.enrollments.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, services.ErrEnrollmentNotFound) {
			return nil, func(c *fiber.Ctx) error { return response.NotFound(c, "Enrollment not found") }
		}
		return nil, func(c *fiber.Ctx) error { return response.InternalServerError(c, "Failed to fetch enrollment") }
	}

	if enrollment.UserID != user.ID && !user.IsAdmin() {
		return nil, func(c *fiber.Ctx) error { return response.Forbidden(c, "Enrollment belongs to another user") }
	}
	return enrollment, nil
}
