package content

import (
	"errors"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/drjulio/clinic-api/services"
	authutil "github.com/drjulio/clinic-api/utils/auth"
	"github.com/drjulio/clinic-api/utils/middleware"
	"github.com/drjulio/clinic-api/utils/response"
)

// MediaHandler serves course media files gated by a signed token plus an
// active enrollment
type MediaHandler struct {
	enrollments *services.EnrollmentService
	mediaTokens *authutil.MediaTokenManager
	contentRoot string
}

// NewMediaHandler creates a new media handler serving files under contentRoot
func NewMediaHandler(enrollments *services.EnrollmentService, mediaTokens *authutil.MediaTokenManager, contentRoot string) *MediaHandler {
	return &MediaHandler{
		enrollments: enrollments,
		mediaTokens: mediaTokens,
		contentRoot: contentRoot,
	}
}

// Serve checks the token and the caller's enrollment before streaming the
// file. Admins skip the enrollment check; everyone presents a valid token.
func (h *MediaHandler) Serve(c *fiber.Ctx) error {
	courseID, err := strconv.ParseUint(c.Params("course_id"), 10, 32)
	if err != nil || courseID == 0 {
		return response.BadRequest(c, "Invalid course id")
	}

	// the token is bound to the full request path, query stripped
	if err := h.mediaTokens.Validate(c.Query("token"), c.Path()); err != nil {
		switch {
		case errors.Is(err, authutil.ErrMediaTokenExpired):
			return response.Forbidden(c, "Content link has expired")
		default:
			return response.Forbidden(c, "Invalid content link")
		}
	}

	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	if !user.IsAdmin() {
		if _, err := h.enrollments.ActiveEnrollment(uint(courseID), user.ID, time.Now()); err != nil {
			switch {
			case errors.Is(err, services.ErrEnrollmentNotFound), errors.Is(err, services.ErrAccessExpired):
				return response.Forbidden(c, "Course access window is not active")
			default:
				return response.InternalServerError(c, "Failed to check access")
			}
		}
	}

	rel := filepath.Join(strconv.FormatUint(courseID, 10), c.Params("*"))
	full := filepath.Join(h.contentRoot, rel)

	// keep traversal attempts inside the content root
	if !strings.HasPrefix(filepath.Clean(full), filepath.Clean(h.contentRoot)+string(filepath.Separator)) {
		return response.BadRequest(c, "Invalid media path")
	}

	return c.SendFile(full)
}
