package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/drjulio/clinic-api/services"
	"github.com/drjulio/clinic-api/utils/middleware"
	"github.com/drjulio/clinic-api/utils/response"
)

// Profile returns the authenticated user's account
func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}
	return response.Success(c, toUserResponse(user))
}

// ChangePasswordRequest carries the current and replacement passwords
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// ChangePassword replaces the user's password and revokes existing tokens
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if errs := h.validator.ValidateStruct(&req); errs != nil {
		return response.ValidationError(c, errs)
	}

	if err := h.users.ChangePassword(userID, req.CurrentPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			return response.Unauthorized(c, "Current password is incorrect")
		case errors.Is(err, services.ErrWeakPassword):
			return response.BadRequest(c, "New password does not meet requirements")
		default:
			return response.InternalServerError(c, "Failed to change password")
		}
	}

	return response.SuccessWithMessage(c, "Password changed. Please log in again.", nil)
}
