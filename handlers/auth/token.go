package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/drjulio/clinic-api/services"
	authutil "github.com/drjulio/clinic-api/utils/auth"
	"github.com/drjulio/clinic-api/utils/middleware"
	"github.com/drjulio/clinic-api/utils/response"
)

// RefreshRequest carries the refresh token being exchanged
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Refresh exchanges a valid refresh token for a new access token
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req RefreshRequest
	if err := c.BodyParser(&req); err != nil || req.RefreshToken == "" {
		return response.BadRequest(c, "Refresh token is required")
	}

	claims, err := h.jwtManager.ValidateToken(req.RefreshToken)
	if err != nil {
		return response.Unauthorized(c, "Invalid refresh token")
	}

	// the token version check makes logout-everywhere effective
	user, err := h.users.GetByID(claims.UserID)
	if err != nil {
		return response.Unauthorized(c, "Invalid refresh token")
	}
	if user.TokenVersion != claims.TokenVersion {
		return response.Unauthorized(c, "Token has been revoked")
	}

	accessToken, _, err := h.jwtManager.RefreshAccessToken(req.RefreshToken, user.TokenVersion)
	if err != nil {
		if errors.Is(err, authutil.ErrExpiredToken) {
			return response.Unauthorized(c, "Refresh token has expired")
		}
		return response.Unauthorized(c, "Invalid refresh token")
	}

	return response.Success(c, fiber.Map{
		"access_token": accessToken,
		"expires_in":   24 * 60 * 60,
	})
}

// Logout invalidates every outstanding token for the authenticated user
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	if err := h.users.InvalidateTokens(userID); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return response.Unauthorized(c, "Authentication required")
		}
		return response.InternalServerError(c, "Failed to log out")
	}

	return response.SuccessWithMessage(c, "Logged out", nil)
}
