package middleware

import (
	"strings"

	"github.com/drjulio/clinic-api/model"
	"github.com/drjulio/clinic-api/utils/auth"
	"github.com/drjulio/clinic-api/utils/response"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AuthMiddleware handles JWT authentication
type AuthMiddleware struct {
	jwtManager *auth.JWTManager
	db         *gorm.DB
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(jwtManager *auth.JWTManager, db *gorm.DB) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
		db:         db,
	}
}

func (m *AuthMiddleware) authenticate(c *fiber.Ctx) (*model.User, *auth.Claims, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return nil, nil, response.Unauthorized(c, "Missing authorization token")
	}

	// Extract token from "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, nil, response.Unauthorized(c, "Invalid authorization format")
	}

	claims, err := m.jwtManager.ValidateToken(parts[1])
	if err != nil {
		if err == auth.ErrExpiredToken {
			return nil, nil, response.Unauthorized(c, "Token has expired")
		}
		return nil, nil, response.Unauthorized(c, "Invalid token")
	}

	if claims.TokenType != auth.TokenTypeAccess {
		return nil, nil, response.Unauthorized(c, "Invalid token type")
	}

	// Load user from database and verify token version
	var user model.User
	if err := m.db.First(&user, claims.UserID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, response.Unauthorized(c, "User not found")
		}
		return nil, nil, response.InternalServerError(c, "Failed to load user")
	}

	if user.TokenVersion != claims.TokenVersion {
		return nil, nil, response.Unauthorized(c, "Token has been invalidated")
	}

	return &user, claims, nil
}

// Required is middleware that requires a valid JWT token
func (m *AuthMiddleware) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, claims, errResp := m.authenticate(c)
		if user == nil {
			return errResp
		}

		c.Locals("user_id", claims.UserID)
		c.Locals("user_email", claims.Email)
		c.Locals("user_role", user.Role)
		c.Locals("user", user)

		return c.Next()
	}
}

// RequireAdmin is middleware that requires a valid token with the admin role
func (m *AuthMiddleware) RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, claims, errResp := m.authenticate(c)
		if user == nil {
			return errResp
		}

		if !user.IsAdmin() {
			return response.Forbidden(c, "Admin access required")
		}

		c.Locals("user_id", claims.UserID)
		c.Locals("user_email", claims.Email)
		c.Locals("user_role", user.Role)
		c.Locals("user", user)

		return c.Next()
	}
}

// GetUserID extracts user ID from context
func GetUserID(c *fiber.Ctx) (uint, bool) {
	userID := c.Locals("user_id")
	if userID == nil {
		return 0, false
	}
	id, ok := userID.(uint)
	return id, ok
}

// GetUser extracts full user object from context
func GetUser(c *fiber.Ctx) (*model.User, bool) {
	user := c.Locals("user")
	if user == nil {
		return nil, false
	}
	u, ok := user.(*model.User)
	return u, ok
}
