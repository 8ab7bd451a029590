package auth

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/drjulio/clinic-api/model"
	"github.com/drjulio/clinic-api/services"
	authutil "github.com/drjulio/clinic-api/utils/auth"
	"github.com/drjulio/clinic-api/utils/middleware"
	"github.com/drjulio/clinic-api/utils/response"
	"github.com/drjulio/clinic-api/utils/validation"
)

// AuthHandler bundles the authentication endpoints
type AuthHandler struct {
	db                   *gorm.DB
	users                *services.UserService
	jwtManager           *authutil.JWTManager
	validator            *validation.Validator
	bruteForceProtection *middleware.BruteForceProtection
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(db *gorm.DB, jwtManager *authutil.JWTManager, bruteForceProtection *middleware.BruteForceProtection) *AuthHandler {
	return &AuthHandler{
		db:                   db,
		users:                services.NewUserService(db),
		jwtManager:           jwtManager,
		validator:            validation.NewValidator(),
		bruteForceProtection: bruteForceProtection,
	}
}

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required,min=2,max=100"`
}

// UserResponse is the user shape returned by auth endpoints
type UserResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
}

// Register handles new account creation
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if errs := h.validator.ValidateStruct(&req); errs != nil {
		return response.ValidationError(c, errs)
	}

	user, err := h.users.Register(req.Email, req.Password, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmailTaken):
			return response.Conflict(c, "Email already registered")
		case errors.Is(err, services.ErrWeakPassword):
			return response.BadRequest(c, "Password does not meet requirements")
		default:
			return response.InternalServerError(c, "Failed to create account")
		}
	}

	return response.Created(c, toUserResponse(user))
}
