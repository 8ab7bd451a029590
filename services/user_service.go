package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/drjulio/clinic-api/model"
	"github.com/drjulio/clinic-api/utils/auth"
)

var (
	// ErrUserNotFound means no user matches the given id or email
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken means the email already belongs to another account
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials means the email/password pair does not match
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrWeakPassword means the password does not meet the minimum rules
	ErrWeakPassword = errors.New("password does not meet requirements")
)

// UserService manages account registration and credential checks
type UserService struct {
	db *gorm.DB
}

// NewUserService creates a new user service
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// Register creates a student account with the given credentials
func (s *UserService) Register(email, password, name string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !auth.IsPasswordValid(password) {
		return nil, ErrWeakPassword
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := model.User{
		Username:     NewIdentityService(s.db).availableUsername(email),
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Role:         model.RoleStudent,
	}
	if err := s.db.Create(&user).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &user, nil
}

// Authenticate checks the email/password pair and returns the account
func (s *UserService) Authenticate(email, password string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user model.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if err := auth.VerifyPassword(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// GetByID fetches one user
func (s *UserService) GetByID(id uint) (*model.User, error) {
	var user model.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return &user, nil
}

// ChangePassword sets a new password and bumps the token version so every
// outstanding token is invalidated
func (s *UserService) ChangePassword(userID uint, currentPassword, newPassword string) error {
	user, err := s.GetByID(userID)
	if err != nil {
		return err
	}
	if err := auth.VerifyPassword(user.PasswordHash, currentPassword); err != nil {
		return ErrInvalidCredentials
	}
	if !auth.IsPasswordValid(newPassword) {
		return ErrWeakPassword
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.db.Model(user).Updates(map[string]interface{}{
		"password_hash": hash,
		"token_version": gorm.Expr("token_version + 1"),
	}).Error; err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// InvalidateTokens bumps the token version, logging the user out everywhere
func (s *UserService) InvalidateTokens(userID uint) error {
	if err := s.db.Model(&model.User{}).
		Where("id = ?", userID).
		Update("token_version", gorm.Expr("token_version + 1")).Error; err != nil {
		return fmt.Errorf("failed to invalidate tokens: %w", err)
	}
	return nil
}
