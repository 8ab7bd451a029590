package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/drjulio/clinic-api/model"
	"github.com/drjulio/clinic-api/utils/auth"
)

// IdentityService maps payer emails onto user accounts, creating an account
// with a temporary password when none exists yet
type IdentityService struct {
	db *gorm.DB
}

// NewIdentityService creates a new identity service
func NewIdentityService(db *gorm.DB) *IdentityService {
	return &IdentityService{db: db}
}

// WithTx returns a copy of the service bound to the given transaction
func (s *IdentityService) WithTx(tx *gorm.DB) *IdentityService {
	return &IdentityService{db: tx}
}

// ResolvedUser is the outcome of resolving a payer identity. TempPassword is
// set only when the account was provisioned by this call, so the welcome
// email can include the credential exactly once.
type ResolvedUser struct {
	User         *model.User
	Created      bool
	TempPassword string
}

// Resolve finds the user owning the given email, creating one when absent.
// Email matching is case-insensitive. Concurrent resolution of the same
// email is safe: a lost insert race falls back to fetching the winner's row.
func (s *IdentityService) Resolve(email, name string) (*ResolvedUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user model.User
	err := s.db.Where("email = ?", email).First(&user).Error
	if err == nil {
		return &ResolvedUser{User: &user}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up user by email: %w", err)
	}

	tempPassword, err := auth.GenerateTempPassword()
	if err != nil {
		return nil, fmt.Errorf("failed to generate temporary password: %w", err)
	}
	hash, err := auth.HashPassword(tempPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash temporary password: %w", err)
	}

	user = model.User{
		Username:     s.availableUsername(email),
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Role:         model.RoleStudent,
	}
	// ON CONFLICT DO NOTHING keeps a lost insert race from aborting the
	// surrounding transaction
	result := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&user)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to create user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		// lost the race to a concurrent payment for the same payer
		if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to fetch user after conflict: %w", err)
		}
		return &ResolvedUser{User: &user}, nil
	}

	return &ResolvedUser{User: &user, Created: true, TempPassword: tempPassword}, nil
}

// availableUsername derives a username from the email and suffixes it when
// the plain form is already taken
func (s *IdentityService) availableUsername(email string) string {
	base := model.UsernameFromEmail(email)

	username := base
	for i := 1; ; i++ {
		var count int64
		if err := s.db.Model(&model.User{}).Where("username = ?", username).Count(&count).Error; err != nil || count == 0 {
			return username
		}
		username = fmt.Sprintf("%s%d", base, i)
	}
}
