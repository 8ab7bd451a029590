package model

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// User roles
const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// User represents a registered user in the system
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Username     string         `gorm:"uniqueIndex;not null" json:"username"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"` // Never expose password in JSON
	Name         string         `json:"name"`
	Role         string         `gorm:"type:varchar(20);default:'student'" json:"role"` // student, admin
	TokenVersion int            `gorm:"default:0" json:"-"`                             // Increment to invalidate all user tokens

	// Relationships
	Enrollments []CourseEnrollment `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// IsAdmin reports whether the user has the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UsernameFromEmail derives a username from the local part of an email address
func UsernameFromEmail(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}
