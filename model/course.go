package model

import (
	"time"

	"gorm.io/gorm"
)

// Course represents a sellable course offered on the site
type Course struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Image       string         `json:"image"`
	Price       float64        `gorm:"default:0" json:"price"`
	AccessURL   string         `json:"access_url"`
	// MaterialKey is the object storage key of the uploaded course material
	MaterialKey string         `json:"-"`
	StartDate   *time.Time     `json:"start_date"`
	EndDate     *time.Time     `json:"end_date"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	// AccessDays overrides the configured default access window when > 0
	AccessDays  int            `gorm:"default:0" json:"access_days"`

	// Relationships
	Enrollments []CourseEnrollment `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
}
