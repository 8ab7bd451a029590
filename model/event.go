package model

import (
	"time"

	"gorm.io/gorm"
)

// Event represents a clinic event announced on the site
type Event struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	StartDate   time.Time      `gorm:"not null" json:"start_date"`
	EndDate     time.Time      `gorm:"not null" json:"end_date"`
	Location    string         `json:"location"`
	Image       string         `json:"image"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
}

// IsPast reports whether the event has already ended
func (e *Event) IsPast(now time.Time) bool {
	return now.After(e.EndDate)
}
