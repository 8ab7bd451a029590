package model

import (
	"time"

	"gorm.io/gorm"
)

// Appointment statuses
const (
	AppointmentPending   = "pending"
	AppointmentConfirmed = "confirmed"
	AppointmentCancelled = "cancelled"
)

// Appointment represents a consultation request made by a visitor
type Appointment struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Name      string         `gorm:"not null" json:"name"`
	Email     string         `gorm:"not null" json:"email"`
	Phone     string         `gorm:"not null" json:"phone"`
	Date      time.Time      `gorm:"not null" json:"date"`
	Reason    string         `gorm:"type:text" json:"reason"`
	Status    string         `gorm:"type:varchar(20);default:'pending'" json:"status"` // pending, confirmed, cancelled
}

// ContactMessage represents a message submitted through the contact form
type ContactMessage struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Name      string         `gorm:"not null" json:"name"`
	Email     string         `gorm:"not null" json:"email"`
	Subject   string         `gorm:"not null" json:"subject"`
	Message   string         `gorm:"type:text;not null" json:"message"`
}
