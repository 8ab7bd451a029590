package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/drjulio/clinic-api/model"
)

var (
	// ErrAppointmentNotFound means no appointment matches the given id
	ErrAppointmentNotFound = errors.New("appointment not found")
	// ErrInvalidStatusTransition means the requested status change is not
	// allowed from the appointment's current state
	ErrInvalidStatusTransition = errors.New("invalid appointment status transition")
)

// AppointmentService manages consultation requests and contact messages
type AppointmentService struct {
	db *gorm.DB
}

// NewAppointmentService creates a new appointment service
func NewAppointmentService(db *gorm.DB) *AppointmentService {
	return &AppointmentService{db: db}
}

// Create stores a new consultation request in the pending state
func (s *AppointmentService) Create(appointment *model.Appointment) error {
	appointment.Status = model.AppointmentPending
	if err := s.db.Create(appointment).Error; err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

// List returns appointments, optionally filtered by status, newest first
func (s *AppointmentService) List(status string) ([]model.Appointment, error) {
	query := s.db.Order("date ASC")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var appointments []model.Appointment
	if err := query.Find(&appointments).Error; err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

// UpdateStatus moves an appointment between states. Only pending
// appointments can be confirmed; cancelled is reachable from any state.
func (s *AppointmentService) UpdateStatus(id uint, status string) (*model.Appointment, error) {
	var appointment model.Appointment
	if err := s.db.First(&appointment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("failed to fetch appointment: %w", err)
	}

	switch status {
	case model.AppointmentConfirmed:
		if appointment.Status != model.AppointmentPending {
			return nil, ErrInvalidStatusTransition
		}
	case model.AppointmentCancelled:
		// always allowed
	default:
		return nil, ErrInvalidStatusTransition
	}

	appointment.Status = status
	if err := s.db.Model(&appointment).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("failed to update appointment status: %w", err)
	}
	return &appointment, nil
}

// CreateContactMessage stores a contact form submission
func (s *AppointmentService) CreateContactMessage(msg *model.ContactMessage) error {
	if err := s.db.Create(msg).Error; err != nil {
		return fmt.Errorf("failed to create contact message: %w", err)
	}
	return nil
}

// ListContactMessages returns contact messages newest first
func (s *AppointmentService) ListContactMessages() ([]model.ContactMessage, error) {
	var messages []model.ContactMessage
	if err := s.db.Order("created_at DESC").Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("failed to list contact messages: %w", err)
	}
	return messages, nil
}
