package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/drjulio/clinic-api/model"
)

// ErrEventNotFound means no event matches the given id
var ErrEventNotFound = errors.New("event not found")

// EventService manages the clinic's announced events
type EventService struct {
	db *gorm.DB
}

// NewEventService creates a new event service
func NewEventService(db *gorm.DB) *EventService {
	return &EventService{db: db}
}

// ListActive returns upcoming and ongoing events for the public site
func (s *EventService) ListActive() ([]model.Event, error) {
	var events []model.Event
	if err := s.db.Where("is_active = ?", true).
		Order("start_date ASC").
		Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

// ListAll returns every event for the admin panel
func (s *EventService) ListAll() ([]model.Event, error) {
	var events []model.Event
	if err := s.db.Order("start_date DESC").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

// GetByID fetches one event
func (s *EventService) GetByID(id uint) (*model.Event, error) {
	var event model.Event
	if err := s.db.First(&event, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to fetch event: %w", err)
	}
	return &event, nil
}

// Create inserts a new event
func (s *EventService) Create(event *model.Event) error {
	if err := s.db.Create(event).Error; err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

// Update saves changes to an existing event
func (s *EventService) Update(event *model.Event) error {
	if err := s.db.Save(event).Error; err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	return nil
}

// Delete soft-deletes an event
func (s *EventService) Delete(id uint) error {
	result := s.db.Delete(&model.Event{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete event: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrEventNotFound
	}
	return nil
}
