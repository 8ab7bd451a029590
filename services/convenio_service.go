package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/drjulio/clinic-api/model"
)

// ErrConvenioNotFound means no convenio matches the given id
var ErrConvenioNotFound = errors.New("convenio not found")

// ConvenioService manages the clinic's health-insurance agreements
type ConvenioService struct {
	db *gorm.DB
}

// NewConvenioService creates a new convenio service
func NewConvenioService(db *gorm.DB) *ConvenioService {
	return &ConvenioService{db: db}
}

// List returns convenios, optionally filtered by status, newest first
func (s *ConvenioService) List(status string) ([]model.Convenio, error) {
	query := s.db.Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var convenios []model.Convenio
	if err := query.Find(&convenios).Error; err != nil {
		return nil, fmt.Errorf("failed to list convenios: %w", err)
	}
	return convenios, nil
}

// GetByID fetches one convenio
func (s *ConvenioService) GetByID(id uint) (*model.Convenio, error) {
	var convenio model.Convenio
	if err := s.db.First(&convenio, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConvenioNotFound
		}
		return nil, fmt.Errorf("failed to fetch convenio: %w", err)
	}
	return &convenio, nil
}

// Create inserts a new convenio
func (s *ConvenioService) Create(convenio *model.Convenio) error {
	if err := s.db.Create(convenio).Error; err != nil {
		return fmt.Errorf("failed to create convenio: %w", err)
	}
	return nil
}

// Update saves changes to a convenio
func (s *ConvenioService) Update(convenio *model.Convenio) error {
	if err := s.db.Save(convenio).Error; err != nil {
		return fmt.Errorf("failed to update convenio: %w", err)
	}
	return nil
}

// Delete soft-deletes a convenio
func (s *ConvenioService) Delete(id uint) error {
	result := s.db.Delete(&model.Convenio{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete convenio: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrConvenioNotFound
	}
	return nil
}
