package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/drjulio/clinic-api/model"
)

// ErrBillingRecordNotFound means no billing record matches the given id
var ErrBillingRecordNotFound = errors.New("billing record not found")

// BillingService manages the clinic's internal billing records
type BillingService struct {
	db *gorm.DB
}

// NewBillingService creates a new billing service
func NewBillingService(db *gorm.DB) *BillingService {
	return &BillingService{db: db}
}

// List returns billing records, optionally filtered by status, newest first
func (s *BillingService) List(status string) ([]model.BillingRecord, error) {
	query := s.db.Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var records []model.BillingRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list billing records: %w", err)
	}
	return records, nil
}

// GetByID fetches one billing record
func (s *BillingService) GetByID(id uint) (*model.BillingRecord, error) {
	var record model.BillingRecord
	if err := s.db.First(&record, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBillingRecordNotFound
		}
		return nil, fmt.Errorf("failed to fetch billing record: %w", err)
	}
	return &record, nil
}

// Create inserts a new billing record
func (s *BillingService) Create(record *model.BillingRecord) error {
	if err := s.db.Create(record).Error; err != nil {
		return fmt.Errorf("failed to create billing record: %w", err)
	}
	return nil
}

// Update saves changes to a billing record
func (s *BillingService) Update(record *model.BillingRecord) error {
	if err := s.db.Save(record).Error; err != nil {
		return fmt.Errorf("failed to update billing record: %w", err)
	}
	return nil
}

// Delete soft-deletes a billing record
func (s *BillingService) Delete(id uint) error {
	result := s.db.Delete(&model.BillingRecord{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete billing record: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrBillingRecordNotFound
	}
	return nil
}
