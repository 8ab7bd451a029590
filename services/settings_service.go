package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/drjulio/clinic-api/model"
)

// SettingsService manages the single site-wide settings row
type SettingsService struct {
	db *gorm.DB
}

// NewSettingsService creates a new settings service
func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{db: db}
}

// Get returns the settings row, creating a default one when absent
func (s *SettingsService) Get() (*model.SiteSettings, error) {
	var settings model.SiteSettings
	err := s.db.First(&settings).Error
	if err == nil {
		return &settings, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to fetch site settings: %w", err)
	}

	settings = model.SiteSettings{}
	if err := s.db.Create(&settings).Error; err != nil {
		return nil, fmt.Errorf("failed to create default site settings: %w", err)
	}
	return &settings, nil
}

// Update applies changes to the settings row
func (s *SettingsService) Update(updates *model.SiteSettings) (*model.SiteSettings, error) {
	settings, err := s.Get()
	if err != nil {
		return nil, err
	}

	updates.ID = settings.ID
	updates.CreatedAt = settings.CreatedAt
	if err := s.db.Save(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update site settings: %w", err)
	}
	return updates, nil
}
