package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"gorm.io/gorm"

	"github.com/drjulio/clinic-api/model"
	"github.com/drjulio/clinic-api/services/storage"
)

// ErrGalleryItemNotFound means no gallery item matches the given id
var ErrGalleryItemNotFound = errors.New("gallery item not found")

// GalleryService manages the public media gallery backed by object storage
type GalleryService struct {
	db     *gorm.DB
	spaces *storage.SpacesClient
}

// NewGalleryService creates a gallery service. spaces may be nil when object
// storage is not configured; uploads then fail with an explicit error.
func NewGalleryService(db *gorm.DB, spaces *storage.SpacesClient) *GalleryService {
	return &GalleryService{db: db, spaces: spaces}
}

// List returns one page of gallery items, optionally filtered by category,
// newest first. It also reports the total count for pagination.
func (s *GalleryService) List(category string, page, limit int) ([]model.GalleryItem, int64, error) {
	query := s.db.Model(&model.GalleryItem{})
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count gallery items: %w", err)
	}

	var items []model.GalleryItem
	if err := query.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&items).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list gallery items: %w", err)
	}
	return items, total, nil
}

// Upload stores the media file in object storage and records the item
func (s *GalleryService) Upload(ctx context.Context, item *model.GalleryItem, file io.Reader) error {
	if s.spaces == nil {
		return errors.New("object storage not configured")
	}

	key := storage.GenerateKey("gallery", item.Filename)
	url, err := s.spaces.UploadFile(ctx, key, file, storage.GetContentType(item.Filename))
	if err != nil {
		return err
	}
	item.URL = url

	if err := s.db.Create(item).Error; err != nil {
		// the orphaned object is cleaned up so storage does not drift from
		// the database
		if delErr := s.spaces.DeleteFile(ctx, key); delErr != nil {
			log.Printf("Warning: failed to remove orphaned gallery object %s: %v", key, delErr)
		}
		return fmt.Errorf("failed to create gallery item: %w", err)
	}
	return nil
}

// Delete removes the item and its stored object
func (s *GalleryService) Delete(ctx context.Context, id uint) error {
	var item model.GalleryItem
	if err := s.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGalleryItemNotFound
		}
		return fmt.Errorf("failed to fetch gallery item: %w", err)
	}

	if err := s.db.Delete(&item).Error; err != nil {
		return fmt.Errorf("failed to delete gallery item: %w", err)
	}

	if s.spaces != nil && item.URL != "" {
		if key := s.spaces.KeyFromURL(item.URL); key != "" {
			if err := s.spaces.DeleteFile(ctx, key); err != nil {
				log.Printf("Warning: failed to delete gallery object %s: %v", key, err)
			}
		}
	}
	return nil
}
