package model

import (
	"time"

	"gorm.io/gorm"
)

// Gallery media types
const (
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
)

// GalleryItem represents one entry in the public media gallery
type GalleryItem struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	Title       string         `json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	MediaType   string         `gorm:"type:varchar(10);not null" json:"media_type"` // image, video
	Filename    string         `gorm:"not null" json:"filename"`
	URL         string         `json:"url"` // object storage URL when uploaded to Spaces
	Caption     string         `json:"caption"`
	Category    string         `gorm:"type:varchar(50);default:'eventos'" json:"category"`
}

// TableName specifies the table name for GalleryItem
func (GalleryItem) TableName() string {
	return "gallery_items"
}
