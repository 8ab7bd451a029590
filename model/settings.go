package model

import (
	"time"

	"gorm.io/gorm"
)

// SiteSettings holds the editable site-wide content. A single row is expected.
type SiteSettings struct {
	ID                     uint           `gorm:"primaryKey" json:"id"`
	CreatedAt              time.Time      `json:"created_at"`
	UpdatedAt              time.Time      `json:"updated_at"`
	DeletedAt              gorm.DeletedAt `gorm:"index" json:"-"`
	SiteTitle              string         `gorm:"default:'Dr. Julio Vasconcelos'" json:"site_title"`
	ContactEmail           string         `json:"contact_email"`
	ContactPhone           string         `json:"contact_phone"`
	Address                string         `gorm:"type:text" json:"address"`
	AboutText              string         `gorm:"type:text" json:"about_text"`
	AcademicBackground     string         `gorm:"type:text" json:"academic_background"`
	ProfessionalExperience string         `gorm:"type:text" json:"professional_experience"`
	SocialFacebook         string         `json:"social_facebook"`
	SocialInstagram        string         `json:"social_instagram"`
	SocialYoutube          string         `json:"social_youtube"`
	AboutImage             string         `json:"about_image"`
}

// TableName specifies the table name for SiteSettings
func (SiteSettings) TableName() string {
	return "site_settings"
}
