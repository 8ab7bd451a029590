package database

import (
	"fmt"
	"log"
	"os"

	"github.com/drjulio/clinic-api/model"
	"github.com/drjulio/clinic-api/utils/auth"
	"gorm.io/gorm"
)

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// SeedAll runs all seed functions
func (s *Seeder) SeedAll() error {
	log.Println("Starting database seeding...")

	if err := s.SeedAdminUser(); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	if err := s.SeedSiteSettings(); err != nil {
		return fmt.Errorf("failed to seed site settings: %w", err)
	}

	log.Println("Database seeding completed successfully!")
	return nil
}

// SeedAdminUser creates the default admin user if no admin exists
func (s *Seeder) SeedAdminUser() error {
	var count int64
	if err := s.db.Model(&model.User{}).Where("role = ?", model.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Println("ADMIN_EMAIL/ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	admin := model.User{
		Username:     model.UsernameFromEmail(email),
		Email:        email,
		PasswordHash: hash,
		Name:         "Administrator",
		Role:         model.RoleAdmin,
	}
	if err := s.db.Create(&admin).Error; err != nil {
		return err
	}

	log.Printf("Seeded admin user %s", email)
	return nil
}

// SeedSiteSettings ensures the single settings row exists
func (s *Seeder) SeedSiteSettings() error {
	var count int64
	if err := s.db.Model(&model.SiteSettings{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	return s.db.Create(&model.SiteSettings{}).Error
}
