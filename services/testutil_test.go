package services

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/drjulio/clinic-api/database"
	"github.com/drjulio/clinic-api/model"
)

// newTestDB opens an isolated in-memory database with the full schema
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func createTestCourse(t *testing.T, db *gorm.DB, price float64) *model.Course {
	t.Helper()

	course := &model.Course{
		Title:     "Curso de Ortodontia",
		Price:     price,
		AccessURL: "https://cursos.example.com/ortodontia",
		IsActive:  true,
	}
	if err := db.Create(course).Error; err != nil {
		t.Fatalf("failed to create test course: %v", err)
	}
	return course
}

func createTestUser(t *testing.T, db *gorm.DB, email string) *model.User {
	t.Helper()

	user := &model.User{
		Username:     model.UsernameFromEmail(email),
		Email:        email,
		PasswordHash: "x",
		Name:         "Test User",
		Role:         model.RoleStudent,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func timePtr(t time.Time) *time.Time {
	return &t
}
