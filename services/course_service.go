package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/drjulio/clinic-api/model"
)

// CourseService manages the course catalog
type CourseService struct {
	db *gorm.DB
}

// NewCourseService creates a new course service
func NewCourseService(db *gorm.DB) *CourseService {
	return &CourseService{db: db}
}

// ListActive returns the courses currently on sale, newest first
func (s *CourseService) ListActive() ([]model.Course, error) {
	var courses []model.Course
	if err := s.db.Where("is_active = ?", true).
		Order("created_at DESC").
		Find(&courses).Error; err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	return courses, nil
}

// ListAll returns every course including inactive ones, for the admin panel
func (s *CourseService) ListAll() ([]model.Course, error) {
	var courses []model.Course
	if err := s.db.Order("created_at DESC").Find(&courses).Error; err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	return courses, nil
}

// GetByID fetches one course
func (s *CourseService) GetByID(id uint) (*model.Course, error) {
	var course model.Course
	if err := s.db.First(&course, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to fetch course: %w", err)
	}
	return &course, nil
}

// Create inserts a new course
func (s *CourseService) Create(course *model.Course) error {
	if err := s.db.Create(course).Error; err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}
	return nil
}

// Update saves changes to an existing course
func (s *CourseService) Update(course *model.Course) error {
	if err := s.db.Save(course).Error; err != nil {
		return fmt.Errorf("failed to update course: %w", err)
	}
	return nil
}

// Delete soft-deletes a course. Enrollments keep their rows; access checks
// fail closed once the course is gone.
func (s *CourseService) Delete(id uint) error {
	result := s.db.Delete(&model.Course{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete course: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCourseNotFound
	}
	return nil
}
