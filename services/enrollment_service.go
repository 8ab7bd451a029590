package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/drjulio/clinic-api/model"
)

// EnrollmentService owns the enrollment ledger: one row per (course, user)
// pair regardless of how many notifications or retries touch it
type EnrollmentService struct {
	db     *gorm.DB
	policy *AccessPolicy
}

// NewEnrollmentService creates a new enrollment service
func NewEnrollmentService(db *gorm.DB, policy *AccessPolicy) *EnrollmentService {
	return &EnrollmentService{db: db, policy: policy}
}

// WithTx returns a copy of the service bound to the given transaction
func (s *EnrollmentService) WithTx(tx *gorm.DB) *EnrollmentService {
	return &EnrollmentService{db: tx, policy: s.policy}
}

// FindOrCreate returns the enrollment for the (course, user) pair, creating
// a pending one when none exists. The insert runs with ON CONFLICT DO NOTHING
// so a concurrent creation never errors the surrounding transaction; when the
// insert is skipped the existing row is refetched.
func (s *EnrollmentService) FindOrCreate(courseID, userID uint, name, email string) (*model.CourseEnrollment, error) {
	var enrollment model.CourseEnrollment
	err := s.db.Where("course_id = ? AND user_id = ?", courseID, userID).First(&enrollment).Error
	if err == nil {
		return &enrollment, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up enrollment: %w", err)
	}

	enrollment = model.CourseEnrollment{
		CourseID:      courseID,
		UserID:        userID,
		Name:          name,
		Email:         email,
		PaymentStatus: model.PaymentStatusPending,
	}
	result := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "course_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(&enrollment)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to create enrollment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		// lost the insert race; the winner's row is already committed
		if err := s.db.Where("course_id = ? AND user_id = ?", courseID, userID).First(&enrollment).Error; err != nil {
			return nil, fmt.Errorf("failed to fetch enrollment after conflict: %w", err)
		}
	}

	return &enrollment, nil
}

// MarkPaid records a successful payment on the enrollment. Calling it again
// with the same status is a no-op, so replayed notifications converge on the
// same row state.
func (s *EnrollmentService) MarkPaid(enrollment *model.CourseEnrollment, status, transactionID string) error {
	if !model.IsPaidStatus(status) {
		return fmt.Errorf("status %q is not a paid state", status)
	}
	if enrollment.PaymentStatus == status && enrollment.TransactionID == transactionID {
		return nil
	}

	enrollment.PaymentStatus = status
	enrollment.TransactionID = transactionID
	if err := s.db.Model(enrollment).Updates(map[string]interface{}{
		"payment_status": status,
		"transaction_id": transactionID,
	}).Error; err != nil {
		return fmt.Errorf("failed to mark enrollment paid: %w", err)
	}
	return nil
}

// SetStatus records a non-success provider status label on the enrollment
// without touching the access window
func (s *EnrollmentService) SetStatus(enrollment *model.CourseEnrollment, status string) error {
	if enrollment.PaymentStatus == status {
		return nil
	}
	enrollment.PaymentStatus = status
	if err := s.db.Model(enrollment).Update("payment_status", status).Error; err != nil {
		return fmt.Errorf("failed to update enrollment status: %w", err)
	}
	return nil
}

// ActivateAccessWindow opens the access window for a paid enrollment. A
// window that is already set is left untouched, so a replayed payment never
// shifts the expiry the payer was granted.
func (s *EnrollmentService) ActivateAccessWindow(enrollment *model.CourseEnrollment, course *model.Course, now time.Time) error {
	if enrollment.AccessStart != nil && enrollment.AccessEnd != nil {
		return nil
	}

	start, end := s.policy.Window(course, now)
	enrollment.AccessStart = &start
	enrollment.AccessEnd = &end
	if err := s.db.Model(enrollment).Updates(map[string]interface{}{
		"access_start": start,
		"access_end":   end,
	}).Error; err != nil {
		return fmt.Errorf("failed to activate access window: %w", err)
	}
	return nil
}

// GetByID fetches an enrollment with its course preloaded
func (s *EnrollmentService) GetByID(id uint) (*model.CourseEnrollment, error) {
	var enrollment model.CourseEnrollment
	if err := s.db.Preload("Course").First(&enrollment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, fmt.Errorf("failed to fetch enrollment: %w", err)
	}
	return &enrollment, nil
}

// ListForUser returns all enrollments belonging to a user, newest first
func (s *EnrollmentService) ListForUser(userID uint) ([]model.CourseEnrollment, error) {
	var enrollments []model.CourseEnrollment
	if err := s.db.Preload("Course").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&enrollments).Error; err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	return enrollments, nil
}

// ActiveEnrollment returns the user's enrollment for a course only when its
// access window is currently open
func (s *EnrollmentService) ActiveEnrollment(courseID, userID uint, now time.Time) (*model.CourseEnrollment, error) {
	var enrollment model.CourseEnrollment
	err := s.db.Preload("Course").
		Where("course_id = ? AND user_id = ?", courseID, userID).
		First(&enrollment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, fmt.Errorf("failed to fetch enrollment: %w", err)
	}
	if !s.policy.IsActive(&enrollment, now) {
		return nil, ErrAccessExpired
	}
	return &enrollment, nil
}

// ExpiringBetween returns paid enrollments whose access window ends inside
// [from, to), used by the expiration reminder job
func (s *EnrollmentService) ExpiringBetween(from, to time.Time) ([]model.CourseEnrollment, error) {
	var enrollments []model.CourseEnrollment
	if err := s.db.Preload("Course").
		Where("payment_status IN ?", []string{model.PaymentStatusPaid, model.PaymentStatusApproved}).
		Where("access_end >= ? AND access_end < ?", from, to).
		Find(&enrollments).Error; err != nil {
		return nil, fmt.Errorf("failed to list expiring enrollments: %w", err)
	}
	return enrollments, nil
}
