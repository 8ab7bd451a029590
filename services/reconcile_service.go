package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/drjulio/clinic-api/model"
	"github.com/drjulio/clinic-api/services/payment"
)

// ReconcileMailer sends the notifications that follow a successful
// reconciliation. Failures are logged, never propagated; mail must not undo
// a committed payment.
type ReconcileMailer interface {
	SendCourseWelcome(to, name, courseTitle, accessURL, tempPassword string) error
}

// ReconcileResult reports what a processed payment event did
type ReconcileResult struct {
	Enrollment  *model.CourseEnrollment
	User        *model.User
	UserCreated bool
	Activated   bool
}

// ReconcileService turns a verified payment event into durable enrollment
// state. All writes for one event happen in a single database transaction;
// a failure anywhere leaves no partial state behind.
type ReconcileService struct {
	db          *gorm.DB
	identity    *IdentityService
	enrollments *EnrollmentService
	tracker     *PaymentTracker
	mailer      ReconcileMailer
	loginURL    string
}

// NewReconcileService creates the reconciliation orchestrator. mailer may be
// nil when no outgoing mail is configured.
func NewReconcileService(db *gorm.DB, enrollments *EnrollmentService, mailer ReconcileMailer, loginURL string) *ReconcileService {
	return &ReconcileService{
		db:          db,
		identity:    NewIdentityService(db),
		enrollments: enrollments,
		tracker:     NewPaymentTracker(db),
		mailer:      mailer,
		loginURL:    loginURL,
	}
}

// Process reconciles one normalized payment event. Replaying the same event
// is safe: every step either converges on existing state or upserts.
func (s *ReconcileService) Process(event *payment.Event) (*ReconcileResult, error) {
	if event == nil || event.ProviderID == "" || event.CourseID == 0 || event.PayerEmail == "" {
		return nil, payment.ErrInvalidPayload
	}

	result := &ReconcileResult{}
	now := time.Now()

	var welcome *welcomeMail
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var course model.Course
		if err := tx.First(&course, event.CourseID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCourseNotFound
			}
			return fmt.Errorf("failed to look up course: %w", err)
		}

		identity := s.identity.WithTx(tx)
		resolved, err := identity.Resolve(event.PayerEmail, event.PayerName)
		if err != nil {
			return err
		}
		result.User = resolved.User
		result.UserCreated = resolved.Created

		enrollments := s.enrollments.WithTx(tx)
		enrollment, err := enrollments.FindOrCreate(course.ID, resolved.User.ID, payerName(event, resolved.User), event.PayerEmail)
		if err != nil {
			return err
		}

		if payment.IsSuccessStatus(event.Status) {
			hadWindow := enrollment.AccessStart != nil
			if err := enrollments.MarkPaid(enrollment, model.PaymentStatusPaid, event.ProviderID); err != nil {
				return err
			}
			if err := enrollments.ActivateAccessWindow(enrollment, &course, now); err != nil {
				return err
			}
			result.Activated = !hadWindow
		} else {
			// keep the provider's own label; a refund never claws back an
			// access window that was already granted
			if err := enrollments.SetStatus(enrollment, event.Status); err != nil {
				return err
			}
		}

		tracker := s.tracker.WithTx(tx)
		if err := tracker.RecordAttempt(&model.PaymentTransaction{
			EnrollmentID: enrollment.ID,
			ProviderID:   event.ProviderID,
			Provider:     event.Provider,
			Amount:       event.Amount,
			Status:       event.Status,
			RawPayload:   datatypes.JSON(event.Raw),
		}); err != nil {
			return err
		}

		result.Enrollment = enrollment

		if resolved.Created {
			result.User.PasswordHash = "" // keep the hash out of responses
			welcome = &welcomeMail{
				to:           event.PayerEmail,
				name:         payerName(event, resolved.User),
				courseTitle:  course.Title,
				accessURL:    s.loginURL,
				tempPassword: resolved.TempPassword,
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// mail goes out only after the transaction committed, and a mail
	// failure never fails the reconciliation
	if welcome != nil && s.mailer != nil {
		if err := s.mailer.SendCourseWelcome(welcome.to, welcome.name, welcome.courseTitle, welcome.accessURL, welcome.tempPassword); err != nil {
			log.Printf("Warning: failed to send welcome email to %s: %v", welcome.to, err)
		}
	}
	return result, nil
}

type welcomeMail struct {
	to           string
	name         string
	courseTitle  string
	accessURL    string
	tempPassword string
}

func payerName(event *payment.Event, user *model.User) string {
	if event.PayerName != "" {
		return event.PayerName
	}
	return user.Name
}
