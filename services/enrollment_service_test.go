package services

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/drjulio/clinic-api/model"
)

func TestFindOrCreateConverges(t *testing.T) {
	db := newTestDB(t)
	course := createTestCourse(t, db, 100)
	user := createTestUser(t, db, "aluno@example.com")

	svc := NewEnrollmentService(db, NewAccessPolicy(365))

	first, err := svc.FindOrCreate(course.ID, user.ID, user.Name, user.Email)
	if err != nil {
		t.Fatalf("FindOrCreate failed: %v", err)
	}
	if first.PaymentStatus != model.PaymentStatusPending {
		t.Errorf("new enrollment status = %q, want pending", first.PaymentStatus)
	}

	second, err := svc.FindOrCreate(course.ID, user.ID, user.Name, user.Email)
	if err != nil {
		t.Fatalf("second FindOrCreate failed: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("FindOrCreate produced two rows: %d and %d", first.ID, second.ID)
	}

	var count int64
	db.Model(&model.CourseEnrollment{}).Count(&count)
	if count != 1 {
		t.Errorf("enrollment count = %d, want 1", count)
	}
}

func TestFindOrCreateLosesInsertRace(t *testing.T) {
	db := newTestDB(t)
	course := createTestCourse(t, db, 100)
	user := createTestUser(t, db, "aluno@example.com")

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	// slip a competing row in between the lookup and the insert, the way a
	// concurrent notification for the same purchase would
	raced := false
	err = db.Callback().Create().Before("gorm:create").Register("test_competing_insert", func(tx *gorm.DB) {
		if raced || tx.Statement.Table != "course_enrollments" {
			return
		}
		raced = true
		tx.AddError(tx.Session(&gorm.Session{NewDB: true}).Exec(
			"INSERT INTO course_enrollments (course_id, user_id, name, email, payment_status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
			course.ID, user.ID, user.Name, user.Email, model.PaymentStatusPending, time.Now(), time.Now(),
		).Error)
	})
	if err != nil {
		t.Fatalf("failed to register callback: %v", err)
	}
	defer db.Callback().Create().Remove("test_competing_insert")

	svc := NewEnrollmentService(db, NewAccessPolicy(365))

	enrollment, err := svc.FindOrCreate(course.ID, user.ID, user.Name, user.Email)
	if err != nil {
		t.Fatalf("FindOrCreate failed after losing the insert race: %v", err)
	}
	if !raced {
		t.Fatal("competing insert never ran")
	}
	if enrollment.ID == 0 {
		t.Error("FindOrCreate did not return the competing row")
	}

	var count int64
	db.Model(&model.CourseEnrollment{}).Count(&count)
	if count != 1 {
		t.Errorf("enrollment count = %d, want 1", count)
	}
}

func TestFindOrCreateInsideTransaction(t *testing.T) {
	db := newTestDB(t)
	course := createTestCourse(t, db, 100)
	user := createTestUser(t, db, "aluno@example.com")

	svc := NewEnrollmentService(db, NewAccessPolicy(365))

	existing, err := svc.FindOrCreate(course.ID, user.ID, user.Name, user.Email)
	if err != nil {
		t.Fatalf("FindOrCreate failed: %v", err)
	}

	// a skipped insert must not poison the surrounding transaction: the
	// existing row comes back and later writes in the same transaction
	// still go through
	err = db.Transaction(func(tx *gorm.DB) error {
		enrollment, err := svc.WithTx(tx).FindOrCreate(course.ID, user.ID, user.Name, user.Email)
		if err != nil {
			return err
		}
		if enrollment.ID != existing.ID {
			t.Errorf("FindOrCreate returned row %d, want %d", enrollment.ID, existing.ID)
		}
		return tx.Model(enrollment).Update("payment_status", model.PaymentStatusPaid).Error
	})
	if err != nil {
		t.Fatalf("transaction failed: %v", err)
	}

	var reloaded model.CourseEnrollment
	if err := db.First(&reloaded, existing.ID).Error; err != nil {
		t.Fatalf("failed to reload enrollment: %v", err)
	}
	if reloaded.PaymentStatus != model.PaymentStatusPaid {
		t.Errorf("status after transaction = %q, want paid", reloaded.PaymentStatus)
	}
}

func TestActivateAccessWindowIsSticky(t *testing.T) {
	db := newTestDB(t)
	course := createTestCourse(t, db, 100)
	user := createTestUser(t, db, "aluno@example.com")

	svc := NewEnrollmentService(db, NewAccessPolicy(10))

	enrollment, err := svc.FindOrCreate(course.ID, user.ID, user.Name, user.Email)
	if err != nil {
		t.Fatalf("FindOrCreate failed: %v", err)
	}

	activatedAt := time.Now()
	if err := svc.ActivateAccessWindow(enrollment, course, activatedAt); err != nil {
		t.Fatalf("ActivateAccessWindow failed: %v", err)
	}
	firstEnd := *enrollment.AccessEnd

	// a later activation attempt must not move the window
	if err := svc.ActivateAccessWindow(enrollment, course, activatedAt.Add(48*time.Hour)); err != nil {
		t.Fatalf("second ActivateAccessWindow failed: %v", err)
	}
	if !enrollment.AccessEnd.Equal(firstEnd) {
		t.Errorf("access end moved from %v to %v", firstEnd, enrollment.AccessEnd)
	}
}

func TestMarkPaidRejectsNonPaidStatus(t *testing.T) {
	db := newTestDB(t)
	course := createTestCourse(t, db, 100)
	user := createTestUser(t, db, "aluno@example.com")

	svc := NewEnrollmentService(db, NewAccessPolicy(365))
	enrollment, err := svc.FindOrCreate(course.ID, user.ID, user.Name, user.Email)
	if err != nil {
		t.Fatalf("FindOrCreate failed: %v", err)
	}

	if err := svc.MarkPaid(enrollment, model.PaymentStatusRefunded, "T-1"); err == nil {
		t.Error("MarkPaid accepted a refunded status")
	}
	if err := svc.MarkPaid(enrollment, model.PaymentStatusPaid, "T-1"); err != nil {
		t.Errorf("MarkPaid rejected a paid status: %v", err)
	}
}

func TestExpiringBetween(t *testing.T) {
	db := newTestDB(t)
	course := createTestCourse(t, db, 100)

	svc := NewEnrollmentService(db, NewAccessPolicy(365))

	now := time.Now()
	mk := func(email, status string, end time.Time) {
		user := createTestUser(t, db, email)
		enrollment := model.CourseEnrollment{
			CourseID:      course.ID,
			UserID:        user.ID,
			Name:          user.Name,
			Email:         email,
			PaymentStatus: status,
			AccessStart:   timePtr(now.AddDate(0, 0, -300)),
			AccessEnd:     timePtr(end),
		}
		if err := db.Create(&enrollment).Error; err != nil {
			t.Fatalf("failed to seed enrollment: %v", err)
		}
	}

	mk("soon@example.com", model.PaymentStatusPaid, now.Add(7*24*time.Hour+time.Hour))
	mk("later@example.com", model.PaymentStatusPaid, now.Add(20*24*time.Hour))
	mk("pending@example.com", model.PaymentStatusPending, now.Add(7*24*time.Hour+time.Hour))

	from := now.Add(7 * 24 * time.Hour)
	expiring, err := svc.ExpiringBetween(from, from.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("ExpiringBetween failed: %v", err)
	}

	if len(expiring) != 1 {
		t.Fatalf("expiring count = %d, want 1", len(expiring))
	}
	if expiring[0].Email != "soon@example.com" {
		t.Errorf("expiring email = %q, want soon@example.com", expiring[0].Email)
	}
}

func TestActiveEnrollment(t *testing.T) {
	db := newTestDB(t)
	course := createTestCourse(t, db, 100)
	user := createTestUser(t, db, "aluno@example.com")

	svc := NewEnrollmentService(db, NewAccessPolicy(365))

	if _, err := svc.ActiveEnrollment(course.ID, user.ID, time.Now()); err != ErrEnrollmentNotFound {
		t.Errorf("missing enrollment err = %v, want ErrEnrollmentNotFound", err)
	}

	enrollment, err := svc.FindOrCreate(course.ID, user.ID, user.Name, user.Email)
	if err != nil {
		t.Fatalf("FindOrCreate failed: %v", err)
	}

	// pending enrollment with no window grants nothing
	if _, err := svc.ActiveEnrollment(course.ID, user.ID, time.Now()); err != ErrAccessExpired {
		t.Errorf("pending enrollment err = %v, want ErrAccessExpired", err)
	}

	if err := svc.MarkPaid(enrollment, model.PaymentStatusPaid, "T-9"); err != nil {
		t.Fatalf("MarkPaid failed: %v", err)
	}
	if err := svc.ActivateAccessWindow(enrollment, course, time.Now()); err != nil {
		t.Fatalf("ActivateAccessWindow failed: %v", err)
	}

	active, err := svc.ActiveEnrollment(course.ID, user.ID, time.Now())
	if err != nil {
		t.Fatalf("active enrollment err = %v", err)
	}
	if active.Course.ID != course.ID {
		t.Errorf("course not preloaded: %+v", active.Course)
	}
}
