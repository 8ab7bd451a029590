package services

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/drjulio/clinic-api/model"
	"github.com/drjulio/clinic-api/services/payment"
)

type mailRecorder struct {
	welcomes []string
	fail     bool
}

func (m *mailRecorder) SendCourseWelcome(to, name, courseTitle, accessURL, tempPassword string) error {
	if m.fail {
		return errors.New("smtp down")
	}
	m.welcomes = append(m.welcomes, to)
	return nil
}

func testEvent(courseID uint, providerID, status, email string) *payment.Event {
	raw, _ := json.Marshal(map[string]string{"transaction": providerID})
	return &payment.Event{
		Provider:   payment.ProviderHotmart,
		ProviderID: providerID,
		Status:     status,
		CourseID:   courseID,
		PayerEmail: email,
		PayerName:  "Maria Souza",
		Amount:     499.90,
		Raw:        raw,
	}
}

func TestProcessCreatesUserEnrollmentAndWindow(t *testing.T) {
	db := newTestDB(t)
	course := createTestCourse(t, db, 499.90)
	mailer := &mailRecorder{}

	policy := NewAccessPolicy(365)
	svc := NewReconcileService(db, NewEnrollmentService(db, policy), mailer, "https://example.com/login")

	result, err := svc.Process(testEvent(course.ID, "HP-1001", "approved", "maria@example.com"))
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if !result.UserCreated {
		t.Error("expected a new user to be provisioned")
	}
	if result.User.Email != "maria@example.com" {
		t.Errorf("unexpected user email %q", result.User.Email)
	}

	enrollment := result.Enrollment
	if !model.IsPaidStatus(enrollment.PaymentStatus) {
		t.Errorf("enrollment status = %q, want a paid state", enrollment.PaymentStatus)
	}
	if enrollment.AccessStart == nil || enrollment.AccessEnd == nil {
		t.Fatal("access window was not activated")
	}
	wantEnd := enrollment.AccessStart.AddDate(0, 0, 365)
	if !enrollment.AccessEnd.Equal(wantEnd) {
		t.Errorf("access end = %v, want %v", enrollment.AccessEnd, wantEnd)
	}

	var txnCount int64
	db.Model(&model.PaymentTransaction{}).Count(&txnCount)
	if txnCount != 1 {
		t.Errorf("payment transaction count = %d, want 1", txnCount)
	}

	if len(mailer.welcomes) != 1 || mailer.welcomes[0] != "maria@example.com" {
		t.Errorf("welcome mail recipients = %v", mailer.welcomes)
	}
}

func TestProcessReplayIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	course := createTestCourse(t, db, 499.90)

	policy := NewAccessPolicy(365)
	svc := NewReconcileService(db, NewEnrollmentService(db, policy), nil, "")

	event := testEvent(course.ID, "HP-2002", "approved", "joao@example.com")
	first, err := svc.Process(event)
	if err != nil {
		t.Fatalf("first Process failed: %v", err)
	}

	// a replay must not move the expiry the payer was granted
	second, err := svc.Process(event)
	if err != nil {
		t.Fatalf("replayed Process failed: %v", err)
	}

	if second.Enrollment.ID != first.Enrollment.ID {
		t.Errorf("replay created a second enrollment: %d vs %d", second.Enrollment.ID, first.Enrollment.ID)
	}
	if !second.Enrollment.AccessEnd.Equal(*first.Enrollment.AccessEnd) {
		t.Errorf("replay shifted access end from %v to %v", first.Enrollment.AccessEnd, second.Enrollment.AccessEnd)
	}
	if second.UserCreated {
		t.Error("replay reported a newly created user")
	}

	var enrollmentCount, txnCount, userCount int64
	db.Model(&model.CourseEnrollment{}).Count(&enrollmentCount)
	db.Model(&model.PaymentTransaction{}).Count(&txnCount)
	db.Model(&model.User{}).Count(&userCount)
	if enrollmentCount != 1 || txnCount != 1 || userCount != 1 {
		t.Errorf("counts after replay: enrollments=%d txns=%d users=%d, want 1 each",
			enrollmentCount, txnCount, userCount)
	}
}

func TestProcessRefundKeepsWindow(t *testing.T) {
	db := newTestDB(t)
	course := createTestCourse(t, db, 499.90)

	policy := NewAccessPolicy(365)
	svc := NewReconcileService(db, NewEnrollmentService(db, policy), nil, "")

	paid, err := svc.Process(testEvent(course.ID, "HP-3003", "approved", "ana@example.com"))
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	grantedEnd := *paid.Enrollment.AccessEnd

	refunded, err := svc.Process(testEvent(course.ID, "HP-3004", "refunded", "ana@example.com"))
	if err != nil {
		t.Fatalf("refund Process failed: %v", err)
	}

	if refunded.Enrollment.PaymentStatus != "refunded" {
		t.Errorf("status after refund = %q, want refunded", refunded.Enrollment.PaymentStatus)
	}
	if refunded.Enrollment.AccessEnd == nil || !refunded.Enrollment.AccessEnd.Equal(grantedEnd) {
		t.Errorf("refund changed the access window: %v", refunded.Enrollment.AccessEnd)
	}

	var txnCount int64
	db.Model(&model.PaymentTransaction{}).Count(&txnCount)
	if txnCount != 2 {
		t.Errorf("transaction count = %d, want 2 (payment and refund)", txnCount)
	}
}

func TestProcessUnknownCourse(t *testing.T) {
	db := newTestDB(t)

	policy := NewAccessPolicy(365)
	svc := NewReconcileService(db, NewEnrollmentService(db, policy), nil, "")

	_, err := svc.Process(testEvent(9999, "HP-4004", "approved", "lia@example.com"))
	if !errors.Is(err, ErrCourseNotFound) {
		t.Fatalf("err = %v, want ErrCourseNotFound", err)
	}

	var userCount int64
	db.Model(&model.User{}).Count(&userCount)
	if userCount != 0 {
		t.Errorf("unknown course still provisioned %d users", userCount)
	}
}

func TestProcessRollsBackOnWriteFailure(t *testing.T) {
	db := newTestDB(t)
	course := createTestCourse(t, db, 499.90)

	policy := NewAccessPolicy(365)
	svc := NewReconcileService(db, NewEnrollmentService(db, policy), nil, "")

	// breaking the transactions table makes the final step of the
	// reconciliation fail inside the transaction
	if err := db.Migrator().DropTable(&model.PaymentTransaction{}); err != nil {
		t.Fatalf("failed to drop table: %v", err)
	}

	_, err := svc.Process(testEvent(course.ID, "HP-5005", "approved", "rui@example.com"))
	if err == nil {
		t.Fatal("expected Process to fail")
	}

	// nothing from the failed event survives
	var userCount, enrollmentCount int64
	db.Model(&model.User{}).Count(&userCount)
	db.Model(&model.CourseEnrollment{}).Count(&enrollmentCount)
	if userCount != 0 || enrollmentCount != 0 {
		t.Errorf("partial state after rollback: users=%d enrollments=%d", userCount, enrollmentCount)
	}
}

func TestProcessMailFailureDoesNotFailPayment(t *testing.T) {
	db := newTestDB(t)
	course := createTestCourse(t, db, 120)

	policy := NewAccessPolicy(365)
	svc := NewReconcileService(db, NewEnrollmentService(db, policy), &mailRecorder{fail: true}, "")

	result, err := svc.Process(testEvent(course.ID, "HP-6006", "approved", "bea@example.com"))
	if err != nil {
		t.Fatalf("Process failed because of mail: %v", err)
	}
	if result.Enrollment.AccessStart == nil {
		t.Error("access window missing despite successful payment")
	}
}

func TestProcessRejectsIncompleteEvent(t *testing.T) {
	db := newTestDB(t)
	policy := NewAccessPolicy(365)
	svc := NewReconcileService(db, NewEnrollmentService(db, policy), nil, "")

	cases := []*payment.Event{
		nil,
		{ProviderID: "", CourseID: 1, PayerEmail: "a@b.c"},
		{ProviderID: "x", CourseID: 0, PayerEmail: "a@b.c"},
		{ProviderID: "x", CourseID: 1, PayerEmail: ""},
	}
	for i, event := range cases {
		if _, err := svc.Process(event); !errors.Is(err, payment.ErrInvalidPayload) {
			t.Errorf("case %d: err = %v, want ErrInvalidPayload", i, err)
		}
	}
}

func TestProcessConcurrentPayersSameCourse(t *testing.T) {
	db := newTestDB(t)
	course := createTestCourse(t, db, 250)

	policy := NewAccessPolicy(30)
	svc := NewReconcileService(db, NewEnrollmentService(db, policy), nil, "")

	for _, email := range []string{"p1@example.com", "p2@example.com", "p3@example.com"} {
		if _, err := svc.Process(testEvent(course.ID, "HP-"+email, "approved", email)); err != nil {
			t.Fatalf("Process for %s failed: %v", email, err)
		}
	}

	var enrollmentCount int64
	db.Model(&model.CourseEnrollment{}).Count(&enrollmentCount)
	if enrollmentCount != 3 {
		t.Errorf("enrollment count = %d, want 3", enrollmentCount)
	}

	// the configured default window applies when the course has no override
	var enrollment model.CourseEnrollment
	db.First(&enrollment)
	want := enrollment.AccessStart.AddDate(0, 0, 30)
	if !enrollment.AccessEnd.Equal(want) {
		t.Errorf("access end = %v, want %v", enrollment.AccessEnd, want)
	}
}
