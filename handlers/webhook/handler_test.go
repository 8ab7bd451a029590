package webhook

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/drjulio/clinic-api/database"
	"github.com/drjulio/clinic-api/model"
	"github.com/drjulio/clinic-api/services"
	"github.com/drjulio/clinic-api/services/payment"
)

const testWebhookSecret = "hotmart-secret"

func setupApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	policy := services.NewAccessPolicy(365)
	enrollments := services.NewEnrollmentService(db, policy)
	reconciler := services.NewReconcileService(db, enrollments, nil, "")
	handler := NewWebhookHandler(payment.NewHotmartProvider(testWebhookSecret), nil, reconciler)

	app := fiber.New()
	app.Post("/api/v1/webhooks/hotmart", handler.Hotmart)
	return app, db
}

func sign(body []byte) string {
	mac := hmac.New(sha256.New, []byte(testWebhookSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func postWebhook(t *testing.T, app *fiber.App, body []byte, signature string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/hotmart", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set(payment.HotmartSignatureHeader, signature)
	}

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func seedCourse(t *testing.T, db *gorm.DB) *model.Course {
	t.Helper()
	course := &model.Course{Title: "Curso", Price: 300, IsActive: true}
	if err := db.Create(course).Error; err != nil {
		t.Fatalf("failed to seed course: %v", err)
	}
	return course
}

func TestHotmartWebhookHappyPath(t *testing.T) {
	app, db := setupApp(t)
	course := seedCourse(t, db)

	body := []byte(`{"status":"approved","product_id":` + strconv.FormatUint(uint64(course.ID), 10) + `,"email":"maria@example.com","name":"Maria","transaction":"HP-1","price":300}`)

	resp := postWebhook(t, app, body, sign(body))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var enrollment model.CourseEnrollment
	if err := db.First(&enrollment).Error; err != nil {
		t.Fatalf("no enrollment created: %v", err)
	}
	if !model.IsPaidStatus(enrollment.PaymentStatus) {
		t.Errorf("status = %q, want a paid state", enrollment.PaymentStatus)
	}
	if enrollment.AccessEnd == nil {
		t.Error("access window not activated")
	}
}

func TestHotmartWebhookBadSignatureWritesNothing(t *testing.T) {
	app, db := setupApp(t)
	course := seedCourse(t, db)

	body := []byte(`{"status":"approved","product_id":` + strconv.FormatUint(uint64(course.ID), 10) + `,"email":"maria@example.com","transaction":"HP-1"}`)

	resp := postWebhook(t, app, body, "bad-signature")
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", resp.StatusCode)
	}

	var users, enrollments, txns int64
	db.Model(&model.User{}).Count(&users)
	db.Model(&model.CourseEnrollment{}).Count(&enrollments)
	db.Model(&model.PaymentTransaction{}).Count(&txns)
	if users+enrollments+txns != 0 {
		t.Errorf("rejected webhook wrote state: users=%d enrollments=%d txns=%d", users, enrollments, txns)
	}
}

func TestHotmartWebhookInvalidPayload(t *testing.T) {
	app, _ := setupApp(t)

	body := []byte(`{"status":"approved"}`)
	resp := postWebhook(t, app, body, sign(body))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestHotmartWebhookUnknownCourse(t *testing.T) {
	app, _ := setupApp(t)

	body := []byte(`{"status":"approved","product_id":4242,"email":"x@y.com","transaction":"HP-9"}`)
	resp := postWebhook(t, app, body, sign(body))
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestHotmartWebhookReplay(t *testing.T) {
	app, db := setupApp(t)
	course := seedCourse(t, db)

	body := []byte(`{"status":"approved","product_id":` + strconv.FormatUint(uint64(course.ID), 10) + `,"email":"maria@example.com","transaction":"HP-1","price":300}`)

	for i := 0; i < 3; i++ {
		resp := postWebhook(t, app, body, sign(body))
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("replay %d: status = %d, want 200", i, resp.StatusCode)
		}
	}

	var enrollments, txns int64
	db.Model(&model.CourseEnrollment{}).Count(&enrollments)
	db.Model(&model.PaymentTransaction{}).Count(&txns)
	if enrollments != 1 || txns != 1 {
		t.Errorf("after replays: enrollments=%d txns=%d, want 1 each", enrollments, txns)
	}
}
