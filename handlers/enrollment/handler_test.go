package enrollment

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/drjulio/clinic-api/database"
	"github.com/drjulio/clinic-api/model"
	"github.com/drjulio/clinic-api/services"
	authutil "github.com/drjulio/clinic-api/utils/auth"
	"github.com/drjulio/clinic-api/utils/middleware"
)

type testEnv struct {
	app *fiber.App
	db  *gorm.DB
	jwt *authutil.JWTManager
}

func setupEnv(t *testing.T) *testEnv {
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

	jwtManager := authutil.NewJWTManager(authutil.JWTConfig{
		Secret:        "test-secret",
		Expiry:        time.Hour,
		RefreshExpiry: time.Hour,
		Issuer:        "test",
	})

	policy := services.NewAccessPolicy(365)
	enrollments := services.NewEnrollmentService(db, policy)
	reconciler := services.NewReconcileService(db, enrollments, nil, "")
	mediaTokens := authutil.NewMediaTokenManager("test-secret", time.Hour)
	handler := NewEnrollmentHandler(db, enrollments, reconciler, nil, mediaTokens, policy, nil)

	authMiddleware := middleware.NewAuthMiddleware(jwtManager, db)

	app := fiber.New()
	app.Post("/api/v1/courses/:id/enroll", authMiddleware.Required(), handler.Enroll)
	group := app.Group("/api/v1/enrollments", authMiddleware.Required())
	group.Get("/", handler.ListMine)
	group.Get("/:id", handler.Get)
	group.Post("/:id/pay", handler.Pay)
	group.Get("/:id/content", handler.Content)

	return &testEnv{app: app, db: db, jwt: jwtManager}
}

func (e *testEnv) createUser(t *testing.T, email, role string) (*model.User, string) {
	t.Helper()

	user := &model.User{
		Username:     model.UsernameFromEmail(email),
		Email:        email,
		PasswordHash: "x",
		Name:         "Test",
		Role:         role,
	}
	if err := e.db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	token, _, err := e.jwt.GenerateAccessToken(user.ID, user.Email, user.Role, user.TokenVersion)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return user, token
}

func (e *testEnv) request(t *testing.T, method, path, token string, body []byte) *http.Response {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := e.app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func TestPayIsIdempotent(t *testing.T) {
	env := setupEnv(t)

	course := &model.Course{Title: "Curso", Price: 200, IsActive: true}
	if err := env.db.Create(course).Error; err != nil {
		t.Fatalf("failed to create course: %v", err)
	}
	user, token := env.createUser(t, "aluna@example.com", model.RoleStudent)

	enrollments := services.NewEnrollmentService(env.db, services.NewAccessPolicy(365))
	enrollment, err := enrollments.FindOrCreate(course.ID, user.ID, user.Name, user.Email)
	if err != nil {
		t.Fatalf("failed to create enrollment: %v", err)
	}

	path := "/api/v1/enrollments/" + strconv.FormatUint(uint64(enrollment.ID), 10) + "/pay"
	for i := 0; i < 2; i++ {
		resp := env.request(t, http.MethodPost, path, token, []byte(`{}`))
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("attempt %d: status = %d, want 200", i, resp.StatusCode)
		}
	}

	var txns int64
	env.db.Model(&model.PaymentTransaction{}).Count(&txns)
	if txns != 1 {
		t.Errorf("transaction count = %d, want 1", txns)
	}

	var stored model.CourseEnrollment
	if err := env.db.First(&stored, enrollment.ID).Error; err != nil {
		t.Fatalf("failed to reload enrollment: %v", err)
	}
	if !model.IsPaidStatus(stored.PaymentStatus) {
		t.Errorf("status = %q, want paid", stored.PaymentStatus)
	}
	if stored.AccessEnd == nil {
		t.Error("access window not activated")
	}
}

func TestEnrollOpensPendingEnrollment(t *testing.T) {
	env := setupEnv(t)

	course := &model.Course{Title: "Curso", Price: 200, IsActive: true}
	if err := env.db.Create(course).Error; err != nil {
		t.Fatalf("failed to create course: %v", err)
	}
	inactive := &model.Course{Title: "Encerrado", Price: 100, IsActive: false}
	if err := env.db.Create(inactive).Error; err != nil {
		t.Fatalf("failed to create course: %v", err)
	}
	_, token := env.createUser(t, "aluna@example.com", model.RoleStudent)

	enrollPath := "/api/v1/courses/" + strconv.FormatUint(uint64(course.ID), 10) + "/enroll"
	resp := env.request(t, http.MethodPost, enrollPath, token, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("enroll status = %d, want 201", resp.StatusCode)
	}

	var body struct {
		Data EnrollmentResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Data.PaymentStatus != model.PaymentStatusPending {
		t.Errorf("status = %q, want pending", body.Data.PaymentStatus)
	}
	if body.Data.AccessActive {
		t.Error("pending enrollment reported active access")
	}

	// enrolling again returns the same row
	resp = env.request(t, http.MethodPost, enrollPath, token, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("repeat enroll status = %d, want 201", resp.StatusCode)
	}
	var count int64
	env.db.Model(&model.CourseEnrollment{}).Count(&count)
	if count != 1 {
		t.Errorf("enrollment count = %d, want 1", count)
	}

	// the pending enrollment is payable through the normal payment endpoint
	payPath := "/api/v1/enrollments/" + strconv.FormatUint(uint64(body.Data.ID), 10) + "/pay"
	if resp := env.request(t, http.MethodPost, payPath, token, []byte(`{}`)); resp.StatusCode != http.StatusOK {
		t.Fatalf("pay status = %d, want 200", resp.StatusCode)
	}

	// inactive courses are not open for enrollment
	inactivePath := "/api/v1/courses/" + strconv.FormatUint(uint64(inactive.ID), 10) + "/enroll"
	if resp := env.request(t, http.MethodPost, inactivePath, token, nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("inactive course enroll status = %d, want 404", resp.StatusCode)
	}
}

func TestGetForbiddenForNonOwner(t *testing.T) {
	env := setupEnv(t)

	course := &model.Course{Title: "Curso", Price: 200, IsActive: true}
	if err := env.db.Create(course).Error; err != nil {
		t.Fatalf("failed to create course: %v", err)
	}
	owner, _ := env.createUser(t, "dona@example.com", model.RoleStudent)
	_, otherToken := env.createUser(t, "outra@example.com", model.RoleStudent)
	_, adminToken := env.createUser(t, "admin@example.com", model.RoleAdmin)

	enrollments := services.NewEnrollmentService(env.db, services.NewAccessPolicy(365))
	enrollment, err := enrollments.FindOrCreate(course.ID, owner.ID, owner.Name, owner.Email)
	if err != nil {
		t.Fatalf("failed to create enrollment: %v", err)
	}

	path := "/api/v1/enrollments/" + strconv.FormatUint(uint64(enrollment.ID), 10)

	resp := env.request(t, http.MethodGet, path, otherToken, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("non-owner status = %d, want 403", resp.StatusCode)
	}

	resp = env.request(t, http.MethodGet, path, adminToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("admin status = %d, want 200", resp.StatusCode)
	}
}

func TestContentRequiresActiveWindow(t *testing.T) {
	env := setupEnv(t)

	course := &model.Course{Title: "Curso", Price: 200, IsActive: true}
	if err := env.db.Create(course).Error; err != nil {
		t.Fatalf("failed to create course: %v", err)
	}
	user, token := env.createUser(t, "aluna@example.com", model.RoleStudent)

	enrollments := services.NewEnrollmentService(env.db, services.NewAccessPolicy(365))
	enrollment, err := enrollments.FindOrCreate(course.ID, user.ID, user.Name, user.Email)
	if err != nil {
		t.Fatalf("failed to create enrollment: %v", err)
	}

	path := "/api/v1/enrollments/" + strconv.FormatUint(uint64(enrollment.ID), 10) + "/content"

	// pending payment, no window
	resp := env.request(t, http.MethodGet, path, token, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("pending content status = %d, want 403", resp.StatusCode)
	}

	// pay, then the content endpoint opens up
	payPath := "/api/v1/enrollments/" + strconv.FormatUint(uint64(enrollment.ID), 10) + "/pay"
	if resp := env.request(t, http.MethodPost, payPath, token, []byte(`{}`)); resp.StatusCode != http.StatusOK {
		t.Fatalf("pay status = %d, want 200", resp.StatusCode)
	}

	resp = env.request(t, http.MethodGet, path, token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("paid content status = %d, want 200", resp.StatusCode)
	}

	var body struct {
		Data ContentResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Data.MediaURLs["playlist"] == "" {
		t.Error("no media URL in content response")
	}
}
