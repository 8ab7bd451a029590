package router

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/drjulio/clinic-api/config"
	"github.com/drjulio/clinic-api/database"
	"github.com/drjulio/clinic-api/handlers"
	admin_handlers "github.com/drjulio/clinic-api/handlers/admin"
	appointment_handlers "github.com/drjulio/clinic-api/handlers/appointment"
	auth_handlers "github.com/drjulio/clinic-api/handlers/auth"
	content_handlers "github.com/drjulio/clinic-api/handlers/content"
	course_handlers "github.com/drjulio/clinic-api/handlers/course"
	enrollment_handlers "github.com/drjulio/clinic-api/handlers/enrollment"
	event_handlers "github.com/drjulio/clinic-api/handlers/event"
	gallery_handlers "github.com/drjulio/clinic-api/handlers/gallery"
	webhook_handlers "github.com/drjulio/clinic-api/handlers/webhook"
	"github.com/drjulio/clinic-api/services"
	"github.com/drjulio/clinic-api/services/payment"
	"github.com/drjulio/clinic-api/services/storage"
	"github.com/drjulio/clinic-api/utils/auth"
	"github.com/drjulio/clinic-api/utils/cache"
	"github.com/drjulio/clinic-api/utils/middleware"
)

// SetupRoutes wires every handler onto the fiber app
func SetupRoutes(app *fiber.App, store database.Storage, getEnv *config.EnviornmentVariable) {
	if getEnv.JWT_SECRET == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	jwtIssuer := getEnv.JWT_ISSUER
	if jwtIssuer == "" {
		jwtIssuer = "clinic-api"
	}

	jwtManager := auth.NewJWTManager(auth.JWTConfig{
		Secret:        getEnv.JWT_SECRET,
		Expiry:        24 * time.Hour,
		RefreshExpiry: 7 * 24 * time.Hour,
		Issuer:        jwtIssuer,
	})

	db := store.GetDB()

	// Redis-backed brute force protection; degraded mode without redis
	redisURL := getEnv.REDIS_URL
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}
	redisCache, err := cache.NewRedisCache(redisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v. Brute force protection will be disabled.", err)
	}
	var bruteForceProtection *middleware.BruteForceProtection
	if redisCache != nil {
		bruteForceProtection = middleware.NewBruteForceProtection(redisCache)
	}

	authMiddleware := middleware.NewAuthMiddleware(jwtManager, db)

	// Payment providers, each optional behind its own configuration
	var hotmartProvider *payment.HotmartProvider
	if getEnv.HOTMART_WEBHOOK_SECRET != "" {
		hotmartProvider = payment.NewHotmartProvider(getEnv.HOTMART_WEBHOOK_SECRET)
	}
	var hotmartClient *payment.HotmartClient
	if getEnv.HOTMART_CLIENT_ID != "" {
		hotmartClient = payment.NewHotmartClient(payment.NewTokenSource(payment.TokenSourceConfig{
			ClientID:     getEnv.HOTMART_CLIENT_ID,
			ClientSecret: getEnv.HOTMART_CLIENT_SECRET,
			UseSandbox:   getEnv.HOTMART_USE_SANDBOX,
		}))
	}
	var stripeGateway *payment.StripeGateway
	if getEnv.STRIPE_SECRET_KEY != "" {
		stripeGateway = payment.NewStripeGateway(
			getEnv.STRIPE_SECRET_KEY,
			getEnv.STRIPE_WEBHOOK_SECRET,
			getEnv.APP_URL+"/pagamento/sucesso",
			getEnv.APP_URL+"/pagamento/cancelado",
		)
	}
	var pagarmeClient *payment.PagarmeClient
	if getEnv.PAGARME_API_KEY != "" {
		pagarmeClient = payment.NewPagarmeClient(getEnv.PAGARME_API_KEY, getEnv.PAGARME_BASE_URL)
	}

	// Object storage for gallery and course material
	var spacesClient *storage.SpacesClient
	if getEnv.SPACES_ACCESS_KEY != "" {
		spacesClient, err = storage.NewSpacesClient(storage.SpacesConfig{
			AccessKey: getEnv.SPACES_ACCESS_KEY,
			SecretKey: getEnv.SPACES_SECRET_KEY,
			Bucket:    getEnv.SPACES_BUCKET,
			Region:    getEnv.SPACES_REGION,
			Endpoint:  getEnv.SPACES_ENDPOINT,
			CDNURL:    getEnv.SPACES_CDN_URL,
		})
		if err != nil {
			log.Printf("Warning: Failed to initialize object storage: %v. Uploads will be disabled.", err)
		}
	}

	// Core payment-to-access services
	accessPolicy := services.NewAccessPolicy(getEnv.COURSE_ACCESS_DAYS)
	enrollmentService := services.NewEnrollmentService(db, accessPolicy)
	emailService := services.NewEmailService(getEnv)
	reconcileService := services.NewReconcileService(db, enrollmentService, emailService, getEnv.APP_URL+"/login")
	mediaTokens := auth.NewMediaTokenManager(getEnv.JWT_SECRET, auth.DefaultMediaTokenTTL)

	// Handlers
	authHandler := auth_handlers.NewAuthHandler(db, jwtManager, bruteForceProtection)
	courseHandler := course_handlers.NewCourseHandler(db, stripeGateway, reconcileService, redisCache)
	materialHandler := course_handlers.NewMaterialHandler(services.NewCourseService(db), spacesClient)
	enrollmentHandler := enrollment_handlers.NewEnrollmentHandler(db, enrollmentService, reconcileService, pagarmeClient, mediaTokens, accessPolicy, spacesClient)
	webhookHandler := webhook_handlers.NewWebhookHandler(hotmartProvider, stripeGateway, reconcileService)
	mediaHandler := content_handlers.NewMediaHandler(enrollmentService, mediaTokens, getEnv.COURSE_CONTENT_FOLDER)
	appointmentHandler := appointment_handlers.NewAppointmentHandler(db)
	eventHandler := event_handlers.NewEventHandler(db)
	galleryHandler := gallery_handlers.NewGalleryHandler(db, spacesClient)
	adminHandler := admin_handlers.NewAdminHandler(db, hotmartClient)

	// Security middleware
	allowedOrigins := getEnv.APP_URL
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000"
	}
	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    allowedOrigins,
		RateLimitRequests: 100,
		RateLimitWindow:   1 * time.Minute,
	})

	// Health check endpoint (public)
	app.Get("/ping", handlers.HandleCheckHealth(store))

	// API v1 group
	api := app.Group("/api/v1")

	// Auth routes (public)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	if bruteForceProtection != nil {
		authGroup.Post("/login", bruteForceProtection.CheckAndRecordAttempt(), authHandler.Login)
	} else {
		authGroup.Post("/login", authHandler.Login)
	}
	authGroup.Post("/refresh", authHandler.Refresh)
	authGroup.Post("/logout", authMiddleware.Required(), authHandler.Logout)
	authGroup.Post("/change-password", authMiddleware.Required(), authHandler.ChangePassword)
	authGroup.Get("/profile", authMiddleware.Required(), authHandler.Profile)

	// Provider webhooks (public, authenticated by signature)
	webhooks := api.Group("/webhooks")
	webhooks.Post("/hotmart", webhookHandler.Hotmart)
	webhooks.Post("/stripe", webhookHandler.Stripe)

	// Courses
	courses := api.Group("/courses")
	courses.Get("/", courseHandler.List)
	courses.Get("/checkout/confirm", courseHandler.ConfirmCheckout)
	courses.Get("/:id", courseHandler.Get)
	courses.Post("/:id/checkout", courseHandler.Checkout)
	courses.Post("/:id/enroll", authMiddleware.Required(), enrollmentHandler.Enroll)
	courses.Post("/", authMiddleware.RequireAdmin(), courseHandler.Create)
	courses.Put("/:id", authMiddleware.RequireAdmin(), courseHandler.Update)
	courses.Delete("/:id", authMiddleware.RequireAdmin(), courseHandler.Delete)
	courses.Post("/:id/material", authMiddleware.RequireAdmin(), materialHandler.Upload)

	// Enrollments (owner or admin)
	enrollments := api.Group("/enrollments", authMiddleware.Required())
	enrollments.Get("/", enrollmentHandler.ListMine)
	enrollments.Get("/:id", enrollmentHandler.Get)
	enrollments.Post("/:id/pay", enrollmentHandler.Pay)
	enrollments.Get("/:id/content", enrollmentHandler.Content)

	// Course media, gated by signed token plus active enrollment
	api.Get("/media/:course_id/*", authMiddleware.Required(), mediaHandler.Serve)

	// Appointments and contact form
	appointments := api.Group("/appointments")
	appointments.Post("/", appointmentHandler.Create)
	appointments.Get("/", authMiddleware.RequireAdmin(), appointmentHandler.List)
	appointments.Put("/:id/status", authMiddleware.RequireAdmin(), appointmentHandler.UpdateStatus)
	api.Post("/contact", appointmentHandler.CreateContact)
	api.Get("/contact", authMiddleware.RequireAdmin(), appointmentHandler.ListContacts)

	// Events
	events := api.Group("/events")
	events.Get("/", eventHandler.List)
	events.Get("/all", authMiddleware.RequireAdmin(), eventHandler.ListAll)
	events.Post("/", authMiddleware.RequireAdmin(), eventHandler.Create)
	events.Put("/:id", authMiddleware.RequireAdmin(), eventHandler.Update)
	events.Delete("/:id", authMiddleware.RequireAdmin(), eventHandler.Delete)

	// Gallery
	gallery := api.Group("/gallery")
	gallery.Get("/", galleryHandler.List)
	gallery.Post("/", authMiddleware.RequireAdmin(), galleryHandler.Upload)
	gallery.Delete("/:id", authMiddleware.RequireAdmin(), galleryHandler.Delete)

	// Admin: settings, billing, course administration
	admin := api.Group("/admin", authMiddleware.RequireAdmin())
	admin.Get("/courses", courseHandler.ListAll)
	admin.Get("/settings", adminHandler.GetSettings)
	admin.Put("/settings", adminHandler.UpdateSettings)
	admin.Get("/billing", adminHandler.ListBilling)
	admin.Post("/billing", adminHandler.CreateBilling)
	admin.Put("/billing/:id", adminHandler.UpdateBilling)
	admin.Delete("/billing/:id", adminHandler.DeleteBilling)
	admin.Get("/invoices", adminHandler.ListInvoices)
	admin.Post("/invoices", adminHandler.CreateInvoice)
	admin.Put("/invoices/:id", adminHandler.UpdateInvoice)
	admin.Delete("/invoices/:id", adminHandler.DeleteInvoice)
	admin.Get("/convenios", adminHandler.ListConvenios)
	admin.Post("/convenios", adminHandler.CreateConvenio)
	admin.Put("/convenios/:id", adminHandler.UpdateConvenio)
	admin.Delete("/convenios/:id", adminHandler.DeleteConvenio)
	admin.Get("/subscriptions", adminHandler.ListSubscriptions)
}
