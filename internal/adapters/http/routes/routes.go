package routes

import (
	"time"

	"punebus-backend/internal/adapters/http/handlers"
	"punebus-backend/internal/adapters/http/middleware"
	"punebus-backend/internal/adapters/persistence/repositories"
	"punebus-backend/internal/config"
	"punebus-backend/internal/core/domain"
	"punebus-backend/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Handlers groups every HTTP handler mounted by Register
type Handlers struct {
	Health       *handlers.HealthHandler
	Auth         *handlers.AuthHandler
	User         *handlers.UserHandler
	Subscription *handlers.SubscriptionHandler
	Enquiry      *handlers.EnquiryHandler
	Dashboard    *handlers.DashboardHandler
}

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config, subscriptionService *services.SubscriptionService) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	enquiryRepo := repositories.NewEnquiryRepository(db)
	subscriptionRepo := repositories.NewSubscriptionRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo, refreshTokenRepo, cfg)
	userService := services.NewUserService(userRepo)
	enquiryService := services.NewEnquiryService(enquiryRepo)
	dashboardService := services.NewDashboardService(userRepo, subscriptionRepo, enquiryRepo)
	guard := services.NewAccessGuard(services.NewJWTVerifier(cfg.JWT.Secret), userRepo)

	h := &Handlers{
		Health:       handlers.NewHealthHandler(cfg),
		Auth:         handlers.NewAuthHandler(authService, userService, cfg),
		User:         handlers.NewUserHandler(userService),
		Subscription: handlers.NewSubscriptionHandler(subscriptionService),
		Enquiry:      handlers.NewEnquiryHandler(enquiryService),
		Dashboard:    handlers.NewDashboardHandler(dashboardService),
	}

	// Health check & root routes
	app.Get("/", h.Health.Root)
	app.Get("/health", h.Health.HealthCheck)

	// Prometheus metrics
	app.Get("/metrics", middleware.MetricsHandler())

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	Register(app, h, guard)
}

// Register mounts the API v1 routes
func Register(app *fiber.App, h *Handlers, guard middleware.Authenticator) {
	router := app.Group("/api/v1")
	auth := middleware.AuthMiddleware(guard)

	// API Info
	if h.Health != nil {
		router.Get("/", h.Health.APIInfo)
	}

	// Auth routes
	authRoutes := router.Group("/auth")
	setupAuthRoutes(authRoutes, h.Auth, auth)

	// Plan catalog (public)
	router.Get("/plans", middleware.PublicCacheHeaders(time.Hour), h.Subscription.Plans)

	// Subscription routes (Staff/Admin)
	subscriptionRoutes := router.Group("/subscriptions", auth, middleware.NoCacheHeaders())
	setupSubscriptionRoutes(subscriptionRoutes, h.Subscription)

	// Principal management routes (Staff/Admin)
	userRoutes := router.Group("/users", auth, middleware.NoCacheHeaders())
	setupUserRoutes(userRoutes, h.User)

	// Profile routes (Authenticated users)
	profileRoutes := router.Group("/profile", auth)
	setupProfileRoutes(profileRoutes, h.User)

	// Enquiry routes
	enquiryRoutes := router.Group("/enquiries")
	setupEnquiryRoutes(enquiryRoutes, h.Enquiry, auth)

	// Dashboard routes (Staff/Admin)
	dashboardRoutes := router.Group("/dashboard", auth, middleware.StaffOrAdmin())
	dashboardRoutes.Get("/", middleware.PrivateCacheHeaders(30*time.Second), h.Dashboard.GetDashboard)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, auth fiber.Handler) {
	// Public routes
	router.Post("/register", middleware.AuthRateLimiter(), handler.Register)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", auth, handler.Me)
	router.Post("/logout-all", auth, handler.LogoutAll)
}

// setupSubscriptionRoutes configures subscription routes
func setupSubscriptionRoutes(router fiber.Router, handler *handlers.SubscriptionHandler) {
	staff := middleware.StaffOrAdmin()

	router.Get("/", staff, handler.List)
	router.Post("/", staff, handler.Create)
	router.Get("/:id", staff, handler.Get)
	router.Put("/:id", staff, handler.Update)
	router.Patch("/:id", staff, handler.Update)

	// Admin only
	router.Delete("/:id", middleware.AdminOnly(), handler.Delete)
}

// setupUserRoutes configures principal management routes
func setupUserRoutes(router fiber.Router, handler *handlers.UserHandler) {
	staff := middleware.StaffOrAdmin()
	admin := middleware.AdminOnly()

	router.Get("/", staff, handler.ListUsers)
	router.Post("/", staff, handler.CreateUser)
	router.Get("/:id", staff, handler.GetUser)
	router.Put("/:id", staff, handler.UpdateUser)
	router.Patch("/:id/status", staff, handler.SetActive)

	// Admin only
	router.Delete("/:id", admin, handler.DeleteUser)
	router.Post("/:id/reset-password", admin, handler.ResetPassword)
}

// setupProfileRoutes configures profile routes (Authenticated)
func setupProfileRoutes(router fiber.Router, handler *handlers.UserHandler) {
	router.Get("/", handler.GetProfile)
	router.Put("/password", handler.ChangePassword)
}

// setupEnquiryRoutes configures enquiry routes
func setupEnquiryRoutes(router fiber.Router, handler *handlers.EnquiryHandler, auth fiber.Handler) {
	// Public contact form
	router.Post("/", middleware.EnquiryRateLimiter(), handler.Create)

	router.Get("/", auth, middleware.StaffOrAdmin(), handler.List)
	router.Patch("/:id/status", auth, middleware.StaffOrAdmin(), handler.UpdateStatus)
	router.Delete("/:id", auth, middleware.RequireCapability(domain.AdminOnly), handler.Delete)
}
