package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"punebus-backend/internal/adapters/http/middleware"
	"punebus-backend/internal/adapters/http/routes"
	"punebus-backend/internal/adapters/persistence/models"
	"punebus-backend/internal/adapters/persistence/repositories"
	"punebus-backend/internal/config"
	"punebus-backend/internal/core/domain"
	"punebus-backend/internal/core/services"

	"github.com/gofiber/fiber/v2"

	_ "punebus-backend/docs" // Swagger docs
)

// @title PuneBus API
// @version 1.0
// @description PuneBus admin backend: subscriptions, partners, staff and enquiries

// @contact.name API Support
// @contact.email support@punebus.in

// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	accessLog := config.SetupLogging(cfg.Log)

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer config.CloseDatabase()

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Failed to auto migrate: %v", err)
	}
	log.Println("✅ Database migration completed")

	// Seed bootstrap admin
	if err := config.NewSeeder(db, cfg.Seed).Run(); err != nil {
		log.Printf("⚠️ Warning: Failed to seed database: %v", err)
	}

	// Plan catalog is fixed for the process lifetime
	subscriptionService := services.NewSubscriptionService(
		repositories.NewSubscriptionRepository(db),
		domain.DefaultPlanCatalog(),
	)

	// Start Cron Service for subscription expiry
	if cfg.Cron.Enabled {
		cronService := services.NewCronService(
			subscriptionService,
			repositories.NewRefreshTokenRepository(db),
			cfg.Cron.ExpirySchedule,
		)
		if err := cronService.Start(); err != nil {
			log.Fatalf("❌ Failed to start cron: %v", err)
		}
		defer cronService.Stop()
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "PuneBus API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg, accessLog)

	// Setup routes
	routes.Setup(app, db, cfg, subscriptionService)

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Printf("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}
