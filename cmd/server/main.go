package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"

	"github.com/estatelink/backend/internal/cache"
	"github.com/estatelink/backend/internal/config"
	"github.com/estatelink/backend/internal/database"
	"github.com/estatelink/backend/internal/handlers"
	"github.com/estatelink/backend/internal/identity"
	"github.com/estatelink/backend/internal/jobs"
	"github.com/estatelink/backend/internal/middleware"
	"github.com/estatelink/backend/internal/routes"
	"github.com/estatelink/backend/internal/services/admin"
	"github.com/estatelink/backend/internal/services/analytics"
	"github.com/estatelink/backend/internal/services/email"
	"github.com/estatelink/backend/internal/services/export"
	"github.com/estatelink/backend/internal/services/lead"
	"github.com/estatelink/backend/internal/services/pipeline"
	"github.com/estatelink/backend/internal/services/referral"
	"github.com/estatelink/backend/internal/storage"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.LoadConfig()

	db, err := database.InitDB(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	appCache := cache.New(redisClient)

	identityProvider := identity.NewAdminClient(cfg.Identity)
	blobStore := storage.NewClient(cfg.Storage)
	mailer := email.NewService(cfg.Email)

	// Initialize services
	referralService := referral.NewReferralService(db, appCache, identityProvider)
	leadService := lead.NewLeadService(db, appCache)
	dealService := pipeline.NewDealService(db, appCache)
	analyticsService := analytics.NewAnalyticsService(db, appCache)
	userService := admin.NewUserService(db, appCache, identityProvider, mailer, cfg.FrontendURL)
	exportService := export.NewExportService(db)

	// Initialize handlers
	h := routes.Handlers{
		Ambassadors: handlers.NewAmbassadorHandler(referralService),
		Leads:       handlers.NewLeadHandler(leadService, referralService),
		Developers:  handlers.NewDeveloperHandler(dealService),
		Deals:       handlers.NewDealHandler(dealService),
		Referrals:   handlers.NewReferralHandler(referralService),
		Dashboard:   handlers.NewDashboardHandler(analyticsService),
		Users:       handlers.NewUserHandler(userService),
		Exports:     handlers.NewExportHandler(exportService),
		Files:       handlers.NewFileHandler(db, blobStore),
		Portal:      handlers.NewPortalHandler(referralService, leadService, dealService),
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "x-api-key"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	rateLimiter := middleware.NewRateLimiter(5, 10)
	defer rateLimiter.Stop()

	routes.RegisterRoutes(router, db, h, rateLimiter, cfg.Referral.APIKey)

	scheduler, err := jobs.StartScheduler(db, appCache, mailer, cfg.Email.TaskDigestTo)
	if err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	defer scheduler.Stop()

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Printf("Server listening on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Forced shutdown: %v", err)
	}
	log.Println("Server exited")
}
