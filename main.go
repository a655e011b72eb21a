package main

import (
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dsouzakeegan/fitness-tracker/config"
	"github.com/dsouzakeegan/fitness-tracker/controllers"
	"github.com/dsouzakeegan/fitness-tracker/database"
	"github.com/dsouzakeegan/fitness-tracker/logger"
	"github.com/dsouzakeegan/fitness-tracker/middleware"
	"github.com/dsouzakeegan/fitness-tracker/models"
	"github.com/dsouzakeegan/fitness-tracker/repository"
	"github.com/dsouzakeegan/fitness-tracker/routes"
	"github.com/dsouzakeegan/fitness-tracker/services"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zapLogger, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	if err := database.Connect(cfg); err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := models.Migrate(database.DB); err != nil {
		zapLogger.Fatal("Failed to run migrations", zap.Error(err))
	}

	userRepo := repository.NewGormUserRepo(database.DB)
	paymentRepo := repository.NewGormPaymentRepo(database.DB)
	subscriptionRepo := repository.NewGormSubscriptionRepo(database.DB)
	workoutRepo := repository.NewGormWorkoutRepo(database.DB)
	progressRepo := repository.NewGormProgressRepo(database.DB)

	gateway := services.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	tokenService := services.NewTokenService(cfg.AccessTokenSecret, cfg.RefreshTokenSecret)
	authService := services.NewAuthService(userRepo, tokenService, zapLogger)
	billingService := services.NewBillingService(gateway, paymentRepo, subscriptionRepo, userRepo, zapLogger)
	webhookService := services.NewWebhookService(paymentRepo, subscriptionRepo, zapLogger)
	workoutService := services.NewWorkoutService(workoutRepo, zapLogger)
	progressService := services.NewProgressService(progressRepo, zapLogger)

	production := cfg.Env == "production"
	if production {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(logger.RequestLogger(zapLogger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.Register(r, routes.Controllers{
		Auth:     controllers.NewAuthController(authService, zapLogger, production),
		Billing:  controllers.NewBillingController(billingService, zapLogger, production),
		Webhook:  controllers.NewWebhookController(gateway, webhookService, zapLogger),
		Workout:  controllers.NewWorkoutController(workoutService, zapLogger),
		Progress: controllers.NewProgressController(progressService, zapLogger),
	}, cfg.AccessTokenSecret)

	zapLogger.Info("Server starting", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
	if err := r.Run(":" + cfg.Port); err != nil {
		zapLogger.Fatal("Server failed", zap.Error(err))
	}
}
