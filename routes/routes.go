package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/dsouzakeegan/fitness-tracker/controllers"
	"github.com/dsouzakeegan/fitness-tracker/middleware"
)

type Controllers struct {
	Auth     *controllers.AuthController
	Billing  *controllers.BillingController
	Webhook  *controllers.WebhookController
	Workout  *controllers.WorkoutController
	Progress *controllers.ProgressController
}

// Register wires the full API surface under /api. The webhook route is
// unauthenticated; Stripe signs its payloads instead.
func Register(r *gin.Engine, ctrl Controllers, accessSecret string) {
	authLimiter := middleware.RateLimitMiddleware(rate.Limit(1), 5)
	paymentLimiter := middleware.RateLimitMiddleware(rate.Limit(1), 3)

	api := r.Group("/api")

	auth := api.Group("/auth")
	auth.Use(authLimiter)
	auth.POST("/signup", ctrl.Auth.Signup)
	auth.POST("/login", ctrl.Auth.Login)
	auth.GET("/refresh", ctrl.Auth.Refresh)
	auth.POST("/logout", ctrl.Auth.Logout)

	api.POST("/webhooks/stripe", ctrl.Webhook.HandleWebhook)

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(accessSecret))

	payments := protected.Group("/payments")
	payments.POST("/create-intent", paymentLimiter, ctrl.Billing.CreatePaymentIntent)
	payments.GET("/history", ctrl.Billing.GetPaymentHistory)
	payments.GET("/:id/invoice", ctrl.Billing.GetInvoice)

	subscriptions := protected.Group("/subscriptions")
	subscriptions.POST("/create", paymentLimiter, ctrl.Billing.CreateSubscription)
	subscriptions.GET("/current", ctrl.Billing.GetCurrentSubscription)
	subscriptions.PUT("/:id", paymentLimiter, ctrl.Billing.UpdateSubscription)

	workouts := protected.Group("/workouts")
	workouts.POST("", ctrl.Workout.LogWorkout)
	workouts.GET("/recent", ctrl.Workout.GetRecentWorkouts)
	workouts.GET("/analytics", ctrl.Workout.GetAnalytics)
	workouts.GET("/recommendations", ctrl.Workout.GetRecommendations)
	workouts.GET("/monthly-progress", ctrl.Workout.GetMonthlyProgress)

	progress := protected.Group("/progress")
	progress.GET("", ctrl.Progress.GetProgress)
	progress.PUT("/measurements", ctrl.Progress.UpdateMeasurements)
	progress.PUT("/strength", ctrl.Progress.UpdateStrength)
	progress.PUT("/metrics", ctrl.Progress.UpdateMetrics)
	progress.POST("/achievements", ctrl.Progress.AddAchievement)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
	})
}
