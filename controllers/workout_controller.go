package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dsouzakeegan/fitness-tracker/models"
	"github.com/dsouzakeegan/fitness-tracker/services"
)

type WorkoutController struct {
	Workouts services.WorkoutService
	Logger   *zap.Logger
}

func NewWorkoutController(workouts services.WorkoutService, logger *zap.Logger) *WorkoutController {
	return &WorkoutController{Workouts: workouts, Logger: logger}
}

// POST /api/workouts
func (wc *WorkoutController) LogWorkout(c *gin.Context) {
	userID, ok := authenticatedUserID(c)
	if !ok {
		return
	}

	var req models.LogWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	workout, svcErr := wc.Workouts.LogWorkout(c.Request.Context(), userID, &req)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"workout": workout})
}

// GET /api/workouts/recent
func (wc *WorkoutController) GetRecentWorkouts(c *gin.Context) {
	userID, ok := authenticatedUserID(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))

	workouts, svcErr := wc.Workouts.GetRecentWorkouts(c.Request.Context(), userID, limit)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"workouts": workouts})
}

// GET /api/workouts/analytics
func (wc *WorkoutController) GetAnalytics(c *gin.Context) {
	userID, ok := authenticatedUserID(c)
	if !ok {
		return
	}

	analytics, svcErr := wc.Workouts.GetAnalytics(c.Request.Context(), userID, c.Query("period"))
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"analytics": analytics})
}

// GET /api/workouts/recommendations
func (wc *WorkoutController) GetRecommendations(c *gin.Context) {
	userID, ok := authenticatedUserID(c)
	if !ok {
		return
	}

	recs, svcErr := wc.Workouts.GetRecommendations(c.Request.Context(), userID)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"recommendations": recs})
}

// GET /api/workouts/monthly-progress
func (wc *WorkoutController) GetMonthlyProgress(c *gin.Context) {
	userID, ok := authenticatedUserID(c)
	if !ok {
		return
	}

	progress, svcErr := wc.Workouts.GetMonthlyProgress(c.Request.Context(), userID)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"progress": progress})
}
