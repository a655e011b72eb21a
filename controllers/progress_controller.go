package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dsouzakeegan/fitness-tracker/models"
	"github.com/dsouzakeegan/fitness-tracker/services"
)

type ProgressController struct {
	Progress services.ProgressService
	Logger   *zap.Logger
}

func NewProgressController(progress services.ProgressService, logger *zap.Logger) *ProgressController {
	return &ProgressController{Progress: progress, Logger: logger}
}

// GET /api/progress
func (pc *ProgressController) GetProgress(c *gin.Context) {
	userID, ok := authenticatedUserID(c)
	if !ok {
		return
	}

	view, svcErr := pc.Progress.GetProgress(c.Request.Context(), userID, c.Query("timeframe"))
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"progress": view})
}

// PUT /api/progress/measurements
func (pc *ProgressController) UpdateMeasurements(c *gin.Context) {
	userID, ok := authenticatedUserID(c)
	if !ok {
		return
	}

	var req models.UpdateMeasurementsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, svcErr := pc.Progress.UpdateMeasurements(c.Request.Context(), userID, &req)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"progress": record})
}

// PUT /api/progress/strength
func (pc *ProgressController) UpdateStrength(c *gin.Context) {
	userID, ok := authenticatedUserID(c)
	if !ok {
		return
	}

	var req models.UpdateStrengthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, svcErr := pc.Progress.UpdateStrength(c.Request.Context(), userID, &req)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"progress": record})
}

// PUT /api/progress/metrics
func (pc *ProgressController) UpdateMetrics(c *gin.Context) {
	userID, ok := authenticatedUserID(c)
	if !ok {
		return
	}

	var req models.UpdateMetricsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, svcErr := pc.Progress.UpdateMetrics(c.Request.Context(), userID, &req)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"progress": record})
}

// POST /api/progress/achievements
func (pc *ProgressController) AddAchievement(c *gin.Context) {
	userID, ok := authenticatedUserID(c)
	if !ok {
		return
	}

	var req models.AddAchievementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, svcErr := pc.Progress.AddAchievement(c.Request.Context(), userID, &req)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"progress": record})
}
