package services

import (
	"context"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dsouzakeegan/fitness-tracker/models"
	"github.com/dsouzakeegan/fitness-tracker/repository"
)

const defaultRecentWorkouts = 10

// analyticsPeriods maps a period name to its window in days.
var analyticsPeriods = map[string]int{
	"week":  7,
	"month": 30,
	"year":  365,
}

type WorkoutService interface {
	LogWorkout(ctx context.Context, userID uuid.UUID, req *models.LogWorkoutRequest) (*models.Workout, *ServiceError)
	GetRecentWorkouts(ctx context.Context, userID uuid.UUID, limit int) ([]models.Workout, *ServiceError)
	GetAnalytics(ctx context.Context, userID uuid.UUID, period string) (*models.WorkoutAnalytics, *ServiceError)
	GetRecommendations(ctx context.Context, userID uuid.UUID) (*models.WorkoutRecommendations, *ServiceError)
	GetMonthlyProgress(ctx context.Context, userID uuid.UUID) (*models.MonthlyProgress, *ServiceError)
}

type workoutServiceImpl struct {
	workouts repository.WorkoutRepository
	logger   *zap.Logger
}

func NewWorkoutService(workouts repository.WorkoutRepository, logger *zap.Logger) WorkoutService {
	return &workoutServiceImpl{workouts: workouts, logger: logger}
}

func (s *workoutServiceImpl) LogWorkout(ctx context.Context, userID uuid.UUID, req *models.LogWorkoutRequest) (*models.Workout, *ServiceError) {
	if !slices.Contains(models.WorkoutTypes, req.WorkoutType) {
		return nil, &ServiceError{StatusCode: 400, Message: "Invalid workout type"}
	}
	if req.Duration <= 0 {
		return nil, &ServiceError{StatusCode: 400, Message: "Duration must be greater than zero"}
	}

	intensity := req.Intensity
	if intensity == "" {
		intensity = "Medium"
	}
	if !slices.Contains(models.WorkoutIntensities, intensity) {
		return nil, &ServiceError{StatusCode: 400, Message: "Invalid intensity"}
	}

	date := time.Now()
	if req.Date != nil {
		date = *req.Date
	}

	workout := &models.Workout{
		UserID:         userID,
		WorkoutType:    req.WorkoutType,
		Duration:       req.Duration,
		Intensity:      intensity,
		Exercises:      req.Exercises,
		Notes:          req.Notes,
		CaloriesBurned: req.CaloriesBurned,
		Date:           date,
	}
	if workout.CaloriesBurned <= 0 {
		workout.CaloriesBurned = workout.EstimatedCalories()
	}

	if err := s.workouts.Create(ctx, workout); err != nil {
		s.logger.Error("Failed to save workout", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to log workout"}
	}

	return workout, nil
}

func (s *workoutServiceImpl) GetRecentWorkouts(ctx context.Context, userID uuid.UUID, limit int) ([]models.Workout, *ServiceError) {
	if limit <= 0 {
		limit = defaultRecentWorkouts
	}
	workouts, err := s.workouts.FindRecentByUser(ctx, userID, limit)
	if err != nil {
		s.logger.Error("Failed to load workouts", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to retrieve workouts"}
	}
	return workouts, nil
}

func (s *workoutServiceImpl) GetAnalytics(ctx context.Context, userID uuid.UUID, period string) (*models.WorkoutAnalytics, *ServiceError) {
	days, ok := analyticsPeriods[period]
	if !ok {
		days = analyticsPeriods["month"]
	}
	since := time.Now().AddDate(0, 0, -days)

	workouts, err := s.workouts.FindByUserSince(ctx, userID, since)
	if err != nil {
		s.logger.Error("Failed to load workouts for analytics", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to retrieve analytics"}
	}

	analytics := &models.WorkoutAnalytics{
		TotalWorkouts:         len(workouts),
		WorkoutTypeBreakdown:  make(map[string]int),
		IntensityDistribution: make(map[string]int),
	}
	for _, w := range workouts {
		analytics.TotalCaloriesBurned += w.CaloriesBurned
		analytics.WorkoutTypeBreakdown[w.WorkoutType]++
		analytics.IntensityDistribution[w.Intensity]++
		analytics.ProgressTrends.DurationTrend = append(analytics.ProgressTrends.DurationTrend, w.Duration)
		analytics.ProgressTrends.CaloriesTrend = append(analytics.ProgressTrends.CaloriesTrend, w.CaloriesBurned)
	}

	return analytics, nil
}

// GetRecommendations suggests up to two workout types the user trains
// least, plus an intensity adjustment when the recent mix skews too easy
// or too hard.
func (s *workoutServiceImpl) GetRecommendations(ctx context.Context, userID uuid.UUID) (*models.WorkoutRecommendations, *ServiceError) {
	workouts, err := s.workouts.FindRecentByUser(ctx, userID, defaultRecentWorkouts)
	if err != nil {
		s.logger.Error("Failed to load workouts for recommendations", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to retrieve recommendations"}
	}

	typeCounts := make(map[string]int)
	intensityCounts := make(map[string]int)
	for _, w := range workouts {
		typeCounts[w.WorkoutType]++
		intensityCounts[w.Intensity]++
	}

	candidates := make([]string, len(models.WorkoutTypes))
	copy(candidates, models.WorkoutTypes)
	sort.SliceStable(candidates, func(i, j int) bool {
		return typeCounts[candidates[i]] < typeCounts[candidates[j]]
	})
	suggested := candidates
	if len(suggested) > 2 {
		suggested = suggested[:2]
	}

	adjustment := "Your intensity balance looks good"
	if total := len(workouts); total > 0 {
		lowShare := float64(intensityCounts["Low"]) / float64(total)
		extremeShare := float64(intensityCounts["Extreme"]) / float64(total)
		switch {
		case lowShare > 0.7:
			adjustment = "Consider increasing workout intensity for better results"
		case extremeShare > 0.5:
			adjustment = "Consider adding lower intensity recovery sessions"
		}
	}

	return &models.WorkoutRecommendations{
		SuggestedWorkoutTypes: suggested,
		IntensityAdjustment:   adjustment,
	}, nil
}

func (s *workoutServiceImpl) GetMonthlyProgress(ctx context.Context, userID uuid.UUID) (*models.MonthlyProgress, *ServiceError) {
	since := time.Now().AddDate(0, 0, -30)
	workouts, err := s.workouts.FindByUserSince(ctx, userID, since)
	if err != nil {
		s.logger.Error("Failed to load workouts for monthly progress", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to retrieve monthly progress"}
	}

	progress := &models.MonthlyProgress{TotalWorkouts: len(workouts)}
	totalDuration := 0
	for _, w := range workouts {
		progress.TotalCaloriesBurned += w.CaloriesBurned
		totalDuration += w.Duration
	}
	if len(workouts) > 0 {
		progress.AvgWorkoutDuration = totalDuration / len(workouts)
	}
	return progress, nil
}
