package services

import (
	"context"
	"errors"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dsouzakeegan/fitness-tracker/models"
	"github.com/dsouzakeegan/fitness-tracker/repository"
)

// maxHistoryEntries caps measurement and metric histories.
const maxHistoryEntries = 12

// timeframeMonths maps a timeframe name to its window in months.
var timeframeMonths = map[string]int{
	"1month":  1,
	"3months": 3,
	"6months": 6,
	"1year":   12,
}

type ProgressService interface {
	GetProgress(ctx context.Context, userID uuid.UUID, timeframe string) (*models.ProgressView, *ServiceError)
	UpdateMeasurements(ctx context.Context, userID uuid.UUID, req *models.UpdateMeasurementsRequest) (*models.Progress, *ServiceError)
	UpdateStrength(ctx context.Context, userID uuid.UUID, req *models.UpdateStrengthRequest) (*models.Progress, *ServiceError)
	UpdateMetrics(ctx context.Context, userID uuid.UUID, req *models.UpdateMetricsRequest) (*models.Progress, *ServiceError)
	AddAchievement(ctx context.Context, userID uuid.UUID, req *models.AddAchievementRequest) (*models.Progress, *ServiceError)
}

type progressServiceImpl struct {
	progress repository.ProgressRepository
	logger   *zap.Logger
}

func NewProgressService(progress repository.ProgressRepository, logger *zap.Logger) ProgressService {
	return &progressServiceImpl{progress: progress, logger: logger}
}

// loadOrCreate fetches the user's progress record, creating an empty one
// on first access.
func (s *progressServiceImpl) loadOrCreate(ctx context.Context, userID uuid.UUID) (*models.Progress, *ServiceError) {
	record, err := s.progress.FindByUser(ctx, userID)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("Failed to load progress", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to retrieve progress"}
	}

	record = &models.Progress{UserID: userID}
	if err := s.progress.Create(ctx, record); err != nil {
		s.logger.Error("Failed to create progress record", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to retrieve progress"}
	}
	return record, nil
}

func (s *progressServiceImpl) GetProgress(ctx context.Context, userID uuid.UUID, timeframe string) (*models.ProgressView, *ServiceError) {
	months, ok := timeframeMonths[timeframe]
	if !ok {
		months = timeframeMonths["3months"]
	}
	cutoff := time.Now().AddDate(0, -months, 0)

	record, svcErr := s.loadOrCreate(ctx, userID)
	if svcErr != nil {
		return nil, svcErr
	}

	view := &models.ProgressView{
		BodyMeasurements: []models.BodyMeasurement{},
		Strength:         make(map[string]models.StrengthViewStat, len(models.StrengthExercises)),
		FitnessMetrics:   []models.FitnessMetricEntry{},
		Achievements:     []models.Achievement{},
	}

	for _, m := range record.BodyMeasurements {
		if !m.Date.Before(cutoff) {
			view.BodyMeasurements = append(view.BodyMeasurements, m)
		}
	}
	for _, e := range record.FitnessMetrics {
		if !e.Date.Before(cutoff) {
			view.FitnessMetrics = append(view.FitnessMetrics, e)
		}
	}
	for _, a := range record.Achievements {
		if !a.Date.Before(cutoff) {
			view.Achievements = append(view.Achievements, a)
		}
	}
	sort.Slice(view.Achievements, func(i, j int) bool {
		return view.Achievements[i].Date.After(view.Achievements[j].Date)
	})

	for _, exercise := range models.StrengthExercises {
		stat := record.Strength.Stat(exercise)
		view.Strength[exercise] = models.StrengthViewStat{
			Current:       stat.Current,
			Best:          stat.Best,
			Goal:          stat.Goal,
			PercentToGoal: percentToGoal(stat.Current, stat.Goal),
		}
	}

	return view, nil
}

func (s *progressServiceImpl) UpdateMeasurements(ctx context.Context, userID uuid.UUID, req *models.UpdateMeasurementsRequest) (*models.Progress, *ServiceError) {
	if req.Weight == nil && req.BodyFat == nil && req.MuscleMass == nil {
		return nil, &ServiceError{StatusCode: 400, Message: "At least one measurement is required"}
	}

	record, svcErr := s.loadOrCreate(ctx, userID)
	if svcErr != nil {
		return nil, svcErr
	}

	record.BodyMeasurements = append(record.BodyMeasurements, models.BodyMeasurement{
		Date:       time.Now(),
		Weight:     req.Weight,
		BodyFat:    req.BodyFat,
		MuscleMass: req.MuscleMass,
	})
	record.BodyMeasurements = trimHistory(record.BodyMeasurements)

	if err := s.progress.Save(ctx, record); err != nil {
		s.logger.Error("Failed to save measurements", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to update measurements"}
	}
	return record, nil
}

func (s *progressServiceImpl) UpdateStrength(ctx context.Context, userID uuid.UUID, req *models.UpdateStrengthRequest) (*models.Progress, *ServiceError) {
	if !slices.Contains(models.StrengthExercises, req.Exercise) {
		return nil, &ServiceError{StatusCode: 400, Message: "Invalid exercise"}
	}

	record, svcErr := s.loadOrCreate(ctx, userID)
	if svcErr != nil {
		return nil, svcErr
	}

	stat := record.Strength.Stat(req.Exercise)
	if req.Current != nil {
		stat.Current = *req.Current
		if stat.Current > stat.Best {
			stat.Best = stat.Current
		}
	}
	if req.Goal != nil {
		stat.Goal = *req.Goal
	}

	if err := s.progress.Save(ctx, record); err != nil {
		s.logger.Error("Failed to save strength progress", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to update strength progress"}
	}
	return record, nil
}

func (s *progressServiceImpl) UpdateMetrics(ctx context.Context, userID uuid.UUID, req *models.UpdateMetricsRequest) (*models.Progress, *ServiceError) {
	if len(req.Metrics) == 0 {
		return nil, &ServiceError{StatusCode: 400, Message: "At least one metric is required"}
	}
	for name := range req.Metrics {
		if !slices.Contains(models.FitnessMetricSet, name) {
			return nil, &ServiceError{StatusCode: 400, Message: "Invalid metric: " + name}
		}
	}

	record, svcErr := s.loadOrCreate(ctx, userID)
	if svcErr != nil {
		return nil, svcErr
	}

	// Goals carry over from the most recent entry, defaulting to 100.
	previousGoals := make(map[string]float64)
	if n := len(record.FitnessMetrics); n > 0 {
		for name, v := range record.FitnessMetrics[n-1].Metrics {
			previousGoals[name] = v.Goal
		}
	}

	entry := models.FitnessMetricEntry{
		Date:    time.Now(),
		Metrics: make(map[string]models.MetricValue, len(req.Metrics)),
	}
	for name, value := range req.Metrics {
		goal, ok := previousGoals[name]
		if !ok {
			goal = 100
		}
		entry.Metrics[name] = models.MetricValue{
			Current: clampMetric(value),
			Goal:    goal,
		}
	}

	record.FitnessMetrics = append(record.FitnessMetrics, entry)
	record.FitnessMetrics = trimHistory(record.FitnessMetrics)

	if err := s.progress.Save(ctx, record); err != nil {
		s.logger.Error("Failed to save fitness metrics", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to update metrics"}
	}
	return record, nil
}

func (s *progressServiceImpl) AddAchievement(ctx context.Context, userID uuid.UUID, req *models.AddAchievementRequest) (*models.Progress, *ServiceError) {
	if !slices.Contains(models.AchievementTypes, req.Type) {
		return nil, &ServiceError{StatusCode: 400, Message: "Invalid achievement type"}
	}

	record, svcErr := s.loadOrCreate(ctx, userID)
	if svcErr != nil {
		return nil, svcErr
	}

	for _, a := range record.Achievements {
		if a.Title == req.Title {
			return nil, &ServiceError{StatusCode: 409, Message: "Achievement already recorded"}
		}
	}

	record.Achievements = append(record.Achievements, models.Achievement{
		Title:       req.Title,
		Type:        req.Type,
		Description: req.Description,
		Date:        time.Now(),
	})

	if err := s.progress.Save(ctx, record); err != nil {
		s.logger.Error("Failed to save achievement", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to add achievement"}
	}
	return record, nil
}

func percentToGoal(current, goal float64) float64 {
	if goal <= 0 {
		return 0
	}
	pct := current / goal * 100
	if pct > 100 {
		pct = 100
	}
	return pct
}

func clampMetric(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// trimHistory keeps the most recent entries up to the cap.
func trimHistory[T any](entries []T) []T {
	if len(entries) > maxHistoryEntries {
		return entries[len(entries)-maxHistoryEntries:]
	}
	return entries
}
