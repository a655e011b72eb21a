package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dsouzakeegan/fitness-tracker/models"
)

type MockProgressRepository struct{ mock.Mock }

func (m *MockProgressRepository) Create(ctx context.Context, progress *models.Progress) error {
	args := m.Called(ctx, progress)
	return args.Error(0)
}
func (m *MockProgressRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*models.Progress, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Progress), args.Error(1)
}
func (m *MockProgressRepository) Save(ctx context.Context, progress *models.Progress) error {
	args := m.Called(ctx, progress)
	return args.Error(0)
}

func floatPtr(v float64) *float64 { return &v }

func TestGetProgress(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("Creates an empty record on first access", func(t *testing.T) {
		mockRepo := new(MockProgressRepository)
		svc := NewProgressService(mockRepo, zap.NewNop())

		mockRepo.On("FindByUser", mock.Anything, userID).Return(nil, gorm.ErrRecordNotFound).Once()
		mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Progress")).Return(nil).Once()

		view, svcErr := svc.GetProgress(ctx, userID, "")

		assert.Nil(t, svcErr)
		assert.Empty(t, view.BodyMeasurements)
		assert.Len(t, view.Strength, 4)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Filters by timeframe and orders achievements newest first", func(t *testing.T) {
		mockRepo := new(MockProgressRepository)
		svc := NewProgressService(mockRepo, zap.NewNop())

		now := time.Now()
		record := &models.Progress{
			UserID: userID,
			BodyMeasurements: []models.BodyMeasurement{
				{Date: now.AddDate(0, -6, 0), Weight: floatPtr(82)},
				{Date: now.AddDate(0, -1, 0), Weight: floatPtr(80)},
			},
			Achievements: []models.Achievement{
				{Title: "First workout", Date: now.AddDate(0, -2, 0)},
				{Title: "10 workouts", Date: now.AddDate(0, 0, -7)},
			},
			Strength: models.StrengthProgress{
				Bench: models.StrengthStat{Current: 80, Best: 90, Goal: 100},
			},
		}
		mockRepo.On("FindByUser", mock.Anything, userID).Return(record, nil).Once()

		view, svcErr := svc.GetProgress(ctx, userID, "3months")

		assert.Nil(t, svcErr)
		assert.Len(t, view.BodyMeasurements, 1)
		assert.Len(t, view.Achievements, 2)
		assert.Equal(t, "10 workouts", view.Achievements[0].Title)
		assert.Equal(t, float64(80), view.Strength["bench"].PercentToGoal)
	})
}

func TestUpdateMeasurements(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("Requires at least one field", func(t *testing.T) {
		mockRepo := new(MockProgressRepository)
		svc := NewProgressService(mockRepo, zap.NewNop())

		_, svcErr := svc.UpdateMeasurements(ctx, userID, &models.UpdateMeasurementsRequest{})

		assert.NotNil(t, svcErr)
		assert.Equal(t, 400, svcErr.StatusCode)
		mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("Caps history at twelve entries", func(t *testing.T) {
		mockRepo := new(MockProgressRepository)
		svc := NewProgressService(mockRepo, zap.NewNop())

		record := &models.Progress{UserID: userID}
		for i := 0; i < maxHistoryEntries; i++ {
			record.BodyMeasurements = append(record.BodyMeasurements, models.BodyMeasurement{
				Date: time.Now().AddDate(0, 0, -i),
			})
		}
		mockRepo.On("FindByUser", mock.Anything, userID).Return(record, nil).Once()
		mockRepo.On("Save", mock.Anything, mock.Anything).Return(nil).Once()

		updated, svcErr := svc.UpdateMeasurements(ctx, userID, &models.UpdateMeasurementsRequest{Weight: floatPtr(79.5)})

		assert.Nil(t, svcErr)
		assert.Len(t, updated.BodyMeasurements, maxHistoryEntries)
		// The newest entry survives the trim.
		last := updated.BodyMeasurements[len(updated.BodyMeasurements)-1]
		assert.Equal(t, 79.5, *last.Weight)
	})
}

func TestUpdateStrength(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("Raises best when current exceeds it", func(t *testing.T) {
		mockRepo := new(MockProgressRepository)
		svc := NewProgressService(mockRepo, zap.NewNop())

		record := &models.Progress{
			UserID:   userID,
			Strength: models.StrengthProgress{Squat: models.StrengthStat{Current: 100, Best: 110}},
		}
		mockRepo.On("FindByUser", mock.Anything, userID).Return(record, nil).Once()
		mockRepo.On("Save", mock.Anything, mock.Anything).Return(nil).Once()

		updated, svcErr := svc.UpdateStrength(ctx, userID, &models.UpdateStrengthRequest{
			Exercise: "squat",
			Current:  floatPtr(120),
			Goal:     floatPtr(140),
		})

		assert.Nil(t, svcErr)
		assert.Equal(t, float64(120), updated.Strength.Squat.Current)
		assert.Equal(t, float64(120), updated.Strength.Squat.Best)
		assert.Equal(t, float64(140), updated.Strength.Squat.Goal)
	})

	t.Run("Invalid exercise - 400", func(t *testing.T) {
		mockRepo := new(MockProgressRepository)
		svc := NewProgressService(mockRepo, zap.NewNop())

		_, svcErr := svc.UpdateStrength(ctx, userID, &models.UpdateStrengthRequest{Exercise: "curl"})

		assert.NotNil(t, svcErr)
		assert.Equal(t, 400, svcErr.StatusCode)
		mockRepo.AssertNotCalled(t, "FindByUser", mock.Anything, mock.Anything)
	})
}

func TestUpdateMetrics(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("Clamps values to the 0-100 range", func(t *testing.T) {
		mockRepo := new(MockProgressRepository)
		svc := NewProgressService(mockRepo, zap.NewNop())

		mockRepo.On("FindByUser", mock.Anything, userID).Return(&models.Progress{UserID: userID}, nil).Once()
		mockRepo.On("Save", mock.Anything, mock.Anything).Return(nil).Once()

		updated, svcErr := svc.UpdateMetrics(ctx, userID, &models.UpdateMetricsRequest{
			Metrics: map[string]float64{"strength": 150, "endurance": -5},
		})

		assert.Nil(t, svcErr)
		entry := updated.FitnessMetrics[len(updated.FitnessMetrics)-1]
		assert.Equal(t, float64(100), entry.Metrics["strength"].Current)
		assert.Equal(t, float64(0), entry.Metrics["endurance"].Current)
	})

	t.Run("Unknown metric - 400", func(t *testing.T) {
		mockRepo := new(MockProgressRepository)
		svc := NewProgressService(mockRepo, zap.NewNop())

		_, svcErr := svc.UpdateMetrics(ctx, userID, &models.UpdateMetricsRequest{
			Metrics: map[string]float64{"stamina": 50},
		})

		assert.NotNil(t, svcErr)
		assert.Equal(t, 400, svcErr.StatusCode)
	})
}

func TestAddAchievement(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("Rejects duplicate titles", func(t *testing.T) {
		mockRepo := new(MockProgressRepository)
		svc := NewProgressService(mockRepo, zap.NewNop())

		record := &models.Progress{
			UserID:       userID,
			Achievements: []models.Achievement{{Title: "First workout", Type: "milestone"}},
		}
		mockRepo.On("FindByUser", mock.Anything, userID).Return(record, nil).Once()

		_, svcErr := svc.AddAchievement(ctx, userID, &models.AddAchievementRequest{
			Title: "First workout",
			Type:  "milestone",
		})

		assert.NotNil(t, svcErr)
		assert.Equal(t, 409, svcErr.StatusCode)
		mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("Invalid type - 400", func(t *testing.T) {
		mockRepo := new(MockProgressRepository)
		svc := NewProgressService(mockRepo, zap.NewNop())

		_, svcErr := svc.AddAchievement(ctx, userID, &models.AddAchievementRequest{
			Title: "Something",
			Type:  "legendary",
		})

		assert.NotNil(t, svcErr)
		assert.Equal(t, 400, svcErr.StatusCode)
	})

	t.Run("Appends a dated achievement", func(t *testing.T) {
		mockRepo := new(MockProgressRepository)
		svc := NewProgressService(mockRepo, zap.NewNop())

		mockRepo.On("FindByUser", mock.Anything, userID).Return(&models.Progress{UserID: userID}, nil).Once()
		mockRepo.On("Save", mock.Anything, mock.Anything).Return(nil).Once()

		updated, svcErr := svc.AddAchievement(ctx, userID, &models.AddAchievementRequest{
			Title: "10 workouts",
			Type:  "consistency",
		})

		assert.Nil(t, svcErr)
		assert.Len(t, updated.Achievements, 1)
		assert.WithinDuration(t, time.Now(), updated.Achievements[0].Date, time.Minute)
	})
}
