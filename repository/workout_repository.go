package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dsouzakeegan/fitness-tracker/models"
)

type WorkoutRepository interface {
	Create(ctx context.Context, workout *models.Workout) error
	FindRecentByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Workout, error)
	FindByUserSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]models.Workout, error)
}

type gormWorkoutRepo struct {
	db *gorm.DB
}

func NewGormWorkoutRepo(db *gorm.DB) WorkoutRepository {
	return &gormWorkoutRepo{db: db}
}

func (r *gormWorkoutRepo) Create(ctx context.Context, workout *models.Workout) error {
	return r.db.WithContext(ctx).Create(workout).Error
}

func (r *gormWorkoutRepo) FindRecentByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Workout, error) {
	var workouts []models.Workout
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("date DESC").Limit(limit).Find(&workouts).Error
	return workouts, err
}

func (r *gormWorkoutRepo) FindByUserSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]models.Workout, error) {
	var workouts []models.Workout
	err := r.db.WithContext(ctx).Where("user_id = ? AND date >= ?", userID, since).
		Order("date ASC").Find(&workouts).Error
	return workouts, err
}
