package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dsouzakeegan/fitness-tracker/models"
)

type ProgressRepository interface {
	Create(ctx context.Context, progress *models.Progress) error
	FindByUser(ctx context.Context, userID uuid.UUID) (*models.Progress, error)
	Save(ctx context.Context, progress *models.Progress) error
}

type gormProgressRepo struct {
	db *gorm.DB
}

func NewGormProgressRepo(db *gorm.DB) ProgressRepository {
	return &gormProgressRepo{db: db}
}

func (r *gormProgressRepo) Create(ctx context.Context, progress *models.Progress) error {
	return r.db.WithContext(ctx).Create(progress).Error
}

func (r *gormProgressRepo) FindByUser(ctx context.Context, userID uuid.UUID) (*models.Progress, error) {
	var progress models.Progress
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&progress).Error; err != nil {
		return nil, err
	}
	return &progress, nil
}

func (r *gormProgressRepo) Save(ctx context.Context, progress *models.Progress) error {
	return r.db.WithContext(ctx).Save(progress).Error
}
