package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dsouzakeegan/fitness-tracker/models"
)

type SubscriptionRepository interface {
	Create(ctx context.Context, sub *models.Subscription) error
	FindByStripeID(ctx context.Context, stripeSubscriptionID string) (*models.Subscription, error)
	// FindLatestByUserAndStatuses returns the most recently created
	// subscription for the user whose status is in the given set, or
	// gorm.ErrRecordNotFound.
	FindLatestByUserAndStatuses(ctx context.Context, userID uuid.UUID, statuses []string) (*models.Subscription, error)
	// UpdateByStripeID applies column updates keyed by the Stripe
	// subscription id. Missing records are a silent no-op so webhook
	// handlers stay idempotent.
	UpdateByStripeID(ctx context.Context, stripeSubscriptionID string, updates map[string]interface{}) error
}

type gormSubscriptionRepo struct {
	db *gorm.DB
}

func NewGormSubscriptionRepo(db *gorm.DB) SubscriptionRepository {
	return &gormSubscriptionRepo{db: db}
}

func (r *gormSubscriptionRepo) Create(ctx context.Context, sub *models.Subscription) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

func (r *gormSubscriptionRepo) FindByStripeID(ctx context.Context, stripeSubscriptionID string) (*models.Subscription, error) {
	var sub models.Subscription
	if err := r.db.WithContext(ctx).Where("stripe_subscription_id = ?", stripeSubscriptionID).First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *gormSubscriptionRepo) FindLatestByUserAndStatuses(ctx context.Context, userID uuid.UUID, statuses []string) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status IN ?", userID, statuses).
		Order("created_at DESC").
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *gormSubscriptionRepo) UpdateByStripeID(ctx context.Context, stripeSubscriptionID string, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("stripe_subscription_id = ?", stripeSubscriptionID).
		Updates(updates).Error
}
