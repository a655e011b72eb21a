package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dsouzakeegan/fitness-tracker/models"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	FindByStripeID(ctx context.Context, stripePaymentID string) (*models.Payment, error)
	FindByUser(ctx context.Context, userID uuid.UUID) ([]models.Payment, error)
	// UpdateByStripeID applies column updates to the payment with the given
	// Stripe id. A missing record is not an error: webhooks and history
	// syncs must be able to no-op when the local record does not exist.
	UpdateByStripeID(ctx context.Context, stripePaymentID string, updates map[string]interface{}) error
}

type gormPaymentRepo struct {
	db *gorm.DB
}

func NewGormPaymentRepo(db *gorm.DB) PaymentRepository {
	return &gormPaymentRepo{db: db}
}

func (r *gormPaymentRepo) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *gormPaymentRepo) FindByStripeID(ctx context.Context, stripePaymentID string) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.WithContext(ctx).Where("stripe_payment_id = ?", stripePaymentID).First(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *gormPaymentRepo) FindByUser(ctx context.Context, userID uuid.UUID) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").Find(&payments).Error
	return payments, err
}

func (r *gormPaymentRepo) UpdateByStripeID(ctx context.Context, stripePaymentID string, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.Payment{}).
		Where("stripe_payment_id = ?", stripePaymentID).
		Updates(updates).Error
}
