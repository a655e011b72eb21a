package models

import (
	"time"

	"github.com/google/uuid"
)

// Subscription statuses, mirroring Stripe's. Transitions are driven by the
// provider and only mirrored locally.
const (
	SubscriptionStatusActive            = "active"
	SubscriptionStatusCanceled          = "canceled"
	SubscriptionStatusIncomplete        = "incomplete"
	SubscriptionStatusIncompleteExpired = "incomplete_expired"
	SubscriptionStatusPastDue           = "past_due"
	SubscriptionStatusTrialing          = "trialing"
	SubscriptionStatusUnpaid            = "unpaid"
)

// LiveSubscriptionStatuses are the statuses treated as "currently billing".
// At most one subscription per user may hold one of these, enforced by the
// billing service at creation time.
var LiveSubscriptionStatuses = []string{
	SubscriptionStatusActive,
	SubscriptionStatusTrialing,
	SubscriptionStatusPastDue,
}

// Subscription mirrors a Stripe subscription for a user.
type Subscription struct {
	ID                   uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID               uuid.UUID `gorm:"type:uuid;index:idx_subscriptions_user_status;not null"`
	StripeSubscriptionID string    `gorm:"uniqueIndex;not null"`
	StripeCustomerID     string    `gorm:"index;not null"`
	PriceID              string    `gorm:"not null"`
	Status               string    `gorm:"type:varchar(20);index:idx_subscriptions_user_status;not null"`
	CurrentPeriodStart   time.Time `gorm:"not null"`
	CurrentPeriodEnd     time.Time `gorm:"not null"`
	CancelAtPeriodEnd    bool      `gorm:"default:false"`
	CanceledAt           *time.Time
	TrialStart           *time.Time
	TrialEnd             *time.Time
	Metadata             map[string]string `gorm:"type:jsonb;serializer:json"`
	CreatedAt            time.Time         `gorm:"autoCreateTime"`
	UpdatedAt            time.Time         `gorm:"autoUpdateTime"`
}

// SubscriptionView is the denormalized shape returned to the client.
type SubscriptionView struct {
	ID                 string `json:"id"`
	Status             string `json:"status"`
	PlanID             string `json:"planId,omitempty"`
	PlanName           string `json:"planName,omitempty"`
	Amount             int64  `json:"amount,omitempty"`
	Currency           string `json:"currency,omitempty"`
	CurrentPeriodStart int64  `json:"currentPeriodStart,omitempty"` // epoch millis
	CurrentPeriodEnd   int64  `json:"currentPeriodEnd"`             // epoch millis
	CancelAtPeriodEnd  bool   `json:"cancelAtPeriodEnd"`
}
