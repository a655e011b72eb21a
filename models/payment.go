package models

import (
	"time"

	"github.com/google/uuid"
)

// Payment statuses. A payment is created pending and only ever moves to a
// terminal status; records are never deleted.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusSucceeded = "succeeded"
	PaymentStatusFailed    = "failed"
	PaymentStatusRefunded  = "refunded"
)

// PaymentMethodInfo is the card descriptor attached to a payment.
type PaymentMethodInfo struct {
	Type  string `json:"type"`
	Brand string `json:"brand,omitempty"`
	Last4 string `json:"last4,omitempty"`
}

// Payment mirrors a Stripe payment intent. StripePaymentID is the
// provider-side id and is unique across all records.
type Payment struct {
	ID              uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID          uuid.UUID         `gorm:"type:uuid;index;not null"`
	StripePaymentID string            `gorm:"uniqueIndex;not null"`
	Amount          int64             `gorm:"not null"` // minor currency units
	Currency        string            `gorm:"type:varchar(10);not null;default:'usd'"`
	Status          string            `gorm:"type:varchar(20);not null"`
	PaymentMethod   PaymentMethodInfo `gorm:"type:jsonb;serializer:json"`
	Metadata        map[string]string `gorm:"type:jsonb;serializer:json"`
	CreatedAt       time.Time         `gorm:"autoCreateTime"`
	UpdatedAt       time.Time         `gorm:"autoUpdateTime"`
}

// PaymentView is the shape returned by the payment history endpoint.
type PaymentView struct {
	ID            string            `json:"id"`
	Amount        int64             `json:"amount"`
	Currency      string            `json:"currency"`
	Status        string            `json:"status"`
	Description   string            `json:"description"`
	Created       int64             `json:"created"` // epoch millis
	PaymentMethod PaymentMethodInfo `json:"paymentMethod"`
}
