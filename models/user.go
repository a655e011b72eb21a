package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User model. StripeCustomerID is populated lazily by the billing service
// on the first subscription attempt.
type User struct {
	ID               uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email            string    `gorm:"unique;not null"`
	Password         string    `gorm:"not null" json:"-"`
	FirstName        string
	LastName         string
	Role             string  `gorm:"type:varchar(50);default:'user'"`
	RefreshToken     string  `json:"-"`
	StripeCustomerID *string `gorm:"index"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

// Migrate runs auto migration for all models.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&User{}, &Payment{}, &Subscription{}, &Workout{}, &Progress{})
}
