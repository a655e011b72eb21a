package models

import "time"

// Request payloads bound by the controllers.

type CreatePaymentIntentRequest struct {
	Amount      int64  `json:"amount" binding:"required"`
	Currency    string `json:"currency"`
	PaymentType string `json:"paymentType"`
	PlanID      string `json:"planId"`
}

type CreateSubscriptionRequest struct {
	PriceID         string `json:"priceId" binding:"required"`
	PaymentMethodID string `json:"paymentMethodId"`
}

type UpdateSubscriptionRequest struct {
	Action string `json:"action" binding:"required"`
}

type SignupRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LogWorkoutRequest struct {
	WorkoutType    string     `json:"workoutType" binding:"required"`
	Duration       int        `json:"duration" binding:"required"`
	Intensity      string     `json:"intensity"`
	Exercises      []Exercise `json:"exercises"`
	Notes          string     `json:"notes"`
	CaloriesBurned int        `json:"caloriesBurned"`
	Date           *time.Time `json:"date"`
}

type UpdateMeasurementsRequest struct {
	Weight     *float64 `json:"weight"`
	BodyFat    *float64 `json:"bodyFat"`
	MuscleMass *float64 `json:"muscleMass"`
}

type UpdateStrengthRequest struct {
	Exercise string   `json:"exercise" binding:"required"`
	Current  *float64 `json:"current"`
	Goal     *float64 `json:"goal"`
}

type UpdateMetricsRequest struct {
	Metrics map[string]float64 `json:"metrics" binding:"required"`
}

type AddAchievementRequest struct {
	Title       string `json:"title" binding:"required"`
	Type        string `json:"type" binding:"required"`
	Description string `json:"description"`
}
