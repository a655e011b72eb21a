package models

import (
	"time"

	"github.com/google/uuid"
)

// Workout types and intensities accepted by the tracker.
var (
	WorkoutTypes       = []string{"Strength", "Cardio", "Flexibility", "HIIT", "Other"}
	WorkoutIntensities = []string{"Low", "Medium", "High", "Extreme"}
)

// IntensityCalorieRate maps intensity to calories burned per minute, used
// when a workout is logged without an explicit calorie count.
var IntensityCalorieRate = map[string]int{
	"Low":     3,
	"Medium":  5,
	"High":    8,
	"Extreme": 12,
}

type Exercise struct {
	Name   string  `json:"name" binding:"required"`
	Sets   int     `json:"sets"`
	Reps   int     `json:"reps"`
	Weight float64 `json:"weight"`
}

type Workout struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID         uuid.UUID  `gorm:"type:uuid;index;not null" json:"userId"`
	WorkoutType    string     `gorm:"type:varchar(20);not null" json:"workoutType"`
	Duration       int        `gorm:"not null" json:"duration"` // minutes
	Intensity      string     `gorm:"type:varchar(20);default:'Medium'" json:"intensity"`
	Exercises      []Exercise `gorm:"type:jsonb;serializer:json" json:"exercises"`
	Notes          string     `json:"notes,omitempty"`
	CaloriesBurned int        `json:"caloriesBurned"`
	Date           time.Time  `gorm:"index" json:"date"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// EstimatedCalories derives a calorie count from duration and intensity.
func (w *Workout) EstimatedCalories() int {
	rate, ok := IntensityCalorieRate[w.Intensity]
	if !ok {
		rate = IntensityCalorieRate["Medium"]
	}
	return w.Duration * rate
}

// WorkoutAnalytics aggregates a user's workouts over a period.
type WorkoutAnalytics struct {
	TotalWorkouts         int            `json:"totalWorkouts"`
	TotalCaloriesBurned   int            `json:"totalCaloriesBurned"`
	WorkoutTypeBreakdown  map[string]int `json:"workoutTypeBreakdown"`
	IntensityDistribution map[string]int `json:"intensityDistribution"`
	ProgressTrends        ProgressTrends `json:"progressTrends"`
}

type ProgressTrends struct {
	DurationTrend []int `json:"durationTrend"`
	CaloriesTrend []int `json:"caloriesTrend"`
}

// WorkoutRecommendations suggests what to train next.
type WorkoutRecommendations struct {
	SuggestedWorkoutTypes []string `json:"suggestedWorkoutTypes"`
	IntensityAdjustment   string   `json:"intensityAdjustment"`
}

// MonthlyProgress summarizes the last 30 days of training.
type MonthlyProgress struct {
	TotalWorkouts       int `json:"totalWorkouts"`
	TotalCaloriesBurned int `json:"totalCaloriesBurned"`
	AvgWorkoutDuration  int `json:"avgWorkoutDuration"`
}
