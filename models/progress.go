package models

import (
	"time"

	"github.com/google/uuid"
)

// Tracked strength lifts and fitness metric names.
var (
	StrengthExercises = []string{"bench", "squat", "deadlift", "ohp"}
	FitnessMetricSet  = []string{"strength", "endurance", "flexibility", "balance", "power", "speed"}
	AchievementTypes  = []string{"milestone", "consistency", "body", "volume"}
)

type BodyMeasurement struct {
	Date       time.Time `json:"date"`
	Weight     *float64  `json:"weight,omitempty"`
	BodyFat    *float64  `json:"bodyFat,omitempty"`
	MuscleMass *float64  `json:"muscleMass,omitempty"`
}

type StrengthStat struct {
	Current float64 `json:"current"`
	Best    float64 `json:"best"`
	Goal    float64 `json:"goal"`
}

type StrengthProgress struct {
	Bench    StrengthStat `json:"bench"`
	Squat    StrengthStat `json:"squat"`
	Deadlift StrengthStat `json:"deadlift"`
	OHP      StrengthStat `json:"ohp"`
}

type MetricValue struct {
	Current float64 `json:"current"`
	Goal    float64 `json:"goal"`
}

type FitnessMetricEntry struct {
	Date    time.Time              `json:"date"`
	Metrics map[string]MetricValue `json:"metrics"`
}

type Achievement struct {
	Title       string    `json:"title"`
	Type        string    `json:"type"`
	Description string    `json:"description,omitempty"`
	Date        time.Time `json:"date"`
}

// Progress holds one record per user with their measurement history,
// strength PRs, fitness metrics and achievements. Measurement and metric
// histories are capped at the 12 most recent entries.
type Progress struct {
	ID               uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID           uuid.UUID            `gorm:"type:uuid;uniqueIndex;not null" json:"userId"`
	BodyMeasurements []BodyMeasurement    `gorm:"type:jsonb;serializer:json" json:"bodyMeasurements"`
	Strength         StrengthProgress     `gorm:"type:jsonb;serializer:json" json:"strengthProgress"`
	FitnessMetrics   []FitnessMetricEntry `gorm:"type:jsonb;serializer:json" json:"fitnessMetrics"`
	Achievements     []Achievement        `gorm:"type:jsonb;serializer:json" json:"achievements"`
	CreatedAt        time.Time            `json:"createdAt"`
	UpdatedAt        time.Time            `json:"updatedAt"`
}

// StrengthViewStat adds the percent-to-goal figure the client renders.
type StrengthViewStat struct {
	Current       float64 `json:"current"`
	Best          float64 `json:"best"`
	Goal          float64 `json:"goal"`
	PercentToGoal float64 `json:"percentToGoal"`
}

// ProgressView is the timeframe-filtered shape returned to the client.
type ProgressView struct {
	BodyMeasurements []BodyMeasurement           `json:"bodyMeasurements"`
	Strength         map[string]StrengthViewStat `json:"strengthProgress"`
	FitnessMetrics   []FitnessMetricEntry        `json:"fitnessMetrics"`
	Achievements     []Achievement               `json:"achievements"`
}

// Stat returns the strength entry for a tracked lift name.
func (s *StrengthProgress) Stat(exercise string) *StrengthStat {
	switch exercise {
	case "bench":
		return &s.Bench
	case "squat":
		return &s.Squat
	case "deadlift":
		return &s.Deadlift
	case "ohp":
		return &s.OHP
	}
	return nil
}
