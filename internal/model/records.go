package model

import "time"

// ProfileRecord is a stored user profile as returned by a data source
type ProfileRecord struct {
	UserID    string         `json:"user_id"`
	Basic     BasicProfile   `json:"basic"`
	Fitness   FitnessProfile `json:"fitness"`
	Lifestyle Lifestyle      `json:"lifestyle"`
	Health    HealthProfile  `json:"health"`
	Goals     GoalState      `json:"goals"`
	UpdatedAt *time.Time     `json:"updated_at,omitempty"`
}

// Checkin is one daily check-in entry
type Checkin struct {
	Date         time.Time `json:"date" mapstructure:"date"`
	SleepHours   *float64  `json:"sleep_hours,omitempty" mapstructure:"sleep_hours"`
	SleepQuality *float64  `json:"sleep_quality,omitempty" mapstructure:"sleep_quality"`
	EnergyLevel  *float64  `json:"energy_level,omitempty" mapstructure:"energy_level"`
	StressLevel  *float64  `json:"stress_level,omitempty" mapstructure:"stress_level"`
	Mood         *float64  `json:"mood,omitempty" mapstructure:"mood"`
	Soreness     *float64  `json:"soreness,omitempty" mapstructure:"soreness"`
	WaterLiters  *float64  `json:"water_liters,omitempty" mapstructure:"water_liters"`
	Steps        *float64  `json:"steps,omitempty" mapstructure:"steps"`
}

// NutritionLog is one logged meal or daily nutrition total
type NutritionLog struct {
	Date     time.Time `json:"date" mapstructure:"date"`
	Calories *float64  `json:"calories,omitempty" mapstructure:"calories"`
	ProteinG *float64  `json:"protein_g,omitempty" mapstructure:"protein_g"`
	CarbsG   *float64  `json:"carbs_g,omitempty" mapstructure:"carbs_g"`
	FatG     *float64  `json:"fat_g,omitempty" mapstructure:"fat_g"`
	FiberG   *float64  `json:"fiber_g,omitempty" mapstructure:"fiber_g"`
	SugarG   *float64  `json:"sugar_g,omitempty" mapstructure:"sugar_g"`
}
