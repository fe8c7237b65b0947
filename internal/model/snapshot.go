package model

import "time"

// AggregatedUserData is the per-run snapshot the engine scores against.
// It is built by the aggregator and must be treated as read-only by everything else.
// A nil pointer or nil slice means the value was never provided.
type AggregatedUserData struct {
	UserID    string            `json:"user_id"`
	Profile   BasicProfile      `json:"profile"`
	Fitness   FitnessProfile    `json:"fitness"`
	Lifestyle Lifestyle         `json:"lifestyle"`
	Health    HealthProfile     `json:"health"`
	Daily     DailyAverages     `json:"daily"`
	Nutrition NutritionAverages `json:"nutrition"`
	Goals     GoalState         `json:"goals"`
	Freshness Freshness         `json:"freshness"`
}

// BasicProfile holds core profile attributes
type BasicProfile struct {
	Age           *int     `json:"age,omitempty"`
	Gender        *string  `json:"gender,omitempty"`
	HeightCm      *float64 `json:"height_cm,omitempty"`
	WeightKg      *float64 `json:"weight_kg,omitempty"`
	ActivityLevel *string  `json:"activity_level,omitempty"` // sedentary, light, moderate, active, very_active
}

// FitnessProfile holds training-related profile flags
type FitnessProfile struct {
	PrimaryGoal        *string  `json:"primary_goal,omitempty"`       // muscle_gain, fat_loss, endurance, general_health
	ExperienceLevel    *string  `json:"experience_level,omitempty"`   // beginner, intermediate, advanced
	WeeklyAvailability *int     `json:"weekly_availability,omitempty"` // training days per week
	TrainingTypes      []string `json:"training_types"`                // strength, cardio, hiit, yoga...
	SessionMinutes     *int     `json:"session_minutes,omitempty"`
}

// Lifestyle holds self-reported lifestyle metrics
type Lifestyle struct {
	SleepHours       *float64 `json:"sleep_hours,omitempty"`
	StressLevel      *int     `json:"stress_level,omitempty"` // 1-10
	DietType         *string  `json:"diet_type,omitempty"`    // omnivore, vegetarian, vegan, keto...
	AlcoholFrequency *string  `json:"alcohol_frequency,omitempty"`
	SmokingStatus    *string  `json:"smoking_status,omitempty"`
	CaffeineIntake   *string  `json:"caffeine_intake,omitempty"`
}

// HealthProfile is the extended, domain-specific profile
type HealthProfile struct {
	MedicalConditions   []string      `json:"medical_conditions"` // nil means never answered, empty means none
	Medications         []string      `json:"medications"`
	DietaryRestrictions []string      `json:"dietary_restrictions"`
	Intolerances        []Intolerance `json:"intolerances"`
	VitaminDLevel       *float64      `json:"vitamin_d_level,omitempty"` // ng/mL
	FerritinLevel       *float64      `json:"ferritin_level,omitempty"`  // ng/mL
	B12Level            *float64      `json:"b12_level,omitempty"`       // pg/mL
	PregnancyStatus     *string       `json:"pregnancy_status,omitempty"`
}

// HasLabValues reports whether any lab-style value is present
func (h HealthProfile) HasLabValues() bool {
	return h.VitaminDLevel != nil || h.FerritinLevel != nil || h.B12Level != nil
}

// Intolerance is a single intolerance or allergy record
type Intolerance struct {
	Name     string   `json:"name"`
	Category string   `json:"category,omitempty"` // food, substance, medication
	Severity Severity `json:"severity"`
}

// Severity classifies how serious an intolerance is
type Severity string

const (
	SeverityMild            Severity = "mild"
	SeverityModerate        Severity = "moderate"
	SeveritySevere          Severity = "severe"
	SeverityLifeThreatening Severity = "life_threatening"
)

// Vetoes reports whether the severity is serious enough to exclude a candidate outright
func (s Severity) Vetoes() bool {
	return s == SeveritySevere || s == SeverityLifeThreatening
}

// Valid reports whether s is one of the known severities
func (s Severity) Valid() bool {
	switch s {
	case SeverityMild, SeverityModerate, SeveritySevere, SeverityLifeThreatening:
		return true
	}
	return false
}

// DailyAverages are rolling averages over daily check-ins
type DailyAverages struct {
	DataPoints   int      `json:"data_points"`
	SleepHours   *float64 `json:"sleep_hours,omitempty"`
	SleepQuality *float64 `json:"sleep_quality,omitempty"` // 1-10
	EnergyLevel  *float64 `json:"energy_level,omitempty"`  // 1-10
	StressLevel  *float64 `json:"stress_level,omitempty"`  // 1-10
	Mood         *float64 `json:"mood,omitempty"`          // 1-10
	Soreness     *float64 `json:"soreness,omitempty"`      // 1-10
	WaterLiters  *float64 `json:"water_liters,omitempty"`
	Steps        *float64 `json:"steps,omitempty"`
}

// NutritionAverages are rolling averages over nutrition logs
type NutritionAverages struct {
	DataPoints int      `json:"data_points"`
	Calories   *float64 `json:"calories,omitempty"`
	ProteinG   *float64 `json:"protein_g,omitempty"`
	CarbsG     *float64 `json:"carbs_g,omitempty"`
	FatG       *float64 `json:"fat_g,omitempty"`
	FiberG     *float64 `json:"fiber_g,omitempty"`
	SugarG     *float64 `json:"sugar_g,omitempty"`
}

// GoalState describes the user's current goal and training phase
type GoalState struct {
	CurrentGoal    *string  `json:"current_goal,omitempty"`
	Phase          *string  `json:"phase,omitempty"` // bulk, cut, maintenance, recovery
	TargetWeightKg *float64 `json:"target_weight_kg,omitempty"`
}

// Freshness carries source timestamps; metadata only, never scored
type Freshness struct {
	ProfileUpdatedAt *time.Time `json:"profile_updated_at,omitempty"`
	LastCheckinAt    *time.Time `json:"last_checkin_at,omitempty"`
	LastNutritionAt  *time.Time `json:"last_nutrition_at,omitempty"`
	AggregatedAt     time.Time  `json:"aggregated_at"`
}
