package rules

import (
	"sort"

	"github.com/ppiankov/supplematch/internal/model"
)

// FieldID names one enumerated snapshot field in dotted form, e.g. "daily.sleep_hours"
type FieldID string

// Data-source tags attached to factors
const (
	SourceProfile      = "profile"
	SourceFitness      = "fitness_profile"
	SourceLifestyle    = "lifestyle"
	SourceHealth       = "health_profile"
	SourceDaily        = "daily_checkins"
	SourceNutrition    = "nutrition_logs"
	SourceGoals        = "goals"
	SourceIntolerances = "intolerances"
)

// Field is a typed accessor for one snapshot field
type Field struct {
	ID     FieldID
	Kind   Kind
	Source string
	get    func(*model.AggregatedUserData) Value
}

var registry = map[FieldID]Field{}

func register(id FieldID, kind Kind, source string, get func(*model.AggregatedUserData) Value) {
	registry[id] = Field{ID: id, Kind: kind, Source: source, get: get}
}

func init() {
	// profile
	register("profile.age", KindNumber, SourceProfile, func(d *model.AggregatedUserData) Value { return intValue(d.Profile.Age) })
	register("profile.gender", KindString, SourceProfile, func(d *model.AggregatedUserData) Value { return strValue(d.Profile.Gender) })
	register("profile.height_cm", KindNumber, SourceProfile, func(d *model.AggregatedUserData) Value { return numValue(d.Profile.HeightCm) })
	register("profile.weight_kg", KindNumber, SourceProfile, func(d *model.AggregatedUserData) Value { return numValue(d.Profile.WeightKg) })
	register("profile.activity_level", KindString, SourceProfile, func(d *model.AggregatedUserData) Value { return strValue(d.Profile.ActivityLevel) })

	// fitness
	register("fitness.primary_goal", KindString, SourceFitness, func(d *model.AggregatedUserData) Value { return strValue(d.Fitness.PrimaryGoal) })
	register("fitness.experience_level", KindString, SourceFitness, func(d *model.AggregatedUserData) Value { return strValue(d.Fitness.ExperienceLevel) })
	register("fitness.weekly_availability", KindNumber, SourceFitness, func(d *model.AggregatedUserData) Value { return intValue(d.Fitness.WeeklyAvailability) })
	register("fitness.training_types", KindList, SourceFitness, func(d *model.AggregatedUserData) Value { return listValue(d.Fitness.TrainingTypes) })
	register("fitness.session_minutes", KindNumber, SourceFitness, func(d *model.AggregatedUserData) Value { return intValue(d.Fitness.SessionMinutes) })

	// lifestyle
	register("lifestyle.sleep_hours", KindNumber, SourceLifestyle, func(d *model.AggregatedUserData) Value { return numValue(d.Lifestyle.SleepHours) })
	register("lifestyle.stress_level", KindNumber, SourceLifestyle, func(d *model.AggregatedUserData) Value { return intValue(d.Lifestyle.StressLevel) })
	register("lifestyle.diet_type", KindString, SourceLifestyle, func(d *model.AggregatedUserData) Value { return strValue(d.Lifestyle.DietType) })
	register("lifestyle.alcohol_frequency", KindString, SourceLifestyle, func(d *model.AggregatedUserData) Value { return strValue(d.Lifestyle.AlcoholFrequency) })
	register("lifestyle.smoking_status", KindString, SourceLifestyle, func(d *model.AggregatedUserData) Value { return strValue(d.Lifestyle.SmokingStatus) })
	register("lifestyle.caffeine_intake", KindString, SourceLifestyle, func(d *model.AggregatedUserData) Value { return strValue(d.Lifestyle.CaffeineIntake) })

	// extended health profile
	register("health.medical_conditions", KindList, SourceHealth, func(d *model.AggregatedUserData) Value { return listValue(d.Health.MedicalConditions) })
	register("health.medications", KindList, SourceHealth, func(d *model.AggregatedUserData) Value { return listValue(d.Health.Medications) })
	register("health.dietary_restrictions", KindList, SourceHealth, func(d *model.AggregatedUserData) Value { return listValue(d.Health.DietaryRestrictions) })
	register("health.intolerances", KindRecords, SourceHealth, func(d *model.AggregatedUserData) Value { return intoleranceValue(d.Health.Intolerances) })
	register("health.vitamin_d_level", KindNumber, SourceHealth, func(d *model.AggregatedUserData) Value { return numValue(d.Health.VitaminDLevel) })
	register("health.ferritin_level", KindNumber, SourceHealth, func(d *model.AggregatedUserData) Value { return numValue(d.Health.FerritinLevel) })
	register("health.b12_level", KindNumber, SourceHealth, func(d *model.AggregatedUserData) Value { return numValue(d.Health.B12Level) })
	register("health.pregnancy_status", KindString, SourceHealth, func(d *model.AggregatedUserData) Value { return strValue(d.Health.PregnancyStatus) })

	// daily rolling averages
	register("daily.data_points", KindNumber, SourceDaily, func(d *model.AggregatedUserData) Value { return Value{Kind: KindNumber, Num: float64(d.Daily.DataPoints)} })
	register("daily.sleep_hours", KindNumber, SourceDaily, func(d *model.AggregatedUserData) Value { return numValue(d.Daily.SleepHours) })
	register("daily.sleep_quality", KindNumber, SourceDaily, func(d *model.AggregatedUserData) Value { return numValue(d.Daily.SleepQuality) })
	register("daily.energy_level", KindNumber, SourceDaily, func(d *model.AggregatedUserData) Value { return numValue(d.Daily.EnergyLevel) })
	register("daily.stress_level", KindNumber, SourceDaily, func(d *model.AggregatedUserData) Value { return numValue(d.Daily.StressLevel) })
	register("daily.mood", KindNumber, SourceDaily, func(d *model.AggregatedUserData) Value { return numValue(d.Daily.Mood) })
	register("daily.soreness", KindNumber, SourceDaily, func(d *model.AggregatedUserData) Value { return numValue(d.Daily.Soreness) })
	register("daily.water_liters", KindNumber, SourceDaily, func(d *model.AggregatedUserData) Value { return numValue(d.Daily.WaterLiters) })
	register("daily.steps", KindNumber, SourceDaily, func(d *model.AggregatedUserData) Value { return numValue(d.Daily.Steps) })

	// nutrition rolling averages
	register("nutrition.data_points", KindNumber, SourceNutrition, func(d *model.AggregatedUserData) Value { return Value{Kind: KindNumber, Num: float64(d.Nutrition.DataPoints)} })
	register("nutrition.calories", KindNumber, SourceNutrition, func(d *model.AggregatedUserData) Value { return numValue(d.Nutrition.Calories) })
	register("nutrition.protein_g", KindNumber, SourceNutrition, func(d *model.AggregatedUserData) Value { return numValue(d.Nutrition.ProteinG) })
	register("nutrition.carbs_g", KindNumber, SourceNutrition, func(d *model.AggregatedUserData) Value { return numValue(d.Nutrition.CarbsG) })
	register("nutrition.fat_g", KindNumber, SourceNutrition, func(d *model.AggregatedUserData) Value { return numValue(d.Nutrition.FatG) })
	register("nutrition.fiber_g", KindNumber, SourceNutrition, func(d *model.AggregatedUserData) Value { return numValue(d.Nutrition.FiberG) })
	register("nutrition.sugar_g", KindNumber, SourceNutrition, func(d *model.AggregatedUserData) Value { return numValue(d.Nutrition.SugarG) })

	// goals
	register("goals.current_goal", KindString, SourceGoals, func(d *model.AggregatedUserData) Value { return strValue(d.Goals.CurrentGoal) })
	register("goals.phase", KindString, SourceGoals, func(d *model.AggregatedUserData) Value { return strValue(d.Goals.Phase) })
	register("goals.target_weight_kg", KindNumber, SourceGoals, func(d *model.AggregatedUserData) Value { return numValue(d.Goals.TargetWeightKg) })
}

// LookupField returns the accessor registered for id
func LookupField(id FieldID) (Field, bool) {
	f, ok := registry[id]
	return f, ok
}

// Fields returns every registered field id in sorted order
func Fields() []FieldID {
	ids := make([]FieldID, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Resolve reads a field from the snapshot. Unknown fields resolve as missing.
func Resolve(snapshot *model.AggregatedUserData, id FieldID) Value {
	f, ok := registry[id]
	if !ok || snapshot == nil {
		return Value{}
	}
	return f.get(snapshot)
}

func numValue(p *float64) Value {
	if p == nil {
		return Value{}
	}
	return Value{Kind: KindNumber, Num: *p}
}

func intValue(p *int) Value {
	if p == nil {
		return Value{}
	}
	return Value{Kind: KindNumber, Num: float64(*p)}
}

func strValue(p *string) Value {
	if p == nil {
		return Value{}
	}
	return Value{Kind: KindString, Str: *p}
}

func listValue(items []string) Value {
	if items == nil {
		return Value{}
	}
	return Value{Kind: KindList, List: items}
}

func intoleranceValue(items []model.Intolerance) Value {
	if items == nil {
		return Value{}
	}
	records := make([]Record, 0, len(items))
	for _, it := range items {
		records = append(records, Record{
			"name":     it.Name,
			"category": it.Category,
			"severity": string(it.Severity),
		})
	}
	return Value{Kind: KindRecords, Records: records}
}
