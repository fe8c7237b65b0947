package completeness

import (
	"fmt"
	"math"

	"github.com/ppiankov/supplematch/internal/model"
	"github.com/ppiankov/supplematch/internal/rules"
)

// MinDataPoints is the number of days a rolling average needs before it counts
const MinDataPoints = 3

// Category weights in the overall blend; they sum to 100
const (
	WeightBasicProfile      = 20
	WeightFitnessProfile    = 25
	WeightLifestyle         = 15
	WeightHealthProfile     = 15
	WeightDailyTracking     = 15
	WeightNutritionTracking = 10
)

type category struct {
	weight int
	fields []rules.FieldID
	// dataPoints gates rolling categories; nil for plain profile categories
	dataPoints func(*model.AggregatedUserData) int
}

var (
	basicProfile = category{
		weight: WeightBasicProfile,
		fields: []rules.FieldID{"profile.age", "profile.gender", "profile.height_cm", "profile.weight_kg", "profile.activity_level"},
	}
	fitnessProfile = category{
		weight: WeightFitnessProfile,
		fields: []rules.FieldID{"fitness.primary_goal", "fitness.experience_level", "fitness.weekly_availability", "fitness.training_types", "fitness.session_minutes"},
	}
	lifestyle = category{
		weight: WeightLifestyle,
		fields: []rules.FieldID{"lifestyle.sleep_hours", "lifestyle.stress_level", "lifestyle.diet_type", "lifestyle.alcohol_frequency", "lifestyle.smoking_status", "lifestyle.caffeine_intake"},
	}
	healthProfile = category{
		weight: WeightHealthProfile,
		fields: []rules.FieldID{"health.medical_conditions", "health.medications", "health.dietary_restrictions", "health.intolerances", "health.pregnancy_status"},
	}
	dailyTracking = category{
		weight:     WeightDailyTracking,
		fields:     []rules.FieldID{"daily.sleep_hours", "daily.sleep_quality", "daily.energy_level", "daily.stress_level", "daily.mood", "daily.soreness", "daily.water_liters", "daily.steps"},
		dataPoints: func(d *model.AggregatedUserData) int { return d.Daily.DataPoints },
	}
	nutritionTracking = category{
		weight:     WeightNutritionTracking,
		fields:     []rules.FieldID{"nutrition.calories", "nutrition.protein_g", "nutrition.carbs_g", "nutrition.fat_g", "nutrition.fiber_g", "nutrition.sugar_g"},
		dataPoints: func(d *model.AggregatedUserData) int { return d.Nutrition.DataPoints },
	}
)

// critical fields are reported by label when missing
var critical = []struct {
	field rules.FieldID
	label string
}{
	{"profile.age", "age"},
	{"profile.weight_kg", "weight"},
	{"profile.gender", "gender"},
	{"fitness.primary_goal", "primary goal"},
	{"fitness.weekly_availability", "weekly training availability"},
}

// Analyze scores how complete the snapshot is. A nil snapshot is treated as empty.
func Analyze(snapshot *model.AggregatedUserData) model.DataCompleteness {
	if snapshot == nil {
		snapshot = &model.AggregatedUserData{}
	}

	dc := model.DataCompleteness{
		BasicProfile:      basicProfile.score(snapshot),
		FitnessProfile:    fitnessProfile.score(snapshot),
		Lifestyle:         lifestyle.score(snapshot),
		HealthProfile:     healthProfile.score(snapshot),
		DailyTracking:     dailyTracking.score(snapshot),
		NutritionTracking: nutritionTracking.score(snapshot),
		MissingCritical:   []string{},
		MissingOptional:   []string{},
	}
	dc.OverallPercentage = Overall(dc)

	for _, c := range critical {
		if !rules.Resolve(snapshot, c.field).Present() {
			dc.MissingCritical = append(dc.MissingCritical, c.label)
		}
	}

	if n := snapshot.Daily.DataPoints; n < MinDataPoints {
		dc.MissingOptional = append(dc.MissingOptional,
			fmt.Sprintf("daily check-ins: %d of %d days needed", n, MinDataPoints))
	}
	if n := snapshot.Nutrition.DataPoints; n < MinDataPoints {
		dc.MissingOptional = append(dc.MissingOptional,
			fmt.Sprintf("nutrition logs: %d of %d days needed", n, MinDataPoints))
	}
	if hp := dc.HealthProfile; hp.Filled < hp.Total {
		dc.MissingOptional = append(dc.MissingOptional,
			fmt.Sprintf("health profile incomplete: %d of %d fields", hp.Filled, hp.Total))
	}
	if !snapshot.Health.HasLabValues() {
		dc.MissingOptional = append(dc.MissingOptional, "no lab values (vitamin D, ferritin, B12)")
	}

	return dc
}

// Overall blends the six category percentages by their weights
func Overall(dc model.DataCompleteness) int {
	parts := []struct {
		pct    int
		weight int
	}{
		{dc.BasicProfile.Percentage, WeightBasicProfile},
		{dc.FitnessProfile.Percentage, WeightFitnessProfile},
		{dc.Lifestyle.Percentage, WeightLifestyle},
		{dc.HealthProfile.Percentage, WeightHealthProfile},
		{dc.DailyTracking.Percentage, WeightDailyTracking},
		{dc.NutritionTracking.Percentage, WeightNutritionTracking},
	}

	sum, weights := 0, 0
	for _, p := range parts {
		sum += p.pct * p.weight
		weights += p.weight
	}
	return int(math.Floor(float64(sum)/float64(weights) + 0.5))
}

func (c category) score(snapshot *model.AggregatedUserData) model.CategoryScore {
	cs := model.CategoryScore{Total: len(c.fields)}
	if c.dataPoints != nil && c.dataPoints(snapshot) < MinDataPoints {
		return cs
	}
	for _, id := range c.fields {
		if rules.Resolve(snapshot, id).Present() {
			cs.Filled++
		}
	}
	cs.Percentage = int(math.Floor(float64(cs.Filled)/float64(cs.Total)*100 + 0.5))
	return cs
}
