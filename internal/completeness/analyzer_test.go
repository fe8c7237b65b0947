package completeness

import (
	"strings"
	"testing"

	"github.com/ppiankov/supplematch/internal/model"
)

func ptr[T any](v T) *T { return &v }

func fullSnapshot() *model.AggregatedUserData {
	return &model.AggregatedUserData{
		UserID: "u1",
		Profile: model.BasicProfile{
			Age: ptr(30), Gender: ptr("female"), HeightCm: ptr(170.0), WeightKg: ptr(65.0), ActivityLevel: ptr("active"),
		},
		Fitness: model.FitnessProfile{
			PrimaryGoal: ptr("endurance"), ExperienceLevel: ptr("advanced"), WeeklyAvailability: ptr(5),
			TrainingTypes: []string{"cardio"}, SessionMinutes: ptr(60),
		},
		Lifestyle: model.Lifestyle{
			SleepHours: ptr(7.5), StressLevel: ptr(4), DietType: ptr("omnivore"),
			AlcoholFrequency: ptr("rarely"), SmokingStatus: ptr("never"), CaffeineIntake: ptr("moderate"),
		},
		Health: model.HealthProfile{
			MedicalConditions: []string{}, Medications: []string{}, DietaryRestrictions: []string{},
			Intolerances: []model.Intolerance{}, PregnancyStatus: ptr("not_pregnant"), VitaminDLevel: ptr(35.0),
		},
		Daily: model.DailyAverages{
			DataPoints: 10, SleepHours: ptr(7.0), SleepQuality: ptr(7.0), EnergyLevel: ptr(6.0), StressLevel: ptr(4.0),
			Mood: ptr(7.0), Soreness: ptr(3.0), WaterLiters: ptr(2.5), Steps: ptr(9000.0),
		},
		Nutrition: model.NutritionAverages{
			DataPoints: 7, Calories: ptr(2200.0), ProteinG: ptr(120.0), CarbsG: ptr(250.0),
			FatG: ptr(70.0), FiberG: ptr(30.0), SugarG: ptr(40.0),
		},
	}
}

func TestAnalyze_Complete(t *testing.T) {
	dc := Analyze(fullSnapshot())

	if dc.OverallPercentage != 100 {
		t.Errorf("expected 100%%, got %d", dc.OverallPercentage)
	}
	if len(dc.MissingCritical) != 0 {
		t.Errorf("unexpected missing critical: %v", dc.MissingCritical)
	}
	if len(dc.MissingOptional) != 0 {
		t.Errorf("unexpected missing optional: %v", dc.MissingOptional)
	}
}

func TestAnalyze_EmptyListsCountAsFilled(t *testing.T) {
	dc := Analyze(fullSnapshot())
	if dc.HealthProfile.Filled != dc.HealthProfile.Total {
		t.Errorf("expected explicitly empty lists to count, got %+v", dc.HealthProfile)
	}

	snap := fullSnapshot()
	snap.Health.Medications = nil
	dc = Analyze(snap)
	if dc.HealthProfile.Filled != dc.HealthProfile.Total-1 {
		t.Errorf("expected nil list to count as missing, got %+v", dc.HealthProfile)
	}
}

func TestAnalyze_RollingCategoriesNeedDataPoints(t *testing.T) {
	snap := fullSnapshot()
	snap.Daily.DataPoints = 2
	snap.Nutrition.DataPoints = 0

	dc := Analyze(snap)
	if dc.DailyTracking.Filled != 0 || dc.DailyTracking.Percentage != 0 {
		t.Errorf("expected daily tracking zeroed below threshold, got %+v", dc.DailyTracking)
	}
	if dc.NutritionTracking.Filled != 0 {
		t.Errorf("expected nutrition tracking zeroed, got %+v", dc.NutritionTracking)
	}
	if dc.DailyTracking.Total != 8 {
		t.Errorf("expected total to be kept, got %d", dc.DailyTracking.Total)
	}

	// 20 + 25 + 15 + 15 = 75 weighted points at 100%
	if dc.OverallPercentage != 75 {
		t.Errorf("expected 75, got %d", dc.OverallPercentage)
	}

	joined := strings.Join(dc.MissingOptional, "; ")
	if !strings.Contains(joined, "daily check-ins: 2 of 3") || !strings.Contains(joined, "nutrition logs: 0 of 3") {
		t.Errorf("expected data-point counts in missing optional, got %v", dc.MissingOptional)
	}

	snap.Daily.DataPoints = 3
	if dc := Analyze(snap); dc.DailyTracking.Percentage != 100 {
		t.Errorf("expected exactly 3 data points to be enough, got %+v", dc.DailyTracking)
	}
}

func TestAnalyze_MissingCritical(t *testing.T) {
	snap := fullSnapshot()
	snap.Profile.Age = nil
	snap.Fitness.WeeklyAvailability = nil

	dc := Analyze(snap)
	want := []string{"age", "weekly training availability"}
	if len(dc.MissingCritical) != len(want) {
		t.Fatalf("expected %v, got %v", want, dc.MissingCritical)
	}
	for i := range want {
		if dc.MissingCritical[i] != want[i] {
			t.Errorf("expected %q, got %q", want[i], dc.MissingCritical[i])
		}
	}
}

func TestAnalyze_EmptySnapshot(t *testing.T) {
	for _, snap := range []*model.AggregatedUserData{nil, {}} {
		dc := Analyze(snap)
		if dc.OverallPercentage != 0 {
			t.Errorf("expected 0, got %d", dc.OverallPercentage)
		}
		if len(dc.MissingCritical) != 5 {
			t.Errorf("expected 5 missing critical, got %v", dc.MissingCritical)
		}
		if len(dc.MissingOptional) != 4 {
			t.Errorf("expected 4 missing optional, got %v", dc.MissingOptional)
		}
	}
}

func TestAnalyze_CategoryRounding(t *testing.T) {
	snap := &model.AggregatedUserData{
		Lifestyle: model.Lifestyle{SleepHours: ptr(7.0)},
	}
	dc := Analyze(snap)
	// 1 of 6 = 16.67
	if dc.Lifestyle.Percentage != 17 {
		t.Errorf("expected 17, got %d", dc.Lifestyle.Percentage)
	}
}

func TestOverall_WeightedBlend(t *testing.T) {
	dc := model.DataCompleteness{
		BasicProfile:      model.CategoryScore{Percentage: 100},
		FitnessProfile:    model.CategoryScore{Percentage: 80},
		Lifestyle:         model.CategoryScore{Percentage: 50},
		HealthProfile:     model.CategoryScore{Percentage: 0},
		DailyTracking:     model.CategoryScore{Percentage: 33},
		NutritionTracking: model.CategoryScore{Percentage: 67},
	}
	// (2000 + 2000 + 750 + 0 + 495 + 670) / 100 = 59.15
	if got := Overall(dc); got != 59 {
		t.Errorf("expected 59, got %d", got)
	}
}
