package fingerprint

import (
	"testing"
	"time"

	"github.com/ppiankov/supplematch/internal/model"
)

func ptr[T any](v T) *T { return &v }

func testSnapshot() *model.AggregatedUserData {
	return &model.AggregatedUserData{
		UserID: "u1",
		Profile: model.BasicProfile{
			Age:      ptr(41),
			Gender:   ptr("male"),
			WeightKg: ptr(80.0),
		},
		Fitness: model.FitnessProfile{
			PrimaryGoal:   ptr("strength"),
			TrainingTypes: []string{"strength"},
		},
		Health: model.HealthProfile{
			Intolerances: []model.Intolerance{{Name: "Fish", Severity: model.SeveritySevere}},
		},
		Daily: model.DailyAverages{DataPoints: 5, SleepHours: ptr(6.5)},
		Goals: model.GoalState{Phase: ptr("cut")},
	}
}

func TestCompute_Stable(t *testing.T) {
	a, err := Compute(testSnapshot())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := Compute(testSnapshot())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a != b {
		t.Errorf("expected identical fingerprints, got %s and %s", a, b)
	}
	if len(a) != 16 {
		t.Errorf("expected 16 hex chars, got %q", a)
	}
}

func TestCompute_IgnoresMetadata(t *testing.T) {
	base, _ := Compute(testSnapshot())

	snap := testSnapshot()
	snap.UserID = "someone-else"
	now := time.Now()
	snap.Freshness = model.Freshness{LastCheckinAt: &now, AggregatedAt: now}

	got, _ := Compute(snap)
	if got != base {
		t.Errorf("expected user id and freshness to be ignored")
	}
}

func TestCompute_ChangesWithScoredFields(t *testing.T) {
	base, _ := Compute(testSnapshot())

	mutations := map[string]func(*model.AggregatedUserData){
		"age":                func(d *model.AggregatedUserData) { d.Profile.Age = ptr(42) },
		"weight":             func(d *model.AggregatedUserData) { d.Profile.WeightKg = ptr(80.5) },
		"training types":     func(d *model.AggregatedUserData) { d.Fitness.TrainingTypes = append(d.Fitness.TrainingTypes, "yoga") },
		"intolerance":        func(d *model.AggregatedUserData) { d.Health.Intolerances[0].Severity = model.SeverityMild },
		"empty vs nil list":  func(d *model.AggregatedUserData) { d.Health.Medications = []string{} },
		"daily data points":  func(d *model.AggregatedUserData) { d.Daily.DataPoints = 6 },
		"daily average":      func(d *model.AggregatedUserData) { d.Daily.SleepHours = ptr(6.6) },
		"nutrition average":  func(d *model.AggregatedUserData) { d.Nutrition.ProteinG = ptr(100.0) },
		"goal phase":         func(d *model.AggregatedUserData) { d.Goals.Phase = ptr("bulk") },
		"lifestyle diet":     func(d *model.AggregatedUserData) { d.Lifestyle.DietType = ptr("vegan") },
		"lab value appeared": func(d *model.AggregatedUserData) { d.Health.B12Level = ptr(250.0) },
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			snap := testSnapshot()
			mutate(snap)
			got, err := Compute(snap)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got == base {
				t.Errorf("expected fingerprint to change")
			}
		})
	}
}

func TestCompute_NilSnapshot(t *testing.T) {
	if _, err := Compute(nil); err == nil {
		t.Error("expected error for nil snapshot")
	}
}
