package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const fixtureJSON = `{
  "profile": {
    "basic": {"age": 34, "gender": "female", "weight_kg": 61.5},
    "fitness": {"primary_goal": "endurance", "weekly_availability": 4, "training_types": ["cardio"]},
    "lifestyle": {"diet_type": "vegan"},
    "health": {
      "medical_conditions": [],
      "intolerances": [{"name": "Peanut", "category": "food", "severity": "life_threatening"}]
    },
    "goals": {"phase": "maintenance"},
    "updated_at": "2026-02-20T10:00:00Z"
  },
  "checkins": [
    {"date": "2026-02-01T08:00:00Z", "sleep_hours": 6},
    {"date": "2026-02-25T08:00:00Z", "sleep_hours": 7.5, "mood": 6}
  ],
  "nutrition_logs": [
    {"date": "2026-02-26T12:00:00Z", "calories": 650, "protein_g": 30}
  ]
}`

func writeFixture(t *testing.T, dir, user, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, user+".json"), []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestFileSource_Profile(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "u1", fixtureJSON)
	src := NewFileSource(dir)

	p, err := src.Profile(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.UserID != "u1" {
		t.Errorf("expected user id to default to u1, got %q", p.UserID)
	}
	if p.Basic.Age == nil || *p.Basic.Age != 34 {
		t.Errorf("unexpected age: %v", p.Basic.Age)
	}
	if p.Health.MedicalConditions == nil || len(p.Health.MedicalConditions) != 0 {
		t.Errorf("expected explicitly empty conditions, got %#v", p.Health.MedicalConditions)
	}
	if p.Health.Medications != nil {
		t.Errorf("expected unanswered medications to stay nil")
	}
	if len(p.Health.Intolerances) != 1 || !p.Health.Intolerances[0].Severity.Vetoes() {
		t.Errorf("unexpected intolerances: %+v", p.Health.Intolerances)
	}
	if p.UpdatedAt == nil {
		t.Error("expected updated_at")
	}
}

func TestFileSource_SinceFilter(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "u1", fixtureJSON)
	src := NewFileSource(dir)
	since := time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC)

	checkins, err := src.Checkins(context.Background(), "u1", since)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(checkins) != 1 || *checkins[0].SleepHours != 7.5 {
		t.Errorf("expected only the recent check-in, got %+v", checkins)
	}

	logs, err := src.NutritionLogs(context.Background(), "u1", since)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(logs) != 1 {
		t.Errorf("expected 1 nutrition log, got %d", len(logs))
	}
}

func TestFileSource_Errors(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "broken", "{not json")
	writeFixture(t, dir, "noprofile", `{"checkins": []}`)
	src := NewFileSource(dir)
	ctx := context.Background()

	if _, err := src.Profile(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := src.Profile(ctx, "noprofile"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for fixture without profile, got %v", err)
	}
	if _, err := src.Profile(ctx, "broken"); err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("expected decode error, got %v", err)
	}
	if _, err := src.Profile(ctx, "../etc/passwd"); err == nil {
		t.Error("expected path traversal to be rejected")
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := src.Checkins(cancelled, "noprofile", time.Time{}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
