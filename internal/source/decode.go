package source

import (
	"fmt"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/ppiankov/supplematch/internal/model"
)

// timeLayouts accepted for timestamp and date columns
var timeLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

// profileRow is the flat column layout of the profiles table
type profileRow struct {
	UserID        string   `mapstructure:"user_id"`
	Age           *int     `mapstructure:"age"`
	Gender        *string  `mapstructure:"gender"`
	HeightCm      *float64 `mapstructure:"height_cm"`
	WeightKg      *float64 `mapstructure:"weight_kg"`
	ActivityLevel *string  `mapstructure:"activity_level"`

	PrimaryGoal        *string  `mapstructure:"primary_goal"`
	ExperienceLevel    *string  `mapstructure:"experience_level"`
	WeeklyAvailability *int     `mapstructure:"weekly_availability"`
	TrainingTypes      []string `mapstructure:"training_types"`
	SessionMinutes     *int     `mapstructure:"session_minutes"`

	SleepHours       *float64 `mapstructure:"sleep_hours"`
	StressLevel      *int     `mapstructure:"stress_level"`
	DietType         *string  `mapstructure:"diet_type"`
	AlcoholFrequency *string  `mapstructure:"alcohol_frequency"`
	SmokingStatus    *string  `mapstructure:"smoking_status"`
	CaffeineIntake   *string  `mapstructure:"caffeine_intake"`

	MedicalConditions   []string         `mapstructure:"medical_conditions"`
	Medications         []string         `mapstructure:"medications"`
	DietaryRestrictions []string         `mapstructure:"dietary_restrictions"`
	Intolerances        []intoleranceRow `mapstructure:"intolerances"`
	VitaminDLevel       *float64         `mapstructure:"vitamin_d_level"`
	FerritinLevel       *float64         `mapstructure:"ferritin_level"`
	B12Level            *float64         `mapstructure:"b12_level"`
	PregnancyStatus     *string          `mapstructure:"pregnancy_status"`

	CurrentGoal    *string  `mapstructure:"current_goal"`
	Phase          *string  `mapstructure:"phase"`
	TargetWeightKg *float64 `mapstructure:"target_weight_kg"`

	UpdatedAt *time.Time `mapstructure:"updated_at"`
}

type intoleranceRow struct {
	Name     string `mapstructure:"name"`
	Category string `mapstructure:"category"`
	Severity string `mapstructure:"severity"`
}

func decodeProfile(raw map[string]any) (*model.ProfileRecord, error) {
	var row profileRow
	if err := decode(raw, &row); err != nil {
		return nil, err
	}

	var intolerances []model.Intolerance
	if row.Intolerances != nil {
		intolerances = make([]model.Intolerance, 0, len(row.Intolerances))
		for _, in := range row.Intolerances {
			intolerances = append(intolerances, model.Intolerance{
				Name:     in.Name,
				Category: in.Category,
				Severity: model.Severity(in.Severity),
			})
		}
	}

	return &model.ProfileRecord{
		UserID: row.UserID,
		Basic: model.BasicProfile{
			Age:           row.Age,
			Gender:        row.Gender,
			HeightCm:      row.HeightCm,
			WeightKg:      row.WeightKg,
			ActivityLevel: row.ActivityLevel,
		},
		Fitness: model.FitnessProfile{
			PrimaryGoal:        row.PrimaryGoal,
			ExperienceLevel:    row.ExperienceLevel,
			WeeklyAvailability: row.WeeklyAvailability,
			TrainingTypes:      row.TrainingTypes,
			SessionMinutes:     row.SessionMinutes,
		},
		Lifestyle: model.Lifestyle{
			SleepHours:       row.SleepHours,
			StressLevel:      row.StressLevel,
			DietType:         row.DietType,
			AlcoholFrequency: row.AlcoholFrequency,
			SmokingStatus:    row.SmokingStatus,
			CaffeineIntake:   row.CaffeineIntake,
		},
		Health: model.HealthProfile{
			MedicalConditions:   row.MedicalConditions,
			Medications:         row.Medications,
			DietaryRestrictions: row.DietaryRestrictions,
			Intolerances:        intolerances,
			VitaminDLevel:       row.VitaminDLevel,
			FerritinLevel:       row.FerritinLevel,
			B12Level:            row.B12Level,
			PregnancyStatus:     row.PregnancyStatus,
		},
		Goals: model.GoalState{
			CurrentGoal:    row.CurrentGoal,
			Phase:          row.Phase,
			TargetWeightKg: row.TargetWeightKg,
		},
		UpdatedAt: row.UpdatedAt,
	}, nil
}

func decodeRows(rows []map[string]any, out any) error {
	return decode(rows, out)
}

func decode(input any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       stringToTimeHook,
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

// stringToTimeHook parses string columns into time.Time using the accepted layouts
func stringToTimeHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf(time.Time{}) {
		return data, nil
	}
	s := reflect.ValueOf(data).String()
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return nil, fmt.Errorf("unrecognized time %q", s)
}
