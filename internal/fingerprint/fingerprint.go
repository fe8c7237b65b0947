// Package fingerprint derives a cache-invalidation key from a snapshot.
// The hash is xxhash64 and is not a security primitive.
package fingerprint

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/goccy/go-json"

	"github.com/ppiankov/supplematch/internal/model"
)

// scored is the subset of the snapshot that influences scoring.
// User id and freshness timestamps are not part of it.
type scored struct {
	Profile   model.BasicProfile      `json:"profile"`
	Fitness   model.FitnessProfile    `json:"fitness"`
	Lifestyle model.Lifestyle         `json:"lifestyle"`
	Health    model.HealthProfile     `json:"health"`
	Daily     model.DailyAverages     `json:"daily"`
	Nutrition model.NutritionAverages `json:"nutrition"`
	Goals     model.GoalState         `json:"goals"`
}

// Canonical returns the canonical serialization that Compute hashes
func Canonical(snapshot *model.AggregatedUserData) ([]byte, error) {
	if snapshot == nil {
		return nil, fmt.Errorf("fingerprint: nil snapshot")
	}
	return json.Marshal(scored{
		Profile:   snapshot.Profile,
		Fitness:   snapshot.Fitness,
		Lifestyle: snapshot.Lifestyle,
		Health:    snapshot.Health,
		Daily:     snapshot.Daily,
		Nutrition: snapshot.Nutrition,
		Goals:     snapshot.Goals,
	})
}

// Compute returns the snapshot fingerprint as 16 lowercase hex characters
func Compute(snapshot *model.AggregatedUserData) (string, error) {
	data, err := Canonical(snapshot)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%016x", xxhash.Sum64(data)), nil
}
