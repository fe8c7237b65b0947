package model

import "testing"

func TestScoringConfig_Normalized(t *testing.T) {
	def := DefaultScoringConfig()

	tests := []struct {
		name string
		in   ScoringConfig
		want ScoringConfig
	}{
		{"zero value", ScoringConfig{}, ScoringConfig{MinScoreThreshold: 0, MaxRecommendations: 25, AverageWindowDays: 14, NegativeWeightPenalty: 5}},
		{"three fields", ScoringConfig{MinScoreThreshold: 60, MaxRecommendations: 25, AverageWindowDays: 14}, def},
		{"negative penalty", ScoringConfig{MinScoreThreshold: 60, MaxRecommendations: 10, AverageWindowDays: 7, NegativeWeightPenalty: -3}, ScoringConfig{MinScoreThreshold: 60, MaxRecommendations: 10, AverageWindowDays: 7, NegativeWeightPenalty: 5}},
		{"threshold out of range", ScoringConfig{MinScoreThreshold: 101, MaxRecommendations: -1, AverageWindowDays: -1, NegativeWeightPenalty: 8}, ScoringConfig{MinScoreThreshold: 60, MaxRecommendations: 25, AverageWindowDays: 14, NegativeWeightPenalty: 8}},
		{"exclusion kept", ScoringConfig{MinScoreThreshold: 50, MaxRecommendations: 5, AverageWindowDays: 3, NegativeWeightPenalty: 2, ExcludeEssentials: true}, ScoringConfig{MinScoreThreshold: 50, MaxRecommendations: 5, AverageWindowDays: 3, NegativeWeightPenalty: 2, ExcludeEssentials: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Normalized(); got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestDefaultScoringConfig_IncludesEssentials(t *testing.T) {
	cfg := DefaultScoringConfig()
	if cfg.ExcludeEssentials {
		t.Error("expected essentials to be included by default")
	}
	if cfg.NegativeWeightPenalty != 5 {
		t.Errorf("expected penalty 5, got %d", cfg.NegativeWeightPenalty)
	}
}
