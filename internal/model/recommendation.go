package model

import "time"

// ConfidenceLevel classifies how much of the scoring evidence was available
type ConfidenceLevel string

const (
	ConfidenceLow    ConfidenceLevel = "low"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceHigh   ConfidenceLevel = "high"
)

// RecommendationFactor is the outcome of one condition for one candidate
type RecommendationFactor struct {
	Description  string `json:"description"`
	Met          bool   `json:"met"`
	Weight       int    `json:"weight"`
	Contribution int    `json:"contribution"` // signed: positive factors add, negative factors subtract
	Source       string `json:"source"`       // snapshot category the value came from
	Available    bool   `json:"available"`
}

// SupplementRecommendation is the scored result for a single catalog candidate
type SupplementRecommendation struct {
	CandidateID     string                 `json:"candidate_id"`
	Name            string                 `json:"name"`
	Categories      []string               `json:"categories"`
	Substance       string                 `json:"substance,omitempty"`
	Essential       bool                   `json:"essential"`
	Score           int                    `json:"score"`
	Vetoed          bool                   `json:"vetoed"`
	PositiveFactors []RecommendationFactor `json:"positive_factors"`
	NegativeFactors []RecommendationFactor `json:"negative_factors"`
	PrimaryReasons  []string               `json:"primary_reasons"`
	Cautions        []string               `json:"cautions"`
	Confidence      ConfidenceLevel        `json:"confidence"`
	MissingData     []string               `json:"missing_data"`
	Notes           string                 `json:"notes,omitempty"`
}

// CategoryScore is the completeness of one snapshot category
type CategoryScore struct {
	Filled     int `json:"filled"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// DataCompleteness describes how complete the snapshot is, independent of any candidate
type DataCompleteness struct {
	OverallPercentage int           `json:"overall_percentage"`
	BasicProfile      CategoryScore `json:"basic_profile"`
	FitnessProfile    CategoryScore `json:"fitness_profile"`
	Lifestyle         CategoryScore `json:"lifestyle"`
	HealthProfile     CategoryScore `json:"health_profile"`
	DailyTracking     CategoryScore `json:"daily_tracking"`
	NutritionTracking CategoryScore `json:"nutrition_tracking"`
	MissingCritical   []string      `json:"missing_critical"`
	MissingOptional   []string      `json:"missing_optional"`
}

// RecommendationResult is the ranked output handed to presentation and storage
type RecommendationResult struct {
	UserID          string                     `json:"user_id"`
	GeneratedAt     time.Time                  `json:"generated_at"`
	Recommendations []SupplementRecommendation `json:"recommendations"`
	Completeness    DataCompleteness           `json:"completeness"`
	Warnings        []string                   `json:"warnings"`
	Suggestions     []string                   `json:"suggestions"`
	Fingerprint     string                     `json:"fingerprint"`

	Summary *NarrativeSummary `json:"summary,omitempty"` // Optional LLM narrative (never affects scores)
}

// NarrativeSummary contains an optional LLM-generated explanation of a result
type NarrativeSummary struct {
	Enabled   bool     `json:"enabled"`
	Provider  string   `json:"provider,omitempty"`
	Model     string   `json:"model,omitempty"`
	Strict    bool     `json:"strict"`
	SummaryMD string   `json:"summary_md,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
}
