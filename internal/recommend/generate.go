package recommend

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ppiankov/supplematch/internal/catalog"
	"github.com/ppiankov/supplematch/internal/completeness"
	"github.com/ppiankov/supplematch/internal/fingerprint"
	"github.com/ppiankov/supplematch/internal/model"
	"github.com/ppiankov/supplematch/internal/rules"
	"github.com/ppiankov/supplematch/internal/score"
)

// ErrNilSnapshot is returned when no snapshot is supplied
var ErrNilSnapshot = errors.New("snapshot is nil")

// ErrEmptyCatalog is returned when the catalog has no candidates
var ErrEmptyCatalog = catalog.ErrEmptyCatalog

// Diagnostic is a condition defect found while scoring one candidate
type Diagnostic struct {
	CandidateID string
	Defect      *rules.Defect
}

// Thresholds for warnings and suggestions
const (
	lowCompleteness = 50
	lowTracking     = 50
)

// Generate scores every candidate against the snapshot and assembles the ranked
// result. It performs no I/O; now is stamped on the result as its generation time.
func Generate(snapshot *model.AggregatedUserData, candidates []catalog.Candidate, cfg model.ScoringConfig, now time.Time) (*model.RecommendationResult, []Diagnostic, error) {
	if snapshot == nil {
		return nil, nil, ErrNilSnapshot
	}
	if len(candidates) == 0 {
		return nil, nil, ErrEmptyCatalog
	}
	cfg = cfg.Normalized()

	// 1. Score the whole catalog
	scorer := score.NewScorer(cfg)
	var diagnostics []Diagnostic
	scored := make([]model.SupplementRecommendation, 0, len(candidates))
	for _, c := range candidates {
		rec, defects := scorer.Score(c, snapshot)
		for _, d := range defects {
			diagnostics = append(diagnostics, Diagnostic{CandidateID: c.ID, Defect: d})
		}
		scored = append(scored, rec)
	}

	// 2. Inclusion
	kept := make([]model.SupplementRecommendation, 0, len(scored))
	for _, rec := range scored {
		if include(rec, cfg) {
			kept = append(kept, rec)
		}
	}

	// 3. Essentials first, then score descending; ties keep catalog order
	sort.SliceStable(kept, func(i, j int) bool {
		ei := kept[i].Essential && !cfg.ExcludeEssentials
		ej := kept[j].Essential && !cfg.ExcludeEssentials
		if ei != ej {
			return ei
		}
		return kept[i].Score > kept[j].Score
	})

	// 4. Truncate
	if len(kept) > cfg.MaxRecommendations {
		kept = kept[:cfg.MaxRecommendations]
	}

	dc := completeness.Analyze(snapshot)
	fp, err := fingerprint.Compute(snapshot)
	if err != nil {
		return nil, diagnostics, fmt.Errorf("fingerprint: %w", err)
	}

	return &model.RecommendationResult{
		UserID:          snapshot.UserID,
		GeneratedAt:     now,
		Recommendations: kept,
		Completeness:    dc,
		Warnings:        warnings(snapshot, dc),
		Suggestions:     suggestions(snapshot, dc),
		Fingerprint:     fp,
	}, diagnostics, nil
}

// include applies the inclusion rule: vetoed candidates never pass, essentials
// bypass the threshold, everything else needs score >= MinScoreThreshold
func include(rec model.SupplementRecommendation, cfg model.ScoringConfig) bool {
	if rec.Vetoed {
		return false
	}
	if rec.Essential && !cfg.ExcludeEssentials {
		return true
	}
	return rec.Score >= cfg.MinScoreThreshold
}

func warnings(snapshot *model.AggregatedUserData, dc model.DataCompleteness) []string {
	out := []string{}
	if dc.OverallPercentage < lowCompleteness {
		out = append(out, fmt.Sprintf("Profile is only %d%% complete; recommendations may be less accurate", dc.OverallPercentage))
	}
	if len(dc.MissingCritical) > 0 {
		out = append(out, "Missing critical information: "+strings.Join(dc.MissingCritical, ", "))
	}
	if n := snapshot.Daily.DataPoints; n < completeness.MinDataPoints {
		out = append(out, fmt.Sprintf("Only %d day(s) of check-in data; daily averages are not used", n))
	}
	if n := snapshot.Nutrition.DataPoints; n < completeness.MinDataPoints {
		out = append(out, fmt.Sprintf("Only %d day(s) of nutrition data; nutrition averages are not used", n))
	}
	return out
}

func suggestions(snapshot *model.AggregatedUserData, dc model.DataCompleteness) []string {
	out := []string{}
	if dc.HealthProfile.Filled < dc.HealthProfile.Total {
		out = append(out, "Complete your health profile (conditions, medications, restrictions, intolerances) so contraindications can be checked")
	}
	if dc.DailyTracking.Percentage < lowTracking {
		out = append(out, "Log daily check-ins for sleep, energy and stress to improve recommendations")
	}
	if dc.NutritionTracking.Percentage < lowTracking {
		out = append(out, "Track meals for at least 3 days so nutrition gaps can be detected")
	}
	if !snapshot.Health.HasLabValues() {
		out = append(out, "Add recent lab results (vitamin D, ferritin, B12) for more precise recommendations")
	}
	return out
}
