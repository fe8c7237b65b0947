package score

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ppiankov/supplematch/internal/catalog"
	"github.com/ppiankov/supplematch/internal/model"
	"github.com/ppiankov/supplematch/internal/rules"
)

// VetoWeight is the weight of the synthetic factor appended on a contraindication veto
const VetoWeight = 10

// Scorer calculates the match score of one candidate against one snapshot.
// It holds no mutable state and is safe for concurrent use.
type Scorer struct {
	penalty int
}

// NewScorer creates a scorer for the given configuration
func NewScorer(cfg model.ScoringConfig) *Scorer {
	return &Scorer{penalty: cfg.Normalized().NegativeWeightPenalty}
}

// Score evaluates every condition of the candidate and returns the scored
// recommendation together with any condition defects found on the way.
func (s *Scorer) Score(c catalog.Candidate, snapshot *model.AggregatedUserData) (model.SupplementRecommendation, []*rules.Defect) {
	var defects []*rules.Defect

	// 1. Positive conditions
	positive, earned, total, d := s.evaluate(c.Positive, snapshot, 1)
	defects = append(defects, d...)

	// 2. Negative conditions
	negative, metNegative, _, d := s.evaluate(c.Negative, snapshot, -1)
	defects = append(defects, d...)

	// 3. Base score minus deductions, clamped at zero
	base := 0.0
	if total > 0 {
		base = float64(earned) / float64(total) * 100
	}
	deduction := float64(metNegative * s.penalty)
	score := int(math.Max(0, roundHalfUp(base-deduction)))
	if score > 100 {
		score = 100
	}

	// Confidence only reflects evaluated conditions, not the synthetic veto factor
	confidence := determineConfidence(append(append([]model.RecommendationFactor{}, positive...), negative...))

	// 4. Contraindication veto
	vetoed := false
	if tag, intolerance, ok := matchContraindication(c.Contraindications, snapshot); ok {
		vetoed = true
		score = 0
		negative = append(negative, model.RecommendationFactor{
			Description:  fmt.Sprintf("Contraindicated: %s intolerance (%s) matches %q", intolerance.Name, intolerance.Severity, tag),
			Met:          true,
			Weight:       VetoWeight,
			Contribution: -VetoWeight,
			Source:       rules.SourceIntolerances,
			Available:    true,
		})
	}

	return model.SupplementRecommendation{
		CandidateID:     c.ID,
		Name:            c.Name,
		Categories:      c.Categories,
		Substance:       c.Substance,
		Essential:       c.Essential,
		Score:           score,
		Vetoed:          vetoed,
		PositiveFactors: positive,
		NegativeFactors: negative,
		PrimaryReasons:  primaryReasons(positive),
		Cautions:        cautions(negative),
		Confidence:      confidence,
		MissingData:     missingData(positive),
		Notes:           c.Notes,
	}, defects
}

// evaluate turns conditions into factors. sign is +1 for positive and -1 for
// negative conditions. It returns the factors, the weight of met and available
// conditions and the total weight regardless of availability.
func (s *Scorer) evaluate(conds []rules.Condition, snapshot *model.AggregatedUserData, sign int) ([]model.RecommendationFactor, int, int, []*rules.Defect) {
	factors := make([]model.RecommendationFactor, 0, len(conds))
	var defects []*rules.Defect
	met, total := 0, 0

	for _, cond := range conds {
		out := rules.Evaluate(cond, snapshot)
		if out.Defect != nil {
			defects = append(defects, out.Defect)
		}

		f := model.RecommendationFactor{
			Description: cond.Description,
			Met:         out.Met,
			Weight:      cond.Weight,
			Source:      out.Source,
			Available:   out.Available,
		}
		if out.Available && out.Met {
			f.Contribution = sign * cond.Weight
			met += cond.Weight
		}
		total += cond.Weight
		factors = append(factors, f)
	}
	return factors, met, total, defects
}

// matchContraindication finds the first severe or life-threatening intolerance
// whose name contains one of the tags, case-insensitively
func matchContraindication(tags []string, snapshot *model.AggregatedUserData) (string, model.Intolerance, bool) {
	if snapshot == nil {
		return "", model.Intolerance{}, false
	}
	for _, tag := range tags {
		needle := strings.ToLower(strings.TrimSpace(tag))
		if needle == "" {
			continue
		}
		for _, in := range snapshot.Health.Intolerances {
			if !in.Severity.Vetoes() {
				continue
			}
			if strings.Contains(strings.ToLower(in.Name), needle) {
				return tag, in, true
			}
		}
	}
	return "", model.Intolerance{}, false
}

// determineConfidence classifies the ratio of available to total factors
func determineConfidence(factors []model.RecommendationFactor) model.ConfidenceLevel {
	if len(factors) == 0 {
		return model.ConfidenceLow
	}
	available := 0
	for _, f := range factors {
		if f.Available {
			available++
		}
	}
	return ConfidenceFor(float64(available) / float64(len(factors)))
}

// ConfidenceFor maps an availability ratio to a confidence level
func ConfidenceFor(ratio float64) model.ConfidenceLevel {
	if ratio >= 0.8 {
		return model.ConfidenceHigh
	} else if ratio >= 0.5 {
		return model.ConfidenceMedium
	}
	return model.ConfidenceLow
}

// primaryReasons returns up to three met positive factors, heaviest first
func primaryReasons(positive []model.RecommendationFactor) []string {
	var met []model.RecommendationFactor
	for _, f := range positive {
		if f.Met && f.Available {
			met = append(met, f)
		}
	}
	sort.SliceStable(met, func(i, j int) bool {
		return met[i].Weight > met[j].Weight
	})

	reasons := []string{}
	for i := 0; i < len(met) && i < 3; i++ {
		reasons = append(reasons, met[i].Description)
	}
	return reasons
}

func cautions(negative []model.RecommendationFactor) []string {
	out := []string{}
	for _, f := range negative {
		if f.Met && f.Available {
			out = append(out, f.Description)
		}
	}
	return out
}

func missingData(positive []model.RecommendationFactor) []string {
	out := []string{}
	for _, f := range positive {
		if !f.Available {
			out = append(out, f.Description)
		}
	}
	return out
}

// roundHalfUp rounds .5 towards positive infinity
func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}
