package pipeline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/ppiankov/supplematch/internal/llm"
	"github.com/ppiankov/supplematch/internal/model"
)

const footer = "_Generated by supplematch. Recommendations are rule-based and informational only; " +
	"they are not medical advice. Check with a clinician before starting a supplement._\n"

// Renderer writes results as JSON, Markdown or a console summary
type Renderer struct {
	includeFooter bool
}

func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// JSON renders the result as indented JSON
func (r *Renderer) JSON(result *model.RecommendationResult) ([]byte, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return append(data, '\n'), nil
}

// RenderJSON writes the result to path; "-" writes to stdout
func (r *Renderer) RenderJSON(result *model.RecommendationResult, path string) error {
	data, err := r.JSON(result)
	if err != nil {
		return err
	}
	return writeOutput(path, data)
}

// RenderMarkdown writes the Markdown report to path; "-" writes to stdout
func (r *Renderer) RenderMarkdown(result *model.RecommendationResult, path string) error {
	return writeOutput(path, []byte(r.Markdown(result)))
}

// RenderNarrative writes the narrative summary as its own document
func (r *Renderer) RenderNarrative(summary *model.NarrativeSummary, path string) error {
	md := llm.RenderSeparateMarkdown(summary)
	if md == "" {
		return nil
	}
	return writeOutput(path, []byte(md))
}

// Markdown renders the human-readable report
func (r *Renderer) Markdown(result *model.RecommendationResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Supplement Recommendations: %s\n\n", result.UserID)
	fmt.Fprintf(&b, "- **Generated**: %s\n", result.GeneratedAt.Format("2006-01-02 15:04 UTC"))
	fmt.Fprintf(&b, "- **Data completeness**: %d%%\n", result.Completeness.OverallPercentage)
	fmt.Fprintf(&b, "- **Snapshot fingerprint**: `%s`\n\n", result.Fingerprint)

	if len(result.Warnings) > 0 {
		b.WriteString("## Warnings\n\n")
		for _, w := range result.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Recommendations\n\n")
	if len(result.Recommendations) == 0 {
		b.WriteString("_No supplement met the score threshold._\n\n")
	} else {
		b.WriteString("| # | Supplement | Score | Confidence | Essential |\n")
		b.WriteString("|---|---|---|---|---|\n")
		for i, rec := range result.Recommendations {
			fmt.Fprintf(&b, "| %d | %s | %d | %s | %s |\n", i+1, rec.Name, rec.Score, rec.Confidence, yesNo(rec.Essential))
		}
		b.WriteString("\n")

		for _, rec := range result.Recommendations {
			r.writeRecommendation(&b, rec)
		}
	}

	b.WriteString("## Data Completeness\n\n")
	b.WriteString("| Category | Filled | Percentage |\n")
	b.WriteString("|---|---|---|\n")
	dc := result.Completeness
	for _, row := range []struct {
		name string
		cs   model.CategoryScore
	}{
		{"Basic profile", dc.BasicProfile},
		{"Fitness profile", dc.FitnessProfile},
		{"Lifestyle", dc.Lifestyle},
		{"Health profile", dc.HealthProfile},
		{"Daily tracking", dc.DailyTracking},
		{"Nutrition tracking", dc.NutritionTracking},
	} {
		fmt.Fprintf(&b, "| %s | %d/%d | %d%% |\n", row.name, row.cs.Filled, row.cs.Total, row.cs.Percentage)
	}
	b.WriteString("\n")

	if len(dc.MissingCritical) > 0 {
		fmt.Fprintf(&b, "**Missing critical**: %s\n\n", strings.Join(dc.MissingCritical, ", "))
	}
	if len(dc.MissingOptional) > 0 {
		b.WriteString("**Missing optional**:\n\n")
		for _, m := range dc.MissingOptional {
			fmt.Fprintf(&b, "- %s\n", m)
		}
		b.WriteString("\n")
	}

	if len(result.Suggestions) > 0 {
		b.WriteString("## Suggestions\n\n")
		for _, s := range result.Suggestions {
			fmt.Fprintf(&b, "- %s\n", s)
		}
		b.WriteString("\n")
	}

	if result.Summary != nil && result.Summary.Enabled && result.Summary.SummaryMD != "" {
		b.WriteString("## Narrative\n\n")
		b.WriteString("> Generated text; scores above were computed independently.\n\n")
		b.WriteString(result.Summary.SummaryMD)
		b.WriteString("\n\n")
	}

	if r.includeFooter {
		b.WriteString("---\n\n")
		b.WriteString(footer)
	}
	return b.String()
}

func (r *Renderer) writeRecommendation(b *strings.Builder, rec model.SupplementRecommendation) {
	fmt.Fprintf(b, "### %s (%d/100)\n\n", rec.Name, rec.Score)
	if len(rec.Categories) > 0 {
		fmt.Fprintf(b, "_%s_\n\n", strings.Join(rec.Categories, ", "))
	}
	if len(rec.PrimaryReasons) > 0 {
		b.WriteString("**Why**:\n\n")
		for _, reason := range rec.PrimaryReasons {
			fmt.Fprintf(b, "- %s\n", reason)
		}
		b.WriteString("\n")
	}
	if len(rec.Cautions) > 0 {
		b.WriteString("**Cautions**:\n\n")
		for _, c := range rec.Cautions {
			fmt.Fprintf(b, "- %s\n", c)
		}
		b.WriteString("\n")
	}
	if len(rec.MissingData) > 0 {
		fmt.Fprintf(b, "**Would sharpen this score**: %s\n\n", strings.Join(rec.MissingData, "; "))
	}
	if rec.Notes != "" {
		fmt.Fprintf(b, "%s\n\n", rec.Notes)
	}
}

// RenderSummary prints a short console overview
func (r *Renderer) RenderSummary(w io.Writer, result *model.RecommendationResult) {
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "  %s\n", result.UserID)
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "  Completeness:  %d%%\n", result.Completeness.OverallPercentage)
	fmt.Fprintf(w, "  Fingerprint:   %s\n", result.Fingerprint)
	fmt.Fprintf(w, "\n")

	if len(result.Recommendations) == 0 {
		fmt.Fprintf(w, "  No supplement met the score threshold.\n")
	}
	for i, rec := range result.Recommendations {
		tag := ""
		if rec.Essential {
			tag = " [essential]"
		}
		fmt.Fprintf(w, "  %2d. %-28s %3d  %-6s%s\n", i+1, rec.Name, rec.Score, rec.Confidence, tag)
	}

	if len(result.Warnings) > 0 {
		fmt.Fprintf(w, "\n")
		for _, warning := range result.Warnings {
			fmt.Fprintf(w, "  ! %s\n", warning)
		}
	}
	fmt.Fprintf(w, "\n")
}

func writeOutput(path string, data []byte) error {
	if path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
