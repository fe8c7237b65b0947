package llm

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/supplematch/internal/logger"
	"github.com/ppiankov/supplematch/internal/model"
)

// Summarizer attaches an optional narrative to a result. It never alters scores
// and never fails the run: problems become warnings on the summary.
type Summarizer struct {
	provider Provider
	config   Config
	names    *NameMatcher
	logger   *zap.Logger
}

// NewSummarizer builds a summarizer; a disabled provider yields a no-op summarizer.
// known lists every catalog name so strict mode can detect mentions of
// supplements the result left out.
func NewSummarizer(config Config, known []string, log *zap.Logger) (*Summarizer, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, err
	}
	return &Summarizer{
		provider: provider,
		config:   config,
		names:    NewNameMatcher(known),
		logger:   logger.WithFields(log),
	}, nil
}

func (s *Summarizer) IsEnabled() bool {
	return s != nil && s.provider != nil
}

func (s *Summarizer) ProviderName() string {
	if !s.IsEnabled() {
		return ""
	}
	return s.provider.Name()
}

// GenerateSummary returns nil when disabled
func (s *Summarizer) GenerateSummary(ctx context.Context, result *model.RecommendationResult) (*model.NarrativeSummary, error) {
	if !s.IsEnabled() || result == nil {
		return nil, nil
	}

	log := logger.WithUser(s.logger, result.UserID)
	summary := &model.NarrativeSummary{
		Enabled:  true,
		Provider: s.provider.Name(),
		Model:    s.config.Model,
		Strict:   s.config.Strict,
	}

	if !s.provider.IsAvailable(ctx) {
		summary.Enabled = false
		summary.Warnings = append(summary.Warnings, fmt.Sprintf("LLM provider %s is not available", s.provider.Name()))
		log.Warn("llm provider not available", zap.String("provider", s.provider.Name()))
		return summary, nil
	}

	allowed := make([]string, 0, len(result.Recommendations))
	for _, rec := range result.Recommendations {
		allowed = append(allowed, rec.Name)
	}

	resp, err := s.provider.Summarize(ctx, SummarizeRequest{
		Result:    *result,
		Allowed:   allowed,
		Known:     s.names,
		Model:     s.config.Model,
		MaxTokens: s.config.MaxTokens,
	})
	if err != nil {
		summary.Warnings = append(summary.Warnings, "LLM summary generation failed: "+logger.Truncate(err.Error(), 300))
		log.Warn("llm summary failed", zap.Error(err))
		return summary, nil
	}

	summary.SummaryMD = resp.Summary
	log.Debug("llm summary generated", zap.String("preview", logger.Truncate(resp.Summary, 80)))
	if resp.Model != "" {
		summary.Model = resp.Model
	}
	summary.Warnings = append(summary.Warnings, fmt.Sprintf("Tokens used: %d", resp.TokensUsed))
	if s.config.Strict {
		summary.Warnings = append(summary.Warnings, fmt.Sprintf("Verified %d supplement mentions against the result", len(resp.Mentioned)))
	}
	return summary, nil
}

// RenderSeparateMarkdown renders the narrative as a standalone Markdown document
func RenderSeparateMarkdown(summary *model.NarrativeSummary) string {
	if summary == nil || !summary.Enabled {
		return ""
	}

	var b strings.Builder
	b.WriteString("# Narrative Summary\n\n")
	b.WriteString("> GENERATED CONTENT. Scores and rankings were determined independently by the scoring engine; this text only describes them and is not medical advice.\n\n")
	fmt.Fprintf(&b, "- **Provider**: %s\n", summary.Provider)
	if summary.Model != "" {
		fmt.Fprintf(&b, "- **Model**: %s\n", summary.Model)
	}
	fmt.Fprintf(&b, "- **Strict Mode**: %t\n\n", summary.Strict)

	if summary.SummaryMD == "" {
		b.WriteString("_No summary generated._\n")
	} else {
		b.WriteString(summary.SummaryMD)
		b.WriteString("\n")
	}

	if len(summary.Warnings) > 0 {
		b.WriteString("\n## Notes\n\n")
		for _, w := range summary.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}
	return b.String()
}
