package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/ppiankov/supplematch/internal/aggregate"
	"github.com/ppiankov/supplematch/internal/cache"
	"github.com/ppiankov/supplematch/internal/catalog"
	"github.com/ppiankov/supplematch/internal/fingerprint"
	"github.com/ppiankov/supplematch/internal/llm"
	"github.com/ppiankov/supplematch/internal/logger"
	"github.com/ppiankov/supplematch/internal/model"
	"github.com/ppiankov/supplematch/internal/recommend"
	"github.com/ppiankov/supplematch/internal/source"
	"github.com/ppiankov/supplematch/internal/worker"
)

// Snapshotter produces the snapshot for one user
type Snapshotter interface {
	Aggregate(ctx context.Context, userID string) (*model.AggregatedUserData, error)
}

// Pipeline runs aggregate, fingerprint, cache lookup, generate and summarize for one user
type Pipeline struct {
	snapshots  Snapshotter
	candidates []catalog.Candidate
	scoring    model.ScoringConfig
	variant    string
	results    *cache.Results
	summarizer *llm.Summarizer // nil when disabled
	renderer   *Renderer
	logger     *zap.Logger
	now        func() time.Time
}

// NewPipeline wires the source, aggregator, catalog, cache and summarizer from cfg
func NewPipeline(cfg *model.Config, log *zap.Logger) (*Pipeline, error) {
	log = logger.WithFields(log)

	candidates, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	limiter := worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)
	src, err := source.New(cfg.Source, limiter)
	if err != nil {
		return nil, fmt.Errorf("create source: %w", err)
	}

	scoring := cfg.Scoring.Normalized()
	agg := aggregate.New(src, scoring.AverageWindowDays, log)

	var summarizer *llm.Summarizer
	if cfg.LLM.Provider != "" {
		s, err := llm.NewSummarizer(llm.ConfigFromModel(cfg.LLM), knownNames(candidates), log)
		if err != nil {
			log.Warn("failed to initialize LLM provider; continuing without summaries", zap.Error(err))
		} else {
			summarizer = s
		}
	}

	p := newPipeline(agg, candidates, scoring, cache.NewResults(cache.New(cfg.Cache), 0), summarizer, log)
	p.renderer = NewRenderer(cfg.Output.IncludeFooter)
	return p, nil
}

func newPipeline(snapshots Snapshotter, candidates []catalog.Candidate, scoring model.ScoringConfig, results *cache.Results, summarizer *llm.Summarizer, log *zap.Logger) *Pipeline {
	return &Pipeline{
		snapshots:  snapshots,
		candidates: candidates,
		scoring:    scoring,
		variant:    variantOf(candidates, scoring, summarizer),
		results:    results,
		summarizer: summarizer,
		renderer:   NewRenderer(true),
		logger:     logger.WithFields(log),
		now:        time.Now,
	}
}

// Candidates returns the loaded catalog
func (p *Pipeline) Candidates() []catalog.Candidate {
	return p.candidates
}

// Renderer returns the configured renderer
func (p *Pipeline) Renderer() *Renderer {
	return p.renderer
}

// Snapshot aggregates the user's snapshot and its fingerprint without scoring
func (p *Pipeline) Snapshot(ctx context.Context, userID string) (*model.AggregatedUserData, string, error) {
	snap, err := p.snapshots.Aggregate(ctx, userID)
	if err != nil {
		return nil, "", fmt.Errorf("aggregate: %w", err)
	}
	fp, err := fingerprint.Compute(snap)
	if err != nil {
		return nil, "", fmt.Errorf("fingerprint: %w", err)
	}
	return snap, fp, nil
}

// Recommend produces the ranked result for one user, reusing a cached result
// when neither the snapshot nor the catalog changed
func (p *Pipeline) Recommend(ctx context.Context, userID string) (*model.RecommendationResult, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}
	log := logger.WithUser(p.logger, userID)

	snap, fp, err := p.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	log = log.With(zap.String(logger.FieldFingerprint, fp))

	key := cache.Key(userID, fp, p.variant)
	if cached, ok := p.results.Get(key); ok {
		log.Debug("result cache hit")
		return cached, nil
	}

	result, diagnostics, err := recommend.Generate(snap, p.candidates, p.scoring, p.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	for _, d := range diagnostics {
		log.Warn("catalog condition defect",
			zap.String(logger.FieldCandidate, d.CandidateID),
			zap.String("field", string(d.Defect.Field)),
			zap.String("operator", d.Defect.Operator),
			zap.Error(d.Defect.Err),
		)
	}

	if p.summarizer.IsEnabled() {
		summary, err := p.summarizer.GenerateSummary(ctx, result)
		if err != nil {
			log.Warn("llm summary generation failed", zap.Error(err))
		} else {
			result.Summary = summary
		}
	}

	if err := p.results.Put(key, result); err != nil {
		log.Warn("failed to cache result", zap.Error(err))
	}

	log.Info("recommendations generated",
		zap.Int("count", len(result.Recommendations)),
		zap.Int("completeness", result.Completeness.OverallPercentage),
		zap.Int("defects", len(diagnostics)),
	)
	return result, nil
}

func knownNames(candidates []catalog.Candidate) []string {
	names := make([]string, 0, len(candidates))
	for _, c := range candidates {
		names = append(names, c.Name)
	}
	return names
}

// variantOf hashes everything other than the snapshot that shapes a result
func variantOf(candidates []catalog.Candidate, scoring model.ScoringConfig, summarizer *llm.Summarizer) string {
	h := xxhash.New()
	if doc, err := catalog.Marshal(candidates); err == nil {
		_, _ = h.Write(doc)
	}
	if cfg, err := json.Marshal(scoring); err == nil {
		_, _ = h.Write(cfg)
	}
	_, _ = h.WriteString(summarizer.ProviderName())
	return fmt.Sprintf("%016x", h.Sum64())
}

// RenderReport writes the requested outputs. The narrative, when present, goes
// to a sibling <name>.llm.md next to the Markdown report.
func (p *Pipeline) RenderReport(result *model.RecommendationResult, jsonPath, mdPath string) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(result, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		p.logger.Debug("wrote JSON report", zap.String("path", jsonPath))
	}

	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(result, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		p.logger.Debug("wrote Markdown report", zap.String("path", mdPath))
	}

	if result.Summary != nil && result.Summary.Enabled && mdPath != "" && mdPath != "-" {
		narrativePath := strings.TrimSuffix(mdPath, ".md") + ".llm.md"
		if err := p.renderer.RenderNarrative(result.Summary, narrativePath); err != nil {
			p.logger.Warn("failed to write narrative summary", zap.Error(err))
		}
	}
	return nil
}
