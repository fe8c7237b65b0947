package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ppiankov/supplematch/internal/model"
)

// MockProvider implements Provider for testing
type MockProvider struct {
	name      string
	available bool
	response  *SummarizeResponse
	err       error
	lastReq   SummarizeRequest
}

func (m *MockProvider) Name() string {
	return m.name
}

func (m *MockProvider) Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error) {
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

func (m *MockProvider) IsAvailable(ctx context.Context) bool {
	return m.available
}

func testResult() *model.RecommendationResult {
	return &model.RecommendationResult{
		UserID: "u1",
		Recommendations: []model.SupplementRecommendation{
			{CandidateID: "vitamin-d3", Name: "Vitamin D3", Score: 10, Essential: true, Confidence: model.ConfidenceLow},
			{CandidateID: "creatine", Name: "Creatine", Score: 82, Confidence: model.ConfidenceHigh, PrimaryReasons: []string{"Strength training"}},
		},
		Completeness: model.DataCompleteness{OverallPercentage: 64, MissingCritical: []string{"age"}},
		Warnings:     []string{"Profile data is incomplete"},
	}
}

func TestNewSummarizer_DisabledProvider(t *testing.T) {
	summarizer, err := NewSummarizer(Config{}, nil, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if summarizer.IsEnabled() {
		t.Error("Expected summarizer to be disabled")
	}
	if summarizer.ProviderName() != "" {
		t.Error("Expected empty provider name when disabled")
	}

	summary, err := summarizer.GenerateSummary(context.Background(), testResult())
	if err != nil || summary != nil {
		t.Errorf("Expected nil summary and error when disabled, got %v, %v", summary, err)
	}
}

func TestNewSummarizer_UnknownProvider(t *testing.T) {
	if _, err := NewSummarizer(Config{Provider: "nope"}, nil, nil); err == nil {
		t.Error("Expected error for unknown provider")
	}
}

func TestSummarizer_GenerateSummary_ProviderUnavailable(t *testing.T) {
	s := &Summarizer{provider: &MockProvider{name: "test-provider"}, config: Config{Strict: true}}

	summary, err := s.GenerateSummary(context.Background(), testResult())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if summary == nil || summary.Enabled {
		t.Fatalf("Expected disabled summary with warnings, got %+v", summary)
	}
	if len(summary.Warnings) != 1 || !strings.Contains(summary.Warnings[0], "not available") {
		t.Errorf("Expected unavailability warning, got %v", summary.Warnings)
	}
}

func TestSummarizer_GenerateSummary_Success(t *testing.T) {
	mock := &MockProvider{
		name:      "test-provider",
		available: true,
		response: &SummarizeResponse{
			Summary:    "Creatine leads the list.",
			Mentioned:  []string{"Creatine"},
			Model:      "test-model",
			TokensUsed: 150,
		},
	}
	known := NewNameMatcher([]string{"Vitamin D3", "Creatine", "Omega-3"})
	s := &Summarizer{provider: mock, config: Config{Model: "test-model", Strict: true}, names: known}

	summary, err := s.GenerateSummary(context.Background(), testResult())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !summary.Enabled || summary.Provider != "test-provider" || summary.Model != "test-model" || !summary.Strict {
		t.Errorf("Unexpected summary metadata: %+v", summary)
	}
	if summary.SummaryMD != "Creatine leads the list." {
		t.Errorf("Unexpected summary text %q", summary.SummaryMD)
	}

	if got := mock.lastReq.Allowed; len(got) != 2 || got[0] != "Vitamin D3" || got[1] != "Creatine" {
		t.Errorf("Expected allowed names from the result, got %v", got)
	}
	if mock.lastReq.Known.Len() != 3 {
		t.Errorf("Expected known names passed through, got %v", mock.lastReq.Known)
	}

	joined := strings.Join(summary.Warnings, "\n")
	if !strings.Contains(joined, "Tokens used: 150") || !strings.Contains(joined, "Verified 1 supplement mentions") {
		t.Errorf("Unexpected notes: %v", summary.Warnings)
	}
}

func TestSummarizer_GenerateSummary_ProviderError(t *testing.T) {
	mock := &MockProvider{
		name:      "test-provider",
		available: true,
		err:       &ErrNameLeak{Names: []string{"Omega-3"}},
	}
	s := &Summarizer{provider: mock, config: Config{Strict: true}}

	summary, err := s.GenerateSummary(context.Background(), testResult())
	if err != nil {
		t.Errorf("Expected graceful degradation, got %v", err)
	}
	if !summary.Enabled || summary.SummaryMD != "" {
		t.Errorf("Expected enabled summary without text, got %+v", summary)
	}
	if len(summary.Warnings) != 1 || !strings.Contains(summary.Warnings[0], "failed") || !strings.Contains(summary.Warnings[0], "Omega-3") {
		t.Errorf("Expected failure warning naming the leak, got %v", summary.Warnings)
	}
}

func TestRenderSeparateMarkdown(t *testing.T) {
	if RenderSeparateMarkdown(nil) != "" {
		t.Error("Expected empty markdown for nil")
	}
	if RenderSeparateMarkdown(&model.NarrativeSummary{Enabled: false}) != "" {
		t.Error("Expected empty markdown when disabled")
	}

	md := RenderSeparateMarkdown(&model.NarrativeSummary{
		Enabled:   true,
		Provider:  "openai",
		Model:     "gpt-4o-mini",
		Strict:    true,
		SummaryMD: "Generated summary content.",
		Warnings:  []string{"Tokens used: 150"},
	})
	for _, want := range []string{
		"# Narrative Summary",
		"GENERATED CONTENT",
		"determined independently",
		"**Provider**: openai",
		"**Model**: gpt-4o-mini",
		"**Strict Mode**: true",
		"Generated summary content.",
		"## Notes",
		"Tokens used: 150",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("Expected markdown to contain %q", want)
		}
	}

	empty := RenderSeparateMarkdown(&model.NarrativeSummary{Enabled: true, Provider: "p"})
	if !strings.Contains(empty, "No summary generated") {
		t.Error("Expected message about no summary")
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(*testResult(), []string{"Vitamin D3", "Creatine"})

	for _, want := range []string{
		"ONLY mention these supplements",
		"- Vitamin D3",
		"- Creatine: score 82, confidence high (Strength training)",
		"Data completeness: 64%",
		"Profile data is incomplete",
		"Missing critical data: age",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Expected prompt to contain %q", want)
		}
	}

	none := BuildPrompt(model.RecommendationResult{}, nil)
	if !strings.Contains(none, "no supplement met the threshold") {
		t.Error("Expected empty allowlist notice")
	}
}

func TestNameMatcher_Verify(t *testing.T) {
	known := NewNameMatcher([]string{"Vitamin D3", "Iron", "Omega-3", "Caffeine", "Magnesium (Glycinate)", "iron"})
	allowed := []string{"Vitamin D3", "omega-3"}

	tests := []struct {
		name   string
		text   string
		leaked []string
	}{
		{"only allowed", "Vitamin D3 and Omega-3 are listed.", nil},
		{"case-insensitive allowed", "OMEGA-3 stays.", nil},
		{"excluded name", "Consider iron and caffeine.", []string{"Caffeine", "Iron"}},
		{"word boundary", "Ironman training is hard.", nil},
		{"name ending in punctuation", "Try Magnesium (Glycinate) at night.", []string{"Magnesium (Glycinate)"}},
		{"name at end of text", "Take magnesium (glycinate)", []string{"Magnesium (Glycinate)"}},
		{"name at start of text", "Iron: low priority.", []string{"Iron"}},
		{"partial punctuated name", "Magnesium (Glycinate)s are popular.", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := known.Verify(tt.text, allowed)
			if tt.leaked == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			var leak *ErrNameLeak
			if !errors.As(err, &leak) {
				t.Fatalf("expected ErrNameLeak, got %v", err)
			}
			if strings.Join(leak.Names, ",") != strings.Join(tt.leaked, ",") {
				t.Errorf("expected %v, got %v", tt.leaked, leak.Names)
			}
		})
	}
}

func TestNameMatcher_DedupesAndNilSafe(t *testing.T) {
	m := NewNameMatcher([]string{"Iron", " iron ", "", "Zinc"})
	if m.Len() != 2 {
		t.Errorf("expected 2 distinct names, got %d", m.Len())
	}

	var none *NameMatcher
	if none.Len() != 0 || none.Mentions("Iron") != nil {
		t.Error("expected nil matcher to match nothing")
	}
	if err := none.Verify("Iron", nil); err != nil {
		t.Errorf("unexpected error from nil matcher: %v", err)
	}
}

func TestConfigFromModel(t *testing.T) {
	c := ConfigFromModel(model.LLMConfig{Provider: "ollama", Model: "m", Timeout: 9, Strict: true, MaxTokens: 5})
	if c.Provider != "ollama" || c.Model != "m" || c.Timeout != 9 || !c.Strict || c.MaxTokens != 5 {
		t.Errorf("unexpected config %+v", c)
	}
	if d := DefaultConfig(); d.Provider != "" || !d.Strict {
		t.Errorf("unexpected defaults %+v", d)
	}
}
