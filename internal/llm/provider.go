package llm

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/ppiankov/supplematch/internal/model"
)

// Provider generates narrative text from a ranked result
type Provider interface {
	Name() string

	// Summarize explains the result. With strict mode on it fails when the
	// text names a supplement outside req.Allowed.
	Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error)

	IsAvailable(ctx context.Context) bool
}

// SummarizeRequest contains the input for a narrative summary
type SummarizeRequest struct {
	Result model.RecommendationResult

	// Allowed are the supplement names present in the result
	Allowed []string

	// Known matches all catalog names; mentions of Known names absent from
	// Allowed are leaks
	Known *NameMatcher

	Prompt    string // optional override
	Model     string
	MaxTokens int
}

// SummarizeResponse contains the generated narrative
type SummarizeResponse struct {
	Summary    string
	Mentioned  []string // catalog names found in the summary
	Model      string
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	Provider  string // openai, anthropic, ollama, or empty to disable
	Model     string
	APIKey    string
	BaseURL   string
	Timeout   int // seconds
	Strict    bool
	MaxTokens int
}

// DefaultConfig returns the disabled-by-default configuration
func DefaultConfig() Config {
	return Config{
		Timeout:   30,
		Strict:    true,
		MaxTokens: 800,
	}
}

// ErrNameLeak is returned in strict mode when a summary names an excluded supplement
type ErrNameLeak struct {
	Names []string
}

func (e *ErrNameLeak) Error() string {
	return fmt.Sprintf("summary names supplements outside the result: %s", strings.Join(e.Names, ", "))
}

const systemPrompt = "You explain supplement recommendations produced by a deterministic scoring engine. " +
	"You never change, add or remove recommendations and you never give medical diagnoses."

// BuildPrompt constructs the default summarization prompt
func BuildPrompt(result model.RecommendationResult, allowed []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `Summarize this supplement recommendation result for the user.

RULES:
1. You may ONLY mention these supplements:
%s

2. Do not suggest any other supplement, food product or medication.
3. Do not change any score or ranking; describe them.
4. Point out missing data the user could add to improve the result.
5. Keep it to 4-6 sentences in plain Markdown.

Result:
- Data completeness: %d%%
- Recommendations: %d
`, joinNames(allowed), result.Completeness.OverallPercentage, len(result.Recommendations))

	for i, rec := range result.Recommendations {
		if i >= 5 {
			break
		}
		fmt.Fprintf(&b, "- %s: score %d, confidence %s", rec.Name, rec.Score, rec.Confidence)
		if len(rec.PrimaryReasons) > 0 {
			fmt.Fprintf(&b, " (%s)", strings.Join(rec.PrimaryReasons, "; "))
		}
		b.WriteString("\n")
	}

	if len(result.Warnings) > 0 {
		b.WriteString("\nWarnings:\n")
		for _, w := range result.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}
	if len(result.Completeness.MissingCritical) > 0 {
		fmt.Fprintf(&b, "\nMissing critical data: %s\n", strings.Join(result.Completeness.MissingCritical, ", "))
	}

	return b.String()
}

func joinNames(names []string) string {
	if len(names) == 0 {
		return "(none: say that no supplement met the threshold)"
	}
	var b strings.Builder
	for i, n := range names {
		if i >= 20 {
			fmt.Fprintf(&b, "\n... and %d more", len(names)-20)
			break
		}
		fmt.Fprintf(&b, "\n- %s", n)
	}
	return b.String()
}

// NameMatcher finds catalog names in generated text. Patterns are compiled once
// and matched case-insensitively, bounded by non-word characters or the text ends,
// so names that begin or end with punctuation still match.
type NameMatcher struct {
	names    []string
	patterns []*regexp.Regexp
}

// NewNameMatcher compiles one pattern per distinct non-empty name
func NewNameMatcher(known []string) *NameMatcher {
	m := &NameMatcher{}
	seen := make(map[string]bool, len(known))
	for _, name := range known {
		name = strings.TrimSpace(name)
		key := strings.ToLower(name)
		if name == "" || seen[key] {
			continue
		}
		seen[key] = true
		m.names = append(m.names, name)
		m.patterns = append(m.patterns, regexp.MustCompile(`(?i)(?:^|\W)`+regexp.QuoteMeta(name)+`(?:\W|$)`))
	}
	return m
}

// Len returns the number of distinct names
func (m *NameMatcher) Len() int {
	if m == nil {
		return 0
	}
	return len(m.names)
}

// Mentions returns the names that appear in text, sorted
func (m *NameMatcher) Mentions(text string) []string {
	if m == nil {
		return nil
	}
	var found []string
	for i, re := range m.patterns {
		if re.MatchString(text) {
			found = append(found, m.names[i])
		}
	}
	sort.Strings(found)
	return found
}

// Verify reports names mentioned in text that are not allowed
func (m *NameMatcher) Verify(text string, allowed []string) error {
	ok := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		ok[strings.ToLower(strings.TrimSpace(a))] = true
	}

	var leaked []string
	for _, name := range m.Mentions(text) {
		if !ok[strings.ToLower(name)] {
			leaked = append(leaked, name)
		}
	}
	if len(leaked) > 0 {
		return &ErrNameLeak{Names: leaked}
	}
	return nil
}
