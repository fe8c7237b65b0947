package model

import (
	"os"
	"path/filepath"
	"time"
)

// ScoringConfig is the immutable configuration passed into every scoring run
type ScoringConfig struct {
	MinScoreThreshold     int  `json:"min_score_threshold" yaml:"min_score_threshold" mapstructure:"min_score_threshold"`
	MaxRecommendations    int  `json:"max_recommendations" yaml:"max_recommendations" mapstructure:"max_recommendations"`
	AverageWindowDays     int  `json:"average_window_days" yaml:"average_window_days" mapstructure:"average_window_days"`
	NegativeWeightPenalty int  `json:"negative_weight_penalty" yaml:"negative_weight_penalty" mapstructure:"negative_weight_penalty"` // points removed per weight unit of a met negative condition; zero means the default
	ExcludeEssentials     bool `json:"exclude_essentials" yaml:"exclude_essentials" mapstructure:"exclude_essentials"`                // essentials must pass the score threshold like any other candidate
}

// DefaultScoringConfig returns the documented defaults
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		MinScoreThreshold:     60,
		MaxRecommendations:    25,
		AverageWindowDays:     14,
		NegativeWeightPenalty: 5,
	}
}

// Normalized fills zero or out-of-range values with defaults, so a config that sets
// only the threshold, limit and window still scores with the documented penalty
// and keeps essential candidates
func (c ScoringConfig) Normalized() ScoringConfig {
	def := DefaultScoringConfig()
	if c.MinScoreThreshold < 0 || c.MinScoreThreshold > 100 {
		c.MinScoreThreshold = def.MinScoreThreshold
	}
	if c.MaxRecommendations <= 0 {
		c.MaxRecommendations = def.MaxRecommendations
	}
	if c.AverageWindowDays <= 0 {
		c.AverageWindowDays = def.AverageWindowDays
	}
	if c.NegativeWeightPenalty <= 0 {
		c.NegativeWeightPenalty = def.NegativeWeightPenalty
	}
	return c
}

// Config is the complete application configuration
type Config struct {
	Scoring      ScoringConfig      `yaml:"scoring" mapstructure:"scoring"`
	Source       SourceConfig       `yaml:"source" mapstructure:"source"`
	Catalog      CatalogConfig      `yaml:"catalog" mapstructure:"catalog"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
	LLM          LLMConfig          `yaml:"llm" mapstructure:"llm"`
}

// SourceConfig selects where snapshots are aggregated from
type SourceConfig struct {
	Kind       string        `yaml:"kind" mapstructure:"kind"`         // file or http
	DataDir    string        `yaml:"data_dir" mapstructure:"data_dir"` // file source: <data_dir>/<user>.json
	BaseURL    string        `yaml:"base_url" mapstructure:"base_url"` // http source
	APIKey     string        `yaml:"api_key,omitempty" mapstructure:"api_key"`
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent  string        `yaml:"user_agent" mapstructure:"user_agent"`
	HTTPProxy  string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy    string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// CatalogConfig points at the candidate catalog
type CatalogConfig struct {
	Path string `yaml:"path" mapstructure:"path"` // empty means the embedded sample catalog
}

// CacheConfig controls the result cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// ConcurrencyConfig controls batch parallelism
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// RateLimitingConfig limits requests against the HTTP source
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" mapstructure:"verbose"`
	JSONLogs      bool `yaml:"json_logs" mapstructure:"json_logs"`
	IncludeFooter bool `yaml:"include_footer" mapstructure:"include_footer"`
}

// LLMConfig configures the optional narrative summary
type LLMConfig struct {
	Provider  string `yaml:"provider" mapstructure:"provider"` // openai, anthropic, ollama or empty (disabled)
	Model     string `yaml:"model" mapstructure:"model"`
	APIKey    string `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL   string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout   int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	Strict    bool   `yaml:"strict" mapstructure:"strict"`
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Scoring: DefaultScoringConfig(),
		Source: SourceConfig{
			Kind:      "file",
			DataDir:   "./data",
			Timeout:   15 * time.Second,
			UserAgent: "supplematch/0.1",
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       defaultCacheDir(),
			MemoryTTL: 10 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 5,
			BurstSize:         5,
		},
		Output: OutputConfig{
			IncludeFooter: true,
		},
		LLM: LLMConfig{
			Timeout:   30,
			Strict:    true,
			MaxTokens: 800,
		},
	}
}

func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ".supplematch-cache"
	}
	return filepath.Join(dir, "supplematch")
}
