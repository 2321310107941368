// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/news-agent/internal/types"
)

// ScoreWeights are the fixed weights of the three credibility sub-scores.
// They must sum to 1.0.
type ScoreWeights struct {
	Tier    float64 `json:"tier" validate:"gte=0,lte=1"`
	Recency float64 `json:"recency" validate:"gte=0,lte=1"`
	Content float64 `json:"content" validate:"gte=0,lte=1"`
}

// Config represents the run configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Pipeline limits
	MaxArticles      int `json:"max_articles,omitempty" validate:"gte=0"`      // Cap on candidate articles after dedup
	TopN             int `json:"top_n,omitempty" validate:"gte=0"`             // Articles fed to the synthesizer
	ConcurrencyLimit int `json:"concurrency_limit,omitempty" validate:"gte=0"` // Bound on parallel provider/extraction calls
	TimeoutMS        int `json:"timeout_ms,omitempty" validate:"gte=0"`        // Overall run deadline in milliseconds

	// Scoring
	TierTable            map[string]types.SourceTier `json:"tier_table,omitempty"`
	ScoreWeights         *ScoreWeights               `json:"score_weights,omitempty"`
	DedupeTitleThreshold float64                     `json:"dedupe_title_threshold,omitempty" validate:"gte=0,lte=1"`

	// Provider credentials
	NewsAPIKey      string `json:"news_api_key,omitempty"`
	GNewsAPIKey     string `json:"gnews_api_key,omitempty"`
	GoogleSearchKey string `json:"google_search_key,omitempty"`
	GoogleSearchCX  string `json:"google_search_cx,omitempty"`

	// LLM credentials (planner expansion and synthesis)
	GeminiAPIKey string `json:"gemini_api_key,omitempty"`

	// Behavior
	UseBrowser  bool   `json:"use_browser,omitempty"` // Headless browser fallback for anti-scrape pages
	Verbose     bool   `json:"verbose,omitempty"`     // Print detailed debug information
	DatabaseURL string `json:"database_url,omitempty"`
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

var validate = validator.New()

// Validate checks that the configuration has valid values.
// Required fields are not checked here; they are enforced after flag merging.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	if c.ScoreWeights != nil {
		sum := c.ScoreWeights.Tier + c.ScoreWeights.Recency + c.ScoreWeights.Content
		if math.Abs(sum-1.0) > 1e-9 {
			return fmt.Errorf("config error: score weights must sum to 1.0 (got %.3f)", sum)
		}
	}

	for source, tier := range c.TierTable {
		switch tier {
		case types.Tier1, types.Tier2, types.Tier3, types.TierUnknown:
		default:
			return fmt.Errorf("config error: unknown tier %q for source %q", tier, source)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with zero-valued fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.MaxArticles == 0 {
		result.MaxArticles = defaults.MaxArticles
	}
	if result.TopN == 0 {
		result.TopN = defaults.TopN
	}
	if result.ConcurrencyLimit == 0 {
		result.ConcurrencyLimit = defaults.ConcurrencyLimit
	}
	if result.TimeoutMS == 0 {
		result.TimeoutMS = defaults.TimeoutMS
	}
	if result.DedupeTitleThreshold == 0 {
		result.DedupeTitleThreshold = defaults.DedupeTitleThreshold
	}
	if result.TierTable == nil {
		result.TierTable = defaults.TierTable
	}
	if result.ScoreWeights == nil {
		result.ScoreWeights = defaults.ScoreWeights
	}
	if result.NewsAPIKey == "" {
		result.NewsAPIKey = defaults.NewsAPIKey
	}
	if result.GNewsAPIKey == "" {
		result.GNewsAPIKey = defaults.GNewsAPIKey
	}
	if result.GoogleSearchKey == "" {
		result.GoogleSearchKey = defaults.GoogleSearchKey
	}
	if result.GoogleSearchCX == "" {
		result.GoogleSearchCX = defaults.GoogleSearchCX
	}
	if result.GeminiAPIKey == "" {
		result.GeminiAPIKey = defaults.GeminiAPIKey
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// DefaultConfig returns the built-in defaults applied after config file and
// flag merging.
func DefaultConfig() Config {
	return Config{
		MaxArticles:          20,
		TopN:                 5,
		ConcurrencyLimit:     4,
		TimeoutMS:            60000,
		DedupeTitleThreshold: 0.92,
		TierTable:            DefaultTierTable(),
		ScoreWeights:         &ScoreWeights{Tier: 0.4, Recency: 0.2, Content: 0.4},
	}
}
