package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/news-agent/internal/types"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_Valid(t *testing.T) {
	path := writeTempConfig(t, `{
		"max_articles": 10,
		"top_n": 3,
		"concurrency_limit": 2,
		"timeout_ms": 30000,
		"news_api_key": "key-123"
	}`)

	cfg, err := LoadConfig(path)

	require.NoError(t, err)
	assert.Equal(t, 10, cfg.MaxArticles)
	assert.Equal(t, 3, cfg.TopN)
	assert.Equal(t, 2, cfg.ConcurrencyLimit)
	assert.Equal(t, "key-123", cfg.NewsAPIKey)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestLoadConfig_MalformedJSON(t *testing.T) {
	path := writeTempConfig(t, `{not json`)
	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestValidate_NegativeLimitRejected(t *testing.T) {
	cfg := &Config{MaxArticles: -1}
	assert.Error(t, cfg.Validate())
}

func TestValidate_WeightsMustSumToOne(t *testing.T) {
	cfg := &Config{ScoreWeights: &ScoreWeights{Tier: 0.5, Recency: 0.5, Content: 0.5}}
	assert.Error(t, cfg.Validate())

	cfg.ScoreWeights = &ScoreWeights{Tier: 0.4, Recency: 0.2, Content: 0.4}
	assert.NoError(t, cfg.Validate())
}

func TestValidate_UnknownTierRejected(t *testing.T) {
	cfg := &Config{TierTable: map[string]types.SourceTier{"example": "tier9"}}
	assert.Error(t, cfg.Validate())
}

func TestValidate_ThresholdRange(t *testing.T) {
	cfg := &Config{DedupeTitleThreshold: 1.5}
	assert.Error(t, cfg.Validate())
}

func TestMergeWithDefaults_FillsZeroValues(t *testing.T) {
	cfg := Config{TopN: 3}

	merged := cfg.MergeWithDefaults(DefaultConfig())

	assert.Equal(t, 3, merged.TopN) // explicit value wins
	assert.Equal(t, 20, merged.MaxArticles)
	assert.Equal(t, 4, merged.ConcurrencyLimit)
	assert.Equal(t, 60000, merged.TimeoutMS)
	assert.InDelta(t, 0.92, merged.DedupeTitleThreshold, 1e-9)
	assert.NotNil(t, merged.ScoreWeights)
	assert.NotEmpty(t, merged.TierTable)
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
}

func TestDefaultTierTable_KnownOutlets(t *testing.T) {
	table := DefaultTierTable()

	assert.Equal(t, types.Tier1, table["reuters"])
	assert.Equal(t, types.Tier1, table["bbc"])
	assert.Equal(t, types.Tier2, table["bloomberg"])
	assert.Equal(t, types.Tier3, table["techcrunch"])
}
