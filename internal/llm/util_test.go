package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONBlock_JSONFence(t *testing.T) {
	input := "```json\n{\"queries\": [\"a\"]}\n```"

	assert.Equal(t, `{"queries": ["a"]}`, CleanJSONBlock(input))
}

func TestCleanJSONBlock_GenericFence(t *testing.T) {
	input := "```\n{\"queries\": [\"a\"]}\n```"

	assert.Equal(t, `{"queries": ["a"]}`, CleanJSONBlock(input))
}

func TestCleanJSONBlock_PlainJSONUntouched(t *testing.T) {
	input := `{"queries": ["a"]}`

	assert.Equal(t, input, CleanJSONBlock(input))
}

func TestCleanJSONBlock_Whitespace(t *testing.T) {
	assert.Equal(t, `{}`, CleanJSONBlock("  \n{}\n  "))
}

func TestGetModel_TierFallback(t *testing.T) {
	cfg := &Config{
		Provider: ProviderGemini,
		Models:   map[ModelTier]string{TierStandard: "gemini-2.5-flash"},
	}

	// Unconfigured tiers fall back to standard
	assert.Equal(t, "gemini-2.5-flash", cfg.GetModel(TierAdvanced))
	assert.Equal(t, "gemini-2.5-flash", cfg.GetModel(TierLite))
}

func TestGetModel_Defaults(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "gemini-2.5-flash-lite", cfg.GetModel(TierLite))
	assert.Equal(t, "gemini-2.5-pro", cfg.GetModel(TierAdvanced))
}

func TestGetModel_Empty(t *testing.T) {
	cfg := &Config{Provider: ProviderGemini}

	assert.Equal(t, "", cfg.GetModel(TierAdvanced))
}
