package config

import "github.com/jonathan/news-agent/internal/types"

// DefaultTierTable returns the built-in source trust table. Keys are matched
// as case-insensitive substrings of an article's source name, so "BBC News"
// matches the "bbc" entry. Users can replace the table wholesale via config.
func DefaultTierTable() map[string]types.SourceTier {
	return map[string]types.SourceTier{
		// Wire services and major international outlets
		"reuters":             types.Tier1,
		"associated press":    types.Tier1,
		"apnews":              types.Tier1,
		"bbc":                 types.Tier1,
		"guardian":            types.Tier1,
		"financial times":     types.Tier1,
		"wall street journal": types.Tier1,
		"wsj":                 types.Tier1,

		// Major national papers and business press
		"new york times":  types.Tier2,
		"nytimes":         types.Tier2,
		"washington post": types.Tier2,
		"economist":       types.Tier2,
		"bloomberg":       types.Tier2,

		// Reputable specialist and tech outlets
		"techcrunch":   types.Tier3,
		"ars technica": types.Tier3,
		"arstechnica":  types.Tier3,
		"wired":        types.Tier3,
		"the verge":    types.Tier3,
	}
}
