// Package types provides type definitions for structured data used throughout the news-agent system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// QueryStrategy identifies which planning rule produced a query variation
type QueryStrategy string

// Query strategy values
const (
	// StrategyDirect is the user topic passed through unchanged
	StrategyDirect QueryStrategy = "direct"
	// StrategyContextual appends news framing to the topic
	StrategyContextual QueryStrategy = "contextual"
	// StrategySimplified keeps only the leading words of a long topic
	StrategySimplified QueryStrategy = "simplified"
	// StrategyBroadened strips narrowing qualifiers from the topic
	StrategyBroadened QueryStrategy = "broadened"
	// StrategyLLM marks a variation proposed by the language model
	StrategyLLM QueryStrategy = "llm"
)

// QueryVariation is a single concrete search string derived from the user
// topic. Immutable once created.
type QueryVariation struct {
	Query    string        `json:"query"`
	Strategy QueryStrategy `json:"strategy"`
}

// QueryIntent is a coarse classification of what the user is asking for
type QueryIntent string

// Query intent values
const (
	// IntentBreakingNews means the user wants the very latest developments
	IntentBreakingNews QueryIntent = "breaking_news"
	// IntentAnalysis means the user wants explanatory or trend coverage
	IntentAnalysis QueryIntent = "analysis"
	// IntentGeneral is the default when no signal words are present
	IntentGeneral QueryIntent = "general"
)

// QueryPlan is the output of the planning stage
type QueryPlan struct {
	Topic      string           `json:"topic"`
	Intent     QueryIntent      `json:"intent"`
	Variations []QueryVariation `json:"variations"`
}
