// Package types provides type definitions for structured data used throughout the news-agent system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "time"

// StageError records a non-fatal failure absorbed at a stage boundary.
// The pipeline accumulates these; they are never cleared during a run.
type StageError struct {
	Stage   string `json:"stage"`
	Source  string `json:"source,omitempty"` // provider name, article URL, etc.
	Message string `json:"message"`
}

// PipelineResult is the terminal output of one pipeline run
type PipelineResult struct {
	Topic       string `json:"topic"`
	SummaryText string `json:"summary_text"`
	// CitedArticles are the articles actually fed to the synthesizer,
	// sorted by descending credibility score
	CitedArticles []Article      `json:"cited_articles"`
	Metrics       map[string]int `json:"metrics"`
	Errors        []StageError   `json:"errors,omitempty"`
	Elapsed       time.Duration  `json:"elapsed"`
}

// Degraded reports whether the run completed with absorbed failures.
func (r *PipelineResult) Degraded() bool {
	return len(r.Errors) > 0
}
