// Package pipeline orchestrates a news run through its stages: planning,
// searching, extracting, analyzing, synthesizing. Stage failures are absorbed
// into the run state wherever a degraded result is still useful; only invalid
// input, a total source outage, or a synthesis failure aborts a run.
package pipeline

import (
	"time"

	"github.com/jonathan/news-agent/internal/types"
)

// Stage identifies where a run currently is.
type Stage string

// Pipeline stages in execution order, plus the two terminal states.
const (
	StagePlanning     Stage = "planning"
	StageSearching    Stage = "searching"
	StageExtracting   Stage = "extracting"
	StageAnalyzing    Stage = "analyzing"
	StageSynthesizing Stage = "synthesizing"
	StageDone         Stage = "done"
	StageFailed       Stage = "failed"
)

// Metric keys accumulated during a run.
const (
	MetricArticlesFound       = "articles_found"
	MetricDuplicatesCollapsed = "duplicates_collapsed"
	MetricProviderErrors      = "provider_errors"
	MetricArticlesExtracted   = "articles_extracted"
	MetricExtractionFailures  = "extraction_failures"
	MetricArticlesAnalyzed    = "articles_analyzed"
	MetricArticlesCited       = "articles_cited"
)

// ExecutionState carries everything a run has accumulated so far. Stages
// mutate it sequentially; concurrent work within a stage merges results
// back before the stage advances.
type ExecutionState struct {
	Topic      string
	Stage      Stage
	Plan       *types.QueryPlan
	Candidates []types.Article
	Errors     []types.StageError
	Metrics    map[string]int
	StartedAt  time.Time
}

// NewState initializes run state for a topic.
func NewState(topic string) *ExecutionState {
	return &ExecutionState{
		Topic:     topic,
		Stage:     StagePlanning,
		Metrics:   make(map[string]int),
		StartedAt: time.Now(),
	}
}

// Absorb records non-fatal diagnostics on the state.
func (s *ExecutionState) Absorb(errs ...types.StageError) {
	s.Errors = append(s.Errors, errs...)
}

// Count adds n to a metric.
func (s *ExecutionState) Count(metric string, n int) {
	s.Metrics[metric] += n
}

// Result materializes the terminal PipelineResult from the state.
func (s *ExecutionState) Result(summary string, cited []types.Article) *types.PipelineResult {
	return &types.PipelineResult{
		Topic:         s.Topic,
		SummaryText:   summary,
		CitedArticles: cited,
		Metrics:       s.Metrics,
		Errors:        s.Errors,
		Elapsed:       time.Since(s.StartedAt),
	}
}
