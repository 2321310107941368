package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/jonathan/news-agent/internal/aggregator"
	"github.com/jonathan/news-agent/internal/analysis"
	"github.com/jonathan/news-agent/internal/config"
	"github.com/jonathan/news-agent/internal/extraction"
	"github.com/jonathan/news-agent/internal/observability"
	"github.com/jonathan/news-agent/internal/planning"
	"github.com/jonathan/news-agent/internal/providers"
	"github.com/jonathan/news-agent/internal/synthesis"
	"github.com/jonathan/news-agent/internal/types"
)

// Store persists run records. The db package implements it; a nil Store
// disables persistence.
type Store interface {
	CreateRun(ctx context.Context, topic string) (string, error)
	SaveResult(ctx context.Context, runID string, result *types.PipelineResult) error
	CompleteRun(ctx context.Context, runID string, status string) error
}

// Runner wires the stages together for one or more runs.
type Runner struct {
	cfg       config.Config
	planner   *planning.Planner
	clients   []providers.SourceClient
	extractor *extraction.Extractor
	analyzer  *analysis.Analyzer
	synth     synthesis.Synthesizer
	store     Store
	printer   *observability.Printer
}

// NewRunner assembles a Runner. clients must be non-empty; store and printer
// may be nil.
func NewRunner(
	cfg config.Config,
	planner *planning.Planner,
	clients []providers.SourceClient,
	extractor *extraction.Extractor,
	analyzer *analysis.Analyzer,
	synth synthesis.Synthesizer,
	store Store,
	printer *observability.Printer,
) *Runner {
	return &Runner{
		cfg:       cfg,
		planner:   planner,
		clients:   clients,
		extractor: extractor,
		analyzer:  analyzer,
		synth:     synth,
		store:     store,
		printer:   printer,
	}
}

// Run executes the full pipeline for a topic. A run fails only on invalid
// input, every source being unavailable, or synthesis failure; everything
// else degrades into the result's Errors. When the run deadline expires
// mid-flight, the partial result accumulated so far is returned.
func (r *Runner) Run(ctx context.Context, topic string) (*types.PipelineResult, error) {
	if len(r.clients) == 0 {
		return nil, fmt.Errorf("no source clients configured")
	}

	if r.cfg.TimeoutMS > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(r.cfg.TimeoutMS)*time.Millisecond)
		defer cancel()
	}

	state := NewState(topic)

	runID := ""
	if r.store != nil {
		id, err := r.store.CreateRun(ctx, topic)
		if err != nil {
			state.Absorb(types.StageError{Stage: "persist", Message: fmt.Sprintf("create run: %v", err)})
		} else {
			runID = id
		}
	}

	// Planning
	state.Stage = StagePlanning
	r.printer.StageBanner("Planning queries")
	plan, planDiags, err := r.planner.Plan(ctx, topic)
	if err != nil {
		return r.fail(ctx, state, runID, err)
	}
	state.Plan = plan
	state.Absorb(planDiags...)
	r.printer.QueryPlan(plan)

	// Searching
	state.Stage = StageSearching
	r.printer.StageBanner("Searching sources")
	searchRes, err := aggregator.Search(ctx, r.clients, plan.Variations, aggregator.Options{
		Concurrency:    r.cfg.ConcurrencyLimit,
		TitleThreshold: r.cfg.DedupeTitleThreshold,
		MaxArticles:    r.cfg.MaxArticles,
		TierFor: func(sourceName string) types.SourceTier {
			return analysis.TierFor(r.cfg.TierTable, sourceName)
		},
		Verbose: r.cfg.Verbose,
	})
	if err != nil {
		return r.fail(ctx, state, runID, err)
	}
	state.Candidates = searchRes.Articles
	state.Absorb(searchRes.Errors...)
	state.Count(MetricArticlesFound, searchRes.Found)
	state.Count(MetricDuplicatesCollapsed, searchRes.Duplicates)
	state.Count(MetricProviderErrors, len(searchRes.Errors))
	r.printer.Candidates(state.Candidates)

	if ctx.Err() != nil {
		return r.partial(state, runID)
	}

	// Extracting
	state.Stage = StageExtracting
	r.printer.StageBanner("Extracting full text")
	extracted, extractDiags := r.extractor.ExtractAll(ctx, state.Candidates, r.cfg.ConcurrencyLimit)
	state.Candidates = extracted
	state.Absorb(extractDiags...)
	for _, article := range extracted {
		switch article.ExtractionStatus {
		case types.ExtractionSuccess:
			state.Count(MetricArticlesExtracted, 1)
		case types.ExtractionFailed:
			state.Count(MetricExtractionFailures, 1)
		}
	}

	if ctx.Err() != nil {
		return r.partial(state, runID)
	}

	// Analyzing
	state.Stage = StageAnalyzing
	r.printer.StageBanner("Scoring credibility")
	state.Candidates = r.analyzer.AnalyzeBatch(state.Candidates)
	state.Count(MetricArticlesAnalyzed, len(state.Candidates))
	r.printer.Scored(state.Candidates)

	if ctx.Err() != nil {
		return r.partial(state, runID)
	}

	// Synthesizing
	state.Stage = StageSynthesizing
	r.printer.StageBanner("Synthesizing summary")
	cited := selectForSynthesis(state.Candidates, r.cfg.TopN)
	state.Count(MetricArticlesCited, len(cited))

	summary, err := r.synth.Synthesize(ctx, topic, cited)
	if err != nil {
		if ctx.Err() != nil {
			return r.partial(state, runID)
		}
		return r.fail(ctx, state, runID, err)
	}

	state.Stage = StageDone
	result := state.Result(summary, cited)
	r.printer.Metrics(result.Metrics)
	r.persist(ctx, runID, result, string(StageDone))
	return result, nil
}

// selectForSynthesis keeps the top n ranked articles that carry text. Rank
// order is already descending credibility.
func selectForSynthesis(articles []types.Article, n int) []types.Article {
	if n <= 0 {
		n = len(articles)
	}
	out := make([]types.Article, 0, n)
	for _, article := range articles {
		if !article.HasText() {
			continue
		}
		out = append(out, article)
		if len(out) == n {
			break
		}
	}
	return out
}

// partial finalizes a run cut short by the deadline: whatever accumulated is
// returned as a degraded result rather than an error.
func (r *Runner) partial(state *ExecutionState, runID string) (*types.PipelineResult, error) {
	state.Absorb(types.StageError{
		Stage:   string(state.Stage),
		Message: "run deadline exceeded; returning partial results",
	})
	state.Stage = StageDone
	result := state.Result("", state.Candidates)
	r.persist(context.Background(), runID, result, "partial")
	return result, nil
}

// fail records the terminal failure and propagates it.
func (r *Runner) fail(ctx context.Context, state *ExecutionState, runID string, err error) (*types.PipelineResult, error) {
	state.Stage = StageFailed
	if r.store != nil && runID != "" {
		if perr := r.store.CompleteRun(ctx, runID, string(StageFailed)); perr != nil && r.cfg.Verbose {
			state.Absorb(types.StageError{Stage: "persist", Message: perr.Error()})
		}
	}
	return nil, err
}

func (r *Runner) persist(ctx context.Context, runID string, result *types.PipelineResult, status string) {
	if r.store == nil || runID == "" {
		return
	}
	if err := r.store.SaveResult(ctx, runID, result); err != nil {
		result.Errors = append(result.Errors, types.StageError{Stage: "persist", Message: err.Error()})
		return
	}
	if err := r.store.CompleteRun(ctx, runID, status); err != nil {
		result.Errors = append(result.Errors, types.StageError{Stage: "persist", Message: err.Error()})
	}
}
