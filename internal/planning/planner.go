// Package planning turns a free-form topic into concrete search query
// variations. Planning itself never fails on valid input; the optional LLM
// expansion degrades to the heuristic variations when unavailable.
package planning

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/jonathan/news-agent/internal/llm"
	"github.com/jonathan/news-agent/internal/prompts"
	"github.com/jonathan/news-agent/internal/schemas"
	"github.com/jonathan/news-agent/internal/types"
)

// maxTopicLength bounds topic size; anything longer is not a search topic.
const maxTopicLength = 200

// maxLLMVariations caps how many extra queries the LLM may contribute.
const maxLLMVariations = 2

// simplifiedWordCount is how many leading words the simplified variation keeps.
const simplifiedWordCount = 3

// InvalidTopicError is returned when the topic is empty or unusable.
type InvalidTopicError struct {
	Reason string
}

func (e *InvalidTopicError) Error() string {
	return fmt.Sprintf("invalid topic: %s", e.Reason)
}

// Planner derives query variations from a topic. The LLM client is optional;
// when nil, only heuristic variations are produced.
type Planner struct {
	llmClient llm.Client
	verbose   bool
}

// NewPlanner creates a Planner. Pass a nil client to disable LLM expansion.
func NewPlanner(llmClient llm.Client, verbose bool) *Planner {
	return &Planner{llmClient: llmClient, verbose: verbose}
}

// Plan derives the query plan for a topic. It returns *InvalidTopicError for
// empty or over-long topics and otherwise always yields at least one
// variation. LLM expansion failures are reported through the returned
// diagnostics, never as an error.
func (p *Planner) Plan(ctx context.Context, topic string) (*types.QueryPlan, []types.StageError, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, nil, &InvalidTopicError{Reason: "topic is empty"}
	}
	if len(topic) > maxTopicLength {
		return nil, nil, &InvalidTopicError{Reason: fmt.Sprintf("topic exceeds %d characters", maxTopicLength)}
	}

	plan := &types.QueryPlan{
		Topic:      topic,
		Intent:     classifyIntent(topic),
		Variations: heuristicVariations(topic),
	}

	var diags []types.StageError
	if p.llmClient != nil {
		extra, err := p.expandWithLLM(ctx, topic)
		if err != nil {
			diags = append(diags, types.StageError{
				Stage:   "plan",
				Source:  "llm",
				Message: fmt.Sprintf("query expansion unavailable: %v", err),
			})
		} else {
			plan.Variations = appendUnique(plan.Variations, extra)
		}
	}

	if p.verbose {
		log.Printf("[PLAN] intent=%s variations=%d", plan.Intent, len(plan.Variations))
	}

	return plan, diags, nil
}

// classifyIntent detects coarse intent from signal words in the topic.
func classifyIntent(topic string) types.QueryIntent {
	lower := strings.ToLower(topic)
	for _, word := range []string{"latest", "today", "now", "breaking", "just happened"} {
		if strings.Contains(lower, word) {
			return types.IntentBreakingNews
		}
	}
	for _, word := range []string{"trend", "analysis", "why", "how", "impact"} {
		if strings.Contains(lower, word) {
			return types.IntentAnalysis
		}
	}
	return types.IntentGeneral
}

// heuristicVariations produces the rule-based query set: the topic itself,
// a news-framed variant, and simplified/broadened forms for longer topics.
func heuristicVariations(topic string) []types.QueryVariation {
	variations := []types.QueryVariation{
		{Query: topic, Strategy: types.StrategyDirect},
		{Query: topic + " latest news", Strategy: types.StrategyContextual},
	}

	words := strings.Fields(topic)
	if len(words) > simplifiedWordCount {
		simplified := strings.Join(words[:simplifiedWordCount], " ")
		variations = append(variations, types.QueryVariation{
			Query:    simplified,
			Strategy: types.StrategySimplified,
		})
	}

	if broadened := stripQualifiers(topic); broadened != "" && !strings.EqualFold(broadened, topic) {
		variations = append(variations, types.QueryVariation{
			Query:    broadened,
			Strategy: types.StrategyBroadened,
		})
	}

	return variations
}

// qualifierWords narrow a topic without adding search recall.
var qualifierWords = map[string]bool{
	"latest":   true,
	"recent":   true,
	"breaking": true,
	"today":    true,
	"new":      true,
	"current":  true,
}

// stripQualifiers removes narrowing qualifier words, returning "" when
// nothing would remain.
func stripQualifiers(topic string) string {
	var kept []string
	for _, word := range strings.Fields(topic) {
		if !qualifierWords[strings.ToLower(word)] {
			kept = append(kept, word)
		}
	}
	return strings.Join(kept, " ")
}

// expandWithLLM asks the model for additional query phrasings and validates
// the response against the embedded plan schema before trusting it.
func (p *Planner) expandWithLLM(ctx context.Context, topic string) ([]types.QueryVariation, error) {
	template := prompts.MustGet("planning.json", "expand-queries")
	prompt := prompts.Format(template, map[string]string{
		"Topic":         topic,
		"MaxVariations": strconv.Itoa(maxLLMVariations),
	})

	jsonResp, err := p.llmClient.GenerateJSON(ctx, prompt, llm.TierLite)
	if err != nil {
		return nil, fmt.Errorf("LLM generation failed: %w", err)
	}

	jsonResp = llm.CleanJSONBlock(jsonResp)
	if err := schemas.ValidateBytes("plan_response.schema.json", []byte(jsonResp)); err != nil {
		return nil, fmt.Errorf("LLM response rejected: %w", err)
	}

	var parsed struct {
		Queries []string `json:"queries"`
	}
	if err := json.Unmarshal([]byte(jsonResp), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse expansion response: %w", err)
	}

	var variations []types.QueryVariation
	for _, q := range parsed.Queries {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		variations = append(variations, types.QueryVariation{
			Query:    q,
			Strategy: types.StrategyLLM,
		})
		if len(variations) >= maxLLMVariations {
			break
		}
	}
	return variations, nil
}

// appendUnique adds variations whose query strings are not already present
// (case-insensitive).
func appendUnique(existing, extra []types.QueryVariation) []types.QueryVariation {
	seen := make(map[string]bool, len(existing))
	for _, v := range existing {
		seen[strings.ToLower(v.Query)] = true
	}
	for _, v := range extra {
		key := strings.ToLower(v.Query)
		if !seen[key] {
			existing = append(existing, v)
			seen[key] = true
		}
	}
	return existing
}
