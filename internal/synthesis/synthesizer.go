// Package synthesis turns the top-ranked articles into a single attributed
// summary. Synthesis failure is fatal to a run: without a summary there is
// no product.
package synthesis

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/jonathan/news-agent/internal/llm"
	"github.com/jonathan/news-agent/internal/prompts"
	"github.com/jonathan/news-agent/internal/types"
)

// maxArticleChars bounds how much of each article body goes into the prompt,
// keeping the request inside the model context window.
const maxArticleChars = 4000

// SynthesisError is returned when the summary could not be produced.
type SynthesisError struct {
	Reason string
	Cause  error
}

func (e *SynthesisError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("synthesis failed: %s: %v", e.Reason, e.Cause)
	}
	return fmt.Sprintf("synthesis failed: %s", e.Reason)
}

func (e *SynthesisError) Unwrap() error {
	return e.Cause
}

// Synthesizer produces a summary from scored articles.
type Synthesizer interface {
	Synthesize(ctx context.Context, topic string, articles []types.Article) (string, error)
}

// GeminiSynthesizer implements Synthesizer on the advanced model tier.
type GeminiSynthesizer struct {
	client  llm.Client
	verbose bool
}

// NewGeminiSynthesizer creates a Synthesizer backed by the given LLM client.
func NewGeminiSynthesizer(client llm.Client, verbose bool) *GeminiSynthesizer {
	return &GeminiSynthesizer{client: client, verbose: verbose}
}

// Synthesize builds the article digest prompt and asks the model for the
// summary. It returns *SynthesisError on empty input, generation failure,
// or a blank response.
func (s *GeminiSynthesizer) Synthesize(ctx context.Context, topic string, articles []types.Article) (string, error) {
	if len(articles) == 0 {
		return "", &SynthesisError{Reason: "no articles to synthesize"}
	}

	template := prompts.MustGet("synthesis.json", "summarize-articles")
	prompt := prompts.Format(template, map[string]string{
		"Topic":    topic,
		"Articles": formatArticles(articles),
	})

	if s.verbose {
		log.Printf("[SYNTHESIZE] %d articles, prompt %d chars", len(articles), len(prompt))
	}

	summary, err := s.client.GenerateContent(ctx, prompt, llm.TierAdvanced)
	if err != nil {
		return "", &SynthesisError{Reason: "LLM generation failed", Cause: err}
	}

	summary = strings.TrimSpace(summary)
	if summary == "" {
		return "", &SynthesisError{Reason: "model returned an empty summary"}
	}

	return summary, nil
}

// formatArticles renders the articles as a numbered digest with source
// attribution metadata the prompt asks the model to cite.
func formatArticles(articles []types.Article) string {
	var sb strings.Builder
	for i, article := range articles {
		fmt.Fprintf(&sb, "--- Article %d ---\n", i+1)
		fmt.Fprintf(&sb, "Source: %s\n", article.SourceName)
		fmt.Fprintf(&sb, "Title: %s\n", article.Title)
		if article.PublishedAt != nil {
			fmt.Fprintf(&sb, "Published: %s\n", article.PublishedAt.Format("2006-01-02"))
		}
		if article.CredibilityScore != nil {
			fmt.Fprintf(&sb, "Credibility: %.1f/100\n", *article.CredibilityScore)
		}

		body := article.BodyText()
		if len(body) > maxArticleChars {
			body = body[:maxArticleChars] + "..."
		}
		fmt.Fprintf(&sb, "Content:\n%s\n\n", body)
	}
	return sb.String()
}
