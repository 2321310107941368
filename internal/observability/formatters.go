// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jonathan/news-agent/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode. A nil Printer is valid
// and prints nothing.
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// StageBanner prints a single-line stage marker.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) StageBanner(title string) {
	if p == nil {
		return
	}
	fmt.Fprintf(p.out, "\n==> %s\n", title)
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// QueryPlan outputs the derived query variations with their strategies.
func (p *Printer) QueryPlan(plan *types.QueryPlan) {
	if p == nil || plan == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Topic:   %s\n", plan.Topic))
	sb.WriteString(fmt.Sprintf("Intent:  %s\n", plan.Intent))
	sb.WriteString("\n")
	sb.WriteString("Queries:\n")
	for _, v := range plan.Variations {
		query := v.Query
		if len(query) > 40 {
			query = query[:37] + "..."
		}
		sb.WriteString(fmt.Sprintf("  • %s (%s)\n", query, v.Strategy))
	}

	p.printBox("QUERY PLAN", strings.TrimSuffix(sb.String(), "\n"))
}

// Candidates outputs the deduplicated candidate articles found by search.
func (p *Printer) Candidates(articles []types.Article) {
	if p == nil || len(articles) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Unique candidates: %d\n\n", len(articles)))

	count := min(len(articles), maxItemsToShow)
	for i := 0; i < count; i++ {
		article := articles[i]
		title := article.Title
		if len(title) > 45 {
			title = title[:42] + "..."
		}
		sb.WriteString(fmt.Sprintf("• %s\n", title))
		sb.WriteString(fmt.Sprintf("  %s via %s\n", article.SourceName, article.Provider))
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(articles) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more articles", len(articles)-maxItemsToShow))
	}

	p.printBox("SEARCH CANDIDATES", sb.String())
}

// Scored outputs the ranked articles with their credibility breakdown.
func (p *Printer) Scored(articles []types.Article) {
	if p == nil || len(articles) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Articles scored: %d\n\n", len(articles)))

	count := min(len(articles), maxItemsToShow)
	for i := 0; i < count; i++ {
		article := articles[i]
		title := article.Title
		if len(title) > 45 {
			title = title[:42] + "..."
		}
		sb.WriteString(fmt.Sprintf("#%d  %s\n", article.Rank, title))
		if article.CredibilityScore != nil {
			sb.WriteString(fmt.Sprintf("    Score: %.1f (%s, %s)\n",
				*article.CredibilityScore, article.SourceTier, article.ExtractionStatus))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(articles) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more articles", len(articles)-maxItemsToShow))
	}

	p.printBox("SCORED ARTICLES", sb.String())
}

// Metrics outputs the run counters in stable order.
func (p *Printer) Metrics(metrics map[string]int) {
	if p == nil || len(metrics) == 0 {
		return
	}

	keys := make([]string, 0, len(metrics))
	for key := range metrics {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, key := range keys {
		sb.WriteString(fmt.Sprintf("%-24s %d\n", key, metrics[key]))
	}

	p.printBox("RUN METRICS", strings.TrimSuffix(sb.String(), "\n"))
}

// Diagnostics outputs the non-fatal failures absorbed during the run.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) Diagnostics(errs []types.StageError) {
	if p == nil {
		return
	}
	if len(errs) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "✅ NO STAGE FAILURES")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Absorbed %d failures:\n\n", len(errs)))

	for i, e := range errs {
		message := e.Message
		if len(message) > 45 {
			message = message[:42] + "..."
		}
		sb.WriteString(fmt.Sprintf("⚠ %s", e.Stage))
		if e.Source != "" {
			source := e.Source
			if len(source) > 35 {
				source = source[:32] + "..."
			}
			sb.WriteString(fmt.Sprintf(" (%s)", source))
		}
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("  %s\n", message))
		if i < len(errs)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("STAGE DIAGNOSTICS", sb.String())
}
