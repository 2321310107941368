// Package types provides type definitions for structured data used throughout the news-agent system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "time"

// ExtractionStatus tracks whether full-text extraction has been attempted for an article
type ExtractionStatus string

// Extraction status values
const (
	// ExtractionNotAttempted means the article has not been through the extraction stage yet
	ExtractionNotAttempted ExtractionStatus = "not_attempted"
	// ExtractionSuccess means full text was fetched and passed the quality gate
	ExtractionSuccess ExtractionStatus = "success"
	// ExtractionFailed means extraction failed; Snippet is the degraded substitute text
	ExtractionFailed ExtractionStatus = "failed"
)

// SourceTier classifies the trust level of a news outlet
type SourceTier string

// Source tier values, from most to least trusted
const (
	// Tier1 covers established wire services and major outlets
	Tier1 SourceTier = "tier1"
	// Tier2 covers major national papers and business press
	Tier2 SourceTier = "tier2"
	// Tier3 covers reputable specialist and tech outlets
	Tier3 SourceTier = "tier3"
	// TierUnknown is assigned when the outlet is not in the tier table
	TierUnknown SourceTier = "unknown"
)

// Article represents one discovered news item as it moves through the pipeline.
// URL uniquely identifies an article within a run (after normalization).
type Article struct {
	URL         string     `json:"url"`
	Title       string     `json:"title"`
	SourceName  string     `json:"source_name"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Snippet     string     `json:"snippet,omitempty"`
	// Provider is the name of the SourceClient that surfaced this article
	Provider string `json:"provider,omitempty"`

	// Populated by the extraction stage
	FullText         string           `json:"full_text,omitempty"`
	ExtractionStatus ExtractionStatus `json:"extraction_status"`

	// Populated by the analysis stage
	CredibilityScore *float64   `json:"credibility_score,omitempty"`
	SourceTier       SourceTier `json:"source_tier,omitempty"`
	Rank             int        `json:"rank,omitempty"`
}

// BodyText returns the best text available for downstream stages:
// the extracted full text when present, otherwise the search snippet.
func (a *Article) BodyText() string {
	if a.FullText != "" {
		return a.FullText
	}
	return a.Snippet
}

// HasText reports whether the article carries any usable text at all.
func (a *Article) HasText() bool {
	return a.BodyText() != ""
}

// MetadataCompleteness counts populated descriptive fields. The dedup merge
// keeps the record with the higher count when two articles collide.
func (a *Article) MetadataCompleteness() int {
	count := 0
	if a.Title != "" {
		count++
	}
	if a.SourceName != "" {
		count++
	}
	if a.PublishedAt != nil {
		count++
	}
	if a.Snippet != "" {
		count++
	}
	if a.FullText != "" {
		count++
	}
	return count
}
