package domain

import "time"

// RawReview is one unsanitized, unranked observation of a review node.
type RawReview struct {
	ID               string
	AuthorName       string
	AuthorProfileURL string
	AuthorAvatarURL  string
	Rating           int // 0 when the page did not expose it
	DateText         string
	Text             string
	ReviewURL        string
}

// SanitizedReview has the same shape as RawReview with markup removed from free text.
type SanitizedReview RawReview

// AuthoritativeReview is a review returned by the Places details API.
type AuthoritativeReview struct {
	AuthorName string
	Rating     int
	Text       string
	Timestamp  int64
}

// MatchBasis records which rule tied a scraped review to an authoritative one.
type MatchBasis string

const (
	MatchNone   MatchBasis = ""
	MatchText   MatchBasis = "text"
	MatchAuthor MatchBasis = "author"
)

// VerifiedReview is a sanitized review after the matching pass.
type VerifiedReview struct {
	SanitizedReview
	Verified   bool
	Timestamp  int64 // epoch seconds, zero unless matched
	MatchedBy  MatchBasis
	Similarity float64
}

// HasTimestamp reports whether an authoritative timestamp was attached.
func (v VerifiedReview) HasTimestamp() bool {
	return v.Verified && v.Timestamp > 0
}

// ReviewJSON is the display shape consumed by the presentation layer.
type ReviewJSON struct {
	ID               string `json:"id"`
	AuthorName       string `json:"authorName"`
	AuthorProfileURL string `json:"authorProfileUrl,omitempty"`
	AuthorAvatarURL  string `json:"authorAvatarUrl,omitempty"`
	Rating           int    `json:"rating"`
	DateText         string `json:"dateText"`
	Text             string `json:"text"`
	ReviewURL        string `json:"reviewUrl,omitempty"`
	Verified         bool   `json:"verified"`
	Timestamp        int64  `json:"timestamp,omitempty"`
}

// OutputArtifact is the display data file.
type OutputArtifact struct {
	PlaceURL  string       `json:"placeUrl"`
	FetchedAt string       `json:"fetchedAt"`
	Reviews   []ReviewJSON `json:"reviews"`
}

// AuditItem describes one displayed review without repeating its text.
type AuditItem struct {
	AuthorName string     `json:"authorName"`
	Rating     int        `json:"rating"`
	Verified   bool       `json:"verified"`
	MatchedBy  MatchBasis `json:"matchedBy,omitempty"`
	Similarity float64    `json:"similarity,omitempty"`
	TextHash   string     `json:"textHash"`
}

// AuditArtifact is the provenance record written next to the display data.
type AuditArtifact struct {
	PlaceURL        string      `json:"placeUrl"`
	FetchedAt       string      `json:"fetchedAt"`
	RunID           string      `json:"runId"`
	APIReviewsCount int         `json:"apiReviewsCount"`
	DisplayedCount  int         `json:"displayedCount"`
	Discrepancies   int         `json:"discrepancies"`
	Items           []AuditItem `json:"items"`
}

// RunSummary carries milestone counts for logs, notifications and metrics.
type RunSummary struct {
	RunID         string
	PlaceURL      string
	RawCount      int
	APICount      int
	VerifiedCount int
	SelectedCount int
	// NewCount is how many selected reviews no earlier run displayed; -1 when
	// no history is available.
	NewCount   int
	StartedAt  time.Time
	FinishedAt time.Time
}

// Duration is the wall time of the run.
func (s RunSummary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}
