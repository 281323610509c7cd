package usecase

import (
	"html"

	"github.com/microcosm-cc/bluemonday"

	"ReviewsScanner/internal/domain"
)

// strictPolicy strips every tag and attribute. Its output is HTML-escaped,
// so SanitizeText decodes it back to plain text.
// Policies are safe for concurrent use once built.
var strictPolicy = bluemonday.StrictPolicy()

// Sanitize strips markup from the free-text fields. The input is not modified
// and sanitizing an already sanitized slice yields the same values.
func Sanitize(reviews []domain.RawReview) []domain.SanitizedReview {
	out := make([]domain.SanitizedReview, len(reviews))
	for i, r := range reviews {
		clean := domain.SanitizedReview(r)
		clean.AuthorName = SanitizeText(r.AuthorName)
		clean.DateText = SanitizeText(r.DateText)
		clean.Text = SanitizeText(r.Text)
		out[i] = clean
	}
	return out
}

// SanitizeAuthoritative applies the same policy to API reviews before they can
// replace scraped text.
func SanitizeAuthoritative(reviews []domain.AuthoritativeReview) []domain.AuthoritativeReview {
	out := make([]domain.AuthoritativeReview, len(reviews))
	for i, r := range reviews {
		r.AuthorName = SanitizeText(r.AuthorName)
		r.Text = SanitizeText(r.Text)
		out[i] = r
	}
	return out
}

// maxSanitizePasses bounds SanitizeText. Each pass removes a tag layer or
// decodes one level of character references; real input settles in two.
const maxSanitizePasses = 8

// SanitizeText is the single-field form of Sanitize. The result is plain
// text without markup or character references. Escaped markup such as
// "&lt;b&gt;" is decoded and stripped too, so a second call is a no-op.
func SanitizeText(s string) string {
	for range maxSanitizePasses {
		next := html.UnescapeString(strictPolicy.Sanitize(s))
		if next == s {
			break
		}
		s = next
	}
	return s
}
