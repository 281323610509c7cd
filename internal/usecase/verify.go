package usecase

import (
	"strings"

	"github.com/antzucaro/matchr"

	"ReviewsScanner/internal/domain"
)

// NormalizeForMatch lowercases s and collapses whitespace runs.
func NormalizeForMatch(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// MatchToAuthoritative ties each review to the first authoritative review whose
// normalized text contains the scraped text, or whose normalized author name is
// equal. Empty normalized values never match. A match takes rating, text and
// timestamp from the authoritative side. An empty authoritative list leaves
// every review unverified.
func MatchToAuthoritative(reviews []domain.SanitizedReview, authoritative []domain.AuthoritativeReview) []domain.VerifiedReview {
	type normalized struct {
		author string
		text   string
	}
	auth := make([]normalized, len(authoritative))
	for i, a := range authoritative {
		auth[i] = normalized{author: NormalizeForMatch(a.AuthorName), text: NormalizeForMatch(a.Text)}
	}

	out := make([]domain.VerifiedReview, len(reviews))
	for i, r := range reviews {
		out[i] = domain.VerifiedReview{SanitizedReview: r}

		text := NormalizeForMatch(r.Text)
		author := NormalizeForMatch(r.AuthorName)
		for j, a := range auth {
			basis := domain.MatchNone
			switch {
			case text != "" && strings.Contains(a.text, text):
				basis = domain.MatchText
			case author != "" && a.author == author:
				basis = domain.MatchAuthor
			}
			if basis == domain.MatchNone {
				continue
			}

			src := authoritative[j]
			v := &out[i]
			v.Verified = true
			v.MatchedBy = basis
			v.Similarity = matchr.JaroWinkler(text, a.text, false)
			v.Rating = src.Rating
			v.Text = src.Text
			v.Timestamp = src.Timestamp
			break
		}
	}
	return out
}

// CountVerified returns how many reviews carry verified=true.
func CountVerified(reviews []domain.VerifiedReview) int {
	n := 0
	for _, r := range reviews {
		if r.Verified {
			n++
		}
	}
	return n
}
