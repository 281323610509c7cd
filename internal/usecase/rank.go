package usecase

import (
	"cmp"
	"slices"
	"unicode/utf8"

	"ReviewsScanner/internal/domain"
)

// MaxSelected is the number of reviews shown on the page.
const MaxSelected = 6

// Score weighs rating first, then verified recency, then text length.
func Score(r domain.VerifiedReview) float64 {
	var rating float64
	switch r.Rating {
	case 5:
		rating = 100
	case 4:
		rating = 80
	default:
		rating = float64(r.Rating * 10)
	}

	var recency float64
	if r.HasTimestamp() {
		recency = float64(r.Timestamp) / 100000
	}

	length := float64(utf8.RuneCountInString(r.Text)) / 50

	return rating + recency + length
}

// SelectTopSix returns at most MaxSelected reviews by descending score. Ties
// keep their input order.
func SelectTopSix(reviews []domain.VerifiedReview) []domain.VerifiedReview {
	type scored struct {
		review domain.VerifiedReview
		score  float64
	}
	ranked := make([]scored, len(reviews))
	for i, r := range reviews {
		ranked[i] = scored{review: r, score: Score(r)}
	}
	slices.SortStableFunc(ranked, func(a, b scored) int {
		return cmp.Compare(b.score, a.score)
	})

	n := min(len(ranked), MaxSelected)
	out := make([]domain.VerifiedReview, n)
	for i := range n {
		out[i] = ranked[i].review
	}
	return out
}
