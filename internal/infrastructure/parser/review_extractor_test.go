package parser

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const placeURL = "https://www.google.com/maps/place/Mosaic"

func TestExtractReviewsFields(t *testing.T) {
	t.Parallel()

	html := `
	<html><body>
	<div data-review-id="r1">
	  <a href="/maps/contrib/123"><img src="/avatar/jane.png"></a>
	  <div class="d4r55 author-name">Jane
	     Doe</div>
	  <span role="img" aria-label="4.4 out of 5 stars"></span>
	  <span class="rsqaWe date">2 weeks ago</span>
	  <span class="wiI7pd review-text">Great   people,
	     very helpful.</span>
	  <a href="https://www.google.com/maps/place/Mosaic/#lrd=1">link</a>
	</div>
	<div data-review-id="r3"><div class="author">Ghost</div><span class="text">   </span></div>
	<div class="gws-localreviews__google-review">
	  <div role="heading">Bob</div>
	  <span class="star"></span><span class="star"></span><span class="star"></span>
	  <span class="review-full-text">Lovely place</span>
	</div>
	</body></html>`

	reviews, err := ExtractReviews(html, ExtractOptions{BaseURL: placeURL, RunID: "run-1"})
	require.NoError(t, err)
	require.Len(t, reviews, 2)

	jane := reviews[0]
	assert.Equal(t, "r1", jane.ID)
	assert.Equal(t, "Jane Doe", jane.AuthorName)
	assert.Equal(t, "https://www.google.com/maps/contrib/123", jane.AuthorProfileURL)
	assert.Equal(t, "https://www.google.com/avatar/jane.png", jane.AuthorAvatarURL)
	assert.Equal(t, 4, jane.Rating)
	assert.Equal(t, "2 weeks ago", jane.DateText)
	assert.Equal(t, "Great people, very helpful.", jane.Text)
	assert.Equal(t, "https://www.google.com/maps/place/Mosaic/#lrd=1", jane.ReviewURL)

	bob := reviews[1]
	assert.Equal(t, "run-1-2", bob.ID)
	assert.Equal(t, "Bob", bob.AuthorName)
	assert.Equal(t, 3, bob.Rating)
	assert.Empty(t, bob.DateText)
	assert.Equal(t, "Lovely place", bob.Text)
	assert.Empty(t, bob.AuthorProfileURL)
}

func TestExtractReviewsNeverEmitsEmptyText(t *testing.T) {
	t.Parallel()

	html := `<div data-review-id="a"></div>
	<div data-review-id="b"><span class="text">
	</span></div>
	<div data-review-id="c"><div class="author">No body</div></div>`

	reviews, err := ExtractReviews(html, ExtractOptions{})
	require.NoError(t, err)
	assert.Empty(t, reviews)
}

func TestExtractReviewsTruncatesInDiscoveryOrder(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	for i := 0; i < 50; i++ {
		fmt.Fprintf(&b, `<div data-review-id="r%d"><span class="text">review %d</span></div>`, i, i)
	}

	for _, limit := range []int{0, 5, 30, 80} {
		reviews, err := ExtractReviews(b.String(), ExtractOptions{MaxReviews: limit})
		require.NoError(t, err)

		want := limit
		if want == 0 {
			want = DefaultMaxReviews
		}
		if want > 50 {
			want = 50
		}
		require.Len(t, reviews, want, "limit %d", limit)
		assert.Equal(t, "r0", reviews[0].ID)
		assert.Equal(t, fmt.Sprintf("r%d", want-1), reviews[want-1].ID)
	}
}

func TestParseRatingVariants(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		html string
		want int
	}{
		{"label rounds up", `<span aria-label="Rated 4.5 out of 5 stars"></span>`, 5},
		{"label integer", `<span aria-label="3 out of 5 stars"></span>`, 3},
		{"unparsable label falls back to glyphs", `<span aria-label="five stars"></span><svg aria-hidden="true"></svg>`, 1},
		{"glyphs capped", strings.Repeat(`<span class="star-full"></span>`, 7), 5},
		{"nothing", `<span>no rating</span>`, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			html := `<div data-review-id="x">` + tc.html + `<span class="text">body</span></div>`
			reviews, err := ExtractReviews(html, ExtractOptions{})
			require.NoError(t, err)
			require.Len(t, reviews, 1)
			assert.Equal(t, tc.want, reviews[0].Rating)
		})
	}
}

func TestNormalizeText(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a b c", NormalizeText("  a\n\t b   c  "))
	assert.Empty(t, NormalizeText(" \n "))
}
