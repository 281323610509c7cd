package parser

import (
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"ReviewsScanner/internal/domain"
)

// DefaultMaxReviews bounds the candidates handed to later stages.
const DefaultMaxReviews = 30

// ReviewContainerSelectors locate review nodes, most specific first.
var ReviewContainerSelectors = []string{
	`div.section-review-content`,
	`div[aria-label*="review"]`,
	`div[data-review-id]`,
	`div[jslog*="review"]`,
	`div[class^="gws-localreviews__google-review"]`,
	`div[jscontroller*="e6MZhf"] article`,
}

const (
	authorSelector       = `[class*="author"], [data-attr*="author"], a[aria-label*="Profile"], div[role="heading"]`
	textSelector         = `[class*="text"], [jsname*="review"], div[aria-label*="Review"] span`
	dateSelector         = `[class*="date"], time, span[aria-label*="ago"], span[class*="published"]`
	profileLinkSelector  = `a[href*="/maps/contrib/"]`
	reviewLinkSelector   = `a[href*="#lrd"], a[href*="review"], a[href*="/maps/place/"]`
	starLabelSelector    = `[aria-label*="stars"]`
	starGlyphSelector    = `svg[aria-hidden="true"], span[class*="star"]`
	maxRating            = 5
	syntheticIDSeparator = "-"
)

var ratingLabelExpr = regexp.MustCompile(`(\d\.?\d?) out of 5`)

// ExtractOptions tune one extraction pass.
type ExtractOptions struct {
	// BaseURL resolves relative links and image sources.
	BaseURL string
	// RunID prefixes synthetic ids for nodes without data-review-id.
	RunID      string
	MaxReviews int
}

// ExtractReviews walks a document snapshot, shadow roots included, and returns
// candidates with non-empty text, truncated to MaxReviews in discovery order.
func ExtractReviews(snapshot string, opts ExtractOptions) ([]domain.RawReview, error) {
	tree, err := ParseTree(strings.NewReader(snapshot))
	if err != nil {
		return nil, err
	}
	return ExtractFromTree(tree, opts), nil
}

// ExtractFromTree is ExtractReviews over an already parsed tree.
func ExtractFromTree(tree *Tree, opts ExtractOptions) []domain.RawReview {
	limit := opts.MaxReviews
	if limit <= 0 {
		limit = DefaultMaxReviews
	}
	base, _ := url.Parse(opts.BaseURL)

	nodes := tree.DeepQuery(ReviewContainerSelectors)
	reviews := make([]domain.RawReview, 0, min(len(nodes), limit))
	for idx, node := range nodes {
		review := parseReviewNode(node, idx, opts.RunID, base)
		if review.Text == "" {
			continue
		}
		reviews = append(reviews, review)
		if len(reviews) == limit {
			break
		}
	}
	return reviews
}

func parseReviewNode(el *goquery.Selection, idx int, runID string, base *url.URL) domain.RawReview {
	id, _ := el.Attr("data-review-id")
	if id == "" {
		id = runID + syntheticIDSeparator + strconv.Itoa(idx)
	}

	avatar, _ := el.Find("img").First().Attr("src")

	return domain.RawReview{
		ID:               id,
		AuthorName:       NormalizeText(el.Find(authorSelector).First().Text()),
		AuthorProfileURL: resolveHref(el.Find(profileLinkSelector).First(), base),
		AuthorAvatarURL:  resolve(avatar, base),
		Rating:           parseRating(el),
		DateText:         NormalizeText(el.Find(dateSelector).First().Text()),
		Text:             NormalizeText(el.Find(textSelector).First().Text()),
		ReviewURL:        resolveHref(el.Find(reviewLinkSelector).First(), base),
	}
}

func parseRating(el *goquery.Selection) int {
	if label, ok := el.Find(starLabelSelector).First().Attr("aria-label"); ok {
		if m := ratingLabelExpr.FindStringSubmatch(label); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				return clampRating(int(math.Round(v)))
			}
		}
	}
	if stars := el.Find(starGlyphSelector).Length(); stars > 0 {
		return min(maxRating, stars)
	}
	return 0
}

func clampRating(v int) int {
	return max(0, min(maxRating, v))
}

func resolveHref(a *goquery.Selection, base *url.URL) string {
	href, _ := a.Attr("href")
	return resolve(href, base)
}

func resolve(ref string, base *url.URL) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	if base == nil || u.IsAbs() {
		return u.String()
	}
	return base.ResolveReference(u).String()
}

// NormalizeText collapses whitespace runs to one space and trims the ends.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
