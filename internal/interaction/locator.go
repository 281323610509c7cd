package interaction

import (
	"context"
	"log/slog"
	"regexp"

	"ReviewsScanner/internal/ports"
)

// ReviewFramePatterns identify embedded review widgets by frame URL.
var ReviewFramePatterns = []*regexp.Regexp{
	regexp.MustCompile(`[#?]lrd=`),
	regexp.MustCompile(`/maps/`),
	regexp.MustCompile(`google\.com/maps/reviews`),
}

// LocateReviewsContext picks the first surface whose URL looks like a reviews
// widget and falls back to the main document.
func LocateReviewsContext(ctx context.Context, page ports.Page, log *slog.Logger) ports.Surface {
	surfaces, err := page.Surfaces(ctx)
	if err != nil {
		if log != nil {
			log.Debug("list frames failed", "error", err)
		}
		return page.Main()
	}

	for _, s := range surfaces {
		if IsReviewsURL(s.URL()) {
			if log != nil {
				log.Debug("reviews context selected", "surface", s.Name(), "url", s.URL())
			}
			return s
		}
	}
	return page.Main()
}

// IsReviewsURL reports whether u matches any of ReviewFramePatterns.
func IsReviewsURL(u string) bool {
	for _, re := range ReviewFramePatterns {
		if re.MatchString(u) {
			return true
		}
	}
	return false
}
