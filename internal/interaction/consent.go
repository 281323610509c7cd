package interaction

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"ReviewsScanner/internal/ports"
)

// ConsentSelectors are known "accept" controls, tried in order.
var ConsentSelectors = []string{
	`button#L2AGLb`,
	`button[aria-label*="Accept all"]`,
	`button[aria-label*="I agree"]`,
}

// ConsentKeywords are matched case-insensitively against button text.
var ConsentKeywords = []string{"accept all", "i agree", "agree", "accept"}

// ConsentResolver dismisses cookie/consent interstitials on every surface of a page.
type ConsentResolver struct {
	SelectorSettle time.Duration
	TextSettle     time.Duration
	logger         *slog.Logger
}

// NewConsentResolver returns a resolver with the default settle budgets.
func NewConsentResolver(log *slog.Logger) *ConsentResolver {
	return &ConsentResolver{
		SelectorSettle: 1200 * time.Millisecond,
		TextSettle:     time.Second,
		logger:         log,
	}
}

// Resolve visits the main document and then every frame, one at a time, and
// returns the number of consent clicks that went through.
func (r *ConsentResolver) Resolve(ctx context.Context, page ports.Page) int {
	surfaces, err := page.Surfaces(ctx)
	if err != nil {
		r.debug("list frames failed, using main document only", "error", err)
		surfaces = []ports.Surface{page.Main()}
	}

	clicks := 0
	for _, s := range surfaces {
		clicks += r.resolveSurface(ctx, s)
	}
	r.debug("consent resolved", "surfaces", len(surfaces), "clicks", clicks)
	return clicks
}

func (r *ConsentResolver) resolveSurface(ctx context.Context, s ports.Surface) int {
	for _, sel := range ConsentSelectors {
		present, err := s.Exists(ctx, sel)
		if err != nil || !present {
			continue
		}
		if !Attempt(ctx, r.logger, "consent click "+sel, func(ctx context.Context) error {
			return s.Click(ctx, sel)
		}) {
			break
		}
		WaitUntil(ctx, r.SelectorSettle, func(ctx context.Context) (bool, error) {
			still, err := s.Exists(ctx, sel)
			return !still, err
		})
		r.debug("consent accepted", "surface", s.Name(), "selector", sel)
		return 1
	}

	var keyword string
	if !Attempt(ctx, r.logger, "consent text scan", func(ctx context.Context) error {
		var err error
		keyword, err = s.ClickByText(ctx, ConsentKeywords)
		return err
	}) || keyword == "" {
		return 0
	}

	WaitUntil(ctx, r.TextSettle, func(ctx context.Context) (bool, error) {
		var present bool
		err := s.Evaluate(ctx, buttonTextPresentScript(keyword), &present)
		return !present, err
	})
	r.debug("consent accepted", "surface", s.Name(), "keyword", keyword)
	return 1
}

func buttonTextPresentScript(keyword string) string {
	quoted, _ := json.Marshal(keyword)
	return fmt.Sprintf(`Array.from(document.querySelectorAll('button')).some(b => (b.innerText || '').toLowerCase().includes(%s))`, quoted)
}

func (r *ConsentResolver) debug(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Debug(msg, args...)
	}
}
