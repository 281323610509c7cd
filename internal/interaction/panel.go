package interaction

import (
	"context"
	"log/slog"
	"time"

	"ReviewsScanner/internal/ports"
)

// PanelAffectors open a collapsed reviews tab.
var PanelAffectors = []string{
	`button[aria-label*="Reviews"]`,
	`div[aria-label*="Reviews"]`,
	`a[href*="data=reviews"]`,
	`a[aria-label*="Reviews"]`,
}

// ScrollContainers are candidate scrollable review lists, tried in order.
var ScrollContainers = []string{
	`div[role="main"]`,
	`div[aria-label*="Reviews"]`,
	`div[class*="scroll"]`,
	`div[class^="gws-localreviews__google-review"]`,
	`div[jscontroller*="e6MZhf"]`,
}

// Panel opens the reviews panel and scrolls it to trigger lazy loading.
type Panel struct {
	// ReviewSelector counts loaded review nodes; waits end early when it changes.
	ReviewSelector string
	OpenSettle     time.Duration
	ScrollSteps    int
	ScrollStepPx   int
	StepSettle     time.Duration
	logger         *slog.Logger
}

// NewPanel uses the fixed scroll policy: 20 steps of 1000px, 500ms each.
func NewPanel(reviewSelector string, log *slog.Logger) *Panel {
	return &Panel{
		ReviewSelector: reviewSelector,
		OpenSettle:     1500 * time.Millisecond,
		ScrollSteps:    20,
		ScrollStepPx:   1000,
		StepSettle:     500 * time.Millisecond,
		logger:         log,
	}
}

// Open clicks the first present affector. It returns false when none was clicked.
func (p *Panel) Open(ctx context.Context, s ports.Surface) bool {
	for _, sel := range PanelAffectors {
		present, err := s.Exists(ctx, sel)
		if err != nil || !present {
			continue
		}
		clicked := Attempt(ctx, p.logger, "open reviews panel", func(ctx context.Context) error {
			return s.Click(ctx, sel)
		})
		if clicked {
			WaitUntil(ctx, p.OpenSettle, func(ctx context.Context) (bool, error) {
				n, err := s.Count(ctx, p.ReviewSelector)
				return n > 0, err
			})
			p.debug("reviews panel opened", "selector", sel)
		}
		return clicked
	}
	p.debug("no reviews affector present")
	return false
}

// Scroll drives the first present container, or the window, through the fixed
// number of steps. It returns the selector used ("" for the window).
func (p *Panel) Scroll(ctx context.Context, s ports.Surface) string {
	target := ""
	for _, sel := range ScrollContainers {
		if present, err := s.Exists(ctx, sel); err == nil && present {
			target = sel
			break
		}
	}

	for i := 0; i < p.ScrollSteps; i++ {
		if ctx.Err() != nil {
			break
		}
		before, _ := s.Count(ctx, p.ReviewSelector)
		if !Attempt(ctx, p.logger, "scroll step", func(ctx context.Context) error {
			return s.ScrollBy(ctx, target, p.ScrollStepPx)
		}) {
			continue
		}
		WaitUntil(ctx, p.StepSettle, func(ctx context.Context) (bool, error) {
			n, err := s.Count(ctx, p.ReviewSelector)
			return n > before, err
		})
	}

	p.debug("scroll finished", "container", target, "steps", p.ScrollSteps)
	return target
}

func (p *Panel) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}
