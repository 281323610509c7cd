package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"ReviewsScanner/internal/interaction"
	"ReviewsScanner/internal/ports"
	pkglogger "ReviewsScanner/pkg/logger"
)

// ErrNavigation marks a run-aborting failure to load the source page.
var ErrNavigation = errors.New("navigation failed")

// Launcher starts one Chrome process per Open call.
type Launcher struct {
	opts   Options
	logger *slog.Logger
}

var _ ports.Browser = (*Launcher)(nil)

// NewLauncher wires browser options; zero values fall back to DefaultOptions.
func NewLauncher(opts Options, log *slog.Logger) *Launcher {
	def := DefaultOptions()
	if opts.UserAgent == "" {
		opts.UserAgent = def.UserAgent
	}
	if opts.WindowWidth == 0 || opts.WindowHeight == 0 {
		opts.WindowWidth, opts.WindowHeight = def.WindowWidth, def.WindowHeight
	}
	if opts.NavTimeout <= 0 {
		opts.NavTimeout = def.NavTimeout
	}
	if opts.LoadSettle <= 0 {
		opts.LoadSettle = def.LoadSettle
	}
	return &Launcher{opts: opts, logger: log}
}

// Open launches the browser, opens one tab and navigates it to targetURL.
// On error the browser is already released; on success the caller must Close.
func (l *Launcher) Open(ctx context.Context, targetURL string) (ports.Page, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, BuildChromeOptions(l.opts)...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(pkglogger.Printf(l.logger, slog.LevelDebug)),
		chromedp.WithErrorf(pkglogger.Printf(l.logger, slog.LevelDebug)),
	)

	s := &Session{
		ctx:    tabCtx,
		logger: l.logger,
		cancel: func() {
			tabCancel()
			allocCancel()
		},
	}
	s.main = newPageSurface(s)

	err := chromedp.Run(tabCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		_, err := page.AddScriptToEvaluateOnNewDocument(stealthScript).Do(ctx)
		return err
	}))
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	if err := s.navigate(ctx, targetURL, l.opts); err != nil {
		_ = s.Close()
		return nil, err
	}

	return s, nil
}

// Session is one tab in one browser process.
type Session struct {
	ctx    context.Context
	cancel context.CancelFunc
	main   *PageSurface
	logger *slog.Logger

	closeOnce sync.Once
	closeErr  error
}

var _ ports.Page = (*Session)(nil)

func (s *Session) navigate(ctx context.Context, targetURL string, opts Options) error {
	navCtx, cancel := s.opContext(ctx)
	defer cancel()
	navCtx, cancelTimeout := context.WithTimeout(navCtx, opts.NavTimeout)
	defer cancelTimeout()

	resp, err := chromedp.RunResponse(navCtx, chromedp.Navigate(targetURL))
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrNavigation, targetURL, err)
	}

	var location string
	if err := chromedp.Run(navCtx,
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Location(&location),
	); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrNavigation, targetURL, err)
	}
	s.main.url = location

	rendered := interaction.WaitUntil(navCtx, opts.LoadSettle, func(ctx context.Context) (bool, error) {
		var n int
		err := s.main.Evaluate(ctx, bodyTextLengthScript, &n)
		return n > 0, err
	})

	status := int64(0)
	if resp != nil {
		status = resp.Status
	}
	if status >= 400 && !rendered {
		return fmt.Errorf("%w: %s returned status %d with no content", ErrNavigation, targetURL, status)
	}

	if s.logger != nil {
		s.logger.Debug("page loaded", "url", location, "status", status, "rendered", rendered)
	}
	return nil
}

// Main returns the top-level document.
func (s *Session) Main() ports.Surface {
	return s.main
}

// Surfaces returns the main document followed by every descendant frame in tree order.
func (s *Session) Surfaces(ctx context.Context) ([]ports.Surface, error) {
	opCtx, cancel := s.opContext(ctx)
	defer cancel()

	var tree *page.FrameTree
	err := chromedp.Run(opCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		tree, err = page.GetFrameTree().Do(ctx)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("frame tree: %w", err)
	}

	surfaces := []ports.Surface{s.main}
	if tree == nil {
		return surfaces, nil
	}
	if u := frameURL(tree.Frame); u != "" {
		s.main.url = u
	}

	var walk func(nodes []*page.FrameTree)
	walk = func(nodes []*page.FrameTree) {
		for _, node := range nodes {
			if node == nil || node.Frame == nil {
				continue
			}
			surfaces = append(surfaces, newFrameSurface(s, node.Frame))
			walk(node.ChildFrames)
		}
	}
	walk(tree.ChildFrames)

	return surfaces, nil
}

// Close shuts the tab and the browser process. It is safe to call more than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		if err := chromedp.Cancel(s.ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.closeErr = fmt.Errorf("close browser: %w", err)
		}
		s.cancel()
	})
	return s.closeErr
}

// opContext derives a chromedp-bound context that also stops when ctx does.
func (s *Session) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	opCtx, cancel := context.WithCancel(s.ctx)
	stop := context.AfterFunc(ctx, cancel)
	return opCtx, func() {
		stop()
		cancel()
	}
}
