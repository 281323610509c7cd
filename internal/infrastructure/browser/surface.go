package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"ReviewsScanner/internal/ports"
)

// ErrNotPresent is returned by Click when the selector matches nothing.
var ErrNotPresent = errors.New("element not present")

type evaluator func(ctx context.Context, expression string, out any) error

// domOps implements the script-backed part of ports.Surface once for both
// surface kinds.
type domOps struct {
	eval evaluator
}

func (d domOps) Exists(ctx context.Context, selector string) (bool, error) {
	var ok bool
	err := d.eval(ctx, existsScript(selector), &ok)
	return ok, err
}

func (d domOps) Count(ctx context.Context, selector string) (int, error) {
	var n int
	err := d.eval(ctx, countScript(selector), &n)
	return n, err
}

func (d domOps) Click(ctx context.Context, selector string) error {
	var clicked bool
	if err := d.eval(ctx, clickScript(selector), &clicked); err != nil {
		return fmt.Errorf("click %s: %w", selector, err)
	}
	if !clicked {
		return fmt.Errorf("click %s: %w", selector, ErrNotPresent)
	}
	return nil
}

func (d domOps) ClickByText(ctx context.Context, keywords []string) (string, error) {
	var hit string
	if err := d.eval(ctx, clickByTextScript(keywords), &hit); err != nil {
		return "", fmt.Errorf("click by text: %w", err)
	}
	return hit, nil
}

func (d domOps) ScrollBy(ctx context.Context, selector string, dy int) error {
	var scrolled bool
	if err := d.eval(ctx, scrollScript(selector, dy), &scrolled); err != nil {
		return fmt.Errorf("scroll: %w", err)
	}
	if !scrolled {
		return fmt.Errorf("scroll %s: %w", selector, ErrNotPresent)
	}
	return nil
}

func (d domOps) Snapshot(ctx context.Context) (string, error) {
	var html string
	if err := d.eval(ctx, snapshotScript, &html); err != nil {
		return "", fmt.Errorf("snapshot: %w", err)
	}
	return html, nil
}

// PageSurface is the top-level document of the tab.
type PageSurface struct {
	domOps
	session *Session
	url     string
}

var _ ports.Surface = (*PageSurface)(nil)

func newPageSurface(s *Session) *PageSurface {
	ps := &PageSurface{session: s}
	ps.domOps = domOps{eval: ps.Evaluate}
	return ps
}

func (p *PageSurface) Name() string { return "main" }
func (p *PageSurface) URL() string  { return p.url }

// Evaluate runs expression in the main world of the top-level document.
func (p *PageSurface) Evaluate(ctx context.Context, expression string, out any) error {
	opCtx, cancel := p.session.opContext(ctx)
	defer cancel()
	return chromedp.Run(opCtx, chromedp.Evaluate(expression, out))
}

// FrameSurface is one embedded frame, evaluated through an isolated world so
// scripts do not depend on the frame's own globals.
type FrameSurface struct {
	domOps
	session *Session
	frameID cdp.FrameID
	url     string

	mu        sync.Mutex
	contextID runtime.ExecutionContextID
}

var _ ports.Surface = (*FrameSurface)(nil)

func newFrameSurface(s *Session, frame *cdp.Frame) *FrameSurface {
	fs := &FrameSurface{session: s, frameID: frame.ID, url: frameURL(frame)}
	fs.domOps = domOps{eval: fs.Evaluate}
	return fs
}

func (f *FrameSurface) Name() string { return "frame:" + string(f.frameID) }
func (f *FrameSurface) URL() string  { return f.url }

// Evaluate runs expression inside the frame's document.
func (f *FrameSurface) Evaluate(ctx context.Context, expression string, out any) error {
	opCtx, cancel := f.session.opContext(ctx)
	defer cancel()

	return chromedp.Run(opCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		id, err := f.executionContext(ctx)
		if err != nil {
			return err
		}

		res, exc, err := runtime.Evaluate(expression).
			WithContextID(id).
			WithReturnByValue(true).
			WithAwaitPromise(true).
			Do(ctx)
		if err != nil {
			// The world dies when the frame navigates; recreate it next time.
			f.resetContext()
			return fmt.Errorf("evaluate in %s: %w", f.Name(), err)
		}
		if exc != nil {
			return fmt.Errorf("evaluate in %s: %s", f.Name(), exc.Text)
		}
		if out == nil || res == nil || len(res.Value) == 0 {
			return nil
		}
		return json.Unmarshal([]byte(res.Value), out)
	}))
}

func (f *FrameSurface) executionContext(ctx context.Context) (runtime.ExecutionContextID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.contextID != 0 {
		return f.contextID, nil
	}
	id, err := page.CreateIsolatedWorld(f.frameID).WithWorldName("reviewsscanner").Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("create world for %s: %w", f.Name(), err)
	}
	f.contextID = id
	return id, nil
}

func (f *FrameSurface) resetContext() {
	f.mu.Lock()
	f.contextID = 0
	f.mu.Unlock()
}

func frameURL(frame *cdp.Frame) string {
	if frame == nil {
		return ""
	}
	return frame.URL + frame.URLFragment
}
