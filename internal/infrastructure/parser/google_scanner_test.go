package parser

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ReviewsScanner/internal/ports"
	"ReviewsScanner/internal/scanner"
)

type stubSurface struct {
	name        string
	url         string
	snapshot    string
	snapshotErr error
	loaded      int
	scrolls     int
}

func (s *stubSurface) Name() string { return s.name }
func (s *stubSurface) URL() string  { return s.url }

func (s *stubSurface) Exists(context.Context, string) (bool, error) { return false, nil }

// Count grows on every call so lazy-load waits end at once.
func (s *stubSurface) Count(context.Context, string) (int, error) {
	s.loaded++
	return s.loaded, nil
}

func (s *stubSurface) Click(context.Context, string) error { return nil }

func (s *stubSurface) ClickByText(context.Context, []string) (string, error) { return "", nil }

func (s *stubSurface) ScrollBy(context.Context, string, int) error {
	s.scrolls++
	return nil
}

func (s *stubSurface) Evaluate(context.Context, string, any) error { return nil }

func (s *stubSurface) Snapshot(context.Context) (string, error) {
	return s.snapshot, s.snapshotErr
}

type stubPage struct {
	surfaces []*stubSurface
	closed   int
}

func (p *stubPage) Main() ports.Surface { return p.surfaces[0] }

func (p *stubPage) Surfaces(context.Context) ([]ports.Surface, error) {
	out := make([]ports.Surface, 0, len(p.surfaces))
	for _, s := range p.surfaces {
		out = append(out, s)
	}
	return out, nil
}

func (p *stubPage) Close() error {
	p.closed++
	return nil
}

type stubBrowser struct {
	page    *stubPage
	openErr error
	opened  []string
}

func (b *stubBrowser) Open(_ context.Context, url string) (ports.Page, error) {
	b.opened = append(b.opened, url)
	if b.openErr != nil {
		return nil, b.openErr
	}
	return b.page, nil
}

func TestGoogleReviewsScannerExtractsFromReviewsFrame(t *testing.T) {
	t.Parallel()

	main := &stubSurface{
		name:     "main",
		url:      "https://www.google.com/search?q=mosaic",
		snapshot: `<div data-review-id="wrong"><span class="text">from main</span></div>`,
	}
	frame := &stubSurface{
		name: "frame-1",
		url:  "https://www.google.com/maps/embed?pb=1",
		snapshot: `<div data-review-id="f1"><a href="/maps/contrib/9">p</a>
			<span class="text">from frame</span></div>`,
	}
	page := &stubPage{surfaces: []*stubSurface{main, frame}}
	browser := &stubBrowser{page: page}

	sc := NewGoogleReviewsScanner(browser, nil)
	reviews, err := sc.Scan(context.Background(), scanner.Request{
		RunID:     "run",
		SourceURL: "https://maps.app.goo.gl/abc",
	})
	require.NoError(t, err)
	require.Len(t, reviews, 1)

	assert.Equal(t, "f1", reviews[0].ID)
	assert.Equal(t, "from frame", reviews[0].Text)
	assert.Equal(t, "https://www.google.com/maps/contrib/9", reviews[0].AuthorProfileURL)
	assert.Equal(t, []string{"https://maps.app.goo.gl/abc"}, browser.opened)
	assert.Equal(t, 20, frame.scrolls)
	assert.Zero(t, main.scrolls)
	assert.Equal(t, 1, page.closed)
}

func TestGoogleReviewsScannerClosesPageOnSnapshotFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("target closed")
	page := &stubPage{surfaces: []*stubSurface{{name: "main", url: "https://www.google.com/maps/place/x", snapshotErr: boom}}}

	sc := NewGoogleReviewsScanner(&stubBrowser{page: page}, nil)
	_, err := sc.Scan(context.Background(), scanner.Request{SourceURL: "https://www.google.com/maps/place/x"})

	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, page.closed)
}

func TestGoogleReviewsScannerOpenFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("no chrome")
	sc := NewGoogleReviewsScanner(&stubBrowser{openErr: boom}, nil)

	_, err := sc.Scan(context.Background(), scanner.Request{SourceURL: "https://example.com"})
	require.ErrorIs(t, err, boom)

	_, err = sc.Scan(context.Background(), scanner.Request{})
	require.Error(t, err)
}

func TestGoogleReviewsScannerFallsBackToSourceURLForLinks(t *testing.T) {
	t.Parallel()

	main := &stubSurface{
		name:     "main",
		snapshot: `<div data-review-id="m"><img src="/a.png"><span class="text">x</span></div>`,
	}
	sc := NewGoogleReviewsScanner(&stubBrowser{page: &stubPage{surfaces: []*stubSurface{main}}}, nil)

	reviews, err := sc.Scan(context.Background(), scanner.Request{SourceURL: "https://www.google.com/maps/place/y"})
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, "https://www.google.com/a.png", reviews[0].AuthorAvatarURL)
}
