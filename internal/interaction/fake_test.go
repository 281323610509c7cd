package interaction

import (
	"context"
	"errors"
	"strings"

	"ReviewsScanner/internal/ports"
)

type fakeSurface struct {
	name         string
	url          string
	present      map[string]bool
	clickErr     map[string]error
	buttons      []string
	clicks       []string
	scrolls      []string
	count        int
	growOnScroll int
}

func (f *fakeSurface) Name() string { return f.name }
func (f *fakeSurface) URL() string  { return f.url }

func (f *fakeSurface) Exists(_ context.Context, selector string) (bool, error) {
	return f.present[selector], nil
}

func (f *fakeSurface) Count(_ context.Context, _ string) (int, error) {
	return f.count, nil
}

func (f *fakeSurface) Click(_ context.Context, selector string) error {
	if err := f.clickErr[selector]; err != nil {
		return err
	}
	f.clicks = append(f.clicks, selector)
	delete(f.present, selector)
	return nil
}

func (f *fakeSurface) ClickByText(_ context.Context, keywords []string) (string, error) {
	for i, text := range f.buttons {
		lower := strings.ToLower(text)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				f.clicks = append(f.clicks, "text:"+text)
				f.buttons = append(f.buttons[:i:i], f.buttons[i+1:]...)
				return kw, nil
			}
		}
	}
	return "", nil
}

func (f *fakeSurface) ScrollBy(_ context.Context, selector string, _ int) error {
	f.scrolls = append(f.scrolls, selector)
	f.count += f.growOnScroll
	return nil
}

func (f *fakeSurface) Evaluate(_ context.Context, _ string, out any) error {
	if b, ok := out.(*bool); ok {
		*b = false
		return nil
	}
	return errors.New("unsupported evaluate")
}

func (f *fakeSurface) Snapshot(context.Context) (string, error) { return "", nil }

type fakePage struct {
	surfaces []*fakeSurface
	listErr  error
}

func (p *fakePage) Main() ports.Surface { return p.surfaces[0] }

func (p *fakePage) Surfaces(context.Context) ([]ports.Surface, error) {
	if p.listErr != nil {
		return nil, p.listErr
	}
	out := make([]ports.Surface, len(p.surfaces))
	for i, s := range p.surfaces {
		out[i] = s
	}
	return out, nil
}

func (p *fakePage) Close() error { return nil }
