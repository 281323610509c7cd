package scanner

import (
	"context"
	"fmt"

	"ReviewsScanner/internal/domain"
)

// Request carries all parameters required to execute a scan.
type Request struct {
	RunID      string
	SourceURL  string
	MaxReviews int
}

// Scanner captures a single page-shape strategy (Google Maps place, etc.).
type Scanner interface {
	Name() string
	Scan(ctx context.Context, req Request) ([]domain.RawReview, error)
}

// Registry keeps a mapping from scanner names to their implementations.
type Registry struct {
	scanners map[string]Scanner
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{scanners: map[string]Scanner{}}
}

// Register adds or replaces a scanner implementation.
func (r *Registry) Register(scanner Scanner) {
	if r.scanners == nil {
		r.scanners = map[string]Scanner{}
	}
	r.scanners[scanner.Name()] = scanner
}

// Resolve returns a scanner by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Scanner, error) {
	if scanner, ok := r.scanners[name]; ok {
		return scanner, nil
	}
	return nil, fmt.Errorf("scanner %s is not registered", name)
}

// Source binds a resolved scanner to one request so the pipeline can call it as a ports.ReviewSource.
type Source struct {
	scanner Scanner
	req     Request
}

// NewSource resolves name and fixes the request parameters. RunID is filled per call.
func NewSource(reg *Registry, name string, req Request) (*Source, error) {
	if reg == nil {
		return nil, fmt.Errorf("scanner registry is not configured")
	}
	sc, err := reg.Resolve(name)
	if err != nil {
		return nil, err
	}
	return &Source{scanner: sc, req: req}, nil
}

// FetchReviews runs the bound scanner.
func (s *Source) FetchReviews(ctx context.Context, runID string) ([]domain.RawReview, error) {
	req := s.req
	req.RunID = runID
	return s.scanner.Scan(ctx, req)
}
