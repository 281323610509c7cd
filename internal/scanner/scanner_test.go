package scanner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ReviewsScanner/internal/domain"
)

type stubScanner struct {
	got Request
}

func (s *stubScanner) Name() string { return "stub" }

func (s *stubScanner) Scan(_ context.Context, req Request) ([]domain.RawReview, error) {
	s.got = req
	return []domain.RawReview{{ID: "1", Text: "ok"}}, nil
}

func TestRegistryResolve(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register(&stubScanner{})

	_, err := reg.Resolve("stub")
	require.NoError(t, err)

	_, err = reg.Resolve("missing")
	assert.ErrorContains(t, err, "missing is not registered")
}

func TestSourceForwardsRequest(t *testing.T) {
	t.Parallel()

	stub := &stubScanner{}
	reg := NewRegistry()
	reg.Register(stub)

	req := Request{SourceURL: "https://example.org/place", MaxReviews: 5}
	src, err := NewSource(reg, "stub", req)
	require.NoError(t, err)

	reviews, err := src.FetchReviews(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Len(t, reviews, 1)

	req.RunID = "run-1"
	assert.Equal(t, req, stub.got)

	_, err = NewSource(reg, "missing", req)
	require.Error(t, err)
	_, err = NewSource(nil, "stub", req)
	require.Error(t, err)
}
