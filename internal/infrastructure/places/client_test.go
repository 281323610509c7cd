package places

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ReviewsScanner/internal/domain"
)

func TestClientFetchReviews(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/maps/api/place/details/json", r.URL.Path)
		assert.Equal(t, "place-1", r.URL.Query().Get("place_id"))
		assert.Equal(t, "secret", r.URL.Query().Get("key"))
		assert.Equal(t, "reviews,url,place_id,rating,user_ratings_total", r.URL.Query().Get("fields"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "OK",
			"result": {
				"place_id": "place-1",
				"rating": 4.8,
				"user_ratings_total": 120,
				"reviews": [
					{"author_name": "Jane Doe", "rating": 5, "text": "Wonderful", "time": 1700000000},
					{"author_name": "Bob", "rating": 4, "time": 1600000000}
				]
			}
		}`))
	}))
	defer server.Close()

	client := NewClient(Config{PlaceID: "place-1", APIKey: "secret", BaseURL: server.URL}, nil)
	require.True(t, client.Enabled())

	reviews, err := client.FetchReviews(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.AuthoritativeReview{
		{AuthorName: "Jane Doe", Rating: 5, Text: "Wonderful", Timestamp: 1700000000},
		{AuthorName: "Bob", Rating: 4, Text: "", Timestamp: 1600000000},
	}, reviews)
}

func TestClientWithoutCredentialsMakesNoRequest(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	for _, cfg := range []Config{
		{APIKey: "secret", BaseURL: server.URL},
		{PlaceID: "place-1", BaseURL: server.URL},
		{BaseURL: server.URL},
	} {
		client := NewClient(cfg, nil)
		assert.False(t, client.Enabled())

		reviews, err := client.FetchReviews(context.Background())
		require.NoError(t, err)
		assert.Empty(t, reviews)
	}
	assert.Zero(t, hits.Load())
}

func TestClientNon2xx(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota", http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := NewClient(Config{PlaceID: "p", APIKey: "k", BaseURL: server.URL}, nil).FetchReviews(context.Background())
	require.ErrorIs(t, err, ErrUnexpectedStatus)
	assert.Contains(t, err.Error(), "429")
}

func TestClientAPIStatusDenied(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"REQUEST_DENIED","error_message":"The provided API key is invalid."}`))
	}))
	defer server.Close()

	_, err := NewClient(Config{PlaceID: "p", APIKey: "k", BaseURL: server.URL}, nil).FetchReviews(context.Background())
	require.ErrorIs(t, err, ErrUnexpectedStatus)
	assert.Contains(t, err.Error(), "REQUEST_DENIED")
}
