// Package places reads reviews from the Google Places details API.
package places

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"

	"ReviewsScanner/internal/domain"
	"ReviewsScanner/internal/ports"
)

const (
	DefaultBaseURL = "https://maps.googleapis.com"
	DefaultTimeout = 15 * time.Second

	detailsPath   = "/maps/api/place/details/json"
	detailsFields = "reviews,url,place_id,rating,user_ratings_total"
)

// ErrUnexpectedStatus is returned for non-2xx responses and for API level
// statuses other than OK.
var ErrUnexpectedStatus = errors.New("unexpected places api status")

// Config holds the credentials and endpoint. Both PlaceID and APIKey are
// needed for the client to be enabled.
type Config struct {
	PlaceID string
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Client fetches the authoritative review list of one place.
type Client struct {
	http    *resty.Client
	placeID string
	apiKey  string
	logger  *slog.Logger
}

var _ ports.AuthoritativeSource = (*Client)(nil)

type detailsResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Result       struct {
		PlaceID string      `json:"place_id"`
		URL     string      `json:"url"`
		Reviews []apiReview `json:"reviews"`
		Rating  float64     `json:"rating"`
		Total   int         `json:"user_ratings_total"`
	} `json:"result"`
}

type apiReview struct {
	AuthorName string `json:"author_name"`
	Rating     int    `json:"rating"`
	Text       string `json:"text"`
	Time       int64  `json:"time"`
}

// NewClient builds a client; missing BaseURL and Timeout take the defaults.
func NewClient(cfg Config, log *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	httpClient := resty.New()
	httpClient.SetBaseURL(cfg.BaseURL)
	httpClient.SetTimeout(cfg.Timeout)
	httpClient.SetHeader("Accept", "application/json")

	return &Client{
		http:    httpClient,
		placeID: cfg.PlaceID,
		apiKey:  cfg.APIKey,
		logger:  log,
	}
}

// Enabled reports whether both credentials are present.
func (c *Client) Enabled() bool {
	return c.placeID != "" && c.apiKey != ""
}

// FetchReviews returns the place's reviews. A disabled client returns an
// empty list without touching the network.
func (c *Client) FetchReviews(ctx context.Context) ([]domain.AuthoritativeReview, error) {
	if !c.Enabled() {
		return nil, nil
	}

	var body detailsResponse
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"place_id": c.placeID,
			"fields":   detailsFields,
			"key":      c.apiKey,
		}).
		SetResult(&body).
		Get(detailsPath)
	if err != nil {
		return nil, fmt.Errorf("places details request: %w", err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("%w: http %d", ErrUnexpectedStatus, res.StatusCode())
	}
	if body.Status != "" && body.Status != "OK" {
		return nil, fmt.Errorf("%w: %s %s", ErrUnexpectedStatus, body.Status, body.ErrorMessage)
	}

	reviews := make([]domain.AuthoritativeReview, 0, len(body.Result.Reviews))
	for _, r := range body.Result.Reviews {
		reviews = append(reviews, domain.AuthoritativeReview{
			AuthorName: r.AuthorName,
			Rating:     r.Rating,
			Text:       r.Text,
			Timestamp:  r.Time,
		})
	}

	if c.logger != nil {
		c.logger.Debug("places details fetched",
			"place_id", body.Result.PlaceID,
			"reviews", len(reviews),
			"rating", body.Result.Rating,
			"total", body.Result.Total,
		)
	}
	return reviews, nil
}
