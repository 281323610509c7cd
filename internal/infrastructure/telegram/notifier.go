package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"ReviewsScanner/internal/domain"
	"ReviewsScanner/internal/ports"
)

// DefaultAPIURL is the public Bot API endpoint.
const DefaultAPIURL = "https://api.telegram.org"

// Notifier sends run summaries to a Telegram chat via bot API.
type Notifier struct {
	botToken string
	chatID   string
	client   *resty.Client
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers bot token and chat identifier. An empty apiURL uses DefaultAPIURL.
func NewNotifier(botToken, chatID, apiURL string) *Notifier {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	client := resty.New().
		SetBaseURL(apiURL).
		SetTimeout(5 * time.Second)
	return &Notifier{
		botToken: botToken,
		chatID:   chatID,
		client:   client,
	}
}

// Configured reports whether both token and chat id are set.
func (n *Notifier) Configured() bool {
	return n.botToken != "" && n.chatID != ""
}

// PublishSummary posts a Markdown run summary to Telegram.
func (n *Notifier) PublishSummary(ctx context.Context, summary domain.RunSummary) error {
	if !n.Configured() || n.client == nil {
		return fmt.Errorf("telegram notifier misconfigured")
	}

	resp, err := n.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"chat_id":    n.chatID,
			"text":       FormatSummary(summary),
			"parse_mode": "Markdown",
		}).
		Post("/bot" + n.botToken + "/sendMessage")
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}

	if resp.IsError() {
		return fmt.Errorf("telegram error: %s", resp.Status())
	}

	return nil
}

// FormatSummary renders the message body.
func FormatSummary(s domain.RunSummary) string {
	var b strings.Builder
	b.WriteString("*Reviews refreshed*\n")
	fmt.Fprintf(&b, "Place: `%s`\n", strings.ReplaceAll(s.PlaceURL, "`", ""))
	fmt.Fprintf(&b, "Scraped: %d\n", s.RawCount)
	if s.APICount > 0 {
		fmt.Fprintf(&b, "Verified: %d (API returned %d)\n", s.VerifiedCount, s.APICount)
	} else {
		b.WriteString("Verified: skipped\n")
	}
	fmt.Fprintf(&b, "Displayed: %d", s.SelectedCount)
	if s.NewCount >= 0 {
		fmt.Fprintf(&b, " (%d new)", s.NewCount)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Took: %s\n", s.Duration().Round(100*time.Millisecond))
	fmt.Fprintf(&b, "Run: `%s`", s.RunID)
	return b.String()
}
