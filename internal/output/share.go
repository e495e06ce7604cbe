package output

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/slack-go/slack"
)

// ErrSharingDisabled is returned when no webhook is configured.
var ErrSharingDisabled = errors.New("slack sharing is not configured")

// SlackSharer posts prompts to a Slack incoming webhook.
type SlackSharer struct {
	webhookURL string
	attempts   uint
	delay      time.Duration
	client     *http.Client
}

// NewSlackSharer creates a sharer. attempts below 1 means a single try.
func NewSlackSharer(webhookURL string, attempts int) *SlackSharer {
	if attempts < 1 {
		attempts = 1
	}
	return &SlackSharer{
		webhookURL: strings.TrimSpace(webhookURL),
		attempts:   uint(attempts),
		delay:      500 * time.Millisecond,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled reports whether a webhook URL is set.
func (s *SlackSharer) Enabled() bool {
	return s != nil && s.webhookURL != ""
}

// Share posts the prompt inside a code block so Slack keeps it verbatim.
func (s *SlackSharer) Share(ctx context.Context, g Generation) error {
	if !s.Enabled() {
		return ErrSharingDisabled
	}

	msg := &slack.WebhookMessage{
		Text: fmt.Sprintf("Prompt for a %s (%s):\n```\n%s\n```",
			strings.ToLower(g.Params.OutputFormat), g.Params.Audience, g.Prompt),
	}

	err := retry.Do(
		func() error {
			return slack.PostWebhookCustomHTTPContext(ctx, s.webhookURL, s.client, msg)
		},
		retry.Context(ctx),
		retry.Attempts(s.attempts),
		retry.Delay(s.delay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return fmt.Errorf("share to slack: %w", err)
	}
	return nil
}
