package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	customerrors "github.com/axellelanca/clickfix/internal/errors"
)

// WebhookNotifier posts alerts as {"text": ...} JSON, the format accepted by
// Slack, Mattermost and Teams incoming webhooks.
type WebhookNotifier struct {
	url        string
	httpClient *http.Client // Bounded by the configured timeout
}

// NewWebhookNotifier creates a webhook sink whose requests never outlive timeout.
func NewWebhookNotifier(url string, timeout time.Duration) *WebhookNotifier {
	return &WebhookNotifier{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Notify performs a single POST. Any status outside 2xx is reported as a failure.
func (w *WebhookNotifier) Notify(ctx context.Context, alert Alert) error {
	body, err := json.Marshal(map[string]string{"text": alert.Text()})
	if err != nil {
		return fmt.Errorf("failed to encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return customerrors.ErrNotificationFailed{Sink: "webhook", Reason: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return customerrors.ErrNotificationFailed{Sink: "webhook", Reason: err.Error()}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return customerrors.ErrNotificationFailed{
			Sink:   "webhook",
			Reason: fmt.Sprintf("unexpected status %d", resp.StatusCode),
		}
	}
	return nil
}
