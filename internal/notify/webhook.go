package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultWebhookTimeout bounds a single delivery.
const DefaultWebhookTimeout = 10 * time.Second

// WebhookSender posts messages to the chat transport as
// {"user_id": <id>, "text": <message>}. Any 2xx status is a success.
type WebhookSender struct {
	url        string
	httpClient *http.Client
}

// NewWebhookSender creates a sender for url. A nil httpClient uses one with
// DefaultWebhookTimeout.
func NewWebhookSender(url string, httpClient *http.Client) *WebhookSender {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultWebhookTimeout}
	}
	return &WebhookSender{url: url, httpClient: httpClient}
}

type webhookMessage struct {
	UserID int64  `json:"user_id"`
	Text   string `json:"text"`
}

// Send delivers text to userID.
func (s *WebhookSender) Send(ctx context.Context, userID int64, text string) error {
	body, err := json.Marshal(webhookMessage{UserID: userID, Text: text})
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
