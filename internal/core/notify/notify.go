// Package notify delivers best-effort completion and failure notices.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sonalmogra28/benefitsaichatbot-sub001/internal/core"
)

var (
	_ core.Notifier = (*LogNotifier)(nil)
	_ core.Notifier = (*WebhookNotifier)(nil)
)

// LogNotifier writes notices to the log. It is the fallback when no
// webhook endpoint is configured.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(_ context.Context, userID, title, body string) error {
	n.log.Info("notification", "user_id", userID, "title", title, "body", body)
	return nil
}

// WebhookNotifier POSTs notices as JSON to a configured endpoint.
type WebhookNotifier struct {
	endpoint string
	client   *http.Client
}

func NewWebhookNotifier(endpoint string) *WebhookNotifier {
	return &WebhookNotifier{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type webhookPayload struct {
	UserID string `json:"user_id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

func (n *WebhookNotifier) Notify(ctx context.Context, userID, title, body string) error {
	payload, err := json.Marshal(webhookPayload{UserID: userID, Title: title, Body: body})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("deliver notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("deliver notification: status %d", resp.StatusCode)
	}
	return nil
}
