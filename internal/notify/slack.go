package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// SlackWebhook posts reminder notifications to a Slack incoming webhook.
type SlackWebhook struct {
	url  string
	http *http.Client
}

func NewSlackWebhook(url string, timeout time.Duration) *SlackWebhook {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SlackWebhook{
		url: url,
		http: &http.Client{
			Timeout: timeout,
		},
	}
}

func (s *SlackWebhook) SendNotification(ctx context.Context, userID, eventKey string, payload map[string]any) error {
	text := fmt.Sprintf("*%s* for %s", eventKey, userID)
	if title, ok := payload["reminderTitle"].(string); ok && title != "" {
		text += "\n" + title
	}
	if desc, ok := payload["reminderDescription"].(string); ok && desc != "" {
		text += "\n" + desc
	}
	body, err := json.Marshal(map[string]any{"text": text})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("slack webhook status: %s", resp.Status)
	}
	return nil
}
