package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/teemow/docfiler/internal/filing"
)

const defaultTimeout = 10 * time.Second

// Action is a clickable action attached to a webhook notification.
type Action struct {
	Name  string `json:"name"`
	Input string `json:"input"`
}

// payload is the JSON body posted to the webhook.
type payload struct {
	Title   string   `json:"title"`
	Text    string   `json:"text"`
	Actions []Action `json:"actions"`
}

// Webhook posts filing notifications to a configured HTTP endpoint. It
// satisfies filing.Notifier; delivery failures are returned to the caller,
// which logs them without affecting the run.
type Webhook struct {
	endpoint string
	client   *http.Client
}

// NewWebhook creates a notifier posting to the given endpoint URL.
func NewWebhook(endpoint string) *Webhook {
	return &Webhook{
		endpoint: endpoint,
		client:   &http.Client{Timeout: defaultTimeout},
	}
}

// Notify posts the notification. The primary action opens the filed
// document; a secondary action opens a travel-planning prompt around it.
func (w *Webhook) Notify(ctx context.Context, n filing.Notification) error {
	actions := []Action{
		{Name: "Open", Input: n.FileLink},
	}
	if travel := travelPlanURL(n.FileLink); travel != "" {
		actions = append(actions, Action{Name: "Plan Travel", Input: travel})
	}

	body, err := json.Marshal(payload{
		Title:   n.Title,
		Text:    n.Text,
		Actions: actions,
	})
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// travelPlanURL builds a Gemini prompt URL asking for travel directions to
// the location named in the linked call sheet. Returns "" when there is no
// file link to reference.
func travelPlanURL(fileLink string) string {
	if fileLink == "" {
		return ""
	}
	prompt := "Plan my travel to the location in this call sheet: " + fileLink
	return "https://gemini.google.com/app?q=" + url.QueryEscape(prompt)
}
