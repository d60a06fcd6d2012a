package notifier

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"time"
)

// WebhookNotifier posts completion events to the n8n matching workflow.
// Strictly best-effort: every failure mode is logged and swallowed, and an
// unset URL turns Notify into a no-op.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (n *WebhookNotifier) Notify(event string, payload map[string]interface{}) {
	if n.url == "" {
		log.Println("webhook URL not configured, skipping workflow trigger")
		return
	}

	body := map[string]interface{}{"event": event}
	for k, v := range payload {
		body[k] = v
	}

	data, err := json.Marshal(body)
	if err != nil {
		log.Printf("failed to encode webhook payload: %v", err)
		return
	}

	resp, err := n.client.Post(n.url, "application/json", bytes.NewReader(data))
	if err != nil {
		log.Printf("failed to trigger workflow webhook: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		log.Println("triggered workflow webhook:", event)
	} else {
		log.Printf("workflow webhook returned status %d", resp.StatusCode)
	}
}
