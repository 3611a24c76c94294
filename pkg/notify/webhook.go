package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Webhook request headers.
const (
	HeaderEvent     = "X-Alertdigest-Event"
	HeaderRun       = "X-Alertdigest-Run"
	HeaderSignature = "X-Alertdigest-Signature"

	EventDigest = "digest.completed"
)

// WebhookConfig holds webhook configuration. When Secret is set every
// request carries an HMAC-SHA256 of the body in HeaderSignature.
type WebhookConfig struct {
	URL     string            `yaml:"url" json:"url" env:"WEBHOOK_URL"`
	Secret  string            `yaml:"secret" json:"secret" env:"WEBHOOK_SECRET"`
	Headers map[string]string `yaml:"headers" json:"headers"`
}

// DigestPayload is the JSON document posted for each run.
type DigestPayload struct {
	Event    string    `json:"event"`
	RunID    string    `json:"run_id,omitempty"`
	Date     string    `json:"date,omitempty"`
	Title    string    `json:"title"`
	Count    int       `json:"count"`
	Reports  []string  `json:"reports,omitempty"`
	Articles []Article `json:"articles"`
	Markdown string    `json:"markdown"`
}

// NewDigestPayload builds the webhook document for msg.
func NewDigestPayload(msg Message) DigestPayload {
	articles := msg.Articles
	if articles == nil {
		articles = []Article{}
	}
	return DigestPayload{
		Event:    EventDigest,
		RunID:    msg.RunID,
		Date:     msg.Date,
		Title:    msg.Title,
		Count:    msg.Count,
		Reports:  msg.Reports,
		Articles: articles,
		Markdown: msg.Body,
	}
}

// WebhookNotifier posts run digests as JSON to a URL.
type WebhookNotifier struct {
	config WebhookConfig
	http   *http.Client
}

// NewWebhookNotifier creates a new webhook notifier.
func NewWebhookNotifier(cfg WebhookConfig) *WebhookNotifier {
	return &WebhookNotifier{
		config: cfg,
		http:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (w *WebhookNotifier) Channel() Channel { return ChannelWebhook }

// Send posts the digest payload of msg to the webhook URL.
func (w *WebhookNotifier) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(NewDigestPayload(msg))
	if err != nil {
		return fmt.Errorf("marshal digest: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.config.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderEvent, EventDigest)
	if msg.RunID != "" {
		req.Header.Set(HeaderRun, msg.RunID)
	}
	if w.config.Secret != "" {
		req.Header.Set(HeaderSignature, Sign(w.config.Secret, body))
	}
	for k, v := range w.config.Headers {
		req.Header.Set(k, v)
	}

	resp, err := w.http.Do(req)
	if err != nil {
		return fmt.Errorf("post digest %s: %w", msg.RunID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook rejected digest %s: status %d", msg.RunID, resp.StatusCode)
	}
	return nil
}

// Sign returns "sha256=" followed by the hex HMAC-SHA256 of body.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}
