package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"
)

type fakeNotifier struct {
	ch   Channel
	err  error
	sent []Message
}

func (f *fakeNotifier) Channel() Channel { return f.ch }

func (f *fakeNotifier) Send(_ context.Context, msg Message) error {
	f.sent = append(f.sent, msg)
	return f.err
}

func TestDispatcherSendAll(t *testing.T) {
	d := NewDispatcher()
	ok := &fakeNotifier{ch: ChannelWebhook}
	bad := &fakeNotifier{ch: ChannelTelegram, err: errors.New("down")}
	d.Register(ok)
	d.Register(bad)

	err := d.SendAll(context.Background(), Message{Title: "t"})
	if err == nil || !strings.Contains(err.Error(), "1/2") {
		t.Fatalf("expected partial failure, got %v", err)
	}
	if len(ok.sent) != 1 || len(bad.sent) != 1 {
		t.Fatal("every channel should be attempted")
	}
}

func TestFromConfig(t *testing.T) {
	if FromConfig(Config{}).Len() != 0 {
		t.Fatal("empty config should register nothing")
	}
	d := FromConfig(Config{
		Webhook:  WebhookConfig{URL: "http://example.com"},
		Telegram: TelegramConfig{BotToken: "x"},
	})
	if d.Len() != 1 {
		t.Fatalf("telegram without chat id should stay disabled, got %d channels", d.Len())
	}
}

func TestWebhookNotifier(t *testing.T) {
	var got DigestPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Token") != "secret" {
			t.Errorf("missing custom header")
		}
		if r.Header.Get(HeaderRun) != "run-1" || r.Header.Get(HeaderEvent) != EventDigest {
			t.Errorf("unexpected digest headers: %v", r.Header)
		}
		body, _ := io.ReadAll(r.Body)
		if sig := r.Header.Get(HeaderSignature); sig != Sign("k3y", body) {
			t.Errorf("signature = %q", sig)
		}
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("decode: %v", err)
		}
	}))
	defer srv.Close()

	n := NewWebhookNotifier(WebhookConfig{URL: srv.URL, Secret: "k3y", Headers: map[string]string{"X-Token": "secret"}})
	msg := Message{
		Title:   "Digest",
		Body:    "- a.",
		Count:   1,
		RunID:   "run-1",
		Date:    "2025-03-14",
		Reports: []string{"out/2025-03-14.md", "out/latest.md"},
		Articles: []Article{
			{Title: "A", Link: "https://a.example/1", Source: "a.example", Summary: "- a."},
		},
	}
	if err := n.Send(context.Background(), msg); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got.Event != EventDigest || got.RunID != "run-1" || got.Count != 1 || got.Markdown != "- a." {
		t.Fatalf("unexpected payload %+v", got)
	}
	if len(got.Reports) != 2 || len(got.Articles) != 1 || got.Articles[0].Link != "https://a.example/1" {
		t.Fatalf("unexpected digest content %+v", got)
	}
}

func TestDigestPayloadEmptyArticles(t *testing.T) {
	body, err := json.Marshal(NewDigestPayload(Message{Title: "Digest"}))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(body), `"articles":[]`) {
		t.Errorf("expected empty article list, got %s", body)
	}
	if strings.Contains(string(body), "run_id") {
		t.Errorf("empty run id should be omitted, got %s", body)
	}
}

func TestWebhookNotifierStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	if err := NewWebhookNotifier(WebhookConfig{URL: srv.URL}).Send(context.Background(), Message{}); err == nil {
		t.Fatal("expected error for 502")
	}
}

func TestTelegramNotifier(t *testing.T) {
	var payload map[string]any
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		json.NewDecoder(r.Body).Decode(&payload)
	}))
	defer srv.Close()

	n := NewTelegramNotifier(TelegramConfig{BotToken: "TOKEN", ChatID: "42", APIBase: srv.URL})
	long := strings.Repeat("é", 5000)
	if err := n.Send(context.Background(), Message{Title: "Digest", Body: long}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if path != "/botTOKEN/sendMessage" {
		t.Errorf("unexpected path %s", path)
	}
	if payload["chat_id"] != "42" {
		t.Errorf("unexpected chat id %v", payload["chat_id"])
	}
	text, _ := payload["text"].(string)
	if utf8.RuneCountInString(text) != telegramMaxText || !strings.HasPrefix(text, "Digest\n\n") {
		t.Errorf("text not truncated to %d characters: %d", telegramMaxText, utf8.RuneCountInString(text))
	}
}

func TestTelegramNotifierAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"ok":false}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	n := NewTelegramNotifier(TelegramConfig{BotToken: "T", ChatID: "1", APIBase: srv.URL})
	if err := n.Send(context.Background(), Message{Body: "x"}); err == nil {
		t.Fatal("expected API error")
	}
}
