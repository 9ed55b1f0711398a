package notifications

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestSend_NoWebhook(t *testing.T) {
	s := NewSender("", "TestService", zap.NewNop())
	if s.Enabled() {
		t.Fatal("should not be enabled with empty URL")
	}
	// Logs only, must not error or block.
	s.Send("hello from test")
}

func TestSend_SlackFormat(t *testing.T) {
	var received map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &received)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewSender(srv.URL, "TestService", zap.NewNop())
	if !s.Enabled() {
		t.Fatal("should be enabled")
	}

	s.Send("price cache warmed")

	if received["username"] != "TestService" {
		t.Fatalf("username: got %s", received["username"])
	}
	if received["text"] == "" {
		t.Fatal("text should not be empty")
	}
	t.Logf("Slack payload: %+v", received)
}

func TestSend_DiscordFormat(t *testing.T) {
	var received map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &received)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	// URL containing "discord" switches the payload shape.
	s := NewSender(srv.URL+"/discord/webhook", "YoloAPI", zap.NewNop())
	s.TradeBuilt("open", "ETH/USD", "0x1234567890abcdef1234567890abcdef12345678")

	if received["content"] == "" {
		t.Fatal("content should not be empty for Discord")
	}
	if received["username"] != "YoloAPI" {
		t.Fatalf("username: got %s", received["username"])
	}
	if _, hasText := received["text"]; hasText {
		t.Fatal("Discord payload should not have 'text' field")
	}
	t.Logf("Discord payload: %+v", received)
}

func TestSend_WebhookError(t *testing.T) {
	s := NewSender("http://localhost:1/bogus", "TestService", zap.NewNop())
	// Must not panic, just log the failure.
	s.Send("this will fail gracefully")
}

func TestDefaultServiceName(t *testing.T) {
	s := NewSender("", "", nil)
	if s.serviceName != "yolo-trade-api" {
		t.Fatalf("expected default service name, got %s", s.serviceName)
	}
}

func TestShortAddress(t *testing.T) {
	got := shortAddress("0x1234567890abcdef1234567890abcdef12345678")
	if got != "0x1234..5678" {
		t.Fatalf("shortAddress: got %s", got)
	}
	if shortAddress("0xabc") != "0xabc" {
		t.Fatal("short input should pass through")
	}
}
