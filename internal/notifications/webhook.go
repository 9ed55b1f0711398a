package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/314yush/yolo-backend/internal/httputil"
)

// Sender posts service events to a Slack or Discord webhook. With no
// URL configured, events still land in the service log and nothing is
// posted.
type Sender struct {
	webhookURL  string
	serviceName string
	httpClient  *http.Client
	retry       httputil.RetryConfig
	logger      *zap.Logger
}

func NewSender(webhookURL, serviceName string, logger *zap.Logger) *Sender {
	if serviceName == "" {
		serviceName = "yolo-trade-api"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sender{
		webhookURL:  webhookURL,
		serviceName: serviceName,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		retry: httputil.RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   1 * time.Second,
			MaxDelay:    5 * time.Second,
			Logger:      logger,
		},
		logger: logger,
	}
}

func (s *Sender) Send(msg string) {
	s.logger.Info("notify", zap.String("message", msg))

	if s.webhookURL == "" {
		return
	}

	formatted := fmt.Sprintf("[%s] %s", s.serviceName, msg)
	body, err := json.Marshal(s.formatPayload(formatted))
	if err != nil {
		s.logger.Warn("marshal notification", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := httputil.Do(ctx, s.httpClient, s.retry, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		s.logger.Warn("webhook send failed after retries", zap.Error(err))
		return
	}
	resp.Body.Close()
}

// TradeBuilt announces a freshly built transaction. Safe to call from
// a request handler via go, it never returns an error.
func (s *Sender) TradeBuilt(action, pair, trader string) {
	s.Send(fmt.Sprintf("%s tx built: %s for %s", action, pair, shortAddress(trader)))
}

func (s *Sender) formatPayload(msg string) map[string]string {
	if strings.Contains(s.webhookURL, "discord") {
		return map[string]string{
			"content":  msg,
			"username": s.serviceName,
		}
	}
	return map[string]string{
		"text":     fmt.Sprintf("`%s`", msg),
		"username": s.serviceName,
	}
}

func (s *Sender) Enabled() bool {
	return s.webhookURL != ""
}

func shortAddress(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + ".." + addr[len(addr)-4:]
}
