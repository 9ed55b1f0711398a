package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/314yush/yolo-backend/internal/httputil"
)

const DefaultHermesURL = "https://hermes.pyth.network"

// HermesClient reads spot prices from the Pyth Hermes HTTP API.
type HermesClient struct {
	baseURL    string
	httpClient *http.Client
	retry      httputil.RetryConfig
	logger     *zap.Logger
}

func NewHermesClient(baseURL string, logger *zap.Logger) *HermesClient {
	if baseURL == "" {
		baseURL = DefaultHermesURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HermesClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		retry: httputil.RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   500 * time.Millisecond,
			MaxDelay:    2 * time.Second,
			Logger:      logger,
		},
		logger: logger,
	}
}

// hermesResponse is the parsed=true shape of /v2/updates/price/latest.
// Entries come back in the same order the ids were requested.
type hermesResponse struct {
	Parsed []struct {
		ID    string `json:"id"`
		Price struct {
			Price       string `json:"price"`
			Expo        int32  `json:"expo"`
			PublishTime int64  `json:"publish_time"`
		} `json:"price"`
	} `json:"parsed"`
}

// LatestPrices fetches the current price for each pair, returned in
// request order.
func (c *HermesClient) LatestPrices(ctx context.Context, pairs []string) ([]float64, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	ids, unknown := FeedIDs(pairs)
	if len(unknown) > 0 {
		return nil, fmt.Errorf("no price feed for %v", unknown)
	}

	q := url.Values{}
	for _, id := range ids {
		q.Add("ids[]", id)
	}
	q.Set("parsed", "true")
	endpoint := c.baseURL + "/v2/updates/price/latest?" + q.Encode()

	resp, err := httputil.Do(ctx, c.httpClient, c.retry, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("hermes request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("hermes returned HTTP %d", resp.StatusCode)
	}

	var data hermesResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode hermes response: %w", err)
	}
	if len(data.Parsed) != len(pairs) {
		return nil, fmt.Errorf("hermes returned %d feeds, requested %d", len(data.Parsed), len(pairs))
	}

	prices := make([]float64, len(pairs))
	for i, pair := range pairs {
		price, err := scaledPrice(data.Parsed[i].Price.Price, data.Parsed[i].Price.Expo)
		if err != nil {
			return nil, fmt.Errorf("price for %s: %w", pair, err)
		}
		prices[i] = price
	}
	return prices, nil
}

// scaledPrice applies the feed exponent to the integer price string,
// e.g. ("6721512345678", -8) -> 67215.12345678.
func scaledPrice(raw string, expo int32) (float64, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", raw, err)
	}
	price := d.Shift(expo).InexactFloat64()
	if price <= 0 {
		return 0, fmt.Errorf("non-positive price %s", d.Shift(expo))
	}
	return price, nil
}
