package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
)

// Base mainnet deployment of the Avantis contracts.
const (
	DefaultChainID               = 8453
	DefaultTradingAddress        = "0x44914408af82bC9983bbb330e3578E1105e11d4e"
	DefaultTradingStorageAddress = "0x8a311D7048c35985aa31C131B9A13e03a5f7422d"
	DefaultUSDCAddress           = "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"
)

type Config struct {
	// Server
	APIPort         int
	APIKey          string
	CORSAllowOrigin string

	// Chain
	BaseRPCURL            string
	ChainID               int64
	TradingAddress        string
	TradingStorageAddress string
	USDCAddress           string
	ChainReadTimeout      time.Duration

	// Price pipeline
	HermesBaseURL        string
	HermesWSURL          string
	PriceStreamEnabled   bool
	PriceTTL             time.Duration
	PriceFetchTimeout    time.Duration
	PriceRefreshInterval time.Duration

	// Risk limits
	MinLeverage        int
	MaxLeverage        int
	MaxPositionSizeUSD float64
	MinAllowanceUSD    float64

	// Notifications
	WebhookURL  string
	ServiceName string

	// Logging
	LogLevel string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		// Server
		APIPort:         envInt("API_PORT", 8000),
		APIKey:          envStr("API_KEY", ""),
		CORSAllowOrigin: envStr("CORS_ALLOW_ORIGIN", "*"),

		// Chain
		BaseRPCURL:            envStr("BASE_RPC_URL", ""),
		ChainID:               int64(envInt("CHAIN_ID", DefaultChainID)),
		TradingAddress:        envStr("TRADING_CONTRACT_ADDRESS", DefaultTradingAddress),
		TradingStorageAddress: envStr("TRADING_STORAGE_ADDRESS", DefaultTradingStorageAddress),
		USDCAddress:           envStr("USDC_ADDRESS", DefaultUSDCAddress),
		ChainReadTimeout:      time.Duration(envInt("CHAIN_READ_TIMEOUT_SECONDS", 10)) * time.Second,

		// Price pipeline
		HermesBaseURL:        envStr("HERMES_BASE_URL", "https://hermes.pyth.network"),
		HermesWSURL:          envStr("HERMES_WS_URL", "wss://hermes.pyth.network/ws"),
		PriceStreamEnabled:   envBool("PRICE_STREAM_ENABLED", false),
		PriceTTL:             time.Duration(envInt("PRICE_CACHE_TTL_SECONDS", 5)) * time.Second,
		PriceFetchTimeout:    time.Duration(envInt("PRICE_FETCH_TIMEOUT_SECONDS", 10)) * time.Second,
		PriceRefreshInterval: time.Duration(envInt("PRICE_REFRESH_INTERVAL_SECONDS", 30)) * time.Second,

		// Risk limits
		MinLeverage:        envInt("MIN_LEVERAGE", 75),
		MaxLeverage:        envInt("MAX_LEVERAGE", 250),
		MaxPositionSizeUSD: envFloat("MAX_POSITION_SIZE_USD", 0),
		MinAllowanceUSD:    envFloat("MIN_ALLOWANCE_USD", 10000),

		// Notifications
		WebhookURL:  envStr("WEBHOOK_URL", ""),
		ServiceName: envStr("SERVICE_NAME", "yolo-trade-api"),

		// Logging
		LogLevel: envStr("LOG_LEVEL", "info"),
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string

	if c.BaseRPCURL == "" {
		errs = append(errs, "BASE_RPC_URL is required")
	}
	if c.ChainID <= 0 {
		errs = append(errs, "CHAIN_ID must be positive")
	}
	for _, a := range []struct{ name, addr string }{
		{"TRADING_CONTRACT_ADDRESS", c.TradingAddress},
		{"TRADING_STORAGE_ADDRESS", c.TradingStorageAddress},
		{"USDC_ADDRESS", c.USDCAddress},
	} {
		if !common.IsHexAddress(a.addr) {
			errs = append(errs, a.name+" is not a valid address")
		}
	}
	if c.MinLeverage <= 0 || c.MaxLeverage < c.MinLeverage {
		errs = append(errs, "leverage bounds invalid: need 0 < MIN_LEVERAGE <= MAX_LEVERAGE")
	}

	if c.APIKey == "" {
		fmt.Println("[WARN] API_KEY not set, REST API has no authentication")
	}
	if c.PriceRefreshInterval <= 0 {
		fmt.Println("[WARN] price refresh disabled, cache fills on demand only")
	}
	if c.MaxPositionSizeUSD == 0 {
		fmt.Println("[WARN] MAX_POSITION_SIZE_USD is 0, no notional cap on built trades")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

func (c *Config) Print() {
	fmt.Println("=== Yolo Trade API Configuration ===")
	fmt.Printf("Chain ID: %d\n", c.ChainID)
	fmt.Printf("Trading: %s...\n", truncAddr(c.TradingAddress))
	fmt.Printf("Storage: %s...\n", truncAddr(c.TradingStorageAddress))
	fmt.Printf("USDC:    %s...\n", truncAddr(c.USDCAddress))
	fmt.Println("--------------------------------------")
	fmt.Println("Price Pipeline:")
	fmt.Printf("  Hermes: %s\n", c.HermesBaseURL)
	fmt.Printf("  Stream: %s\n", boolLabel(c.PriceStreamEnabled, "enabled", "disabled"))
	fmt.Printf("  Cache TTL: %s\n", c.PriceTTL)
	if c.PriceRefreshInterval > 0 {
		fmt.Printf("  Refresh: every %s\n", c.PriceRefreshInterval)
	} else {
		fmt.Println("  Refresh: disabled")
	}
	fmt.Println("--------------------------------------")
	fmt.Println("Risk Limits:")
	fmt.Printf("  Leverage: %dx - %dx\n", c.MinLeverage, c.MaxLeverage)
	if c.MaxPositionSizeUSD > 0 {
		fmt.Printf("  Max Position: $%.0f\n", c.MaxPositionSizeUSD)
	} else {
		fmt.Println("  Max Position: uncapped")
	}
	fmt.Println("--------------------------------------")
	fmt.Printf("API Port: %d\n", c.APIPort)
	fmt.Printf("Auth: %s\n", boolLabel(c.APIKey != "", "API key required", "open"))
	fmt.Printf("Webhook: %s\n", boolLabel(c.WebhookURL != "", "configured", "not set"))
	fmt.Println("======================================")
}

// --- helpers ---

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		v = strings.ToLower(v)
		return v == "true" || v == "1" || v == "yes"
	}
	return fallback
}

func truncAddr(addr string) string {
	if len(addr) > 10 {
		return addr[:10]
	}
	return addr
}

func boolLabel(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
