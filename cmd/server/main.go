package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/314yush/yolo-backend/internal/api"
	"github.com/314yush/yolo-backend/internal/avantis"
	"github.com/314yush/yolo-backend/internal/config"
	"github.com/314yush/yolo-backend/internal/ethereum"
	"github.com/314yush/yolo-backend/internal/logger"
	"github.com/314yush/yolo-backend/internal/notifications"
	"github.com/314yush/yolo-backend/internal/pricefeed"
	"github.com/314yush/yolo-backend/internal/risk"
	"github.com/314yush/yolo-backend/internal/scheduler"
)

const banner = `
╔══════════════════════════════════════╗
║        YOLO Trade API v1.0           ║
║   Avantis delegated trade builder    ║
╚══════════════════════════════════════╝
`

func main() {
	fmt.Print(banner)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	cfg.Print()

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Chain client, checked against the configured network before
	// anything else starts.
	client, err := ethereum.NewClient(cfg.BaseRPCURL)
	if err != nil {
		log.Fatal("rpc dial failed", zap.Error(err))
	}
	defer client.Close()

	checkCtx, cancelCheck := context.WithTimeout(context.Background(), 10*time.Second)
	chainID, err := client.ChainID(checkCtx)
	cancelCheck()
	if err != nil {
		log.Fatal("chain id check failed", zap.Error(err))
	}
	if chainID.Int64() != cfg.ChainID {
		log.Fatal("rpc endpoint is on the wrong network",
			zap.Int64("expected", cfg.ChainID),
			zap.Int64("got", chainID.Int64()))
	}
	log.Info("connected to chain", zap.Int64("chain_id", chainID.Int64()))

	// Contract encode/read stack
	enc, err := avantis.NewEncoder()
	if err != nil {
		log.Fatal("encoder init failed", zap.Error(err))
	}
	asm, err := avantis.NewAssembler(enc, cfg.ChainID, cfg.USDCAddress)
	if err != nil {
		log.Fatal("assembler init failed", zap.Error(err))
	}
	reader, err := avantis.NewReader(client, avantis.Contracts{
		Trading:        common.HexToAddress(cfg.TradingAddress),
		TradingStorage: common.HexToAddress(cfg.TradingStorageAddress),
		USDC:           common.HexToAddress(cfg.USDCAddress),
	}, cfg.ChainReadTimeout, log)
	if err != nil {
		log.Fatal("reader init failed", zap.Error(err))
	}

	guard := risk.NewGuardian(risk.Limits{
		MinLeverage:        cfg.MinLeverage,
		MaxLeverage:        cfg.MaxLeverage,
		MaxPositionSizeUSD: cfg.MaxPositionSizeUSD,
	})

	// Price pipeline: Hermes REST behind the cache, optional websocket
	// stream and refresh sweep keeping it warm.
	pairNames := make([]string, 0)
	for _, pair := range avantis.Pairs() {
		pairNames = append(pairNames, pair.Name)
	}

	hermes := pricefeed.NewHermesClient(cfg.HermesBaseURL, log)
	cache := pricefeed.NewCache(hermes, pricefeed.CacheOptions{
		TTL:          cfg.PriceTTL,
		FetchTimeout: cfg.PriceFetchTimeout,
	}, log)

	var streamer *pricefeed.Streamer
	if cfg.PriceStreamEnabled {
		streamer = pricefeed.NewStreamer(cfg.HermesWSURL, cache, pairNames, log)
		if err := streamer.Start(); err != nil {
			log.Fatal("price streamer start failed", zap.Error(err))
		}
	}

	var refresher *scheduler.PriceRefresher
	if cfg.PriceRefreshInterval > 0 {
		refresher = scheduler.NewPriceRefresher(cache, pairNames, scheduler.RefreshConfig{
			Interval: cfg.PriceRefreshInterval,
		}, log)
		refresher.Start()
	}

	builder := avantis.NewBuilder(enc, asm, reader, cache, guard,
		common.HexToAddress(cfg.TradingAddress), log)

	notify := notifications.NewSender(cfg.WebhookURL, cfg.ServiceName, log)

	// Graceful shutdown context
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := api.NewServer(builder, reader, cache, notify, api.Options{
		Port:            cfg.APIPort,
		APIKey:          cfg.APIKey,
		CORSAllowOrigin: cfg.CORSAllowOrigin,
		TradingAddress:  cfg.TradingAddress,
		MinAllowanceUSD: cfg.MinAllowanceUSD,
	}, log)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("api server error", zap.Error(err))
			stop()
		}
	}()

	log.Info("all services started", zap.Int("port", cfg.APIPort))
	go notify.Send(fmt.Sprintf("service started on chain %d", cfg.ChainID))

	// Wait for shutdown signal
	<-ctx.Done()
	log.Info("shutting down")

	if refresher != nil {
		refresher.Stop()
	}
	if streamer != nil {
		streamer.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("api shutdown error", zap.Error(err))
	}
	log.Info("shutdown complete")
}
