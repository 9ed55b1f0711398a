package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/314yush/yolo-backend/internal/models"
)

type priceReader interface {
	GetPrices(ctx context.Context, pairs []string) map[string]models.PricePoint
}

type RefreshConfig struct {
	Interval time.Duration // e.g. 4*time.Second, just under the cache TTL
	Timeout  time.Duration // bound for one refresh sweep
	// OnRefresh, when set, receives the number of pairs that resolved.
	OnRefresh func(resolved int)
}

// PriceRefresher keeps the price cache warm by sweeping the full pair
// catalog on a ticker, so request paths mostly read cached values even
// when the websocket stream is quiet.
type PriceRefresher struct {
	prices priceReader
	pairs  []string
	cfg    RefreshConfig
	logger *zap.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
}

func NewPriceRefresher(prices priceReader, pairs []string, cfg RefreshConfig, logger *zap.Logger) *PriceRefresher {
	if cfg.Interval <= 0 {
		cfg.Interval = 4 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PriceRefresher{
		prices: prices,
		pairs:  pairs,
		cfg:    cfg,
		logger: logger,
	}
}

func (s *PriceRefresher) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Warn("price refresher already running")
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	// Initial warm-up on startup (fire-and-forget)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Timeout)
		defer cancel()
		s.refresh(ctx)
	}()

	// Recurring ticker
	go func() {
		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-s.stopCh:
				return
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Timeout)
				s.refresh(ctx)
				cancel()
			}
		}
	}()

	s.logger.Info("price refresher started",
		zap.Duration("interval", s.cfg.Interval),
		zap.Int("pairs", len(s.pairs)))
}

func (s *PriceRefresher) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	close(s.stopCh)
	s.running = false
	s.logger.Info("price refresher stopped")
}

func (s *PriceRefresher) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// RefreshNow sweeps the catalog outside the normal schedule.
func (s *PriceRefresher) RefreshNow(ctx context.Context) error {
	resolved := s.refresh(ctx)
	if resolved < len(s.pairs) {
		return fmt.Errorf("refreshed %d of %d pairs", resolved, len(s.pairs))
	}
	return nil
}

func (s *PriceRefresher) refresh(ctx context.Context) int {
	results := s.prices.GetPrices(ctx, s.pairs)
	if len(results) < len(s.pairs) {
		s.logger.Warn("price refresh incomplete",
			zap.Int("resolved", len(results)),
			zap.Int("requested", len(s.pairs)))
	} else {
		s.logger.Debug("price cache refreshed", zap.Int("pairs", len(results)))
	}
	if s.cfg.OnRefresh != nil {
		s.cfg.OnRefresh(len(results))
	}
	return len(results)
}
