package scheduler_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/314yush/yolo-backend/internal/models"
	"github.com/314yush/yolo-backend/internal/scheduler"
)

type stubPrices struct {
	calls  atomic.Int32
	prices map[string]models.PricePoint
}

func (s *stubPrices) GetPrices(ctx context.Context, pairs []string) map[string]models.PricePoint {
	s.calls.Add(1)
	out := make(map[string]models.PricePoint, len(pairs))
	for _, pair := range pairs {
		if p, ok := s.prices[pair]; ok {
			out[pair] = p
		}
	}
	return out
}

func TestPriceRefresher_RefreshNow(t *testing.T) {
	prices := &stubPrices{prices: map[string]models.PricePoint{
		"BTC/USD": {Pair: "BTC/USD", Price: 60000},
		"ETH/USD": {Pair: "ETH/USD", Price: 1962},
	}}

	var lastResolved atomic.Int32
	ref := scheduler.NewPriceRefresher(prices, []string{"BTC/USD", "ETH/USD"}, scheduler.RefreshConfig{
		Interval: time.Hour,
		OnRefresh: func(resolved int) {
			lastResolved.Store(int32(resolved))
		},
	}, zap.NewNop())

	if err := ref.RefreshNow(context.Background()); err != nil {
		t.Fatalf("RefreshNow: %v", err)
	}
	if lastResolved.Load() != 2 {
		t.Fatalf("expected 2 resolved pairs, got %d", lastResolved.Load())
	}
}

func TestPriceRefresher_RefreshNow_Partial(t *testing.T) {
	prices := &stubPrices{prices: map[string]models.PricePoint{
		"BTC/USD": {Pair: "BTC/USD", Price: 60000},
	}}

	ref := scheduler.NewPriceRefresher(prices, []string{"BTC/USD", "XRP/USD"}, scheduler.RefreshConfig{
		Interval: time.Hour,
	}, zap.NewNop())

	if err := ref.RefreshNow(context.Background()); err == nil {
		t.Fatal("expected error when a pair cannot be resolved")
	}
}

func TestPriceRefresher_StartStop(t *testing.T) {
	prices := &stubPrices{prices: map[string]models.PricePoint{
		"BTC/USD": {Pair: "BTC/USD", Price: 60000},
	}}

	ref := scheduler.NewPriceRefresher(prices, []string{"BTC/USD"}, scheduler.RefreshConfig{
		Interval: 20 * time.Millisecond,
	}, zap.NewNop())

	ref.Start()
	if !ref.Running() {
		t.Fatal("expected running after Start")
	}
	// Double start is a logged no-op.
	ref.Start()

	time.Sleep(70 * time.Millisecond)
	ref.Stop()
	if ref.Running() {
		t.Fatal("expected not running after Stop")
	}

	// Initial sweep plus at least two ticks.
	if prices.calls.Load() < 3 {
		t.Fatalf("expected at least 3 sweeps, got %d", prices.calls.Load())
	}

	after := prices.calls.Load()
	time.Sleep(50 * time.Millisecond)
	if prices.calls.Load() != after {
		t.Fatal("sweeps must stop after Stop")
	}
}
