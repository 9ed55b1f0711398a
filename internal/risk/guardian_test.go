package risk

import (
	"errors"
	"testing"

	"github.com/314yush/yolo-backend/internal/models"
)

func openReq(leverage int, collateral float64) models.OpenTradeRequest {
	return models.OpenTradeRequest{
		Trader:     "0x1111111111111111111111111111111111111111",
		Pair:       "ETH/USD",
		PairIndex:  1,
		Leverage:   leverage,
		IsLong:     true,
		Collateral: collateral,
	}
}

// --- CheckOpen ---

func TestCheckOpen_Allowed(t *testing.T) {
	g := NewGuardian(DefaultLimits())
	if err := g.CheckOpen(openReq(100, 10)); err != nil {
		t.Fatalf("expected trade to be allowed, got: %v", err)
	}
}

func TestCheckOpen_LeverageBelowMin(t *testing.T) {
	g := NewGuardian(DefaultLimits())
	err := g.CheckOpen(openReq(10, 10))
	if !errors.Is(err, models.ErrInvalidLeverage) {
		t.Fatalf("expected ErrInvalidLeverage, got: %v", err)
	}
	t.Logf("Correctly blocked: %v", err)
}

func TestCheckOpen_LeverageAboveMax(t *testing.T) {
	g := NewGuardian(DefaultLimits())
	err := g.CheckOpen(openReq(500, 10))
	if !errors.Is(err, models.ErrInvalidLeverage) {
		t.Fatalf("expected ErrInvalidLeverage, got: %v", err)
	}
}

func TestCheckOpen_LeverageAtBounds(t *testing.T) {
	g := NewGuardian(DefaultLimits())
	if err := g.CheckOpen(openReq(75, 10)); err != nil {
		t.Fatalf("75x is the minimum and must pass, got: %v", err)
	}
	if err := g.CheckOpen(openReq(250, 10)); err != nil {
		t.Fatalf("250x is the maximum and must pass, got: %v", err)
	}
}

func TestCheckOpen_ZeroCollateral(t *testing.T) {
	g := NewGuardian(DefaultLimits())
	err := g.CheckOpen(openReq(100, 0))
	if !errors.Is(err, models.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got: %v", err)
	}
}

func TestCheckOpen_NegativeCollateral(t *testing.T) {
	g := NewGuardian(DefaultLimits())
	err := g.CheckOpen(openReq(100, -5))
	if !errors.Is(err, models.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got: %v", err)
	}
}

func TestCheckOpen_NegativePairIndex(t *testing.T) {
	g := NewGuardian(DefaultLimits())
	req := openReq(100, 10)
	req.PairIndex = -1
	err := g.CheckOpen(req)
	if !errors.Is(err, models.ErrInvalidPosition) {
		t.Fatalf("expected ErrInvalidPosition, got: %v", err)
	}
}

func TestCheckOpen_NotionalCap_Blocked(t *testing.T) {
	g := NewGuardian(Limits{MinLeverage: 75, MaxLeverage: 250, MaxPositionSizeUSD: 500})
	// 10 collateral at 100x is 1000 notional.
	err := g.CheckOpen(openReq(100, 10))
	if !errors.Is(err, models.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for notional cap, got: %v", err)
	}
	t.Logf("Correctly blocked: %v", err)
}

func TestCheckOpen_NotionalCap_JustUnder(t *testing.T) {
	g := NewGuardian(Limits{MinLeverage: 75, MaxLeverage: 250, MaxPositionSizeUSD: 1000})
	if err := g.CheckOpen(openReq(100, 9.99)); err != nil {
		t.Fatalf("999 notional under a 1000 cap must pass, got: %v", err)
	}
}

func TestCheckOpen_NotionalCap_DisabledWhenZero(t *testing.T) {
	g := NewGuardian(Limits{MinLeverage: 75, MaxLeverage: 250, MaxPositionSizeUSD: 0})
	if err := g.CheckOpen(openReq(250, 999999)); err != nil {
		t.Fatalf("zero cap should disable the check, got: %v", err)
	}
}

func TestNewGuardian_DefaultsZeroBounds(t *testing.T) {
	g := NewGuardian(Limits{})
	if err := g.CheckOpen(openReq(100, 10)); err != nil {
		t.Fatalf("zero limits should take the default bounds, got: %v", err)
	}
	if err := g.CheckOpen(openReq(10, 10)); !errors.Is(err, models.ErrInvalidLeverage) {
		t.Fatalf("defaults should still bound leverage, got: %v", err)
	}
}

// --- CheckClose ---

func TestCheckClose_Allowed(t *testing.T) {
	g := NewGuardian(DefaultLimits())
	err := g.CheckClose(models.CloseTradeRequest{
		Trader:            "0x1111111111111111111111111111111111111111",
		PairIndex:         0,
		TradeIndex:        0,
		CollateralToClose: 5,
	})
	if err != nil {
		t.Fatalf("expected close to be allowed, got: %v", err)
	}
}

func TestCheckClose_ZeroCollateral(t *testing.T) {
	g := NewGuardian(DefaultLimits())
	err := g.CheckClose(models.CloseTradeRequest{PairIndex: 0, TradeIndex: 0, CollateralToClose: 0})
	if !errors.Is(err, models.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got: %v", err)
	}
	t.Logf("Correctly blocked: %v", err)
}

func TestCheckClose_NegativeIndices(t *testing.T) {
	g := NewGuardian(DefaultLimits())
	err := g.CheckClose(models.CloseTradeRequest{PairIndex: -1, TradeIndex: 0, CollateralToClose: 5})
	if !errors.Is(err, models.ErrInvalidPosition) {
		t.Fatalf("expected ErrInvalidPosition for negative pair index, got: %v", err)
	}
	err = g.CheckClose(models.CloseTradeRequest{PairIndex: 0, TradeIndex: -2, CollateralToClose: 5})
	if !errors.Is(err, models.ErrInvalidPosition) {
		t.Fatalf("expected ErrInvalidPosition for negative trade index, got: %v", err)
	}
}

// --- CheckUpdateTPSL ---

func TestCheckUpdateTPSL_Allowed(t *testing.T) {
	g := NewGuardian(DefaultLimits())
	err := g.CheckUpdateTPSL(models.UpdateTPSLRequest{PairIndex: 1, TradeIndex: 0, TakeProfit: 2100, StopLoss: 1900})
	if err != nil {
		t.Fatalf("expected update to be allowed, got: %v", err)
	}
}

func TestCheckUpdateTPSL_ZeroClearsTriggers(t *testing.T) {
	g := NewGuardian(DefaultLimits())
	// Zero means "clear this trigger", not an invalid price.
	err := g.CheckUpdateTPSL(models.UpdateTPSLRequest{PairIndex: 1, TradeIndex: 0, TakeProfit: 0, StopLoss: 0})
	if err != nil {
		t.Fatalf("zero TP/SL clears the trigger and must pass, got: %v", err)
	}
}

func TestCheckUpdateTPSL_NegativePrices(t *testing.T) {
	g := NewGuardian(DefaultLimits())
	err := g.CheckUpdateTPSL(models.UpdateTPSLRequest{PairIndex: 1, TradeIndex: 0, TakeProfit: -1, StopLoss: 0})
	if !errors.Is(err, models.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got: %v", err)
	}
	t.Logf("Correctly blocked: %v", err)
}

func TestCheckUpdateTPSL_NegativeIndices(t *testing.T) {
	g := NewGuardian(DefaultLimits())
	err := g.CheckUpdateTPSL(models.UpdateTPSLRequest{PairIndex: -1, TradeIndex: 0})
	if !errors.Is(err, models.ErrInvalidPosition) {
		t.Fatalf("expected ErrInvalidPosition, got: %v", err)
	}
}
