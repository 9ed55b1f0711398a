package risk

import (
	"fmt"

	"github.com/314yush/yolo-backend/internal/models"
)

// Limits holds the request bounds from config. Leverage bounds default
// to the exchange's zero-fee market ([75, 250]); a zero
// MaxPositionSizeUSD disables the notional cap.
type Limits struct {
	MinLeverage        int
	MaxLeverage        int
	MaxPositionSizeUSD float64
}

func DefaultLimits() Limits {
	return Limits{MinLeverage: 75, MaxLeverage: 250}
}

// Guardian validates trade requests against the data-model bounds before
// anything is encoded. Errors wrap the shared taxonomy so handlers can
// map them to response codes.
type Guardian struct {
	limits Limits
}

func NewGuardian(limits Limits) *Guardian {
	if limits.MinLeverage <= 0 {
		limits.MinLeverage = DefaultLimits().MinLeverage
	}
	if limits.MaxLeverage <= 0 {
		limits.MaxLeverage = DefaultLimits().MaxLeverage
	}
	return &Guardian{limits: limits}
}

// CheckOpen validates an open-trade request. Returns nil if the request
// is allowed, a descriptive error if blocked.
func (g *Guardian) CheckOpen(req models.OpenTradeRequest) error {
	if req.Leverage < g.limits.MinLeverage || req.Leverage > g.limits.MaxLeverage {
		return fmt.Errorf("%w: leverage %d outside [%d, %d]",
			models.ErrInvalidLeverage, req.Leverage, g.limits.MinLeverage, g.limits.MaxLeverage)
	}
	if req.Collateral <= 0 {
		return fmt.Errorf("%w: collateral must be positive, got %.6f",
			models.ErrInvalidAmount, req.Collateral)
	}
	if req.PairIndex < 0 {
		return fmt.Errorf("%w: pair index %d", models.ErrInvalidPosition, req.PairIndex)
	}
	if g.limits.MaxPositionSizeUSD > 0 {
		notional := req.Collateral * float64(req.Leverage)
		if notional > g.limits.MaxPositionSizeUSD {
			return fmt.Errorf("%w: notional $%.2f exceeds max $%.2f",
				models.ErrInvalidAmount, notional, g.limits.MaxPositionSizeUSD)
		}
	}
	return nil
}

// CheckClose validates a close-trade request.
func (g *Guardian) CheckClose(req models.CloseTradeRequest) error {
	if req.CollateralToClose <= 0 {
		return fmt.Errorf("%w: collateral to close must be positive, got %.6f",
			models.ErrInvalidAmount, req.CollateralToClose)
	}
	if req.PairIndex < 0 || req.TradeIndex < 0 {
		return fmt.Errorf("%w: pair index %d, trade index %d",
			models.ErrInvalidPosition, req.PairIndex, req.TradeIndex)
	}
	return nil
}

// CheckUpdateTPSL validates a take-profit/stop-loss update request.
func (g *Guardian) CheckUpdateTPSL(req models.UpdateTPSLRequest) error {
	if req.TakeProfit < 0 || req.StopLoss < 0 {
		return fmt.Errorf("%w: TP %.8f and SL %.8f must be non-negative",
			models.ErrInvalidAmount, req.TakeProfit, req.StopLoss)
	}
	if req.PairIndex < 0 || req.TradeIndex < 0 {
		return fmt.Errorf("%w: pair index %d, trade index %d",
			models.ErrInvalidPosition, req.PairIndex, req.TradeIndex)
	}
	return nil
}
