package pnl

import (
	"fmt"

	"github.com/314yush/yolo-backend/internal/models"
)

// DefaultTakeProfit derives the default take-profit price for a new
// position: a 100% return on collateral, which at leverage L means a
// price move of 1/L from entry. The exchange rejects take-profit targets
// much beyond 5x entry, so the target has to shrink as leverage grows.
func DefaultTakeProfit(entryPrice float64, isLong bool, leverage int) (float64, error) {
	if leverage <= 0 {
		return 0, fmt.Errorf("%w: leverage %d", models.ErrInvalidLeverage, leverage)
	}
	move := 1.0 / float64(leverage)
	if isLong {
		return entryPrice * (1 + move), nil
	}
	return entryPrice * (1 - move), nil
}
