package pnl

import (
	"fmt"

	"github.com/314yush/yolo-backend/internal/models"
)

// ComputePnL maps a position and a current price to its profit/loss.
// Position size is collateral times leverage; the price-change sign
// flips for shorts. marginFee (USDC) is subtracted from the gross
// figure, and the percentage is net PnL over collateral. Pure, no I/O.
func ComputePnL(pos models.Position, currentPrice, marginFee float64) (models.PnLResult, error) {
	if pos.OpenPrice == 0 {
		return models.PnLResult{}, fmt.Errorf("%w: open price is zero", models.ErrInvalidPosition)
	}
	if pos.Collateral <= 0 {
		return models.PnLResult{}, fmt.Errorf("%w: collateral %.6f", models.ErrInvalidPosition, pos.Collateral)
	}

	positionSize := pos.Collateral * float64(pos.Leverage)

	var priceChangePct float64
	if pos.IsLong {
		priceChangePct = (currentPrice - pos.OpenPrice) / pos.OpenPrice
	} else {
		priceChangePct = (pos.OpenPrice - currentPrice) / pos.OpenPrice
	}

	gross := positionSize * priceChangePct
	net := gross - marginFee

	return models.PnLResult{
		Position:     pos,
		CurrentPrice: currentPrice,
		PnL:          net,
		PnLPercent:   net / pos.Collateral * 100,
	}, nil
}
