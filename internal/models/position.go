package models

// Position is the read model for an open trade, sourced fresh from the
// exchange's storage contract on every call. Identity is
// (trader, PairIndex, TradeIndex); trade indices are scoped per pair.
type Position struct {
	TradeIndex int64   `json:"trade_index"`
	PairIndex  int64   `json:"pair_index"`
	Pair       string  `json:"pair"`
	Collateral float64 `json:"collateral"` // USDC
	Leverage   int     `json:"leverage"`
	IsLong     bool    `json:"is_long"`
	OpenPrice  float64 `json:"open_price"`
	TakeProfit float64 `json:"tp"`
	StopLoss   float64 `json:"sl"`
	OpenedAt   int64   `json:"opened_at"`
}

// PnLResult pairs a position with its profit/loss at a current price.
// Derived on demand, never stored.
type PnLResult struct {
	Position     Position `json:"trade"`
	CurrentPrice float64  `json:"current_price"`
	PnL          float64  `json:"pnl"`
	PnLPercent   float64  `json:"pnl_percentage"`
}
