package models

// Request payloads for transaction building. One variant per contract
// operation; created per incoming call and never persisted.

type OpenTradeRequest struct {
	Trader     string  `json:"trader"`
	Delegate   string  `json:"delegate"`
	Pair       string  `json:"pair"` // e.g. "BTC/USD"
	PairIndex  int64   `json:"pair_index"`
	Leverage   int     `json:"leverage"`
	IsLong     bool    `json:"is_long"`
	Collateral float64 `json:"collateral"` // USDC
}

type CloseTradeRequest struct {
	Trader            string  `json:"trader"`
	Delegate          string  `json:"delegate"`
	PairIndex         int64   `json:"pair_index"`
	TradeIndex        int64   `json:"trade_index"`
	CollateralToClose float64 `json:"collateral_to_close"`
}

type UpdateTPSLRequest struct {
	Trader     string  `json:"trader"`
	Delegate   string  `json:"delegate"`
	PairIndex  int64   `json:"pair_index"`
	TradeIndex int64   `json:"trade_index"`
	TakeProfit float64 `json:"take_profit"`
	StopLoss   float64 `json:"stop_loss"`
}

type SetDelegateRequest struct {
	Trader          string `json:"trader"`
	DelegateAddress string `json:"delegate_address"`
}

type ApprovalRequest struct {
	Trader string `json:"trader"`
}
