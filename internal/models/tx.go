package models

// UnsignedTransaction is the canonical record handed to an external
// signer/broadcaster. Data and Value are 0x-prefixed hex. Immutable once
// assembled; Data is never empty for a trading operation and Value is
// never negative.
type UnsignedTransaction struct {
	To      string `json:"to"`
	Data    string `json:"data"`
	Value   string `json:"value"`
	ChainID int64  `json:"chain_id"`
}
