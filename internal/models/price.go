package models

// PricePoint is a single observed price for an instrument. Owned by the
// price cache; a newer observation supersedes it. Stale marks a value
// served past its TTL because a fresh fetch failed.
type PricePoint struct {
	Pair      string  `json:"pair"`
	Price     float64 `json:"price"`
	Timestamp int64   `json:"timestamp"`
	Stale     bool    `json:"stale,omitempty"`
}

type PairInfo struct {
	Name      string `json:"name"`
	PairIndex int64  `json:"pair_index"`
}
