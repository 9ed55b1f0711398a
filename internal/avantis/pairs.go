package avantis

import "github.com/314yush/yolo-backend/internal/models"

// Pair catalog for the zero-fee perps market. Pair indices come from the
// exchange's pair registry and are stable.
var pairCatalog = []models.PairInfo{
	{Name: "BTC/USD", PairIndex: 0},
	{Name: "ETH/USD", PairIndex: 1},
	{Name: "SOL/USD", PairIndex: 2},
	{Name: "XRP/USD", PairIndex: 3},
}

// Pairs returns the tradable pair catalog.
func Pairs() []models.PairInfo {
	out := make([]models.PairInfo, len(pairCatalog))
	copy(out, pairCatalog)
	return out
}

// PairName resolves a pair index to its symbol.
func PairName(index int64) (string, bool) {
	for _, p := range pairCatalog {
		if p.PairIndex == index {
			return p.Name, true
		}
	}
	return "", false
}

// PairIndex resolves a symbol to its pair index.
func PairIndex(name string) (int64, bool) {
	for _, p := range pairCatalog {
		if p.Name == name {
			return p.PairIndex, true
		}
	}
	return 0, false
}
