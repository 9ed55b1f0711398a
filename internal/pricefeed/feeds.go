package pricefeed

import "strings"

// Pyth price feed ids for the pairs we trade. Hermes accepts the ids
// with or without the 0x prefix but echoes them back without it on the
// websocket, so lookups normalize both ways.
var pairFeeds = map[string]string{
	"BTC/USD": "0xe62df6c8b4a85fe1a67db44dc12de5db330f7ac66b72dc658afedf0f4a415b43",
	"ETH/USD": "0xff61491a931112ddf1bd8147cd1b641375f79f5825126d665480874634fd0ace",
	"SOL/USD": "0xef0d8b6fda2ceba41da15d4095d1da392a0d2f8ed0c6c7bc0f4cfac8c280b56d",
	"XRP/USD": "0xec5d399846a9209f3fe5881d70aae9268c94339ff9817e8d18ff19fa05eea1c8",
}

var feedPairs = func() map[string]string {
	m := make(map[string]string, len(pairFeeds))
	for pair, id := range pairFeeds {
		m[normalizeFeedID(id)] = pair
	}
	return m
}()

func normalizeFeedID(id string) string {
	return strings.ToLower(strings.TrimPrefix(id, "0x"))
}

// FeedID returns the Pyth feed id for a pair name like "ETH/USD".
func FeedID(pair string) (string, bool) {
	id, ok := pairFeeds[pair]
	return id, ok
}

// PairForFeed resolves a feed id (with or without 0x prefix) back to
// its pair name.
func PairForFeed(id string) (string, bool) {
	pair, ok := feedPairs[normalizeFeedID(id)]
	return pair, ok
}

// FeedIDs returns the feed ids for the given pairs, in order, along
// with any pairs that have no feed.
func FeedIDs(pairs []string) ([]string, []string) {
	ids := make([]string, 0, len(pairs))
	var unknown []string
	for _, pair := range pairs {
		id, ok := pairFeeds[pair]
		if !ok {
			unknown = append(unknown, pair)
			continue
		}
		ids = append(ids, id)
	}
	return ids, unknown
}
