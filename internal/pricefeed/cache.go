package pricefeed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/314yush/yolo-backend/internal/models"
)

// Feed is the upstream batch price source. Implementations return one
// price per requested pair, in request order.
type Feed interface {
	LatestPrices(ctx context.Context, pairs []string) ([]float64, error)
}

const (
	defaultTTL          = 5 * time.Second
	defaultFetchTimeout = 10 * time.Second
)

// CacheOptions tune freshness and fetch bounds. Zero values take the
// production defaults.
type CacheOptions struct {
	TTL          time.Duration
	FetchTimeout time.Duration
}

type cacheEntry struct {
	point     models.PricePoint
	fetchedAt time.Time
}

// Cache serves prices from memory while they are fresh and refreshes
// them from the feed with a bounded wait when they are not. A failed
// refresh falls back to the last known value, flagged stale, so price
// reads degrade instead of erroring while the upstream flaps.
type Cache struct {
	feed         Feed
	ttl          time.Duration
	fetchTimeout time.Duration
	logger       *zap.Logger

	mu      sync.Mutex
	entries map[string]cacheEntry
}

func NewCache(feed Feed, opts CacheOptions, logger *zap.Logger) *Cache {
	if opts.TTL <= 0 {
		opts.TTL = defaultTTL
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = defaultFetchTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		feed:         feed,
		ttl:          opts.TTL,
		fetchTimeout: opts.FetchTimeout,
		logger:       logger,
		entries:      make(map[string]cacheEntry),
	}
}

// GetPrice returns a fresh price for the pair, fetching from the feed
// when the cached value has aged out. When the fetch fails and a prior
// value exists, that value is returned with Stale set.
func (c *Cache) GetPrice(ctx context.Context, pair string) (models.PricePoint, error) {
	if entry, ok := c.lookup(pair); ok && c.fresh(entry) {
		return entry.point, nil
	}

	fetchCtx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
	defer cancel()

	prices, err := c.feed.LatestPrices(fetchCtx, []string{pair})
	if err == nil && len(prices) != 1 {
		err = fmt.Errorf("feed returned %d prices for one pair", len(prices))
	}
	if err == nil {
		return c.store(pair, prices[0]), nil
	}

	if entry, ok := c.lookup(pair); ok {
		c.logger.Warn("price fetch failed, serving last known value",
			zap.String("pair", pair),
			zap.Int64("cached_at", entry.point.Timestamp),
			zap.Error(err))
		return staleCopy(entry), nil
	}
	return models.PricePoint{}, fmt.Errorf("%w: %s: %w", models.ErrPriceUnavailable, pair, err)
}

// GetPrices returns a price per pair, batching the feed call for pairs
// whose cached value has aged out. Pairs the feed cannot serve fall
// back to their last known value; pairs with no value at all are left
// out of the result rather than failing the whole read.
func (c *Cache) GetPrices(ctx context.Context, pairs []string) map[string]models.PricePoint {
	results := make(map[string]models.PricePoint, len(pairs))
	seen := make(map[string]struct{}, len(pairs))
	var missing []string
	for _, pair := range pairs {
		if _, dup := seen[pair]; dup {
			continue
		}
		seen[pair] = struct{}{}
		if entry, ok := c.lookup(pair); ok && c.fresh(entry) {
			results[pair] = entry.point
		} else {
			missing = append(missing, pair)
		}
	}
	if len(missing) == 0 {
		return results
	}

	fetchCtx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
	defer cancel()

	prices, err := c.feed.LatestPrices(fetchCtx, missing)
	if err == nil && len(prices) != len(missing) {
		err = fmt.Errorf("feed returned %d prices for %d pairs", len(prices), len(missing))
	}
	if err == nil {
		for i, pair := range missing {
			results[pair] = c.store(pair, prices[i])
		}
		return results
	}

	c.logger.Warn("batch price fetch failed, falling back to cache",
		zap.Strings("pairs", missing),
		zap.Error(err))
	for _, pair := range missing {
		if entry, ok := c.lookup(pair); ok {
			results[pair] = staleCopy(entry)
		}
	}
	return results
}

// Put records an externally observed price, replacing whatever the
// cache held for the pair.
func (c *Cache) Put(point models.PricePoint) {
	c.mu.Lock()
	c.entries[point.Pair] = cacheEntry{point: point, fetchedAt: time.Now()}
	c.mu.Unlock()
}

func (c *Cache) lookup(pair string) (cacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[pair]
	return entry, ok
}

func (c *Cache) fresh(entry cacheEntry) bool {
	return time.Since(entry.fetchedAt) < c.ttl
}

func (c *Cache) store(pair string, price float64) models.PricePoint {
	point := models.PricePoint{
		Pair:      pair,
		Price:     price,
		Timestamp: time.Now().Unix(),
	}
	c.mu.Lock()
	c.entries[pair] = cacheEntry{point: point, fetchedAt: time.Now()}
	c.mu.Unlock()
	return point
}

func staleCopy(entry cacheEntry) models.PricePoint {
	point := entry.point
	point.Stale = true
	return point
}
