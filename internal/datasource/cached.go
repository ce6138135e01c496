package datasource

import (
	"context"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/yourusername/kyotei-note/internal/models"
)

// CachedSource memoizes race cards per RaceKey with a TTL. The external
// source is expensive and a card is stable within the hour, so a cache hit
// never touches the network. Failed fetches are not cached; re-navigation
// retries them.
type CachedSource struct {
	source CardSource
	cache  *cache.Cache
	ttl    time.Duration

	hits   uint64
	misses uint64
}

// NewCachedSource wraps a source with a TTL cache. ttl <= 0 defaults to one
// hour.
func NewCachedSource(source CardSource, ttl time.Duration) *CachedSource {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &CachedSource{
		source: source,
		cache:  cache.New(ttl, 2*ttl),
		ttl:    ttl,
	}
}

// FetchCard implements CardSource.
func (c *CachedSource) FetchCard(ctx context.Context, key RaceKey) ([]models.CompetitorEntry, error) {
	if cached, found := c.cache.Get(key.String()); found {
		c.hits++
		if rows, ok := cached.([]models.CompetitorEntry); ok {
			return rows, nil
		}
	}
	c.misses++

	rows, err := c.source.FetchCard(ctx, key)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key.String(), rows, c.ttl)
	return rows, nil
}

// Name returns the data source name.
func (c *CachedSource) Name() string {
	return c.source.Name()
}

// Stats returns cache hit/miss counts and the hit ratio.
func (c *CachedSource) Stats() (hits, misses uint64, ratio float64) {
	hits = c.hits
	misses = c.misses
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}
