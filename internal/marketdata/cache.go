package marketdata

import (
	"time"

	"github.com/dgraph-io/ristretto"
)

// symbolCache memoizes per-exchange symbol lists so that repeated
// /api/symbols polls do not hammer the venues.
type symbolCache struct {
	c   *ristretto.Cache
	ttl time.Duration
}

func newSymbolCache(ttl time.Duration) (*symbolCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e4,
		MaxCost:     1 << 22, // ~4MB of symbol lists
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &symbolCache{c: c, ttl: ttl}, nil
}

func (c *symbolCache) get(exchange string) ([]string, bool) {
	v, ok := c.c.Get(exchange)
	if !ok {
		return nil, false
	}
	symbols, ok := v.([]string)
	return symbols, ok
}

func (c *symbolCache) set(exchange string, symbols []string) {
	c.c.SetWithTTL(exchange, symbols, int64(len(symbols)), c.ttl)
}
