package pricing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/papertrade/gopaper/pkg/cache"
)

// CachedOracle memoizes successful quotes for a short TTL so the portfolio
// read path does not hammer the upstream source. Failures are never cached.
type CachedOracle struct {
	inner Oracle
	ttl   time.Duration
	cache *cache.InMemoryCache[string, decimal.Decimal]
}

func NewCachedOracle(inner Oracle, ttl time.Duration) *CachedOracle {
	if ttl <= 0 {
		ttl = 2 * time.Second
	}
	return &CachedOracle{
		inner: inner,
		ttl:   ttl,
		cache: cache.NewInMemoryCache[string, decimal.Decimal](ttl),
	}
}

// Quote implements Oracle.
func (o *CachedOracle) Quote(ctx context.Context, symbol string) (decimal.Decimal, error) {
	if price, ok := o.cache.Get(symbol); ok {
		return price, nil
	}
	price, err := o.inner.Quote(ctx, symbol)
	if err != nil {
		return decimal.Decimal{}, err
	}
	o.cache.Set(symbol, price, o.ttl)
	return price, nil
}

// Invalidate drops one symbol from the cache.
func (o *CachedOracle) Invalidate(symbol string) {
	o.cache.Delete(symbol)
}
