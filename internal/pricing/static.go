package pricing

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
)

// StaticOracle serves prices from a fixed in-memory table. It is an injected
// instance, not process-wide state, so tests and the dev server can carry
// their own tables.
type StaticOracle struct {
	mu     sync.RWMutex
	prices map[string]decimal.Decimal
}

// NewStaticOracle builds an oracle from a symbol→price table. Non-positive
// prices are rejected.
func NewStaticOracle(table map[string]decimal.Decimal) (*StaticOracle, error) {
	prices := make(map[string]decimal.Decimal, len(table))
	for sym, price := range table {
		if price.Sign() <= 0 {
			return nil, fmt.Errorf("static oracle: non-positive price for %s", sym)
		}
		prices[sym] = price
	}
	return &StaticOracle{prices: prices}, nil
}

// NewStaticOracleFromStrings parses decimal strings, as loaded from YAML
// config.
func NewStaticOracleFromStrings(table map[string]string) (*StaticOracle, error) {
	parsed := make(map[string]decimal.Decimal, len(table))
	for sym, raw := range table {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("static oracle: bad price for %s: %w", sym, err)
		}
		parsed[sym] = price
	}
	return NewStaticOracle(parsed)
}

// Quote implements Oracle. Unknown symbols are ErrUnavailable.
func (o *StaticOracle) Quote(_ context.Context, symbol string) (decimal.Decimal, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	price, ok := o.prices[symbol]
	if !ok {
		return decimal.Decimal{}, ErrUnavailable
	}
	return price, nil
}

// SetPrice updates or adds a quote. Used by tests and the dev tooling.
func (o *StaticOracle) SetPrice(symbol string, price decimal.Decimal) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.prices[symbol] = price
}
