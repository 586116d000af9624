package pricing

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ErrUnavailable is returned whenever a price cannot be produced: unknown
// symbol, upstream failure, timeout, or a non-positive quote. Callers treat
// all of these the same way and execute no trade.
var ErrUnavailable = errors.New("price unavailable")

// Oracle quotes a current price for a symbol. Implementations may hit the
// network; they must never mutate account state and must be swappable without
// touching the ledger or the trading service.
type Oracle interface {
	Quote(ctx context.Context, symbol string) (decimal.Decimal, error)
}
