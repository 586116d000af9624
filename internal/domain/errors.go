package domain

import "errors"

// Rejection reasons surfaced by the ledger and the trading service.
// Every rejection leaves the account untouched.
var (
	ErrInvalidQuantity     = errors.New("quantity must be positive")
	ErrInvalidSymbol       = errors.New("invalid stock symbol")
	ErrInvalidSide         = errors.New("side must be buy or sell")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInsufficientShares  = errors.New("not enough shares to sell")
	ErrNoPosition          = errors.New("no position for symbol")
	ErrPriceUnavailable    = errors.New("price unavailable")
	ErrPersistence         = errors.New("persistence failure")
)

// Reason maps a rejection to a stable machine-readable code for API responses
// and metrics labels. Unknown errors map to "internal".
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidQuantity):
		return "invalid_quantity"
	case errors.Is(err, ErrInvalidSymbol):
		return "invalid_symbol"
	case errors.Is(err, ErrInvalidSide):
		return "invalid_side"
	case errors.Is(err, ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, ErrInsufficientShares):
		return "insufficient_shares"
	case errors.Is(err, ErrNoPosition):
		return "no_position"
	case errors.Is(err, ErrPriceUnavailable):
		return "price_unavailable"
	case errors.Is(err, ErrPersistence):
		return "persistence_failure"
	default:
		return "internal"
	}
}

// IsRejection reports whether err is a trade rejection (client error) as
// opposed to an infrastructure failure.
func IsRejection(err error) bool {
	return errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrInvalidSymbol) ||
		errors.Is(err, ErrInvalidSide) ||
		errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrInsufficientShares) ||
		errors.Is(err, ErrNoPosition)
}
