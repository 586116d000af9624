package domain

import (
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

// Side 交易方向
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Valid reports whether s is a known side.
func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}

// symbolRe is a syntactic check only; whether the symbol actually exists is
// the price oracle's problem.
var symbolRe = regexp.MustCompile(`^[A-Z][A-Z0-9.]{0,9}$`)

// ValidSymbol reports whether symbol is well-formed (e.g. "AAPL", "BRK.B").
func ValidSymbol(symbol string) bool {
	return symbolRe.MatchString(symbol)
}

// TradeRequest 交易请求
type TradeRequest struct {
	Symbol   string `json:"symbol"`
	Quantity int64  `json:"quantity"`
	Side     Side   `json:"side"`
}

// Validate performs the syntactic checks of a request. Balance/holdings
// checks belong to Apply.
func (r TradeRequest) Validate() error {
	if !ValidSymbol(r.Symbol) {
		return ErrInvalidSymbol
	}
	if r.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if !r.Side.Valid() {
		return ErrInvalidSide
	}
	return nil
}

// Transaction 成交记录，只追加、创建后不可变
type Transaction struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Symbol    string          `json:"symbol"`
	Quantity  int64           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Side      Side            `json:"side"`
	Timestamp time.Time       `json:"timestamp"`
}

// TradeResult is what a completed trade hands back to the caller.
type TradeResult struct {
	Account       *Account        `json:"account"`
	ExecutedPrice decimal.Decimal `json:"executed_price"`
	Transaction   Transaction     `json:"transaction"`
}
