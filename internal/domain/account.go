package domain

import (
	"github.com/shopspring/decimal"
)

// Position 持仓领域模型
// Quantity is always > 0 while the position exists; selling down to zero
// removes the position entirely (a later buy starts a fresh average).
type Position struct {
	Symbol   string          `json:"symbol"`
	Quantity int64           `json:"quantity"`
	AvgPrice decimal.Decimal `json:"avg_price"`
}

// CostBasis returns AvgPrice * Quantity.
func (p Position) CostBasis() decimal.Decimal {
	return p.AvgPrice.Mul(decimal.NewFromInt(p.Quantity))
}

// MarketValue returns current * Quantity.
func (p Position) MarketValue(current decimal.Decimal) decimal.Decimal {
	return current.Mul(decimal.NewFromInt(p.Quantity))
}

// UnrealizedPnL returns (current - AvgPrice) * Quantity. Derived on demand
// from a live quote, never stored.
func (p Position) UnrealizedPnL(current decimal.Decimal) decimal.Decimal {
	return current.Sub(p.AvgPrice).Mul(decimal.NewFromInt(p.Quantity))
}

// RealizedPnL returns (sellPrice - AvgPrice) * qty for a (hypothetical) sell
// of qty shares. The ledger itself never stores this.
func (p Position) RealizedPnL(sellPrice decimal.Decimal, qty int64) decimal.Decimal {
	return sellPrice.Sub(p.AvgPrice).Mul(decimal.NewFromInt(qty))
}

// Account 账户聚合：现金余额 + 全部持仓
// Balance never goes negative; at most one position per symbol.
type Account struct {
	UserID    string              `json:"user_id"`
	Balance   decimal.Decimal     `json:"balance"`
	Positions map[string]Position `json:"positions"`
}

// NewAccount creates an empty account with the given starting balance.
func NewAccount(userID string, startingBalance decimal.Decimal) *Account {
	return &Account{
		UserID:    userID,
		Balance:   startingBalance,
		Positions: make(map[string]Position),
	}
}

// Position returns the position for symbol, if held.
func (a *Account) Position(symbol string) (Position, bool) {
	p, ok := a.Positions[symbol]
	return p, ok
}

// Clone returns a deep copy. Apply works on a clone so a rejected or failed
// trade can never leave the caller's account half-mutated.
func (a *Account) Clone() *Account {
	out := &Account{
		UserID:    a.UserID,
		Balance:   a.Balance,
		Positions: make(map[string]Position, len(a.Positions)),
	}
	for sym, p := range a.Positions {
		out.Positions[sym] = p
	}
	return out
}
