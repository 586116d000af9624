package domain

import (
	"github.com/shopspring/decimal"
)

// Apply computes the account state after executing req at price. It is a pure
// function: the input account is never mutated, and on rejection the returned
// account is nil. Average-price arithmetic stays in decimal so repeated buys
// do not accumulate float drift.
func Apply(a *Account, req TradeRequest, price decimal.Decimal) (*Account, error) {
	if req.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if price.Sign() <= 0 {
		// An oracle handing back a non-positive price is an oracle failure,
		// not a ledger state.
		return nil, ErrPriceUnavailable
	}

	switch req.Side {
	case SideBuy:
		return applyBuy(a, req, price)
	case SideSell:
		return applySell(a, req, price)
	default:
		return nil, ErrInvalidSide
	}
}

func applyBuy(a *Account, req TradeRequest, price decimal.Decimal) (*Account, error) {
	qty := decimal.NewFromInt(req.Quantity)
	totalCost := price.Mul(qty)
	if a.Balance.LessThan(totalCost) {
		return nil, ErrInsufficientBalance
	}

	next := a.Clone()
	next.Balance = next.Balance.Sub(totalCost)

	if held, ok := next.Positions[req.Symbol]; ok {
		// Weighted average over the combined lot:
		// (oldAvg*oldQty + price*qty) / (oldQty+qty)
		oldQty := decimal.NewFromInt(held.Quantity)
		newQty := held.Quantity + req.Quantity
		held.AvgPrice = held.AvgPrice.Mul(oldQty).
			Add(price.Mul(qty)).
			Div(decimal.NewFromInt(newQty))
		held.Quantity = newQty
		next.Positions[req.Symbol] = held
	} else {
		next.Positions[req.Symbol] = Position{
			Symbol:   req.Symbol,
			Quantity: req.Quantity,
			AvgPrice: price,
		}
	}
	return next, nil
}

func applySell(a *Account, req TradeRequest, price decimal.Decimal) (*Account, error) {
	held, ok := a.Positions[req.Symbol]
	if !ok {
		return nil, ErrNoPosition
	}
	if held.Quantity < req.Quantity {
		return nil, ErrInsufficientShares
	}

	next := a.Clone()
	proceeds := price.Mul(decimal.NewFromInt(req.Quantity))
	next.Balance = next.Balance.Add(proceeds)

	remaining := held.Quantity - req.Quantity
	if remaining == 0 {
		// Do not keep a zero-quantity entry: a later buy of this symbol must
		// start a fresh average.
		delete(next.Positions, req.Symbol)
	} else {
		held.Quantity = remaining
		// AvgPrice is untouched by sells; realized P/L is derived by callers.
		next.Positions[req.Symbol] = held
	}
	return next, nil
}

// Replay folds a transaction history (oldest first) over an empty account and
// returns the resulting state. Replaying the full log reproduces the live
// account exactly; used by tests and the consistency audit.
func Replay(userID string, startingBalance decimal.Decimal, txs []Transaction) (*Account, error) {
	acct := NewAccount(userID, startingBalance)
	for _, tx := range txs {
		req := TradeRequest{Symbol: tx.Symbol, Quantity: tx.Quantity, Side: tx.Side}
		next, err := Apply(acct, req, tx.Price)
		if err != nil {
			return nil, err
		}
		acct = next
	}
	return acct, nil
}
