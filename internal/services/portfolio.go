package services

import (
	"context"
	"sort"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/papertrade/gopaper/internal/domain"
	"github.com/papertrade/gopaper/internal/metrics"
	"github.com/papertrade/gopaper/pkg/logger"
	"github.com/papertrade/gopaper/pkg/syncgroup"
)

// PositionView is one holding as the API reports it. CurrentPrice,
// MarketValue and UnrealizedPnL are present only when a live quote for that
// symbol succeeded; P/L is always derived, never read from storage.
type PositionView struct {
	Symbol        string           `json:"symbol"`
	Quantity      int64            `json:"quantity"`
	AvgPrice      decimal.Decimal  `json:"avg_price"`
	CurrentPrice  *decimal.Decimal `json:"current_price,omitempty"`
	MarketValue   *decimal.Decimal `json:"market_value,omitempty"`
	UnrealizedPnL *decimal.Decimal `json:"unrealized_pnl,omitempty"`
}

// PortfolioView is the read-path response: cash plus holdings, optionally
// live-priced. Equity (cash + market value) is reported only when every
// holding got a quote.
type PortfolioView struct {
	UserID    string           `json:"user_id"`
	Balance   decimal.Decimal  `json:"balance"`
	Positions []PositionView   `json:"positions"`
	Equity    *decimal.Decimal `json:"equity,omitempty"`
}

// Portfolio returns the user's balance and positions. With live=true each
// held symbol is quoted independently and concurrently; a failed quote
// degrades that one row instead of failing the whole view.
func (s *TradingService) Portfolio(ctx context.Context, userID string, live bool) (*PortfolioView, error) {
	acct, err := s.store.GetOrCreateAccount(ctx, userID, s.opts.StartingBalance)
	if err != nil {
		return nil, errors.Wrap(domain.ErrPersistence, err.Error())
	}

	symbols := make([]string, 0, len(acct.Positions))
	for sym := range acct.Positions {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	view := &PortfolioView{
		UserID:    userID,
		Balance:   acct.Balance,
		Positions: make([]PositionView, len(symbols)),
	}

	quotes := make([]*decimal.Decimal, len(symbols))
	if live {
		sg := syncgroup.NewSyncGroup()
		for i, sym := range symbols {
			i, sym := i, sym
			sg.Go(func() {
				price, qerr := s.quote(ctx, sym)
				if qerr != nil {
					metrics.QuoteFailures.Inc()
					logger.WithField("symbol", sym).Warnf("portfolio quote failed: %v", qerr)
					return
				}
				quotes[i] = &price
			})
		}
		sg.Wait()
	}

	allPriced := true
	equity := acct.Balance
	for i, sym := range symbols {
		pos := acct.Positions[sym]
		pv := PositionView{
			Symbol:   pos.Symbol,
			Quantity: pos.Quantity,
			AvgPrice: pos.AvgPrice,
		}
		if live {
			if price := quotes[i]; price != nil {
				mv := pos.MarketValue(*price)
				pnl := pos.UnrealizedPnL(*price)
				pv.CurrentPrice = price
				pv.MarketValue = &mv
				pv.UnrealizedPnL = &pnl
				equity = equity.Add(mv)
			} else {
				allPriced = false
			}
		}
		view.Positions[i] = pv
	}

	if live && allPriced {
		view.Equity = &equity
	}
	return view, nil
}
