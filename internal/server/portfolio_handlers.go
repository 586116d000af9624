package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/papertrade/gopaper/internal/domain"
)

type tradeRequestBody struct {
	Symbol   string `json:"symbol"`
	Quantity int64  `json:"quantity"`
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	live := r.URL.Query().Get("live") == "1" || r.URL.Query().Get("live") == "true"

	// live pricing may fan out to the quote source; give it more room
	timeout := 5 * time.Second
	if live {
		timeout = 15 * time.Second
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	view, err := s.svc.Portfolio(ctx, userFromContext(r.Context()), live)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleBuy(w http.ResponseWriter, r *http.Request) {
	s.handleTrade(w, r, domain.SideBuy)
}

func (s *Server) handleSell(w http.ResponseWriter, r *http.Request) {
	s.handleTrade(w, r, domain.SideSell)
}

func (s *Server) handleTrade(w http.ResponseWriter, r *http.Request, side domain.Side) {
	var body tradeRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	req := domain.TradeRequest{Symbol: body.Symbol, Quantity: body.Quantity, Side: side}
	res, err := s.svc.ExecuteTrade(ctx, userFromContext(r.Context()), req)
	if err != nil {
		s.writeTradeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"balance":        res.Account.Balance,
		"positions":      positionList(res.Account),
		"executed_price": res.ExecutedPrice,
		"transaction":    res.Transaction,
	})
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	txs, err := s.svc.Transactions(ctx, userFromContext(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

// writeTradeError maps the error taxonomy onto HTTP statuses: rejections are
// the client's problem, an unavailable price is a bad upstream, everything
// else is on us.
func (s *Server) writeTradeError(w http.ResponseWriter, err error) {
	switch {
	case domain.IsRejection(err):
		writeReason(w, http.StatusBadRequest, domain.Reason(err), err.Error())
	case errors.Is(err, domain.ErrPriceUnavailable):
		writeReason(w, http.StatusBadGateway, domain.Reason(err), err.Error())
	default:
		writeReason(w, http.StatusInternalServerError, domain.Reason(err), err.Error())
	}
}

// positionList flattens the account's position map in stable symbol order.
func positionList(acct *domain.Account) []domain.Position {
	out := make([]domain.Position, 0, len(acct.Positions))
	for _, sym := range sortedSymbols(acct) {
		out = append(out, acct.Positions[sym])
	}
	return out
}

func sortedSymbols(acct *domain.Account) []string {
	syms := make([]string, 0, len(acct.Positions))
	for sym := range acct.Positions {
		syms = append(syms, sym)
	}
	sort.Strings(syms)
	return syms
}
