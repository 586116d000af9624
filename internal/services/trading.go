package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/papertrade/gopaper/internal/domain"
	"github.com/papertrade/gopaper/internal/metrics"
	"github.com/papertrade/gopaper/internal/pricing"
	"github.com/papertrade/gopaper/pkg/logger"
)

// AccountStore is the persistence the trading service needs. *store.Store
// satisfies it; tests use an in-memory fake.
type AccountStore interface {
	GetAccount(ctx context.Context, userID string) (*domain.Account, error)
	GetOrCreateAccount(ctx context.Context, userID string, startingBalance decimal.Decimal) (*domain.Account, error)
	ApplyTrade(ctx context.Context, acct *domain.Account, txn domain.Transaction) error
	ListTransactions(ctx context.Context, userID string) ([]domain.Transaction, error)
}

// Options tune the trading service.
type Options struct {
	StartingBalance decimal.Decimal // cash seeded into a new account
	QuoteTimeout    time.Duration   // hard bound on one oracle call
}

// TradingService runs one trade end-to-end: quote, ledger transition,
// atomic persist+log. Trades for the same user are serialized; different
// users run in parallel.
type TradingService struct {
	store  AccountStore
	oracle pricing.Oracle
	opts   Options
	users  *keyLock
}

func NewTradingService(store AccountStore, oracle pricing.Oracle, opts Options) *TradingService {
	if opts.StartingBalance.Sign() <= 0 {
		opts.StartingBalance = decimal.NewFromInt(10000)
	}
	if opts.QuoteTimeout <= 0 {
		opts.QuoteTimeout = 5 * time.Second
	}
	return &TradingService{
		store:  store,
		oracle: oracle,
		opts:   opts,
		users:  newKeyLock(),
	}
}

// ExecuteTrade validates, quotes, applies and persists one trade. On any
// rejection or failure the account is left exactly as it was: the ledger
// transition works on a clone and the store commits state+log in one
// transaction.
func (s *TradingService) ExecuteTrade(ctx context.Context, userID string, req domain.TradeRequest) (*domain.TradeResult, error) {
	if err := req.Validate(); err != nil {
		metrics.TradesRejected.WithLabelValues(domain.Reason(err)).Inc()
		return nil, err
	}

	unlock := s.users.lock(userID)
	defer unlock()

	price, err := s.quote(ctx, req.Symbol)
	if err != nil {
		metrics.QuoteFailures.Inc()
		metrics.TradesRejected.WithLabelValues(domain.Reason(domain.ErrPriceUnavailable)).Inc()
		return nil, errors.Wrapf(domain.ErrPriceUnavailable, "quote %s", req.Symbol)
	}

	acct, err := s.store.GetOrCreateAccount(ctx, userID, s.opts.StartingBalance)
	if err != nil {
		return nil, errors.Wrap(domain.ErrPersistence, err.Error())
	}

	next, err := domain.Apply(acct, req, price)
	if err != nil {
		metrics.TradesRejected.WithLabelValues(domain.Reason(err)).Inc()
		return nil, err
	}

	txn := domain.Transaction{
		ID:        uuid.NewString(),
		UserID:    userID,
		Symbol:    req.Symbol,
		Quantity:  req.Quantity,
		Price:     price,
		Side:      req.Side,
		Timestamp: time.Now().UTC(),
	}
	if err := s.store.ApplyTrade(ctx, next, txn); err != nil {
		// the sql tx has rolled back; `next` is discarded, so no in-memory
		// state survives either
		logger.WithFields(logrus.Fields{
			"user":   userID,
			"symbol": req.Symbol,
			"side":   req.Side,
		}).Errorf("persist trade failed: %v", err)
		return nil, errors.Wrap(domain.ErrPersistence, err.Error())
	}

	metrics.TradesExecuted.WithLabelValues(string(req.Side)).Inc()
	logger.WithFields(logrus.Fields{
		"user":    userID,
		"symbol":  req.Symbol,
		"side":    req.Side,
		"qty":     req.Quantity,
		"price":   price.String(),
		"balance": next.Balance.String(),
	}).Info("trade executed")

	return &domain.TradeResult{
		Account:       next,
		ExecutedPrice: price,
		Transaction:   txn,
	}, nil
}

// Transactions returns the user's trade history, newest first.
func (s *TradingService) Transactions(ctx context.Context, userID string) ([]domain.Transaction, error) {
	txs, err := s.store.ListTransactions(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(domain.ErrPersistence, err.Error())
	}
	if txs == nil {
		txs = []domain.Transaction{}
	}
	return txs, nil
}

// quote asks the oracle under the configured deadline. A deadline hit is
// just another unavailable price.
func (s *TradingService) quote(ctx context.Context, symbol string) (decimal.Decimal, error) {
	qctx, cancel := context.WithTimeout(ctx, s.opts.QuoteTimeout)
	defer cancel()
	return s.oracle.Quote(qctx, symbol)
}
