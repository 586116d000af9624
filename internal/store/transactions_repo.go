package store

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/papertrade/gopaper/internal/domain"
)

// ListTransactions returns the user's executed trades, newest first.
func (s *Store) ListTransactions(ctx context.Context, userID string) ([]domain.Transaction, error) {
	return s.listTransactions(ctx, userID, "DESC")
}

// ListTransactionsAsc returns the trades oldest first, the order a replay
// consumes them in.
func (s *Store) ListTransactionsAsc(ctx context.Context, userID string) ([]domain.Transaction, error) {
	return s.listTransactions(ctx, userID, "ASC")
}

func (s *Store) listTransactions(ctx context.Context, userID string, order string) ([]domain.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, user_id, symbol, quantity, price, side, ts
FROM transactions WHERE user_id=? ORDER BY ts `+order+`, id `+order+`
`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Transaction
	for rows.Next() {
		var txn domain.Transaction
		var priceRaw, sideRaw, tsRaw string
		if err := rows.Scan(&txn.ID, &txn.UserID, &txn.Symbol, &txn.Quantity, &priceRaw, &sideRaw, &tsRaw); err != nil {
			return nil, err
		}
		if txn.Price, err = decimal.NewFromString(priceRaw); err != nil {
			return nil, fmt.Errorf("corrupt price on tx %s: %w", txn.ID, err)
		}
		txn.Side = domain.Side(sideRaw)
		txn.Timestamp, _ = time.Parse(time.RFC3339Nano, tsRaw)
		out = append(out, txn)
	}
	return out, rows.Err()
}
