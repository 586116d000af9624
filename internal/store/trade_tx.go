package store

import (
	"context"
	"fmt"
	"time"

	"github.com/papertrade/gopaper/internal/domain"
)

// ApplyTrade commits the post-trade account state together with its log
// entry in ONE sql transaction: the balance/position change and the recorded
// transaction either both land or neither does. Only the traded symbol's
// position row is touched.
func (s *Store) ApplyTrade(ctx context.Context, acct *domain.Account, txn domain.Transaction) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after Commit

	now := time.Now().UTC().Format(tsLayout)
	if _, err := tx.ExecContext(ctx, `
UPDATE accounts SET balance=?, updated_at=? WHERE user_id=?
`, acct.Balance.String(), now, acct.UserID); err != nil {
		return fmt.Errorf("update balance: %w", err)
	}

	if pos, ok := acct.Position(txn.Symbol); ok {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO positions (user_id, symbol, quantity, avg_price) VALUES (?,?,?,?)
ON CONFLICT(user_id, symbol) DO UPDATE SET quantity=excluded.quantity, avg_price=excluded.avg_price
`, acct.UserID, pos.Symbol, pos.Quantity, pos.AvgPrice.String()); err != nil {
			return fmt.Errorf("upsert position: %w", err)
		}
	} else {
		// position sold down to zero: row must disappear
		if _, err := tx.ExecContext(ctx, `
DELETE FROM positions WHERE user_id=? AND symbol=?
`, acct.UserID, txn.Symbol); err != nil {
			return fmt.Errorf("delete position: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
INSERT INTO transactions (id, user_id, symbol, quantity, price, side, ts)
VALUES (?,?,?,?,?,?,?)
`, txn.ID, txn.UserID, txn.Symbol, txn.Quantity, txn.Price.String(), string(txn.Side),
		txn.Timestamp.UTC().Format(tsLayout)); err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
