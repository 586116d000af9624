package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/papertrade/gopaper/internal/domain"
)

// GetAccount loads the account aggregate (balance + all positions). Returns
// (nil, nil) when the user has no account yet.
func (s *Store) GetAccount(ctx context.Context, userID string) (*domain.Account, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT balance FROM accounts WHERE user_id=?
`, userID)
	var balanceRaw string
	if err := row.Scan(&balanceRaw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	balance, err := decimal.NewFromString(balanceRaw)
	if err != nil {
		return nil, fmt.Errorf("corrupt balance for %s: %w", userID, err)
	}

	acct := domain.NewAccount(userID, balance)

	rows, err := s.db.QueryContext(ctx, `
SELECT symbol, quantity, avg_price FROM positions WHERE user_id=?
`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var p domain.Position
		var avgRaw string
		if err := rows.Scan(&p.Symbol, &p.Quantity, &avgRaw); err != nil {
			return nil, err
		}
		if p.AvgPrice, err = decimal.NewFromString(avgRaw); err != nil {
			return nil, fmt.Errorf("corrupt avg_price for %s/%s: %w", userID, p.Symbol, err)
		}
		acct.Positions[p.Symbol] = p
	}
	return acct, rows.Err()
}

// GetOrCreateAccount loads the account, creating it with startingBalance on
// first touch. Every user starts seeded with virtual cash.
func (s *Store) GetOrCreateAccount(ctx context.Context, userID string, startingBalance decimal.Decimal) (*domain.Account, error) {
	acct, err := s.GetAccount(ctx, userID)
	if err != nil {
		return nil, err
	}
	if acct != nil {
		return acct, nil
	}

	now := time.Now().UTC().Format(tsLayout)
	// INSERT OR IGNORE so two concurrent first touches cannot fail; the
	// reread below returns whichever row won.
	if _, err := s.db.ExecContext(ctx, `
INSERT OR IGNORE INTO accounts (user_id, balance, created_at, updated_at)
VALUES (?,?,?,?)
`, userID, startingBalance.String(), now, now); err != nil {
		return nil, fmt.Errorf("insert account: %w", err)
	}
	return s.GetAccount(ctx, userID)
}
