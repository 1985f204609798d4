package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"finbook/internal/core"
)

func (q *Queries) CreateAccount(ctx context.Context, a core.Account) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO accounts (id, user_id, name, type, balance_cents, currency, active)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.Name, string(a.Type), a.Balance.Cents, a.Currency, a.Active)
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func (q *Queries) GetAccountByID(ctx context.Context, id string) (core.Account, error) {
	var a core.Account
	err := q.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, type, balance_cents, currency, active
		FROM accounts WHERE id = ?`, id).
		Scan(&a.ID, &a.UserID, &a.Name, &a.Type, &a.Balance.Cents, &a.Currency, &a.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Account{}, core.NotFoundf("account %s not found", id)
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

func (q *Queries) ListAccounts(ctx context.Context, userID string) ([]core.Account, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, user_id, name, type, balance_cents, currency, active
		FROM accounts WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []core.Account
	for rows.Next() {
		var a core.Account
		if err := rows.Scan(&a.ID, &a.UserID, &a.Name, &a.Type, &a.Balance.Cents, &a.Currency, &a.Active); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (q *Queries) UpdateAccount(ctx context.Context, a core.Account) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE accounts SET name = ?, type = ?, currency = ?, active = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		a.Name, string(a.Type), a.Currency, a.Active, a.ID)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.NotFoundf("account %s not found", a.ID)
	}
	return nil
}

func (q *Queries) DeleteAccount(ctx context.Context, id string) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.NotFoundf("account %s not found", id)
	}
	return nil
}

// AdjustBalance applies a signed delta to the account's running balance.
// Only ever called inside the same transaction as the ledger row change it
// reflects.
func (q *Queries) AdjustBalance(ctx context.Context, accountID string, deltaCents int64) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE accounts SET balance_cents = balance_cents + ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, deltaCents, accountID)
	if err != nil {
		return fmt.Errorf("adjust balance: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.NotFoundf("account %s not found", accountID)
	}
	return nil
}

// SetBalance overwrites the running balance. Used by drift repair only.
func (q *Queries) SetBalance(ctx context.Context, accountID string, cents int64) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE accounts SET balance_cents = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, cents, accountID)
	if err != nil {
		return fmt.Errorf("set balance: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.NotFoundf("account %s not found", accountID)
	}
	return nil
}

// SumBalances totals the balances of every account the user owns.
func (q *Queries) SumBalances(ctx context.Context, userID string) (int64, error) {
	var total sql.NullInt64
	err := q.db.QueryRowContext(ctx, `
		SELECT SUM(balance_cents) FROM accounts WHERE user_id = ?`, userID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum balances: %w", err)
	}
	return total.Int64, nil
}
