package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"finbook/internal/core"
)

func (q *Queries) CreateTransaction(ctx context.Context, t core.Transaction) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO transactions (id, user_id, account_id, category_id, type, amount_cents, description, date, notes, recurring)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.AccountID, t.CategoryID, string(t.Type), t.Amount.Cents,
		t.Description, t.Date.UTC(), t.Notes, t.Recurring)
	if err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}

func (q *Queries) GetTransactionByID(ctx context.Context, id string) (core.Transaction, error) {
	var t core.Transaction
	err := q.db.QueryRowContext(ctx, `
		SELECT id, user_id, account_id, category_id, type, amount_cents, description, date, notes, recurring
		FROM transactions WHERE id = ?`, id).
		Scan(&t.ID, &t.UserID, &t.AccountID, &t.CategoryID, &t.Type, &t.Amount.Cents,
			&t.Description, &t.Date, &t.Notes, &t.Recurring)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.NotFoundf("transaction %s not found", id)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

func (q *Queries) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE transactions
		SET account_id = ?, category_id = ?, type = ?, amount_cents = ?, description = ?,
		    date = ?, notes = ?, recurring = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		t.AccountID, t.CategoryID, string(t.Type), t.Amount.Cents, t.Description,
		t.Date.UTC(), t.Notes, t.Recurring, t.ID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.NotFoundf("transaction %s not found", t.ID)
	}
	return nil
}

func (q *Queries) DeleteTransaction(ctx context.Context, id string) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.NotFoundf("transaction %s not found", id)
	}
	return nil
}

// TransactionFilter narrows ListTransactions. Zero values mean "no filter".
type TransactionFilter struct {
	AccountID  string
	CategoryID string
	Type       core.TransactionType
	Start      *time.Time
	End        *time.Time
	Search     string
	Limit      int
	Offset     int
}

// ListTransactions returns a page of the user's transactions ordered by
// date descending, together with the unpaginated total.
func (q *Queries) ListTransactions(ctx context.Context, userID string, f TransactionFilter) ([]core.Transaction, int, error) {
	where := []string{"user_id = ?"}
	args := []any{userID}

	if f.AccountID != "" {
		where = append(where, "account_id = ?")
		args = append(args, f.AccountID)
	}
	if f.CategoryID != "" {
		where = append(where, "category_id = ?")
		args = append(args, f.CategoryID)
	}
	if f.Type != "" {
		where = append(where, "type = ?")
		args = append(args, string(f.Type))
	}
	if f.Start != nil {
		where = append(where, "date >= ?")
		args = append(args, f.Start.UTC())
	}
	if f.End != nil {
		where = append(where, "date <= ?")
		args = append(args, f.End.UTC())
	}
	if f.Search != "" {
		where = append(where, "(description LIKE ? OR notes LIKE ?)")
		pattern := "%" + f.Search + "%"
		args = append(args, pattern, pattern)
	}

	cond := strings.Join(where, " AND ")

	var total int
	if err := q.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM transactions WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	query := "SELECT id, user_id, account_id, category_id, type, amount_cents, description, date, notes, recurring " +
		"FROM transactions WHERE " + cond + " ORDER BY date DESC LIMIT ? OFFSET ?"
	rows, err := q.db.QueryContext(ctx, query, append(args, limit, f.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	transactions, err := scanTransactions(rows)
	if err != nil {
		return nil, 0, err
	}
	return transactions, total, nil
}

// TypeSummary aggregates one transaction type over a window.
type TypeSummary struct {
	TotalCents int64
	Count      int
}

// SummarizeByType totals the user's transactions of one type in a window.
func (q *Queries) SummarizeByType(ctx context.Context, userID string, t core.TransactionType, w core.Window) (TypeSummary, error) {
	var s TypeSummary
	var total sql.NullInt64
	err := q.db.QueryRowContext(ctx, `
		SELECT SUM(amount_cents), COUNT(*)
		FROM transactions
		WHERE user_id = ? AND type = ? AND date >= ? AND date <= ?`,
		userID, string(t), w.Start.UTC(), w.End.UTC()).Scan(&total, &s.Count)
	if err != nil {
		return TypeSummary{}, fmt.Errorf("summarize transactions: %w", err)
	}
	s.TotalCents = total.Int64
	return s, nil
}

// CountInWindow counts all of the user's transactions in a window.
func (q *Queries) CountInWindow(ctx context.Context, userID string, w core.Window) (int, error) {
	var count int
	err := q.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM transactions
		WHERE user_id = ? AND date >= ? AND date <= ?`,
		userID, w.Start.UTC(), w.End.UTC()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return count, nil
}

// CategoryAgg is one row of a per-category aggregation.
type CategoryAgg struct {
	CategoryID string
	Name       string
	Icon       string
	Color      string
	TotalCents int64
	Count      int
}

// CategoryBreakdown groups the user's transactions of one type by category,
// largest total first.
func (q *Queries) CategoryBreakdown(ctx context.Context, userID string, t core.TransactionType, w core.Window) ([]CategoryAgg, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT t.category_id, c.name, c.icon, c.color, SUM(t.amount_cents), COUNT(*)
		FROM transactions t
		JOIN categories c ON c.id = t.category_id
		WHERE t.user_id = ? AND t.type = ? AND t.date >= ? AND t.date <= ?
		GROUP BY t.category_id, c.name, c.icon, c.color
		ORDER BY SUM(t.amount_cents) DESC`,
		userID, string(t), w.Start.UTC(), w.End.UTC())
	if err != nil {
		return nil, fmt.Errorf("category breakdown: %w", err)
	}
	defer rows.Close()

	var aggs []CategoryAgg
	for rows.Next() {
		var a CategoryAgg
		if err := rows.Scan(&a.CategoryID, &a.Name, &a.Icon, &a.Color, &a.TotalCents, &a.Count); err != nil {
			return nil, fmt.Errorf("scan category breakdown: %w", err)
		}
		aggs = append(aggs, a)
	}
	return aggs, rows.Err()
}

// DailyAgg is one calendar day of a per-day aggregation.
type DailyAgg struct {
	Day        string // YYYY-MM-DD
	TotalCents int64
	Count      int
}

// DailyBreakdown groups the user's transactions of one type by calendar
// day, ascending by date key.
func (q *Queries) DailyBreakdown(ctx context.Context, userID string, t core.TransactionType, w core.Window) ([]DailyAgg, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT substr(date, 1, 10), SUM(amount_cents), COUNT(*)
		FROM transactions
		WHERE user_id = ? AND type = ? AND date >= ? AND date <= ?
		GROUP BY substr(date, 1, 10)
		ORDER BY substr(date, 1, 10)`,
		userID, string(t), w.Start.UTC(), w.End.UTC())
	if err != nil {
		return nil, fmt.Errorf("daily breakdown: %w", err)
	}
	defer rows.Close()

	var aggs []DailyAgg
	for rows.Next() {
		var a DailyAgg
		if err := rows.Scan(&a.Day, &a.TotalCents, &a.Count); err != nil {
			return nil, fmt.Errorf("scan daily breakdown: %w", err)
		}
		aggs = append(aggs, a)
	}
	return aggs, rows.Err()
}

// LargestByType returns the single largest transaction of the type in the
// window, or ok=false when none exists.
func (q *Queries) LargestByType(ctx context.Context, userID string, t core.TransactionType, w core.Window) (core.Transaction, bool, error) {
	var tr core.Transaction
	err := q.db.QueryRowContext(ctx, `
		SELECT id, user_id, account_id, category_id, type, amount_cents, description, date, notes, recurring
		FROM transactions
		WHERE user_id = ? AND type = ? AND date >= ? AND date <= ?
		ORDER BY amount_cents DESC LIMIT 1`,
		userID, string(t), w.Start.UTC(), w.End.UTC()).
		Scan(&tr.ID, &tr.UserID, &tr.AccountID, &tr.CategoryID, &tr.Type, &tr.Amount.Cents,
			&tr.Description, &tr.Date, &tr.Notes, &tr.Recurring)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, false, nil
	}
	if err != nil {
		return core.Transaction{}, false, fmt.Errorf("largest transaction: %w", err)
	}
	return tr, true, nil
}

// RecentTransactions returns the newest transactions in the window.
func (q *Queries) RecentTransactions(ctx context.Context, userID string, w core.Window, limit int) ([]core.Transaction, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, user_id, account_id, category_id, type, amount_cents, description, date, notes, recurring
		FROM transactions
		WHERE user_id = ? AND date >= ? AND date <= ?
		ORDER BY date DESC LIMIT ?`,
		userID, w.Start.UTC(), w.End.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("recent transactions: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

// SpentInCategory totals EXPENSE transactions of one category in a window.
// This is the budget progress aggregate.
func (q *Queries) SpentInCategory(ctx context.Context, userID, categoryID string, w core.Window) (int64, error) {
	var total sql.NullInt64
	err := q.db.QueryRowContext(ctx, `
		SELECT SUM(amount_cents)
		FROM transactions
		WHERE user_id = ? AND category_id = ? AND type = ? AND date >= ? AND date <= ?`,
		userID, categoryID, string(core.Expense), w.Start.UTC(), w.End.UTC()).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum category spending: %w", err)
	}
	return total.Int64, nil
}

// CountByAccount counts every transaction referencing an account.
func (q *Queries) CountByAccount(ctx context.Context, accountID string) (int, error) {
	var count int
	err := q.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM transactions WHERE account_id = ?`, accountID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count account transactions: %w", err)
	}
	return count, nil
}

// SumAccountByType totals one type over every transaction of an account,
// regardless of date. Used by drift repair.
func (q *Queries) SumAccountByType(ctx context.Context, accountID string, t core.TransactionType) (int64, error) {
	var total sql.NullInt64
	err := q.db.QueryRowContext(ctx, `
		SELECT SUM(amount_cents) FROM transactions WHERE account_id = ? AND type = ?`,
		accountID, string(t)).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum account transactions: %w", err)
	}
	return total.Int64, nil
}

func scanTransactions(rows *sql.Rows) ([]core.Transaction, error) {
	var transactions []core.Transaction
	for rows.Next() {
		var t core.Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.AccountID, &t.CategoryID, &t.Type, &t.Amount.Cents,
			&t.Description, &t.Date, &t.Notes, &t.Recurring); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}
