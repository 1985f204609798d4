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

func (q *Queries) CreateBudget(ctx context.Context, b core.Budget) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO budgets (id, user_id, category_id, name, amount_cents, period, start_date, end_date, alert_threshold, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.UserID, b.CategoryID, b.Name, b.Amount.Cents, string(b.Period),
		b.StartDate.UTC(), b.EndDate.UTC(), b.AlertThreshold, b.Active)
	if err != nil {
		return fmt.Errorf("create budget: %w", err)
	}
	return nil
}

func (q *Queries) GetBudgetByID(ctx context.Context, id string) (core.Budget, error) {
	var b core.Budget
	err := q.db.QueryRowContext(ctx, `
		SELECT id, user_id, category_id, name, amount_cents, period, start_date, end_date, alert_threshold, active
		FROM budgets WHERE id = ?`, id).
		Scan(&b.ID, &b.UserID, &b.CategoryID, &b.Name, &b.Amount.Cents, &b.Period,
			&b.StartDate, &b.EndDate, &b.AlertThreshold, &b.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, core.NotFoundf("budget %s not found", id)
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget: %w", err)
	}
	return b, nil
}

func (q *Queries) UpdateBudget(ctx context.Context, b core.Budget) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE budgets
		SET category_id = ?, name = ?, amount_cents = ?, period = ?, start_date = ?,
		    end_date = ?, alert_threshold = ?, active = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		b.CategoryID, b.Name, b.Amount.Cents, string(b.Period), b.StartDate.UTC(),
		b.EndDate.UTC(), b.AlertThreshold, b.Active, b.ID)
	if err != nil {
		return fmt.Errorf("update budget: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.NotFoundf("budget %s not found", b.ID)
	}
	return nil
}

// DeactivateBudget soft-deletes a budget. Rows stay behind for history.
func (q *Queries) DeactivateBudget(ctx context.Context, id string) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE budgets SET active = 0, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deactivate budget: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.NotFoundf("budget %s not found", id)
	}
	return nil
}

// BudgetFilter narrows ListBudgets. Zero values mean "no filter".
type BudgetFilter struct {
	Active     *bool
	CategoryID string
	Period     core.BudgetPeriod
	Limit      int
	Offset     int
}

func (q *Queries) ListBudgets(ctx context.Context, userID string, f BudgetFilter) ([]core.Budget, int, error) {
	where := []string{"user_id = ?"}
	args := []any{userID}

	if f.Active != nil {
		where = append(where, "active = ?")
		args = append(args, *f.Active)
	}
	if f.CategoryID != "" {
		where = append(where, "category_id = ?")
		args = append(args, f.CategoryID)
	}
	if f.Period != "" {
		where = append(where, "period = ?")
		args = append(args, string(f.Period))
	}

	cond := strings.Join(where, " AND ")

	var total int
	if err := q.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM budgets WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count budgets: %w", err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	query := "SELECT id, user_id, category_id, name, amount_cents, period, start_date, end_date, alert_threshold, active " +
		"FROM budgets WHERE " + cond + " ORDER BY start_date DESC LIMIT ? OFFSET ?"
	rows, err := q.db.QueryContext(ctx, query, append(args, limit, f.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	budgets, err := scanBudgets(rows)
	if err != nil {
		return nil, 0, err
	}
	return budgets, total, nil
}

// ListActiveBudgets returns every active budget of the user, ordered by
// end date so the soonest-expiring come first.
func (q *Queries) ListActiveBudgets(ctx context.Context, userID string) ([]core.Budget, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, user_id, category_id, name, amount_cents, period, start_date, end_date, alert_threshold, active
		FROM budgets WHERE user_id = ? AND active = 1
		ORDER BY end_date`, userID)
	if err != nil {
		return nil, fmt.Errorf("list active budgets: %w", err)
	}
	defer rows.Close()
	return scanBudgets(rows)
}

// FindOverlappingBudget looks for an active budget on the same category
// whose period intersects [start, end]. excludeID skips the budget being
// updated so it does not collide with itself.
func (q *Queries) FindOverlappingBudget(ctx context.Context, userID, categoryID string, start, end time.Time, excludeID string) (core.Budget, bool, error) {
	query := `
		SELECT id, user_id, category_id, name, amount_cents, period, start_date, end_date, alert_threshold, active
		FROM budgets
		WHERE user_id = ? AND category_id = ? AND active = 1
		  AND start_date <= ? AND end_date >= ?`
	args := []any{userID, categoryID, end.UTC(), start.UTC()}
	if excludeID != "" {
		query += " AND id != ?"
		args = append(args, excludeID)
	}
	query += " LIMIT 1"

	var b core.Budget
	err := q.db.QueryRowContext(ctx, query, args...).
		Scan(&b.ID, &b.UserID, &b.CategoryID, &b.Name, &b.Amount.Cents, &b.Period,
			&b.StartDate, &b.EndDate, &b.AlertThreshold, &b.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, false, nil
	}
	if err != nil {
		return core.Budget{}, false, fmt.Errorf("find overlapping budget: %w", err)
	}
	return b, true, nil
}

func scanBudgets(rows *sql.Rows) ([]core.Budget, error) {
	var budgets []core.Budget
	for rows.Next() {
		var b core.Budget
		if err := rows.Scan(&b.ID, &b.UserID, &b.CategoryID, &b.Name, &b.Amount.Cents, &b.Period,
			&b.StartDate, &b.EndDate, &b.AlertThreshold, &b.Active); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}
