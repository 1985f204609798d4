package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"finbook/internal/core"
)

func (q *Queries) CreateCategory(ctx context.Context, c core.Category) error {
	var userID any
	if c.UserID != "" {
		userID = c.UserID
	}
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO categories (id, user_id, name, type, icon, color)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, userID, c.Name, string(c.Type), c.Icon, c.Color)
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

// GetCategoryForUser resolves a category the user may reference: one they
// own or a system default.
func (q *Queries) GetCategoryForUser(ctx context.Context, id, userID string) (core.Category, error) {
	var c core.Category
	var owner sql.NullString
	err := q.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, type, icon, color
		FROM categories
		WHERE id = ? AND (user_id = ? OR user_id IS NULL)`, id, userID).
		Scan(&c.ID, &owner, &c.Name, &c.Type, &c.Icon, &c.Color)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, core.NotFoundf("category %s not found", id)
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	c.UserID = owner.String
	return c, nil
}

// ListCategories returns the user's categories plus the system defaults.
func (q *Queries) ListCategories(ctx context.Context, userID string) ([]core.Category, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, user_id, name, type, icon, color
		FROM categories
		WHERE user_id = ? OR user_id IS NULL
		ORDER BY user_id IS NULL, name`, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []core.Category
	for rows.Next() {
		var c core.Category
		var owner sql.NullString
		if err := rows.Scan(&c.ID, &owner, &c.Name, &c.Type, &c.Icon, &c.Color); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.UserID = owner.String
		categories = append(categories, c)
	}
	return categories, rows.Err()
}
