package worker

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"finbook/internal/amqp"
	"finbook/internal/core"
	"finbook/internal/export/memory"
	"finbook/internal/storage"
)

func newTestRepo(t *testing.T) *storage.Repository {
	t.Helper()

	repo, err := storage.Open(filepath.Join(t.TempDir(), "worker.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedTransaction(t *testing.T, repo *storage.Repository) core.Transaction {
	t.Helper()
	ctx := context.Background()
	q := repo.Queries()

	account := core.Account{
		ID:       uuid.NewString(),
		UserID:   "user-1",
		Name:     "Checking",
		Type:     core.AccountBank,
		Currency: "EUR",
		Active:   true,
	}
	if err := q.CreateAccount(ctx, account); err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}

	category := core.Category{
		ID:     uuid.NewString(),
		UserID: "user-1",
		Name:   "Groceries",
		Type:   core.Expense,
	}
	if err := q.CreateCategory(ctx, category); err != nil {
		t.Fatalf("CreateCategory() error = %v", err)
	}

	tr := core.Transaction{
		ID:          uuid.NewString(),
		UserID:      "user-1",
		AccountID:   account.ID,
		CategoryID:  category.ID,
		Type:        core.Expense,
		Amount:      core.Money{Cents: 4550},
		Description: "Weekly shop",
		Date:        time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
	}
	if err := q.CreateTransaction(ctx, tr); err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}
	return tr
}

func TestExportWorker_HandleCreatedEvent(t *testing.T) {
	repo := newTestRepo(t)
	store := memory.NewStore()
	w := NewExportWorker(repo, store)

	tr := seedTransaction(t, repo)
	msg := amqp.NewLedgerEventMessage(tr.ID, tr.UserID, amqp.ActionCreated)

	if err := w.HandleLedgerEvent(context.Background(), msg); err != nil {
		t.Fatalf("HandleLedgerEvent() error = %v", err)
	}

	rows := store.Rows()
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}
	row := rows[0]
	if row.TransactionID != tr.ID {
		t.Errorf("TransactionID = %q, want %q", row.TransactionID, tr.ID)
	}
	if row.Action != amqp.ActionCreated {
		t.Errorf("Action = %q, want %q", row.Action, amqp.ActionCreated)
	}
	if row.Description != "Weekly shop" {
		t.Errorf("Description = %q, want Weekly shop", row.Description)
	}
	if row.Category != "Groceries" {
		t.Errorf("Category = %q, want Groceries", row.Category)
	}
	if row.Account != "Checking" {
		t.Errorf("Account = %q, want Checking", row.Account)
	}
	if row.Amount != 45.50 {
		t.Errorf("Amount = %v, want 45.50", row.Amount)
	}
	if !row.Date.Equal(tr.Date) {
		t.Errorf("Date = %v, want %v", row.Date, tr.Date)
	}
}

func TestExportWorker_HandleDeletedEvent(t *testing.T) {
	repo := newTestRepo(t)
	store := memory.NewStore()
	w := NewExportWorker(repo, store)

	// Deleted transactions no longer exist, the row carries the ID only.
	msg := amqp.NewLedgerEventMessage("gone-id", "user-1", amqp.ActionDeleted)
	if err := w.HandleLedgerEvent(context.Background(), msg); err != nil {
		t.Fatalf("HandleLedgerEvent() error = %v", err)
	}

	rows := store.Rows()
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}
	if rows[0].TransactionID != "gone-id" || rows[0].Action != amqp.ActionDeleted {
		t.Errorf("unexpected row: %+v", rows[0])
	}
	if rows[0].Description != "" {
		t.Errorf("Description = %q, want empty", rows[0].Description)
	}
}

func TestExportWorker_MissingTransactionIsSkipped(t *testing.T) {
	repo := newTestRepo(t)
	store := memory.NewStore()
	w := NewExportWorker(repo, store)

	msg := amqp.NewLedgerEventMessage("missing-id", "user-1", amqp.ActionCreated)
	if err := w.HandleLedgerEvent(context.Background(), msg); err != nil {
		t.Fatalf("HandleLedgerEvent() error = %v, want nil for missing transaction", err)
	}

	if got := len(store.Rows()); got != 0 {
		t.Errorf("len(rows) = %d, want 0", got)
	}
}
