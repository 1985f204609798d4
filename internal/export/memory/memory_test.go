package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"finbook/internal/export"
)

func TestStore_Append(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	ref, err := store.Append(ctx, export.StatementRow{
		Date:          time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		Action:        "created",
		TransactionID: "tx-1",
		Description:   "Groceries",
		Category:      "Food",
		Account:       "Checking",
		Type:          "EXPENSE",
		Amount:        45.50,
	})
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if ref != "mem:1" {
		t.Errorf("ref = %q, want mem:1", ref)
	}

	rows := store.Rows()
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}
	if rows[0].Description != "Groceries" || rows[0].Amount != 45.50 {
		t.Errorf("unexpected row: %+v", rows[0])
	}
}

func TestStore_ConcurrentAppends(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.Append(ctx, export.StatementRow{Action: "created"}); err != nil {
				t.Errorf("Append() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if got := len(store.Rows()); got != 20 {
		t.Errorf("len(rows) = %d, want 20", got)
	}
}

func TestStore_RowsReturnsCopy(t *testing.T) {
	store := NewStore()
	if _, err := store.Append(context.Background(), export.StatementRow{Description: "original"}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	rows := store.Rows()
	rows[0].Description = "mutated"

	if store.Rows()[0].Description != "original" {
		t.Error("Rows() did not return a copy")
	}
}
