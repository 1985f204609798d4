package core

import (
	"errors"
	"testing"
	"time"
)

func TestTransactionValidate(t *testing.T) {
	now := date(2026, time.June, 15)
	valid := Transaction{
		AccountID:   "acc",
		CategoryID:  "cat",
		Type:        Expense,
		Amount:      Money{Cents: 1500},
		Description: "groceries",
		Date:        date(2026, time.June, 10),
	}
	if err := valid.Validate(now); err != nil {
		t.Fatalf("valid transaction rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Transaction)
	}{
		{"bad type", func(tr *Transaction) { tr.Type = "TRANSFER" }},
		{"zero amount", func(tr *Transaction) { tr.Amount.Cents = 0 }},
		{"negative amount", func(tr *Transaction) { tr.Amount.Cents = -100 }},
		{"empty description", func(tr *Transaction) { tr.Description = "  " }},
		{"future date", func(tr *Transaction) { tr.Date = date(2026, time.June, 16) }},
		{"zero date", func(tr *Transaction) { tr.Date = time.Time{} }},
		{"missing account", func(tr *Transaction) { tr.AccountID = "" }},
		{"missing category", func(tr *Transaction) { tr.CategoryID = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := valid
			tt.mutate(&tr)
			if err := tr.Validate(now); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestTransactionDelta(t *testing.T) {
	in := Transaction{Type: Income, Amount: Money{Cents: 500}}
	if got := in.Delta(); got != 500 {
		t.Errorf("income delta = %d, want 500", got)
	}
	out := Transaction{Type: Expense, Amount: Money{Cents: 500}}
	if got := out.Delta(); got != -500 {
		t.Errorf("expense delta = %d, want -500", got)
	}
}

func TestBudgetValidate(t *testing.T) {
	valid := Budget{
		CategoryID:     "cat",
		Name:           "food",
		Amount:         Money{Cents: 40000},
		Period:         Monthly,
		AlertThreshold: 80,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid budget rejected: %v", err)
	}

	bad := valid
	bad.AlertThreshold = 101
	if err := bad.Validate(); err == nil {
		t.Error("threshold over 100 should fail")
	}
	bad = valid
	bad.Period = "DAILY"
	if err := bad.Validate(); err == nil {
		t.Error("unknown period should fail")
	}
}

func TestErrorKinds(t *testing.T) {
	err := NotFoundf("account %s not found", "a1")
	if !IsKind(err, KindNotFound) {
		t.Errorf("kind = %v, want not_found", KindOf(err))
	}

	wrapped := Internalf(errors.New("disk full"), "create account")
	if KindOf(wrapped) != KindInternal {
		t.Errorf("kind = %v, want internal", KindOf(wrapped))
	}
	if wrapped.Unwrap() == nil {
		t.Error("wrapped cause should be reachable")
	}

	if KindOf(errors.New("plain")) != KindInternal {
		t.Error("plain errors default to internal")
	}
}

func TestMidnightUTC(t *testing.T) {
	in := time.Date(2026, time.June, 15, 17, 45, 12, 0, time.UTC)
	got := MidnightUTC(in)
	if got.Hour() != 0 || got.Minute() != 0 || got.Day() != 15 {
		t.Errorf("MidnightUTC = %v", got)
	}
}
