package core

import (
	"strings"
	"time"
)

// AccountType enumerates the supported account kinds.
type AccountType string

const (
	AccountBank       AccountType = "bank"
	AccountCash       AccountType = "cash"
	AccountCredit     AccountType = "credit"
	AccountInvestment AccountType = "investment"
	AccountOther      AccountType = "other"
)

// TransactionType is a closed two-valued enumeration. The sign of a
// transaction's effect on its account balance is implied by the type.
type TransactionType string

const (
	Income  TransactionType = "INCOME"
	Expense TransactionType = "EXPENSE"
)

// BudgetPeriod enumerates budget interval lengths.
type BudgetPeriod string

const (
	Weekly  BudgetPeriod = "WEEKLY"
	Monthly BudgetPeriod = "MONTHLY"
	Yearly  BudgetPeriod = "YEARLY"
)

type Account struct {
	ID       string
	UserID   string
	Name     string
	Type     AccountType
	Balance  Money
	Currency string
	Active   bool
}

type Transaction struct {
	ID          string
	UserID      string
	AccountID   string
	CategoryID  string
	Type        TransactionType
	Amount      Money
	Description string
	Date        time.Time
	Notes       string
	Recurring   bool
}

type Budget struct {
	ID             string
	UserID         string
	CategoryID     string
	Name           string
	Amount         Money
	Period         BudgetPeriod
	StartDate      time.Time
	EndDate        time.Time
	AlertThreshold int
	Active         bool
}

// Category is a read-only reference for the ledger. A nil UserID marks a
// system default usable by every user.
type Category struct {
	ID     string
	UserID string // empty for system defaults
	Name   string
	Type   TransactionType
	Icon   string
	Color  string
}

func (t AccountType) Valid() bool {
	switch t {
	case AccountBank, AccountCash, AccountCredit, AccountInvestment, AccountOther:
		return true
	}
	return false
}

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func (p BudgetPeriod) Valid() bool {
	switch p {
	case Weekly, Monthly, Yearly:
		return true
	}
	return false
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return InvalidArgumentf("account name is empty")
	}
	if !a.Type.Valid() {
		return InvalidArgumentf("invalid account type %q", a.Type)
	}
	if a.Currency == "" {
		return InvalidArgumentf("currency is empty")
	}
	return nil
}

// Validate checks a transaction before any atomic unit begins, keeping the
// transactional critical section free of business branching.
func (t Transaction) Validate(now time.Time) error {
	if !t.Type.Valid() {
		return InvalidArgumentf("invalid transaction type %q", t.Type)
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Description) == "" {
		return InvalidArgumentf("description is empty")
	}
	if len(t.Description) > 200 {
		return InvalidArgumentf("description too long (max 200 characters)")
	}
	if t.Date.IsZero() {
		return InvalidArgumentf("date is required")
	}
	if t.Date.After(now) {
		return InvalidArgumentf("transaction date cannot be in the future")
	}
	if t.AccountID == "" {
		return InvalidArgumentf("account is required")
	}
	if t.CategoryID == "" {
		return InvalidArgumentf("category is required")
	}
	return nil
}

// Delta is the signed effect of the transaction on its account balance.
func (t Transaction) Delta() int64 {
	if t.Type == Income {
		return t.Amount.Cents
	}
	return -t.Amount.Cents
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return InvalidArgumentf("budget name is empty")
	}
	if err := b.Amount.Validate(); err != nil {
		return err
	}
	if !b.Period.Valid() {
		return InvalidArgumentf("invalid budget period %q", b.Period)
	}
	if b.AlertThreshold < 0 || b.AlertThreshold > 100 {
		return InvalidArgumentf("alert threshold must be between 0 and 100")
	}
	if b.CategoryID == "" {
		return InvalidArgumentf("category is required")
	}
	return nil
}

// BudgetEndDate derives the exclusive-period end from the start and period:
// a week, a calendar month, or a calendar year later.
func BudgetEndDate(start time.Time, period BudgetPeriod) (time.Time, error) {
	switch period {
	case Weekly:
		return start.AddDate(0, 0, 7), nil
	case Monthly:
		return start.AddDate(0, 1, 0), nil
	case Yearly:
		return start.AddDate(1, 0, 0), nil
	default:
		return time.Time{}, InvalidArgumentf("invalid budget period %q", period)
	}
}

// MidnightUTC normalizes an instant to the start of its UTC day, the
// canonical form for budget starts.
func MidnightUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
