package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"finbook/internal/amqp"
	"finbook/internal/core"
	"finbook/internal/storage"
)

// LedgerEventPublisher emits ledger change notifications. Satisfied by
// *amqp.Client; nil disables publishing.
type LedgerEventPublisher interface {
	PublishLedgerEvent(ctx context.Context, msg *amqp.LedgerEventMessage) error
}

// TransactionInput carries the caller-editable fields of a transaction.
type TransactionInput struct {
	AccountID   string
	CategoryID  string
	Type        core.TransactionType
	Amount      core.Money
	Description string
	Date        time.Time
	Notes       string
	Recurring   bool
}

// LedgerService owns every transaction write. Each write runs as one
// atomic unit: the ledger row and the account's running balance change
// together or not at all.
type LedgerService struct {
	repo        *storage.Repository
	invalidator *Invalidator
	publisher   LedgerEventPublisher

	bulkMaxItems int
	bulkTimeout  time.Duration
	now          func() time.Time
}

func NewLedgerService(repo *storage.Repository, invalidator *Invalidator, publisher LedgerEventPublisher, bulkMaxItems int, bulkTimeout time.Duration) *LedgerService {
	return &LedgerService{
		repo:         repo,
		invalidator:  invalidator,
		publisher:    publisher,
		bulkMaxItems: bulkMaxItems,
		bulkTimeout:  bulkTimeout,
		now:          time.Now,
	}
}

// Create validates and records a transaction, applying its signed effect
// to the account balance in the same atomic unit.
func (s *LedgerService) Create(ctx context.Context, userID string, in TransactionInput) (core.Transaction, error) {
	t := newTransaction(userID, in)
	if err := t.Validate(s.now()); err != nil {
		return core.Transaction{}, err
	}

	err := s.repo.InTx(ctx, func(q *storage.Queries) error {
		if err := checkReferences(ctx, q, userID, t); err != nil {
			return err
		}
		if err := q.CreateTransaction(ctx, t); err != nil {
			return err
		}
		return q.AdjustBalance(ctx, t.AccountID, t.Delta())
	})
	if err != nil {
		return core.Transaction{}, err
	}

	s.afterWrite(ctx, userID, t.ID, amqp.ActionCreated)
	return t, nil
}

// Update replaces a transaction. The old row's effect is reversed on its
// account and the new effect applied, both inside one atomic unit, so the
// update stays correct when the amount, type, or account changes.
func (s *LedgerService) Update(ctx context.Context, userID, id string, in TransactionInput) (core.Transaction, error) {
	t := newTransaction(userID, in)
	t.ID = id
	if err := t.Validate(s.now()); err != nil {
		return core.Transaction{}, err
	}

	err := s.repo.InTx(ctx, func(q *storage.Queries) error {
		old, err := ownedTransaction(ctx, q, userID, id)
		if err != nil {
			return err
		}
		if err := checkReferences(ctx, q, userID, t); err != nil {
			return err
		}
		if err := q.AdjustBalance(ctx, old.AccountID, -old.Delta()); err != nil {
			return err
		}
		if err := q.AdjustBalance(ctx, t.AccountID, t.Delta()); err != nil {
			return err
		}
		return q.UpdateTransaction(ctx, t)
	})
	if err != nil {
		return core.Transaction{}, err
	}

	s.afterWrite(ctx, userID, id, amqp.ActionUpdated)
	return t, nil
}

// Delete removes a transaction and reverses its balance effect.
func (s *LedgerService) Delete(ctx context.Context, userID, id string) error {
	err := s.repo.InTx(ctx, func(q *storage.Queries) error {
		old, err := ownedTransaction(ctx, q, userID, id)
		if err != nil {
			return err
		}
		if err := q.AdjustBalance(ctx, old.AccountID, -old.Delta()); err != nil {
			return err
		}
		return q.DeleteTransaction(ctx, id)
	})
	if err != nil {
		return err
	}

	s.afterWrite(ctx, userID, id, amqp.ActionDeleted)
	return nil
}

// BulkCreate records up to bulkMaxItems transactions in one atomic unit.
// Validation runs over the whole batch before anything is written, so a
// bad item rejects the batch instead of splitting it.
func (s *LedgerService) BulkCreate(ctx context.Context, userID string, inputs []TransactionInput) ([]core.Transaction, error) {
	if len(inputs) == 0 {
		return nil, core.InvalidArgumentf("bulk create requires at least one transaction")
	}
	if len(inputs) > s.bulkMaxItems {
		return nil, core.InvalidArgumentf("bulk create limited to %d transactions, got %d", s.bulkMaxItems, len(inputs))
	}

	now := s.now()
	transactions := make([]core.Transaction, 0, len(inputs))
	for i, in := range inputs {
		t := newTransaction(userID, in)
		if err := t.Validate(now); err != nil {
			return nil, core.InvalidArgumentf("transaction %d: %v", i, err)
		}
		transactions = append(transactions, t)
	}

	ctx, cancel := context.WithTimeout(ctx, s.bulkTimeout)
	defer cancel()

	err := s.repo.InTx(ctx, func(q *storage.Queries) error {
		for _, t := range transactions {
			if err := checkReferences(ctx, q, userID, t); err != nil {
				return err
			}
			if err := q.CreateTransaction(ctx, t); err != nil {
				return err
			}
			if err := q.AdjustBalance(ctx, t.AccountID, t.Delta()); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidator.InvalidateTransactionRelated(ctx, userID)
	for _, t := range transactions {
		s.publish(ctx, userID, t.ID, amqp.ActionCreated)
	}
	return transactions, nil
}

// Get returns one transaction the user owns.
func (s *LedgerService) Get(ctx context.Context, userID, id string) (core.Transaction, error) {
	return ownedTransaction(ctx, s.repo.Queries(), userID, id)
}

// List returns a filtered page of the user's transactions plus the
// unpaginated total.
func (s *LedgerService) List(ctx context.Context, userID string, f storage.TransactionFilter) ([]core.Transaction, int, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 100
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return s.repo.Queries().ListTransactions(ctx, userID, f)
}

// RecalculateBalance rebuilds an account's running balance from its ledger
// rows. This is the drift repair for balances damaged outside the atomic
// write path.
func (s *LedgerService) RecalculateBalance(ctx context.Context, userID, accountID string) (core.Money, error) {
	var balance int64
	err := s.repo.InTx(ctx, func(q *storage.Queries) error {
		if _, err := ownedAccount(ctx, q, userID, accountID); err != nil {
			return err
		}
		income, err := q.SumAccountByType(ctx, accountID, core.Income)
		if err != nil {
			return err
		}
		expense, err := q.SumAccountByType(ctx, accountID, core.Expense)
		if err != nil {
			return err
		}
		balance = income - expense
		return q.SetBalance(ctx, accountID, balance)
	})
	if err != nil {
		return core.Money{}, err
	}

	s.invalidator.InvalidateAccounts(ctx, userID)
	s.invalidator.InvalidateAnalytics(ctx, userID)
	return core.Money{Cents: balance}, nil
}

func (s *LedgerService) afterWrite(ctx context.Context, userID, transactionID, action string) {
	s.invalidator.InvalidateTransactionRelated(ctx, userID)
	s.publish(ctx, userID, transactionID, action)
}

func (s *LedgerService) publish(ctx context.Context, userID, transactionID, action string) {
	if s.publisher == nil {
		return
	}
	msg := amqp.NewLedgerEventMessage(transactionID, userID, action)
	if err := s.publisher.PublishLedgerEvent(ctx, msg); err != nil {
		// The write already committed, the event stream is best effort.
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"transaction_id", transactionID, "action", action, "error", err)
	}
}

func newTransaction(userID string, in TransactionInput) core.Transaction {
	return core.Transaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		AccountID:   in.AccountID,
		CategoryID:  in.CategoryID,
		Type:        in.Type,
		Amount:      in.Amount,
		Description: in.Description,
		Date:        in.Date,
		Notes:       in.Notes,
		Recurring:   in.Recurring,
	}
}

// checkReferences verifies the transaction's account and category resolve
// for the user before anything is written.
func checkReferences(ctx context.Context, q *storage.Queries, userID string, t core.Transaction) error {
	if _, err := ownedAccount(ctx, q, userID, t.AccountID); err != nil {
		return err
	}
	cat, err := q.GetCategoryForUser(ctx, t.CategoryID, userID)
	if err != nil {
		return err
	}
	if cat.Type != t.Type {
		return core.InvalidArgumentf("category %q is %s, cannot back a %s transaction",
			cat.Name, cat.Type, t.Type)
	}
	return nil
}

func ownedAccount(ctx context.Context, q *storage.Queries, userID, accountID string) (core.Account, error) {
	a, err := q.GetAccountByID(ctx, accountID)
	if err != nil {
		return core.Account{}, err
	}
	if a.UserID != userID {
		return core.Account{}, core.Forbiddenf("account %s belongs to another user", accountID)
	}
	return a, nil
}

func ownedTransaction(ctx context.Context, q *storage.Queries, userID, id string) (core.Transaction, error) {
	t, err := q.GetTransactionByID(ctx, id)
	if err != nil {
		return core.Transaction{}, err
	}
	if t.UserID != userID {
		return core.Transaction{}, core.Forbiddenf("transaction %s belongs to another user", id)
	}
	return t, nil
}
