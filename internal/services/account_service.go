package services

import (
	"context"

	"github.com/google/uuid"

	"finbook/internal/cache"
	"finbook/internal/core"
	"finbook/internal/storage"
)

// AccountInput carries the caller-editable fields of an account.
type AccountInput struct {
	Name           string
	Type           core.AccountType
	Currency       string
	InitialBalance core.Money
}

// AccountService manages accounts and their cached list and balance reads.
type AccountService struct {
	repo        *storage.Repository
	cache       cache.Cache[[]byte]
	invalidator *Invalidator
}

func NewAccountService(repo *storage.Repository, c cache.Cache[[]byte], invalidator *Invalidator) *AccountService {
	return &AccountService{repo: repo, cache: c, invalidator: invalidator}
}

func (s *AccountService) Create(ctx context.Context, userID string, in AccountInput) (core.Account, error) {
	a := core.Account{
		ID:       uuid.NewString(),
		UserID:   userID,
		Name:     in.Name,
		Type:     in.Type,
		Balance:  in.InitialBalance,
		Currency: in.Currency,
		Active:   true,
	}
	if a.Currency == "" {
		a.Currency = "EUR"
	}
	if err := a.Validate(); err != nil {
		return core.Account{}, err
	}

	if err := s.repo.Queries().CreateAccount(ctx, a); err != nil {
		return core.Account{}, err
	}
	s.invalidator.InvalidateAccounts(ctx, userID)
	return a, nil
}

func (s *AccountService) Get(ctx context.Context, userID, id string) (core.Account, error) {
	return ownedAccount(ctx, s.repo.Queries(), userID, id)
}

// List returns the user's accounts, newest first, from cache when warm.
func (s *AccountService) List(ctx context.Context, userID string) ([]core.Account, error) {
	key := cache.Key(opAccountsList, userID)
	if accounts, ok := cacheLookup[[]core.Account](s.cache, key); ok {
		return accounts, nil
	}

	accounts, err := s.repo.Queries().ListAccounts(ctx, userID)
	if err != nil {
		return nil, err
	}
	cacheStore(ctx, s.cache, key, cache.Group(opAccountsList, userID), accounts)
	return accounts, nil
}

func (s *AccountService) Update(ctx context.Context, userID, id string, in AccountInput) (core.Account, error) {
	a, err := ownedAccount(ctx, s.repo.Queries(), userID, id)
	if err != nil {
		return core.Account{}, err
	}
	a.Name = in.Name
	a.Type = in.Type
	if in.Currency != "" {
		a.Currency = in.Currency
	}
	if err := a.Validate(); err != nil {
		return core.Account{}, err
	}

	if err := s.repo.Queries().UpdateAccount(ctx, a); err != nil {
		return core.Account{}, err
	}
	s.invalidator.InvalidateAccounts(ctx, userID)
	return a, nil
}

// Delete removes an empty account. Accounts still referenced by ledger
// rows are kept, their history would dangle otherwise.
func (s *AccountService) Delete(ctx context.Context, userID, id string) error {
	err := s.repo.InTx(ctx, func(q *storage.Queries) error {
		if _, err := ownedAccount(ctx, q, userID, id); err != nil {
			return err
		}
		count, err := q.CountByAccount(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return core.Conflictf("account %s still has %d transactions", id, count)
		}
		return q.DeleteAccount(ctx, id)
	})
	if err != nil {
		return err
	}
	s.invalidator.InvalidateAccounts(ctx, userID)
	return nil
}

// TotalBalance sums the balances of every account the user owns.
func (s *AccountService) TotalBalance(ctx context.Context, userID string) (core.Money, error) {
	key := cache.Key(opAccountsBalance, userID)
	if m, ok := cacheLookup[core.Money](s.cache, key); ok {
		return m, nil
	}

	cents, err := s.repo.Queries().SumBalances(ctx, userID)
	if err != nil {
		return core.Money{}, err
	}
	m := core.Money{Cents: cents}
	cacheStore(ctx, s.cache, key, cache.Group(opAccountsBalance, userID), m)
	return m, nil
}
