package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"finbook/internal/cache"
	"finbook/internal/core"
	"finbook/internal/storage"
)

// BudgetInput carries the caller-editable fields of a budget. A nil
// StartDate means "start today"; the end date is always derived from the
// start and the period. A nil AlertThreshold keeps the default (or, on
// update, the stored value); an explicit 0 means alert immediately.
type BudgetInput struct {
	CategoryID     string
	Name           string
	Amount         core.Money
	Period         core.BudgetPeriod
	StartDate      *time.Time
	AlertThreshold *int
}

// BudgetProgress is the derived spending state of one budget.
type BudgetProgress struct {
	Budget         core.Budget
	SpentCents     int64
	RemainingCents int64
	PercentageUsed float64
	IsOverBudget   bool
	ShouldAlert    bool
	DaysRemaining  int
}

// BudgetService manages budgets and their derived progress reads. At most
// one active budget may cover a category at any instant.
type BudgetService struct {
	repo        *storage.Repository
	cache       cache.Cache[[]byte]
	invalidator *Invalidator
	now         func() time.Time
}

func NewBudgetService(repo *storage.Repository, c cache.Cache[[]byte], invalidator *Invalidator) *BudgetService {
	return &BudgetService{repo: repo, cache: c, invalidator: invalidator, now: time.Now}
}

// Create records a budget. The overlap check and the insert share one
// atomic unit so two concurrent creates cannot both pass the check.
func (s *BudgetService) Create(ctx context.Context, userID string, in BudgetInput) (core.Budget, error) {
	start := core.MidnightUTC(s.now())
	if in.StartDate != nil {
		start = core.MidnightUTC(*in.StartDate)
	}
	end, err := core.BudgetEndDate(start, in.Period)
	if err != nil {
		return core.Budget{}, err
	}

	threshold := 80
	if in.AlertThreshold != nil {
		threshold = *in.AlertThreshold
	}
	b := core.Budget{
		ID:             uuid.NewString(),
		UserID:         userID,
		CategoryID:     in.CategoryID,
		Name:           in.Name,
		Amount:         in.Amount,
		Period:         in.Period,
		StartDate:      start,
		EndDate:        end,
		AlertThreshold: threshold,
		Active:         true,
	}
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}

	err = s.repo.InTx(ctx, func(q *storage.Queries) error {
		if err := expenseCategory(ctx, q, userID, b.CategoryID); err != nil {
			return err
		}
		if err := checkOverlap(ctx, q, b, ""); err != nil {
			return err
		}
		return q.CreateBudget(ctx, b)
	})
	if err != nil {
		return core.Budget{}, err
	}

	s.invalidator.InvalidateBudgets(ctx, userID)
	return b, nil
}

// Update replaces a budget's editable fields, re-deriving the end date and
// re-running the overlap check against every other active budget.
func (s *BudgetService) Update(ctx context.Context, userID, id string, in BudgetInput) (core.Budget, error) {
	var updated core.Budget
	err := s.repo.InTx(ctx, func(q *storage.Queries) error {
		b, err := ownedBudget(ctx, q, userID, id)
		if err != nil {
			return err
		}

		b.CategoryID = in.CategoryID
		b.Name = in.Name
		b.Amount = in.Amount
		b.Period = in.Period
		if in.StartDate != nil {
			b.StartDate = core.MidnightUTC(*in.StartDate)
		}
		if in.AlertThreshold != nil {
			b.AlertThreshold = *in.AlertThreshold
		}
		b.EndDate, err = core.BudgetEndDate(b.StartDate, b.Period)
		if err != nil {
			return err
		}
		if err := b.Validate(); err != nil {
			return err
		}

		if err := expenseCategory(ctx, q, userID, b.CategoryID); err != nil {
			return err
		}
		if err := checkOverlap(ctx, q, b, b.ID); err != nil {
			return err
		}
		if err := q.UpdateBudget(ctx, b); err != nil {
			return err
		}
		updated = b
		return nil
	})
	if err != nil {
		return core.Budget{}, err
	}

	s.invalidator.InvalidateBudgets(ctx, userID)
	return updated, nil
}

// Deactivate retires a budget without deleting its history.
func (s *BudgetService) Deactivate(ctx context.Context, userID, id string) error {
	err := s.repo.InTx(ctx, func(q *storage.Queries) error {
		if _, err := ownedBudget(ctx, q, userID, id); err != nil {
			return err
		}
		return q.DeactivateBudget(ctx, id)
	})
	if err != nil {
		return err
	}
	s.invalidator.InvalidateBudgets(ctx, userID)
	return nil
}

func (s *BudgetService) Get(ctx context.Context, userID, id string) (core.Budget, error) {
	return ownedBudget(ctx, s.repo.Queries(), userID, id)
}

// List returns a filtered page of the user's budgets plus the unpaginated
// total.
func (s *BudgetService) List(ctx context.Context, userID string, f storage.BudgetFilter) ([]core.Budget, int, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 100
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	type page struct {
		Budgets []core.Budget
		Total   int
	}
	key := cache.Key(opBudgetsList, userID, budgetFilterArgs(f)...)
	if p, ok := cacheLookup[page](s.cache, key); ok {
		return p.Budgets, p.Total, nil
	}

	budgets, total, err := s.repo.Queries().ListBudgets(ctx, userID, f)
	if err != nil {
		return nil, 0, err
	}
	cacheStore(ctx, s.cache, key, cache.Group(opBudgetsList, userID), page{budgets, total})
	return budgets, total, nil
}

// Progress returns the derived spending state of one budget.
func (s *BudgetService) Progress(ctx context.Context, userID, id string) (BudgetProgress, error) {
	key := cache.Key(opBudgetsProgress, userID, id)
	if p, ok := cacheLookup[BudgetProgress](s.cache, key); ok {
		return p, nil
	}

	b, err := ownedBudget(ctx, s.repo.Queries(), userID, id)
	if err != nil {
		return BudgetProgress{}, err
	}
	p, err := s.progressOf(ctx, b)
	if err != nil {
		return BudgetProgress{}, err
	}
	cacheStore(ctx, s.cache, key, cache.Group(opBudgetsProgress, userID), p)
	return p, nil
}

// Overview returns progress for every active budget, most urgent first:
// fewest days remaining, then highest percentage used.
func (s *BudgetService) Overview(ctx context.Context, userID string) ([]BudgetProgress, error) {
	key := cache.Key(opBudgetsOverview, userID)
	if overview, ok := cacheLookup[[]BudgetProgress](s.cache, key); ok {
		return overview, nil
	}

	budgets, err := s.repo.Queries().ListActiveBudgets(ctx, userID)
	if err != nil {
		return nil, err
	}

	overview := make([]BudgetProgress, 0, len(budgets))
	for _, b := range budgets {
		p, err := s.progressOf(ctx, b)
		if err != nil {
			return nil, err
		}
		overview = append(overview, p)
	}
	sort.SliceStable(overview, func(i, j int) bool {
		if overview[i].DaysRemaining != overview[j].DaysRemaining {
			return overview[i].DaysRemaining < overview[j].DaysRemaining
		}
		return overview[i].PercentageUsed > overview[j].PercentageUsed
	})

	cacheStore(ctx, s.cache, key, cache.Group(opBudgetsOverview, userID), overview)
	return overview, nil
}

func (s *BudgetService) progressOf(ctx context.Context, b core.Budget) (BudgetProgress, error) {
	spent, err := s.repo.Queries().SpentInCategory(ctx, b.UserID, b.CategoryID,
		core.Window{Start: b.StartDate, End: b.EndDate})
	if err != nil {
		return BudgetProgress{}, err
	}

	// Remaining goes negative when the budget is blown, the caller decides
	// how to present that.
	remaining := b.Amount.Cents - spent
	used := core.Round2(core.Percentage(spent, b.Amount.Cents))
	return BudgetProgress{
		Budget:         b,
		SpentCents:     spent,
		RemainingCents: remaining,
		PercentageUsed: used,
		IsOverBudget:   spent > b.Amount.Cents,
		ShouldAlert:    used >= float64(b.AlertThreshold),
		DaysRemaining:  core.DaysUntil(b.EndDate, s.now()),
	}, nil
}

// Budgets track spending, so only expense categories may back one.
func expenseCategory(ctx context.Context, q *storage.Queries, userID, categoryID string) error {
	cat, err := q.GetCategoryForUser(ctx, categoryID, userID)
	if err != nil {
		return err
	}
	if cat.Type != core.Expense {
		return core.InvalidArgumentf("budgets require an expense category, %q is %s", cat.Name, cat.Type)
	}
	return nil
}

func checkOverlap(ctx context.Context, q *storage.Queries, b core.Budget, excludeID string) error {
	other, found, err := q.FindOverlappingBudget(ctx, b.UserID, b.CategoryID, b.StartDate, b.EndDate, excludeID)
	if err != nil {
		return err
	}
	if found {
		return core.Conflictf("budget %q already covers this category from %s to %s",
			other.Name, other.StartDate.Format("2006-01-02"), other.EndDate.Format("2006-01-02"))
	}
	return nil
}

func ownedBudget(ctx context.Context, q *storage.Queries, userID, id string) (core.Budget, error) {
	b, err := q.GetBudgetByID(ctx, id)
	if err != nil {
		return core.Budget{}, err
	}
	if b.UserID != userID {
		return core.Budget{}, core.Forbiddenf("budget %s belongs to another user", id)
	}
	return b, nil
}

func budgetFilterArgs(f storage.BudgetFilter) []string {
	active := ""
	if f.Active != nil {
		active = fmt.Sprintf("%t", *f.Active)
	}
	return []string{
		active,
		f.CategoryID,
		string(f.Period),
		fmt.Sprintf("%d", f.Limit),
		fmt.Sprintf("%d", f.Offset),
	}
}
