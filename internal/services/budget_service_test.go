package services

import (
	"context"
	"testing"
	"time"

	"finbook/internal/core"
)

func budgetInput(categoryID string, cents int64) BudgetInput {
	return BudgetInput{
		CategoryID: categoryID,
		Name:       "Groceries",
		Amount:     core.Money{Cents: cents},
		Period:     core.Monthly,
	}
}

func TestBudget_CreateDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	food := f.seedCategory(t, "user-1", "Food", core.Expense)

	b, err := f.budgets.Create(ctx, "user-1", budgetInput(food.ID, 40000))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	wantStart := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	if !b.StartDate.Equal(wantStart) {
		t.Errorf("StartDate = %v, want %v", b.StartDate, wantStart)
	}
	if !b.EndDate.Equal(wantStart.AddDate(0, 1, 0)) {
		t.Errorf("EndDate = %v, want one month after start", b.EndDate)
	}
	if b.AlertThreshold != 80 {
		t.Errorf("AlertThreshold = %d, want default 80", b.AlertThreshold)
	}
	if !b.Active {
		t.Error("new budget should be active")
	}
}

func TestBudget_ExplicitZeroThreshold(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	food := f.seedCategory(t, "user-1", "Food", core.Expense)

	// Zero is a valid threshold meaning "alert from the first expense",
	// not a request for the default.
	zero := 0
	in := budgetInput(food.ID, 10000)
	in.AlertThreshold = &zero
	b, err := f.budgets.Create(ctx, "user-1", in)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if b.AlertThreshold != 0 {
		t.Errorf("AlertThreshold = %d, want 0", b.AlertThreshold)
	}

	p, err := f.budgets.Progress(ctx, "user-1", b.ID)
	if err != nil {
		t.Fatalf("Progress() error = %v", err)
	}
	if !p.ShouldAlert {
		t.Error("ShouldAlert = false, want true with a zero threshold")
	}

	// Updating without a threshold keeps the stored zero.
	upd := budgetInput(food.ID, 20000)
	b, err = f.budgets.Update(ctx, "user-1", b.ID, upd)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if b.AlertThreshold != 0 {
		t.Errorf("AlertThreshold after update = %d, want 0", b.AlertThreshold)
	}

	// An explicit new value still wins.
	fifty := 50
	upd.AlertThreshold = &fifty
	b, err = f.budgets.Update(ctx, "user-1", b.ID, upd)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if b.AlertThreshold != 50 {
		t.Errorf("AlertThreshold = %d, want 50", b.AlertThreshold)
	}
}

func TestBudget_RejectsIncomeCategory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	salary := f.seedCategory(t, "user-1", "Salary", core.Income)

	_, err := f.budgets.Create(ctx, "user-1", budgetInput(salary.ID, 40000))
	if !core.IsKind(err, core.KindInvalidArgument) {
		t.Errorf("Create() error = %v, want invalid argument", err)
	}
}

func TestBudget_EndDateDerivation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	start := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		period core.BudgetPeriod
		want   time.Time
	}{
		{core.Weekly, time.Date(2026, 2, 7, 0, 0, 0, 0, time.UTC)},
		{core.Monthly, time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)}, // Jan 31 + 1 month normalizes
		{core.Yearly, time.Date(2027, 1, 31, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(string(tt.period), func(t *testing.T) {
			c := f.seedCategory(t, "user-1", "Cat "+string(tt.period), core.Expense)
			in := budgetInput(c.ID, 1000)
			in.Period = tt.period
			in.StartDate = &start
			b, err := f.budgets.Create(ctx, "user-1", in)
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			if !b.EndDate.Equal(tt.want) {
				t.Errorf("EndDate = %v, want %v", b.EndDate, tt.want)
			}
		})
	}
}

func TestBudget_OverlapConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	food := f.seedCategory(t, "user-1", "Food", core.Expense)
	rent := f.seedCategory(t, "user-1", "Rent", core.Expense)

	first, err := f.budgets.Create(ctx, "user-1", budgetInput(food.ID, 40000))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Same category, overlapping window.
	if _, err := f.budgets.Create(ctx, "user-1", budgetInput(food.ID, 20000)); !core.IsKind(err, core.KindConflict) {
		t.Errorf("Create(overlap) error = %v, want conflict", err)
	}

	// Different category is fine.
	if _, err := f.budgets.Create(ctx, "user-1", budgetInput(rent.ID, 90000)); err != nil {
		t.Errorf("Create(other category) error = %v", err)
	}

	// Same category for another user is fine.
	if _, err := f.budgets.Create(ctx, "user-2", budgetInput(food.ID, 10000)); err != nil {
		t.Errorf("Create(other user) error = %v", err)
	}

	// Disjoint window on the same category is fine.
	later := first.EndDate.AddDate(0, 0, 1)
	in := budgetInput(food.ID, 30000)
	in.StartDate = &later
	if _, err := f.budgets.Create(ctx, "user-1", in); err != nil {
		t.Errorf("Create(disjoint) error = %v", err)
	}

	// An update does not collide with the budget itself.
	upd := budgetInput(food.ID, 45000)
	upd.StartDate = &first.StartDate
	if _, err := f.budgets.Update(ctx, "user-1", first.ID, upd); err != nil {
		t.Errorf("Update(self) error = %v", err)
	}
}

func TestBudget_DeactivateFreesWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	food := f.seedCategory(t, "user-1", "Food", core.Expense)

	b, err := f.budgets.Create(ctx, "user-1", budgetInput(food.ID, 40000))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := f.budgets.Deactivate(ctx, "user-1", b.ID); err != nil {
		t.Fatalf("Deactivate() error = %v", err)
	}
	if _, err := f.budgets.Create(ctx, "user-1", budgetInput(food.ID, 20000)); err != nil {
		t.Errorf("Create() after deactivate error = %v", err)
	}
}

func TestBudget_Progress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.seedAccount(t, "user-1", 100000)
	food := f.seedCategory(t, "user-1", "Food", core.Expense)

	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	in := budgetInput(food.ID, 10000)
	in.StartDate = &start
	threshold := 80
	in.AlertThreshold = &threshold
	b, err := f.budgets.Create(ctx, "user-1", in)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, err := f.ledger.Create(ctx, "user-1", expenseInput(a.ID, food.ID, 8000)); err != nil {
		t.Fatalf("ledger.Create() error = %v", err)
	}

	p, err := f.budgets.Progress(ctx, "user-1", b.ID)
	if err != nil {
		t.Fatalf("Progress() error = %v", err)
	}
	if p.SpentCents != 8000 {
		t.Errorf("SpentCents = %d, want 8000", p.SpentCents)
	}
	if p.RemainingCents != 2000 {
		t.Errorf("RemainingCents = %d, want 2000", p.RemainingCents)
	}
	if p.PercentageUsed != 80 {
		t.Errorf("PercentageUsed = %v, want 80", p.PercentageUsed)
	}
	if p.IsOverBudget {
		t.Error("IsOverBudget = true, want false")
	}
	if !p.ShouldAlert {
		t.Error("ShouldAlert = false, want true exactly at the threshold")
	}
	if p.DaysRemaining != 16 {
		t.Errorf("DaysRemaining = %d, want 16", p.DaysRemaining)
	}

	// Overspending drives remaining negative and flips the flag.
	if _, err := f.ledger.Create(ctx, "user-1", expenseInput(a.ID, food.ID, 5000)); err != nil {
		t.Fatalf("ledger.Create() error = %v", err)
	}
	p, err = f.budgets.Progress(ctx, "user-1", b.ID)
	if err != nil {
		t.Fatalf("Progress() error = %v", err)
	}
	if p.RemainingCents != -3000 {
		t.Errorf("RemainingCents = %d, want -3000 when over budget", p.RemainingCents)
	}
	if !p.IsOverBudget {
		t.Error("IsOverBudget = false, want true")
	}
	if p.PercentageUsed != 130 {
		t.Errorf("PercentageUsed = %v, want 130", p.PercentageUsed)
	}
}

func TestBudget_OverviewOrdering(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.seedAccount(t, "user-1", 100000)
	food := f.seedCategory(t, "user-1", "Food", core.Expense)
	rent := f.seedCategory(t, "user-1", "Rent", core.Expense)
	fun := f.seedCategory(t, "user-1", "Fun", core.Expense)

	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	// Weekly budget expired mid-March: fewest days remaining.
	weekly := budgetInput(food.ID, 10000)
	weekly.Period = core.Weekly
	weekly.StartDate = &start
	if _, err := f.budgets.Create(ctx, "user-1", weekly); err != nil {
		t.Fatalf("Create(weekly) error = %v", err)
	}

	// Two monthly budgets sharing the window: the hotter one sorts first.
	monthlyRent := budgetInput(rent.ID, 10000)
	monthlyRent.StartDate = &start
	if _, err := f.budgets.Create(ctx, "user-1", monthlyRent); err != nil {
		t.Fatalf("Create(rent) error = %v", err)
	}
	monthlyFun := budgetInput(fun.ID, 10000)
	monthlyFun.StartDate = &start
	if _, err := f.budgets.Create(ctx, "user-1", monthlyFun); err != nil {
		t.Fatalf("Create(fun) error = %v", err)
	}

	in := expenseInput(a.ID, fun.ID, 9000)
	in.Date = time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	if _, err := f.ledger.Create(ctx, "user-1", in); err != nil {
		t.Fatalf("ledger.Create() error = %v", err)
	}

	overview, err := f.budgets.Overview(ctx, "user-1")
	if err != nil {
		t.Fatalf("Overview() error = %v", err)
	}
	if len(overview) != 3 {
		t.Fatalf("Overview() len = %d, want 3", len(overview))
	}
	if overview[0].Budget.CategoryID != food.ID {
		t.Errorf("overview[0] = %s, want the expired weekly budget first", overview[0].Budget.Name)
	}
	if overview[1].Budget.CategoryID != fun.ID {
		t.Errorf("overview[1] category = %s, want the hotter monthly budget", overview[1].Budget.CategoryID)
	}
	if overview[2].Budget.CategoryID != rent.ID {
		t.Errorf("overview[2] category = %s, want the colder monthly budget", overview[2].Budget.CategoryID)
	}
}

func TestBudget_ProgressCacheInvalidatedByLedgerWrite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.seedAccount(t, "user-1", 100000)
	food := f.seedCategory(t, "user-1", "Food", core.Expense)

	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	in := budgetInput(food.ID, 10000)
	in.StartDate = &start
	b, err := f.budgets.Create(ctx, "user-1", in)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Warm the cache.
	p, err := f.budgets.Progress(ctx, "user-1", b.ID)
	if err != nil {
		t.Fatalf("Progress() error = %v", err)
	}
	if p.SpentCents != 0 {
		t.Fatalf("SpentCents = %d, want 0", p.SpentCents)
	}

	// The write must drop the cached progress.
	if _, err := f.ledger.Create(ctx, "user-1", expenseInput(a.ID, food.ID, 2500)); err != nil {
		t.Fatalf("ledger.Create() error = %v", err)
	}
	p, err = f.budgets.Progress(ctx, "user-1", b.ID)
	if err != nil {
		t.Fatalf("Progress() error = %v", err)
	}
	if p.SpentCents != 2500 {
		t.Errorf("SpentCents after write = %d, want 2500, stale cache served", p.SpentCents)
	}
}
