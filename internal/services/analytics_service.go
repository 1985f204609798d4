package services

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"finbook/internal/cache"
	"finbook/internal/core"
	"finbook/internal/storage"
)

// Overview aggregates a user's window into headline figures plus the
// window's top expense categories and latest transactions.
type Overview struct {
	Window            core.Window
	TotalIncomeCents  int64
	TotalExpenseCents int64
	NetCents          int64
	TotalBalanceCents int64
	SavingsRate       float64
	TransactionCount  int
	AvgDailyExpense   float64
	TopCategories     []CategorySlice
	Recent            []core.Transaction
}

// CategorySlice is one category's share of a typed total.
type CategorySlice struct {
	CategoryID string
	Name       string
	Icon       string
	Color      string
	TotalCents int64
	Count      int
	Percentage float64
}

// FlowReport breaks one transaction type down over a window. The same
// shape serves spending and income.
type FlowReport struct {
	Window         core.Window
	TotalCents     int64
	Count          int
	AveragePerDay  float64
	AvgTransaction float64
	ByCategory     []CategorySlice
	Daily          []storage.DailyAgg
	Largest        *core.Transaction
}

// TrendPoint is one interval of a trend series.
type TrendPoint struct {
	Label        string
	Window       core.Window
	IncomeCents  int64
	ExpenseCents int64
	NetCents     int64
}

// PeriodTotals are the typed totals of one comparison side.
type PeriodTotals struct {
	Label        string
	Window       core.Window
	IncomeCents  int64
	ExpenseCents int64
	NetCents     int64
}

// Comparison sets the current period against the previous one, carrying
// both relative and absolute deltas.
type Comparison struct {
	Current            PeriodTotals
	Previous           PeriodTotals
	IncomeChangePct    float64
	ExpenseChangePct   float64
	NetChangePct       float64
	IncomeChangeCents  int64
	ExpenseChangeCents int64
	NetChangeCents     int64
}

// AnalyticsService serves the derived read models. Sub-queries of one
// report run concurrently; results are cached per (operation, user,
// window) except trends, which always read fresh.
type AnalyticsService struct {
	repo  *storage.Repository
	cache cache.Cache[[]byte]
	now   func() time.Time
}

func NewAnalyticsService(repo *storage.Repository, c cache.Cache[[]byte]) *AnalyticsService {
	return &AnalyticsService{repo: repo, cache: c, now: time.Now}
}

// ResolveWindow turns a period selector into a concrete validated window.
func (s *AnalyticsService) ResolveWindow(period core.Period, custom *core.Window) (core.Window, error) {
	if period == core.PeriodCustom {
		if custom == nil {
			return core.Window{}, core.InvalidArgumentf("custom period requires start and end dates")
		}
		if err := custom.Validate(s.now()); err != nil {
			return core.Window{}, err
		}
		return *custom, nil
	}
	return core.WindowFor(period, s.now())
}

// Overview returns the user's headline figures for a window.
func (s *AnalyticsService) Overview(ctx context.Context, userID string, period core.Period, custom *core.Window) (Overview, error) {
	w, err := s.ResolveWindow(period, custom)
	if err != nil {
		return Overview{}, err
	}

	key := cache.Key(opAnalyticsOverview, userID, windowArgs(w)...)
	if o, ok := cacheLookup[Overview](s.cache, key); ok {
		return o, nil
	}

	q := s.repo.Queries()
	var income, expense storage.TypeSummary
	var count int
	var balance int64
	var byCategory []storage.CategoryAgg
	var recent []core.Transaction

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		income, err = q.SummarizeByType(gctx, userID, core.Income, w)
		return err
	})
	g.Go(func() (err error) {
		expense, err = q.SummarizeByType(gctx, userID, core.Expense, w)
		return err
	})
	g.Go(func() (err error) {
		count, err = q.CountInWindow(gctx, userID, w)
		return err
	})
	g.Go(func() (err error) {
		balance, err = q.SumBalances(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		byCategory, err = q.CategoryBreakdown(gctx, userID, core.Expense, w)
		return err
	})
	g.Go(func() (err error) {
		recent, err = q.RecentTransactions(gctx, userID, w, 10)
		return err
	})
	if err := g.Wait(); err != nil {
		return Overview{}, err
	}

	if len(byCategory) > 5 {
		byCategory = byCategory[:5]
	}
	net := income.TotalCents - expense.TotalCents
	o := Overview{
		Window:            w,
		TotalIncomeCents:  income.TotalCents,
		TotalExpenseCents: expense.TotalCents,
		NetCents:          net,
		TotalBalanceCents: balance,
		SavingsRate:       savingsRate(income.TotalCents, net),
		TransactionCount:  count,
		AvgDailyExpense:   core.Round2(core.CentsToUnits(expense.TotalCents) / float64(w.Days())),
		TopCategories:     categorySlices(byCategory, expense.TotalCents),
		Recent:            recent,
	}
	cacheStore(ctx, s.cache, key, cache.Group(opAnalyticsOverview, userID), o)
	return o, nil
}

// Spending breaks the user's expenses down over a window.
func (s *AnalyticsService) Spending(ctx context.Context, userID string, period core.Period, custom *core.Window) (FlowReport, error) {
	return s.flowReport(ctx, userID, period, custom, core.Expense, opAnalyticsSpending)
}

// Income breaks the user's income down over a window.
func (s *AnalyticsService) Income(ctx context.Context, userID string, period core.Period, custom *core.Window) (FlowReport, error) {
	return s.flowReport(ctx, userID, period, custom, core.Income, opAnalyticsIncome)
}

func (s *AnalyticsService) flowReport(ctx context.Context, userID string, period core.Period, custom *core.Window, typ core.TransactionType, op string) (FlowReport, error) {
	w, err := s.ResolveWindow(period, custom)
	if err != nil {
		return FlowReport{}, err
	}

	key := cache.Key(op, userID, windowArgs(w)...)
	if r, ok := cacheLookup[FlowReport](s.cache, key); ok {
		return r, nil
	}

	q := s.repo.Queries()
	var summary storage.TypeSummary
	var byCategory []storage.CategoryAgg
	var daily []storage.DailyAgg
	var largest core.Transaction
	var hasLargest bool

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		summary, err = q.SummarizeByType(gctx, userID, typ, w)
		return err
	})
	g.Go(func() (err error) {
		byCategory, err = q.CategoryBreakdown(gctx, userID, typ, w)
		return err
	})
	g.Go(func() (err error) {
		daily, err = q.DailyBreakdown(gctx, userID, typ, w)
		return err
	})
	g.Go(func() (err error) {
		largest, hasLargest, err = q.LargestByType(gctx, userID, typ, w)
		return err
	})
	if err := g.Wait(); err != nil {
		return FlowReport{}, err
	}

	r := FlowReport{
		Window:         w,
		TotalCents:     summary.TotalCents,
		Count:          summary.Count,
		AveragePerDay:  core.Round2(core.CentsToUnits(summary.TotalCents) / float64(w.Days())),
		AvgTransaction: avgTransaction(summary),
		ByCategory:     categorySlices(byCategory, summary.TotalCents),
		Daily:          daily,
	}
	if hasLargest {
		r.Largest = &largest
	}
	cacheStore(ctx, s.cache, key, cache.Group(op, userID), r)
	return r, nil
}

// CategoriesDistribution returns each expense category's share of the
// window's total spending.
func (s *AnalyticsService) CategoriesDistribution(ctx context.Context, userID string, period core.Period, custom *core.Window) ([]CategorySlice, error) {
	w, err := s.ResolveWindow(period, custom)
	if err != nil {
		return nil, err
	}

	key := cache.Key(opAnalyticsCategories, userID, windowArgs(w)...)
	if slices, ok := cacheLookup[[]CategorySlice](s.cache, key); ok {
		return slices, nil
	}

	byCategory, err := s.repo.Queries().CategoryBreakdown(ctx, userID, core.Expense, w)
	if err != nil {
		return nil, err
	}
	var total int64
	for _, a := range byCategory {
		total += a.TotalCents
	}

	slices := categorySlices(byCategory, total)
	cacheStore(ctx, s.cache, key, cache.Group(opAnalyticsCategories, userID), slices)
	return slices, nil
}

// Trends returns income and expense totals for the last n intervals of
// the period, oldest first. Trends are never cached: the window set
// shifts with the clock, so entries would rarely be reused before a write
// invalidates them anyway.
func (s *AnalyticsService) Trends(ctx context.Context, userID string, period core.Period, intervals int) ([]TrendPoint, error) {
	if period == core.PeriodCustom {
		return nil, core.InvalidArgumentf("trends require a week, month, or year period")
	}
	if intervals == 0 {
		intervals = 6
	}
	if intervals < 2 || intervals > 24 {
		return nil, core.InvalidArgumentf("trends require between 2 and 24 intervals, got %d", intervals)
	}

	now := s.now()
	q := s.repo.Queries()
	points := make([]TrendPoint, intervals)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < intervals; i++ {
		ago := intervals - 1 - i
		w, label, err := core.IntervalWindow(period, now, ago)
		if err != nil {
			return nil, err
		}
		idx := i
		g.Go(func() error {
			income, err := q.SummarizeByType(gctx, userID, core.Income, w)
			if err != nil {
				return err
			}
			expense, err := q.SummarizeByType(gctx, userID, core.Expense, w)
			if err != nil {
				return err
			}
			points[idx] = TrendPoint{
				Label:        label,
				Window:       w,
				IncomeCents:  income.TotalCents,
				ExpenseCents: expense.TotalCents,
				NetCents:     income.TotalCents - expense.TotalCents,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return points, nil
}

// Comparison sets two windows' totals against each other. Explicit window
// pairs compare arbitrary ranges; without them the period selector
// compares the current interval against the one before it.
func (s *AnalyticsService) Comparison(ctx context.Context, userID string, period core.Period, currentW, previousW *core.Window) (Comparison, error) {
	now := s.now()
	var current, previous PeriodTotals

	switch {
	case currentW != nil || previousW != nil:
		if currentW == nil || previousW == nil {
			return Comparison{}, core.InvalidArgumentf("comparison requires both a current and a previous window")
		}
		if err := currentW.Validate(now); err != nil {
			return Comparison{}, err
		}
		if err := previousW.Validate(now); err != nil {
			return Comparison{}, err
		}
		current = PeriodTotals{Label: windowLabel(*currentW), Window: *currentW}
		previous = PeriodTotals{Label: windowLabel(*previousW), Window: *previousW}
	case period == core.PeriodCustom:
		return Comparison{}, core.InvalidArgumentf("custom comparison requires explicit current and previous windows")
	default:
		currentWindow, currentLabel, err := core.IntervalWindow(period, now, 0)
		if err != nil {
			return Comparison{}, err
		}
		previousWindow, previousLabel, err := core.IntervalWindow(period, now, 1)
		if err != nil {
			return Comparison{}, err
		}
		current = PeriodTotals{Label: currentLabel, Window: currentWindow}
		previous = PeriodTotals{Label: previousLabel, Window: previousWindow}
	}

	key := cache.Key(opAnalyticsComparison, userID,
		append(windowArgs(current.Window), windowArgs(previous.Window)...)...)
	if c, ok := cacheLookup[Comparison](s.cache, key); ok {
		return c, nil
	}

	q := s.repo.Queries()

	g, gctx := errgroup.WithContext(ctx)
	for _, side := range []*PeriodTotals{&current, &previous} {
		side := side
		g.Go(func() error {
			income, err := q.SummarizeByType(gctx, userID, core.Income, side.Window)
			if err != nil {
				return err
			}
			expense, err := q.SummarizeByType(gctx, userID, core.Expense, side.Window)
			if err != nil {
				return err
			}
			side.IncomeCents = income.TotalCents
			side.ExpenseCents = expense.TotalCents
			side.NetCents = income.TotalCents - expense.TotalCents
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Comparison{}, err
	}

	c := Comparison{
		Current:            current,
		Previous:           previous,
		IncomeChangePct:    percentChange(current.IncomeCents, previous.IncomeCents),
		ExpenseChangePct:   percentChange(current.ExpenseCents, previous.ExpenseCents),
		NetChangePct:       percentChange(current.NetCents, previous.NetCents),
		IncomeChangeCents:  current.IncomeCents - previous.IncomeCents,
		ExpenseChangeCents: current.ExpenseCents - previous.ExpenseCents,
		NetChangeCents:     current.NetCents - previous.NetCents,
	}
	cacheStore(ctx, s.cache, key, cache.Group(opAnalyticsComparison, userID), c)
	return c, nil
}

func categorySlices(aggs []storage.CategoryAgg, total int64) []CategorySlice {
	slices := make([]CategorySlice, 0, len(aggs))
	for _, a := range aggs {
		slices = append(slices, CategorySlice{
			CategoryID: a.CategoryID,
			Name:       a.Name,
			Icon:       a.Icon,
			Color:      a.Color,
			TotalCents: a.TotalCents,
			Count:      a.Count,
			Percentage: core.Round2(core.Percentage(a.TotalCents, total)),
		})
	}
	return slices
}

// avgTransaction is the mean amount per transaction, zero for an empty
// summary.
func avgTransaction(s storage.TypeSummary) float64 {
	if s.Count == 0 {
		return 0
	}
	return core.Round2(core.CentsToUnits(s.TotalCents) / float64(s.Count))
}

// savingsRate is the net share of income. Zero income yields zero, not a
// division error.
func savingsRate(incomeCents, netCents int64) float64 {
	if incomeCents == 0 {
		return 0
	}
	return core.Round2(float64(netCents) / float64(incomeCents) * 100)
}

// percentChange follows the zero-baseline rule: growth from nothing is
// reported as a flat 100 percent.
func percentChange(current, previous int64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return core.Round2(float64(current-previous) / float64(previous) * 100)
}

func windowArgs(w core.Window) []string {
	return []string{w.Start.UTC().Format(time.RFC3339), w.End.UTC().Format(time.RFC3339)}
}

func windowLabel(w core.Window) string {
	return core.DayKey(w.Start) + " to " + core.DayKey(w.End)
}
