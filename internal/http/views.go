package http

import (
	"time"

	"finbook/internal/core"
	"finbook/internal/services"
)

// Views render domain values for JSON responses. Amounts leave the API as
// two-decimal floats; cents stay internal.

type accountView struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Balance  float64 `json:"balance"`
	Currency string  `json:"currency"`
	Active   bool    `json:"active"`
}

func toAccountView(a core.Account) accountView {
	return accountView{
		ID:       a.ID,
		Name:     a.Name,
		Type:     string(a.Type),
		Balance:  a.Balance.Units(),
		Currency: a.Currency,
		Active:   a.Active,
	}
}

type transactionView struct {
	ID          string  `json:"id"`
	AccountID   string  `json:"accountId"`
	CategoryID  string  `json:"categoryId"`
	Type        string  `json:"type"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
	Notes       string  `json:"notes,omitempty"`
	Recurring   bool    `json:"recurring"`
}

func toTransactionView(t core.Transaction) transactionView {
	return transactionView{
		ID:          t.ID,
		AccountID:   t.AccountID,
		CategoryID:  t.CategoryID,
		Type:        string(t.Type),
		Amount:      t.Amount.Units(),
		Description: t.Description,
		Date:        t.Date.UTC().Format(time.RFC3339),
		Notes:       t.Notes,
		Recurring:   t.Recurring,
	}
}

type categoryView struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Icon    string `json:"icon,omitempty"`
	Color   string `json:"color,omitempty"`
	Default bool   `json:"default"`
}

func toCategoryView(c core.Category) categoryView {
	return categoryView{
		ID:      c.ID,
		Name:    c.Name,
		Type:    string(c.Type),
		Icon:    c.Icon,
		Color:   c.Color,
		Default: c.UserID == "",
	}
}

type budgetView struct {
	ID             string  `json:"id"`
	CategoryID     string  `json:"categoryId"`
	Name           string  `json:"name"`
	Amount         float64 `json:"amount"`
	Period         string  `json:"period"`
	StartDate      string  `json:"startDate"`
	EndDate        string  `json:"endDate"`
	AlertThreshold int     `json:"alertThreshold"`
	Active         bool    `json:"active"`
}

func toBudgetView(b core.Budget) budgetView {
	return budgetView{
		ID:             b.ID,
		CategoryID:     b.CategoryID,
		Name:           b.Name,
		Amount:         b.Amount.Units(),
		Period:         string(b.Period),
		StartDate:      b.StartDate.UTC().Format("2006-01-02"),
		EndDate:        b.EndDate.UTC().Format("2006-01-02"),
		AlertThreshold: b.AlertThreshold,
		Active:         b.Active,
	}
}

type budgetProgressView struct {
	Budget         budgetView `json:"budget"`
	Spent          float64    `json:"spent"`
	Remaining      float64    `json:"remaining"`
	PercentageUsed float64    `json:"percentageUsed"`
	IsOverBudget   bool       `json:"isOverBudget"`
	ShouldAlert    bool       `json:"shouldAlert"`
	DaysRemaining  int        `json:"daysRemaining"`
}

func toBudgetProgressView(p services.BudgetProgress) budgetProgressView {
	return budgetProgressView{
		Budget:         toBudgetView(p.Budget),
		Spent:          core.CentsToUnits(p.SpentCents),
		Remaining:      core.CentsToUnits(p.RemainingCents),
		PercentageUsed: p.PercentageUsed,
		IsOverBudget:   p.IsOverBudget,
		ShouldAlert:    p.ShouldAlert,
		DaysRemaining:  p.DaysRemaining,
	}
}

type listResponse[T any] struct {
	Items  []T `json:"items"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

type windowView struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

func toWindowView(w core.Window) windowView {
	return windowView{
		StartDate: core.DayKey(w.Start),
		EndDate:   core.DayKey(w.End),
	}
}

type overviewView struct {
	Window           windowView          `json:"window"`
	TotalIncome      float64             `json:"totalIncome"`
	TotalExpenses    float64             `json:"totalExpenses"`
	Net              float64             `json:"net"`
	TotalBalance     float64             `json:"totalBalance"`
	SavingsRate      float64             `json:"savingsRate"`
	TransactionCount int                 `json:"transactionCount"`
	AvgDailyExpense  float64             `json:"avgDailyExpense"`
	TopCategories    []categorySliceView `json:"topCategories"`
	Recent           []transactionView   `json:"recentTransactions"`
}

func toOverviewView(o services.Overview) overviewView {
	return overviewView{
		Window:           toWindowView(o.Window),
		TotalIncome:      core.CentsToUnits(o.TotalIncomeCents),
		TotalExpenses:    core.CentsToUnits(o.TotalExpenseCents),
		Net:              core.CentsToUnits(o.NetCents),
		TotalBalance:     core.CentsToUnits(o.TotalBalanceCents),
		SavingsRate:      o.SavingsRate,
		TransactionCount: o.TransactionCount,
		AvgDailyExpense:  o.AvgDailyExpense,
		TopCategories:    toCategorySliceViews(o.TopCategories),
		Recent:           toTransactionViews(o.Recent),
	}
}

type categorySliceView struct {
	CategoryID string  `json:"categoryId"`
	Name       string  `json:"name"`
	Icon       string  `json:"icon,omitempty"`
	Color      string  `json:"color,omitempty"`
	Total      float64 `json:"total"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

func toCategorySliceViews(slices []services.CategorySlice) []categorySliceView {
	views := make([]categorySliceView, 0, len(slices))
	for _, s := range slices {
		views = append(views, categorySliceView{
			CategoryID: s.CategoryID,
			Name:       s.Name,
			Icon:       s.Icon,
			Color:      s.Color,
			Total:      core.CentsToUnits(s.TotalCents),
			Count:      s.Count,
			Percentage: s.Percentage,
		})
	}
	return views
}

type dailyView struct {
	Date  string  `json:"date"`
	Total float64 `json:"total"`
	Count int     `json:"count"`
}

type flowReportView struct {
	Window         windowView          `json:"window"`
	Total          float64             `json:"total"`
	Count          int                 `json:"count"`
	AveragePerDay  float64             `json:"averagePerDay"`
	AvgTransaction float64             `json:"avgTransactionAmount"`
	ByCategory     []categorySliceView `json:"byCategory"`
	Daily          []dailyView         `json:"daily"`
	Largest        *transactionView    `json:"largest,omitempty"`
}

func toFlowReportView(r services.FlowReport) flowReportView {
	daily := make([]dailyView, 0, len(r.Daily))
	for _, d := range r.Daily {
		daily = append(daily, dailyView{Date: d.Day, Total: core.CentsToUnits(d.TotalCents), Count: d.Count})
	}
	v := flowReportView{
		Window:         toWindowView(r.Window),
		Total:          core.CentsToUnits(r.TotalCents),
		Count:          r.Count,
		AveragePerDay:  r.AveragePerDay,
		AvgTransaction: r.AvgTransaction,
		ByCategory:     toCategorySliceViews(r.ByCategory),
		Daily:          daily,
	}
	if r.Largest != nil {
		largest := toTransactionView(*r.Largest)
		v.Largest = &largest
	}
	return v
}

type trendPointView struct {
	Label    string  `json:"label"`
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Net      float64 `json:"net"`
}

func toTrendPointViews(points []services.TrendPoint) []trendPointView {
	views := make([]trendPointView, 0, len(points))
	for _, p := range points {
		views = append(views, trendPointView{
			Label:    p.Label,
			Income:   core.CentsToUnits(p.IncomeCents),
			Expenses: core.CentsToUnits(p.ExpenseCents),
			Net:      core.CentsToUnits(p.NetCents),
		})
	}
	return views
}

type periodTotalsView struct {
	Label    string     `json:"label"`
	Window   windowView `json:"window"`
	Income   float64    `json:"income"`
	Expenses float64    `json:"expenses"`
	Net      float64    `json:"net"`
}

type comparisonView struct {
	Current             periodTotalsView `json:"current"`
	Previous            periodTotalsView `json:"previous"`
	IncomeChange        float64          `json:"incomeChange"`
	ExpenseChange       float64          `json:"expenseChange"`
	NetChange           float64          `json:"netChange"`
	IncomeChangeAmount  float64          `json:"incomeChangeAmount"`
	ExpenseChangeAmount float64          `json:"expensesChangeAmount"`
	NetChangeAmount     float64          `json:"netChangeAmount"`
}

func toComparisonView(c services.Comparison) comparisonView {
	side := func(p services.PeriodTotals) periodTotalsView {
		return periodTotalsView{
			Label:    p.Label,
			Window:   toWindowView(p.Window),
			Income:   core.CentsToUnits(p.IncomeCents),
			Expenses: core.CentsToUnits(p.ExpenseCents),
			Net:      core.CentsToUnits(p.NetCents),
		}
	}
	return comparisonView{
		Current:             side(c.Current),
		Previous:            side(c.Previous),
		IncomeChange:        c.IncomeChangePct,
		ExpenseChange:       c.ExpenseChangePct,
		NetChange:           c.NetChangePct,
		IncomeChangeAmount:  core.CentsToUnits(c.IncomeChangeCents),
		ExpenseChangeAmount: core.CentsToUnits(c.ExpenseChangeCents),
		NetChangeAmount:     core.CentsToUnits(c.NetChangeCents),
	}
}

func toTransactionViews(transactions []core.Transaction) []transactionView {
	views := make([]transactionView, 0, len(transactions))
	for _, t := range transactions {
		views = append(views, toTransactionView(t))
	}
	return views
}

func toAccountViews(accounts []core.Account) []accountView {
	views := make([]accountView, 0, len(accounts))
	for _, a := range accounts {
		views = append(views, toAccountView(a))
	}
	return views
}

func toBudgetViews(budgets []core.Budget) []budgetView {
	views := make([]budgetView, 0, len(budgets))
	for _, b := range budgets {
		views = append(views, toBudgetView(b))
	}
	return views
}
