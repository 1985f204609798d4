// Package services orchestrates ledger, budget, and analytics operations
// across SQLite, the read cache, and AMQP.
package services

import (
	"context"
	"log/slog"

	"finbook/internal/cache"
)

// Cached read operations. Every cacheable read registers its operation
// name here so the invalidator can enumerate them. Trend reads are served
// fresh and never appear.
const (
	opAnalyticsOverview   = "analytics:overview"
	opAnalyticsSpending   = "analytics:spending"
	opAnalyticsIncome     = "analytics:income"
	opAnalyticsCategories = "analytics:categories"
	opAnalyticsComparison = "analytics:comparison"

	opBudgetsOverview = "budgets:overview"
	opBudgetsProgress = "budgets:progress"
	opBudgetsList     = "budgets:list"

	opAccountsList    = "accounts:list"
	opAccountsBalance = "accounts:balance"
)

var (
	analyticsOps = []string{
		opAnalyticsOverview,
		opAnalyticsSpending,
		opAnalyticsIncome,
		opAnalyticsCategories,
		opAnalyticsComparison,
	}
	budgetOps  = []string{opBudgetsOverview, opBudgetsProgress, opBudgetsList}
	accountOps = []string{opAccountsList, opAccountsBalance}
)

// Invalidator drops cached reads after writes. All services share one
// byte-slice cache so a single coordinator can reach every group.
type Invalidator struct {
	cache cache.Cache[[]byte]
}

func NewInvalidator(c cache.Cache[[]byte]) *Invalidator {
	return &Invalidator{cache: c}
}

func (i *Invalidator) deleteOps(ctx context.Context, userID string, ops []string) {
	for _, op := range ops {
		group := cache.Group(op, userID)
		i.cache.DeleteGroup(group)
		slog.DebugContext(ctx, "Invalidated cache group", "group", group)
	}
}

// InvalidateAnalytics drops the user's cached analytics reads.
func (i *Invalidator) InvalidateAnalytics(ctx context.Context, userID string) {
	i.deleteOps(ctx, userID, analyticsOps)
}

// InvalidateBudgets drops the user's cached budget reads.
func (i *Invalidator) InvalidateBudgets(ctx context.Context, userID string) {
	i.deleteOps(ctx, userID, budgetOps)
}

// InvalidateAccounts drops the user's cached account reads.
func (i *Invalidator) InvalidateAccounts(ctx context.Context, userID string) {
	i.deleteOps(ctx, userID, accountOps)
}

// InvalidateTransactionRelated drops everything a ledger write can make
// stale: analytics, budget progress, and account balances.
func (i *Invalidator) InvalidateTransactionRelated(ctx context.Context, userID string) {
	i.InvalidateAnalytics(ctx, userID)
	i.InvalidateBudgets(ctx, userID)
	i.InvalidateAccounts(ctx, userID)
}
