// Package http exposes the bookkeeping API over JSON.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"finbook/internal/middleware/ratelimit"
	"finbook/internal/middleware/trace"
	"finbook/internal/services"
	"finbook/internal/storage"
)

// Server wraps the HTTP server with the service wiring and shared
// middleware state.
type Server struct {
	http.Server

	repo      *storage.Repository
	ledger    *services.LedgerService
	accounts  *services.AccountService
	budgets   *services.BudgetService
	analytics *services.AnalyticsService

	limiter *ratelimit.Limiter
	tracer  *trace.Middleware
}

// NewServer configures routes and middleware, returning a ready-to-run
// server.
func NewServer(addr string, repo *storage.Repository, ledger *services.LedgerService, accounts *services.AccountService, budgets *services.BudgetService, analytics *services.AnalyticsService) *Server {
	s := &Server{
		Server: http.Server{
			Addr:         addr,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		repo:      repo,
		ledger:    ledger,
		accounts:  accounts,
		budgets:   budgets,
		analytics: analytics,
		limiter:   ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		tracer:    trace.NewMiddleware(),
	}
	s.Handler = s.routes()
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(s.tracer.Middleware)
	r.Use(s.limiter.Middleware(callerKey, nil))

	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(requireUser)

		api.Route("/accounts", func(r chi.Router) {
			r.Get("/", s.handleListAccounts)
			r.Post("/", s.handleCreateAccount)
			r.Get("/balance", s.handleTotalBalance)
			r.Get("/{id}", s.handleGetAccount)
			r.Put("/{id}", s.handleUpdateAccount)
			r.Delete("/{id}", s.handleDeleteAccount)
			r.Post("/{id}/recalculate", s.handleRecalculateBalance)
		})

		api.Get("/categories", s.handleListCategories)

		api.Route("/transactions", func(r chi.Router) {
			r.Get("/", s.handleListTransactions)
			r.Post("/", s.handleCreateTransaction)
			r.Post("/bulk", s.handleBulkCreateTransactions)
			r.Get("/{id}", s.handleGetTransaction)
			r.Put("/{id}", s.handleUpdateTransaction)
			r.Delete("/{id}", s.handleDeleteTransaction)
		})

		api.Route("/budgets", func(r chi.Router) {
			r.Get("/", s.handleListBudgets)
			r.Post("/", s.handleCreateBudget)
			r.Get("/overview", s.handleBudgetOverview)
			r.Get("/{id}", s.handleGetBudget)
			r.Put("/{id}", s.handleUpdateBudget)
			r.Delete("/{id}", s.handleDeactivateBudget)
			r.Get("/{id}/progress", s.handleBudgetProgress)
		})

		api.Route("/analytics", func(r chi.Router) {
			r.Get("/overview", s.handleAnalyticsOverview)
			r.Get("/spending", s.handleAnalyticsSpending)
			r.Get("/income", s.handleAnalyticsIncome)
			r.Get("/categories", s.handleAnalyticsCategories)
			r.Get("/trends", s.handleAnalyticsTrends)
			r.Get("/comparison", s.handleAnalyticsComparison)
		})
	})

	return r
}

// callerKey rate-limits per user when identified, per address otherwise.
func callerKey(r *http.Request) string {
	if id := r.Header.Get(userIDHeader); id != "" {
		return id
	}
	return r.RemoteAddr
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.repo.DB().PingContext(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// Shutdown stops the middleware goroutines and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	return s.Server.Shutdown(ctx)
}
