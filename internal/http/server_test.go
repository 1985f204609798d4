package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"finbook/internal/cache"
	"finbook/internal/services"
	"finbook/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	repo, err := storage.Open(filepath.Join(t.TempDir(), "finbook_test.db"))
	if err != nil {
		t.Fatalf("storage.Open() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	c := cache.NewLRUCache[[]byte](256, 5*time.Minute)
	inv := services.NewInvalidator(c)
	ledger := services.NewLedgerService(repo, inv, nil, 100, 30*time.Second)
	accounts := services.NewAccountService(repo, c, inv)
	budgets := services.NewBudgetService(repo, c, inv)
	analytics := services.NewAnalyticsService(repo, c)

	srv := NewServer(":0", repo, ledger, accounts, budgets, analytics)
	t.Cleanup(func() { srv.limiter.Stop() })
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path, user string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if user != "" {
		req.Header.Set(userIDHeader, user)
	}
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func createAccount(t *testing.T, srv *Server, user string) string {
	t.Helper()
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/accounts", user, map[string]string{
		"name":           "Checking",
		"type":           "bank",
		"initialBalance": "100.00",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create account status = %d, body = %s", rec.Code, rec.Body.String())
	}
	return decode[map[string]any](t, rec)["id"].(string)
}

func categoryOfType(t *testing.T, srv *Server, user, typ string) string {
	t.Helper()
	rec := doJSON(t, srv, http.MethodGet, "/api/v1/categories", user, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list categories status = %d", rec.Code)
	}
	categories := decode[[]map[string]any](t, rec)
	for _, c := range categories {
		if c["type"] == typ {
			return c["id"].(string)
		}
	}
	t.Fatalf("no default %s category seeded", typ)
	return ""
}

func TestServer_RequiresUserHeader(t *testing.T) {
	srv := newTestServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/api/v1/accounts", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestServer_HealthEndpoints(t *testing.T) {
	srv := newTestServer(t)
	if rec := doJSON(t, srv, http.MethodGet, "/healthz", "", nil); rec.Code != http.StatusOK {
		t.Errorf("/healthz status = %d, want 200", rec.Code)
	}
	if rec := doJSON(t, srv, http.MethodGet, "/readyz", "", nil); rec.Code != http.StatusOK {
		t.Errorf("/readyz status = %d, want 200", rec.Code)
	}
}

func TestServer_TransactionLifecycle(t *testing.T) {
	srv := newTestServer(t)
	account := createAccount(t, srv, "user-1")
	category := categoryOfType(t, srv, "user-1", "EXPENSE")

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/transactions", "user-1", map[string]any{
		"accountId":   account,
		"categoryId":  category,
		"type":        "EXPENSE",
		"amount":      "12.50",
		"description": "lunch",
		"date":        time.Now().UTC().AddDate(0, 0, -1).Format(time.RFC3339),
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create transaction status = %d, body = %s", rec.Code, rec.Body.String())
	}
	created := decode[map[string]any](t, rec)
	id := created["id"].(string)
	if created["amount"].(float64) != 12.5 {
		t.Errorf("amount = %v, want 12.5", created["amount"])
	}

	// The balance reflects the expense.
	rec = doJSON(t, srv, http.MethodGet, "/api/v1/accounts/"+account, "user-1", nil)
	if got := decode[map[string]any](t, rec)["balance"].(float64); got != 87.5 {
		t.Errorf("balance = %v, want 87.5", got)
	}

	// List sees it.
	rec = doJSON(t, srv, http.MethodGet, "/api/v1/transactions", "user-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	list := decode[map[string]any](t, rec)
	if list["total"].(float64) != 1 {
		t.Errorf("total = %v, want 1", list["total"])
	}

	// Another user cannot touch it.
	rec = doJSON(t, srv, http.MethodDelete, "/api/v1/transactions/"+id, "user-2", nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("foreign delete status = %d, want 403", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodDelete, "/api/v1/transactions/"+id, "user-1", nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", rec.Code)
	}
	rec = doJSON(t, srv, http.MethodGet, "/api/v1/transactions/"+id, "user-1", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", rec.Code)
	}
}

func TestServer_ValidationErrors(t *testing.T) {
	srv := newTestServer(t)
	account := createAccount(t, srv, "user-1")
	category := categoryOfType(t, srv, "user-1", "EXPENSE")

	base := map[string]any{
		"accountId":   account,
		"categoryId":  category,
		"type":        "EXPENSE",
		"amount":      "10.00",
		"description": "ok",
		"date":        time.Now().UTC().AddDate(0, 0, -1).Format(time.RFC3339),
	}
	tests := []struct {
		name  string
		key   string
		value any
	}{
		{"bad amount", "amount", "abc"},
		{"negative amount", "amount", "-5.00"},
		{"bad date", "date", "not-a-date"},
		{"bad type", "type", "TRANSFER"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := map[string]any{}
			for k, v := range base {
				body[k] = v
			}
			body[tt.key] = tt.value
			rec := doJSON(t, srv, http.MethodPost, "/api/v1/transactions", "user-1", body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400, body = %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestServer_BudgetConflict(t *testing.T) {
	srv := newTestServer(t)
	category := categoryOfType(t, srv, "user-1", "EXPENSE")

	body := map[string]any{
		"categoryId": category,
		"name":       "Groceries",
		"amount":     "400.00",
		"period":     "MONTHLY",
	}
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/budgets", "user-1", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create budget status = %d, body = %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, srv, http.MethodPost, "/api/v1/budgets", "user-1", body)
	if rec.Code != http.StatusConflict {
		t.Errorf("overlapping budget status = %d, want 409", rec.Code)
	}
}

func TestServer_AnalyticsOverview(t *testing.T) {
	srv := newTestServer(t)
	account := createAccount(t, srv, "user-1")
	category := categoryOfType(t, srv, "user-1", "INCOME")

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/transactions", "user-1", map[string]any{
		"accountId":   account,
		"categoryId":  category,
		"type":        "INCOME",
		"amount":      "2000.00",
		"description": "salary",
		"date":        time.Now().UTC().Format(time.RFC3339),
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create transaction status = %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/analytics/overview?period=month", "user-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("overview status = %d, body = %s", rec.Code, rec.Body.String())
	}
	overview := decode[map[string]any](t, rec)
	if overview["totalIncome"].(float64) != 2000 {
		t.Errorf("totalIncome = %v, want 2000", overview["totalIncome"])
	}
	for _, key := range []string{"avgDailyExpense", "topCategories", "recentTransactions"} {
		if _, ok := overview[key]; !ok {
			t.Errorf("overview response missing %q", key)
		}
	}
	recent, ok := overview["recentTransactions"].([]any)
	if !ok || len(recent) != 1 {
		t.Errorf("recentTransactions = %v, want the seeded salary", overview["recentTransactions"])
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/analytics/spending?period=month", "user-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("spending status = %d", rec.Code)
	}
	spending := decode[map[string]any](t, rec)
	if _, ok := spending["avgTransactionAmount"]; !ok {
		t.Error("spending response missing avgTransactionAmount")
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/analytics/overview?period=decade", "user-1", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad period status = %d, want 400", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet,
		fmt.Sprintf("/api/v1/analytics/overview?period=custom&startDate=%s&endDate=%s",
			"2026-03-10", "2026-03-01"), "user-1", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("inverted window status = %d, want 400", rec.Code)
	}
}
