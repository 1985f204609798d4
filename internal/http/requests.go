package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"finbook/internal/core"
	"finbook/internal/services"
	"finbook/internal/storage"
)

// userIDHeader identifies the caller. Authentication itself lives at the
// gateway; the backend trusts the header.
const userIDHeader = "X-User-ID"

type userKey struct{}

// requireUser rejects requests without a caller identity and parks the
// user ID in the request context for handlers.
func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(userIDHeader)
		if id == "" {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing " + userIDHeader + " header"})
			return
		}
		ctx := context.WithValue(r.Context(), userKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestUser(r *http.Request) string {
	id, _ := r.Context().Value(userKey{}).(string)
	return id
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return core.InvalidArgumentf("invalid request body: %v", err)
	}
	return nil
}

// parseAmount accepts decimal strings like "12.34" or "12,34".
func parseAmount(s string) (core.Money, error) {
	cents, err := core.ParseDecimalToCents(s)
	if err != nil {
		return core.Money{}, err
	}
	return core.Money{Cents: cents}, nil
}

// parseDate accepts RFC 3339 timestamps or plain dates.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Time{}, core.InvalidArgumentf("invalid date %q, want RFC 3339 or YYYY-MM-DD", s)
}

type transactionRequest struct {
	AccountID   string `json:"accountId"`
	CategoryID  string `json:"categoryId"`
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Notes       string `json:"notes"`
	Recurring   bool   `json:"recurring"`
}

func (req transactionRequest) toInput() (services.TransactionInput, error) {
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return services.TransactionInput{}, err
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return services.TransactionInput{}, err
	}
	return services.TransactionInput{
		AccountID:   req.AccountID,
		CategoryID:  req.CategoryID,
		Type:        core.TransactionType(req.Type),
		Amount:      amount,
		Description: req.Description,
		Date:        date,
		Notes:       req.Notes,
		Recurring:   req.Recurring,
	}, nil
}

type accountRequest struct {
	Name           string `json:"name"`
	Type           string `json:"type"`
	Currency       string `json:"currency"`
	InitialBalance string `json:"initialBalance"`
}

func (req accountRequest) toInput() (services.AccountInput, error) {
	in := services.AccountInput{
		Name:     req.Name,
		Type:     core.AccountType(req.Type),
		Currency: req.Currency,
	}
	if req.InitialBalance != "" {
		balance, err := parseAmount(req.InitialBalance)
		if err != nil {
			return services.AccountInput{}, err
		}
		in.InitialBalance = balance
	}
	return in, nil
}

type budgetRequest struct {
	CategoryID     string `json:"categoryId"`
	Name           string `json:"name"`
	Amount         string `json:"amount"`
	Period         string `json:"period"`
	StartDate      string `json:"startDate"`
	AlertThreshold *int   `json:"alertThreshold"`
}

func (req budgetRequest) toInput() (services.BudgetInput, error) {
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return services.BudgetInput{}, err
	}
	in := services.BudgetInput{
		CategoryID:     req.CategoryID,
		Name:           req.Name,
		Amount:         amount,
		Period:         core.BudgetPeriod(req.Period),
		AlertThreshold: req.AlertThreshold,
	}
	if req.StartDate != "" {
		start, err := parseDate(req.StartDate)
		if err != nil {
			return services.BudgetInput{}, err
		}
		in.StartDate = &start
	}
	return in, nil
}

func parsePagination(r *http.Request) (limit, offset int) {
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	return limit, offset
}

func parseTransactionFilter(r *http.Request) (storage.TransactionFilter, error) {
	q := r.URL.Query()
	f := storage.TransactionFilter{
		AccountID:  q.Get("accountId"),
		CategoryID: q.Get("categoryId"),
		Type:       core.TransactionType(q.Get("type")),
		Search:     q.Get("search"),
	}
	if f.Type != "" && !f.Type.Valid() {
		return storage.TransactionFilter{}, core.InvalidArgumentf("invalid type %q", f.Type)
	}
	if s := q.Get("startDate"); s != "" {
		start, err := parseDate(s)
		if err != nil {
			return storage.TransactionFilter{}, err
		}
		f.Start = &start
	}
	if s := q.Get("endDate"); s != "" {
		end, err := parseDate(s)
		if err != nil {
			return storage.TransactionFilter{}, err
		}
		f.End = &end
	}
	f.Limit, f.Offset = parsePagination(r)
	return f, nil
}

func parseBudgetFilter(r *http.Request) (storage.BudgetFilter, error) {
	q := r.URL.Query()
	f := storage.BudgetFilter{
		CategoryID: q.Get("categoryId"),
		Period:     core.BudgetPeriod(q.Get("period")),
	}
	if f.Period != "" && !f.Period.Valid() {
		return storage.BudgetFilter{}, core.InvalidArgumentf("invalid period %q", f.Period)
	}
	if s := q.Get("active"); s != "" {
		active, err := strconv.ParseBool(s)
		if err != nil {
			return storage.BudgetFilter{}, core.InvalidArgumentf("invalid active flag %q", s)
		}
		f.Active = &active
	}
	f.Limit, f.Offset = parsePagination(r)
	return f, nil
}

// parseAnalyticsWindow reads the period selector and, for custom periods,
// the explicit window.
func parseAnalyticsWindow(r *http.Request) (core.Period, *core.Window, error) {
	q := r.URL.Query()
	period := core.Period(q.Get("period"))
	if period == "" {
		period = core.PeriodMonth
	}
	if !period.Valid() {
		return "", nil, core.InvalidArgumentf("invalid period %q", period)
	}
	if period != core.PeriodCustom {
		return period, nil, nil
	}

	startStr, endStr := q.Get("startDate"), q.Get("endDate")
	if startStr == "" || endStr == "" {
		return "", nil, core.InvalidArgumentf("custom period requires startDate and endDate")
	}
	w, err := parseWindow(startStr, endStr)
	if err != nil {
		return "", nil, err
	}
	return period, &w, nil
}

func parseWindow(startStr, endStr string) (core.Window, error) {
	start, err := parseDate(startStr)
	if err != nil {
		return core.Window{}, err
	}
	end, err := parseDate(endStr)
	if err != nil {
		return core.Window{}, err
	}
	// A plain end date means the whole day.
	if end.Hour() == 0 && end.Minute() == 0 && end.Second() == 0 {
		end = end.AddDate(0, 0, 1).Add(-time.Second)
	}
	return core.Window{Start: start, End: end}, nil
}

// parseComparisonWindows reads the explicit window pair for a comparison.
// All four bounds must be given together; none at all falls back to the
// period selector.
func parseComparisonWindows(r *http.Request) (current, previous *core.Window, err error) {
	q := r.URL.Query()
	parts := []string{q.Get("currentStart"), q.Get("currentEnd"), q.Get("previousStart"), q.Get("previousEnd")}
	provided := 0
	for _, p := range parts {
		if p != "" {
			provided++
		}
	}
	if provided == 0 {
		return nil, nil, nil
	}
	if provided != len(parts) {
		return nil, nil, core.InvalidArgumentf("explicit comparison requires currentStart, currentEnd, previousStart, and previousEnd")
	}
	cur, err := parseWindow(parts[0], parts[1])
	if err != nil {
		return nil, nil, err
	}
	prev, err := parseWindow(parts[2], parts[3])
	if err != nil {
		return nil, nil, err
	}
	return &cur, &prev, nil
}
