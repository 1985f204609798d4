package http

import (
	"net/http"
	"strconv"
)

func (s *Server) handleAnalyticsOverview(w http.ResponseWriter, r *http.Request) {
	period, window, err := parseAnalyticsWindow(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	o, err := s.analytics.Overview(r.Context(), requestUser(r), period, window)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOverviewView(o))
}

func (s *Server) handleAnalyticsSpending(w http.ResponseWriter, r *http.Request) {
	period, window, err := parseAnalyticsWindow(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	report, err := s.analytics.Spending(r.Context(), requestUser(r), period, window)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, toFlowReportView(report))
}

func (s *Server) handleAnalyticsIncome(w http.ResponseWriter, r *http.Request) {
	period, window, err := parseAnalyticsWindow(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	report, err := s.analytics.Income(r.Context(), requestUser(r), period, window)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, toFlowReportView(report))
}

func (s *Server) handleAnalyticsCategories(w http.ResponseWriter, r *http.Request) {
	period, window, err := parseAnalyticsWindow(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	slices, err := s.analytics.CategoriesDistribution(r.Context(), requestUser(r), period, window)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategorySliceViews(slices))
}

func (s *Server) handleAnalyticsTrends(w http.ResponseWriter, r *http.Request) {
	period, _, err := parseAnalyticsWindow(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	intervals, _ := strconv.Atoi(r.URL.Query().Get("intervals"))

	points, err := s.analytics.Trends(r.Context(), requestUser(r), period, intervals)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTrendPointViews(points))
}

func (s *Server) handleAnalyticsComparison(w http.ResponseWriter, r *http.Request) {
	period, _, err := parseAnalyticsWindow(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	current, previous, err := parseComparisonWindows(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	c, err := s.analytics.Comparison(r.Context(), requestUser(r), period, current, previous)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, toComparisonView(c))
}
