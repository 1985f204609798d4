package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	b, err := s.budgets.Create(r.Context(), requestUser(r), in)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBudgetView(b))
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	f, err := parseBudgetFilter(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	budgets, total, err := s.budgets.List(r.Context(), requestUser(r), f)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[budgetView]{
		Items:  toBudgetViews(budgets),
		Total:  total,
		Limit:  f.Limit,
		Offset: f.Offset,
	})
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	b, err := s.budgets.Get(r.Context(), requestUser(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBudgetView(b))
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	b, err := s.budgets.Update(r.Context(), requestUser(r), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBudgetView(b))
}

// handleDeactivateBudget soft-deletes: the budget drops out of overlap
// checks and the overview but keeps its history.
func (s *Server) handleDeactivateBudget(w http.ResponseWriter, r *http.Request) {
	if err := s.budgets.Deactivate(r.Context(), requestUser(r), chi.URLParam(r, "id")); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleBudgetProgress(w http.ResponseWriter, r *http.Request) {
	p, err := s.budgets.Progress(r.Context(), requestUser(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBudgetProgressView(p))
}

func (s *Server) handleBudgetOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := s.budgets.Overview(r.Context(), requestUser(r))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	views := make([]budgetProgressView, 0, len(overview))
	for _, p := range overview {
		views = append(views, toBudgetProgressView(p))
	}
	writeJSON(w, http.StatusOK, views)
}
