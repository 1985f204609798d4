package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"finbook/internal/services"
)

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	t, err := s.ledger.Create(r.Context(), requestUser(r), in)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionView(t))
}

func (s *Server) handleBulkCreateTransactions(w http.ResponseWriter, r *http.Request) {
	var reqs []transactionRequest
	if err := decodeBody(r, &reqs); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	inputs := make([]services.TransactionInput, 0, len(reqs))
	for _, req := range reqs {
		in, err := req.toInput()
		if err != nil {
			writeError(r.Context(), w, err)
			return
		}
		inputs = append(inputs, in)
	}

	created, err := s.ledger.BulkCreate(r.Context(), requestUser(r), inputs)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"created": len(created),
		"items":   toTransactionViews(created),
	})
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	f, err := parseTransactionFilter(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	transactions, total, err := s.ledger.List(r.Context(), requestUser(r), f)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[transactionView]{
		Items:  toTransactionViews(transactions),
		Total:  total,
		Limit:  f.Limit,
		Offset: f.Offset,
	})
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	t, err := s.ledger.Get(r.Context(), requestUser(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionView(t))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	t, err := s.ledger.Update(r.Context(), requestUser(r), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionView(t))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.Delete(r.Context(), requestUser(r), chi.URLParam(r, "id")); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
