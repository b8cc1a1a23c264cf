package http

import (
	"net/http"

	"financas/internal/core"
)

// Expenses are stored as sent; only the body shape is checked.
func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	raw, err := decodeFields(r)
	if err != nil {
		writeBodyError(w, r, err)
		return
	}

	doc, err := s.entries.Create(r.Context(), core.Expenses, raw)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, doc)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	docs, err := s.entries.List(r.Context(), core.Expenses, expenseFilter(r.URL.Query()))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, r, http.StatusOK, docs)
}
