package http

import (
	"net/http"

	"financas/internal/core"
)

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	raw, err := decodeFields(r)
	if err != nil {
		writeBodyError(w, r, err)
		return
	}

	doc, err := s.entries.CreateIncome(r.Context(), raw)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, doc)
}

func (s *Server) handleListIncomes(w http.ResponseWriter, r *http.Request) {
	docs, err := s.entries.List(r.Context(), core.Incomes, incomeFilter(r.URL.Query()))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, r, http.StatusOK, docs)
}
