package http

import (
	"net/http"
	"strings"

	"financas/internal/log"
)

func (s *Server) handleMonthly(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	year := strings.TrimSpace(q.Get("year"))
	month := strings.TrimSpace(q.Get("month"))

	report, err := s.reports.GenerateMonthlyReport(r.Context(), year, month)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Monthly report failed",
			log.FieldOperation, log.OpMonthly,
			log.FieldYear, year,
			log.FieldMonth, month,
			log.FieldError, err)
		writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, r, http.StatusOK, report)
}

func (s *Server) handleTotal(w http.ResponseWriter, r *http.Request) {
	totals, err := s.reports.ComputeTotals(r.Context())
	if err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Totals failed",
			log.FieldOperation, log.OpTotals,
			log.FieldError, err)
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, r, http.StatusOK, totals)
}
