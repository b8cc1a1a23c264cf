package http

import (
	"context"
	"net/http"
	"time"

	"financas/internal/core"
	"financas/internal/log"
)

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			s.logger.WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
			writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContextOr(r.Context(), s.logger).WithComponent(log.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	writeJSON(w, r, http.StatusTooManyRequests, errorBody{Error: "rate limit exceeded, try again later"})
}

// handleUpdate merges the body into entry {id} of c and echoes the result.
func (s *Server) handleUpdate(c core.Collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		partial, err := decodeFields(r)
		if err != nil {
			writeBodyError(w, r, err)
			return
		}
		doc, err := s.entries.Update(r.Context(), c, r.PathValue("id"), partial)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, r, http.StatusOK, doc)
	}
}

func (s *Server) handleDelete(c core.Collection, confirmation string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.entries.Delete(r.Context(), c, r.PathValue("id")); err != nil {
			writeError(w, r, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, r, http.StatusOK, messageBody{Message: confirmation})
	}
}

// writeBodyError answers 400 for a body that could not be read as an object.
func writeBodyError(w http.ResponseWriter, r *http.Request, err error) {
	log.FromContext(r.Context()).WithComponent(log.ComponentHTTP).WarnContext(r.Context(), "Invalid request body",
		log.FieldOperation, log.OpParse,
		log.FieldError, err)
	writeError(w, r, http.StatusBadRequest, err)
}
