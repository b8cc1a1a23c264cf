package trace

import (
	"context"
	"net/http"
	"time"
	"unicode"

	"github.com/google/uuid"

	"financas/internal/log"
)

// HeaderRequestID is read from incoming requests and echoed on responses.
const HeaderRequestID = "X-Request-ID"

type ctxKey struct{}

// Middleware assigns each request an id, attaches a request-scoped logger to
// its context and logs its start and completion.
type Middleware struct {
	logger    *log.Logger
	extractIP func(*http.Request) string
}

func NewMiddleware(logger *log.Logger, extractIP func(*http.Request) string) *Middleware {
	if logger == nil {
		logger = log.Discard()
	}
	return &Middleware{
		logger:    logger.WithComponent(log.ComponentTrace),
		extractIP: extractIP,
	}
}

// Handler stores the request id, then lets the log middlewares attach a
// logger tagged with it before next runs.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	logged := log.Middleware(m.logger)(
		log.RequestIDMiddleware(func(r *http.Request) string { return RequestID(r.Context()) })(
			m.timed(next)))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(HeaderRequestID)
		if !validRequestID(requestID) {
			requestID = NewRequestID()
		}
		w.Header().Set(HeaderRequestID, requestID)

		logged.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, requestID)))
	})
}

// timed logs the start and completion of each request through the request
// logger.
func (m *Middleware) timed(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()
		events := log.NewStructuredLogger(log.FromContext(ctx))

		clientIP := ""
		if m.extractIP != nil {
			clientIP = m.extractIP(r)
		}
		events.LogHTTPStart(ctx, r, clientIP)

		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		events.LogHTTPEnd(ctx, r, rec.Status(), time.Since(start).Milliseconds(), clientIP)
	})
}

// NewRequestID returns a fresh request id.
func NewRequestID() string {
	return "req_" + uuid.NewString()
}

// RequestID returns the id stored by the middleware, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// validRequestID accepts short printable ids supplied by a proxy.
func validRequestID(id string) bool {
	if id == "" || len(id) > 128 {
		return false
	}
	for _, r := range id {
		if r > unicode.MaxASCII || !unicode.IsPrint(r) || r == ' ' {
			return false
		}
	}
	return true
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rw *statusRecorder) WriteHeader(code int) {
	if rw.status == 0 {
		rw.status = code
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	if rw.status == 0 {
		rw.status = http.StatusOK
	}
	return rw.ResponseWriter.Write(b)
}

func (rw *statusRecorder) Status() int {
	if rw.status == 0 {
		return http.StatusOK
	}
	return rw.status
}

func (rw *statusRecorder) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
