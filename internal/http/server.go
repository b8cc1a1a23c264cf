package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"financas/internal/core"
	"financas/internal/log"
	"financas/internal/middleware/ratelimit"
	"financas/internal/middleware/security"
	"financas/internal/middleware/trace"
	"financas/internal/services"
)

// maxBodyBytes caps every request body.
const maxBodyBytes = 1 << 20

// ServerConfig holds the transport settings of the API server.
type ServerConfig struct {
	Addr               string
	Prefix             string
	RateLimitPerMinute int
	// Ready backs /readyz; nil means always ready.
	Ready  func(ctx context.Context) error
	Logger *log.Logger
}

type Server struct {
	http.Server
	entries *services.EntryService
	reports *services.ReportService
	ready   func(ctx context.Context) error
	limiter *ratelimit.Limiter
	logger  *log.Logger

	shutdownOnce sync.Once
}

// NewServer wires the routes and middleware into a ready-to-run http.Server.
func NewServer(cfg ServerConfig, entries *services.EntryService, reports *services.ReportService) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Discard()
	}

	s := &Server{
		entries: entries,
		reports: reports,
		ready:   cfg.Ready,
		limiter: ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimitPerMinute}),
		logger:  logger.WithComponent(log.ComponentHTTP),
	}

	mux := http.NewServeMux()
	s.routes(mux, cfg.Prefix)

	detector := security.NewDetector(logger)
	var handler http.Handler = mux
	handler = http.MaxBytesHandler(handler, maxBodyBytes)
	handler = s.limiter.Middleware(detector.ClientIP, s.handleRateLimited)(handler)
	handler = security.NewHeaders(security.DefaultHeadersConfig(), detector).Middleware(handler)
	handler = trace.NewMiddleware(logger, detector.ClientIP).Handler(handler)

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux, prefix string) {
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST "+prefix+"/income", s.handleCreateIncome)
	mux.HandleFunc("GET "+prefix+"/income", s.handleListIncomes)
	mux.HandleFunc("PUT "+prefix+"/income/{id}", s.handleUpdate(core.Incomes))
	mux.HandleFunc("DELETE "+prefix+"/income/{id}", s.handleDelete(core.Incomes, "Income deleted successfully"))

	mux.HandleFunc("POST "+prefix+"/expense", s.handleCreateExpense)
	mux.HandleFunc("GET "+prefix+"/expense", s.handleListExpenses)
	mux.HandleFunc("PUT "+prefix+"/expense/{id}", s.handleUpdate(core.Expenses))
	mux.HandleFunc("DELETE "+prefix+"/expense/{id}", s.handleDelete(core.Expenses, "Expense deleted successfully"))

	mux.HandleFunc("GET "+prefix+"/monthly", s.handleMonthly)
	mux.HandleFunc("GET "+prefix+"/total", s.handleTotal)
}

// Shutdown stops the rate limiter and then the HTTP server. Safe to call twice.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
