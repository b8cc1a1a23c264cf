package cli

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"financas/internal/config"
	"financas/internal/log"
)

type fakeServer struct {
	called bool
	err    error
}

func (f *fakeServer) Shutdown(ctx context.Context) error {
	f.called = true
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("shutdown context has no deadline")
	}
	return f.err
}

func TestGracefulShutdownOnContextEnd(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	srv := &fakeServer{}
	cleaned := false
	err := GracefulShutdown(ctx, log.Discard(), srv, time.Second, func() error {
		cleaned = true
		return nil
	})
	if err != nil {
		t.Fatalf("GracefulShutdown: %v", err)
	}
	if !srv.called || !cleaned {
		t.Fatalf("server called=%v cleanup called=%v", srv.called, cleaned)
	}
}

func TestGracefulShutdownJoinsErrors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	srvErr := errors.New("server stuck")
	cleanupErr := errors.New("db busy")
	err := GracefulShutdown(ctx, log.Discard(), &fakeServer{err: srvErr}, time.Second, func() error { return cleanupErr })
	if !errors.Is(err, srvErr) || !errors.Is(err, cleanupErr) {
		t.Fatalf("expected both errors, got %v", err)
	}
}

type listenFailure struct {
	fakeServer
	listenErr error
}

func (l *listenFailure) ListenAndServe() error { return l.listenErr }

type servingServer struct {
	fakeServer
	stop     chan struct{}
	stopOnce sync.Once
}

func (s *servingServer) ListenAndServe() error {
	<-s.stop
	return http.ErrServerClosed
}

func (s *servingServer) Shutdown(ctx context.Context) error {
	s.stopOnce.Do(func() { close(s.stop) })
	return s.fakeServer.Shutdown(ctx)
}

func TestRunServerReportsListenFailure(t *testing.T) {
	listenErr := errors.New("address already in use")
	srv := &listenFailure{listenErr: listenErr}
	cleaned := false

	err := RunServer(context.Background(), log.Discard(), srv, time.Second, func() error {
		cleaned = true
		return nil
	})
	if !errors.Is(err, listenErr) {
		t.Fatalf("expected listen error, got %v", err)
	}
	if !cleaned {
		t.Fatal("cleanup must run after a listen failure")
	}
}

func TestRunServerStopsOnContextEnd(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	srv := &servingServer{stop: make(chan struct{})}

	done := make(chan error, 1)
	go func() { done <- RunServer(ctx, log.Discard(), srv, time.Second, nil) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("RunServer: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("RunServer did not return")
	}
	if !srv.called {
		t.Fatal("server was not shut down")
	}
}

func TestSetupLoggerWritesToGivenWriter(t *testing.T) {
	var buf bytes.Buffer
	logger := SetupLogger("warn", &buf)
	logger.Info("dropped")
	logger.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") || !strings.Contains(out, "kept") {
		t.Fatalf("unexpected log output: %q", out)
	}
}

func TestOpenBackendMemory(t *testing.T) {
	cfg := &config.Config{DataBackend: "memory"}
	res, err := OpenBackend(context.Background(), log.Discard(), cfg)
	if err != nil {
		t.Fatalf("OpenBackend: %v", err)
	}
	if res.Store == nil {
		t.Fatal("nil store")
	}
}

func TestLoadAndValidateConfig(t *testing.T) {
	t.Setenv("DATA_BACKEND", "nope")
	if _, err := LoadAndValidateConfig(); err == nil {
		t.Fatal("expected validation error")
	}
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("PORT", "3000")
	t.Setenv("LOG_LEVEL", "info")
	t.Setenv("MEMORY_SEED_DIR", "")
	if _, err := LoadAndValidateConfig(); err != nil {
		t.Fatalf("LoadAndValidateConfig: %v", err)
	}
}
