package backend

import (
	"context"
	"slices"

	"financas/internal/docstore"
)

// CleanupFunc releases whatever the backend holds open.
type CleanupFunc func() error

// Pinger is implemented by stores that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// BackendResult is an opened store with its optional cleanup.
type BackendResult struct {
	Store   docstore.Store
	Cleanup CleanupFunc
}

// Ping checks the store when it supports it; other stores are always ready.
func (r *BackendResult) Ping(ctx context.Context) error {
	if p, ok := r.Store.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Close runs the cleanup, if any.
func (r *BackendResult) Close() error {
	if r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

type Config struct {
	Type BackendType

	// memory
	SeedDirectory string

	// sqlite
	SQLiteDBPath string

	// postgres
	PostgresDSN   string
	PostgresDebug bool

	// mongo
	MongoURI      string
	MongoDatabase string

	// firestore
	FirestoreProjectID       string
	FirestoreDatabase        string
	FirestoreCredentialsFile string
}

type BackendType string

const (
	MemoryBackend    BackendType = "memory"
	SQLiteBackend    BackendType = "sqlite"
	PostgresBackend  BackendType = "postgres"
	MongoBackend     BackendType = "mongo"
	FirestoreBackend BackendType = "firestore"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	return slices.Contains(GetBackendTypes(), bt)
}
