package backend

import (
	"context"
	"fmt"
	"time"

	"financas/internal/docstore/firestore"
	"financas/internal/docstore/memory"
	"financas/internal/docstore/mongo"
	"financas/internal/log"
	"financas/internal/storage"
	"financas/internal/storage/postgres"
)

type DefaultFactory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentBackend)}
}

func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case MemoryBackend:
		return f.createMemoryBackend(config), nil
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case PostgresBackend:
		return f.createPostgresBackend(config)
	case MongoBackend:
		return f.createMongoBackend(ctx, config)
	case FirestoreBackend:
		return f.createFirestoreBackend(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createMemoryBackend(config Config) *BackendResult {
	if config.SeedDirectory == "" {
		f.logger.Info("Initialized memory backend")
		return &BackendResult{Store: memory.New()}
	}
	f.logger.Info("Initialized memory backend", "seed_directory", config.SeedDirectory)
	return &BackendResult{Store: memory.NewFromFiles(config.SeedDirectory)}
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}
	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	return &BackendResult{Store: repo, Cleanup: repo.Close}, nil
}

func (f *DefaultFactory) createPostgresBackend(config Config) (*BackendResult, error) {
	repo, err := postgres.Open(config.PostgresDSN, config.PostgresDebug)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Postgres repository: %w", err)
	}
	f.logger.Info("Initialized Postgres backend")
	return &BackendResult{Store: repo, Cleanup: repo.Close}, nil
}

func (f *DefaultFactory) createMongoBackend(ctx context.Context, config Config) (*BackendResult, error) {
	store, err := mongo.Connect(ctx, config.MongoURI, config.MongoDatabase)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Mongo store: %w", err)
	}
	f.logger.Info("Initialized Mongo backend", "database", config.MongoDatabase)
	return &BackendResult{
		Store: store,
		Cleanup: func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return store.Close(ctx)
		},
	}, nil
}

func (f *DefaultFactory) createFirestoreBackend(ctx context.Context, config Config) (*BackendResult, error) {
	store, err := firestore.New(ctx, firestore.Config{
		ProjectID:       config.FirestoreProjectID,
		Database:        config.FirestoreDatabase,
		CredentialsFile: config.FirestoreCredentialsFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firestore store: %w", err)
	}
	f.logger.Info("Initialized Firestore backend", "project", config.FirestoreProjectID)
	return &BackendResult{Store: store, Cleanup: store.Close}, nil
}
