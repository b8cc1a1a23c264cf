// Package firestore stores entries in Cloud Firestore. Each entry collection
// maps to a top-level Firestore collection of the same name.
package firestore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	gfs "cloud.google.com/go/firestore"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"financas/internal/core"
	"financas/internal/docstore"
)

const DefaultDatabase = "(default)"

var _ docstore.Store = (*Store)(nil)

var firestoreOps = map[core.Op]string{
	core.OpGTE: ">=",
	core.OpLTE: "<=",
	core.OpEQ:  "==",
}

type Config struct {
	ProjectID       string
	Database        string
	CredentialsFile string
}

type Store struct {
	client *gfs.Client
}

// New connects to the configured database. Without a credentials file the
// application default credentials are used; FIRESTORE_EMULATOR_HOST, when
// set, is honoured by the client library.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.ProjectID == "" {
		return nil, errors.New("missing firestore project id")
	}
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := gfs.NewClientWithDatabase(ctx, cfg.ProjectID, databaseOrDefault(cfg.Database), opts...)
	if err != nil {
		return nil, fmt.Errorf("create firestore client: %w", err)
	}
	slog.InfoContext(ctx, "Firestore client created", "project", cfg.ProjectID, "database", databaseOrDefault(cfg.Database))
	return &Store{client: client}, nil
}

func databaseOrDefault(db string) string {
	if db == "" {
		return DefaultDatabase
	}
	return db
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	// A one-document query needs read access only.
	_, err := s.client.Collection(core.Incomes.String()).Limit(1).Documents(ctx).GetAll()
	return err
}

// buildQuery ANDs filters onto the collection query. Values are compared as
// strings, so ranges follow lexical order like the other backends.
func buildQuery(q gfs.Query, filters []core.Filter) (gfs.Query, error) {
	for _, f := range filters {
		op, ok := firestoreOps[f.Op]
		if !ok {
			return q, fmt.Errorf("filter on %s: %w", f.Field, core.ErrUnsupportedOp)
		}
		q = q.WherePath(gfs.FieldPath{f.Field}, op, f.Value)
	}
	return q, nil
}

func (s *Store) Get(ctx context.Context, collection string, filters ...core.Filter) ([]core.Document, error) {
	q, err := buildQuery(s.client.Collection(collection).Query, filters)
	if err != nil {
		return nil, err
	}
	snaps, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, mapErr(err))
	}

	docs := make([]core.Document, 0, len(snaps))
	for _, snap := range snaps {
		docs = append(docs, toDocument(snap))
	}
	return docs, nil
}

func (s *Store) Set(ctx context.Context, collection, id string, fields core.Fields) (string, error) {
	coll := s.client.Collection(collection)
	ref := coll.NewDoc()
	if id != "" {
		ref = coll.Doc(id)
	}
	if _, err := ref.Set(ctx, map[string]any(fields.Clone())); err != nil {
		return "", fmt.Errorf("set %s/%s: %w", collection, ref.ID, mapErr(err))
	}
	return ref.ID, nil
}

// Update merges partial into the stored document inside a transaction and
// returns the merged fields.
func (s *Store) Update(ctx context.Context, collection, id string, partial core.Fields) (core.Fields, error) {
	ref := s.client.Collection(collection).Doc(id)
	var merged core.Fields
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *gfs.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return mapErr(err)
		}
		merged = toDocument(snap).Fields.Merge(partial)
		if len(partial) == 0 {
			return nil
		}
		return tx.Set(ref, map[string]any(merged))
	})
	if err != nil {
		return nil, fmt.Errorf("update %s/%s: %w", collection, id, mapErr(err))
	}
	return merged, nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.client.Collection(collection).Doc(id).Delete(ctx, gfs.Exists); err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, mapErr(err))
	}
	return nil
}

func mapErr(err error) error {
	if status.Code(err) == codes.NotFound {
		return core.ErrNotFound
	}
	return err
}

func toDocument(snap *gfs.DocumentSnapshot) core.Document {
	fields := core.Fields(snap.Data())
	if fields == nil {
		fields = core.Fields{}
	}
	return core.Document{ID: snap.Ref.ID, Fields: fields}
}
