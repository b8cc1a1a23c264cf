package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"financas/internal/core"
	"financas/internal/docstore"

	_ "modernc.org/sqlite"
)

var _ docstore.Store = (*SQLiteRepository)(nil)

var sqlOps = map[core.Op]string{
	core.OpGTE: ">=",
	core.OpLTE: "<=",
	core.OpEQ:  "=",
}

// SQLiteRepository stores documents as JSON text in a single table keyed by
// (collection, id). Filters run through SQLite's JSON functions.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single writer connection avoids SQLITE_BUSY between request goroutines.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func jsonPath(field string) (string, error) {
	if field == "" || strings.ContainsAny(field, `"\`) {
		return "", fmt.Errorf("invalid field name %q", field)
	}
	return `$."` + field + `"`, nil
}

// Get implements docstore.Reader
func (r *SQLiteRepository) Get(ctx context.Context, collection string, filters ...core.Filter) ([]core.Document, error) {
	var q strings.Builder
	q.WriteString("SELECT id, data FROM documents WHERE collection = ?")
	args := []any{collection}

	for _, f := range filters {
		op, ok := sqlOps[f.Op]
		if !ok {
			return nil, fmt.Errorf("filter on %s: %w", f.Field, core.ErrUnsupportedOp)
		}
		path, err := jsonPath(f.Field)
		if err != nil {
			return nil, err
		}
		// Only JSON strings take part in comparisons, compared with BINARY collation.
		q.WriteString(" AND json_type(data, ?) = 'text' AND json_extract(data, ?) " + op + " ?")
		args = append(args, path, path, f.Value)
	}

	rows, err := r.db.QueryContext(ctx, q.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []core.Document
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("scan %s: %w", collection, err)
		}
		fields, err := decode(data)
		if err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", collection, id, err)
		}
		docs = append(docs, core.Document{ID: id, Fields: fields})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", collection, err)
	}
	return docs, nil
}

// Set implements docstore.Writer
func (r *SQLiteRepository) Set(ctx context.Context, collection, id string, fields core.Fields) (string, error) {
	if id == "" {
		id = uuid.NewString()
	}
	data, err := json.Marshal(fields.Clone())
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO documents (collection, id, data) VALUES (?, ?, ?)
		ON CONFLICT (collection, id) DO UPDATE SET data = excluded.data, updated_at = CURRENT_TIMESTAMP`,
		collection, id, string(data))
	if err != nil {
		return "", fmt.Errorf("save %s/%s: %w", collection, id, err)
	}

	slog.DebugContext(ctx, "Document saved to SQLite", "collection", collection, "id", id)
	return id, nil
}

// Update implements docstore.Writer
func (r *SQLiteRepository) Update(ctx context.Context, collection, id string, partial core.Fields) (core.Fields, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback()

	var data string
	err = tx.QueryRowContext(ctx, "SELECT data FROM documents WHERE collection = ? AND id = ?", collection, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("update %s/%s: %w", collection, id, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s/%s: %w", collection, id, err)
	}

	fields, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s/%s: %w", collection, id, err)
	}
	fields.Merge(partial)

	encoded, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE documents SET data = ?, updated_at = CURRENT_TIMESTAMP WHERE collection = ? AND id = ?",
		string(encoded), collection, id); err != nil {
		return nil, fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit update: %w", err)
	}
	return fields, nil
}

// Delete implements docstore.Writer
func (r *SQLiteRepository) Delete(ctx context.Context, collection, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM documents WHERE collection = ? AND id = ?", collection, id)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	if n == 0 {
		return fmt.Errorf("delete %s/%s: %w", collection, id, core.ErrNotFound)
	}
	return nil
}

// Count returns the number of documents in a collection.
func (r *SQLiteRepository) Count(ctx context.Context, collection string) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents WHERE collection = ?", collection).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", collection, err)
	}
	return n, nil
}

func decode(data string) (core.Fields, error) {
	fields := core.Fields{}
	if err := json.Unmarshal([]byte(data), &fields); err != nil {
		return nil, err
	}
	return fields, nil
}
