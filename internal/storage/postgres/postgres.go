// Package postgres stores entry documents in a PostgreSQL jsonb table via gorm.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"financas/internal/core"
	"financas/internal/docstore"
)

var _ docstore.Store = (*Repository)(nil)

var sqlOps = map[core.Op]string{
	core.OpGTE: ">=",
	core.OpLTE: "<=",
	core.OpEQ:  "=",
}

type document struct {
	Collection string `gorm:"primaryKey;size:64"`
	ID         string `gorm:"primaryKey;size:64"`
	Data       string `gorm:"type:jsonb;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (document) TableName() string { return "documents" }

type Repository struct {
	db *gorm.DB
}

// Open connects to dsn and migrates the documents table.
func Open(dsn string, debug bool) (*Repository, error) {
	gormLogger := logger.Default
	if !debug {
		gormLogger = gormLogger.LogMode(logger.Silent)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&document{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *Repository) Get(ctx context.Context, collection string, filters ...core.Filter) ([]core.Document, error) {
	q := r.db.WithContext(ctx).Where("collection = ?", collection)
	for _, f := range filters {
		op, ok := sqlOps[f.Op]
		if !ok {
			return nil, fmt.Errorf("filter on %s: %w", f.Field, core.ErrUnsupportedOp)
		}
		// Non-string values never match; "C" collation gives byte-wise ordering.
		q = q.Where("jsonb_typeof(data -> ?::text) = 'string'", f.Field).
			Where(`(data ->> ?::text) COLLATE "C" `+op+` ?`, f.Field, f.Value)
	}

	var rows []document
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}

	docs := make([]core.Document, 0, len(rows))
	for _, row := range rows {
		fields, err := decode(row.Data)
		if err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", collection, row.ID, err)
		}
		docs = append(docs, core.Document{ID: row.ID, Fields: fields})
	}
	return docs, nil
}

func (r *Repository) Set(ctx context.Context, collection, id string, fields core.Fields) (string, error) {
	if id == "" {
		id = uuid.NewString()
	}
	data, err := json.Marshal(fields.Clone())
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}

	row := document{Collection: collection, ID: id, Data: string(data)}
	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "collection"}, {Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return "", fmt.Errorf("save %s/%s: %w", collection, id, err)
	}
	return id, nil
}

func (r *Repository) Update(ctx context.Context, collection, id string, partial core.Fields) (core.Fields, error) {
	var merged core.Fields
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row document
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("collection = ? AND id = ?", collection, id).
			First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return core.ErrNotFound
		}
		if err != nil {
			return err
		}

		fields, err := decode(row.Data)
		if err != nil {
			return err
		}
		merged = fields.Merge(partial)

		data, err := json.Marshal(merged)
		if err != nil {
			return err
		}
		return tx.Model(&row).Update("data", string(data)).Error
	})
	if err != nil {
		return nil, fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	return merged, nil
}

func (r *Repository) Delete(ctx context.Context, collection, id string) error {
	res := r.db.WithContext(ctx).
		Where("collection = ? AND id = ?", collection, id).
		Delete(&document{})
	if res.Error != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete %s/%s: %w", collection, id, core.ErrNotFound)
	}
	return nil
}

func decode(data string) (core.Fields, error) {
	fields := core.Fields{}
	if err := json.Unmarshal([]byte(data), &fields); err != nil {
		return nil, err
	}
	return fields, nil
}
