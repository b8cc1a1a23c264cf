// Package docstore defines the narrow document-store contract the entry
// repository is written against. Backends live in subpackages and in
// internal/storage.
package docstore

import (
	"context"

	"financas/internal/core"
)

type (
	// Reader runs conjunctive filtered queries over a collection.
	Reader interface {
		// Get returns every document of collection matching all filters,
		// in the store's native order.
		Get(ctx context.Context, collection string, filters ...core.Filter) ([]core.Document, error)
	}

	Writer interface {
		// Set creates a document, or fully overwrites it when id is given.
		// An empty id asks the store to assign one; the id is returned.
		Set(ctx context.Context, collection, id string, fields core.Fields) (string, error)
		// Update merges partial into an existing document and returns the
		// merged fields. It fails with core.ErrNotFound if id is absent.
		Update(ctx context.Context, collection, id string, partial core.Fields) (core.Fields, error)
		// Delete removes a document, failing with core.ErrNotFound if absent.
		Delete(ctx context.Context, collection, id string) error
	}

	Store interface {
		Reader
		Writer
	}
)
