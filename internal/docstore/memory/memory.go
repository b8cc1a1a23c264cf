package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/google/uuid"

	"financas/internal/core"
	"financas/internal/docstore"
)

var _ docstore.Store = (*Store)(nil)

type collection struct {
	order []string
	docs  map[string]core.Fields
}

// Store keeps documents in process memory, in insertion order.
type Store struct {
	mu          sync.Mutex
	collections map[string]*collection
}

func New() *Store {
	return &Store{collections: make(map[string]*collection)}
}

// NewFromFiles seeds the store from seed_incomes.json and seed_expenses.json
// under base when present. Each file holds a JSON array of entry objects.
func NewFromFiles(base string) *Store {
	s := New()
	for _, c := range []core.Collection{core.Incomes, core.Expenses} {
		path := filepath.Join(base, "seed_"+c.String()+".json")
		entries, err := readSeed(path)
		if err != nil {
			slog.Warn("Skipping memory seed file", "path", path, "error", err)
			continue
		}
		for _, e := range entries {
			_, _ = s.Set(context.Background(), c.String(), "", e)
		}
	}
	return s
}

func readSeed(path string) ([]core.Fields, error) {
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []core.Fields
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return out, nil
}

func (s *Store) coll(name string) *collection {
	c, ok := s.collections[name]
	if !ok {
		c = &collection{docs: make(map[string]core.Fields)}
		s.collections[name] = c
	}
	return c
}

// Get returns copies of the matching documents.
func (s *Store) Get(_ context.Context, name string, filters ...core.Filter) ([]core.Document, error) {
	for _, f := range filters {
		if err := f.Validate(); err != nil {
			return nil, err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.coll(name)
	out := make([]core.Document, 0, len(c.order))
	for _, id := range c.order {
		fields := c.docs[id]
		if !core.MatchAll(fields, filters) {
			continue
		}
		out = append(out, core.Document{ID: id, Fields: fields.Clone()})
	}
	return out, nil
}

func (s *Store) Set(_ context.Context, name, id string, fields core.Fields) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.coll(name)
	if id == "" {
		id = uuid.NewString()
	}
	if _, exists := c.docs[id]; !exists {
		c.order = append(c.order, id)
	}
	c.docs[id] = fields.Clone()
	return id, nil
}

func (s *Store) Update(_ context.Context, name, id string, partial core.Fields) (core.Fields, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.coll(name)
	existing, ok := c.docs[id]
	if !ok {
		return nil, fmt.Errorf("update %s/%s: %w", name, id, core.ErrNotFound)
	}
	existing.Merge(partial)
	return existing.Clone(), nil
}

func (s *Store) Delete(_ context.Context, name, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.coll(name)
	if _, ok := c.docs[id]; !ok {
		return fmt.Errorf("delete %s/%s: %w", name, id, core.ErrNotFound)
	}
	delete(c.docs, id)
	c.order = slices.DeleteFunc(c.order, func(v string) bool { return v == id })
	return nil
}
