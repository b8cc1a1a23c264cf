package services

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"financas/internal/core"
	"financas/internal/docstore/memory"
	"financas/internal/log"
)

// failingStore wraps the memory store and fails Get for one collection.
type failingStore struct {
	*memory.Store
	failGet string
}

var errStoreDown = errors.New("store unavailable")

func (f *failingStore) Get(ctx context.Context, coll string, filters ...core.Filter) ([]core.Document, error) {
	if coll == f.failGet {
		return nil, errStoreDown
	}
	return f.Store.Get(ctx, coll, filters...)
}

func TestEntryService_CreateIncome(t *testing.T) {
	svc := NewEntryService(memory.New(), nil)
	ctx := context.Background()

	doc, err := svc.CreateIncome(ctx, core.Fields{
		"description": "Salary",
		"amount":      1500.0,
		"date":        "2024-03-10",
		"extra":       "dropped",
	})
	if err != nil {
		t.Fatalf("CreateIncome: %v", err)
	}
	if doc.ID == "" {
		t.Fatal("expected an id")
	}
	if _, ok := doc.Fields["extra"]; ok {
		t.Fatalf("unknown field persisted: %v", doc.Fields)
	}

	docs, _ := svc.List(ctx, core.Incomes, core.ListFilter{})
	if len(docs) != 1 || docs[0].ID != doc.ID {
		t.Fatalf("unexpected stored incomes: %+v", docs)
	}
}

func TestEntryService_CreateIncomeRejectsInvalid(t *testing.T) {
	svc := NewEntryService(memory.New(), nil)
	ctx := context.Background()

	_, err := svc.CreateIncome(ctx, core.Fields{"description": "Bad", "amount": -5.0, "date": "2024-03-10"})
	var ve core.ValidationErrors
	if !errors.As(err, &ve) || !ve.Has("amount") {
		t.Fatalf("expected amount validation error, got %v", err)
	}

	docs, _ := svc.List(ctx, core.Incomes, core.ListFilter{})
	if len(docs) != 0 {
		t.Fatalf("invalid income was persisted: %+v", docs)
	}
}

func TestEntryService_CreateExpenseKeepsFieldsAsGiven(t *testing.T) {
	svc := NewEntryService(memory.New(), nil)
	doc, err := svc.Create(context.Background(), core.Expenses, core.Fields{
		"id":     "client-supplied",
		"amount": "not validated",
		"type":   "fixed",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if doc.ID == "client-supplied" {
		t.Fatal("client id must not be used as the document id")
	}
	if _, ok := doc.Fields["id"]; ok {
		t.Fatalf("id key must be stripped: %v", doc.Fields)
	}
	if doc.Fields["amount"] != "not validated" {
		t.Fatalf("expense fields must be stored as given: %v", doc.Fields)
	}
}

func TestEntryService_UnknownCollection(t *testing.T) {
	svc := NewEntryService(memory.New(), nil)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "budgets", core.Fields{}); !errors.Is(err, core.ErrUnknownCollection) {
		t.Errorf("Create: %v", err)
	}
	if _, err := svc.List(ctx, "budgets", core.ListFilter{}); !errors.Is(err, core.ErrUnknownCollection) {
		t.Errorf("List: %v", err)
	}
	if _, err := svc.Update(ctx, "budgets", "x", core.Fields{}); !errors.Is(err, core.ErrUnknownCollection) {
		t.Errorf("Update: %v", err)
	}
	if err := svc.Delete(ctx, "budgets", "x"); !errors.Is(err, core.ErrUnknownCollection) {
		t.Errorf("Delete: %v", err)
	}
}

func TestEntryService_ListFilters(t *testing.T) {
	svc := NewEntryService(memory.New(), nil)
	ctx := context.Background()

	mustCreate := func(c core.Collection, f core.Fields) string {
		t.Helper()
		d, err := svc.Create(ctx, c, f)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		return d.ID
	}
	salary := mustCreate(core.Incomes, core.Fields{"amount": 1.0, "date": "2024-03-01", "category": "Work", "subcategory": "Main"})
	mustCreate(core.Incomes, core.Fields{"amount": 1.0, "date": "2024-03-02", "category": "Work", "subcategory": "Side"})
	mustCreate(core.Incomes, core.Fields{"amount": 1.0, "date": "2024-04-01", "category": "Gift"})
	rent := mustCreate(core.Expenses, core.Fields{"amount": 1.0, "date": "2024-03-05", "type": "fixed"})
	mustCreate(core.Expenses, core.Fields{"amount": 1.0, "date": "2024-03-06", "type": "variable"})

	tests := []struct {
		name string
		coll core.Collection
		lf   core.ListFilter
		want int
		id   string
	}{
		{"no filters", core.Incomes, core.ListFilter{}, 3, ""},
		{"date range", core.Incomes, core.ListFilter{DateFrom: "2024-03-01", DateTo: "2024-03-31"}, 2, ""},
		{"category and subcategory", core.Incomes, core.ListFilter{Category: "Work", Subcategory: "Main"}, 1, salary},
		{"type on expenses", core.Expenses, core.ListFilter{Type: "fixed"}, 1, rent},
		{"type ignored on incomes", core.Incomes, core.ListFilter{Type: "fixed"}, 3, ""},
		{"no match", core.Expenses, core.ListFilter{DateFrom: "2025-01-01"}, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs, err := svc.List(ctx, tt.coll, tt.lf)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if docs == nil {
				t.Fatal("List must return a non-nil slice")
			}
			if len(docs) != tt.want {
				t.Fatalf("got %d documents, want %d", len(docs), tt.want)
			}
			if tt.id != "" && docs[0].ID != tt.id {
				t.Fatalf("got %s, want %s", docs[0].ID, tt.id)
			}
		})
	}
}

func TestEntryService_UpdateAndDelete(t *testing.T) {
	svc := NewEntryService(memory.New(), nil)
	ctx := context.Background()

	created, _ := svc.Create(ctx, core.Expenses, core.Fields{"description": "rent", "amount": 900.0})

	updated, err := svc.Update(ctx, core.Expenses, created.ID, core.Fields{"amount": 950.0, "id": "ignored"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.ID != created.ID || updated.Fields["description"] != "rent" || updated.Fields["amount"] != 950.0 {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	if _, err := svc.Update(ctx, core.Expenses, "missing", core.Fields{"amount": 1.0}); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("update missing: %v", err)
	}

	if err := svc.Delete(ctx, core.Expenses, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := svc.Delete(ctx, core.Expenses, created.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("delete missing: %v", err)
	}
}

func TestEntryService_ListPropagatesStoreErrors(t *testing.T) {
	svc := NewEntryService(&failingStore{Store: memory.New(), failGet: "incomes"}, nil)
	if _, err := svc.List(context.Background(), core.Incomes, core.ListFilter{}); !errors.Is(err, errStoreDown) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestEntryService_LogsThroughRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	requestLogger := log.New(log.Config{Handler: slog.NewTextHandler(&buf, nil)}).
		With(log.FieldRequestID, "req-42")
	ctx := log.NewContext(context.Background(), requestLogger)

	svc := NewEntryService(memory.New(), log.Discard())
	doc, err := svc.Create(ctx, core.Expenses, core.Fields{"amount": 1.0})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.Delete(ctx, core.Expenses, "missing"); err == nil {
		t.Fatal("expected delete of a missing id to fail")
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected a change record and a failure record, got:\n%s", buf.String())
	}
	if !strings.Contains(lines[0], "Entry created") || !strings.Contains(lines[0], "document_id="+doc.ID) {
		t.Fatalf("unexpected change record: %s", lines[0])
	}
	if !strings.Contains(lines[1], "level=ERROR") || !strings.Contains(lines[1], "operation=delete") {
		t.Fatalf("unexpected failure record: %s", lines[1])
	}
	for _, line := range lines {
		if !strings.Contains(line, "request_id=req-42") {
			t.Fatalf("record without request id: %s", line)
		}
	}
}

func TestEntryService_FallsBackToConstructorLogger(t *testing.T) {
	var buf bytes.Buffer
	svc := NewEntryService(memory.New(), log.New(log.Config{Handler: slog.NewTextHandler(&buf, nil)}))

	if _, err := svc.Create(context.Background(), core.Incomes, core.Fields{"amount": 1.0}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !strings.Contains(buf.String(), "component=entries") {
		t.Fatalf("expected entries record, got %q", buf.String())
	}
}
