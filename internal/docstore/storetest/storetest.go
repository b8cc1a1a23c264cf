// Package storetest holds behaviour checks shared by every docstore backend.
package storetest

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"testing"

	"financas/internal/core"
	"financas/internal/docstore"
)

// Run exercises a backend against the docstore contract. newStore must
// return an empty store; collection names are fixed so backends that share
// state across calls should isolate per test.
func Run(t *testing.T, newStore func(t *testing.T) docstore.Store) {
	t.Helper()

	t.Run("SetAssignsID", func(t *testing.T) { testSetAssignsID(t, newStore(t)) })
	t.Run("SetWithIDOverwrites", func(t *testing.T) { testSetWithIDOverwrites(t, newStore(t)) })
	t.Run("GetFilters", func(t *testing.T) { testGetFilters(t, newStore(t)) })
	t.Run("GetEmpty", func(t *testing.T) { testGetEmpty(t, newStore(t)) })
	t.Run("GetIsRepeatable", func(t *testing.T) { testGetRepeatable(t, newStore(t)) })
	t.Run("UpdateMerges", func(t *testing.T) { testUpdateMerges(t, newStore(t)) })
	t.Run("UpdateMissing", func(t *testing.T) { testUpdateMissing(t, newStore(t)) })
	t.Run("Delete", func(t *testing.T) { testDelete(t, newStore(t)) })
	t.Run("CollectionsAreIsolated", func(t *testing.T) { testIsolation(t, newStore(t)) })
}

func mustSet(t *testing.T, s docstore.Store, coll string, f core.Fields) string {
	t.Helper()
	id, err := s.Set(context.Background(), coll, "", f)
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	return id
}

func ids(docs []core.Document) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.ID)
	}
	sort.Strings(out)
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	sort.Strings(a)
	sort.Strings(b)
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func testSetAssignsID(t *testing.T, s docstore.Store) {
	ctx := context.Background()
	id1 := mustSet(t, s, "incomes", core.Fields{"description": "a", "amount": 10.0, "date": "2024-01-01"})
	id2 := mustSet(t, s, "incomes", core.Fields{"description": "b", "amount": 20.0, "date": "2024-01-02"})
	if id1 == "" || id2 == "" || id1 == id2 {
		t.Fatalf("expected two distinct ids, got %q and %q", id1, id2)
	}

	docs, err := s.Get(ctx, "incomes")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !equalIDs(ids(docs), []string{id1, id2}) {
		t.Fatalf("unexpected ids: %v", ids(docs))
	}
	for _, d := range docs {
		if _, ok := d.Fields["id"]; ok {
			t.Fatalf("id must not be stored as a field: %v", d.Fields)
		}
		if d.ID == id1 {
			if d.Fields["description"] != "a" {
				t.Fatalf("unexpected fields: %v", d.Fields)
			}
			if n, err := core.Amount(d.Fields); err != nil || n != 10 {
				t.Fatalf("amount round trip: %v, %v", n, err)
			}
		}
	}
}

func testSetWithIDOverwrites(t *testing.T, s docstore.Store) {
	ctx := context.Background()
	id, err := s.Set(ctx, "expenses", "fixed-id", core.Fields{"description": "a", "amount": 1.0, "type": "x"})
	if err != nil || id != "fixed-id" {
		t.Fatalf("Set with id: %q, %v", id, err)
	}
	if _, err := s.Set(ctx, "expenses", "fixed-id", core.Fields{"description": "b"}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	docs, err := s.Get(ctx, "expenses")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected one document, got %d", len(docs))
	}
	if docs[0].Fields["description"] != "b" {
		t.Fatalf("overwrite not applied: %v", docs[0].Fields)
	}
	if _, ok := docs[0].Fields["type"]; ok {
		t.Fatalf("full overwrite must drop old fields: %v", docs[0].Fields)
	}
}

func testGetFilters(t *testing.T, s docstore.Store) {
	ctx := context.Background()
	feb := mustSet(t, s, "incomes", core.Fields{"amount": 1.0, "date": "2024-02-28", "category": "A", "subcategory": "x"})
	mar1 := mustSet(t, s, "incomes", core.Fields{"amount": 2.0, "date": "2024-03-01", "category": "A", "subcategory": "y"})
	mar31 := mustSet(t, s, "incomes", core.Fields{"amount": 3.0, "date": "2024-03-31", "category": "B", "subcategory": "x"})
	apr := mustSet(t, s, "incomes", core.Fields{"amount": 4.0, "date": "2024-04-01", "category": "A", "subcategory": "x"})
	numDate := mustSet(t, s, "incomes", core.Fields{"amount": 5.0, "date": 20240315.0, "category": "A"})

	cases := []struct {
		name    string
		filters []core.Filter
		want    []string
	}{
		{"range inclusive", []core.Filter{
			{Field: "date", Op: core.OpGTE, Value: "2024-03-01"},
			{Field: "date", Op: core.OpLTE, Value: "2024-03-31"},
		}, []string{mar1, mar31}},
		{"lower bound only", []core.Filter{{Field: "date", Op: core.OpGTE, Value: "2024-03-31"}}, []string{mar31, apr}},
		{"upper bound only", []core.Filter{{Field: "date", Op: core.OpLTE, Value: "2024-02-28"}}, []string{feb}},
		{"equality", []core.Filter{{Field: "category", Op: core.OpEQ, Value: "A"}}, []string{feb, mar1, apr, numDate}},
		{"conjunction", []core.Filter{
			{Field: "category", Op: core.OpEQ, Value: "A"},
			{Field: "subcategory", Op: core.OpEQ, Value: "x"},
			{Field: "date", Op: core.OpGTE, Value: "2024-03-01"},
		}, []string{apr}},
		{"no match", []core.Filter{{Field: "category", Op: core.OpEQ, Value: "Z"}}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			docs, err := s.Get(ctx, "incomes", tc.filters...)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if !equalIDs(ids(docs), append([]string(nil), tc.want...)) {
				t.Fatalf("got %v want %v", ids(docs), tc.want)
			}
		})
	}
}

func testGetEmpty(t *testing.T, s docstore.Store) {
	docs, err := s.Get(context.Background(), "expenses", core.Filter{Field: "type", Op: core.OpEQ, Value: "x"})
	if err != nil {
		t.Fatalf("Get on empty collection: %v", err)
	}
	if len(docs) != 0 {
		t.Fatalf("expected no documents, got %d", len(docs))
	}
}

func testGetRepeatable(t *testing.T, s docstore.Store) {
	ctx := context.Background()
	for _, d := range []string{"2024-03-09", "2024-03-02", "2024-03-30", "2024-04-01"} {
		mustSet(t, s, "expenses", core.Fields{"amount": 1.0, "date": d, "type": "fixed"})
	}
	filters := []core.Filter{
		{Field: "date", Op: core.OpGTE, Value: "2024-03-01"},
		{Field: "date", Op: core.OpLTE, Value: "2024-03-31"},
		{Field: "type", Op: core.OpEQ, Value: "fixed"},
	}

	first, err := s.Get(ctx, "expenses", filters...)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	second, err := s.Get(ctx, "expenses", filters...)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(first) != 3 {
		t.Fatalf("expected 3 documents, got %d", len(first))
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("repeated Get differs:\n%v\n%v", first, second)
	}
}

func testUpdateMerges(t *testing.T, s docstore.Store) {
	ctx := context.Background()
	id := mustSet(t, s, "expenses", core.Fields{"description": "rent", "amount": 900.0, "date": "2024-03-05"})

	merged, err := s.Update(ctx, "expenses", id, core.Fields{"amount": 950.0, "type": "fixed"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if merged["description"] != "rent" || merged["type"] != "fixed" {
		t.Fatalf("unexpected merged fields: %v", merged)
	}
	if n, _ := core.Amount(merged); n != 950 {
		t.Fatalf("amount not updated: %v", merged)
	}

	docs, err := s.Get(ctx, "expenses", core.Filter{Field: "type", Op: core.OpEQ, Value: "fixed"})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(docs) != 1 || docs[0].ID != id {
		t.Fatalf("update not visible to queries: %+v", docs)
	}
}

func testUpdateMissing(t *testing.T, s docstore.Store) {
	_, err := s.Update(context.Background(), "incomes", "does-not-exist", core.Fields{"amount": 1.0})
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func testDelete(t *testing.T, s docstore.Store) {
	ctx := context.Background()
	keep := mustSet(t, s, "incomes", core.Fields{"amount": 1.0})
	drop := mustSet(t, s, "incomes", core.Fields{"amount": 2.0})

	if err := s.Delete(ctx, "incomes", drop); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	docs, err := s.Get(ctx, "incomes")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(docs) != 1 || docs[0].ID != keep {
		t.Fatalf("unexpected remaining docs: %v", ids(docs))
	}
	if err := s.Delete(ctx, "incomes", drop); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("second delete: expected ErrNotFound, got %v", err)
	}
}

func testIsolation(t *testing.T, s docstore.Store) {
	ctx := context.Background()
	mustSet(t, s, "incomes", core.Fields{"amount": 1.0})
	docs, err := s.Get(ctx, "expenses")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(docs) != 0 {
		t.Fatalf("expenses saw %d income documents", len(docs))
	}
}
