package core

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestFilterMatch(t *testing.T) {
	fields := Fields{"date": "2024-03-15", "category": "Salary", "amount": 10.0}
	cases := []struct {
		f    Filter
		want bool
	}{
		{Filter{Field: "date", Op: OpGTE, Value: "2024-03-01"}, true},
		{Filter{Field: "date", Op: OpGTE, Value: "2024-03-15"}, true},
		{Filter{Field: "date", Op: OpGTE, Value: "2024-03-16"}, false},
		{Filter{Field: "date", Op: OpLTE, Value: "2024-03-31"}, true},
		{Filter{Field: "date", Op: OpLTE, Value: "2024-03-14"}, false},
		{Filter{Field: "category", Op: OpEQ, Value: "Salary"}, true},
		{Filter{Field: "category", Op: OpEQ, Value: "salary"}, false},
		{Filter{Field: "missing", Op: OpEQ, Value: ""}, false},
		{Filter{Field: "amount", Op: OpLTE, Value: "99"}, false}, // non-string never matches
	}
	for i, tc := range cases {
		if got := tc.f.Match(fields); got != tc.want {
			t.Fatalf("case %d (%+v): got %v want %v", i, tc.f, got, tc.want)
		}
	}
}

func TestFilterMatchIsLexical(t *testing.T) {
	// Unpadded months sort after padded ones byte-wise.
	f := Filter{Field: "date", Op: OpLTE, Value: "2024-03-31"}
	if f.Match(Fields{"date": "2024-3-05"}) {
		t.Fatalf("expected unpadded month to fall outside lexical window")
	}
}

func TestListFilterFilters(t *testing.T) {
	lf := ListFilter{DateFrom: "2024-01-01", DateTo: "2024-01-31", Category: "A", Subcategory: "B", Type: "fixed"}

	inc := lf.Filters(Incomes)
	if len(inc) != 4 {
		t.Fatalf("incomes: expected 4 filters, got %d: %+v", len(inc), inc)
	}
	for _, f := range inc {
		if f.Field == FieldType {
			t.Fatalf("type filter must not apply to incomes")
		}
	}

	exp := lf.Filters(Expenses)
	if len(exp) != 5 {
		t.Fatalf("expenses: expected 5 filters, got %d", len(exp))
	}

	if got := (ListFilter{}).Filters(Expenses); len(got) != 0 {
		t.Fatalf("empty list filter should yield no filters, got %+v", got)
	}
}

func TestDocumentMarshalJSON(t *testing.T) {
	d := Document{ID: "abc", Fields: Fields{"description": "x", "amount": 5.0, "id": "spoofed"}}
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out["id"] != "abc" || out["description"] != "x" || out["amount"] != 5.0 {
		t.Fatalf("unexpected json: %s", b)
	}
}

func TestFieldsCloneAndMerge(t *testing.T) {
	f := Fields{"a": 1, "id": "x"}
	c := f.Clone()
	if _, ok := c["id"]; ok {
		t.Fatalf("clone kept reserved id key")
	}
	c["b"] = 2
	if _, ok := f["b"]; ok {
		t.Fatalf("clone shares storage with original")
	}
	c.Merge(Fields{"a": 3, "id": "y"})
	if c["a"] != 3 {
		t.Fatalf("merge did not overwrite: %v", c)
	}
	if _, ok := c["id"]; ok {
		t.Fatalf("merge copied reserved id key")
	}
}

func TestCollectionValidate(t *testing.T) {
	if err := Incomes.Validate(); err != nil {
		t.Fatalf("incomes: %v", err)
	}
	if err := Collection("users").Validate(); !errors.Is(err, ErrUnknownCollection) {
		t.Fatalf("expected ErrUnknownCollection, got %v", err)
	}
}
