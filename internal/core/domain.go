package core

import (
	"encoding/json"
	"errors"
)

const (
	Incomes  Collection = "incomes"
	Expenses Collection = "expenses"
)

// Field names the repository filters on.
const (
	FieldDate        = "date"
	FieldCategory    = "category"
	FieldSubcategory = "subcategory"
	FieldType        = "type"
	FieldAmount      = "amount"
	FieldDescription = "description"
)

const (
	OpGTE Op = ">="
	OpLTE Op = "<="
	OpEQ  Op = "=="
)

type (
	// Collection names a set of entry documents in the store.
	Collection string

	// Fields is the schemaless body of an entry.
	Fields map[string]any

	// Document is a stored entry together with its store-assigned id.
	Document struct {
		ID     string
		Fields Fields
	}

	Op string

	// Filter is a single predicate against a document field.
	Filter struct {
		Field string
		Op    Op
		Value string
	}

	// ListFilter holds the optional list predicates. Empty values are not applied.
	ListFilter struct {
		DateFrom    string
		DateTo      string
		Category    string
		Subcategory string
		Type        string // expenses only
	}
)

var (
	ErrNotFound          = errors.New("document not found")
	ErrUnknownCollection = errors.New("unknown collection")
	ErrUnsupportedOp     = errors.New("unsupported filter operator")
)

func (c Collection) String() string {
	return string(c)
}

// Validate reports whether c is one of the two entry collections.
func (c Collection) Validate() error {
	switch c {
	case Incomes, Expenses:
		return nil
	default:
		return ErrUnknownCollection
	}
}

// Clone returns a shallow copy of f without the reserved "id" key.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		if k == "id" {
			continue
		}
		out[k] = v
	}
	return out
}

// Merge copies every key of partial into f, overwriting existing values.
func (f Fields) Merge(partial Fields) Fields {
	for k, v := range partial {
		if k == "id" {
			continue
		}
		f[k] = v
	}
	return f
}

// MarshalJSON flattens the document into a single object carrying its id.
func (d Document) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(d.Fields)+1)
	for k, v := range d.Fields {
		out[k] = v
	}
	out["id"] = d.ID
	return json.Marshal(out)
}

// Validate checks the operator is one the store contract supports.
func (f Filter) Validate() error {
	switch f.Op {
	case OpGTE, OpLTE, OpEQ:
		return nil
	default:
		return ErrUnsupportedOp
	}
}

// Match evaluates the filter against fields. Only string values can match and
// comparison is byte-wise, so zero-padded ISO dates order chronologically.
func (f Filter) Match(fields Fields) bool {
	raw, ok := fields[f.Field]
	if !ok {
		return false
	}
	s, ok := raw.(string)
	if !ok {
		return false
	}
	switch f.Op {
	case OpGTE:
		return s >= f.Value
	case OpLTE:
		return s <= f.Value
	case OpEQ:
		return s == f.Value
	default:
		return false
	}
}

// MatchAll reports whether every filter matches.
func MatchAll(fields Fields, filters []Filter) bool {
	for _, f := range filters {
		if !f.Match(fields) {
			return false
		}
	}
	return true
}

// Filters turns the list predicates into store filters for collection c.
func (lf ListFilter) Filters(c Collection) []Filter {
	var out []Filter
	if lf.DateFrom != "" {
		out = append(out, Filter{Field: FieldDate, Op: OpGTE, Value: lf.DateFrom})
	}
	if lf.DateTo != "" {
		out = append(out, Filter{Field: FieldDate, Op: OpLTE, Value: lf.DateTo})
	}
	if lf.Category != "" {
		out = append(out, Filter{Field: FieldCategory, Op: OpEQ, Value: lf.Category})
	}
	if lf.Subcategory != "" {
		out = append(out, Filter{Field: FieldSubcategory, Op: OpEQ, Value: lf.Subcategory})
	}
	if lf.Type != "" && c == Expenses {
		out = append(out, Filter{Field: FieldType, Op: OpEQ, Value: lf.Type})
	}
	return out
}
