package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
)

var (
	ErrMissingAmount = errors.New("missing amount")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidPeriod = errors.New("year and month are required")
)

// Totals is the all-time sum of both collections.
type Totals struct {
	TotalIncome  float64 `json:"totalIncome"`
	TotalExpense float64 `json:"totalExpense"`
}

// MonthlyReport bundles the raw entries of a month with their sums.
// Entries carry no ids.
type MonthlyReport struct {
	Incomes       []Fields `json:"incomes"`
	Expenses      []Fields `json:"expenses"`
	TotalIncome   float64  `json:"totalIncome"`
	TotalExpenses float64  `json:"totalExpenses"`
}

// MonthRange returns the inclusive date bounds for a month. The bounds are
// built by plain concatenation and the upper day is always 31; callers
// compare them lexically against stored dates.
func MonthRange(year, month string) (from, to string, err error) {
	if year == "" || month == "" {
		return "", "", ErrInvalidPeriod
	}
	return year + "-" + month + "-01", year + "-" + month + "-31", nil
}

// Amount extracts the numeric amount of an entry.
func Amount(f Fields) (float64, error) {
	raw, ok := f[FieldAmount]
	if !ok || raw == nil {
		return 0, ErrMissingAmount
	}
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		n, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, v.String())
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%w: %v (%T)", ErrInvalidAmount, raw, raw)
	}
}

// SumAmounts adds the amount of every entry starting from 0. The first
// entry without a numeric amount aborts the whole sum.
func SumAmounts(docs []Fields) (float64, error) {
	var total float64
	for i, d := range docs {
		n, err := Amount(d)
		if err != nil {
			return 0, fmt.Errorf("entry %d: %w", i, err)
		}
		total += n
	}
	return total, nil
}

// FieldsOf strips document ids.
func FieldsOf(docs []Document) []Fields {
	out := make([]Fields, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.Fields)
	}
	return out
}

// parseNumber accepts JSON numbers and numeric strings.
func parseNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
