package core

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestMonthRange(t *testing.T) {
	from, to, err := MonthRange("2024", "03")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if from != "2024-03-01" || to != "2024-03-31" {
		t.Fatalf("got [%s, %s]", from, to)
	}

	// February still ends at 31; inputs are not normalised.
	from, to, _ = MonthRange("2023", "2")
	if from != "2023-2-01" || to != "2023-2-31" {
		t.Fatalf("got [%s, %s]", from, to)
	}

	for _, tc := range [][2]string{{"", "03"}, {"2024", ""}} {
		if _, _, err := MonthRange(tc[0], tc[1]); !errors.Is(err, ErrInvalidPeriod) {
			t.Fatalf("MonthRange(%q, %q): expected ErrInvalidPeriod, got %v", tc[0], tc[1], err)
		}
	}
}

func TestSumAmounts(t *testing.T) {
	docs := []Fields{
		{"amount": 100.0},
		{"amount": int64(50)},
		{"amount": int32(5)},
		{"amount": json.Number("0.5")},
	}
	got, err := SumAmounts(docs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 155.5 {
		t.Fatalf("sum = %v, want 155.5", got)
	}

	got, err = SumAmounts(nil)
	if err != nil || got != 0 {
		t.Fatalf("empty sum = %v, %v", got, err)
	}
}

func TestSumAmountsOrderIndependent(t *testing.T) {
	a := []Fields{{"amount": 1.0}, {"amount": 2.0}, {"amount": 3.0}, {"amount": 4.0}}
	b := []Fields{a[3], a[1], a[0], a[2]}
	sa, _ := SumAmounts(a)
	sb, _ := SumAmounts(b)
	if sa != sb || sa != 10 {
		t.Fatalf("sums differ: %v vs %v", sa, sb)
	}
}

func TestSumAmountsAbortsOnBadAmount(t *testing.T) {
	_, err := SumAmounts([]Fields{{"amount": 1.0}, {"description": "no amount"}})
	if !errors.Is(err, ErrMissingAmount) {
		t.Fatalf("expected ErrMissingAmount, got %v", err)
	}

	_, err = SumAmounts([]Fields{{"amount": "12"}})
	if !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for string amount, got %v", err)
	}

	_, err = SumAmounts([]Fields{{"amount": nil}})
	if !errors.Is(err, ErrMissingAmount) {
		t.Fatalf("expected ErrMissingAmount for null amount, got %v", err)
	}
}

func TestFieldsOfDropsIDs(t *testing.T) {
	out := FieldsOf([]Document{{ID: "a", Fields: Fields{"amount": 1.0}}})
	if len(out) != 1 {
		t.Fatalf("len = %d", len(out))
	}
	if _, ok := out[0]["id"]; ok {
		t.Fatalf("id leaked into fields")
	}
	if FieldsOf(nil) == nil {
		t.Fatalf("FieldsOf(nil) must return an empty, non-nil slice")
	}
}
