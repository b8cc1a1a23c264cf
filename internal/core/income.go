package core

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Income is the validated shape of a new income entry. Description must be
// present and a string; an empty string is accepted.
type Income struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount" validate:"gt=0"`
	Date        string  `json:"date" validate:"required,iso8601"`
	Category    *string `json:"category,omitempty"`
	Subcategory *string `json:"subcategory,omitempty"`
}

// ValidationError describes one rejected body field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	msgs := make([]string, 0, len(ve))
	for _, e := range ve {
		msgs = append(msgs, e.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Has reports whether field was rejected.
func (ve ValidationErrors) Has(field string) bool {
	for _, e := range ve {
		if e.Field == field {
			return true
		}
	}
	return false
}

var fieldMessages = map[string]string{
	FieldDescription: "description must be a text",
	FieldAmount:      "amount must be a number greater than zero",
	FieldDate:        "date must be in ISO 8601 format",
	FieldCategory:    "category must be a text",
	FieldSubcategory: "subcategory must be a text",
}

// ISO 8601 building blocks. Calendar, week and ordinal dates are accepted with
// or without separators, optionally followed by a time and a UTC offset. Day
// numbers are range-checked per field only, so 2024-02-31 passes.
const (
	isoMonth   = `(?:0[1-9]|1[0-2])`
	isoDay     = `(?:[12]\d|0[1-9]|3[01])`
	isoWeek    = `W(?:[0-4]\d|5[0-3])(?:-?[1-7])?`
	isoOrdinal = `(?:00[1-9]|0[1-9]\d|[12]\d{2}|3(?:[0-5]\d|6[1-6]))`
	isoFrac    = `(?:[.,]\d+)?`
	isoHour    = `(?:[01]\d|2[0-3])`
	isoClock   = `(?:` + isoHour + `(?::[0-5]\d(?::[0-5]\d)?|[0-5]\d(?:[0-5]\d)?)?` + isoFrac + `|24:?00)`
	isoZone    = `(?:[zZ]|[+-]` + isoHour + `(?::?[0-5]\d)?)?`
	isoTime    = `[T\s]` + isoClock + isoZone
)

var isoDate = regexp.MustCompile(`^[+-]?\d{4}(?:` +
	`-(?:` + isoMonth + `(?:-` + isoDay + `)?|` + isoWeek + `|` + isoOrdinal + `)(?:` + isoTime + `)?` +
	`|(?:` + isoMonth + isoDay + `|` + isoWeek + `|` + isoOrdinal + `)(?:` + isoTime + `)?` +
	`|` + isoMonth + `T` + isoClock + isoZone +
	`)?$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("iso8601", func(fl validator.FieldLevel) bool {
		return IsISO8601(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// IsISO8601 reports whether s is a date or timestamp in ISO 8601 form. A
// bare YYYYMM is ambiguous with an ordinal date and is rejected.
func IsISO8601(s string) bool {
	return isoDate.MatchString(s)
}

// NewIncome builds and validates an income from a raw request body. All
// field problems are reported together.
func NewIncome(raw Fields) (Income, error) {
	var (
		inc  Income
		errs ValidationErrors
	)
	reject := func(field string) {
		errs = append(errs, ValidationError{Field: field, Message: fieldMessages[field], Value: raw[field]})
	}

	if s, isStr := raw[FieldDescription].(string); isStr {
		inc.Description = s
	} else {
		reject(FieldDescription)
	}
	if v, ok := raw[FieldAmount]; ok {
		if n, isNum := parseNumber(v); isNum {
			inc.Amount = n
		} else {
			reject(FieldAmount)
		}
	}
	if v, ok := raw[FieldDate]; ok {
		if s, isStr := v.(string); isStr {
			inc.Date = s
		} else {
			reject(FieldDate)
		}
	}
	for _, name := range []string{FieldCategory, FieldSubcategory} {
		v, ok := raw[name]
		if !ok || v == nil {
			continue
		}
		s, isStr := v.(string)
		if !isStr {
			reject(name)
			continue
		}
		if name == FieldCategory {
			inc.Category = &s
		} else {
			inc.Subcategory = &s
		}
	}

	if err := validate.Struct(inc); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return Income{}, err
		}
		for _, fe := range fieldErrs {
			if errs.Has(fe.Field()) {
				continue
			}
			reject(fe.Field())
		}
	}

	if len(errs) > 0 {
		return Income{}, errs
	}
	return inc, nil
}

// Fields returns the document body persisted for the income.
func (i Income) Fields() Fields {
	f := Fields{
		FieldDescription: i.Description,
		FieldAmount:      i.Amount,
		FieldDate:        i.Date,
	}
	if i.Category != nil {
		f[FieldCategory] = *i.Category
	}
	if i.Subcategory != nil {
		f[FieldSubcategory] = *i.Subcategory
	}
	return f
}
