package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"financas/internal/core"
)

var errNotObject = errors.New("request body must be a JSON object")

// decodeFields reads a single JSON object from the request body.
func decodeFields(r *http.Request) (core.Fields, error) {
	dec := json.NewDecoder(r.Body)

	var raw any
	if err := dec.Decode(&raw); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return nil, fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit)
		case errors.Is(err, io.EOF):
			return nil, errNotObject
		default:
			return nil, fmt.Errorf("invalid JSON body: %w", err)
		}
	}
	if dec.More() {
		return nil, errors.New("invalid JSON body: trailing data")
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, errNotObject
	}
	return core.Fields(obj), nil
}

// incomeFilter reads startDate, endDate, category and subcategory.
func incomeFilter(q url.Values) core.ListFilter {
	return core.ListFilter{
		DateFrom:    strings.TrimSpace(q.Get("startDate")),
		DateTo:      strings.TrimSpace(q.Get("endDate")),
		Category:    strings.TrimSpace(q.Get("category")),
		Subcategory: strings.TrimSpace(q.Get("subcategory")),
	}
}

// expenseFilter reads startDate, endDate and type.
func expenseFilter(q url.Values) core.ListFilter {
	return core.ListFilter{
		DateFrom: strings.TrimSpace(q.Get("startDate")),
		DateTo:   strings.TrimSpace(q.Get("endDate")),
		Type:     strings.TrimSpace(q.Get("type")),
	}
}
