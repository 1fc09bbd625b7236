// Package http provides the JSON API server and its handlers.
//
// This file implements the parsing of path, query and body values shared
// by the handlers. Parse failures are reported as core validation errors so
// they map to the same status as domain validation.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"saldo/internal/core"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// MonthParams holds parsed year/month values from request parameters.
type MonthParams struct {
	Year  int
	Month int
}

// ParseMonthParams extracts year and month from the query, defaulting to
// the month of today.
func ParseMonthParams(query url.Values, today core.Date) (MonthParams, error) {
	params := MonthParams{Year: today.Year(), Month: today.Month()}

	if v := strings.TrimSpace(query.Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1900 || y > 9999 {
			return MonthParams{}, core.NewValidationError("year", "must be a valid year")
		}
		params.Year = y
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			return MonthParams{}, core.NewValidationError("month", "must be between 1 and 12")
		}
		params.Month = m
	}
	return params, nil
}

// ParseDateParam reads an optional YYYY-MM-DD query value.
func ParseDateParam(query url.Values, key string) (core.Date, error) {
	v := strings.TrimSpace(query.Get(key))
	if v == "" {
		return core.Date{}, nil
	}
	d, err := core.ParseDate(v)
	if err != nil {
		return core.Date{}, core.NewValidationError(key, "must be a date in YYYY-MM-DD format")
	}
	return d, nil
}

// ParseFilter reads the transaction filter shared by listing and export:
// kind, category_id, from, to.
func ParseFilter(query url.Values) (core.TransactionFilter, error) {
	var f core.TransactionFilter

	if v := strings.TrimSpace(query.Get("kind")); v != "" {
		f.Kind = core.CategoryKind(strings.ToLower(v))
		if !f.Kind.Valid() {
			return f, core.NewValidationError("kind", "must be income or expense")
		}
	}
	if v := strings.TrimSpace(query.Get("category_id")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return f, core.NewValidationError("category_id", "must be a positive integer")
		}
		f.CategoryID = id
	}

	var err error
	if f.From, err = ParseDateParam(query, "from"); err != nil {
		return f, err
	}
	if f.To, err = ParseDateParam(query, "to"); err != nil {
		return f, err
	}
	if !f.From.IsEmpty() && !f.To.IsEmpty() && f.To.Before(f.From.Time) {
		return f, core.NewValidationError("to", "must not be before from")
	}
	return f, nil
}

// ParseLimit reads the optional limit query value; 0 means no limit.
func ParseLimit(query url.Values) (int, error) {
	v := strings.TrimSpace(query.Get("limit"))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, core.NewValidationError("limit", "must be a non-negative integer")
	}
	return n, nil
}

// PathID parses the {id} wildcard of the matched route.
func PathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, core.NewValidationError("id", "must be a positive integer")
	}
	return id, nil
}

// DecodeJSON decodes a single JSON object from the request body into dst,
// rejecting unknown fields and oversized bodies.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		return core.NewValidationError("body", "content type must be application/json")
	}

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return bodyError(err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return core.NewValidationError("body", "must contain a single JSON object")
	}
	return nil
}

func bodyError(err error) error {
	var (
		syntaxErr   *json.SyntaxError
		typeErr     *json.UnmarshalTypeError
		maxBytesErr *http.MaxBytesError
	)
	switch {
	case errors.Is(err, io.EOF):
		return core.NewValidationError("body", "must not be empty")
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return core.NewValidationError("body", "malformed JSON")
	case errors.As(err, &typeErr):
		return core.NewValidationError(typeErr.Field, fmt.Sprintf("must be of type %s", typeErr.Type))
	case errors.As(err, &maxBytesErr):
		return core.NewValidationError("body", "too large")
	case errors.Is(err, core.ErrInvalidAmount):
		return core.NewValidationError("amount", "must be a decimal string such as \"12.50\"")
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		return core.NewValidationError(strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`), "unknown field")
	default:
		return core.NewValidationError("body", err.Error())
	}
}
