// Package http provides the JSON API server and its handlers.
//
// This file implements the builder used by every handler to write JSON
// bodies, and the mapping from domain error kinds to status codes.

package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"saldo/internal/core"
)

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	headers    map[string]string
	body       any
}

// ErrorBody is the payload of every non-2xx response.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Body sets the value to encode; nil writes no body.
func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.body == nil {
		w.WriteHeader(b.statusCode)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	if err := json.NewEncoder(w).Encode(b.body); err != nil {
		slog.Error("Failed to encode JSON response", "error", err, "status_code", b.statusCode)
	}
}

// ErrorResponse creates an error response with the given code and message.
func ErrorResponse(statusCode int, code, message string) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(statusCode).
		Body(ErrorBody{Error: code, Message: message})
}

func BadRequestError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, "bad_request", message)
}

func UnauthorizedError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusUnauthorized, "unauthorized", message)
}

func NotFoundError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusNotFound, "not_found", message)
}

func ConflictError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusConflict, "constraint_violation", message)
}

func UnprocessableEntityError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusUnprocessableEntity, "validation", message)
}

func TooManyRequestsError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusTooManyRequests, "rate_limited", "rate limit exceeded, try again later")
}

func ServiceUnavailableError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusServiceUnavailable, "unavailable", message)
}

func InternalServerError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, "internal", "internal server error")
}

// DomainError maps a service error to its response. Unknown errors become
// a 500 without leaking the error text.
func DomainError(err error) *JSONResponseBuilder {
	var ve *core.ValidationError
	switch {
	case errors.As(err, &ve):
		resp := UnprocessableEntityError(ve.Message)
		resp.body = ErrorBody{Error: "validation", Message: ve.Message, Field: ve.Field}
		return resp
	case errors.Is(err, core.ErrValidation):
		return UnprocessableEntityError(err.Error())
	case errors.Is(err, core.ErrInvalidCalendarDate):
		return ErrorResponse(http.StatusUnprocessableEntity, "invalid_calendar_date", err.Error())
	case errors.Is(err, core.ErrNotFound):
		return NotFoundError(err.Error())
	case errors.Is(err, core.ErrConstraintViolation):
		return ConflictError(err.Error())
	default:
		return InternalServerError()
	}
}
