// Package apierror holds the JSON error envelopes of the API. Handlers never
// write raw error strings from lower layers; they go through these types.
package apierror

import "fmt"

// APIError is the body of every 4xx/5xx response: {"detail": "..."}.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

func Newf(format string, a ...interface{}) *APIError {
	return &APIError{Detail: fmt.Sprintf(format, a...)}
}

// ValidationError is the 422 body. Fields maps the JSON name of each invalid
// field (items[0].cantidad) to the failed rule (min, required, oneof...).
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validación", Fields: fields}
}
