// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors for domain layer.
var (
	ErrNotFound       = errors.New("resource not found")
	ErrDuplicate      = errors.New("duplicate entry")
	ErrValidation     = errors.New("validation failed")
	ErrInvalidRange   = errors.New("invalid date range")
	ErrExternalSystem = errors.New("external system failure")
	ErrPersistence    = errors.New("persistence failure")
)

// RespondError maps domain errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrDuplicate):
		Problem(w, http.StatusConflict, "Duplicate", err.Error())
	case errors.Is(err, ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrInvalidRange):
		Problem(w, http.StatusBadRequest, "Invalid Range", err.Error())
	case errors.Is(err, ErrExternalSystem):
		Problem(w, http.StatusBadGateway, "External System Failure", err.Error())
	case errors.Is(err, ErrPersistence):
		Problem(w, http.StatusServiceUnavailable, "Persistence Failure", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
