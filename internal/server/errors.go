package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/cv-tailor/internal/ingestion"
	"github.com/jonathan/cv-tailor/internal/pipeline"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrNotConfigured indicates the server lacks a setting the request needs, such as a model API key.
type ErrNotConfigured struct {
	Message string
}

func (e *ErrNotConfigured) Error() string {
	return e.Message
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var validationErr *ErrValidation
	var fetchErr *ingestion.FetchError
	var tooLarge *http.MaxBytesError

	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &validationErr),
		errors.As(err, &fetchErr),
		errors.Is(err, pipeline.ErrMissingCV),
		errors.Is(err, pipeline.ErrMissingJobDescription):
		return http.StatusBadRequest
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}
