// Package server provides the HTTP API for resume analysis and job
// recommendations.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/job-recommender/internal/engine"
	"github.com/jonathan/job-recommender/internal/upskill"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrUnsupportedMediaType is returned for request bodies the handler cannot read.
type ErrUnsupportedMediaType struct {
	ContentType string
}

func (e *ErrUnsupportedMediaType) Error() string {
	return fmt.Sprintf("unsupported content type: %s", e.ContentType)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validationErr *ErrValidation
		mediaErr      *ErrUnsupportedMediaType
		configErr     *engine.ConfigurationError
	)
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &mediaErr):
		return http.StatusUnsupportedMediaType
	case errors.As(err, &configErr), errors.Is(err, upskill.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
