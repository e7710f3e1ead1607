package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jonathan/job-recommender/internal/engine"
	"github.com/jonathan/job-recommender/internal/upskill"
	"github.com/stretchr/testify/assert"
)

func TestErrValidation(t *testing.T) {
	err := &ErrValidation{Field: "user_skills", Message: "is required"}
	assert.Equal(t, "validation error: user_skills - is required", err.Error())
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &ErrValidation{Field: "f", Message: "m"}, http.StatusBadRequest},
		{"wrapped validation", fmt.Errorf("decode: %w", &ErrValidation{}), http.StatusBadRequest},
		{"media type", &ErrUnsupportedMediaType{ContentType: "image/png"}, http.StatusUnsupportedMediaType},
		{"configuration", &engine.ConfigurationError{Resource: "job corpus", Message: "failed to load"}, http.StatusServiceUnavailable},
		{"upskill unavailable", upskill.ErrUnavailable, http.StatusServiceUnavailable},
		{"generation", &upskill.GenerationError{Cause: errors.New("quota")}, http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
