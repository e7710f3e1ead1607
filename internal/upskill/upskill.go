// Package upskill asks a generative model for a job role and courses that fit
// a user's skills.
package upskill

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jonathan/job-recommender/internal/llm"
	"github.com/jonathan/job-recommender/internal/prompts"
)

// ErrUnavailable is returned when no model client is configured.
var ErrUnavailable = errors.New("upskill suggestions unavailable: GEMINI_API_KEY not set")

// GenerationError wraps a failed model call.
type GenerationError struct {
	Cause error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("error generating upskilling suggestions: %v", e.Cause)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// Service produces upskilling suggestions. A Service without a client
// reports ErrUnavailable.
type Service struct {
	client llm.Client
}

// New creates a service backed by client, which may be nil.
func New(client llm.Client) *Service {
	return &Service{client: client}
}

// NewFromConfig builds a Gemini-backed service. An empty apiKey yields a
// disabled service and a warning.
func NewFromConfig(ctx context.Context, apiKey, model string) (*Service, error) {
	if apiKey == "" {
		slog.Warn("GEMINI_API_KEY not set, /upskill_suggestions will be unavailable")
		return New(nil), nil
	}
	client, err := llm.NewClient(ctx, llm.DefaultConfig().WithModel(model), apiKey)
	if err != nil {
		return nil, err
	}
	return New(client), nil
}

// Available reports whether suggestions can be generated.
func (s *Service) Available() bool {
	return s != nil && s.client != nil
}

// BuildRequest renders the prompt for skills.
func BuildRequest(skills []string) llm.Request {
	tmpl := prompts.Upskill()
	user := prompts.Format(tmpl.User, map[string]string{
		"Skills": strings.Join(skills, ","),
	})
	system := prompts.Format(tmpl.System, map[string]string{
		"Prompt": user,
	})
	return llm.Request{System: system, Prompt: user}
}

// Suggest returns the model's free-text suggestions for skills.
func (s *Service) Suggest(ctx context.Context, skills []string) (string, error) {
	if !s.Available() {
		return "", ErrUnavailable
	}

	text, err := s.client.Generate(ctx, BuildRequest(skills))
	if err != nil {
		return "", &GenerationError{Cause: err}
	}
	slog.Debug("upskill suggestions generated",
		slog.Int("skills", len(skills)),
		slog.Int("chars", len(text)))
	return text, nil
}

// Close releases the model client.
func (s *Service) Close() error {
	if !s.Available() {
		return nil
	}
	return s.client.Close()
}
