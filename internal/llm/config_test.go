package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, ProviderGemini, config.Provider)
	assert.Equal(t, "gemini-2.5-flash", config.Model)
	assert.Nil(t, config.Temperature)
}

func TestWithModel(t *testing.T) {
	config := DefaultConfig()

	custom := config.WithModel("gemini-2.5-pro")
	assert.Equal(t, "gemini-2.5-pro", custom.Model)
	assert.Equal(t, DefaultModel, config.Model, "original is unchanged")

	assert.Equal(t, DefaultModel, config.WithModel("").Model)
}

func TestModelName(t *testing.T) {
	tests := []struct {
		model    string
		expected string
	}{
		{"gemini-2.5-flash", "gemini-2.5-flash"},
		{"models/gemini-2.5-flash", "gemini-2.5-flash"},
		{"models/", "models/"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			cfg := &Config{Model: tt.model}
			assert.Equal(t, tt.expected, cfg.ModelName())
		})
	}
}

func TestNewClient_Errors(t *testing.T) {
	_, err := NewClient(context.Background(), nil, "")
	assert.ErrorIs(t, err, ErrNoAPIKey)

	_, err = NewClient(context.Background(), &Config{Provider: "openai"}, "key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported LLM provider")
}
