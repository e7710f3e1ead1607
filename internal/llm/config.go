// Package llm wraps the generative model used for upskilling suggestions.
package llm

// Provider represents an LLM provider
type Provider string

// ProviderGemini is the Google Gemini provider
const ProviderGemini Provider = "gemini"

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// Config holds the model configuration for the application
type Config struct {
	Provider Provider
	Model    string
	// Temperature overrides the model default when set.
	Temperature *float32
}

// DefaultConfig returns the default Gemini configuration
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Model:    DefaultModel,
	}
}

// WithModel returns a copy of c using model. An empty model keeps the current one.
func (c *Config) WithModel(model string) *Config {
	out := *c
	if model != "" {
		out.Model = model
	}
	return &out
}

// ModelName returns the model name without the "models/" resource prefix.
func (c *Config) ModelName() string {
	const prefix = "models/"
	if len(c.Model) > len(prefix) && c.Model[:len(prefix)] == prefix {
		return c.Model[len(prefix):]
	}
	return c.Model
}
