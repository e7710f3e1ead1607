// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Scraper implementations selectable by configuration.
const (
	ScraperHTTP = "http"
	ScraperNoop = "noop"
)

// Default values applied by Defaults.
const (
	DefaultCorpusSource = "data/job_data.csv"
	DefaultScraperURL   = "https://jobs.python.org/"
	DefaultGeminiModel  = "gemini-2.5-flash"
	DefaultPort         = 8000
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
)

// DefaultAllowedOrigins are the local frontend dev servers.
var DefaultAllowedOrigins = []string{
	"http://localhost:8080",
	"http://127.0.0.1:8080",
	"http://localhost:5173",
	"http://127.0.0.1:5173",
}

// Config represents the configuration that can be loaded from a JSON or YAML file.
// All fields are optional; missing values use defaults, environment variables or CLI flags.
type Config struct {
	// Data sources
	CorpusSource string `json:"corpus_source,omitempty" yaml:"corpus_source,omitempty"` // CSV path, sqlite:// path or postgres:// URL
	SkillWeights string `json:"skill_weights,omitempty" yaml:"skill_weights,omitempty"` // Path to the role/skill weight table
	SkillCatalog string `json:"skill_catalog,omitempty" yaml:"skill_catalog,omitempty"` // Path to the skills CSV (embedded list if empty)

	// Logging
	LogLevel  string `json:"log_level,omitempty" yaml:"log_level,omitempty" validate:"omitempty,oneof=debug info warn error"`
	LogFormat string `json:"log_format,omitempty" yaml:"log_format,omitempty" validate:"omitempty,oneof=text json"`

	// Scraper
	Scraper            string  `json:"scraper,omitempty" yaml:"scraper,omitempty" validate:"omitempty,oneof=http noop"`
	ScraperURL         string  `json:"scraper_url,omitempty" yaml:"scraper_url,omitempty" validate:"omitempty,url"`
	ScraperDetailPages bool    `json:"scraper_detail_pages,omitempty" yaml:"scraper_detail_pages,omitempty"`
	ScraperRate        float64 `json:"scraper_rate,omitempty" yaml:"scraper_rate,omitempty" validate:"gte=0"` // Detail page requests per second
	UseBrowser         bool    `json:"use_browser,omitempty" yaml:"use_browser,omitempty"`                    // Use headless browser for SPA sites

	// Upskill suggestions
	GeminiAPIKey string `json:"gemini_api_key,omitempty" yaml:"gemini_api_key,omitempty"`
	GeminiModel  string `json:"gemini_model,omitempty" yaml:"gemini_model,omitempty"`

	// Server
	Port           int      `json:"port,omitempty" yaml:"port,omitempty" validate:"omitempty,min=1,max=65535"`
	AdminJWTSecret string   `json:"admin_jwt_secret,omitempty" yaml:"admin_jwt_secret,omitempty"`
	AllowedOrigins []string `json:"allowed_origins,omitempty" yaml:"allowed_origins,omitempty" validate:"dive,url"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		CorpusSource:   DefaultCorpusSource,
		LogLevel:       DefaultLogLevel,
		LogFormat:      DefaultLogFormat,
		Scraper:        ScraperHTTP,
		ScraperURL:     DefaultScraperURL,
		ScraperRate:    1,
		GeminiModel:    DefaultGeminiModel,
		Port:           DefaultPort,
		AllowedOrigins: append([]string(nil), DefaultAllowedOrigins...),
	}
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by extension.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// ApplyEnv overrides fields from environment variables that are set.
// getenv is usually os.Getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	setString := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}

	setString(&c.CorpusSource, "JOBMATCH_CORPUS")
	setString(&c.SkillWeights, "JOBMATCH_SKILL_WEIGHTS")
	setString(&c.SkillCatalog, "JOBMATCH_SKILL_CATALOG")
	setString(&c.Scraper, "JOBMATCH_SCRAPER")
	setString(&c.GeminiAPIKey, "GEMINI_API_KEY")
	setString(&c.AdminJWTSecret, "ADMIN_JWT_SECRET")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.LogFormat, "LOG_FORMAT")

	if v := getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Port = port
		}
	}
	if v := getenv("JOBMATCH_ALLOWED_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.AllowedOrigins = origins
	}
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those depend on the
// command being run.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	if c.SkillWeights != "" {
		if _, err := os.Stat(c.SkillWeights); os.IsNotExist(err) {
			return fmt.Errorf("config error: skill weights file not found: %s", c.SkillWeights)
		}
	}
	if c.SkillCatalog != "" {
		if _, err := os.Stat(c.SkillCatalog); os.IsNotExist(err) {
			return fmt.Errorf("config error: skill catalog file not found: %s", c.SkillCatalog)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.CorpusSource == "" {
		result.CorpusSource = defaults.CorpusSource
	}
	if result.SkillWeights == "" {
		result.SkillWeights = defaults.SkillWeights
	}
	if result.SkillCatalog == "" {
		result.SkillCatalog = defaults.SkillCatalog
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if result.LogFormat == "" {
		result.LogFormat = defaults.LogFormat
	}
	if result.Scraper == "" {
		result.Scraper = defaults.Scraper
	}
	if result.ScraperURL == "" {
		result.ScraperURL = defaults.ScraperURL
	}
	if result.GeminiAPIKey == "" {
		result.GeminiAPIKey = defaults.GeminiAPIKey
	}
	if result.GeminiModel == "" {
		result.GeminiModel = defaults.GeminiModel
	}
	if result.AdminJWTSecret == "" {
		result.AdminJWTSecret = defaults.AdminJWTSecret
	}

	// Numeric fields: use default if zero
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.ScraperRate == 0 {
		result.ScraperRate = defaults.ScraperRate
	}

	if len(result.AllowedOrigins) == 0 {
		result.AllowedOrigins = append([]string(nil), defaults.AllowedOrigins...)
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
