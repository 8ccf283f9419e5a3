// Package config loads scimpact settings from an optional YAML file, overlays
// environment variables, and validates the result.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Environment variables read by ApplyEnv.
const (
	EnvSPARQLEndpoint   = "SPARQL_ENDPOINT"
	EnvModelName        = "HF_MODEL_NAME"
	EnvModelCredential  = "HUGGINGFACE_TOKEN"
	EnvNarrativeBaseURL = "NARRATIVE_BASE_URL"
	EnvLogLevel         = "SCIMPACT_LOG_LEVEL"
)

// Store backends.
const (
	BackendSPARQL = "sparql"
	BackendMemory = "memory"
	BackendKuzu   = "kuzu"
)

// DefaultModel is the model identity used when none is configured.
const DefaultModel = "google/flan-t5-base"

// ErrMissingEndpoint is wrapped by the ValidationError raised when the
// SPARQL backend has no endpoint.
var ErrMissingEndpoint = errors.New("store endpoint not set")

// Config holds every runtime setting.
type Config struct {
	Store     StoreConfig     `yaml:"store"`
	Narrative NarrativeConfig `yaml:"narrative"`
	Traversal TraversalConfig `yaml:"traversal"`
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// StoreConfig selects and configures the graph backend.
type StoreConfig struct {
	Backend  string        `yaml:"backend" validate:"oneof=sparql memory kuzu"`
	Endpoint string        `yaml:"endpoint,omitempty" validate:"omitempty,url"`
	Timeout  time.Duration `yaml:"timeout" validate:"gt=0"`
	// KuzuPath is the database directory for the kuzu backend; empty means
	// an in-memory database.
	KuzuPath string `yaml:"kuzuPath,omitempty"`
	// Fixture is a YAML graph fixture loaded into memory or kuzu backends.
	Fixture string `yaml:"fixture,omitempty"`
}

// NarrativeConfig configures the optional narration stage.
type NarrativeConfig struct {
	Enabled         bool          `yaml:"enabled"`
	BaseURL         string        `yaml:"baseURL,omitempty" validate:"omitempty,url"`
	Model           string        `yaml:"model,omitempty"`
	Credential      string        `yaml:"credential,omitempty"`
	Timeout         time.Duration `yaml:"timeout" validate:"gt=0"`
	MaxOutputLength int           `yaml:"maxOutputLength" validate:"gt=0"`
	Deterministic   bool          `yaml:"deterministic"`
}

// TraversalConfig bounds graph traversal.
type TraversalConfig struct {
	MaxDepth int `yaml:"maxDepth" validate:"gt=0,lte=1024"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr" validate:"required"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=console json"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Backend: BackendSPARQL,
			Timeout: 30 * time.Second,
		},
		Narrative: NarrativeConfig{
			Enabled:         true,
			Model:           DefaultModel,
			Timeout:         60 * time.Second,
			MaxOutputLength: 512,
			Deterministic:   true,
		},
		Traversal: TraversalConfig{MaxDepth: 32},
		Server:    ServerConfig{Addr: ":8080"},
		Logging:   LoggingConfig{Level: "info", Format: "console"},
	}
}

// Load reads path over the defaults. An empty path, or a path that does not
// exist, yields the defaults rather than an error. Environment overrides are
// not applied; see ApplyEnv.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overlays non-empty environment variables, read through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvSPARQLEndpoint); v != "" {
		c.Store.Endpoint = v
	}
	if v := getenv(EnvModelName); v != "" {
		c.Narrative.Model = v
	}
	if v := getenv(EnvModelCredential); v != "" {
		c.Narrative.Credential = v
	}
	if v := getenv(EnvNarrativeBaseURL); v != "" {
		c.Narrative.BaseURL = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
}

// ValidationError reports every invalid field found by Validate.
type ValidationError struct {
	Fields []FieldError
	// Err is ErrMissingEndpoint when the SPARQL endpoint is absent.
	Err error
}

// FieldError is one invalid setting.
type FieldError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Reason)
	}
	return "config: invalid configuration: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return e.Err }

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and backend requirements. A SPARQL
// backend without an endpoint yields a ValidationError wrapping
// ErrMissingEndpoint.
func (c *Config) Validate() error {
	verr := &ValidationError{}
	if err := validate.Struct(c); err != nil {
		var ves validator.ValidationErrors
		if !errors.As(err, &ves) {
			return fmt.Errorf("config: validate: %w", err)
		}
		for _, fe := range ves {
			verr.Fields = append(verr.Fields, FieldError{
				Field:  strings.TrimPrefix(fe.Namespace(), "Config."),
				Reason: describe(fe),
			})
		}
	}
	if c.Store.Backend == BackendSPARQL && strings.TrimSpace(c.Store.Endpoint) == "" {
		verr.Fields = append(verr.Fields, FieldError{
			Field:  "Store.Endpoint",
			Reason: fmt.Sprintf("required for the sparql backend (set %s)", EnvSPARQLEndpoint),
		})
		verr.Err = ErrMissingEndpoint
	}
	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("must be one of [%s], got %q", fe.Param(), fmt.Sprint(fe.Value()))
	case "url":
		return fmt.Sprintf("must be an absolute URL, got %q", fmt.Sprint(fe.Value()))
	case "required":
		return "is required"
	default:
		return fmt.Sprintf("failed %s=%s (got %v)", fe.Tag(), fe.Param(), fe.Value())
	}
}
