// Package config handles loading and validating Prompter configuration.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the top-level configuration for a Prompter run. It mirrors the
// settings surface the notebook host hands us: which provider/model to talk
// to, generation defaults, and per-provider credentials and overrides.
type Config struct {
	// Provider is the id of the active LLM provider, e.g. "openai".
	Provider string `koanf:"provider"`

	// Model overrides the provider's default model when set.
	Model string `koanf:"model"`

	// Generation defaults. Temperature and TopP are pointers so we can
	// tell "not configured" apart from an explicit 0; the completion
	// layer applies its own defaults (0.7 / 1.0) when these are nil.
	Temperature *float64 `koanf:"temperature"`
	MaxTokens   int      `koanf:"max_tokens"`
	TopP        *float64 `koanf:"top_p"`

	// Timeout is handed to the underlying HTTP client as-is.
	Timeout time.Duration `koanf:"timeout"`

	Retry RetryConfig `koanf:"retry"`

	// Providers holds per-provider credentials and optional overrides,
	// keyed by provider id.
	Providers map[string]ProviderConfig `koanf:"providers"`
}

// RetryConfig controls the transport's transient-status retry loop.
type RetryConfig struct {
	MaxAttempts int           `koanf:"max_attempts"`
	Pause       time.Duration `koanf:"pause"`
}

// ProviderConfig holds the settings for a single LLM provider.
type ProviderConfig struct {
	APIKey string `koanf:"api_key"`

	// Endpoint overrides the provider's default endpoint. Required for
	// the "custom" provider, optional everywhere else.
	Endpoint string `koanf:"endpoint"`

	// Model overrides the model for this provider specifically. The
	// top-level Model wins when both are set.
	Model string `koanf:"model"`
}

// Defaults applied when the config file leaves a knob unset.
const (
	DefaultTimeout       = 60 * time.Second
	DefaultRetryAttempts = 3
	DefaultRetryPause    = time.Second
)

// Load reads configuration from a YAML file, layers environment variable
// overrides on top, and returns a fully populated Config.
func Load(path string) (*Config, error) {
	// Load .env file into the process environment (ignored if not present).
	_ = godotenv.Load()

	// The "." delimiter tells koanf how to separate nested keys
	// internally (e.g., "retry.max_attempts").
	k := koanf.New(".")

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("loading config file: %w", err)
	}

	// Layer environment variables on top. Any env var starting with
	// "PROMPTER_" can override a config value. Double underscores map to
	// nesting so that keys which themselves contain underscores survive:
	//   PROMPTER_MODEL               -> model
	//   PROMPTER_MAX_TOKENS          -> max_tokens
	//   PROMPTER_RETRY__MAX_ATTEMPTS -> retry.max_attempts
	if err := k.Load(env.Provider("PROMPTER_", ".", func(s string) string {
		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, "PROMPTER_")),
			"__", ".",
		)
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Expand ${VAR_NAME} placeholders in provider API keys. koanf doesn't
	// do this automatically, so we handle it ourselves with os.Getenv.
	for name, p := range cfg.Providers {
		if strings.HasPrefix(p.APIKey, "${") && strings.HasSuffix(p.APIKey, "}") {
			envVar := p.APIKey[2 : len(p.APIKey)-1] // strip ${ and }
			p.APIKey = os.Getenv(envVar)
			cfg.Providers[name] = p // write back into the map
		}
	}

	cfg.applyDefaults()

	return &cfg, nil
}

// applyDefaults fills in the knobs the file left at their zero values.
// Generation parameters (temperature, max_tokens, top_p) are deliberately
// NOT defaulted here; the completion layer resolves those per call so the
// same resolved values feed payload building and result metadata.
func (c *Config) applyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Retry.MaxAttempts <= 0 {
		c.Retry.MaxAttempts = DefaultRetryAttempts
	}
	if c.Retry.Pause <= 0 {
		c.Retry.Pause = DefaultRetryPause
	}
}

// ProviderSettings returns the per-provider block for the given id, or a
// zero value when the config has none.
func (c *Config) ProviderSettings(id string) ProviderConfig {
	return c.Providers[id]
}
