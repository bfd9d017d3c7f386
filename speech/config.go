package speech

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/tugalearn/fala/speech/engines/local"
	"github.com/tugalearn/fala/speech/voice"
)

// Config holds the gateway settings. It is loaded once and treated as
// read-only; re-configuration replaces the whole value atomically via
// Orchestrator.SetConfig.
type Config struct {
	// ServerURL is the base URL of the remote neural speech service.
	ServerURL string `yaml:"server_url" env:"FALA_SERVER_URL" envDefault:"http://localhost:8000"`

	// Timeout bounds every network probe and synthesis request.
	Timeout time.Duration `yaml:"timeout" env:"FALA_TIMEOUT" envDefault:"5s"`

	// DefaultVoice must resolve to a real catalog entry.
	DefaultVoice string `yaml:"default_voice" env:"FALA_DEFAULT_VOICE" envDefault:"pt-PT-RaquelNeural"`

	// DefaultLocale is used when a speak call carries no locale hint.
	DefaultLocale voice.Locale `yaml:"default_locale" env:"FALA_DEFAULT_LOCALE" envDefault:"pt-PT"`

	// RequestsPerMinute throttles remote synthesis calls.
	RequestsPerMinute int `yaml:"requests_per_minute" env:"FALA_REQUESTS_PER_MINUTE" envDefault:"60"`

	// Local configures the host fallback engine.
	Local local.Config `yaml:"local"`
}

// Config validation errors.
var (
	ErrNoServerURL     = errors.New("speech: server URL is empty")
	ErrBadTimeout      = errors.New("speech: timeout must be positive")
	ErrBadDefaultVoice = errors.New("speech: default voice not in catalog")
	ErrBadLocale       = errors.New("speech: unsupported default locale")
)

// DefaultConfig returns the settings the learning app ships with.
func DefaultConfig() Config {
	return Config{
		ServerURL:         "http://localhost:8000",
		Timeout:           5 * time.Second,
		DefaultVoice:      voice.DefaultVoiceID,
		DefaultLocale:     voice.LocalePortugal,
		RequestsPerMinute: 60,
		Local: local.Config{
			WordsPerMinute: 150,
		},
	}
}

// LoadConfig builds a config from defaults overridden by FALA_* environment
// variables.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// Validate checks the config against the given catalog. Misconfiguration is
// rejected before any state mutation.
func (c Config) Validate(catalog *voice.Catalog) error {
	if c.ServerURL == "" {
		return ErrNoServerURL
	}
	if c.Timeout <= 0 {
		return ErrBadTimeout
	}
	if _, ok := catalog.Lookup(c.DefaultVoice); !ok {
		return fmt.Errorf("%w: %q", ErrBadDefaultVoice, c.DefaultVoice)
	}
	if c.DefaultLocale != voice.LocalePortugal && c.DefaultLocale != voice.LocaleBrazil {
		return fmt.Errorf("%w: %q", ErrBadLocale, c.DefaultLocale)
	}
	return nil
}
