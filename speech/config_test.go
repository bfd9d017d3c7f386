package speech

import (
	"errors"
	"testing"
	"time"

	"github.com/tugalearn/fala/speech/voice"
)

// TestDefaultConfigIsValid guards the shipped defaults against catalog
// drift.
func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(voice.Default()); err != nil {
		t.Fatalf("DefaultConfig().Validate() error = %v", err)
	}
}

// TestConfigValidate covers each misconfiguration class.
func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"empty server url", func(c *Config) { c.ServerURL = "" }, ErrNoServerURL},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, ErrBadTimeout},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }, ErrBadTimeout},
		{"unknown default voice", func(c *Config) { c.DefaultVoice = "pt-PT-GhostNeural" }, ErrBadDefaultVoice},
		{"unsupported locale", func(c *Config) { c.DefaultLocale = "en-US" }, ErrBadLocale},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(voice.Default()); !errors.Is(err, tt.want) {
				t.Errorf("Validate() error = %v, want %v", err, tt.want)
			}
		})
	}
}

// TestLoadConfigDefaults verifies env parsing fills the envDefault values
// when nothing is set.
func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.DefaultVoice != voice.DefaultVoiceID {
		t.Errorf("default voice = %q, want %q", cfg.DefaultVoice, voice.DefaultVoiceID)
	}
	if cfg.Timeout <= 0 {
		t.Errorf("timeout = %v, want positive", cfg.Timeout)
	}
}

// TestLoadConfigEnvOverride verifies FALA_* variables override the
// defaults.
func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("FALA_SERVER_URL", "http://tts.example.test:9000")
	t.Setenv("FALA_TIMEOUT", "2s")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.ServerURL != "http://tts.example.test:9000" {
		t.Errorf("server url = %q, want the env override", cfg.ServerURL)
	}
	if cfg.Timeout != 2*time.Second {
		t.Errorf("timeout = %v, want 2s", cfg.Timeout)
	}
}
