// Package bridge mirrors the legacy speech surface 1:1 for the lesson
// screens that predate the orchestrator facade. Every name here delegates to
// a process-wide default orchestrator; new code should construct its own
// speech.Orchestrator instead.
package bridge

import (
	"context"
	"sync"

	"github.com/tugalearn/fala/speech"
	"github.com/tugalearn/fala/speech/health"
	"github.com/tugalearn/fala/speech/voice"
)

// TTSConfig is the configuration the default orchestrator starts with.
// Replace it with Configure before the first call.
var TTSConfig = speech.DefaultConfig()

// TTSEngines names the two serving backends.
var TTSEngines = struct {
	Neural voice.Engine
	Host   voice.Engine
}{
	Neural: voice.EngineNeural,
	Host:   voice.EngineHost,
}

// TTSLocales names the two supported locales.
var TTSLocales = struct {
	Portugal voice.Locale
	Brazil   voice.Locale
}{
	Portugal: voice.LocalePortugal,
	Brazil:   voice.LocaleBrazil,
}

// EdgeVoices is the full voice registry in catalog order.
var EdgeVoices = voice.Default().Voices().All

var (
	defaultMu   sync.Mutex
	defaultOrch *speech.Orchestrator
)

func orchestrator() *speech.Orchestrator {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultOrch == nil {
		o, err := speech.New(TTSConfig)
		if err != nil {
			// TTSConfig was replaced with something invalid; fall back to
			// the shipped defaults rather than crash the lesson screen.
			o, _ = speech.New(speech.DefaultConfig())
		}
		defaultOrch = o
	}
	return defaultOrch
}

// Configure atomically replaces the default orchestrator's configuration.
func Configure(cfg speech.Config) error {
	defaultMu.Lock()
	TTSConfig = cfg
	o := defaultOrch
	defaultMu.Unlock()

	if o == nil {
		// Not constructed yet; the next call picks up TTSConfig.
		return cfg.Validate(voice.Default())
	}
	return o.SetConfig(cfg)
}

// CheckServerHealth probes the speech server once and refreshes the cached
// status. It never returns an error; failures fold into false.
func CheckServerHealth(ctx context.Context) bool {
	return orchestrator().CheckServerHealth(ctx)
}

// GetServerStatus returns the cached health snapshot without network I/O.
func GetServerStatus() health.Status {
	return orchestrator().ServerStatus()
}

// GetAvailableVoices returns the catalog's grouped views.
func GetAvailableVoices() voice.Overview {
	return orchestrator().Voices()
}

// GetVoice looks up a voice by id; unknown ids report ok=false.
func GetVoice(id string) (voice.Descriptor, bool) {
	return orchestrator().Voice(id)
}

// GetRecommendedVoice picks a voice for the gender/locale pair using the
// catalog's deterministic three-tier rule.
func GetRecommendedVoice(gender voice.Gender, locale voice.Locale) (voice.Descriptor, bool) {
	return orchestrator().RecommendedVoice(gender, locale)
}

// Speak pronounces the text, preferring the neural server and falling back
// to the host engine. Blocks until the utterance ends or is superseded.
func Speak(ctx context.Context, text string, opts speech.Options) error {
	return orchestrator().Speak(ctx, text, opts)
}

// Stop silences any in-flight utterance. Idempotent.
func Stop() {
	orchestrator().Stop()
}

// IsSpeaking reports whether an utterance is busy (requesting or playing).
func IsSpeaking() bool {
	return orchestrator().IsSpeaking()
}
