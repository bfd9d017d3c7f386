// Package speech is the client-side speech gateway of the learning app: it
// resolves a voice from the catalog, decides between the remote neural
// engine and the host fallback, and runs the lifecycle of the single live
// utterance.
package speech

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/tugalearn/fala/speech/audio"
	"github.com/tugalearn/fala/speech/engines/local"
	"github.com/tugalearn/fala/speech/engines/remote"
	"github.com/tugalearn/fala/speech/health"
	"github.com/tugalearn/fala/speech/voice"
)

// Engine converts text to a playable clip for one backend.
type Engine interface {
	// Name identifies the engine in logs and utterance snapshots.
	Name() string

	// Synthesize converts text to audio, honoring ctx for cancellation.
	Synthesize(ctx context.Context, text string, v voice.Descriptor) (*audio.Clip, error)
}

// Options carries the voice hints of one speak call. All fields are
// optional.
type Options struct {
	// VoiceID selects a concrete catalog entry when it resolves.
	VoiceID string

	// Gender and Locale feed the recommendation lookup when VoiceID is
	// absent or unknown.
	Gender voice.Gender
	Locale voice.Locale

	// EngineHint forces a backend: EngineNeural attempts the remote service
	// even when the cached status says unavailable, EngineHost skips the
	// remote path entirely. Empty keeps the health-based decision.
	EngineHint voice.Engine
}

var (
	// ErrEmptyText rejects a speak call with nothing to say. Checked before
	// any state mutation.
	ErrEmptyText = errors.New("speech: text is empty")

	// ErrInterrupted reports that a newer speak call or a stop superseded
	// this utterance. The superseded call's outcome is discarded.
	ErrInterrupted = errors.New("speech: utterance interrupted")

	// ErrSynthesisFailed reports total failure: the remote path (if tried)
	// and the host engine both errored.
	ErrSynthesisFailed = errors.New("speech: all engines failed")
)

// Deps lets callers inject components; zero fields get production
// implementations built from the config.
type Deps struct {
	Catalog *voice.Catalog
	Monitor *health.Monitor
	Remote  Engine
	Local   Engine
	Player  audio.Player
}

// Orchestrator is the public facade of the gateway. One logical utterance is
// live at a time; a newer speak call preempts the older one.
type Orchestrator struct {
	mu        sync.Mutex
	cfg       Config
	catalog   *voice.Catalog
	monitor   *health.Monitor
	remote    Engine
	local     Engine
	player    audio.Player
	utterance Utterance
	cancel    context.CancelFunc

	// ownsRemote marks the remote engine as config-derived, so SetConfig
	// may rebuild it. Injected engines are never replaced.
	ownsRemote bool
}

// New builds an orchestrator with production components.
func New(cfg Config) (*Orchestrator, error) {
	return NewWithDeps(cfg, Deps{})
}

// NewWithDeps builds an orchestrator, filling missing dependencies with
// production implementations.
func NewWithDeps(cfg Config, deps Deps) (*Orchestrator, error) {
	catalog := deps.Catalog
	if catalog == nil {
		catalog = voice.Default()
	}
	if err := cfg.Validate(catalog); err != nil {
		return nil, err
	}

	monitor := deps.Monitor
	if monitor == nil {
		monitor = health.New(cfg.ServerURL, cfg.Timeout)
	}

	o := &Orchestrator{
		cfg:     cfg,
		catalog: catalog,
		monitor: monitor,
		remote:  deps.Remote,
		local:   deps.Local,
		player:  deps.Player,
	}
	if o.remote == nil {
		o.remote = remote.New(remote.Config{
			BaseURL:           cfg.ServerURL,
			Timeout:           cfg.Timeout,
			RequestsPerMinute: cfg.RequestsPerMinute,
		})
		o.ownsRemote = true
	}
	if o.local == nil {
		o.local = local.New(cfg.Local)
	}
	if o.player == nil {
		o.player = audio.NewSpeaker()
	}

	return o, nil
}

// Speak resolves a voice, synthesizes the text, and blocks until the audio
// finishes, the call is superseded, or everything fails. Remote-path
// failures are absorbed by falling back to the host engine; only total
// failure is reported. Starting a new call while one is in flight cancels
// the older generation: the most recent call always wins.
func (o *Orchestrator) Speak(ctx context.Context, text string, opts Options) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyText
	}

	o.mu.Lock()
	v := o.resolveVoiceLocked(opts)
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
	o.player.Stop()

	id := o.utterance.RequestID + 1
	sctx, cancel := context.WithCancel(ctx)
	o.cancel = cancel
	o.utterance = Utterance{Status: StatusRequesting, RequestID: id, Text: text, VoiceID: v.ID}

	useRemote := opts.EngineHint != voice.EngineHost &&
		(opts.EngineHint == voice.EngineNeural || o.monitor.ServerStatus().Available)
	remoteEngine, localEngine, player := o.remote, o.local, o.player
	o.mu.Unlock()

	log.Debug("utterance started", "request", id, "voice", v.ID, "remote", useRemote)

	clip, engineName, err := synthesize(sctx, remoteEngine, localEngine, useRemote, text, v)
	if err != nil {
		return o.conclude(id, err)
	}

	if !o.transition(id, StatusPlaying, engineName) {
		return ErrInterrupted
	}

	return o.conclude(id, player.Play(sctx, clip))
}

// synthesize runs the engine-selection decision for one utterance. Remote
// failures fall back to the host engine unless the utterance itself was
// cancelled.
func synthesize(ctx context.Context, remoteEngine, localEngine Engine, useRemote bool, text string, v voice.Descriptor) (*audio.Clip, string, error) {
	if useRemote {
		clip, err := remoteEngine.Synthesize(ctx, text, v)
		if err == nil {
			return clip, remoteEngine.Name(), nil
		}
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}
		log.Warn("remote synthesis failed, falling back to host engine", "voice", v.ID, "error", err)
	}

	clip, err := localEngine.Synthesize(ctx, text, v)
	if err != nil {
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}
		return nil, "", fmt.Errorf("%w: %v", ErrSynthesisFailed, err)
	}
	return clip, localEngine.Name(), nil
}

// resolveVoiceLocked applies the resolution order: explicit voice id when it
// resolves, then the catalog recommendation for the hinted gender/locale,
// then the configured default. An empty gender simply skips the
// gender-matched tier of the recommendation.
func (o *Orchestrator) resolveVoiceLocked(opts Options) voice.Descriptor {
	if opts.VoiceID != "" {
		if d, ok := o.catalog.Lookup(opts.VoiceID); ok {
			return d
		}
		log.Debug("unknown voice id, resolving by hints", "voice", opts.VoiceID)
	}

	locale := opts.Locale
	if locale == "" {
		locale = o.cfg.DefaultLocale
	}
	if d, ok := o.catalog.Recommended(opts.Gender, locale); ok {
		return d
	}

	if d, ok := o.catalog.Lookup(o.cfg.DefaultVoice); ok {
		return d
	}
	return o.catalog.DefaultVoice()
}

// transition moves the utterance to the given status if the generation is
// still current and the machine allows it.
func (o *Orchestrator) transition(id uint64, to Status, engineName string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.utterance.RequestID != id {
		return false
	}
	if !validTransition(o.utterance.Status, to) {
		return false
	}
	o.utterance.Status = to
	if engineName != "" {
		o.utterance.Engine = engineName
	}
	return true
}

// conclude finishes the utterance identified by id. Stale generations are
// discarded without touching state. A total failure lands in the error
// status with the cause in Err; the next speak or stop resets to idle.
func (o *Orchestrator) conclude(id uint64, err error) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.utterance.RequestID != id {
		return ErrInterrupted
	}
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}

	switch {
	case err == nil:
		o.utterance.Status = StatusIdle
		o.utterance.Err = nil
		return nil
	case errors.Is(err, context.Canceled):
		o.utterance.Status = StatusIdle
		return ErrInterrupted
	default:
		o.utterance.Status = StatusError
		o.utterance.Err = err
		log.Error("utterance failed", "request", id, "error", err)
		return err
	}
}

// Stop silences any in-flight utterance and invalidates its generation so a
// late-arriving completion cannot start playback afterwards. Idempotent and
// safe from any state.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
	o.player.Stop()
	o.utterance = Utterance{Status: StatusIdle, RequestID: o.utterance.RequestID + 1}
}

// IsSpeaking reports whether an utterance is busy. Requesting counts: the
// lesson UI uses this to disable the speak button, and a call that is
// synthesizing but not yet audible is still busy.
func (o *Orchestrator) IsSpeaking() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.utterance.Status == StatusPlaying || o.utterance.Status == StatusRequesting
}

// State returns a snapshot of the current utterance.
func (o *Orchestrator) State() Utterance {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.utterance
}

// CheckServerHealth probes the remote service once, bounded by the
// configured timeout, and refreshes the cached status.
func (o *Orchestrator) CheckServerHealth(ctx context.Context) bool {
	return o.monitor.Check(ctx)
}

// ServerStatus returns the cached health snapshot without network I/O.
func (o *Orchestrator) ServerStatus() health.Status {
	return o.monitor.ServerStatus()
}

// Voices returns the catalog's grouped views.
func (o *Orchestrator) Voices() voice.Overview {
	return o.catalog.Voices()
}

// Voice looks up a catalog entry by id.
func (o *Orchestrator) Voice(id string) (voice.Descriptor, bool) {
	return o.catalog.Lookup(id)
}

// RecommendedVoice picks a voice for the given gender and locale using the
// catalog's deterministic three-tier rule.
func (o *Orchestrator) RecommendedVoice(gender voice.Gender, locale voice.Locale) (voice.Descriptor, bool) {
	return o.catalog.Recommended(gender, locale)
}

// Config returns the current configuration.
func (o *Orchestrator) Config() Config {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.cfg
}

// SetConfig atomically replaces the whole configuration. The health monitor
// is retargeted and a config-derived remote engine is rebuilt; injected
// engines are left alone.
func (o *Orchestrator) SetConfig(cfg Config) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := cfg.Validate(o.catalog); err != nil {
		return err
	}

	o.cfg = cfg
	o.monitor.SetTarget(cfg.ServerURL, cfg.Timeout)
	if o.ownsRemote {
		o.remote = remote.New(remote.Config{
			BaseURL:           cfg.ServerURL,
			Timeout:           cfg.Timeout,
			RequestsPerMinute: cfg.RequestsPerMinute,
		})
	}
	return nil
}
