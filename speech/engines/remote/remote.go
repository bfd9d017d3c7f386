// Package remote implements the neural synthesis engine backed by the
// networked speech server. Every request is bounded by the configured
// timeout; the server is an optimization, never a hard dependency, so
// callers treat any failure here as a signal to fall back.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/tugalearn/fala/speech/audio"
	"github.com/tugalearn/fala/speech/voice"
)

// Config holds the remote engine settings.
type Config struct {
	BaseURL string
	Timeout time.Duration

	// RequestsPerMinute throttles synthesis calls so a chatty lesson screen
	// cannot hammer the server. Zero means the default.
	RequestsPerMinute int
}

const (
	defaultRequestsPerMinute = 60
	synthesisPath            = "/tts"
)

// ErrServerStatus reports a non-2xx synthesis response.
var ErrServerStatus = errors.New("speech server returned error status")

// Engine is an HTTP client for the speech server's /tts route.
type Engine struct {
	client  *http.Client
	baseURL string
	timeout time.Duration
	limiter *rate.Limiter
}

// New creates a remote engine for the given server.
func New(cfg Config) *Engine {
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = defaultRequestsPerMinute
	}
	return &Engine{
		client:  &http.Client{},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: cfg.Timeout,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1),
	}
}

// Name identifies the engine in logs and state snapshots.
func (e *Engine) Name() string {
	return string(voice.EngineNeural)
}

// synthesisRequest mirrors the server's POST /tts payload. The single-model
// server ignores lang/voiceKey; they are sent for API symmetry.
type synthesisRequest struct {
	Text     string `json:"text"`
	Lang     string `json:"lang,omitempty"`
	VoiceKey string `json:"voiceKey,omitempty"`
}

// Synthesize posts the text to the server and decodes the returned audio.
func (e *Engine) Synthesize(ctx context.Context, text string, v voice.Descriptor) (*audio.Clip, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	body, err := json.Marshal(synthesisRequest{
		Text:     text,
		Lang:     string(v.Locale),
		VoiceKey: v.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("encode synthesis request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+synthesisPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build synthesis request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("synthesis request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: %s", ErrServerStatus, resp.Status)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read synthesis response: %w", err)
	}

	clip, err := audio.Decode(payload, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("decode synthesis response: %w", err)
	}

	log.Debug("remote synthesis complete", "voice", v.ID, "bytes", len(payload), "duration", clip.Duration)
	return clip, nil
}
