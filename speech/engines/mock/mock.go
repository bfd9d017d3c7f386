// Package mock provides a synthesis engine for tests: no network, no audio
// device, failures on demand.
package mock

import (
	"context"
	"sync"
	"time"

	"github.com/tugalearn/fala/speech/audio"
	"github.com/tugalearn/fala/speech/voice"
)

// Call records one synthesis request.
type Call struct {
	Text  string
	Voice voice.Descriptor
}

// Engine implements the synthesis interface for testing.
type Engine struct {
	mu    sync.Mutex
	name  string
	calls []Call

	// FailWith, when set, makes every Synthesize call return this error.
	FailWith error

	// Delay simulates synthesis latency before returning.
	Delay time.Duration
}

// New creates a mock engine reporting the given name.
func New(name string) *Engine {
	return &Engine{name: name}
}

// Name identifies the engine.
func (e *Engine) Name() string {
	return e.name
}

// Synthesize records the call and returns a short silent clip.
func (e *Engine) Synthesize(ctx context.Context, text string, v voice.Descriptor) (*audio.Clip, error) {
	e.mu.Lock()
	e.calls = append(e.calls, Call{Text: text, Voice: v})
	failWith := e.FailWith
	delay := e.Delay
	e.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	if failWith != nil {
		return nil, failWith
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	const sampleRate = 22050
	data := make([]byte, sampleRate/10*2) // 100ms of mono silence
	return &audio.Clip{
		Data:       data,
		SampleRate: sampleRate,
		Channels:   1,
		Duration:   100 * time.Millisecond,
	}, nil
}

// SetFail configures the error returned by subsequent calls. Nil restores
// success.
func (e *Engine) SetFail(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.FailWith = err
}

// Calls returns the synthesis requests seen so far.
func (e *Engine) Calls() []Call {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Call, len(e.calls))
	copy(out, e.calls)
	return out
}
