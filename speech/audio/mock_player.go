package audio

import (
	"context"
	"sync"
	"time"
)

// MockPlayer implements Player for tests. It records every clip it is asked
// to play and simulates playback duration without touching a sound device.
type MockPlayer struct {
	mu      sync.Mutex
	playing bool
	clips   []*Clip
	stops   int

	// FailWith, when set, makes Play return this error immediately.
	FailWith error

	// Delay simulates audible playback time. Zero completes immediately.
	Delay time.Duration

	started chan struct{}
}

// NewMockPlayer returns a mock player ready for use.
func NewMockPlayer() *MockPlayer {
	return &MockPlayer{started: make(chan struct{}, 16)}
}

// Play records the clip and blocks for Delay or until ctx is cancelled.
func (m *MockPlayer) Play(ctx context.Context, clip *Clip) error {
	m.mu.Lock()
	if m.FailWith != nil {
		err := m.FailWith
		m.mu.Unlock()
		return err
	}
	m.clips = append(m.clips, clip)
	m.playing = true
	delay := m.Delay
	m.mu.Unlock()

	select {
	case m.started <- struct{}{}:
	default:
	}

	defer func() {
		m.mu.Lock()
		m.playing = false
		m.mu.Unlock()
	}()

	if delay <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}

// Stop records the stop request.
func (m *MockPlayer) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stops++
	m.playing = false
}

// IsPlaying reports whether a simulated clip is in flight.
func (m *MockPlayer) IsPlaying() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing
}

// Started signals once per accepted Play call, letting tests synchronize
// with playback start.
func (m *MockPlayer) Started() <-chan struct{} {
	return m.started
}

// Clips returns the clips played so far.
func (m *MockPlayer) Clips() []*Clip {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Clip, len(m.clips))
	copy(out, m.clips)
	return out
}

// Stops returns how many times Stop was called.
func (m *MockPlayer) Stops() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stops
}
