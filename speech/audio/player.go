package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// Player abstracts audible playback so the orchestrator can be tested
// without a sound device.
type Player interface {
	// Play blocks until the clip finishes, the context is cancelled, or
	// playback fails.
	Play(ctx context.Context, clip *Clip) error

	// Stop silences any in-flight playback. Safe to call at any time.
	Stop()

	// IsPlaying reports whether audio is currently audible.
	IsPlaying() bool
}

// Speaker plays clips through the host's sound device via OTO.
//
// OTO allows a single context per process with a fixed sample rate, so the
// context is created lazily from the first clip and later clips must match
// its parameters.
type Speaker struct {
	mu      sync.Mutex
	current *oto.Player
	playing bool
}

var (
	otoOnce     sync.Once
	otoCtx      *oto.Context
	otoRate     int
	otoChannels int
	otoErr      error
)

// ErrFormatMismatch reports a clip whose parameters differ from the ones the
// audio context was opened with.
var ErrFormatMismatch = errors.New("clip format differs from audio context")

func speakerContext(sampleRate, channels int) (*oto.Context, error) {
	otoOnce.Do(func() {
		options := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: channels,
			Format:       oto.FormatSignedInt16LE,
		}
		ctx, ready, err := oto.NewContext(options)
		if err != nil {
			otoErr = fmt.Errorf("create audio context: %w", err)
			return
		}
		<-ready
		otoCtx = ctx
		otoRate = sampleRate
		otoChannels = channels
	})

	if otoErr != nil {
		return nil, otoErr
	}
	if sampleRate != otoRate || channels != otoChannels {
		return nil, fmt.Errorf("%w: context is %dHz/%dch, clip is %dHz/%dch",
			ErrFormatMismatch, otoRate, otoChannels, sampleRate, channels)
	}
	return otoCtx, nil
}

// NewSpeaker returns a Player backed by the host sound device.
func NewSpeaker() *Speaker {
	return &Speaker{}
}

// Play starts the clip and blocks until it drains or ctx is cancelled.
func (s *Speaker) Play(ctx context.Context, clip *Clip) error {
	if clip == nil || len(clip.Data) == 0 {
		return ErrEmptyAudio
	}

	octx, err := speakerContext(clip.SampleRate, clip.Channels)
	if err != nil {
		return err
	}

	player := octx.NewPlayer(bytes.NewReader(clip.Data))

	s.mu.Lock()
	s.current = player
	s.playing = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.playing = false
		s.current = nil
		s.mu.Unlock()
		_ = player.Close()
	}()

	player.Play()

	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			player.Pause()
			return ctx.Err()
		case <-ticker.C:
			if !player.IsPlaying() {
				return nil
			}
		}
	}
}

// Stop pauses the in-flight player, if any. The blocked Play call returns
// once its context is cancelled by the orchestrator.
func (s *Speaker) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		s.current.Pause()
	}
	s.playing = false
}

// IsPlaying reports whether a clip is currently audible.
func (s *Speaker) IsPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}
