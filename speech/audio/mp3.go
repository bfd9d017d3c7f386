package audio

import (
	"bytes"
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"
)

// DecodeMP3 decodes an MP3 payload into a PCM16 clip. Deployments serving
// Edge neural voices answer audio/mpeg instead of WAV.
func DecodeMP3(data []byte) (*Clip, error) {
	dec, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}

	pcm, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("decode mp3 stream: %w", err)
	}
	if len(pcm) == 0 {
		return nil, ErrEmptyAudio
	}

	// go-mp3 always emits 16-bit stereo.
	const channels = 2
	return &Clip{
		Data:       pcm,
		SampleRate: dec.SampleRate(),
		Channels:   channels,
		Duration:   pcmDuration(len(pcm), dec.SampleRate(), channels),
	}, nil
}
