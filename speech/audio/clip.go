// Package audio holds the decoded audio clip type and playback backends for
// the speech gateway.
package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Clip is decoded audio ready for playback: signed 16-bit little-endian PCM.
type Clip struct {
	Data       []byte
	SampleRate int
	Channels   int
	Duration   time.Duration
}

const bytesPerSample = 2

var (
	// ErrEmptyAudio reports a response body with no audio in it.
	ErrEmptyAudio = errors.New("empty audio payload")
	// ErrUnsupportedFormat reports audio the gateway cannot decode.
	ErrUnsupportedFormat = errors.New("unsupported audio format")
)

// pcmDuration computes playback time for a PCM16 byte count.
func pcmDuration(n, sampleRate, channels int) time.Duration {
	if sampleRate <= 0 || channels <= 0 {
		return 0
	}
	samples := n / (bytesPerSample * channels)
	return time.Duration(samples) * time.Second / time.Duration(sampleRate)
}

// Decode sniffs the payload and dispatches to the matching decoder. The
// content type is a hint; the magic bytes win when they disagree.
func Decode(data []byte, contentType string) (*Clip, error) {
	if len(data) == 0 {
		return nil, ErrEmptyAudio
	}

	switch {
	case len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE")):
		return DecodeWAV(data)
	case looksLikeMP3(data) || strings.Contains(contentType, "mpeg"):
		return DecodeMP3(data)
	default:
		return nil, fmt.Errorf("%w: content type %q", ErrUnsupportedFormat, contentType)
	}
}

func looksLikeMP3(data []byte) bool {
	if len(data) >= 3 && bytes.Equal(data[:3], []byte("ID3")) {
		return true
	}
	// MPEG frame sync: 11 set bits.
	return len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0
}

// DecodeWAV extracts PCM16 samples from an in-memory RIFF/WAVE payload, the
// format the speech server answers with.
func DecodeWAV(data []byte) (*Clip, error) {
	if len(data) < 12 || !bytes.Equal(data[:4], []byte("RIFF")) || !bytes.Equal(data[8:12], []byte("WAVE")) {
		return nil, fmt.Errorf("%w: missing RIFF header", ErrUnsupportedFormat)
	}

	var (
		sampleRate int
		channels   int
		pcm        []byte
		haveFmt    bool
	)

	// Walk the chunk list; anything other than fmt/data is skipped.
	for off := 12; off+8 <= len(data); {
		id := string(data[off : off+4])
		size := int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		body := off + 8
		if body+size > len(data) {
			return nil, fmt.Errorf("%w: truncated %q chunk", ErrUnsupportedFormat, id)
		}

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, fmt.Errorf("%w: short fmt chunk", ErrUnsupportedFormat)
			}
			format := binary.LittleEndian.Uint16(data[body : body+2])
			channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			sampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bits := binary.LittleEndian.Uint16(data[body+14 : body+16])
			if format != 1 || bits != 16 {
				return nil, fmt.Errorf("%w: want PCM16, got format %d/%d-bit", ErrUnsupportedFormat, format, bits)
			}
			haveFmt = true
		case "data":
			pcm = data[body : body+size]
		}

		// Chunks are word-aligned.
		off = body + size + size%2
	}

	if !haveFmt || pcm == nil {
		return nil, fmt.Errorf("%w: missing fmt or data chunk", ErrUnsupportedFormat)
	}
	if len(pcm) == 0 {
		return nil, ErrEmptyAudio
	}

	return &Clip{
		Data:       pcm,
		SampleRate: sampleRate,
		Channels:   channels,
		Duration:   pcmDuration(len(pcm), sampleRate, channels),
	}, nil
}
