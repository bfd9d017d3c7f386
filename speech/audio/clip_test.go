package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"testing"
	"time"
)

// buildWAV assembles a minimal PCM16 RIFF payload for tests.
func buildWAV(t *testing.T, sampleRate, channels int, pcm []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	write := func(v any) {
		if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
			t.Fatalf("write wav field: %v", err)
		}
	}

	buf.WriteString("RIFF")
	write(uint32(36 + len(pcm)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	write(uint32(16))
	write(uint16(1)) // PCM
	write(uint16(channels))
	write(uint32(sampleRate))
	write(uint32(sampleRate * channels * 2)) // byte rate
	write(uint16(channels * 2))              // block align
	write(uint16(16))                        // bits per sample

	buf.WriteString("data")
	write(uint32(len(pcm)))
	buf.Write(pcm)

	return buf.Bytes()
}

func TestDecodeWAV(t *testing.T) {
	pcm := make([]byte, 22050*2) // one second, mono
	wav := buildWAV(t, 22050, 1, pcm)

	clip, err := DecodeWAV(wav)
	if err != nil {
		t.Fatalf("DecodeWAV() error = %v", err)
	}
	if clip.SampleRate != 22050 || clip.Channels != 1 {
		t.Errorf("clip = %dHz/%dch, want 22050Hz/1ch", clip.SampleRate, clip.Channels)
	}
	if len(clip.Data) != len(pcm) {
		t.Errorf("clip holds %d bytes, want %d", len(clip.Data), len(pcm))
	}
	if clip.Duration != time.Second {
		t.Errorf("clip duration = %v, want 1s", clip.Duration)
	}
}

func TestDecodeWAVRejectsGarbage(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"not riff", []byte("this is not audio at all....")},
		{"truncated header", []byte("RIFF")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeWAV(tt.data); err == nil {
				t.Error("DecodeWAV() accepted malformed payload")
			}
		})
	}
}

func TestDecodeDispatch(t *testing.T) {
	wav := buildWAV(t, 22050, 1, make([]byte, 512))

	clip, err := Decode(wav, "audio/wav")
	if err != nil {
		t.Fatalf("Decode(wav) error = %v", err)
	}
	if clip.SampleRate != 22050 {
		t.Errorf("sample rate = %d, want 22050", clip.SampleRate)
	}

	if _, err := Decode(nil, "audio/wav"); !errors.Is(err, ErrEmptyAudio) {
		t.Errorf("Decode(empty) error = %v, want ErrEmptyAudio", err)
	}

	if _, err := Decode([]byte("<html>not audio</html>"), "text/html"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Decode(html) error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestMockPlayerCancellation(t *testing.T) {
	p := NewMockPlayer()
	p.Delay = 5 * time.Second

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- p.Play(ctx, &Clip{Data: []byte{0, 0}, SampleRate: 22050, Channels: 1})
	}()

	<-p.Started()
	if !p.IsPlaying() {
		t.Error("IsPlaying() = false after playback started")
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Play() error = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Play() did not return after cancellation")
	}
	if p.IsPlaying() {
		t.Error("IsPlaying() = true after cancellation")
	}
}
