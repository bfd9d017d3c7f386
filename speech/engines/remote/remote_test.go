package remote

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tugalearn/fala/speech/voice"
)

func testWAV(t *testing.T) []byte {
	t.Helper()

	pcm := make([]byte, 2205*2) // 100ms mono at 22050Hz
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
	write(uint16(1))
	write(uint16(1))
	write(uint32(22050))
	write(uint32(22050 * 2))
	write(uint16(2))
	write(uint16(16))
	buf.WriteString("data")
	write(uint32(len(pcm)))
	buf.Write(pcm)
	return buf.Bytes()
}

func testVoice() voice.Descriptor {
	return voice.Descriptor{
		ID:     "pt-PT-RaquelNeural",
		Name:   "Raquel",
		Gender: voice.GenderFemale,
		Locale: voice.LocalePortugal,
		Engine: voice.EngineNeural,
	}
}

// TestSynthesize verifies the request shape and WAV decoding on the happy
// path.
func TestSynthesize(t *testing.T) {
	wav := testWAV(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/tts" {
			t.Errorf("request = %s %s, want POST /tts", r.Method, r.URL.Path)
		}
		var req synthesisRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		if req.Text != "bom dia" {
			t.Errorf("request text = %q, want %q", req.Text, "bom dia")
		}
		if req.Lang != "pt-PT" || req.VoiceKey != "pt-PT-RaquelNeural" {
			t.Errorf("request hints = %q/%q, want pt-PT/pt-PT-RaquelNeural", req.Lang, req.VoiceKey)
		}
		w.Header().Set("Content-Type", "audio/wav")
		w.Write(wav) //nolint:errcheck
	}))
	defer srv.Close()

	e := New(Config{BaseURL: srv.URL, Timeout: time.Second})
	clip, err := e.Synthesize(context.Background(), "bom dia", testVoice())
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if clip.SampleRate != 22050 || clip.Channels != 1 {
		t.Errorf("clip = %dHz/%dch, want 22050Hz/1ch", clip.SampleRate, clip.Channels)
	}
}

// TestSynthesizeServerError verifies a non-2xx answer surfaces as
// ErrServerStatus so the orchestrator can fall back.
func TestSynthesizeServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "synthesis failed", http.StatusInternalServerError)
	}))
	defer srv.Close()

	e := New(Config{BaseURL: srv.URL, Timeout: time.Second})
	if _, err := e.Synthesize(context.Background(), "olá", testVoice()); !errors.Is(err, ErrServerStatus) {
		t.Errorf("Synthesize() error = %v, want ErrServerStatus", err)
	}
}

// TestSynthesizeTimeout verifies the configured ceiling cuts off a stalled
// server.
func TestSynthesizeTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
	}))
	defer func() {
		close(release)
		srv.Close()
	}()

	e := New(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})

	start := time.Now()
	_, err := e.Synthesize(context.Background(), "olá", testVoice())
	if err == nil {
		t.Fatal("Synthesize() succeeded against a stalled server")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("request took %v, expected the timeout to cut it off", elapsed)
	}
}

// TestSynthesizeConnectionRefused verifies dead endpoints produce an error,
// not a panic or a hang.
func TestSynthesizeConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	url := srv.URL
	srv.Close()

	e := New(Config{BaseURL: url, Timeout: time.Second})
	if _, err := e.Synthesize(context.Background(), "olá", testVoice()); err == nil {
		t.Error("Synthesize() succeeded against a closed server")
	}
}
