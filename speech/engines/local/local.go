// Package local implements the fallback engine on top of the host's
// built-in speech synthesizer. It needs no network access, which is the
// whole point: when the neural server is absent or slow, the learner still
// hears something.
package local

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/tugalearn/fala/speech/audio"
	"github.com/tugalearn/fala/speech/voice"
)

// Config holds the local engine settings.
type Config struct {
	// Binary overrides the synthesizer command. Empty picks the platform
	// default (say on darwin, espeak-ng elsewhere).
	Binary string `yaml:"binary" env:"FALA_LOCAL_BINARY"`

	// WordsPerMinute controls speaking rate where the host supports it.
	WordsPerMinute int `yaml:"words_per_minute" env:"FALA_LOCAL_WPM" envDefault:"150"`
}

// Engine shells out to the host synthesizer and decodes its WAV output.
type Engine struct {
	cfg  Config
	goos string
}

// ErrNoSynthesizer reports a host with no usable speech command.
var ErrNoSynthesizer = errors.New("no host synthesizer available")

// New creates a local engine for the current platform.
func New(cfg Config) *Engine {
	return &Engine{cfg: cfg, goos: runtime.GOOS}
}

// Name identifies the engine in logs and state snapshots.
func (e *Engine) Name() string {
	return string(voice.EngineHost)
}

// macOS ships regional Portuguese voices under their own names; the catalog
// descriptor is mapped onto the nearest one.
func macVoiceFor(v voice.Descriptor) string {
	if v.Locale == voice.LocaleBrazil {
		return "Luciana"
	}
	return "Joana"
}

// espeak-ng uses lowercase language codes.
func espeakVoiceFor(v voice.Descriptor) string {
	if v.Locale == voice.LocaleBrazil {
		return "pt-br"
	}
	return "pt-pt"
}

// buildCmd assembles the platform synthesis command. outPath is only used
// on platforms whose synthesizer cannot stream to stdout.
func (e *Engine) buildCmd(ctx context.Context, text string, v voice.Descriptor, outPath string) (*exec.Cmd, bool, error) {
	wpm := e.cfg.WordsPerMinute
	if wpm <= 0 {
		wpm = 150
	}

	switch e.goos {
	case "darwin":
		bin := e.cfg.Binary
		if bin == "" {
			bin = "say"
		}
		args := []string{
			"-v", macVoiceFor(v),
			"-r", strconv.Itoa(wpm),
			"-o", outPath,
			"--data-format=LEI16@22050",
			text,
		}
		return exec.CommandContext(ctx, bin, args...), true, nil
	case "windows":
		// System.Speech picks a voice by culture hint and writes a WAV.
		script := fmt.Sprintf(
			`Add-Type -AssemblyName System.Speech; `+
				`$s = New-Object System.Speech.Synthesis.SpeechSynthesizer; `+
				`$s.SelectVoiceByHints('NotSet','NotSet',0,[System.Globalization.CultureInfo]::GetCultureInfo('%s')); `+
				`$s.SetOutputToWaveFile('%s'); $s.Speak('%s'); $s.Dispose()`,
			v.Locale, outPath, escapeSingleQuotes(text))
		return exec.CommandContext(ctx, "powershell", "-NoProfile", "-Command", script), true, nil
	default:
		bin := e.cfg.Binary
		if bin == "" {
			bin = "espeak-ng"
		}
		args := []string{
			"--stdout",
			"-v", espeakVoiceFor(v),
			"-s", strconv.Itoa(wpm),
			text,
		}
		return exec.CommandContext(ctx, bin, args...), false, nil
	}
}

func escapeSingleQuotes(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// Synthesize runs the host synthesizer and returns the decoded clip.
func (e *Engine) Synthesize(ctx context.Context, text string, v voice.Descriptor) (*audio.Clip, error) {
	tmp, err := os.MkdirTemp("", "fala-local-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmp) //nolint:errcheck
	outPath := filepath.Join(tmp, "speech.wav")

	cmd, usesFile, err := e.buildCmd(ctx, text, v, outPath)
	if err != nil {
		return nil, err
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNoSynthesizer, cmd.Path)
		}
		return nil, fmt.Errorf("host synthesizer failed: %w: %s", err, stderr.String())
	}

	payload := stdout.Bytes()
	if usesFile {
		payload, err = os.ReadFile(outPath)
		if err != nil {
			return nil, fmt.Errorf("read synthesizer output: %w", err)
		}
	}

	clip, err := audio.Decode(payload, "audio/wav")
	if err != nil {
		return nil, fmt.Errorf("decode synthesizer output: %w", err)
	}

	log.Debug("host synthesis complete", "voice", v.ID, "bytes", len(payload), "duration", clip.Duration)
	return clip, nil
}
