package local

import (
	"context"
	"strings"
	"testing"

	"github.com/tugalearn/fala/speech/voice"
)

func descriptor(locale voice.Locale) voice.Descriptor {
	return voice.Descriptor{
		ID:     "test-voice",
		Name:   "Test",
		Gender: voice.GenderFemale,
		Locale: locale,
		Engine: voice.EngineHost,
	}
}

// TestBuildCmdLinux verifies the espeak-ng invocation streams WAV to stdout
// with the locale mapped to espeak's naming.
func TestBuildCmdLinux(t *testing.T) {
	tests := []struct {
		name   string
		locale voice.Locale
		want   string
	}{
		{"european portuguese", voice.LocalePortugal, "pt-pt"},
		{"brazilian portuguese", voice.LocaleBrazil, "pt-br"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &Engine{cfg: Config{WordsPerMinute: 150}, goos: "linux"}
			cmd, usesFile, err := e.buildCmd(context.Background(), "bom dia", descriptor(tt.locale), "/tmp/out.wav")
			if err != nil {
				t.Fatalf("buildCmd() error = %v", err)
			}
			if usesFile {
				t.Error("espeak-ng should stream to stdout, not a file")
			}
			joined := strings.Join(cmd.Args, " ")
			if !strings.Contains(joined, "--stdout") {
				t.Errorf("args %q missing --stdout", joined)
			}
			if !strings.Contains(joined, "-v "+tt.want) {
				t.Errorf("args %q missing voice %q", joined, tt.want)
			}
			if !strings.Contains(joined, "bom dia") {
				t.Errorf("args %q missing the text", joined)
			}
		})
	}
}

// TestBuildCmdDarwin verifies say writes PCM16 WAV to a file with the
// regional voice mapped from the descriptor.
func TestBuildCmdDarwin(t *testing.T) {
	e := &Engine{cfg: Config{WordsPerMinute: 170}, goos: "darwin"}

	cmd, usesFile, err := e.buildCmd(context.Background(), "tudo bem", descriptor(voice.LocaleBrazil), "/tmp/out.wav")
	if err != nil {
		t.Fatalf("buildCmd() error = %v", err)
	}
	if !usesFile {
		t.Error("say cannot stream, expected file output")
	}
	joined := strings.Join(cmd.Args, " ")
	if !strings.Contains(joined, "-v Luciana") {
		t.Errorf("args %q should pick the Brazilian voice", joined)
	}
	if !strings.Contains(joined, "-r 170") {
		t.Errorf("args %q missing the speaking rate", joined)
	}
	if !strings.Contains(joined, "--data-format=LEI16@22050") {
		t.Errorf("args %q missing the PCM16 output format", joined)
	}
}

// TestBuildCmdBinaryOverride verifies the configured binary replaces the
// platform default.
func TestBuildCmdBinaryOverride(t *testing.T) {
	e := &Engine{cfg: Config{Binary: "/opt/espeak/bin/espeak-ng"}, goos: "linux"}

	cmd, _, err := e.buildCmd(context.Background(), "olá", descriptor(voice.LocalePortugal), "")
	if err != nil {
		t.Fatalf("buildCmd() error = %v", err)
	}
	if cmd.Args[0] != "/opt/espeak/bin/espeak-ng" {
		t.Errorf("command = %q, want the configured binary", cmd.Args[0])
	}
}

func TestEscapeSingleQuotes(t *testing.T) {
	if got := escapeSingleQuotes("it's"); got != "it''s" {
		t.Errorf("escapeSingleQuotes = %q, want %q", got, "it''s")
	}
}
