package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfig = `# base URL of the neural speech server
server_url: "http://localhost:8000"
# hard ceiling for probes and synthesis requests
timeout: "5s"
# must resolve to a catalog entry
default_voice: "pt-PT-RaquelNeural"
# used when a speak call carries no locale hint: pt-PT or pt-BR
default_locale: "pt-PT"

# host fallback engine
local:
  # synthesizer binary override (say on macOS, espeak-ng elsewhere)
  # binary: "/usr/bin/espeak-ng"
  words_per_minute: 150
`

var configCmd = &cobra.Command{
	Use:     "config",
	Hidden:  false,
	Short:   "Edit the fala configuration file",
	Long:    "\nEdit the speech gateway configuration.",
	Example: "fala config",
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("fala", viper.ConfigFileUsed())
		if err != nil {
			return fmt.Errorf("could not create editor command: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr

		if err := c.Run(); err != nil {
			return fmt.Errorf("could not edit %s: %w", viper.ConfigFileUsed(), err)
		}

		fmt.Println("Wrote config file to:", viper.ConfigFileUsed())
		return nil
	},
}

// ensureConfigFile writes the commented default config on first run so the
// editor opens something useful.
func ensureConfigFile() error {
	configPath := viper.ConfigFileUsed()
	if configPath == "" {
		p, err := scope.ConfigPath("fala.yml")
		if err != nil {
			return fmt.Errorf("could not resolve config path: %w", err)
		}
		configPath = p
		viper.SetConfigFile(configPath)
	}

	if _, err := os.Stat(configPath); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("could not stat %s: %w", configPath, err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("could not create config directory: %w", err)
	}
	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil { //nolint:gosec
		return fmt.Errorf("could not write default config: %w", err)
	}
	return nil
}
