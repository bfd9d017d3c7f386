// Package main provides the entry point for the fala CLI, a small front end
// over the speech gateway used by the learning app.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tugalearn/fala/speech"
	"github.com/tugalearn/fala/speech/voice"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string
	voiceID    string
	localeHint string
	genderHint string
	engineHint string
	serverURL  string
	verbose    bool

	keyword = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#ECFD65"}).Render
	subtle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"}).Render

	rootCmd = &cobra.Command{
		Use:   "fala [TEXT]",
		Short: "Speak Portuguese phrases aloud",
		Long: fmt.Sprintf(
			"\nPronounce a phrase with the %s voice service, falling back to the host synthesizer when the server is unreachable.",
			keyword("neural"),
		),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.MinimumNArgs(1),
		RunE:             execute,
	}
)

// scope describes fala's config location across platforms.
var scope = gap.NewScope(gap.User, "fala")

func initConfig() {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		configPath, err := scope.ConfigPath("fala.yml")
		if err == nil {
			viper.SetConfigFile(configPath)
		}
	}
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			log.Warn("could not read config file", "error", err)
		}
	}
}

// gatewayConfig layers config sources the way the app does: shipped
// defaults, then the config file, then FALA_* environment variables, then
// flags.
func gatewayConfig() (speech.Config, error) {
	cfg, err := speech.LoadConfig()
	if err != nil {
		return speech.Config{}, err
	}

	if v := viper.GetString("server_url"); v != "" {
		cfg.ServerURL = v
	}
	if v := viper.GetDuration("timeout"); v > 0 {
		cfg.Timeout = v
	}
	if v := viper.GetString("default_voice"); v != "" {
		cfg.DefaultVoice = v
	}
	if v := viper.GetString("default_locale"); v != "" {
		cfg.DefaultLocale = voice.Locale(v)
	}
	if v := viper.GetString("local.binary"); v != "" {
		cfg.Local.Binary = v
	}
	if v := viper.GetInt("local.words_per_minute"); v > 0 {
		cfg.Local.WordsPerMinute = v
	}

	if serverURL != "" {
		cfg.ServerURL = serverURL
	}
	return cfg, nil
}

func execute(_ *cobra.Command, args []string) error {
	cfg, err := gatewayConfig()
	if err != nil {
		return err
	}

	orch, err := speech.New(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Refresh reachability once so the engine decision sees current state
	// instead of the zero-value cache.
	if orch.CheckServerHealth(ctx) {
		log.Debug("speech server reachable", "url", cfg.ServerURL)
	} else {
		log.Debug("speech server unreachable, host engine will serve", "url", cfg.ServerURL)
	}

	opts := speech.Options{
		VoiceID:    voiceID,
		Gender:     voice.Gender(genderHint),
		Locale:     voice.Locale(localeHint),
		EngineHint: voice.Engine(engineHint),
	}

	text := strings.Join(args, " ")
	if err := orch.Speak(ctx, text, opts); err != nil {
		if errors.Is(err, speech.ErrInterrupted) {
			return nil
		}
		return err
	}
	return nil
}

var voicesCmd = &cobra.Command{
	Use:   "voices",
	Short: "List the voice catalog grouped by locale",
	Args:  cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		overview := voice.Default().Voices()

		for _, locale := range []voice.Locale{voice.LocalePortugal, voice.LocaleBrazil} {
			fmt.Println(keyword(string(locale)))
			for _, d := range overview.ByLocale[locale] {
				marker := " "
				if d.ID == overview.DefaultID {
					marker = "*"
				}
				fmt.Printf("%s %-24s %-10s %s\n", marker, d.ID, d.Gender, subtle(d.Name))
			}
			fmt.Println()
		}
		fmt.Println(subtle("* default voice"))
		return nil
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Probe the speech server and print its status",
	Args:  cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		cfg, err := gatewayConfig()
		if err != nil {
			return err
		}
		orch, err := speech.New(cfg)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout+time.Second)
		defer cancel()
		orch.CheckServerHealth(ctx)

		status := orch.ServerStatus()
		state := keyword("available")
		if !status.Available {
			state = subtle("unavailable")
		}
		fmt.Printf("%s is %s (checked %s)\n", status.URL, state, status.LastChecked.Format(time.RFC3339))
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default "+viperConfigHint()+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.Flags().StringVar(&voiceID, "voice", "", "catalog voice id (e.g. pt-PT-RaquelNeural)")
	rootCmd.Flags().StringVar(&localeHint, "locale", "", "locale hint: pt-PT or pt-BR")
	rootCmd.Flags().StringVar(&genderHint, "gender", "", "gender hint: male or female")
	rootCmd.Flags().StringVar(&engineHint, "engine", "", "engine hint: neural or host")
	rootCmd.Flags().StringVar(&serverURL, "server", "", "speech server base URL")

	rootCmd.AddCommand(voicesCmd, healthCmd, configCmd)

	cobra.OnInitialize(func() {
		if verbose {
			log.SetLevel(log.DebugLevel)
		}
		log.SetOutput(os.Stderr)
	})
}

func viperConfigHint() string {
	p, err := scope.ConfigPath("fala.yml")
	if err != nil {
		return "fala.yml"
	}
	return p
}
