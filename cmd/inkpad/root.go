package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/xonecas/inkpad/internal/config"
	"github.com/xonecas/inkpad/internal/markdown"
	"github.com/xonecas/inkpad/internal/store"
)

var (
	fConfigPath string
	fLogLevel   string
)

// Root builds the inkpad command tree.
func Root() *cobra.Command {
	cmd := cobra.Command{
		Use:           "inkpad",
		Short:         "A terminal markdown editor for blog posts",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if fLogLevel != "" {
				if _, err := zerolog.ParseLevel(strings.ToLower(fLogLevel)); err != nil {
					return fmt.Errorf("invalid --log-level %q", fLogLevel)
				}
			}
			return nil
		},
	}

	defaultConfig, _ := config.DefaultPath()
	pflags := cmd.PersistentFlags()
	pflags.StringVar(&fConfigPath, "config", defaultConfig, "Path to the TOML config file")
	pflags.StringVar(&fLogLevel, "log-level", "", "Log level (overrides the config file)")

	cmd.AddCommand(editCmd())
	cmd.AddCommand(renderCmd())
	cmd.AddCommand(draftsCmd())

	return &cmd
}

// loadConfig reads the config file and applies the --log-level override.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(fConfigPath)
	if err != nil {
		return nil, err
	}
	if fLogLevel != "" {
		cfg.LogLevel = fLogLevel
	}
	return cfg, nil
}

// consoleLogger installs a human-readable logger on w as the global logger.
func consoleLogger(w io.Writer, cfg *config.Config) zerolog.Logger {
	l := zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: true}).
		Level(cfg.Level()).
		With().Timestamp().Logger()
	log.Logger = l
	return l
}

// openStore opens the draft database named by the config.
func openStore(cfg *config.Config) (*store.Store, error) {
	path, err := cfg.Store.PathOrDefault()
	if err != nil {
		return nil, err
	}
	if cfg.Store.Path == "" {
		if _, err := config.EnsureDataDir(); err != nil {
			return nil, err
		}
	}
	return store.Open(path, cfg.Store.CacheTTLOrDefault())
}

// engineOptions maps the render settings onto transformer options.
func engineOptions(rc config.RenderConfig, logger zerolog.Logger) []markdown.Option {
	opts := []markdown.Option{markdown.WithLogger(logger)}
	if !rc.Sanitize {
		opts = append(opts, markdown.WithoutSanitizer())
	}
	if rc.OrderedLists {
		opts = append(opts, markdown.WithOrderedLists())
	}
	return opts
}

// readSource reads a file, or stdin when path is "-" or empty.
func readSource(cmd *cobra.Command, path string) (string, error) {
	if path == "" || path == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		return string(b), err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(b), nil
}
