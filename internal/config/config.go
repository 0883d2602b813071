// Package config handles configuration loading from TOML files and environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"
)

// Config is the root configuration structure.
type Config struct {
	LogLevel  string          `toml:"log_level"`
	Assistant AssistantConfig `toml:"assistant"`
	Render    RenderConfig    `toml:"render"`
	UI        UIConfig        `toml:"ui"`
	Store     StoreConfig     `toml:"store"`
}

// AssistantConfig selects and tunes the writing-assistant backend.
type AssistantConfig struct {
	Provider       string `toml:"provider"`
	Endpoint       string `toml:"endpoint"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	// CacheSize bounds the in-memory reply cache.
	CacheSize int `toml:"cache_size"`
}

// Timeout returns the request timeout. Zero disables it.
func (a AssistantConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// RenderConfig holds preview rendering settings.
type RenderConfig struct {
	Engine       string `toml:"engine"`
	Sanitize     bool   `toml:"sanitize"`
	OrderedLists bool   `toml:"ordered_lists"`
}

// UIConfig holds user-interface settings.
type UIConfig struct {
	// SyntaxTheme is the Chroma syntax highlighting theme used across the TUI.
	// UI chrome colors are derived from this theme via highlight.ThemePalette.
	// Defaults to "vulcan" if unset.
	SyntaxTheme string `toml:"syntax_theme"`
	DefaultView string `toml:"default_view"`
}

// SyntaxThemeOrDefault returns the configured syntax theme or "vulcan" if unset.
func (u UIConfig) SyntaxThemeOrDefault() string {
	if u.SyntaxTheme == "" {
		return "vulcan"
	}
	return u.SyntaxTheme
}

// StoreConfig holds draft database settings.
type StoreConfig struct {
	// Path of the SQLite database. Empty means <data dir>/inkpad.db.
	Path     string `toml:"path"`
	TTLHours int    `toml:"ttl_hours"`
}

// CacheTTLOrDefault returns the assistant cache TTL, 24 hours if unset.
func (s StoreConfig) CacheTTLOrDefault() time.Duration {
	if s.TTLHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(s.TTLHours) * time.Hour
}

// PathOrDefault returns the configured database path or the default one in
// the data directory.
func (s StoreConfig) PathOrDefault() (string, error) {
	if s.Path != "" {
		return s.Path, nil
	}
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "inkpad.db"), nil
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Assistant: AssistantConfig{
			Provider:       "http",
			Endpoint:       "http://localhost:3000",
			TimeoutSeconds: 30,
			CacheSize:      128,
		},
		Render: RenderConfig{
			Engine:   "pipeline",
			Sanitize: true,
		},
		UI: UIConfig{
			SyntaxTheme: "vulcan",
			DefaultView: "edit",
		},
		Store: StoreConfig{TTLHours: 24},
	}
}

// Load reads configuration from a TOML file and applies environment variable
// overrides. The file is optional: an empty path or a missing file yields
// the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		_, err := toml.DecodeFile(path, cfg)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

var (
	validEngines = map[string]bool{"pipeline": true, "commonmark": true}
	validViews   = map[string]bool{"edit": true, "split": true, "preview": true}
)

// Validate returns an error if the configuration is invalid.
func (c *Config) Validate() error {
	var errs []error

	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		errs = append(errs, fmt.Errorf("log_level=%q is invalid", c.LogLevel))
	}

	errs = append(errs, validateAssistant(c.Assistant)...)

	if !validEngines[c.Render.Engine] {
		errs = append(errs, fmt.Errorf("render.engine=%q must be pipeline or commonmark", c.Render.Engine))
	}
	if c.UI.DefaultView != "" && !validViews[c.UI.DefaultView] {
		errs = append(errs, fmt.Errorf("ui.default_view=%q must be edit, split or preview", c.UI.DefaultView))
	}
	if c.Store.TTLHours < 0 {
		errs = append(errs, fmt.Errorf("store.ttl_hours=%d must not be negative", c.Store.TTLHours))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

func validateAssistant(cfg AssistantConfig) []error {
	var errs []error
	if cfg.Provider == "" {
		errs = append(errs, errors.New("assistant.provider is required"))
	}
	if cfg.Provider == "http" {
		if cfg.Endpoint == "" {
			errs = append(errs, errors.New("assistant.endpoint is required"))
		} else if err := validateEndpoint(cfg.Endpoint); err != nil {
			errs = append(errs, fmt.Errorf("assistant.endpoint=%q is invalid: %v", cfg.Endpoint, err))
		}
	}
	if cfg.TimeoutSeconds < 0 {
		errs = append(errs, fmt.Errorf("assistant.timeout_seconds=%d must not be negative", cfg.TimeoutSeconds))
	}
	if cfg.CacheSize <= 0 {
		errs = append(errs, fmt.Errorf("assistant.cache_size=%d must be positive", cfg.CacheSize))
	}
	return errs
}

func validateEndpoint(value string) error {
	parsed, err := url.Parse(value)
	if err != nil {
		return err
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return errors.New("missing scheme or host")
	}
	return nil
}

// Level returns the parsed log level, info if unparseable.
func (c *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	for _, setter := range []struct {
		env   string
		apply func(string)
	}{
		{"INKPAD_ASSISTANT_ENDPOINT", func(v string) {
			if v != "" {
				cfg.Assistant.Endpoint = v
			}
		}},
		{"INKPAD_ASSISTANT_PROVIDER", func(v string) {
			if v != "" {
				cfg.Assistant.Provider = v
			}
		}},
		{"INKPAD_LOG_LEVEL", func(v string) {
			if v != "" {
				cfg.LogLevel = v
			}
		}},
	} {
		setter.apply(os.Getenv(setter.env))
	}
}

// DataDir returns the path to the inkpad data directory (~/.config/inkpad).
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "inkpad"), nil
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", err
	}
	return dir, nil
}

// DefaultPath returns ~/.config/inkpad/config.toml.
func DefaultPath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}
