package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/xonecas/inkpad/internal/assistant"
	"github.com/xonecas/inkpad/internal/config"
	"github.com/xonecas/inkpad/internal/markdown"
	"github.com/xonecas/inkpad/internal/provider"
	"github.com/xonecas/inkpad/internal/store"
	"github.com/xonecas/inkpad/internal/surface"
	"github.com/xonecas/inkpad/internal/tui"
)

func editCmd() *cobra.Command {
	var (
		draft string
		mode  string
	)

	cmd := cobra.Command{
		Use:   "edit [file]",
		Short: "Open the editor",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if mode == "" {
				mode = cfg.UI.DefaultView
			}
			viewMode, err := surface.ParseViewMode(mode)
			if err != nil {
				return err
			}

			// stdout belongs to the terminal UI.
			logger, closeLog, err := fileLogger(cfg)
			if err != nil {
				return err
			}
			defer closeLog()

			st, err := openStore(cfg)
			if err != nil {
				logger.Warn().Err(err).Msg("draft store unavailable")
			}
			defer st.Close()

			var path string
			if len(args) > 0 {
				path = args[0]
			}
			initial, err := initialBuffer(st, draft, path)
			if err != nil {
				return err
			}

			eng, err := markdown.EngineByName(cfg.Render.Engine, engineOptions(cfg.Render, logger)...)
			if err != nil {
				return err
			}

			p, err := provider.DefaultRegistry().Create(cfg.Assistant.Provider, provider.Options{
				Endpoint: cfg.Assistant.Endpoint,
				Timeout:  cfg.Assistant.Timeout(),
			})
			if err != nil {
				return err
			}
			svcOpts := []assistant.Option{
				assistant.WithCacheSize(cfg.Assistant.CacheSize),
				assistant.WithLogger(logger.With().Str("component", "assistant").Logger()),
			}
			if st != nil {
				svcOpts = append(svcOpts, assistant.WithTier(st))
			}
			svc := assistant.New(p, svcOpts...)
			defer svc.Close()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			m := tui.New(tui.Options{
				Initial:   initial,
				FilePath:  path,
				DraftName: draft,
				Mode:      viewMode,
				Engine:    eng,
				Assistant: svc,
				Store:     st,
				Theme:     cfg.UI.SyntaxThemeOrDefault(),
				Context:   ctx,
				Logger:    logger,
			})
			prog := tea.NewProgram(m,
				tea.WithContext(ctx),
				tea.WithFilter(tui.MouseEventFilter),
			)
			logger.Info().Str("draft", draft).Str("file", path).Str("mode", viewMode.String()).Msg("editor started")
			if _, err := prog.Run(); err != nil {
				return fmt.Errorf("run editor: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&draft, "draft", "", "Draft name to open and save to")
	cmd.Flags().StringVar(&mode, "mode", "", "Initial view: edit, split or preview")

	return &cmd
}

// fileLogger sends logs to inkpad.log in the data directory.
func fileLogger(cfg *config.Config) (zerolog.Logger, func(), error) {
	dir, err := config.EnsureDataDir()
	if err != nil {
		return zerolog.Nop(), func() {}, err
	}
	f, err := os.OpenFile(filepath.Join(dir, "inkpad.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return zerolog.Nop(), func() {}, fmt.Errorf("open log: %w", err)
	}
	l := zerolog.New(f).Level(cfg.Level()).With().Timestamp().Logger()
	log.Logger = l
	return l, func() { f.Close() }, nil
}

// initialBuffer picks the starting text: a stored draft wins, then the file.
// A missing draft or file starts empty.
func initialBuffer(st *store.Store, draft, path string) (string, error) {
	if draft != "" && st != nil {
		d, err := st.LoadDraft(draft)
		switch {
		case err == nil:
			return d.Body, nil
		case !errors.Is(err, store.ErrNotFound):
			return "", fmt.Errorf("load draft %q: %w", draft, err)
		}
	}
	if path == "" {
		return "", nil
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(b), nil
}
