package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xonecas/inkpad/internal/markdown"
)

func renderCmd() *cobra.Command {
	var (
		engine       string
		raw          bool
		orderedLists bool
	)

	cmd := cobra.Command{
		Use:   "render [file|-]",
		Short: "Render markdown to HTML on stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := consoleLogger(cmd.ErrOrStderr(), cfg)

			rc := cfg.Render
			if cmd.Flags().Changed("engine") {
				rc.Engine = engine
			}
			if raw {
				rc.Sanitize = false
			}
			if orderedLists {
				rc.OrderedLists = true
			}

			var path string
			if len(args) > 0 {
				path = args[0]
			}
			source, err := readSource(cmd, path)
			if err != nil {
				return err
			}

			eng, err := markdown.EngineByName(rc.Engine, engineOptions(rc, logger)...)
			if err != nil {
				return err
			}
			res := eng.Render(source)

			out := res.HTML
			if !strings.HasSuffix(out, "\n") {
				out += "\n"
			}
			if _, err := fmt.Fprint(cmd.OutOrStdout(), out); err != nil {
				return err
			}
			if res.Failed() {
				return fmt.Errorf("render with %s: %w", eng.Name(), res.Err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&engine, "engine", markdown.EnginePipeline, "Markdown engine: pipeline or commonmark")
	cmd.Flags().BoolVar(&raw, "raw", false, "Skip HTML sanitizing")
	cmd.Flags().BoolVar(&orderedLists, "ordered-lists", false, "Render numbered lists as <ol>")

	return &cmd
}
