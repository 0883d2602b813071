package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/spf13/cobra"

	"github.com/xonecas/inkpad/internal/delta"
	"github.com/xonecas/inkpad/internal/store"
)

const timeLayout = "2006-01-02 15:04"

func draftsCmd() *cobra.Command {
	cmd := cobra.Command{
		Use:   "drafts",
		Short: "Manage saved drafts",
	}

	cmd.AddCommand(draftsListCmd())
	cmd.AddCommand(draftsShowCmd())
	cmd.AddCommand(draftsDiffCmd())
	cmd.AddCommand(draftsRmCmd())

	return &cmd
}

// withStore opens the configured store for the duration of fn.
func withStore(cmd *cobra.Command, fn func(*store.Store) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	consoleLogger(cmd.ErrOrStderr(), cfg)

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}

func draftsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List drafts, most recently updated first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(st *store.Store) error {
				drafts, err := st.ListDrafts()
				if err != nil {
					return err
				}
				if len(drafts) == 0 {
					_, err := fmt.Fprintln(cmd.OutOrStdout(), "no drafts")
					return err
				}

				t := table.New().
					Border(lipgloss.HiddenBorder()).
					Headers("NAME", "LINES", "UPDATED")
				for _, d := range drafts {
					t.Row(d.Name, strconv.Itoa(lineCount(d.Body)), d.Updated.Format(timeLayout))
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), t.String())
				return err
			})
		},
	}
}

func draftsShowCmd() *cobra.Command {
	var rev int

	cmd := cobra.Command{
		Use:   "show <name>",
		Short: "Print a draft body",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(st *store.Store) error {
				body, err := draftBody(st, args[0], rev)
				if err != nil {
					return err
				}
				_, err = fmt.Fprint(cmd.OutOrStdout(), body)
				return err
			})
		},
	}

	cmd.Flags().IntVar(&rev, "rev", 0, "Revision number, 1 is the oldest; 0 is the current body")

	return &cmd
}

func draftsDiffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff <name> [file]",
		Short: "Diff the last two revisions of a draft, or the draft against a file",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(st *store.Store) error {
				name := args[0]
				var before, after string
				if len(args) == 2 {
					d, err := st.LoadDraft(name)
					if err != nil {
						return fmt.Errorf("draft %q: %w", name, err)
					}
					src, err := readSource(cmd, args[1])
					if err != nil {
						return err
					}
					before, after = d.Body, src
				} else {
					revs, err := st.Revisions(name)
					if err != nil {
						return err
					}
					switch len(revs) {
					case 0:
						return fmt.Errorf("draft %q: %w", name, store.ErrNotFound)
					case 1:
						after = revs[0].Body
					default:
						before, after = revs[len(revs)-2].Body, revs[len(revs)-1].Body
					}
				}

				d := delta.Compute(name, before, after)
				out := cmd.OutOrStdout()
				if d.Text != "" {
					fmt.Fprint(out, d.Text)
					if !strings.HasSuffix(d.Text, "\n") {
						fmt.Fprintln(out)
					}
				}
				_, err := fmt.Fprintln(out, d.Stat.String())
				return err
			})
		},
	}
}

func draftsRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <name>...",
		Short: "Delete drafts and their history",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(st *store.Store) error {
				var errs []error
				for _, name := range args {
					if err := st.DeleteDraft(name); err != nil {
						errs = append(errs, fmt.Errorf("draft %q: %w", name, err))
						continue
					}
					fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", name)
				}
				return errors.Join(errs...)
			})
		},
	}
}

// draftBody returns the current body, or revision rev counted from 1.
func draftBody(st *store.Store, name string, rev int) (string, error) {
	if rev == 0 {
		d, err := st.LoadDraft(name)
		if err != nil {
			return "", fmt.Errorf("draft %q: %w", name, err)
		}
		return d.Body, nil
	}
	revs, err := st.Revisions(name)
	if err != nil {
		return "", err
	}
	if rev < 0 || rev > len(revs) {
		return "", fmt.Errorf("draft %q has %d revisions, no revision %d", name, len(revs), rev)
	}
	return revs[rev-1].Body, nil
}

func lineCount(body string) int {
	if body == "" {
		return 0
	}
	return strings.Count(strings.TrimSuffix(body, "\n"), "\n") + 1
}
