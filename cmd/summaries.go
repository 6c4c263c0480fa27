package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"scribe/summaries"
)

func newSummariesCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "summaries",
		Aliases: []string{"sum"},
		Short:   "Browse the markdown summaries repository",
	}

	list := &cobra.Command{
		Use:   "ls [dir]",
		Short: "List folders and markdown files",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			entries, err := a.source().List(cmd.Context(), dir)
			if err != nil {
				return err
			}
			for _, e := range entries {
				if e.Dir {
					fmt.Fprintf(cmd.OutOrStdout(), "%s/\n", e.Name)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", e.Path, summaries.Title(e.Name))
				}
			}
			return nil
		},
	}

	var (
		html  bool
		width int
		style string
	)
	show := &cobra.Command{
		Use:   "show <path>",
		Short: "Render a summary in the terminal or as HTML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			md, err := a.source().Fetch(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			var out string
			if html {
				out, err = summaries.RenderHTML(md)
			} else {
				out, err = summaries.RenderTerminal(md, width, style)
			}
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
	show.Flags().BoolVar(&html, "html", false, "print HTML instead of styled text")
	show.Flags().IntVarP(&width, "width", "w", 80, "wrap width")
	show.Flags().StringVar(&style, "style", "dark", "glamour style (dark, light, notty, ...)")

	sync := &cobra.Command{
		Use:   "sync",
		Short: "Clone or update the local mirror",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			if a.cfg.GitHub.MirrorDir == "" {
				return errors.New("no mirror directory configured (github.mirror_dir or SCRIBE_MIRROR_DIR)")
			}
			if err := a.cfg.Source().Validate(); err != nil {
				return err
			}
			m := summaries.NewMirror(a.cfg.Source(), a.cfg.GitHub.MirrorDir, "", a.log)
			if err := m.Sync(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), m.Dir())
			return nil
		},
	}

	cmd.AddCommand(list, show, sync)
	return cmd
}
