package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"scribe/ink"
	"scribe/notetree"
)

func newCatCmd(opts *rootOptions) *cobra.Command {
	var write bool
	cmd := &cobra.Command{
		Use:   "cat <note>",
		Short: "Print a note's markdown, or replace it from stdin with --write",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			info, err := a.note(args[0])
			if err != nil {
				return err
			}
			if write {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				return a.store.SaveContent(info.ID, string(data))
			}
			content, err := a.store.LoadContent(info.ID)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), content)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "replace the content with stdin")
	return cmd
}

func newStrokesCmd(opts *rootOptions) *cobra.Command {
	var (
		importPath string
		wipe       bool
	)
	cmd := &cobra.Command{
		Use:   "strokes <note>",
		Short: "Print a note's strokes in strokes.paths form",
		Long: "Print a note's strokes one per line as <width>|<argb>|<x>,<y>;...\n" +
			"With --import the strokes are read from a file (\"-\" for stdin) and appended to the note.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			info, err := a.note(args[0])
			if err != nil {
				return err
			}
			if wipe {
				return a.store.SaveStrokes(info.ID, nil)
			}
			if importPath != "" {
				return importStrokes(cmd, a, info, importPath)
			}
			strokes, err := a.store.LoadStrokes(info.ID)
			if err != nil {
				return err
			}
			return ink.EncodeStrokes(cmd.OutOrStdout(), strokes)
		},
	}
	cmd.Flags().StringVarP(&importPath, "import", "i", "", "append strokes from a file")
	cmd.Flags().BoolVar(&wipe, "clear", false, "remove every stroke")
	return cmd
}

func importStrokes(cmd *cobra.Command, a *app, info notetree.Info, src string) error {
	var r io.Reader = cmd.InOrStdin()
	if src != "-" {
		f, err := os.Open(src)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	incoming, rep, err := ink.DecodeStrokes(r)
	if err != nil {
		return err
	}
	if rep.Skipped > 0 {
		a.log.Warn().Int("skipped", rep.Skipped).Int("lines", rep.Lines).Str("file", src).Msg("skipped malformed stroke lines")
	}
	existing, err := a.store.LoadStrokes(info.ID)
	if err != nil {
		return err
	}
	if err := a.store.SaveStrokes(info.ID, append(existing, incoming...)); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "imported %d strokes into %s\n", len(incoming), info.Name)
	return nil
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	var (
		out     string
		scale   float64
		padding float64
		caption string
		force   bool
	)
	cmd := &cobra.Command{
		Use:   "export <note>",
		Short: "Render a note's strokes to PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			info, err := a.note(args[0])
			if err != nil {
				return err
			}
			if out == "" {
				out = info.Name + ".png"
			}
			if !strings.EqualFold(filepath.Ext(out), ".png") {
				out += ".png"
			}
			if _, err := os.Stat(out); err == nil && !force {
				return fmt.Errorf("%s exists, use --force to overwrite", out)
			}
			if !cmd.Flags().Changed("caption") {
				caption = info.Name
			}
			strokes, err := a.store.LoadStrokes(info.ID)
			if err != nil {
				return err
			}
			r := ink.NewRenderer(a.cfg.Canvas.DotRadius)
			err = r.ExportPNG(out, strokes, ink.ExportOptions{Caption: caption, Padding: padding, Scale: scale})
			if errors.Is(err, ink.ErrEmpty) {
				return fmt.Errorf("%s has no strokes to export", info.Name)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default <note>.png)")
	cmd.Flags().Float64Var(&scale, "scale", 1, "scale factor")
	cmd.Flags().Float64Var(&padding, "padding", 16, "margin around the drawing")
	cmd.Flags().StringVar(&caption, "caption", "", "caption above the drawing (default the note name)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	return cmd
}
