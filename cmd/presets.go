package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"scribe/ink"
	"scribe/settings"
)

func newPresetsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "List saved pen presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			prefs, err := a.prefs.Load()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "pen width %g, eraser width %g\n", prefs.PenWidth, prefs.EraserWidth)
			printPresets(cmd, prefs.PresetList())
			return nil
		},
	}

	add := &cobra.Command{
		Use:   "add <color> <width>",
		Short: "Save a pen preset; color is a signed decimal or #AARRGGBB",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			color, err := ink.ParseColor(args[0])
			if err != nil {
				return err
			}
			width, err := strconv.ParseFloat(args[1], 64)
			if err != nil || width <= 0 {
				return fmt.Errorf("invalid width %q", args[1])
			}
			list, err := a.prefs.AddPreset(settings.Preset{Color: color, Width: width})
			if err != nil {
				return err
			}
			printPresets(cmd, list)
			return nil
		},
	}

	remove := &cobra.Command{
		Use:   "rm <number>",
		Short: "Remove a pen preset by its listed number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid preset number %q", args[0])
			}
			list, err := a.prefs.RemovePreset(n - 1)
			if err != nil {
				return err
			}
			printPresets(cmd, list)
			return nil
		},
	}

	cmd.AddCommand(add, remove)
	return cmd
}

func printPresets(cmd *cobra.Command, list []settings.Preset) {
	for i, p := range list {
		fmt.Fprintf(cmd.OutOrStdout(), "%d\t#%08X\t%g\n", i+1, p.Color, p.Width)
	}
}
