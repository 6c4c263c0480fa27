package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"scribe/logging"
	"scribe/notestore"
	"scribe/tui"
)

func newBrowseCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Open the full-screen notes browser",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(cmd, opts)
		},
	}
}

// runBrowse logs to a file since the terminal belongs to the UI.
func runBrowse(cmd *cobra.Command, opts *rootOptions) error {
	cfg, err := opts.load()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0755); err != nil {
		return err
	}
	log, closer, err := logging.File(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer closer.Close()

	a, err := openApp(cfg, log)
	if err != nil {
		return err
	}
	writer := notestore.NewWriter(a.store)
	defer writer.Close()

	wd, _ := os.Getwd()
	log.Info().Str("data", cfg.DataDir).Int("nodes", a.tree.Len()).Msg("starting browser")
	return tui.Run(tui.Options{
		Tree:      a.tree,
		Store:     a.store,
		Writer:    writer,
		Prefs:     a.prefs,
		Source:    a.source(),
		Ink:       cfg.InkOptions(),
		Editor:    cfg.Editor,
		ExportDir: wd,
		Log:       log,
	})
}
