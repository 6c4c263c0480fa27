package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"scribe/config"
	"scribe/logging"
	"scribe/notestore"
	"scribe/notetree"
	"scribe/settings"
	"scribe/summaries"
)

type rootOptions struct {
	configPath string
	dataDir    string
	debug      bool
}

// app holds what every command needs once configuration is loaded.
type app struct {
	cfg   config.Config
	log   zerolog.Logger
	tree  *notetree.Repository
	store *notestore.Store
	prefs *settings.Store
}

func (o *rootOptions) load() (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return cfg, err
	}
	if o.dataDir != "" {
		if abs, err := filepath.Abs(o.dataDir); err == nil {
			cfg.DataDir = abs
		} else {
			cfg.DataDir = o.dataDir
		}
	}
	if o.debug {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

func (o *rootOptions) open(cmd *cobra.Command) (*app, error) {
	cfg, err := o.load()
	if err != nil {
		return nil, err
	}
	return openApp(cfg, logging.New(cmd.ErrOrStderr(), cfg.LogLevel))
}

func openApp(cfg config.Config, log zerolog.Logger) (*app, error) {
	tree, err := notetree.Open(cfg.DataDir, notetree.Options{Logger: log})
	if err != nil {
		return nil, err
	}
	return &app{
		cfg:   cfg,
		log:   log,
		tree:  tree,
		store: notestore.New(tree, log),
		prefs: settings.NewStore(cfg.DataDir),
	}, nil
}

// source picks the local mirror when one is configured and the GitHub API
// otherwise.
func (a *app) source() summaries.Source {
	repo := a.cfg.Source()
	if a.cfg.GitHub.MirrorDir != "" {
		return summaries.NewMirror(repo, a.cfg.GitHub.MirrorDir, "", a.log)
	}
	return summaries.NewGitHub(repo, nil, a.log)
}

// lookup resolves a slash separated name path, falling back to treating
// arg as a node id. An empty path or "/" is the root.
func (a *app) lookup(arg string) (notetree.Info, error) {
	if strings.Trim(arg, "/") == "" {
		return a.tree.Root(), nil
	}
	info, err := a.tree.Resolve(arg)
	if err == nil {
		return info, nil
	}
	if byID, idErr := a.tree.Get(arg); idErr == nil {
		return byID, nil
	}
	return notetree.Info{}, err
}

func (a *app) note(arg string) (notetree.Info, error) {
	info, err := a.lookup(arg)
	if err != nil {
		return info, err
	}
	if info.IsFolder() {
		return info, fmt.Errorf("%s: %w", arg, notestore.ErrNotNote)
	}
	return info, nil
}

// displayPath renders a node as the name path lookup accepts.
func (a *app) displayPath(info notetree.Info) string {
	if info.ID == notetree.RootID {
		return "/"
	}
	ancestors, _ := a.tree.Ancestors(info.ID)
	parts := make([]string, 0, len(ancestors)+1)
	for _, anc := range ancestors {
		if anc.ID != notetree.RootID {
			parts = append(parts, anc.Name)
		}
	}
	return strings.Join(append(parts, info.Name), "/")
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "scribe",
		Short: "Handwritten notes in a folder tree",
		Long:  "scribe keeps freehand sketches and markdown notes in a folder tree on disk and browses a GitHub repository of summaries.",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(cmd, opts)
		},
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (default ~/.scribe/scribe.yaml)")
	root.PersistentFlags().StringVarP(&opts.dataDir, "data", "d", "", "notes directory")
	root.PersistentFlags().BoolVarP(&opts.debug, "debug", "v", false, "debug logging")

	root.AddCommand(
		newBrowseCmd(opts),
		newTreeCmd(opts),
		newFindCmd(opts),
		newMkdirCmd(opts),
		newNoteCmd(opts),
		newRenameCmd(opts),
		newMoveCmd(opts),
		newRemoveCmd(opts),
		newCatCmd(opts),
		newStrokesCmd(opts),
		newExportCmd(opts),
		newPresetsCmd(opts),
		newSummariesCmd(opts),
	)
	return root
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
