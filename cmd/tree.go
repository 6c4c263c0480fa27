package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/spf13/cobra"

	"scribe/notetree"
)

func newTreeCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "tree [path]",
		Short: "Print the folder tree",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			start := a.tree.Root()
			if len(args) == 1 {
				if start, err = a.lookup(args[0]); err != nil {
					return err
				}
			}
			infos, depths := subtree(a.tree, start)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(infos)
			}
			printTree(cmd.OutOrStdout(), infos, depths)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print nodes as JSON")
	return cmd
}

// subtree lists the nodes below start with depths relative to it.
func subtree(tree *notetree.Repository, start notetree.Info) ([]notetree.Info, []int) {
	var (
		infos  []notetree.Info
		depths []int
	)
	if start.ID == notetree.RootID {
		tree.Walk(func(info notetree.Info, depth int) bool {
			infos = append(infos, info)
			depths = append(depths, depth)
			return true
		})
		return infos, depths
	}
	inside, base := false, 0
	tree.Walk(func(info notetree.Info, depth int) bool {
		switch {
		case info.ID == start.ID:
			inside, base = true, depth
		case inside && depth <= base:
			inside = false
		case inside:
			infos = append(infos, info)
			depths = append(depths, depth-base-1)
		}
		return true
	})
	return infos, depths
}

func printTree(w io.Writer, infos []notetree.Info, depths []int) {
	for i, info := range infos {
		name := info.Name
		if info.IsFolder() {
			name += "/"
		}
		fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depths[i]), name)
	}
}

func newFindCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "find <query>",
		Short: "List nodes whose name contains query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			for _, info := range a.tree.Find(args[0]) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", info.ID, info.Kind, a.displayPath(info))
			}
			return nil
		},
	}
}

// splitPath separates "a/b/c" into the parent path "a/b" and the name "c".
func splitPath(p string) (string, string) {
	p = strings.Trim(p, "/")
	dir, name := path.Split(p)
	return strings.TrimSuffix(dir, "/"), name
}

// ensureFolder resolves p, creating missing folders along the way when
// parents is set.
func (a *app) ensureFolder(p string, parents bool) (notetree.Info, error) {
	if !parents {
		info, err := a.lookup(p)
		if err != nil {
			return info, err
		}
		if !info.IsFolder() {
			return info, fmt.Errorf("%s: %w", p, notetree.ErrNotFolder)
		}
		return info, nil
	}
	cur := a.tree.Root()
	for _, part := range strings.Split(strings.Trim(p, "/"), "/") {
		if part == "" {
			continue
		}
		children, err := a.tree.Children(cur.ID)
		if err != nil {
			return cur, err
		}
		next, found := notetree.Info{}, false
		for _, c := range children {
			if strings.EqualFold(c.Name, part) {
				next, found = c, true
				break
			}
		}
		if !found {
			if next, err = a.tree.CreateFolder(cur.ID, part); err != nil {
				return cur, err
			}
		} else if !next.IsFolder() {
			return next, fmt.Errorf("%s: %w", part, notetree.ErrNotFolder)
		}
		cur = next
	}
	return cur, nil
}

func newMkdirCmd(opts *rootOptions) *cobra.Command {
	var parents bool
	cmd := &cobra.Command{
		Use:   "mkdir <path>",
		Short: "Create a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			dir, name := splitPath(args[0])
			parent, err := a.ensureFolder(dir, parents)
			if err != nil {
				return err
			}
			info, err := a.tree.CreateFolder(parent.ID, name)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.displayPath(info))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&parents, "parents", "p", false, "create missing parent folders")
	return cmd
}

func newNoteCmd(opts *rootOptions) *cobra.Command {
	var parents bool
	cmd := &cobra.Command{
		Use:   "new <path>",
		Short: "Create a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			dir, name := splitPath(args[0])
			parent, err := a.ensureFolder(dir, parents)
			if err != nil {
				return err
			}
			info, err := a.tree.CreateNote(parent.ID, name)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.displayPath(info))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&parents, "parents", "p", false, "create missing parent folders")
	return cmd
}

func newRenameCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <path> <name>",
		Short: "Rename a folder or note",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			info, err := a.lookup(args[0])
			if err != nil {
				return err
			}
			if info, err = a.tree.Rename(info.ID, args[1]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.displayPath(info))
			return nil
		},
	}
}

func newMoveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mv <path> <folder>",
		Short: "Move a folder or note into another folder",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			info, err := a.lookup(args[0])
			if err != nil {
				return err
			}
			target, err := a.lookup(args[1])
			if err != nil {
				return err
			}
			if info, err = a.tree.Move(info.ID, target.ID); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.displayPath(info))
			return nil
		},
	}
}

func newRemoveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <path>",
		Aliases: []string{"delete"},
		Short:   "Delete a folder with everything below it, or a note",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			info, err := a.lookup(args[0])
			if err != nil {
				return err
			}
			if err := a.tree.Delete(info.ID); err != nil {
				return err
			}
			a.log.Info().Str("id", info.ID).Str("name", info.Name).Msg("deleted")
			return nil
		},
	}
}
