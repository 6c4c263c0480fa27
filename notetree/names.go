package notetree

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const defaultName = "Untitled"

// SanitizeName turns user input into something usable as a directory name.
func SanitizeName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', 0:
			return '_'
		}
		return r
	}, name)
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." {
		return defaultName
	}
	return name
}

// uniqueName returns name, or "name (n)" with the smallest n that collides
// neither with a sibling in parent nor with an entry in dir. self is
// ignored so a node can be renamed onto a case variant of its own name.
func uniqueName(parent *Folder, dir, name string, self Node) string {
	taken := func(candidate string) bool {
		for _, c := range parent.children {
			if c == self {
				continue
			}
			b := c.node()
			if strings.EqualFold(b.name, candidate) || strings.EqualFold(b.dirName, candidate) {
				return true
			}
		}
		if self != nil && strings.EqualFold(self.node().dirName, candidate) {
			return false
		}
		_, err := os.Lstat(filepath.Join(dir, candidate))
		return err == nil
	}

	if !taken(name) {
		return name
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s (%d)", name, i)
		if !taken(candidate) {
			return candidate
		}
	}
}

func lessName(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return la < lb
	}
	return a < b
}

func sortChildren(f *Folder) {
	sort.SliceStable(f.children, func(i, j int) bool {
		return lessName(f.children[i].Name(), f.children[j].Name())
	})
}
