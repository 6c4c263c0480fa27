// Package summaries browses a repository of markdown summaries, either
// straight from GitHub or through a local git mirror, and renders the
// markdown for display.
package summaries

import (
	"context"
	"errors"
	"path"
	"sort"
	"strings"
)

const (
	DefaultAPIBase = "https://api.github.com"
	DefaultRawBase = "https://raw.githubusercontent.com"
)

var ErrNotConfigured = errors.New("summaries repository not configured")

// Entry is one listed item. Path is relative to the repository root.
type Entry struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Dir  bool   `json:"dir"`
}

// Source lists directories and fetches markdown documents. An empty dir
// lists the configured base directory.
type Source interface {
	List(ctx context.Context, dir string) ([]Entry, error)
	Fetch(ctx context.Context, path string) (string, error)
}

// Repo identifies the summaries repository.
type Repo struct {
	Owner   string
	Name    string
	Branch  string
	Dir     string
	Token   string
	APIBase string
	RawBase string
}

func (r Repo) Validate() error {
	if r.Owner == "" || r.Name == "" {
		return ErrNotConfigured
	}
	return nil
}

func (r Repo) branch() string {
	if r.Branch == "" {
		return "main"
	}
	return r.Branch
}

func (r Repo) dir(dir string) string {
	if dir == "" {
		dir = r.Dir
	}
	return cleanPath(dir)
}

// CloneURL is the https clone address of the repository on github.com.
func (r Repo) CloneURL() string {
	return "https://github.com/" + r.Owner + "/" + r.Name + ".git"
}

// cleanPath normalises a slash separated repository path and keeps it
// inside the repository.
func cleanPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.TrimPrefix(path.Clean("/"+p), "/")
	return p
}

// IsMarkdown reports whether name has a markdown extension.
func IsMarkdown(name string) bool {
	return strings.EqualFold(path.Ext(name), ".md")
}

// filter keeps directories and markdown files, directories first and each
// group ordered by case-insensitive name.
func filter(entries []Entry) []Entry {
	out := entries[:0]
	for _, e := range entries {
		if strings.HasPrefix(e.Name, ".") {
			continue
		}
		if e.Dir || IsMarkdown(e.Name) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Dir != out[j].Dir {
			return out[i].Dir
		}
		a, b := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if a != b {
			return a < b
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Title turns a summary file name into a display title.
func Title(name string) string {
	name = strings.TrimSuffix(name, path.Ext(name))
	name = strings.NewReplacer("_", " ", "-", " ").Replace(name)
	return strings.TrimSpace(name)
}
