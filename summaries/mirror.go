package summaries

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/rs/zerolog"
)

// Mirror serves the repository from a local clone kept under Dir. The
// clone is made on first use; Sync pulls new commits.
type Mirror struct {
	repo Repo
	dir  string
	url  string
	log  zerolog.Logger

	mu sync.Mutex
}

// NewMirror clones from url, or from the repository's github.com address
// when url is empty.
func NewMirror(repo Repo, dir, url string, log zerolog.Logger) *Mirror {
	if url == "" {
		url = repo.CloneURL()
	}
	return &Mirror{repo: repo, dir: dir, url: url, log: log}
}

func (m *Mirror) Dir() string {
	return m.dir
}

func (m *Mirror) auth() *githttp.BasicAuth {
	if m.repo.Token == "" {
		return nil
	}
	return &githttp.BasicAuth{Username: "x-access-token", Password: m.repo.Token}
}

func (m *Mirror) cloned() bool {
	info, err := os.Stat(filepath.Join(m.dir, ".git"))
	return err == nil && info.IsDir()
}

func (m *Mirror) ensure(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cloned() {
		return nil
	}
	return m.clone(ctx)
}

func (m *Mirror) clone(ctx context.Context) error {
	if m.url == m.repo.CloneURL() {
		if err := m.repo.Validate(); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(m.dir, 0755); err != nil {
		return err
	}
	opts := &git.CloneOptions{
		URL:           m.url,
		ReferenceName: plumbing.NewBranchReferenceName(m.repo.branch()),
		SingleBranch:  true,
	}
	if auth := m.auth(); auth != nil {
		opts.Auth = auth
	}
	m.log.Info().Str("url", m.url).Str("dir", m.dir).Msg("cloning summaries")
	if _, err := git.PlainCloneContext(ctx, m.dir, false, opts); err != nil {
		return fmt.Errorf("failed to clone %s: %w", m.url, err)
	}
	return nil
}

// Sync clones the repository if needed and otherwise pulls the branch.
// An up to date mirror is not an error.
func (m *Mirror) Sync(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.cloned() {
		return m.clone(ctx)
	}
	r, err := git.PlainOpen(m.dir)
	if err != nil {
		return err
	}
	wt, err := r.Worktree()
	if err != nil {
		return err
	}
	opts := &git.PullOptions{
		RemoteName:    "origin",
		ReferenceName: plumbing.NewBranchReferenceName(m.repo.branch()),
		SingleBranch:  true,
	}
	if auth := m.auth(); auth != nil {
		opts.Auth = auth
	}
	err = wt.PullContext(ctx, opts)
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		m.log.Debug().Str("dir", m.dir).Msg("summaries up to date")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to pull %s: %w", m.url, err)
	}
	return nil
}

func (m *Mirror) List(ctx context.Context, dir string) ([]Entry, error) {
	if err := m.ensure(ctx); err != nil {
		return nil, err
	}
	dir = m.repo.dir(dir)
	items, err := os.ReadDir(filepath.Join(m.dir, filepath.FromSlash(dir)))
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(items))
	for _, it := range items {
		p := it.Name()
		if dir != "" {
			p = dir + "/" + p
		}
		entries = append(entries, Entry{Name: it.Name(), Path: p, Dir: it.IsDir()})
	}
	return filter(entries), nil
}

func (m *Mirror) Fetch(ctx context.Context, path string) (string, error) {
	if err := m.ensure(ctx); err != nil {
		return "", err
	}
	data, err := os.ReadFile(filepath.Join(m.dir, filepath.FromSlash(cleanPath(path))))
	if err != nil {
		return "", err
	}
	return string(data), nil
}
