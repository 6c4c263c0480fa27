package summaries

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const maxDocument = 8 << 20

// ErrTooLarge is returned for responses over 8 MiB.
var ErrTooLarge = errors.New("response exceeds 8 MiB")

// HTTPError is returned for non-2xx responses.
type HTTPError struct {
	URL        string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("GET %s: %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// GitHub reads the repository through the REST contents API and the raw
// content host.
type GitHub struct {
	repo   Repo
	client *http.Client
	log    zerolog.Logger
}

func NewGitHub(repo Repo, client *http.Client, log zerolog.Logger) *GitHub {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if repo.APIBase == "" {
		repo.APIBase = DefaultAPIBase
	}
	if repo.RawBase == "" {
		repo.RawBase = DefaultRawBase
	}
	repo.APIBase = strings.TrimSuffix(repo.APIBase, "/")
	repo.RawBase = strings.TrimSuffix(repo.RawBase, "/")
	return &GitHub{repo: repo, client: client, log: log}
}

type contentItem struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Type string `json:"type"`
}

func (g *GitHub) List(ctx context.Context, dir string) ([]Entry, error) {
	if err := g.repo.Validate(); err != nil {
		return nil, err
	}
	dir = g.repo.dir(dir)
	u := fmt.Sprintf("%s/repos/%s/%s/contents/%s?ref=%s",
		g.repo.APIBase, url.PathEscape(g.repo.Owner), url.PathEscape(g.repo.Name),
		escapePath(dir), url.QueryEscape(g.repo.branch()))

	body, err := g.get(ctx, u, "application/vnd.github+json")
	if err != nil {
		return nil, err
	}
	var items []contentItem
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("failed to decode listing of %q: %w", dir, err)
	}
	entries := make([]Entry, 0, len(items))
	for _, it := range items {
		switch it.Type {
		case "dir":
			entries = append(entries, Entry{Name: it.Name, Path: it.Path, Dir: true})
		case "file":
			entries = append(entries, Entry{Name: it.Name, Path: it.Path})
		}
	}
	return filter(entries), nil
}

func (g *GitHub) Fetch(ctx context.Context, path string) (string, error) {
	if err := g.repo.Validate(); err != nil {
		return "", err
	}
	u := fmt.Sprintf("%s/%s/%s/%s/%s",
		g.repo.RawBase, url.PathEscape(g.repo.Owner), url.PathEscape(g.repo.Name),
		url.PathEscape(g.repo.branch()), escapePath(cleanPath(path)))
	body, err := g.get(ctx, u, "text/plain")
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (g *GitHub) get(ctx context.Context, u, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", accept)
	if g.repo.Token != "" {
		req.Header.Set("Authorization", "Bearer "+g.repo.Token)
	}

	start := time.Now()
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	g.log.Debug().Str("url", u).Int("status", resp.StatusCode).Dur("took", time.Since(start)).Msg("github request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, &HTTPError{URL: u, StatusCode: resp.StatusCode}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocument+1))
	if err != nil {
		return nil, err
	}
	if len(body) > maxDocument {
		return nil, fmt.Errorf("GET %s: %w", u, ErrTooLarge)
	}
	return body, nil
}

func escapePath(p string) string {
	if p == "" {
		return ""
	}
	parts := strings.Split(p, "/")
	for i, s := range parts {
		parts[i] = url.PathEscape(s)
	}
	return strings.Join(parts, "/")
}
