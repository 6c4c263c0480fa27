package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFile(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load(filepath.Join(t.TempDir(), FileName))
	require.NoError(t, err)
	def := Default()
	assert.Equal(t, def.Canvas, cfg.Canvas)
	assert.Equal(t, "main", cfg.GitHub.Branch)
	assert.True(t, filepath.IsAbs(cfg.DataDir))
}

func TestLoadYAMLThenEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(`
data_dir: notes
log_level: debug
canvas:
  width: 500
  eraser_radius: 12
  erase_first: true
github:
  owner: acme
  repo: summaries
`), 0644))
	t.Setenv("SCRIBE_GITHUB_REPO", "other")
	t.Setenv("SCRIBE_DOT_RADIUS", "3.5")

	cfg, err := Load(path)
	require.NoError(t, err)
	wd, _ := os.Getwd()
	assert.Equal(t, filepath.Join(wd, "notes"), cfg.DataDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 500.0, cfg.Canvas.Width)
	assert.Equal(t, Default().Canvas.Height, cfg.Canvas.Height)
	assert.Equal(t, 12.0, cfg.Canvas.EraserRadius)
	assert.Equal(t, 3.5, cfg.Canvas.DotRadius)
	assert.True(t, cfg.Canvas.EraseFirst)
	assert.Equal(t, "acme", cfg.GitHub.Owner)
	assert.Equal(t, "other", cfg.GitHub.Repo)

	opts := cfg.InkOptions()
	assert.Equal(t, 12.0, opts.EraserRadius)
	assert.True(t, opts.EraseFirst)

	src := cfg.Source()
	assert.NoError(t, src.Validate())
	assert.Equal(t, "other", src.Name)
}

func TestLoadDotEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SCRIBE_GITHUB_OWNER=dotenv\nSCRIBE_GITHUB_TOKEN=tok\n"), 0644))
	t.Setenv("SCRIBE_GITHUB_OWNER", "")
	t.Setenv("SCRIBE_GITHUB_TOKEN", "")
	os.Unsetenv("SCRIBE_GITHUB_OWNER")
	os.Unsetenv("SCRIBE_GITHUB_TOKEN")

	cfg, err := Load(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.Equal(t, "dotenv", cfg.GitHub.Owner)
	assert.Equal(t, "tok", cfg.GitHub.Token)
}

func TestLoadBadValues(t *testing.T) {
	t.Chdir(t.TempDir())
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte("canvas: [1, 2"), 0644))
	_, err := Load(path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("log_level: info\n"), 0644))
	t.Setenv("SCRIBE_ERASER_RADIUS", "wide")
	_, err = Load(path)
	assert.ErrorContains(t, err, "SCRIBE_ERASER_RADIUS")
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "notes"), expandPath("~/notes"))
	assert.Equal(t, "", expandPath(""))
	assert.Equal(t, "/abs/dir", expandPath("/abs/dir"))
}
