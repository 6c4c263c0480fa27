// Package config loads scribe's settings from scribe.yaml, an optional .env
// file and SCRIBE_* environment variables, in that order of precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"scribe/ink"
	"scribe/summaries"
)

const (
	FileName  = "scribe.yaml"
	EnvPrefix = "SCRIBE_"
)

type Canvas struct {
	Width            float64 `yaml:"width"`
	Height           float64 `yaml:"height"`
	MinPointDistance float64 `yaml:"min_point_distance"`
	EraserRadius     float64 `yaml:"eraser_radius"`
	DotRadius        float64 `yaml:"dot_radius"`
	EraseFirst       bool    `yaml:"erase_first"`
}

type GitHub struct {
	Owner     string `yaml:"owner"`
	Repo      string `yaml:"repo"`
	Branch    string `yaml:"branch"`
	Dir       string `yaml:"dir"`
	Token     string `yaml:"token"`
	APIBase   string `yaml:"api_base"`
	RawBase   string `yaml:"raw_base"`
	MirrorDir string `yaml:"mirror_dir"`
}

type Config struct {
	DataDir  string `yaml:"data_dir"`
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`
	Editor   string `yaml:"editor"`
	Canvas   Canvas `yaml:"canvas"`
	GitHub   GitHub `yaml:"github"`
}

func Default() Config {
	home, _ := os.UserHomeDir()
	opts := ink.DefaultOptions()
	return Config{
		DataDir:  filepath.Join(home, ".scribe", "notes"),
		LogLevel: "info",
		LogFile:  filepath.Join(home, ".scribe", "scribe.log"),
		Editor:   "vi",
		Canvas: Canvas{
			Width:            1080,
			Height:           1920,
			MinPointDistance: opts.MinPointDistance,
			EraserRadius:     opts.EraserRadius,
			DotRadius:        opts.DotRadius,
		},
		GitHub: GitHub{
			Branch:  "main",
			APIBase: summaries.DefaultAPIBase,
			RawBase: summaries.DefaultRawBase,
		},
	}
}

// Load builds the configuration. A missing yaml file is not an error; an
// empty path means ~/.scribe/scribe.yaml. The .env file is looked up next
// to the yaml file and in the working directory.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, ".scribe", FileName)
		}
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return cfg, err
		}
	}

	envFiles := []string{".env"}
	if path != "" {
		envFiles = append([]string{filepath.Join(filepath.Dir(path), ".env")}, envFiles...)
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			if err := godotenv.Load(f); err != nil {
				return cfg, fmt.Errorf("failed to load %s: %w", f, err)
			}
		}
	}

	if err := cfg.applyEnv(os.Getenv); err != nil {
		return cfg, err
	}
	cfg.DataDir = expandPath(cfg.DataDir)
	cfg.LogFile = expandPath(cfg.LogFile)
	cfg.GitHub.MirrorDir = expandPath(cfg.GitHub.MirrorDir)
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := getenv(EnvPrefix + key); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *float64) error {
		v := getenv(EnvPrefix + key)
		if v == "" {
			return nil
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
		}
		*dst = f
		return nil
	}

	str("DATA_DIR", &c.DataDir)
	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_FILE", &c.LogFile)
	str("EDITOR", &c.Editor)
	str("GITHUB_OWNER", &c.GitHub.Owner)
	str("GITHUB_REPO", &c.GitHub.Repo)
	str("GITHUB_BRANCH", &c.GitHub.Branch)
	str("GITHUB_DIR", &c.GitHub.Dir)
	str("GITHUB_TOKEN", &c.GitHub.Token)
	str("GITHUB_API", &c.GitHub.APIBase)
	str("GITHUB_RAW", &c.GitHub.RawBase)
	str("MIRROR_DIR", &c.GitHub.MirrorDir)

	for key, dst := range map[string]*float64{
		"CANVAS_WIDTH":       &c.Canvas.Width,
		"CANVAS_HEIGHT":      &c.Canvas.Height,
		"MIN_POINT_DISTANCE": &c.Canvas.MinPointDistance,
		"ERASER_RADIUS":      &c.Canvas.EraserRadius,
		"DOT_RADIUS":         &c.Canvas.DotRadius,
	} {
		if err := num(key, dst); err != nil {
			return err
		}
	}
	if v := getenv(EnvPrefix + "ERASE_FIRST"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sERASE_FIRST: %w", EnvPrefix, err)
		}
		c.Canvas.EraseFirst = b
	}
	return nil
}

// InkOptions converts the canvas section into canvas options.
func (c Config) InkOptions() ink.Options {
	return ink.Options{
		Width:            c.Canvas.Width,
		Height:           c.Canvas.Height,
		MinPointDistance: c.Canvas.MinPointDistance,
		EraserRadius:     c.Canvas.EraserRadius,
		DotRadius:        c.Canvas.DotRadius,
		EraseFirst:       c.Canvas.EraseFirst,
	}
}

func (c Config) Source() summaries.Repo {
	return summaries.Repo{
		Owner:   c.GitHub.Owner,
		Name:    c.GitHub.Repo,
		Branch:  c.GitHub.Branch,
		Dir:     c.GitHub.Dir,
		Token:   c.GitHub.Token,
		APIBase: c.GitHub.APIBase,
		RawBase: c.GitHub.RawBase,
	}
}

func expandPath(value string) string {
	if value == "" {
		return value
	}
	if strings.HasPrefix(value, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			value = filepath.Join(home, strings.TrimPrefix(value, "~"))
		}
	}
	if !filepath.IsAbs(value) {
		if abs, err := filepath.Abs(value); err == nil {
			value = abs
		}
	}
	return value
}
