package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dev-threads/show-changed-tests/internal/trailer"
)

const (
	appName = "show-changed-tests"

	// RepoFile is the name of the per-repository config file.
	RepoFile = ".show-changed-tests.yaml"
)

var (
	formats = []string{"text", "json", "markdown"}
	colors  = []string{"auto", "always", "never"}
)

// Config represents the show-changed-tests configuration.
type Config struct {
	// Prefix marks tags carrying a test-case number, e.g. "tc:" in @tc:123.
	Prefix string `yaml:"prefix"`
	// Label is the trailer key.
	Label     string   `yaml:"label"`
	Extension string   `yaml:"extension"`
	Format    string   `yaml:"format"`
	Color     string   `yaml:"color"`
	Exclude   []string `yaml:"exclude,omitempty"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Prefix:    "tc:",
		Label:     trailer.DefaultLabel,
		Extension: "feature",
		Format:    "text",
		Color:     "auto",
	}
}

// ConfigDir returns the platform-appropriate config directory.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", appName), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, appName), nil
		}
		return filepath.Join(home, "AppData", "Roaming", appName), nil
	default:
		return filepath.Join(home, ".config", appName), nil
	}
}

// ConfigPath returns the full path to the user config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// LoadFile loads the user config file. Returns zero Config and nil error if
// the file doesn't exist.
func LoadFile() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	return readFile(path)
}

// LoadRepoFile loads the repository config file from root. Returns zero
// Config and nil error if the file doesn't exist.
func LoadRepoFile(root string) (Config, error) {
	return readFile(filepath.Join(root, RepoFile))
}

func readFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to the user config file.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Marshal renders cfg as YAML.
func Marshal(cfg Config) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	return data, nil
}

// Load builds the effective config by merging:
// defaults <- user file <- repo file <- env <- overrides.
// An empty repoRoot skips the repository file. The overrides map comes from
// CLI flags (only non-zero values should be set).
func Load(repoRoot string, overrides map[string]string) (Config, error) {
	cfg := Default()

	userCfg, err := LoadFile()
	if err != nil {
		return Config{}, err
	}
	mergeFile(&cfg, userCfg)

	if repoRoot != "" {
		repoCfg, err := LoadRepoFile(repoRoot)
		if err != nil {
			return Config{}, err
		}
		mergeFile(&cfg, repoCfg)
	}

	mergeEnv(&cfg)
	mergeOverrides(&cfg, overrides)

	return cfg, nil
}

// Validate rejects values no command can run with.
func Validate(cfg Config) error {
	if cfg.Prefix == "" {
		return errors.New("prefix must not be empty")
	}
	if strings.TrimPrefix(cfg.Extension, ".") == "" {
		return errors.New("extension must not be empty")
	}
	if !slices.Contains(formats, cfg.Format) {
		return fmt.Errorf("unknown format %q (valid: %s)", cfg.Format, strings.Join(formats, ", "))
	}
	if !slices.Contains(colors, cfg.Color) {
		return fmt.Errorf("unknown color mode %q (valid: %s)", cfg.Color, strings.Join(colors, ", "))
	}
	if err := trailer.Validate(trailer.DefaultWidth, trailer.Prefix(cfg.Label)); err != nil {
		return fmt.Errorf("label: %w", err)
	}
	return nil
}

func mergeFile(dst *Config, src Config) {
	if src.Prefix != "" {
		dst.Prefix = src.Prefix
	}
	if src.Label != "" {
		dst.Label = src.Label
	}
	if src.Extension != "" {
		dst.Extension = src.Extension
	}
	if src.Format != "" {
		dst.Format = src.Format
	}
	if src.Color != "" {
		dst.Color = src.Color
	}
	if len(src.Exclude) > 0 {
		dst.Exclude = src.Exclude
	}
}

func mergeEnv(cfg *Config) {
	if v := os.Getenv("SCT_PREFIX"); v != "" {
		cfg.Prefix = v
	}
	if v := os.Getenv("SCT_LABEL"); v != "" {
		cfg.Label = v
	}
	if v := os.Getenv("SCT_EXTENSION"); v != "" {
		cfg.Extension = v
	}
	if v := os.Getenv("SCT_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("SCT_COLOR"); v != "" {
		cfg.Color = v
	}
}

func mergeOverrides(cfg *Config, overrides map[string]string) {
	if overrides == nil {
		return
	}
	if v, ok := overrides["prefix"]; ok && v != "" {
		cfg.Prefix = v
	}
	if v, ok := overrides["label"]; ok && v != "" {
		cfg.Label = v
	}
	if v, ok := overrides["extension"]; ok && v != "" {
		cfg.Extension = v
	}
	if v, ok := overrides["format"]; ok && v != "" {
		cfg.Format = v
	}
	if v, ok := overrides["color"]; ok && v != "" {
		cfg.Color = v
	}
	if v, ok := overrides["exclude"]; ok && v != "" {
		cfg.Exclude = splitList(v)
	}
}

// SetField sets a single config field by key name. Returns error if key is unknown.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "prefix":
		cfg.Prefix = value
	case "label":
		cfg.Label = value
	case "extension":
		cfg.Extension = value
	case "format":
		cfg.Format = value
	case "color":
		cfg.Color = value
	case "exclude":
		cfg.Exclude = splitList(value)
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
