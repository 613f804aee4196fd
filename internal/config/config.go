// Package config resolves the per-user configuration and runtime
// directory and loads the optional config.yaml describing the pieces
// of the session runtime a user may tune: default shell, scrollback
// bound, plugin search path, and per-mode keybindings. Layout-file
// parsing and the YAML migration tooling are out of scope.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultScrollbackBound is used when a config omits scrollback_bound.
const DefaultScrollbackBound = 10000

// Config is the optional, user-editable subset of session behavior.
// Every field has a sensible zero-value default so an empty or
// missing config.yaml is never an error.
type Config struct {
	DefaultShell    string                       `yaml:"default_shell"`
	ScrollbackBound int                          `yaml:"scrollback_bound"`
	PluginDirs      []string                     `yaml:"plugin_dirs"`
	Keybindings     map[string]map[string]string `yaml:"keybindings"`
}

// ConfigDir returns the zellij-go configuration directory (~/.config/zellij-go).
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "zellij-go")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "zellij-go")
	}
	return filepath.Join(home, ".config", "zellij-go")
}

// ResolveDir ensures ConfigDir exists and returns it.
func ResolveDir() (string, error) {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}
	return dir, nil
}

// Load reads config.yaml from ConfigDir.
func Load() (*Config, error) {
	return LoadFrom(filepath.Join(ConfigDir(), "config.yaml"))
}

// LoadFrom reads config.yaml from path. A missing file yields a
// Config with every default filled in, not an error — most sessions
// never carry a config file at all.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaults(), nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if cfg.DefaultShell == "" {
		cfg.DefaultShell = defaultShell()
	}
	if cfg.ScrollbackBound == 0 {
		cfg.ScrollbackBound = DefaultScrollbackBound
	}
	return &cfg, nil
}

func defaults() *Config {
	return &Config{
		DefaultShell:    defaultShell(),
		ScrollbackBound: DefaultScrollbackBound,
	}
}

func defaultShell() string {
	if shell := os.Getenv("SHELL"); shell != "" {
		return shell
	}
	return "/bin/sh"
}

func (c *Config) validate() error {
	if c.ScrollbackBound < 0 {
		return fmt.Errorf("scrollback_bound must be >= 0, got %d", c.ScrollbackBound)
	}
	for _, dir := range c.PluginDirs {
		if dir == "" {
			return fmt.Errorf("plugin_dirs: empty path not permitted")
		}
	}
	return nil
}
