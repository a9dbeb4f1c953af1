// Package config holds formnerd configuration, loaded from a YAML file with
// environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"formnerd/internal/surface"
)

// Config holds all formnerd configuration.
type Config struct {
	// Matching tunables
	Matching MatchingConfig `yaml:"matching"`

	// Session behavior defaults
	Session SessionConfig `yaml:"session"`

	// Knowledge base storage
	Knowledge KnowledgeConfig `yaml:"knowledge"`

	// Browser connection
	Browser surface.BrowserConfig `yaml:"browser"`
}

// MatchingConfig configures the similarity matcher. The threshold is a
// tunable heuristic, not a load-bearing constant.
type MatchingConfig struct {
	Threshold       float64 `yaml:"threshold"`
	MinPromptLength int     `yaml:"min_prompt_length"`
}

// SessionConfig configures default session options.
type SessionConfig struct {
	AutoPlayback   bool `yaml:"auto_playback"`
	AutoProceed    bool `yaml:"auto_proceed"`
	ProceedDelayMs int  `yaml:"proceed_delay_ms"`
}

// KnowledgeConfig configures the knowledge base store.
type KnowledgeConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Matching: MatchingConfig{
			Threshold:       0.6,
			MinPromptLength: 3,
		},
		Session: SessionConfig{
			ProceedDelayMs: 1500,
		},
		Knowledge: KnowledgeConfig{
			DatabasePath: filepath.Join(".formnerd", "knowledge.db"),
		},
		Browser: surface.DefaultBrowserConfig(),
	}
}

// ConfigDir returns the directory where config is stored: a project-local
// .formnerd directory when present or creatable, else under the home dir.
func ConfigDir() (string, error) {
	if cwd, err := os.Getwd(); err == nil {
		localDir := filepath.Join(cwd, ".formnerd")
		if stat, err := os.Stat(localDir); (err == nil && stat.IsDir()) || os.IsNotExist(err) {
			return localDir, nil
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".formnerd"), nil
}

// Load reads the configuration from path (or the default location when path
// is empty), falling back to defaults when the file does not exist, then
// applies environment overrides.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		dir, err := ConfigDir()
		if err != nil {
			return cfg, err
		}
		path = filepath.Join(dir, "config.yaml")
	}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return cfg, err
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration to its default location.
func Save(cfg Config) error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "config.yaml"), data, 0644)
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if path := os.Getenv("FORMNERD_DB"); path != "" {
		c.Knowledge.DatabasePath = path
	}
	if url := os.Getenv("FORMNERD_DEBUGGER_URL"); url != "" {
		c.Browser.DebuggerURL = url
	}
	if v := os.Getenv("FORMNERD_HEADLESS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Browser.Headless = b
		}
	}
	if v := os.Getenv("FORMNERD_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 && f < 1 {
			c.Matching.Threshold = f
		}
	}
}
