// Package config handles loading and saving pw configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/pw/config.yaml
//   - State:   ~/.local/state/pw/ (debug logs)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/pitchwalk/pkg/stage"
)

// View names accepted by UIConfig.StartView.
const (
	ViewWalkthrough = "walkthrough"
	ViewRules       = "rules"
)

// RevealConfig controls the staged disclosure timing.
type RevealConfig struct {
	FirstMs       int  `yaml:"first_ms,omitempty"`       // Reply becomes visible (default 500)
	SecondMs      int  `yaml:"second_ms,omitempty"`      // System message becomes visible (default 1200)
	ReducedMotion bool `yaml:"reduced_motion,omitempty"` // Skip the staged reveal
}

// DeckConfig points at an external deck file.
type DeckConfig struct {
	Path  string `yaml:"path,omitempty"`
	Watch bool   `yaml:"watch,omitempty"` // Live reload on change
}

// UIConfig holds UI preference settings.
type UIConfig struct {
	StartView string `yaml:"start_view,omitempty"` // walkthrough, rules
	StartStep int    `yaml:"start_step,omitempty"` // 1-based scenario to open on
}

// Config is the top-level configuration for pw.
type Config struct {
	Reveal RevealConfig `yaml:"reveal,omitempty"`
	Deck   DeckConfig   `yaml:"deck,omitempty"`
	UI     UIConfig     `yaml:"ui,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Reveal: RevealConfig{
			FirstMs:  int(stage.DefaultReplyDelay / time.Millisecond),
			SecondMs: int(stage.DefaultSystemDelay / time.Millisecond),
		},
		UI: UIConfig{
			StartView: ViewWalkthrough,
			StartStep: 1,
		},
	}
}

// Timeline converts the reveal settings to a stage.Timeline and validates it.
func (r RevealConfig) Timeline() (stage.Timeline, error) {
	tl := stage.Timeline{
		Reply:         time.Duration(r.FirstMs) * time.Millisecond,
		System:        time.Duration(r.SecondMs) * time.Millisecond,
		ReducedMotion: r.ReducedMotion,
	}
	if err := tl.Validate(); err != nil {
		return stage.Timeline{}, fmt.Errorf("reveal config: %w", err)
	}
	return tl, nil
}

// Validate checks option values that cannot be repaired silently.
func (c Config) Validate() error {
	if _, err := c.Reveal.Timeline(); err != nil {
		return err
	}
	switch c.UI.StartView {
	case "", ViewWalkthrough, ViewRules:
	default:
		return fmt.Errorf("ui.start_view: unknown view %q (want %s or %s)", c.UI.StartView, ViewWalkthrough, ViewRules)
	}
	return nil
}

// ConfigDir returns the XDG config directory for pw.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "pw")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "pw")
}

// StateDir returns the XDG state directory for pw.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "pw")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "pw")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory and applies
// environment overrides.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		cfg := DefaultConfig()
		cfg.ApplyEnv()
		return cfg, nil
	}
	cfg, err := LoadFrom(path)
	if err != nil {
		return cfg, err
	}
	cfg.ApplyEnv()
	return cfg, nil
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	cfg.Deck.Path = expandHome(cfg.Deck.Path)
	if cfg.UI.StartStep < 1 {
		cfg.UI.StartStep = 1
	}

	if err := cfg.Validate(); err != nil {
		return DefaultConfig(), err
	}
	return cfg, nil
}

// ApplyEnv overlays PW_REDUCED_MOTION onto the config. PW_DECK is resolved
// by the deck loader so it can report where a deck came from.
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv("PW_REDUCED_MOTION")); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Reveal.ReducedMotion = b
		}
	}
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	return expandHome(path)
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
