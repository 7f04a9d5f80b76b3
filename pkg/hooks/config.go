// Package hooks runs user commands around `pw export`.
// Hooks are configured in .pitchwalk/hooks.yaml in the working directory and
// run before the export is generated and after it has been written to a file.
package hooks

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Phase says when a hook runs.
type Phase string

const (
	// PreExport runs before the export is generated. Failure aborts the export.
	PreExport Phase = "pre-export"
	// PostExport runs after the export file is written. Failure is reported only.
	PostExport Phase = "post-export"
)

// On-error policies.
const (
	OnErrorFail     = "fail"
	OnErrorContinue = "continue"
)

// DefaultTimeout bounds a hook that sets no timeout.
const DefaultTimeout = 30 * time.Second

// FileName is the hooks file, relative to the project directory.
var FileName = filepath.Join(".pitchwalk", "hooks.yaml")

// Hook is one configured command.
type Hook struct {
	Name    string            `yaml:"name"`
	Command string            `yaml:"command"`
	Timeout time.Duration     `yaml:"timeout,omitempty"`
	Env     map[string]string `yaml:"env,omitempty"`
	OnError string            `yaml:"on_error,omitempty"`
}

// Config is the parsed hooks file.
type Config struct {
	PreExport  []Hook `yaml:"pre-export,omitempty"`
	PostExport []Hook `yaml:"post-export,omitempty"`
}

// For returns the hooks of one phase.
func (c Config) For(phase Phase) []Hook {
	switch phase {
	case PreExport:
		return c.PreExport
	case PostExport:
		return c.PostExport
	default:
		return nil
	}
}

// Empty reports whether no hooks are configured.
func (c Config) Empty() bool {
	return len(c.PreExport) == 0 && len(c.PostExport) == 0
}

// Load reads dir/.pitchwalk/hooks.yaml. A missing file yields an empty
// config. Hooks with an empty command are dropped and reported as warnings.
func Load(dir string) (Config, []string, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Config{}, nil, nil
	}
	if err != nil {
		return Config{}, nil, fmt.Errorf("reading hooks: %w", err)
	}
	return Parse(data)
}

// Parse decodes and normalizes a hooks file.
func Parse(data []byte) (Config, []string, error) {
	var file struct {
		Hooks Config `yaml:"hooks"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Config{}, nil, fmt.Errorf("parsing hooks: %w", err)
	}

	var warnings []string
	cfg := file.Hooks
	cfg.PreExport = normalize(cfg.PreExport, PreExport, &warnings)
	cfg.PostExport = normalize(cfg.PostExport, PostExport, &warnings)
	return cfg, warnings, nil
}

func normalize(in []Hook, phase Phase, warnings *[]string) []Hook {
	var out []Hook
	for i, h := range in {
		if strings.TrimSpace(h.Command) == "" {
			*warnings = append(*warnings, fmt.Sprintf("%s hook %d has no command; skipped", phase, i+1))
			continue
		}
		if h.Timeout <= 0 {
			h.Timeout = DefaultTimeout
		}
		if h.OnError == "" {
			h.OnError = OnErrorContinue
			if phase == PreExport {
				h.OnError = OnErrorFail
			}
		}
		if h.Name == "" {
			h.Name = fmt.Sprintf("%s-%d", phase, i+1)
		}
		out = append(out, h)
	}
	return out
}

// UnmarshalYAML accepts timeouts as Go durations ("5s") or bare seconds.
func (h *Hook) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Name    string            `yaml:"name"`
		Command string            `yaml:"command"`
		Timeout string            `yaml:"timeout"`
		Env     map[string]string `yaml:"env"`
		OnError string            `yaml:"on_error"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*h = Hook{Name: raw.Name, Command: raw.Command, Env: raw.Env, OnError: raw.OnError}

	if raw.Timeout == "" {
		return nil
	}
	if d, err := time.ParseDuration(raw.Timeout); err == nil {
		h.Timeout = d
		return nil
	}
	var seconds float64
	if _, err := fmt.Sscanf(raw.Timeout, "%f", &seconds); err != nil {
		return fmt.Errorf("invalid timeout %q", raw.Timeout)
	}
	h.Timeout = time.Duration(seconds * float64(time.Second))
	return nil
}
