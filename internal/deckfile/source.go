// Package deckfile decides which deck the presentation shows and loads it.
// Candidates are considered in priority order: the --deck flag, PW_DECK,
// deck.path from the config file, a deck in the working directory, and
// finally the built-in deck.
package deckfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vanderheijden86/pitchwalk/pkg/config"
	"github.com/vanderheijden86/pitchwalk/pkg/content"
	"github.com/vanderheijden86/pitchwalk/pkg/debug"
)

// Kind identifies where a deck came from.
type Kind string

const (
	KindFlag    Kind = "flag"
	KindEnv     Kind = "env"
	KindConfig  Kind = "config"
	KindWorkDir Kind = "workdir"
	KindBuiltin Kind = "builtin"
)

// WorkDirNames are the file names discovered in the working directory.
var WorkDirNames = []string{"pitchwalk.yaml", "pitchwalk.yml", filepath.Join(".pitchwalk", "deck.yaml")}

// Source is a resolved deck location.
type Source struct {
	Kind    Kind      `json:"kind"`
	Path    string    `json:"path,omitempty"` // empty for the built-in deck
	ModTime time.Time `json:"mod_time,omitempty"`
	Size    int64     `json:"size,omitempty"`
}

// String returns a human-readable description of the source.
func (s Source) String() string {
	if s.Kind == KindBuiltin {
		return "built-in deck"
	}
	return fmt.Sprintf("%s (%s, %d bytes, mod=%s)", s.Path, s.Kind, s.Size, s.ModTime.Format(time.RFC3339))
}

// Watchable reports whether the source is a file that can be live reloaded.
func (s Source) Watchable() bool {
	return s.Kind != KindBuiltin && s.Path != ""
}

// Options are the inputs to Resolve.
type Options struct {
	// FlagPath is the --deck value.
	FlagPath string
	// ConfigPath is deck.path from the config file.
	ConfigPath string
	// WorkDir is searched for WorkDirNames. Empty uses the process cwd;
	// "-" disables discovery.
	WorkDir string
}

// Resolve picks the deck source. An explicitly named file (flag, env or
// config) that cannot be stat'ed is an error rather than a silent fallback.
func Resolve(opts Options) (Source, error) {
	explicit := []struct {
		kind Kind
		path string
	}{
		{KindFlag, opts.FlagPath},
		{KindEnv, os.Getenv("PW_DECK")},
		{KindConfig, opts.ConfigPath},
	}
	for _, c := range explicit {
		path := strings.TrimSpace(c.path)
		if path == "" {
			continue
		}
		src, err := stat(c.kind, config.ExpandHome(path))
		if err != nil {
			return Source{}, fmt.Errorf("deck from %s: %w", c.kind, err)
		}
		debug.Log("deckfile: using %s", src)
		return src, nil
	}

	if opts.WorkDir != "-" {
		dir := opts.WorkDir
		if dir == "" {
			var err error
			if dir, err = os.Getwd(); err != nil {
				return Source{}, fmt.Errorf("failed to get current directory: %w", err)
			}
		}
		for _, name := range WorkDirNames {
			src, err := stat(KindWorkDir, filepath.Join(dir, name))
			if err == nil {
				debug.Log("deckfile: discovered %s", src)
				return src, nil
			}
			if !errors.Is(err, os.ErrNotExist) {
				return Source{}, fmt.Errorf("deck from %s: %w", KindWorkDir, err)
			}
		}
	}

	debug.Log("deckfile: using built-in deck")
	return Source{Kind: KindBuiltin}, nil
}

func stat(kind Kind, path string) (Source, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Source{}, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return Source{}, err
	}
	if info.IsDir() {
		return Source{}, fmt.Errorf("%s is a directory", abs)
	}
	return Source{Kind: kind, Path: abs, ModTime: info.ModTime(), Size: info.Size()}, nil
}

// Load reads and validates the deck for src.
func Load(src Source) (content.Deck, error) {
	if src.Kind == KindBuiltin {
		return content.Default(), nil
	}
	return content.LoadFile(src.Path)
}

// ResolveAndLoad is Resolve followed by Load.
func ResolveAndLoad(opts Options) (content.Deck, Source, error) {
	src, err := Resolve(opts)
	if err != nil {
		return content.Deck{}, Source{}, err
	}
	d, err := Load(src)
	if err != nil {
		return content.Deck{}, src, err
	}
	return d, src, nil
}
