package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/pitchwalk/pkg/content"
)

// AssertDeckValid fails the test when d does not validate.
func AssertDeckValid(t *testing.T, d content.Deck) {
	t.Helper()
	if err := d.Validate(); err != nil {
		t.Fatalf("deck invalid: %v", err)
	}
}

// MarshalDeck encodes d as deck YAML.
func MarshalDeck(t *testing.T, d content.Deck) []byte {
	t.Helper()
	data, err := yaml.Marshal(d)
	if err != nil {
		t.Fatalf("marshal deck: %v", err)
	}
	return data
}

// WriteDeckFile writes d to path as YAML, creating parent directories, and
// returns path.
func WriteDeckFile(t *testing.T, path string, d content.Deck) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("create deck dir: %v", err)
	}
	if err := os.WriteFile(path, MarshalDeck(t, d), 0o644); err != nil {
		t.Fatalf("write deck: %v", err)
	}
	return path
}

// TempDeck writes a generated deck into a fresh temp dir and returns its path.
func TempDeck(t *testing.T, scenarios, rules int) (string, content.Deck) {
	t.Helper()
	d := NewDefault().Deck(scenarios, rules)
	path := WriteDeckFile(t, filepath.Join(t.TempDir(), "deck.yaml"), d)
	return path, d
}
