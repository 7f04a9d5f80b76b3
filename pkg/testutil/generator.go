// Package testutil builds deck fixtures for tests.
// All generators produce deterministic output for reproducible tests.
package testutil

import (
	"fmt"
	"math/rand"

	"github.com/vanderheijden86/pitchwalk/pkg/content"
)

var (
	stageNames = []string{"onboarding", "steady", "strain", "recovery", "handoff"}
	accentMix  = []string{"amber", "amber-soft", "blue", "green", "red", "purple", "warm"}
	trustMix   = []string{"cautious", "open", "reliant"}
	loadMix    = []string{"low", "elevated", "overloaded"}
)

// GeneratorConfig controls deck generation.
type GeneratorConfig struct {
	Seed      int64  // Random seed for determinism (0 = fixed default)
	Title     string // Deck title (default: "Fixture Deck")
	WithIntro bool   // Add a markdown intro
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{Seed: 42, Title: "Fixture Deck"}
}

// Generator creates valid decks of any size.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

// New creates a Generator with the given config.
func New(cfg GeneratorConfig) *Generator {
	if cfg.Seed == 0 {
		cfg.Seed = 42
	}
	if cfg.Title == "" {
		cfg.Title = "Fixture Deck"
	}
	return &Generator{cfg: cfg, rng: rand.New(rand.NewSource(cfg.Seed))}
}

// NewDefault creates a Generator with default config.
func NewDefault() *Generator {
	return New(DefaultConfig())
}

// Deck builds a deck with the given number of scenarios and rules. Names and
// messages embed their 1-based position so tests can look for them.
func (g *Generator) Deck(scenarios, rules int) content.Deck {
	d := content.Deck{
		Title:   g.cfg.Title,
		Tagline: "generated for tests",
	}
	if g.cfg.WithIntro {
		d.Intro = fmt.Sprintf("**%s** has %d scenarios.", g.cfg.Title, scenarios)
	}
	for i := 1; i <= scenarios; i++ {
		d.Scenarios = append(d.Scenarios, g.Scenario(i))
	}
	for i := 1; i <= rules; i++ {
		d.Rules = append(d.Rules, g.Rule(i))
	}
	return d
}

// Scenario builds the scenario at 1-based ordinal n.
func (g *Generator) Scenario(n int) content.Scenario {
	s := content.Scenario{
		Ordinal:   n,
		Name:      fmt.Sprintf("Step%d", n),
		Stage:     pick(g.rng, stageNames),
		Accent:    pick(g.rng, accentMix),
		User:      fmt.Sprintf("user message %d", n),
		Assistant: fmt.Sprintf("assistant reply %d", n),
		System:    fmt.Sprintf("system note %d", n),
		Action:    fmt.Sprintf("action %d", n),
		Signals:   fmt.Sprintf("signal-%d", g.rng.Intn(100)),
	}
	if g.rng.Intn(2) == 0 {
		s.Intervention = fmt.Sprintf("intervention %d", n)
	}
	return s
}

// Rule builds the rule at 1-based position n.
func (g *Generator) Rule(n int) content.Rule {
	return content.Rule{
		Condition: fmt.Sprintf("condition %d", n),
		Trust:     pick(g.rng, trustMix),
		Load:      pick(g.rng, loadMix),
		Decision:  fmt.Sprintf("decision %d", n),
		Action:    fmt.Sprintf("rule action %d", n),
		Accent:    pick(g.rng, accentMix),
	}
}

func pick(rng *rand.Rand, from []string) string {
	return from[rng.Intn(len(from))]
}
