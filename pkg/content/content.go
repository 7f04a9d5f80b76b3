// Package content defines the deck's records and loads them from YAML.
//
// A deck carries an ordered list of scenarios for the walkthrough and an
// unordered list of decision rules for the rule explorer. Records are plain
// values: nothing in this package mutates a deck after it has been parsed.
package content

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/pitchwalk/pkg/metrics"
)

//go:embed deck.yaml
var builtinDeck []byte

// Sentinel validation errors.
var (
	ErrNoScenarios = errors.New("deck has no scenarios")
	ErrNoRules     = errors.New("deck has no rules")
)

// Scenario is one stage of the walkthrough: a short exchange between a user
// and an assistant followed by the system's intervention.
type Scenario struct {
	Ordinal      int    `yaml:"ordinal" json:"ordinal"`
	Name         string `yaml:"name" json:"name"`
	Stage        string `yaml:"stage" json:"stage"`
	Accent       string `yaml:"accent" json:"accent"`
	User         string `yaml:"user" json:"user"`
	Assistant    string `yaml:"assistant" json:"assistant"`
	System       string `yaml:"system" json:"system"`
	Intervention string `yaml:"intervention,omitempty" json:"intervention,omitempty"`
	Action       string `yaml:"action" json:"action"`
	Signals      string `yaml:"signals" json:"signals"`
}

// Label is the short tab label, e.g. "1 Care".
func (s Scenario) Label() string {
	return fmt.Sprintf("%d %s", s.Ordinal, s.Name)
}

// Rule maps a user condition to a decision.
type Rule struct {
	Condition string `yaml:"condition" json:"condition"`
	Trust     string `yaml:"trust" json:"trust"`
	Load      string `yaml:"load" json:"load"`
	Decision  string `yaml:"decision" json:"decision"`
	Action    string `yaml:"action" json:"action"`
	Accent    string `yaml:"accent" json:"accent"`
}

// Deck is the full content set consumed by the presentation.
type Deck struct {
	Title     string     `yaml:"title" json:"title"`
	Tagline   string     `yaml:"tagline,omitempty" json:"tagline,omitempty"`
	Intro     string     `yaml:"intro,omitempty" json:"intro,omitempty"`
	Scenarios []Scenario `yaml:"scenarios" json:"scenarios"`
	Rules     []Rule     `yaml:"rules" json:"rules"`
}

// Accent palette. Names map to hex colors; a record may also use a literal
// "#RRGGBB" value.
var accents = map[string]string{
	"amber":      "#F0A030",
	"amber-soft": "#FFD080",
	"blue":       "#3888F0",
	"green":      "#38D878",
	"red":        "#F05858",
	"purple":     "#9868F0",
	"warm":       "#F8E8D0",
}

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// AccentHex resolves an accent identifier to a hex color.
func AccentHex(accent string) (string, bool) {
	a := strings.TrimSpace(accent)
	if hex, ok := accents[strings.ToLower(a)]; ok {
		return hex, true
	}
	if hexColor.MatchString(a) {
		return strings.ToUpper(a), true
	}
	return "", false
}

// Default returns the built-in deck.
func Default() Deck {
	d, err := Parse(builtinDeck)
	if err != nil {
		panic(fmt.Sprintf("content: built-in deck is invalid: %v", err))
	}
	return d
}

// BuiltinYAML returns the raw built-in deck.
func BuiltinYAML() []byte {
	out := make([]byte, len(builtinDeck))
	copy(out, builtinDeck)
	return out
}

// Parse decodes and validates a YAML deck.
func Parse(data []byte) (Deck, error) {
	defer metrics.Timer(metrics.DeckParse)()

	var d Deck
	if err := yaml.Unmarshal(data, &d); err != nil {
		return Deck{}, fmt.Errorf("parsing deck: %w", err)
	}
	if err := d.Validate(); err != nil {
		return Deck{}, err
	}
	return d, nil
}

// LoadFile reads and validates a deck from path.
func LoadFile(path string) (Deck, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Deck{}, fmt.Errorf("reading deck: %w", err)
	}
	d, err := Parse(data)
	if err != nil {
		return Deck{}, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Validate checks the structural contract: both lists non-empty, scenario
// ordinals running 1..N in order, required text present and accents
// resolvable.
func (d Deck) Validate() error {
	if len(d.Scenarios) == 0 {
		return ErrNoScenarios
	}
	if len(d.Rules) == 0 {
		return ErrNoRules
	}

	var errs []error
	for i, s := range d.Scenarios {
		if s.Ordinal != i+1 {
			errs = append(errs, fmt.Errorf("scenario %d: ordinal %d out of sequence", i+1, s.Ordinal))
		}
		required := []struct{ field, value string }{
			{"name", s.Name},
			{"user", s.User},
			{"assistant", s.Assistant},
			{"system", s.System},
		}
		for _, f := range required {
			if strings.TrimSpace(f.value) == "" {
				errs = append(errs, fmt.Errorf("scenario %d: missing %s", i+1, f.field))
			}
		}
		if _, ok := AccentHex(s.Accent); !ok {
			errs = append(errs, fmt.Errorf("scenario %d: unknown accent %q", i+1, s.Accent))
		}
	}
	for i, r := range d.Rules {
		if strings.TrimSpace(r.Condition) == "" {
			errs = append(errs, fmt.Errorf("rule %d: missing condition", i+1))
		}
		if strings.TrimSpace(r.Decision) == "" {
			errs = append(errs, fmt.Errorf("rule %d: missing decision", i+1))
		}
		if _, ok := AccentHex(r.Accent); !ok {
			errs = append(errs, fmt.Errorf("rule %d: unknown accent %q", i+1, r.Accent))
		}
	}
	return errors.Join(errs...)
}
