package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/pitchwalk/pkg/content"
	"github.com/vanderheijden86/pitchwalk/pkg/metrics"
	"github.com/vanderheijden86/pitchwalk/pkg/version"
)

// Format names accepted by Write.
const (
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

// Document is the JSON export envelope.
type Document struct {
	Version     string             `json:"version"`
	GeneratedAt *time.Time         `json:"generated_at,omitempty"`
	Title       string             `json:"title"`
	Tagline     string             `json:"tagline,omitempty"`
	Scenarios   []content.Scenario `json:"scenarios"`
	Rules       []content.Rule     `json:"rules"`
}

// NewDocument wraps a deck for JSON output.
func NewDocument(d content.Deck, opts Options) Document {
	doc := Document{
		Version:   version.Version,
		Title:     d.Title,
		Tagline:   d.Tagline,
		Scenarios: d.Scenarios,
		Rules:     d.Rules,
	}
	if !opts.GeneratedAt.IsZero() {
		t := opts.GeneratedAt.UTC()
		doc.GeneratedAt = &t
	}
	return doc
}

// GenerateJSON renders the deck as indented JSON.
func GenerateJSON(d content.Deck, opts Options) ([]byte, error) {
	defer metrics.Timer(metrics.Export)()

	data, err := json.MarshalIndent(NewDocument(d, opts), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding deck: %w", err)
	}
	return append(data, '\n'), nil
}

// Write renders d in the named format to w.
func Write(w io.Writer, d content.Deck, format string, opts Options) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "md", FormatMarkdown:
		_, err := io.WriteString(w, GenerateMarkdown(d, opts))
		return err
	case FormatJSON:
		data, err := GenerateJSON(d, opts)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	default:
		return fmt.Errorf("unknown export format %q (want %s or %s)", format, FormatMarkdown, FormatJSON)
	}
}
