// Package export renders a deck as a markdown transcript or a JSON document.
package export

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/vanderheijden86/pitchwalk/pkg/content"
	"github.com/vanderheijden86/pitchwalk/pkg/metrics"
)

var slugNonAlphanumericRegex = regexp.MustCompile(`[^a-z0-9]+`)

// Options controls generated output.
type Options struct {
	// GeneratedAt is stamped under the title when non-zero.
	GeneratedAt time.Time
	// SkipIntro omits the deck's markdown intro.
	SkipIntro bool
}

// GenerateMarkdown renders the walkthrough as a transcript followed by the
// decision rule table.
func GenerateMarkdown(d content.Deck, opts Options) string {
	defer metrics.Timer(metrics.Export)()

	var sb strings.Builder

	title := d.Title
	if title == "" {
		title = "Walkthrough"
	}
	sb.WriteString(fmt.Sprintf("# %s\n\n", title))
	if d.Tagline != "" {
		sb.WriteString(fmt.Sprintf("*%s*\n\n", d.Tagline))
	}
	if !opts.GeneratedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("*Generated: %s*\n\n", opts.GeneratedAt.Format(time.RFC1123)))
	}
	if intro := strings.TrimSpace(d.Intro); intro != "" && !opts.SkipIntro {
		sb.WriteString(intro)
		sb.WriteString("\n\n")
	}

	// Table of Contents
	slugCounts := make(map[string]int)
	sb.WriteString("## Table of Contents\n\n")
	for _, s := range d.Scenarios {
		heading := scenarioHeading(s)
		sb.WriteString(fmt.Sprintf("- [%s](#%s)\n", heading, uniqueSlug(createSlug(heading), slugCounts)))
	}
	sb.WriteString(fmt.Sprintf("- [Decision Rules](#%s)\n\n", uniqueSlug("decision-rules", slugCounts)))
	sb.WriteString("---\n\n")

	for _, s := range d.Scenarios {
		sb.WriteString(fmt.Sprintf("## %s\n\n", scenarioHeading(s)))

		sb.WriteString("| Property | Value |\n|----------|-------|\n")
		if s.Stage != "" {
			sb.WriteString(fmt.Sprintf("| **Stage** | %s |\n", cell(s.Stage)))
		}
		if s.Intervention != "" {
			sb.WriteString(fmt.Sprintf("| **Intervention** | %s |\n", cell(s.Intervention)))
		}
		if s.Signals != "" {
			sb.WriteString(fmt.Sprintf("| **Signals** | %s |\n", cell(s.Signals)))
		}
		sb.WriteString("\n")

		sb.WriteString(fmt.Sprintf("**User:** %s\n\n", oneLine(s.User)))
		sb.WriteString(fmt.Sprintf("**Assistant:** %s\n\n", oneLine(s.Assistant)))
		if s.Action != "" {
			sb.WriteString(fmt.Sprintf("`%s`\n\n", strings.ReplaceAll(oneLine(s.Action), "`", "'")))
		}
		sb.WriteString(fmt.Sprintf("> %s\n\n", strings.ReplaceAll(strings.TrimSpace(s.System), "\n", "\n> ")))
		sb.WriteString("---\n\n")
	}

	sb.WriteString("## Decision Rules\n\n")
	sb.WriteString("| # | Condition | Trust | Load | Decision | Action |\n")
	sb.WriteString("|---|-----------|-------|------|----------|--------|\n")
	for i, r := range d.Rules {
		sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s | **%s** | %s |\n",
			i+1, cell(r.Condition), cell(r.Trust), cell(r.Load), cell(r.Decision), cell(r.Action)))
	}

	return sb.String()
}

// SaveMarkdownToFile writes the generated markdown to a file.
func SaveMarkdownToFile(d content.Deck, opts Options, filename string) error {
	return os.WriteFile(filename, []byte(GenerateMarkdown(d, opts)), 0o644)
}

func scenarioHeading(s content.Scenario) string {
	if s.Stage == "" {
		return fmt.Sprintf("%d. %s", s.Ordinal, s.Name)
	}
	return fmt.Sprintf("%d. %s (%s)", s.Ordinal, s.Name, s.Stage)
}

// cell flattens text for a single table cell.
func cell(text string) string {
	return strings.ReplaceAll(oneLine(text), "|", "\\|")
}

func oneLine(text string) string {
	text = strings.ReplaceAll(text, "\r", "")
	return strings.TrimSpace(strings.ReplaceAll(text, "\n", " "))
}

func uniqueSlug(base string, counts map[string]int) string {
	if base == "" {
		base = "section"
	}
	if count, ok := counts[base]; ok {
		count++
		counts[base] = count
		return fmt.Sprintf("%s-%d", base, count)
	}
	counts[base] = 0
	return base
}

// createSlug creates a URL-friendly slug from heading text.
func createSlug(text string) string {
	slug := strings.ToLower(text)
	slug = slugNonAlphanumericRegex.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
