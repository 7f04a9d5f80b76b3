package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/pitchwalk/pkg/content"
)

func TestGenerateMarkdown_DefaultDeck(t *testing.T) {
	md := GenerateMarkdown(content.Default(), Options{})

	for _, want := range []string{
		"# HyBrAIn",
		"*The Missing Layer Between Humans and AI*",
		"## Table of Contents",
		"- [1. Care (Acceptance)](#1-care-acceptance)",
		"## 6. Scale (Habit)",
		"**User:** I'm struggling with this financial projection.",
		"| **Intervention** | ◐ Consistency Protection |",
		"## Decision Rules",
		"| 3 | Load overloaded + Session > 90th pct | Open+ | Overloaded | **Direct intervention** |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
	if strings.Contains(md, "Generated:") {
		t.Error("zero GeneratedAt should not stamp a date")
	}
}

func TestGenerateMarkdown_Options(t *testing.T) {
	d := content.Default()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	md := GenerateMarkdown(d, Options{GeneratedAt: at, SkipIntro: true})
	if !strings.Contains(md, "*Generated: "+at.Format(time.RFC1123)+"*") {
		t.Error("expected generated stamp")
	}
	if strings.Contains(md, "interaction regulation layer") {
		t.Error("intro should be skipped")
	}
}

func TestGenerateMarkdown_EscapesTableCells(t *testing.T) {
	d := content.Deck{
		Title: "T",
		Scenarios: []content.Scenario{{
			Ordinal: 1, Name: "A", Accent: "red",
			User: "u", Assistant: "a", System: "line one\nline two",
			Signals: "x | y",
		}},
		Rules: []content.Rule{{Condition: "a|b", Decision: "multi\nline", Accent: "red"}},
	}
	md := GenerateMarkdown(d, Options{})

	if !strings.Contains(md, `| **Signals** | x \| y |`) {
		t.Error("pipe in signals should be escaped")
	}
	if !strings.Contains(md, `| 1 | a\|b |  |  | **multi line** |  |`) {
		t.Errorf("rule row not flattened:\n%s", md)
	}
	if !strings.Contains(md, "> line one\n> line two") {
		t.Error("system message should be block-quoted line by line")
	}
}

func TestUniqueSlug(t *testing.T) {
	counts := make(map[string]int)
	got := []string{
		uniqueSlug("intro", counts),
		uniqueSlug("intro", counts),
		uniqueSlug("intro", counts),
		uniqueSlug("", counts),
	}
	want := []string{"intro", "intro-1", "intro-2", "section"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("slug %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCreateSlug(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"1. Care (Acceptance)", "1-care-acceptance"},
		{"Decision Rules", "decision-rules"},
		{"  --Weird__Name!! ", "weird-name"},
	}
	for _, tt := range tests {
		if got := createSlug(tt.in); got != tt.want {
			t.Errorf("createSlug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGenerateJSON(t *testing.T) {
	d := content.Default()
	data, err := GenerateJSON(d, Options{})
	if err != nil {
		t.Fatal(err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if doc.Title != "HyBrAIn" {
		t.Errorf("title = %q", doc.Title)
	}
	if len(doc.Scenarios) != 6 || len(doc.Rules) != 6 {
		t.Errorf("got %d scenarios, %d rules", len(doc.Scenarios), len(doc.Rules))
	}
	if doc.GeneratedAt != nil {
		t.Error("generated_at should be omitted for zero time")
	}
	if doc.Scenarios[4].Name != "Regulate" {
		t.Errorf("scenario 5 = %q", doc.Scenarios[4].Name)
	}
}

func TestWrite_Formats(t *testing.T) {
	d := content.Default()

	var md bytes.Buffer
	if err := Write(&md, d, "Markdown", Options{}); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(md.String(), "# HyBrAIn") {
		t.Error("markdown output should start with the title")
	}

	var js bytes.Buffer
	if err := Write(&js, d, FormatJSON, Options{}); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(js.String(), "{") {
		t.Error("json output should be an object")
	}

	if err := Write(&bytes.Buffer{}, d, "pdf", Options{}); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestSaveMarkdownToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deck.md")
	if err := SaveMarkdownToFile(content.Default(), Options{}, path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "## Decision Rules") {
		t.Error("saved file missing rules section")
	}
}
