package ui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestAccentColorFallsBackToPrimary(t *testing.T) {
	if got := AccentColor("no-such-accent"); got != lipgloss.TerminalColor(ColorPrimary) {
		t.Errorf("unknown accent should use the primary color, got %v", got)
	}
	if got := AccentColor("amber"); got == lipgloss.TerminalColor(ColorPrimary) {
		t.Error("known accent should not fall back")
	}
}

func TestRenderPhaseDots(t *testing.T) {
	tests := []struct {
		visible, total int
		on, off        int
	}{
		{1, 3, 1, 2},
		{3, 3, 3, 0},
		{-1, 3, 0, 3},
		{9, 3, 3, 0},
	}
	for _, tt := range tests {
		got := RenderPhaseDots(tt.visible, tt.total)
		if n := countRune(got, '●'); n != tt.on {
			t.Errorf("RenderPhaseDots(%d,%d) has %d filled dots, want %d", tt.visible, tt.total, n, tt.on)
		}
		if n := countRune(got, '○'); n != tt.off {
			t.Errorf("RenderPhaseDots(%d,%d) has %d empty dots, want %d", tt.visible, tt.total, n, tt.off)
		}
	}
	if RenderPhaseDots(1, 0) != "" {
		t.Error("zero total should render nothing")
	}
}

func countRune(s string, r rune) int {
	n := 0
	for _, c := range s {
		if c == r {
			n++
		}
	}
	return n
}

func TestThemeAccentStyle(t *testing.T) {
	th := TestTheme()
	if got := th.Accent("blue").Render("x"); got == "" {
		t.Error("accent style should render text")
	}
}
