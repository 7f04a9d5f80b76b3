package ui

import (
	"os"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/pitchwalk/pkg/content"
)

// termProfile is detected once; deck accents are hex colors and need a
// downgrade on terminals without 256-color support.
var termProfile = colorprofile.Detect(os.Stdout, os.Environ())

// AccentColor resolves a deck accent to a foreground color. Unknown accents
// use the primary color; 16-color terminals get plain white so accents stay
// readable on any background.
func AccentColor(accent string) lipgloss.TerminalColor {
	hex, ok := content.AccentHex(accent)
	if !ok {
		return ColorPrimary
	}
	if termProfile < colorprofile.ANSI256 {
		return lipgloss.ANSIColor(7)
	}
	return lipgloss.Color(hex)
}

// Theme holds the styles bound to one renderer.
type Theme struct {
	Renderer *lipgloss.Renderer

	// Title bar.
	Header lipgloss.Style

	// Speaker labels in a scenario panel.
	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	SystemLabel    lipgloss.Style

	MutedText lipgloss.Style
	ErrorText lipgloss.Style

	// Selected is the highlighted row of the rule list.
	Selected lipgloss.Style
}

var (
	headerFg    = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}
	assistantFg = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#BFBFBF"}
	selectedBg  = lipgloss.AdaptiveColor{Light: "#E0E0E0", Dark: "#44475A"}
)

// DefaultTheme returns the Dracula-flavored adaptive theme.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	return Theme{
		Renderer: r,
		Header: r.NewStyle().
			Background(ColorPrimary).
			Foreground(headerFg).
			Bold(true).
			Padding(0, SpaceXS),
		UserLabel:      r.NewStyle().Foreground(ColorInfo).Bold(true),
		AssistantLabel: r.NewStyle().Foreground(assistantFg).Bold(true),
		SystemLabel:    r.NewStyle().Foreground(ColorPrimary).Bold(true),
		MutedText:      r.NewStyle().Foreground(ColorMuted),
		ErrorText:      r.NewStyle().Foreground(ColorDanger).Bold(true),
		Selected: r.NewStyle().
			Background(selectedBg).
			Border(lipgloss.ThickBorder(), false, false, false, true).
			BorderForeground(ColorPrimary).
			PaddingLeft(SpaceXS).
			Bold(true),
	}
}

// Accent returns a bold style in the given deck accent.
func (t Theme) Accent(accent string) lipgloss.Style {
	return t.Renderer.NewStyle().Foreground(AccentColor(accent)).Bold(true)
}

// TestTheme returns a theme suitable for use in tests.
func TestTheme() Theme {
	return DefaultTheme(lipgloss.NewRenderer(os.Stdout))
}
