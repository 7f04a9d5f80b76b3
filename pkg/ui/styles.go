package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Spacing in cells.
const (
	SpaceXS = 1
	SpaceSM = 2
)

// Palette. Light values keep WCAG AA contrast on a white background.
var (
	ColorPrimary = lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"}
	ColorInfo    = lipgloss.AdaptiveColor{Light: "#006080", Dark: "#8BE9FD"}
	ColorDanger  = lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"}
	ColorMuted   = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#6272A4"}

	colorRule = lipgloss.AdaptiveColor{Light: "#D0D0D0", Dark: "#44475A"}
)

var (
	// PanelStyle frames a step while its messages are still being revealed.
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorRule).
			Padding(0, SpaceXS)

	// FocusedPanelStyle frames a settled step and the rule detail.
	FocusedPanelStyle = PanelStyle.BorderForeground(ColorPrimary)
)

// RenderChip renders a tab-like label. Active chips use the accent as
// background.
func RenderChip(label string, accent lipgloss.TerminalColor, active bool) string {
	s := lipgloss.NewStyle().Padding(0, SpaceXS)
	if active {
		return s.Background(accent).Foreground(lipgloss.Color("#1E1F29")).Bold(true).Render(label)
	}
	return s.Foreground(accent).Render(label)
}

// RenderPhaseDots renders reveal progress as ●●○.
func RenderPhaseDots(visible, total int) string {
	if total <= 0 {
		return ""
	}
	if visible < 0 {
		visible = 0
	}
	if visible > total {
		visible = total
	}
	on := lipgloss.NewStyle().Foreground(ColorPrimary).Render(strings.Repeat("●", visible))
	off := lipgloss.NewStyle().Foreground(ColorMuted).Render(strings.Repeat("○", total-visible))
	return on + off
}

// RenderDivider renders a full-width rule above the footer.
func RenderDivider(width int) string {
	if width <= 0 {
		return ""
	}
	return lipgloss.NewStyle().Foreground(colorRule).Render(strings.Repeat("─", width))
}
