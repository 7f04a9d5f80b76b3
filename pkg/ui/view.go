package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/pitchwalk/pkg/metrics"
	"github.com/vanderheijden86/pitchwalk/pkg/stage"
)

func (m Model) bodyHeight() int {
	h := m.height - headerHeight - footerHeight
	if h < 3 {
		h = 3
	}
	return h
}

// syncViewport re-renders the body into the viewport. It runs after every
// state change so View stays a pure read.
func (m *Model) syncViewport() {
	m.viewport.Width = m.width
	m.viewport.Height = m.bodyHeight()

	var body string
	switch {
	case m.showHelp:
		body = m.renderHelp()
	case m.showIntro:
		body = m.renderIntro()
	case m.view == ViewRules:
		body = m.renderRules(m.width)
	default:
		body = m.renderWalkthrough(m.width)
	}
	m.viewport.SetContent(body)
}

// View renders the header, the scrollable body and the footer.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	defer metrics.Timer(metrics.ViewRender)()

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.viewport.View(),
		m.renderFooter(),
	)
}

func (m Model) renderHeader() string {
	title := m.theme.Header.Render(m.deck.Title)

	views := []string{"Walkthrough", "Rules"}
	var tabs []string
	for i, v := range views {
		tabs = append(tabs, RenderChip(v, ColorPrimary, View(i) == m.view))
	}
	right := strings.Join(tabs, " ")

	gap := m.width - lipgloss.Width(title) - lipgloss.Width(right) - 2
	tagline := ""
	if gap > 3 && m.deck.Tagline != "" {
		tagline = m.theme.MutedText.Render(padRight(" "+truncate(m.deck.Tagline, gap-1), gap))
	} else if gap > 0 {
		tagline = strings.Repeat(" ", gap)
	}
	line1 := title + tagline + " " + right

	var line2 string
	if m.view == ViewRules {
		line2 = m.theme.MutedText.Render(fmt.Sprintf(" %d decision rules", m.rules.Len()))
	} else {
		line2 = m.renderStepTabs()
	}
	return line1 + "\n" + line2
}

// renderStepTabs renders one chip per scenario, shortening labels to fit.
func (m Model) renderStepTabs() string {
	scenarios := m.walk.Records()
	labels := make([]string, len(scenarios))
	for i, s := range scenarios {
		labels[i] = s.Label()
	}
	// Each chip carries SpaceXS padding on both sides.
	avail := m.width - len(labels)*2*SpaceXS
	labels = fitLabels(labels, " ", avail, 2)

	cur := m.walk.Index()
	chips := make([]string, len(labels))
	for i, l := range labels {
		chips[i] = RenderChip(l, AccentColor(scenarios[i].Accent), i == cur)
	}
	return strings.Join(chips, " ")
}

func (m Model) renderWalkthrough(width int) string {
	v := m.walk.CurrentView()
	s := v.Record
	inner := max(width-4, 20)

	var b strings.Builder
	b.WriteString(m.theme.Accent(s.Accent).Render(fmt.Sprintf("%d · %s", s.Ordinal, s.Name)))
	if s.Stage != "" {
		b.WriteString(m.theme.MutedText.Render("   stage: " + s.Stage))
	}
	b.WriteString("   " + RenderPhaseDots(int(v.Phase)+1, int(stage.FinalPhase)+1))
	b.WriteString("\n\n")

	b.WriteString(m.message(m.theme.UserLabel, "You", s.User, inner))
	if v.Visible(stage.PhaseReply) {
		b.WriteString(m.message(m.theme.AssistantLabel, "Assistant", s.Assistant, inner))
		if s.Action != "" {
			b.WriteString(m.theme.MutedText.Width(inner).Render("  ⚙ "+s.Action) + "\n\n")
		}
	} else {
		b.WriteString(m.theme.MutedText.Render("  …") + "\n\n")
	}

	if v.Visible(stage.PhaseSystem) {
		name := m.deck.Title
		if name == "" {
			name = "System"
		}
		b.WriteString(m.message(m.theme.SystemLabel, name, s.System, inner))
		if s.Intervention != "" {
			b.WriteString("  " + RenderChip(s.Intervention, AccentColor(s.Accent), true))
		}
		if s.Signals != "" {
			b.WriteString(m.theme.MutedText.Render("   " + s.Signals))
		}
	}

	panel := PanelStyle
	if v.Settled() {
		panel = FocusedPanelStyle.BorderForeground(AccentColor(s.Accent))
	}
	return panel.Width(max(width-2, 10)).Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) message(label lipgloss.Style, who, text string, width int) string {
	body := lipgloss.NewStyle().Width(width).PaddingLeft(SpaceSM).Render(text)
	return label.Render(who) + "\n" + body + "\n\n"
}

func (m Model) renderRules(width int) string {
	rules := m.rules.Records()
	cur := m.rules.Index()

	listWidth := width
	sideBySide := width >= 90
	if sideBySide {
		listWidth = width * 2 / 5
	}

	var list strings.Builder
	for i, r := range rules {
		label := truncate(fmt.Sprintf("%d. %s", i+1, r.Condition), listWidth-4)
		if i == cur {
			list.WriteString(m.theme.Selected.BorderForeground(AccentColor(r.Accent)).Render(label))
		} else {
			list.WriteString("  " + m.theme.Renderer.NewStyle().Foreground(AccentColor(r.Accent)).Render(label))
		}
		list.WriteString("\n")
	}

	sel := m.rules.CurrentView().Record
	detailWidth := width - 2
	if sideBySide {
		detailWidth = width - listWidth - 4
	}
	var d strings.Builder
	d.WriteString(m.theme.Accent(sel.Accent).Render(sel.Decision) + "\n\n")
	d.WriteString(m.theme.MutedText.Render("when   ") + sel.Condition + "\n")
	if sel.Trust != "" {
		d.WriteString(m.theme.MutedText.Render("trust  ") + sel.Trust + "\n")
	}
	if sel.Load != "" {
		d.WriteString(m.theme.MutedText.Render("load   ") + sel.Load + "\n")
	}
	if sel.Action != "" {
		d.WriteString("\n" + lipgloss.NewStyle().Width(max(detailWidth-4, 10)).Italic(true).Render(sel.Action))
	}
	detail := FocusedPanelStyle.BorderForeground(AccentColor(sel.Accent)).
		Width(max(detailWidth, 10)).
		Render(strings.TrimRight(d.String(), "\n"))

	if sideBySide {
		return lipgloss.JoinHorizontal(lipgloss.Top,
			lipgloss.NewStyle().Width(listWidth).Render(list.String()),
			detail)
	}
	return list.String() + "\n" + detail
}

func (m Model) renderIntro() string {
	intro := strings.TrimSpace(m.deck.Intro)
	if intro == "" {
		return m.theme.MutedText.Render("This deck has no intro.")
	}
	return m.md.Render(intro)
}

func (m Model) renderHelp() string {
	rows := [][2]string{
		{"←/→  h/l", "previous / next step"},
		{"1-9", "jump to step or rule"},
		{"g / G", "first / last"},
		{"r", "replay the current step"},
		{"↑/↓  j/k", "move rule selection"},
		{"tab", "switch walkthrough / rules"},
		{"i", "deck intro"},
		{"y", "copy current view"},
		{"pgup/pgdn", "scroll"},
		{"?", "toggle this help"},
		{"q", "quit"},
	}
	var b strings.Builder
	b.WriteString(m.theme.Accent("purple").Render("Keys") + "\n\n")
	for _, r := range rows {
		b.WriteString("  " + padRight(r[0], 12) + m.theme.MutedText.Render(r[1]) + "\n")
	}
	if m.source != "" {
		b.WriteString("\n" + m.theme.MutedText.Render("deck: "+m.source) + "\n")
	}
	if m.walk.Timeline().ReducedMotion {
		b.WriteString(m.theme.MutedText.Render("reduced motion: on") + "\n")
	}
	return b.String()
}

func (m Model) renderFooter() string {
	var nav string
	if m.view == ViewRules {
		sel := m.rules.CurrentView()
		nav = fmt.Sprintf("↑ rule %d/%d ↓", sel.Index+1, sel.Len)
	} else {
		v := m.walk.CurrentView()
		prev := "← Previous"
		if v.First() {
			prev = m.theme.MutedText.Render(prev)
		}
		next := "Next →"
		if v.Last() {
			next = m.theme.Accent("green").Render("Complete ✓")
		}
		nav = fmt.Sprintf("%s   %d/%d   %s", prev, v.Index+1, v.Len, next)
	}

	var status string
	switch {
	case m.status != "" && m.statusErr:
		status = m.theme.ErrorText.Render(m.status)
	case m.status != "":
		status = m.theme.MutedText.Render(m.status)
	default:
		status = m.theme.MutedText.Render("? help · tab switch · q quit")
	}

	return RenderDivider(m.width) + "\n" + nav + "   " + status
}
