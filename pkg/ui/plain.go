package ui

import (
	"fmt"
	"strings"

	"github.com/vanderheijden86/pitchwalk/pkg/content"
	"github.com/vanderheijden86/pitchwalk/pkg/stage"
)

// PlainScenario renders a walkthrough view as unstyled text, showing only the
// messages the current phase has revealed. It backs clipboard copy and the
// headless player output.
func PlainScenario(v stage.View[content.Scenario]) string {
	s := v.Record
	var sb strings.Builder

	fmt.Fprintf(&sb, "[%d/%d] %s", v.Index+1, v.Len, s.Name)
	if s.Stage != "" {
		fmt.Fprintf(&sb, " · %s", s.Stage)
	}
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "User: %s\n", s.User)
	if v.Visible(stage.PhaseReply) {
		fmt.Fprintf(&sb, "Assistant: %s\n", s.Assistant)
		if s.Action != "" {
			fmt.Fprintf(&sb, "  > %s\n", s.Action)
		}
	}
	if v.Visible(stage.PhaseSystem) {
		fmt.Fprintf(&sb, "System: %s\n", s.System)
		if s.Intervention != "" {
			fmt.Fprintf(&sb, "Intervention: %s\n", s.Intervention)
		}
		if s.Signals != "" {
			fmt.Fprintf(&sb, "Signals: %s\n", s.Signals)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// PlainRule renders a rule selection as unstyled text.
func PlainRule(sel stage.Selection[content.Rule]) string {
	r := sel.Record
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%d/%d] %s\n", sel.Index+1, sel.Len, r.Condition)
	if r.Trust != "" {
		fmt.Fprintf(&sb, "Trust: %s\n", r.Trust)
	}
	if r.Load != "" {
		fmt.Fprintf(&sb, "Load: %s\n", r.Load)
	}
	fmt.Fprintf(&sb, "Decision: %s\n", r.Decision)
	if r.Action != "" {
		fmt.Fprintf(&sb, "Action: %s\n", r.Action)
	}
	return strings.TrimRight(sb.String(), "\n")
}
