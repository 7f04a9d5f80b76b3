package ui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/pitchwalk/pkg/content"
	"github.com/vanderheijden86/pitchwalk/pkg/stage"
	"github.com/vanderheijden86/pitchwalk/pkg/watcher"
)

func newTestModel(t *testing.T, opts Options) Model {
	t.Helper()
	if opts.Timeline == (stage.Timeline{}) {
		opts.Timeline = stage.DefaultTimeline()
	}
	if opts.Clipboard == nil {
		opts.Clipboard = func(string) error { return nil }
	}
	m, err := NewModel(content.Default(), opts)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	return m
}

func update(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func press(m Model, key string) (Model, tea.Cmd) {
	switch key {
	case "right":
		return update(m, tea.KeyMsg{Type: tea.KeyRight})
	case "left":
		return update(m, tea.KeyMsg{Type: tea.KeyLeft})
	case "up":
		return update(m, tea.KeyMsg{Type: tea.KeyUp})
	case "down":
		return update(m, tea.KeyMsg{Type: tea.KeyDown})
	case "tab":
		return update(m, tea.KeyMsg{Type: tea.KeyTab})
	case "esc":
		return update(m, tea.KeyMsg{Type: tea.KeyEsc})
	default:
		return update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)})
	}
}

// deliver feeds every advance of a schedule back into the model.
func deliver(m Model, epoch uint64, adv []stage.Advance) Model {
	for _, a := range adv {
		m, _ = update(m, revealMsg{epoch: epoch, advance: a})
	}
	return m
}

func TestNewModel_MountsFirstStep(t *testing.T) {
	m := newTestModel(t, Options{})

	v := m.Walkthrough()
	if v.Index != 0 || v.Phase != stage.PhasePrompt {
		t.Errorf("expected (0, prompt), got (%d, %s)", v.Index, v.Phase)
	}
	if v.Record.Name != "Care" {
		t.Errorf("expected Care, got %q", v.Record.Name)
	}
	if len(m.mount) != 2 {
		t.Fatalf("expected two scheduled advances, got %d", len(m.mount))
	}
	if m.Init() == nil {
		t.Error("Init should arm the mount reveal")
	}
	if m.ActiveView() != ViewWalkthrough {
		t.Errorf("expected walkthrough view, got %s", m.ActiveView())
	}
}

func TestRevealReachesFinalPhase(t *testing.T) {
	m := newTestModel(t, Options{})

	m, _ = update(m, revealMsg{advance: m.mount[0]})
	if m.Walkthrough().Phase != stage.PhaseReply {
		t.Errorf("expected reply phase, got %s", m.Walkthrough().Phase)
	}
	if !strings.Contains(m.PlainText(), "Assistant:") {
		t.Error("reply should be visible after the first advance")
	}

	m, _ = update(m, revealMsg{advance: m.mount[1]})
	if !m.Walkthrough().Settled() {
		t.Errorf("expected settled view, got %s", m.Walkthrough().Phase)
	}
}

func TestNavigationKeys(t *testing.T) {
	m := newTestModel(t, Options{})

	m, cmd := press(m, "right")
	if m.Walkthrough().Index != 1 {
		t.Errorf("expected step 1 after right, got %d", m.Walkthrough().Index)
	}
	if cmd == nil {
		t.Error("moving should arm a reveal")
	}
	if m.Walkthrough().Phase != stage.PhasePrompt {
		t.Error("moving should reset the phase")
	}

	m, _ = press(m, "l")
	if m.Walkthrough().Index != 2 {
		t.Errorf("expected step 2 after 'l', got %d", m.Walkthrough().Index)
	}

	m, _ = press(m, "left")
	if m.Walkthrough().Index != 1 {
		t.Errorf("expected step 1 after left, got %d", m.Walkthrough().Index)
	}

	m, _ = press(m, "4")
	if m.Walkthrough().Index != 3 {
		t.Errorf("expected step 3 after '4', got %d", m.Walkthrough().Index)
	}

	m, _ = press(m, "9")
	if m.Walkthrough().Index != 5 {
		t.Errorf("'9' should clamp to the last step, got %d", m.Walkthrough().Index)
	}

	m, _ = press(m, "g")
	if m.Walkthrough().Index != 0 {
		t.Errorf("expected first step after 'g', got %d", m.Walkthrough().Index)
	}
}

func TestNavigationBoundsAreNoops(t *testing.T) {
	m := newTestModel(t, Options{})
	before := m.Walkthrough().Gen

	m, cmd := press(m, "left")
	if cmd != nil {
		t.Error("previous on the first step should schedule nothing")
	}
	if m.Walkthrough().Gen != before {
		t.Error("previous on the first step should not restart the reveal")
	}

	m, _ = press(m, "G")
	last := m.Walkthrough()
	if !last.Last() {
		t.Fatalf("expected last step, got %d", last.Index)
	}
	m, cmd = press(m, "right")
	if cmd != nil {
		t.Error("next on the last step should schedule nothing")
	}
	if m.Walkthrough().Gen != last.Gen {
		t.Error("next on the last step should not restart the reveal")
	}
}

func TestStaleRevealIsDropped(t *testing.T) {
	m := newTestModel(t, Options{})
	old := m.mount

	m, _ = press(m, "right")
	m = deliver(m, 0, old)

	if m.Walkthrough().Phase != stage.PhasePrompt {
		t.Errorf("advances from the previous step must not apply, got %s", m.Walkthrough().Phase)
	}
}

func TestReplayKeyRestartsReveal(t *testing.T) {
	m := newTestModel(t, Options{})
	m = deliver(m, 0, m.mount)
	if !m.Walkthrough().Settled() {
		t.Fatal("expected settled view")
	}

	m, cmd := press(m, "r")
	if cmd == nil {
		t.Error("replay should arm a reveal")
	}
	if m.Walkthrough().Index != 0 || m.Walkthrough().Phase != stage.PhasePrompt {
		t.Errorf("replay should reset to prompt on the same step, got (%d, %s)",
			m.Walkthrough().Index, m.Walkthrough().Phase)
	}
}

func TestRulesView(t *testing.T) {
	m := newTestModel(t, Options{})

	m, _ = press(m, "tab")
	if m.ActiveView() != ViewRules {
		t.Fatalf("expected rules view after tab, got %s", m.ActiveView())
	}

	m, _ = press(m, "down")
	if m.Rule().Index != 1 {
		t.Errorf("expected rule 1 after down, got %d", m.Rule().Index)
	}

	m, _ = press(m, "3")
	if m.Rule().Record.Decision != "Direct intervention" {
		t.Errorf("expected rule 3 decision, got %q", m.Rule().Record.Decision)
	}

	m, _ = press(m, "9")
	if m.Rule().Index != 5 {
		t.Errorf("'9' should clamp to the last rule, got %d", m.Rule().Index)
	}

	m, _ = press(m, "down")
	if m.Rule().Index != 5 {
		t.Errorf("down on the last rule should stay, got %d", m.Rule().Index)
	}

	if m.Walkthrough().Index != 0 {
		t.Error("rule keys must not move the walkthrough")
	}

	m, _ = press(m, "tab")
	if m.ActiveView() != ViewWalkthrough {
		t.Error("tab should switch back")
	}
}

func TestCompleteLabelOnLastStep(t *testing.T) {
	m := newTestModel(t, Options{})
	if strings.Contains(m.View(), "Complete") {
		t.Error("first step should not show Complete")
	}

	m, _ = press(m, "6")
	if !strings.Contains(m.View(), "Complete") {
		t.Error("last step should show Complete")
	}
}

func TestReducedMotion(t *testing.T) {
	tl := stage.DefaultTimeline()
	tl.ReducedMotion = true
	m := newTestModel(t, Options{Timeline: tl})

	if len(m.mount) != 0 {
		t.Errorf("reduced motion should schedule nothing, got %d", len(m.mount))
	}
	if !m.Walkthrough().Settled() {
		t.Error("reduced motion should show every message immediately")
	}

	m, cmd := press(m, "right")
	if cmd != nil {
		t.Error("reduced motion moves should not arm ticks")
	}
	if !m.Walkthrough().Settled() {
		t.Error("new step should be fully visible")
	}
}

func TestStartOptions(t *testing.T) {
	m := newTestModel(t, Options{StartStep: 4, StartView: ViewRules})

	if m.Walkthrough().Index != 3 {
		t.Errorf("expected step 3, got %d", m.Walkthrough().Index)
	}
	if m.ActiveView() != ViewRules {
		t.Errorf("expected rules view, got %s", m.ActiveView())
	}

	m = newTestModel(t, Options{StartStep: 40})
	if m.Walkthrough().Index != 5 {
		t.Errorf("start step should clamp, got %d", m.Walkthrough().Index)
	}
}

func TestDeckReload(t *testing.T) {
	m := newTestModel(t, Options{})
	m, _ = press(m, "6")
	m, _ = press(m, "tab")
	m, _ = press(m, "5")
	staleEpoch := m.epoch
	stale := m.walk.GoTo(m.walk.Index())

	smaller := content.Default()
	smaller.Scenarios = smaller.Scenarios[:3]
	smaller.Rules = smaller.Rules[:2]

	m, cmd := update(m, DeckReloadedMsg{Deck: smaller})
	if cmd == nil {
		t.Error("reload should arm the reveal for the rebuilt walkthrough")
	}
	if got := m.Walkthrough(); got.Index != 2 || got.Len != 3 {
		t.Errorf("walkthrough should clamp to the new deck, got %d/%d", got.Index, got.Len)
	}
	if got := m.Rule(); got.Index != 1 || got.Len != 2 {
		t.Errorf("rules should clamp to the new deck, got %d/%d", got.Index, got.Len)
	}
	if status, isErr := m.Status(); status != "deck reloaded" || isErr {
		t.Errorf("unexpected status %q (err=%v)", status, isErr)
	}

	m = deliver(m, staleEpoch, stale)
	if m.Walkthrough().Phase != stage.PhasePrompt {
		t.Error("advances from before the reload must be dropped")
	}
}

func TestDeckReloadErrorKeepsDeck(t *testing.T) {
	m := newTestModel(t, Options{})

	m, _ = update(m, DeckReloadedMsg{Err: errors.New("parsing deck: bad yaml")})
	if len(m.Deck().Scenarios) != 6 {
		t.Error("failed reload must keep the old deck")
	}
	status, isErr := m.Status()
	if !isErr || !strings.Contains(status, "bad yaml") {
		t.Errorf("expected error status, got %q", status)
	}

	m, _ = update(m, DeckReloadedMsg{Err: watcher.ErrFileRemoved})
	if status, _ := m.Status(); !strings.Contains(status, "removed") {
		t.Errorf("expected removal status, got %q", status)
	}

	empty := content.Default()
	empty.Rules = nil
	m, _ = update(m, DeckReloadedMsg{Deck: empty})
	if m.Rule().Len != 6 {
		t.Error("a deck without rules must be rejected")
	}
}

func TestCopyUsesPlainText(t *testing.T) {
	var copied string
	m := newTestModel(t, Options{Clipboard: func(s string) error {
		copied = s
		return nil
	}})

	m, cmd := press(m, "y")
	if cmd == nil {
		t.Fatal("expected copy command")
	}
	m, _ = update(m, cmd())

	if copied != m.PlainText() {
		t.Errorf("clipboard got %q, want %q", copied, m.PlainText())
	}
	if status, _ := m.Status(); status != "copied to clipboard" {
		t.Errorf("unexpected status %q", status)
	}
}

func TestOverlaysBlockNavigation(t *testing.T) {
	m := newTestModel(t, Options{})

	m, _ = press(m, "?")
	if !strings.Contains(m.View(), "jump to step or rule") {
		t.Error("help overlay should list key bindings")
	}
	m, _ = press(m, "right")
	if m.Walkthrough().Index != 0 {
		t.Error("navigation should be ignored while help is open")
	}

	m, _ = press(m, "esc")
	m, _ = press(m, "right")
	if m.Walkthrough().Index != 1 {
		t.Error("navigation should work after closing help")
	}
}

func TestQuit(t *testing.T) {
	m := newTestModel(t, Options{})
	m, cmd := press(m, "q")
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
	if m.View() != "" {
		t.Error("view should be empty after quitting")
	}
}

func TestWindowResize(t *testing.T) {
	m := newTestModel(t, Options{})
	m, _ = update(m, tea.WindowSizeMsg{Width: 120, Height: 40})

	if m.viewport.Width != 120 || m.viewport.Height != 40-headerHeight-footerHeight {
		t.Errorf("viewport not resized: %dx%d", m.viewport.Width, m.viewport.Height)
	}
	if !strings.Contains(m.View(), "HyBrAIn") {
		t.Error("header should show the deck title")
	}
}

func TestParseView(t *testing.T) {
	if ParseView("Rules") != ViewRules {
		t.Error("expected rules")
	}
	if ParseView("anything") != ViewWalkthrough {
		t.Error("unknown names should select the walkthrough")
	}
}
