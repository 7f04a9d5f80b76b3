package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/pitchwalk/pkg/content"
	"github.com/vanderheijden86/pitchwalk/pkg/debug"
	"github.com/vanderheijden86/pitchwalk/pkg/metrics"
	"github.com/vanderheijden86/pitchwalk/pkg/stage"
	"github.com/vanderheijden86/pitchwalk/pkg/watcher"
)

// View selects which component fills the body.
type View int

const (
	ViewWalkthrough View = iota
	ViewRules
)

func (v View) String() string {
	if v == ViewRules {
		return "rules"
	}
	return "walkthrough"
}

// ParseView maps a config value to a View. Unknown names select the
// walkthrough.
func ParseView(s string) View {
	if strings.EqualFold(strings.TrimSpace(s), "rules") {
		return ViewRules
	}
	return ViewWalkthrough
}

// Default dimensions used until the terminal reports its size.
const (
	defaultWidth  = 80
	defaultHeight = 24

	headerHeight = 2
	footerHeight = 2
)

// revealMsg delivers a scheduled phase advance. epoch ties it to the deck
// that was loaded when it was scheduled; a reload starts a new epoch so the
// rebuilt walkthrough never sees advances from the old one.
type revealMsg struct {
	epoch   uint64
	advance stage.Advance
}

// DeckReloadedMsg carries the result of reloading the deck file.
type DeckReloadedMsg struct {
	Deck content.Deck
	Err  error
}

type copiedMsg struct {
	err error
}

// Options configures a Model.
type Options struct {
	Timeline  stage.Timeline
	StartView View
	StartStep int // 1-based; values outside the deck are clamped

	// Source describes where the deck came from, shown in the help overlay.
	Source string

	// Watcher and Reload enable live reload. Reload is called off the
	// update loop whenever the watcher reports a change.
	Watcher *watcher.Watcher
	Reload  func() (content.Deck, error)

	// Clipboard defaults to the system clipboard.
	Clipboard func(string) error
}

// Model is the presentation: a walkthrough of the deck's scenarios and a
// selector over its decision rules.
type Model struct {
	deck  content.Deck
	walk  stage.Walkthrough[content.Scenario]
	rules stage.Selector[content.Rule]
	epoch uint64

	// mount is the reveal schedule produced at construction; Init arms it.
	mount []stage.Advance

	view      View
	showHelp  bool
	showIntro bool

	status    string
	statusErr bool

	width    int
	height   int
	theme    Theme
	viewport viewport.Model
	md       *MarkdownRenderer

	source    string
	watcher   *watcher.Watcher
	reload    func() (content.Deck, error)
	clipboard func(string) error
	quitting  bool
}

// NewModel builds the presentation for deck.
func NewModel(deck content.Deck, opts Options) (Model, error) {
	walk, err := stage.NewWalkthrough(deck.Scenarios, opts.Timeline)
	if err != nil {
		return Model{}, fmt.Errorf("walkthrough: %w", err)
	}
	rules, err := stage.NewSelector(deck.Rules)
	if err != nil {
		return Model{}, fmt.Errorf("rules: %w", err)
	}

	m := Model{
		deck:      deck,
		walk:      walk,
		rules:     rules,
		view:      opts.StartView,
		width:     defaultWidth,
		height:    defaultHeight,
		theme:     DefaultTheme(lipgloss.DefaultRenderer()),
		viewport:  viewport.New(defaultWidth, defaultHeight-headerHeight-footerHeight),
		md:        NewMarkdownRenderer(defaultWidth - 4),
		source:    opts.Source,
		watcher:   opts.Watcher,
		reload:    opts.Reload,
		clipboard: opts.Clipboard,
	}
	if m.clipboard == nil {
		m.clipboard = clipboard.WriteAll
	}

	start := 0
	if opts.StartStep > 0 {
		start = opts.StartStep - 1
	}
	m.mount = m.walk.GoTo(start)
	m.syncViewport()
	return m, nil
}

// Init arms the mount reveal and, when configured, the deck watcher.
func (m Model) Init() tea.Cmd {
	return tea.Batch(revealCmd(m.epoch, m.mount), m.watchCmd())
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.md.SetWidth(m.width - 4)
		m.syncViewport()
		return m, nil

	case revealMsg:
		if msg.epoch == m.epoch && m.walk.Apply(msg.advance) {
			metrics.AdvancesApplied.Inc()
			m.syncViewport()
		} else {
			metrics.AdvancesDropped.Inc()
			debug.Log("ui: dropped advance gen=%d phase=%s", msg.advance.Gen, msg.advance.Phase)
		}
		return m, nil

	case DeckReloadedMsg:
		cmd := m.applyReload(msg)
		return m, tea.Batch(cmd, m.watchCmd())

	case copiedMsg:
		if msg.err != nil {
			m.setStatus(fmt.Sprintf("copy failed: %v", msg.err), true)
		} else {
			m.setStatus("copied to clipboard", false)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch key {
	case "ctrl+c", "q":
		m.quitting = true
		return m, tea.Quit
	case "esc":
		m.showHelp, m.showIntro = false, false
		m.syncViewport()
		return m, nil
	case "?":
		m.showHelp = !m.showHelp
		m.showIntro = false
		m.syncViewport()
		return m, nil
	case "i":
		m.showIntro = !m.showIntro
		m.showHelp = false
		m.syncViewport()
		m.viewport.GotoTop()
		return m, nil
	case "tab", "shift+tab":
		if m.view == ViewWalkthrough {
			m.view = ViewRules
		} else {
			m.view = ViewWalkthrough
		}
		m.showHelp, m.showIntro = false, false
		m.syncViewport()
		m.viewport.GotoTop()
		return m, nil
	case "y":
		return m, m.copyCmd()
	case "pgdown", "ctrl+d":
		m.viewport.HalfViewDown()
		return m, nil
	case "pgup", "ctrl+u":
		m.viewport.HalfViewUp()
		return m, nil
	}

	if m.showHelp || m.showIntro {
		return m, nil
	}
	m.status, m.statusErr = "", false

	if m.view == ViewRules {
		return m.handleRuleKey(key), nil
	}
	return m.handleWalkthroughKey(key)
}

func (m Model) handleWalkthroughKey(key string) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch key {
	case "right", "l", "n", " ", "enter":
		cmd = m.navigate(m.walk.Next)
	case "left", "h", "p":
		cmd = m.navigate(m.walk.Previous)
	case "home", "g":
		cmd = m.navigate(func() []stage.Advance { return m.walk.GoTo(0) })
	case "end", "G":
		cmd = m.navigate(func() []stage.Advance { return m.walk.GoTo(m.walk.Len() - 1) })
	case "r":
		cmd = m.navigate(m.walk.Start)
	default:
		if d, ok := digitKey(key); ok {
			cmd = m.navigate(func() []stage.Advance { return m.walk.GoTo(d - 1) })
		}
	}
	return m, cmd
}

func (m Model) handleRuleKey(key string) Model {
	var changed bool
	switch key {
	case "down", "j", "right", "l":
		changed = m.rules.Move(1)
	case "up", "k", "left", "h":
		changed = m.rules.Move(-1)
	case "home", "g":
		changed = m.rules.Select(0)
	case "end", "G":
		changed = m.rules.Select(m.rules.Len() - 1)
	default:
		if d, ok := digitKey(key); ok {
			changed = m.rules.Select(d - 1)
		}
	}
	if changed {
		metrics.RuleSelections.Inc()
		m.syncViewport()
	}
	return m
}

// navigate runs a walkthrough move and arms its reveal schedule. Moves that
// leave the selection untouched (Next on the last step, Previous on the
// first) schedule nothing.
func (m *Model) navigate(move func() []stage.Advance) tea.Cmd {
	before := m.walk.CurrentView().Gen
	adv := move()
	if m.walk.CurrentView().Gen == before {
		return nil
	}
	metrics.Selections.Inc()
	m.syncViewport()
	m.viewport.GotoTop()
	return revealCmd(m.epoch, adv)
}

func (m *Model) applyReload(msg DeckReloadedMsg) tea.Cmd {
	if msg.Err != nil {
		if errors.Is(msg.Err, watcher.ErrFileRemoved) {
			m.setStatus("deck file removed; keeping current deck", true)
		} else {
			m.setStatus(fmt.Sprintf("reload failed: %v", msg.Err), true)
		}
		debug.Log("ui: reload error: %v", msg.Err)
		return nil
	}

	walk, err := stage.NewWalkthrough(msg.Deck.Scenarios, m.walk.Timeline())
	if err != nil {
		m.setStatus(fmt.Sprintf("reload failed: %v", err), true)
		return nil
	}
	rules, err := stage.NewSelector(msg.Deck.Rules)
	if err != nil {
		m.setStatus(fmt.Sprintf("reload failed: %v", err), true)
		return nil
	}

	adv := walk.GoTo(m.walk.Index())
	rules.Select(m.rules.Index())

	m.epoch++
	m.deck, m.walk, m.rules = msg.Deck, walk, rules
	metrics.DeckReloads.Inc()
	m.setStatus("deck reloaded", false)
	m.syncViewport()
	return revealCmd(m.epoch, adv)
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status, m.statusErr = s, isErr
}

func (m Model) watchCmd() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	w, reload := m.watcher, m.reload
	return func() tea.Msg {
		ev := <-w.Events()
		if ev.Err != nil {
			return DeckReloadedMsg{Err: ev.Err}
		}
		if reload == nil {
			return DeckReloadedMsg{Err: errors.New("deck source cannot be reloaded")}
		}
		d, err := reload()
		return DeckReloadedMsg{Deck: d, Err: err}
	}
}

func (m Model) copyCmd() tea.Cmd {
	text, write := m.PlainText(), m.clipboard
	return func() tea.Msg {
		return copiedMsg{err: write(text)}
	}
}

// revealCmd turns a reveal schedule into tick commands. Ticks are never
// cancelled; stale ones are dropped by Apply when they arrive.
func revealCmd(epoch uint64, adv []stage.Advance) tea.Cmd {
	if len(adv) == 0 {
		return nil
	}
	cmds := make([]tea.Cmd, 0, len(adv))
	for _, a := range adv {
		cmds = append(cmds, tea.Tick(a.After, func(time.Time) tea.Msg {
			return revealMsg{epoch: epoch, advance: a}
		}))
	}
	return tea.Batch(cmds...)
}

func digitKey(key string) (int, bool) {
	if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
		return int(key[0] - '0'), true
	}
	return 0, false
}

// ActiveView returns the component filling the body.
func (m Model) ActiveView() View { return m.view }

// Walkthrough returns the current walkthrough view.
func (m Model) Walkthrough() stage.View[content.Scenario] { return m.walk.CurrentView() }

// Rule returns the current rule selection.
func (m Model) Rule() stage.Selection[content.Rule] { return m.rules.CurrentView() }

// Deck returns the deck being presented.
func (m Model) Deck() content.Deck { return m.deck }

// Status returns the status line text and whether it reports an error.
func (m Model) Status() (string, bool) { return m.status, m.statusErr }

// PlainText is the unstyled text of the active view, as copied by "y".
func (m Model) PlainText() string {
	if m.view == ViewRules {
		return PlainRule(m.rules.CurrentView())
	}
	return PlainScenario(m.walk.CurrentView())
}
