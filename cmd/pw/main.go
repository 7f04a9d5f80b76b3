package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/pitchwalk/internal/deckfile"
	_ "github.com/vanderheijden86/pitchwalk/internal/ttyguard"
	"github.com/vanderheijden86/pitchwalk/pkg/config"
	"github.com/vanderheijden86/pitchwalk/pkg/content"
	"github.com/vanderheijden86/pitchwalk/pkg/debug"
	"github.com/vanderheijden86/pitchwalk/pkg/stage"
	"github.com/vanderheijden86/pitchwalk/pkg/ui"
	"github.com/vanderheijden86/pitchwalk/pkg/watcher"
)

var (
	// Global flags
	verbose       bool
	deckPath      string
	configPath    string
	reducedMotion bool

	// Root (TUI) flags
	watchDeck bool
	startView string
	startStep int
)

var rootCmd = &cobra.Command{
	Use:   "pw",
	Short: "pw - a staged walkthrough of a product pitch",
	Long: `pw presents a deck of scenarios one step at a time. Each step reveals a
user prompt, the assistant's reply and the system's intervention on a short
timeline. A second view explores the deck's decision rules.

Run without arguments to start the interactive presentation.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			debug.SetEnabled(true)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		debug.Sync()
	},
	RunE: runTUI,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging (to PW_DEBUG_FILE or stderr)")
	rootCmd.PersistentFlags().StringVar(&deckPath, "deck", "", "Deck file (default: PW_DECK, deck.path, ./pitchwalk.yaml, built-in)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: $XDG_CONFIG_HOME/pw/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&reducedMotion, "reduced-motion", false, "Show every message immediately instead of revealing them")

	rootCmd.Flags().BoolVarP(&watchDeck, "watch", "w", false, "Reload the deck file when it changes")
	rootCmd.Flags().StringVar(&startView, "view", "", "Initial view: walkthrough or rules")
	rootCmd.Flags().IntVar(&startStep, "step", 0, "Initial step (1-based)")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// settings is everything a command needs after flags, env and config have
// been merged.
type settings struct {
	cfg      config.Config
	timeline stage.Timeline
	deck     content.Deck
	source   deckfile.Source
}

func loadSettings(cmd *cobra.Command) (settings, error) {
	var (
		cfg config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFrom(configPath)
		cfg.ApplyEnv()
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		// Non-fatal: continue with defaults
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v (using defaults)\n", err)
		cfg = config.DefaultConfig()
		cfg.ApplyEnv()
	}

	if cmd.Flags().Changed("reduced-motion") {
		cfg.Reveal.ReducedMotion = reducedMotion
	}
	tl, err := cfg.Reveal.Timeline()
	if err != nil {
		return settings{}, err
	}

	d, src, err := deckfile.ResolveAndLoad(deckfile.Options{
		FlagPath:   deckPath,
		ConfigPath: cfg.Deck.Path,
	})
	if err != nil {
		return settings{}, err
	}
	debug.Log("pw: deck %s, reveal %s/%s reduced=%v", src, tl.Reply, tl.System, tl.ReducedMotion)

	return settings{cfg: cfg, timeline: tl, deck: d, source: src}, nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	view := s.cfg.UI.StartView
	if startView != "" {
		view = startView
	}
	step := s.cfg.UI.StartStep
	if startStep > 0 {
		step = startStep
	}
	opts := ui.Options{
		Timeline:  s.timeline,
		StartView: ui.ParseView(view),
		StartStep: step,
		Source:    s.source.String(),
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	if watchDeck || s.cfg.Deck.Watch {
		if s.source.Watchable() {
			w, err := watcher.New(s.source.Path)
			if err != nil {
				return fmt.Errorf("watching deck: %w", err)
			}
			src := s.source
			opts.Watcher = w
			opts.Reload = func() (content.Deck, error) { return deckfile.Load(src) }
			g.Go(func() error { return w.Run(ctx) })
		} else {
			fmt.Fprintln(cmd.ErrOrStderr(), "Warning: --watch ignored for the built-in deck")
		}
	}

	m, err := ui.NewModel(s.deck, opts)
	if err != nil {
		return err
	}

	g.Go(func() error {
		defer cancel()
		if err := runTUIProgram(ctx, m); err != nil {
			return fmt.Errorf("running presentation: %w", err)
		}
		return nil
	})
	return g.Wait()
}

type quitter interface {
	Quit()
}

// quitOnDone quits p when ctx ends before the program has returned.
func quitOnDone(ctx context.Context, runDone <-chan struct{}, p quitter) {
	select {
	case <-runDone:
	case <-ctx.Done():
		p.Quit()
	}
}

func runTUIProgram(ctx context.Context, m ui.Model) error {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	// A failed watcher cancels ctx; stop the program so the error is reported.
	go quitOnDone(ctx, runDone, p)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Optional auto-quit for automated tests: set PW_TUI_AUTOCLOSE_MS.
	if ms := autocloseMillis(); ms > 0 {
		go func() {
			timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
			defer timer.Stop()

			select {
			case <-runDone:
				return
			case <-timer.C:
			}

			p.Quit()

			select {
			case <-runDone:
				return
			case <-time.After(2 * time.Second):
			}

			p.Kill()
		}()
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
		return nil
	}
	return err
}

func autocloseMillis() int {
	v := os.Getenv("PW_TUI_AUTOCLOSE_MS")
	if v == "" {
		return 0
	}
	ms, err := strconv.Atoi(v)
	if err != nil || ms < 0 {
		return 0
	}
	return ms
}
